package game

import "errors"

// RoomError is a client protocol error reported back to the originating connection.
type RoomError string

func (e RoomError) Error() string { return string(e) }

const (
	ErrRoomNotFound         RoomError = "RoomNotFound"
	ErrRoomFull             RoomError = "RoomFull"
	ErrMatchInProgress      RoomError = "MatchInProgress"
	ErrNotHost              RoomError = "NotHost"
	ErrNotAllReady          RoomError = "NotAllReady"
	ErrNotEnoughPlayers     RoomError = "NotEnoughPlayers"
	ErrUnsupportedGameType  RoomError = "UnsupportedGameType"
	ErrNotInRoom            RoomError = "NotInRoom"
	ErrQuestionsUnavailable RoomError = "QuestionsUnavailable"
	ErrInvalidSettings      RoomError = "InvalidSettings"
	ErrInvalidMessage       RoomError = "InvalidMessage"
)

var (
	ErrSendBufferFull     = errors.New("send-buffer-full")
	ErrUnknownMessageType = errors.New("unknown-message-type")
	ErrMalformedMessage   = errors.New("malformed-message")
	ErrCoordinatorStopped = errors.New("coordinator-stopped")
)
