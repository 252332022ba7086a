package game

import (
	"encoding/json"
	"fmt"
)

// Inbound tags (client -> server).
const (
	TagCreateRoom   = "create-room"
	TagJoinRoom     = "join-room"
	TagLeaveRoom    = "leave-room"
	TagPlayerReady  = "player-ready"
	TagSubmitAnswer = "submit-answer"
	TagStartGame    = "start-game"
	TagChatMessage  = "chat-message"
)

// Outbound tags (server -> client).
const (
	TagRoomCreated        = "room-created"
	TagRoomJoined         = "room-joined"
	TagPlayerJoined       = "player-joined"
	TagPlayerLeft         = "player-left"
	TagPlayerReadyChanged = "player-ready-changed"
	TagGameStarted        = "game-started"
	TagNewQuestion        = "new-question"
	TagAnswerResult       = "answer-result"
	TagRankingsUpdated    = "rankings-updated"
	TagQuestionResults    = "question-results"
	TagGameEnded          = "game-ended"
	TagRoomReset          = "room-reset"
	TagJoinError          = "join-error"
	TagError              = "error"
)

// Inbound is the closed set of messages a client may send.
type Inbound interface {
	inboundTag() string
}

type CreateRoom struct {
	DisplayName string    `json:"displayName"`
	GameType    GameType  `json:"gameType"`
	Settings    *Settings `json:"settings,omitempty"`
}

type JoinRoom struct {
	RoomCode    string `json:"roomCode"`
	DisplayName string `json:"displayName"`
}

type LeaveRoom struct{}

type PlayerReady struct {
	IsReady bool `json:"isReady"`
}

type SubmitAnswer struct {
	QuestionId     string  `json:"questionId"`
	SelectedOption int     `json:"selectedOption"`
	LatencySeconds float64 `json:"latencySeconds"`
}

type StartGame struct{}

type SendChat struct {
	Text string `json:"text"`
}

func (CreateRoom) inboundTag() string   { return TagCreateRoom }
func (JoinRoom) inboundTag() string     { return TagJoinRoom }
func (LeaveRoom) inboundTag() string    { return TagLeaveRoom }
func (PlayerReady) inboundTag() string  { return TagPlayerReady }
func (SubmitAnswer) inboundTag() string { return TagSubmitAnswer }
func (StartGame) inboundTag() string    { return TagStartGame }
func (SendChat) inboundTag() string     { return TagChatMessage }

// Outbound is the closed set of messages the server emits.
type Outbound interface {
	outboundTag() string
}

type RoomCreated struct {
	RoomCode string   `json:"roomCode"`
	Room     RoomView `json:"room"`
}

type RoomJoined struct {
	RoomCode string   `json:"roomCode"`
	Room     RoomView `json:"room"`
}

type PlayerJoined struct {
	Player PlayerView `json:"player"`
	Room   RoomView   `json:"room"`
}

type PlayerLeft struct {
	PlayerId string   `json:"playerId"`
	Room     RoomView `json:"room"`
}

type PlayerReadyChanged struct {
	PlayerId string   `json:"playerId"`
	IsReady  bool     `json:"isReady"`
	AllReady bool     `json:"allReady"`
	Room     RoomView `json:"room"`
}

type GameStarted struct {
	MatchState MatchView `json:"matchState"`
	Room       RoomView  `json:"room"`
}

// NewQuestion never carries the correct option or the explanation.
type NewQuestion struct {
	Id               string   `json:"id"`
	Ordinal          int      `json:"ordinal"`
	Total            int      `json:"total"`
	Prompt           string   `json:"prompt"`
	Options          []string `json:"options"`
	TimeLimitSeconds int      `json:"timeLimitSeconds"`
}

type AnswerResult struct {
	QuestionId    string `json:"questionId"`
	IsCorrect     bool   `json:"isCorrect"`
	PointsAwarded int    `json:"pointsAwarded"`
	CorrectOption int    `json:"correctOption"`
	Explanation   string `json:"explanation"`
}

type RankingsUpdated struct {
	Rankings []RankEntry `json:"rankings"`
}

type QuestionResults struct {
	QuestionId    string      `json:"questionId"`
	CorrectOption int         `json:"correctOption"`
	Explanation   string      `json:"explanation"`
	Rankings      []RankEntry `json:"rankings"`
}

type GameEnded struct {
	Rankings        []RankEntry    `json:"rankings"`
	TotalQuestions  int            `json:"totalQuestions"`
	DurationMs      int64          `json:"durationMs"`
	PerPlayerDetail []PlayerDetail `json:"perPlayerDetail"`
}

type RoomReset struct {
	Room RoomView `json:"room"`
}

type ChatMessage struct {
	Id         string `json:"id"`
	PlayerId   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

type JoinError struct {
	Reason RoomError `json:"reason"`
}

type ErrorMessage struct {
	Reason RoomError `json:"reason"`
}

func (RoomCreated) outboundTag() string        { return TagRoomCreated }
func (RoomJoined) outboundTag() string         { return TagRoomJoined }
func (PlayerJoined) outboundTag() string       { return TagPlayerJoined }
func (PlayerLeft) outboundTag() string         { return TagPlayerLeft }
func (PlayerReadyChanged) outboundTag() string { return TagPlayerReadyChanged }
func (GameStarted) outboundTag() string        { return TagGameStarted }
func (NewQuestion) outboundTag() string        { return TagNewQuestion }
func (AnswerResult) outboundTag() string       { return TagAnswerResult }
func (RankingsUpdated) outboundTag() string    { return TagRankingsUpdated }
func (QuestionResults) outboundTag() string    { return TagQuestionResults }
func (GameEnded) outboundTag() string          { return TagGameEnded }
func (RoomReset) outboundTag() string          { return TagRoomReset }
func (ChatMessage) outboundTag() string        { return TagChatMessage }
func (JoinError) outboundTag() string          { return TagJoinError }
func (ErrorMessage) outboundTag() string       { return TagError }

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outboundEnvelope struct {
	Type string   `json:"type"`
	Data Outbound `json:"data"`
}

// DecodeInbound parses one client frame.
func DecodeInbound(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	switch env.Type {
	case TagCreateRoom:
		return decodeAs[CreateRoom](env.Data)
	case TagJoinRoom:
		return decodeAs[JoinRoom](env.Data)
	case TagLeaveRoom:
		return LeaveRoom{}, nil
	case TagPlayerReady:
		return decodeAs[PlayerReady](env.Data)
	case TagSubmitAnswer:
		return decodeAs[SubmitAnswer](env.Data)
	case TagStartGame:
		return StartGame{}, nil
	case TagChatMessage:
		return decodeAs[SendChat](env.Data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
}

func decodeAs[T Inbound](data json.RawMessage) (Inbound, error) {
	var msg T
	if len(data) == 0 {
		return msg, nil
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	return msg, nil
}

func EncodeOutbound(msg Outbound) ([]byte, error) {
	return json.Marshal(outboundEnvelope{Type: msg.outboundTag(), Data: msg})
}
