package game

import (
	"context"
	"strings"
)

func (c *Coordinator) createRoom(connID string, m CreateRoom) {
	name, ok := cleanDisplayName(m.DisplayName)
	if !ok {
		c.unicast(connID, ErrorMessage{Reason: ErrInvalidMessage})
		return
	}

	gameType := m.GameType
	if gameType == "" {
		gameType = GameQuiz
	}
	if !gameType.Valid() {
		c.unicast(connID, ErrorMessage{Reason: ErrInvalidMessage})
		return
	}

	var settings Settings
	if m.Settings != nil {
		settings = *m.Settings
	}
	settings = settings.WithDefaults(c.defaults)
	if err := settings.Validate(); err != nil {
		c.unicast(connID, ErrorMessage{Reason: ErrInvalidSettings})
		return
	}

	c.leave(connID)

	room, ok := c.reg.createRoom(connID, c.peers[connID].userId, name, gameType, settings)
	if !ok {
		c.log.Error().Str("conn", connID).Msg("no free room code")
		return
	}

	c.log.Info().Str("room", room.code).Str("conn", connID).Str("gameType", string(gameType)).Msg("room created")
	c.unicast(connID, RoomCreated{RoomCode: room.code, Room: room.view()})
}

func (c *Coordinator) joinRoom(connID string, m JoinRoom) {
	name, ok := cleanDisplayName(m.DisplayName)
	if !ok {
		c.unicast(connID, ErrorMessage{Reason: ErrInvalidMessage})
		return
	}

	current := c.reg.roomOf(connID)
	if current != nil && current.code == NormalizeCode(m.RoomCode) {
		c.unicast(connID, RoomJoined{RoomCode: current.code, Room: current.view()})
		return
	}

	// a rejected join must leave the current membership untouched
	if _, err := c.reg.admits(m.RoomCode); err != nil {
		c.rejectJoin(connID, err)
		return
	}
	if current != nil {
		c.leave(connID)
	}

	room, p, err := c.reg.joinRoom(connID, c.peers[connID].userId, m.RoomCode, name)
	if err != nil {
		c.rejectJoin(connID, err)
		return
	}

	c.log.Info().Str("room", room.code).Str("conn", connID).Int("players", len(room.players)).Msg("player joined")
	view := room.view()
	c.unicast(connID, RoomJoined{RoomCode: room.code, Room: view})
	c.roomcast(room, PlayerJoined{Player: p.view(), Room: view})
}

func (c *Coordinator) rejectJoin(connID string, err error) {
	reason, _ := err.(RoomError)
	c.log.Debug().Str("conn", connID).Str("reason", string(reason)).Msg("join rejected")
	c.unicast(connID, JoinError{Reason: reason})
}

// leave is a no-op for connections outside any room.
func (c *Coordinator) leave(connID string) {
	room, left, deleted, ok := c.reg.leaveRoom(connID)
	if !ok {
		return
	}
	if deleted {
		c.log.Info().Str("room", room.code).Msg("room deleted")
		return
	}

	c.log.Info().Str("room", room.code).Str("conn", connID).Msg("player left")
	c.roomcast(room, PlayerLeft{PlayerId: left.id, Room: room.view()})

	// the leaver may have been the last one the question was waiting on
	if room.status == StatusPlaying && room.match != nil && room.match.accepting {
		if q, ok := room.match.current(); ok && room.everyoneAnswered(q.Id) {
			c.closeQuestion(room)
		}
	}
}

func (c *Coordinator) setReady(connID string, isReady bool) {
	room := c.reg.roomOf(connID)
	if room == nil || room.status != StatusWaiting || room.pendingStart {
		return
	}
	p, _ := room.playerByConn(connID)
	if p == nil {
		return
	}

	p.isReady = isReady
	allReady := room.allReady()
	c.roomcast(room, PlayerReadyChanged{
		PlayerId: p.id,
		IsReady:  isReady,
		AllReady: allReady,
		Room:     room.view(),
	})

	if allReady && room.gameType == GameQuiz {
		c.schedule(c.timing.ReadyGrace, timerFired{kind: timerReadyGrace, room: room})
	}
}

// hostStart skips the grace delay but otherwise needs the same conditions.
func (c *Coordinator) hostStart(connID string) {
	room := c.reg.roomOf(connID)
	if room == nil {
		c.unicast(connID, ErrorMessage{Reason: ErrNotInRoom})
		return
	}

	var reason RoomError
	switch {
	case room.hostConnectionId != connID:
		reason = ErrNotHost
	case room.status != StatusWaiting, room.pendingStart:
		reason = ErrMatchInProgress
	case room.gameType != GameQuiz:
		reason = ErrUnsupportedGameType
	case len(room.players) < MinPlayers:
		reason = ErrNotEnoughPlayers
	case !room.allReady():
		reason = ErrNotAllReady
	}
	if reason != "" {
		c.unicast(connID, ErrorMessage{Reason: reason})
		return
	}

	c.beginStart(room)
}

// beginStart marks the room mid-transition and asks the bank for questions
// off the loop. A second start attempt sees pendingStart and is refused.
func (c *Coordinator) beginStart(room *Room) {
	room.pendingStart = true
	count := room.settings.TotalQuestions
	c.log.Info().Str("room", room.code).Int("questions", count).Msg("starting match")

	bank := c.bank
	base := c.ctx
	c.spawn(func() {
		ctx, cancel := context.WithTimeout(base, c.timing.BankTimeout)
		defer cancel()

		ev := questionsLoaded{room: room}
		if bank == nil {
			ev.err = ErrQuestionsUnavailable
		} else {
			ev.questions, ev.err = bank.RandomQuestions(ctx, count)
		}
		if err := c.post(base, ev); err != nil {
			c.log.Debug().Err(err).Str("room", room.code).Msg("questions dropped")
		}
	})
}

func (c *Coordinator) onQuestionsLoaded(e questionsLoaded) {
	room := e.room
	if !c.reg.isLive(room) || !room.pendingStart {
		return
	}
	room.pendingStart = false

	if e.err != nil || len(e.questions) == 0 {
		c.log.Error().Err(e.err).Str("room", room.code).Int("questions", len(e.questions)).Msg("question bank failed")
		c.roomcast(room, ErrorMessage{Reason: ErrQuestionsUnavailable})
		return
	}
	if len(room.players) < MinPlayers {
		c.log.Debug().Str("room", room.code).Msg("start abandoned, players left")
		return
	}

	questions := e.questions
	if len(questions) > room.settings.TotalQuestions {
		questions = questions[:room.settings.TotalQuestions]
	}
	c.startMatch(room, questions)
}

func (c *Coordinator) chat(connID string, m SendChat) {
	room := c.reg.roomOf(connID)
	if room == nil {
		return
	}
	p, _ := room.playerByConn(connID)
	if p == nil {
		return
	}
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}

	c.roomcast(room, ChatMessage{
		Id:         c.newId(),
		PlayerId:   p.id,
		PlayerName: p.name,
		Text:       truncateRunes(text, maxChatRunes),
		Timestamp:  c.now().UnixMilli(),
	})
}
