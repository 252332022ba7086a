package game

import (
	"context"
	"time"

	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

func (c *Coordinator) startMatch(room *Room, questions []domain.Question) {
	for _, p := range room.players {
		p.resetProgress()
		p.isReady = false
	}
	room.status = StatusPlaying
	room.match = &MatchState{
		questions:      questions,
		matchStartedAt: c.now(),
	}

	c.log.Info().Str("room", room.code).Int("questions", len(questions)).Int("players", len(room.players)).Msg("match started")
	c.roomcast(room, GameStarted{MatchState: room.match.view(room.settings), Room: room.view()})
	c.askQuestion(room)
}

func (c *Coordinator) askQuestion(room *Room) {
	m := room.match
	q, ok := m.current()
	if !ok {
		c.finalize(room)
		return
	}
	m.currentQuestionStartedAt = c.now()
	m.accepting = true

	options := make([]string, len(q.Options))
	copy(options, q.Options)
	c.roomcast(room, NewQuestion{
		Id:               q.Id,
		Ordinal:          m.currentQuestionIndex + 1,
		Total:            len(m.questions),
		Prompt:           q.Prompt,
		Options:          options,
		TimeLimitSeconds: room.settings.TimePerQuestionSeconds,
	})

	c.schedule(time.Duration(room.settings.TimePerQuestionSeconds)*time.Second, timerFired{
		kind:  timerQuestionDeadline,
		room:  room,
		match: m,
		index: m.currentQuestionIndex,
	})
}

// submitAnswer silently ignores answers outside an open question, for another
// question, or from a player who already answered it.
func (c *Coordinator) submitAnswer(connID string, s SubmitAnswer) {
	room := c.reg.roomOf(connID)
	if room == nil || room.status != StatusPlaying || room.match == nil || !room.match.accepting {
		return
	}
	q, ok := room.match.current()
	if !ok || q.Id != s.QuestionId {
		return
	}
	p, _ := room.playerByConn(connID)
	if p == nil || p.hasAnswered(q.Id) {
		return
	}

	correct := s.SelectedOption == q.CorrectOption
	latency, points := scoreAnswer(correct, q.Points, room.settings.TimePerQuestionSeconds, s.LatencySeconds)
	p.answers = append(p.answers, Answer{
		QuestionId:             q.Id,
		SelectedOption:         s.SelectedOption,
		IsCorrect:              correct,
		PointsAwarded:          points,
		ResponseLatencySeconds: latency,
	})
	p.score += points

	c.unicast(connID, AnswerResult{
		QuestionId:    q.Id,
		IsCorrect:     correct,
		PointsAwarded: points,
		CorrectOption: q.CorrectOption,
		Explanation:   q.Explanation,
	})
	c.roomcast(room, RankingsUpdated{Rankings: computeRankings(room.players)})

	if room.everyoneAnswered(q.Id) {
		c.closeQuestion(room)
	}
}

func (c *Coordinator) closeQuestion(room *Room) {
	m := room.match
	if !m.accepting {
		return
	}
	m.accepting = false
	q, _ := m.current()

	c.roomcast(room, QuestionResults{
		QuestionId:    q.Id,
		CorrectOption: q.CorrectOption,
		Explanation:   q.Explanation,
		Rankings:      computeRankings(room.players),
	})

	m.currentQuestionIndex++
	c.schedule(c.timing.QuestionPause, timerFired{
		kind:  timerNextQuestion,
		room:  room,
		match: m,
		index: m.currentQuestionIndex,
	})
}

func (c *Coordinator) finalize(room *Room) {
	m := room.match
	endedAt := c.now()
	room.status = StatusFinished
	m.accepting = false

	rankings := computeRankings(room.players)
	duration := endedAt.Sub(m.matchStartedAt)
	c.roomcast(room, GameEnded{
		Rankings:        rankings,
		TotalQuestions:  len(m.questions),
		DurationMs:      duration.Milliseconds(),
		PerPlayerDetail: playerDetails(room.players),
	})
	c.log.Info().Str("room", room.code).Dur("duration", duration).Msg("match ended")

	if c.sink != nil {
		result := matchResult(room, rankings, endedAt)
		sink := c.sink
		base := c.ctx
		c.spawn(func() {
			ctx, cancel := context.WithTimeout(base, c.timing.SinkTimeout)
			defer cancel()
			if err := sink.RecordMatch(ctx, result); err != nil {
				c.log.Error().Err(err).Str("room", result.RoomCode).Msg("record match")
			}
		})
	}

	c.schedule(c.timing.Cooldown, timerFired{kind: timerCooldown, room: room, match: m})
}

func (c *Coordinator) resetRoom(room *Room) {
	room.status = StatusWaiting
	room.match = nil
	for _, p := range room.players {
		p.isReady = false
		p.resetProgress()
	}

	c.log.Info().Str("room", room.code).Msg("room reset")
	c.roomcast(room, RoomReset{Room: room.view()})
}

// onTimer drops every timer whose room, status, match or question moved on
// since it was armed.
func (c *Coordinator) onTimer(e timerFired) {
	room := e.room
	if !c.reg.isLive(room) {
		c.log.Debug().Stringer("timer", e.kind).Msg("stale timer, room gone")
		return
	}

	switch e.kind {
	case timerReadyGrace:
		if room.status != StatusWaiting || room.pendingStart || room.gameType != GameQuiz || !room.allReady() {
			return
		}
		c.beginStart(room)

	case timerQuestionDeadline:
		if room.status != StatusPlaying || room.match != e.match || e.match.currentQuestionIndex != e.index {
			return
		}
		c.closeQuestion(room)

	case timerNextQuestion:
		if room.status != StatusPlaying || room.match != e.match || e.match.currentQuestionIndex != e.index {
			return
		}
		c.askQuestion(room)

	case timerCooldown:
		if room.status != StatusFinished || room.match != e.match {
			return
		}
		c.resetRoom(room)
	}
}

func matchResult(room *Room, rankings []RankEntry, endedAt time.Time) domain.MatchResult {
	m := room.match
	byId := make(map[string]*Player, len(room.players))
	for _, p := range room.players {
		byId[p.id] = p
	}

	players := make([]domain.PlayerResult, 0, len(rankings))
	for _, r := range rankings {
		players = append(players, domain.PlayerResult{
			PlayerId:            r.PlayerId,
			UserId:              byId[r.PlayerId].userId,
			Name:                r.Name,
			Score:               r.Score,
			CorrectAnswers:      r.CorrectAnswers,
			Position:            r.Position,
			TotalLatencySeconds: r.TotalLatencySeconds,
		})
	}

	return domain.MatchResult{
		RoomCode:      room.code,
		GameType:      string(room.gameType),
		StartedAt:     m.matchStartedAt,
		EndedAt:       endedAt,
		DurationMs:    endedAt.Sub(m.matchStartedAt).Milliseconds(),
		QuestionCount: len(m.questions),
		Players:       players,
	}
}
