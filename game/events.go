package game

import "github.com/vitoroliveiraifsp/Mangues-sub000/domain"

// event is anything the coordinator loop consumes.
type event interface{}

type connected struct {
	peer   Peer
	userId string
}

type disconnected struct {
	connID string
}

type received struct {
	connID string
	msg    Inbound
}

type invalidMessage struct {
	connID string
}

type timerKind int

const (
	timerReadyGrace timerKind = iota
	timerQuestionDeadline
	timerNextQuestion
	timerCooldown
)

func (k timerKind) String() string {
	switch k {
	case timerReadyGrace:
		return "ready-grace"
	case timerQuestionDeadline:
		return "question-deadline"
	case timerNextQuestion:
		return "next-question"
	case timerCooldown:
		return "cooldown"
	}
	return "unknown"
}

// timerFired carries what the timer was armed against so the handler can
// tell whether it went stale.
type timerFired struct {
	kind  timerKind
	room  *Room
	match *MatchState
	index int
}

type questionsLoaded struct {
	room      *Room
	questions []domain.Question
	err       error
}

type roomsQuery struct {
	reply chan []RoomSummary
}

type roomQueryResult struct {
	view  RoomView
	found bool
}

type roomQuery struct {
	code  string
	reply chan roomQueryResult
}
