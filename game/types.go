package game

import (
	"time"

	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

type GameType string

const (
	GameQuiz        GameType = "quiz"
	GameMemory      GameType = "memory"
	GameConnections GameType = "connections"
)

func (g GameType) Valid() bool {
	switch g {
	case GameQuiz, GameMemory, GameConnections:
		return true
	}
	return false
}

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// Settings are fixed when the room is created.
type Settings struct {
	MaxPlayers             int `json:"maxPlayers"`
	TimePerQuestionSeconds int `json:"timePerQuestionSeconds"`
	TotalQuestions         int `json:"totalQuestions"`
}

type Answer struct {
	QuestionId             string  `json:"questionId"`
	SelectedOption         int     `json:"selectedOption"`
	IsCorrect              bool    `json:"isCorrect"`
	PointsAwarded          int     `json:"pointsAwarded"`
	ResponseLatencySeconds float64 `json:"responseLatencySeconds"`
}

type Player struct {
	id           string
	userId       string
	connectionId string
	name         string
	score        int
	isReady      bool
	isHost       bool
	answers      []Answer
}

func (p *Player) hasAnswered(questionId string) bool {
	for _, a := range p.answers {
		if a.QuestionId == questionId {
			return true
		}
	}
	return false
}

func (p *Player) totalLatency() float64 {
	total := 0.0
	for _, a := range p.answers {
		total += a.ResponseLatencySeconds
	}
	return total
}

func (p *Player) correctAnswers() int {
	n := 0
	for _, a := range p.answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

func (p *Player) resetProgress() {
	p.score = 0
	p.answers = nil
}

type Room struct {
	code             string
	hostConnectionId string
	gameType         GameType
	status           RoomStatus
	settings         Settings
	createdAt        time.Time

	// join order, used for host migration and ranking ties
	players []*Player

	// set between a start request and the question bank answering
	pendingStart bool
	match        *MatchState
}

func (r *Room) playerByConn(connID string) (*Player, int) {
	for i, p := range r.players {
		if p.connectionId == connID {
			return p, i
		}
	}
	return nil, -1
}

// allReady reports whether at least two players are present and all of them are ready.
func (r *Room) allReady() bool {
	if len(r.players) < 2 {
		return false
	}
	for _, p := range r.players {
		if !p.isReady {
			return false
		}
	}
	return true
}

func (r *Room) everyoneAnswered(questionId string) bool {
	for _, p := range r.players {
		if !p.hasAnswered(questionId) {
			return false
		}
	}
	return true
}

// MatchState only exists while a room is playing or showing its final results.
type MatchState struct {
	questions                []domain.Question
	currentQuestionIndex     int
	matchStartedAt           time.Time
	currentQuestionStartedAt time.Time
	accepting                bool
}

func (m *MatchState) current() (domain.Question, bool) {
	if m.currentQuestionIndex < 0 || m.currentQuestionIndex >= len(m.questions) {
		return domain.Question{}, false
	}
	return m.questions[m.currentQuestionIndex], true
}
