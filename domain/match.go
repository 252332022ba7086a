package domain

import "time"

// MatchResult is the final outcome of one match, handed to score sinks.
type MatchResult struct {
	RoomCode      string         `json:"roomCode"`
	GameType      string         `json:"gameType"`
	StartedAt     time.Time      `json:"startedAt"`
	EndedAt       time.Time      `json:"endedAt"`
	DurationMs    int64          `json:"durationMs"`
	QuestionCount int            `json:"questionCount"`
	Players       []PlayerResult `json:"players"`
}

type PlayerResult struct {
	PlayerId            string  `json:"playerId"`
	UserId              string  `json:"userId,omitempty"`
	Name                string  `json:"name"`
	Score               int     `json:"score"`
	CorrectAnswers      int     `json:"correctAnswers"`
	Position            int     `json:"position"`
	TotalLatencySeconds float64 `json:"totalLatencySeconds"`
}

type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}
