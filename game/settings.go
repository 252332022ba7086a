package game

import (
	"strings"
	"unicode/utf8"
)

const (
	MinPlayers             = 2
	MaxPlayersLimit        = 20
	MinTimePerQuestion     = 5
	MaxTimePerQuestion     = 120
	MinTotalQuestions      = 1
	MaxTotalQuestions      = 30
	maxDisplayNameRunes    = 24
	maxChatRunes           = 200
	defaultMaxPlayers      = 6
	defaultTimePerQuestion = 30
	defaultTotalQuestions  = 5
)

// DefaultSettings mirrors the values rooms get when the creator sends none.
func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:             defaultMaxPlayers,
		TimePerQuestionSeconds: defaultTimePerQuestion,
		TotalQuestions:         defaultTotalQuestions,
	}
}

// WithDefaults fills every zero field from d.
func (s Settings) WithDefaults(d Settings) Settings {
	if s.MaxPlayers == 0 {
		s.MaxPlayers = d.MaxPlayers
	}
	if s.TimePerQuestionSeconds == 0 {
		s.TimePerQuestionSeconds = d.TimePerQuestionSeconds
	}
	if s.TotalQuestions == 0 {
		s.TotalQuestions = d.TotalQuestions
	}
	return s
}

func (s Settings) Validate() error {
	switch {
	case s.MaxPlayers < MinPlayers, s.MaxPlayers > MaxPlayersLimit:
		return ErrInvalidSettings
	case s.TimePerQuestionSeconds < MinTimePerQuestion, s.TimePerQuestionSeconds > MaxTimePerQuestion:
		return ErrInvalidSettings
	case s.TotalQuestions < MinTotalQuestions, s.TotalQuestions > MaxTotalQuestions:
		return ErrInvalidSettings
	}
	return nil
}

// cleanDisplayName trims and truncates a name; ok is false when nothing is left.
func cleanDisplayName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	return truncateRunes(name, maxDisplayNameRunes), true
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
