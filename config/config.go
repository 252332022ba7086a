package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/vitoroliveiraifsp/Mangues-sub000/game"
)

var ErrMissingAllowedOrigins = errors.New("missing-allowed-origins")

type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       zerolog.Level
	LogPretty      bool

	// Optional backends, empty disables them.
	PostgresURL string
	RedisURL    string
	NatsURL     string
	JWTKey      string

	Timing   game.Timing
	Defaults game.Settings
}

// Load reads the environment, after merging a .env file when one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:        str("PORT", "5000"),
		PostgresURL: str("POSTGRES_URL", ""),
		RedisURL:    str("REDIS_URL", ""),
		NatsURL:     str("NATS_URL", ""),
		JWTKey:      str("JWT_KEY", ""),
		Timing:      game.DefaultTiming(),
		Defaults:    game.DefaultSettings(),
	}

	origins, ok := os.LookupEnv("ALLOWED_ORIGINS")
	if !ok || strings.TrimSpace(origins) == "" {
		return Config{}, ErrMissingAllowedOrigins
	}
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	var err error
	if cfg.LogLevel, err = zerolog.ParseLevel(str("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.LogPretty, err = boolean("LOG_PRETTY", false); err != nil {
		return Config{}, err
	}

	if cfg.Timing.ReadyGrace, err = duration("READY_GRACE", cfg.Timing.ReadyGrace); err != nil {
		return Config{}, err
	}
	if cfg.Timing.Cooldown, err = duration("COOLDOWN", cfg.Timing.Cooldown); err != nil {
		return Config{}, err
	}
	if cfg.Timing.QuestionPause, err = duration("QUESTION_PAUSE", cfg.Timing.QuestionPause); err != nil {
		return Config{}, err
	}

	if cfg.Defaults.MaxPlayers, err = integer("DEFAULT_MAX_PLAYERS", cfg.Defaults.MaxPlayers); err != nil {
		return Config{}, err
	}
	if cfg.Defaults.TimePerQuestionSeconds, err = integer("DEFAULT_TIME_PER_QUESTION", cfg.Defaults.TimePerQuestionSeconds); err != nil {
		return Config{}, err
	}
	if cfg.Defaults.TotalQuestions, err = integer("DEFAULT_TOTAL_QUESTIONS", cfg.Defaults.TotalQuestions); err != nil {
		return Config{}, err
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return Config{}, fmt.Errorf("default room settings: %w", err)
	}

	return cfg, nil
}

func str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func boolean(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func integer(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, v)
	}
	return d, nil
}
