package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vitoroliveiraifsp/Mangues-sub000/config"
	"github.com/vitoroliveiraifsp/Mangues-sub000/crypto"
	"github.com/vitoroliveiraifsp/Mangues-sub000/events"
	"github.com/vitoroliveiraifsp/Mangues-sub000/game"
	"github.com/vitoroliveiraifsp/Mangues-sub000/leaderboard"
	"github.com/vitoroliveiraifsp/Mangues-sub000/logger"
	"github.com/vitoroliveiraifsp/Mangues-sub000/migrations"
	"github.com/vitoroliveiraifsp/Mangues-sub000/questions"
	"github.com/vitoroliveiraifsp/Mangues-sub000/storage"
)

const (
	shutdownTimeout = 10 * time.Second
	tokenMaxAge     = 365 * 24 * time.Hour
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func RegisterRoutes(r *gin.Engine, h *game.Handler) {
	r.GET("/ws", h.Identify, h.WebsocketHandler)
	r.GET("/rooms", h.ListRoomsHandler)
	r.GET("/rooms/:code", h.GetRoomHandler)
	r.GET("/leaderboard", h.LeaderboardHandler)
}

// originChecker accepts websocket upgrades only from the configured origins.
func originChecker(allowedOrigins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
	}
}

// backends holds the optional dependencies and how to release them.
type backends struct {
	bank    game.QuestionBank
	sinks   game.MultiSink
	board   game.Leaderboard
	tokens  game.PlayerTokens
	closers []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func setupBackends(ctx context.Context, cfg config.Config, l zerolog.Logger) (*backends, error) {
	b := &backends{}

	if cfg.PostgresURL != "" {
		if err := migrations.Migrate(cfg.PostgresURL); err != nil {
			return b, err
		}
		repo, err := storage.NewPostgresRepo(ctx, cfg.PostgresURL)
		if err != nil {
			return b, err
		}
		b.closers = append(b.closers, repo.Close)
		b.bank = repo
		b.sinks = append(b.sinks, repo)
		l.Info().Msg("postgres question bank and match history enabled")
	} else {
		catalog, err := questions.Load()
		if err != nil {
			return b, err
		}
		b.bank = catalog
		l.Info().Int("questions", len(catalog.All())).Msg("using embedded question catalogue")
	}

	if cfg.RedisURL != "" {
		client, err := leaderboard.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return b, err
		}
		b.closers = append(b.closers, func() { client.Close() })
		board := leaderboard.NewRedisBoard(client, "")
		b.board = board
		b.sinks = append(b.sinks, board)
		l.Info().Msg("redis leaderboard enabled")
	}

	if cfg.NatsURL != "" {
		nc, err := events.Connect(cfg.NatsURL)
		if err != nil {
			return b, err
		}
		b.closers = append(b.closers, func() {
			if err := nc.Drain(); err != nil {
				nc.Close()
			}
		})
		b.sinks = append(b.sinks, events.NewNatsPublisher(nc, ""))
		l.Info().Msg("nats match events enabled")
	}

	if cfg.JWTKey != "" {
		b.tokens = crypto.NewJWTManager(cfg.JWTKey, tokenMaxAge)
	}

	return b, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	l := logger.Setup(cfg.LogLevel, cfg.LogPretty)
	if !cfg.LogPretty {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setupBackends(ctx, cfg, l)
	if err != nil {
		deps.close()
		l.Fatal().Err(err).Msg("backend setup failed")
	}
	defer deps.close()

	var sink game.ResultSink
	if len(deps.sinks) > 0 {
		sink = deps.sinks
	}

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	coordinator := game.NewCoordinator(game.Options{
		Bank:     deps.bank,
		Sink:     sink,
		Timing:   cfg.Timing,
		Defaults: cfg.Defaults,
		Logger:   l,
	})
	loopDone := make(chan struct{})
	go func() {
		coordinator.Run(loopCtx)
		close(loopDone)
	}()

	gateway := game.NewGateway(loopCtx, coordinator, l)
	handler := game.NewHandler(gateway, coordinator, deps.board, deps.tokens, originChecker(cfg.AllowedOrigins), l)

	r := CreateServer(cfg.AllowedOrigins)
	RegisterRoutes(r, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		l.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error().Err(err).Msg("listen failed")
			stop()
		}
	}()

	<-ctx.Done()
	l.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("http shutdown")
	}

	cancelLoop()
	<-loopDone
	l.Info().Msg("shut down")
}
