package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Gateway turns raw connections into coordinator peers.
type Gateway struct {
	ctx        context.Context
	dispatcher Dispatcher
	newId      func() string
	pingPeriod time.Duration
	log        zerolog.Logger
}

// NewGateway binds connections to ctx, which should live as long as the server.
func NewGateway(ctx context.Context, d Dispatcher, logger zerolog.Logger) *Gateway {
	return &Gateway{
		ctx:        ctx,
		dispatcher: d,
		newId:      uuid.NewString,
		pingPeriod: pingPeriod,
		log:        logger.With().Str("component", "gateway").Logger(),
	}
}

// Attach registers socket with the coordinator and starts its pumps.
// It returns the connection id, or "" when the coordinator is gone.
func (g *Gateway) Attach(socket Connection, userId string) string {
	cl := newClient(g.newId(), socket, g.log)
	if err := g.dispatcher.Connect(g.ctx, cl, userId); err != nil {
		g.log.Warn().Err(err).Msg("connection refused")
		socket.Close("server-unavailable")
		return ""
	}

	go cl.writePump(g.pingPeriod)
	go cl.readPump(g.ctx, g.dispatcher)
	return cl.id
}
