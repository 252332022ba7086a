package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const outboxSize = 256

var errPeerClosed = errors.New("peer-closed")

// client is one connection: a read pump feeding the coordinator and a write
// pump draining the outbox. It is the Peer the coordinator writes to.
type client struct {
	id        string
	socket    Connection
	outbox    chan []byte
	limiter   *rate.Limiter
	closed    chan struct{}
	closeOnce sync.Once
	log       zerolog.Logger
}

func newClient(id string, socket Connection, logger zerolog.Logger) *client {
	return &client{
		id:      id,
		socket:  socket,
		outbox:  make(chan []byte, outboxSize),
		limiter: rate.NewLimiter(5, 10),
		closed:  make(chan struct{}),
		log:     logger.With().Str("conn", id).Logger(),
	}
}

func (cl *client) ID() string { return cl.id }

// Send never blocks the coordinator: a full outbox drops the frame.
func (cl *client) Send(data []byte) error {
	select {
	case <-cl.closed:
		return errPeerClosed
	default:
	}

	select {
	case cl.outbox <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

func (cl *client) Close() {
	cl.closeOnce.Do(func() { close(cl.closed) })
}

func (cl *client) readPump(ctx context.Context, d Dispatcher) {
	defer func() {
		cl.Close()
		if err := d.Disconnect(ctx, cl.id); err != nil {
			cl.log.Debug().Err(err).Msg("disconnect not delivered")
		}
	}()

	for {
		data, err := cl.socket.Read()
		if err != nil {
			cl.log.Debug().Err(err).Msg("read ended")
			return
		}

		if !cl.limiter.Allow() {
			cl.log.Warn().Msg("rate limited, frame dropped")
			continue
		}

		msg, err := DecodeInbound(data)
		if err != nil {
			cl.log.Debug().Err(err).Msg("invalid frame")
			err = d.Reject(ctx, cl.id)
		} else {
			err = d.Deliver(ctx, cl.id, msg)
		}
		if err != nil {
			return
		}
	}
}

func (cl *client) writePump(period time.Duration) {
	ticker := time.NewTicker(period)
	defer func() {
		ticker.Stop()
		cl.socket.Close("")
	}()

	for {
		select {
		case data := <-cl.outbox:
			if err := cl.socket.Write(data); err != nil {
				cl.log.Debug().Err(err).Msg("write failed")
				return
			}
		case <-ticker.C:
			if err := cl.socket.Ping(); err != nil {
				cl.log.Debug().Err(err).Msg("ping failed")
				return
			}
		case <-cl.closed:
			return
		}
	}
}
