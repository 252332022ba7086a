package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
)

const TypeMatchFinished = "match-finished"

// Message is the envelope every published event uses.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Publisher is the part of *nats.Conn used here.
type Publisher interface {
	Publish(subj string, data []byte) error
}

// NatsPublisher announces finished matches for analytics consumers.
type NatsPublisher struct {
	conn    Publisher
	subject string
}

func NewNatsPublisher(conn Publisher, subjectPrefix string) *NatsPublisher {
	if subjectPrefix == "" {
		subjectPrefix = "mangues"
	}
	return &NatsPublisher{conn: conn, subject: subjectPrefix + ".match.finished"}
}

// Connect dials url, retrying in the background if the server is not up yet.
func Connect(url string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("mangues-quiz"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats: connect: %w", err)
	}
	return nc, nil
}

func (p *NatsPublisher) Subject() string {
	return p.subject
}

// RecordMatch implements game.ResultSink.
func (p *NatsPublisher) RecordMatch(ctx context.Context, result domain.MatchResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(Message{Type: TypeMatchFinished, Data: result})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedPublishError, err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("%w: %w", domain.UnexpectedPublishError, err)
	}
	return nil
}
