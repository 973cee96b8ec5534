package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/livinlefevreloca/fakeout/internal/synth"
)

// NATSSink publishes batches to a NATS subject. Each tick becomes one
// message whose payload is the whole batch JSON-encoded as an array, so a
// batch is either published in full or not at all.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSink connects to the configured NATS server
func NewNATSSink(cfg Config) (*NATSSink, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("fakeout"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", cfg.URL, err)
	}

	return &NATSSink{
		conn:    conn,
		subject: cfg.Subject,
	}, nil
}

// Deliver publishes the batch and flushes so connectivity errors surface on
// the tick that caused them. Message-bus deliveries leave no artifact, so the
// returned location is empty.
func (s *NATSSink) Deliver(ctx context.Context, at time.Time, batch []synth.Record) (string, error) {
	payload, err := Encode(FiletypeJSON, batch)
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}

	msg := nats.NewMsg(s.subject)
	msg.Header.Set("Nats-Msg-Id", uuid.New().String())
	msg.Data = payload

	if err := s.conn.PublishMsg(msg); err != nil {
		return "", fmt.Errorf("publish to %s: %w", s.subject, err)
	}

	if err := s.conn.FlushWithContext(ctx); err != nil {
		return "", fmt.Errorf("flush to %s: %w", s.subject, err)
	}

	return "", nil
}

// Delete is a no-op: published messages are not retained artifacts
func (s *NATSSink) Delete(ctx context.Context, location string) error {
	return nil
}

// Close drains and closes the connection
func (s *NATSSink) Close() error {
	return s.conn.Drain()
}
