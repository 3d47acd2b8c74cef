package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

// SubjectPrefix is the root of every download outcome subject.
const SubjectPrefix = "dem.download."

// Subject returns the subject an event is published on, e.g.
// dem.download.succeeded.
func Subject(event *domain.DownloadEvent) string {
	return SubjectPrefix + string(event.State)
}

// Publisher implements ports.EventPublisher over core NATS. Outcome events
// are fire-and-forget notifications and are not persisted.
type Publisher struct {
	conn *nats.Conn
}

// Connect dials NATS with reconnects enabled.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("demfetch"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return conn, nil
}

// NewPublisher connects to NATS.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn}, nil
}

func (p *Publisher) PublishDownloadEvent(ctx context.Context, event *domain.DownloadEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(Subject(event), data)
}

// Conn exposes the underlying connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}
