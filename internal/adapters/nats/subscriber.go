package natsadapter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber over core NATS.
type Subscriber struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{conn: conn}, nil
}

// SubscribeDownloadEvents delivers every outcome event to handler until the
// subscriber is closed. Undecodable messages are logged and skipped.
func (s *Subscriber) SubscribeDownloadEvents(ctx context.Context, handler func(ctx context.Context, event *domain.DownloadEvent) error) error {
	sub, err := s.conn.Subscribe(SubjectPrefix+">", func(msg *nats.Msg) {
		event, err := decodeEvent(msg.Data)
		if err != nil {
			slog.Warn("skipping malformed download event", "subject", msg.Subject, "error", err)
			return
		}
		if err := handler(ctx, event); err != nil {
			slog.Warn("download event handler failed", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func decodeEvent(data []byte) (*domain.DownloadEvent, error) {
	var event domain.DownloadEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Close unsubscribes and drains the connection.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
