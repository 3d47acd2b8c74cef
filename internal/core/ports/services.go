package ports

import (
	"context"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

// DEMSource performs the single outbound elevation request.
// A non-200 status or transport failure is returned as *domain.RequestError.
type DEMSource interface {
	FetchDEM(ctx context.Context, box domain.BoundingBox, apiKey string) ([]byte, error)
}

// CredentialSource yields the elevation API key. It is read once per
// download attempt and never cached by callers.
type CredentialSource interface {
	APIKey() string
}

// EventPublisher publishes download outcome events to a message broker.
type EventPublisher interface {
	PublishDownloadEvent(ctx context.Context, event *domain.DownloadEvent) error
}

// EventSubscriber subscribes to download outcome events.
type EventSubscriber interface {
	SubscribeDownloadEvents(ctx context.Context, handler func(ctx context.Context, event *domain.DownloadEvent) error) error
}

// CacheService is a byte-oriented key/value store with TTLs.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
