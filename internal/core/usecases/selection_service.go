package usecases

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/demfetch/internal/core/domain"
	"github.com/samirrijal/demfetch/internal/core/ports"
	"github.com/samirrijal/demfetch/internal/pkg/logging"
	"github.com/samirrijal/demfetch/internal/pkg/metrics"
	"github.com/samirrijal/demfetch/internal/pkg/telemetry"
)

// SelectionService keeps the current bounding box of each session.
type SelectionService struct {
	store ports.SelectionStore
	now   func() time.Time
}

// NewSelectionService creates a new SelectionService.
func NewSelectionService(store ports.SelectionStore) *SelectionService {
	return &SelectionService{store: store, now: time.Now}
}

// Select resolves sel and makes it the session's current box, replacing
// whatever was there regardless of which modality produced it. A selection
// that fails to resolve leaves the stored box untouched.
func (s *SelectionService) Select(ctx context.Context, sessionID string, sel domain.Selection) (*domain.StoredSelection, error) {
	ctx, span := otel.Tracer("demfetch/usecases").Start(ctx, telemetry.SpanSelect)
	defer span.End()
	span.SetAttributes(attribute.String(telemetry.AttrSource, string(sel.Source)))

	box, err := Resolve(sel)
	if err != nil {
		metrics.SelectionsTotal.WithLabelValues(string(sel.Source), "rejected").Inc()
		span.RecordError(err)
		return nil, err
	}

	stored := &domain.StoredSelection{Box: box, Source: sel.Source, SelectedAt: s.now().UTC()}
	if err := s.store.Save(ctx, sessionID, stored); err != nil {
		metrics.CacheErrors.WithLabelValues("save").Inc()
		return nil, fmt.Errorf("save selection: %w", err)
	}

	metrics.SelectionsTotal.WithLabelValues(string(sel.Source), "resolved").Inc()
	logging.FromContext(ctx).Info("area selected", "source", sel.Source, "bbox", box.String())
	return stored, nil
}

// Current returns the session's box, or domain.ErrNoSelection.
func (s *SelectionService) Current(ctx context.Context, sessionID string) (*domain.StoredSelection, error) {
	return s.store.Load(ctx, sessionID)
}

// Clear forgets the session's box.
func (s *SelectionService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		metrics.CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("clear selection: %w", err)
	}
	return nil
}
