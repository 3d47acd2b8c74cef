package ports

import (
	"context"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

// SelectionStore holds the current bounding box per session.
// Save overwrites; Load returns domain.ErrNoSelection when the slot is empty.
type SelectionStore interface {
	Save(ctx context.Context, sessionID string, sel *domain.StoredSelection) error
	Load(ctx context.Context, sessionID string) (*domain.StoredSelection, error)
	Delete(ctx context.Context, sessionID string) error
}

// RasterSink persists downloaded raster bytes.
type RasterSink interface {
	// WriteRaster replaces the file at path with data.
	WriteRaster(ctx context.Context, path string, data []byte) error
}
