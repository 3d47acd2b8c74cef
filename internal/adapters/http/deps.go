package http

import (
	"io"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/demfetch/internal/adapters/valkey"
	"github.com/samirrijal/demfetch/internal/core/ports"
	"github.com/samirrijal/demfetch/internal/core/usecases"
)

// RasterSource opens the most recently downloaded raster.
type RasterSource interface {
	OpenRaster(path string) (io.ReadCloser, int64, error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Selections *usecases.SelectionService
	Downloads  *usecases.DownloadService
	Rasters    RasterSource
	Creds      ports.CredentialSource
	NATS       *nats.Conn
	Cache      *valkey.Cache

	RequestTimeout  time.Duration // plain API calls
	DownloadTimeout time.Duration // POST /v1/downloads, covers the upstream call
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout > 0 {
		return d.RequestTimeout
	}
	return 15 * time.Second
}

func (d *Dependencies) downloadTimeout() time.Duration {
	if d.DownloadTimeout > 0 {
		return d.DownloadTimeout
	}
	return 150 * time.Second
}
