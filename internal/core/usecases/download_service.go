package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/demfetch/internal/core/domain"
	"github.com/samirrijal/demfetch/internal/core/ports"
	"github.com/samirrijal/demfetch/internal/pkg/geospatial"
	"github.com/samirrijal/demfetch/internal/pkg/logging"
	"github.com/samirrijal/demfetch/internal/pkg/metrics"
	"github.com/samirrijal/demfetch/internal/pkg/telemetry"
)

// DownloadOptions tunes DownloadService.
type DownloadOptions struct {
	OutputPath string
	Timeout    time.Duration // 0 means no deadline beyond the caller's
	MaxAreaKm2 float64       // 0 disables the area check
	Dataset    string        // reported in spans only
}

// DownloadService fetches DEM rasters for resolved bounding boxes.
type DownloadService struct {
	selections ports.SelectionStore
	creds      ports.CredentialSource
	dem        ports.DEMSource
	rasters    ports.RasterSink
	events     ports.EventPublisher
	opts       DownloadOptions
	now        func() time.Time
}

// NewDownloadService creates a new DownloadService. events may be nil.
func NewDownloadService(
	selections ports.SelectionStore,
	creds ports.CredentialSource,
	dem ports.DEMSource,
	rasters ports.RasterSink,
	events ports.EventPublisher,
	opts DownloadOptions,
) *DownloadService {
	return &DownloadService{
		selections: selections,
		creds:      creds,
		dem:        dem,
		rasters:    rasters,
		events:     events,
		opts:       opts,
		now:        time.Now,
	}
}

// OutputPath returns the configured raster path.
func (s *DownloadService) OutputPath() string {
	return s.opts.OutputPath
}

// Download runs one attempt for the session's current box. The credential is
// read once per call. The stored box is never modified, so a failed attempt
// can be retried without selecting the area again.
func (s *DownloadService) Download(ctx context.Context, sessionID string) (*domain.DownloadResult, error) {
	sel, err := s.selections.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	res, err := s.FetchDEM(ctx, sel.Box, s.creds.APIKey(), s.opts.OutputPath)
	s.publish(ctx, sessionID, sel.Box, res, err)
	return res, err
}

// FetchDEM requests the raster covering box and writes it to outPath.
// Nothing is written unless the upstream answers 200.
func (s *DownloadService) FetchDEM(ctx context.Context, box domain.BoundingBox, apiKey, outPath string) (*domain.DownloadResult, error) {
	log := logging.FromContext(ctx)

	// Rejections happen before any request, so the attempt stays idle.
	reject := func(outcome string, err error) (*domain.DownloadResult, error) {
		metrics.DownloadsTotal.WithLabelValues(outcome).Inc()
		log.Warn("DEM download rejected", "state", domain.DownloadIdle, "error", err)
		return nil, err
	}

	if apiKey == "" {
		return reject(metrics.OutcomeConfigError, &domain.ConfigError{Reason: "missing credential"})
	}
	if err := box.Validate(); err != nil {
		return reject(metrics.OutcomeInvalid, err)
	}
	area := geospatial.BoxAreaKm2(box.South, box.North, box.West, box.East)
	if s.opts.MaxAreaKm2 > 0 && area > s.opts.MaxAreaKm2 {
		return reject(metrics.OutcomeInvalid, &domain.ValidationError{
			Reason: fmt.Sprintf("area %.0f km² exceeds the %.0f km² limit", area, s.opts.MaxAreaKm2),
		})
	}

	ctx, span := otel.Tracer("demfetch/usecases").Start(ctx, telemetry.SpanFetchDEM)
	defer span.End()
	span.SetAttributes(
		attribute.Float64(telemetry.AttrSouth, box.South),
		attribute.Float64(telemetry.AttrNorth, box.North),
		attribute.Float64(telemetry.AttrWest, box.West),
		attribute.Float64(telemetry.AttrEast, box.East),
		attribute.Float64(telemetry.AttrAreaKm2, area),
		attribute.String(telemetry.AttrDataset, s.opts.Dataset),
	)

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	log.Info("downloading DEM", "state", domain.DownloadRequesting, "bbox", box.String(), "area_km2", area)
	metrics.DownloadsInFlight.Inc()
	start := s.now()
	body, err := s.dem.FetchDEM(ctx, box, apiKey)
	elapsed := s.now().Sub(start)
	metrics.DownloadsInFlight.Dec()

	if err != nil {
		var reqErr *domain.RequestError
		if !errors.As(err, &reqErr) {
			reqErr = &domain.RequestError{Err: err}
			err = reqErr
		}
		outcome := metrics.OutcomeTransport
		status := "transport_error"
		if reqErr.StatusCode != 0 {
			outcome = metrics.OutcomeUpstreamError
			status = strconv.Itoa(reqErr.StatusCode)
			span.SetAttributes(attribute.Int(telemetry.AttrStatus, reqErr.StatusCode))
		}
		metrics.UpstreamDuration.WithLabelValues(status).Observe(elapsed.Seconds())
		metrics.DownloadsTotal.WithLabelValues(outcome).Inc()
		span.SetAttributes(attribute.String(telemetry.AttrOutcome, outcome))
		span.SetStatus(codes.Error, err.Error())
		log.Warn("DEM download failed", "state", domain.DownloadFailed, "error", err)
		return nil, err
	}
	metrics.UpstreamDuration.WithLabelValues("200").Observe(elapsed.Seconds())

	if err := s.rasters.WriteRaster(ctx, outPath, body); err != nil {
		metrics.DownloadsTotal.WithLabelValues(metrics.OutcomeWriteError).Inc()
		span.SetStatus(codes.Error, err.Error())
		log.Error("write raster failed", "state", domain.DownloadFailed, "path", outPath, "error", err)
		return nil, fmt.Errorf("write raster: %w", err)
	}

	metrics.DownloadsTotal.WithLabelValues(metrics.OutcomeSucceeded).Inc()
	metrics.DownloadBytes.Observe(float64(len(body)))
	span.SetAttributes(
		attribute.String(telemetry.AttrOutcome, metrics.OutcomeSucceeded),
		attribute.Int(telemetry.AttrBytes, len(body)),
	)

	res := &domain.DownloadResult{Path: outPath, Bytes: len(body), Box: box, Duration: elapsed}
	log.Info("DEM download complete", "state", domain.DownloadSucceeded, "path", outPath, "size_kb", fmt.Sprintf("%.1f", res.SizeKB()))
	return res, nil
}

func (s *DownloadService) publish(ctx context.Context, sessionID string, box domain.BoundingBox, res *domain.DownloadResult, err error) {
	if s.events == nil {
		return
	}

	ev := &domain.DownloadEvent{SessionID: sessionID, Box: box, At: s.now().UTC()}
	if err != nil {
		ev.State = domain.DownloadFailed
		ev.Error = err.Error()
		var reqErr *domain.RequestError
		if errors.As(err, &reqErr) {
			ev.StatusCode = reqErr.StatusCode
		}
	} else {
		ev.State = domain.DownloadSucceeded
		ev.Path = res.Path
		ev.Bytes = res.Bytes
	}

	if perr := s.events.PublishDownloadEvent(ctx, ev); perr != nil {
		logging.FromContext(ctx).Warn("publish download event failed", "error", perr)
	}
}
