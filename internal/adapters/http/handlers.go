package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/demfetch/internal/core/domain"
	"github.com/samirrijal/demfetch/internal/pkg/geospatial"
	"github.com/samirrijal/demfetch/internal/pkg/kmlexport"
)

// BoxDisplay holds the edges formatted to four decimals for status lines.
type BoxDisplay struct {
	South string `json:"south"`
	North string `json:"north"`
	West  string `json:"west"`
	East  string `json:"east"`
	Text  string `json:"text"`
}

// SelectionResponse is the current box of a session.
type SelectionResponse struct {
	Box        domain.BoundingBox     `json:"box"`
	Display    BoxDisplay             `json:"display"`
	Source     domain.SelectionSource `json:"source"`
	SelectedAt time.Time              `json:"selected_at"`
	Center     domain.GeoPoint        `json:"center"`
	AreaKm2    float64                `json:"area_km2"`
	WidthM     float64                `json:"width_m"`
	HeightM    float64                `json:"height_m"`
}

// DownloadResponse reports a completed download.
type DownloadResponse struct {
	Path       string             `json:"path"`
	Bytes      int                `json:"bytes"`
	SizeKB     float64            `json:"size_kb"`
	Box        domain.BoundingBox `json:"box"`
	DurationMS int64              `json:"duration_ms"`
}

func newSelectionResponse(sel *domain.StoredSelection) SelectionResponse {
	b := sel.Box
	width, height := geospatial.BoxDimensions(b.South, b.North, b.West, b.East)
	return SelectionResponse{
		Box: b,
		Display: BoxDisplay{
			South: fmt.Sprintf("%.4f", b.South),
			North: fmt.Sprintf("%.4f", b.North),
			West:  fmt.Sprintf("%.4f", b.West),
			East:  fmt.Sprintf("%.4f", b.East),
			Text:  b.String(),
		},
		Source:     sel.Source,
		SelectedAt: sel.SelectedAt,
		Center:     b.Center(),
		AreaKm2:    geospatial.BoxAreaKm2(b.South, b.North, b.West, b.East),
		WidthM:     width,
		HeightM:    height,
	}
}

func newDownloadResponse(res *domain.DownloadResult) DownloadResponse {
	return DownloadResponse{
		Path:       res.Path,
		Bytes:      res.Bytes,
		SizeKB:     res.SizeKB(),
		Box:        res.Box,
		DurationMS: res.Duration.Milliseconds(),
	}
}

// coordField accepts a coordinate typed as either a JSON string or a JSON
// number, keeping the raw text so the resolver does the parsing.
type coordField string

func (f *coordField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = coordField(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	*f = coordField(data)
	return nil
}

type manualRequest struct {
	South coordField `json:"south"`
	North coordField `json:"north"`
	West  coordField `json:"west"`
	East  coordField `json:"east"`
}

// SelectManualHandler resolves four typed edges into the session's box.
func SelectManualHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req manualRequest
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		sel := domain.ManualSelection(string(req.South), string(req.North), string(req.West), string(req.East))
		stored, err := deps.Selections.Select(c.UserContext(), sessionID(c), sel)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(newSelectionResponse(stored))
	}
}

// SelectDrawnHandler resolves a drawn GeoJSON shape into the session's box.
// For a FeatureCollection the last feature is the one that counts.
func SelectDrawnHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shape, err := domain.ParseShape(c.Body())
		if err != nil {
			return writeError(c, err)
		}

		stored, err := deps.Selections.Select(c.UserContext(), sessionID(c), domain.DrawnSelection(shape))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(newSelectionResponse(stored))
	}
}

// GetSelectionHandler returns the session's current box.
func GetSelectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stored, err := deps.Selections.Current(c.UserContext(), sessionID(c))
		if errors.Is(err, domain.ErrNoSelection) {
			return errNotFound(c, "no area selected")
		}
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(newSelectionResponse(stored))
	}
}

// ClearSelectionHandler forgets the session's box.
func ClearSelectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Selections.Clear(c.UserContext(), sessionID(c)); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SelectionKMLHandler exports the session's box as a KML polygon.
func SelectionKMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stored, err := deps.Selections.Current(c.UserContext(), sessionID(c))
		if errors.Is(err, domain.ErrNoSelection) {
			return errNotFound(c, "no area selected")
		}
		if err != nil {
			return writeError(c, err)
		}

		var buf bytes.Buffer
		if err := kmlexport.Write(&buf, "DEM selection", stored.Box); err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/vnd.google-earth.kml+xml")
		c.Attachment("selection.kml")
		return c.Send(buf.Bytes())
	}
}

// DownloadHandler runs one download attempt for the session's box. A failed
// attempt leaves the box in place so the client can simply retry.
func DownloadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := deps.Downloads.Download(c.UserContext(), sessionID(c))
		if err != nil {
			return writeError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(newDownloadResponse(res))
	}
}

// RasterHandler streams the last downloaded raster.
func RasterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := deps.Downloads.OutputPath()
		rc, size, err := deps.Rasters.OpenRaster(path)
		if errors.Is(err, fs.ErrNotExist) {
			return errNotFound(c, "no raster downloaded yet")
		}
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set(fiber.HeaderContentType, "image/tiff")
		c.Attachment(filepath.Base(path))
		return c.SendStream(rc, int(size))
	}
}
