package usecases

import (
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

// Resolve turns either input modality into a bounding box.
func Resolve(sel domain.Selection) (domain.BoundingBox, error) {
	switch sel.Source {
	case domain.SourceManual:
		return ResolveManual(sel.Manual)
	case domain.SourceDrawn:
		return ResolvePolygon(sel.Shape)
	default:
		return domain.BoundingBox{}, &domain.ValidationError{Reason: "unknown selection source"}
	}
}

// ResolveManual parses four coordinate fields. The values are returned as
// typed; ordering is checked only when a download is requested.
func ResolveManual(in domain.ManualInput) (domain.BoundingBox, error) {
	fields := [4]string{in.South, in.North, in.West, in.East}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.BoundingBox{}, &domain.ValidationError{Reason: "non-numeric input"}
		}
		vals[i] = v
	}
	return domain.BoundingBox{South: vals[0], North: vals[1], West: vals[2], East: vals[3]}, nil
}

// ResolvePolygon derives the box spanning every vertex of a closed ring.
func ResolvePolygon(s domain.Shape) (domain.BoundingBox, error) {
	if s.Type != "Polygon" || len(s.Ring) < 3 || !s.Closed() {
		return domain.BoundingBox{}, &domain.ValidationError{Reason: "not a polygon"}
	}

	box := domain.BoundingBox{
		South: math.Inf(1),
		North: math.Inf(-1),
		West:  math.Inf(1),
		East:  math.Inf(-1),
	}
	for _, p := range s.Ring {
		box.South = math.Min(box.South, p.Lat)
		box.North = math.Max(box.North, p.Lat)
		box.West = math.Min(box.West, p.Lon)
		box.East = math.Max(box.East, p.Lon)
	}
	return box, nil
}
