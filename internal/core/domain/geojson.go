package domain

import (
	"encoding/json"
	"fmt"
)

// GeoJSON is the subset of a GeoJSON document a drawing surface sends:
// a bare Geometry, a Feature, or a FeatureCollection.
type GeoJSON struct {
	Type        string          `json:"type"`
	Geometry    *GeoJSON        `json:"geometry,omitempty"`
	Features    []GeoJSON       `json:"features,omitempty"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
}

// ParseShape decodes a GeoJSON document into the Shape of its last drawn
// geometry. Non-polygon geometries yield a Shape with only Type set so the
// resolver can reject them.
func ParseShape(data []byte) (Shape, error) {
	var doc GeoJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return Shape{}, &ValidationError{Reason: "invalid GeoJSON"}
	}
	return doc.Shape()
}

// Shape extracts the last drawn geometry.
func (g GeoJSON) Shape() (Shape, error) {
	switch g.Type {
	case "FeatureCollection":
		if len(g.Features) == 0 {
			return Shape{}, &ValidationError{Reason: "no shape drawn"}
		}
		return g.Features[len(g.Features)-1].Shape()
	case "Feature":
		if g.Geometry == nil {
			return Shape{}, &ValidationError{Reason: "feature has no geometry"}
		}
		return g.Geometry.Shape()
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return Shape{}, &ValidationError{Reason: "invalid polygon coordinates"}
		}
		if len(rings) == 0 {
			return Shape{Type: g.Type}, nil
		}
		ring := make([]GeoPoint, 0, len(rings[0]))
		for i, pos := range rings[0] {
			if len(pos) < 2 {
				return Shape{}, &ValidationError{Reason: fmt.Sprintf("position %d needs longitude and latitude", i)}
			}
			ring = append(ring, GeoPoint{Lon: pos[0], Lat: pos[1]})
		}
		return Shape{Type: g.Type, Ring: ring}, nil
	case "":
		return Shape{}, &ValidationError{Reason: "missing GeoJSON type"}
	default:
		return Shape{Type: g.Type}, nil
	}
}
