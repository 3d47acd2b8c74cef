package domain

import (
	"fmt"
	"math"
)

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox is a rectangular extent in degrees.
type BoundingBox struct {
	South float64 `json:"south"`
	North float64 `json:"north"`
	West  float64 `json:"west"`
	East  float64 `json:"east"`
}

// Corners returns the closed ring SW, SE, NE, NW, SW.
func (b BoundingBox) Corners() []GeoPoint {
	return []GeoPoint{
		{Lat: b.South, Lon: b.West},
		{Lat: b.South, Lon: b.East},
		{Lat: b.North, Lon: b.East},
		{Lat: b.North, Lon: b.West},
		{Lat: b.South, Lon: b.West},
	}
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() GeoPoint {
	return GeoPoint{Lat: (b.South + b.North) / 2, Lon: (b.West + b.East) / 2}
}

// String formats the box the way it is shown to users: four decimal places.
func (b BoundingBox) String() string {
	return fmt.Sprintf("S=%.4f, N=%.4f, W=%.4f, E=%.4f", b.South, b.North, b.West, b.East)
}

// Validate checks that the box is well formed: finite values, latitudes
// within ±90, longitudes within ±180, south < north and west < east.
func (b BoundingBox) Validate() error {
	for _, v := range []float64{b.South, b.North, b.West, b.East} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ValidationError{Reason: "coordinates must be finite numbers"}
		}
	}
	if math.Abs(b.South) > 90 || math.Abs(b.North) > 90 {
		return &ValidationError{Reason: "latitude must be between -90 and 90"}
	}
	if math.Abs(b.West) > 180 || math.Abs(b.East) > 180 {
		return &ValidationError{Reason: "longitude must be between -180 and 180"}
	}
	if b.South >= b.North {
		return &ValidationError{Reason: "south must be less than north"}
	}
	if b.West >= b.East {
		return &ValidationError{Reason: "west must be less than east"}
	}
	return nil
}

// Shape is a drawn geometry reduced to its type and outer ring.
// Ring vertices are ordered; a closed ring repeats its first vertex last.
type Shape struct {
	Type string     `json:"type"`
	Ring []GeoPoint `json:"ring"`
}

// Closed reports whether the ring's first and last vertices coincide.
func (s Shape) Closed() bool {
	if len(s.Ring) == 0 {
		return false
	}
	return s.Ring[0] == s.Ring[len(s.Ring)-1]
}
