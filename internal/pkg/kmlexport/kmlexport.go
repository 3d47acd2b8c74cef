// Package kmlexport renders a bounding box as a KML polygon so the selected
// area can be previewed in Google Earth or QGIS before downloading.
package kmlexport

import (
	"fmt"
	"image/color"
	"io"

	kml "github.com/twpayne/go-kml"

	"github.com/samirrijal/demfetch/internal/core/domain"
)

const styleID = "styleSelection"

// Document builds a KML document holding one placemark that outlines box.
func Document(name string, box domain.BoundingBox) *kml.CompoundElement {
	corners := box.Corners()
	coords := make([]kml.Coordinate, 0, len(corners))
	for _, p := range corners {
		coords = append(coords, kml.Coordinate{Lon: p.Lon, Lat: p.Lat})
	}

	return kml.KML(
		kml.Document(
			kml.Name(name),
			kml.SharedStyle(
				styleID,
				kml.LineStyle(
					kml.Width(2.0),
					kml.Color(color.RGBA{R: 0xff, G: 0x78, B: 0x00, A: 0xff}),
				),
				kml.PolyStyle(
					kml.Color(color.RGBA{R: 0xff, G: 0x78, B: 0x00, A: 0x40}),
				),
			),
			kml.Placemark(
				kml.Name(name),
				kml.Description(box.String()),
				kml.StyleURL("#"+styleID),
				kml.Polygon(
					kml.OuterBoundaryIs(
						kml.LinearRing(
							kml.Coordinates(coords...),
						),
					),
				),
			),
		),
	)
}

// Write encodes the KML document for box to w.
func Write(w io.Writer, name string, box domain.BoundingBox) error {
	if err := Document(name, box).WriteIndent(w, "", "  "); err != nil {
		return fmt.Errorf("write kml: %w", err)
	}
	return nil
}
