package domain

import "time"

// SelectionSource tags which input modality produced a bounding box.
type SelectionSource string

const (
	SourceManual SelectionSource = "manual"
	SourceDrawn  SelectionSource = "drawn"
)

// ManualInput holds the four raw coordinate fields as typed by the user.
type ManualInput struct {
	South string `json:"south"`
	North string `json:"north"`
	West  string `json:"west"`
	East  string `json:"east"`
}

// Selection is one user selection: either manual fields or a drawn shape,
// depending on Source.
type Selection struct {
	Source SelectionSource
	Manual ManualInput
	Shape  Shape
}

// ManualSelection wraps raw text fields into a Selection.
func ManualSelection(south, north, west, east string) Selection {
	return Selection{
		Source: SourceManual,
		Manual: ManualInput{South: south, North: north, West: west, East: east},
	}
}

// DrawnSelection wraps a drawn shape into a Selection.
func DrawnSelection(shape Shape) Selection {
	return Selection{Source: SourceDrawn, Shape: shape}
}

// StoredSelection is the current bounding box held for a session.
type StoredSelection struct {
	Box        BoundingBox     `json:"box"`
	Source     SelectionSource `json:"source"`
	SelectedAt time.Time       `json:"selected_at"`
}
