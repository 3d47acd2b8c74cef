package telemetry

// Span and attribute names used for instrumentation.
const (
	SpanFetchDEM = "dem.fetch"
	SpanSelect   = "selection.resolve"

	AttrSouth   = "bbox.south"
	AttrNorth   = "bbox.north"
	AttrWest    = "bbox.west"
	AttrEast    = "bbox.east"
	AttrAreaKm2 = "bbox.area_km2"
	AttrSource  = "selection.source"
	AttrStatus  = "http.status_code"
	AttrBytes   = "dem.bytes"
	AttrDataset = "dem.dataset"
	AttrOutcome = "dem.outcome"
)
