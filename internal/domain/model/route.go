package model

// RoutePoint is a single WGS84 coordinate in degrees.
type RoutePoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Route is an ordered point sequence. Segments of a source track are
// concatenated in file order without reordering or deduplication.
type Route []RoutePoint
