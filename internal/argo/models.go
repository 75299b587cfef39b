package argo

// VariableSet selects which measurement variables a query extracts.
type VariableSet string

const (
	VariableSetCore VariableSet = "core"
	VariableSetBio  VariableSet = "bio"
	VariableSetAll  VariableSet = "all"
)

// ProfileRecord is one line of the global profile index, immutable once
// loaded. Date and DateUpdate are fixed-width YYYYMMDDHHMMSS strings, so
// lexicographic order equals chronological order.
type ProfileRecord struct {
	File         string  `json:"file"`
	Date         string  `json:"date"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Ocean        string  `json:"ocean"`
	ProfilerType string  `json:"profilerType"`
	Institution  string  `json:"institution"`
	DateUpdate   string  `json:"dateUpdate"`
}

// Bounds is a geographic bounding box in degrees. Intervals are closed.
type Bounds struct {
	North float64 `json:"north" validate:"max=90,gtefield=South"`
	South float64 `json:"south" validate:"min=-90"`
	East  float64 `json:"east" validate:"min=-180,max=180"`
	West  float64 `json:"west" validate:"min=-180,max=180"`
}

// Contains reports whether the point lies inside the box, boundary
// included. West > East matches nothing; antimeridian wraparound is not
// supported.
func (b Bounds) Contains(lat, lon float64) bool {
	return b.South <= lat && lat <= b.North &&
		b.West <= lon && lon <= b.East
}

// SearchParams carries the date range (inclusive calendar dates), depth
// range (pressure used directly as a depth proxy), and variable selection.
type SearchParams struct {
	StartDate string      `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string      `json:"endDate" validate:"required,datetime=2006-01-02"`
	MinDepth  float64     `json:"minDepth" validate:"min=0"`
	MaxDepth  float64     `json:"maxDepth" validate:"gtefield=MinDepth"`
	Type      VariableSet `json:"type" validate:"required,oneof=core bio all"`
}

// ProcessRequest is the single validated request shape shared by the
// bounded and progressive query paths.
type ProcessRequest struct {
	Bounds Bounds       `json:"bounds"`
	Params SearchParams `json:"params"`
}

// MeasurementRow is one extracted per-depth record joined with its
// profile's metadata. Values uses NaN as the missing sentinel; the CSV
// layer renders it as an empty cell. Never mutated after creation.
type MeasurementRow struct {
	Depth  float64
	Values map[string]float64
	Flags  map[string]string

	Date        string
	Lat         float64
	Lon         float64
	File        string
	PlatformID  string
	CycleNumber string
	Institution string
	Ocean       string
}
