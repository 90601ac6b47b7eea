package model

import (
	"time"
)

// AllCategories is the sentinel selector value that disables category
// filtering.
const AllCategories = "all"

// Record is a single submission row. Latitude and Longitude are resolved
// from the primary coordinate pair when both halves are present, otherwise
// from the secondary pair; nil means the row carries no usable position.
type Record struct {
	ID        string
	Category  string
	Timestamp *time.Time
	Latitude  *float64
	Longitude *float64
	// Fields keeps the original cell values keyed by column name so the
	// missing-coordinates report and CSV export can show rows as uploaded.
	Fields map[string]string
}

// Dataset is the parsed upload. It is immutable after loading; every UI
// interaction re-derives its views from the same records.
type Dataset struct {
	Key        string
	Filename   string
	Columns    []string
	Records    []Record
	Categories []string
	UploadedAt time.Time
}

type TimelinePoint struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

type MapPoint struct {
	ID        string  `json:"id"`
	Category  string  `json:"category"`
	Timestamp string  `json:"timestamp"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type MapView struct {
	Points    []MapPoint `json:"points"`
	CenterLat float64    `json:"centerLat"`
	CenterLon float64    `json:"centerLon"`
	Zoom      int        `json:"zoom"`
	Empty     bool       `json:"empty"`
}

type MissingReport struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Count   int        `json:"count"`
}

type DatasetSummary struct {
	Key        string   `json:"key"`
	Filename   string   `json:"filename"`
	RowCount   int      `json:"rowCount"`
	Categories []string `json:"categories"`
}
