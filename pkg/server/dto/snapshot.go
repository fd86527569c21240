package dto

import (
	"time"

	"github.com/soundprediction/reviewgraph/pkg/graph"
)

// SnapshotQuery binds GET /api/v1/snapshot query parameters.
type SnapshotQuery struct {
	Date   string `form:"date" binding:"required"`
	Brand  string `form:"brand"`
	Strict bool   `form:"strict"`
}

// SnapshotResponse is the snapshot text plus its structured facts.
type SnapshotResponse struct {
	Date   string       `json:"date"`
	Brand  string       `json:"brand,omitempty"`
	Text   string       `json:"text"`
	Facts  []FactResult `json:"facts"`
	Total  int          `json:"total"`
	NoData bool         `json:"no_data"`
}

// BrandsQuery binds GET /api/v1/brands query parameters.
type BrandsQuery struct {
	Query string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=0"`
}

// BrandsResponse lists brand ids in sorted order.
type BrandsResponse struct {
	Brands []string `json:"brands"`
	Total  int      `json:"total"`
}

// StatsResponse reports graph counts.
type StatsResponse struct {
	graph.Stats
	LoadedAt time.Time `json:"loaded_at"`
}
