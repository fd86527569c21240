package dto

import (
	"time"

	"github.com/soundprediction/reviewgraph/pkg/graph"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// FactResult is one active review fact in a snapshot.
type FactResult struct {
	Seq       uint64     `json:"seq"`
	Brand     string     `json:"brand"`
	ReviewID  string     `json:"review_id"`
	Snippet   string     `json:"snippet"`
	Topic     string     `json:"topic"`
	Sentiment string     `json:"sentiment"`
	Line      string     `json:"line"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// NewFactResult converts a graph fact.
func NewFactResult(f graph.Fact) FactResult {
	return FactResult{
		Seq:       f.Seq,
		Brand:     f.Brand,
		ReviewID:  f.ReviewID,
		Snippet:   f.Snippet,
		Topic:     f.Topic.String(),
		Sentiment: f.Sentiment.String(),
		Line:      f.Line(),
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
}
