package reviewgraph

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/graph"
)

var (
	// ErrInvalidDate is returned for query dates that cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
	// ErrUnknownBrand is returned by strict queries for brands absent from the graph.
	ErrUnknownBrand = errors.New("unknown brand")
)

// SnapshotQuery selects the facts active on a date.
type SnapshotQuery struct {
	// Date is YYYY-MM-DD; other common layouts are accepted too.
	Date string
	// Brand is a case-insensitive substring filter. Empty matches all.
	Brand string
	// Strict requires Brand to name a brand node exactly, ignoring case.
	Strict bool
}

// SnapshotResult is a rendered snapshot together with its facts.
type SnapshotResult struct {
	Date   time.Time    `json:"date" yaml:"date"`
	Brand  string       `json:"brand,omitempty" yaml:"brand,omitempty"`
	Text   string       `json:"text" yaml:"text"`
	Facts  []graph.Fact `json:"facts" yaml:"facts"`
	NoData bool         `json:"no_data" yaml:"no_data"`
}

// ParseQueryDate parses a query date as midnight UTC.
func ParseQueryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse(config.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

// QuerySnapshot runs q against g.
func QuerySnapshot(g *graph.TemporalGraph, q SnapshotQuery) (*SnapshotResult, error) {
	date, err := ParseQueryDate(q.Date)
	if err != nil {
		return nil, err
	}

	brand := strings.TrimSpace(q.Brand)
	if q.Strict && brand != "" {
		canonical, ok := g.FindBrand(brand)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBrand, brand)
		}
		brand = canonical
	}

	facts := g.SnapshotFacts(date, brand)
	if facts == nil {
		facts = []graph.Fact{}
	}
	return &SnapshotResult{
		Date:   date,
		Brand:  brand,
		Text:   graph.RenderFacts(facts),
		Facts:  facts,
		NoData: len(facts) == 0,
	}, nil
}
