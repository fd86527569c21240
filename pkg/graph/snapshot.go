package graph

import (
	"fmt"
	"strings"
	"time"

	"github.com/soundprediction/reviewgraph/pkg/types"
)

const (
	// NoDataSentinel is returned by Snapshot when no edge qualifies.
	NoDataSentinel = "No recorded events found for this brand in this period."

	// MissingTextPlaceholder stands in for a review without a text property.
	MissingTextPlaceholder = "No text available"

	// MaxSnapshotFacts bounds the number of facts a snapshot returns.
	MaxSnapshotFacts = 50

	// SnippetRunes is the snippet length before the ellipsis is appended.
	SnippetRunes = 100
)

// Fact is one snapshot row: an active edge with its rendered snippet.
type Fact struct {
	Seq       uint64               `json:"seq" yaml:"seq"`
	Brand     string               `json:"brand" yaml:"brand"`
	ReviewID  string               `json:"review_id" yaml:"review_id"`
	Snippet   string               `json:"snippet" yaml:"snippet"`
	Topic     types.TopicLabel     `json:"topic" yaml:"topic"`
	Sentiment types.SentimentLabel `json:"sentiment" yaml:"sentiment"`
	StartDate time.Time            `json:"start_date" yaml:"start_date"`
	EndDate   *time.Time           `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// Line renders the fact in the snapshot text format.
func (f Fact) Line() string {
	return fmt.Sprintf("- Review: '%s' (Topic: %s, Sentiment: %s)", f.Snippet, f.Topic, f.Sentiment)
}

// SnapshotFacts returns the facts active on date, optionally restricted to
// edges where either endpoint id contains brandFilter ignoring case.
// Edges are scanned in commit order and only the last MaxSnapshotFacts
// matches are kept.
func (g *TemporalGraph) SnapshotFacts(date time.Time, brandFilter string) []Fact {
	g.mu.RLock()
	defer g.mu.RUnlock()

	needle := strings.ToLower(brandFilter)
	var facts []Fact
	for i := range g.edges {
		e := &g.edges[i]
		if !e.ActiveAt(date) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(e.SourceID), needle) &&
			!strings.Contains(strings.ToLower(e.TargetID), needle) {
			continue
		}
		facts = append(facts, Fact{
			Seq:       e.Seq,
			Brand:     e.SourceID,
			ReviewID:  e.TargetID,
			Snippet:   g.snippetLocked(e.TargetID),
			Topic:     e.Topic,
			Sentiment: e.Sentiment,
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
		})
	}
	if len(facts) > MaxSnapshotFacts {
		facts = facts[len(facts)-MaxSnapshotFacts:]
	}
	return facts
}

// Snapshot renders SnapshotFacts as newline-joined lines, or NoDataSentinel.
func (g *TemporalGraph) Snapshot(date time.Time, brandFilter string) string {
	return RenderFacts(g.SnapshotFacts(date, brandFilter))
}

// RenderFacts joins fact lines with newlines.
func RenderFacts(facts []Fact) string {
	if len(facts) == 0 {
		return NoDataSentinel
	}
	lines := make([]string, len(facts))
	for i, f := range facts {
		lines[i] = f.Line()
	}
	return strings.Join(lines, "\n")
}

func (g *TemporalGraph) snippetLocked(reviewID string) string {
	n, ok := g.nodes[nodeKey{typ: types.ReviewNodeType, id: reviewID}]
	if !ok {
		return MissingTextPlaceholder
	}
	text, ok := n.Text()
	if !ok {
		return MissingTextPlaceholder
	}
	return truncateRunes(text, SnippetRunes)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
