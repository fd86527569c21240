package graph

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/reviewgraph/pkg/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func addReview(g *TemporalGraph, brand, id, text string, topic types.TopicLabel, mood types.SentimentLabel, start time.Time) uint64 {
	return g.AddFact(
		types.NewBrandNode(brand),
		types.NewReviewNode(id, text),
		types.NewReviewEdge(topic, mood, start),
	)
}

func TestAppleScenario(t *testing.T) {
	g := New()
	addReview(g, "Apple", "Rev_x_1", "Screen cracked fast", types.TopicQuality, types.SentimentNegative, date(2016, 6, 1))

	got := g.Snapshot(date(2016, 9, 1), "apple")
	assert.Equal(t, "- Review: 'Screen cracked fast' (Topic: Quality, Sentiment: Negative)", got)

	assert.Equal(t, NoDataSentinel, g.Snapshot(date(2015, 1, 1), "apple"))
}

func TestAddFactAssignsSequenceAndEndpoints(t *testing.T) {
	g := New()
	edge := types.NewReviewEdge(types.TopicPrice, types.SentimentPositive, date(2020, 1, 1))
	edge.SourceID = "ignored"
	edge.Seq = 42

	seq0 := g.AddFact(types.NewBrandNode("Sony"), types.NewReviewNode("Rev_a_0", "cheap"), edge)
	seq1 := g.AddFact(types.NewBrandNode("Sony"), types.NewReviewNode("Rev_a_1", "cheaper"), edge)

	assert.Equal(t, uint64(0), seq0)
	assert.Equal(t, uint64(1), seq1)
	assert.Equal(t, 3, g.NodeCount(), "brand node is shared")
	assert.Equal(t, 2, g.EdgeCount(), "multi-edge keeps one edge per review")

	edges := g.Edges()
	assert.Equal(t, "Sony", edges[0].SourceID)
	assert.Equal(t, "Rev_a_1", edges[1].TargetID)
}

func TestNodePropertiesAreWriteOnce(t *testing.T) {
	g := New()
	addReview(g, "Sony", "Rev_a_0", "first", types.TopicGeneral, types.SentimentNeutral, date(2020, 1, 1))
	addReview(g, "Sony", "Rev_a_0", "second", types.TopicGeneral, types.SentimentNeutral, date(2020, 1, 1))

	n, ok := g.Node(types.ReviewNodeType, "Rev_a_0")
	require.True(t, ok)
	text, _ := n.Text()
	assert.Equal(t, "first", text)
	assert.Equal(t, 2, g.EdgeCount())
}

func TestSnapshotTemporalFilter(t *testing.T) {
	g := New()
	addReview(g, "Acme", "Rev_a_0", "open", types.TopicGeneral, types.SentimentNeutral, date(2020, 1, 1))

	end := date(2020, 6, 30)
	closed := types.NewReviewEdge(types.TopicPrice, types.SentimentNegative, date(2020, 3, 1))
	closed.EndDate = &end
	g.AddFact(types.NewBrandNode("Acme"), types.NewReviewNode("Rev_a_1", "closed"), closed)

	tests := []struct {
		name string
		at   time.Time
		want []string
	}{
		{"before everything", date(2019, 12, 31), nil},
		{"start is inclusive", date(2020, 1, 1), []string{"Rev_a_0"}},
		{"both active", date(2020, 4, 1), []string{"Rev_a_0", "Rev_a_1"}},
		{"end is inclusive", end, []string{"Rev_a_0", "Rev_a_1"}},
		{"after end", date(2020, 7, 1), []string{"Rev_a_0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, f := range g.SnapshotFacts(tt.at, "") {
				ids = append(ids, f.ReviewID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSnapshotBrandFilter(t *testing.T) {
	g := New()
	start := date(2020, 1, 1)
	addReview(g, "Apple Inc", "Rev_a_0", "one", types.TopicGeneral, types.SentimentNeutral, start)
	addReview(g, "Samsung", "Rev_a_1", "two", types.TopicGeneral, types.SentimentNeutral, start)
	addReview(g, "Samsung", "Rev_apple_2", "three", types.TopicGeneral, types.SentimentNeutral, start)

	facts := g.SnapshotFacts(start, "APPLE")
	require.Len(t, facts, 2)
	assert.Equal(t, "Apple Inc", facts[0].Brand)
	assert.Equal(t, "Rev_apple_2", facts[1].ReviewID, "target id also matches")

	assert.Len(t, g.SnapshotFacts(start, ""), 3)
	assert.Empty(t, g.SnapshotFacts(start, "nokia"))
}

func TestSnapshotSnippet(t *testing.T) {
	g := New()
	start := date(2020, 1, 1)
	long := strings.Repeat("é", 150)
	addReview(g, "Acme", "Rev_a_0", long, types.TopicGeneral, types.SentimentNeutral, start)
	g.AddFact(types.NewBrandNode("Acme"), types.Node{ID: "Rev_a_1", Type: types.ReviewNodeType}, types.NewReviewEdge(types.TopicGeneral, types.SentimentNeutral, start))

	facts := g.SnapshotFacts(start, "")
	require.Len(t, facts, 2)
	assert.Equal(t, strings.Repeat("é", 100)+"...", facts[0].Snippet)
	assert.Equal(t, MissingTextPlaceholder, facts[1].Snippet)
}

func TestSnapshotKeepsLastFifty(t *testing.T) {
	g := New()
	start := date(2020, 1, 1)
	for i := 0; i < 120; i++ {
		addReview(g, "Acme", fmt.Sprintf("Rev_a_%d", i), fmt.Sprintf("review %d", i), types.TopicGeneral, types.SentimentNeutral, start)
	}

	facts := g.SnapshotFacts(start, "acme")
	require.Len(t, facts, MaxSnapshotFacts)
	assert.Equal(t, "Rev_a_70", facts[0].ReviewID)
	assert.Equal(t, "Rev_a_119", facts[len(facts)-1].ReviewID)

	lines := strings.Split(g.Snapshot(start, "acme"), "\n")
	assert.Len(t, lines, MaxSnapshotFacts)
}

func TestBrandsAndFindBrand(t *testing.T) {
	g := New()
	start := date(2020, 1, 1)
	addReview(g, "Sony", "Rev_a_0", "x", types.TopicGeneral, types.SentimentNeutral, start)
	addReview(g, "Apple", "Rev_a_1", "y", types.TopicGeneral, types.SentimentNeutral, start)

	assert.Equal(t, []string{"Apple", "Sony"}, g.Brands())

	id, ok := g.FindBrand("sony")
	assert.True(t, ok)
	assert.Equal(t, "Sony", id)

	_, ok = g.FindBrand("Son")
	assert.False(t, ok)

	assert.Len(t, g.NodesByType(types.ReviewNodeType), 2)
}

func TestStats(t *testing.T) {
	g := New()
	start := date(2020, 1, 1)
	addReview(g, "Sony", "Rev_a_0", "x", types.TopicPrice, types.SentimentPositive, start)
	addReview(g, "Sony", "Rev_a_1", "y", types.TopicPrice, types.SentimentNegative, start)

	s := g.Stats()
	assert.Equal(t, 3, s.Nodes)
	assert.Equal(t, 2, s.Edges)
	assert.Equal(t, 1, s.Brands)
	assert.Equal(t, 2, s.Reviews)
	assert.Equal(t, 2, s.Topics[types.TopicPrice])
	assert.Equal(t, 1, s.Moods[types.SentimentNegative])
}

func TestRestorePreservesOrder(t *testing.T) {
	g := New()
	start := date(2020, 1, 1)
	addReview(g, "Sony", "Rev_a_0", "x", types.TopicPrice, types.SentimentPositive, start)
	addReview(g, "Apple", "Rev_a_1", "y", types.TopicQuality, types.SentimentNegative, start)

	r := Restore(g.Nodes(), g.Edges())
	assert.Equal(t, g.Nodes(), r.Nodes())
	assert.Equal(t, g.Edges(), r.Edges())
	assert.Equal(t, g.Snapshot(start, ""), r.Snapshot(start, ""))
}
