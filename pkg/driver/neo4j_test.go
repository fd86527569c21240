package driver

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/graph"
	"github.com/soundprediction/reviewgraph/pkg/types"
)

func sampleGraph() *graph.TemporalGraph {
	g := graph.New()
	start := time.Date(2016, 6, 1, 0, 0, 0, 0, time.UTC)
	review := types.NewReviewNode("Rev_x_1", "Screen cracked fast")
	review.Properties[types.PropertyRating] = 1.0
	review.Properties["tags"] = []string{"ignored"}
	g.AddFact(types.NewBrandNode("Apple"), review, types.NewReviewEdge(types.TopicQuality, types.SentimentNegative, start))
	g.AddFact(types.NewBrandNode("Apple"), types.NewReviewNode("Rev_x_2", "Fine"), types.NewReviewEdge(types.TopicGeneral, types.SentimentNeutral, start))
	return g
}

func TestNodeRows(t *testing.T) {
	g := sampleGraph()
	rows := NodeRows(g.NodesByType(types.ReviewNodeType))
	require.Len(t, rows, 2)

	assert.Equal(t, "Rev_x_1", rows[0]["id"])
	props := rows[0]["props"].(map[string]any)
	assert.Equal(t, "Screen cracked fast", props[types.PropertyText])
	assert.Equal(t, 1.0, props[types.PropertyRating])
	assert.NotContains(t, props, "tags")

	brands := NodeRows(g.NodesByType(types.BrandNodeType))
	require.Len(t, brands, 1)
	assert.Empty(t, brands[0]["props"])
}

func TestEdgeRows(t *testing.T) {
	edges := sampleGraph().Edges()
	end := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	edges[1].EndDate = &end

	rows := EdgeRows(edges)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(0), rows[0]["seq"])
	assert.Equal(t, "Apple", rows[0]["source_id"])
	assert.Equal(t, "Rev_x_1", rows[0]["target_id"])
	assert.Equal(t, "Quality", rows[0]["topic"])
	assert.Equal(t, "Negative", rows[0]["sentiment"])
	assert.Nil(t, rows[0]["end_date"])
	assert.Equal(t, end, rows[1]["end_date"])
}

func TestChunk(t *testing.T) {
	rows := make([]map[string]any, 5)
	chunks := Chunk(rows, 2)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[2], 1)

	assert.Empty(t, Chunk(nil, 2))
	assert.Len(t, Chunk(rows, 0), 1)
}

// skipIfNeo4jUnavailable skips the test if Neo4j is not available.
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD to run it.
func skipIfNeo4jUnavailable(t *testing.T) *Neo4jExporter {
	t.Helper()

	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}
	exp, err := NewNeo4jExporter(config.Neo4jConfig{
		URI:      uri,
		Username: os.Getenv("NEO4J_USER"),
		Password: os.Getenv("NEO4J_PASSWORD"),
	}, nil)
	if err != nil {
		t.Skipf("Neo4j not available at %s: %v", uri, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := exp.VerifyConnectivity(ctx); err != nil {
		exp.Close(context.Background())
		t.Skipf("Neo4j connection failed: %v", err)
	}
	return exp
}

func TestNeo4jExport(t *testing.T) {
	exp := skipIfNeo4jUnavailable(t)
	ctx := context.Background()
	defer exp.Close(ctx)

	res, err := exp.Export(ctx, sampleGraph(), &ExportOptions{BatchSize: 1})
	require.NoError(t, err)
	assert.Equal(t, &ExportResult{Brands: 1, Reviews: 2, Relationships: 2}, res)

	// Re-exporting replaces rather than duplicates.
	_, err = exp.Export(ctx, sampleGraph(), nil)
	require.NoError(t, err)

	counts, err := exp.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Counts{Brands: 1, Reviews: 2, Relationships: 2}, counts)
}
