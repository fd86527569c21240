package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/graph"
	"github.com/soundprediction/reviewgraph/pkg/types"
)

func sampleGraph() *graph.TemporalGraph {
	g := graph.New()
	end := time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		edge := types.NewReviewEdge(types.AllTopics[i], types.SentimentLabel(i%3), time.Date(2018, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC))
		if i == 2 {
			edge.EndDate = &end
		}
		g.AddFact(
			types.NewBrandNode([]string{"Apple", "Sony"}[i%2]),
			types.NewReviewNode(fmt.Sprintf("Rev_reviews.csv_%d", i), fmt.Sprintf("review number %d", i)),
			edge,
		)
	}
	return g
}

func assertSameGraph(t *testing.T, want, got *graph.TemporalGraph) {
	t.Helper()
	assert.Equal(t, want.NodeCount(), got.NodeCount())
	assert.Equal(t, want.EdgeCount(), got.EdgeCount())
	assert.Equal(t, want.Nodes(), got.Nodes())

	wantEdges, gotEdges := want.Edges(), got.Edges()
	require.Len(t, gotEdges, len(wantEdges))
	for i := range wantEdges {
		w, g := wantEdges[i], gotEdges[i]
		assert.Equal(t, w.Seq, g.Seq)
		assert.Equal(t, w.SourceID, g.SourceID)
		assert.Equal(t, w.TargetID, g.TargetID)
		assert.Equal(t, w.Relation, g.Relation)
		assert.Equal(t, w.Topic, g.Topic)
		assert.Equal(t, w.Sentiment, g.Sentiment)
		assert.True(t, w.StartDate.Equal(g.StartDate))
		if w.EndDate == nil {
			assert.Nil(t, g.EndDate)
		} else {
			require.NotNil(t, g.EndDate)
			assert.True(t, w.EndDate.Equal(*g.EndDate))
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "graph.json"))
	g := sampleGraph()

	require.NoError(t, store.Save(ctx, g))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assertSameGraph(t, g, loaded)

	// Saving again overwrites and leaves no temp files behind.
	require.NoError(t, store.Save(ctx, loaded))
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := NewFileStore(filepath.Join(dir, "missing.json")).Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0644))
	_, err = NewFileStore(corrupt).Load(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)

	future := filepath.Join(dir, "future.json")
	require.NoError(t, os.WriteFile(future, []byte(`{"format":"reviewgraph.snapshot","version":2,"nodes":{}}`), 0644))
	_, err = NewFileStore(future).Load(ctx)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	foreign := filepath.Join(dir, "foreign.json")
	require.NoError(t, os.WriteFile(foreign, []byte(`{"format":"other","version":1}`), 0644))
	_, err = NewFileStore(foreign).Load(ctx)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewBadgerStore(filepath.Join(t.TempDir(), "badger"))
	g := sampleGraph()

	require.NoError(t, store.Save(ctx, g))
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assertSameGraph(t, g, loaded)

	// Save replaces content rather than merging.
	small := graph.New()
	small.AddFact(types.NewBrandNode("Acme"), types.NewReviewNode("Rev_a_0", "ok"), types.NewReviewEdge(types.TopicGeneral, types.SentimentNeutral, time.Now()))
	require.NoError(t, store.Save(ctx, small))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.EdgeCount())
	assert.Equal(t, 2, loaded.NodeCount())
}

func TestBadgerStoreMissing(t *testing.T) {
	_, err := NewBadgerStore(filepath.Join(t.TempDir(), "nothing")).Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	empty := t.TempDir()
	_, err = NewBadgerStore(empty).Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	entries, err := os.ReadDir(empty)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLoadRejectsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := map[string]string{
		"blank-node-id.json": `{"format":"reviewgraph.snapshot","version":1,"nodes":[{"id":"","type":"Brand"}],"edges":[]}`,
		"bad-node-type.json": `{"format":"reviewgraph.snapshot","version":1,"nodes":[{"id":"Acme","type":"Store"}],"edges":[]}`,
		"no-relation.json": `{"format":"reviewgraph.snapshot","version":1,"nodes":[],"edges":[` +
			`{"seq":0,"source_id":"Acme","target_id":"Rev_a_0","relation":"","topic":"General","sentiment":"Neutral","start_date":"2020-01-01T00:00:00Z"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := NewFileStore(path).Load(ctx)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(config.PersistenceConfig{Backend: "file", Path: "graph.json"})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(config.PersistenceConfig{Backend: "Badger", Path: "db"})
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)

	_, err = Open(config.PersistenceConfig{Backend: "sqlite"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestParquetExport(t *testing.T) {
	dir := t.TempDir()
	exp, err := NewParquetExporter(dir)
	require.NoError(t, err)

	g := sampleGraph()
	require.NoError(t, exp.Export(context.Background(), g))

	edges, err := parquet.ReadFile[ParquetEdge](exp.EdgesPath())
	require.NoError(t, err)
	require.Len(t, edges, g.EdgeCount())
	assert.Equal(t, "Quality", edges[0].Topic)
	assert.Equal(t, types.RelationReviewedIn, edges[0].Relation)

	nodes, err := parquet.ReadFile[ParquetNode](exp.NodesPath())
	require.NoError(t, err)
	assert.Len(t, nodes, g.NodeCount())
}
