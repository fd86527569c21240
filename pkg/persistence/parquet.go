package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/soundprediction/reviewgraph/pkg/graph"
)

// ParquetNode is the parquet schema for a node row.
type ParquetNode struct {
	ID         string `parquet:"id"`
	Type       string `parquet:"type"`
	Text       string `parquet:"text"`
	Properties string `parquet:"properties"` // JSON string
}

// ParquetEdge is the parquet schema for an edge row.
type ParquetEdge struct {
	Seq       uint64     `parquet:"seq"`
	SourceID  string     `parquet:"source_id"`
	TargetID  string     `parquet:"target_id"`
	Relation  string     `parquet:"relation"`
	Topic     string     `parquet:"topic"`
	Sentiment string     `parquet:"sentiment"`
	StartDate time.Time  `parquet:"start_date"`
	EndDate   *time.Time `parquet:"end_date"`
}

// ParquetExporter writes nodes.parquet and edges.parquet for offline
// analytics. The files are not read back by any store.
type ParquetExporter struct {
	dir string
}

// NewParquetExporter creates an exporter writing into dir.
func NewParquetExporter(dir string) (*ParquetExporter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &ParquetExporter{dir: dir}, nil
}

// NodesPath returns the node file location.
func (w *ParquetExporter) NodesPath() string { return filepath.Join(w.dir, "nodes.parquet") }

// EdgesPath returns the edge file location.
func (w *ParquetExporter) EdgesPath() string { return filepath.Join(w.dir, "edges.parquet") }

// Export writes both files, replacing earlier exports.
func (w *ParquetExporter) Export(ctx context.Context, g *graph.TemporalGraph) error {
	nodes := g.Nodes()
	rows := make([]ParquetNode, 0, len(nodes))
	for _, n := range nodes {
		props, err := json.Marshal(n.Properties)
		if err != nil {
			return fmt.Errorf("failed to marshal properties: %w", err)
		}
		text, _ := n.Text()
		rows = append(rows, ParquetNode{
			ID:         n.ID,
			Type:       string(n.Type),
			Text:       text,
			Properties: string(props),
		})
	}
	if err := parquet.WriteFile(w.NodesPath(), rows); err != nil {
		return fmt.Errorf("failed to write nodes: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	edges := g.Edges()
	edgeRows := make([]ParquetEdge, 0, len(edges))
	for _, e := range edges {
		edgeRows = append(edgeRows, ParquetEdge{
			Seq:       e.Seq,
			SourceID:  e.SourceID,
			TargetID:  e.TargetID,
			Relation:  e.Relation,
			Topic:     e.Topic.String(),
			Sentiment: e.Sentiment.String(),
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
		})
	}
	if err := parquet.WriteFile(w.EdgesPath(), edgeRows); err != nil {
		return fmt.Errorf("failed to write edges: %w", err)
	}
	return nil
}
