package driver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/graph"
	"github.com/soundprediction/reviewgraph/pkg/types"
)

// DefaultBatchSize is the number of rows sent per UNWIND transaction.
const DefaultBatchSize = 1000

const (
	clearQuery = `MATCH (n) WHERE n:Brand OR n:Review DETACH DELETE n`

	brandQuery = `
		UNWIND $rows AS row
		MERGE (b:Brand {id: row.id})
		SET b += row.props`

	reviewQuery = `
		UNWIND $rows AS row
		MERGE (r:Review {id: row.id})
		SET r += row.props`

	edgeQuery = `
		UNWIND $rows AS row
		MATCH (b:Brand {id: row.source_id})
		MATCH (r:Review {id: row.target_id})
		CREATE (b)-[e:REVIEWED_IN]->(r)
		SET e.seq = row.seq,
			e.topic = row.topic,
			e.sentiment = row.sentiment,
			e.start_date = row.start_date,
			e.end_date = row.end_date`

	countQuery = `
		CALL { MATCH (b:Brand) RETURN count(b) AS brands }
		CALL { MATCH (r:Review) RETURN count(r) AS reviews }
		CALL { MATCH (:Brand)-[e:REVIEWED_IN]->(:Review) RETURN count(e) AS relationships }
		RETURN brands, reviews, relationships`
)

var indices = []string{
	"CREATE CONSTRAINT brand_id IF NOT EXISTS FOR (b:Brand) REQUIRE b.id IS UNIQUE",
	"CREATE CONSTRAINT review_id IF NOT EXISTS FOR (r:Review) REQUIRE r.id IS UNIQUE",
	"CREATE INDEX reviewed_in_start IF NOT EXISTS FOR ()-[e:REVIEWED_IN]-() ON (e.start_date)",
}

// ExportOptions tunes an export.
type ExportOptions struct {
	// BatchSize is the number of rows per transaction.
	BatchSize int
	// KeepExisting skips deleting previously exported Brand and Review nodes.
	// Relationships are always created, so keeping existing data duplicates them.
	KeepExisting bool
}

// ExportResult counts what was written.
type ExportResult struct {
	Brands        int `json:"brands" yaml:"brands"`
	Reviews       int `json:"reviews" yaml:"reviews"`
	Relationships int `json:"relationships" yaml:"relationships"`
}

// Counts reports what the database holds.
type Counts struct {
	Brands        int64 `json:"brands" yaml:"brands"`
	Reviews       int64 `json:"reviews" yaml:"reviews"`
	Relationships int64 `json:"relationships" yaml:"relationships"`
}

// Neo4jExporter writes graphs to a Neo4j database.
type Neo4jExporter struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jExporter creates an exporter. No connection is made until first use.
func NewNeo4jExporter(cfg config.Neo4jConfig, logger *slog.Logger) (*Neo4jExporter, error) {
	client, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	database := cfg.Database
	if database == "" {
		database = "neo4j"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Neo4jExporter{
		client:   client,
		database: database,
		logger:   logger,
	}, nil
}

// VerifyConnectivity checks if the driver can connect to the database.
func (n *Neo4jExporter) VerifyConnectivity(ctx context.Context) error {
	return n.client.VerifyConnectivity(ctx)
}

// Close closes the underlying driver.
func (n *Neo4jExporter) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

// CreateIndices creates id constraints and the start date index.
func (n *Neo4jExporter) CreateIndices(ctx context.Context) error {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	for _, q := range indices {
		if _, err := session.Run(ctx, q, nil); err != nil {
			if !strings.Contains(err.Error(), "already exists") && !strings.Contains(err.Error(), "An equivalent") {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}
	}
	return nil
}

// Export writes g. Nodes are written before relationships so every
// relationship finds both endpoints.
func (n *Neo4jExporter) Export(ctx context.Context, g *graph.TemporalGraph, opts *ExportOptions) (*ExportResult, error) {
	if opts == nil {
		opts = &ExportOptions{}
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	if err := n.CreateIndices(ctx); err != nil {
		return nil, err
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	if !opts.KeepExisting {
		if err := n.write(ctx, session, clearQuery, nil); err != nil {
			return nil, fmt.Errorf("failed to clear previous export: %w", err)
		}
	}

	brands := NodeRows(g.NodesByType(types.BrandNodeType))
	reviews := NodeRows(g.NodesByType(types.ReviewNodeType))
	edges := EdgeRows(g.Edges())

	steps := []struct {
		name  string
		query string
		rows  []map[string]any
	}{
		{"brands", brandQuery, brands},
		{"reviews", reviewQuery, reviews},
		{"relationships", edgeQuery, edges},
	}
	for _, step := range steps {
		for _, chunk := range Chunk(step.rows, batchSize) {
			if err := n.write(ctx, session, step.query, map[string]any{"rows": chunk}); err != nil {
				return nil, fmt.Errorf("failed to export %s: %w", step.name, err)
			}
		}
		n.logger.InfoContext(ctx, "Exported to neo4j", "kind", step.name, "count", len(step.rows))
	}

	return &ExportResult{
		Brands:        len(brands),
		Reviews:       len(reviews),
		Relationships: len(edges),
	}, nil
}

// Counts reads node and relationship counts back from the database.
func (n *Neo4jExporter) Counts(ctx context.Context) (*Counts, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, countQuery, nil)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count exported graph: %w", err)
	}

	rec, ok := AsRecord(result)
	if !ok {
		return nil, NewTypeConversionError("*db.Record", fmt.Sprintf("%T", result), "")
	}

	var c Counts
	if c.Brands, err = RecordInt64(rec, "brands"); err != nil {
		return nil, err
	}
	if c.Reviews, err = RecordInt64(rec, "reviews"); err != nil {
		return nil, err
	}
	if c.Relationships, err = RecordInt64(rec, "relationships"); err != nil {
		return nil, err
	}
	return &c, nil
}

func (n *Neo4jExporter) write(ctx context.Context, session neo4j.SessionWithContext, query string, params map[string]any) error {
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	return err
}

// NodeRows converts nodes to UNWIND parameter rows. Only property values
// Neo4j can store directly are kept.
func NodeRows(nodes []types.Node) []map[string]any {
	rows := make([]map[string]any, len(nodes))
	for i, node := range nodes {
		props := make(map[string]any, len(node.Properties))
		for k, v := range node.Properties {
			switch x := v.(type) {
			case string, bool, int64, float64:
				props[k] = x
			case int:
				props[k] = int64(x)
			}
		}
		rows[i] = map[string]any{"id": node.ID, "props": props}
	}
	return rows
}

// EdgeRows converts edges to UNWIND parameter rows.
func EdgeRows(edges []types.TemporalEdge) []map[string]any {
	rows := make([]map[string]any, len(edges))
	for i, e := range edges {
		var end any
		if e.EndDate != nil {
			end = *e.EndDate
		}
		rows[i] = map[string]any{
			"seq":        int64(e.Seq),
			"source_id":  e.SourceID,
			"target_id":  e.TargetID,
			"topic":      e.Topic.String(),
			"sentiment":  e.Sentiment.String(),
			"start_date": e.StartDate,
			"end_date":   end,
		}
	}
	return rows
}

// Chunk splits rows into slices of at most size elements.
func Chunk(rows []map[string]any, size int) [][]map[string]any {
	if size <= 0 {
		size = DefaultBatchSize
	}
	var out [][]map[string]any
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end])
	}
	return out
}
