package reviewgraph

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/driver"
	"github.com/soundprediction/reviewgraph/pkg/persistence"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the saved graph to another format or database",
}

var exportParquetCmd = &cobra.Command{
	Use:   "parquet <dir>",
	Short: "Write nodes.parquet and edges.parquet into <dir>",
	Args:  cobra.ExactArgs(1),
	RunE:  runExportParquet,
}

var exportNeo4jCmd = &cobra.Command{
	Use:   "neo4j",
	Short: "Load the graph into Neo4j",
	Long: `Load Brand and Review nodes and REVIEWED_IN relationships into Neo4j.

Previously exported nodes are removed first unless --keep-existing is set.
Relationships are always created, so keeping existing data duplicates them.`,
	RunE: runExportNeo4j,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportParquetCmd)
	exportCmd.AddCommand(exportNeo4jCmd)

	exportNeo4jCmd.Flags().String("uri", "", "Neo4j URI")
	exportNeo4jCmd.Flags().String("username", "", "Neo4j username")
	exportNeo4jCmd.Flags().String("password", "", "Neo4j password")
	exportNeo4jCmd.Flags().String("database", "", "Neo4j database")
	exportNeo4jCmd.Flags().Int("batch-size", driver.DefaultBatchSize, "rows per transaction")
	exportNeo4jCmd.Flags().Bool("keep-existing", false, "do not clear previously exported data")
	exportNeo4jCmd.Flags().String("format", "text", "output format (text, json, yaml)")
}

func runExportParquet(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGraph(cmd, cfg)
	if err != nil {
		return err
	}

	exp, err := persistence.NewParquetExporter(args[0])
	if err != nil {
		return err
	}
	if err := exp.Export(cmd.Context(), g); err != nil {
		return fmt.Errorf("parquet export failed: %w", err)
	}
	log.Info("Parquet export complete", "nodes", exp.NodesPath(), "edges", exp.EdgesPath())
	return nil
}

func overrideNeo4jFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("uri") {
		cfg.Neo4j.URI, _ = cmd.Flags().GetString("uri")
	}
	if cmd.Flags().Changed("username") {
		cfg.Neo4j.Username, _ = cmd.Flags().GetString("username")
	}
	if cmd.Flags().Changed("password") {
		cfg.Neo4j.Password, _ = cmd.Flags().GetString("password")
	}
	if cmd.Flags().Changed("database") {
		cfg.Neo4j.Database, _ = cmd.Flags().GetString("database")
	}
}

func runExportNeo4j(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	overrideNeo4jFlags(cmd, cfg)

	g, err := loadGraph(cmd, cfg)
	if err != nil {
		return err
	}

	exp, err := driver.NewNeo4jExporter(cfg.Neo4j, log)
	if err != nil {
		return err
	}
	defer exp.Close(cmd.Context())

	if err := exp.VerifyConnectivity(cmd.Context()); err != nil {
		return fmt.Errorf("failed to connect to neo4j: %w", err)
	}

	batchSize, _ := cmd.Flags().GetInt("batch-size")
	keep, _ := cmd.Flags().GetBool("keep-existing")
	res, err := exp.Export(cmd.Context(), g, &driver.ExportOptions{BatchSize: batchSize, KeepExisting: keep})
	if err != nil {
		return fmt.Errorf("neo4j export failed: %w", err)
	}
	if counts, err := exp.Counts(cmd.Context()); err == nil {
		log.Info("Neo4j now holds", "brands", counts.Brands, "reviews", counts.Reviews, "relationships", counts.Relationships)
	}

	format, _ := cmd.Flags().GetString("format")
	return printResult(cmd.OutOrStdout(), format, res, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Exported %d brands, %d reviews, %d relationships\n", res.Brands, res.Reviews, res.Relationships)
		return err
	})
}
