package reviewgraph

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundprediction/reviewgraph"
	"github.com/soundprediction/reviewgraph/pkg/alert"
	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/extract"
	"github.com/soundprediction/reviewgraph/pkg/graph"
	"github.com/soundprediction/reviewgraph/pkg/logger"
	"github.com/soundprediction/reviewgraph/pkg/persistence"
	"github.com/soundprediction/reviewgraph/pkg/sentiment"
	"github.com/soundprediction/reviewgraph/pkg/telemetry"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Build the review graph from a directory of review files",
	Long: `Read every .csv, .tsv, .json and .jsonl file in <dir> in name order,
extract a brand from each review, label it with a topic and a sentiment, and
save the resulting temporal graph.

A run that produces no facts does not overwrite an existing graph.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().Int("batch-size", 16, "reviews per classification batch")
	ingestCmd.Flags().Int("max-records", 200, "rows read per file (0 = unlimited)")
	ingestCmd.Flags().String("recognizer", "rustbert", "entity recognizer (rustbert, gliner, gliner2)")
	ingestCmd.Flags().String("recognizer-model", "", "recognizer model id or path")
	ingestCmd.Flags().String("classifier", "gliner2", "topic classifier (gliner2, fastino, openai)")
	ingestCmd.Flags().String("classifier-endpoint", "", "GLiNER2 service URL")
	ingestCmd.Flags().String("classifier-model", "", "chat model for the openai classifier")
	ingestCmd.Flags().String("telemetry-parquet-path", "", "directory for error telemetry")
	ingestCmd.Flags().String("format", "text", "summary format (text, json, yaml)")
}

func overrideIngestFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		cfg.Ingest.BatchSize, _ = flags.GetInt("batch-size")
	}
	if flags.Changed("max-records") {
		cfg.Ingest.MaxRecords, _ = flags.GetInt("max-records")
	}
	if flags.Changed("recognizer") {
		cfg.NLP.Recognizer.Provider, _ = flags.GetString("recognizer")
	}
	if flags.Changed("recognizer-model") {
		cfg.NLP.Recognizer.Model, _ = flags.GetString("recognizer-model")
	}
	if flags.Changed("classifier") {
		cfg.NLP.Classifier.Provider, _ = flags.GetString("classifier")
	}
	if flags.Changed("classifier-endpoint") {
		cfg.NLP.Classifier.Endpoint, _ = flags.GetString("classifier-endpoint")
	}
	if flags.Changed("classifier-model") {
		cfg.NLP.Classifier.Model, _ = flags.GetString("classifier-model")
	}
	if flags.Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = flags.GetString("telemetry-parquet-path")
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideIngestFlags(cmd, cfg)
	if cfg.Ingest.BatchSize <= 0 {
		return fmt.Errorf("invalid configuration: batch size must be positive")
	}

	handler := logger.NewHandler(os.Stderr, cfg.Log)
	if cfg.Telemetry.ParquetPath != "" {
		ph, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			return fmt.Errorf("failed to create telemetry handler: %w", err)
		}
		defer func() {
			if err := ph.Flush(); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to flush telemetry: %v\n", err)
			}
		}()
		handler = ph
	}
	log := slog.New(handler)

	opts, err := reviewgraph.PipelineOptionsFromConfig(cfg.Ingest)
	if err != nil {
		return err
	}

	recognizer, closeRecognizer, err := newRecognizer(cfg, log)
	if err != nil {
		return err
	}
	defer closeRecognizer()

	alerter := alert.New(cfg.Alert)
	classifier, closeClassifier, err := newTopicClassifier(cmd.Context(), cfg, alerter, log)
	if err != nil {
		return err
	}
	defer closeClassifier()

	extractor := extract.New(recognizer, &extract.Options{
		MinTextLength:   cfg.Ingest.MinTextLength,
		MinEntityLength: cfg.Ingest.MinEntityLength,
		DenyList:        cfg.Ingest.DenyList,
	})
	scorer := sentiment.NewScorerFromConfig(nil, cfg.Sentiment)

	g := graph.New()
	p := reviewgraph.NewPipeline(g, extractor, classifier, scorer, opts, log)

	results, err := p.IngestDirectory(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if results.FailedBatches > 0 || results.FailedFiles > 0 {
		msg := fmt.Sprintf("Run %s over %s finished with %d failed batches and %d failed files (%d edges committed).",
			results.RunID, args[0], results.FailedBatches, results.FailedFiles, results.TotalEdges)
		if err := alerter.Alert("Ingestion completed with failures", msg); err != nil {
			log.Warn("Failed to send alert", "error", err)
		}
	}

	if g.EdgeCount() == 0 {
		log.Error("Ingestion produced no facts; graph not saved", "dir", args[0], "run_id", results.RunID)
		return reviewgraph.ErrEmptyGraph
	}

	store, err := persistence.Open(cfg.Persistence)
	if err != nil {
		return err
	}
	if err := store.Save(cmd.Context(), g); err != nil {
		return fmt.Errorf("failed to save graph: %w", err)
	}
	log.Info("Graph saved", "path", cfg.Persistence.Path, "backend", cfg.Persistence.Backend, "edges", g.EdgeCount())

	format, _ := cmd.Flags().GetString("format")
	return printResult(cmd.OutOrStdout(), format, results, func(w io.Writer) error {
		for _, f := range results.Files {
			status := "ok"
			if f.Error != "" {
				status = f.Error
			}
			fmt.Fprintf(w, "%s: %d records, %d dropped, %d edges, %d failed batches (%s)\n",
				f.Path, f.Records, f.Dropped, f.Edges, f.FailedBatches, status)
		}
		_, err := fmt.Fprintf(w, "Total: %d edges from %d files in %s (%d failed batches, %d failed files)\n",
			results.TotalEdges, len(results.Files), results.Duration, results.FailedBatches, results.FailedFiles)
		return err
	})
}
