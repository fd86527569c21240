package reviewgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/extract"
	"github.com/soundprediction/reviewgraph/pkg/graph"
	"github.com/soundprediction/reviewgraph/pkg/source"
	"github.com/soundprediction/reviewgraph/pkg/telemetry"
	"github.com/soundprediction/reviewgraph/pkg/types"
)

const (
	// DefaultBatchSize is the number of accepted records classified per call.
	DefaultBatchSize = 16
	// DefaultReviewTextChars is the length of the text stored on review nodes.
	DefaultReviewTextChars = 200
	// DefaultProgressEvery is the edge interval between progress logs.
	DefaultProgressEvery = 1000
)

// DefaultDate is the edge start date for records without a timestamp.
var DefaultDate = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

var (
	// ErrNoInputFiles is returned when a directory holds no readable inputs.
	ErrNoInputFiles = errors.New("no input files found")
	// ErrEmptyGraph is returned when an ingestion run produced no facts.
	ErrEmptyGraph = errors.New("graph is empty")
)

// PipelineOptions tunes ingestion.
type PipelineOptions struct {
	// BatchSize is the classifier batch size.
	BatchSize int
	// MaxRecords caps raw rows read per file. Zero means unlimited.
	MaxRecords int
	// DefaultDate is used when a record has no timestamp.
	DefaultDate time.Time
	// ReviewTextChars is the rune length of the stored review text.
	ReviewTextChars int
	// ProgressEvery logs a progress line every N committed edges.
	ProgressEvery int
}

// DefaultPipelineOptions returns the standard ingestion settings.
func DefaultPipelineOptions() *PipelineOptions {
	return &PipelineOptions{
		BatchSize:       DefaultBatchSize,
		MaxRecords:      source.DefaultMaxRecords,
		DefaultDate:     DefaultDate,
		ReviewTextChars: DefaultReviewTextChars,
		ProgressEvery:   DefaultProgressEvery,
	}
}

// PipelineOptionsFromConfig converts the ingest config section.
func PipelineOptionsFromConfig(cfg config.IngestConfig) (*PipelineOptions, error) {
	date, err := cfg.ParsedDefaultDate()
	if err != nil {
		return nil, err
	}
	return &PipelineOptions{
		BatchSize:       cfg.BatchSize,
		MaxRecords:      cfg.MaxRecords,
		DefaultDate:     date,
		ReviewTextChars: cfg.ReviewTextChars,
		ProgressEvery:   cfg.ProgressEvery,
	}, nil
}

// FileResult summarizes one input file.
type FileResult struct {
	Path string `json:"path" yaml:"path"`
	// Records counts well-formed rows read.
	Records int `json:"records" yaml:"records"`
	// Dropped counts records rejected before classification.
	Dropped int `json:"dropped" yaml:"dropped"`
	// Edges counts committed facts.
	Edges int `json:"edges" yaml:"edges"`
	// FailedBatches counts batches discarded after a classifier error.
	FailedBatches int    `json:"failed_batches" yaml:"failed_batches"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
}

// IngestResults summarizes an IngestDirectory run.
type IngestResults struct {
	RunID         string        `json:"run_id" yaml:"run_id"`
	Files         []FileResult  `json:"files" yaml:"files"`
	TotalEdges    int           `json:"total_edges" yaml:"total_edges"`
	FailedBatches int           `json:"failed_batches" yaml:"failed_batches"`
	FailedFiles   int           `json:"failed_files" yaml:"failed_files"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
}

func (r *IngestResults) add(fr FileResult) {
	r.Files = append(r.Files, fr)
	r.TotalEdges += fr.Edges
	r.FailedBatches += fr.FailedBatches
	if fr.Error != "" {
		r.FailedFiles++
	}
}

// Pipeline turns review files into temporal graph facts.
//
// Records are read in file order, filtered through entity extraction and
// buffered. Every full batch is classified in one call, scored and committed
// in input order; the remainder is flushed at end of file. A pipeline is not
// safe for concurrent use.
type Pipeline struct {
	graph      *graph.TemporalGraph
	extractor  EntityExtractor
	classifier TopicClassifier
	scorer     SentimentScorer
	opts       PipelineOptions
	logger     *slog.Logger
}

// NewPipeline creates a pipeline writing into g. A nil opts uses
// DefaultPipelineOptions; zero fields other than MaxRecords take defaults.
func NewPipeline(g *graph.TemporalGraph, ex EntityExtractor, tc TopicClassifier, sc SentimentScorer, opts *PipelineOptions, logger *slog.Logger) *Pipeline {
	if opts == nil {
		opts = DefaultPipelineOptions()
	}
	o := *opts
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.DefaultDate.IsZero() {
		o.DefaultDate = DefaultDate
	}
	if o.ReviewTextChars <= 0 {
		o.ReviewTextChars = DefaultReviewTextChars
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = DefaultProgressEvery
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		graph:      g,
		extractor:  ex,
		classifier: tc,
		scorer:     sc,
		opts:       o,
		logger:     logger,
	}
}

// Graph returns the graph the pipeline writes into.
func (p *Pipeline) Graph() *graph.TemporalGraph {
	return p.graph
}

// pendingReview is an accepted record waiting for its batch to be classified.
type pendingReview struct {
	id        string
	source    string
	brand     string
	text      string
	rating    float64
	timestamp *time.Time
}

// ReviewID builds the review node id for a record.
func ReviewID(sourceName string, index int) string {
	return fmt.Sprintf("Rev_%s_%d", sourceName, index)
}

// IngestFile ingests one file and returns the number of facts committed.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	res, err := p.ingestFile(ctx, path)
	return res.Edges, err
}

func (p *Pipeline) ingestFile(ctx context.Context, path string) (*FileResult, error) {
	res := &FileResult{Path: path}

	src, err := source.Open(path, source.Options{MaxRecords: p.opts.MaxRecords, Logger: p.logger})
	if err != nil {
		return res, err
	}
	ctx = telemetry.WithSourceFile(ctx, path)
	p.logger.DebugContext(ctx, "Reading source", "file", src.Name(), "format", src.Format())

	batch := make([]pendingReview, 0, p.opts.BatchSize)
	err = src.Each(ctx, func(rec types.Record) error {
		res.Records++
		id := ReviewID(src.Name(), rec.Index)
		text := rec.FullText()

		brand, err := p.extractor.Extract(ctx, text)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			res.Dropped++
			if errors.Is(err, extract.ErrInsufficientContent) || errors.Is(err, extract.ErrNoEntity) {
				p.logger.DebugContext(ctx, "Dropping record", "review_id", id, "reason", err)
			} else {
				p.logger.WarnContext(ctx, "Entity extraction failed, dropping record", "review_id", id, "error", err)
			}
			return nil
		}

		batch = append(batch, pendingReview{
			id:        id,
			source:    src.Name(),
			brand:     brand,
			text:      text,
			rating:    rec.Rating,
			timestamp: rec.Timestamp,
		})
		if len(batch) >= p.opts.BatchSize {
			p.commitBatch(ctx, batch, res)
			batch = batch[:0]
		}
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("failed to read %s: %w", src.Name(), err)
	}

	if len(batch) > 0 {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p.commitBatch(ctx, batch, res)
	}
	return res, nil
}

// commitBatch classifies, scores and commits a batch. A classifier error
// drops the whole batch.
func (p *Pipeline) commitBatch(ctx context.Context, batch []pendingReview, res *FileResult) {
	texts := make([]string, len(batch))
	for i, r := range batch {
		texts[i] = r.text
	}

	topics, err := p.classifier.ClassifyBatch(ctx, texts)
	if err == nil && len(topics) != len(batch) {
		err = fmt.Errorf("classifier returned %d labels for %d texts", len(topics), len(batch))
	}
	if err != nil {
		res.FailedBatches++
		p.logger.WarnContext(ctx, "Topic classification failed, dropping batch",
			"batch_size", len(batch),
			"first_review", batch[0].id,
			"error", err)
		return
	}

	for i, r := range batch {
		date := p.opts.DefaultDate
		if r.timestamp != nil {
			date = r.timestamp.UTC()
		}

		review := types.NewReviewNode(r.id, truncateRunes(r.text, p.opts.ReviewTextChars))
		review.Properties[types.PropertyRating] = r.rating
		review.Properties[types.PropertySource] = r.source

		edge := types.NewReviewEdge(topics[i], p.scorer.Score(r.rating, r.text), date)
		seq := p.graph.AddFact(types.NewBrandNode(r.brand), review, edge)
		res.Edges++

		if n := seq + 1; n%uint64(p.opts.ProgressEvery) == 0 {
			p.logger.InfoContext(ctx, "Edge added", "edge", n)
		}
	}
}

// IngestDirectory ingests every supported file in dir in name order.
// File-level failures are logged and skipped; only cancellation stops the run.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir string) (*IngestResults, error) {
	files, err := InputFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputFiles, dir)
	}

	results := &IngestResults{RunID: uuid.NewString()}
	ctx = telemetry.WithRun(ctx, results.RunID)
	start := time.Now()

	p.logger.InfoContext(ctx, "Starting ingestion",
		"dir", dir,
		"files", len(files),
		"batch_size", p.opts.BatchSize,
		"max_records", p.opts.MaxRecords)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			results.Duration = time.Since(start)
			return results, err
		}

		res, err := p.ingestFile(ctx, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				results.add(*res)
				results.Duration = time.Since(start)
				return results, ctxErr
			}
			res.Error = err.Error()
			p.logger.ErrorContext(telemetry.WithSourceFile(ctx, path), "Failed to ingest file", "file", path, "error", err)
		}
		results.add(*res)

		p.logger.InfoContext(ctx, "Processed file",
			"file", filepath.Base(path),
			"records", res.Records,
			"dropped", res.Dropped,
			"edges", res.Edges,
			"failed_batches", res.FailedBatches)
	}

	results.Duration = time.Since(start)
	p.logger.InfoContext(ctx, "Ingestion completed",
		"files", len(results.Files),
		"failed_files", results.FailedFiles,
		"edges", results.TotalEdges,
		"failed_batches", results.FailedBatches,
		"nodes", p.graph.NodeCount(),
		"duration", results.Duration)

	return results, nil
}

// InputFiles lists the supported input files directly under dir, sorted by name.
func InputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := source.Extensions[strings.ToLower(filepath.Ext(e.Name()))]; ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
