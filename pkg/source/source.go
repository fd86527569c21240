// Package source reads review records from delimited and line-delimited
// JSON files and normalizes their fields.
//
// Column names are matched case-insensitively through alias lists, so
// Amazon-style exports (overall, reviewText, summary, unixReviewTime) and
// Reddit-style exports (title, selftext, created_utc) load the same way.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/soundprediction/reviewgraph/pkg/types"
)

// ErrUnsupportedFormat is returned by Open for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// DefaultMaxRecords is the per-file raw row cap.
const DefaultMaxRecords = 200

// Format is an input file encoding.
type Format int

const (
	FormatCSV Format = iota
	FormatTSV
	FormatJSONLines
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatJSONLines:
		return "jsonl"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extensions lists the file extensions Open accepts.
var Extensions = map[string]Format{
	".csv":    FormatCSV,
	".tsv":    FormatTSV,
	".json":   FormatJSONLines,
	".jsonl":  FormatJSONLines,
	".ndjson": FormatJSONLines,
}

// DetectFormat maps a path's extension to its format.
func DetectFormat(path string) (Format, error) {
	f, ok := Extensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
	return f, nil
}

// Options configures a Source.
type Options struct {
	// MaxRecords caps raw rows read per file, skipped rows included.
	// Zero means unlimited.
	MaxRecords int
	Logger     *slog.Logger
}

// Source is a restartable reader over one input file.
type Source struct {
	path   string
	name   string
	format Format
	opts   Options
	logger *slog.Logger
}

// Open prepares a source for path. The file is opened on each Each call.
func Open(path string, opts Options) (*Source, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		path:   path,
		name:   filepath.Base(path),
		format: format,
		opts:   opts,
		logger: logger,
	}, nil
}

// Name returns the file base name used in review ids.
func (s *Source) Name() string { return s.name }

// Format returns the detected format.
func (s *Source) Format() Format { return s.format }

// Each calls fn for every well-formed record in file order. Malformed rows
// are skipped but still count toward MaxRecords. Iteration stops at the
// first error returned by fn or when ctx is done.
func (s *Source) Each(ctx context.Context, fn func(types.Record) error) error {
	switch s.format {
	case FormatCSV:
		return s.eachDelimited(ctx, ',', fn)
	case FormatTSV:
		return s.eachDelimited(ctx, '\t', fn)
	default:
		return s.eachJSONLines(ctx, fn)
	}
}

// Records reads every record into memory.
func (s *Source) Records(ctx context.Context) ([]types.Record, error) {
	var out []types.Record
	err := s.Each(ctx, func(r types.Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

func (s *Source) limitReached(index int) bool {
	return s.opts.MaxRecords > 0 && index >= s.opts.MaxRecords
}
