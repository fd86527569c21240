// Package persistence saves and restores a TemporalGraph.
//
// Every backend writes the same versioned record format: a header carrying
// the format tag and version, followed by node records and edge records in
// insertion order. Loading rejects unknown tags and versions rather than
// guessing at their layout.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/graph"
	"github.com/soundprediction/reviewgraph/pkg/types"
)

const (
	// FormatTag identifies a reviewgraph snapshot.
	FormatTag = "reviewgraph.snapshot"
	// FormatVersion is the record layout written by this package.
	FormatVersion = 1
)

var (
	// ErrNotFound is returned when no snapshot exists at the configured location.
	ErrNotFound = errors.New("snapshot not found")
	// ErrUnsupportedVersion is returned for unknown format tags or versions.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrCorrupt is returned when a snapshot cannot be decoded.
	ErrCorrupt = errors.New("corrupt snapshot")
	// ErrUnknownBackend is returned by Open for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown persistence backend")
)

// Store persists whole graphs.
type Store interface {
	Save(ctx context.Context, g *graph.TemporalGraph) error
	Load(ctx context.Context) (*graph.TemporalGraph, error)
}

// Header is the metadata written ahead of the records.
type Header struct {
	Format  string      `json:"format"`
	Version int         `json:"version"`
	SavedAt time.Time   `json:"saved_at"`
	Stats   graph.Stats `json:"stats"`
}

// restore rebuilds a graph from decoded records, rejecting any record the
// graph could not have produced.
func restore(nodes []types.Node, edges []types.TemporalEdge) (*graph.TemporalGraph, error) {
	for i := range nodes {
		if err := nodes[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", ErrCorrupt, i, err)
		}
	}
	for i := range edges {
		if err := edges[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: edge %d: %v", ErrCorrupt, edges[i].Seq, err)
		}
	}
	return graph.Restore(nodes, edges), nil
}

func newHeader(g *graph.TemporalGraph) Header {
	return Header{
		Format:  FormatTag,
		Version: FormatVersion,
		SavedAt: time.Now().UTC(),
		Stats:   g.Stats(),
	}
}

func (h Header) check() error {
	if h.Format != FormatTag {
		return fmt.Errorf("%w: format %q", ErrUnsupportedVersion, h.Format)
	}
	if h.Version != FormatVersion {
		return fmt.Errorf("%w: version %d", ErrUnsupportedVersion, h.Version)
	}
	return nil
}

// document is the single-file layout used by FileStore.
type document struct {
	Header
	Nodes []types.Node         `json:"nodes"`
	Edges []types.TemporalEdge `json:"edges"`
}

// Open returns the store selected by cfg.Backend ("file" or "badger").
func Open(cfg config.PersistenceConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "file", "json":
		return NewFileStore(cfg.Path), nil
	case "badger":
		return NewBadgerStore(cfg.Path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
