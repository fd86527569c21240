package persistence

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/reviewgraph/pkg/graph"
	"github.com/soundprediction/reviewgraph/pkg/types"
)

var (
	metaKey    = []byte("meta")
	nodePrefix = []byte("node/")
	edgePrefix = []byte("edge/")
)

// BadgerStore keeps the graph in a badger directory with one key per record.
// Keys are "meta", "node/<seq>" and "edge/<seq>" where seq is big-endian so
// that iteration order matches insertion order.
type BadgerStore struct {
	dir string
}

// NewBadgerStore creates a store backed by the badger directory dir.
func NewBadgerStore(dir string) *BadgerStore {
	return &BadgerStore{dir: dir}
}

func (s *BadgerStore) open(readOnly bool) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(s.dir).WithLogger(nil).WithReadOnly(readOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %s: %w", s.dir, err)
	}
	return db, nil
}

func seqKey(prefix []byte, seq uint64) []byte {
	key := make([]byte, len(prefix)+8)
	copy(key, prefix)
	binary.BigEndian.PutUint64(key[len(prefix):], seq)
	return key
}

// Save replaces the directory contents with the graph.
func (s *BadgerStore) Save(ctx context.Context, g *graph.TemporalGraph) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db, err := s.open(false)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DropAll(); err != nil {
		return fmt.Errorf("failed to clear badger store: %w", err)
	}

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	for i, n := range g.Nodes() {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("failed to encode node %s: %w", n.ID, err)
		}
		if err := wb.Set(seqKey(nodePrefix, uint64(i)), data); err != nil {
			return fmt.Errorf("failed to write node %s: %w", n.ID, err)
		}
	}
	for _, e := range g.Edges() {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode edge %d: %w", e.Seq, err)
		}
		if err := wb.Set(seqKey(edgePrefix, e.Seq), data); err != nil {
			return fmt.Errorf("failed to write edge %d: %w", e.Seq, err)
		}
	}

	// The header goes last so a partially written store has no meta key.
	meta, err := json.Marshal(newHeader(g))
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if err := wb.Set(metaKey, meta); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return wb.Flush()
}

// Load reads the graph back in insertion order.
func (s *BadgerStore) Load(ctx context.Context) (*graph.TemporalGraph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Without a manifest there is no database, and opening one would create it.
	if _, err := os.Stat(filepath.Join(s.dir, badger.ManifestFilename)); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.dir)
	}

	db, err := s.open(true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var (
		nodes []types.Node
		edges []types.TemporalEdge
	)
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, s.dir)
		}
		if err != nil {
			return err
		}
		var header Header
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &header)
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if err := header.check(); err != nil {
			return err
		}

		if err := scanPrefix(txn, nodePrefix, func(val []byte) error {
			var n types.Node
			if err := json.Unmarshal(val, &n); err != nil {
				return err
			}
			nodes = append(nodes, n)
			return nil
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}

		if err := scanPrefix(txn, edgePrefix, func(val []byte) error {
			var e types.TemporalEdge
			if err := json.Unmarshal(val, &e); err != nil {
				return err
			}
			edges = append(edges, e)
			return nil
		}); err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restore(nodes, edges)
}

func scanPrefix(txn *badger.Txn, prefix []byte, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if err := it.Item().Value(fn); err != nil {
			return err
		}
	}
	return nil
}
