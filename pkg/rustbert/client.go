// Package rustbert provides a BERT token-classification recognizer backed
// by go-rust-bert.
package rustbert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/soundprediction/go-rust-bert/pkg/rustbert"

	"github.com/soundprediction/reviewgraph/pkg/extract"
)

// Client wraps a go-rust-bert NER model. The model is loaded on first use
// and calls are serialized because the underlying handle is not safe for
// concurrent prediction.
type Client struct {
	config   Config
	nerModel *rustbert.NERModel
	logger   *slog.Logger
	mu       sync.Mutex
}

// Config holds configuration for RustBert models
type Config struct {
	// NERModelID is a HuggingFace model id. Empty selects the library's
	// default BERT NER model.
	NERModelID string
	// MinScore drops predictions below this confidence.
	MinScore float64
	Logger   *slog.Logger
}

// NewClient creates a new RustBert client.
func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config: cfg,
		logger: logger,
	}
}

// LoadNERModel loads the NER model.
// If NERModelID is set, it downloads artifacts and loads from files.
func (c *Client) LoadNERModel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

func (c *Client) loadLocked() error {
	if c.nerModel != nil {
		return nil
	}

	if c.config.NERModelID != "" {
		c.logger.Info("Loading custom NER model", "model", c.config.NERModelID)
		modelPath, configPath, vocabPath, mergesPath, err := rustbert.DownloadArtifacts(c.config.NERModelID, "")
		if err != nil {
			return fmt.Errorf("failed to download artifacts for %s: %w", c.config.NERModelID, err)
		}

		m, err := rustbert.NewNERModelFromFiles(modelPath, configPath, vocabPath, mergesPath, rustbert.ModelTypeBert)
		if err != nil {
			return fmt.Errorf("failed to create custom NER model: %w", err)
		}
		c.nerModel = m
		return nil
	}

	m, err := rustbert.NewNERModel()
	if err != nil {
		return fmt.Errorf("failed to create NER model: %w", err)
	}
	c.nerModel = m
	return nil
}

// Close releases the loaded model.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.nerModel != nil {
		c.nerModel.Close()
		c.nerModel = nil
	}
}

// Recognize implements extract.Recognizer.
func (c *Client) Recognize(ctx context.Context, text string) ([]extract.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(); err != nil {
		return nil, err
	}

	results, err := c.nerModel.Predict(text)
	if err != nil {
		return nil, fmt.Errorf("NER prediction failed: %w", err)
	}

	entities := make([]extract.Entity, 0, len(results))
	for _, r := range results {
		if r.Score < c.config.MinScore {
			continue
		}
		entities = append(entities, extract.Entity{
			Text:  r.Word,
			Label: r.Label,
			Score: r.Score,
		})
	}
	return entities, nil
}

var _ extract.Recognizer = (*Client)(nil)
