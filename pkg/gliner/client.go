// Package gliner provides a span-based entity recognizer backed by
// go-gline-rs GLiNER models.
package gliner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/soundprediction/go-gline-rs/pkg/gline"

	"github.com/soundprediction/reviewgraph/pkg/extract"
)

// DefaultLabels are the entity labels requested from the span model.
var DefaultLabels = []string{"organization"}

// Client wraps a GLiNER span model.
type Client struct {
	spanModel *gline.Model
	labels    []string
	threshold float64
	mu        sync.Mutex
}

// NewClient loads a span model from a local directory (containing
// model.onnx and tokenizer.json) or, failing that, a HuggingFace id.
func NewClient(modelID string, labels []string, threshold float64) (*Client, error) {
	if err := gline.Init(); err != nil {
		return nil, fmt.Errorf("failed to init gline: %w", err)
	}
	if len(labels) == 0 {
		labels = DefaultLabels
	}

	var (
		m   *gline.Model
		err error
	)
	if _, statErr := os.Stat(modelID); statErr == nil {
		m, err = gline.NewSpanModel(filepath.Join(modelID, "model.onnx"), filepath.Join(modelID, "tokenizer.json"))
	} else {
		m, err = gline.NewSpanModelFromHF(modelID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load span model %s: %w", modelID, err)
	}

	return &Client{spanModel: m, labels: labels, threshold: threshold}, nil
}

// Close releases the span model.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spanModel != nil {
		c.spanModel.Close()
		c.spanModel = nil
	}
}

// Recognize implements extract.Recognizer.
func (c *Client) Recognize(ctx context.Context, text string) ([]extract.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spanModel == nil {
		return nil, fmt.Errorf("span model not loaded")
	}

	results, err := c.spanModel.Predict([]string{text}, c.labels)
	if err != nil {
		return nil, fmt.Errorf("span prediction failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	var entities []extract.Entity
	for _, e := range results[0] {
		score := float64(e.Probability)
		if score < c.threshold {
			continue
		}
		entities = append(entities, extract.Entity{
			Text:  e.Text,
			Label: e.Label,
			Score: score,
		})
	}
	return entities, nil
}

var _ extract.Recognizer = (*Client)(nil)
