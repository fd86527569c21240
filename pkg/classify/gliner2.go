package classify

import (
	"context"
	"fmt"

	"github.com/soundprediction/reviewgraph/pkg/gliner2"
)

// topicTask names the classification task sent to GLiNER2.
const topicTask = "topic"

// GLiNER2Backend classifies texts through a GLiNER2 classify_text service.
// The service handles one text per request, so a batch costs len(texts)
// calls and fails on the first error.
type GLiNER2Backend struct {
	client    *gliner2.HTTPClient
	threshold float64
}

// NewGLiNER2Backend creates a backend over client.
func NewGLiNER2Backend(client *gliner2.HTTPClient, threshold float64) *GLiNER2Backend {
	return &GLiNER2Backend{client: client, threshold: threshold}
}

// Classify implements ZeroShot.
func (b *GLiNER2Backend) Classify(ctx context.Context, texts []string, candidates []string) ([]Ranking, error) {
	schema := map[string][]string{topicTask: candidates}

	rankings := make([]Ranking, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := b.client.ClassifyText(ctx, text, schema, b.threshold)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		c, ok := res.Classifications[topicTask]
		if !ok {
			continue
		}
		rankings[i] = rankingFrom(c)
	}
	return rankings, nil
}

func rankingFrom(c gliner2.Classification) Ranking {
	var r Ranking
	seen := make(map[string]bool)
	if c.Label != "" {
		r.Labels = append(r.Labels, c.Label)
		r.Scores = append(r.Scores, c.Confidence)
		seen[c.Label] = true
	}
	for _, l := range c.Labels {
		if !seen[l] {
			r.Labels = append(r.Labels, l)
			seen[l] = true
		}
	}
	return r
}
