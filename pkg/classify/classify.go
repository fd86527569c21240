// Package classify assigns topic labels to batches of review texts using a
// zero-shot classifier.
//
// A ZeroShot backend ranks candidate phrases for each text. TopicClassifier
// offers the TopicPhrasesV1 candidates and maps each text's top phrase back
// to a types.TopicLabel. Output position i always corresponds to input
// position i.
package classify

import (
	"context"
	"errors"
	"fmt"

	"github.com/soundprediction/reviewgraph/pkg/types"
)

// DefaultMaxTextChars is the per-text truncation applied before classification.
const DefaultMaxTextChars = 512

var (
	// ErrLengthMismatch is returned when a backend does not return one
	// ranking per input text.
	ErrLengthMismatch = errors.New("classifier returned wrong number of rankings")
)

// Ranking holds candidate labels ordered best-first with their scores.
// Scores may be shorter than Labels when a backend reports only the top score.
type Ranking struct {
	Labels []string
	Scores []float64
}

// Top returns the best label, if any.
func (r Ranking) Top() (string, bool) {
	if len(r.Labels) == 0 {
		return "", false
	}
	return r.Labels[0], true
}

// ZeroShot ranks candidate labels for each text.
type ZeroShot interface {
	Classify(ctx context.Context, texts []string, candidates []string) ([]Ranking, error)
}

// TopicClassifier labels review texts with topics.
type TopicClassifier struct {
	backend      ZeroShot
	maxTextChars int
	candidates   []string
}

// NewTopicClassifier creates a classifier over backend. maxTextChars <= 0
// uses DefaultMaxTextChars.
func NewTopicClassifier(backend ZeroShot, maxTextChars int) *TopicClassifier {
	if maxTextChars <= 0 {
		maxTextChars = DefaultMaxTextChars
	}
	return &TopicClassifier{
		backend:      backend,
		maxTextChars: maxTextChars,
		candidates:   types.TopicPhrases(),
	}
}

// ClassifyBatch returns one topic per text. Any backend error fails the
// whole batch.
func (c *TopicClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]types.TopicLabel, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = truncateRunes(t, c.maxTextChars)
	}

	rankings, err := c.backend.Classify(ctx, inputs, c.candidates)
	if err != nil {
		return nil, fmt.Errorf("classify batch of %d: %w", len(texts), err)
	}
	if len(rankings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d for %d texts", ErrLengthMismatch, len(rankings), len(texts))
	}

	labels := make([]types.TopicLabel, len(rankings))
	for i, r := range rankings {
		labels[i] = types.TopicGeneral
		if top, ok := r.Top(); ok {
			if topic, ok := types.TopicFromPhrase(top); ok {
				labels[i] = topic
			}
		}
	}
	return labels, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
