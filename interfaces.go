package reviewgraph

import (
	"context"

	"github.com/soundprediction/reviewgraph/pkg/classify"
	"github.com/soundprediction/reviewgraph/pkg/extract"
	"github.com/soundprediction/reviewgraph/pkg/sentiment"
	"github.com/soundprediction/reviewgraph/pkg/types"
)

// The pipeline depends only on these narrow interfaces so model handles can
// be constructed once by the caller and swapped for fakes in tests.

// EntityExtractor picks the brand a review text is about.
// It returns extract.ErrInsufficientContent or extract.ErrNoEntity when the
// record should be dropped.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) (string, error)
}

// TopicClassifier labels a batch of texts. Output position i corresponds to
// input position i; any error fails the whole batch.
type TopicClassifier interface {
	ClassifyBatch(ctx context.Context, texts []string) ([]types.TopicLabel, error)
}

// SentimentScorer labels a single review from its rating and text.
type SentimentScorer interface {
	Score(rating float64, text string) types.SentimentLabel
}

var (
	_ EntityExtractor = (*extract.Extractor)(nil)
	_ TopicClassifier = (*classify.TopicClassifier)(nil)
	_ SentimentScorer = (*sentiment.Scorer)(nil)
)
