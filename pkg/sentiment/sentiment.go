// Package sentiment labels reviews as positive, negative or neutral.
//
// The star rating decides when it is decisive. Otherwise a lexicon
// analyzer scores the review text and its compound score is thresholded.
package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/soundprediction/reviewgraph/pkg/config"
	"github.com/soundprediction/reviewgraph/pkg/types"
)

// Default thresholds.
const (
	DefaultPositiveRating   = 4.5
	DefaultNegativeRating   = 2.0
	DefaultPositiveCompound = 0.05
	DefaultNegativeCompound = -0.05
)

// Analyzer returns a normalized compound polarity in [-1, 1].
type Analyzer interface {
	Compound(text string) float64
}

// VADER is the default Analyzer.
type VADER struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVADER loads the VADER lexicon.
func NewVADER() *VADER {
	return &VADER{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Compound implements Analyzer.
func (v *VADER) Compound(text string) float64 {
	return v.sia.PolarityScores(text).Compound
}

// Scorer combines a rating with a text analyzer.
type Scorer struct {
	Analyzer         Analyzer
	PositiveRating   float64
	NegativeRating   float64
	PositiveCompound float64
	NegativeCompound float64
}

// NewScorer creates a Scorer with default thresholds. A nil analyzer uses VADER.
func NewScorer(a Analyzer) *Scorer {
	if a == nil {
		a = NewVADER()
	}
	return &Scorer{
		Analyzer:         a,
		PositiveRating:   DefaultPositiveRating,
		NegativeRating:   DefaultNegativeRating,
		PositiveCompound: DefaultPositiveCompound,
		NegativeCompound: DefaultNegativeCompound,
	}
}

// NewScorerFromConfig creates a Scorer with thresholds from cfg.
func NewScorerFromConfig(a Analyzer, cfg config.SentimentConfig) *Scorer {
	s := NewScorer(a)
	s.PositiveRating = cfg.PositiveRating
	s.NegativeRating = cfg.NegativeRating
	s.PositiveCompound = cfg.PositiveCompound
	s.NegativeCompound = cfg.NegativeCompound
	return s
}

// Score labels a review. The analyzer is only consulted when the rating
// falls strictly between the rating thresholds.
func (s *Scorer) Score(rating float64, text string) types.SentimentLabel {
	switch {
	case rating >= s.PositiveRating:
		return types.SentimentPositive
	case rating <= s.NegativeRating:
		return types.SentimentNegative
	}

	compound := s.Analyzer.Compound(text)
	switch {
	case compound >= s.PositiveCompound:
		return types.SentimentPositive
	case compound <= s.NegativeCompound:
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}
