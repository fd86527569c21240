package nlp_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/reviewgraph/pkg/nlp"
)

func TestCompletionErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("batch 3: %w", &nlp.CompletionError{Model: "gpt-4o-mini", Kind: nlp.ErrRateLimit, Err: cause})

	assert.ErrorIs(t, err, nlp.ErrRateLimit)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, nlp.ErrRefusal)
	assert.True(t, nlp.IsRateLimit(err))
	assert.Equal(t, "batch 3: rate limited (model gpt-4o-mini): connection reset", err.Error())
}

func TestCompletionErrorWithoutKind(t *testing.T) {
	err := &nlp.CompletionError{Err: errors.New("dial tcp: refused")}
	assert.Equal(t, "chat completion failed: dial tcp: refused", err.Error())
	assert.False(t, nlp.IsRateLimit(err))
}
