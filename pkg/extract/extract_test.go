package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	entities []Entity
	err      error
	calls    int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ string) ([]Entity, error) {
	f.calls++
	return f.entities, f.err
}

func TestExtractShortTextSkipsRecognizer(t *testing.T) {
	r := &fakeRecognizer{entities: []Entity{{Text: "Apple", Label: "ORG"}}}
	ex := New(r, nil)

	_, err := ex.Extract(context.Background(), "too short")
	assert.ErrorIs(t, err, ErrInsufficientContent)
	assert.Zero(t, r.calls)

	// 15 runes is enough.
	brand, err := ex.Extract(context.Background(), strings.Repeat("é", 14)+".")
	require.NoError(t, err)
	assert.Equal(t, "Apple", brand)
}

func TestExtractFilters(t *testing.T) {
	text := "Bought from Amazon, a USA seller, made by HP and Logitech."
	tests := []struct {
		name     string
		entities []Entity
		want     string
		wantErr  error
	}{
		{
			name: "deny list is case insensitive",
			entities: []Entity{
				{Text: "AMAZON", Label: "ORG"},
				{Text: "Seller", Label: "ORG"},
				{Text: "Logitech", Label: "ORG"},
			},
			want: "Logitech",
		},
		{
			name: "short entities are dropped",
			entities: []Entity{
				{Text: "HP", Label: "ORG"},
				{Text: "Logitech", Label: "B-ORG"},
			},
			want: "Logitech",
		},
		{
			name: "non organization labels are dropped",
			entities: []Entity{
				{Text: "California", Label: "LOC"},
				{Text: "Sony", Label: "organization"},
			},
			want: "Sony",
		},
		{
			name: "first candidate wins",
			entities: []Entity{
				{Text: "Sony", Label: "ORG"},
				{Text: "Logitech", Label: "ORG"},
			},
			want: "Sony",
		},
		{
			name:     "nothing left",
			entities: []Entity{{Text: "usa", Label: "ORG"}, {Text: "Tim", Label: "PER"}},
			wantErr:  ErrNoEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := New(&fakeRecognizer{entities: tt.entities}, nil)
			got, err := ex.Extract(context.Background(), text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJoinsTaggedWords(t *testing.T) {
	tests := []struct {
		name     string
		entities []Entity
		want     string
	}{
		{
			name:     "begin and inside words form one span",
			entities: []Entity{{Text: "LG", Label: "B-ORG"}, {Text: "Electronics", Label: "I-ORG"}},
			want:     "LG Electronics",
		},
		{
			name: "punctuation inside a span",
			entities: []Entity{
				{Text: "Bang", Label: "B-ORG"},
				{Text: "&", Label: "I-ORG"},
				{Text: "Olufsen", Label: "I-ORG"},
			},
			want: "Bang & Olufsen",
		},
		{
			name:     "word pieces attach without a space",
			entities: []Entity{{Text: "Logi", Label: "B-ORG"}, {Text: "##tech", Label: "I-ORG"}},
			want:     "Logitech",
		},
		{
			name: "a new begin tag closes the span",
			entities: []Entity{
				{Text: "HP", Label: "B-ORG"},
				{Text: "Sony", Label: "B-ORG"},
				{Text: "Music", Label: "I-ORG"},
			},
			want: "Sony Music",
		},
		{
			name: "other labels close the span",
			entities: []Entity{
				{Text: "LG", Label: "B-ORG"},
				{Text: "Seoul", Label: "LOC"},
				{Text: "Display", Label: "I-ORG"},
			},
			want: "Display",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := New(&fakeRecognizer{entities: tt.entities}, nil)
			got, err := ex.Extract(context.Background(), "a long enough review text")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractCustomDenyList(t *testing.T) {
	ex := New(&fakeRecognizer{entities: []Entity{{Text: "Amazon", Label: "ORG"}, {Text: "Walmart", Label: "ORG"}}},
		&Options{DenyList: []string{"walmart"}})
	brand, err := ex.Extract(context.Background(), "Amazon Basics cable from Walmart")
	require.NoError(t, err)
	assert.Equal(t, "Amazon", brand)
}

func TestExtractRecognizerError(t *testing.T) {
	boom := errors.New("model crashed")
	ex := New(&fakeRecognizer{err: boom}, nil)
	_, err := ex.Extract(context.Background(), "a long enough review text")
	assert.ErrorIs(t, err, boom)
}
