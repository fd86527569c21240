// Package extract picks the brand an individual review is about.
//
// A Recognizer finds named-entity spans; the Extractor keeps the
// organization spans, drops generic marketplace tokens, and returns the
// first remaining candidate.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInsufficientContent is returned for texts shorter than MinTextLength.
	ErrInsufficientContent = errors.New("insufficient content")
	// ErrNoEntity is returned when no organization survives filtering.
	ErrNoEntity = errors.New("no brand entity found")
)

const (
	// DefaultMinTextLength is the shortest text worth running NER on.
	DefaultMinTextLength = 15
	// DefaultMinEntityLength is the shortest accepted entity, in runes.
	DefaultMinEntityLength = 3
)

// DefaultDenyList holds tokens that look like organizations but never name a brand.
var DefaultDenyList = []string{"amazon", "seller", "usa", "china"}

// orgLabels are the organization labels emitted by the supported backends.
var orgLabels = map[string]bool{
	"org":          true,
	"b-org":        true,
	"i-org":        true,
	"organization": true,
}

// Entity is one recognized span.
type Entity struct {
	Text  string
	Label string
	Score float64
}

// IsOrganization reports whether the entity carries an organization label.
func (e Entity) IsOrganization() bool {
	return orgLabels[strings.ToLower(e.Label)]
}

// Recognizer finds named entities in text.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// Options tunes the Extractor filters.
type Options struct {
	MinTextLength   int
	MinEntityLength int
	DenyList        []string
}

// Extractor turns review text into a single brand name.
type Extractor struct {
	recognizer      Recognizer
	minTextLength   int
	minEntityLength int
	deny            map[string]bool
}

// New creates an Extractor. A nil opts uses the defaults.
func New(r Recognizer, opts *Options) *Extractor {
	if opts == nil {
		opts = &Options{}
	}
	e := &Extractor{
		recognizer:      r,
		minTextLength:   opts.MinTextLength,
		minEntityLength: opts.MinEntityLength,
		deny:            make(map[string]bool),
	}
	if e.minTextLength <= 0 {
		e.minTextLength = DefaultMinTextLength
	}
	if e.minEntityLength <= 0 {
		e.minEntityLength = DefaultMinEntityLength
	}
	deny := opts.DenyList
	if deny == nil {
		deny = DefaultDenyList
	}
	for _, d := range deny {
		e.deny[strings.ToLower(strings.TrimSpace(d))] = true
	}
	return e
}

// Extract returns the first organization in text that passes the length and
// deny-list filters.
func (e *Extractor) Extract(ctx context.Context, text string) (string, error) {
	if utf8.RuneCountInString(text) < e.minTextLength {
		return "", ErrInsufficientContent
	}

	entities, err := e.recognizer.Recognize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("entity recognition failed: %w", err)
	}

	candidates := e.Candidates(entities)
	if len(candidates) == 0 {
		return "", ErrNoEntity
	}
	return candidates[0], nil
}

// Candidates filters entities down to acceptable brand names, in order.
// Word-level BIO tags are first joined into whole organization spans.
func (e *Extractor) Candidates(entities []Entity) []string {
	var out []string
	for _, span := range orgSpans(entities) {
		name := strings.TrimSpace(span)
		if utf8.RuneCountInString(name) < e.minEntityLength {
			continue
		}
		if e.deny[strings.ToLower(name)] {
			continue
		}
		out = append(out, name)
	}
	return out
}

// orgSpans returns the organization spans in entities. A B-ORG word starts a
// span and the I-ORG words after it extend it; "##" word pieces attach
// without a space. An I-ORG word with no open span starts one.
func orgSpans(entities []Entity) []string {
	var (
		spans []string
		cur   strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			spans = append(spans, cur.String())
			cur.Reset()
		}
	}

	for _, ent := range entities {
		word := strings.TrimSpace(ent.Text)
		switch strings.ToLower(ent.Label) {
		case "b-org":
			flush()
			cur.WriteString(strings.TrimPrefix(word, "##"))
		case "i-org":
			switch {
			case cur.Len() == 0:
				cur.WriteString(strings.TrimPrefix(word, "##"))
			case strings.HasPrefix(word, "##"):
				cur.WriteString(strings.TrimPrefix(word, "##"))
			default:
				cur.WriteByte(' ')
				cur.WriteString(word)
			}
		case "org", "organization":
			flush()
			spans = append(spans, word)
		default:
			flush()
		}
	}
	flush()
	return spans
}
