package types

import "time"

// FullTextSeparator joins a review's summary and body.
const FullTextSeparator = " . "

// Record is one normalized review row read from an input file.
type Record struct {
	// Index is the zero-based raw row index within the source file.
	Index int
	// Source is the base name of the input file.
	Source    string
	Rating    float64
	Summary   string
	Text      string
	Timestamp *time.Time
}

// FullText returns the summary and body joined by FullTextSeparator.
func (r Record) FullText() string {
	return r.Summary + FullTextSeparator + r.Text
}
