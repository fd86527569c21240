package types

import "time"

// RelationReviewedIn links a brand to a review that mentions it.
const RelationReviewedIn = "REVIEWED_IN"

// TemporalEdge is one immutable dated fact between two nodes.
// Seq is assigned by the graph at commit time.
type TemporalEdge struct {
	Seq       uint64         `json:"seq" yaml:"seq"`
	SourceID  string         `json:"source_id" yaml:"source_id"`
	TargetID  string         `json:"target_id" yaml:"target_id"`
	Relation  string         `json:"relation" yaml:"relation"`
	Topic     TopicLabel     `json:"topic" yaml:"topic"`
	Sentiment SentimentLabel `json:"sentiment" yaml:"sentiment"`
	StartDate time.Time      `json:"start_date" yaml:"start_date"`
	EndDate   *time.Time     `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// NewReviewEdge creates a REVIEWED_IN edge that is valid from start onwards.
func NewReviewEdge(topic TopicLabel, sentiment SentimentLabel, start time.Time) TemporalEdge {
	return TemporalEdge{
		Relation:  RelationReviewedIn,
		Topic:     topic,
		Sentiment: sentiment,
		StartDate: start,
	}
}

// ActiveAt reports whether the edge is valid on the given date.
// Both bounds are inclusive; a nil EndDate is open-ended.
func (e *TemporalEdge) ActiveAt(date time.Time) bool {
	if e.StartDate.After(date) {
		return false
	}
	return e.EndDate == nil || !e.EndDate.Before(date)
}

// Validate checks the fields an edge needs before it can be committed.
func (e *TemporalEdge) Validate() error {
	if e.Relation == "" {
		return ErrEmptyRelation
	}
	if e.SourceID == "" || e.TargetID == "" {
		return ErrEmptyID
	}
	return nil
}
