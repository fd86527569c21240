// Package types defines the core data types for the reviewgraph temporal graph.
//
// This package contains the fundamental types used throughout reviewgraph:
//   - Node: a Brand or Review vertex identified by (Type, ID)
//   - TemporalEdge: one dated, topic/sentiment-tagged fact between two nodes
//   - TopicLabel / SentimentLabel: closed label sets with explicit names
//   - Record: one field-normalized review row produced by a record source
//
// # Labels
//
// Topic and sentiment labels are tagged variants rather than free strings.
// Each TopicLabel maps to a canonical candidate phrase through a versioned
// table (TopicPhrasesV1) used by zero-shot classification:
//
//	phrase := types.TopicQuality.Phrase()
//	label, ok := types.TopicFromPhrase(phrase)
//
// # Text Serialization
//
// Labels implement encoding.TextMarshaler so they serialize by name in JSON,
// YAML and persisted snapshots.
package types
