package types

import (
	"errors"
	"maps"
)

// Validation errors
var (
	ErrEmptyID       = errors.New("id cannot be empty")
	ErrInvalidType   = errors.New("invalid node type")
	ErrUnknownTopic  = errors.New("unknown topic label")
	ErrUnknownMood   = errors.New("unknown sentiment label")
	ErrEmptyRelation = errors.New("relation cannot be empty")
)

// NodeType represents the namespace a node id lives in.
type NodeType string

const (
	// BrandNodeType is an organization extracted from review text.
	BrandNodeType NodeType = "Brand"
	// ReviewNodeType is a single review record.
	ReviewNodeType NodeType = "Review"
)

// Valid reports whether the node type is one of the known namespaces.
func (t NodeType) Valid() bool {
	return t == BrandNodeType || t == ReviewNodeType
}

// Well-known property keys.
const (
	// PropertyText holds the (truncated) review text rendered by snapshots.
	PropertyText = "text"
	// PropertyRating holds the numeric rating of a review.
	PropertyRating = "rating"
	// PropertySource holds the input file a review came from.
	PropertySource = "source"
)

// Node represents a vertex in the temporal graph.
// Identity is (Type, ID); properties are written once at creation.
type Node struct {
	ID         string         `json:"id" yaml:"id"`
	Type       NodeType       `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// NewBrandNode creates a brand node for the extracted entity string.
func NewBrandNode(name string) Node {
	return Node{ID: name, Type: BrandNodeType}
}

// NewReviewNode creates a review node carrying the snapshot text.
func NewReviewNode(id, text string) Node {
	return Node{
		ID:   id,
		Type: ReviewNodeType,
		Properties: map[string]any{
			PropertyText: text,
		},
	}
}

// Validate checks if the Node has all required fields set.
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if !n.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// Text returns the node's text property and whether it was present as a string.
func (n *Node) Text() (string, bool) {
	if n.Properties == nil {
		return "", false
	}
	s, ok := n.Properties[PropertyText].(string)
	return s, ok
}

// Clone returns a copy of the node with its own property map.
func (n Node) Clone() Node {
	if n.Properties != nil {
		n.Properties = maps.Clone(n.Properties)
	}
	return n
}
