// Package graph implements the in-memory temporal multi-edge graph that
// stores review facts and answers point-in-time snapshot queries.
//
// The graph is an arena: nodes live in a map keyed by (type, id) and edges
// in an append-only slice whose index is the edge sequence number. Edges are
// never removed or mutated, so the edge count never decreases over the
// lifetime of a graph.
package graph

import (
	"sort"
	"strings"
	"sync"

	"github.com/soundprediction/reviewgraph/pkg/types"
)

type nodeKey struct {
	typ types.NodeType
	id  string
}

// TemporalGraph holds nodes and dated edges. Reads may run concurrently;
// writes are expected from a single ingestion goroutine.
type TemporalGraph struct {
	mu    sync.RWMutex
	nodes map[nodeKey]*types.Node
	order []nodeKey
	edges []types.TemporalEdge
}

// Stats summarizes the graph contents.
type Stats struct {
	Nodes   int                          `json:"nodes" yaml:"nodes"`
	Edges   int                          `json:"edges" yaml:"edges"`
	Brands  int                          `json:"brands" yaml:"brands"`
	Reviews int                          `json:"reviews" yaml:"reviews"`
	Topics  map[types.TopicLabel]int     `json:"topics,omitempty" yaml:"topics,omitempty"`
	Moods   map[types.SentimentLabel]int `json:"sentiments,omitempty" yaml:"sentiments,omitempty"`
}

// New creates an empty graph.
func New() *TemporalGraph {
	return &TemporalGraph{
		nodes: make(map[nodeKey]*types.Node),
	}
}

// AddFact upserts the brand and review nodes and appends one edge between
// them. Node properties are write-once: an existing node keeps its original
// properties. The edge's endpoint ids are taken from the nodes and its Seq
// is assigned here. The committed sequence number is returned.
func (g *TemporalGraph) AddFact(brand, review types.Node, edge types.TemporalEdge) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.upsertLocked(brand)
	g.upsertLocked(review)

	edge.Seq = uint64(len(g.edges))
	edge.SourceID = brand.ID
	edge.TargetID = review.ID
	g.edges = append(g.edges, edge)
	return edge.Seq
}

func (g *TemporalGraph) upsertLocked(n types.Node) {
	key := nodeKey{typ: n.Type, id: n.ID}
	if _, ok := g.nodes[key]; ok {
		return
	}
	c := n.Clone()
	g.nodes[key] = &c
	g.order = append(g.order, key)
}

// restoreEdge appends an edge as persisted, keeping its endpoints.
// Sequence numbers are reassigned to the slice position.
func (g *TemporalGraph) restoreEdge(edge types.TemporalEdge) {
	edge.Seq = uint64(len(g.edges))
	g.edges = append(g.edges, edge)
}

// Restore rebuilds a graph from persisted nodes and edges, both in insertion order.
func Restore(nodes []types.Node, edges []types.TemporalEdge) *TemporalGraph {
	g := New()
	for _, n := range nodes {
		g.upsertLocked(n)
	}
	g.edges = make([]types.TemporalEdge, 0, len(edges))
	for _, e := range edges {
		g.restoreEdge(e)
	}
	return g
}

// NodeCount returns the number of distinct nodes.
func (g *TemporalGraph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of committed edges.
func (g *TemporalGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// Node looks up a node by type and id.
func (g *TemporalGraph) Node(typ types.NodeType, id string) (types.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[nodeKey{typ: typ, id: id}]
	if !ok {
		return types.Node{}, false
	}
	return n.Clone(), true
}

// Nodes returns copies of all nodes in insertion order.
func (g *TemporalGraph) Nodes() []types.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]types.Node, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.nodes[key].Clone())
	}
	return out
}

// NodesByType returns the nodes of one type in insertion order.
func (g *TemporalGraph) NodesByType(typ types.NodeType) []types.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []types.Node
	for _, key := range g.order {
		if key.typ == typ {
			out = append(out, g.nodes[key].Clone())
		}
	}
	return out
}

// Edges returns a copy of the edge list in commit order.
func (g *TemporalGraph) Edges() []types.TemporalEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]types.TemporalEdge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Brands returns all brand ids sorted alphabetically.
func (g *TemporalGraph) Brands() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var brands []string
	for key := range g.nodes {
		if key.typ == types.BrandNodeType {
			brands = append(brands, key.id)
		}
	}
	sort.Strings(brands)
	return brands
}

// FindBrand returns the stored brand id equal to name ignoring case.
func (g *TemporalGraph) FindBrand(name string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if _, ok := g.nodes[nodeKey{typ: types.BrandNodeType, id: name}]; ok {
		return name, true
	}
	for _, key := range g.order {
		if key.typ == types.BrandNodeType && strings.EqualFold(key.id, name) {
			return key.id, true
		}
	}
	return "", false
}

// Stats returns node, edge and label counts.
func (g *TemporalGraph) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := Stats{
		Nodes:  len(g.nodes),
		Edges:  len(g.edges),
		Topics: make(map[types.TopicLabel]int),
		Moods:  make(map[types.SentimentLabel]int),
	}
	for key := range g.nodes {
		switch key.typ {
		case types.BrandNodeType:
			s.Brands++
		case types.ReviewNodeType:
			s.Reviews++
		}
	}
	for i := range g.edges {
		s.Topics[g.edges[i].Topic]++
		s.Moods[g.edges[i].Sentiment]++
	}
	return s
}
