// Package graph models the subgraphs returned by expansions: nodes, directed links
// and the set operations used to accumulate them.
package graph

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Graph is an immutable snapshot of nodes (deduplicated by id) and links
// (deduplicated structurally). Every transformation returns a new Graph.
type Graph struct {
	nodes map[string]Node
	links map[string]Link
}

// EmptyGraph returns a Graph with no nodes and no links. It is the identity of Merge.
func EmptyGraph() *Graph {
	return &Graph{nodes: map[string]Node{}, links: map[string]Link{}}
}

// NewGraph copies nodes and links into a new Graph. When several nodes share an id
// the first one is kept.
func NewGraph(nodes []Node, links []Link) *Graph {
	g := &Graph{
		nodes: make(map[string]Node, len(nodes)),
		links: make(map[string]Link, len(links)),
	}
	for _, n := range nodes {
		if _, ok := g.nodes[n.id]; !ok {
			g.nodes[n.id] = n
		}
	}
	for _, l := range links {
		g.links[l.setKey()] = l
	}
	return g
}

// FromPaths ingests every node and relationship touched by paths.
func FromPaths(paths []Path) (*Graph, error) {
	var nodes []Node
	var links []Link
	for _, p := range paths {
		for _, rec := range p.Nodes {
			n, err := NodeFrom(rec)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		for _, rec := range p.Relationships {
			l, err := LinkFrom(rec)
			if err != nil {
				return nil, err
			}
			links = append(links, l)
		}
	}
	return NewGraph(nodes, links), nil
}

// IsEmpty reports whether the graph has neither nodes nor links.
func (g *Graph) IsEmpty() bool {
	return g == nil || (len(g.nodes) == 0 && len(g.links) == 0)
}

func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

func (g *Graph) LinkCount() int {
	if g == nil {
		return 0
	}
	return len(g.links)
}

// Nodes returns the nodes ordered by id.
func (g *Graph) Nodes() []Node {
	if g == nil {
		return []Node{}
	}
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Links returns the links ordered by source, target and label.
func (g *Graph) Links() []Link {
	if g == nil {
		return []Link{}
	}
	out := make([]Link, 0, len(g.links))
	for _, l := range g.links {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].setKey() < out[j].setKey() })
	return out
}

// Node looks a node up by id.
func (g *Graph) Node(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	n, ok := g.nodes[id]
	return n, ok
}

// ContainsLink reports whether a structurally equal link is in the graph.
func (g *Graph) ContainsLink(l Link) bool {
	if g == nil {
		return false
	}
	_, ok := g.links[l.setKey()]
	return ok
}

// NodeByLabel finds a node captioned label. If several nodes share the caption,
// the one with the smallest id is returned.
func (g *Graph) NodeByLabel(label string) (Node, bool) {
	for _, n := range g.Nodes() {
		if n.label == label {
			return n, true
		}
	}
	return Node{}, false
}

// UndirectedNeighborsOf returns the nodes of this graph joined to n by a link in
// either direction. n itself is never included, and a node without incident links
// (or absent from the graph) has no neighbors.
func (g *Graph) UndirectedNeighborsOf(n Node) []Node {
	if g == nil {
		return []Node{}
	}
	ids := make(map[string]struct{})
	for _, l := range g.links {
		if !l.Touches(n.id) {
			continue
		}
		for _, id := range [2]string{l.sourceNodeID, l.targetNodeID} {
			if id != n.id {
				ids[id] = struct{}{}
			}
		}
	}

	out := make([]Node, 0, len(ids))
	for id := range ids {
		if neighbor, ok := g.nodes[id]; ok {
			out = append(out, neighbor)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Merge returns the union of both graphs. When both sides hold a node with the
// same id but different captions or attributes, the receiver's copy is kept;
// as nodes compare by id the two results are equal either way.
func (g *Graph) Merge(other *Graph) *Graph {
	out := &Graph{
		nodes: make(map[string]Node, g.NodeCount()+other.NodeCount()),
		links: make(map[string]Link, g.LinkCount()+other.LinkCount()),
	}
	for _, src := range [2]*Graph{g, other} {
		if src == nil {
			continue
		}
		for id, n := range src.nodes {
			if _, ok := out.nodes[id]; !ok {
				out.nodes[id] = n
			}
		}
		for k, l := range src.links {
			out.links[k] = l
		}
	}
	return out
}

// Equal reports set equality: same node ids and structurally equal links.
func (g *Graph) Equal(other *Graph) bool {
	if g.NodeCount() != other.NodeCount() || g.LinkCount() != other.LinkCount() {
		return false
	}
	if g == nil || other == nil {
		return true
	}
	for id := range g.nodes {
		if _, ok := other.nodes[id]; !ok {
			return false
		}
	}
	for k := range g.links {
		if _, ok := other.links[k]; !ok {
			return false
		}
	}
	return true
}

// View is the serialized shape of a Graph.
type View struct {
	Nodes []NodeView `json:"nodes"`
	Links []LinkView `json:"links"`
}

// View returns the nodes and links of the graph in serialization order.
func (g *Graph) View() View {
	v := View{Nodes: []NodeView{}, Links: []LinkView{}}
	for _, n := range g.Nodes() {
		v.Nodes = append(v.Nodes, n.View())
	}
	for _, l := range g.Links() {
		v.Links = append(v.Links, l.View())
	}
	return v
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.View())
}

// String returns the JSON form of the graph.
func (g *Graph) String() string {
	data, err := g.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("graph(%d nodes, %d links)", g.NodeCount(), g.LinkCount())
	}
	return string(data)
}
