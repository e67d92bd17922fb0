package graph

import (
	"encoding/json"
	"maps"
)

// Node is a graph vertex. Two nodes are the same node when their ids match,
// whatever their labels or attributes.
type Node struct {
	id         string
	label      string
	attributes map[string]any
}

// NewNode builds a Node from JSON-compatible attributes. attrs is copied.
func NewNode(id, label string, attrs map[string]any) Node {
	return Node{id: id, label: label, attributes: cloneAttrs(attrs)}
}

// NodeFrom converts a store vertex. The record's element id becomes the id,
// its label attribute the label and every other attribute is kept as reported.
func NodeFrom(rec NodeRecord) (Node, error) {
	if !hasKey(rec, LabelAttribute) {
		return Node{}, &DataContractError{Kind: "node", Record: describe(rec)}
	}
	return Node{
		id:         rec.ElementID(),
		label:      labelOf(rec),
		attributes: attributesOf(rec),
	}, nil
}

func (n Node) ID() string    { return n.id }
func (n Node) Label() string { return n.label }

// Attributes returns a copy of the node's attributes.
func (n Node) Attributes() map[string]any {
	return cloneAttrs(n.attributes)
}

// Equal reports whether both nodes carry the same id.
func (n Node) Equal(other Node) bool {
	return n.id == other.id
}

// String returns the caption of the node.
func (n Node) String() string {
	return n.label
}

// NodeView is the serialized shape of a Node.
type NodeView struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Attributes map[string]any `json:"attributes"`
}

func (n Node) View() NodeView {
	return NodeView{ID: n.id, Label: n.label, Attributes: n.Attributes()}
}

func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.View())
}

func cloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return map[string]any{}
	}
	return maps.Clone(attrs)
}
