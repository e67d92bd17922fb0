package graph

import (
	"encoding/json"
	"fmt"
)

// Link is a directed edge between two node ids. Links compare structurally:
// label, endpoints and attributes must all match.
type Link struct {
	label        string
	sourceNodeID string
	targetNodeID string
	attributes   map[string]any
	key          string
}

// NewLink builds a Link from JSON-compatible attributes. attrs is copied.
func NewLink(label, sourceNodeID, targetNodeID string, attrs map[string]any) Link {
	l := Link{
		label:        label,
		sourceNodeID: sourceNodeID,
		targetNodeID: targetNodeID,
		attributes:   cloneAttrs(attrs),
	}
	l.key = l.structuralKey()
	return l
}

// LinkFrom converts a store relationship. Start and end element ids become the
// source and target node ids.
func LinkFrom(rec RelationshipRecord) (Link, error) {
	if !hasKey(rec, LabelAttribute) {
		return Link{}, &DataContractError{Kind: "relationship", Record: describe(rec)}
	}
	return NewLink(
		labelOf(rec),
		rec.StartElementID(),
		rec.EndElementID(),
		attributesOf(rec),
	), nil
}

func (l Link) Label() string        { return l.label }
func (l Link) SourceNodeID() string { return l.sourceNodeID }
func (l Link) TargetNodeID() string { return l.targetNodeID }

// Attributes returns a copy of the link's attributes.
func (l Link) Attributes() map[string]any {
	return cloneAttrs(l.attributes)
}

// Equal reports structural equality. It agrees with set membership: two links
// are equal exactly when they share a set key.
func (l Link) Equal(other Link) bool {
	return l.setKey() == other.setKey()
}

// Touches reports whether nodeID is either endpoint of the link.
func (l Link) Touches(nodeID string) bool {
	return l.sourceNodeID == nodeID || l.targetNodeID == nodeID
}

func (l Link) String() string {
	return fmt.Sprintf("(%s)-%s-(%s)", l.sourceNodeID, l.label, l.targetNodeID)
}

// LinkView is the serialized shape of a Link.
type LinkView struct {
	Label        string         `json:"label"`
	SourceNodeID string         `json:"sourceNodeId"`
	TargetNodeID string         `json:"targetNodeId"`
	Attributes   map[string]any `json:"attributes"`
}

func (l Link) View() LinkView {
	return LinkView{Label: l.label, SourceNodeID: l.sourceNodeID, TargetNodeID: l.targetNodeID, Attributes: l.Attributes()}
}

func (l Link) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.View())
}

func (l Link) attributesOrEmpty() map[string]any {
	if l.attributes == nil {
		return map[string]any{}
	}
	return l.attributes
}

// structuralKey identifies the link inside a set. encoding/json writes map keys
// in sorted order, so equal attribute maps yield equal keys.
func (l Link) structuralKey() string {
	attrs, err := json.Marshal(l.attributesOrEmpty())
	if err != nil {
		attrs = []byte(fmt.Sprintf("%v", l.attributes))
	}
	return l.label + "\x00" + l.sourceNodeID + "\x00" + l.targetNodeID + "\x00" + string(attrs)
}

func (l Link) setKey() string {
	if l.key == "" {
		return l.structuralKey()
	}
	return l.key
}
