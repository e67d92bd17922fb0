package graph

import (
	"fmt"
	"strings"

	"wilhelm/internal/apperr"
	"wilhelm/internal/value"
)

// LabelAttribute is the record attribute whose value becomes the caption of a Node or Link.
const LabelAttribute = "label"

// NodeRecord is a raw vertex as reported by the graph store.
type NodeRecord interface {
	ElementID() string
	Keys() []string
	Get(key string) value.Value
}

// RelationshipRecord is a raw directed relationship as reported by the graph store.
type RelationshipRecord interface {
	ElementID() string
	StartElementID() string
	EndElementID() string
	Keys() []string
	Get(key string) value.Value
}

// Path is one traversal result: the vertices and relationships it touched, in order.
type Path struct {
	Nodes         []NodeRecord
	Relationships []RelationshipRecord
}

// DataContractError reports a store record that cannot be ingested.
type DataContractError struct {
	Kind   string // "node" or "relationship"
	Record string
}

func (e *DataContractError) Error() string {
	return fmt.Sprintf("%s record does not contain '%s' attribute: %s", e.Kind, LabelAttribute, e.Record)
}

func (e *DataContractError) Unwrap() error {
	return apperr.ErrDataContractViolation
}

type keyed interface {
	ElementID() string
	Keys() []string
	Get(key string) value.Value
}

func hasKey(rec keyed, key string) bool {
	for _, k := range rec.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// labelOf stringifies the raw label attribute.
func labelOf(rec keyed) string {
	v := rec.Get(LabelAttribute)
	if v.Kind() == value.KindString {
		return v.AsString()
	}
	return fmt.Sprint(v.Raw())
}

// attributesOf keeps every attribute but the label as the store reported it.
func attributesOf(rec keyed) map[string]any {
	return value.RawAll(rec.Keys(), rec.Get, LabelAttribute)
}

func describe(rec keyed) string {
	var b strings.Builder
	b.WriteString(rec.ElementID())
	b.WriteString(" {")
	for i, k := range rec.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, rec.Get(k).Raw())
	}
	b.WriteString("}")
	return b.String()
}
