package store

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"wilhelm/internal/graph"
	"wilhelm/internal/value"
)

// Wrap exposes a value returned by the driver through the value.Value interface.
func Wrap(x any) value.Value {
	return value.OfWith(x, convertNeo4jValue)
}

// Rows normalizes each column of each record.
func Rows(records []*neo4j.Record) []map[string]any {
	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			row[key] = value.Normalize(Wrap(record.Values[i]))
		}
		rows = append(rows, row)
	}
	return rows
}

// convertNeo4jValue maps driver entity types onto plain Go values: nodes and
// relationships expose their properties, and every other non-plain type
// (paths, temporal and spatial values) exposes no keys.
func convertNeo4jValue(val any) any {
	switch v := val.(type) {
	case neo4j.Node:
		return v.Props
	case neo4j.Relationship:
		return v.Props
	case nil, int, int64, string, bool, float64, []any, map[string]any:
		return v
	default:
		return nil
	}
}

type nodeRecord struct {
	node neo4j.Node
}

// NodeRecord adapts a driver node to graph.NodeRecord.
func NodeRecord(n neo4j.Node) graph.NodeRecord {
	return nodeRecord{node: n}
}

func (r nodeRecord) ElementID() string { return r.node.ElementId }
func (r nodeRecord) Keys() []string    { return value.SortedKeys(r.node.Props) }

func (r nodeRecord) Get(key string) value.Value {
	return Wrap(r.node.Props[key])
}

type relationshipRecord struct {
	rel neo4j.Relationship
}

// RelationshipRecord adapts a driver relationship to graph.RelationshipRecord.
func RelationshipRecord(r neo4j.Relationship) graph.RelationshipRecord {
	return relationshipRecord{rel: r}
}

func (r relationshipRecord) ElementID() string      { return r.rel.ElementId }
func (r relationshipRecord) StartElementID() string { return r.rel.StartElementId }
func (r relationshipRecord) EndElementID() string   { return r.rel.EndElementId }
func (r relationshipRecord) Keys() []string         { return value.SortedKeys(r.rel.Props) }

func (r relationshipRecord) Get(key string) value.Value {
	return Wrap(r.rel.Props[key])
}

// PathFrom adapts a driver path.
func PathFrom(p neo4j.Path) graph.Path {
	out := graph.Path{
		Nodes:         make([]graph.NodeRecord, 0, len(p.Nodes)),
		Relationships: make([]graph.RelationshipRecord, 0, len(p.Relationships)),
	}
	for _, n := range p.Nodes {
		out.Nodes = append(out.Nodes, NodeRecord(n))
	}
	for _, r := range p.Relationships {
		out.Relationships = append(out.Relationships, RelationshipRecord(r))
	}
	return out
}
