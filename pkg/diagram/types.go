package diagram

import (
	"fmt"
	"maps"
	"slices"
)

// =============================================================================
// Constants
// =============================================================================

// DefaultNodeType is the type tag given to nodes created by the editor.
const DefaultNodeType = "default"

// LabelKey is the data key holding a node's display label.
const LabelKey = "label"

// untitled is shown for nodes without a label.
const untitled = "Untitled"

// EdgeType is the rendering style of an edge.
type EdgeType string

// Edge rendering styles understood by the rendering surface.
const (
	EdgeSmoothStep EdgeType = "smoothstep"
	EdgeDefault    EdgeType = "default"
	EdgeStraight   EdgeType = "straight"
	EdgeBezier     EdgeType = "bezier"
)

// DefaultEdgeType is used when an edge is created without an explicit style.
const DefaultEdgeType = EdgeSmoothStep

// EdgeTypes lists every valid edge style in display order.
var EdgeTypes = []EdgeType{EdgeSmoothStep, EdgeDefault, EdgeStraight, EdgeBezier}

// Valid reports whether t is one of the known edge styles.
func (t EdgeType) Valid() bool {
	return slices.Contains(EdgeTypes, t)
}

// ParseEdgeType converts s into an EdgeType.
// An empty string yields DefaultEdgeType.
func ParseEdgeType(s string) (EdgeType, error) {
	if s == "" {
		return DefaultEdgeType, nil
	}
	t := EdgeType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown edge type %q", s)
	}
	return t, nil
}

// =============================================================================
// Node
// =============================================================================

// Position is a point on the canvas.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is a diagram vertex.
type Node struct {
	ID       string         `json:"id" bson:"id"`
	Type     string         `json:"type,omitempty" bson:"type,omitempty"`
	Position Position       `json:"position" bson:"position"`
	Data     map[string]any `json:"data" bson:"data"`
	Width    float64        `json:"width,omitempty" bson:"width,omitempty"`   // measured by the surface
	Height   float64        `json:"height,omitempty" bson:"height,omitempty"` // measured by the surface
	Selected bool           `json:"selected,omitempty" bson:"selected,omitempty"`
	Dragging bool           `json:"dragging,omitempty" bson:"dragging,omitempty"`
}

// Label returns the node's label, or "" when the data carries none.
func (n Node) Label() string {
	if s, ok := n.Data[LabelKey].(string); ok {
		return s
	}
	return ""
}

// DisplayLabel returns the label, or "Untitled" when it is empty.
func (n Node) DisplayLabel() string {
	if l := n.Label(); l != "" {
		return l
	}
	return untitled
}

// OptionLabel is the text used when offering the node for selection.
func (n Node) OptionLabel() string {
	return n.ID + ": " + n.DisplayLabel()
}

// Clone returns a copy of n whose data map is not shared with n.
func (n Node) Clone() Node {
	n.Data = maps.Clone(n.Data)
	return n
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed connection between two nodes.
type Edge struct {
	ID       string   `json:"id" bson:"id"`
	Source   string   `json:"source" bson:"source"`
	Target   string   `json:"target" bson:"target"`
	Type     EdgeType `json:"type,omitempty" bson:"type,omitempty"`
	Animated bool     `json:"animated" bson:"animated"`
	Selected bool     `json:"selected,omitempty" bson:"selected,omitempty"`
}

// Touches reports whether the edge starts or ends at node id.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

// StyleOrDefault returns the edge type, falling back to DefaultEdgeType.
func (e Edge) StyleOrDefault() EdgeType {
	if e.Type == "" {
		return DefaultEdgeType
	}
	return e.Type
}

// OptionLabel is the text used when offering the edge for selection.
func (e Edge) OptionLabel() string {
	return e.ID + ": " + e.Source + " → " + e.Target
}

// =============================================================================
// Diagram
// =============================================================================

// Diagram is an immutable snapshot of the node and edge collections.
//
// The slices of a Diagram that has been handed out are never written to;
// operations build new slices instead. Unchanged collections may be shared
// between snapshots.
type Diagram struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Stats summarizes a diagram.
type Stats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// Stats returns node and edge counts.
func (d Diagram) Stats() Stats {
	return Stats{Nodes: len(d.Nodes), Edges: len(d.Edges)}
}

// Node returns the node with the given id.
func (d Diagram) Node(id string) (Node, bool) {
	if i := indexNode(d.Nodes, id); i >= 0 {
		return d.Nodes[i], true
	}
	return Node{}, false
}

// Edge returns the edge with the given id.
func (d Diagram) Edge(id string) (Edge, bool) {
	if i := indexEdge(d.Edges, id); i >= 0 {
		return d.Edges[i], true
	}
	return Edge{}, false
}

// Clone returns a deep copy of d, including node data maps.
func (d Diagram) Clone() Diagram {
	out := Diagram{Edges: slices.Clone(d.Edges)}
	if d.Nodes != nil {
		out.Nodes = make([]Node, len(d.Nodes))
		for i, n := range d.Nodes {
			out.Nodes[i] = n.Clone()
		}
	}
	return out
}

func indexNode(nodes []Node, id string) int {
	return slices.IndexFunc(nodes, func(n Node) bool { return n.ID == id })
}

func indexEdge(edges []Edge, id string) int {
	return slices.IndexFunc(edges, func(e Edge) bool { return e.ID == id })
}
