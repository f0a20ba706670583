package diagram

import (
	"maps"
	"slices"
)

// =============================================================================
// Patches
// =============================================================================

// NodePatch holds the top-level node fields to overwrite on edit.
// Nil fields are left untouched. A non-nil Data replaces the whole data map.
type NodePatch struct {
	Type     *string
	Position *Position
	Data     map[string]any
	Selected *bool
}

// EdgePatch holds the top-level edge fields to overwrite on edit.
// Nil fields are left untouched.
type EdgePatch struct {
	Source   *string
	Target   *string
	Type     *EdgeType
	Animated *bool
	Selected *bool
}

func (p NodePatch) apply(n Node) Node {
	if p.Type != nil {
		n.Type = *p.Type
	}
	if p.Position != nil {
		n.Position = *p.Position
	}
	if p.Data != nil {
		n.Data = maps.Clone(p.Data)
	}
	if p.Selected != nil {
		n.Selected = *p.Selected
	}
	return n
}

func (p EdgePatch) apply(e Edge) Edge {
	if p.Source != nil {
		e.Source = *p.Source
	}
	if p.Target != nil {
		e.Target = *p.Target
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Animated != nil {
		e.Animated = *p.Animated
	}
	if p.Selected != nil {
		e.Selected = *p.Selected
	}
	return e
}

// =============================================================================
// Node Operations
// =============================================================================

// AddNode appends n to the node collection.
// Uniqueness of n.ID is the caller's responsibility.
func (d Diagram) AddNode(n Node) Diagram {
	nodes := make([]Node, len(d.Nodes), len(d.Nodes)+1)
	copy(nodes, d.Nodes)
	return Diagram{Nodes: append(nodes, n.Clone()), Edges: d.Edges}
}

// RemoveNode removes the node with the given id together with every edge
// whose source or target is id. Absent ids leave the collections as they are.
func (d Diagram) RemoveNode(id string) Diagram {
	return Diagram{
		Nodes: filter(d.Nodes, func(n Node) bool { return n.ID != id }),
		Edges: filter(d.Edges, func(e Edge) bool { return !e.Touches(id) }),
	}
}

// EditNode shallow-merges p into the node with the given id.
func (d Diagram) EditNode(id string, p NodePatch) Diagram {
	nodes := make([]Node, len(d.Nodes))
	for i, n := range d.Nodes {
		if n.ID == id {
			n = p.apply(n)
		}
		nodes[i] = n
	}
	return Diagram{Nodes: nodes, Edges: d.Edges}
}

// =============================================================================
// Edge Operations
// =============================================================================

// AddEdge appends e to the edge collection.
// Uniqueness and self-loop checks are the caller's responsibility.
func (d Diagram) AddEdge(e Edge) Diagram {
	edges := make([]Edge, len(d.Edges), len(d.Edges)+1)
	copy(edges, d.Edges)
	return Diagram{Nodes: d.Nodes, Edges: append(edges, e)}
}

// RemoveEdge removes the edge with the given id.
func (d Diagram) RemoveEdge(id string) Diagram {
	return Diagram{
		Nodes: d.Nodes,
		Edges: filter(d.Edges, func(e Edge) bool { return e.ID != id }),
	}
}

// EditEdge shallow-merges p into the edge with the given id.
func (d Diagram) EditEdge(id string, p EdgePatch) Diagram {
	edges := make([]Edge, len(d.Edges))
	for i, e := range d.Edges {
		if e.ID == id {
			e = p.apply(e)
		}
		edges[i] = e
	}
	return Diagram{Nodes: d.Nodes, Edges: edges}
}

// =============================================================================
// Integrity
// =============================================================================

// DanglingEdges returns the edges whose source or target is not a node of d.
func (d Diagram) DanglingEdges() []Edge {
	ids := d.nodeIDs()
	var out []Edge
	for _, e := range d.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			out = append(out, e)
		}
	}
	return out
}

// Sanitize drops dangling edges and returns the cleaned diagram together with
// the number of edges removed.
func (d Diagram) Sanitize() (Diagram, int) {
	ids := d.nodeIDs()
	edges := filter(d.Edges, func(e Edge) bool { return ids[e.Source] && ids[e.Target] })
	return Diagram{Nodes: d.Nodes, Edges: edges}, len(d.Edges) - len(edges)
}

func (d Diagram) nodeIDs() map[string]bool {
	ids := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// filter returns a fresh slice with the elements of s that satisfy keep.
// The result is never nil so snapshots serialize as [] rather than null.
func filter[T any](s []T, keep func(T) bool) []T {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if keep(v) {
			out = append(out, v)
		}
	}
	return slices.Clip(out)
}
