package diagram

import "slices"

// ChangeType identifies the kind of a change descriptor.
type ChangeType string

// Change kinds emitted by the rendering surface. Descriptors with any other
// kind are ignored.
const (
	ChangePosition   ChangeType = "position"
	ChangeSelect     ChangeType = "select"
	ChangeRemove     ChangeType = "remove"
	ChangeDimensions ChangeType = "dimensions"
)

// Dimensions is the rendered size of a node.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeChange is an incremental update to one node.
type NodeChange struct {
	Type       ChangeType  `json:"type"`
	ID         string      `json:"id"`
	Position   *Position   `json:"position,omitempty"`
	Dragging   *bool       `json:"dragging,omitempty"`
	Selected   bool        `json:"selected,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// EdgeChange is an incremental update to one edge.
type EdgeChange struct {
	Type     ChangeType `json:"type"`
	ID       string     `json:"id"`
	Selected bool       `json:"selected,omitempty"`
}

// ApplyNodeChanges folds changes into nodes in arrival order and returns a
// new collection. A later descriptor for the same id overrides an earlier one.
// The input slice is not modified.
func ApplyNodeChanges(changes []NodeChange, nodes []Node) []Node {
	out := slices.Clone(nodes)
	for _, c := range changes {
		if c.Type == ChangeRemove {
			out = slices.DeleteFunc(out, func(n Node) bool { return n.ID == c.ID })
			continue
		}
		i := indexNode(out, c.ID)
		if i < 0 {
			continue
		}
		switch c.Type {
		case ChangePosition:
			if c.Position != nil {
				out[i].Position = *c.Position
			}
			if c.Dragging != nil {
				out[i].Dragging = *c.Dragging
			}
		case ChangeSelect:
			out[i].Selected = c.Selected
		case ChangeDimensions:
			if c.Dimensions != nil {
				out[i].Width = c.Dimensions.Width
				out[i].Height = c.Dimensions.Height
			}
		}
	}
	return out
}

// ApplyEdgeChanges folds changes into edges in arrival order and returns a
// new collection. Edges only honor select and remove descriptors.
func ApplyEdgeChanges(changes []EdgeChange, edges []Edge) []Edge {
	out := slices.Clone(edges)
	for _, c := range changes {
		switch c.Type {
		case ChangeRemove:
			out = slices.DeleteFunc(out, func(e Edge) bool { return e.ID == c.ID })
		case ChangeSelect:
			if i := indexEdge(out, c.ID); i >= 0 {
				out[i].Selected = c.Selected
			}
		}
	}
	return out
}

// RemovedIDs returns the ids named by remove descriptors, in order.
func RemovedIDs(changes []NodeChange) []string {
	var ids []string
	for _, c := range changes {
		if c.Type == ChangeRemove {
			ids = append(ids, c.ID)
		}
	}
	return ids
}
