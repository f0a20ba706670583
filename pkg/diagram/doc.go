// Package diagram holds the node/edge state model of the diagram editor.
//
// A [Diagram] is an immutable snapshot of two ordered collections: nodes and
// edges. Every operation on a Diagram returns a new value and leaves the
// receiver untouched, so snapshots handed to a renderer or a form stay valid
// while the next mutation is being built.
//
// # Wire Format
//
// Nodes and edges use the JSON shape expected by the browser rendering
// surface:
//
//	{"id": "1", "type": "default", "position": {"x": 10, "y": 20}, "data": {"label": "API"}}
//	{"id": "e_1", "source": "1", "target": "2", "type": "smoothstep", "animated": true}
//
// # Operations
//
// The pure operations mirror what the editor can do:
//
//	d = d.AddNode(n)
//	d = d.EditNode("1", diagram.NodePatch{Data: map[string]any{"label": "DB"}})
//	d = d.RemoveNode("1") // also removes every edge touching "1"
//
// Incremental gestures from the rendering surface arrive as change
// descriptors and are folded in with [ApplyNodeChanges] and
// [ApplyEdgeChanges].
//
// # Store
//
// [Store] is the single owner of the live snapshot. It serializes commits,
// publishes snapshots for lock-free reads and notifies observers (such as the
// persistence adapter) after every committed mutation.
//
// # Invariants
//
// Removing a node removes every edge whose source or target references it in
// the same snapshot. The store does not validate uniqueness or self-loops;
// callers (see package forms) do that before calling in.
package diagram
