package forms

import (
	"context"
	"maps"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/matzehuels/diagrammer/pkg/diagram"
	derrors "github.com/matzehuels/diagrammer/pkg/errors"
)

// Mode is the action a form submission performs.
type Mode string

// Form modes.
const (
	ModeAdd    Mode = "add"
	ModeEdit   Mode = "edit"
	ModeDelete Mode = "delete"
)

// CanvasSpan bounds the random position given to new nodes on both axes.
const CanvasSpan = 400

// NodeInput is the node form's fields.
type NodeInput struct {
	Label string `json:"label"`
}

// EdgeInput is the edge form's fields. An empty Type means the default style
// on add and "unchanged" on edit.
type EdgeInput struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// Option is one entry of a selection list.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options configures a Controller.
type Options struct {
	// IDs defaults to a millisecond clock generator.
	IDs diagram.IDGenerator

	// Position places new nodes. Defaults to a uniform random point in
	// [0, CanvasSpan) on each axis.
	Position func() diagram.Position
}

// Controller validates form submissions and applies them to a store.
type Controller struct {
	store    *diagram.Store
	ids      diagram.IDGenerator
	position func() diagram.Position
}

// New creates a controller for store.
func New(store *diagram.Store, opts Options) *Controller {
	if opts.IDs == nil {
		opts.IDs = diagram.NewClockIDs(nil)
	}
	if opts.Position == nil {
		opts.Position = RandomPosition
	}
	return &Controller{store: store, ids: opts.IDs, position: opts.Position}
}

// RandomPosition returns a point in [0, CanvasSpan) x [0, CanvasSpan).
func RandomPosition() diagram.Position {
	return diagram.Position{X: rand.Float64() * CanvasSpan, Y: rand.Float64() * CanvasSpan}
}

// =============================================================================
// Nodes
// =============================================================================

// AddNode creates a default-typed node with the given label.
func (c *Controller) AddNode(ctx context.Context, in NodeInput) (diagram.Node, error) {
	label, err := cleanLabel(in.Label)
	if err != nil {
		return diagram.Node{}, err
	}
	n := diagram.Node{
		ID:       c.ids.NodeID(),
		Type:     diagram.DefaultNodeType,
		Position: c.position(),
		Data:     map[string]any{diagram.LabelKey: label},
	}
	c.store.AddNode(ctx, n)
	return n, nil
}

// EditNode relabels node id. Other data keys are kept; they are read from the
// diagram the edit commits against, so a concurrent edit is not overwritten.
func (c *Controller) EditNode(ctx context.Context, id string, in NodeInput) (diagram.Node, error) {
	if _, err := c.selectedNode(id); err != nil {
		return diagram.Node{}, err
	}
	label, err := cleanLabel(in.Label)
	if err != nil {
		return diagram.Node{}, err
	}

	d, err := c.store.Update(ctx, diagram.OpEditNode, func(d diagram.Diagram) (diagram.Diagram, error) {
		n, err := findNode(d, id)
		if err != nil {
			return d, err
		}
		data := maps.Clone(n.Data)
		if data == nil {
			data = map[string]any{}
		}
		data[diagram.LabelKey] = label
		return d.EditNode(id, diagram.NodePatch{Data: data}), nil
	})
	if err != nil {
		return diagram.Node{}, err
	}
	edited, _ := d.Node(id)
	return edited, nil
}

// DeleteNode removes node id and its edges once cf approves.
func (c *Controller) DeleteNode(ctx context.Context, id string, cf Confirmer) error {
	n, err := c.selectedNode(id)
	if err != nil {
		return err
	}
	if err := confirm(ctx, cf, "Delete node "+n.OptionLabel()+"?"); err != nil {
		return err
	}
	_, err = c.store.Update(ctx, diagram.OpRemoveNode, func(d diagram.Diagram) (diagram.Diagram, error) {
		if _, err := findNode(d, id); err != nil {
			return d, err
		}
		return d.RemoveNode(id), nil
	})
	return err
}

// NodePrefill returns the edit form's initial values for node id.
func (c *Controller) NodePrefill(id string) (NodeInput, error) {
	n, err := c.selectedNode(id)
	if err != nil {
		return NodeInput{}, err
	}
	return NodeInput{Label: n.Label()}, nil
}

// NodeOptions lists the current nodes for selection.
func (c *Controller) NodeOptions() []Option {
	nodes := c.store.Snapshot().Nodes
	out := make([]Option, len(nodes))
	for i, n := range nodes {
		out[i] = Option{Value: n.ID, Label: n.OptionLabel()}
	}
	return out
}

func (c *Controller) selectedNode(id string) (diagram.Node, error) {
	if err := derrors.ValidateSelection(id); err != nil {
		return diagram.Node{}, err
	}
	return findNode(c.store.Snapshot(), id)
}

func findNode(d diagram.Diagram, id string) (diagram.Node, error) {
	n, ok := d.Node(id)
	if !ok {
		return diagram.Node{}, derrors.New(derrors.ErrCodeNotFound, "node %q not found", id)
	}
	return n, nil
}

func cleanLabel(s string) (string, error) {
	if err := derrors.ValidateLabel(s); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// =============================================================================
// Edges
// =============================================================================

// AddEdge connects two existing, distinct nodes with an animated edge. Both
// endpoints are checked against the diagram the edge is committed to.
func (c *Controller) AddEdge(ctx context.Context, in EdgeInput) (diagram.Edge, error) {
	typ, err := validateEdge(in)
	if err != nil {
		return diagram.Edge{}, err
	}
	if typ == "" {
		typ = diagram.DefaultEdgeType
	}
	if err := requireEndpoints(c.store.Snapshot(), in); err != nil {
		return diagram.Edge{}, err
	}
	e := diagram.Edge{
		ID:       c.ids.EdgeID(),
		Source:   in.Source,
		Target:   in.Target,
		Type:     typ,
		Animated: true,
	}
	_, err = c.store.Update(ctx, diagram.OpAddEdge, func(d diagram.Diagram) (diagram.Diagram, error) {
		if err := requireEndpoints(d, in); err != nil {
			return d, err
		}
		return d.AddEdge(e), nil
	})
	if err != nil {
		return diagram.Edge{}, err
	}
	return e, nil
}

// EditEdge replaces the endpoints and, when given, the type of edge id.
func (c *Controller) EditEdge(ctx context.Context, id string, in EdgeInput) (diagram.Edge, error) {
	if _, err := c.selectedEdge(id); err != nil {
		return diagram.Edge{}, err
	}
	typ, err := validateEdge(in)
	if err != nil {
		return diagram.Edge{}, err
	}
	if err := requireEndpoints(c.store.Snapshot(), in); err != nil {
		return diagram.Edge{}, err
	}

	d, err := c.store.Update(ctx, diagram.OpEditEdge, func(d diagram.Diagram) (diagram.Diagram, error) {
		e, err := findEdge(d, id)
		if err != nil {
			return d, err
		}
		if err := requireEndpoints(d, in); err != nil {
			return d, err
		}
		t := typ
		if t == "" {
			t = e.StyleOrDefault()
		}
		return d.EditEdge(id, diagram.EdgePatch{Source: &in.Source, Target: &in.Target, Type: &t}), nil
	})
	if err != nil {
		return diagram.Edge{}, err
	}
	edited, _ := d.Edge(id)
	return edited, nil
}

// DeleteEdge removes edge id once cf approves.
func (c *Controller) DeleteEdge(ctx context.Context, id string, cf Confirmer) error {
	e, err := c.selectedEdge(id)
	if err != nil {
		return err
	}
	if err := confirm(ctx, cf, "Delete edge "+e.OptionLabel()+"?"); err != nil {
		return err
	}
	_, err = c.store.Update(ctx, diagram.OpRemoveEdge, func(d diagram.Diagram) (diagram.Diagram, error) {
		if _, err := findEdge(d, id); err != nil {
			return d, err
		}
		return d.RemoveEdge(id), nil
	})
	return err
}

// EdgePrefill returns the edit form's initial values for edge id.
func (c *Controller) EdgePrefill(id string) (EdgeInput, error) {
	e, err := c.selectedEdge(id)
	if err != nil {
		return EdgeInput{}, err
	}
	return EdgeInput{Source: e.Source, Target: e.Target, Type: string(e.StyleOrDefault())}, nil
}

// EdgeOptions lists the current edges for selection.
func (c *Controller) EdgeOptions() []Option {
	edges := c.store.Snapshot().Edges
	out := make([]Option, len(edges))
	for i, e := range edges {
		out[i] = Option{Value: e.ID, Label: e.OptionLabel()}
	}
	return out
}

// EdgeTypeOptions lists the selectable edge styles.
func EdgeTypeOptions() []Option {
	out := make([]Option, len(diagram.EdgeTypes))
	for i, t := range diagram.EdgeTypes {
		out[i] = Option{Value: string(t), Label: string(t)}
	}
	return out
}

// validateEdge checks the fields of in and parses its type. An empty type
// parses to "".
func validateEdge(in EdgeInput) (diagram.EdgeType, error) {
	if err := derrors.ValidateEdgeEndpoints(in.Source, in.Target); err != nil {
		return "", err
	}
	if in.Type == "" {
		return "", nil
	}
	t, err := diagram.ParseEdgeType(in.Type)
	if err != nil {
		return "", derrors.Wrap(derrors.ErrCodeInvalidEdgeType, err, "invalid edge type %q", in.Type)
	}
	return t, nil
}

// requireEndpoints fails with NOT_FOUND unless both endpoints of in are nodes of d.
func requireEndpoints(d diagram.Diagram, in EdgeInput) error {
	for _, id := range []string{in.Source, in.Target} {
		if _, err := findNode(d, id); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) selectedEdge(id string) (diagram.Edge, error) {
	if err := derrors.ValidateSelection(id); err != nil {
		return diagram.Edge{}, err
	}
	return findEdge(c.store.Snapshot(), id)
}

func findEdge(d diagram.Diagram, id string) (diagram.Edge, error) {
	e, ok := d.Edge(id)
	if !ok {
		return diagram.Edge{}, derrors.New(derrors.ErrCodeNotFound, "edge %q not found", id)
	}
	return e, nil
}

// =============================================================================
// Diagram
// =============================================================================

// ClearAll removes every node and edge once cf approves.
func (c *Controller) ClearAll(ctx context.Context, cf Confirmer) error {
	st := c.store.Snapshot().Stats()
	prompt := "Clear all nodes and edges?"
	if st.Nodes > 0 || st.Edges > 0 {
		prompt = "Clear all " + plural(st.Nodes, "node") + " and " + plural(st.Edges, "edge") + "?"
	}
	if err := confirm(ctx, cf, prompt); err != nil {
		return err
	}
	c.store.Clear(ctx)
	return nil
}

func plural(n int, word string) string {
	s := word
	if n != 1 {
		s += "s"
	}
	return strconv.Itoa(n) + " " + s
}
