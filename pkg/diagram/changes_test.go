package diagram

import (
	"encoding/json"
	"slices"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestApplyNodeChanges(t *testing.T) {
	base := []Node{node("1"), node("2"), node("3")}

	tests := []struct {
		name    string
		changes []NodeChange
		check   func(t *testing.T, got []Node)
	}{
		{
			name:    "position",
			changes: []NodeChange{{Type: ChangePosition, ID: "2", Position: &Position{X: 10, Y: 20}, Dragging: boolPtr(true)}},
			check: func(t *testing.T, got []Node) {
				if got[1].Position != (Position{X: 10, Y: 20}) || !got[1].Dragging {
					t.Errorf("node 2 = %+v", got[1])
				}
			},
		},
		{
			name: "position without coordinates only sets dragging",
			changes: []NodeChange{
				{Type: ChangePosition, ID: "1", Position: &Position{X: 5, Y: 5}, Dragging: boolPtr(true)},
				{Type: ChangePosition, ID: "1", Dragging: boolPtr(false)},
			},
			check: func(t *testing.T, got []Node) {
				if got[0].Position != (Position{X: 5, Y: 5}) || got[0].Dragging {
					t.Errorf("node 1 = %+v", got[0])
				}
			},
		},
		{
			name: "later descriptor wins",
			changes: []NodeChange{
				{Type: ChangePosition, ID: "1", Position: &Position{X: 1, Y: 1}},
				{Type: ChangePosition, ID: "1", Position: &Position{X: 2, Y: 2}},
			},
			check: func(t *testing.T, got []Node) {
				if got[0].Position != (Position{X: 2, Y: 2}) {
					t.Errorf("position = %+v, want {2 2}", got[0].Position)
				}
			},
		},
		{
			name: "select and deselect",
			changes: []NodeChange{
				{Type: ChangeSelect, ID: "1", Selected: true},
				{Type: ChangeSelect, ID: "3", Selected: true},
				{Type: ChangeSelect, ID: "1", Selected: false},
			},
			check: func(t *testing.T, got []Node) {
				if got[0].Selected || !got[2].Selected {
					t.Errorf("selection = %v %v %v", got[0].Selected, got[1].Selected, got[2].Selected)
				}
			},
		},
		{
			name:    "remove",
			changes: []NodeChange{{Type: ChangeRemove, ID: "2"}},
			check: func(t *testing.T, got []Node) {
				if want := []string{"1", "3"}; !slices.Equal(ids(got), want) {
					t.Errorf("ids = %v, want %v", ids(got), want)
				}
			},
		},
		{
			name: "update after remove is ignored",
			changes: []NodeChange{
				{Type: ChangeRemove, ID: "2"},
				{Type: ChangePosition, ID: "2", Position: &Position{X: 1, Y: 1}},
			},
			check: func(t *testing.T, got []Node) {
				if len(got) != 2 {
					t.Errorf("len = %d, want 2", len(got))
				}
			},
		},
		{
			name:    "dimensions",
			changes: []NodeChange{{Type: ChangeDimensions, ID: "3", Dimensions: &Dimensions{Width: 172, Height: 38}}},
			check: func(t *testing.T, got []Node) {
				if got[2].Width != 172 || got[2].Height != 38 {
					t.Errorf("size = %vx%v", got[2].Width, got[2].Height)
				}
			},
		},
		{
			name: "unknown kind and id ignored",
			changes: []NodeChange{
				{Type: "reset", ID: "1"},
				{Type: ChangeSelect, ID: "missing", Selected: true},
			},
			check: func(t *testing.T, got []Node) {
				for i := range base {
					if got[i].Selected != base[i].Selected || got[i].Position != base[i].Position {
						t.Errorf("node %s changed", got[i].ID)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyNodeChanges(tt.changes, base)
			tt.check(t, got)

			// The input collection is never modified.
			for _, n := range base {
				if n.Selected || n.Dragging || n.Position != (Position{}) || n.Width != 0 {
					t.Fatalf("input node %s mutated: %+v", n.ID, n)
				}
			}
			if len(base) != 3 {
				t.Fatalf("input collection resized")
			}
		})
	}
}

func TestApplyEdgeChanges(t *testing.T) {
	base := []Edge{edge("a", "1", "2"), edge("b", "2", "3")}

	got := ApplyEdgeChanges([]EdgeChange{
		{Type: ChangeSelect, ID: "b", Selected: true},
		{Type: ChangePosition, ID: "a"},
		{Type: ChangeRemove, ID: "a"},
	}, base)

	if len(got) != 1 || got[0].ID != "b" || !got[0].Selected {
		t.Errorf("got %+v", got)
	}
	if base[1].Selected || len(base) != 2 {
		t.Error("input collection mutated")
	}
}

func TestRemovedIDs(t *testing.T) {
	got := RemovedIDs([]NodeChange{
		{Type: ChangeRemove, ID: "1"},
		{Type: ChangeSelect, ID: "2"},
		{Type: ChangeRemove, ID: "3"},
	})
	if want := []string{"1", "3"}; !slices.Equal(got, want) {
		t.Errorf("RemovedIDs = %v, want %v", got, want)
	}
}

func TestNodeChangeWireFormat(t *testing.T) {
	raw := `[
		{"type":"position","id":"1","position":{"x":12.5,"y":-3},"dragging":true},
		{"type":"select","id":"2","selected":true},
		{"type":"dimensions","id":"2","dimensions":{"width":150,"height":40}},
		{"type":"add","item":{"id":"9"}},
		{"type":"remove","id":"3"}
	]`
	var changes []NodeChange
	if err := json.Unmarshal([]byte(raw), &changes); err != nil {
		t.Fatal(err)
	}

	got := ApplyNodeChanges(changes, []Node{node("1"), node("2"), node("3")})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Position != (Position{X: 12.5, Y: -3}) || !got[0].Dragging {
		t.Errorf("node 1 = %+v", got[0])
	}
	if !got[1].Selected || got[1].Width != 150 {
		t.Errorf("node 2 = %+v", got[1])
	}
}
