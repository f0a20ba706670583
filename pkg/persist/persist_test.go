package persist

import (
	"context"
	"io"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagrammer/pkg/diagram"
	derrors "github.com/matzehuels/diagrammer/pkg/errors"
	"github.com/matzehuels/diagrammer/pkg/kv"
	"github.com/matzehuels/diagrammer/pkg/observability"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func sample() diagram.Diagram {
	return diagram.Diagram{
		Nodes: []diagram.Node{
			{ID: "1", Type: "input", Position: diagram.Position{X: 250, Y: 5}, Data: map[string]any{"label": "Client"}},
			{ID: "2", Type: "default", Position: diagram.Position{X: 100.5, Y: 100}, Data: map[string]any{"label": "API", "color": "blue"}},
		},
		Edges: []diagram.Edge{
			{ID: "e1-2", Source: "1", Target: "2", Type: diagram.EdgeSmoothStep, Animated: true},
		},
	}
}

func seed() diagram.Diagram {
	return diagram.Diagram{
		Nodes: []diagram.Node{{ID: "seed", Data: map[string]any{"label": "Seed"}}},
		Edges: []diagram.Edge{},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		d    diagram.Diagram
	}{
		{"sample", sample()},
		{"empty", diagram.Diagram{Nodes: []diagram.Node{}, Edges: []diagram.Edge{}}},
		{"nodes only", diagram.Diagram{Nodes: sample().Nodes, Edges: []diagram.Edge{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			a := New(kv.NewMemory(0), Options{Logger: quietLogger()})

			if err := a.Save(ctx, tt.d); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, report := a.Load(ctx, seed())
			if report.Source != observability.SourceStored {
				t.Fatalf("Source = %q (%s), want stored", report.Source, report.Reason)
			}
			if !reflect.DeepEqual(got, tt.d) {
				t.Errorf("Load = %+v, want %+v", got, tt.d)
			}
		})
	}
}

func TestSaveWritesWireFormat(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	a := New(store, Options{Logger: quietLogger()})

	d := diagram.Diagram{
		Nodes: []diagram.Node{{ID: "1", Type: "default", Data: map[string]any{"label": "A"}}},
		Edges: []diagram.Edge{{ID: "e1", Source: "1", Target: "2", Type: diagram.EdgeBezier}},
	}
	if err := a.Save(ctx, d); err != nil {
		t.Fatal(err)
	}

	nodes, _, _ := store.Get(ctx, NodesKey)
	wantNodes := `[{"id":"1","type":"default","position":{"x":0,"y":0},"data":{"label":"A"}}]`
	if string(nodes) != wantNodes {
		t.Errorf("nodes = %s\nwant    %s", nodes, wantNodes)
	}
	edges, _, _ := store.Get(ctx, EdgesKey)
	wantEdges := `[{"id":"e1","source":"1","target":"2","type":"bezier","animated":false}]`
	if string(edges) != wantEdges {
		t.Errorf("edges = %s\nwant    %s", edges, wantEdges)
	}
}

func TestSaveNilCollectionsWritesEmptyArrays(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	a := New(store, Options{Logger: quietLogger()})

	if err := a.Save(ctx, diagram.Diagram{}); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{NodesKey, EdgesKey} {
		raw, _, _ := store.Get(ctx, key)
		if string(raw) != "[]" {
			t.Errorf("%s = %s, want []", key, raw)
		}
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	validNodes := `[{"id":"1","position":{"x":0,"y":0},"data":{"label":"A"}}]`
	validEdges := `[]`

	tests := []struct {
		name  string
		nodes *string
		edges *string
	}{
		{"both missing", nil, nil},
		{"nodes missing", nil, ptr(validEdges)},
		{"edges missing", ptr(validNodes), nil},
		{"nodes corrupt", ptr("{not json"), ptr(validEdges)},
		{"edges corrupt", ptr(validNodes), ptr(`[{"id":`)},
		{"nodes null", ptr("null"), ptr(validEdges)},
		{"edges object", ptr(validNodes), ptr(`{"id":"e1"}`)},
		{"nodes wrong shape", ptr(`[1,2,3]`), ptr(validEdges)},
		{"empty string", ptr(""), ptr(validEdges)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := kv.NewMemory(0)
			if tt.nodes != nil {
				store.Set(ctx, NodesKey, []byte(*tt.nodes))
			}
			if tt.edges != nil {
				store.Set(ctx, EdgesKey, []byte(*tt.edges))
			}
			a := New(store, Options{Logger: quietLogger()})

			got, report := a.Load(ctx, seed())
			if report.Source != observability.SourceSeed {
				t.Errorf("Source = %q, want seed", report.Source)
			}
			if report.Reason == "" {
				t.Error("Reason should explain the fallback")
			}
			if !reflect.DeepEqual(got, seed()) {
				t.Errorf("Load = %+v, want defaults", got)
			}
		})
	}
}

func TestLoadSanitize(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	store.Set(ctx, NodesKey, []byte(`[{"id":"1","position":{"x":0,"y":0},"data":{}},{"id":"2","position":{"x":0,"y":0},"data":{}}]`))
	store.Set(ctx, EdgesKey, []byte(`[{"id":"ok","source":"1","target":"2","animated":true},{"id":"bad","source":"1","target":"9","animated":true}]`))

	t.Run("enabled", func(t *testing.T) {
		a := New(store, Options{Sanitize: true, Logger: quietLogger()})
		got, report := a.Load(ctx, seed())
		if report.Dropped != 1 {
			t.Errorf("Dropped = %d, want 1", report.Dropped)
		}
		if len(got.Edges) != 1 || got.Edges[0].ID != "ok" {
			t.Errorf("Edges = %+v, want only ok", got.Edges)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		a := New(store, Options{Logger: quietLogger()})
		got, report := a.Load(ctx, seed())
		if report.Dropped != 0 {
			t.Errorf("Dropped = %d, want 0", report.Dropped)
		}
		if len(got.Edges) != 2 {
			t.Errorf("Edges = %d, want 2 (loaded as-is)", len(got.Edges))
		}
	})
}

func TestSaveQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(64)
	a := New(store, Options{Logger: quietLogger()})

	err := a.Save(ctx, sample())
	if !derrors.Is(err, derrors.ErrCodeQuotaExceeded) {
		t.Fatalf("Save = %v, want QUOTA_EXCEEDED", err)
	}

	st := a.Status()
	if st.Failures != 1 || st.Saves != 0 {
		t.Errorf("Status = %+v, want one failure", st)
	}
	if st.LastError == "" {
		t.Error("LastError should be recorded")
	}
}

func TestObserverSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	a := New(kv.NewMemory(32), Options{Logger: quietLogger()})

	s := diagram.NewStore(diagram.Diagram{})
	s.Subscribe(a.Observer())

	// The quota is too small; the mutation must still commit.
	d := s.AddNode(ctx, diagram.Node{ID: "1", Data: map[string]any{"label": "a long enough label to overflow"}})
	if len(d.Nodes) != 1 {
		t.Fatalf("mutation not committed: %+v", d)
	}
	if got := a.Status().Failures; got != 1 {
		t.Errorf("Failures = %d, want 1", got)
	}
}

func TestObserverSavesEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	a := New(store, Options{Logger: quietLogger()})

	s := diagram.NewStore(diagram.Diagram{})
	s.Subscribe(a.Observer())

	s.AddNode(ctx, diagram.Node{ID: "1", Data: map[string]any{"label": "A"}})
	s.AddNode(ctx, diagram.Node{ID: "2", Data: map[string]any{"label": "B"}})
	s.AddEdge(ctx, diagram.Edge{ID: "e1", Source: "1", Target: "2"})
	s.RemoveNode(ctx, "1")

	if got := a.Status().Saves; got != 4 {
		t.Errorf("Saves = %d, want 4", got)
	}

	loaded, report := a.Load(ctx, seed())
	if report.Source != observability.SourceStored {
		t.Fatalf("Source = %q", report.Source)
	}
	if len(loaded.Nodes) != 1 || loaded.Nodes[0].ID != "2" {
		t.Errorf("Nodes = %+v, want [2]", loaded.Nodes)
	}
	if len(loaded.Edges) != 0 {
		t.Errorf("Edges = %+v, want none", loaded.Edges)
	}
}

func TestScopedKeys(t *testing.T) {
	if got := ScopedKeys(""); got != DefaultKeys() {
		t.Errorf("ScopedKeys(\"\") = %+v, want defaults", got)
	}
	got := ScopedKeys("work")
	want := Keys{Nodes: "work:diagramNodes", Edges: "work:diagramEdges"}
	if got != want {
		t.Errorf("ScopedKeys(work) = %+v, want %+v", got, want)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory(0)
	work := New(store, Options{Keys: ScopedKeys("work"), Logger: quietLogger()})
	home := New(store, Options{Keys: ScopedKeys("home"), Logger: quietLogger()})

	if err := work.Save(ctx, sample()); err != nil {
		t.Fatal(err)
	}
	if _, report := home.Load(ctx, seed()); report.Source != observability.SourceSeed {
		t.Errorf("home namespace should not see work's diagram")
	}
	if _, report := work.Load(ctx, seed()); report.Source != observability.SourceStored {
		t.Errorf("work namespace should load its own diagram")
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	a := New(kv.NewMemory(0), Options{Logger: quietLogger()})
	if err := a.Save(ctx, sample()); err != nil {
		t.Fatal(err)
	}
	if err := a.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, report := a.Load(ctx, seed()); report.Source != observability.SourceSeed {
		t.Error("Load after Clear should fall back to defaults")
	}
}

func ptr(s string) *string { return &s }
