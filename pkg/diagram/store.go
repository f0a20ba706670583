package diagram

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/matzehuels/diagrammer/pkg/observability"
)

// Mutation names reported to observers and hooks.
const (
	OpAddNode          = "add_node"
	OpRemoveNode       = "remove_node"
	OpEditNode         = "edit_node"
	OpAddEdge          = "add_edge"
	OpRemoveEdge       = "remove_edge"
	OpEditEdge         = "edit_edge"
	OpApplyNodeChanges = "apply_node_changes"
	OpApplyEdgeChanges = "apply_edge_changes"
	OpClear            = "clear"
	OpReplace          = "replace"
)

// Observer is notified after every committed mutation with the name of the
// operation and the post-mutation snapshot. Observers run on the committing
// goroutine while the store's write lock is held, so they see commits in order.
type Observer func(ctx context.Context, op string, d Diagram)

// Store owns the live diagram. It is created once at startup and passed to
// every consumer; it is safe for concurrent use.
//
// Reads never block: Snapshot returns the last published value. Writes are
// serialized so that each mutation completes, observers included, before the
// next one starts.
type Store struct {
	mu        sync.Mutex
	current   atomic.Pointer[Diagram]
	observers []Observer
}

// NewStore creates a store seeded with initial.
func NewStore(initial Diagram) *Store {
	s := &Store{}
	d := initial.normalized().Clone()
	s.current.Store(&d)
	return s
}

// Subscribe registers o to be called after every committed mutation.
func (s *Store) Subscribe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Snapshot returns the current diagram. The returned value must be treated as
// read-only.
func (s *Store) Snapshot() Diagram {
	return *s.current.Load()
}

// AddNode appends n and returns the new snapshot.
func (s *Store) AddNode(ctx context.Context, n Node) Diagram {
	return s.commit(ctx, OpAddNode, func(d Diagram) Diagram { return d.AddNode(n) })
}

// RemoveNode removes node id and every edge referencing it.
func (s *Store) RemoveNode(ctx context.Context, id string) Diagram {
	return s.commit(ctx, OpRemoveNode, func(d Diagram) Diagram { return d.RemoveNode(id) })
}

// EditNode shallow-merges p into node id.
func (s *Store) EditNode(ctx context.Context, id string, p NodePatch) Diagram {
	return s.commit(ctx, OpEditNode, func(d Diagram) Diagram { return d.EditNode(id, p) })
}

// AddEdge appends e and returns the new snapshot.
func (s *Store) AddEdge(ctx context.Context, e Edge) Diagram {
	return s.commit(ctx, OpAddEdge, func(d Diagram) Diagram { return d.AddEdge(e) })
}

// RemoveEdge removes edge id.
func (s *Store) RemoveEdge(ctx context.Context, id string) Diagram {
	return s.commit(ctx, OpRemoveEdge, func(d Diagram) Diagram { return d.RemoveEdge(id) })
}

// EditEdge shallow-merges p into edge id.
func (s *Store) EditEdge(ctx context.Context, id string, p EdgePatch) Diagram {
	return s.commit(ctx, OpEditEdge, func(d Diagram) Diagram { return d.EditEdge(id, p) })
}

// ApplyNodeChanges folds a batch of node change descriptors into the store.
// Edges attached to removed nodes are removed in the same commit.
func (s *Store) ApplyNodeChanges(ctx context.Context, changes []NodeChange) Diagram {
	return s.commit(ctx, OpApplyNodeChanges, func(d Diagram) Diagram {
		edges := d.Edges
		if removed := RemovedIDs(changes); len(removed) > 0 {
			edges = filter(edges, func(e Edge) bool { return !slices.ContainsFunc(removed, e.Touches) })
		}
		return Diagram{Nodes: ApplyNodeChanges(changes, d.Nodes), Edges: edges}
	})
}

// ApplyEdgeChanges folds a batch of edge change descriptors into the store.
func (s *Store) ApplyEdgeChanges(ctx context.Context, changes []EdgeChange) Diagram {
	return s.commit(ctx, OpApplyEdgeChanges, func(d Diagram) Diagram {
		return Diagram{Nodes: d.Nodes, Edges: ApplyEdgeChanges(changes, d.Edges)}
	})
}

// Clear removes every node and edge.
func (s *Store) Clear(ctx context.Context) Diagram {
	return s.commit(ctx, OpClear, func(Diagram) Diagram {
		return Diagram{Nodes: []Node{}, Edges: []Edge{}}
	})
}

// Replace swaps the whole diagram for d.
func (s *Store) Replace(ctx context.Context, d Diagram) Diagram {
	return s.commit(ctx, OpReplace, func(Diagram) Diagram { return d.normalized().Clone() })
}

// Update runs fn on the current diagram while holding the write lock and
// commits its result as op. If fn returns an error nothing is committed,
// observers are not called and the error is returned. Checks that must hold
// at commit time, such as "both endpoints exist", belong inside fn.
func (s *Store) Update(ctx context.Context, op string, fn func(Diagram) (Diagram, error)) (Diagram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(*s.current.Load())
	if err != nil {
		return *s.current.Load(), err
	}
	s.publish(ctx, op, next)
	return next, nil
}

func (s *Store) commit(ctx context.Context, op string, fn func(Diagram) Diagram) Diagram {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(*s.current.Load())
	s.publish(ctx, op, next)
	return next
}

// publish stores next and notifies observers. s.mu must be held.
func (s *Store) publish(ctx context.Context, op string, next Diagram) {
	s.current.Store(&next)

	observability.Store().OnMutation(ctx, op, len(next.Nodes), len(next.Edges))
	for _, o := range s.observers {
		o(ctx, op, next)
	}
}
