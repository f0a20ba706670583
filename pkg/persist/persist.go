// Package persist reads and writes diagram snapshots to a kv.Store.
//
// A snapshot is stored under two keys, one holding the JSON array of nodes and
// one holding the JSON array of edges:
//
//	diagramNodes -> [{"id":"1","type":"input","position":{"x":0,"y":0},"data":{"label":"Client"}}]
//	diagramEdges -> [{"id":"e1-2","source":"1","target":"2","type":"smoothstep","animated":true}]
//
// [Adapter.Load] is called once at startup. It never fails: a missing or
// undecodable key falls back to the caller's defaults and the reason is logged
// and returned in a [LoadReport]. [Adapter.Save] writes both keys and returns
// the first error; [Adapter.Observer] turns it into a diagram.Observer that
// logs and records failures instead of propagating them.
package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/diagrammer/pkg/diagram"
	derrors "github.com/matzehuels/diagrammer/pkg/errors"
	"github.com/matzehuels/diagrammer/pkg/kv"
	"github.com/matzehuels/diagrammer/pkg/observability"
)

// Storage keys of the unscoped diagram.
const (
	NodesKey = "diagramNodes"
	EdgesKey = "diagramEdges"
)

// Keys names the two keys a snapshot is stored under.
type Keys struct {
	Nodes string
	Edges string
}

// DefaultKeys returns the unscoped keys.
func DefaultKeys() Keys {
	return Keys{Nodes: NodesKey, Edges: EdgesKey}
}

// ScopedKeys prefixes the default keys with namespace so several diagrams can
// share one store. An empty namespace yields DefaultKeys.
func ScopedKeys(namespace string) Keys {
	if namespace == "" {
		return DefaultKeys()
	}
	return Keys{Nodes: namespace + ":" + NodesKey, Edges: namespace + ":" + EdgesKey}
}

// Options configures an Adapter.
type Options struct {
	// Keys defaults to DefaultKeys.
	Keys Keys

	// Sanitize drops edges whose endpoints are missing from a loaded snapshot.
	Sanitize bool

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// LoadReport describes where a loaded diagram came from.
type LoadReport struct {
	Source  string // observability.SourceStored or observability.SourceSeed
	Reason  string // why the defaults were used; empty for stored snapshots
	Dropped int    // dangling edges removed by sanitizing
}

// Status summarizes the adapter's write history.
type Status struct {
	Saves       int       `json:"saves"`
	Failures    int       `json:"failures"`
	LastSavedAt time.Time `json:"last_saved_at,omitzero"`
	LastError   string    `json:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at,omitzero"`
}

// Adapter persists diagrams to a kv.Store.
type Adapter struct {
	store    kv.Store
	keys     Keys
	sanitize bool
	logger   *log.Logger

	mu     sync.Mutex
	status Status
}

// New creates an adapter over store.
func New(store kv.Store, opts Options) *Adapter {
	if opts.Keys == (Keys{}) {
		opts.Keys = DefaultKeys()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Adapter{
		store:    store,
		keys:     opts.Keys,
		sanitize: opts.Sanitize,
		logger:   opts.Logger,
	}
}

// Keys returns the keys the adapter reads and writes.
func (a *Adapter) Keys() Keys { return a.keys }

// Load reads the stored snapshot. If either key is missing or does not decode
// into an array, defaults is returned instead and the reason is logged.
func (a *Adapter) Load(ctx context.Context, defaults diagram.Diagram) (diagram.Diagram, LoadReport) {
	d, err := a.read(ctx)
	if err != nil {
		report := LoadReport{Source: observability.SourceSeed, Reason: err.Error()}
		reason := observability.ReasonCorrupt
		switch {
		case errors.Is(err, errMissing):
			reason = observability.ReasonMissing
			a.logger.Info("no stored diagram, using defaults", "reason", report.Reason)
		case derrors.Is(err, derrors.ErrCodeStorage):
			reason = observability.ReasonError
			a.logger.Warn("stored diagram unreadable, using defaults", "reason", report.Reason)
		default:
			a.logger.Warn("stored diagram unusable, using defaults", "reason", report.Reason)
		}
		observability.Persist().OnLoad(ctx, report.Source, reason)
		return defaults, report
	}

	report := LoadReport{Source: observability.SourceStored}
	if a.sanitize {
		d, report.Dropped = d.Sanitize()
		if report.Dropped > 0 {
			a.logger.Warn("dropped dangling edges from stored diagram", "count", report.Dropped)
		}
	}
	a.logger.Debug("loaded stored diagram", "nodes", len(d.Nodes), "edges", len(d.Edges))
	observability.Persist().OnLoad(ctx, report.Source, "")
	return d, report
}

var errMissing = errors.New("missing key")

func (a *Adapter) read(ctx context.Context) (diagram.Diagram, error) {
	var d diagram.Diagram
	if err := a.readKey(ctx, a.keys.Nodes, &d.Nodes); err != nil {
		return diagram.Diagram{}, err
	}
	if err := a.readKey(ctx, a.keys.Edges, &d.Edges); err != nil {
		return diagram.Diagram{}, err
	}
	return d, nil
}

func (a *Adapter) readKey(ctx context.Context, key string, v any) error {
	raw, ok, err := a.store.Get(ctx, key)
	if errors.Is(err, kv.ErrCorrupt) {
		return derrors.Wrap(derrors.ErrCodeCorruptData, err, "read %s", key)
	}
	if err != nil {
		return derrors.Wrap(derrors.ErrCodeStorage, err, "read %s", key)
	}
	if !ok {
		return fmt.Errorf("%w %s", errMissing, key)
	}
	if trimmed := bytes.TrimSpace(raw); !bytes.HasPrefix(trimmed, []byte("[")) {
		return derrors.New(derrors.ErrCodeCorruptData, "decode %s: not a JSON array", key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return derrors.Wrap(derrors.ErrCodeCorruptData, err, "decode %s", key)
	}
	return nil
}

// Save writes both collections of d. Nodes are written first; if that fails
// the edges are not written.
func (a *Adapter) Save(ctx context.Context, d diagram.Diagram) error {
	start := time.Now()
	size, err := a.write(ctx, d)
	observability.Persist().OnSave(ctx, size, time.Since(start), err)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.status.Failures++
		a.status.LastError = derrors.UserMessage(err)
		a.status.LastErrorAt = time.Now()
		return err
	}
	a.status.Saves++
	a.status.LastSavedAt = time.Now()
	return nil
}

func (a *Adapter) write(ctx context.Context, d diagram.Diagram) (int, error) {
	if d.Nodes == nil {
		d.Nodes = []diagram.Node{}
	}
	if d.Edges == nil {
		d.Edges = []diagram.Edge{}
	}
	nodes, err := json.Marshal(d.Nodes)
	if err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeInternal, err, "encode nodes")
	}
	edges, err := json.Marshal(d.Edges)
	if err != nil {
		return 0, derrors.Wrap(derrors.ErrCodeInternal, err, "encode edges")
	}
	if err := a.store.Set(ctx, a.keys.Nodes, nodes); err != nil {
		return 0, wrapStoreErr(err, a.keys.Nodes)
	}
	if err := a.store.Set(ctx, a.keys.Edges, edges); err != nil {
		return len(nodes), wrapStoreErr(err, a.keys.Edges)
	}
	return len(nodes) + len(edges), nil
}

func wrapStoreErr(err error, key string) error {
	if errors.Is(err, kv.ErrQuotaExceeded) {
		return derrors.Wrap(derrors.ErrCodeQuotaExceeded, err, "write %s", key)
	}
	return derrors.Wrap(derrors.ErrCodeStorage, err, "write %s", key)
}

// Clear deletes both keys.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.store.Delete(ctx, a.keys.Nodes); err != nil {
		return wrapStoreErr(err, a.keys.Nodes)
	}
	if err := a.store.Delete(ctx, a.keys.Edges); err != nil {
		return wrapStoreErr(err, a.keys.Edges)
	}
	return nil
}

// Status returns a copy of the write history.
func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Observer returns a diagram.Observer that saves every committed snapshot.
// Failures are logged at WARN and recorded in Status; the committed mutation
// stands.
func (a *Adapter) Observer() diagram.Observer {
	return func(ctx context.Context, op string, d diagram.Diagram) {
		if err := a.Save(ctx, d); err != nil {
			a.logger.Warn("save failed", "op", op, "err", err)
		}
	}
}
