// Package pkg provides the core libraries for diagrammer, a node-and-edge
// diagram editor state model with pluggable persistence.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [diagram] - Nodes, edges, the pure operations on them and the Store that owns them
//  2. [forms] - Add/edit/delete controllers that validate input before touching the Store
//  3. [persist] - Snapshot load and save on top of a key-value backend
//  4. [kv] - Key-value backends (memory, file, badger, sqlite, redis, mongo)
//  5. [render] - DOT, SVG and JSON export of a snapshot
//
// Supporting packages: [config] (TOML configuration), [errors] (coded errors
// and validation helpers), [observability] (metrics hooks) and [buildinfo].
//
// # Architecture
//
// Every mutation flows through a single Store:
//
//	CLI command / HTTP handler
//	         ↓
//	    [forms] package (validate, confirm destructive actions)
//	         ↓
//	    [diagram] Store (commit new snapshot, notify observers)
//	         ↓
//	    [persist] Adapter (write diagramNodes and diagramEdges)
//	         ↓
//	    [kv] Store backend
//
// The adapter is read exactly once, at startup, to seed the Store. A missing
// or unreadable snapshot falls back to the bundled seed diagram.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/diagrammer/pkg/diagram"
//	    "github.com/matzehuels/diagrammer/pkg/forms"
//	    "github.com/matzehuels/diagrammer/pkg/kv"
//	    "github.com/matzehuels/diagrammer/pkg/persist"
//	)
//
//	ctx := context.Background()
//	adapter := persist.New(kv.NewMemory(0), persist.Options{Sanitize: true})
//	d, _ := adapter.Load(ctx, diagram.DefaultSeed())
//
//	store := diagram.NewStore(d)
//	store.Subscribe(adapter.Observer())
//	ctl := forms.New(store, forms.Options{})
//	node, _ := ctl.AddNode(ctx, forms.NodeInput{Label: "Cache"})
//
// # Configuration
//
// See [config.Default] for the built-in settings and [config.Load] for the
// TOML file layout.
package pkg
