// Package render exports diagram snapshots as Graphviz DOT and SVG.
//
// # Overview
//
// The browser surface draws the live diagram itself; this package produces
// static artifacts of a snapshot for the CLI's export command and the
// HTTP export endpoint.
//
//	dot := render.ToDOT(d, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Layout
//
// By default nodes are pinned at their canvas positions and the neato engine
// only routes edges, so the export matches what the editor shows. With
// [Options.AutoLayout] the dot engine computes a top-to-bottom layout instead.
//
// # Styling
//
// Node types map to fill colors (input, output, default). Animated edges are
// dashed. The edge type is carried in the SVG class attribute so a
// stylesheet can tell smoothstep, straight and bezier edges apart.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package render
