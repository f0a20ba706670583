package render

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/diagrammer/pkg/diagram"
	derrors "github.com/matzehuels/diagrammer/pkg/errors"
)

// Export formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// Formats lists the supported export formats.
var Formats = []string{FormatDOT, FormatSVG, FormatJSON}

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// Options configures DOT generation.
type Options struct {
	// AutoLayout ignores canvas positions and lets Graphviz lay out the nodes.
	AutoLayout bool

	// Detailed adds node ids and extra data keys to labels.
	Detailed bool
}

// points per canvas pixel; Graphviz positions are in points (1/72 inch).
const pointsPerPixel = 0.75

var fillColors = map[string]string{
	"input":  "#e0f2fe",
	"output": "#dcfce7",
}

// ToDOT converts a diagram to Graphviz DOT source.
func ToDOT(d diagram.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.AutoLayout {
		buf.WriteString("  rankdir=TB;\n")
		buf.WriteString("  ranksep=0.5;\n")
		buf.WriteString("  nodesep=0.3;\n")
	} else {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#64748b\"];\n")
	buf.WriteString("\n")

	for _, n := range d.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n diagram.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	if c, ok := fillColors[n.Type]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	if !opts.AutoLayout {
		// Canvas y grows downwards, Graphviz y upwards.
		x := n.Position.X * pointsPerPixel
		y := 0 - n.Position.Y*pointsPerPixel
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(x), fmtFloat(y)))
	}
	if n.Selected {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

func fmtLabel(n diagram.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	parts := []string{label, "id: " + n.ID}
	for _, k := range slices.Sorted(maps.Keys(n.Data)) {
		if k == diagram.LabelKey {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Data[k]))
	}
	return strings.Join(parts, "\n")
}

func edgeAttrs(e diagram.Edge) []string {
	class := string(e.StyleOrDefault())
	attrs := []string{fmt.Sprintf("id=%q", e.ID)}
	if e.Animated {
		class += " animated"
		attrs = append(attrs, "style=dashed")
	}
	return append(attrs, fmt.Sprintf("class=%q", class))
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if strings.Contains(dot, "layout=neato;") {
		gv.SetLayout(graphviz.NEATO)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-unit svg tag with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// Export renders d in the given format.
func Export(ctx context.Context, d diagram.Diagram, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(ToDOT(d, opts)), nil
	case FormatSVG:
		return RenderSVG(ctx, ToDOT(d, opts))
	case FormatJSON:
		var buf bytes.Buffer
		if err := diagram.Write(d, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, derrors.New(derrors.ErrCodeInvalidFormat,
			"unknown export format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}
