package diagram

import "math"

// Node sizes assumed for nodes the surface has not measured yet.
const (
	DefaultNodeWidth  = 150
	DefaultNodeHeight = 40
)

// Viewport is a pan/zoom transform: a canvas point p is drawn at p*Zoom+(X,Y).
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Rect is an axis-aligned rectangle on the canvas.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FitOptions controls FitView.
type FitOptions struct {
	Padding float64 // fraction of the bounds added as margin
	MinZoom float64
	MaxZoom float64
}

// DefaultFitOptions matches the editor's "reset view" action.
func DefaultFitOptions() FitOptions {
	return FitOptions{Padding: 0.2, MinZoom: 0.1, MaxZoom: 4}
}

// Bounds returns the smallest rectangle containing every node.
func Bounds(nodes []Node) Rect {
	if len(nodes) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		w, h := n.Width, n.Height
		if w <= 0 {
			w = DefaultNodeWidth
		}
		if h <= 0 {
			h = DefaultNodeHeight
		}
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+w)
		maxY = math.Max(maxY, n.Position.Y+h)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// FitView computes the viewport that centers all nodes in a width x height
// frame. It only reads nodes. An empty diagram yields the identity viewport.
func FitView(nodes []Node, width, height float64, opts FitOptions) Viewport {
	if len(nodes) == 0 || width <= 0 || height <= 0 {
		return Viewport{Zoom: 1}
	}
	b := Bounds(nodes)
	zoom := math.Min(
		width/(b.Width*(1+opts.Padding)),
		height/(b.Height*(1+opts.Padding)),
	)
	if opts.MinZoom > 0 {
		zoom = math.Max(zoom, opts.MinZoom)
	}
	if opts.MaxZoom > 0 {
		zoom = math.Min(zoom, opts.MaxZoom)
	}
	cx := b.X + b.Width/2
	cy := b.Y + b.Height/2
	return Viewport{
		X:    width/2 - cx*zoom,
		Y:    height/2 - cy*zoom,
		Zoom: zoom,
	}
}
