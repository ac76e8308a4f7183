// Package floorplan draws flattened leaf rectangles as an SVG floorplan.
//
// Layout coordinates have their origin at the lower left; the drawing flips
// the y axis so the picture matches the layout. Each layer gets a color
// from a fixed palette in sorted layer order, so the same set of layers is
// always drawn the same way.
package floorplan

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/cellsolve/pkg/exchange"
)

// palette holds the layer fill colors, cycled when there are more layers.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2",
	"#59a14f", "#edc948", "#b07aa1", "#ff9da7",
}

// Option configures the renderer.
type Option func(*renderer)

type renderer struct {
	scale   float64
	margin  float64
	labels  bool
	opacity float64
}

// WithScale sets the number of SVG units per layout unit.
func WithScale(s float64) Option { return func(r *renderer) { r.scale = s } }

// WithLabels writes each leaf's name at its center.
func WithLabels() Option { return func(r *renderer) { r.labels = true } }

// WithOpacity sets the fill opacity of the rectangles.
func WithOpacity(o float64) Option { return func(r *renderer) { r.opacity = o } }

// RenderSVG draws shapes. An empty slice yields an empty drawing.
func RenderSVG(shapes []exchange.Shape, opts ...Option) []byte {
	r := renderer{scale: 4, margin: 8, opacity: 0.6}
	for _, opt := range opts {
		opt(&r)
	}

	var minX, minY, maxX, maxY int64
	for i, s := range shapes {
		if i == 0 || s.Box.X1 < minX {
			minX = s.Box.X1
		}
		if i == 0 || s.Box.Y1 < minY {
			minY = s.Box.Y1
		}
		if i == 0 || s.Box.X2 > maxX {
			maxX = s.Box.X2
		}
		if i == 0 || s.Box.Y2 > maxY {
			maxY = s.Box.Y2
		}
	}
	w := float64(maxX-minX)*r.scale + 2*r.margin
	h := float64(maxY-minY)*r.scale + 2*r.margin

	colors := make(map[string]string)
	for i, l := range exchange.Layers(shapes) {
		colors[l] = palette[i%len(palette)]
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	for _, s := range shapes {
		x := float64(s.Box.X1-minX)*r.scale + r.margin
		y := float64(maxY-s.Box.Y2)*r.scale + r.margin
		sw := float64(s.Box.Width()) * r.scale
		sh := float64(s.Box.Height()) * r.scale
		fmt.Fprintf(&buf, `  <rect id=%q class="shape" data-layer=%q x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="%.2f" stroke="#333" stroke-width="1"><title>%s</title></rect>`+"\n",
			html.EscapeString(s.Key), html.EscapeString(s.Layer), x, y, sw, sh, colors[s.Layer], r.opacity,
			html.EscapeString(s.Path+" "+s.Box.String()))
		if r.labels {
			fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="10" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
				x+sw/2, y+sh/2, html.EscapeString(s.Name))
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
