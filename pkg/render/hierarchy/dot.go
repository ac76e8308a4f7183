package hierarchy

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cellsolve/pkg/cell"
)

// Options configures node labels.
type Options struct {
	// Layers appends the layer label to leaf labels.
	Layers bool
	// Boxes appends the resolved box to every resolved cell's label.
	Boxes bool
}

// ToDOT converts root's subtree to Graphviz DOT source. Node identifiers
// are assigned in pre-order, so equal trees produce equal output.
func ToDOT(root *cell.Cell, opts Options) string {
	ids := make(map[cell.ID]string)
	var nodes []*cell.Cell
	var edges [][2]string

	_ = root.Walk(func(c *cell.Cell, _ int) error {
		if _, ok := ids[c.ID()]; ok {
			return cell.SkipChildren
		}
		ids[c.ID()] = fmt.Sprintf("n%d", len(nodes))
		nodes = append(nodes, c)
		return nil
	})
	for _, c := range nodes {
		for _, ch := range c.Children() {
			edges = append(edges, [2]string{ids[c.ID()], ids[ch.ID()]})
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph cells {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, c := range nodes {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, opts))}
		attrs = append(attrs, fmtAttrs(c)...)
		fmt.Fprintf(&buf, "  %s [%s];\n", ids[c.ID()], strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %s -> %s;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(c *cell.Cell, opts Options) string {
	parts := []string{c.Name()}
	if opts.Layers && c.IsLeaf() && c.Layer() != "" {
		parts = append(parts, c.Layer())
	}
	if b, ok := c.Box(); ok && opts.Boxes {
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(c *cell.Cell) []string {
	var attrs []string
	if c.IsLeaf() {
		attrs = append(attrs, "shape=note")
	}
	switch c.Reuse() {
	case cell.ReuseFrozen:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case cell.ReuseFixed:
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz build.
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

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose viewBox starts at the origin, so the image scales in browsers.
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

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
