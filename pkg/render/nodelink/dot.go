package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/timenexus/timenexus/pkg/graph/normalize"
	"github.com/timenexus/timenexus/pkg/mln"
)

// Options configures the flattened view.
type Options struct {
	// Layers lists the layers to display. Empty displays every layer.
	Layers []int

	// Positions is the aggregated layout. Nil uses [CircleLayout].
	Positions Positions
}

// palette cycles fill colours over layers.
var palette = []string{"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462", "#b3de69", "#fccde5"}

// ToDOT converts the flattened graph of c to Graphviz DOT with pinned node
// positions, one horizontal band per layer. Hidden nodes and their edges
// are left out. Inter-layer edges are dashed; undirected edges have no
// arrow head.
func ToDOT(c *mln.Collection, opts Options) (string, error) {
	flat, agg := c.Flattened, c.Aggregated
	pos := opts.Positions
	if pos == nil {
		pos = CircleLayout(agg)
	}
	placed, err := Place(flat, agg, pos, opts.Layers)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fontsize=12];\n")
	buf.WriteString("\n")

	visible := make(map[int64]bool, len(placed))
	for _, p := range placed {
		if !p.Visible {
			continue
		}
		visible[p.Node] = true
		fmt.Fprintf(&buf, "  %q [pos=\"%s,%s\", fillcolor=%q];\n", p.Name,
			fmtCoord(p.Point.X), fmtCoord(p.Point.Y), palette[(p.Layer-1)%len(palette)])
	}

	buf.WriteString("\n")
	for _, e := range flat.Edges() {
		if !visible[e.Source] || !visible[e.Target] {
			continue
		}
		var attrs []string
		if label, _ := flat.EdgeTable().String(e.ID, mln.ColEdgeLabel); label == mln.LabelInter {
			attrs = append(attrs, "style=dashed")
		}
		if !normalize.Directed(flat, e.ID) {
			attrs = append(attrs, "dir=none")
		}
		fmt.Fprintf(&buf, "  %q -> %q", flat.NodeName(e.Source), flat.NodeName(e.Target))
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderSVG renders a DOT graph produced by [ToDOT] to SVG, keeping the
// pinned node positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NOP)

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
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
