package nodelink

import (
	"encoding/json"
	"io"
	"math"
	"slices"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

// LayerSpacing is the horizontal distance between two layers, as a
// multiple of the width of the aggregated layout.
const LayerSpacing = 1.25

// MinWidth is the layer width used when every aggregated node shares one x.
const MinWidth = 100.0

// Point is a position in points.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positions maps original node names to their position in the aggregated
// layout.
type Positions map[string]Point

// ReadPositions decodes positions written as {"name": {"x": 0, "y": 0}}.
func ReadPositions(r io.Reader) (Positions, error) {
	var p Positions
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid positions",
			"The node positions cannot be decoded: %v", err)
	}
	return p, nil
}

// CircleLayout places the nodes of the aggregated graph on a circle, in
// node order, starting at the top.
func CircleLayout(agg *graph.Graph) Positions {
	nodes := agg.Nodes()
	n := len(nodes)
	radius := math.Max(MinWidth, 60*float64(n)/(2*math.Pi))
	out := make(Positions, n)
	for i, id := range nodes {
		a := 2*math.Pi*float64(i)/float64(n) - math.Pi/2
		out[agg.NodeName(id)] = Point{X: radius * math.Cos(a), Y: radius * math.Sin(a)}
	}
	return out
}

// Placement is the position of one node of the flattened graph.
type Placement struct {
	Node    int64
	Name    string
	Layer   int
	Point   Point
	Visible bool
}

// LayerX returns the x position of a node of layer k whose aggregated x is
// x, in a layout of the given width.
func LayerX(x, width float64, k int) float64 {
	return LayerSpacing*width*float64(k) + x
}

// Place replicates the aggregated layout in every layer of flat: each
// layer is shifted right by [LayerX], y is kept. Nodes of layers not in
// show are placed but not visible; an empty show displays every layer.
// Every aggregated node must have a position.
func Place(flat, agg *graph.Graph, pos Positions, show []int) ([]Placement, error) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, n := range agg.Nodes() {
		name := agg.NodeName(n)
		p, ok := pos[name]
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid positions",
				"No position was given for the node %q.", name)
		}
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
	}
	width := maxX - minX
	if width <= 0 || math.IsInf(width, 0) {
		width = MinWidth
	}

	flatIndex := make(map[string]int64, flat.NodeCount())
	for _, n := range flat.Nodes() {
		flatIndex[flat.NodeName(n)] = n
	}
	var out []Placement
	for _, n := range agg.Nodes() {
		name := agg.NodeName(n)
		layers, _ := agg.NodeTable().Ints(n, mln.ColLayerID)
		p := pos[name]
		for _, k := range layers {
			flatName := mln.FlatName(name, k)
			id, ok := flatIndex[flatName]
			if !ok {
				continue
			}
			out = append(out, Placement{
				Node:    id,
				Name:    flatName,
				Layer:   k,
				Point:   Point{X: LayerX(p.X, width, k), Y: p.Y},
				Visible: len(show) == 0 || slices.Contains(show, k),
			})
		}
	}
	return out, nil
}
