// Package nodelink draws the flattened graph of a multilayer network.
//
// The aggregated graph provides one layout for every original node. The
// layout is copied into each layer, shifted right by 1.25 times its width
// per layer ID, so the same node sits at the same height in every layer
// band:
//
//	x' = 1.25 * width * layer + x
//	y' = y
//
// Layers that are not selected are hidden.
//
// # Usage
//
//	dot, err := nodelink.ToDOT(collection, nodelink.Options{Layers: []int{1, 2}})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Positions come from [Options.Positions], typically read with
// [ReadPositions] from a layout computed elsewhere; without them the
// aggregated nodes are spread on a circle.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering with the pinned positions of the DOT source.
package nodelink
