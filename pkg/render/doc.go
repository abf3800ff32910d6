// Package render groups the renderers of multilayer networks.
//
// The [nodelink] subpackage draws the flattened graph with every layer laid
// out side by side:
//
//	dot, err := nodelink.ToDOT(collection, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/timenexus/timenexus/pkg/render/nodelink
package render
