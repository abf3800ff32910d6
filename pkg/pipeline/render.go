package pipeline

import (
	"context"
	"fmt"

	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/render/nodelink"
)

// Render generates output artifacts of c in the requested formats. DOT and
// SVG draw the flattened view; JSON is the flattened graph document.
func Render(ctx context.Context, c *mln.Collection, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	for _, format := range opts.Formats {
		if (format == FormatDOT || format == FormatSVG) && dot == "" {
			var err error
			dot, err = nodelink.ToDOT(c, nodelink.Options{Layers: opts.ViewLayers, Positions: opts.Positions})
			if err != nil {
				return nil, err
			}
		}

		var data []byte
		var err error
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatJSON:
			data, err = graph.MarshalGraph(c.Flattened)
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
