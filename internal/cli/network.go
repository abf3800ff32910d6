package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/graph/normalize"
	tnio "github.com/timenexus/timenexus/pkg/io"
	"github.com/timenexus/timenexus/pkg/mln/format"
	"github.com/timenexus/timenexus/pkg/mln/transform"
)

// Graph kinds accepted by validate --as.
const (
	kindFlattened  = "flattened"
	kindAggregated = "aggregated"
	kindLayers     = "layers"
)

// =============================================================================
// validate
// =============================================================================

func (c *CLI) validateCommand() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "validate <dir|graph.json>...",
		Short: "Check that graphs follow the multilayer network layout",
		Long: `Validate checks graph documents without converting them.

A collection directory is checked file by file: flattened.json as a flattened
network, aggregated.json as an aggregated network and the layer_k.json files
together as the layers of one network. Single files are checked as --as says.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains([]string{kindFlattened, kindAggregated, kindLayers}, as) {
				return fmt.Errorf("invalid --as %q (must be one of: flattened, aggregated, layers)", as)
			}
			failed := 0
			for _, arg := range args {
				checks, err := validationChecks(arg, as)
				if err != nil {
					return err
				}
				for _, chk := range checks {
					if err := chk.run(); err != nil {
						failed++
						printError("%s: %s", chk.label, errors.TitleOf(err))
						printDetail("%s", errors.UserMessage(err))
						continue
					}
					printSuccess("%s", chk.label)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", kindFlattened, "kind of single graph files: flattened, aggregated or layers")
	return cmd
}

type validationCheck struct {
	label string
	run   func() error
}

// validationChecks lists the checks of one validate argument.
func validationChecks(path, as string) ([]validationCheck, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		g, err := graph.ReadGraphFile(path)
		if err != nil {
			return nil, err
		}
		return []validationCheck{graphCheck(path, as, []*graph.Graph{g})}, nil
	}

	var checks []validationCheck
	for name, kind := range map[string]string{tnio.FlattenedFile: kindFlattened, tnio.AggregatedFile: kindAggregated} {
		p := filepath.Join(path, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		g, err := graph.ReadGraphFile(p)
		if err != nil {
			return nil, err
		}
		checks = append(checks, graphCheck(p, kind, []*graph.Graph{g}))
	}
	files, err := filepath.Glob(filepath.Join(path, "layer_*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		layers := make([]*graph.Graph, 0, len(files))
		for _, f := range files {
			g, err := graph.ReadGraphFile(f)
			if err != nil {
				return nil, err
			}
			layers = append(layers, g)
		}
		checks = append(checks, graphCheck(filepath.Join(path, "layer_*.json"), kindLayers, layers))
	}
	slices.SortFunc(checks, func(a, b validationCheck) int { return strings.Compare(a.label, b.label) })
	if len(checks) == 0 {
		return nil, fmt.Errorf("%s: no graph files found", path)
	}
	return checks, nil
}

func graphCheck(label, kind string, graphs []*graph.Graph) validationCheck {
	run := func() error { return format.ValidateLayers(graphs) }
	switch kind {
	case kindFlattened:
		run = func() error {
			if err := format.ValidateFlattened(graphs[0]); err != nil {
				return err
			}
			return format.CheckUniqueFlattenedNames(graphs[0])
		}
	case kindAggregated:
		run = func() error {
			if err := format.ValidateAggregated(graphs[0]); err != nil {
				return err
			}
			return format.CheckUniqueAggregatedNames(graphs[0])
		}
	}
	return validationCheck{label: label + " (" + kind + ")", run: run}
}

// =============================================================================
// copy
// =============================================================================

func (c *CLI) copyCommand() *cobra.Command {
	var (
		out    outputFlags
		layers []int
		nodes  []string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "copy <input>",
		Short: "Copy some layers of a multilayer network",
		Long: `Copy keeps the selected layers of a flattened network, and optionally only
some of its nodes, and derives a new collection from them.

Layers must be contiguous. Nodes are given by their flattened names
(for example "CDK1_2").`,
		Example: `  timenexus copy out/ --layers 2,3 --name "S phase" -o s-phase/`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(layers) == 0 {
				return fmt.Errorf("--layers is required")
			}
			slices.Sort(layers)
			if !extract.Contiguous(layers) {
				return fmt.Errorf("layers %s are not contiguous", formatLayers(layers))
			}
			col, err := c.loadCollection(ctx, args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = col.Name + " (layers " + formatLayers(layers) + ")"
			}
			var keep []string
			if len(nodes) > 0 {
				keep = nodes
			}
			flat, err := transform.SelectLayers(col.Flattened, layers, keep, name)
			if err != nil {
				return err
			}
			copied, err := transform.ImportFlattened(flat)
			if err != nil {
				return err
			}
			copied.Name = name
			return c.save(ctx, copied, out)
		},
	}
	cmd.Flags().IntSliceVar(&layers, "layers", nil, "layer IDs to keep (e.g. 1,2)")
	cmd.Flags().StringSliceVar(&nodes, "nodes", nil, "flattened node names to keep (default: all)")
	cmd.Flags().StringVar(&name, "name", "", "name of the copy")
	out.register(cmd)
	return cmd
}

// =============================================================================
// normalize
// =============================================================================

// Values of normalize --direction and --aggregate.
const (
	normDirected   = "directed"
	normUndirected = "undirected"
	normMixed      = "mixed"
)

func (c *CLI) normalizeCommand() *cobra.Command {
	var (
		out       outputFlags
		direction string
		aggregate string
	)
	cmd := &cobra.Command{
		Use:   "normalize <input>",
		Short: "Set edge directions and merge multi-edges",
		Long: `Normalize rewrites the edges of a flattened network before extraction.

--direction directed replaces each undirected edge by two opposite directed
edges; --direction undirected drops every direction. --aggregate then merges
parallel edges: undirected ones, identically directed ones, or both kinds
together (mixed). Merged edges carry the mean weight.`,
		Example: `  timenexus normalize out/ --aggregate mixed -o out-norm/`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if direction == "" && aggregate == "" {
				return fmt.Errorf("nothing to do: set --direction or --aggregate")
			}
			col, err := c.loadCollection(ctx, args[0])
			if err != nil {
				return err
			}
			flat := col.Flattened
			before := flat.EdgeCount()
			if err := normalizeEdges(ctx, flat, direction, aggregate); err != nil {
				return err
			}
			loggerFromContext(ctx).Info("normalized edges", "before", before, "after", flat.EdgeCount())

			derived, err := transform.Derive(flat, col.LayerIDs())
			if err != nil {
				return err
			}
			derived.Name = col.Name
			return c.save(ctx, derived, out)
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "", "set every edge directed or undirected")
	cmd.Flags().StringVar(&aggregate, "aggregate", "", "merge multi-edges: undirected, directed or mixed")
	out.register(cmd)
	return cmd
}

// normalizeEdges applies a direction pass, then an aggregation pass.
func normalizeEdges(ctx context.Context, g *graph.Graph, direction, aggregate string) error {
	switch direction {
	case "":
	case normDirected:
		if err := normalize.SetDirected(ctx, g); err != nil {
			return err
		}
	case normUndirected:
		if err := normalize.SetUndirected(ctx, g); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid --direction %q (must be directed or undirected)", direction)
	}

	switch aggregate {
	case "":
		return nil
	case normUndirected:
		return normalize.AggregateUndirected(ctx, g)
	case normDirected:
		return normalize.AggregateIdenticallyDirected(ctx, g)
	case normMixed:
		return normalize.AggregateMixed(ctx, g)
	}
	return fmt.Errorf("invalid --aggregate %q (must be undirected, directed or mixed)", aggregate)
}
