package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/timenexus/timenexus/pkg/graph"
	tnio "github.com/timenexus/timenexus/pkg/io"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/pipeline"
	"github.com/timenexus/timenexus/pkg/render/nodelink"
)

// =============================================================================
// view
// =============================================================================

func (c *CLI) viewCommand() *cobra.Command {
	var (
		formats   string
		layers    []int
		positions string
		output    string
	)
	cmd := &cobra.Command{
		Use:   "view <input>",
		Short: "Draw the flattened view of a multilayer network",
		Long: `View draws every layer side by side, each laid out like the aggregated network,
with the inter-layer edges between them.

Node positions are read from a JSON file mapping node names to {"x", "y"};
without one, nodes are placed on a circle. With several formats, -o is the
base path and each file gets the format's extension.`,
		Example: `  timenexus view extracted/ -f svg -o cycle.svg
  timenexus view out/ -f dot,svg --layers 1,2 --positions layout.json -o cycle`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			col, err := c.loadCollection(ctx, args[0])
			if err != nil {
				return err
			}
			opts := pipeline.Options{Formats: parseFormats(formats), ViewLayers: layers}
			if positions != "" {
				if opts.Positions, err = readPositionsFile(positions); err != nil {
					return err
				}
			}

			var artifacts map[string][]byte
			if err := spin(ctx, "Rendering "+col.Name, "", func() error {
				artifacts, err = pipeline.Render(ctx, col, opts)
				return err
			}); err != nil {
				return err
			}
			return writeArtifacts(artifacts, opts.Formats, output)
		},
	}
	cmd.Flags().StringVarP(&formats, "format", "f", pipeline.FormatSVG, "output formats: dot, svg, json (comma-separated)")
	cmd.Flags().IntSliceVar(&layers, "layers", nil, "layers to show (default: all)")
	cmd.Flags().StringVar(&positions, "positions", "", "JSON file of node positions")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or base path (default: stdout)")
	return cmd
}

func readPositionsFile(path string) (nodelink.Positions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return nodelink.ReadPositions(f)
}

// writeArtifacts writes one artifact to output (stdout when empty), or
// several next to the base path output.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) error {
	if len(formats) == 1 {
		w, err := openOutput(output)
		if err != nil {
			return err
		}
		if _, err := w.Write(artifacts[formats[0]]); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		if output != "" {
			printFile(output)
		}
		return nil
	}

	if output == "" {
		return fmt.Errorf("-o is required with several formats")
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	for _, f := range formats {
		path := base + "." + f
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// =============================================================================
// export
// =============================================================================

func (c *CLI) exportCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export <input>",
		Short: "Write the node and edge tables of a network as CSV",
		Long: `Export writes the node and edge tables of the flattened, aggregated and layer
graphs, and the inter-layer edge tables, as CSV files of one directory.`,
		Example: `  timenexus export extracted/ -o tables/`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				return fmt.Errorf("-o is required")
			}
			col, err := c.loadCollection(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			files, err := exportTables(col, dir)
			if err != nil {
				return err
			}
			printSuccess("Exported %d tables of %s", len(files), StyleHighlight.Render(col.Name))
			for _, f := range files {
				printFile(f)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "output", "o", "", "output directory")
	return cmd
}

// exportTables writes the tables of col to dir and returns the paths.
func exportTables(col *mln.Collection, dir string) ([]string, error) {
	type entry struct {
		file  string
		table *graph.Table
	}
	var entries []entry
	add := func(prefix string, g *graph.Graph) {
		entries = append(entries, entry{prefix + "_nodes.csv", g.NodeTable()}, entry{prefix + "_edges.csv", g.EdgeTable()})
	}
	add("flattened", col.Flattened)
	if col.Aggregated != nil {
		add("aggregated", col.Aggregated)
	}
	for i, k := range col.LayerIDs() {
		add(fmt.Sprintf("layer_%d", k), col.Layers[i])
		if t, ok := col.InterTable(k); ok {
			entries = append(entries, entry{fmt.Sprintf("inter_%d-%d.csv", k, k+1), t})
		}
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		path := filepath.Join(dir, e.file)
		if err := writeTableFile(e.table, path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeTableFile(t *graph.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tnio.WriteTableCSV(t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
