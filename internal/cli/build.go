package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	tnio "github.com/timenexus/timenexus/pkg/io"
)

// buildCommand creates the build command: a network definition and its
// tables become a collection.
func (c *CLI) buildCommand() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "build <definition>",
		Short: "Build a multilayer network from a definition and its tables",
		Long: `Build reads a network definition (TOML or YAML) naming one node table and
one intra-layer edge table per layer, plus the inter-layer edge tables, converts
the tables into a multilayer network and flattens it.

Table paths are relative to the definition file.`,
		Example: `  timenexus build network.toml -o out/
  timenexus build network.yaml --session new`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			col, err := tnio.BuildFile(args[0])
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Built network %s", col.Name))
			return c.save(ctx, col, out)
		},
	}
	out.register(cmd)
	return cmd
}

// importCommand creates the import command: a graph document is marked as
// a flattened network and its layers are derived.
func (c *CLI) importCommand() *cobra.Command {
	var (
		out  outputFlags
		name string
	)
	cmd := &cobra.Command{
		Use:   "import <graph.json>",
		Short: "Import a flattened graph and derive its layers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			col, err := tnio.ImportGraphFile(args[0])
			if err != nil {
				return err
			}
			switch {
			case name != "":
				col.Name = name
			case col.Name == "":
				col.Name = trimExt(filepath.Base(args[0]))
			}
			col.Flattened.SetName(col.Name)
			loggerFromContext(ctx).Debug("imported flattened graph", "layers", len(col.Layers))
			return c.save(ctx, col, out)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "network name (default: the graph name or file name)")
	out.register(cmd)
	return cmd
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
