package cli

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/pipeline"
)

type extractFlags struct {
	service      string
	strategy     string
	layers       []int
	queryColumns []string
	skipChecks   bool
	refresh      bool
	noCache      bool
	noTUI        bool
}

func (c *CLI) extractCommand() *cobra.Command {
	var (
		flags extractFlags
		out   outputFlags
	)
	cmd := &cobra.Command{
		Use:   "extract <input>",
		Short: "Extract the subnetwork connecting query nodes across layers",
		Long: `Extract calls PathLinker or ANAT on slices of a flattened network and merges
the returned subnetworks into the "Extracted network" collection.

Strategies:
  global      one call on the whole selection
  pairwise    one call per pair of adjacent layers
  one-by-one  one call per layer, plus the inter-layer edges between them

Query nodes are read from a boolean or string column per layer, "Query_k" by
default. Service results are cached; --refresh bypasses the cached entries.`,
		Example: `  timenexus extract out/ --service pathlinker --strategy pairwise -o extracted/
  timenexus extract session:3f2c.../cycle --service anat --query-column 1=Seeds`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(cmd, args[0], flags, out)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.service, "service", "s", "", "extraction service: pathlinker or anat (default from config)")
	f.StringVar(&flags.strategy, "strategy", "", "extraction strategy: global, pairwise or one-by-one (default from config)")
	f.IntSliceVar(&flags.layers, "layers", nil, "layer IDs to extract from (default: all)")
	f.StringArrayVar(&flags.queryColumns, "query-column", nil, "query column of a layer, as layer=column (repeatable)")
	f.BoolVar(&flags.skipChecks, "skip-checks", false, "skip the pre-flight layer checks")
	f.BoolVar(&flags.refresh, "refresh", false, "ignore cached service results")
	f.BoolVar(&flags.noCache, "no-cache", false, "disable the result cache")
	f.BoolVar(&flags.noTUI, "no-tui", false, "log progress instead of drawing it")
	out.register(cmd)
	return cmd
}

func (c *CLI) runExtract(cmd *cobra.Command, input string, flags extractFlags, out outputFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if flags.service == "" {
		flags.service = cfg.Extraction.Service
	}
	if flags.strategy == "" {
		flags.strategy = cfg.Extraction.Strategy
	}
	if flags.service == "" {
		return fmt.Errorf("--service is required (pathlinker or anat)")
	}
	strategy, err := extract.ParseStrategy(flags.strategy)
	if err != nil {
		return err
	}
	columns, err := parseQueryColumns(flags.queryColumns)
	if err != nil {
		return err
	}

	col, err := c.loadCollection(ctx, input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	opts := pipeline.Options{
		Collection:   col,
		Service:      flags.service,
		Strategy:     strategy.String(),
		Layers:       flags.layers,
		QueryColumns: columns,
		SkipChecks:   flags.skipChecks || cfg.Extraction.SkipChecks,
		Refresh:      flags.refresh,
		Logger:       logger,
	}
	layers := opts.SelectedLayers(col)
	logger.Debug("extracting", "service", opts.Service, "strategy", opts.Strategy, "layers", layers)

	prog := newProgress(logger)
	var res *pipeline.Result
	if useTUI(flags.noTUI) {
		// Pipeline logs would tear the progress view; warnings are
		// reported once it is closed.
		quiet := logger.With()
		quiet.SetLevel(log.ErrorLevel)
		runner.Logger, opts.Logger = quiet, quiet
		res, err = executeWithTUI(ctx, runner, opts, len(strategy.Plan(layers)))
		if err == nil {
			logWarnings(logger, res.Extraction.Warnings)
		}
	} else {
		res, err = runner.Execute(ctx, opts)
	}
	if err != nil {
		return err
	}
	defer res.Output.Unregister(runner.Store)
	prog.done(fmt.Sprintf("%s extraction with %s", strategy.Title(), opts.Service))

	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, false)
	return c.save(ctx, res.Output, out)
}
