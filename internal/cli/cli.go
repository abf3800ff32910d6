package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/timenexus/timenexus/internal/config"
	"github.com/timenexus/timenexus/pkg/buildinfo"
	"github.com/timenexus/timenexus/pkg/pipeline"
	"github.com/timenexus/timenexus/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "timenexus"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is the --config flag. Empty uses config.Load's lookup.
	ConfigPath string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "TimeNexus extracts active subnetworks from multilayer networks",
		Long: `TimeNexus builds multilayer networks from node and edge tables, flattens them
into a single graph, and extracts the subnetwork connecting query nodes across
layers with PathLinker or ANAT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", "", "config file (default $TIMENEXUS_CONFIG or ~/.config/timenexus/config.toml)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.copyCommand())
	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.sessionsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig loads the configuration on first use.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner with the configured cache and
// services. noCache disables the cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	cacheCfg := cfg.Cache
	if noCache {
		cacheCfg.Backend = config.CacheNone
	}
	backend, err := cacheCfg.Open(ctx)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(backend, cacheCfg.Keyer(), loggerFromContext(ctx))
	r.CacheTTL = cacheCfg.TTL
	r.Services = cfg.Services()
	return r, nil
}

// openSessions opens the configured session store.
func (c *CLI) openSessions(ctx context.Context) (session.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Session.Open(ctx)
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// parseQueryColumns reads --query-column values written as "k=column".
func parseQueryColumns(values []string) (map[int]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make(map[int]string, len(values))
	for _, v := range values {
		k, col, ok := strings.Cut(v, "=")
		layer, err := strconv.Atoi(strings.TrimSpace(k))
		if !ok || err != nil || layer < 1 || col == "" {
			return nil, fmt.Errorf("invalid query column %q (expected layer=column, e.g. 1=Query_1)", v)
		}
		out[layer] = col
	}
	return out, nil
}

// nopCloser wraps an io.Writer to provide a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a writer for path, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
