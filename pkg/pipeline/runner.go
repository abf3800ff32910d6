package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/timenexus/timenexus/pkg/cache"
	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/graph"
	tnio "github.com/timenexus/timenexus/pkg/io"
	"github.com/timenexus/timenexus/pkg/mln"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so extraction results are cached the same way.
//
// The Runner doesn't store pipeline results. Graphs built while running
// are registered in Store; the slices of an extraction are removed when
// it ends.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration
	Store    graph.Store
	Services Services
	Logger   *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		CacheTTL: DefaultCacheTTL,
		Store:    graph.NewMemoryStore(),
		Services: DefaultServices(),
		Logger:   logger,
	}
}

// Execute runs the complete load → extract → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	// Stage 1: Load
	start := time.Now()
	c, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Input, result.Output = c, c
	result.Stats.LoadTime = time.Since(start)
	r.Logger.Info("loaded network",
		"name", c.Name,
		"layers", len(c.Layers),
		"duration", result.Stats.LoadTime)

	// Stage 2: Extract
	if opts.Service != "" {
		start = time.Now()
		res, err := r.Extract(ctx, c, opts)
		if err != nil {
			return nil, err
		}
		result.Extraction, result.Output = res, res.Collection
		result.Stats.ExtractTime = time.Since(start)
		r.Logger.Info("extracted subnetwork",
			"nodes", res.Collection.Flattened.NodeCount(),
			"edges", res.Collection.Flattened.EdgeCount(),
			"warnings", len(res.Warnings),
			"duration", result.Stats.ExtractTime)
	}
	result.Stats.NodeCount = result.Output.Flattened.NodeCount()
	result.Stats.EdgeCount = result.Output.Flattened.EdgeCount()

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		start = time.Now()
		artifacts, err := Render(ctx, result.Output, opts)
		if err != nil {
			return nil, err
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(start)
		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}
	return result, nil
}

// Load builds or imports the collection named by opts and registers its
// graphs in the Store.
func (r *Runner) Load(ctx context.Context, opts Options) (*mln.Collection, error) {
	if err := errors.CheckContext(ctx); err != nil {
		return nil, err
	}
	var c *mln.Collection
	var err error
	switch {
	case opts.Collection != nil:
		return opts.Collection, nil
	case opts.Definition != nil:
		c, err = tnio.Build(opts.Definition, "")
	case opts.DefinitionPath != "":
		c, err = tnio.BuildFile(opts.DefinitionPath)
	case opts.GraphPath != "":
		c, err = tnio.ImportGraphFile(opts.GraphPath)
		if err == nil && c.Name == "" {
			c.Name = filepath.Base(opts.GraphPath)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid options", "A definition or a graph is required.")
	}
	if err != nil {
		return nil, err
	}
	c.Register(r.Store)
	return c, nil
}

// Extract runs the extraction requested by opts on the flattened graph of
// c. The service is wrapped by an [extract.Cached] unless opts.Refresh is
// set.
func (r *Runner) Extract(ctx context.Context, c *mln.Collection, opts Options) (*extract.Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	svc, err := r.Services.New(opts.Service, opts.Logger)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid options", "%v", err)
	}
	if !opts.Refresh {
		cached := extract.NewCached(svc, r.Cache, r.CacheTTL)
		cached.Keyer = r.Keyer
		cached.Logger = opts.Logger
		svc = cached
	}

	o := extract.NewOrchestrator(r.Store, svc)
	o.Logger = opts.Logger
	o.Hooks = opts.Hooks
	o.CheckEnabled = !opts.SkipChecks

	layers := opts.SelectedLayers(c)
	res, err := o.Run(ctx, c.Flattened, opts.ExtractionStrategy(), layers, opts.Queries(layers))
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		opts.Logger.Warn(w.Title, "message", w.Message)
	}
	return res, nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
