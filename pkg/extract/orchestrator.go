package extract

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/transform"
	"github.com/timenexus/timenexus/pkg/observability"
)

// State is a step of an extraction run.
type State int

const (
	Idle State = iota
	Checking
	Preparing
	Calling
	Merging
	Done
	Cancelled
	Failed
)

var stateNames = [...]string{"idle", "checking", "preparing", "calling", "merging", "done", "cancelled", "failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

const (
	// TemporaryName names the slice graphs handed to the service.
	TemporaryName = "temporary_network"

	// ExtractedName names the flattened graph of an extraction result.
	ExtractedName = "Extracted network"
)

// Result is a successful extraction.
type Result struct {
	// Collection is the extracted multilayer network, registered in the
	// orchestrator's store.
	Collection *mln.Collection
	// Warnings are the non-fatal problems met during the run.
	Warnings []*errors.Error
	// Networks are the raw service answers, one per slice.
	Networks []*Network
}

// Orchestrator runs extraction strategies against a Service.
//
// One orchestrator handles one run at a time. Slices are processed in
// sequence and each temporary slice graph is removed from the Store before
// the next one is built.
type Orchestrator struct {
	Store   graph.Store
	Service Service

	// Logger defaults to log.Default().
	Logger *log.Logger

	// Hooks defaults to the globally registered extraction hooks.
	Hooks observability.ExtractionHooks

	// CheckEnabled runs the layer contiguity check and the service
	// preconditions before any call.
	CheckEnabled bool
}

// NewOrchestrator returns an orchestrator with checks enabled.
func NewOrchestrator(store graph.Store, svc Service) *Orchestrator {
	return &Orchestrator{Store: store, Service: svc, CheckEnabled: true}
}

func (o *Orchestrator) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (o *Orchestrator) hooks() observability.ExtractionHooks {
	if o.Hooks != nil {
		return o.Hooks
	}
	return observability.Extraction()
}

// run holds the state of one Run call.
type run struct {
	*Orchestrator
	ctx      context.Context
	strategy Strategy
	state    State
	temps    []string

	// normalize reruns the service preconditions on every slice.
	normalize bool
}

func (r *run) enter(s State) {
	r.hooks().OnStateChange(r.ctx, r.strategy.String(), r.state.String(), s.String())
	r.state = s
}

// cleanup removes the slice graphs still registered.
func (r *run) cleanup() {
	for _, id := range r.temps {
		_ = r.Store.Delete(id)
	}
	r.temps = nil
}

// Run extracts a subnetwork of flat, restricted to layers, with strategy.
// columns names the query column of each layer.
//
// flat is never modified: the service preconditions are checked on a copy
// and applied to each slice handed to the service. On failure nothing
// is registered in the Store and no collection is returned; cancellation
// of ctx surfaces as errors.ErrCancelled.
func (o *Orchestrator) Run(ctx context.Context, flat *graph.Graph, strategy Strategy, layers []int, columns QueryColumns) (res *Result, err error) {
	r := &run{Orchestrator: o, ctx: ctx, strategy: strategy}
	defer r.cleanup()
	defer func() {
		switch {
		case err == nil:
			r.enter(Done)
		case errors.IsCancelled(err):
			err = errors.ErrCancelled
			r.enter(Cancelled)
		default:
			r.enter(Failed)
		}
	}()
	o.logger().Infof("%s with %s", strategy.Title(), o.Service.Name())

	res = &Result{}
	r.enter(Checking)
	if o.CheckEnabled {
		w, err := r.check(flat, layers)
		if err != nil {
			return nil, err
		}
		if w != nil {
			res.Warnings = append(res.Warnings, w)
		}
	}

	r.enter(Preparing)
	plan := strategy.Plan(layers)
	if len(plan) == 0 {
		msg := "No layer was selected for the extraction."
		if strategy == Pairwise && len(layers) == 1 {
			msg = "The pairwise extraction needs at least two layers."
		}
		return nil, errors.New(errors.ErrCodeExtraction, "Extraction failure", "%s", msg)
	}

	r.enter(Calling)
	queried := make(map[string]bool)
	for _, s := range plan {
		net, err := r.call(flat, s, columns, queried)
		if err != nil {
			return nil, err
		}
		res.Networks = append(res.Networks, net)
	}

	r.enter(Merging)
	c, warn, err := r.merge(flat, layers, res.Networks, queried)
	if err != nil {
		return nil, err
	}
	if warn != nil {
		res.Warnings = append(res.Warnings, warn)
	}
	c.Register(o.Store)
	res.Collection = c
	return res, nil
}

// check runs the pre-flight checks. A precondition the graph did not meet
// is returned as a warning, and the slices are normalized later on.
func (r *run) check(flat *graph.Graph, layers []int) (*errors.Error, error) {
	r.logger().Info("Checking the input data...")
	if !Contiguous(layers) {
		return nil, errors.New(errors.ErrCodeExtraction, "Extraction failure",
			"Pairwise extraction cannot work if the list of layers is not continuous")
	}
	selected, err := transform.SelectLayers(flat, layers, nil, TemporaryName)
	if err != nil {
		return nil, err
	}
	msg, err := r.Service.CheckPreconditions(r.ctx, selected)
	if err != nil {
		return nil, serviceError(err)
	}
	if msg == "" {
		return nil, nil
	}
	r.normalize = true
	w := errors.New(errors.ErrCodeExtraction, "TimeNexus extraction",
		"The multi-layer network does not meet the following criteria of the extracting app.\n"+
			"It will be updated according to these criteria.\n\n%s", msg).WithSeverity(errors.SeverityWarning)
	r.logger().Warn(w.Message)
	return w, nil
}

// call extracts one slice.
func (r *run) call(flat *graph.Graph, s Slice, columns QueryColumns, queried map[string]bool) (*Network, error) {
	if err := errors.CheckContext(r.ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	r.logger().Infof("Building a network with the layers %v...", s.Layers)
	g, err := transform.SelectLayers(flat, s.Layers, nil, TemporaryName)
	if err != nil {
		return nil, err
	}
	if r.normalize {
		if _, err := r.Service.CheckPreconditions(r.ctx, g); err != nil {
			return nil, serviceError(err)
		}
	}
	id := r.Store.Put(g)
	r.temps = append(r.temps, id)

	sources := QueriesFromLayer(g, s.SourceLayer, columns[s.SourceLayer])
	targets := sources
	if s.TargetLayer != s.SourceLayer {
		targets = QueriesFromLayer(g, s.TargetLayer, columns[s.TargetLayer])
	}
	for name := range sources {
		queried[name] = true
	}
	for name := range targets {
		queried[name] = true
	}

	net, err := r.Service.Extract(r.ctx, g, sources, targets)
	switch {
	case err != nil:
	case net == nil:
		err = errors.New(errors.ErrCodeAppCall, "Invalid extracted network",
			"The extracting app returned no network for the layers %v.", s.Layers)
	default:
		err = net.Validate()
	}
	r.hooks().OnSliceComplete(r.ctx, r.strategy.String(), s.Layers, time.Since(start), err)
	if err != nil {
		return nil, serviceError(err)
	}

	_ = r.Store.Delete(id)
	r.temps = r.temps[:len(r.temps)-1]
	if err := errors.CheckContext(r.ctx); err != nil {
		return nil, err
	}
	r.logger().Infof("Layers %v extracted: %d nodes, %d edges (%s)",
		s.Layers, len(net.Nodes), len(net.Edges), time.Since(start).Round(time.Millisecond))
	return net, nil
}

// serviceError keeps structured and cancellation errors and turns anything
// else into an APP_CALL error.
func serviceError(err error) error {
	var e *errors.Error
	if errors.IsCancelled(err) || stderrors.As(err, &e) {
		return err
	}
	return errors.Wrap(errors.ErrCodeAppCall, err, "Extraction service failure", "%v", err)
}

// merge builds the extracted collection from the union of the returned
// nodes.
func (r *run) merge(flat *graph.Graph, layers []int, nets []*Network, queried map[string]bool) (*mln.Collection, *errors.Error, error) {
	r.logger().Info("Generating sub-multi-layer network...")
	union := []string{}
	seen := make(map[string]bool)
	for _, net := range nets {
		for _, name := range net.Nodes {
			if !seen[name] {
				seen[name] = true
				union = append(union, name)
			}
		}
	}
	g, err := transform.SelectLayers(flat, layers, union, ExtractedName)
	if err != nil {
		return nil, nil, err
	}
	for _, net := range nets {
		if err := errors.CheckContext(r.ctx); err != nil {
			return nil, nil, err
		}
		if err := writeAttributes(g, net); err != nil {
			return nil, nil, err
		}
	}
	warn := addIsQuery(g, queried)
	if warn != nil {
		r.logger().Warn(warn.Message)
	}
	c, err := transform.Derive(g, layers)
	if err != nil {
		return nil, nil, err
	}
	return c, warn, nil
}

// writeAttributes copies the attributes of net onto g. Nodes of net
// missing from g are skipped. Edge values go to the edges of g leaving the
// first node of the pair for the second one.
func writeAttributes(g *graph.Graph, net *Network) error {
	nodes := make(map[string]int64, g.NodeCount())
	for _, n := range g.Nodes() {
		nodes[g.NodeName(n)] = n
	}

	nt := g.NodeTable()
	for _, col := range net.NodeAttributes() {
		if err := nt.EnsureColumn(col.ColumnName(), col.ColumnType()); err != nil {
			return extractedTypeError(col, err)
		}
		for i, name := range net.Nodes {
			if n, ok := nodes[name]; ok {
				_ = nt.Set(n, col.ColumnName(), col.At(i))
			}
		}
	}

	et := g.EdgeTable()
	for _, col := range net.EdgeAttributes() {
		if err := et.EnsureColumn(col.ColumnName(), col.ColumnType()); err != nil {
			return extractedTypeError(col, err)
		}
		for i, e := range net.Edges {
			src, ok1 := nodes[e[0]]
			tgt, ok2 := nodes[e[1]]
			if !ok1 || !ok2 {
				continue
			}
			for _, edge := range g.ConnectingEdges(src, tgt) {
				if edge.Source == src {
					_ = et.Set(edge.ID, col.ColumnName(), col.At(i))
				}
			}
		}
	}
	return nil
}

func extractedTypeError(col mln.AnyColumn, err error) error {
	return errors.Wrap(errors.ErrCodeExtraction, err, "Extraction failure",
		"The attribute '%s' returned by the extracting app does not match the type of the existing column.", col.ColumnName())
}

// addIsQuery marks the query nodes of g. An existing column is left as it
// is and reported as a warning.
func addIsQuery(g *graph.Graph, queried map[string]bool) *errors.Error {
	t := g.NodeTable()
	if t.HasColumn(mln.ColIsQuery) {
		return errors.New(errors.ErrCodeExtraction, "Warning from subnetwork building",
			"A column named 'isQuery' already exists in the multilayer network.\n"+
				"It was not added to the subnetwork.").WithSeverity(errors.SeverityWarning)
	}
	_ = t.CreateColumn(mln.ColIsQuery, graph.BoolType)
	for _, n := range g.Nodes() {
		_ = t.Set(n, mln.ColIsQuery, queried[g.NodeName(n)])
	}
	return nil
}
