package tabular

import (
	"fmt"
	"slices"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/format"
)

// Options tune a conversion.
type Options struct {
	// Layers is the number of layers N of the model.
	Layers int

	// Weights given to rows whose weight is null or whose sheet has no
	// weight column.
	DefaultNodeWeight  float64
	DefaultIntraWeight float64
	DefaultInterWeight float64

	// Directions given to edges whose direction is null or whose sheet has
	// no direction column.
	IntraDirected bool
	InterDirected bool

	// AllNodesAreQueries adds a boolean "Query_k" column set to true to
	// every node layer k.
	AllNodesAreQueries bool

	// AutoCoupling generates the inter-layer edges instead of reading them:
	// each node present in layers k and k+1 is coupled with its counterpart.
	AutoCoupling bool
}

// DefaultOptions returns options for n layers with unit weights and
// undirected edges.
func DefaultOptions(n int) Options {
	return Options{
		Layers:             n,
		DefaultNodeWeight:  1,
		DefaultIntraWeight: 1,
		DefaultInterWeight: 1,
	}
}

// Input holds the sheets of each table kind. A kind is described either by
// one sheet shared by all its layers or by one sheet per layer, in layer
// order. Inter is ignored when Options.AutoCoupling is set.
type Input struct {
	Nodes []Sheet
	Intra []Sheet
	Inter []Sheet
}

// Convert builds a multilayer model from raw sheets. Every failure is a
// CONVERTER error.
func Convert(in Input, opts Options) (*mln.Model, error) {
	m, err := mln.NewModel(opts.Layers)
	if err != nil {
		return nil, wrapBuilder(err)
	}
	n := opts.Layers

	c := converter{model: m, opts: opts}
	if err := c.convert(mln.NodeTable, in.Nodes, n); err != nil {
		return nil, err
	}
	if opts.AllNodesAreQueries {
		if err := c.setAllQueries(); err != nil {
			return nil, err
		}
	}
	if err := c.convert(mln.IntraEdgeTable, in.Intra, n); err != nil {
		return nil, err
	}
	if n > 1 {
		if opts.AutoCoupling {
			err = c.couple()
		} else {
			err = c.convert(mln.InterEdgeTable, in.Inter, n-1)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := checkConsistency(m); err != nil {
		return nil, err
	}
	if err := format.ValidateModel(m); err != nil {
		return nil, wrapBuilder(err)
	}
	return m, nil
}

// wrapBuilder turns a model error into a CONVERTER error that keeps the
// original title.
func wrapBuilder(err error) error {
	return errors.Wrap(errors.ErrCodeConverter, err, errors.TitleOf(err),
		"%s\n\n%s", errors.TitleOf(err), errors.UserMessage(err))
}

type converter struct {
	model *mln.Model
	opts  Options
}

func (c *converter) defaults(kind mln.TableKind) (float64, bool) {
	switch kind {
	case mln.NodeTable:
		return c.opts.DefaultNodeWeight, false
	case mln.IntraEdgeTable:
		return c.opts.DefaultIntraWeight, c.opts.IntraDirected
	}
	return c.opts.DefaultInterWeight, c.opts.InterDirected
}

// convert reads the sheets of one kind covering count layers.
func (c *converter) convert(kind mln.TableKind, sheets []Sheet, count int) error {
	switch len(sheets) {
	case 0:
		return converterError(titleTables, "No table was given for \"%s\".", kindLabel(kind))
	case 1, count:
	default:
		return converterError(titleTables, "%d tables were given for \"%s\", while 1 or %d are expected.",
			len(sheets), kindLabel(kind), count)
	}
	shared := len(sheets) == 1
	for i := range sheets {
		s, tab := &sheets[i], i+1
		if err := checkRoles(s, kind, tab, count, shared); err != nil {
			return err
		}
		layers := []int{tab}
		if shared {
			layers = make([]int, count)
			for j := range layers {
				layers[j] = j + 1
			}
		}
		for _, k := range layers {
			if err := c.addLayer(kind, s, tab, k); err != nil {
				return err
			}
		}
	}
	return nil
}

// addLayer copies the columns of s that apply to layer k. Rows whose node
// name, or one of whose endpoints, is null are left out of the layer.
func (c *converter) addLayer(kind mln.TableKind, s *Sheet, tab, k int) error {
	var roles []Assignment
	for _, a := range s.Roles {
		if a.Role != Ignore && (a.Layer == 0 || a.Layer == k) {
			roles = append(roles, a)
		}
	}

	var sources, targets []string
	for _, a := range roles {
		cells, _ := s.Column(a.Column)
		switch a.Role {
		case Node, Source:
			sources = cells
		case Target:
			targets = cells
		case Interaction:
			sources, targets = make([]string, len(cells)), make([]string, len(cells))
			for i, v := range cells {
				if v == "" {
					continue
				}
				src, tgt, err := mln.ParseInteraction(v)
				if err != nil {
					return interactParseError(tab, kind, a.Column)
				}
				sources[i], targets[i] = src, tgt
			}
		}
	}
	var rows []int
	for i := range s.Len() {
		if sources[i] == "" || (kind != mln.NodeTable && targets[i] == "") {
			continue
		}
		rows = append(rows, i)
	}

	m := c.model
	add := []error{}
	if kind == mln.NodeTable {
		add = append(add, m.AddNodeColumn(kind, k, pick(sources, rows)))
	} else {
		add = append(add, m.AddSourceColumn(kind, k, pick(sources, rows)),
			m.AddTargetColumn(kind, k, pick(targets, rows)))
	}
	defWeight, defDirected := c.defaults(kind)
	var weighted, directed bool
	for _, a := range roles {
		cells, _ := s.Column(a.Column)
		cells = pick(cells, rows)
		switch a.Role {
		case NodeWeight, EdgeWeight:
			w, ok := parseFloats(cells, defWeight)
			if !ok {
				return valueTypeError(tab, kind, a.Column)
			}
			weighted = true
			add = append(add, m.AddWeight(kind, k, w))
		case EdgeDirection:
			d, ok := parseBools(cells, defDirected)
			if !ok {
				return valueTypeError(tab, kind, a.Column)
			}
			directed = true
			add = append(add, m.AddDirection(kind, k, d))
		case Shared, Other:
			add = append(add, m.AddOtherColumn(kind, k, inferColumn(a.Column, cells)))
		}
	}
	if !weighted {
		add = append(add, m.AddWeight(kind, k, repeat(defWeight, len(rows))))
	}
	if !directed && kind != mln.NodeTable {
		add = append(add, m.AddDirection(kind, k, repeat(defDirected, len(rows))))
	}
	for _, err := range add {
		if err != nil {
			return wrapBuilder(err)
		}
	}
	return nil
}

func repeat[E any](v E, n int) []E {
	out := make([]E, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// QueryColumn returns the name of the query column generated for layer k
// by Options.AllNodesAreQueries.
func QueryColumn(k int) string { return fmt.Sprintf("Query_%d", k) }

func (c *converter) setAllQueries() error {
	for k := 1; k <= c.model.LayerCount(); k++ {
		col := mln.NewColumn(QueryColumn(k), repeat(true, len(c.model.NodeNames(k))))
		if err := c.model.AddOtherColumn(mln.NodeTable, k, col); err != nil {
			return wrapBuilder(err)
		}
	}
	return nil
}

// couple generates diagonal inter-layer edges between the nodes shared by
// consecutive layers, in the node order of the lower layer.
func (c *converter) couple() error {
	m := c.model
	for k := 1; k < m.LayerCount(); k++ {
		next := m.NodeNames(k + 1)
		var shared []string
		for _, name := range m.NodeNames(k) {
			if slices.Contains(next, name) {
				shared = append(shared, name)
			}
		}
		for _, err := range []error{
			m.AddSourceColumn(mln.InterEdgeTable, k, shared),
			m.AddTargetColumn(mln.InterEdgeTable, k, shared),
			m.AddDirection(mln.InterEdgeTable, k, repeat(c.opts.InterDirected, len(shared))),
			m.AddWeight(mln.InterEdgeTable, k, repeat(c.opts.DefaultInterWeight, len(shared))),
		} {
			if err != nil {
				return wrapBuilder(err)
			}
		}
	}
	return nil
}

// checkConsistency verifies that every edge endpoint is a node of the
// layer it belongs to.
func checkConsistency(m *mln.Model) error {
	for k := 1; k <= m.LayerCount(); k++ {
		nodes := m.NodeNames(k)
		ends := slices.Concat(m.IntraSources(k), m.IntraTargets(k))
		if !subset(ends, nodes) {
			return converterError(titleInconsistent,
				"Some nodes from intra-layer edges are not within the node table for the layer %d.", k)
		}
	}
	for k := 1; k < m.LayerCount(); k++ {
		if !subset(m.InterSources(k), m.NodeNames(k)) {
			return converterError(titleInconsistent,
				"Some sources from %d->%d inter-layer edges are not within the node table of the layer %d.", k, k+1, k)
		}
		if !subset(m.InterTargets(k), m.NodeNames(k+1)) {
			return converterError(titleInconsistent,
				"Some targets from %d->%d inter-layer edges are not within the node table of the layer %d.", k, k+1, k+1)
		}
	}
	return nil
}

func subset(names, of []string) bool {
	set := make(map[string]bool, len(of))
	for _, n := range of {
		set[n] = true
	}
	for _, n := range names {
		if !set[n] {
			return false
		}
	}
	return true
}
