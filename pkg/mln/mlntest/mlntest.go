// Package mlntest builds small multilayer models for tests.
package mlntest

import (
	"testing"

	"github.com/timenexus/timenexus/pkg/mln"
)

// Edge is one intra- or inter-layer edge of a test model.
type Edge struct {
	Source, Target string
	Weight         float64
	Directed       bool
}

// Spec describes a model layer by layer. Intra and Inter may be shorter
// than required; missing layers have no edges.
type Spec struct {
	Nodes [][]string
	Intra [][]Edge
	Inter [][]Edge
}

// Model builds the model described by s. Every node gets weight 1.
func Model(tb testing.TB, s Spec) *mln.Model {
	tb.Helper()
	m, err := mln.NewModel(len(s.Nodes))
	if err != nil {
		tb.Fatalf("NewModel: %v", err)
	}
	must := func(err error) {
		tb.Helper()
		if err != nil {
			tb.Fatal(err)
		}
	}
	for i, names := range s.Nodes {
		k := i + 1
		weights := make([]float64, len(names))
		for j := range weights {
			weights[j] = 1
		}
		must(m.AddNodeColumn(mln.NodeTable, k, names))
		must(m.AddWeight(mln.NodeTable, k, weights))

		var intra []Edge
		if i < len(s.Intra) {
			intra = s.Intra[i]
		}
		must(addEdges(m, mln.IntraEdgeTable, k, intra))
		if k < len(s.Nodes) {
			var inter []Edge
			if i < len(s.Inter) {
				inter = s.Inter[i]
			}
			must(addEdges(m, mln.InterEdgeTable, k, inter))
		}
	}
	return m
}

func addEdges(m *mln.Model, kind mln.TableKind, k int, edges []Edge) error {
	n := len(edges)
	sources, targets := make([]string, n), make([]string, n)
	weights, directed := make([]float64, n), make([]bool, n)
	for i, e := range edges {
		sources[i], targets[i] = e.Source, e.Target
		weights[i], directed[i] = e.Weight, e.Directed
	}
	for _, err := range []error{
		m.AddSourceColumn(kind, k, sources),
		m.AddTargetColumn(kind, k, targets),
		m.AddWeight(kind, k, weights),
		m.AddDirection(kind, k, directed),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Chain returns a spec of n layers sharing the nodes a, b and c, with
// undirected a-b and b-c edges in every layer and directed a-a coupling
// between consecutive layers.
func Chain(n int) Spec {
	var s Spec
	for k := 1; k <= n; k++ {
		s.Nodes = append(s.Nodes, []string{"a", "b", "c"})
		s.Intra = append(s.Intra, []Edge{{Source: "a", Target: "b", Weight: 1}, {Source: "b", Target: "c", Weight: 2}})
		if k < n {
			s.Inter = append(s.Inter, []Edge{{Source: "a", Target: "a", Weight: 1, Directed: true}})
		}
	}
	return s
}
