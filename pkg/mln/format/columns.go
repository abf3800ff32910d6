package format

import (
	"fmt"
	"strings"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

// problems collects missing and mistyped columns so that every issue of a
// table set is reported in one error.
type problems struct {
	missing []string
	invalid []string
}

func (p *problems) empty() bool { return len(p.missing) == 0 && len(p.invalid) == 0 }

func (p *problems) merge(o problems) {
	p.missing = append(p.missing, o.missing...)
	p.invalid = append(p.invalid, o.invalid...)
}

// require records col as missing from t, or as invalid when its type is
// not typ. where names the table in messages, e.g. "node table".
func (p *problems) require(t *graph.Table, col string, typ graph.ColumnType, where string) {
	c, ok := t.Column(col)
	switch {
	case !ok:
		p.missing = append(p.missing, fmt.Sprintf("'%s' in %s", col, where))
	case c.Type != typ:
		p.invalid = append(p.invalid, fmt.Sprintf("'%s' in %s is not of type '%s'", col, where, typ.Elem))
	}
}

// err turns the collected problems into a FormatError. Missing columns
// are reported before mistyped ones.
func (p *problems) err(title, scope string) error {
	if len(p.missing) > 0 {
		return errors.New(errors.ErrCodeFormat, title,
			"The following columns were not found %s:\n\n%s", scope, bracketed(p.missing))
	}
	if len(p.invalid) > 0 {
		return errors.New(errors.ErrCodeFormat, title,
			"The following columns do not have a valid type %s:\n\n%s", scope, bracketed(p.invalid))
	}
	return nil
}

func bracketed(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

// mainColumns checks the columns every layer, flattened and aggregated
// graph must carry.
func mainColumns(g *graph.Graph) problems {
	var p problems
	nodes, edges := g.NodeTable(), g.EdgeTable()
	p.require(nodes, mln.ColName, graph.StringType, "node table")
	p.require(nodes, mln.ColWeight, graph.DoubleType, "node table")
	p.require(edges, mln.ColName, graph.StringType, "(intra-layer) edge table")
	p.require(edges, mln.ColWeight, graph.DoubleType, "(intra-layer) edge table")
	p.require(edges, mln.ColDirection, graph.BoolType, "(intra-layer) edge table")
	return p
}

func interColumns(t *graph.Table) problems {
	var p problems
	p.require(t, mln.ColName, graph.StringType, "inter-layer edge table")
	p.require(t, mln.ColWeight, graph.DoubleType, "inter-layer edge table")
	p.require(t, mln.ColDirection, graph.BoolType, "inter-layer edge table")
	return p
}

// hasFlags reports whether g is flagged as a multilayer image of the given kind.
func hasFlags(g *graph.Graph, kind string) bool {
	return g.Flag(mln.FlagMultilayer) && g.Flag(kind)
}
