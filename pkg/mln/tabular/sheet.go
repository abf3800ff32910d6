package tabular

import (
	"slices"
	"strconv"
	"strings"

	"github.com/timenexus/timenexus/pkg/mln"
)

// Sheet is one raw input table: a header, string cells and the role of
// each column. Empty cells are nulls.
type Sheet struct {
	Header []string
	Rows   [][]string
	Roles  []Assignment
}

// Len returns the number of rows.
func (s *Sheet) Len() int { return len(s.Rows) }

// Column returns the cells of the named column. Short rows read as nulls.
func (s *Sheet) Column(name string) ([]string, bool) {
	j := slices.Index(s.Header, name)
	if j < 0 {
		return nil, false
	}
	out := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		if j < len(row) {
			out[i] = strings.TrimSpace(row[j])
		}
	}
	return out, true
}

func pick[E any](values []E, rows []int) []E {
	out := make([]E, len(rows))
	for i, r := range rows {
		out[i] = values[r]
	}
	return out
}

func parseFloats(cells []string, def float64) ([]float64, bool) {
	out := make([]float64, len(cells))
	for i, c := range cells {
		if c == "" {
			out[i] = def
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func parseBools(cells []string, def bool) ([]bool, bool) {
	out := make([]bool, len(cells))
	for i, c := range cells {
		if c == "" {
			out[i] = def
			continue
		}
		v, err := strconv.ParseBool(c)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// inferColumn types an uninterpreted column after its non-null cells:
// Int, then Double, then Boolean, falling back to String. Null cells hold
// the zero value.
func inferColumn(name string, cells []string) mln.AnyColumn {
	var filled int
	ints, floats, bools := true, true, true
	for _, c := range cells {
		if c == "" {
			continue
		}
		filled++
		if _, err := strconv.Atoi(c); err != nil {
			ints = false
		}
		if _, err := strconv.ParseFloat(c, 64); err != nil {
			floats = false
		}
		if _, err := strconv.ParseBool(c); err != nil {
			bools = false
		}
	}
	switch {
	case filled == 0:
		return mln.NewColumn(name, cells)
	case ints:
		out := make([]int, len(cells))
		for i, c := range cells {
			out[i], _ = strconv.Atoi(c)
		}
		return mln.NewColumn(name, out)
	case floats:
		out, _ := parseFloats(cells, 0)
		return mln.NewColumn(name, out)
	case bools:
		out, _ := parseBools(cells, false)
		return mln.NewColumn(name, out)
	}
	return mln.NewColumn(name, cells)
}
