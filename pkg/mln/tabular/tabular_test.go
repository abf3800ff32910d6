package tabular

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

func sheet(header []string, roles []Assignment, rows ...[]string) Sheet {
	return Sheet{Header: header, Rows: rows, Roles: roles}
}

func nodesSheet(rows ...[]string) Sheet {
	return sheet([]string{"id", "w"},
		[]Assignment{{Column: "id", Role: Node}, {Column: "w", Role: NodeWeight}}, rows...)
}

func edgesSheet(rows ...[]string) Sheet {
	return sheet([]string{"from", "to"},
		[]Assignment{{Column: "from", Role: Source}, {Column: "to", Role: Target}}, rows...)
}

func twoLayers() Input {
	return Input{
		Nodes: []Sheet{
			nodesSheet([]string{"a", "2"}, []string{"b", ""}),
			nodesSheet([]string{"a", "1"}, []string{"c", "3"}),
		},
		Intra: []Sheet{edgesSheet([]string{"a", "b"}), edgesSheet([]string{"a", "c"})},
		Inter: []Sheet{edgesSheet([]string{"a", "a"})},
	}
}

func TestConvertPerLayerSheets(t *testing.T) {
	opts := DefaultOptions(2)
	opts.DefaultNodeWeight = 0.5
	opts.InterDirected = true
	m, err := Convert(twoLayers(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, m.NodeNames(1))
	assert.Equal(t, []string{"a", "c"}, m.NodeNames(2))
	l1, _ := m.NodeLayer(1)
	assert.Equal(t, []float64{2, 0.5}, l1.Weights.Values, "null weight takes the default")

	intra, _ := m.IntraLayer(2)
	assert.Equal(t, []string{"a"}, intra.SourceNames())
	assert.Equal(t, []string{"c"}, intra.TargetNames())
	assert.Equal(t, []float64{1}, intra.Weights.Values)
	assert.Equal(t, []bool{false}, intra.Directions.Values)

	inter, _ := m.InterLayer(1)
	assert.Equal(t, []bool{true}, inter.Directions.Values)
}

func TestConvertSharedSheet(t *testing.T) {
	nodes := sheet([]string{"n1", "n2", "group"},
		[]Assignment{
			{Column: "n1", Role: Node, Layer: 1},
			{Column: "n2", Role: Node, Layer: 2},
			{Column: "group", Role: Other},
		},
		[]string{"a", "a", "7"},
		[]string{"b", "", "8"},
		[]string{"c", "c", ""},
	)
	intra := sheet([]string{"edge", "score", "dir"},
		[]Assignment{
			{Column: "edge", Role: Interaction},
			{Column: "score", Role: EdgeWeight},
			{Column: "dir", Role: EdgeDirection},
		},
		[]string{"a (interacts with) c", "0.25", "true"},
	)
	in := Input{Nodes: []Sheet{nodes}, Intra: []Sheet{intra}}
	opts := DefaultOptions(2)
	opts.AutoCoupling = true
	m, err := Convert(in, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, m.NodeNames(1))
	assert.Equal(t, []string{"a", "c"}, m.NodeNames(2), "rows with a null name are left out")

	l2, _ := m.NodeLayer(2)
	require.Len(t, l2.Others, 1)
	group, ok := mln.Values[int](l2.Others[0])
	require.True(t, ok, "group column is typed as Int")
	assert.Equal(t, []int{7, 0}, group)

	for k := 1; k <= 2; k++ {
		e, _ := m.IntraLayer(k)
		assert.Equal(t, []string{"a"}, e.SourceNames())
		assert.Equal(t, []string{"c"}, e.TargetNames())
		assert.Equal(t, []float64{0.25}, e.Weights.Values)
		assert.Equal(t, []bool{true}, e.Directions.Values)
	}

	inter, _ := m.InterLayer(1)
	assert.Equal(t, []string{"a", "c"}, inter.SourceNames())
	assert.Equal(t, []string{"a", "c"}, inter.TargetNames())
	assert.Equal(t, []bool{false, false}, inter.Directions.Values)
}

func TestConvertAllNodesAreQueries(t *testing.T) {
	opts := DefaultOptions(2)
	opts.AllNodesAreQueries = true
	m, err := Convert(twoLayers(), opts)
	require.NoError(t, err)

	for k := 1; k <= 2; k++ {
		l, _ := m.NodeLayer(k)
		require.Len(t, l.Others, 1)
		assert.Equal(t, fmt.Sprintf("Query_%d", k), l.Others[0].ColumnName())
		v, _ := mln.Values[bool](l.Others[0])
		assert.Equal(t, []bool{true, true}, v)
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(in *Input, opts *Options)
		title string
		msg   string
	}{
		{
			name: "duplicated role",
			edit: func(in *Input, _ *Options) {
				in.Nodes[0].Roles = append(in.Nodes[0].Roles, Assignment{Column: "w", Role: Node})
			},
			title: titleDuplicated,
			msg:   "The type \"Node\" for the column \"w\" is duplicated.\n\nError within the tab 1 for \"nodes\".",
		},
		{
			name: "missing node role",
			edit: func(in *Input, _ *Options) {
				in.Nodes[1].Roles = in.Nodes[1].Roles[1:]
			},
			title: titleMissing,
			msg:   "The following types have to be defined: \"[node]\".\n\nError within the tab 2 for \"nodes\".",
		},
		{
			name: "missing endpoints",
			edit: func(in *Input, _ *Options) {
				in.Intra[0].Roles = nil
			},
			title: titleMissing,
			msg: "The following types have to be defined: \"[Source node (or \"interacts with\"), " +
				"Target node (or \"interacts with\")]\".\n\nError within the tab 1 for \"intra-layer edges\".",
		},
		{
			name: "source with interaction",
			edit: func(in *Input, _ *Options) {
				in.Inter[0].Roles = append(in.Inter[0].Roles, Assignment{Column: "to", Role: Interaction})
			},
			title: titleInteract,
		},
		{
			name: "unique and per-layer roles",
			edit: func(in *Input, _ *Options) {
				in.Intra = in.Intra[:1]
				in.Intra[0].Roles = append(in.Intra[0].Roles, Assignment{Column: "to", Role: Target, Layer: 2})
			},
			title: titleUniqueShared,
		},
		{
			name: "per-layer roles missing a layer",
			edit: func(in *Input, _ *Options) {
				in.Nodes = []Sheet{sheet([]string{"n1"}, []Assignment{{Column: "n1", Role: Node, Layer: 1}}, []string{"a"})}
			},
			title: titleAllLayers,
		},
		{
			name: "per-layer role in a per-layer sheet",
			edit: func(in *Input, _ *Options) {
				in.Nodes[0].Roles[1].Layer = 1
			},
			title: titleAllLayers,
		},
		{
			name: "node role in an edge sheet",
			edit: func(in *Input, _ *Options) {
				in.Intra[0].Roles = append(in.Intra[0].Roles, Assignment{Column: "to", Role: NodeWeight})
			},
			title: titleUniqueShared,
		},
		{
			name: "unknown column",
			edit: func(in *Input, _ *Options) {
				in.Nodes[0].Roles[0].Column = "missing"
			},
			title: titleColumn,
		},
		{
			name: "weight is not a number",
			edit: func(in *Input, _ *Options) {
				in.Nodes[1].Rows[0][1] = "heavy"
			},
			title: titleValueTypes,
			msg: "The weight column should be of type 'double' (float number) and direction column of type " +
				"'boolean' (true/false).\n\nError within the tab 2 for the column \"w\" for \"nodes\".",
		},
		{
			name: "bad interaction",
			edit: func(in *Input, _ *Options) {
				in.Intra[0] = sheet([]string{"e"}, []Assignment{{Column: "e", Role: Interaction}}, []string{"a-b"})
			},
			title: titleValueTypes,
		},
		{
			name: "intra endpoint not a node",
			edit: func(in *Input, _ *Options) {
				in.Intra[1].Rows[0][1] = "z"
			},
			title: titleInconsistent,
			msg:   "Some nodes from intra-layer edges are not within the node table for the layer 2.",
		},
		{
			name: "inter source not a node",
			edit: func(in *Input, _ *Options) {
				in.Inter[0].Rows[0][0] = "c"
			},
			title: titleInconsistent,
			msg:   "Some sources from 1->2 inter-layer edges are not within the node table of the layer 1.",
		},
		{
			name: "inter target not a node",
			edit: func(in *Input, _ *Options) {
				in.Inter[0].Rows[0][1] = "b"
			},
			title: titleInconsistent,
			msg:   "Some targets from 1->2 inter-layer edges are not within the node table of the layer 2.",
		},
		{
			name: "wrong number of sheets",
			edit: func(_ *Input, opts *Options) {
				opts.Layers = 3
			},
			title: titleTables,
			msg:   "2 tables were given for \"nodes\", while 1 or 3 are expected.",
		},
		{
			name: "no inter sheet",
			edit: func(in *Input, _ *Options) {
				in.Inter = nil
			},
			title: titleTables,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, opts := twoLayers(), DefaultOptions(2)
			tt.edit(&in, &opts)
			_, err := Convert(in, opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConverter), "code = %v", errors.GetCode(err))
			assert.Equal(t, tt.title, errors.TitleOf(err))
			if tt.msg != "" {
				assert.Equal(t, tt.msg, errors.UserMessage(err))
			}
		})
	}
}

func TestConvertSingleLayer(t *testing.T) {
	in := twoLayers()
	in.Nodes, in.Intra, in.Inter = in.Nodes[:1], in.Intra[:1], nil
	m, err := Convert(in, DefaultOptions(1))
	require.NoError(t, err)
	assert.Equal(t, 1, m.LayerCount())
	assert.Empty(t, m.InterLayers())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		label string
		role  Role
		layer int
	}{
		{"Node", Node, 0},
		{"node weight", NodeWeight, 0},
		{"Node layer 2", Node, 2},
		{"Source node layer 1->2", Source, 1},
		{"Interacts with layer 3->4", Interaction, 3},
		{"Other column", Other, 0},
		{"-", Ignore, 0},
	}
	for _, tt := range tests {
		r, k, err := ParseRole(tt.label)
		if err != nil {
			t.Errorf("ParseRole(%q) error: %v", tt.label, err)
			continue
		}
		if r != tt.role || k != tt.layer {
			t.Errorf("ParseRole(%q) = %v, %d, want %v, %d", tt.label, r, k, tt.role, tt.layer)
		}
	}

	for _, bad := range []string{"Nodes", "Node layer 0", "Source node layer 1->3", "- layer 1", "Node layer x"} {
		if _, _, err := ParseRole(bad); err == nil {
			t.Errorf("ParseRole(%q) succeeded, want error", bad)
		}
	}
}

func TestAssignmentLabel(t *testing.T) {
	a := Assignment{Column: "x", Role: Source, Layer: 2}
	if got := a.Label(true); got != "Source node layer 2->3" {
		t.Errorf("Label(inter) = %q", got)
	}
	if got := a.Label(false); got != "Source node layer 2" {
		t.Errorf("Label = %q", got)
	}
}

func TestInferColumn(t *testing.T) {
	tests := []struct {
		cells []string
		want  graph.ColumnType
	}{
		{[]string{"1", "", "3"}, graph.IntType},
		{[]string{"1", "2.5"}, graph.DoubleType},
		{[]string{"true", "false"}, graph.BoolType},
		{[]string{"x", "1"}, graph.StringType},
		{[]string{"", ""}, graph.StringType},
	}
	for _, tt := range tests {
		if got := inferColumn("c", tt.cells).ColumnType(); got != tt.want {
			t.Errorf("inferColumn(%v) type = %v, want %v", tt.cells, got, tt.want)
		}
	}
}
