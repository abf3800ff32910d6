package mln

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/graph"
)

func TestNewModel(t *testing.T) {
	m, err := NewModel(3)
	require.NoError(t, err)

	assert.Equal(t, 3, m.LayerCount())
	assert.Len(t, m.NodeLayers(), 3)
	assert.Len(t, m.IntraLayers(), 3)
	assert.Len(t, m.InterLayers(), 2)

	_, err = NewModel(0)
	assert.True(t, errors.Is(err, errors.ErrCodeBuilder))
}

func TestModelWrongTableKind(t *testing.T) {
	m, err := NewModel(2)
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		msg  string
	}{
		{"node column on edge table", func() error { return m.AddNodeColumn(IntraEdgeTable, 1, nil) },
			"Add node column is possible only for node tables."},
		{"source on node table", func() error { return m.AddSourceColumn(NodeTable, 1, nil) },
			"Add source-node column is possible only for edge tables."},
		{"target on node table", func() error { return m.AddTargetColumn(NodeTable, 1, nil) },
			"Add target-node column is possible only for edge tables."},
		{"direction on node table", func() error { return m.AddDirection(NodeTable, 1, nil) },
			"Add direction column is possible only for edge tables."},
		{"unknown edge kind", func() error { return m.AddSourceColumn(TableKind(9), 1, nil) },
			"This is not an edge table."},
		{"inter layer out of range", func() error { return m.AddWeight(InterEdgeTable, 2, nil) }, ""},
		{"node layer out of range", func() error { return m.AddWeight(NodeTable, 0, nil) }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeBuilder))
			assert.Equal(t, "Conversion error", errors.TitleOf(err))
			if tt.msg != "" {
				assert.Equal(t, tt.msg, errors.UserMessage(err))
			}
		})
	}

	_, err = m.Tables(TableKind(0))
	assert.Equal(t, "Unknown requested table.", errors.UserMessage(err))
}

func TestModelColumns(t *testing.T) {
	m, err := NewModel(2)
	require.NoError(t, err)

	require.NoError(t, m.AddNodeColumn(NodeTable, 1, []string{"a", "b"}))
	require.NoError(t, m.AddWeight(NodeTable, 1, []float64{1, 2}))
	require.NoError(t, m.AddOtherColumn(NodeTable, 1, NewColumn("Query_1", []bool{true, false})))
	require.NoError(t, m.AddNodeColumn(NodeTable, 2, []string{"a", "c"}))
	require.NoError(t, m.AddSourceColumn(IntraEdgeTable, 1, []string{"a"}))
	require.NoError(t, m.AddTargetColumn(IntraEdgeTable, 1, []string{"b"}))
	require.NoError(t, m.AddSourceColumn(InterEdgeTable, 1, []string{"a"}))
	require.NoError(t, m.AddTargetColumn(InterEdgeTable, 1, []string{"a"}))
	require.NoError(t, m.AddDirection(InterEdgeTable, 1, []bool{true}))

	assert.Equal(t, []string{"a", "b"}, m.NodeNames(1))
	assert.Equal(t, []string{"a", "b", "c"}, m.NodesAcrossLayers())
	assert.Equal(t, []string{"a"}, m.IntraSources(1))
	assert.Equal(t, []string{"b"}, m.IntraTargets(1))
	assert.Equal(t, []string{"a"}, m.InterSources(1))
	assert.Equal(t, []string{"a"}, m.InterTargets(1))
	assert.Nil(t, m.IntraSources(2))

	l, err := m.NodeLayer(1)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.Len(t, l.Columns(), 3)
	q, ok := Values[bool](l.OtherColumns()[0])
	require.True(t, ok)
	assert.Equal(t, []bool{true, false}, q)
	_, ok = Values[string](l.OtherColumns()[0])
	assert.False(t, ok)

	layers, err := m.Tables(InterEdgeTable)
	require.NoError(t, err)
	require.Len(t, layers, 1)
	assert.Equal(t, 1, layers[0].Len())
	assert.Nil(t, layers[0].Weight())
}

func TestColumnType(t *testing.T) {
	assert.Equal(t, graph.StringType, NewColumn("n", []string{"a"}).ColumnType())
	assert.Equal(t, graph.DoubleType, NewColumn("w", []float64{1}).ColumnType())
	assert.Equal(t, graph.ListOf(graph.Int), NewColumn("ids", [][]int{{1}}).ColumnType())

	src := []string{"a"}
	c := NewColumn("n", src)
	src[0] = "z"
	assert.Equal(t, "a", c.At(0))
}
