package pathlinker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/graph/normalize"
	"github.com/timenexus/timenexus/pkg/integrations"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/mlntest"
	"github.com/timenexus/timenexus/pkg/mln/transform"
)

// fakeCytoscape serves the CyREST endpoints used by the service.
type fakeCytoscape struct {
	mu       sync.Mutex
	uploaded []cyjs
	runs     []runRequest
	deleted  []string
	status   int
	answer   runResponse
}

func (f *fakeCytoscape) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/networks", func(w http.ResponseWriter, r *http.Request) {
		var doc cyjs
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.mu.Lock()
		f.uploaded = append(f.uploaded, doc)
		f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(uploadResponse{NetworkSUID: 42})
	})
	mux.HandleFunc("POST /pathlinker/v1/42/run", func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.runs = append(f.runs, req)
		f.mu.Unlock()
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
		_ = json.NewEncoder(w).Encode(f.answer)
	})
	mux.HandleFunc("DELETE /v1/networks/{suid}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("suid"))
		f.mu.Unlock()
	})
	return mux
}

func newService(t *testing.T, f *fakeCytoscape, mutate func(*Options)) *Service {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	opts := DefaultOptions()
	opts.BaseURL = srv.URL
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts, integrations.NewClient(nil).WithHTTPClient(srv.Client()), nil)
	require.NoError(t, err)
	return s
}

// pathGraph builds a - b - c with the given edge directions.
func pathGraph(t *testing.T, directed ...bool) *graph.Graph {
	t.Helper()
	g := graph.New("slice")
	require.NoError(t, g.EdgeTable().CreateColumn(mln.ColDirection, graph.BoolType))
	require.NoError(t, g.EdgeTable().CreateColumn(mln.ColWeight, graph.DoubleType))
	names := []string{"a_1", "b_1", "c_1"}
	ids := make([]int64, len(names))
	for i, n := range names {
		ids[i] = g.AddNamedNode(n)
	}
	for i, d := range directed {
		e, err := g.AddEdge(ids[i%2], ids[i%2+1], d)
		require.NoError(t, err)
		require.NoError(t, g.EdgeTable().Set(e, mln.ColDirection, d))
		require.NoError(t, g.EdgeTable().Set(e, mln.ColWeight, 1.0))
	}
	return g
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero k", func(o *Options) { o.K = 0 }, true},
		{"negative penalty", func(o *Options) { o.EdgePenalty = -1 }, true},
		{"unknown weight type", func(o *Options) { o.EdgeWeightType = "LOG" }, true},
		{"no url", func(o *Options) { o.BaseURL = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			err := o.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}

func TestExtract(t *testing.T) {
	f := &fakeCytoscape{answer: runResponse{Paths: []path{
		{Rank: 1, Score: 2, NodeList: []string{"a_1", "b_1", "c_1"}},
		{Rank: 2, Score: 3, NodeList: []string{"a_1", "b_1"}},
	}}}
	s := newService(t, f, nil)

	net, err := s.Extract(context.Background(), pathGraph(t, false, false),
		extract.Queries{"c_1": "", "a_1": ""}, extract.Queries{"b_1": ""})
	require.NoError(t, err)
	require.NoError(t, net.Validate())

	assert.Equal(t, []string{"a_1", "b_1", "c_1"}, net.Nodes)
	assert.Equal(t, [][2]string{{"a_1", "b_1"}, {"b_1", "a_1"}, {"b_1", "c_1"}, {"c_1", "b_1"}}, net.Edges)

	attrs := net.EdgeAttributes()
	require.Len(t, attrs, 2)
	assert.Equal(t, ColScore, attrs[0].ColumnName())
	assert.Equal(t, []float64{2, 3}, attrs[0].At(0))
	assert.Equal(t, []int{1, 2}, attrs[1].At(1))
	assert.Equal(t, []int{1}, attrs[1].At(2))

	require.Len(t, f.runs, 1)
	run := f.runs[0]
	assert.Equal(t, "a_1 c_1", run.Sources)
	assert.Equal(t, "b_1", run.Targets)
	assert.Equal(t, 50, run.K)
	assert.True(t, run.TreatNetworkAsUndirected)
	assert.True(t, run.SkipSubnetworkGeneration)

	require.Len(t, f.uploaded, 1)
	assert.Len(t, f.uploaded[0].Elements.Nodes, 3)
	assert.Len(t, f.uploaded[0].Elements.Edges, 2)
	assert.Equal(t, []string{"42"}, f.deleted)
}

func TestExtractDirected(t *testing.T) {
	f := &fakeCytoscape{answer: runResponse{Paths: []path{{Rank: 1, Score: 1, NodeList: []string{"a_1", "b_1"}}}}}
	s := newService(t, f, func(o *Options) { o.Directed = true })

	net, err := s.Extract(context.Background(), pathGraph(t, true), extract.Queries{"a_1": ""}, extract.Queries{"b_1": ""})
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"a_1", "b_1"}}, net.Edges)
	assert.False(t, f.runs[0].TreatNetworkAsUndirected)
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		answer    runResponse
		wantTitle string
		contains  string
	}{
		{"not found", http.StatusNotFound, runResponse{}, "PathLinker not found", "404 error"},
		{"server error", http.StatusInternalServerError,
			runResponse{Errors: []callError{{Message: "boom", Type: "urn:error", Link: "http://x"}}},
			"Connection error to PathLinker", "HTTP status code: 500\nboom\nurn:error\nhttp://x"},
		{"no paths", 0, runResponse{}, "No data from PathLinker", "connection to its CyRest interface was OK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeCytoscape{status: tt.status, answer: tt.answer}
			s := newService(t, f, nil)
			_, err := s.Extract(context.Background(), pathGraph(t, false), extract.Queries{"a_1": ""}, extract.Queries{"b_1": ""})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeAppCall))
			assert.Equal(t, tt.wantTitle, errors.TitleOf(err))
			assert.Contains(t, errors.UserMessage(err), tt.contains)
			assert.Equal(t, []string{"42"}, f.deleted, "uploaded network must be deleted")
		})
	}
}

func TestExtractRejectsSpaces(t *testing.T) {
	f := &fakeCytoscape{}
	s := newService(t, f, nil)
	_, err := s.Extract(context.Background(), pathGraph(t, false), extract.Queries{"a 1": ""}, extract.Queries{"b_1": ""})
	require.Error(t, err)
	assert.Equal(t, "PathLinker extraction failed", errors.TitleOf(err))
	assert.Empty(t, f.uploaded)
}

func TestCheckPreconditions(t *testing.T) {
	tests := []struct {
		name      string
		directed  bool
		edges     []bool
		wantMsgs  []string
		wantEdges int
	}{
		{"undirected ok", false, []bool{false, false}, nil, 2},
		{"directed ok", true, []bool{true, true}, nil, 2},
		{"directed edges in undirected run", false, []bool{true, false}, []string{msgDirected}, 2},
		{"undirected edges in directed run", true, []bool{false, true}, []string{msgUndirected}, 3},
		{"undirected multi-edges", false, []bool{false, false, false}, []string{msgMultiEdges}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t, &fakeCytoscape{}, func(o *Options) { o.Directed = tt.directed })
			g := pathGraph(t, tt.edges...)
			msg, err := s.CheckPreconditions(context.Background(), g)
			require.NoError(t, err)
			for _, want := range tt.wantMsgs {
				assert.Contains(t, msg, want)
			}
			if tt.wantMsgs == nil {
				assert.Empty(t, msg)
			}
			assert.Equal(t, tt.wantEdges, g.EdgeCount())
			if tt.directed {
				assert.False(t, normalize.HasUndirected(g))
			} else {
				assert.False(t, normalize.HasDirected(g))
				assert.False(t, normalize.HasMultiEdges(g))
			}
		})
	}
}

func TestCheckPreconditionsOppositeEdges(t *testing.T) {
	s := newService(t, &fakeCytoscape{}, func(o *Options) { o.Directed = true })
	g := graph.New("slice")
	require.NoError(t, g.EdgeTable().CreateColumn(mln.ColDirection, graph.BoolType))
	a, b := g.AddNamedNode("a_1"), g.AddNamedNode("b_1")
	for _, ends := range [][2]int64{{a, b}, {b, a}} {
		e, err := g.AddEdge(ends[0], ends[1], true)
		require.NoError(t, err)
		require.NoError(t, g.EdgeTable().Set(e, mln.ColDirection, true))
	}

	msg, err := s.CheckPreconditions(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, msg)
	assert.Equal(t, 2, g.EdgeCount())
}

// localService runs the real preconditions and answers each slice with
// all of its nodes.
type localService struct {
	*Service
	slices []*graph.Graph
}

func (l *localService) Extract(_ context.Context, g *graph.Graph, _, _ extract.Queries) (*extract.Network, error) {
	l.slices = append(l.slices, g)
	return &extract.Network{Nodes: transform.NodeNames(g)}, nil
}

func TestDirectedRunKeepsInputAndLayering(t *testing.T) {
	undirected := []mlntest.Edge{{Source: "a", Target: "b", Weight: 1}}
	c, err := transform.FromModel(mlntest.Model(t, mlntest.Spec{
		Nodes: [][]string{{"a", "b"}, {"a", "b"}},
		Intra: [][]mlntest.Edge{undirected, undirected},
		Inter: [][]mlntest.Edge{{{Source: "a", Target: "a", Weight: 1}}},
	}), "undirected")
	require.NoError(t, err)
	flat := c.Flattened
	require.Equal(t, 3, flat.EdgeCount())

	svc := &localService{Service: newService(t, &fakeCytoscape{}, func(o *Options) { o.Directed = true })}
	res, err := extract.NewOrchestrator(graph.NewMemoryStore(), svc).
		Run(context.Background(), flat, extract.Pairwise, []int{1, 2}, extract.QueryColumns{})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)

	assert.Equal(t, 3, flat.EdgeCount(), "input must not be converted")
	assert.False(t, normalize.HasDirected(flat))

	require.Len(t, svc.slices, 1)
	assert.Equal(t, 6, svc.slices[0].EdgeCount())
	assert.False(t, normalize.HasUndirected(svc.slices[0]))

	out := res.Collection.Flattened
	assert.Equal(t, 3, out.EdgeCount())
	nt, et := out.NodeTable(), out.EdgeTable()
	for _, e := range out.Edges() {
		if label, _ := et.String(e.ID, mln.ColEdgeLabel); label != mln.LabelInter {
			continue
		}
		k, _ := et.Int(e.ID, mln.ColLayerID)
		src, _ := nt.Int(e.Source, mln.ColLayerID)
		tgt, _ := nt.Int(e.Target, mln.ColLayerID)
		assert.Equal(t, k, src, "source layer of edge %d", e.ID)
		assert.Equal(t, k+1, tgt, "target layer of edge %d", e.ID)
	}
	inter, ok := res.Collection.InterTable(1)
	require.True(t, ok)
	assert.Equal(t, 1, inter.RowCount())
}

func TestParams(t *testing.T) {
	s := newService(t, &fakeCytoscape{}, nil)
	p := s.Params()
	assert.Equal(t, 50, p["k"])
	assert.Equal(t, "PROBABILITIES", p["edgeWeightType"])
}
