package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timenexus/timenexus/pkg/cache"
	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/graph"
	tnio "github.com/timenexus/timenexus/pkg/io"
	"github.com/timenexus/timenexus/pkg/integrations"
	"github.com/timenexus/timenexus/pkg/mln"
)

const definition = `
name = "demo"
layers = 2
auto_coupling = true
all_nodes_are_queries = true

[[nodes]]
data = "protein\nA\nB\nC\n"
[nodes.columns]
protein = "Node"

[[intra]]
data = "a,b\nA,B\nB,C\n"
[intra.columns]
a = "Source node"
b = "Target node"
`

func parseDefinition(t *testing.T) *tnio.Definition {
	t.Helper()
	d, err := tnio.ParseDefinition([]byte(definition), tnio.FormatTOML)
	require.NoError(t, err)
	return d
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateService(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"pathlinker", false},
		{"anat", false},
		{"cytoscape", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateService(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateService(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"graph only", Options{GraphPath: "g.json"}, false},
		{"full", Options{DefinitionPath: "n.toml", Service: "anat", Strategy: "one by one", Layers: []int{1, 2}, Formats: []string{"svg"}}, false},
		{"no source", Options{Service: "pathlinker"}, true},
		{"bad service", Options{GraphPath: "g.json", Service: "x"}, true},
		{"bad strategy", Options{GraphPath: "g.json", Strategy: "random"}, true},
		{"bad layer", Options{GraphPath: "g.json", Layers: []int{0}}, true},
		{"negative layer", Options{GraphPath: "g.json", Layers: []int{1, -2}}, true},
		{"bad format", Options{GraphPath: "g.json", Formats: []string{"pdf"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{GraphPath: "g.json"}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, DefaultStrategy, opts.Strategy)
	assert.Equal(t, extract.Global, opts.ExtractionStrategy())
	assert.NotNil(t, opts.Logger)

	opts.QueryColumns = map[int]string{2: "Targets"}
	assert.Equal(t, extract.QueryColumns{1: "Query_1", 2: "Targets"}, opts.Queries([]int{1, 2}))
}

func TestServicesNew(t *testing.T) {
	s := DefaultServices()
	for _, name := range []string{ServicePathLinker, ServiceAnat} {
		svc, err := s.New(name, nil)
		require.NoError(t, err, name)
		assert.NotEmpty(t, svc.Name())
	}
	_, err := s.New("other", nil)
	assert.Error(t, err)
}

// fakePathLinker answers every run with the path A_1 - B_1 - B_2.
type fakePathLinker struct {
	uploads atomic.Int32
	deletes atomic.Int32
}

func (f *fakePathLinker) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/networks", func(w http.ResponseWriter, r *http.Request) {
		f.uploads.Add(1)
		_, _ = w.Write([]byte(`{"networkSUID": 7}`))
	})
	mux.HandleFunc("POST /pathlinker/v1/7/run", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["sources"] != "A_1 B_1 C_1" || req["targets"] != "A_2 B_2 C_2" {
			t.Errorf("unexpected queries %v -> %v", req["sources"], req["targets"])
		}
		_, _ = w.Write([]byte(`{"paths": [{"rank": 1, "score": 2, "nodeList": ["A_1", "B_1", "B_2"]}]}`))
	})
	mux.HandleFunc("DELETE /v1/networks/7", func(w http.ResponseWriter, r *http.Request) {
		f.deletes.Add(1)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newRunner(t *testing.T, f *fakePathLinker) *Runner {
	t.Helper()
	srv := f.server(t)
	lru, err := cache.NewLRUCache(16)
	require.NoError(t, err)
	r := NewRunner(lru, nil, nil)
	r.Services.PathLinker.BaseURL = srv.URL
	r.Services.Client = integrations.NewClient(nil).WithHTTPClient(srv.Client())
	return r
}

func TestExecuteWithoutExtraction(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Definition: parseDefinition(t),
		Formats:    []string{FormatDOT, FormatJSON},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Extraction)
	assert.Same(t, res.Input, res.Output)
	assert.Equal(t, 6, res.Stats.NodeCount)
	// four intra-layer edges and three couplings
	assert.Equal(t, 7, res.Stats.EdgeCount)
	assert.Contains(t, string(res.Artifacts[FormatDOT]), `"A_2" [pos=`)

	g, err := graph.UnmarshalGraph(res.Artifacts[FormatJSON])
	require.NoError(t, err)
	assert.True(t, g.Flag(mln.FlagFlattened))
	assert.Equal(t, len(res.Input.Graphs()), r.Store.(*graph.MemoryStore).Len())
}

func TestExecuteExtraction(t *testing.T) {
	f := &fakePathLinker{}
	r := newRunner(t, f)
	in, err := r.Load(context.Background(), Options{Definition: parseDefinition(t)})
	require.NoError(t, err)

	opts := Options{Collection: in, Service: ServicePathLinker, Formats: []string{FormatDOT}}
	res, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, res.Extraction)
	out := res.Output
	assert.Equal(t, extract.ExtractedName, out.Name)
	assert.Equal(t, 3, out.Flattened.NodeCount())
	assert.Equal(t, 2, out.Flattened.EdgeCount())
	assert.True(t, out.Flattened.NodeTable().HasColumn(mln.ColIsQuery))
	assert.False(t, strings.Contains(string(res.Artifacts[FormatDOT]), "C_1"))
	assert.Equal(t, int32(1), f.uploads.Load())
	assert.Equal(t, int32(1), f.deletes.Load())

	// second run is served from the cache
	_, err = r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.uploads.Load())

	opts.Refresh = true
	_, err = r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.uploads.Load())
}

func TestExecuteExtractionFailure(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	r.Services.PathLinker.BaseURL = "http://127.0.0.1:1"
	_, err := r.Execute(context.Background(), Options{
		Definition: parseDefinition(t),
		Service:    ServicePathLinker,
		Strategy:   "pairwise",
		Layers:     []int{1},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeExtraction), "%v", err)
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(nil, nil, nil).Execute(ctx, Options{Definition: parseDefinition(t)})
	assert.True(t, errors.IsCancelled(err), "%v", err)
}
