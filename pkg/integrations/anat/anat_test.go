package anat

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/httputil"
	"github.com/timenexus/timenexus/pkg/integrations"
	"github.com/timenexus/timenexus/pkg/mln"
)

const resultXML = `<?xml version="1.0" ?>
<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/">
  <S:Body>
    <ns2:networkGraph xmlns:ns2="network">
      <edges><directed>true</directed><frequency>0.5</frequency><id1>a_1</id1><id2>b_1</id2><probability>0.9</probability><pubMedIDs></pubMedIDs></edges>
      <nodes><redundancy>1</redundancy><significance>0.1</significance><id>a_1</id><status>ANCHOR</status></nodes>
      <nodes><redundancy>2</redundancy><significance>0.2</significance><id>b_1</id><status>TERMINAL</status></nodes>
      <warnings><message>careful</message></warnings>
    </ns2:networkGraph>
  </S:Body>
</S:Envelope>`

const emptyXML = `<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body></S:Body></S:Envelope>`

const faultXML = `<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/"><S:Body>
<S:Fault><faultcode>S:Server</faultcode><faultstring>bad network</faultstring></S:Fault>
</S:Body></S:Envelope>`

// fakeAnat answers the algorithm request, then returns an empty graph
// for pending polls before the result.
type fakeAnat struct {
	mu       sync.Mutex
	actions  []string
	requests []string
	pending  int
	status   int
	body     string
}

func (f *fakeAnat) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	action := r.Header.Get("SOAPAction")
	f.actions = append(f.actions, action)
	f.requests = append(f.requests, string(body))
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
		return
	}
	if action != resultAction {
		_, _ = io.WriteString(w, emptyXML)
		return
	}
	if f.pending > 0 {
		f.pending--
		_, _ = io.WriteString(w, emptyXML)
		return
	}
	_, _ = io.WriteString(w, resultXML)
}

func newService(t *testing.T, f *fakeAnat, mutate func(*Options)) *Service {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	opts := DefaultOptions()
	opts.URL = srv.URL
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts, integrations.NewClient(nil).WithHTTPClient(srv.Client()), nil)
	require.NoError(t, err)
	s.schedule = httputil.Schedule{Fast: time.Millisecond, Slow: time.Millisecond, Timeout: opts.Timeout}
	return s
}

func slice(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New("slice")
	require.NoError(t, g.NodeTable().CreateColumn(mln.ColWeight, graph.DoubleType))
	require.NoError(t, g.EdgeTable().CreateColumn(mln.ColWeight, graph.DoubleType))
	require.NoError(t, g.EdgeTable().CreateColumn(mln.ColDirection, graph.BoolType))
	a, b := g.AddNamedNode("a_1"), g.AddNamedNode("b_1")
	require.NoError(t, g.NodeTable().Set(a, mln.ColWeight, 0.7))
	e, err := g.AddEdge(a, b, true)
	require.NoError(t, err)
	require.NoError(t, g.EdgeTable().Set(e, mln.ColWeight, 0.8))
	require.NoError(t, g.EdgeTable().Set(e, mln.ColDirection, true))
	return g
}

func TestExtractAnchored(t *testing.T) {
	f := &fakeAnat{pending: 2}
	s := newService(t, f, nil)

	net, err := s.Extract(context.Background(), slice(t), extract.Queries{"a_1": ""}, extract.Queries{"b_1": ""})
	require.NoError(t, err)
	require.NoError(t, net.Validate())

	assert.Equal(t, []string{"a_1", "b_1"}, net.Nodes)
	assert.Equal(t, [][2]string{{"a_1", "b_1"}, {"b_1", "a_1"}}, net.Edges)

	nodeAttrs := net.NodeAttributes()
	require.Len(t, nodeAttrs, 3)
	assert.Equal(t, ColStatus, nodeAttrs[2].ColumnName())
	assert.Equal(t, "TERMINAL", nodeAttrs[2].At(1))
	edgeAttrs := net.EdgeAttributes()
	require.Len(t, edgeAttrs, 3)
	assert.Equal(t, 0.9, edgeAttrs[2].At(1))

	assert.Equal(t, []string{"calculateExplanatorySubNetwork", resultAction, resultAction, resultAction}, f.actions)

	req := f.requests[0]
	for _, want := range []string{
		`<S:Envelope xmlns:S="http://schemas.xmlsoap.org/soap/envelope/">`,
		`<ns2:explanatoryParameters xmlns:ns2="network">`,
		"<ns2:algorithmType>EXPLANATORYPATHWAYS</ns2:algorithmType>",
		"<ns2:subAlgorithm>APPROXIMATE</ns2:subAlgorithm>",
		"<ns2:anchors>a_1</ns2:anchors>",
		"<ns2:terminals>b_1</ns2:terminals>",
		"<ns2:action>SET_DIRECTED</ns2:action>",
		"<ns2:confidence>0.8</ns2:confidence>",
		"<ns2:baseNetworkFileName>E_empty.net</ns2:baseNetworkFileName>",
	} {
		assert.Contains(t, req, want)
	}
	assert.NotContains(t, req, "<ns2:curvature>", "node penalty is disabled by default")

	var sent struct {
		Body struct {
			Params struct {
				SessionID string `xml:"sessionId"`
			} `xml:"explanatoryParameters"`
		} `xml:"Body"`
	}
	require.NoError(t, xml.Unmarshal([]byte(req), &sent))
	assert.Contains(t, f.requests[1], sent.Body.Params.SessionID, "polls use the request session")
}

func TestRequestBodies(t *testing.T) {
	tests := []struct {
		algo   Algorithm
		action string
		want   []string
	}{
		{General, "calculateProjectionSubNetwork", []string{
			"<ns2:projectionParams", "PROJECTIONANALYSIS", "CLUSTERING", "<ns2:set>a_1</ns2:set>", "<ns2:set>b_1</ns2:set>",
		}},
		{Local, "calculateNeighboursSubNetwork", []string{"<ns2:neighbourParams", "NEIGHBOURS", "<ns2:degree>1</ns2:degree>"}},
		{Shortest, "calculateShortestPathsSubNetwork", []string{
			"<ns2:shortestPathsParams", "SHORTESTPATHS", `xsi:type="xs:string">a_1</ns2:first>`, `xsi:type="xs:string">b_1</ns2:second>`,
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.algo), func(t *testing.T) {
			s := newService(t, &fakeAnat{}, func(o *Options) { o.Algorithm = tt.algo })
			action, body := s.request(slice(t), "session", extract.Queries{"a_1": "b_1"}, extract.Queries{"b_1": ""})
			assert.Equal(t, tt.action, action)
			out, err := xml.Marshal(newEnvelope(body))
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, string(out), want)
			}
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name      string
		fake      *fakeAnat
		timeout   time.Duration
		wantTitle string
		contains  string
	}{
		{"not found", &fakeAnat{status: http.StatusNotFound}, 0, "Anat Server not found", "404 error"},
		{"fault", &fakeAnat{status: http.StatusInternalServerError, body: faultXML}, 0,
			"Error from Anat Server", "HTTP status code: 500\nbad network"},
		{"timeout", &fakeAnat{pending: 1 << 30}, 5 * time.Millisecond, "Aborted extraction", "too much time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newService(t, tt.fake, func(o *Options) { o.Timeout = tt.timeout })
			_, err := s.Extract(context.Background(), slice(t), extract.Queries{"a_1": ""}, extract.Queries{"b_1": ""})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeAppCall))
			assert.Equal(t, tt.wantTitle, errors.TitleOf(err))
			assert.Contains(t, errors.UserMessage(err), tt.contains)
		})
	}
}

func TestExtractMissingQueries(t *testing.T) {
	f := &fakeAnat{}
	s := newService(t, f, nil)
	_, err := s.Extract(context.Background(), slice(t), extract.Queries{}, extract.Queries{})
	require.Error(t, err)
	assert.Equal(t, "Connection to Anat Server aborted", errors.TitleOf(err))
	assert.Contains(t, errors.UserMessage(err), "[Query-source nodes, Query-target nodes]")
	assert.Empty(t, f.actions)
}

func TestExtractCancelled(t *testing.T) {
	f := &fakeAnat{pending: 1 << 30}
	s := newService(t, f, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := s.Extract(ctx, slice(t), extract.Queries{"a_1": ""}, extract.Queries{"b_1": ""})
	assert.True(t, errors.IsCancelled(err), "err = %v", err)
}

func TestCheckPreconditions(t *testing.T) {
	s := newService(t, &fakeAnat{}, nil)

	g := slice(t)
	msg, err := s.CheckPreconditions(context.Background(), g)
	require.NoError(t, err)
	assert.Empty(t, msg)

	a, b := g.NodesByName("a_1")[0], g.NodesByName("b_1")[0]
	_, err = g.AddEdge(b, a, false)
	require.NoError(t, err)
	msg, err = s.CheckPreconditions(context.Background(), g)
	require.NoError(t, err)
	assert.True(t, strings.Contains(msg, "Anat cannot process them"))
	assert.Equal(t, 1, g.EdgeCount())
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"unknown algorithm", func(o *Options) { o.Algorithm = "global" }, true},
		{"penalty above 100", func(o *Options) { o.EdgePenalty = 101 }, true},
		{"margin above 25", func(o *Options) { o.Margin = 26 }, true},
		{"alpha above 0.5", func(o *Options) { o.Alpha = 0.6 }, true},
		{"degree above 10", func(o *Options) { o.Degree = 11 }, true},
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
