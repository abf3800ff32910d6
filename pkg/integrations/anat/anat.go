package anat

import (
	"context"
	"encoding/xml"
	stderrors "errors"
	"net/http"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/graph/normalize"
	"github.com/timenexus/timenexus/pkg/httputil"
	"github.com/timenexus/timenexus/pkg/integrations"
	"github.com/timenexus/timenexus/pkg/mln"
)

// Attributes added to the extracted network.
const (
	ColRedundancy   = "Anat_redundancy"
	ColSignificance = "Anat_significance"
	ColStatus       = "Anat_status"
	ColDirection    = "Anat_direction"
	ColFrequency    = "Anat_frequency"
	ColProbability  = "Anat_probability"
)

const resultAction = "getResult"

// Service calls the ANAT SOAP server.
type Service struct {
	client   *integrations.Client
	opts     Options
	logger   *log.Logger
	schedule httputil.Schedule
}

// New creates an ANAT service. A nil client gets the default one.
func New(opts Options, client *integrations.Client, logger *log.Logger) (*Service, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid Anat settings", "%v", err)
	}
	if client == nil {
		client = integrations.NewClient(nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		client:   client,
		opts:     opts,
		logger:   logger,
		schedule: httputil.DefaultSchedule(opts.Timeout),
	}, nil
}

// Name implements extract.Service.
func (s *Service) Name() string { return "Anat" }

// Params returns the settings that change an extraction result.
func (s *Service) Params() map[string]any { return s.opts.params() }

// CheckPreconditions implements extract.Service. ANAT cannot process
// multi-edges, whatever their directions; they are aggregated into one
// edge per node pair.
func (s *Service) CheckPreconditions(ctx context.Context, g *graph.Graph) (string, error) {
	if !normalize.HasMultiEdges(g) {
		return "", nil
	}
	s.logger.Info("Aggregating multi-edges...")
	if err := normalize.AggregateMixed(ctx, g); err != nil {
		return "", err
	}
	return "- The multi-layer network has multi-edges, but Anat cannot process them.", nil
}

// Extract implements extract.Service. The slice is sent with the
// algorithm request, then the result is polled until the server answers
// with a subnetwork.
func (s *Service) Extract(ctx context.Context, g *graph.Graph, sources, targets extract.Queries) (*extract.Network, error) {
	var missing []string
	if len(sources) == 0 {
		missing = append(missing, "Query-source nodes")
	}
	if len(targets) == 0 && s.opts.Algorithm == Anchored {
		missing = append(missing, "Query-target nodes")
	}
	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeAppCall, "Connection to Anat Server aborted",
			"Connection to Anat Server was aborted as some parameters are null:\n[%s]", strings.Join(missing, ", "))
	}

	session := uuid.NewString()
	action, body := s.request(g, session, sources, targets)

	s.logger.Info("Sending data to the Anat Server...")
	resp, err := s.client.PostSOAP(ctx, s.opts.URL, action, newEnvelope(body))
	if err != nil {
		return nil, connectionError(err)
	}
	if resp.Status != http.StatusOK {
		return nil, statusError(resp)
	}

	var graphResp *networkGraph
	poll := func(ctx context.Context) (bool, error) {
		resp, err := s.client.PostSOAP(ctx, s.opts.URL, resultAction,
			newEnvelope(resultBody{SessionID: sessionID{NS: networkNS, Value: session}}))
		if err != nil {
			return false, connectionError(err)
		}
		if resp.Status != http.StatusOK {
			return false, statusError(resp)
		}
		var r response
		if err := xml.Unmarshal(resp.Body, &r); err != nil {
			return false, errors.Wrap(errors.ErrCodeAppCall, err, "Aborted extraction",
				"Anat Server response could not be parsed into a subnetwork. Extraction was aborted.")
		}
		if ng := r.Body.Graph; ng != nil && (len(ng.Nodes) > 0 || len(ng.Edges) > 0) {
			graphResp = ng
			return true, nil
		}
		s.logger.Debug("Waiting for the Anat Server to process the network...", "session", session)
		return false, nil
	}
	if err := httputil.Poll(ctx, s.schedule, poll); err != nil {
		if stderrors.Is(err, httputil.ErrTimeout) {
			return nil, errors.New(errors.ErrCodeAppCall, "Aborted extraction",
				"Anat Server took too much time to send back a subnetwork. Extraction was aborted.")
		}
		return nil, err
	}
	s.report(graphResp)
	return parse(graphResp)
}

// request builds the SOAP action and body of the configured algorithm.
func (s *Service) request(g *graph.Graph, session string, sources, targets extract.Queries) (string, any) {
	o := s.opts
	p := &parameters{
		NS:                  networkNS,
		BackgroundNetwork:   background(g, o.DefaultConfidence),
		BaseNetworkFileName: "E_empty.net",
		SessionID:           session,
	}
	if o.Algorithm != Local {
		p.LengthPenalty, p.Margin = ptr(o.EdgePenalty), ptr(o.Margin)
	}
	if o.NodePenalty && (o.Algorithm == Anchored || o.Algorithm == Shortest) {
		p.Curvature, p.Dominance = ptr(o.Curvature), ptr(o.Dominance)
	}

	switch o.Algorithm {
	case Anchored:
		p.AlgorithmType = "EXPLANATORYPATHWAYS"
		p.SubAlgorithm = "EXACT"
		if o.Approximate {
			p.SubAlgorithm = "APPROXIMATE"
		}
		p.Anchors, p.Terminals = sortedNames(sources), sortedNames(targets)
		p.Alpha = ptr(o.Alpha)
		p.Completion, p.Propagate = ptr(o.Completion), ptr(o.Propagate)
		p.PredictTF, p.TerminalsToAnchors = ptr(false), ptr(false)
		return "calculateExplanatorySubNetwork", explanatoryBody{Params: p}
	case Shortest:
		p.AlgorithmType = "SHORTESTPATHS"
		ends := union(sources, targets)
		for _, name := range sortedNames(ends) {
			p.Sets = append(p.Sets, extremityNodeSet{
				First:  newExtremityNode(name),
				Second: newExtremityNode(ends[name]),
			})
		}
		return "calculateShortestPathsSubNetwork", shortestPathsBody{Params: p}
	case Local:
		p.AlgorithmType = "NEIGHBOURS"
		p.Degree = ptr(o.Degree)
		p.Sets = nameSet(union(sources, targets))
		return "calculateNeighboursSubNetwork", neighboursBody{Params: p}
	default:
		p.AlgorithmType = "PROJECTIONANALYSIS"
		p.SubAlgorithm = "CLUSTERING"
		p.Granularity = ptr(o.Granularity)
		p.Sets = nameSet(union(sources, targets))
		return "calculateProjectionSubNetwork", projectionBody{Params: p}
	}
}

// background encodes g. Node and edge weights become confidences.
func background(g *graph.Graph, confidence float64) backgroundNetwork {
	bg := backgroundNetwork{DefaultConfidence: confidence, NetworkName: "network"}
	nt, et := g.NodeTable(), g.EdgeTable()
	for _, n := range g.Nodes() {
		d := nodeData{Operation: "ADD", NodeID: g.NodeName(n)}
		if w, ok := nt.Float(n, mln.ColWeight); ok {
			d.Confidence = ptr(w)
		}
		bg.Nodes = append(bg.Nodes, d)
	}
	for _, e := range g.Edges() {
		d := edgeData{
			Action: "SET_UNDIRECTED",
			From:   g.NodeName(e.Source),
			To:     g.NodeName(e.Target),
		}
		if normalize.Directed(g, e.ID) {
			d.Action = "SET_DIRECTED"
		}
		if w, ok := et.Float(e.ID, mln.ColWeight); ok {
			d.Confidence = ptr(w)
		}
		bg.Edges = append(bg.Edges, d)
	}
	return bg
}

func (s *Service) report(ng *networkGraph) {
	for _, m := range ng.Warnings {
		if len(m.Message) > 0 {
			s.logger.Warn("Warnings from Anat Server", "messages", strings.Join(m.Message, "\n"))
		}
	}
	for _, m := range ng.Errors {
		if len(m.Message) > 0 {
			s.logger.Error("Errors from Anat Server", "messages", strings.Join(m.Message, "\n"))
		}
	}
}

// parse turns a result into a network. ANAT sorts the endpoints of every
// edge, which loses their direction: each edge is added both ways, with
// the same attributes.
func parse(ng *networkGraph) (*extract.Network, error) {
	if len(ng.Nodes) == 0 {
		return nil, errors.New(errors.ErrCodeAppCall, "App calling error",
			"Anat did not return any nodes. Extraction was aborted.")
	}
	net := &extract.Network{}
	redundancy := make([]float64, len(ng.Nodes))
	significance := make([]float64, len(ng.Nodes))
	status := make([]string, len(ng.Nodes))
	for i, n := range ng.Nodes {
		net.Nodes = append(net.Nodes, n.ID)
		redundancy[i], significance[i], status[i] = n.Redundancy, n.Significance, n.Status
	}
	var directed []bool
	var frequency, probability []float64
	for _, e := range ng.Edges {
		net.Edges = append(net.Edges, [2]string{e.ID1, e.ID2}, [2]string{e.ID2, e.ID1})
		directed = append(directed, e.Directed, e.Directed)
		frequency = append(frequency, e.Frequency, e.Frequency)
		probability = append(probability, e.Probability, e.Probability)
	}
	for _, err := range []error{
		extract.AddNodeAttribute(net, ColRedundancy, redundancy),
		extract.AddNodeAttribute(net, ColSignificance, significance),
		extract.AddNodeAttribute(net, ColStatus, status),
		extract.AddEdgeAttribute(net, ColDirection, directed),
		extract.AddEdgeAttribute(net, ColFrequency, frequency),
		extract.AddEdgeAttribute(net, ColProbability, probability),
	} {
		if err != nil {
			return nil, err
		}
	}
	return net, nil
}

func connectionError(err error) error {
	if errors.IsCancelled(err) {
		return err
	}
	return errors.Wrap(errors.ErrCodeAppCall, err, "Anat Server not found",
		"Connection could not be established with the Anat Server: %v", err)
}

func statusError(resp *integrations.Response) error {
	if resp.Status == http.StatusNotFound {
		return errors.New(errors.ErrCodeAppCall, "Anat Server not found",
			"404 error. Connection could not be established with the Anat Server.")
	}
	detail := string(resp.Body)
	var r response
	if xml.Unmarshal(resp.Body, &r) == nil && r.Body.Fault != nil {
		detail = r.Body.Fault.String
	}
	return errors.New(errors.ErrCodeAppCall, "Error from Anat Server",
		"HTTP status code: %d\n%s", resp.Status, detail)
}

func union(a, b extract.Queries) extract.Queries {
	out := make(extract.Queries, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

func nameSet(q extract.Queries) []any {
	var out []any
	for _, name := range sortedNames(q) {
		out = append(out, name)
	}
	return out
}

func sortedNames(q extract.Queries) []string {
	names := q.Names()
	slices.Sort(names)
	return names
}

func ptr[T any](v T) *T { return &v }
