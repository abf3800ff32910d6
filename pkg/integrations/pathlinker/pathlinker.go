package pathlinker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/graph/normalize"
	"github.com/timenexus/timenexus/pkg/integrations"
	"github.com/timenexus/timenexus/pkg/mln"
)

// Edge attributes added to the extracted network.
const (
	ColScore = "PathLinker_score"
	ColRank  = "PathLinker_rank"
)

const (
	msgUndirected = "-The multi-layer network has undirected edges, while they are expected to be directed."
	msgDirected   = "-The multi-layer network has directed edges, while they are expected to be undirected."
	msgMultiEdges = "- The multi-layer network has multi-edges, but PathLinker cannot process them " +
		"(except for opposite edges within a directed network)."
)

// Service calls PathLinker through the CyREST API of a running Cytoscape.
type Service struct {
	client *integrations.Client
	opts   Options
	logger *log.Logger
}

// New creates a PathLinker service. A nil client gets the default one.
func New(opts Options, client *integrations.Client, logger *log.Logger) (*Service, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid PathLinker settings", "%v", err)
	}
	if client == nil {
		client = integrations.NewClient(nil)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{client: client, opts: opts, logger: logger}, nil
}

// Name implements extract.Service.
func (s *Service) Name() string { return "PathLinker" }

// Params returns the settings that change an extraction result.
func (s *Service) Params() map[string]any { return s.opts.params() }

// CheckPreconditions implements extract.Service. Every edge must have the
// direction of the run, and multi-edges are not supported, except
// opposite edges of a directed network. g is converted accordingly.
func (s *Service) CheckPreconditions(ctx context.Context, g *graph.Graph) (string, error) {
	var msgs []string
	wrongDirections := false
	if s.opts.Directed && normalize.HasUndirected(g) {
		wrongDirections = true
		msgs = append(msgs, msgUndirected)
	} else if !s.opts.Directed && normalize.HasDirected(g) {
		wrongDirections = true
		msgs = append(msgs, msgDirected)
	}
	var multi bool
	if s.opts.Directed {
		multi = hasParallelDirected(g)
	} else {
		multi = normalize.HasMultiEdges(g)
	}
	if multi {
		msgs = append(msgs, msgMultiEdges)
	}

	if wrongDirections {
		convert := normalize.SetUndirected
		if s.opts.Directed {
			s.logger.Info("Converting network as directed...")
			convert = normalize.SetDirected
		} else {
			s.logger.Info("Converting network as undirected...")
		}
		if err := convert(ctx, g); err != nil {
			return "", err
		}
	}
	// Conversion can create multi-edges.
	if s.opts.Directed && hasParallelDirected(g) {
		s.logger.Info("Aggregating identically directed multi-edges...")
		if err := normalize.AggregateIdenticallyDirected(ctx, g); err != nil {
			return "", err
		}
	} else if !s.opts.Directed && normalize.HasMultiEdges(g) {
		s.logger.Info("Aggregating undirected multi-edges...")
		if err := normalize.AggregateUndirected(ctx, g); err != nil {
			return "", err
		}
	}
	return strings.Join(msgs, "\n"), nil
}

// hasParallelDirected reports whether two directed edges share both
// their source and target.
func hasParallelDirected(g *graph.Graph) bool {
	seen := make(map[[2]int64]bool)
	for _, e := range g.Edges() {
		if !normalize.Directed(g, e.ID) {
			continue
		}
		k := [2]int64{e.Source, e.Target}
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}

// Extract implements extract.Service. The slice is uploaded to Cytoscape,
// PathLinker runs on it, and the uploaded network is always deleted.
func (s *Service) Extract(ctx context.Context, g *graph.Graph, sources, targets extract.Queries) (*extract.Network, error) {
	for _, q := range []extract.Queries{sources, targets} {
		for name := range q {
			if strings.Contains(name, " ") {
				return nil, errors.New(errors.ErrCodeAppCall, "PathLinker extraction failed",
					"PathLinker does not allow spaces within query-node names.")
			}
		}
	}

	suid, err := s.upload(ctx, g)
	if err != nil {
		return nil, err
	}
	defer func() {
		// The context may be cancelled already; cleanup must still run.
		if err := s.client.Delete(context.WithoutCancel(ctx), s.networkURL(suid)); err != nil {
			s.logger.Warn("Could not delete the uploaded network", "suid", suid, "err", err)
		}
	}()

	paths, err := s.run(ctx, suid, sources, targets)
	if err != nil {
		return nil, err
	}
	return s.parse(paths)
}

func (s *Service) networkURL(suid int64) string {
	return fmt.Sprintf("%s/v1/networks/%d", s.opts.baseURL(), suid)
}

func (s *Service) upload(ctx context.Context, g *graph.Graph) (int64, error) {
	resp, err := s.client.PostJSON(ctx, s.opts.baseURL()+"/v1/networks?format=json", toCyjs(g))
	if err != nil {
		return 0, connectionError(err)
	}
	if !resp.OK() {
		return 0, statusError(resp, "")
	}
	var up uploadResponse
	if err := json.Unmarshal(resp.Body, &up); err != nil {
		return 0, errors.Wrap(errors.ErrCodeAppCall, err, "Connection error to PathLinker",
			"Cytoscape did not return the SUID of the uploaded network.")
	}
	return up.NetworkSUID, nil
}

func (s *Service) run(ctx context.Context, suid int64, sources, targets extract.Queries) ([]path, error) {
	req := runRequest{
		Sources:                    strings.Join(sortedNames(sources), " "),
		Targets:                    strings.Join(sortedNames(targets), " "),
		K:                          s.opts.K,
		EdgePenalty:                s.opts.EdgePenalty,
		EdgeWeightType:             s.opts.EdgeWeightType,
		EdgeWeightColumnName:       s.opts.EdgeWeightColumn,
		TreatNetworkAsUndirected:   !s.opts.Directed,
		AllowSourcesTargetsInPaths: s.opts.AllowSourcesTargetsInPaths,
		IncludeTiedPaths:           s.opts.IncludeTiedPaths,
		SkipSubnetworkGeneration:   true,
	}
	url := fmt.Sprintf("%s/pathlinker/v1/%d/run", s.opts.baseURL(), suid)
	resp, err := s.client.PostJSON(ctx, url, req)
	if err != nil {
		return nil, connectionError(err)
	}
	var out runResponse
	_ = json.Unmarshal(resp.Body, &out)
	if !resp.OK() {
		note := "\n\nNB: PathLinker returns an error 500 when sources and targets belong to independent components of the network."
		if len(out.Errors) > 0 {
			e := out.Errors[0]
			return nil, statusError(resp, e.Message+"\n"+e.Type+"\n"+e.Link+note)
		}
		return nil, statusError(resp, note)
	}
	if out.Paths == nil {
		return nil, errors.New(errors.ErrCodeAppCall, "No data from PathLinker",
			"No data was received from Pathlinker, but connection to its CyRest interface was OK.")
	}
	return out.Paths, nil
}

// parse turns paths into a network. Consecutive nodes of a path form an
// edge, carrying the score and rank of every path it belongs to. In
// undirected mode each edge is also added reversed.
func (s *Service) parse(paths []path) (*extract.Network, error) {
	net := &extract.Network{}
	seenNodes := make(map[string]bool)
	edgeIndex := make(map[[2]string]int)
	var scores [][]float64
	var ranks [][]int

	addEdge := func(e [2]string, p path) {
		i, ok := edgeIndex[e]
		if !ok {
			i = len(net.Edges)
			edgeIndex[e] = i
			net.Edges = append(net.Edges, e)
			scores = append(scores, nil)
			ranks = append(ranks, nil)
		}
		scores[i] = append(scores[i], p.Score)
		ranks[i] = append(ranks[i], p.Rank)
	}
	for _, p := range paths {
		for _, n := range p.NodeList {
			if !seenNodes[n] {
				seenNodes[n] = true
				net.Nodes = append(net.Nodes, n)
			}
		}
		for j := 0; j+1 < len(p.NodeList); j++ {
			a, b := p.NodeList[j], p.NodeList[j+1]
			addEdge([2]string{a, b}, p)
			if !s.opts.Directed {
				addEdge([2]string{b, a}, p)
			}
		}
	}
	if err := extract.AddEdgeAttribute(net, ColScore, scores); err != nil {
		return nil, err
	}
	if err := extract.AddEdgeAttribute(net, ColRank, ranks); err != nil {
		return nil, err
	}
	return net, nil
}

func connectionError(err error) error {
	if errors.IsCancelled(err) {
		return err
	}
	return errors.Wrap(errors.ErrCodeAppCall, err, "Connection error to PathLinker",
		"PathLinker could not be reached: %v", err)
}

func statusError(resp *integrations.Response, detail string) error {
	if resp.Status == http.StatusNotFound {
		return errors.New(errors.ErrCodeAppCall, "PathLinker not found",
			"404 error. PathLinker CyRest interface was not found.\n"+
				"Please check that PathLinker is installed and running with the menu Help > Automation > CyRest API.")
	}
	return errors.New(errors.ErrCodeAppCall, "Connection error to PathLinker",
		"HTTP status code: %d\n%s", resp.Status, detail)
}

// toCyjs encodes g as a Cytoscape.js document. Node IDs are the graph
// node IDs; every non-null cell is copied as an element attribute.
func toCyjs(g *graph.Graph) cyjs {
	doc := cyjs{Data: map[string]any{"name": g.Name()}}
	nt, et := g.NodeTable(), g.EdgeTable()
	for _, n := range g.Nodes() {
		data := cells(nt, n)
		data["id"] = strconv.FormatInt(n, 10)
		data["name"] = g.NodeName(n)
		doc.Elements.Nodes = append(doc.Elements.Nodes, cyElement{Data: data})
	}
	for _, e := range g.Edges() {
		data := cells(et, e.ID)
		data["id"] = "e" + strconv.FormatInt(e.ID, 10)
		data["source"] = strconv.FormatInt(e.Source, 10)
		data["target"] = strconv.FormatInt(e.Target, 10)
		data["interaction"] = mln.Interaction(g.NodeName(e.Source), g.NodeName(e.Target))
		data["directed"] = e.Directed
		doc.Elements.Edges = append(doc.Elements.Edges, cyElement{Data: data})
	}
	return doc
}

func cells(t *graph.Table, row int64) map[string]any {
	out := make(map[string]any)
	for _, c := range t.Columns() {
		if v := t.Get(row, c.Name); v != nil {
			out[c.Name] = v
		}
	}
	return out
}

func sortedNames(q extract.Queries) []string {
	names := q.Names()
	slices.Sort(names)
	return names
}
