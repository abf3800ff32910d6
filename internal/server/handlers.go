package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/timenexus/timenexus/pkg/errors"
	"github.com/timenexus/timenexus/pkg/extract"
	"github.com/timenexus/timenexus/pkg/graph"
	tnio "github.com/timenexus/timenexus/pkg/io"
	"github.com/timenexus/timenexus/pkg/mln"
	"github.com/timenexus/timenexus/pkg/mln/transform"
	"github.com/timenexus/timenexus/pkg/pipeline"
	"github.com/timenexus/timenexus/pkg/session"
)

// createRequest builds a collection from a definition with inline tables,
// or imports a flattened graph document.
type createRequest struct {
	Name       string           `json:"name"`
	Definition *tnio.Definition `json:"definition,omitempty"`
	Graph      json.RawMessage  `json:"graph,omitempty"`
}

// extractRequest runs an extraction on a collection of the session.
type extractRequest struct {
	// Collection defaults to the collection the session was created with.
	Collection   string         `json:"collection"`
	Service      string         `json:"service"`
	Strategy     string         `json:"strategy"`
	Layers       []int          `json:"layers"`
	QueryColumns map[int]string `json:"query_columns"`
	SkipChecks   bool           `json:"skip_checks"`
	Refresh      bool           `json:"refresh"`
}

type collectionInfo struct {
	Name   string `json:"name"`
	Layers []int  `json:"layers"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

type sessionInfo struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Collections []collectionInfo `json:"collections"`
}

type warningInfo struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type extractResponse struct {
	Session    string         `json:"session"`
	Collection collectionInfo `json:"collection"`
	Warnings   []warningInfo  `json:"warnings"`
}

func describe(c *mln.Collection) collectionInfo {
	return collectionInfo{
		Name:   c.Name,
		Layers: c.LayerIDs(),
		Nodes:  c.Flattened.NodeCount(),
		Edges:  c.Flattened.EdgeCount(),
	}
}

// createCollection handles POST /v1/collections.
func (s *Server) createCollection(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if !s.decode(w, r, &req) {
		return
	}
	c, err := buildCollection(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess := session.New(c.Name, s.SessionTTL)
	if err := sess.Put(c); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}
	s.Logger.Info("created collection", "session", sess.ID, "name", c.Name,
		"nodes", c.Flattened.NodeCount(), "edges", c.Flattened.EdgeCount())
	writeJSON(w, http.StatusCreated, sessionInfo{
		ID:          sess.ID,
		Name:        sess.Name,
		Collections: []collectionInfo{describe(c)},
	})
}

func buildCollection(req createRequest) (*mln.Collection, error) {
	switch {
	case req.Definition != nil && len(req.Graph) > 0:
		return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid request",
			"Give either a definition or a graph, not both.")
	case req.Definition != nil:
		d := req.Definition
		if req.Name != "" {
			d.Name = req.Name
		}
		if d.Name == "" {
			d.Name = "Network"
		}
		if err := d.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid definition", "%v", err)
		}
		for _, sheets := range [][]tnio.SheetDef{d.Nodes, d.Intra, d.Inter} {
			for _, sd := range sheets {
				if sd.File != "" {
					return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid definition",
						"Tables must be given inline: the file %q cannot be read.", sd.File)
				}
			}
		}
		return tnio.Build(d, "")
	case len(req.Graph) > 0:
		g, err := graph.UnmarshalGraph(req.Graph)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid graph", "%v", err)
		}
		c, err := transform.ImportFlattened(g)
		if err != nil {
			return nil, err
		}
		if req.Name != "" {
			c.Name = req.Name
		}
		return c, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid request", "A definition or a graph is required.")
}

// getCollection handles GET /v1/collections/{id}.
func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	info := sessionInfo{ID: sess.ID, Name: sess.Name, Collections: []collectionInfo{}}
	for _, name := range sess.Names() {
		c, err := sess.Collection(name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		info.Collections = append(info.Collections, describe(c))
	}
	writeJSON(w, http.StatusOK, info)
}

// deleteCollection handles DELETE /v1/collections/{id}.
func (s *Server) deleteCollection(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getGraph handles GET /v1/collections/{id}/graph?collection=name.
func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	data, ok := sess.Graphs[collectionName(r.URL.Query().Get("collection"), sess)]
	if !ok {
		s.writeError(w, session.ErrNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// extract handles POST /v1/collections/{id}/extract. The extracted
// collection is added to the session.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req extractRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Service == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "Invalid request", "A service is required."))
		return
	}
	c, err := sess.Collection(collectionName(req.Collection, sess))
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.Runner.Execute(r.Context(), pipeline.Options{
		Collection:   c,
		Service:      req.Service,
		Strategy:     req.Strategy,
		Layers:       req.Layers,
		QueryColumns: req.QueryColumns,
		SkipChecks:   req.SkipChecks,
		Refresh:      req.Refresh,
		Logger:       s.Logger.With("session", sess.ID),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := res.Output
	defer out.Unregister(s.Runner.Store)

	if err := sess.Put(out); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}
	resp := extractResponse{Session: sess.ID, Collection: describe(out), Warnings: []warningInfo{}}
	for _, warn := range res.Extraction.Warnings {
		resp.Warnings = append(resp.Warnings, warningInfo{Title: warn.Title, Message: warn.Message})
	}
	writeJSON(w, http.StatusOK, resp)
}

// view handles GET /v1/collections/{id}/view.svg?collection=name&layers=1,2.
func (s *Server) view(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	layers, err := parseLayers(q.Get("layers"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	c, err := sess.Collection(collectionName(q.Get("collection"), sess))
	if err != nil {
		s.writeError(w, err)
		return
	}
	artifacts, err := pipeline.Render(r.Context(), c, pipeline.Options{
		Formats:    []string{pipeline.FormatSVG},
		ViewLayers: layers,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[pipeline.FormatSVG])
}

// session loads the session named by the URL, writing a 404 when it does
// not exist.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err == nil && sess == nil {
		err = session.ErrNotFound
	}
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody())
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid request", "invalid JSON body: %v", err))
		return false
	}
	return true
}

func (s *Server) maxBody() int64 {
	if s.Config.MaxBodyBytes > 0 {
		return s.Config.MaxBodyBytes
	}
	return 32 << 20
}

func collectionName(name string, sess *session.Session) string {
	if name != "" {
		return name
	}
	if _, ok := sess.Graphs[sess.Name]; ok {
		return sess.Name
	}
	return extract.ExtractedName
}

func parseLayers(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		k, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || k < 1 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid request",
				"Layers must be a comma-separated list of layer IDs, got %q.", s)
		}
		out = append(out, k)
	}
	return out, nil
}
