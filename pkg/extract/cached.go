package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/timenexus/timenexus/pkg/cache"
	"github.com/timenexus/timenexus/pkg/graph"
	"github.com/timenexus/timenexus/pkg/mln"
)

// Parameterized is implemented by services whose settings change their
// results. The settings are part of the cache key.
type Parameterized interface {
	Params() map[string]any
}

// Cached is a Service that remembers the networks returned by another
// service. Entries are keyed by the serialized slice, the queries and
// the service settings. Cache failures are logged and never fail an
// extraction.
type Cached struct {
	Service Service
	Cache   cache.Cache
	Keyer   cache.Keyer
	TTL     time.Duration
	Logger  *log.Logger
}

// NewCached wraps s with c and the default keyer.
func NewCached(s Service, c cache.Cache, ttl time.Duration) *Cached {
	return &Cached{Service: s, Cache: c, Keyer: cache.NewDefaultKeyer(), TTL: ttl, Logger: log.Default()}
}

// Name implements Service.
func (c *Cached) Name() string { return c.Service.Name() }

// CheckPreconditions implements Service.
func (c *Cached) CheckPreconditions(ctx context.Context, g *graph.Graph) (string, error) {
	return c.Service.CheckPreconditions(ctx, g)
}

// Extract implements Service.
func (c *Cached) Extract(ctx context.Context, g *graph.Graph, sources, targets Queries) (*Network, error) {
	key, err := c.key(g, sources, targets)
	if err != nil {
		c.Logger.Warn("Extraction not cached", "err", err)
		return c.Service.Extract(ctx, g, sources, targets)
	}
	if data, ok, err := c.Cache.Get(ctx, key); err != nil {
		c.Logger.Warn("Cache read failed", "err", err)
	} else if ok {
		net, err := DecodeNetwork(data)
		if err == nil {
			c.Logger.Debug("Extraction cache hit", "service", c.Name())
			return net, nil
		}
		c.Logger.Warn("Dropping unreadable cache entry", "err", err)
		_ = c.Cache.Delete(ctx, key)
	}

	net, err := c.Service.Extract(ctx, g, sources, targets)
	if err != nil || net == nil {
		return net, err
	}
	data, err := EncodeNetwork(net)
	if err == nil {
		err = c.Cache.Set(ctx, key, data, c.TTL)
	}
	if err != nil {
		c.Logger.Warn("Cache write failed", "err", err)
	}
	return net, nil
}

func (c *Cached) key(g *graph.Graph, sources, targets Queries) (string, error) {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return "", err
	}
	opts := cache.ExtractionKeyOpts{Sources: queryKeys(sources), Targets: queryKeys(targets)}
	if p, ok := c.Service.(Parameterized); ok {
		opts.Params = p.Params()
	}
	return c.Keyer.ExtractionKey(c.Name(), cache.Hash(data), opts), nil
}

// queryKeys lists queries as "name=value" so that values are part of
// the key.
func queryKeys(q Queries) []string {
	out := make([]string, 0, len(q))
	for name, v := range q {
		out = append(out, name+"="+v)
	}
	return out
}

type networkDoc struct {
	Nodes     []string       `json:"nodes"`
	Edges     [][2]string    `json:"edges"`
	NodeAttrs []attributeDoc `json:"node_attributes,omitempty"`
	EdgeAttrs []attributeDoc `json:"edge_attributes,omitempty"`
}

type attributeDoc struct {
	Name   string          `json:"name"`
	Type   string          `json:"type"`
	List   bool            `json:"list,omitempty"`
	Values json.RawMessage `json:"values"`
}

// EncodeNetwork serializes n as JSON, keeping attribute types.
func EncodeNetwork(n *Network) ([]byte, error) {
	doc := networkDoc{Nodes: n.Nodes, Edges: n.Edges}
	var err error
	if doc.NodeAttrs, err = encodeAttributes(n.nodeAttrs); err != nil {
		return nil, err
	}
	if doc.EdgeAttrs, err = encodeAttributes(n.edgeAttrs); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func encodeAttributes(cols []mln.AnyColumn) ([]attributeDoc, error) {
	var out []attributeDoc
	for _, c := range cols {
		values := make([]any, c.Len())
		for i := range values {
			values[i] = c.At(i)
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", c.ColumnName(), err)
		}
		t := c.ColumnType()
		out = append(out, attributeDoc{Name: c.ColumnName(), Type: t.Elem.String(), List: t.List, Values: raw})
	}
	return out, nil
}

// DecodeNetwork reads a network written by EncodeNetwork.
func DecodeNetwork(data []byte) (*Network, error) {
	var doc networkDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	n := &Network{Nodes: doc.Nodes, Edges: doc.Edges}
	var err error
	if n.nodeAttrs, err = decodeAttributes(doc.NodeAttrs); err != nil {
		return nil, err
	}
	if n.edgeAttrs, err = decodeAttributes(doc.EdgeAttrs); err != nil {
		return nil, err
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeAttributes(docs []attributeDoc) ([]mln.AnyColumn, error) {
	var out []mln.AnyColumn
	for _, d := range docs {
		elem, err := graph.ParseType(d.Type)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", d.Name, err)
		}
		var col mln.AnyColumn
		switch {
		case elem == graph.String && !d.List:
			col, err = decodeColumn[string](d)
		case elem == graph.Double && !d.List:
			col, err = decodeColumn[float64](d)
		case elem == graph.Int && !d.List:
			col, err = decodeColumn[int](d)
		case elem == graph.Bool && !d.List:
			col, err = decodeColumn[bool](d)
		case elem == graph.String:
			col, err = decodeColumn[[]string](d)
		case elem == graph.Double:
			col, err = decodeColumn[[]float64](d)
		case elem == graph.Int:
			col, err = decodeColumn[[]int](d)
		default:
			col, err = decodeColumn[[]bool](d)
		}
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", d.Name, err)
		}
		out = append(out, col)
	}
	return out, nil
}

func decodeColumn[E mln.Value](d attributeDoc) (mln.AnyColumn, error) {
	var values []E
	if err := json.Unmarshal(d.Values, &values); err != nil {
		return nil, err
	}
	return mln.NewColumn(d.Name, values), nil
}
