package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/domain"
)

type nodeLinkGraph struct {
	Directed   bool           `json:"directed"`
	Multigraph bool           `json:"multigraph"`
	Nodes      []nodeLinkNode `json:"nodes"`
	Links      []nodeLinkEdge `json:"links"`
	Edges      []nodeLinkEdge `json:"edges"`
}

type nodeLinkNode struct {
	ID          interface{} `json:"id"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	StreetCount int         `json:"street_count"`
}

type nodeLinkEdge struct {
	Source   interface{} `json:"source"`
	Target   interface{} `json:"target"`
	Key      int         `json:"key"`
	OSMID    interface{} `json:"osmid"`
	Name     interface{} `json:"name"`
	Highway  interface{} `json:"highway"`
	Length   *float64    `json:"length"`
	Geometry string      `json:"geometry"`
}

// NodeLinkImporter читает граф из JSON в формате networkx node_link_data
// (экспорт osmnx; geometry - строка WKT). Реализует GraphFetcher.
type NodeLinkImporter struct {
	path   string
	logger *zap.Logger
}

func NewNodeLinkImporter(path string, logger *zap.Logger) *NodeLinkImporter {
	return &NodeLinkImporter{path: path, logger: logger}
}

func (i *NodeLinkImporter) Fetch(ctx context.Context, place string) (*domain.StreetGraph, error) {
	f, err := os.Open(i.path)
	if err != nil {
		return nil, fmt.Errorf("could not open graph file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()

	var raw nodeLinkGraph
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON from %s: %w", i.path, err)
	}

	g := domain.NewStreetGraph(place, "node-link:"+i.path)
	for _, n := range raw.Nodes {
		id, err := convertID(n.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to convert node ID (%v): %w", n.ID, err)
		}
		g.AddNode(domain.Node{ID: id, Lat: n.Y, Lon: n.X, StreetCount: n.StreetCount})
	}

	links := raw.Links
	if len(links) == 0 {
		links = raw.Edges
	}
	skippedGeometry := 0
	for _, l := range links {
		from, err := convertID(l.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to convert source ID (%v): %w", l.Source, err)
		}
		to, err := convertID(l.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to convert target ID (%v): %w", l.Target, err)
		}

		e := domain.Edge{
			From:    from,
			To:      to,
			Key:     l.Key,
			Name:    convertToString(l.Name),
			Highway: convertToString(l.Highway),
		}
		if osmID, err := convertID(firstOf(l.OSMID)); err == nil {
			e.OSMID = osmID
		}
		if l.Length != nil {
			e.Length = *l.Length
			e.HasLength = true
		}
		if l.Geometry != "" {
			ls, err := wkt.UnmarshalLineString(l.Geometry)
			if err != nil {
				skippedGeometry++
			} else {
				e.Geometry = ls
			}
		}
		e.Weight = e.BaseWeight()
		g.AddEdge(e)

		if !raw.Directed {
			rev := e
			rev.From, rev.To = to, from
			rev.Key = g.NextKey(to, from)
			if rev.Geometry != nil {
				rev.Geometry = reversed(rev.Geometry)
			}
			g.AddEdge(rev)
		}
	}

	i.logger.Info("Node-link graph imported",
		zap.String("path", i.path),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("bad_geometry", skippedGeometry),
	)
	return g, nil
}

func reversed(ls orb.LineString) orb.LineString {
	c := ls.Clone()
	c.Reverse()
	return c
}

func firstOf(v interface{}) interface{} {
	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	}
	return v
}

func convertID(id interface{}) (int64, error) {
	switch v := id.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case json.Number:
		return v.Int64()
	default:
		return 0, fmt.Errorf("unsupported ID type: %T", id)
	}
}

func convertToString(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			parts = append(parts, fmt.Sprintf("%v", e))
		}
		return strings.Join(parts, ",")
	case json.Number:
		return v.String()
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}
