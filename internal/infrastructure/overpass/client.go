package overpass

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/domain/repository"
	"github.com/saferoute-service/internal/pkg/errors"
	"go.uber.org/zap"
)

// walkFilter - пути OSM, по которым можно пройти пешком
const walkFilter = `["highway"]["area"!~"yes"]` +
	`["highway"!~"abandoned|bus_guideway|construction|cycleway|motor|no|planned|platform|proposed|raceway|razed"]` +
	`["foot"!~"no"]["service"!~"private"]["access"!~"private"]`

type client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewClient создает клиент Overpass API, который строит пешеходный граф по названию места
func NewClient(cfg *config.GraphConfig, logger *zap.Logger) repository.GraphFetcher {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.OverpassTimeout + 10*time.Second,
		},
		baseURL: cfg.OverpassURL,
		timeout: cfg.OverpassTimeout,
		logger:  logger,
	}
}

// Query возвращает запрос Overpass QL для места.
// Используется первая часть названия до запятой ("Bangalore, India" -> "Bangalore").
func Query(place string, timeout time.Duration) string {
	name := strings.TrimSpace(strings.Split(place, ",")[0])
	name = strings.ReplaceAll(name, `"`, `\"`)

	seconds := int(timeout.Seconds())
	if seconds <= 0 {
		seconds = 180
	}

	return fmt.Sprintf(`[out:xml][timeout:%d];
area["name"="%s"]["boundary"="administrative"]->.searchArea;
way%s(area.searchArea);
(._;>;);
out body;`, seconds, name, walkFilter)
}

// Fetch скачивает пути и узлы OSM и собирает из них граф улиц
func (c *client) Fetch(ctx context.Context, place string) (*domain.StreetGraph, error) {
	query := Query(place, c.timeout)

	c.logger.Info("Downloading street network from Overpass",
		zap.String("place", place),
		zap.String("url", c.baseURL))

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, errors.Wrap(errors.ErrDataLoad, err, "overpass request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Overpass API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, errors.Wrap(errors.ErrDataLoad, nil,
			fmt.Sprintf("overpass API error: status %d", resp.StatusCode))
	}

	var data osm.OSM
	if err := xml.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, errors.Wrap(errors.ErrDataLoad, err, "failed to decode overpass response")
	}

	g := BuildGraph(place, &data)
	if g.NodeCount() == 0 {
		return nil, errors.Wrap(errors.ErrDataLoad, nil,
			fmt.Sprintf("no walkable streets found for %q", place))
	}

	c.logger.Info("Street network downloaded",
		zap.String("place", place),
		zap.Int("ways", len(data.Ways)),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()))

	return g, nil
}

// BuildGraph режет пути OSM на перекрестках и концах и добавляет ребра в обе стороны.
// Узлы пути без координат пропускаются.
func BuildGraph(place string, data *osm.OSM) *domain.StreetGraph {
	g := domain.NewStreetGraph(place, "overpass")

	coords := make(map[osm.NodeID]orb.Point, len(data.Nodes))
	for _, n := range data.Nodes {
		coords[n.ID] = orb.Point{n.Lon, n.Lat}
	}

	// сколько раз узел встречается в путях; >1 - перекресток
	uses := make(map[osm.NodeID]int)
	ways := make([][]osm.NodeID, 0, len(data.Ways))
	for _, w := range data.Ways {
		ids := make([]osm.NodeID, 0, len(w.Nodes))
		for _, wn := range w.Nodes {
			if _, ok := coords[wn.ID]; ok {
				ids = append(ids, wn.ID)
			}
		}
		ways = append(ways, ids)
		if len(ids) < 2 {
			continue
		}
		for _, id := range ids {
			uses[id]++
		}
	}

	degree := make(map[int64]int)
	for wi, w := range data.Ways {
		ids := ways[wi]
		if len(ids) < 2 {
			continue
		}

		start := 0
		for i := 1; i < len(ids); i++ {
			if i != len(ids)-1 && uses[ids[i]] < 2 {
				continue
			}
			addSegment(g, w, ids[start:i+1], coords)
			degree[int64(ids[start])]++
			degree[int64(ids[i])]++
			start = i
		}
	}

	for i := range g.Nodes {
		g.Nodes[i].StreetCount = degree[g.Nodes[i].ID]
	}
	return g
}

func addSegment(g *domain.StreetGraph, w *osm.Way, ids []osm.NodeID, coords map[osm.NodeID]orb.Point) {
	ls := make(orb.LineString, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, coords[id])
	}

	var length float64
	for i := 1; i < len(ls); i++ {
		length += geo.DistanceHaversine(ls[i-1], ls[i])
	}

	from, to := int64(ids[0]), int64(ids[len(ids)-1])
	for _, id := range []int64{from, to} {
		if !g.HasNode(id) {
			p := coords[osm.NodeID(id)]
			g.AddNode(domain.Node{ID: id, Lat: p.Lat(), Lon: p.Lon()})
		}
	}

	edge := domain.Edge{
		OSMID:     int64(w.ID),
		Name:      w.Tags.Find("name"),
		Highway:   w.Tags.Find("highway"),
		Length:    length,
		HasLength: true,
		Weight:    length,
	}

	forward := edge
	forward.From, forward.To = from, to
	forward.Key = g.NextKey(from, to)
	forward.Geometry = ls
	g.AddEdge(forward)

	backward := edge
	backward.From, backward.To = to, from
	backward.Key = g.NextKey(to, from)
	backward.Geometry = ls.Clone()
	backward.Geometry.Reverse()
	g.AddEdge(backward)
}
