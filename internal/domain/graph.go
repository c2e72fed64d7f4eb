package domain

import (
	"sort"
	"time"

	"github.com/paulmach/orb"
)

// Node - узел пешеходной сети (перекресток или конец улицы)
type Node struct {
	ID          int64   `json:"id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	StreetCount int     `json:"street_count,omitempty"`
}

// Point возвращает координату узла в порядке orb (lon, lat)
func (n Node) Point() orb.Point {
	return orb.Point{n.Lon, n.Lat}
}

// Edge - направленное ребро мультиграфа.
// Weight - стоимость, по которой ищется маршрут.
type Edge struct {
	From      int64          `json:"from"`
	To        int64          `json:"to"`
	Key       int            `json:"key"`
	OSMID     int64          `json:"osm_id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Highway   string         `json:"highway,omitempty"`
	Geometry  orb.LineString `json:"-"`
	Length    float64        `json:"length"`
	HasLength bool           `json:"has_length"`
	Weight    float64        `json:"weight"`
}

// Weighable сообщает, можно ли пересчитать стоимость ребра
func (e Edge) Weighable() bool {
	return len(e.Geometry) > 0 && e.HasLength
}

// BaseWeight - исходный вес ребра до учета безопасности
func (e Edge) BaseWeight() float64 {
	if e.HasLength {
		return e.Length
	}
	return 1
}

// StreetGraph - направленный мультиграф улиц.
// Индексы смежности не сериализуются и восстанавливаются через Reindex.
type StreetGraph struct {
	Place     string
	Source    string
	CreatedAt time.Time
	Nodes     []Node
	Edges     []Edge

	nodeIndex map[int64]int
	out       map[int64][]int
}

func NewStreetGraph(place, source string) *StreetGraph {
	return &StreetGraph{
		Place:     place,
		Source:    source,
		CreatedAt: time.Now().UTC(),
		nodeIndex: make(map[int64]int),
		out:       make(map[int64][]int),
	}
}

// AddNode добавляет узел или обновляет существующий
func (g *StreetGraph) AddNode(n Node) {
	g.ensureIndex()
	if i, ok := g.nodeIndex[n.ID]; ok {
		g.Nodes[i] = n
		return
	}
	g.nodeIndex[n.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
}

// AddEdge добавляет ребро и возвращает его позицию
func (g *StreetGraph) AddEdge(e Edge) int {
	g.ensureIndex()
	idx := len(g.Edges)
	g.Edges = append(g.Edges, e)
	g.out[e.From] = append(g.out[e.From], idx)
	return idx
}

func (g *StreetGraph) Node(id int64) (Node, bool) {
	g.ensureIndex()
	i, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

func (g *StreetGraph) HasNode(id int64) bool {
	_, ok := g.Node(id)
	return ok
}

// OutEdges возвращает позиции исходящих ребер узла
func (g *StreetGraph) OutEdges(id int64) []int {
	g.ensureIndex()
	return g.out[id]
}

// NextKey - первый свободный ключ для параллельного ребра from->to
func (g *StreetGraph) NextKey(from, to int64) int {
	key := 0
	for _, idx := range g.OutEdges(from) {
		if e := g.Edges[idx]; e.To == to && e.Key >= key {
			key = e.Key + 1
		}
	}
	return key
}

func (g *StreetGraph) NodeCount() int { return len(g.Nodes) }
func (g *StreetGraph) EdgeCount() int { return len(g.Edges) }

// NodeIDs возвращает идентификаторы узлов по возрастанию
func (g *StreetGraph) NodeIDs() []int64 {
	ids := make([]int64, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Reindex пересобирает индексы после декодирования
func (g *StreetGraph) Reindex() {
	g.nodeIndex = make(map[int64]int, len(g.Nodes))
	for i, n := range g.Nodes {
		g.nodeIndex[n.ID] = i
	}
	g.out = make(map[int64][]int, len(g.Nodes))
	for i, e := range g.Edges {
		g.out[e.From] = append(g.out[e.From], i)
	}
}

func (g *StreetGraph) ensureIndex() {
	if g.nodeIndex == nil || g.out == nil {
		g.Reindex()
	}
}

// Clone делает полную структурную копию графа: геометрия и индексы не разделяются
func (g *StreetGraph) Clone() *StreetGraph {
	c := &StreetGraph{
		Place:     g.Place,
		Source:    g.Source,
		CreatedAt: g.CreatedAt,
		Nodes:     make([]Node, len(g.Nodes)),
		Edges:     make([]Edge, len(g.Edges)),
	}
	copy(c.Nodes, g.Nodes)
	for i, e := range g.Edges {
		if e.Geometry != nil {
			e.Geometry = e.Geometry.Clone()
		}
		c.Edges[i] = e
	}
	c.Reindex()
	return c
}
