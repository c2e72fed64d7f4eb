package routing

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
)

// ShortestPath ищет путь минимальной стоимости по полю Weight (Dijkstra).
// При равной стоимости первым извлекается узел с меньшим id, так что
// для одного и того же графа путь всегда одинаковый.
func ShortestPath(g *domain.StreetGraph, src, dst int64) (domain.Route, error) {
	if !g.HasNode(src) {
		return domain.Route{}, errors.Wrap(errors.ErrInvalidCoordinate, nil,
			fmt.Sprintf("source node %d is not in the graph", src))
	}
	if !g.HasNode(dst) {
		return domain.Route{}, errors.Wrap(errors.ErrInvalidCoordinate, nil,
			fmt.Sprintf("destination node %d is not in the graph", dst))
	}
	if src == dst {
		return domain.Route{Nodes: []int64{src}}, nil
	}

	dist := map[int64]float64{src: 0}
	cameFrom := make(map[int64]int64)
	closed := make(map[int64]bool)

	pq := &priorityQueue{}
	heap.Push(pq, &pqItem{node: src, priority: 0})

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		current := item.node
		if closed[current] {
			continue
		}
		closed[current] = true

		if current == dst {
			return domain.Route{
				Nodes: reconstructPath(cameFrom, current),
				Cost:  dist[current],
			}, nil
		}

		for _, idx := range g.OutEdges(current) {
			e := g.Edges[idx]
			if e.Weight < 0 || math.IsNaN(e.Weight) {
				return domain.Route{}, errors.Wrap(errors.ErrInternalServer, nil,
					fmt.Sprintf("edge %d->%d has invalid weight %v", e.From, e.To, e.Weight))
			}
			if closed[e.To] {
				continue
			}
			tentative := dist[current] + e.Weight
			if old, ok := dist[e.To]; !ok || tentative < old {
				dist[e.To] = tentative
				cameFrom[e.To] = current
				heap.Push(pq, &pqItem{node: e.To, priority: tentative})
			}
		}
	}

	return domain.Route{}, errors.Wrap(errors.ErrNoPath, nil,
		fmt.Sprintf("no path found from %d to %d", src, dst))
}

// PathLength - длина маршрута в метрах по самым дешевым ребрам между соседними узлами
func PathLength(g *domain.StreetGraph, route domain.Route) float64 {
	total := 0.0
	for i := 0; i+1 < len(route.Nodes); i++ {
		if e, ok := cheapestEdge(g, route.Nodes[i], route.Nodes[i+1]); ok && e.HasLength {
			total += e.Length
		}
	}
	return total
}

func cheapestEdge(g *domain.StreetGraph, from, to int64) (domain.Edge, bool) {
	var best domain.Edge
	found := false
	for _, idx := range g.OutEdges(from) {
		e := g.Edges[idx]
		if e.To != to {
			continue
		}
		if !found || e.Weight < best.Weight {
			best = e
			found = true
		}
	}
	return best, found
}

func reconstructPath(cameFrom map[int64]int64, current int64) []int64 {
	var path []int64
	for {
		path = append(path, current)
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		current = prev
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type pqItem struct {
	node     int64
	priority float64
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].node < pq[j].node
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*pqItem)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}
