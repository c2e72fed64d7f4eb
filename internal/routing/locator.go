package routing

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/quadtree"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/spatial"
)

// nearestCandidates - сколько ближайших в проекции узлов пересчитывается по сфере
const nearestCandidates = 16

type nodePoint struct {
	id int64
	p  orb.Point
	ll orb.Point
}

func (n nodePoint) Point() orb.Point { return n.p }

// Locator ищет ближайший узел графа к произвольной координате
type Locator struct {
	tree  *quadtree.Quadtree
	count int
}

// NewLocator индексирует узлы графа в проекции Web Mercator.
// Узлы добавляются по возрастанию id, поэтому результат поиска воспроизводим.
func NewLocator(g *domain.StreetGraph) *Locator {
	bound := orb.Bound{
		Min: spatial.Project(orb.Point{-180, -utils.MaxMercatorLat}),
		Max: spatial.Project(orb.Point{180, utils.MaxMercatorLat}),
	}
	l := &Locator{tree: quadtree.New(bound)}

	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		if !utils.ValidateProjectable(n.Lat, n.Lon) {
			continue
		}
		if err := l.tree.Add(nodePoint{id: id, p: spatial.Project(n.Point()), ll: n.Point()}); err == nil {
			l.count++
		}
	}
	return l
}

func (l *Locator) Len() int {
	return l.count
}

// Nearest возвращает id ближайшего узла. Кандидаты берутся из дерева в
// проекции, а побеждает минимальное расстояние по гаверсинусу: масштаб
// Mercator растет с широтой и искажает сравнение между севером и югом.
func (l *Locator) Nearest(c domain.Coordinate) (int64, error) {
	if !utils.ValidateProjectable(c.Lat, c.Lon) {
		return 0, errors.Wrap(errors.ErrInvalidCoordinate, nil,
			fmt.Sprintf("coordinate %s is out of range", c))
	}
	if l.count == 0 {
		return 0, errors.Wrap(errors.ErrInvalidCoordinate, nil,
			fmt.Sprintf("graph has no nodes to snap %s to", c))
	}

	query := orb.Point{c.Lon, c.Lat}
	found := l.tree.KNearest(nil, spatial.Project(query), nearestCandidates)
	if len(found) == 0 {
		return 0, errors.Wrap(errors.ErrInvalidCoordinate, nil,
			fmt.Sprintf("no graph node near %s", c))
	}

	best := found[0].(nodePoint)
	bestDist := geo.DistanceHaversine(best.ll, query)
	for _, p := range found[1:] {
		n := p.(nodePoint)
		d := geo.DistanceHaversine(n.ll, query)
		if d < bestDist || (d == bestDist && n.id < best.id) {
			best, bestDist = n, d
		}
	}
	return best.id, nil
}

// NearestNode - разовый поиск без сохранения индекса
func NearestNode(g *domain.StreetGraph, c domain.Coordinate) (int64, error) {
	return NewLocator(g).Nearest(c)
}
