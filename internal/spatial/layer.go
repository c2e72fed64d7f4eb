package spatial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/quadtree"

	"github.com/saferoute-service/internal/domain"
)

// Layer - проиндексированный слой точек в проекции Web Mercator.
// Дерево строится один раз и дальше только читается.
type Layer struct {
	name    domain.LayerName
	tree    *quadtree.Quadtree
	size    int
	skipped int
}

// NewLayer проецирует точки слоя и строит quadtree.
// Точки, которые нельзя спроецировать, пропускаются.
func NewLayer(fl *domain.FeatureLayer) *Layer {
	l := &Layer{tree: quadtree.New(worldBound)}
	if fl == nil {
		return l
	}
	l.name = fl.Name

	for _, p := range fl.Points {
		if !validLonLat(p) {
			l.skipped++
			continue
		}
		if err := l.tree.Add(Project(p)); err != nil {
			l.skipped++
			continue
		}
		l.size++
	}
	return l
}

func (l *Layer) Name() domain.LayerName { return l.name }
func (l *Layer) Len() int               { return l.size }
func (l *Layer) Skipped() int           { return l.skipped }

// CountWithin считает точки слоя на расстоянии не больше radius от center.
// center и radius заданы в единицах проекции.
func (l *Layer) CountWithin(center orb.Point, radius float64) int {
	if l == nil || l.size == 0 || radius <= 0 {
		return 0
	}

	b := orb.Bound{
		Min: orb.Point{center[0] - radius, center[1] - radius},
		Max: orb.Point{center[0] + radius, center[1] + radius},
	}
	r2 := radius * radius
	found := l.tree.InBoundMatching(nil, b, func(p orb.Pointer) bool {
		return planar.DistanceSquared(p.Point(), center) <= r2
	})
	return len(found)
}

func validLonLat(p orb.Point) bool {
	return p[0] >= -180 && p[0] <= 180 && p[1] >= -90 && p[1] <= 90
}
