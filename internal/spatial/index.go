package spatial

import (
	"github.com/paulmach/orb"

	"github.com/saferoute-service/internal/domain"
)

const DefaultRadius = 75.0

// Index объединяет слои и отвечает на запросы "сколько объектов в радиусе".
// Безопасен для параллельного чтения.
type Index struct {
	layers        map[domain.LayerName]*Layer
	defaultRadius float64
}

// NewIndex строит индекс по слоям. defaultRadius <= 0 означает 75 м
func NewIndex(layers []*domain.FeatureLayer, defaultRadius float64) *Index {
	if defaultRadius <= 0 {
		defaultRadius = DefaultRadius
	}
	ix := &Index{
		layers:        make(map[domain.LayerName]*Layer, len(layers)),
		defaultRadius: defaultRadius,
	}
	for _, fl := range layers {
		if fl == nil {
			continue
		}
		ix.layers[fl.Name] = NewLayer(fl)
	}
	return ix
}

func (ix *Index) DefaultRadius() float64 {
	return ix.defaultRadius
}

// Layer возвращает слой или nil
func (ix *Index) Layer(name domain.LayerName) *Layer {
	return ix.layers[name]
}

// Sizes - число проиндексированных точек по слоям
func (ix *Index) Sizes() map[domain.LayerName]int {
	sizes := make(map[domain.LayerName]int, len(ix.layers))
	for name, l := range ix.layers {
		sizes[name] = l.Len()
	}
	return sizes
}

// CountNearby возвращает число объектов слоя, попадающих в круг радиуса
// radiusMeters вокруг точки p (lon, lat). radiusMeters <= 0 - радиус по умолчанию.
// Пустой или отсутствующий слой дает 0.
func (ix *Index) CountNearby(p orb.Point, layer domain.LayerName, radiusMeters float64) int {
	l, ok := ix.layers[layer]
	if !ok || l.Len() == 0 || !validLonLat(p) {
		return 0
	}
	if radiusMeters <= 0 {
		radiusMeters = ix.defaultRadius
	}
	return l.CountWithin(Project(p), ProjectedRadius(p[1], radiusMeters))
}
