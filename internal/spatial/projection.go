package spatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// CRS - общая метрическая система координат для всех слоев
const CRS = "EPSG:3857"

// граница мира в Web Mercator
var worldBound = orb.Bound{
	Min: orb.Point{-orb.EarthRadius * math.Pi, -orb.EarthRadius * math.Pi},
	Max: orb.Point{orb.EarthRadius * math.Pi, orb.EarthRadius * math.Pi},
}

// Project переводит точку WGS84 (lon, lat) в Web Mercator
func Project(p orb.Point) orb.Point {
	return project.Point(p, project.WGS84.ToMercator)
}

// ProjectedRadius переводит радиус в метрах на местности в единицы проекции.
// Масштаб Web Mercator растет с широтой как 1/cos(lat).
func ProjectedRadius(lat, meters float64) float64 {
	if lat < -90 || lat > 90 || math.IsNaN(lat) {
		return 0
	}
	return meters * project.MercatorScaleFactor(orb.Point{0, lat})
}
