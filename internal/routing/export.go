package routing

import "github.com/saferoute-service/internal/domain"

// ToCoordinates переводит маршрут в последовательность (lat, lon) в том же порядке.
// Пустой маршрут дает пустой срез.
func ToCoordinates(g *domain.StreetGraph, route domain.Route) []domain.Coordinate {
	coords := make([]domain.Coordinate, 0, len(route.Nodes))
	for _, id := range route.Nodes {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		coords = append(coords, domain.Coordinate{Lat: n.Lat, Lon: n.Lon})
	}
	return coords
}
