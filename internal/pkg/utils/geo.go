package utils

import "math"

const earthRadiusKm = 6371.0

// Web Mercator не определена за этой широтой
const MaxMercatorLat = 85.05112878

// HaversineDistance вычисляет расстояние между двумя точками в километрах
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	lat1Rad := lat1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateProjectable проверяет, что точку можно перевести в Web Mercator
func ValidateProjectable(lat, lon float64) bool {
	return ValidateCoordinates(lat, lon) && math.Abs(lat) <= MaxMercatorLat
}

// ValidateRadius проверяет валидность радиуса поиска объектов (1 м - 5 км)
func ValidateRadius(radiusMeters float64) bool {
	return radiusMeters >= 1 && radiusMeters <= 5000
}
