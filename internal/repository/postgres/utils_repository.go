package postgres

import "fmt"

// Константы для геометрии
const (
	// SRID4326 - WGS84 coordinate system
	SRID4326 = 4326
	// CRS4326 - то же в виде имени CRS слоя
	CRS4326 = "EPSG:4326"
)

const featuresTable = "safety_features"

// lonLatSQL возвращает выражения lon/lat центроида геометрии в WGS84
func lonLatSQL(column string) (string, string) {
	wgs := fmt.Sprintf("ST_Centroid(ST_Transform(%s, %d))", column, SRID4326)
	return "ST_X(" + wgs + ")", "ST_Y(" + wgs + ")"
}
