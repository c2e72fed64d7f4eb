package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// LayerName - имя слоя объектов, влияющих на безопасность
type LayerName string

const (
	LayerCrime    LayerName = "crime"
	LayerCCTV     LayerName = "cctv"
	LayerLighting LayerName = "lighting"
	LayerVenue    LayerName = "venue"
	LayerPolice   LayerName = "police"
)

// AllLayers - все слои в фиксированном порядке
var AllLayers = []LayerName{
	LayerCrime,
	LayerCCTV,
	LayerLighting,
	LayerVenue,
	LayerPolice,
}

// ParseLayerName проверяет имя слоя
func ParseLayerName(s string) (LayerName, error) {
	for _, l := range AllLayers {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown feature layer %q", s)
}

// FeatureLayer - неизменяемый набор точек в WGS84 (lon, lat)
type FeatureLayer struct {
	Name   LayerName
	CRS    string
	Points []orb.Point
}

func (l *FeatureLayer) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Points)
}
