package geojson

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
)

const crsWGS84 = "EPSG:4326"

// FeatureRepository читает слои из GeoJSON файлов в каталоге
type FeatureRepository struct {
	dir    string
	files  map[string]string
	logger *zap.Logger
}

// NewFeatureRepository: files - имя слоя -> имя файла относительно dir
func NewFeatureRepository(dir string, files map[string]string, logger *zap.Logger) *FeatureRepository {
	return &FeatureRepository{dir: dir, files: files, logger: logger}
}

func (r *FeatureRepository) Path(layer domain.LayerName) string {
	name, ok := r.files[string(layer)]
	if !ok || name == "" {
		name = string(layer) + ".geojson"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(r.dir, name)
}

// Load читает слой. Точки берутся как есть, прочие геометрии заменяются центроидом.
func (r *FeatureRepository) Load(ctx context.Context, layer domain.LayerName) (*domain.FeatureLayer, error) {
	path := r.Path(layer)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDataLoad, err,
			fmt.Sprintf("failed to read %s layer from %s", layer, path))
	}
	return r.parse(layer, path, data)
}

func (r *FeatureRepository) parse(layer domain.LayerName, path string, data []byte) (*domain.FeatureLayer, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDataLoad, err,
			fmt.Sprintf("failed to parse %s layer from %s", layer, path))
	}

	var toWGS84 orb.Projection
	switch name := crsName(fc.ExtraMembers); {
	case name == "" || isWGS84(name):
	case isWebMercator(name):
		toWGS84 = project.Mercator.ToWGS84
	default:
		return nil, errors.Wrap(errors.ErrDataLoad, nil,
			fmt.Sprintf("%s layer uses unsupported CRS %s", layer, name))
	}

	fl := &domain.FeatureLayer{Name: layer, CRS: crsWGS84}
	skipped := 0
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			skipped++
			continue
		}
		switch g := f.Geometry.(type) {
		case orb.Point:
			fl.Points = append(fl.Points, g)
		case orb.MultiPoint:
			fl.Points = append(fl.Points, g...)
		default:
			c, _ := planar.CentroidArea(g)
			fl.Points = append(fl.Points, c)
		}
	}

	if toWGS84 != nil {
		for i, p := range fl.Points {
			fl.Points[i] = toWGS84(p)
		}
	}

	r.logger.Info("Feature layer loaded",
		zap.String("layer", string(layer)),
		zap.String("path", path),
		zap.Int("points", len(fl.Points)),
		zap.Int("skipped", skipped),
		zap.Bool("reprojected", toWGS84 != nil),
	)
	return fl, nil
}

// crsName достает имя из устаревшего члена "crs" (GeoJSON 2008)
func crsName(extra geojson.Properties) string {
	raw, ok := extra["crs"].(map[string]interface{})
	if !ok {
		return ""
	}
	props, ok := raw["properties"].(map[string]interface{})
	if !ok {
		return ""
	}
	name, _ := props["name"].(string)
	return name
}

func isWGS84(name string) bool {
	n := strings.ToUpper(name)
	return strings.HasSuffix(n, "CRS84") || strings.HasSuffix(n, "EPSG::4326") || n == crsWGS84
}

// isWebMercator узнает EPSG:3857 и его старые коды 900913 и 102100
func isWebMercator(name string) bool {
	n := strings.ToUpper(name)
	for _, code := range []string{"3857", "900913", "102100"} {
		if strings.HasSuffix(n, ":"+code) {
			return true
		}
	}
	return false
}
