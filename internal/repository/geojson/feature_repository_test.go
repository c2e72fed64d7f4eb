package geojson

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
)

const crimes = `{
  "type": "FeatureCollection",
  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:OGC:1.3:CRS84"}},
  "features": [
    {"type": "Feature", "properties": {"kind": "theft"}, "geometry": {"type": "Point", "coordinates": [77.5531, 12.9931]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "MultiPoint", "coordinates": [[77.1, 12.1], [77.2, 12.2]]}},
    {"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [2, 0], [2, 2], [0, 2], [0, 0]]]}},
    {"type": "Feature", "properties": {}, "geometry": null}
  ]
}`

func writeLayer(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestFeatureRepository_Load(t *testing.T) {
	dir := t.TempDir()
	writeLayer(t, dir, "crimes.geojson", crimes)
	repo := NewFeatureRepository(dir, map[string]string{"crime": "crimes.geojson"}, zap.NewNop())

	layer, err := repo.Load(context.Background(), domain.LayerCrime)
	require.NoError(t, err)

	assert.Equal(t, domain.LayerCrime, layer.Name)
	assert.Equal(t, "EPSG:4326", layer.CRS)
	require.Len(t, layer.Points, 4)
	assert.Equal(t, orb.Point{77.5531, 12.9931}, layer.Points[0])
	assert.Equal(t, orb.Point{77.2, 12.2}, layer.Points[2])
	// полигон заменяется центроидом
	assert.InDelta(t, 1.0, layer.Points[3][0], 1e-9)
	assert.InDelta(t, 1.0, layer.Points[3][1], 1e-9)
}

func TestFeatureRepository_ReprojectsWebMercator(t *testing.T) {
	want := orb.Point{77.5531, 12.9931}
	m := project.WGS84.ToMercator(want)

	dir := t.TempDir()
	writeLayer(t, dir, "lights.geojson", fmt.Sprintf(`{
	  "type": "FeatureCollection",
	  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::3857"}},
	  "features": [
	    {"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [%f, %f]}}
	  ]}`, m[0], m[1]))
	repo := NewFeatureRepository(dir, map[string]string{"lighting": "lights.geojson"}, zap.NewNop())

	layer, err := repo.Load(context.Background(), domain.LayerLighting)
	require.NoError(t, err)

	assert.Equal(t, "EPSG:4326", layer.CRS)
	require.Len(t, layer.Points, 1)
	assert.InDelta(t, want[0], layer.Points[0][0], 1e-6)
	assert.InDelta(t, want[1], layer.Points[0][1], 1e-6)
}

func TestIsWebMercator(t *testing.T) {
	assert.True(t, isWebMercator("EPSG:3857"))
	assert.True(t, isWebMercator("urn:ogc:def:crs:EPSG::3857"))
	assert.True(t, isWebMercator("EPSG:900913"))
	assert.False(t, isWebMercator("urn:ogc:def:crs:EPSG::26918"))
	assert.False(t, isWebMercator("EPSG:4326"))
}

func TestFeatureRepository_EmptyLayer(t *testing.T) {
	dir := t.TempDir()
	writeLayer(t, dir, "cctv.geojson", `{"type": "FeatureCollection", "features": []}`)
	repo := NewFeatureRepository(dir, nil, zap.NewNop())

	layer, err := repo.Load(context.Background(), domain.LayerCCTV)
	require.NoError(t, err)
	assert.Equal(t, 0, layer.Len())
}

func TestFeatureRepository_Errors(t *testing.T) {
	dir := t.TempDir()
	writeLayer(t, dir, "police.geojson", `{"type": "Feature"}`)
	writeLayer(t, dir, "venue.geojson", `{"type": "FeatureCollection", "features": [],
	  "crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::26918"}}}`)
	repo := NewFeatureRepository(dir, map[string]string{}, zap.NewNop())

	tests := []domain.LayerName{domain.LayerLighting, domain.LayerPolice, domain.LayerVenue}
	for _, layer := range tests {
		t.Run(string(layer), func(t *testing.T) {
			_, err := repo.Load(context.Background(), layer)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrDataLoad)
		})
	}
}

func TestFeatureRepository_Path(t *testing.T) {
	repo := NewFeatureRepository("/data", map[string]string{
		"venue":  "pubs.geojson",
		"police": "/abs/police.geojson",
	}, zap.NewNop())

	assert.Equal(t, filepath.Join("/data", "pubs.geojson"), repo.Path(domain.LayerVenue))
	assert.Equal(t, "/abs/police.geojson", repo.Path(domain.LayerPolice))
	assert.Equal(t, filepath.Join("/data", "crime.geojson"), repo.Path(domain.LayerCrime))
}
