package usecase_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/cost"
	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/usecase"
	"github.com/saferoute-service/internal/usecase/dto"
)

// MockBaseGraphRepository is a mock of BaseGraphRepository
type MockBaseGraphRepository struct {
	mock.Mock
}

func (m *MockBaseGraphRepository) Load(ctx context.Context) (*domain.StreetGraph, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreetGraph), args.Error(1)
}

func (m *MockBaseGraphRepository) Save(ctx context.Context, g *domain.StreetGraph) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

// MockGraphFetcher is a mock of GraphFetcher
type MockGraphFetcher struct {
	mock.Mock
}

func (m *MockGraphFetcher) Fetch(ctx context.Context, place string) (*domain.StreetGraph, error) {
	args := m.Called(ctx, place)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreetGraph), args.Error(1)
}

// MockFeatureRepository is a mock of FeatureRepository
type MockFeatureRepository struct {
	mock.Mock
}

func (m *MockFeatureRepository) Load(ctx context.Context, layer domain.LayerName) (*domain.FeatureLayer, error) {
	args := m.Called(ctx, layer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeatureLayer), args.Error(1)
}

// MockDerivedGraphRepository is a mock of DerivedGraphRepository
type MockDerivedGraphRepository struct {
	mock.Mock
}

func (m *MockDerivedGraphRepository) Exists(ctx context.Context, key domain.VariantKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDerivedGraphRepository) Load(ctx context.Context, key domain.VariantKey) (*domain.StreetGraph, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreetGraph), args.Error(1)
}

func (m *MockDerivedGraphRepository) Save(ctx context.Context, key domain.VariantKey, g *domain.StreetGraph) error {
	args := m.Called(ctx, key, g)
	return args.Error(0)
}

var origin = orb.Point{77.55318, 12.99310}

func offset(p orb.Point, north, east float64) orb.Point {
	const metersPerDegree = orb.EarthRadius * math.Pi / 180
	return orb.Point{
		p[0] + east/(metersPerDegree*math.Cos(p[1]*math.Pi/180)),
		p[1] + north/metersPerDegree,
	}
}

// threeNodeGraph: A(1) - B(2) - C(3) на одной широте, шаг 100 м
func threeNodeGraph() *domain.StreetGraph {
	a, b, c := origin, offset(origin, 0, 100), offset(origin, 0, 200)
	g := domain.NewStreetGraph("Test City", "unit")
	g.AddNode(domain.Node{ID: 1, Lat: a[1], Lon: a[0]})
	g.AddNode(domain.Node{ID: 2, Lat: b[1], Lon: b[0]})
	g.AddNode(domain.Node{ID: 3, Lat: c[1], Lon: c[0]})
	g.AddEdge(domain.Edge{From: 1, To: 2, Length: 100, HasLength: true, Weight: 100,
		Geometry: orb.LineString{a, b}})
	g.AddEdge(domain.Edge{From: 2, To: 3, Length: 100, HasLength: true, Weight: 100,
		Geometry: orb.LineString{b, c}})
	return g
}

// преступление в 80 м к северу от центроида A-B
func layers() map[domain.LayerName]*domain.FeatureLayer {
	return map[domain.LayerName]*domain.FeatureLayer{
		domain.LayerCrime:    {Name: domain.LayerCrime, Points: []orb.Point{offset(origin, 80, 50)}},
		domain.LayerCCTV:     {Name: domain.LayerCCTV},
		domain.LayerLighting: {Name: domain.LayerLighting},
		domain.LayerVenue:    {Name: domain.LayerVenue},
		domain.LayerPolice:   {Name: domain.LayerPolice},
	}
}

type fixture struct {
	base     *MockBaseGraphRepository
	fetcher  *MockGraphFetcher
	features *MockFeatureRepository
	derived  *MockDerivedGraphRepository
	uc       *usecase.SafeRouteUseCase
}

func settings() usecase.Settings {
	return usecase.Settings{
		Place:   "Test City",
		Weights: cost.DefaultWeights(),
		MinCost: cost.DefaultMinCost,
		Radius:  100,
		Workers: 2,
	}
}

func newFixture(t *testing.T, opts ...usecase.Option) *fixture {
	f := &fixture{
		base:     &MockBaseGraphRepository{},
		fetcher:  &MockGraphFetcher{},
		features: &MockFeatureRepository{},
		derived:  &MockDerivedGraphRepository{},
	}
	f.uc = usecase.NewSafeRouteUseCase(f.base, f.fetcher, f.features, f.derived, settings(), zap.NewNop(), opts...)
	return f
}

func (f *fixture) withInputs() *fixture {
	f.base.On("Load", mock.Anything).Return(threeNodeGraph(), nil)
	for name, l := range layers() {
		f.features.On("Load", mock.Anything, name).Return(l, nil)
	}
	return f
}

func routeRequest(mode string) dto.RouteRequest {
	end := offset(origin, 0, 200)
	return dto.RouteRequest{
		Start: dto.Point{Lat: origin[1], Lon: origin[0]},
		End:   dto.Point{Lat: end[1], Lon: end[0]},
		Mode:  mode,
	}
}

func isMode(mode domain.TimeMode) interface{} {
	return mock.MatchedBy(func(k domain.VariantKey) bool {
		return k.Mode == mode && len(k.Fingerprint) == 16
	})
}

func TestSafeRouteUseCase_FindSafestRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("computes and saves variant", func(t *testing.T) {
		f := newFixture(t).withInputs()
		f.derived.On("Exists", mock.Anything, isMode(domain.ModeDay)).Return(false, nil)
		f.derived.On("Save", mock.Anything, isMode(domain.ModeDay), mock.Anything).Return(nil).Once()

		resp, err := f.uc.FindSafestRoute(ctx, routeRequest("day"))
		require.NoError(t, err)

		assert.Equal(t, []int64{1, 2, 3}, resp.Nodes)
		assert.Equal(t, domain.ModeDay, resp.Mode)
		assert.InDelta(t, 51200, resp.TotalCost, 1e-9)
		assert.InDelta(t, 200, resp.DistanceM, 1e-9)
		assert.InDelta(t, 0.2, resp.DirectDistanceKm, 0.01)
		assert.Len(t, resp.Coordinates, 3)
		assert.NotEmpty(t, resp.RequestID)
		assert.Len(t, resp.Fingerprint, 16)
		assert.Equal(t, "Test City", resp.Place)

		// второй запрос берет вариант из памяти
		_, err = f.uc.FindSafestRoute(ctx, routeRequest("day"))
		require.NoError(t, err)

		f.derived.AssertExpectations(t)
		f.derived.AssertNumberOfCalls(t, "Exists", 1)
		f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("cached variant skips reweighting", func(t *testing.T) {
		f := newFixture(t).withInputs()

		cached := threeNodeGraph()
		for i := range cached.Edges {
			cached.Edges[i].Weight = 1
		}
		f.derived.On("Exists", mock.Anything, isMode(domain.ModeNight)).Return(true, nil)
		f.derived.On("Load", mock.Anything, isMode(domain.ModeNight)).Return(cached, nil)

		resp, err := f.uc.FindSafestRoute(ctx, routeRequest("night"))
		require.NoError(t, err)
		assert.Equal(t, 2.0, resp.TotalCost)
		f.derived.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("corrupt cache falls back to recomputation", func(t *testing.T) {
		f := newFixture(t).withInputs()
		f.derived.On("Exists", mock.Anything, isMode(domain.ModeDay)).Return(true, nil)
		f.derived.On("Load", mock.Anything, isMode(domain.ModeDay)).
			Return(nil, errors.Wrap(errors.ErrSerialization, nil, "graph checksum mismatch"))
		f.derived.On("Save", mock.Anything, isMode(domain.ModeDay), mock.Anything).Return(nil)

		resp, err := f.uc.FindSafestRoute(ctx, routeRequest("day"))
		require.NoError(t, err)
		assert.InDelta(t, 51200, resp.TotalCost, 1e-9)
		f.derived.AssertCalled(t, "Save", mock.Anything, isMode(domain.ModeDay), mock.Anything)
	})

	t.Run("failed save is not fatal", func(t *testing.T) {
		f := newFixture(t).withInputs()
		f.derived.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
		f.derived.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		_, err := f.uc.FindSafestRoute(ctx, routeRequest("day"))
		require.NoError(t, err)
	})

	t.Run("auto mode follows the clock", func(t *testing.T) {
		evening := time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC)
		f := newFixture(t, usecase.WithClock(func() time.Time { return evening })).withInputs()
		f.derived.On("Exists", mock.Anything, isMode(domain.ModeNight)).Return(false, nil)
		f.derived.On("Save", mock.Anything, isMode(domain.ModeNight), mock.Anything).Return(nil)

		resp, err := f.uc.FindSafestRoute(ctx, routeRequest(""))
		require.NoError(t, err)
		assert.Equal(t, domain.ModeNight, resp.Mode)
	})

	t.Run("invalid request", func(t *testing.T) {
		f := newFixture(t)
		req := routeRequest("day")
		req.Start.Lat = 123

		_, err := f.uc.FindSafestRoute(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
		f.base.AssertNotCalled(t, "Load", mock.Anything)
	})

	t.Run("unknown mode", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.FindSafestRoute(ctx, routeRequest("dusk"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrValidation))
	})

	t.Run("disconnected endpoints", func(t *testing.T) {
		f := newFixture(t)
		g := threeNodeGraph()
		far := offset(origin, 5000, 5000)
		g.AddNode(domain.Node{ID: 9, Lat: far[1], Lon: far[0]})
		f.base.On("Load", mock.Anything).Return(g, nil)
		for name, l := range layers() {
			f.features.On("Load", mock.Anything, name).Return(l, nil)
		}
		f.derived.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
		f.derived.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		req := routeRequest("day")
		req.End = dto.Point{Lat: far[1], Lon: far[0]}
		_, err := f.uc.FindSafestRoute(ctx, req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNoPath))
	})
}

func TestSafeRouteUseCase_EnsureBaseGraph(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches and saves when missing", func(t *testing.T) {
		f := newFixture(t)
		g := threeNodeGraph()
		f.base.On("Load", mock.Anything).Return(nil, nil)
		f.fetcher.On("Fetch", mock.Anything, "Test City").Return(g, nil)
		f.base.On("Save", mock.Anything, g).Return(nil)

		got, err := f.uc.EnsureBaseGraph(ctx)
		require.NoError(t, err)
		assert.Same(t, g, got)
		f.base.AssertExpectations(t)
		f.fetcher.AssertExpectations(t)
	})

	t.Run("unreadable stored graph is fetched again", func(t *testing.T) {
		f := newFixture(t)
		g := threeNodeGraph()
		f.base.On("Load", mock.Anything).Return(nil, errors.Wrap(errors.ErrSerialization, nil, "not a graph file"))
		f.fetcher.On("Fetch", mock.Anything, "Test City").Return(g, nil)
		f.base.On("Save", mock.Anything, g).Return(nil)

		_, err := f.uc.EnsureBaseGraph(ctx)
		require.NoError(t, err)
		f.fetcher.AssertExpectations(t)
	})

	t.Run("fetch failure is a data load error", func(t *testing.T) {
		f := newFixture(t)
		f.base.On("Load", mock.Anything).Return(nil, nil)
		f.fetcher.On("Fetch", mock.Anything, "Test City").Return(nil, assert.AnError)

		_, err := f.uc.EnsureBaseGraph(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDataLoad))
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("empty graph is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.base.On("Load", mock.Anything).Return(domain.NewStreetGraph("Test City", "unit"), nil)

		_, err := f.uc.EnsureBaseGraph(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDataLoad))
	})
}

func TestSafeRouteUseCase_LoadLayers(t *testing.T) {
	ctx := context.Background()

	t.Run("missing layer", func(t *testing.T) {
		f := newFixture(t)
		f.features.On("Load", mock.Anything, domain.LayerCrime).Return(layers()[domain.LayerCrime], nil)
		f.features.On("Load", mock.Anything, domain.LayerCCTV).
			Return(nil, errors.Wrap(errors.ErrDataLoad, nil, "cctv.geojson not found"))

		_, err := f.uc.LoadLayers(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrDataLoad))
	})

	t.Run("builds index", func(t *testing.T) {
		f := newFixture(t).withInputs()

		ix, err := f.uc.LoadLayers(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, ix.Sizes()[domain.LayerCrime])

		// повторный вызов не читает слои заново
		_, err = f.uc.LoadLayers(ctx)
		require.NoError(t, err)
		f.features.AssertNumberOfCalls(t, "Load", len(domain.AllLayers))
	})
}

func TestSafeRouteUseCase_PrepareAndStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t).withInputs()
	f.derived.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
	f.derived.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	status := f.uc.Status(ctx)
	assert.False(t, status.Ready)
	assert.Empty(t, status.Variants)

	require.NoError(t, f.uc.Prepare(ctx))

	status = f.uc.Status(ctx)
	assert.True(t, status.Ready)
	assert.Equal(t, []string{"day", "night"}, status.Variants)
	assert.Equal(t, 3, status.Nodes)
	assert.Equal(t, 2, status.Edges)
	assert.Equal(t, 1, status.Layers["crime"])
	assert.Len(t, status.Fingerprint, 16)

	f.derived.AssertNumberOfCalls(t, "Save", 2)

	day, err := f.uc.Variant(ctx, domain.ModeDay)
	require.NoError(t, err)
	night, err := f.uc.Variant(ctx, domain.ModeNight)
	require.NoError(t, err)
	assert.NotSame(t, day, night)
	assert.Equal(t, 26100.0, day.Edges[0].Weight)
	assert.Equal(t, 25100.0, day.Edges[1].Weight)
	// без освещения и заведений ночные веса совпадают с дневными
	assert.Equal(t, day.Edges[0].Weight, night.Edges[0].Weight)
}

func TestSafeRouteUseCase_ConcurrentVariant(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t).withInputs()
	f.derived.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
	f.derived.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	var wg sync.WaitGroup
	results := make([]*domain.StreetGraph, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := f.uc.Variant(ctx, domain.ModeDay)
			assert.NoError(t, err)
			results[i] = g
		}(i)
	}
	wg.Wait()

	for _, g := range results {
		assert.Same(t, results[0], g)
	}
	f.derived.AssertNumberOfCalls(t, "Save", 1)
	f.base.AssertNumberOfCalls(t, "Load", 1)
}

func TestFingerprint(t *testing.T) {
	g := threeNodeGraph()
	var ls []*domain.FeatureLayer
	for _, name := range domain.AllLayers {
		ls = append(ls, layers()[name])
	}

	fp := usecase.Fingerprint(g, ls, settings())
	assert.Len(t, fp, 16)
	assert.Equal(t, fp, usecase.Fingerprint(threeNodeGraph(), ls, settings()))

	s := settings()
	s.Weights.Crime = 2000
	assert.NotEqual(t, fp, usecase.Fingerprint(g, ls, s))

	s = settings()
	s.Radius = 75
	assert.NotEqual(t, fp, usecase.Fingerprint(g, ls, s))

	moved := threeNodeGraph()
	moved.Edges[0].Length = 101
	assert.NotEqual(t, fp, usecase.Fingerprint(moved, ls, settings()))

	extra := append([]*domain.FeatureLayer{}, ls...)
	extra[0] = &domain.FeatureLayer{Name: domain.LayerCrime}
	assert.NotEqual(t, fp, usecase.Fingerprint(g, extra, settings()))
}
