package cost

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/saferoute-service/internal/config"
	"github.com/saferoute-service/internal/domain"
)

// Version меняется при любом изменении формулы: от нее зависит отпечаток кэша
const Version = 1

// DefaultMinCost - нижняя граница стоимости ребра, чтобы Dijkstra оставался корректным
const DefaultMinCost = 0.001

// Weights - коэффициенты формулы стоимости
type Weights struct {
	FixedPenalty float64
	Crime        float64
	CCTV         float64
	Police       float64
	Lighting     float64
	Venue        float64
}

func DefaultWeights() Weights {
	return Weights{
		FixedPenalty: 25000,
		Crime:        1000,
		CCTV:         1000,
		Police:       2500,
		Lighting:     200,
		Venue:        4000,
	}
}

// WeightsFromConfig берет коэффициенты из конфигурации
func WeightsFromConfig(cfg config.CostConfig) Weights {
	return Weights{
		FixedPenalty: cfg.FixedPenalty,
		Crime:        cfg.Crime,
		CCTV:         cfg.CCTV,
		Police:       cfg.Police,
		Lighting:     cfg.Lighting,
		Venue:        cfg.Venue,
	}
}

// Counts - число объектов каждого слоя рядом с ребром
type Counts struct {
	Crime    int
	CCTV     int
	Police   int
	Lighting int
	Venue    int
}

// FeatureCounter отвечает на вопрос "сколько объектов слоя в радиусе от точки"
type FeatureCounter interface {
	CountNearby(p orb.Point, layer domain.LayerName, radiusMeters float64) int
}

// Detail - результат расчета с признаком отсечения по нижней границе
type Detail struct {
	Cost    float64
	Raw     float64
	Clamped bool
	Counts  Counts
}

type Model struct {
	weights Weights
	minCost float64
	radius  float64
	counter FeatureCounter
}

type Option func(*Model)

// WithMinCost задает нижнюю границу стоимости
func WithMinCost(v float64) Option {
	return func(m *Model) {
		m.minCost = v
	}
}

// WithRadius задает радиус поиска объектов в метрах
func WithRadius(meters float64) Option {
	return func(m *Model) {
		m.radius = meters
	}
}

func NewModel(counter FeatureCounter, weights Weights, opts ...Option) *Model {
	m := &Model{
		weights: weights,
		minCost: DefaultMinCost,
		counter: counter,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Weights() Weights { return m.weights }
func (m *Model) MinCost() float64 { return m.minCost }
func (m *Model) Radius() float64  { return m.radius }

// Compute применяет формулу к уже посчитанным объектам.
// Ночные слагаемые (освещение, заведения) учитываются только ночью.
func (m *Model) Compute(c Counts, length float64, night bool) Detail {
	w := m.weights
	raw := length + w.FixedPenalty +
		w.Crime*float64(c.Crime) -
		w.CCTV*float64(c.CCTV) -
		w.Police*float64(c.Police)
	if night {
		raw += -w.Lighting*float64(c.Lighting) + w.Venue*float64(c.Venue)
	}

	d := Detail{Cost: raw, Raw: raw, Counts: c}
	if raw < m.minCost {
		d.Cost = m.minCost
		d.Clamped = true
	}
	return d
}

// Cost - то же, что Compute, но только число
func (m *Model) Cost(c Counts, length float64, night bool) float64 {
	return m.Compute(c, length, night).Cost
}

// CountsAt собирает объекты вокруг точки (lon, lat).
// Днем освещение и заведения не запрашиваются.
func (m *Model) CountsAt(p orb.Point, night bool) Counts {
	c := Counts{
		Crime:  m.counter.CountNearby(p, domain.LayerCrime, m.radius),
		CCTV:   m.counter.CountNearby(p, domain.LayerCCTV, m.radius),
		Police: m.counter.CountNearby(p, domain.LayerPolice, m.radius),
	}
	if night {
		c.Lighting = m.counter.CountNearby(p, domain.LayerLighting, m.radius)
		c.Venue = m.counter.CountNearby(p, domain.LayerVenue, m.radius)
	}
	return c
}

// EdgeCost считает стоимость ребра по центроиду его геометрии.
// ok == false для ребер без геометрии или длины.
func (m *Model) EdgeCost(e domain.Edge, night bool) (Detail, bool) {
	if !e.Weighable() {
		return Detail{}, false
	}
	c := m.CountsAt(Centroid(e.Geometry), night)
	return m.Compute(c, e.Length, night), true
}

// Centroid - центроид ломаной, взвешенный по длине сегментов
func Centroid(ls orb.LineString) orb.Point {
	c, _ := planar.CentroidArea(ls)
	return c
}
