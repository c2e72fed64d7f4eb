package domain

import "fmt"

// TimeMode - дневной или ночной режим весов
type TimeMode string

const (
	ModeDay   TimeMode = "day"
	ModeNight TimeMode = "night"
)

var AllModes = []TimeMode{ModeDay, ModeNight}

func (m TimeMode) IsNight() bool {
	return m == ModeNight
}

func (m TimeMode) Valid() bool {
	return m == ModeDay || m == ModeNight
}

// Coordinate - географическая точка (lat, lon)
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.Lat, c.Lon)
}

// Route - последовательность узлов от источника к цели
type Route struct {
	Mode  TimeMode
	Nodes []int64
	Cost  float64
}

func (r Route) Empty() bool {
	return len(r.Nodes) == 0
}

// VariantKey - ключ производного графа в хранилище
type VariantKey struct {
	Mode        TimeMode
	Fingerprint string
}

func (k VariantKey) String() string {
	if k.Fingerprint == "" {
		return string(k.Mode)
	}
	return fmt.Sprintf("%s:%s", k.Mode, k.Fingerprint)
}
