package dto

// Point - координаты точки
type Point struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// RouteRequest - запрос на поиск самого безопасного маршрута.
// Mode: day, night или auto (по текущему часу). Пустое значение - auto.
type RouteRequest struct {
	Start Point  `json:"start"`
	End   Point  `json:"end"`
	Mode  string `json:"mode,omitempty" validate:"omitempty,oneof=day night auto"`
}
