package dto

import "github.com/saferoute-service/internal/domain"

// RouteResponse - найденный маршрут
type RouteResponse struct {
	RequestID        string              `json:"request_id"`
	Place            string              `json:"place"`
	Mode             domain.TimeMode     `json:"mode"`
	Start            domain.Coordinate   `json:"start"`
	End              domain.Coordinate   `json:"end"`
	StartNode        int64               `json:"start_node"`
	EndNode          int64               `json:"end_node"`
	Nodes            []int64             `json:"nodes"`
	Coordinates      []domain.Coordinate `json:"coordinates"`
	TotalCost        float64             `json:"total_cost"`
	DistanceM        float64             `json:"distance_m"`
	DirectDistanceKm float64             `json:"direct_distance_km"`
	Fingerprint      string              `json:"fingerprint"`
}

// GraphStatusResponse - состояние графа и производных вариантов
type GraphStatusResponse struct {
	Place       string         `json:"place"`
	Ready       bool           `json:"ready"`
	Source      string         `json:"source,omitempty"`
	Nodes       int            `json:"nodes"`
	Edges       int            `json:"edges"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Layers      map[string]int `json:"layers,omitempty"`
	Variants    []string       `json:"variants"`
	CurrentMode string         `json:"current_mode"`
}
