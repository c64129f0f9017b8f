package model

import (
	"time"
)

// Coordinate is one point of the recorded route polyline.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// HistoryEntry is the record of one completed (or aborted) tour run.
type HistoryEntry struct {
	ID          string        `json:"id"`
	TourName    string        `json:"tour_name"`
	StartedAt   time.Time     `json:"started_at"`
	EndedAt     time.Time     `json:"ended_at"`
	Miles       float64       `json:"miles"`
	Duration    time.Duration `json:"duration"`
	POIsVisited int           `json:"pois_visited"`
	POINames    []string      `json:"poi_names"`
	Route       []Coordinate  `json:"route"`
}

// HistoryStatistics summarises recorded tours.
type HistoryStatistics struct {
	TotalTours      int           `json:"total_tours"`
	TotalMiles      float64       `json:"total_miles"`
	TotalDuration   time.Duration `json:"total_duration"`
	TotalPOIs       int           `json:"total_pois"`
	MeanMiles       float64       `json:"mean_miles"`
	MedianMiles     float64       `json:"median_miles"`
	MeanPOIsPerTour float64       `json:"mean_pois_per_tour"`
}
