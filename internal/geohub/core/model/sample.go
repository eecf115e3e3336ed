package model

import "time"

// PositionSample is one historical observation of a vehicle's position.
// Samples are owned by the vehicle's history buffer and kept in insertion
// order, newest first.
type PositionSample struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Speed     float64   `json:"speed"`
	Heading   *float64  `json:"heading,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryQuery filters a history lookup. A zero From/To means unbounded on
// that side; bounds are inclusive. Limit truncates the newest-first result.
type HistoryQuery struct {
	Limit int
	From  time.Time
	To    time.Time
}

// DetailedUpdate is the payload of a per-vehicle detailed update event.
// It carries the post-mutation kinematic state including the current fuel
// estimate.
type DetailedUpdate struct {
	VehicleID string    `json:"vehicleId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Speed     float64   `json:"speed"`
	Heading   float64   `json:"heading"`
	Fuel      float64   `json:"fuel"`
	Timestamp time.Time `json:"timestamp"`
}
