package model

import (
	"math"
	"time"
)

// VehicleStatus is the operational status of a tracked vehicle.
type VehicleStatus string

const (
	StatusActive      VehicleStatus = "active"
	StatusIdle        VehicleStatus = "idle"
	StatusMaintenance VehicleStatus = "maintenance"
	StatusOffline     VehicleStatus = "offline"
)

// Valid reports whether s is one of the known operational statuses.
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusActive, StatusIdle, StatusMaintenance, StatusOffline:
		return true
	}
	return false
}

// VehicleCategory distinguishes the kinds of tracked assets.
type VehicleCategory string

const (
	CategoryDelivery     VehicleCategory = "delivery"
	CategoryCourier      VehicleCategory = "courier"
	CategoryRefrigerated VehicleCategory = "refrigerated"
)

// Kinematic bounds enforced after every mutation.
const (
	MinSpeed = 0.0
	MaxSpeed = 120.0

	MinFuel = 0.0
	MaxFuel = 100.0
)

// Vehicle represents one tracked asset with its current kinematic and
// operational state. It is the authoritative record held by the state store;
// everything a subscriber or API consumer sees derives from it.
type Vehicle struct {
	// ID is the unique, immutable identifier of the vehicle.
	ID string `json:"id"`

	// Name is a human-readable display name.
	Name string `json:"name"`

	// Category classifies the asset (delivery, courier, refrigerated).
	Category VehicleCategory `json:"category"`

	// Status is the operational status (active, idle, maintenance, offline).
	Status VehicleStatus `json:"status"`

	// DriverID is the assigned operator, if any.
	DriverID string `json:"driverId,omitempty"`

	// Lat and Lng are the current position in float degrees.
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	// Speed is the current speed in km/h, clamped to [MinSpeed, MaxSpeed].
	Speed float64 `json:"speed"`

	// Heading is the direction of travel in degrees, normalized to [0, 360).
	Heading float64 `json:"heading"`

	// Fuel is the fuel level percentage, clamped to [MinFuel, MaxFuel].
	Fuel float64 `json:"fuel"`

	// Temperature is the cargo temperature, reported only for refrigerated vehicles.
	Temperature *float64 `json:"temperature,omitempty"`

	// LastMaintenance is the date of the last maintenance service.
	LastMaintenance time.Time `json:"lastMaintenance,omitempty"`

	// UpdatedAt is the timestamp of the last state mutation.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize clamps speed and fuel to their valid ranges and wraps heading
// into [0, 360). The state store calls this after every mutation, so the
// invariants hold no matter what a mutation wrote.
func (v *Vehicle) Normalize() {
	v.Speed = Clamp(v.Speed, MinSpeed, MaxSpeed)
	v.Fuel = Clamp(v.Fuel, MinFuel, MaxFuel)
	v.Heading = NormalizeHeading(v.Heading)
}

// Clone returns a deep copy of the vehicle.
func (v *Vehicle) Clone() *Vehicle {
	c := *v
	if v.Temperature != nil {
		t := *v.Temperature
		c.Temperature = &t
	}
	return &c
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}

// NormalizeHeading wraps a heading in degrees into [0, 360).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// VehicleFilter selects vehicles by equality on status and/or category.
// Nil fields match everything.
type VehicleFilter struct {
	Status   *VehicleStatus
	Category *VehicleCategory
}

// Matches reports whether v satisfies the filter.
func (f VehicleFilter) Matches(v *Vehicle) bool {
	if f.Status != nil && v.Status != *f.Status {
		return false
	}
	if f.Category != nil && v.Category != *f.Category {
		return false
	}
	return true
}

// Page is offset/limit pagination for list queries.
type Page struct {
	Limit  int
	Offset int
}
