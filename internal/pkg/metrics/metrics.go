package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SimTicksTotal counts completed simulator ticks.
	SimTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geohub_sim_ticks_total",
			Help: "Total number of completed motion simulator ticks.",
		},
	)

	// SimVehicleErrorsTotal counts per-vehicle failures inside a tick,
	// by kind (busy, panic, error). Failures are isolated per vehicle.
	SimVehicleErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geohub_sim_vehicle_errors_total",
			Help: "Total number of per-vehicle simulation failures.",
		},
		[]string{"kind"},
	)

	// UpdatesTotal counts accepted position updates by source (http, mqtt, sim).
	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geohub_position_updates_total",
			Help: "Total number of accepted vehicle position updates.",
		},
		[]string{"source"},
	)

	// BroadcastsTotal counts fan-out messages by topic.
	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geohub_broadcasts_total",
			Help: "Total number of messages fanned out to subscribers.",
		},
		[]string{"topic"},
	)

	// BroadcastDropsTotal counts messages dropped because a subscriber's
	// buffer was full.
	BroadcastDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geohub_broadcast_drops_total",
			Help: "Total number of fan-out messages dropped for slow subscribers.",
		},
	)

	// SubscribersConnected tracks currently connected realtime clients.
	SubscribersConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "geohub_subscribers_connected",
			Help: "Number of currently connected realtime subscribers.",
		},
	)
)

func init() {
	prometheus.MustRegister(SimTicksTotal)
	prometheus.MustRegister(SimVehicleErrorsTotal)
	prometheus.MustRegister(UpdatesTotal)
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(BroadcastDropsTotal)
	prometheus.MustRegister(SubscribersConnected)
}
