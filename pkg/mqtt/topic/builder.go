package topic

import (
	"fmt"
	"strings"
)

// Constants defining the standard topic segments.
// These act as the protocol contract between the hub and broker-side
// collaborators. Changing these values breaks compatibility with devices
// already publishing telemetry.
const (
	// SuffixTelemetry represents the upstream position report topic (Device -> Hub).
	// Structure: {root}/telemetry/{vehicleID}
	SuffixTelemetry = "telemetry"

	// SuffixPosition represents the downstream general update topic (Hub -> subscribers).
	// Structure: {root}/position/{vehicleID}
	SuffixPosition = "position"

	// SuffixDetail represents the downstream detailed update topic (Hub -> subscribers).
	// Structure: {root}/detail/{vehicleID}
	SuffixDetail = "detail"

	// SuffixAvailability is the retained hub liveness topic.
	// Structure: {root}/availability
	SuffixAvailability = "availability"
)

// Builder encapsulates the logic for constructing fleet MQTT topic strings.
// It keeps topic layout consistent across the hub and its collaborators.
type Builder struct {
	// root is the base namespace for all topics (e.g., "fleet/v1").
	root string
}

// NewBuilder creates a new Builder with the specified root namespace.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Telemetry returns the topic a device publishes position reports on.
// Direction: Device -> Hub
func (b *Builder) Telemetry(vehicleID string) string {
	return b.build(SuffixTelemetry, vehicleID)
}

// TelemetryWildcard returns the wildcard filter the hub subscribes with to
// receive telemetry from every vehicle.
// Result: {root}/telemetry/+
func (b *Builder) TelemetryWildcard() string {
	return b.build(SuffixTelemetry, "+")
}

// Position returns the general update topic for a vehicle.
// Direction: Hub -> subscribers
func (b *Builder) Position(vehicleID string) string {
	return b.build(SuffixPosition, vehicleID)
}

// Detail returns the detailed update topic for a vehicle.
// Direction: Hub -> subscribers
func (b *Builder) Detail(vehicleID string) string {
	return b.build(SuffixDetail, vehicleID)
}

// Availability returns the retained hub liveness topic.
func (b *Builder) Availability() string {
	return fmt.Sprintf("%s/%s", b.root, SuffixAvailability)
}

// VehicleID extracts the trailing vehicle identifier from a concrete topic.
// Returns an empty string when the topic has no identifier segment.
func VehicleID(topic string) string {
	idx := strings.LastIndex(topic, "/")
	if idx < 0 || idx == len(topic)-1 {
		return ""
	}
	return topic[idx+1:]
}

func (b *Builder) build(suffix, vehicleID string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, suffix, vehicleID)
}
