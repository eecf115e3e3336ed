package topic

import "testing"

func TestBuilder(t *testing.T) {
	b := NewBuilder("fleet/v1")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"telemetry", b.Telemetry("v1"), "fleet/v1/telemetry/v1"},
		{"telemetry wildcard", b.TelemetryWildcard(), "fleet/v1/telemetry/+"},
		{"position", b.Position("truck-7"), "fleet/v1/position/truck-7"},
		{"detail", b.Detail("truck-7"), "fleet/v1/detail/truck-7"},
		{"availability", b.Availability(), "fleet/v1/availability"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestVehicleID(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"fleet/v1/telemetry/v1", "v1"},
		{"fleet/v1/telemetry/", ""},
		{"bare", ""},
	}

	for _, tt := range tests {
		if got := VehicleID(tt.topic); got != tt.want {
			t.Errorf("VehicleID(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
