package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/internal/geohub/core/service"
	"github.com/logiflow-io/logiflow/internal/geohub/notifier"
	"github.com/logiflow-io/logiflow/internal/geohub/store"
	"github.com/logiflow-io/logiflow/pkg/options"
)

func newTestServer(t *testing.T, vehicles ...*model.Vehicle) *httptest.Server {
	t.Helper()

	vs := store.NewVehicleStore()
	hs := store.NewHistoryStore(100)
	svc := service.New(vs, hs, notifier.NewFanout())

	for _, v := range vehicles {
		if err := svc.Provision(context.Background(), v); err != nil {
			t.Fatalf("Provision(%s) failed: %v", v.ID, err)
		}
	}

	srv := NewServer(options.NewHttpOptions(), svc, nil, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func TestListVehiclesEndpoint(t *testing.T) {
	ts := newTestServer(t,
		&model.Vehicle{ID: "v1", Status: model.StatusActive, Category: model.CategoryDelivery},
		&model.Vehicle{ID: "v2", Status: model.StatusIdle, Category: model.CategoryCourier},
		&model.Vehicle{ID: "v3", Status: model.StatusActive, Category: model.CategoryCourier},
	)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCount  int
		wantTotal  int
	}{
		{"all", "", http.StatusOK, 3, 3},
		{"filter status", "?status=active", http.StatusOK, 2, 2},
		{"filter category", "?category=courier", http.StatusOK, 2, 2},
		{"combined filter", "?status=active&category=courier", http.StatusOK, 1, 1},
		{"limit", "?limit=2", http.StatusOK, 2, 3},
		{"offset", "?offset=2", http.StatusOK, 1, 3},
		{"unknown status", "?status=parked", http.StatusBadRequest, 0, 0},
		{"bad limit", "?limit=abc", http.StatusBadRequest, 0, 0},
		{"negative offset", "?offset=-1", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/v1/vehicles" + tt.query)
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			env := decodeEnvelope(t, resp)
			if tt.wantStatus != http.StatusOK {
				if env.Success {
					t.Error("success = true on error response")
				}
				if env.Error == "" {
					t.Error("error message missing")
				}
				return
			}

			if !env.Success {
				t.Fatalf("success = false: %s", env.Error)
			}

			raw, _ := json.Marshal(env.Data)
			var result vehicleListResponse
			if err := json.Unmarshal(raw, &result); err != nil {
				t.Fatalf("failed to decode list payload: %v", err)
			}
			if len(result.Vehicles) != tt.wantCount {
				t.Errorf("got %d vehicles, want %d", len(result.Vehicles), tt.wantCount)
			}
			if result.Pagination.Total != tt.wantTotal {
				t.Errorf("total = %d, want %d", result.Pagination.Total, tt.wantTotal)
			}
		})
	}
}

func TestGetVehicleEndpoint(t *testing.T) {
	ts := newTestServer(t, &model.Vehicle{ID: "v1", Name: "Truck 1"})

	resp, err := http.Get(ts.URL + "/api/v1/vehicles/v1")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)

	raw, _ := json.Marshal(env.Data)
	var v model.Vehicle
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("failed to decode vehicle: %v", err)
	}
	if v.Name != "Truck 1" {
		t.Errorf("Name = %q, want %q", v.Name, "Truck 1")
	}

	resp, err = http.Get(ts.URL + "/api/v1/vehicles/ghost")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if env := decodeEnvelope(t, resp); env.Success {
		t.Error("success = true on 404")
	}
}

func TestSubmitUpdateEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"valid", "/api/v1/vehicles/v1/location", `{"lat": 48.1, "lng": 11.5, "speed": 80}`, http.StatusOK},
		{"missing lat", "/api/v1/vehicles/v1/location", `{"lng": 11.5}`, http.StatusBadRequest},
		{"missing lng", "/api/v1/vehicles/v1/location", `{"lat": 48.1}`, http.StatusBadRequest},
		{"lat out of range", "/api/v1/vehicles/v1/location", `{"lat": 95, "lng": 0}`, http.StatusBadRequest},
		{"lng out of range", "/api/v1/vehicles/v1/location", `{"lat": 0, "lng": 200}`, http.StatusBadRequest},
		{"malformed body", "/api/v1/vehicles/v1/location", `{"lat":`, http.StatusBadRequest},
		{"unknown vehicle", "/api/v1/vehicles/ghost/location", `{"lat": 1, "lng": 1}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &model.Vehicle{ID: "v1"})

			resp, err := http.Post(ts.URL+tt.path, "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			env := decodeEnvelope(t, resp)
			if tt.wantStatus == http.StatusOK {
				raw, _ := json.Marshal(env.Data)
				var v model.Vehicle
				if err := json.Unmarshal(raw, &v); err != nil {
					t.Fatalf("failed to decode vehicle: %v", err)
				}
				if v.Lat != 48.1 || v.Speed != 80 {
					t.Errorf("vehicle = %+v, want lat 48.1 speed 80", v)
				}
			}
		})
	}
}

func TestHistoryEndpoint(t *testing.T) {
	ts := newTestServer(t, &model.Vehicle{ID: "v1"})

	// Record a couple of positions through the update endpoint.
	for i := 0; i < 3; i++ {
		resp, err := http.Post(ts.URL+"/api/v1/vehicles/v1/location", "application/json",
			strings.NewReader(`{"lat": 48.1, "lng": 11.5}`))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + "/api/v1/vehicles/v1/history?limit=2")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)

	raw, _ := json.Marshal(env.Data)
	var samples []model.PositionSample
	if err := json.Unmarshal(raw, &samples); err != nil {
		t.Fatalf("failed to decode samples: %v", err)
	}
	if len(samples) != 2 {
		t.Errorf("got %d samples, want 2", len(samples))
	}

	// Unknown vehicle is 404, bad timestamps are 400.
	resp, _ = http.Get(ts.URL + "/api/v1/vehicles/ghost/history")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown vehicle status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Get(ts.URL + "/api/v1/vehicles/v1/history?from=yesterday")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad timestamp status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSetStatusEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"legal transition", `{"status": "active"}`, http.StatusOK},
		{"illegal transition", `{"status": "parked"}`, http.StatusBadRequest},
		{"malformed body", `{"status":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &model.Vehicle{ID: "v1", Status: model.StatusIdle})

			req, err := http.NewRequest(http.MethodPatch,
				ts.URL+"/api/v1/vehicles/v1/status", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("NewRequest failed: %v", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("PATCH failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
	}
}
