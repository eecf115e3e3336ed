package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/internal/geohub/core/service"
	"github.com/logiflow-io/logiflow/internal/pkg/metrics"
	"github.com/logiflow-io/logiflow/pkg/log"
)

// envelope is the JSON response wrapper used by every API endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// pagination is the list-response metadata.
type pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type vehicleListResponse struct {
	Vehicles   []*model.Vehicle `json:"vehicles"`
	Pagination pagination       `json:"pagination"`
}

// locationRequest is the Submit Update payload. Lat and Lng are required.
type locationRequest struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Speed   *float64 `json:"speed"`
	Heading *float64 `json:"heading"`
	Fuel    *float64 `json:"fuel"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type handlers struct {
	svc *service.Service
}

func (h *handlers) listVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter model.VehicleFilter
	if raw := q.Get("status"); raw != "" {
		status := model.VehicleStatus(raw)
		if !status.Valid() {
			writeError(w, core.NewValidationError("unknown status %q", raw))
			return
		}
		filter.Status = &status
	}
	if raw := q.Get("category"); raw != "" {
		category := model.VehicleCategory(raw)
		filter.Category = &category
	}

	page := model.Page{Limit: 50}
	var err error
	if page.Limit, err = intParam(q.Get("limit"), page.Limit); err != nil {
		writeError(w, err)
		return
	}
	if page.Offset, err = intParam(q.Get("offset"), 0); err != nil {
		writeError(w, err)
		return
	}

	vehicles, total, err := h.svc.ListVehicles(r.Context(), filter, page)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vehicleListResponse{
		Vehicles:   vehicles,
		Pagination: pagination{Total: total, Limit: page.Limit, Offset: page.Offset},
	})
}

func (h *handlers) getVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	v, err := h.svc.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) getHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	q := r.URL.Query()

	var query model.HistoryQuery
	var err error
	if query.Limit, err = intParam(q.Get("limit"), 0); err != nil {
		writeError(w, err)
		return
	}
	if query.From, err = timeParam(q.Get("from")); err != nil {
		writeError(w, err)
		return
	}
	if query.To, err = timeParam(q.Get("to")); err != nil {
		writeError(w, err)
		return
	}

	samples, err := h.svc.History(r.Context(), id, query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, samples)
}

func (h *handlers) submitUpdate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewValidationError("invalid request body"))
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(w, core.NewValidationError("lat and lng are required"))
		return
	}

	v, err := h.svc.SubmitUpdate(r.Context(), id, service.PositionUpdate{
		Lat:     *req.Lat,
		Lng:     *req.Lng,
		Speed:   req.Speed,
		Heading: req.Heading,
		Fuel:    req.Fuel,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	metrics.UpdatesTotal.WithLabelValues("http").Inc()
	writeJSON(w, http.StatusOK, v)
}

func (h *handlers) setStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, core.NewValidationError("invalid request body"))
		return
	}

	v, err := h.svc.SetStatus(r.Context(), id, model.VehicleStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		log.Error(err, "failed to encode response")
	}
}

// writeError maps the error taxonomy onto status codes. Unexpected errors
// become a generic 500 without leaking internal state.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case core.IsValidation(err):
		status = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
		msg = err.Error()
	default:
		log.Error(err, "request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, core.NewValidationError("invalid integer parameter %q", raw)
	}
	return n, nil
}

func timeParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, core.NewValidationError("invalid timestamp %q, expected RFC3339", raw)
	}
	return t, nil
}
