package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/logiflow-io/logiflow/internal/geohub/core/service"
	"github.com/logiflow-io/logiflow/pkg/log"
	"github.com/logiflow-io/logiflow/pkg/options"
)

// Server is the HTTP ingress: the REST query/update surface, the realtime
// channel upgrade endpoint, health probes and metrics.
type Server struct {
	server  *http.Server
	options *options.HttpOptions
}

// NewServer builds the router. realtime may be nil when the realtime
// channel is not mounted (tests); ready reports readiness of downstream
// connections.
func NewServer(opts *options.HttpOptions, svc *service.Service, realtime http.Handler, ready func() bool) *Server {
	h := &handlers{svc: svc}

	r := mux.NewRouter()

	// Basic liveness probe
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Readiness probe
	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if ready != nil && !ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", promhttp.Handler())

	if realtime != nil {
		r.Handle("/ws", realtime)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/vehicles", h.listVehicles).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", h.getVehicle).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/history", h.getHistory).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}/location", h.submitUpdate).Methods(http.MethodPost)
	api.HandleFunc("/vehicles/{id}/status", h.setStatus).Methods(http.MethodPatch)

	return &Server{
		server: &http.Server{
			Addr:    opts.Addr,
			Handler: r,
		},
		options: opts,
	}
}

// Handler exposes the router, used by httptest in the handler tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the context is cancelled, then shuts down gracefully
// so in-flight request handlers drain.
func (s *Server) Start(ctx context.Context) error {
	log.Info("Starting HTTP Server", "addr", s.server.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}
