package geohub

import (
	"context"
	"time"

	"github.com/logiflow-io/logiflow/internal/geohub/notifier"
	"github.com/logiflow-io/logiflow/internal/geohub/server"
	"github.com/logiflow-io/logiflow/pkg/log"
)

// GeoHubServer is the assembled tracking service: state stores, simulator,
// fan-out and every ingress surface, run as one unit.
type GeoHubServer struct {
	manager *server.Manager
	egress  *notifier.MQTTNotifier
}

// Run starts every component and blocks until the context is cancelled or
// a component fails.
func (s *GeoHubServer) Run(ctx context.Context) error {
	defer func() {
		if s.egress != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.egress.Disconnect(shutdownCtx)
		}
	}()

	err := s.manager.Start(ctx)
	log.Info("GeoHub stopped")
	return err
}
