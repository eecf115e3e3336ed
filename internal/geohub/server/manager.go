package server

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/logiflow-io/logiflow/pkg/log"
)

// Server defines the common interface for all long-running components
// (http, mqtt ingress, simulator, seed watcher).
type Server interface {
	Start(ctx context.Context) error
}

// Manager manages the lifecycle of all long-running components.
type Manager struct {
	servers []Server
}

// NewManager creates a manager over the given components.
func NewManager(servers ...Server) *Manager {
	return &Manager{servers: servers}
}

// Start launches all components in parallel and waits for termination.
// The first failure cancels the shared context and brings the rest down.
func (m *Manager) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, s := range m.servers {
		srv := s
		g.Go(func() error {
			return srv.Start(ctx)
		})
	}

	log.Info("All servers starting...")
	return g.Wait()
}
