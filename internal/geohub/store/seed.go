package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
	"github.com/logiflow-io/logiflow/pkg/log"
)

// FleetProvisioner is the provisioning hook the seeder drives. The core
// service implements it.
type FleetProvisioner interface {
	Provision(ctx context.Context, v *model.Vehicle) error
	Deprovision(ctx context.Context, id string) error
}

// Seeder loads the fleet from a JSON seed file and, optionally, hot-reloads
// it on change. It stands in for the upstream fleet-management collaborator
// that creates and retires vehicles.
type Seeder struct {
	path string
	prov FleetProvisioner

	// seeded tracks the vehicle IDs this seeder created, so a reload can
	// retire vehicles that vanished from the file without touching
	// vehicles provisioned elsewhere.
	seeded map[string]struct{}
}

// NewSeeder creates a Seeder for the given file.
func NewSeeder(path string, prov FleetProvisioner) *Seeder {
	return &Seeder{
		path:   path,
		prov:   prov,
		seeded: make(map[string]struct{}),
	}
}

// Load reads the seed file and reconciles the fleet against it.
func (s *Seeder) Load(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var vehicles []model.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	next := make(map[string]struct{}, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		if err := s.prov.Provision(ctx, v); err != nil {
			log.Error(err, "failed to provision seeded vehicle", "vehicle", v.ID)
			continue
		}
		next[v.ID] = struct{}{}
	}

	for id := range s.seeded {
		if _, ok := next[id]; ok {
			continue
		}
		if err := s.prov.Deprovision(ctx, id); err != nil {
			log.Error(err, "failed to deprovision vanished vehicle", "vehicle", id)
		}
	}

	s.seeded = next
	log.Info("fleet seeded", "file", s.path, "vehicles", len(next))
	return nil
}

// Start watches the seed file and reloads on change, until the context is
// cancelled. Editors replace files rather than rewrite them, so the watch
// is on the directory and filtered by name.
func (s *Seeder) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create seed watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	log.Info("watching seed file", "file", s.path)

	var debounce *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Coalesce the burst of events a single save produces.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if err := s.Load(ctx); err != nil {
				log.Error(err, "seed reload failed")
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(err, "seed watcher error")
		}
	}
}
