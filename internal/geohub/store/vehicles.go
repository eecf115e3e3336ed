package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
)

// VehicleStore is the in-memory authoritative vehicle state store.
//
// The outer map is guarded by an RWMutex; each vehicle carries its own
// mutex so mutations are serialized per vehicle identifier while mutations
// to different vehicles proceed in parallel. State lives only for the
// process lifetime; durability is an external concern.
type VehicleStore struct {
	mu       sync.RWMutex
	vehicles map[string]*vehicleEntry
}

type vehicleEntry struct {
	mu sync.Mutex
	v  *model.Vehicle
}

var _ core.VehicleRepository = (*VehicleStore)(nil)

// NewVehicleStore creates an empty VehicleStore.
func NewVehicleStore() *VehicleStore {
	return &VehicleStore{
		vehicles: make(map[string]*vehicleEntry),
	}
}

// Get retrieves a copy of the vehicle's current state.
func (s *VehicleStore) Get(ctx context.Context, id string) (*model.Vehicle, error) {
	e, ok := s.entry(id)
	if !ok {
		return nil, core.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.v.Clone(), nil
}

// List returns matching vehicles ordered most-recently-updated first, plus
// the total match count before pagination.
func (s *VehicleStore) List(ctx context.Context, filter model.VehicleFilter, page model.Page) ([]*model.Vehicle, int, error) {
	s.mu.RLock()
	entries := make([]*vehicleEntry, 0, len(s.vehicles))
	for _, e := range s.vehicles {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	matched := make([]*model.Vehicle, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		v := e.v.Clone()
		e.mu.Unlock()

		if filter.Matches(v) {
			matched = append(matched, v)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	total := len(matched)

	if page.Offset > 0 {
		if page.Offset >= len(matched) {
			return []*model.Vehicle{}, total, nil
		}
		matched = matched[page.Offset:]
	}
	if page.Limit > 0 && page.Limit < len(matched) {
		matched = matched[:page.Limit]
	}

	return matched, total, nil
}

// Apply runs the mutation under the vehicle's lock, normalizes the result
// and returns a copy of the new state.
func (s *VehicleStore) Apply(ctx context.Context, id string, mutate core.Mutation) (*model.Vehicle, error) {
	e, ok := s.entry(id)
	if !ok {
		return nil, core.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return applyLocked(e, mutate), nil
}

// TryApply is Apply with a bounded wait: it polls the vehicle's lock until
// the context expires, then gives up with ErrBusy. The simulator uses it so
// a stuck vehicle cannot stall the tick.
func (s *VehicleStore) TryApply(ctx context.Context, id string, mutate core.Mutation) (*model.Vehicle, error) {
	e, ok := s.entry(id)
	if !ok {
		return nil, core.ErrNotFound
	}

	for {
		if e.mu.TryLock() {
			defer e.mu.Unlock()
			return applyLocked(e, mutate), nil
		}

		select {
		case <-ctx.Done():
			return nil, core.ErrBusy
		case <-time.After(time.Millisecond):
		}
	}
}

// Put inserts or replaces a vehicle. Provisioning path only; regular
// mutations go through Apply.
func (s *VehicleStore) Put(ctx context.Context, v *model.Vehicle) error {
	c := v.Clone()
	c.Normalize()
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.vehicles[c.ID]; ok {
		e.mu.Lock()
		e.v = c
		e.mu.Unlock()
		return nil
	}

	s.vehicles[c.ID] = &vehicleEntry{v: c}
	return nil
}

// Remove drops a vehicle from the store.
func (s *VehicleStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vehicles[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.vehicles, id)
	return nil
}

// IDs returns the identifiers of every stored vehicle.
func (s *VehicleStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.vehicles))
	for id := range s.vehicles {
		ids = append(ids, id)
	}
	return ids
}

func (s *VehicleStore) entry(id string) (*vehicleEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.vehicles[id]
	return e, ok
}

// applyLocked mutates the entry's vehicle while its lock is held. The clamp
// invariants are enforced here, not in the mutation.
func applyLocked(e *vehicleEntry, mutate core.Mutation) *model.Vehicle {
	mutate(e.v)
	e.v.Normalize()
	return e.v.Clone()
}
