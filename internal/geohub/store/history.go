package store

import (
	"context"
	"sync"

	"github.com/logiflow-io/logiflow/internal/geohub/core"
	"github.com/logiflow-io/logiflow/internal/geohub/core/model"
)

// HistoryStore keeps a bounded, newest-first position history per vehicle.
// When a buffer is at capacity the oldest sample is evicted on insert.
// Buffers are created lazily on first append and live exactly as long as
// the owning vehicle.
type HistoryStore struct {
	mu  sync.RWMutex
	cap int

	buffers map[string][]model.PositionSample
}

var _ core.HistoryRepository = (*HistoryStore)(nil)

// NewHistoryStore creates a HistoryStore retaining up to capacity samples
// per vehicle.
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &HistoryStore{
		cap:     capacity,
		buffers: make(map[string][]model.PositionSample),
	}
}

// Append inserts the sample at the front of the vehicle's buffer.
// Samples are kept in insertion order, not re-sorted: an out-of-order
// timestamp is stored where it arrives.
func (s *HistoryStore) Append(ctx context.Context, vehicleID string, sample model.PositionSample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.buffers[vehicleID]
	if len(buf) >= s.cap {
		buf = buf[:s.cap-1]
	}

	next := make([]model.PositionSample, 0, len(buf)+1)
	next = append(next, sample)
	next = append(next, buf...)
	s.buffers[vehicleID] = next
}

// Query returns samples newest first, filtered by inclusive time bounds and
// truncated to the limit. An unknown vehicle yields an empty slice: a brand
// new vehicle legitimately has no history.
func (s *HistoryStore) Query(ctx context.Context, vehicleID string, q model.HistoryQuery) []model.PositionSample {
	s.mu.RLock()
	buf := s.buffers[vehicleID]
	s.mu.RUnlock()

	out := make([]model.PositionSample, 0, len(buf))
	for _, sample := range buf {
		if !q.From.IsZero() && sample.Timestamp.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && sample.Timestamp.After(q.To) {
			continue
		}
		out = append(out, sample)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

// Remove drops the vehicle's entire buffer.
func (s *HistoryStore) Remove(ctx context.Context, vehicleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buffers, vehicleID)
}

// Len returns the number of samples retained for a vehicle.
func (s *HistoryStore) Len(vehicleID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buffers[vehicleID])
}
