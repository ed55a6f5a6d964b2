package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lotwatch/lotwatch/internal/models"
)

// MemoryRepo is an in-memory SpaceRepository used by tests and local runs
// without a database. Semantics mirror PostgresRepo.
type MemoryRepo struct {
	mu      sync.Mutex
	spaces  map[int]models.ParkingSpace
	history []models.HistoryEntry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{spaces: make(map[int]models.ParkingSpace)}
}

func (r *MemoryRepo) InitSpaces(ctx context.Context, ids []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.spaces) > 0 {
		return nil
	}
	for _, id := range ids {
		r.spaces[id] = models.ParkingSpace{ID: id}
	}
	return nil
}

func (r *MemoryRepo) ListSpaces(ctx context.Context) ([]models.ParkingSpace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(models.ParkingSpace) bool { return true }), nil
}

func (r *MemoryRepo) ListAvailable(ctx context.Context) ([]models.ParkingSpace, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(s models.ParkingSpace) bool { return !s.Occupied }), nil
}

func (r *MemoryRepo) sorted(keep func(models.ParkingSpace) bool) []models.ParkingSpace {
	out := make([]models.ParkingSpace, 0, len(r.spaces))
	for _, s := range r.spaces {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryRepo) ApplyStatus(ctx context.Context, status map[int]bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	changed := 0
	for id, occupied := range status {
		s, ok := r.spaces[id]
		if !ok || s.Occupied == occupied {
			continue
		}
		s.Occupied = occupied
		t := now
		s.LastUpdated = &t
		r.spaces[id] = s
		r.history = append(r.history, models.HistoryEntry{SpaceID: id, Occupied: occupied, Timestamp: now})
		changed++
	}
	return changed, nil
}

func (r *MemoryRepo) History(ctx context.Context, spaceID int, limit int) ([]models.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []models.HistoryEntry
	for i := len(r.history) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.history[i]
		if spaceID >= 0 && e.SpaceID != spaceID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *MemoryRepo) Ping(ctx context.Context) error { return nil }

func (r *MemoryRepo) Close() error { return nil }

var _ SpaceRepository = (*MemoryRepo)(nil)
