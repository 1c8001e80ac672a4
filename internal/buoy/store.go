package buoy

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no buoy exists with the given id.
	ErrNotFound = errors.New("buoy not found")
)

// TransitionError reports a rejected status change.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change buoy status from %q to %q", e.From, e.To)
}

// Store is a concurrency-safe in-memory registry of the buoy fleet.
type Store struct {
	mu    sync.RWMutex
	buoys map[uuid.UUID]Buoy
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{buoys: make(map[uuid.UUID]Buoy)}
}

// Create registers a new buoy, assigning its id and timestamps. New buoys
// start active unless a status was provided.
func (s *Store) Create(b Buoy) Buoy {
	now := time.Now().UTC()
	b.ID = uuid.New()
	if b.Status == "" {
		b.Status = StatusActive
	}
	if b.DeployedAt.IsZero() {
		b.DeployedAt = now
	}
	b.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buoys[b.ID] = b
	return b
}

// Get returns the buoy with the given id.
func (s *Store) Get(id uuid.UUID) (Buoy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buoys[id]
	if !ok {
		return Buoy{}, ErrNotFound
	}
	return b, nil
}

// List returns all buoys sorted by name.
func (s *Store) List() []Buoy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Buoy, 0, len(s.buoys))
	for _, b := range s.buoys {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UpdateStatus applies a status transition, enforcing the state machine.
// Leaving maintenance records a service date.
func (s *Store) UpdateStatus(id uuid.UUID, next Status) (Buoy, error) {
	if !next.Valid() {
		return Buoy{}, fmt.Errorf("unknown buoy status %q", next)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buoys[id]
	if !ok {
		return Buoy{}, ErrNotFound
	}
	if b.Status == next {
		return b, nil
	}
	if !b.Status.CanTransition(next) {
		return Buoy{}, &TransitionError{From: b.Status, To: next}
	}

	now := time.Now().UTC()
	if b.Status == StatusMaintenance {
		b.LastServiced = &now
	}
	b.Status = next
	b.UpdatedAt = now
	s.buoys[id] = b
	return b, nil
}

// Delete removes a buoy from the fleet.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.buoys[id]; !ok {
		return ErrNotFound
	}
	delete(s.buoys, id)
	return nil
}
