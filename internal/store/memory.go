package store

import (
	"errors"
	"sync"
	"time"

	"github.com/lakeboard/lakeboard/internal/glofs"
)

var (
	// ErrNotFound is returned when no data is available for a given key.
	ErrNotFound = errors.New("no forecast data available")
)

type frameKey struct {
	Lake glofs.Lake
	Hour int
}

type storedFrame struct {
	Frame     *glofs.Frame
	FetchedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory store for the latest-run view
// and recently refreshed frames. A newer frame for the same lake/hour
// supersedes the older one for display; history is bounded by count and age.
type MemoryStore struct {
	mu sync.RWMutex

	runs     map[glofs.Lake]*string
	haveRuns bool

	frames map[frameKey][]storedFrame

	maxHistory int           // max frames kept per lake/hour
	maxAge     time.Duration // optional max age for kept frames
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		frames:     make(map[frameKey][]storedFrame),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveRuns replaces the latest-run view. Nil entries (lakes with no run
// available) are kept as-is.
func (s *MemoryStore) SaveRuns(runs map[glofs.Lake]*string) {
	copied := make(map[glofs.Lake]*string, len(runs))
	for lake, run := range runs {
		copied[lake] = run
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = copied
	s.haveRuns = true
}

// GetRuns returns a copy of the latest-run view, or ErrNotFound before the
// first refresh.
func (s *MemoryStore) GetRuns() (map[glofs.Lake]*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.haveRuns {
		return nil, ErrNotFound
	}
	copied := make(map[glofs.Lake]*string, len(s.runs))
	for lake, run := range s.runs {
		copied[lake] = run
	}
	return copied, nil
}

// SaveFrame appends a frame for a lake/hour and enforces retention.
func (s *MemoryStore) SaveFrame(lake glofs.Lake, hour int, f *glofs.Frame) {
	key := frameKey{Lake: lake, Hour: hour}

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.frames[key], storedFrame{Frame: f, FetchedAt: time.Now().UTC()})

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(history); i++ {
			if !history[i].FetchedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(history) {
			history = history[i:]
		}
	}

	s.frames[key] = history
}

// GetLatestFrame returns the most recently saved frame for a lake/hour.
func (s *MemoryStore) GetLatestFrame(lake glofs.Lake, hour int) (*glofs.Frame, error) {
	key := frameKey{Lake: lake, Hour: hour}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.frames[key]
	if !ok || len(history) == 0 {
		return nil, ErrNotFound
	}
	return history[len(history)-1].Frame, nil
}
