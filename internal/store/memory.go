package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a concurrency-safe in-memory RowStore. It backs tests and
// store-less deployments (no DATABASE_URL) with the same append-only,
// newest-wins semantics as the Postgres implementation.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []CachedRow

	// retention: max number of rows kept (0 = unlimited)
	maxRows int

	now func() time.Time
}

// NewMemoryStore creates a MemoryStore keeping at most maxRows rows.
func NewMemoryStore(maxRows int) *MemoryStore {
	return &MemoryStore{
		maxRows: maxRows,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the cache-timestamp clock. Used by tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Insert(_ context.Context, row CachedRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row.CachedAt = s.now()
	s.rows = append(s.rows, row)

	if s.maxRows > 0 && len(s.rows) > s.maxRows {
		over := len(s.rows) - s.maxRows
		s.rows = s.rows[over:]
	}
	return nil
}

func (s *MemoryStore) FindLatestByCity(_ context.Context, name string) (*CachedRow, error) {
	needle := strings.ToLower(name)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *CachedRow
	for i := range s.rows {
		row := &s.rows[i]
		if !strings.Contains(strings.ToLower(row.CityName), needle) {
			continue
		}
		if best == nil || row.CachedAt.After(best.CachedAt) {
			best = row
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	out := *best
	return &out, nil
}

func (s *MemoryStore) ListRecent(_ context.Context) ([]CachedRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CachedRow, len(s.rows))
	copy(out, s.rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CachedAt.After(out[j].CachedAt)
	})
	return out, nil
}
