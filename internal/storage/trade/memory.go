// internal/storage/trade/memory.go
package trade

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/adiptan/trading-journal/internal/core"
)

// MemoryStore is an in-memory trade store.
type MemoryStore struct {
	trades  []core.Trade
	maxSize int
	loc     *time.Location
	mu      sync.RWMutex
	counter int64
}

// NewMemoryStore creates a new in-memory store with max capacity. Calendar
// days are evaluated in loc; nil means time.Local.
func NewMemoryStore(maxSize int, loc *time.Location) *MemoryStore {
	return &MemoryStore{
		trades:  make([]core.Trade, 0),
		maxSize: maxSize,
		loc:     locationOrLocal(loc),
	}
}

// Insert adds a trade to the store.
func (m *MemoryStore) Insert(ctx context.Context, t *core.Trade) error {
	if t == nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("nil trade"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.counter++
	t.ID = m.counter
	m.trades = append(m.trades, *t)

	// Trim if over capacity (remove oldest)
	if m.maxSize > 0 && len(m.trades) > m.maxSize {
		m.trades = m.trades[len(m.trades)-m.maxSize:]
	}

	return nil
}

// List returns trades matching the filter, newest first.
func (m *MemoryStore) List(ctx context.Context, filter ListFilter) (core.Trades, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := core.Trades{}
	for _, t := range m.trades {
		if m.matches(t, filter) {
			result = append(result, t)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].ExecutedAt.Equal(result[j].ExecutedAt) {
			return result[i].ExecutedAt.After(result[j].ExecutedAt)
		}
		return result[i].ID > result[j].ID
	})

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// TodaySummary aggregates the trades of now's calendar day.
func (m *MemoryStore) TodaySummary(ctx context.Context, now time.Time) (core.DaySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	today := dateKey(now, m.loc)
	var ts core.Trades
	for _, t := range m.trades {
		if dateKey(t.ExecutedAt, m.loc) == today {
			ts = append(ts, t)
		}
	}
	return core.Summarize(ts), nil
}

// Delete removes a trade by ID.
func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.trades {
		if m.trades[i].ID == id {
			m.trades = append(m.trades[:i], m.trades[i+1:]...)
			return nil
		}
	}
	return core.WrapError(core.ErrTradeNotFound, fmt.Errorf("id %d", id))
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) matches(t core.Trade, filter ListFilter) bool {
	if filter.Category != "" && t.Category != filter.Category {
		return false
	}
	if !filter.From.IsZero() && dateKey(t.ExecutedAt, m.loc) < dateKey(filter.From, m.loc) {
		return false
	}
	return true
}
