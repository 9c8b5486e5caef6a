// internal/storage/trade/interface.go
package trade

import (
	"context"
	"time"

	"github.com/adiptan/trading-journal/internal/core"
)

// Store defines the interface for trade persistence.
type Store interface {
	// Insert persists a trade and assigns its ID.
	Insert(ctx context.Context, t *core.Trade) error

	// List retrieves trades matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) (core.Trades, error)

	// TodaySummary aggregates the trades dated on now's calendar day.
	TodaySummary(ctx context.Context, now time.Time) (core.DaySummary, error)

	// Delete removes a trade. Missing IDs yield core.ErrTradeNotFound.
	Delete(ctx context.Context, id int64) error

	// Close releases the underlying resources.
	Close() error
}

// ListFilter defines criteria for listing trades.
type ListFilter struct {
	From     time.Time // inclusive, compared by calendar date
	Category core.Category
	Limit    int
}

// LastDays selects trades dated from today minus days onwards.
func LastDays(now time.Time, days int) ListFilter {
	return ListFilter{From: now.AddDate(0, 0, -days)}
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// splitTime renders t as the date and time columns in loc.
func splitTime(t time.Time, loc *time.Location) (string, string) {
	t = t.In(loc)
	return t.Format(dateLayout), t.Format(timeLayout)
}

// joinTime parses the date and time columns back into a timestamp in loc.
func joinTime(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, loc)
}

func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
