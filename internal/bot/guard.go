package bot

import (
	"context"
	"sync"
	"time"

	"github.com/adiptan/trading-journal/internal/metrics"
	"github.com/adiptan/trading-journal/internal/report"
	"go.uber.org/zap"
)

// NotifyFunc delivers a text to the admin.
type NotifyFunc func(ctx context.Context, text string) error

// Guard restricts the bot to a single admin. Rejected senders get an
// access-denied reply and the admin hears about the attempt, at most once
// per cooldown per sender.
type Guard struct {
	adminID  int64
	notify   NotifyFunc
	cooldown time.Duration
	metrics  *metrics.Registry
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	notices map[int64]time.Time // sender -> last admin notice
}

// NewGuard creates a guard for adminID. notify and m may be nil.
func NewGuard(adminID int64, notify NotifyFunc, cooldown time.Duration, m *metrics.Registry, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		adminID:  adminID,
		notify:   notify,
		cooldown: cooldown,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		notices:  make(map[int64]time.Time),
	}
}

// IsAdmin reports whether userID is the admin.
func (g *Guard) IsAdmin(userID int64) bool {
	return userID == g.adminID
}

// AdminOnly is a Middleware passing only the admin's messages through.
func (g *Guard) AdminOnly(next Handler) Handler {
	return func(ctx context.Context, m Message) (string, error) {
		if g.IsAdmin(m.User.ID) {
			return next(ctx, m)
		}

		g.logger.Warn("unauthorized access attempt",
			zap.Int64("user_id", m.User.ID),
			zap.String("username", m.User.Username),
		)
		if g.metrics != nil {
			g.metrics.RecordUnauthorized()
		}
		if g.shouldNotify(m.User.ID) {
			if err := g.notify(ctx, report.UnauthorizedAttempt(m.User, m.Text)); err != nil {
				g.logger.Error("failed to notify admin about unauthorized access", zap.Error(err))
			}
		}
		return report.AccessDenied(m.User), nil
	}
}

func (g *Guard) shouldNotify(userID int64) bool {
	if g.notify == nil {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if last, ok := g.notices[userID]; ok && now.Sub(last) < g.cooldown {
		return false
	}
	g.notices[userID] = now
	return true
}

// CleanupExpired drops notice entries older than twice the cooldown.
func (g *Guard) CleanupExpired() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	removed := 0
	for id, last := range g.notices {
		if now.Sub(last) > 2*g.cooldown {
			delete(g.notices, id)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine runs CleanupExpired every interval until ctx is done.
func (g *Guard) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := g.CleanupExpired(); removed > 0 {
					g.logger.Debug("cleaned up unauthorized notices", zap.Int("removed", removed))
				}
			}
		}
	}()
}
