// internal/storage/trade/sqlite.go
package trade

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adiptan/trading-journal/internal/core"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	trade_date TEXT NOT NULL,
	trade_time TEXT NOT NULL,
	pair TEXT NOT NULL,
	trade_type TEXT NOT NULL,
	entry_price TEXT NOT NULL,
	exit_price TEXT NOT NULL,
	pnl_usd TEXT NOT NULL,
	pnl_pct TEXT NOT NULL,
	category TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_trades_date_time ON trades (trade_date, trade_time);
CREATE INDEX IF NOT EXISTS idx_trades_category ON trades (category);
`

const tradeColumns = `id, trade_date, trade_time, pair, trade_type, entry_price, exit_price, pnl_usd, pnl_pct, category, tags`

// SQLiteStore persists trades in a SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	loc    *time.Location
	logger *zap.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway database.
func NewSQLiteStore(path string, loc *time.Location, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("creating data directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("opening %s: %w", path, err))
	}

	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("pinging %s: %w", path, err))
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("initializing schema: %w", err))
	}

	logger.Info("trade store ready", zap.String("driver", "sqlite"), zap.String("path", path))
	return &SQLiteStore{db: db, loc: locationOrLocal(loc), logger: logger}, nil
}

// Insert adds a trade and sets its ID.
func (s *SQLiteStore) Insert(ctx context.Context, t *core.Trade) error {
	if t == nil {
		return core.WrapError(core.ErrStoreFailed, errors.New("nil trade"))
	}
	date, clock := splitTime(t.ExecutedAt, s.loc)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trades (trade_date, trade_time, pair, trade_type, entry_price, exit_price, pnl_usd, pnl_pct, category, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		date, clock, t.Pair, string(t.Direction),
		t.EntryPrice.String(), t.ExitPrice.String(), t.PnLUSD.String(), t.PnLPct.String(),
		string(t.Category), t.Tags,
	)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("inserting trade: %w", err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("reading trade id: %w", err))
	}
	t.ID = id
	return nil
}

// List returns trades matching the filter, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) (core.Trades, error) {
	var (
		where []string
		args  []any
	)
	if !filter.From.IsZero() {
		where = append(where, "trade_date >= ?")
		args = append(args, dateKey(filter.From, s.loc))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}

	query := "SELECT " + tradeColumns + " FROM trades"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY trade_date DESC, trade_time DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return s.query(ctx, query, args...)
}

// TodaySummary aggregates the trades of now's calendar day.
func (s *SQLiteStore) TodaySummary(ctx context.Context, now time.Time) (core.DaySummary, error) {
	trades, err := s.query(ctx,
		"SELECT "+tradeColumns+" FROM trades WHERE trade_date = ?", dateKey(now, s.loc))
	if err != nil {
		return core.DaySummary{}, err
	}
	return core.Summarize(trades), nil
}

// Delete removes a trade by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trades WHERE id = ?", id)
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("deleting trade %d: %w", id, err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("deleting trade %d: %w", id, err))
	}
	if n == 0 {
		return core.WrapError(core.ErrTradeNotFound, fmt.Errorf("id %d", id))
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) (core.Trades, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("querying trades: %w", err))
	}
	defer rows.Close()

	trades := core.Trades{}
	for rows.Next() {
		var r tradeRecord
		if err := rows.Scan(&r.ID, &r.TradeDate, &r.TradeTime, &r.Pair, &r.TradeType,
			&r.EntryPrice, &r.ExitPrice, &r.PnLUSD, &r.PnLPct, &r.Category, &r.Tags); err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("scanning trade: %w", err))
		}
		t, err := r.toTrade(s.loc)
		if err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("iterating trades: %w", err))
	}
	return trades, nil
}
