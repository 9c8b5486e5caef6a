// internal/storage/trade/postgres.go
package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adiptan/trading-journal/internal/core"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// tradeRecord is the row layout of the trades table.
type tradeRecord struct {
	ID         int64           `gorm:"primaryKey;autoIncrement"`
	TradeDate  string          `gorm:"type:varchar(10);index;not null"`
	TradeTime  string          `gorm:"type:varchar(8);not null"`
	Pair       string          `gorm:"type:text;index;not null"`
	TradeType  string          `gorm:"type:varchar(10);not null"`
	// Unconstrained numeric keeps every digit the user typed, as SQLite's text
	// columns do; a fixed scale would round tiny prices to zero.
	EntryPrice decimal.Decimal `gorm:"type:numeric;not null"`
	ExitPrice  decimal.Decimal `gorm:"type:numeric;not null"`
	PnLUSD     decimal.Decimal `gorm:"column:pnl_usd;type:numeric;not null"`
	PnLPct     decimal.Decimal `gorm:"column:pnl_pct;type:numeric;not null"`
	Category   string          `gorm:"type:varchar(20);index;not null"`
	Tags       string          `gorm:"type:text"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (tradeRecord) TableName() string {
	return "trades"
}

func toRecord(t *core.Trade, loc *time.Location) tradeRecord {
	date, clock := splitTime(t.ExecutedAt, loc)
	return tradeRecord{
		ID:         t.ID,
		TradeDate:  date,
		TradeTime:  clock,
		Pair:       t.Pair,
		TradeType:  string(t.Direction),
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		PnLUSD:     t.PnLUSD,
		PnLPct:     t.PnLPct,
		Category:   string(t.Category),
		Tags:       t.Tags,
	}
}

func (r tradeRecord) toTrade(loc *time.Location) (core.Trade, error) {
	at, err := joinTime(r.TradeDate, r.TradeTime, loc)
	if err != nil {
		return core.Trade{}, fmt.Errorf("trade %d: %w", r.ID, err)
	}
	return core.Trade{
		ID:         r.ID,
		Pair:       r.Pair,
		Direction:  core.Direction(r.TradeType),
		EntryPrice: r.EntryPrice,
		ExitPrice:  r.ExitPrice,
		PnLUSD:     r.PnLUSD,
		PnLPct:     r.PnLPct,
		Category:   core.Category(r.Category),
		Tags:       r.Tags,
		ExecutedAt: at,
	}, nil
}

// PostgresStore persists trades in PostgreSQL through gorm.
type PostgresStore struct {
	db     *gorm.DB
	loc    *time.Location
	logger *zap.Logger
}

// NewPostgresStore connects to dsn and migrates the trades table.
func NewPostgresStore(dsn string, loc *time.Location, logger *zap.Logger) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Error),
	})
	if err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("connecting to postgres: %w", err))
	}
	return NewGormStore(db, loc, logger)
}

// NewGormStore wraps an open gorm connection and migrates the trades table.
func NewGormStore(db *gorm.DB, loc *time.Location, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&tradeRecord{}); err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("migrating trades: %w", err))
	}
	logger.Info("trade store ready", zap.String("driver", db.Dialector.Name()))
	return &PostgresStore{db: db, loc: locationOrLocal(loc), logger: logger}, nil
}

// Insert adds a trade and sets its ID.
func (s *PostgresStore) Insert(ctx context.Context, t *core.Trade) error {
	if t == nil {
		return core.WrapError(core.ErrStoreFailed, errors.New("nil trade"))
	}
	rec := toRecord(t, s.loc)
	rec.ID = 0
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("inserting trade: %w", err))
	}
	t.ID = rec.ID
	return nil
}

// List returns trades matching the filter, newest first.
func (s *PostgresStore) List(ctx context.Context, filter ListFilter) (core.Trades, error) {
	q := s.db.WithContext(ctx).Model(&tradeRecord{})
	if !filter.From.IsZero() {
		q = q.Where("trade_date >= ?", dateKey(filter.From, s.loc))
	}
	if filter.Category != "" {
		q = q.Where("category = ?", string(filter.Category))
	}
	q = q.Order("trade_date DESC").Order("trade_time DESC").Order("id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var recs []tradeRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, core.WrapError(core.ErrStoreFailed, fmt.Errorf("listing trades: %w", err))
	}
	return s.toTrades(recs)
}

// TodaySummary aggregates the trades of now's calendar day.
func (s *PostgresStore) TodaySummary(ctx context.Context, now time.Time) (core.DaySummary, error) {
	var recs []tradeRecord
	err := s.db.WithContext(ctx).Where("trade_date = ?", dateKey(now, s.loc)).Find(&recs).Error
	if err != nil {
		return core.DaySummary{}, core.WrapError(core.ErrStoreFailed, fmt.Errorf("today summary: %w", err))
	}
	trades, err := s.toTrades(recs)
	if err != nil {
		return core.DaySummary{}, err
	}
	return core.Summarize(trades), nil
}

// Delete removes a trade by ID.
func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&tradeRecord{}, id)
	if res.Error != nil {
		return core.WrapError(core.ErrStoreFailed, fmt.Errorf("deleting trade %d: %w", id, res.Error))
	}
	if res.RowsAffected == 0 {
		return core.WrapError(core.ErrTradeNotFound, fmt.Errorf("id %d", id))
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) toTrades(recs []tradeRecord) (core.Trades, error) {
	out := make(core.Trades, 0, len(recs))
	for _, r := range recs {
		t, err := r.toTrade(s.loc)
		if err != nil {
			return nil, core.WrapError(core.ErrStoreFailed, err)
		}
		out = append(out, t)
	}
	return out, nil
}
