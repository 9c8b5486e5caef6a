// internal/api/handler/api/trades.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/adiptan/trading-journal/internal/api/response"
	"github.com/adiptan/trading-journal/internal/app"
	"github.com/adiptan/trading-journal/internal/core"
	"github.com/shopspring/decimal"
)

// DefaultListLimit caps trade listings without an explicit limit.
const DefaultListLimit = 50

const maxBodyBytes = 4 << 10

// TradesJournal is what TradesHandler needs from the journal.
type TradesJournal interface {
	History(ctx context.Context, days, limit int) (core.Trades, error)
	RecordTrade(ctx context.Context, text string) (*app.TradeReceipt, error)
	DeleteTrade(ctx context.Context, id int64) error
}

// TradeView is the JSON form of a trade.
type TradeView struct {
	ID         int64           `json:"id"`
	Pair       string          `json:"pair"`
	Direction  core.Direction  `json:"direction"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	PnLUSD     decimal.Decimal `json:"pnl_usd"`
	PnLPct     decimal.Decimal `json:"pnl_pct"`
	Category   core.Category   `json:"category"`
	Tags       string          `json:"tags"`
	ExecutedAt time.Time       `json:"executed_at"`
}

func viewTrade(t core.Trade) TradeView {
	return TradeView{
		ID:         t.ID,
		Pair:       t.Pair,
		Direction:  t.Direction,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		PnLUSD:     t.PnLUSD,
		PnLPct:     t.PnLPct,
		Category:   t.Category,
		Tags:       t.Tags,
		ExecutedAt: t.ExecutedAt,
	}
}

// TradesHandler handles trade API requests.
type TradesHandler struct {
	journal TradesJournal
}

// NewTradesHandler creates a new trades handler.
func NewTradesHandler(journal TradesJournal) *TradesHandler {
	return &TradesHandler{journal: journal}
}

// List returns trades, newest first. Query: days, limit.
func (h *TradesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	days := 0
	if v := q.Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	limit := DefaultListLimit
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	trades, err := h.journal.History(r.Context(), days, limit)
	if err != nil {
		response.Fail(w, err)
		return
	}

	views := make([]TradeView, 0, len(trades))
	for _, t := range trades {
		views = append(views, viewTrade(t))
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"trades": views,
		"days":   days,
		"limit":  limit,
	})
}

type createRequest struct {
	Text string `json:"text"`
}

// Create records a trade from its text line. The body is either JSON
// {"text": "..."} or the plain line itself.
func (h *TradesHandler) Create(w http.ResponseWriter, r *http.Request) {
	text, err := readTradeText(w, r)
	if err != nil {
		response.Fail(w, err)
		return
	}

	receipt, err := h.journal.RecordTrade(r.Context(), text)
	if err != nil {
		response.Fail(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{
		"trade": viewTrade(receipt.Trade),
		"today": map[string]any{
			"count":     receipt.Today.Count,
			"total_pnl": receipt.Today.TotalPnL,
			"impulse":   receipt.Today.ImpulseCount,
		},
		"warnings": nonNil(receipt.Warnings),
	})
}

// Delete removes the trade named by the {id} path segment.
func (h *TradesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusNotFound,
			core.WrapError(core.ErrTradeNotFound, fmt.Errorf("invalid id %q", r.PathValue("id"))))
		return
	}

	if err := h.journal.DeleteTrade(r.Context(), id); err != nil {
		response.Fail(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// readTradeText extracts the trade line. Bodies over maxBodyBytes are
// rejected rather than truncated.
func readTradeText(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", core.WrapError(core.ErrPayloadTooLarge, fmt.Errorf("limit is %d bytes", tooLarge.Limit))
		}
		return "", core.WrapError(core.ErrBadRequest, fmt.Errorf("reading body: %w", err))
	}

	text := string(body)
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		var req createRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return "", core.WrapError(core.ErrBadRequest, fmt.Errorf("decoding body: %w", err))
		}
		text = req.Text
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", core.WrapError(core.ErrInsufficientData, errors.New("empty trade text"))
	}
	return text, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
