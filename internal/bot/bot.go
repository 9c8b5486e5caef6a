package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/adiptan/trading-journal/internal/app"
	"github.com/adiptan/trading-journal/internal/core"
	"github.com/adiptan/trading-journal/internal/metrics"
	"github.com/adiptan/trading-journal/internal/report"
	"github.com/adiptan/trading-journal/internal/telegram"
	"go.uber.org/zap"
)

const (
	DefaultPollTimeout    = 30 * time.Second
	DefaultRetryDelay     = 5 * time.Second
	DefaultNoticeCooldown = time.Minute
)

// Journal is the part of the application service the bot drives.
type Journal interface {
	RecordTrade(ctx context.Context, text string) (*app.TradeReceipt, error)
	Today(ctx context.Context) (string, error)
	WeekBrief(ctx context.Context) (string, error)
	WeeklyReport(ctx context.Context) (string, error)
	Recent(ctx context.Context, n int) (string, error)
	DeleteTrade(ctx context.Context, id int64) error
}

// Client is the Telegram transport.
type Client interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID string, text string) error
}

// Config holds bot settings.
type Config struct {
	AdminID        int64
	PollTimeout    time.Duration
	RetryDelay     time.Duration
	NoticeCooldown time.Duration
	StrategyTags   []string
	ImpulseTags    []string
}

// Bot long-polls Telegram and answers the admin.
type Bot struct {
	cfg     Config
	client  Client
	journal Journal
	guard   *Guard
	router  *Router
	handler Handler
	metrics *metrics.Registry
	logger  *zap.Logger

	offset int64
}

// New creates a bot. m may be nil.
func New(cfg Config, journal Journal, client Client, m *metrics.Registry, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewRegistry()
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.NoticeCooldown <= 0 {
		cfg.NoticeCooldown = DefaultNoticeCooldown
	}

	b := &Bot{
		cfg:     cfg,
		client:  client,
		journal: journal,
		metrics: m,
		logger:  logger,
	}
	adminChat := strconv.FormatInt(cfg.AdminID, 10)
	b.guard = NewGuard(cfg.AdminID, func(ctx context.Context, text string) error {
		return client.SendMessage(ctx, adminChat, text)
	}, cfg.NoticeCooldown, m, logger.Named("guard"))

	b.router = NewRouter()
	b.router.Handle("start", b.help)
	b.router.Handle("help", b.help)
	b.router.Handle("myid", b.myID)
	b.router.Handle("today", b.today)
	b.router.Handle("week", b.week)
	b.router.Handle("report", b.report)
	b.router.Handle("last", b.last)
	b.router.Handle("delete", b.delete)
	b.router.HandleText(b.recordTrade)

	b.handler = Chain(b.router.Dispatch, b.replyErrors, b.recoverPanics, b.guard.AdminOnly)
	return b
}

// Guard returns the authorization guard.
func (b *Bot) Guard() *Guard { return b.guard }

// Handle runs a message through the pipeline and returns the reply.
func (b *Bot) Handle(ctx context.Context, m Message) string {
	reply, err := b.handler(ctx, m)
	if err != nil {
		// replyErrors turns every error into a reply
		b.logger.Error("unhandled error", zap.Error(err))
		return report.FailureMessage
	}
	return reply
}

// Run polls for updates until ctx is cancelled. Transient polling errors are
// retried after RetryDelay; a rejected token stops the bot.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot polling started", zap.Duration("poll_timeout", b.cfg.PollTimeout))
	for {
		if ctx.Err() != nil {
			b.logger.Info("bot polling stopped")
			return nil
		}

		updates, err := b.client.GetUpdates(ctx, b.offset, b.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			var apiErr *telegram.APIError
			if errors.As(err, &apiErr) && apiErr.Code == 401 {
				return fmt.Errorf("telegram rejected the bot token: %w", err)
			}
			b.logger.Warn("polling failed", zap.Error(err), zap.Duration("retry_in", b.cfg.RetryDelay))
			select {
			case <-ctx.Done():
			case <-time.After(b.cfg.RetryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

// HandleUpdate answers a single update.
func (b *Bot) HandleUpdate(ctx context.Context, u telegram.Update) {
	if u.Message == nil || u.Message.From == nil || u.Message.Text == "" {
		b.metrics.RecordUpdate("ignored")
		return
	}
	m := fromTelegram(u.Message)

	kind := "text"
	if _, _, ok := m.Command(); ok {
		kind = "command"
	}
	b.metrics.RecordUpdate(kind)

	reply := b.Handle(ctx, m)
	if reply == "" {
		return
	}
	if err := b.client.SendMessage(ctx, strconv.FormatInt(m.ChatID, 10), reply); err != nil {
		b.logger.Error("failed to send reply", zap.Int64("chat_id", m.ChatID), zap.Error(err))
	}
}

func fromTelegram(tm *telegram.Message) Message {
	return Message{
		ChatID: tm.Chat.ID,
		User: report.User{
			ID:       tm.From.ID,
			Username: tm.From.Username,
			FullName: tm.From.FullName(),
		},
		FirstName: tm.From.FirstName,
		Text:      tm.Text,
	}
}

// replyErrors turns handler errors into user-facing replies.
func (b *Bot) replyErrors(next Handler) Handler {
	return func(ctx context.Context, m Message) (string, error) {
		reply, err := next(ctx, m)
		switch {
		case err == nil:
			return reply, nil
		case core.IsValidation(err):
			return report.ParseError(err), nil
		case errors.Is(err, core.ErrTradeNotFound):
			return report.NotFoundMessage, nil
		default:
			b.logger.Error("handler failed", zap.String("text", m.Text), zap.Error(err))
			return report.FailureMessage, nil
		}
	}
}

func (b *Bot) recoverPanics(next Handler) Handler {
	return func(ctx context.Context, m Message) (reply string, err error) {
		defer func() {
			if r := recover(); r != nil {
				b.logger.Error("handler panic",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				reply, err = "", fmt.Errorf("panic: %v", r)
			}
		}()
		return next(ctx, m)
	}
}

func (b *Bot) help(ctx context.Context, m Message) (string, error) {
	return report.Help(m.FirstName, b.cfg.StrategyTags, b.cfg.ImpulseTags), nil
}

func (b *Bot) myID(ctx context.Context, m Message) (string, error) {
	return report.MyID(m.User, b.guard.IsAdmin(m.User.ID)), nil
}

func (b *Bot) today(ctx context.Context, m Message) (string, error) {
	return b.journal.Today(ctx)
}

func (b *Bot) week(ctx context.Context, m Message) (string, error) {
	return b.journal.WeekBrief(ctx)
}

func (b *Bot) report(ctx context.Context, m Message) (string, error) {
	return b.journal.WeeklyReport(ctx)
}

func (b *Bot) last(ctx context.Context, m Message) (string, error) {
	return b.journal.Recent(ctx, 0)
}

func (b *Bot) delete(ctx context.Context, m Message) (string, error) {
	_, args, _ := m.Command()
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil || id <= 0 {
		return report.DeleteUsage, nil
	}
	if err := b.journal.DeleteTrade(ctx, id); err != nil {
		return "", err
	}
	return report.Deleted(id), nil
}

func (b *Bot) recordTrade(ctx context.Context, m Message) (string, error) {
	receipt, err := b.journal.RecordTrade(ctx, m.Text)
	if err != nil {
		if errors.Is(err, core.ErrStoreFailed) {
			b.logger.Error("failed to save trade", zap.Error(err))
			return report.SaveFailedMessage, nil
		}
		return "", err
	}
	return receipt.Text, nil
}
