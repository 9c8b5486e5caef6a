package telegram

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adiptan/trading-journal/internal/notifier"
	"github.com/adiptan/trading-journal/internal/telegram"
)

// Telegram delivers journal messages to a Telegram chat
type Telegram struct {
	botToken string
	chatID   string
	apiURL   string
	client   *telegram.Client
}

// New creates a new Telegram notifier
func New(botToken, chatID string, opts ...telegram.Option) *Telegram {
	return &Telegram{
		botToken: botToken,
		chatID:   chatID,
		client:   telegram.New(botToken, opts...),
	}
}

// NewWithClient sends through an existing Bot API client.
func NewWithClient(client *telegram.Client, chatID int64) *Telegram {
	return &Telegram{
		chatID: strconv.FormatInt(chatID, 10),
		client: client,
	}
}

func (t *Telegram) Name() string {
	return "telegram"
}

func (t *Telegram) Init(cfg notifier.Config) error {
	if token, ok := cfg.Params["bot_token"].(string); ok && token != "" {
		t.botToken = token
	}
	switch v := cfg.Params["chat_id"].(type) {
	case string:
		if v != "" {
			t.chatID = v
		}
	case int64:
		t.chatID = strconv.FormatInt(v, 10)
	case int:
		t.chatID = strconv.Itoa(v)
	}
	if url, ok := cfg.Params["api_url"].(string); ok {
		t.apiURL = url
	}

	if t.botToken == "" {
		return fmt.Errorf("telegram: bot_token is required")
	}
	if t.chatID == "" {
		return fmt.Errorf("telegram: chat_id is required")
	}

	t.client = telegram.New(t.botToken, telegram.WithBaseURL(t.apiURL))
	return nil
}

func (t *Telegram) Send(ctx context.Context, msg notifier.Message) error {
	if msg.Text == "" {
		return nil
	}
	return t.client.SendMessage(ctx, t.chatID, msg.Text)
}
