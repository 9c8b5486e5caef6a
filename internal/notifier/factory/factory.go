// internal/notifier/factory/factory.go
package factory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/adiptan/trading-journal/internal/config"
	"github.com/adiptan/trading-journal/internal/core"
	"github.com/adiptan/trading-journal/internal/notifier"
	"github.com/adiptan/trading-journal/internal/notifier/telegram"
	"github.com/adiptan/trading-journal/internal/notifier/webhook"
)

// New creates the notifier registered under name.
func New(name string, cfg config.NotifierConfig, tg config.TelegramConfig) (notifier.Notifier, error) {
	var (
		n      notifier.Notifier
		params map[string]any
	)
	switch name {
	case "telegram":
		token := cfg.BotToken
		if token == "" {
			token = tg.BotToken
		}
		chatID := cfg.ChatID
		if chatID == "" && tg.AdminUserID != 0 {
			chatID = strconv.FormatInt(tg.AdminUserID, 10)
		}
		n = &telegram.Telegram{}
		params = map[string]any{"bot_token": token, "chat_id": chatID, "api_url": tg.APIURL}
	case "webhook":
		n = &webhook.Webhook{}
		params = map[string]any{"url": cfg.URL, "headers": cfg.Headers, "secret": cfg.Secret}
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown notifier: %s", name))
	}

	if err := n.Init(notifier.Config{Type: name, Params: params}); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, err)
	}
	return n, nil
}

// Registry builds a registry from the enabled notifiers. Without an explicit
// telegram entry, reports go to the admin's chat whenever the bot is configured.
func Registry(cfgs map[string]config.NotifierConfig, tg config.TelegramConfig) (*notifier.Registry, error) {
	names := make([]string, 0, len(cfgs))
	for name := range cfgs {
		names = append(names, name)
	}
	sort.Strings(names)

	r := notifier.NewRegistry()
	for _, name := range names {
		cfg := cfgs[name]
		if !cfg.Enabled {
			continue
		}
		n, err := New(name, cfg, tg)
		if err != nil {
			return nil, err
		}
		kinds, err := parseKinds(cfg.Kinds)
		if err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("notifier %s: %w", name, err))
		}
		if err := r.Register(n, kinds...); err != nil {
			return nil, err
		}
	}

	if _, explicit := cfgs["telegram"]; !explicit && tg.BotToken != "" && tg.AdminUserID != 0 {
		n, err := New("telegram", config.NotifierConfig{}, tg)
		if err != nil {
			return nil, err
		}
		if err := r.Register(n); err != nil {
			return nil, err
		}
	}
	return r, nil
}

var knownKinds = map[notifier.Kind]bool{
	notifier.KindDaily:        true,
	notifier.KindWeekly:       true,
	notifier.KindAlert:        true,
	notifier.KindStartup:      true,
	notifier.KindUnauthorized: true,
}

func parseKinds(names []string) ([]notifier.Kind, error) {
	kinds := make([]notifier.Kind, 0, len(names))
	for _, name := range names {
		k := notifier.Kind(strings.ToLower(strings.TrimSpace(name)))
		if !knownKinds[k] {
			return nil, fmt.Errorf("unknown message kind %q", name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
