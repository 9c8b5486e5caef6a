package notifier

import "context"

// Config holds notifier configuration
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// Kind tells receivers what a message is about.
type Kind string

const (
	KindDaily        Kind = "daily"
	KindWeekly       Kind = "weekly"
	KindAlert        Kind = "alert"
	KindStartup      Kind = "startup"
	KindUnauthorized Kind = "unauthorized"
)

// Message is a rendered journal message. Text is Telegram HTML.
type Message struct {
	Kind  Kind
	Title string
	Text  string
}

// Notifier delivers journal messages to a destination
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Init initializes the notifier with configuration
	Init(cfg Config) error

	// Send delivers a single message
	Send(ctx context.Context, msg Message) error
}
