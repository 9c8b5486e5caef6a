// Package bot turns chat messages into journal operations. The pipeline is
// transport independent: Bot adapts Telegram updates to Message and sends
// back whatever the handler chain returns.
package bot

import (
	"context"
	"strings"

	"github.com/adiptan/trading-journal/internal/report"
)

// Message is an incoming chat message.
type Message struct {
	ChatID    int64
	User      report.User
	FirstName string
	Text      string
}

// Command returns the command name without the slash or a @botname suffix,
// and the remaining arguments. ok is false for plain text.
func (m Message) Command() (name, args string, ok bool) {
	text := strings.TrimSpace(m.Text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	head, rest, _ := strings.Cut(text, " ")
	name = strings.TrimPrefix(head, "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), strings.TrimSpace(rest), name != ""
}

// Handler answers a message. An empty reply sends nothing.
type Handler func(ctx context.Context, m Message) (string, error)

// Middleware decorates a Handler.
type Middleware func(Handler) Handler

// Chain wraps h so that the first middleware runs first.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
