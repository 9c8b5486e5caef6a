package report

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/adiptan/trading-journal/internal/core"
	"github.com/adiptan/trading-journal/internal/parser"
)

// Replies that carry no data.
const (
	SaveFailedMessage = "❌ Error saving the trade"
	FailureMessage    = "❌ Something went wrong. Check the message format."
	NotFoundMessage   = "❓ Trade not found"
	DeleteUsage       = "Usage: <code>/delete ID</code> (IDs are shown by /last)"
)

// User identifies the sender of a bot message.
type User struct {
	ID       int64
	Username string
	FullName string
}

func (u User) handle(missing string) string {
	if u.Username == "" {
		return missing
	}
	return "@" + html.EscapeString(u.Username)
}

// Help renders the /start message listing the format and the tag vocabularies.
func Help(firstName string, strategyTags, impulseTags []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👋 <b>Hi, %s!</b>\n\n", html.EscapeString(firstName)))
	sb.WriteString("I am your trading journal.\n\n")
	sb.WriteString("📝 <b>How to record a trade:</b>\n")
	sb.WriteString("Just send me a message in the format:\n")
	sb.WriteString("<code>" + parser.Usage + "</code>\n\n")
	sb.WriteString("<b>Examples:</b>\n")
	sb.WriteString("<code>" + parser.Example + "</code>\n")
	sb.WriteString("<code>ETH short 3000 2950 -50 fomo revenge</code>\n")
	sb.WriteString("<code>SOL long 100 105 +25 plan patience</code>\n\n")
	sb.WriteString("<b>Strategy tags:</b> " + html.EscapeString(strings.Join(strategyTags, ", ")) + "\n")
	sb.WriteString("<b>Impulse tags:</b> " + html.EscapeString(strings.Join(impulseTags, ", ")) + "\n\n")
	sb.WriteString("📊 <b>Commands:</b>\n")
	sb.WriteString("/today - today's statistics\n")
	sb.WriteString("/week - weekly statistics\n")
	sb.WriteString("/report - full weekly report\n")
	sb.WriteString("/last - last trades\n")
	sb.WriteString("/delete ID - delete a trade\n")
	sb.WriteString("/myid - show your Telegram ID")
	return sb.String()
}

// MyID renders the /myid answer.
func MyID(u User, isAdmin bool) string {
	status := "⚠️ You are not the administrator"
	if isAdmin {
		status = "✅ You are the administrator of this bot"
	}
	return fmt.Sprintf("🆔 <b>Your details:</b>\n\nID: <code>%d</code>\nUsername: %s\nName: %s\n\n%s",
		u.ID, u.handle("not set"), html.EscapeString(u.FullName), status)
}

// AccessDenied answers a non-admin sender.
func AccessDenied(u User) string {
	return fmt.Sprintf("⛔ <b>Access denied</b>\n\nYour ID: <code>%d</code>\nUsername: %s\n\nThis is a private trading journal.",
		u.ID, u.handle("not set"))
}

// UnauthorizedAttempt tells the admin about a rejected sender. Only the first
// 100 characters of the message are quoted.
func UnauthorizedAttempt(u User, text string) string {
	quoted := "no text"
	if text != "" {
		quoted = truncate(text, 100)
	}
	return fmt.Sprintf("⚠️ <b>Unauthorized access attempt</b>\n\n👤 User ID: <code>%d</code>\n📝 Username: %s\n🏷 Name: %s\n💬 Message: <code>%s</code>",
		u.ID, u.handle("none"), html.EscapeString(u.FullName), html.EscapeString(quoted))
}

// ParseError answers a rejected trade line with the format hint.
func ParseError(err error) string {
	msg := err.Error()
	var ce *core.Error
	if errors.As(err, &ce) {
		msg = ce.Message
		if ce.Cause != nil {
			msg += " (" + ce.Cause.Error() + ")"
		}
	}
	return fmt.Sprintf("❌ Error: %s\n\nUse the format:\n<code>%s</code>",
		html.EscapeString(msg), parser.Example)
}

// Deleted confirms a deletion.
func Deleted(id int64) string {
	return fmt.Sprintf("🗑 Trade <i>#%d</i> deleted", id)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
