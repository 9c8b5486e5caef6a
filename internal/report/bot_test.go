package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/adiptan/trading-journal/internal/core"
)

func TestHelp(t *testing.T) {
	out := Help("Ann <3", []string{"strategy", "plan"}, []string{"fomo", "tilt"})
	for _, p := range []string{"Hi, Ann &lt;3!", "PAIR DIRECTION ENTRY EXIT PNL [TAGS]", "strategy, plan", "fomo, tilt", "/delete ID"} {
		if !strings.Contains(out, p) {
			t.Errorf("Help() missing %q\n%s", p, out)
		}
	}
}

func TestMyID(t *testing.T) {
	admin := MyID(User{ID: 42, Username: "trader", FullName: "Ann Lee"}, true)
	if !strings.Contains(admin, "<code>42</code>") || !strings.Contains(admin, "@trader") || !strings.Contains(admin, "✅") {
		t.Errorf("unexpected admin answer:\n%s", admin)
	}
	guest := MyID(User{ID: 7}, false)
	if !strings.Contains(guest, "Username: not set") || !strings.Contains(guest, "not the administrator") {
		t.Errorf("unexpected guest answer:\n%s", guest)
	}
}

func TestAccessDenied(t *testing.T) {
	out := AccessDenied(User{ID: 7, Username: "x"})
	if !strings.Contains(out, "Access denied") || !strings.Contains(out, "<code>7</code>") {
		t.Errorf("unexpected answer:\n%s", out)
	}
}

func TestUnauthorizedAttempt(t *testing.T) {
	long := strings.Repeat("я", 150)
	out := UnauthorizedAttempt(User{ID: 7, FullName: "Eve"}, long)
	if strings.Contains(out, strings.Repeat("я", 101)) || !strings.Contains(out, strings.Repeat("я", 100)) {
		t.Error("message should be cut to 100 characters")
	}
	if !strings.Contains(out, "Username: none") {
		t.Errorf("missing username placeholder:\n%s", out)
	}

	empty := UnauthorizedAttempt(User{ID: 7}, "")
	if !strings.Contains(empty, "<code>no text</code>") {
		t.Errorf("unexpected empty-text notice:\n%s", empty)
	}

	html := UnauthorizedAttempt(User{ID: 7}, "<script>")
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("text should be escaped:\n%s", html)
	}
}

func TestParseError(t *testing.T) {
	out := ParseError(core.ErrNonNumeric)
	if !strings.HasPrefix(out, "❌ Error: prices and PNL must be numeric\n") || !strings.Contains(out, "<code>BTC long 45000 46000 +100 strategy</code>") {
		t.Errorf("unexpected answer:\n%s", out)
	}
}

func TestParseError_WithCause(t *testing.T) {
	out := ParseError(core.WrapError(core.ErrInvalidDirection, errors.New(`"up"`)))
	if !strings.Contains(out, "(&#34;up&#34;)") {
		t.Errorf("cause should be shown escaped:\n%s", out)
	}
}

func TestDeleted(t *testing.T) {
	if got := Deleted(12); got != "🗑 Trade <i>#12</i> deleted" {
		t.Errorf("Deleted() = %q", got)
	}
}
