package alert

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/adiptan/trading-journal/internal/config"
	"github.com/adiptan/trading-journal/internal/core"
)

// Scope says when a rule is checked.
type Scope string

const (
	// ScopeTrade rules run after every recorded trade.
	ScopeTrade Scope = "trade"
	// ScopeDaily rules run for the end-of-day recap.
	ScopeDaily Scope = "daily"
)

// "metric op value". Supports: >, <, >=, <=, ==, !=
var exprPattern = regexp.MustCompile(`^(\w+)\s*(>=|<=|==|!=|>|<)\s*(-?[\d.]+)$`)

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Rule defines an alert rule over the day's metrics.
type Rule struct {
	Name     string `mapstructure:"name"`
	Expr     string `mapstructure:"expr"`
	Scope    Scope  `mapstructure:"scope"`
	Severity string `mapstructure:"severity"`
	Message  string `mapstructure:"message"`
}

// DefaultRules warn about impulsive trading the way the journal always has.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "impulse_break",
			Expr:     "impulse_count >= 2",
			Scope:    ScopeTrade,
			Severity: "warning",
			Message:  "⚠️ <b>WARNING!</b> Already {impulse_count} impulsive trades today.\n💡 Take a one-hour break!",
		},
		{
			Name:     "impulse_day",
			Expr:     "impulse_count > 2",
			Scope:    ScopeDaily,
			Severity: "warning",
			Message:  "⚠️ Too many impulsive trades! Analyze the reasons.",
		},
	}
}

// RulesFromConfig converts configured rules, falling back to DefaultRules
// when none are configured.
func RulesFromConfig(cfg config.AlertsConfig) ([]Rule, error) {
	if len(cfg.Rules) == 0 {
		return DefaultRules(), nil
	}
	rules := make([]Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rule := Rule{
			Name:     r.Name,
			Expr:     r.Expr,
			Scope:    Scope(r.Scope),
			Severity: r.Severity,
			Message:  r.Message,
		}
		if err := rule.Validate(); err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Validate checks the expression syntax and scope.
func (r *Rule) Validate() error {
	if !exprPattern.MatchString(strings.TrimSpace(r.Expr)) {
		return fmt.Errorf("alert %q: invalid expression %q", r.Name, r.Expr)
	}
	if r.Scope != ScopeTrade && r.Scope != ScopeDaily {
		return fmt.Errorf("alert %q: unknown scope %q", r.Name, r.Scope)
	}
	return nil
}

// Evaluate evaluates the rule expression against metrics.
func (r *Rule) Evaluate(metrics map[string]float64) bool {
	matches := exprPattern.FindStringSubmatch(strings.TrimSpace(r.Expr))
	if len(matches) != 4 {
		return false
	}

	metricName := matches[1]
	op := matches[2]
	threshold, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return false
	}

	value, exists := metrics[metricName]
	if !exists {
		return false
	}

	switch op {
	case ">":
		return value > threshold
	case "<":
		return value < threshold
	case ">=":
		return value >= threshold
	case "<=":
		return value <= threshold
	case "==":
		return value == threshold
	case "!=":
		return value != threshold
	default:
		return false
	}
}

// FormatMessage fills {metric} placeholders with metric values. A rule
// without a message reports its severity and name.
func (r *Rule) FormatMessage(metrics map[string]float64) string {
	if r.Message == "" {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(r.Severity), r.Name, r.Expr)
	}
	return placeholder.ReplaceAllStringFunc(r.Message, func(m string) string {
		v, ok := metrics[m[1:len(m)-1]]
		if !ok {
			return m
		}
		return formatValue(v)
	})
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
