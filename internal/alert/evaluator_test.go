package alert

import (
	"errors"
	"testing"

	"github.com/adiptan/trading-journal/internal/config"
	"github.com/adiptan/trading-journal/internal/core"
)

func daySummary(count, strategy, impulse int) map[string]float64 {
	return core.DaySummary{Count: count, StrategyCount: strategy, ImpulseCount: impulse}.Values()
}

func TestEvaluator_DefaultTradeRule(t *testing.T) {
	eval := NewEvaluator(DefaultRules(), nil)

	if fired := eval.Fire(ScopeTrade, daySummary(2, 1, 1)); len(fired) != 0 {
		t.Errorf("expected no alert for one impulsive trade, got %v", fired)
	}

	fired := eval.Fire(ScopeTrade, daySummary(3, 1, 2))
	if len(fired) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(fired))
	}
	want := "⚠️ <b>WARNING!</b> Already 2 impulsive trades today.\n💡 Take a one-hour break!"
	if fired[0] != want {
		t.Errorf("unexpected message:\n%s", fired[0])
	}
}

func TestEvaluator_DefaultDailyRule(t *testing.T) {
	eval := NewEvaluator(DefaultRules(), nil)

	if fired := eval.Fire(ScopeDaily, daySummary(4, 2, 2)); len(fired) != 0 {
		t.Errorf("expected no daily alert for 2 impulsive trades, got %v", fired)
	}
	fired := eval.Fire(ScopeDaily, daySummary(4, 1, 3))
	if len(fired) != 1 || fired[0] != "⚠️ Too many impulsive trades! Analyze the reasons." {
		t.Errorf("unexpected daily alerts: %v", fired)
	}
}

func TestEvaluator_ScopeAndOrder(t *testing.T) {
	eval := NewEvaluator([]Rule{
		{Name: "b", Expr: "count > 0", Scope: ScopeTrade, Message: "second"},
		{Name: "a", Expr: "count > 0", Scope: ScopeDaily, Message: "daily"},
		{Name: "c", Expr: "total_pnl < 0", Scope: ScopeTrade, Message: "third"},
	}, nil)

	m := map[string]float64{"count": 1, "total_pnl": -5}
	fired := eval.Fire(ScopeTrade, m)
	if len(fired) != 2 || fired[0] != "second" || fired[1] != "third" {
		t.Errorf("unexpected alerts: %v", fired)
	}

	eval.SetRules(nil)
	if len(eval.Rules()) != 0 || len(eval.Fire(ScopeTrade, m)) != 0 {
		t.Error("expected no rules after SetRules(nil)")
	}
}

func TestRule_Evaluate(t *testing.T) {
	tests := []struct {
		expr     string
		metrics  map[string]float64
		expected bool
	}{
		{"impulse_count > 2", map[string]float64{"impulse_count": 3}, true},
		{"impulse_count > 2", map[string]float64{"impulse_count": 2}, false},
		{"impulse_count >= 2", map[string]float64{"impulse_count": 2}, true},
		{"count == 0", map[string]float64{"count": 0}, true},
		{"count == 0", map[string]float64{"count": 1}, false},
		{"total_pnl < -100", map[string]float64{"total_pnl": -150}, true},
		{"total_pnl < -100", map[string]float64{"total_pnl": -50}, false},
		{"strategy_count <= 1", map[string]float64{"strategy_count": 1}, true},
		{"strategy_count != 0", map[string]float64{"strategy_count": 0}, false},
		{"missing > 0", map[string]float64{}, false}, // missing metric
		{"garbage", map[string]float64{"garbage": 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rule := Rule{Expr: tt.expr}
			result := rule.Evaluate(tt.metrics)
			if result != tt.expected {
				t.Errorf("expr %q with metrics %v: expected %v, got %v",
					tt.expr, tt.metrics, tt.expected, result)
			}
		})
	}
}

func TestRule_FormatMessage(t *testing.T) {
	rule := Rule{Message: "{impulse_count} impulsive, P/L {total_pnl}, {unknown}"}
	msg := rule.FormatMessage(map[string]float64{"impulse_count": 3, "total_pnl": -12.5})
	if msg != "3 impulsive, P/L -12.50, {unknown}" {
		t.Errorf("unexpected message: %s", msg)
	}

	bare := Rule{Name: "loss_day", Expr: "total_pnl < 0", Severity: "warning"}
	if got := bare.FormatMessage(nil); got != "[WARNING] loss_day: total_pnl < 0" {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestRule_Validate(t *testing.T) {
	ok := Rule{Name: "r", Expr: "count > 1", Scope: ScopeDaily}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := Rule{Name: "r", Expr: "count >> 1", Scope: ScopeDaily}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid expression")
	}
	noScope := Rule{Name: "r", Expr: "count > 1"}
	if err := noScope.Validate(); err == nil {
		t.Error("expected error for missing scope")
	}
}

func TestRulesFromConfig(t *testing.T) {
	rules, err := RulesFromConfig(config.AlertsConfig{})
	if err != nil || len(rules) != len(DefaultRules()) {
		t.Fatalf("expected default rules, got %v, %v", rules, err)
	}

	rules, err = RulesFromConfig(config.AlertsConfig{Rules: []config.AlertRule{
		{Name: "loss", Expr: "total_pnl < 0", Scope: "daily", Message: "red day"},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 || rules[0].Scope != ScopeDaily {
		t.Errorf("unexpected rules: %+v", rules)
	}

	_, err = RulesFromConfig(config.AlertsConfig{Rules: []config.AlertRule{{Name: "x", Expr: "bad", Scope: "trade"}}})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}
