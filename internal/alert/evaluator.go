package alert

import (
	"sync"

	"go.uber.org/zap"
)

// Evaluator checks rules of one scope against a metrics snapshot.
type Evaluator struct {
	mu     sync.RWMutex
	rules  []Rule
	logger *zap.Logger
}

// NewEvaluator creates a new alert evaluator.
func NewEvaluator(rules []Rule, logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{rules: rules, logger: logger}
}

// SetRules replaces the rule set.
func (e *Evaluator) SetRules(rules []Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = rules
}

// Rules returns a copy of the current rules.
func (e *Evaluator) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Fire returns the messages of the rules in scope that trigger, in rule order.
func (e *Evaluator) Fire(scope Scope, metrics map[string]float64) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var fired []string
	for i := range e.rules {
		rule := &e.rules[i]
		if rule.Scope != scope || !rule.Evaluate(metrics) {
			continue
		}
		e.logger.Info("alert fired",
			zap.String("rule", rule.Name),
			zap.String("scope", string(scope)),
			zap.String("severity", rule.Severity),
		)
		fired = append(fired, rule.FormatMessage(metrics))
	}
	return fired
}
