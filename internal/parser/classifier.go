package parser

import (
	"strings"

	"github.com/adiptan/trading-journal/internal/core"
)

// Default marker lists. Both languages the journal is used in are covered.
var (
	DefaultStrategyMarkers = []string{"стратегия", "strategy", "план", "plan"}
	DefaultImpulseMarkers  = []string{"фомо", "fomo", "импульс", "impulse", "отыгрыш", "revenge", "тильт", "tilt"}
)

// Classifier maps free-text tags to a trade category by substring markers.
// Strategy markers are checked before impulse markers.
type Classifier struct {
	strategy []string
	impulse  []string
}

// NewClassifier creates a classifier. Empty lists fall back to the defaults.
func NewClassifier(strategy, impulse []string) *Classifier {
	if len(strategy) == 0 {
		strategy = DefaultStrategyMarkers
	}
	if len(impulse) == 0 {
		impulse = DefaultImpulseMarkers
	}
	return &Classifier{
		strategy: normalizeMarkers(strategy),
		impulse:  normalizeMarkers(impulse),
	}
}

// Classify returns the category for already lower-cased tag text.
func (c *Classifier) Classify(tags string) core.Category {
	if containsAny(tags, c.strategy) {
		return core.CategoryStrategy
	}
	if containsAny(tags, c.impulse) {
		return core.CategoryImpulse
	}
	return core.CategoryUnknown
}

// StrategyMarkers returns a copy of the strategy marker list.
func (c *Classifier) StrategyMarkers() []string {
	return append([]string(nil), c.strategy...)
}

// ImpulseMarkers returns a copy of the impulse marker list.
func (c *Classifier) ImpulseMarkers() []string {
	return append([]string(nil), c.impulse...)
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func normalizeMarkers(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}
