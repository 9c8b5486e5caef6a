package analytics

import (
	"fmt"
	"math"

	"github.com/adiptan/trading-journal/internal/core"
)

// FindingKind identifies a behavioral pattern
type FindingKind string

const (
	KindLateNightImpulse FindingKind = "late_night_impulse"
	KindLosingStreak     FindingKind = "losing_streak"
	KindRevengeTrading   FindingKind = "revenge_trading"
)

// Default detector thresholds
const (
	DefaultLateNightHour   = 22
	DefaultMinLosingStreak = 3
)

// Finding is one detected pattern with a human-readable message
type Finding struct {
	Kind    FindingKind
	Value   float64
	Message string
}

// Detector scans trade history for behavioral anti-patterns
type Detector struct {
	LateNightHour   int
	MinLosingStreak int
}

// NewDetector creates a detector. Non-positive arguments use the defaults.
func NewDetector(lateNightHour, minLosingStreak int) *Detector {
	if lateNightHour <= 0 || lateNightHour > 23 {
		lateNightHour = DefaultLateNightHour
	}
	if minLosingStreak <= 0 {
		minLosingStreak = DefaultMinLosingStreak
	}
	return &Detector{LateNightHour: lateNightHour, MinLosingStreak: minLosingStreak}
}

var defaultDetector = NewDetector(0, 0)

// DetectPatterns runs the default detector.
func DetectPatterns(trades core.Trades) []Finding {
	return defaultDetector.Detect(trades)
}

// Detect runs the late-night, losing-streak and revenge checks in that order.
// The streak check walks trades in the order given; the revenge check walks
// a chronologically sorted copy.
func (d *Detector) Detect(trades core.Trades) []Finding {
	var findings []Finding
	if len(trades) == 0 {
		return findings
	}

	if f, ok := d.lateNight(trades); ok {
		findings = append(findings, f)
	}
	if f, ok := d.losingStreak(trades); ok {
		findings = append(findings, f)
	}
	if f, ok := revenge(trades); ok {
		findings = append(findings, f)
	}
	return findings
}

func (d *Detector) lateNight(trades core.Trades) (Finding, bool) {
	impulse := trades.Filter(core.CategoryImpulse)
	if len(impulse) == 0 {
		return Finding{}, false
	}

	late := 0
	for _, t := range impulse {
		if t.Hour() >= d.LateNightHour {
			late++
		}
	}
	if late == 0 {
		return Finding{}, false
	}

	// Halves round to even, matching the %.0f rendering below.
	pct := math.RoundToEven(float64(late) / float64(len(impulse)) * 100)
	return Finding{
		Kind:    KindLateNightImpulse,
		Value:   pct,
		Message: fmt.Sprintf("⚠️ %.0f%% of impulsive trades after %02d:00", pct, d.LateNightHour),
	}, true
}

func (d *Detector) losingStreak(trades core.Trades) (Finding, bool) {
	run, longest := 0, 0
	for _, t := range trades {
		if t.IsLoss() {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	if longest < d.MinLosingStreak {
		return Finding{}, false
	}
	return Finding{
		Kind:    KindLosingStreak,
		Value:   float64(longest),
		Message: fmt.Sprintf("🔴 Longest losing streak: %d in a row", longest),
	}, true
}

func revenge(trades core.Trades) (Finding, bool) {
	sorted := trades.SortChronologically()
	count := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].IsLoss() && sorted[i].Category == core.CategoryImpulse {
			count++
		}
	}
	if count == 0 {
		return Finding{}, false
	}
	return Finding{
		Kind:    KindRevengeTrading,
		Value:   float64(count),
		Message: fmt.Sprintf("😤 %d revenge attempt(s) after a loss", count),
	}, true
}
