// Package parser turns one-line trade reports into core.Trade values.
//
// Format: PAIR DIRECTION ENTRY EXIT PNL [TAGS...]
//
//	BTC long 45000 46000 +100 strategy
//	ETH short 3000 2950 -50 fomo revenge
package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/adiptan/trading-journal/internal/core"
	"github.com/shopspring/decimal"
)

// Usage is the format hint shown alongside parse errors.
const Usage = "PAIR DIRECTION ENTRY EXIT PNL [TAGS]"

// Example is a well-formed trade line.
const Example = "BTC long 45000 46000 +100 strategy"

const minTokens = 5

var hundred = decimal.NewFromInt(100)

// DefaultDirections maps accepted direction words to directions.
var DefaultDirections = map[string]core.Direction{
	"long":  core.DirectionLong,
	"short": core.DirectionShort,
	"лонг":  core.DirectionLong,
	"шорт":  core.DirectionShort,
}

// Parser parses trade lines. It holds no mutable state and is safe for
// concurrent use.
type Parser struct {
	directions map[string]core.Direction
	classifier *Classifier
}

// New creates a parser. A nil classifier or empty direction table falls
// back to the defaults.
func New(classifier *Classifier, directions map[string]core.Direction) *Parser {
	if classifier == nil {
		classifier = NewClassifier(nil, nil)
	}
	if len(directions) == 0 {
		directions = DefaultDirections
	}
	norm := make(map[string]core.Direction, len(directions))
	for word, dir := range directions {
		norm[strings.ToLower(word)] = dir
	}
	return &Parser{directions: norm, classifier: classifier}
}

// Classifier returns the classifier used for tags.
func (p *Parser) Classifier() *Classifier {
	return p.classifier
}

// Parse builds a trade from text. ExecutedAt is left zero; the caller
// stamps it. Every returned error satisfies core.IsValidation.
func (p *Parser) Parse(text string) (*core.Trade, error) {
	tokens := strings.Fields(text)
	if len(tokens) < minTokens {
		return nil, core.WrapError(core.ErrInsufficientData,
			fmt.Errorf("got %d fields, want at least %d: %s", len(tokens), minTokens, Usage))
	}

	dir, ok := p.directions[strings.ToLower(tokens[1])]
	if !ok {
		return nil, core.WrapError(core.ErrInvalidDirection, fmt.Errorf("%q", tokens[1]))
	}

	entry, err := decimal.NewFromString(tokens[2])
	if err != nil {
		return nil, core.WrapError(core.ErrNonNumeric, fmt.Errorf("entry %q", tokens[2]))
	}
	exit, err := decimal.NewFromString(tokens[3])
	if err != nil {
		return nil, core.WrapError(core.ErrNonNumeric, fmt.Errorf("exit %q", tokens[3]))
	}
	pnl, err := decimal.NewFromString(cleanAmount(tokens[4]))
	if err != nil {
		return nil, core.WrapError(core.ErrNonNumeric, fmt.Errorf("pnl %q", tokens[4]))
	}

	if !entry.IsPositive() || !exit.IsPositive() {
		return nil, core.WrapError(core.ErrNonPositivePrice,
			fmt.Errorf("entry %s, exit %s", entry, exit))
	}

	tags := strings.ToLower(strings.Join(tokens[minTokens:], " "))

	return &core.Trade{
		Pair:       strings.ToUpper(tokens[0]),
		Direction:  dir,
		EntryPrice: entry,
		ExitPrice:  exit,
		PnLUSD:     pnl,
		PnLPct:     PercentChange(entry, exit, dir),
		Category:   p.classifier.Classify(tags),
		Tags:       tags,
	}, nil
}

// PercentChange is the price move from entry to exit in percent, inverted
// for shorts and rounded to 2 places. entry must be positive.
func PercentChange(entry, exit decimal.Decimal, dir core.Direction) decimal.Decimal {
	pct := exit.Sub(entry).Div(entry).Mul(hundred)
	if dir == core.DirectionShort {
		pct = pct.Neg()
	}
	return pct.Round(2)
}

// cleanAmount drops plus signs and currency symbols: "+$100" -> "100".
func cleanAmount(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '+' || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
}
