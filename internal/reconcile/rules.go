package reconcile

import "github.com/mvolkov/moneymover/internal/statement"

// RuleMatch records one preset firing against an entry. Index is the
// preset's declaration position in the loaded rule set.
type RuleMatch struct {
	Index  int
	Preset Preset
}

// Engine evaluates presets in declaration order. Stateless and read-only.
type Engine struct {
	presets []Preset
}

func NewEngine(presets []Preset) Engine {
	return Engine{presets: presets}
}

// Evaluate returns every preset that fires for the entry, in declaration
// order. The first match is the proposed label; the rest are retained so
// disambiguation can show alternatives.
func (en Engine) Evaluate(e statement.Entry) []RuleMatch {
	var fired []RuleMatch
	for i, p := range en.presets {
		if p.Conditions.matches(e) {
			fired = append(fired, RuleMatch{Index: i, Preset: p})
		}
	}
	return fired
}
