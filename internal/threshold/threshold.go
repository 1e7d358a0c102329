// Package threshold implements the 3-tier color classification used by the
// metrics screens and the generated decks, plus the parsing and validation
// of the threshold/color/note payloads stored per customer month.
package threshold

// Classification is the outcome of evaluating a metric against a rule set.
type Classification string

const (
	Color1 Classification = "Color1"
	Color2 Classification = "Color2"
	Color3 Classification = "Color3"
	// Invalid is the worst-case tier: the value met none of the cutoffs.
	Invalid Classification = "Invalid"
)

// RuleSet holds three descending cutoffs. A value belongs to the first tier
// whose cutoff it meets or exceeds.
type RuleSet struct {
	Color1 float64 `json:"Color1"`
	Color2 float64 `json:"Color2"`
	Color3 float64 `json:"Color3"`
}

// Classify walks the ladder Color1 -> Color2 -> Color3. Boundaries are
// inclusive; anything below all three cutoffs is Invalid.
func Classify(value float64, rules RuleSet) Classification {
	switch {
	case value >= rules.Color1:
		return Color1
	case value >= rules.Color2:
		return Color2
	case value >= rules.Color3:
		return Color3
	default:
		return Invalid
	}
}

// ClassifyWorst evaluates several values against the same rule set under
// usage semantics, where a higher value is worse: the Color3 cutoff is
// checked across all inputs first, then Color2, then Color1. The result is
// always the tier reached by the highest input.
func ClassifyWorst(rules RuleSet, values ...float64) Classification {
	anyAtLeast := func(cutoff float64) bool {
		for _, v := range values {
			if v >= cutoff {
				return true
			}
		}
		return false
	}
	switch {
	case anyAtLeast(rules.Color3):
		return Color3
	case anyAtLeast(rules.Color2):
		return Color2
	case anyAtLeast(rules.Color1):
		return Color1
	default:
		return Invalid
	}
}

// Percent derives used/limit as a percentage, treating a zero limit as 0%.
func Percent(used, limit float64) float64 {
	if limit == 0 {
		return 0
	}
	return used * 100 / limit
}
