package render

import (
	"strings"

	rp "github.com/rmmh/blockfaces/go/resourcepack"
)

// Matches reports whether state satisfies rule. A nil rule always matches.
//
// Within a condition every declared key must be present in state with one of
// its "|" separated values; keys the condition doesn't mention are ignored.
// OR rules need one matching condition (so an empty OR never matches) and
// AND rules need all of them (so an empty AND always does).
func Matches(rule *rp.MatchRule, state VariantState) bool {
	if rule == nil {
		return true
	}
	switch rule.Op {
	case rp.CombineOr:
		for _, cond := range rule.Clauses {
			if matchesCondition(cond, state) {
				return true
			}
		}
		return false
	default:
		for _, cond := range rule.Clauses {
			if !matchesCondition(cond, state) {
				return false
			}
		}
		return true
	}
}

func matchesCondition(cond rp.Condition, state VariantState) bool {
	for key, alts := range cond {
		value, ok := state[key]
		if !ok || !hasAlternative(alts, value) {
			return false
		}
	}
	return true
}

func hasAlternative(alts, value string) bool {
	for {
		alt, rest, more := strings.Cut(alts, "|")
		if alt == value {
			return true
		}
		if !more {
			return false
		}
		alts = rest
	}
}
