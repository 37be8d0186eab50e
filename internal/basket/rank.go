package basket

import (
	"sort"
	"strings"
)

// RuleMetric selects the ranking key for rules
type RuleMetric string

const (
	// ByLift ranks rules by lift
	ByLift RuleMetric = "lift"
	// ByConfidence ranks rules by confidence
	ByConfidence RuleMetric = "confidence"
	// BySupport ranks rules by support
	BySupport RuleMetric = "support"
)

// ParseRuleMetric parses a metric name; the empty string selects lift
func ParseRuleMetric(name string) (RuleMetric, error) {
	switch RuleMetric(strings.ToLower(strings.TrimSpace(name))) {
	case "", ByLift:
		return ByLift, nil
	case ByConfidence:
		return ByConfidence, nil
	case BySupport:
		return BySupport, nil
	default:
		return "", &ParameterError{Name: "sort", Value: name, Message: "must be one of lift, confidence, support"}
	}
}

func (m RuleMetric) value(r Rule) float64 {
	switch m {
	case ByConfidence:
		return r.Confidence
	case BySupport:
		return r.Support
	default:
		return r.Lift
	}
}

// TopItemsets returns the n itemsets with the highest support. Ties are broken by size, then
// by item names. n <= 0 returns all itemsets ranked. The input slice is not modified.
func TopItemsets(sets []Itemset, n int) []Itemset {
	ranked := make([]Itemset, len(sets))
	copy(ranked, sets)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		if len(a.Items) != len(b.Items) {
			return len(a.Items) < len(b.Items)
		}
		return lessItems(a.Items, b.Items)
	})

	return truncate(ranked, n)
}

// TopRules returns the n rules with the highest value of metric, ties broken by antecedent
// and then consequent names. n <= 0 returns all rules ranked. The input slice is not modified.
func TopRules(rules []Rule, metric RuleMetric, n int) []Rule {
	ranked := make([]Rule, len(rules))
	copy(ranked, rules)

	sort.SliceStable(ranked, func(i, j int) bool {
		vi, vj := metric.value(ranked[i]), metric.value(ranked[j])
		if vi != vj {
			return vi > vj
		}
		return lessRuleKey(ranked[i], ranked[j])
	})

	return truncate(ranked, n)
}

func truncate[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
