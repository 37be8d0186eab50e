package basket

import (
	"fmt"
	"sort"
)

// maxRuleItemsetSize bounds the 2^n bipartition enumeration of a single itemset
const maxRuleItemsetSize = 30

// GenerateRules derives every rule A -> C where A and C partition a frequent itemset of
// size >= 2 and confidence(A -> C) >= minConfidence. Supports come from the itemset cache.
func GenerateRules(sets *Itemsets, minConfidence float64) ([]Rule, error) {
	if err := ValidateThreshold("min_confidence", minConfidence); err != nil {
		return nil, err
	}

	rules := make([]Rule, 0)
	for _, set := range sets.All() {
		n := len(set.Items)
		if n < 2 {
			continue
		}
		if n > maxRuleItemsetSize {
			return nil, fmt.Errorf("itemset of size %d exceeds rule enumeration limit %d", n, maxRuleItemsetSize)
		}

		full := uint64(1)<<uint(n) - 1
		for mask := uint64(1); mask < full; mask++ {
			antecedent, consequent := split(set.Items, mask)

			anteSupport, ok := sets.Support(antecedent)
			if !ok {
				return nil, fmt.Errorf("support for antecedent %v missing from itemset cache", antecedent)
			}
			consSupport, ok := sets.Support(consequent)
			if !ok {
				return nil, fmt.Errorf("support for consequent %v missing from itemset cache", consequent)
			}

			confidence := set.Support / anteSupport
			if confidence < minConfidence {
				continue
			}

			rules = append(rules, Rule{
				Antecedent:        antecedent,
				Consequent:        consequent,
				AntecedentSupport: anteSupport,
				ConsequentSupport: consSupport,
				Support:           set.Support,
				Confidence:        confidence,
				Lift:              confidence / consSupport,
				Leverage:          set.Support - anteSupport*consSupport,
			})
		}
	}

	sort.SliceStable(rules, func(i, j int) bool {
		return lessRuleKey(rules[i], rules[j])
	})

	return rules, nil
}

// split partitions sorted items by mask; set bits go to the antecedent. Both halves stay sorted.
func split(items []string, mask uint64) ([]string, []string) {
	var antecedent, consequent []string
	for i, item := range items {
		if mask&(1<<uint(i)) != 0 {
			antecedent = append(antecedent, item)
		} else {
			consequent = append(consequent, item)
		}
	}
	return antecedent, consequent
}

func lessRuleKey(a, b Rule) bool {
	if ItemKey(a.Antecedent) != ItemKey(b.Antecedent) {
		return lessItems(a.Antecedent, b.Antecedent)
	}
	return lessItems(a.Consequent, b.Consequent)
}
