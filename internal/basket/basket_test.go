package basket

import (
	"context"
	"errors"
	"math"
	"slices"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2015, 1, d, 0, 0, 0, 0, time.UTC)
}

func tx(items ...string) Transaction {
	return Transaction{CustomerID: "c", Date: day(1), Items: items}
}

// threeBaskets is {A,B}, {A,B,C}, {A}
func threeBaskets() []Transaction {
	return []Transaction{tx("A", "B"), tx("A", "B", "C"), tx("A")}
}

func groceryRecords() []Record {
	return []Record{
		{CustomerID: "1808", Date: day(21), Item: "tropical fruit"},
		{CustomerID: "1808", Date: day(21), Item: "whole milk"},
		{CustomerID: "1808", Date: day(21), Item: "whole milk"},
		{CustomerID: "2552", Date: day(5), Item: "whole milk"},
		{CustomerID: "2552", Date: day(5), Item: "rolls/buns"},
		{CustomerID: "2552", Date: day(5), Item: "yogurt"},
		{CustomerID: "2300", Date: day(19), Item: "pip fruit"},
		{CustomerID: "1808", Date: day(22), Item: "rolls/buns"},
		{CustomerID: "1808", Date: day(22), Item: "whole milk"},
		{CustomerID: "1808", Date: day(22), Item: "yogurt"},
	}
}

func mine(t *testing.T, transactions []Transaction, minSupport float64) *Itemsets {
	t.Helper()
	sets, err := Mine(context.Background(), Encode(transactions), minSupport)
	require.NoError(t, err)
	require.NotNil(t, sets)
	return sets
}

func TestGoldenThreeBasketScenario(t *testing.T) {
	sets := mine(t, threeBaskets(), 0.34)

	require.Equal(t, 3, sets.Len())
	all := sets.All()
	assert.Equal(t, []string{"A"}, all[0].Items)
	assert.Equal(t, []string{"B"}, all[1].Items)
	assert.Equal(t, []string{"A", "B"}, all[2].Items)

	assert.InDelta(t, 1.0, all[0].Support, 1e-9)
	assert.InDelta(t, 2.0/3.0, all[1].Support, 1e-9)
	assert.InDelta(t, 2.0/3.0, all[2].Support, 1e-9)
	assert.Equal(t, 3, all[0].Count)

	_, ok := sets.Support([]string{"C"})
	assert.False(t, ok, "C occurs in 1 of 3 baskets and must be pruned")

	rules, err := GenerateRules(sets, 0.5)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// sorted by antecedent: A -> B, then B -> A
	assert.Equal(t, []string{"A"}, rules[0].Antecedent)
	assert.Equal(t, []string{"B"}, rules[0].Consequent)
	assert.InDelta(t, 2.0/3.0, rules[0].Confidence, 1e-9)
	assert.InDelta(t, 1.0, rules[0].Lift, 1e-9)
	assert.InDelta(t, 0.0, rules[0].Leverage, 1e-9)

	assert.Equal(t, []string{"B"}, rules[1].Antecedent)
	assert.InDelta(t, 1.0, rules[1].Confidence, 1e-9)
	assert.InDelta(t, 1.0, rules[1].Lift, 1e-9)
}

func TestThresholdValidation(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		valid bool
	}{
		{"zero", 0, false},
		{"negative", -0.1, false},
		{"above one", 1.5, false},
		{"nan", math.NaN(), false},
		{"tiny", 1e-9, true},
		{"one", 1.0, true},
		{"default", DefaultMinSupport, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, mineErr := Mine(context.Background(), Encode(threeBaskets()), tt.value)
			_, rulesErr := GenerateRules(&Itemsets{}, tt.value)

			if tt.valid {
				assert.NoError(t, mineErr)
				assert.NoError(t, rulesErr)
				return
			}

			var perr *ParameterError
			require.True(t, errors.As(mineErr, &perr), "expected ParameterError, got %v", mineErr)
			assert.Equal(t, "min_support", perr.Name)
			require.True(t, errors.As(rulesErr, &perr), "expected ParameterError, got %v", rulesErr)
			assert.Equal(t, "min_confidence", perr.Name)
		})
	}
}

func TestEmptyInputsYieldEmptyResults(t *testing.T) {
	transactions, err := Group(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, transactions)

	m := Encode(transactions)
	assert.Equal(t, 0, m.Rows())
	assert.Equal(t, 0, m.Cols())

	sets := mine(t, transactions, 0.5)
	assert.True(t, sets.IsEmpty())

	rules, err := GenerateRules(sets, 0.5)
	require.NoError(t, err)
	assert.NotNil(t, rules)
	assert.Empty(t, rules)

	var nilSets *Itemsets
	rules, err = GenerateRules(nilSets, 0.5)
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestMinSupportOneKeepsItemsInEveryBasket(t *testing.T) {
	sets := mine(t, threeBaskets(), 1.0)
	require.Equal(t, 1, sets.Len())
	assert.Equal(t, []string{"A"}, sets.All()[0].Items)

	sets = mine(t, []Transaction{tx("A", "B"), tx("B", "C")}, 1.0)
	require.Equal(t, 1, sets.Len())
	assert.Equal(t, []string{"B"}, sets.All()[0].Items)

	sets = mine(t, []Transaction{tx("A"), tx("B")}, 1.0)
	assert.True(t, sets.IsEmpty())
}

func TestSupportInvariants(t *testing.T) {
	transactions, err := Group(groceryRecords(), nil)
	require.NoError(t, err)
	sets := mine(t, transactions, 0.2)
	require.False(t, sets.IsEmpty())

	for _, set := range sets.All() {
		assert.GreaterOrEqual(t, set.Support, 0.2)
		assert.LessOrEqual(t, set.Support, 1.0)

		// every subset obtained by dropping one item is frequent with support >= the superset
		if len(set.Items) < 2 {
			continue
		}
		for skip := range set.Items {
			sub := make([]string, 0, len(set.Items)-1)
			for i, item := range set.Items {
				if i != skip {
					sub = append(sub, item)
				}
			}
			subSupport, ok := sets.Support(sub)
			require.True(t, ok, "subset %v of %v missing", sub, set.Items)
			assert.GreaterOrEqual(t, subSupport, set.Support)
		}
	}

	rules, err := GenerateRules(sets, 0.1)
	require.NoError(t, err)
	for _, r := range rules {
		assert.GreaterOrEqual(t, r.Confidence, 0.1)
		assert.LessOrEqual(t, r.Confidence, 1.0+1e-12)
		assert.GreaterOrEqual(t, r.Lift, 0.0)
	}
}

func TestMiningIsIdempotent(t *testing.T) {
	transactions, err := Group(groceryRecords(), nil)
	require.NoError(t, err)

	first := mine(t, transactions, 0.2)
	second := mine(t, transactions, 0.2)
	assert.Equal(t, first.All(), second.All())

	r1, err := GenerateRules(first, 0.3)
	require.NoError(t, err)
	r2, err := GenerateRules(second, 0.3)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestMineMatchesBruteForce(t *testing.T) {
	transactions := []Transaction{
		tx("bread", "butter", "milk"),
		tx("bread", "butter"),
		tx("beer", "bread"),
		tx("butter", "milk"),
		tx("bread", "butter", "milk", "eggs"),
		tx("eggs", "milk"),
	}
	sets := mine(t, transactions, 0.3)

	universe := make(map[string]struct{})
	for _, tr := range transactions {
		for _, item := range tr.Items {
			universe[item] = struct{}{}
		}
	}
	items := make([]string, 0, len(universe))
	for item := range universe {
		items = append(items, item)
	}
	sort.Strings(items)

	contains := func(tr Transaction, names []string) bool {
		for _, name := range names {
			if !slices.Contains(tr.Items, name) {
				return false
			}
		}
		return true
	}

	expected := 0
	for mask := 1; mask < 1<<len(items); mask++ {
		var names []string
		for i := range items {
			if mask&(1<<i) != 0 {
				names = append(names, items[i])
			}
		}
		count := 0
		for _, tr := range transactions {
			if contains(tr, names) {
				count++
			}
		}
		support := float64(count) / float64(len(transactions))
		got, ok := sets.Support(names)
		if support >= 0.3 {
			expected++
			require.True(t, ok, "itemset %v with support %.3f missing", names, support)
			assert.InDelta(t, support, got, 1e-12)
		} else {
			assert.False(t, ok, "itemset %v with support %.3f should be pruned", names, support)
		}
	}
	assert.Equal(t, expected, sets.Len())
}

func TestMaxLength(t *testing.T) {
	miner := NewMiner(nil)
	miner.SetMaxLength(1)

	sets, err := miner.Mine(context.Background(), Encode(threeBaskets()), 0.34)
	require.NoError(t, err)
	assert.Equal(t, 1, sets.MaxLen())
	assert.Len(t, sets.OfSize(1), 2)
}

func TestMineHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Mine(ctx, Encode(threeBaskets()), 0.34)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
