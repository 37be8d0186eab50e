package basket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRulesEnumeratesAllBipartitions(t *testing.T) {
	transactions := []Transaction{tx("A", "B", "C", "D"), tx("A", "B", "C", "D")}
	sets := mine(t, transactions, 1.0)
	require.Equal(t, 15, sets.Len())

	rules, err := GenerateRules(sets, 1.0)
	require.NoError(t, err)

	// sum over itemsets of size k of (2^k - 2): 6*2 + 4*6 + 1*14
	assert.Len(t, rules, 50)

	seen := make(map[string]bool)
	for _, r := range rules {
		key := ItemKey(r.Antecedent) + "->" + ItemKey(r.Consequent)
		assert.False(t, seen[key], "duplicate rule %s", key)
		seen[key] = true
		assert.NotEmpty(t, r.Antecedent)
		assert.NotEmpty(t, r.Consequent)
		assert.InDelta(t, 1.0, r.Lift, 1e-12)
	}
}

func TestGenerateRulesFiltersByConfidence(t *testing.T) {
	sets := mine(t, threeBaskets(), 0.34)

	rules, err := GenerateRules(sets, 0.9)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "B", rules[0].AntecedentLabel())
	assert.Equal(t, "A", rules[0].ConsequentLabel())
}

func TestTopItemsets(t *testing.T) {
	sets := []Itemset{
		{Items: []string{"b", "c"}, Support: 0.5},
		{Items: []string{"c"}, Support: 0.5},
		{Items: []string{"a"}, Support: 0.9},
		{Items: []string{"b"}, Support: 0.5},
	}
	original := append([]Itemset(nil), sets...)

	top := TopItemsets(sets, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"a"}, top[0].Items)
	assert.Equal(t, []string{"b"}, top[1].Items)
	assert.Equal(t, []string{"c"}, top[2].Items)
	assert.Equal(t, original, sets, "input must not be reordered")

	assert.Len(t, TopItemsets(sets, 0), 4)
	assert.Len(t, TopItemsets(sets, 10), 4)
	assert.Empty(t, TopItemsets(nil, 5))
}

func TestTopRules(t *testing.T) {
	rules := []Rule{
		{Antecedent: []string{"b"}, Consequent: []string{"a"}, Support: 0.2, Confidence: 0.4, Lift: 2.0},
		{Antecedent: []string{"a"}, Consequent: []string{"c"}, Support: 0.3, Confidence: 0.4, Lift: 1.2},
		{Antecedent: []string{"a"}, Consequent: []string{"b"}, Support: 0.2, Confidence: 0.9, Lift: 2.0},
	}

	tests := []struct {
		metric RuleMetric
		first  string
		second string
	}{
		{ByLift, "a->b", "b->a"},
		{ByConfidence, "a->b", "a->c"},
		{BySupport, "a->c", "a->b"},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			top := TopRules(rules, tt.metric, 2)
			require.Len(t, top, 2)
			assert.Equal(t, tt.first, top[0].AntecedentLabel()+"->"+top[0].ConsequentLabel())
			assert.Equal(t, tt.second, top[1].AntecedentLabel()+"->"+top[1].ConsequentLabel())
		})
	}

	assert.Equal(t, "b", rules[0].AntecedentLabel(), "input must not be reordered")
}

func TestParseRuleMetric(t *testing.T) {
	for input, want := range map[string]RuleMetric{
		"":            ByLift,
		"lift":        ByLift,
		" Confidence": ByConfidence,
		"SUPPORT":     BySupport,
	} {
		got, err := ParseRuleMetric(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRuleMetric("conviction")
	var perr *ParameterError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "sort", perr.Name)
}
