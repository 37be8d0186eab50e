package basket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	records := groceryRecords()
	transactions, err := Group(records, nil)
	require.NoError(t, err)

	ov := Summarize(records, transactions)
	assert.Equal(t, 10, ov.Records)
	assert.Equal(t, 4, ov.Transactions)
	assert.Equal(t, 3, ov.Customers)
	assert.Equal(t, 5, ov.Items)
	assert.Equal(t, day(5), ov.FirstDate)
	assert.Equal(t, day(22), ov.LastDate)
	assert.InDelta(t, 9.0/4.0, ov.MeanBasketSize, 1e-12)
	assert.Equal(t, 3, ov.LargestBasket)
	assert.InDelta(t, 0.25, ov.SingleItemShare, 1e-12)

	empty := Summarize(nil, nil)
	assert.Zero(t, empty.MeanBasketSize)
}

func TestItemFrequency(t *testing.T) {
	freq := ItemFrequency(groceryRecords(), 2)
	require.Len(t, freq, 2)
	assert.Equal(t, ItemCount{Item: "whole milk", Count: 4}, freq[0])
	// rolls/buns and yogurt tie at 2
	assert.Equal(t, ItemCount{Item: "rolls/buns", Count: 2}, freq[1])

	assert.Len(t, ItemFrequency(groceryRecords(), 0), 5)
}

func TestPairCooccurrence(t *testing.T) {
	transactions, err := Group(groceryRecords(), nil)
	require.NoError(t, err)

	pairs := PairCooccurrence(transactions, 0)
	require.NotEmpty(t, pairs)
	assert.Equal(t, PairCount{First: "rolls/buns", Second: "whole milk", Count: 2}, pairs[0])
	assert.Equal(t, PairCount{First: "rolls/buns", Second: "yogurt", Count: 2}, pairs[1])
	assert.Equal(t, PairCount{First: "whole milk", Second: "yogurt", Count: 2}, pairs[2])
	assert.Len(t, pairs, 4)
}

func TestBasketSizes(t *testing.T) {
	transactions, err := Group(groceryRecords(), nil)
	require.NoError(t, err)

	assert.Equal(t, []SizeBucket{
		{Size: 1, Count: 1},
		{Size: 2, Count: 1},
		{Size: 3, Count: 2},
	}, BasketSizes(transactions))
}

func TestRuleNetwork(t *testing.T) {
	sets := mine(t, threeBaskets(), 0.34)
	rules, err := GenerateRules(sets, 0.5)
	require.NoError(t, err)

	network := RuleNetwork(rules)
	require.Len(t, network.Nodes, 2)
	assert.Equal(t, "A", network.Nodes[0].ID)
	assert.Equal(t, "B", network.Nodes[1].ID)
	require.Len(t, network.Edges, 2)
	assert.Equal(t, "A", network.Edges[0].Source)
	assert.Equal(t, "B", network.Edges[0].Target)

	assert.Empty(t, RuleNetwork(nil).Nodes)
}
