package basket

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupDeduplicatesByCustomerAndDay(t *testing.T) {
	transactions, err := Group(groceryRecords(), nil)
	require.NoError(t, err)
	require.Len(t, transactions, 4)

	// first-seen order of (customer, date)
	assert.Equal(t, "1808", transactions[0].CustomerID)
	assert.Equal(t, []string{"tropical fruit", "whole milk"}, transactions[0].Items)
	assert.Equal(t, []string{"rolls/buns", "whole milk", "yogurt"}, transactions[1].Items)
	assert.Equal(t, []string{"pip fruit"}, transactions[2].Items, "single item baskets are kept")
	assert.Equal(t, day(22), transactions[3].Date)
}

func TestGroupTreatsSameDayInOtherLocationAsSameKey(t *testing.T) {
	loc := time.FixedZone("X", 0)
	records := []Record{
		{CustomerID: "1", Date: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), Item: "milk"},
		{CustomerID: "1", Date: time.Date(2015, 1, 1, 0, 0, 0, 0, loc), Item: "bread"},
	}
	transactions, err := Group(records, nil)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, []string{"bread", "milk"}, transactions[0].Items)
}

func TestGroupWithFilter(t *testing.T) {
	filter := NewItemFilter([]string{"whole milk", " yogurt ", ""})
	transactions, err := Group(groceryRecords(), filter)
	require.NoError(t, err)

	// the pip fruit basket disappears entirely
	require.Len(t, transactions, 3)
	for _, tr := range transactions {
		for _, item := range tr.Items {
			assert.Contains(t, []string{"whole milk", "yogurt"}, item)
		}
	}
	assert.Equal(t, []string{"whole milk"}, transactions[0].Items)
}

func TestNewItemFilter(t *testing.T) {
	assert.Nil(t, NewItemFilter(nil))
	assert.Nil(t, NewItemFilter([]string{"ALL"}))
	assert.Nil(t, NewItemFilter([]string{" ", "all"}))

	var empty ItemFilter
	assert.True(t, empty.Allows("anything"))
	assert.Equal(t, "*", empty.Key())

	f := NewItemFilter([]string{"yogurt", "bread"})
	assert.True(t, f.Allows("bread"))
	assert.False(t, f.Allows("milk"))
	assert.Equal(t, ItemKey([]string{"bread", "yogurt"}), f.Key())
	assert.Equal(t, f.Key(), NewItemFilter([]string{"bread", "yogurt"}).Key())
}

func TestGroupRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		field  string
	}{
		{"blank customer", Record{Date: day(1), Item: "milk"}, "customer_id"},
		{"zero date", Record{CustomerID: "1", Item: "milk"}, "date"},
		{"blank item", Record{CustomerID: "1", Date: day(1), Item: " "}, "item_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []Record{{CustomerID: "9", Date: day(2), Item: "tea"}, tt.record}
			_, err := Group(records, nil)

			var derr *DataError
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, 2, derr.Row)
			assert.Equal(t, tt.field, derr.Field)
		})
	}
}

func TestEncode(t *testing.T) {
	m := Encode(threeBaskets())

	assert.Equal(t, []string{"A", "B", "C"}, m.Items())
	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 3, m.Cols())
	assert.Equal(t, []bool{true, true, false}, m.Row(0))
	assert.Equal(t, []bool{true, true, true}, m.Row(1))
	assert.Equal(t, []bool{true, false, false}, m.Row(2))

	col, ok := m.Column("C")
	require.True(t, ok)
	assert.Equal(t, 2, col)
	assert.True(t, m.Has(1, col))
	assert.False(t, m.Has(5, col))

	_, ok = m.Column("Z")
	assert.False(t, ok)
}

func TestEncodeIsDeterministic(t *testing.T) {
	a := Encode([]Transaction{tx("milk", "bread"), tx("eggs")})
	b := Encode([]Transaction{tx("milk", "bread"), tx("eggs")})
	assert.Equal(t, a.Items(), b.Items())
	assert.Equal(t, []string{"bread", "eggs", "milk"}, a.Items())

	items := a.Items()
	items[0] = "mutated"
	assert.Equal(t, "bread", a.Items()[0])
}
