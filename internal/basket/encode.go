package basket

import (
	"sort"

	"github.com/bits-and-blooms/bitset"
)

// Matrix is the one-hot encoding of a transaction collection.
// Columns follow the sorted item universe; each column is a bitset over rows.
type Matrix struct {
	items   []string
	index   map[string]int
	columns []*bitset.BitSet
	rows    int
}

// Encode builds the item universe and the boolean transaction x item matrix.
// Row i corresponds to transactions[i].
func Encode(transactions []Transaction) *Matrix {
	universe := make(map[string]struct{})
	for _, t := range transactions {
		for _, item := range t.Items {
			universe[item] = struct{}{}
		}
	}

	items := make([]string, 0, len(universe))
	for item := range universe {
		items = append(items, item)
	}
	sort.Strings(items)

	m := &Matrix{
		items:   items,
		index:   make(map[string]int, len(items)),
		columns: make([]*bitset.BitSet, len(items)),
		rows:    len(transactions),
	}
	for col, item := range items {
		m.index[item] = col
		m.columns[col] = bitset.New(uint(len(transactions)))
	}

	for row, t := range transactions {
		for _, item := range t.Items {
			m.columns[m.index[item]].Set(uint(row))
		}
	}

	return m
}

// Items returns the item universe in column order
func (m *Matrix) Items() []string {
	out := make([]string, len(m.items))
	copy(out, m.items)
	return out
}

// Rows returns the number of transactions
func (m *Matrix) Rows() int {
	return m.rows
}

// Cols returns the number of distinct items
func (m *Matrix) Cols() int {
	return len(m.items)
}

// Column returns the column index of an item
func (m *Matrix) Column(item string) (int, bool) {
	col, ok := m.index[item]
	return col, ok
}

// Has reports whether the transaction at row contains the item at col
func (m *Matrix) Has(row, col int) bool {
	if row < 0 || row >= m.rows || col < 0 || col >= len(m.columns) {
		return false
	}
	return m.columns[col].Test(uint(row))
}

// Row materialises one row as a boolean slice in column order
func (m *Matrix) Row(row int) []bool {
	out := make([]bool, len(m.columns))
	for col := range m.columns {
		out[col] = m.Has(row, col)
	}
	return out
}

// count returns how many rows contain every column in cols
func (m *Matrix) count(cols []int) int {
	switch len(cols) {
	case 0:
		return m.rows
	case 1:
		return int(m.columns[cols[0]].Count())
	case 2:
		return int(m.columns[cols[0]].IntersectionCardinality(m.columns[cols[1]]))
	}

	acc := m.columns[cols[0]].Intersection(m.columns[cols[1]])
	for _, col := range cols[2 : len(cols)-1] {
		acc.InPlaceIntersection(m.columns[col])
	}
	return int(acc.IntersectionCardinality(m.columns[cols[len(cols)-1]]))
}
