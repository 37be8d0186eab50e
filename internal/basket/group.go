package basket

import (
	"sort"
	"strings"
	"time"
)

// ItemFilter is an allow-list of item names applied before grouping.
// An empty filter keeps every item.
type ItemFilter map[string]struct{}

// NewItemFilter builds a filter from item names. Blank names and the "ALL" sentinel are ignored;
// if nothing remains the filter keeps every item.
func NewItemFilter(items []string) ItemFilter {
	filter := make(ItemFilter)
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || strings.EqualFold(item, "ALL") {
			continue
		}
		filter[item] = struct{}{}
	}
	if len(filter) == 0 {
		return nil
	}
	return filter
}

// Allows reports whether the item passes the filter
func (f ItemFilter) Allows(item string) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[item]
	return ok
}

// Key returns a canonical key so filters can be part of cache keys
func (f ItemFilter) Key() string {
	if len(f) == 0 {
		return "*"
	}
	items := make([]string, 0, len(f))
	for item := range f {
		items = append(items, item)
	}
	sort.Strings(items)
	return ItemKey(items)
}

type groupKey struct {
	customer string
	day      string
}

// Group merges records sharing (customer, date) into transactions with distinct items.
// Transactions appear in first-seen order of their key.
func Group(records []Record, filter ItemFilter) ([]Transaction, error) {
	index := make(map[groupKey]int)
	seen := make([]map[string]struct{}, 0)
	transactions := make([]Transaction, 0)

	for i, rec := range records {
		if !rec.IsValid() {
			return nil, invalidRecordError(i, rec)
		}
		if !filter.Allows(rec.Item) {
			continue
		}

		key := groupKey{customer: rec.CustomerID, day: rec.Date.Format(time.DateOnly)}
		pos, ok := index[key]
		if !ok {
			pos = len(transactions)
			index[key] = pos
			transactions = append(transactions, Transaction{CustomerID: rec.CustomerID, Date: rec.Date})
			seen = append(seen, make(map[string]struct{}))
		}

		if _, dup := seen[pos][rec.Item]; dup {
			continue
		}
		seen[pos][rec.Item] = struct{}{}
		transactions[pos].Items = append(transactions[pos].Items, rec.Item)
	}

	for i := range transactions {
		sort.Strings(transactions[i].Items)
	}

	return transactions, nil
}

func invalidRecordError(i int, rec Record) *DataError {
	switch {
	case strings.TrimSpace(rec.CustomerID) == "":
		return &DataError{Row: i + 1, Field: "customer_id", Message: "customer id is missing"}
	case rec.Date.IsZero():
		return &DataError{Row: i + 1, Field: "date", Message: "date is missing"}
	default:
		return &DataError{Row: i + 1, Field: "item_name", Message: "item name is missing"}
	}
}
