package exporter

import (
	"basketlens/internal/basket"
)

// Table is one sheet of export output
type Table struct {
	Name    string
	Headers []string
	Rows    [][]interface{}
}

// ItemsetTable flattens frequent itemsets in their given order
func ItemsetTable(sets []basket.Itemset) Table {
	t := Table{
		Name:    "itemsets",
		Headers: []string{"rank", "itemset", "size", "count", "support"},
		Rows:    make([][]interface{}, 0, len(sets)),
	}
	for i, set := range sets {
		t.Rows = append(t.Rows, []interface{}{i + 1, set.Label(), len(set.Items), set.Count, set.Support})
	}
	return t
}

// RuleTable flattens association rules in their given order
func RuleTable(rules []basket.Rule) Table {
	t := Table{
		Name: "rules",
		Headers: []string{
			"rank", "antecedent", "consequent",
			"antecedent_support", "consequent_support", "support",
			"confidence", "lift", "leverage",
		},
		Rows: make([][]interface{}, 0, len(rules)),
	}
	for i, r := range rules {
		t.Rows = append(t.Rows, []interface{}{
			i + 1, r.AntecedentLabel(), r.ConsequentLabel(),
			r.AntecedentSupport, r.ConsequentSupport, r.Support,
			r.Confidence, r.Lift, r.Leverage,
		})
	}
	return t
}

// OverviewTable renders dataset statistics as key/value rows
func OverviewTable(ov basket.Overview) Table {
	rows := [][]interface{}{
		{"records", ov.Records},
		{"transactions", ov.Transactions},
		{"customers", ov.Customers},
		{"items", ov.Items},
		{"mean_basket_size", ov.MeanBasketSize},
		{"largest_basket", ov.LargestBasket},
		{"single_item_share", ov.SingleItemShare},
	}
	if !ov.FirstDate.IsZero() {
		rows = append(rows,
			[]interface{}{"first_date", ov.FirstDate.Format("2006-01-02")},
			[]interface{}{"last_date", ov.LastDate.Format("2006-01-02")},
		)
	}
	return Table{Name: "overview", Headers: []string{"metric", "value"}, Rows: rows}
}
