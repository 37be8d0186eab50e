// Package basket implements market basket analysis over a grocery transaction log.
//
// Purchase rows are grouped into one transaction per customer and day, one-hot encoded
// against the sorted item universe, and mined for frequent itemsets with Apriori. Association
// rules are then derived from the frequent itemsets without rescanning the data.
//
// # Pipeline
//
//   - loader.go: CSV and XLSX ingestion into validated records
//   - group.go: (customer, date) grouping with an optional item allow-list
//   - encode.go: column-major bitset matrix over the item universe
//   - apriori.go: level-wise frequent itemset mining with subset pruning
//   - rules.go: rule enumeration with support, confidence, lift and leverage
//   - rank.go: deterministic top-N selection
//   - explore.go: descriptive statistics and the rule network
//
// # Usage Example
//
//	records, err := basket.LoadFile(ctx, "groceries.csv", basket.DefaultLoadOptions())
//	if err != nil {
//	    return err
//	}
//	transactions, err := basket.Group(records, nil)
//	if err != nil {
//	    return err
//	}
//	sets, err := basket.Mine(ctx, basket.Encode(transactions), basket.DefaultMinSupport)
//	if err != nil {
//	    return err
//	}
//	rules, err := basket.GenerateRules(sets, basket.DefaultMinConfidence)
//	if err != nil {
//	    return err
//	}
//	top := basket.TopRules(rules, basket.ByLift, basket.DefaultTopRules)
//
// A threshold outside (0, 1] is reported as a *ParameterError. A threshold that no itemset
// reaches is not an error: the result is simply empty.
package basket
