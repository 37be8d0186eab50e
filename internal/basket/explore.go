package basket

import (
	"sort"
	"time"
)

// Overview summarises a loaded dataset
type Overview struct {
	Records         int       `json:"records"`
	Transactions    int       `json:"transactions"`
	Customers       int       `json:"customers"`
	Items           int       `json:"items"`
	FirstDate       time.Time `json:"first_date"`
	LastDate        time.Time `json:"last_date"`
	MeanBasketSize  float64   `json:"mean_basket_size"`
	LargestBasket   int       `json:"largest_basket"`
	SingleItemShare float64   `json:"single_item_share"`
}

// ItemCount is an item with the number of rows or transactions it appears in
type ItemCount struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// PairCount is an unordered item pair with the number of transactions containing both
type PairCount struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Count  int    `json:"count"`
}

// SizeBucket is one bar of the basket size histogram
type SizeBucket struct {
	Size  int `json:"size"`
	Count int `json:"count"`
}

// NetworkNode is an itemset that appears on either side of a rule
type NetworkNode struct {
	ID    string   `json:"id"`
	Items []string `json:"items"`
}

// NetworkEdge is a directed rule between two nodes
type NetworkEdge struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Support    float64 `json:"support"`
	Confidence float64 `json:"confidence"`
	Lift       float64 `json:"lift"`
}

// Network is the graph view of a rule set
type Network struct {
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
}

// Summarize computes the dataset overview from records and their grouped transactions
func Summarize(records []Record, transactions []Transaction) Overview {
	ov := Overview{Records: len(records), Transactions: len(transactions)}

	customers := make(map[string]struct{})
	items := make(map[string]struct{})
	for i, rec := range records {
		customers[rec.CustomerID] = struct{}{}
		items[rec.Item] = struct{}{}
		if i == 0 || rec.Date.Before(ov.FirstDate) {
			ov.FirstDate = rec.Date
		}
		if i == 0 || rec.Date.After(ov.LastDate) {
			ov.LastDate = rec.Date
		}
	}
	ov.Customers = len(customers)
	ov.Items = len(items)

	if len(transactions) == 0 {
		return ov
	}

	total, single := 0, 0
	for _, t := range transactions {
		total += t.Size()
		if t.Size() == 1 {
			single++
		}
		if t.Size() > ov.LargestBasket {
			ov.LargestBasket = t.Size()
		}
	}
	ov.MeanBasketSize = float64(total) / float64(len(transactions))
	ov.SingleItemShare = float64(single) / float64(len(transactions))

	return ov
}

// ItemFrequency counts rows per item, most frequent first. n <= 0 returns every item.
func ItemFrequency(records []Record, n int) []ItemCount {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Item]++
	}

	out := make([]ItemCount, 0, len(counts))
	for item, count := range counts {
		out = append(out, ItemCount{Item: item, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Item < out[j].Item
	})

	return truncate(out, n)
}

// PairCooccurrence counts transactions containing each unordered item pair, most frequent first
func PairCooccurrence(transactions []Transaction, n int) []PairCount {
	type pair struct{ a, b string }
	counts := make(map[pair]int)
	for _, t := range transactions {
		for i := 0; i < len(t.Items); i++ {
			for j := i + 1; j < len(t.Items); j++ {
				counts[pair{t.Items[i], t.Items[j]}]++
			}
		}
	}

	out := make([]PairCount, 0, len(counts))
	for p, count := range counts {
		out = append(out, PairCount{First: p.a, Second: p.b, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].First != out[j].First {
			return out[i].First < out[j].First
		}
		return out[i].Second < out[j].Second
	})

	return truncate(out, n)
}

// BasketSizes returns the distribution of distinct items per transaction, by size
func BasketSizes(transactions []Transaction) []SizeBucket {
	counts := make(map[int]int)
	for _, t := range transactions {
		counts[t.Size()]++
	}

	out := make([]SizeBucket, 0, len(counts))
	for size, count := range counts {
		out = append(out, SizeBucket{Size: size, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Size < out[j].Size })
	return out
}

// RuleNetwork turns rules into a directed graph keyed by itemset labels.
// Nodes are ordered by id; edges keep the order of rules.
func RuleNetwork(rules []Rule) Network {
	nodes := make(map[string]NetworkNode)
	edges := make([]NetworkEdge, 0, len(rules))

	for _, r := range rules {
		src, dst := r.AntecedentLabel(), r.ConsequentLabel()
		if _, ok := nodes[src]; !ok {
			nodes[src] = NetworkNode{ID: src, Items: append([]string(nil), r.Antecedent...)}
		}
		if _, ok := nodes[dst]; !ok {
			nodes[dst] = NetworkNode{ID: dst, Items: append([]string(nil), r.Consequent...)}
		}
		edges = append(edges, NetworkEdge{
			Source:     src,
			Target:     dst,
			Support:    r.Support,
			Confidence: r.Confidence,
			Lift:       r.Lift,
		})
	}

	network := Network{Nodes: make([]NetworkNode, 0, len(nodes)), Edges: edges}
	for _, node := range nodes {
		network.Nodes = append(network.Nodes, node)
	}
	sort.Slice(network.Nodes, func(i, j int) bool { return network.Nodes[i].ID < network.Nodes[j].ID })

	return network
}
