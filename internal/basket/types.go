package basket

import (
	"strings"
	"time"
)

// keySep joins item names into a canonical set key. The loader rejects item names
// containing control characters, so keys are unambiguous.
const keySep = "\x1f"

// Default thresholds used by the dashboard before a caller tunes them.
const (
	DefaultMinSupport    = 0.008
	DefaultMinConfidence = 0.10

	// DefaultTopItemsets is the number of itemsets shown in the top list
	DefaultTopItemsets = 10
	// DefaultTopRules is the number of rules shown in the top list
	DefaultTopRules = 6
)

// Record is a single purchase row from the transaction log
type Record struct {
	CustomerID string    `json:"customer_id"`
	Date       time.Time `json:"date"`
	Item       string    `json:"item"`
}

// IsValid reports whether all record fields are populated
func (r Record) IsValid() bool {
	return strings.TrimSpace(r.CustomerID) != "" && !r.Date.IsZero() && strings.TrimSpace(r.Item) != ""
}

// Transaction is the set of distinct items one customer bought on one day
type Transaction struct {
	CustomerID string    `json:"customer_id"`
	Date       time.Time `json:"date"`
	Items      []string  `json:"items"` // sorted, distinct
}

// Size returns the number of distinct items in the transaction
func (t Transaction) Size() int {
	return len(t.Items)
}

// Itemset is a frequent item combination with its exact support
type Itemset struct {
	Items   []string `json:"items"`
	Count   int      `json:"count"`
	Support float64  `json:"support"`
}

// Key returns the canonical key of the itemset
func (s Itemset) Key() string {
	return ItemKey(s.Items)
}

// Label returns a human readable rendering such as "rolls/buns, whole milk"
func (s Itemset) Label() string {
	return strings.Join(s.Items, ", ")
}

// Rule is a directed association rule antecedent -> consequent
type Rule struct {
	Antecedent        []string `json:"antecedent"`
	Consequent        []string `json:"consequent"`
	AntecedentSupport float64  `json:"antecedent_support"`
	ConsequentSupport float64  `json:"consequent_support"`
	Support           float64  `json:"support"`
	Confidence        float64  `json:"confidence"`
	Lift              float64  `json:"lift"`
	Leverage          float64  `json:"leverage"`
}

// AntecedentLabel renders the antecedent as a comma separated list
func (r Rule) AntecedentLabel() string {
	return strings.Join(r.Antecedent, ", ")
}

// ConsequentLabel renders the consequent as a comma separated list
func (r Rule) ConsequentLabel() string {
	return strings.Join(r.Consequent, ", ")
}

// ItemKey builds the canonical key for a sorted item slice
func ItemKey(items []string) string {
	return strings.Join(items, keySep)
}
