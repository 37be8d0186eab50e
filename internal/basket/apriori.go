package basket

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Itemsets is the result of one mining run at a fixed minimum support.
// Supports are cached by canonical key so rule generation never rescans the matrix.
type Itemsets struct {
	sets    []Itemset
	support map[string]float64
}

// Len returns the number of frequent itemsets
func (s *Itemsets) Len() int {
	if s == nil {
		return 0
	}
	return len(s.sets)
}

// IsEmpty reports the valid "no frequent itemsets" outcome
func (s *Itemsets) IsEmpty() bool {
	return s.Len() == 0
}

// All returns the itemsets ordered by size, then lexicographically
func (s *Itemsets) All() []Itemset {
	if s == nil {
		return nil
	}
	out := make([]Itemset, len(s.sets))
	copy(out, s.sets)
	return out
}

// OfSize returns the frequent itemsets containing exactly k items
func (s *Itemsets) OfSize(k int) []Itemset {
	var out []Itemset
	for _, set := range s.All() {
		if len(set.Items) == k {
			out = append(out, set)
		}
	}
	return out
}

// Support looks up the support of a sorted item slice
func (s *Itemsets) Support(items []string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.support[ItemKey(items)]
	return v, ok
}

// MaxLen returns the size of the largest frequent itemset
func (s *Itemsets) MaxLen() int {
	longest := 0
	for _, set := range s.All() {
		if len(set.Items) > longest {
			longest = len(set.Items)
		}
	}
	return longest
}

// Miner runs level-wise Apriori over an encoded matrix
type Miner struct {
	logger *slog.Logger
	maxLen int
}

// NewMiner creates a miner that logs to the given logger
func NewMiner(logger *slog.Logger) *Miner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Miner{logger: logger}
}

// SetMaxLength caps the itemset size; 0 means unbounded
func (mn *Miner) SetMaxLength(n int) {
	if n < 0 {
		n = 0
	}
	mn.maxLen = n
}

// Mine computes every itemset whose support is at least minSupport
func Mine(ctx context.Context, m *Matrix, minSupport float64) (*Itemsets, error) {
	return NewMiner(nil).Mine(ctx, m, minSupport)
}

// Mine computes every itemset whose support is at least minSupport.
// An empty matrix or a threshold above every support yields an empty, non-nil result.
func (mn *Miner) Mine(ctx context.Context, m *Matrix, minSupport float64) (*Itemsets, error) {
	if err := ValidateThreshold("min_support", minSupport); err != nil {
		return nil, err
	}

	result := &Itemsets{support: make(map[string]float64)}
	if m == nil || m.Rows() == 0 {
		return result, nil
	}

	start := time.Now()
	rows := float64(m.Rows())
	frequent := func(count int) bool {
		return float64(count)/rows >= minSupport
	}

	// Level 1
	var level [][]int
	for col := 0; col < m.Cols(); col++ {
		count := m.count([]int{col})
		if frequent(count) {
			level = append(level, []int{col})
			result.add(m, []int{col}, count)
		}
	}

	for k := 2; len(level) > 0; k++ {
		if mn.maxLen > 0 && k > mn.maxLen {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("mining cancelled at level %d: %w", k, err)
		}

		candidates := generateCandidates(level)
		var next [][]int
		for _, cand := range candidates {
			count := m.count(cand)
			if frequent(count) {
				next = append(next, cand)
				result.add(m, cand, count)
			}
		}

		mn.logger.DebugContext(ctx, "apriori level complete",
			"level", k,
			"candidates", len(candidates),
			"frequent", len(next),
		)
		level = next
	}

	sort.SliceStable(result.sets, func(i, j int) bool {
		a, b := result.sets[i].Items, result.sets[j].Items
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return lessItems(a, b)
	})

	mn.logger.InfoContext(ctx, "frequent itemsets mined",
		"min_support", minSupport,
		"transactions", m.Rows(),
		"items", m.Cols(),
		"itemsets", len(result.sets),
		"duration", time.Since(start),
	)

	return result, nil
}

func (s *Itemsets) add(m *Matrix, cols []int, count int) {
	items := make([]string, len(cols))
	for i, col := range cols {
		items[i] = m.items[col]
	}
	support := float64(count) / float64(m.Rows())
	s.sets = append(s.sets, Itemset{Items: items, Count: count, Support: support})
	s.support[ItemKey(items)] = support
}

// generateCandidates joins (k-1)-itemsets sharing their first k-2 columns and drops
// every candidate with an infrequent (k-1)-subset. level must be sorted lexicographically.
func generateCandidates(level [][]int) [][]int {
	known := make(map[string]struct{}, len(level))
	for _, set := range level {
		known[colKey(set)] = struct{}{}
	}

	var candidates [][]int
	for i := 0; i < len(level); i++ {
		a := level[i]
		for j := i + 1; j < len(level); j++ {
			b := level[j]
			if !samePrefix(a, b) {
				// level is sorted, so no later set shares a's prefix
				break
			}

			cand := make([]int, len(a)+1)
			copy(cand, a)
			cand[len(a)] = b[len(b)-1]

			if allSubsetsFrequent(cand, known) {
				candidates = append(candidates, cand)
			}
		}
	}
	return candidates
}

func samePrefix(a, b []int) bool {
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// allSubsetsFrequent checks every subset obtained by dropping one element
func allSubsetsFrequent(cand []int, known map[string]struct{}) bool {
	sub := make([]int, 0, len(cand)-1)
	for skip := range cand {
		sub = sub[:0]
		for i, col := range cand {
			if i != skip {
				sub = append(sub, col)
			}
		}
		if _, ok := known[colKey(sub)]; !ok {
			return false
		}
	}
	return true
}

func colKey(cols []int) string {
	var b strings.Builder
	for i, col := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(col))
	}
	return b.String()
}

// lessItems orders sorted item slices lexicographically, shorter prefix first
func lessItems(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
