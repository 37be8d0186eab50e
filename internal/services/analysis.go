package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"basketlens/internal/basket"
	"basketlens/internal/config"
	"basketlens/internal/infrastructure"
)

// DatasetProvider supplies the current dataset snapshot
type DatasetProvider interface {
	Current() (*Dataset, error)
}

// MiningParams are the knobs of one analysis query. Zero thresholds fall back to
// the configured defaults; out of range values are rejected.
type MiningParams struct {
	MinSupport    float64
	MinConfidence float64
	Items         []string
	Sort          basket.RuleMetric
	Limit         int
}

// ItemsetResult is a ranked page of frequent itemsets
type ItemsetResult struct {
	SessionID    string           `json:"session_id"`
	MinSupport   float64          `json:"min_support"`
	Transactions int              `json:"transactions"`
	Total        int              `json:"total"`
	MaxLength    int              `json:"max_length"`
	Itemsets     []basket.Itemset `json:"itemsets"`
	Empty        bool             `json:"empty"`
	Message      string           `json:"message,omitempty"`
}

// RuleResult is a ranked page of association rules
type RuleResult struct {
	SessionID     string            `json:"session_id"`
	MinSupport    float64           `json:"min_support"`
	MinConfidence float64           `json:"min_confidence"`
	Sort          basket.RuleMetric `json:"sort"`
	Transactions  int               `json:"transactions"`
	Total         int               `json:"total"`
	Rules         []basket.Rule     `json:"rules"`
	Empty         bool              `json:"empty"`
	Message       string            `json:"message,omitempty"`
}

// NetworkResult is the rule graph for visualisation
type NetworkResult struct {
	SessionID string         `json:"session_id"`
	Network   basket.Network `json:"network"`
	Empty     bool           `json:"empty"`
	Message   string         `json:"message,omitempty"`
}

// Summary condenses one analysis into headline counts and top lists
type Summary struct {
	SessionID     string           `json:"session_id"`
	Dataset       basket.Overview  `json:"dataset"`
	MinSupport    float64          `json:"min_support"`
	MinConfidence float64          `json:"min_confidence"`
	ItemsetCount  int              `json:"itemset_count"`
	RuleCount     int              `json:"rule_count"`
	TopItemsets   []basket.Itemset `json:"top_itemsets"`
	TopRules      []basket.Rule    `json:"top_rules"`
	Empty         bool             `json:"empty"`
	Message       string           `json:"message,omitempty"`
}

// prepared is the grouped and encoded view of a dataset under one item filter
type prepared struct {
	matrix       *basket.Matrix
	transactions int
}

// AnalysisService runs the mining pipeline inside analysis sessions
type AnalysisService struct {
	datasets DatasetProvider
	sessions *SessionStore
	miner    *basket.Miner
	defaults config.MiningConfig
	tracer   trace.Tracer
	metrics  *infrastructure.MiningMetrics
	logger   *slog.Logger
}

// NewAnalysisService creates the analysis service; metrics may be nil
func NewAnalysisService(datasets DatasetProvider, sessions *SessionStore, defaults config.MiningConfig, metrics *infrastructure.MiningMetrics, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	miner := basket.NewMiner(logger.With(slog.String("component", "miner")))
	miner.SetMaxLength(defaults.MaxItemsetLength)

	return &AnalysisService{
		datasets: datasets,
		sessions: sessions,
		miner:    miner,
		defaults: defaults,
		tracer:   otel.Tracer(infrastructure.MeterName),
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "analysis_service")),
	}
}

// Sessions exposes the session store
func (a *AnalysisService) Sessions() *SessionStore {
	return a.sessions
}

// OpenSession starts a new analysis session
func (a *AnalysisService) OpenSession(ctx context.Context) (*SessionInfo, error) {
	sess, err := a.sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	return a.sessions.Info(ctx, sess.ID)
}

// SessionInfo describes a live session
func (a *AnalysisService) SessionInfo(ctx context.Context, sessionID string) (*SessionInfo, error) {
	return a.sessions.Info(ctx, sessionID)
}

// CloseSession ends a session and releases its memo
func (a *AnalysisService) CloseSession(ctx context.Context, sessionID string) error {
	return a.sessions.Delete(ctx, sessionID)
}

// withDefaults fills unset parameters from configuration and validates the result
func (a *AnalysisService) withDefaults(p MiningParams, needConfidence bool) (MiningParams, error) {
	if p.MinSupport == 0 {
		p.MinSupport = a.defaults.DefaultMinSupport
	}
	if p.MinConfidence == 0 {
		p.MinConfidence = a.defaults.DefaultMinConfidence
	}
	if p.Sort == "" {
		p.Sort = basket.ByLift
	}

	if err := basket.ValidateThreshold("min_support", p.MinSupport); err != nil {
		return p, err
	}
	if needConfidence {
		if err := basket.ValidateThreshold("min_confidence", p.MinConfidence); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Itemsets mines the frequent itemsets of the current dataset
func (a *AnalysisService) Itemsets(ctx context.Context, sessionID string, p MiningParams) (*ItemsetResult, error) {
	p, err := a.withDefaults(p, false)
	if err != nil {
		return nil, err
	}
	if p.Limit == 0 {
		p.Limit = a.defaults.TopItemsets
	}

	sess, ds, err := a.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	filter := basket.NewItemFilter(p.Items)
	prep, err := a.prepare(ctx, sess, ds, filter)
	if err != nil {
		return nil, err
	}
	sets, err := a.mine(ctx, sess, ds, filter, prep, p.MinSupport)
	if err != nil {
		return nil, err
	}

	result := &ItemsetResult{
		SessionID:    sess.ID,
		MinSupport:   p.MinSupport,
		Transactions: prep.transactions,
		Total:        sets.Len(),
		MaxLength:    sets.MaxLen(),
		Itemsets:     basket.TopItemsets(sets.All(), p.Limit),
	}
	if sets.IsEmpty() {
		result.Empty = true
		result.Itemsets = []basket.Itemset{}
		result.Message = emptyItemsetsMessage(prep, p.MinSupport)
	}
	return result, nil
}

// Rules mines association rules of the current dataset
func (a *AnalysisService) Rules(ctx context.Context, sessionID string, p MiningParams) (*RuleResult, error) {
	p, err := a.withDefaults(p, true)
	if err != nil {
		return nil, err
	}
	if p.Limit == 0 {
		p.Limit = a.defaults.TopRules
	}

	sess, ds, err := a.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rules, prep, sets, err := a.rulesFor(ctx, sess, ds, p)
	if err != nil {
		return nil, err
	}

	result := &RuleResult{
		SessionID:     sess.ID,
		MinSupport:    p.MinSupport,
		MinConfidence: p.MinConfidence,
		Sort:          p.Sort,
		Transactions:  prep.transactions,
		Total:         len(rules),
		Rules:         basket.TopRules(rules, p.Sort, p.Limit),
	}
	if len(rules) == 0 {
		result.Empty = true
		result.Rules = []basket.Rule{}
		if sets.IsEmpty() {
			result.Message = emptyItemsetsMessage(prep, p.MinSupport)
		} else {
			result.Message = fmt.Sprintf("No association rules were found for support %.3f and confidence %.2f. Try lowering the thresholds.", p.MinSupport, p.MinConfidence)
		}
	}
	return result, nil
}

// Network builds the rule graph from the top ranked rules
func (a *AnalysisService) Network(ctx context.Context, sessionID string, p MiningParams) (*NetworkResult, error) {
	rules, err := a.Rules(ctx, sessionID, p)
	if err != nil {
		return nil, err
	}
	return &NetworkResult{
		SessionID: rules.SessionID,
		Network:   basket.RuleNetwork(rules.Rules),
		Empty:     rules.Empty,
		Message:   rules.Message,
	}, nil
}

// Summarize reports headline counts and the top lists. A non-zero Limit overrides
// the configured list lengths; -1 keeps every itemset and rule.
func (a *AnalysisService) Summarize(ctx context.Context, sessionID string, p MiningParams) (*Summary, error) {
	p, err := a.withDefaults(p, true)
	if err != nil {
		return nil, err
	}

	sess, ds, err := a.open(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rules, prep, sets, err := a.rulesFor(ctx, sess, ds, p)
	if err != nil {
		return nil, err
	}

	topItemsets, topRules := a.defaults.TopItemsets, a.defaults.TopRules
	if p.Limit != 0 {
		topItemsets, topRules = p.Limit, p.Limit
	}

	summary := &Summary{
		SessionID:     sess.ID,
		Dataset:       ds.Overview(),
		MinSupport:    p.MinSupport,
		MinConfidence: p.MinConfidence,
		ItemsetCount:  sets.Len(),
		RuleCount:     len(rules),
		TopItemsets:   basket.TopItemsets(sets.All(), topItemsets),
		TopRules:      basket.TopRules(rules, p.Sort, topRules),
	}
	switch {
	case sets.IsEmpty():
		summary.Empty = true
		summary.Message = emptyItemsetsMessage(prep, p.MinSupport)
	case len(rules) == 0:
		summary.Message = "Frequent itemsets were found but no rule meets the confidence threshold."
	}
	return summary, nil
}

func (a *AnalysisService) open(ctx context.Context, sessionID string) (*Session, *Dataset, error) {
	sess, err := a.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ds, err := a.datasets.Current()
	if err != nil {
		return nil, nil, err
	}
	return sess, ds, nil
}

func (a *AnalysisService) rulesFor(ctx context.Context, sess *Session, ds *Dataset, p MiningParams) ([]basket.Rule, *prepared, *basket.Itemsets, error) {
	filter := basket.NewItemFilter(p.Items)
	prep, err := a.prepare(ctx, sess, ds, filter)
	if err != nil {
		return nil, nil, nil, err
	}
	sets, err := a.mine(ctx, sess, ds, filter, prep, p.MinSupport)
	if err != nil {
		return nil, nil, nil, err
	}

	key := memoKey("rules", ds.Version(), filter.Key(), formatThreshold(p.MinSupport), formatThreshold(p.MinConfidence))
	rules, err := memoize(ctx, sess, a.metrics, "rules", key, func(ctx context.Context) ([]basket.Rule, error) {
		return runStage(ctx, a, "rules", func(ctx context.Context) ([]basket.Rule, int, error) {
			rules, err := basket.GenerateRules(sets, p.MinConfidence)
			return rules, len(rules), err
		}, attribute.Float64("basket.min_confidence", p.MinConfidence))
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return rules, prep, sets, nil
}

// prepare groups and encodes the dataset under a filter, memoized per session
func (a *AnalysisService) prepare(ctx context.Context, sess *Session, ds *Dataset, filter basket.ItemFilter) (*prepared, error) {
	key := memoKey("matrix", ds.Version(), filter.Key())
	return memoize(ctx, sess, a.metrics, "matrix", key, func(ctx context.Context) (*prepared, error) {
		transactions := ds.Transactions()
		if filter != nil {
			var err error
			transactions, err = runStage(ctx, a, "group", func(ctx context.Context) ([]basket.Transaction, int, error) {
				tx, err := basket.Group(ds.Records(), filter)
				return tx, len(tx), err
			}, attribute.Int("basket.filter_items", len(filter)))
			if err != nil {
				return nil, err
			}
		}

		matrix, err := runStage(ctx, a, "encode", func(ctx context.Context) (*basket.Matrix, int, error) {
			m := basket.Encode(transactions)
			return m, m.Cols(), nil
		}, attribute.Int("basket.transactions", len(transactions)))
		if err != nil {
			return nil, err
		}
		return &prepared{matrix: matrix, transactions: len(transactions)}, nil
	})
}

// mine runs Apriori for one support threshold, memoized per session
func (a *AnalysisService) mine(ctx context.Context, sess *Session, ds *Dataset, filter basket.ItemFilter, prep *prepared, minSupport float64) (*basket.Itemsets, error) {
	key := memoKey("itemsets", ds.Version(), filter.Key(), formatThreshold(minSupport))
	return memoize(ctx, sess, a.metrics, "itemsets", key, func(ctx context.Context) (*basket.Itemsets, error) {
		return runStage(ctx, a, "mine", func(ctx context.Context) (*basket.Itemsets, int, error) {
			sets, err := a.miner.Mine(ctx, prep.matrix, minSupport)
			return sets, sets.Len(), err
		}, attribute.Float64("basket.min_support", minSupport))
	})
}

// runStage wraps one pipeline step in a span and records its metrics
func runStage[T any](ctx context.Context, a *AnalysisService, name string, run func(ctx context.Context) (T, int, error), attrs ...attribute.KeyValue) (T, error) {
	ctx, span := a.tracer.Start(ctx, "basket."+name, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	result, n, err := run(ctx)
	duration := time.Since(start)

	infrastructure.RecordStageMetrics(ctx, a.metrics, name, duration, n, err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		a.logger.WarnContext(ctx, "pipeline stage failed",
			slog.String("stage", name),
			slog.String("error", err.Error()),
		)
		var zero T
		return zero, err
	}

	span.SetAttributes(attribute.Int("basket.results", n))
	a.logger.InfoContext(ctx, "pipeline stage completed",
		slog.String("stage", name),
		slog.Int("results", n),
		slog.Duration("duration", duration),
	)
	return result, nil
}

func memoKey(parts ...string) string {
	return strings.Join(parts, "|")
}

func formatThreshold(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func emptyItemsetsMessage(prep *prepared, minSupport float64) string {
	if prep.transactions == 0 {
		return "Filtered dataset is empty. Adjust the filters to include more data."
	}
	return fmt.Sprintf("No frequent itemsets were found for support %.3f. Try lowering the support threshold.", minSupport)
}
