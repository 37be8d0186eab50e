package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"basketlens/internal/basket"
	"basketlens/internal/infrastructure"
)

// Dataset is an immutable snapshot of a loaded transaction log
type Dataset struct {
	source       string
	version      string
	loadedAt     time.Time
	records      []basket.Record
	transactions []basket.Transaction
	items        []string
	overview     basket.Overview
}

// NewDataset groups records into transactions and fingerprints the snapshot.
// The version changes whenever any record changes, so it is safe to use in cache keys.
func NewDataset(source string, records []basket.Record) (*Dataset, error) {
	transactions, err := basket.Group(records, nil)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, rec := range records {
		seen[rec.Item] = struct{}{}
	}
	items := make([]string, 0, len(seen))
	for item := range seen {
		items = append(items, item)
	}
	sort.Strings(items)

	return &Dataset{
		source:       source,
		version:      fingerprint(records),
		loadedAt:     time.Now().UTC(),
		records:      records,
		transactions: transactions,
		items:        items,
		overview:     basket.Summarize(records, transactions),
	}, nil
}

func fingerprint(records []basket.Record) string {
	h := sha256.New()
	for _, rec := range records {
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\n", rec.CustomerID, rec.Date.Format(time.DateOnly), rec.Item)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Source returns the path the dataset was loaded from
func (d *Dataset) Source() string { return d.source }

// Version returns the content fingerprint
func (d *Dataset) Version() string { return d.version }

// LoadedAt returns when the dataset was loaded
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Records returns the raw purchase rows; callers must not modify them
func (d *Dataset) Records() []basket.Record { return d.records }

// Transactions returns the unfiltered transactions; callers must not modify them
func (d *Dataset) Transactions() []basket.Transaction { return d.transactions }

// Items returns the distinct item names in lexicographic order
func (d *Dataset) Items() []string {
	out := make([]string, len(d.items))
	copy(out, d.items)
	return out
}

// Overview returns the summary statistics of the snapshot
func (d *Dataset) Overview() basket.Overview { return d.overview }

// DatasetInfo describes the loaded snapshot
type DatasetInfo struct {
	Source   string          `json:"source"`
	Version  string          `json:"version"`
	LoadedAt time.Time       `json:"loaded_at"`
	Overview basket.Overview `json:"overview"`
}

// RecordPage is a window over the raw records
type RecordPage struct {
	Records []basket.Record `json:"records"`
	Offset  int             `json:"offset"`
	Limit   int             `json:"limit"`
	Total   int             `json:"total"`
}

// DatasetService owns the currently loaded dataset and serves exploration queries
type DatasetService struct {
	mu      sync.RWMutex
	current *Dataset
	opts    basket.LoadOptions
	tracer  trace.Tracer
	metrics *infrastructure.MiningMetrics
	logger  *slog.Logger
}

// NewDatasetService creates a dataset service; metrics may be nil
func NewDatasetService(opts basket.LoadOptions, metrics *infrastructure.MiningMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		opts:    opts,
		tracer:  otel.Tracer(infrastructure.MeterName),
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dataset_service")),
	}
}

// Load reads a CSV or XLSX transaction log and makes it the current dataset.
// On failure the previous dataset stays in place.
func (s *DatasetService) Load(ctx context.Context, path string) (*Dataset, error) {
	ctx, span := s.tracer.Start(ctx, "basket.load", trace.WithAttributes(attribute.String("dataset.path", path)))
	defer span.End()

	start := time.Now()
	records, err := basket.LoadFile(ctx, path, s.opts)
	if err == nil && len(records) == 0 {
		err = &basket.DataError{Field: "records", Message: "dataset contains no rows"}
	}
	var ds *Dataset
	if err == nil {
		ds, err = NewDataset(path, records)
	}
	infrastructure.RecordDatasetLoad(ctx, s.metrics, len(records), err)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}

	s.Replace(ds)

	span.SetAttributes(
		attribute.Int("dataset.records", len(records)),
		attribute.Int("dataset.transactions", len(ds.transactions)),
	)
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.String("version", ds.version),
		slog.Int("records", len(records)),
		slog.Int("transactions", len(ds.transactions)),
		slog.Int("items", len(ds.items)),
		slog.Duration("duration", time.Since(start)),
	)
	return ds, nil
}

// Replace installs an already built dataset
func (s *DatasetService) Replace(ds *Dataset) {
	s.mu.Lock()
	s.current = ds
	s.mu.Unlock()
}

// Current returns the loaded dataset or ErrDatasetNotLoaded
func (s *DatasetService) Current() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, ErrDatasetNotLoaded
	}
	return s.current, nil
}

// Info returns a description of the loaded dataset
func (s *DatasetService) Info(ctx context.Context) (*DatasetInfo, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return &DatasetInfo{
		Source:   ds.source,
		Version:  ds.version,
		LoadedAt: ds.loadedAt,
		Overview: ds.overview,
	}, nil
}

// Overview returns the dataset summary statistics
func (s *DatasetService) Overview(ctx context.Context) (basket.Overview, error) {
	ds, err := s.Current()
	if err != nil {
		return basket.Overview{}, err
	}
	return ds.overview, nil
}

// Items returns the distinct item catalogue
func (s *DatasetService) Items(ctx context.Context) ([]string, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return ds.Items(), nil
}

// ItemFrequency returns the n most purchased items by row count
func (s *DatasetService) ItemFrequency(ctx context.Context, n int) ([]basket.ItemCount, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	return basket.ItemFrequency(ds.records, n), nil
}

// PairCooccurrence returns the n most frequent item pairs, optionally within an allow-list
func (s *DatasetService) PairCooccurrence(ctx context.Context, items []string, n int) ([]basket.PairCount, error) {
	transactions, err := s.filtered(items)
	if err != nil {
		return nil, err
	}
	return basket.PairCooccurrence(transactions, n), nil
}

// BasketSizes returns the basket size histogram, optionally within an allow-list
func (s *DatasetService) BasketSizes(ctx context.Context, items []string) ([]basket.SizeBucket, error) {
	transactions, err := s.filtered(items)
	if err != nil {
		return nil, err
	}
	return basket.BasketSizes(transactions), nil
}

// Records returns a page of raw records
func (s *DatasetService) Records(ctx context.Context, offset, limit int) (*RecordPage, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}

	total := len(ds.records)
	offset = min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}

	page := make([]basket.Record, end-offset)
	copy(page, ds.records[offset:end])
	return &RecordPage{Records: page, Offset: offset, Limit: limit, Total: total}, nil
}

func (s *DatasetService) filtered(items []string) ([]basket.Transaction, error) {
	ds, err := s.Current()
	if err != nil {
		return nil, err
	}
	filter := basket.NewItemFilter(items)
	if filter == nil {
		return ds.transactions, nil
	}
	return basket.Group(ds.records, filter)
}
