package http

import (
	"context"

	"basketlens/internal/basket"
	"basketlens/internal/services"
)

// AnalysisServiceInterface defines the session and mining operations served over HTTP
type AnalysisServiceInterface interface {
	OpenSession(ctx context.Context) (*services.SessionInfo, error)
	SessionInfo(ctx context.Context, sessionID string) (*services.SessionInfo, error)
	CloseSession(ctx context.Context, sessionID string) error

	Itemsets(ctx context.Context, sessionID string, p services.MiningParams) (*services.ItemsetResult, error)
	Rules(ctx context.Context, sessionID string, p services.MiningParams) (*services.RuleResult, error)
	Network(ctx context.Context, sessionID string, p services.MiningParams) (*services.NetworkResult, error)
	Summarize(ctx context.Context, sessionID string, p services.MiningParams) (*services.Summary, error)
}

// DatasetServiceInterface defines the dataset exploration operations
type DatasetServiceInterface interface {
	Info(ctx context.Context) (*services.DatasetInfo, error)
	Items(ctx context.Context) ([]string, error)
	ItemFrequency(ctx context.Context, n int) ([]basket.ItemCount, error)
	PairCooccurrence(ctx context.Context, items []string, n int) ([]basket.PairCount, error)
	BasketSizes(ctx context.Context, items []string) ([]basket.SizeBucket, error)
	Records(ctx context.Context, offset, limit int) (*services.RecordPage, error)
}

// HealthServiceInterface defines the health probes
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
