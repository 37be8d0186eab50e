package http

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"basketlens/internal/basket"
	apierrors "basketlens/internal/errors"
	"basketlens/internal/services"
)

// MockAnalysisService is a mock implementation of AnalysisServiceInterface
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) OpenSession(ctx context.Context) (*services.SessionInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionInfo), args.Error(1)
}

func (m *MockAnalysisService) SessionInfo(ctx context.Context, sessionID string) (*services.SessionInfo, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionInfo), args.Error(1)
}

func (m *MockAnalysisService) CloseSession(ctx context.Context, sessionID string) error {
	return m.Called(sessionID).Error(0)
}

func (m *MockAnalysisService) Itemsets(ctx context.Context, sessionID string, p services.MiningParams) (*services.ItemsetResult, error) {
	args := m.Called(sessionID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ItemsetResult), args.Error(1)
}

func (m *MockAnalysisService) Rules(ctx context.Context, sessionID string, p services.MiningParams) (*services.RuleResult, error) {
	args := m.Called(sessionID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RuleResult), args.Error(1)
}

func (m *MockAnalysisService) Network(ctx context.Context, sessionID string, p services.MiningParams) (*services.NetworkResult, error) {
	args := m.Called(sessionID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.NetworkResult), args.Error(1)
}

func (m *MockAnalysisService) Summarize(ctx context.Context, sessionID string, p services.MiningParams) (*services.Summary, error) {
	args := m.Called(sessionID, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Summary), args.Error(1)
}

// MockDatasetService is a mock implementation of DatasetServiceInterface
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Info(ctx context.Context) (*services.DatasetInfo, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DatasetInfo), args.Error(1)
}

func (m *MockDatasetService) Items(ctx context.Context) ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDatasetService) ItemFrequency(ctx context.Context, n int) ([]basket.ItemCount, error) {
	args := m.Called(n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]basket.ItemCount), args.Error(1)
}

func (m *MockDatasetService) PairCooccurrence(ctx context.Context, items []string, n int) ([]basket.PairCount, error) {
	args := m.Called(items, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]basket.PairCount), args.Error(1)
}

func (m *MockDatasetService) BasketSizes(ctx context.Context, items []string) ([]basket.SizeBucket, error) {
	args := m.Called(items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]basket.SizeBucket), args.Error(1)
}

func (m *MockDatasetService) Records(ctx context.Context, offset, limit int) (*services.RecordPage, error) {
	args := m.Called(offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RecordPage), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}
