package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basketlens/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOTelInitializationWithPrometheus(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "basketlens-test",
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1.0,
	}, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer, "tracer falls back to the global provider")
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	require.NotNil(t, providers.PrometheusHTTP)

	metrics, err := CreateMiningMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordStageMetrics(ctx, metrics, "mine", 20*time.Millisecond, 42, nil)
	RecordCacheLookup(ctx, metrics, "itemsets", true)
	RecordCacheLookup(ctx, metrics, "itemsets", false)
	RecordHTTPRequest(ctx, metrics, http.MethodGet, "/api/health", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "mining_runs_total")
	assert.Contains(t, body, "mining_cache_hits_total")
	assert.Contains(t, body, "http_requests_total")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelInitializationDisabled(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{TraceExporter: "none", MetricExporter: "none"})
	assert.Equal(t, config.AppName, cfg.ServiceName)

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.PrometheusHTTP)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)

	_, err = CreateMiningMetrics(providers.Meter)
	assert.NoError(t, err)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestOTelInitializationRejectsUnknownExporters(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "jaeger"}, testLogger())
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{MetricExporter: "statsd"}, testLogger())
	assert.Error(t, err)
}

func TestRecordHelpersTolerateNilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordStageMetrics(ctx, nil, "rules", time.Second, 0, errors.New("boom"))
		RecordCacheLookup(ctx, nil, "rules", true)
		RecordSessionChange(ctx, nil, 1, false)
		RecordHTTPRequest(ctx, nil, "GET", "/", 200, time.Second)
		RecordDatasetLoad(ctx, nil, 10, nil)
	})
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
