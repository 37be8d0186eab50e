package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"basketlens/internal/services"
)

type stubHealthService struct {
	ready bool
}

func (s stubHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "ok", Timestamp: time.Now(), Version: "1.0.0-test"}
}

func (s stubHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	status := services.HealthStatus{Status: "ready", Version: "1.0.0-test"}
	if !s.ready {
		status.Status = "not_ready"
		status.Services = map[string]services.ServiceHealth{
			"dataset": {Status: "not_ready", Message: services.ErrDatasetNotLoaded.Error()},
		}
	}
	return status
}

func (s stubHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "alive", Version: "1.0.0-test"}
}

func (s stubHealthService) Version() map[string]interface{} {
	return map[string]interface{}{"version": "1.0.0-test"}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		ready          bool
		path           string
		expectedStatus int
		expectedField  string
		expectedValue  string
	}{
		{"health", true, "/health", http.StatusOK, "status", "ok"},
		{"ready", true, "/health/ready", http.StatusOK, "status", "ready"},
		{"not ready", false, "/health/ready", http.StatusServiceUnavailable, "status", "not_ready"},
		{"live", false, "/health/live", http.StatusOK, "status", "alive"},
		{"version", true, "/version", http.StatusOK, "version", "1.0.0-test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			NewHealthHandler(stubHealthService{ready: tt.ready}, testLogger()).Routes(r)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedValue, body[tt.expectedField])
		})
	}
}
