package config

// Application constants
const (
	AppName    = "basketlens"
	AppVersion = "1.0.0"

	// API Endpoints
	APIBasePath     = "/api"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
