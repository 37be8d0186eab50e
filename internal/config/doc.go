// Package config loads basketlens configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources overriding earlier ones:
//
//	1. Default() values
//	2. YAML file (BASKET_CONFIG, config.yaml or configs/config.yaml)
//	3. .env file in the working directory
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables use the BASKET_ prefix followed by the section name:
//
//	BASKET_SERVER_PORT=8080
//	BASKET_LOGGING_LEVEL=debug
//	BASKET_DATASET_PATH=data/Groceries_dataset.csv
//	BASKET_MINING_DEFAULT_MIN_SUPPORT=0.01
//	BASKET_MINING_SESSION_TTL=45m
//	BASKET_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// Load rejects invalid ports, non-positive timeouts and default mining thresholds outside
// (0, 1]. Unknown logging outputs fall back to stdout.
package config
