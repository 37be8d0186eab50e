// Package services implements the business logic layer between the HTTP
// handlers and the basket mining core.
//
// # Services
//
//	- DatasetService: loads the transaction log and answers exploration queries
//	- SessionStore: in-memory analysis sessions with idle expiry
//	- AnalysisService: runs group, encode, mine and rules stages inside a session
//	- HealthService: liveness and readiness checks
//
// # Memoization
//
// Each session owns a bounded LRU keyed by dataset version, item filter and
// thresholds. Matrices, itemsets and rules are cached separately, so raising
// min_confidence reuses the mined itemsets and changing the sort order reuses
// the rules. Concurrent identical queries in one session are collapsed with
// singleflight. Nothing is shared between sessions.
//
// # Error Handling
//
// Services return the sentinel errors in errors.go wrapped with context, and pass
// basket.ParameterError and basket.DataError through unchanged so handlers can
// map them with errors.As.
//
// # Empty Results
//
// A threshold that no itemset reaches is not an error. Results carry Empty and a
// Message explaining which threshold to relax.
package services
