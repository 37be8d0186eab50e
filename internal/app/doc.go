// Package app wires basketlens together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, YAML, .env and BASKET_* variables
//	2. Initialize the slog logger and OpenTelemetry providers
//	3. Create the dataset, session, analysis and health services
//	4. Build the chi router with middleware, /api routes and /metrics
//	5. Load the transaction log, start the session sweeper and serve
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run blocks until SIGINT or SIGTERM, then shuts the server down gracefully,
// stops the sweeper and flushes telemetry. Initialization errors are returned
// to the caller; the package never calls os.Exit.
package app
