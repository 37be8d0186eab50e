package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"basketlens/internal/basket"
	"basketlens/internal/config"
	apierrors "basketlens/internal/errors"
	"basketlens/internal/infrastructure"
	customMiddleware "basketlens/internal/middleware"
	"basketlens/internal/services"
	handlers "basketlens/internal/transport/http"
	"basketlens/internal/validation"
)

// Version is reported by /api/version; release builds override it with -ldflags
var Version = config.AppVersion

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.MiningMetrics
	ErrorHandler  *apierrors.ErrorHandler

	Datasets *services.DatasetService
	Sessions *services.SessionStore
	Analysis *services.AnalysisService
	Health   *services.HealthService

	listener    net.Listener
	stopSweeper context.CancelFunc
	serveErr    chan error
}

// NewApplication loads configuration from the environment and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires services, router and server from an explicit configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateMiningMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// loadOptions maps the dataset config section onto loader options
func loadOptions(cfg config.DatasetConfig) basket.LoadOptions {
	return basket.LoadOptions{
		CustomerColumn: cfg.CustomerColumn,
		DateColumn:     cfg.DateColumn,
		ItemColumn:     cfg.ItemColumn,
		DateLayouts:    cfg.DateLayouts,
		Sheet:          cfg.Sheet,
	}
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.Datasets = services.NewDatasetService(loadOptions(a.Config.Dataset), a.Metrics, a.Logger)
	a.Sessions = services.NewSessionStore(
		a.Config.Mining.SessionTTL,
		a.Config.Mining.MaxSessions,
		a.Config.Mining.CacheSize,
		a.Metrics,
		a.Logger,
	)
	a.Analysis = services.NewAnalysisService(a.Datasets, a.Sessions, a.Config.Mining, a.Metrics, a.Logger)
	a.Health = services.NewHealthService(Version, a.Datasets, a.Sessions, a.Logger)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Ordering: RequestID → RealIP → OTel → Logger → Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
			a.ErrorHandler,
		).Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupAPIRoutes(r)

	// Prometheus scrape endpoint sits outside /api so the request timeout does not apply
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Compress(5))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.ErrorHandler))

		handlers.NewHealthHandler(a.Health, a.Logger).Routes(r)

		datasetHandler := handlers.NewDatasetHandler(a.Datasets, a.Logger, a.ErrorHandler)
		r.Mount("/dataset", datasetHandler.Routes())

		sessionHandler := handlers.NewSessionHandler(a.Analysis, a.Logger, a.ErrorHandler)
		r.Mount("/sessions", sessionHandler.Routes())
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// sweepInterval is how often expired sessions are collected
func (a *Application) sweepInterval() time.Duration {
	interval := a.Config.Mining.SessionTTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// LoadDataset loads the configured transaction log. A load failure is fatal: the
// API has nothing to serve without it.
func (a *Application) LoadDataset(ctx context.Context) error {
	if a.Config.Dataset.Path == "" {
		return fmt.Errorf("no dataset configured: set dataset.path or %s_DATASET_PATH", config.EnvPrefix)
	}
	if err := validation.NewFileValidator(a.Logger).ValidateDataset(a.Config.Dataset.Path); err != nil {
		return err
	}
	if _, err := a.Datasets.Load(ctx, a.Config.Dataset.Path); err != nil {
		return fmt.Errorf("failed to load dataset %s: %w", a.Config.Dataset.Path, err)
	}
	return nil
}

// Start loads the dataset, starts the session sweeper and begins serving on the
// configured port. It returns once the listener is bound.
func (a *Application) Start(ctx context.Context) error {
	if err := a.LoadDataset(ctx); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	sweepCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	a.stopSweeper = stop
	go a.Sessions.Run(sweepCtx, a.sweepInterval())

	a.serveErr = make(chan error, 1)
	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			a.serveErr <- err
		}
		close(a.serveErr)
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", ln.Addr().String()),
		slog.String("dataset", a.Config.Dataset.Path))
	return nil
}

// Addr returns the bound listen address, or nil before Start
func (a *Application) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.stopSweeper != nil {
		a.stopSweeper()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted or the server fails
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Received interrupt signal")
	case serveErr = <-a.serveErr:
	}

	if err := a.Stop(context.Background()); err != nil {
		return err
	}
	return serveErr
}
