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
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"salespulse/internal/analytics"
	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/infrastructure"
	customMiddleware "salespulse/internal/middleware"
	"salespulse/internal/services"
	handlers "salespulse/internal/transport/http"
	ws "salespulse/internal/websocket"
	"salespulse/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Paths           *config.Paths
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	OTelProviders   *infrastructure.OTelProviders
	Metrics         *infrastructure.AnalysisMetrics
	WebSocketHub    *ws.Hub
	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService

	errorHandler *apierrors.ErrorHandler
	listener     net.Listener
}

// NewApplication loads the configuration, initializes logging and builds the
// application.
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

// New wires every component from an already loaded configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version))

	paths := cfg.GetPaths()
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: providers,
		errorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	var wsMetrics *ws.OTelMetrics
	if a.OTelProviders.Meter != nil {
		metrics, err := infrastructure.CreateAnalysisMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create analysis metrics: %w", err)
		}
		a.Metrics = metrics

		wsMetrics, err = ws.NewOTelMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create websocket metrics: %w", err)
		}
	}

	hub := ws.NewHub(a.Logger, wsMetrics)
	hub.Start()
	a.WebSocketHub = hub

	parser := dataprocessing.NewParser(a.Logger, dataprocessing.ParserOptions{
		Delimiter: a.Config.Analysis.DelimiterRune(),
	})
	ingestor := dataprocessing.NewIngestor(a.Logger, parser, a.Config.Analysis.MaxConcurrentSources)
	ingestor.OnSourceError = func(ctx context.Context, source string, _ error) {
		infrastructure.RecordSourceFailure(ctx, a.Metrics, source)
	}

	a.AnalysisService = services.NewAnalysisService(
		ingestor,
		analytics.OptionsFrom(a.Config.Analysis),
		a.Logger,
		services.WithBroadcaster(hub),
		services.WithMetrics(a.Metrics),
	)

	a.HealthService = services.NewHealthService(
		contracts.Version,
		a.Paths.ReportsDir,
		a.AnalysisService,
		hub,
		a.Logger,
	)

	return nil
}

// setupRouter builds the middleware chain and mounts every route.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Nothing ahead of /ws may buffer or wrap the writer without Hijack.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	r.Handle("/ws", ws.NewHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger))

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.errorHandler))
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.errorHandler,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes mounts the /api tree.
func (a *Application) setupAPIRoutes(r chi.Router) {
	analysisHandler := handlers.NewAnalysisHandler(
		a.AnalysisService,
		exporter.NewCSVWriter(a.Paths, a.Logger),
		exporter.NewWorkbookWriter(a.Paths, a.Logger),
		customMiddleware.NewValidator(a.Logger),
		a.Config.Server.MaxUploadBytes,
		a.Logger,
		a.errorHandler,
	)
	healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Mount("/analysis", analysisHandler.Routes())
	})
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
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

// createServer creates the HTTP server
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

// Addr returns the address the server listens on once started.
func (a *Application) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.Server.Addr
}

// Start binds the listener and serves in the background. A serve failure
// calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("address", ln.Addr().String()),
		slog.String("reports_dir", a.Paths.ReportsDir),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	// Websocket connections are hijacked and survive Shutdown.
	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	err := a.Stop(context.Background())
	if closeErr := infrastructure.CloseLogFile(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// performStartupHealthCheck verifies the output directories are writable.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	directories := map[string]string{
		"data":    a.Paths.DataDir,
		"reports": a.Paths.ReportsDir,
	}

	var errs []error
	for name, dir := range directories {
		testFile := filepath.Join(dir, ".write_test")
		if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
			errs = append(errs, fmt.Errorf("%s directory not writable: %s", name, dir))
			continue
		}
		os.Remove(testFile)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
