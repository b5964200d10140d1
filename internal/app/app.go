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
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"ugbmonitor/internal/config"
	"ugbmonitor/internal/dataprocessing"
	apierrors "ugbmonitor/internal/errors"
	"ugbmonitor/internal/infrastructure"
	customMiddleware "ugbmonitor/internal/middleware"
	"ugbmonitor/internal/services"
	"ugbmonitor/internal/session"
	"ugbmonitor/internal/storage"
	handlers "ugbmonitor/internal/transport/http"
	"ugbmonitor/internal/validation"
	ws "ugbmonitor/internal/websocket"
)

// BuildTime is set at link time.
var BuildTime = ""

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	WebSocketHub  *ws.Hub
	Services      *ServiceContainer

	redis *redis.Client
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dataset  *services.DatasetService
	Health   *services.HealthService
	Storage  *storage.Manager
	Sessions *session.Repository
}

// NewApplication loads the configuration, initializes the global logger and
// builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	cfg.Logging.FilePath = paths.LogFile

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(context.Background(), cfg, logger)
}

// New builds the application from an explicit configuration and logger.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	if err := app.initializeServices(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices(ctx context.Context) error {
	store, err := storage.NewFromConfig(ctx, a.Config, a.Paths, a.Logger, a.Metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	healthOpts := []services.HealthOption{
		services.WithBuildTime(BuildTime),
		services.WithStorage(a.Config.Storage.Backend, a.Paths.DataDir),
	}

	var sessionStore session.Store
	switch a.Config.Session.Backend {
	case "redis":
		a.redis = session.NewRedisClient(a.Config.Session)
		rs := session.NewRedisStore(a.redis, a.Config.Session.KeyPrefix, a.Config.Session.TTL)
		if err := rs.Ping(ctx); err != nil {
			a.Logger.WarnContext(ctx, "Session store not reachable at startup",
				slog.String("addr", a.Config.Session.RedisAddr),
				slog.String("error", err.Error()))
		}
		sessionStore = rs
		healthOpts = append(healthOpts, services.WithSessionStore(rs))
	default:
		sessionStore = session.NewMemoryStore(a.Config.Session.TTL)
	}
	repo := session.NewRepository(sessionStore, store, a.Logger)

	hub := ws.NewHub(a.Logger, a.Metrics, a.Config.WebSocket)
	hub.Start()
	a.WebSocketHub = hub
	healthOpts = append(healthOpts, services.WithHub(hub))

	processor := dataprocessing.NewProcessor(a.Logger, dataprocessing.WithMetrics(a.Metrics))

	a.Services = &ServiceContainer{
		Dataset:  services.NewDatasetService(processor, store, repo, hub, a.Metrics, a.Logger),
		Health:   services.NewHealthService(config.AppVersion, a.Logger, healthOpts...),
		Storage:  store,
		Sessions: repo,
	}

	a.Logger.InfoContext(ctx, "Services initialized",
		slog.String("storage_backend", store.Backend().Name()),
		slog.String("session_backend", a.Config.Session.Backend))
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	// These don't wrap the ResponseWriter, so they are safe for /ws.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	sessions := customMiddleware.Session(customMiddleware.SessionConfig{
		Cookie: a.Config.Session.Cookie,
		TTL:    a.Config.Session.TTL,
		Logger: a.Logger,
	})

	wsHandler := handlers.NewWebSocketHandler(a.WebSocketHub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger), sessions).Handle(config.WebSocketEndpoint, wsHandler)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → headers → CORS → rate limit
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.getCORSConfig()))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Compress(5))
		r.Use(sessions)
		r.Use(customMiddleware.AuditLog(a.Logger))

		r.Route(config.APIBasePath, func(r chi.Router) {
			a.setupAPIRoutes(r, errorHandler)
		})
	})

	r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router, errorHandler *apierrors.ErrorHandler) {
	requestTimeout := a.Config.Server.ReadTimeout

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
	clientLogHandler := handlers.NewClientLogHandler(a.Logger, errorHandler)

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Timeout(requestTimeout, a.Logger))
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Mount("/metrics", metricsHandler.Routes())
		r.Post("/client-log", clientLogHandler.Handle)
	})

	datasetHandler := handlers.NewDatasetHandler(
		a.Services.Dataset,
		validation.NewFileValidator(a.Logger, a.Config.Upload),
		handlers.DatasetHandlerConfig{
			RequestTimeout: requestTimeout,
			UploadTimeout:  a.Config.Server.UploadTimeout,
		},
		a.Logger,
		errorHandler,
	)
	datasetHandler.RegisterRoutes(r)
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			customMiddleware.SessionHeader,
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			customMiddleware.SessionHeader,
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer creates the HTTP server. The write timeout covers the
// upload route, which may run longer than other requests.
func (a *Application) createServer() {
	writeTimeout := a.Config.Server.WriteTimeout
	if upload := a.Config.Server.UploadTimeout + 5*time.Second; upload > writeTimeout {
		writeTimeout = upload
	}
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Serve runs the HTTP server until ctx is cancelled or the server fails,
// then shuts the application down. A nil listener listens on the
// configured port.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := a.Server.Addr
		if ln != nil {
			addr = ln.Addr().String()
		}
		a.Logger.InfoContext(ctx, "HTTP server listening", slog.String("address", addr))

		var err error
		if ln != nil {
			err = a.Server.Serve(ln)
		} else {
			err = a.Server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := a.performStartupHealthCheck(gctx); err != nil {
			a.Logger.WarnContext(gctx, "Startup health check warnings", slog.String("warnings", err.Error()))
		}
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx, nil)
}

// performStartupHealthCheck reports dependencies that are not ready. The
// server keeps running; readiness probes report the same state.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status == "ready" {
		a.Logger.InfoContext(ctx, "Startup health check passed")
		return nil
	}

	var warnings []error
	for name, svc := range status.Services {
		if svc.Status != "ready" {
			warnings = append(warnings, fmt.Errorf("%s: %s", name, svc.Message))
		}
	}
	return errors.Join(warnings...)
}
