package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wholesale-registration-app/internal/application"
	"wholesale-registration-app/internal/config"
	apiinfra "wholesale-registration-app/internal/infrastructure/api"
	"wholesale-registration-app/internal/infrastructure/lock"
	"wholesale-registration-app/internal/infrastructure/metrics"
	"wholesale-registration-app/internal/infrastructure/repository"
	shopifyinfra "wholesale-registration-app/internal/infrastructure/shopify"
	"wholesale-registration-app/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	securitymiddleware "wholesale-registration-app/internal/infrastructure/middleware"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level).With().
		Str("service", "wholesale-registration-app").
		Str("environment", cfg.Environment).
		Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional unless it also stores the sessions
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		rdb, err = repository.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to configure Redis")
		}
		defer rdb.Close()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	sessionStorage, closeStorage, err := repository.OpenSessionStorage(connectCtx, cfg.Sessions, rdb)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Sessions.Backend).Msg("Failed to open session storage")
	}
	defer closeStorage(context.Background())
	logger.Info().Str("backend", cfg.Sessions.Backend).Msg("Session storage ready")

	var locker ports.Locker
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb)
	} else {
		logger.Warn().Msg("REDIS_URL not set, provisioning lock is local to this instance")
		locker = lock.NewMemoryLocker()
	}

	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Every Admin document must parse before the first request
	shopifyinfra.MustParseDocuments(application.Documents())

	if !cfg.Shopify.HasCredentials() {
		logger.Warn().Msg("SHOPIFY_API_KEY or SHOPIFY_API_SECRET not set, signed requests will be rejected")
	}
	httpClient := &http.Client{Timeout: cfg.Shopify.AdminTimeout}
	verifier := shopifyinfra.NewVerifier(cfg.Shopify.APIKey, cfg.Shopify.APISecret)
	authenticator := shopifyinfra.NewAdminAuthenticator(cfg.Shopify.APIKey, cfg.Shopify.APISecret, cfg.Shopify.APIVersion, httpClient, logger)
	clientFactory := shopifyinfra.NewClientFactory(authenticator, cfg.Shopify.APIVersion, httpClient, appMetrics, logger)

	// Initialize application services
	shopResolver := application.NewShopResolver(verifier, logger)
	sessionLoader := application.NewSessionLoader(sessionStorage, logger)
	registrationService := application.NewRegistrationService(appMetrics, logger)
	provisioningService := application.NewProvisioningService(
		locker,
		cfg.Provisioning.LockTTL,
		cfg.Shopify.AppProxyPath,
		appMetrics,
		logger,
	)

	handler := apiinfra.NewHandler(
		shopResolver,
		sessionLoader,
		clientFactory,
		verifier,
		registrationService,
		provisioningService,
		logger,
	)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appMetrics.Middleware)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(securitymiddleware.InputValidationMiddleware(logger))
	r.Use(securitymiddleware.AuditLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// App proxy and embedded admin
	handler.Routes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	logger.Info().Msg("Swagger documentation available at " + cfg.AppURL + "/swagger/index.html")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
	logger.Info().Msg("Server stopped")
}
