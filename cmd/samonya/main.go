package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/samonya/pkg/api"
	"github.com/platinummonkey/samonya/pkg/auth"
	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/chat"
	"github.com/platinummonkey/samonya/pkg/config"
	"github.com/platinummonkey/samonya/pkg/export"
	"github.com/platinummonkey/samonya/pkg/gate"
	"github.com/platinummonkey/samonya/pkg/generation"
	"github.com/platinummonkey/samonya/pkg/httputil"
	"github.com/platinummonkey/samonya/pkg/ledger"
	"github.com/platinummonkey/samonya/pkg/memory"
	"github.com/platinummonkey/samonya/pkg/middleware"
	"github.com/platinummonkey/samonya/pkg/observability"
	"github.com/platinummonkey/samonya/pkg/orchestrator"
	"github.com/platinummonkey/samonya/pkg/payment"
	"github.com/platinummonkey/samonya/pkg/pricing"
	"github.com/platinummonkey/samonya/pkg/session"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("service", cfg.Observability.OTelServiceName)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Samonya market exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *observability.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelCfg := cfg.Observability.OTel()
	if otelCfg.ServiceVersion == "" {
		otelCfg.ServiceVersion = version
	}
	providers, err := observability.InitOTel(ctx, otelCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	// Catalog
	holder := catalog.NewHolder(catalog.Default())
	if cfg.Catalog.Path != "" {
		if err := holder.LoadFile(cfg.Catalog.Path); err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		logger.WithField("path", cfg.Catalog.Path).Info("Catalog override loaded")
	}
	rotator := catalog.NewRotator(holder, logger)
	if err := rotator.Start(cfg.Catalog.InspirationSchedule); err != nil {
		return err
	}

	// Redis backs client memory and rate limits when configured
	var (
		redisClient *redis.Client
		profiles    memory.Store = memory.NewInMemoryStore()
		otpLimiter  middleware.Limiter
		apiLimiter  middleware.Limiter
	)
	otpLimits := &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.Auth.OTPLimit,
		WindowDuration:    cfg.Auth.OTPWindow,
	}
	apiLimits := &middleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerMinute,
		WindowDuration:    time.Minute,
		BurstSize:         cfg.RateLimit.Burst,
	}
	if cfg.Redis.URL != "" {
		redisClient, err = memory.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		profiles = memory.NewRedisStore(redisClient, cfg.Redis.ProfileTTL)
		otpLimiter = middleware.NewDistributedRateLimiter(redisClient, otpLimits, "ratelimit:otp")
		apiLimiter = middleware.NewDistributedRateLimiter(redisClient, apiLimits, "ratelimit:api")
		logger.Info("Redis profile store and rate limits enabled")
	} else {
		local := middleware.NewRateLimiter(otpLimits)
		local.StartCleanup(ctx, logger)
		otpLimiter = local

		perSession := middleware.NewRateLimiter(apiLimits)
		perSession.StartCleanup(ctx, logger)
		apiLimiter = perSession
	}
	if !cfg.RateLimit.Enabled {
		apiLimiter = nil
	}

	db, journal, err := openJournal(cfg.Journal, logger)
	if err != nil {
		return err
	}

	// Generation and chat
	resolver := pricing.NewResolver(holder)
	accessGate := gate.New(metrics)
	var (
		generator generation.Generator = generation.OfflineGenerator{}
		chatter   chat.Chatter         = chat.OfflineChatter{}
	)
	if cfg.OfflineMode() {
		logger.Warn("No OpenAI API key configured, using offline generation")
	} else {
		gen, err := generation.NewOpenAIGenerator(cfg.Generation.OpenAI, logger)
		if err != nil {
			return err
		}
		client, err := generation.NewOpenAIClient(cfg.Generation.OpenAI)
		if err != nil {
			return err
		}
		generator = gen
		chatter = chat.NewOpenAIChatter(client, cfg.Generation.ChatModel, catalog.SystemInstruction(holder.Current().Company))
	}

	// Export storage
	var store export.Store = export.InlineStore{}
	if cfg.Export.Bucket != "" {
		s3Store, err := export.NewS3Store(ctx, cfg.Export)
		if err != nil {
			return err
		}
		store = s3Store
		logger.WithField("bucket", cfg.Export.Bucket).Info("Exports stored in S3")
	}

	welcome := cfg.Session.WelcomeCredits
	if welcome == 0 {
		// the manager treats zero as "use the default grant"
		welcome = -1
	}

	manager := session.NewManager(session.Deps{
		Catalog:  holder,
		Resolver: resolver,
		Gate:     accessGate,
		Orchestrator: orchestrator.New(orchestrator.Options{
			Catalog:         holder,
			Resolver:        resolver,
			Gate:            accessGate,
			Generator:       generator,
			RefundOnFailure: cfg.Generation.RefundOnFailure,
			Logger:          logger,
			Metrics:         metrics,
		}),
		Assistant: chat.NewAssistant(chatter, resolver, accessGate, logger, metrics),
		Verifier:  &payment.MockVerifier{Delay: cfg.Auth.VerificationDelay, Logger: logger},
		Exporter: export.NewExporter(export.Options{
			Store:   store,
			Gate:    accessGate,
			Logger:  logger,
			Metrics: metrics,
		}),
		Journal:  journal,
		Profiles: profiles,
		Logger:   logger,
		Metrics:  metrics,
	}, auth.NewOTPService(auth.OTPOptions{
		Delay:   cfg.Auth.OTPDelay,
		Logger:  logger,
		Limiter: otpLimiter,
	}), session.Config{
		TTL:            cfg.Session.TTL,
		MaxSessions:    cfg.Session.MaxSessions,
		WelcomeCredits: welcome,
	})

	server := api.NewServer(api.Options{
		Sessions:    manager,
		Catalog:     holder,
		Resolver:    resolver,
		Inspiration: rotator,
		Limiter:     apiLimiter,
		Logger:      logger,
	})

	handler := httputil.Chain(
		httputil.RecoveryMiddleware(logger),
		httputil.RequestIDMiddleware(logger),
		httputil.LoggingMiddleware(logger),
		httputil.CORSMiddleware(cfg.Server.CORSOrigins),
		httputil.MaxBytesMiddleware(cfg.Server.MaxBodyBytes),
		httputil.ContentTypeMiddleware,
	)(server)
	if cfg.Observability.MetricsEnabled {
		server.Router().Use(observability.HTTPMetricsMiddleware(metrics))
	}
	handler = otelhttp.NewHandler(handler, "samonya-api")

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db, redisClient, version))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, httpServer, healthServer)
	shutdown.RegisterShutdownFunc("inspiration rotator", rotator.Stop)
	shutdown.RegisterShutdownFunc("sessions", func(context.Context) error {
		manager.Close()
		return nil
	})
	shutdown.RegisterShutdownFunc("opentelemetry", func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}
	if db != nil {
		shutdown.RegisterShutdownFunc("journal", func(context.Context) error {
			return db.Close()
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("addr", httpServer.Addr).Infof("Samonya AIMS Market %s listening", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("Health server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server failed: %w", err)
		}
		return nil
	})
	if cfg.Catalog.Path != "" && cfg.Catalog.Watch {
		g.Go(func() error {
			defer observability.RecoverPanic(logger, "catalog watcher")
			if err := catalog.Watch(gctx, cfg.Catalog.Path, holder, logger); err != nil {
				logger.WithError(err).Warn("Catalog watcher stopped")
			}
			return nil
		})
	}
	g.Go(func() error {
		// cancelling ctx stops the watcher and limiter cleanup once servers drain
		defer cancel()
		return shutdown.WaitForShutdown(gctx)
	})

	return g.Wait()
}

// openJournal connects the transaction journal. No driver means no journal.
func openJournal(cfg config.JournalConfig, logger *observability.Logger) (*sql.DB, ledger.Journal, error) {
	if cfg.Driver == "" {
		return nil, ledger.NoopJournal{}, nil
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s journal: %w", cfg.Driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to %s journal: %w", cfg.Driver, err)
	}

	journal, err := ledger.NewDBJournal(db, ledger.Dialect(cfg.Driver))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.WithField("driver", cfg.Driver).Info("Transaction journal enabled")
	return db, journal, nil
}
