package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lexdesk/internal/archive"
	"lexdesk/internal/auth"
	"lexdesk/internal/capabilities"
	"lexdesk/internal/config"
	"lexdesk/internal/domain/repositories"
	"lexdesk/internal/domain/services"
	"lexdesk/internal/events"
	"lexdesk/internal/handler"
	"lexdesk/internal/middleware"
	"lexdesk/internal/repository/memory"
	"lexdesk/internal/repository/postgres"
	"lexdesk/internal/search"
	"lexdesk/internal/seed"
	"lexdesk/internal/service/activity"
	"lexdesk/internal/service/alert"
	"lexdesk/internal/service/audience"
	"lexdesk/internal/service/negotiation"
	"lexdesk/internal/service/practice"
	"lexdesk/internal/service/query"
	"lexdesk/internal/service/versionchain"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	seedOnStart := flag.Bool("seed", false, "Load seed fixtures (SEED_FILE, or the bundled set) before serving")
	flag.Parse()

	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.Store,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Storage
	var store *repositories.Store
	switch cfg.Store {
	case "postgres":
		if err := postgres.Migrate(ctx, cfg.DatabaseURL, cfg.TablePrefix); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}
		defer pool.Close()
		logger.Info("database connected", "max_conns", 25, "min_conns", 5)

		store = postgres.NewStore(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		})
	case "memory":
		store = memory.NewStore()
	default:
		log.Fatalf("Unknown STORE %q (want memory or postgres)", cfg.Store)
	}

	if *seedOnStart || (cfg.Store == "memory" && cfg.SeedFile != "") {
		fx, err := seed.Load(cfg.SeedFile)
		if err != nil {
			log.Fatalf("Failed to load seed fixtures: %v", err)
		}
		if _, err := seed.NewSeeder(store, logger).Seed(ctx, fx); err != nil {
			log.Fatalf("Failed to seed store: %v", err)
		}
	}

	// Event bus and its consumers
	bus := events.NewBroker(logger)

	aggregator := activity.NewAggregator(store.Activity, logger)
	aggregator.Attach(bus)

	checks := []practice.Check{
		{Name: "store", State: func() string { return cfg.Store }},
	}

	var meili *search.Meili
	if cfg.MeiliURL != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logger)
		defer meili.Close()
		checks = append(checks, practice.Check{Name: "meilisearch", State: func() string {
			if meili.Healthy() {
				return "healthy"
			}
			return "unavailable"
		}})
	} else {
		checks = append(checks, practice.Check{Name: "meilisearch", State: func() string { return "disabled" }})
	}
	searcher := search.NewService(meili, store, logger)
	searcher.Attach(bus)
	if meili != nil {
		// seeded or pre-existing rows never passed through the bus
		if err := searcher.ReindexAll(ctx); err != nil {
			logger.Warn("initial search reindex failed", "error", err)
		}
	}

	// archiver stays a nil interface when S3 is off so the handler can tell
	var archiver services.Archiver
	if cfg.S3Enabled() {
		a, err := archive.New(ctx, cfg, store.Documents, logger)
		if err != nil {
			log.Fatalf("Failed to create archiver: %v", err)
		}
		a.Attach(bus)
		archiver = a
		checks = append(checks, practice.Check{Name: "archive", State: func() string { return "s3://" + cfg.S3Bucket }})
	} else {
		checks = append(checks, practice.Check{Name: "archive", State: func() string { return "disabled" }})
	}

	if cfg.RedisURL != "" {
		relay, err := events.NewRedisRelay(cfg.RedisURL, logger)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer relay.Close()
		relay.Attach(bus)
		checks = append(checks, practice.Check{Name: "event relay", State: func() string { return "redis" }})
	} else {
		checks = append(checks, practice.Check{Name: "event relay", State: func() string { return "disabled" }})
	}

	// Query analysis: offline fixtures answer any provider without a configured analyzer
	catalogue, err := capabilities.NewRegistry(cfg.DefaultModel)
	if err != nil {
		log.Fatalf("Failed to initialize model catalogue: %v", err)
	}

	llmFactory := query.NewProviderFactory(cfg.AnthropicAPIKey)
	llmAnalyzer := query.NewLLMAnalyzer(llmFactory, logger)
	router := query.NewRouter(catalogue, &query.FixtureAnalyzer{}, logger).
		Route("lorem", llmAnalyzer)
	if llmFactory.Supports("anthropic") {
		router.Route("anthropic", llmAnalyzer)
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := query.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, logger)
		if err != nil {
			log.Fatalf("Failed to create Gemini analyzer: %v", err)
		}
		router.Route("gemini", gemini)
	}

	queryService := query.NewService(store.Queries, store.Clients, router, catalogue, bus, query.Options{
		Timeout:     cfg.QueryTimeout,
		Concurrency: cfg.QueryConcurrency,
	}, logger)
	defer queryService.Close()

	// Domain services
	locker := versionchain.NewLocker()
	resolver := audience.NewResolver(store.Clients)

	handlers := &handler.Handlers{
		Templates: handler.NewTemplateHandler(negotiation.NewTemplateService(store.Templates, resolver, locker, bus, logger), logger),
		Documents: handler.NewDocumentHandler(negotiation.NewDocumentService(store, locker, bus, logger), archiver, logger),
		Activity:  handler.NewActivityHandler(aggregator, logger),
		Queries:   handler.NewQueryHandler(queryService, logger),
		Alerts:    handler.NewAlertHandler(alert.NewAlertService(store.Alerts, resolver, bus, logger), logger),
		Practice: handler.NewPracticeHandler(
			practice.NewProfileService(store.Profile, bus, logger),
			practice.NewClientService(store.Clients),
			practice.NewInsightsService(store),
			logger,
		),
		Search:  handler.NewSearchHandler(searcher, logger),
		Display: handler.NewDisplayHandler(practice.NewStatusService(store, checks...), logger),
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handlers.Register(mux)

	// Auth: JWKS when configured, otherwise a fixed dev user
	var verifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer verifier.Close()
	} else {
		logger.Warn("AUTH_JWKS_URL not set, requests run as the dev user", "user_id", cfg.DevUserID)
	}

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → RequestLogger → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(verifier, middleware.DevUser{ID: cfg.DevUserID, Name: cfg.DevAuthor}, logger)(h)
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "If-Match"},
		ExposedHeaders:   []string{"ETag", "Location"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.QueryTimeout + 15*time.Second, // synchronous analyze waits up to QueryTimeout
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}

	// let in-flight background analyses settle before the deferred Close cancels them
	waitDone := make(chan struct{})
	go func() {
		queryService.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(5 * time.Second):
		logger.Warn("background analyses still running at shutdown")
	}
}
