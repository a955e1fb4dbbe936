// convod - conversational resolution engine for tenant-scoped retail bots
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/zetalabs/convo/internal/ai"
	"github.com/zetalabs/convo/internal/catalog"
	"github.com/zetalabs/convo/internal/config"
	"github.com/zetalabs/convo/internal/escalation"
	"github.com/zetalabs/convo/internal/httpapi"
	"github.com/zetalabs/convo/internal/middleware"
	"github.com/zetalabs/convo/internal/ocr"
	"github.com/zetalabs/convo/internal/orchestrator"
	"github.com/zetalabs/convo/internal/prefs"
	"github.com/zetalabs/convo/internal/ratelimit"
	"github.com/zetalabs/convo/internal/resolve"
	"github.com/zetalabs/convo/internal/session"
	"github.com/zetalabs/convo/internal/tenantcfg"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port)

	// Shared Redis client for rate windows, sessions and preferences.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() {
		if closeErr := rdb.Close(); closeErr != nil {
			slog.Error("Failed to close redis client", "error", closeErr)
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis health check failed", "error", err)
		cancelPing()
		os.Exit(1)
	}
	cancelPing()
	slog.Info("Redis connected", "addr", cfg.RedisAddr)

	limiter := ratelimit.New(ratelimit.NewRedisStore(rdb), cfg.RateLimit, cfg.RateWindow)
	sessions := session.NewRedisStore(rdb, cfg.SessionTurns, cfg.SessionTTL)
	tracker := prefs.NewTracker(prefs.NewRedisStore(rdb, cfg.PrefsTTL))

	tenants := tenantcfg.NewCache(tenantcfg.NewHTTPProvider(cfg.AdminAPIURL, cfg.AdminAPIKey), cfg.TenantCfgTTL)
	products := catalog.NewHTTPCatalog(cfg.AdminAPIURL, cfg.AdminAPIKey)

	var textExtractor resolve.TextExtractor
	if cfg.OCRBaseURL != "" {
		textExtractor = ocr.NewHTTPExtractor(cfg.OCRBaseURL)
	} else {
		slog.Info("OCR stage disabled (OCR_BASE_URL not set)")
	}

	var vision resolve.Vision
	var completer orchestrator.Completer
	if cfg.OpenAI.APIKey != "" {
		model := ai.NewClient(ai.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			VisionModel: cfg.OpenAI.VisionModel,
		})
		vision = model
		completer = model
	} else {
		slog.Info("Vision and consultation disabled (OPENAI_API_KEY not set)")
	}

	pipeline := resolve.NewPipeline(products, textExtractor, vision, cfg.SearchLimit)

	journal, err := escalation.NewJournal(cfg.JournalPath)
	if err != nil {
		slog.Error("Failed to open escalation journal", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := journal.Close(); closeErr != nil {
			slog.Error("Failed to close escalation journal", "error", closeErr)
		}
	}()

	escalations := escalation.NewManager(
		escalation.NewHTTPRecordStore(cfg.AdminAPIURL, cfg.AdminAPIKey),
		journal,
	)

	orch := orchestrator.New(orchestrator.Options{
		Limiter:       limiter,
		Sessions:      sessions,
		Prefs:         tracker,
		Tenants:       tenants,
		Pipeline:      pipeline,
		Escalations:   escalations,
		Catalog:       products,
		Completer:     completer,
		ContextBudget: cfg.ContextBudget,
		SearchLimit:   cfg.SearchLimit,
	})

	handler := httpapi.NewHandler(orch, escalations)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS([]string{"*"}))

	r.Post("/v1/messages", handler.HandleMessage)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminToken))
		r.Post("/v1/escalations/{id}/transition", handler.HandleTransition)
	})

	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tenants.StartRefresh(ctx, cfg.RefreshEvery)
	escalations.StartJournalFlush(ctx, cfg.JournalEvery)

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
