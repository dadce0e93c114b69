// Package main is the entry point for the PulsePost content pipeline.
// It loads configuration, connects to services, starts the HTTP server
// and the scheduler tick loop, and shuts both down gracefully.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorhill/cronexpr"

	"pulsepost/internal/ai"
	"pulsepost/internal/cache"
	"pulsepost/internal/config"
	"pulsepost/internal/content"
	"pulsepost/internal/database"
	"pulsepost/internal/handlers"
	"pulsepost/internal/imaging"
	"pulsepost/internal/models"
	"pulsepost/internal/publish"
	"pulsepost/internal/router"
	"pulsepost/internal/scheduler"
	"pulsepost/internal/storage"
	"pulsepost/internal/store"
)

func main() {
	// Structured logger — text handler, debug level everywhere.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the topic catalog (no-op for topics that already exist, so
	// operator toggles survive restarts).
	if err := database.SeedTopics(db); err != nil {
		slog.Error("failed to seed topics", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (optional). Without it the status endpoint just
	// reads from PostgreSQL on every request.
	var statusCache *cache.StatusCache
	if addr := cfg.ValkeyAddr(); addr != "" {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Warn("valkey unavailable, status cache disabled", "error", err)
		} else {
			defer valkeyClient.Close()
			statusCache = cache.NewStatusCache(valkeyClient, cache.DefaultStatusTTL)
		}
	} else {
		slog.Info("valkey not configured, status cache disabled")
	}

	// Initialize data stores.
	topicStore := store.NewTopicStore(db)
	recordStore := store.NewPostRecordStore(db)
	stateStore := store.NewScheduleStateStore(db)

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.ActiveAI, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, MaxTokens: cfg.AIMaxTokens},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, MaxTokens: cfg.AIMaxTokens},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, MaxTokens: cfg.AIMaxTokens},
	})

	if aiRegistry.HasAny() {
		slog.Info("ai providers initialized",
			"active", aiRegistry.ActiveName(),
			"available", aiRegistry.Available(),
		)
	} else {
		slog.Warn("no ai provider configured, template fallback will be used")
	}

	// Build the generation pipeline.
	generator := content.New(aiRegistry, content.Options{
		CharBudget:   cfg.CharBudget,
		HashtagCount: cfg.HashtagCount,
		Timeout:      cfg.GenTimeout,
	})
	renderer := imaging.NewRenderer(cfg.Watermark)

	// Platform publisher with retry.
	platform := publish.NewClient(cfg.PlatformBaseURL, cfg.PlatformToken)
	publisher := publish.NewPublisher(platform, publish.RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BackoffBase,
		MaxDelay:    cfg.BackoffCap,
	})

	// Connect to S3-compatible object storage (optional; without it
	// published images are simply not archived).
	var archive scheduler.ArtifactArchive
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		s3Client, err := storage.New(cfg.S3Endpoint, cfg.S3Region,
			cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if s3Client != nil {
			archive = s3Client
			slog.Info("s3 archive connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		}
	} else {
		slog.Info("s3 archive not configured, images will not be retained")
	}

	// Optional cron schedule overriding the plain interval.
	var cron *cronexpr.Expression
	if cfg.PostCron != "" {
		cron, err = cronexpr.Parse(cfg.PostCron)
		if err != nil {
			slog.Error("invalid POST_CRON expression", "expr", cfg.PostCron, "error", err)
			os.Exit(1)
		}
	}

	// Restore persisted schedule state and build the scheduler.
	state, err := stateStore.Load(context.Background())
	if err != nil {
		slog.Error("failed to load schedule state", "error", err)
		os.Exit(1)
	}
	if state.Interval == 0 {
		state.Interval = cfg.PostInterval
	}

	sched := scheduler.New(generator, renderer, publisher,
		recordStore, stateStore, topicStore, archive,
		scheduler.Options{
			State:          state,
			CycleTimeout:   cfg.CycleTimeout,
			RotationWindow: cfg.RotationWindow,
			Profile:        aspectProfile(cfg.AspectProfile),
			Cron:           cron,
			OnRecord: func(rec models.PostRecord) {
				statusCache.SetLatest(context.Background(), rec)
			},
		})

	slog.Info("scheduler restored",
		"enabled", state.Enabled,
		"interval", state.Interval.String(),
		"next_fire", state.NextFireAt,
	)

	// Handlers and router.
	api := handlers.NewAPI(sched, recordStore, topicStore, statusCache, cfg.AdminTOTPSecret)
	r := router.New(api, cfg.AdminTokenHash)

	// WriteTimeout must cover a full manual cycle, which waits on LLM
	// completions and publish retries.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.CycleTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Scheduler tick loop. Each tick checks whether a timed cycle is due.
	tickCtx, stopTicks := context.WithCancel(context.Background())
	tickDone := make(chan struct{})
	go func() {
		defer close(tickDone)
		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				sched.Tick(tickCtx, now)
			case <-tickCtx.Done():
				return
			}
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	stopTicks()
	<-tickDone

	// Give active requests (including an in-flight cycle) time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// aspectProfile maps the configured profile name to a known profile,
// defaulting to wide.
func aspectProfile(name string) models.AspectProfile {
	switch name {
	case "square":
		return models.ProfileSquare
	case "portrait":
		return models.ProfilePortrait
	default:
		return models.ProfileWide
	}
}
