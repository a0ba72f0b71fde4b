package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/hive/internal/anthropic"
	"github.com/MikeSquared-Agency/hive/internal/api"
	"github.com/MikeSquared-Agency/hive/internal/config"
	"github.com/MikeSquared-Agency/hive/internal/hermes"
	"github.com/MikeSquared-Agency/hive/internal/hive"
	"github.com/MikeSquared-Agency/hive/internal/metrics"
	"github.com/MikeSquared-Agency/hive/internal/report"
	"github.com/MikeSquared-Agency/hive/internal/script"
	"github.com/MikeSquared-Agency/hive/internal/slack"
	"github.com/MikeSquared-Agency/hive/internal/store"
	"github.com/joho/godotenv"
)

// backend is everything the pipeline needs from persistence. Both store.Store and
// store.Memory satisfy it.
type backend interface {
	script.ProspectReader
	script.Store
	hive.Store
	report.ProspectLister
	api.Prospects
	api.Pinger
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("hive starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	var db backend
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store; data will not survive a restart")
		db = store.NewMemory()
	} else {
		pg, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		db = pg
		slog.Info("database connected")
	}

	// Anthropic client
	if cfg.AnthropicAPIKey == "" {
		slog.Error("ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}
	llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	slog.Info("anthropic client ready", "model", cfg.AnthropicModel)

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	m := metrics.New()

	agg := hive.NewAggregator(db, hermesClient, m, slog.Default())
	mgr := script.NewManager(script.Deps{
		Prospects: db,
		Scripts:   db,
		LLM:       llm,
		Wins:      agg,
		Events:    hermesClient,
		Metrics:   m,
	}, cfg.TenantID, slog.Default())

	// Feedback from the chat bot
	if err := hermesClient.Subscribe(hermes.SubjectFeedbackSubmitted, mgr.HandleFeedbackEvent); err != nil {
		slog.Error("failed to subscribe to feedback events", "error", err)
		os.Exit(1)
	}

	// Slack delivery (optional; reports are still built and returned by the API without it)
	var deliverer report.Deliverer
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		deliverer = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
		slog.Info("slack delivery ready", "channel", cfg.SlackChannel)
	} else {
		slog.Warn("slack not configured, reports will not be delivered")
	}

	gen := report.NewGenerator(db, mgr, deliverer, hermesClient, m, report.Options{
		Lookback:       cfg.ReportLookback,
		QualifyScore:   cfg.QualifyScore,
		MaxSuggestions: cfg.MaxSuggestions,
		AITimeout:      cfg.AITimeout,
		Channel:        cfg.SlackChannel,
	}, slog.Default())

	sched, err := report.NewScheduler(gen, cfg.ReportSchedule, slog.Default())
	if err != nil {
		slog.Error("invalid report schedule", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	// HTTP API
	srv := api.NewServer(cfg.Port, api.Deps{
		Scripts:   mgr,
		Learnings: agg,
		Prospects: db,
		Reports:   sched,
		DB:        db,
	}, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"tenant_id": cfg.TenantID,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("hive ready", "port", cfg.Port, "report_schedule", cfg.ReportSchedule)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}
	cancel()
	slog.Info("hive stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
