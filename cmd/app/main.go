// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"call-transcriber/internal/config"
	"call-transcriber/internal/domain/ports/adapter"
	"call-transcriber/internal/domain/ports/repository"
	aiAdapters "call-transcriber/internal/infra/adapters/ai"
	cbAdapters "call-transcriber/internal/infra/adapters/callback"
	srcAdapters "call-transcriber/internal/infra/adapters/source"
	stAdapters "call-transcriber/internal/infra/adapters/storage"
	pg "call-transcriber/internal/infra/db/postgres"
	"call-transcriber/internal/infra/logging"
	"call-transcriber/internal/infra/metrics"
	red "call-transcriber/internal/infra/redis"
	"call-transcriber/internal/infra/web"
	"call-transcriber/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	// Secrets may live in a .env file next to the binary.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	var recordings repository.RecordingRepository = pg.NewRecordingRepo(pool)
	runsRepo := pg.NewPipelineRunRepo(pool)

	// ---- Redis seen-cache (optional) ----
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, seen cache disabled")
		} else {
			defer redisClient.Close()
			seen := red.NewSeenCache(redisClient, cfg.Redis.TTL)
			recordings = pg.NewCachedRecordingRepo(recordings, seen, logger)
		}
	}

	// ---- External adapters ----
	source, err := srcAdapters.NewHTTPSource(&cfg.Source, logger)
	if err != nil {
		log.Fatalf("recording source: %v", err)
	}
	storage, err := stAdapters.NewSupabaseStorage(&cfg.Storage)
	if err != nil {
		log.Fatalf("object storage: %v", err)
	}
	notifier, err := cbAdapters.NewHTTPNotifier(&cfg.Callback)
	if err != nil {
		log.Fatalf("callback notifier: %v", err)
	}

	var (
		transcriber adapter.TranscriptionAdapter
		summarizer  adapter.SummarizationAdapter
	)
	switch strings.ToLower(cfg.AI.Provider) {
	case "gemini":
		g, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL,
			cfg.AI.TranscribeModel, cfg.AI.SummaryModel, cfg.AI.MaxPromptTokens)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		transcriber, summarizer = g, g
		logger.Info().Str("model", cfg.AI.SummaryModel).Msg("AI adapter: Gemini")
	default:
		o, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIBaseURL,
			cfg.AI.TranscribeModel, cfg.AI.SummaryModel, cfg.AI.MaxPromptTokens)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		transcriber, summarizer = o, o
		logger.Info().Str("model", cfg.AI.SummaryModel).Msg("AI adapter: OpenAI")
	}

	// ---- Status server (optional, lives only for the run) ----
	if cfg.Admin.Port > 0 {
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
			Handler: web.NewServer(runsRepo, cfg.Admin.APIKey, logger).Router(),
		}
		go func() {
			logger.Info().Int("port", cfg.Admin.Port).Msg("status server listening")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("status server stopped")
			}
		}()
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// ---- Pipeline ----
	uc := usecase.NewPipelineUseCase(
		recordings, runsRepo, source, storage, transcriber, summarizer, notifier,
		usecase.Options{
			MaxFiles:     cfg.Pipeline.MaxFiles,
			SignedURLTTL: cfg.Storage.SignedURLTTL,
		},
		logger,
	)

	run, err := uc.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("pipeline run failed")
		os.Exit(1)
	}
	logger.Info().
		Str("run_id", run.ID).
		Int("discovered", run.Discovered).
		Int("processed", run.Processed).
		Int("failed", run.Failed).
		Int("skipped", run.Skipped).
		Msg("pipeline finished")
}
