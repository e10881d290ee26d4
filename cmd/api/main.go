package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/vedya-health/vedya-platform/cmd/mainconfig"
	"github.com/vedya-health/vedya-platform/internal/api/router"
	"github.com/vedya-health/vedya-platform/internal/appointments"
	"github.com/vedya-health/vedya-platform/internal/catalog"
	appconfig "github.com/vedya-health/vedya-platform/internal/config"
	"github.com/vedya-health/vedya-platform/internal/dialogue"
	"github.com/vedya-health/vedya-platform/internal/messaging"
	"github.com/vedya-health/vedya-platform/internal/observability/metrics"
	"github.com/vedya-health/vedya-platform/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting vedya-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx := context.Background()

	// Appointment storage: Postgres when configured, in-memory otherwise.
	var store appointments.Store
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		if err := db.PingContext(ctx); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		store = appointments.NewPostgresStore(db)
		logger.Info("using postgres appointment store")
	} else {
		store = appointments.NewMemoryStore()
		logger.Info("using in-memory appointment store")
	}

	// Session storage: Redis when configured, in-memory otherwise.
	var sessions dialogue.SessionStore
	if cfg.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("failed to ping redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = redisClient.Close() }()
		sessions = dialogue.NewRedisSessionStore(redisClient, nil)
		logger.Info("using redis session store", "addr", cfg.RedisAddr)
	} else {
		sessions = dialogue.NewMemorySessionStore()
		logger.Info("using in-memory session store")
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	llm, cleanup, err := buildLLMClient(ctx, cfg, logger, awsCfg)
	if err != nil {
		logger.Error("failed to build LLM client", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	dialogueMetrics := metrics.NewDialogueMetrics(prometheus.DefaultRegisterer)
	gateway := dialogue.NewLLMGateway(llm, cfg.LLMTimeout, logger, dialogueMetrics)
	engine := dialogue.NewEngine(catalog.Demo(), sessions, gateway, store, logger, dialogueMetrics, cfg.HistoryLimit)

	// Turn dispatch: in-process queue for local runs, SQS in production.
	var dispatcher dialogue.Dispatcher
	if cfg.UseMemoryQueue {
		logger.Info("using in-memory dialogue queue")
		dispatcher = dialogue.NewQueueDispatcher(engine, dialogue.NewMemoryQueue(64), logger,
			dialogue.WithWorkerCount(cfg.WorkerCount),
		)
	} else {
		if cfg.DialogueQueueURL == "" {
			logger.Error("DIALOGUE_QUEUE_URL is required when USE_MEMORY_QUEUE=false")
			os.Exit(1)
		}
		logger.Info("using SQS dialogue queue", "queue_url", cfg.DialogueQueueURL)
		dispatcher = dialogue.NewQueueDispatcher(engine, dialogue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.DialogueQueueURL), logger,
			dialogue.WithWorkerCount(cfg.WorkerCount),
		)
	}

	messagingHandler := messaging.NewHandler(dispatcher, logger)
	dialogueHandler := dialogue.NewHandler(dispatcher, logger)
	appointmentsHandler := appointments.NewHandler(store, logger)

	r := router.New(&router.Config{
		Logger:              logger,
		MessagingHandler:    messagingHandler,
		DialogueHandler:     dialogueHandler,
		AppointmentsHandler: appointmentsHandler,
		MetricsHandler:      promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Error("dispatcher shutdown error", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildLLMClient selects the configured provider and, when both providers are
// configured, wraps the secondary one as an automatic fallback. Each client
// carries its own model ID, so a fallback call resolves the fallback
// provider's model, not the primary's.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, awsCfg aws.Config) (dialogue.LLMClient, func(), error) {
	cleanup := func() {}

	newBedrock := func() dialogue.LLMClient {
		return dialogue.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
	}
	newGemini := func() (*dialogue.GeminiLLMClient, error) {
		return dialogue.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	}

	switch cfg.LLMProvider {
	case "gemini":
		gemini, err := newGemini()
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = gemini.Close() }
		if cfg.BedrockModelID != "" {
			return dialogue.NewFallbackLLMClient(gemini, newBedrock(), logger.Logger), cleanup, nil
		}
		return gemini, cleanup, nil
	default:
		primary := newBedrock()
		if cfg.GeminiAPIKey != "" {
			gemini, err := newGemini()
			if err != nil {
				return nil, cleanup, err
			}
			cleanup = func() { _ = gemini.Close() }
			return dialogue.NewFallbackLLMClient(primary, gemini, logger.Logger), cleanup, nil
		}
		return primary, cleanup, nil
	}
}
