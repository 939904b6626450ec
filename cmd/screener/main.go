// cmd/screener/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpiface "screener/interfaces/http"
	"screener/internal/common/config"
	"screener/internal/common/database"
	"screener/internal/common/genai"
	"screener/internal/common/logger"
	"screener/internal/common/observability"
	"screener/internal/interview/evaluator"
	"screener/internal/interview/questions"
	"screener/internal/interview/report"
	"screener/internal/interview/roles"
	"screener/internal/interview/session"
	"screener/internal/notify"
	"screener/internal/sessionstore"
	"screener/internal/storage"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting screener...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("screener")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init PostgreSQL with retry (optional archive backend) ---
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Generation backend ---
	generator := genai.NewClient(&genai.Config{
		BaseURL: cfg.GenAI.BaseURL,
		Model:   cfg.GenAI.Model,
		APIKey:  cfg.GenAI.APIKey,
		Timeout: config.GetDuration(cfg.GenAI.Timeout),
	}, obs, log)

	// --- Workflow components ---
	builder, err := questions.NewBuilder(&questions.Config{
		QuestionCount: cfg.Interview.QuestionCount,
		MinValid:      cfg.Interview.MinValidQuestions,
	}, generator, log)
	if err != nil {
		zapLog.Fatal("question builder init failed", zap.Error(err))
	}

	scorer := evaluator.New(&evaluator.Config{
		RequireRelevance: cfg.Interview.RequireRelevance,
	}, generator, log)

	composer := report.NewComposer(generator, log)

	// --- Archive sinks ---
	csvSink, err := storage.NewCSVSink(
		cfg.Storage.CSVDir, cfg.Storage.ResponsesFile, cfg.Storage.ReportsFile, log)
	if err != nil {
		zapLog.Fatal("csv sink init failed", zap.Error(err))
	}
	sinks := []storage.Sink{csvSink}

	var roleSource session.RoleSource
	if pg != nil {
		pgSink := storage.NewPostgresSink(pg.DB, log)
		if err := pgSink.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("archive schema init failed", zap.Error(err))
		}
		sinks = append(sinks, pgSink)

		roleRepo := roles.NewRepository(pg.DB, redisClient.Client, log)
		if err := roleRepo.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("role schema init failed", zap.Error(err))
		}
		roleSource = roleRepo

		if cfg.Storage.RetentionEnabled {
			retention := time.Duration(cfg.Storage.RetentionDays) * 24 * time.Hour
			sweeper := storage.NewRetentionSweeper(pgSink, retention, 6*time.Hour, log)
			go sweeper.Run(ctx)
			zapLog.Info("Retention sweeper started",
				zap.Int("retentionDays", cfg.Storage.RetentionDays))
		}
	}
	archive := storage.NewMultiSink(log, sinks...)

	// --- Report delivery ---
	notifier, err := notify.New(ctx, cfg.Email, log)
	if err != nil {
		zapLog.Fatal("email notifier init failed", zap.Error(err))
	}
	if notifier != nil {
		zapLog.Info("Email notifier enabled", zap.String("region", cfg.Email.Region))
	}

	// --- Session store and controller ---
	store := sessionstore.NewRedisStore(
		redisClient.Client, config.GetDuration(cfg.Interview.SessionTTL), log)

	controller := session.NewController(
		store, builder, scorer, composer, roleSource, generator,
		archive, notifierOrNil(notifier),
		session.Options{RequireRoleProfile: cfg.Interview.RequireRoleProfile},
		log,
	)

	// --- HTTP server ---
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      httpiface.NewServer(controller, log).Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}

// notifierOrNil keeps the controller's Notifier interface nil when email
// delivery is disabled; a typed nil pointer would dodge the nil check.
func notifierOrNil(n *notify.EmailNotifier) session.Notifier {
	if n == nil {
		return nil
	}
	return n
}
