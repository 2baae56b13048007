// cmd/triage-service/main.go
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pediatric-triage/internal/common/config"
	"pediatric-triage/internal/common/database"
	"pediatric-triage/internal/common/logger"
	"pediatric-triage/internal/common/metrics"
	"pediatric-triage/internal/common/observability"
	"pediatric-triage/internal/server"
	"pediatric-triage/internal/triage/danger"
	"pediatric-triage/internal/triage/decision"
	"pediatric-triage/internal/triage/history"
	"pediatric-triage/internal/triage/intent"
	"pediatric-triage/internal/triage/pipeline"
	"pediatric-triage/internal/triage/session"
	"pediatric-triage/pkg/ruleset"
)

// retryWithBackoff attempts an operation with exponential backoff.
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting triage service",
		zap.String("environment", cfg.App.Environment),
		zap.String("sessionBackend", cfg.Triage.SessionBackend),
	)

	obs := observability.New("triage-service")
	defer obs.Shutdown()

	// --- Danger rule table ---
	// A missing or schema-invalid file degrades to the empty rule set; only a
	// truly unreadable file stops startup.
	rules, err := danger.LoadRules(cfg.Triage.DangerRulesPath, log)
	if err != nil {
		zapLog.Fatal("danger rule file unreadable", zap.Error(err))
	}
	rulesRegistry := ruleset.New(rules)

	// --- Session store ---
	var store session.Store
	var memStore *session.MemoryStore

	switch cfg.Triage.SessionBackend {
	case "redis":
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis initialization")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		store = session.NewRedisStore(rc.GetClient(), cfg.Triage.SessionTTL, log)
	default:
		memStore = session.NewMemoryStore()
		store = memStore
	}

	// --- Conversation history (optional) ---
	var recorder pipeline.TurnRecorder
	if cfg.Triage.HistoryEnabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return pg.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "PostgreSQL initialization")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		recorder = history.NewRepository(pg.GetDB(), log)
	}

	// --- Pipeline ---
	p := pipeline.New(
		danger.NewDetector(rulesRegistry, log),
		intent.NewClassifier(log),
		store,
		decision.NewEngine(log),
		recorder,
		log,
	)

	// --- Session janitor (service-layer eviction policy) ---
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	if memStore != nil {
		go runJanitor(janitorCtx, memStore, cfg.Triage.SessionTTL, log)
	}

	// --- HTTP server ---
	mux := http.NewServeMux()
	server.NewHandler(p, log).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// runJanitor evicts idle conversations from the in-memory store. Redis
// sessions expire through their key TTL instead.
func runJanitor(ctx context.Context, store *session.MemoryStore, ttl time.Duration, log logger.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := store.EvictIdle(ttl)
			metrics.ActiveConversations.Set(float64(store.Len()))
			if evicted > 0 {
				log.Info("evicted idle conversations", map[string]interface{}{
					"count": evicted,
				})
			}
		}
	}
}
