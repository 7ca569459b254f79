// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"guidance-workers/internal/common/config"
	"guidance-workers/internal/common/database"
	"guidance-workers/internal/common/logger"
	"guidance-workers/internal/common/observability"
	"guidance-workers/pkg/registry"

	// Assessment Workers (2)
	ar "guidance-workers/internal/workers/assessment/analyze-result"
	sa "guidance-workers/internal/workers/assessment/score-assessment"

	// Guidance Workers (4)
	mca "guidance-workers/internal/workers/guidance/match-careers"
	mco "guidance-workers/internal/workers/guidance/match-colleges"
	mr "guidance-workers/internal/workers/guidance/merge-recommendations"
	rs "guidance-workers/internal/workers/guidance/recommend-streams"

	// Data Access Workers (2)
	qc "guidance-workers/internal/workers/data-access/query-catalog"
	sc "guidance-workers/internal/workers/data-access/search-colleges"

	// AI Workers (1)
	gr "guidance-workers/internal/workers/ai-guidance/generate-recommendations"
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

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
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

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Load Activity Registry ---
	var activityReg *registry.ActivityRegistry
	if cfg.Registry.Path != "" {
		if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
			zapLog.Warn("activity registry not loaded, input validation disabled", zap.Error(err))
		} else {
			activityReg = reg
			zapLog.Info("activity registry loaded",
				zap.String("version", reg.Version),
				zap.Int("activities", len(reg.Activities)),
			)
		}
	}

	// --- START: Register ALL 9 Workers ---

	// --- 1. Assessment Workers (2) ---
	if cfg.Workers[sa.TaskType].Enabled {
		saCfg := sa.LoadConfig()
		saCfg.Timeout = time.Duration(cfg.Workers[sa.TaskType].Timeout) * time.Millisecond
		handler := sa.NewHandler(saCfg, pg.DB, redis.Client, log)
		startWorker(zeebeClient, activityReg, sa.TaskType, cfg.Workers[sa.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[ar.TaskType].Enabled {
		handler := ar.NewHandler(ar.LoadConfig(), log)
		startWorker(zeebeClient, activityReg, ar.TaskType, cfg.Workers[ar.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Guidance Workers (4) ---
	if cfg.Workers[mca.TaskType].Enabled {
		mcaCfg := mca.LoadConfig()
		mcaCfg.Timeout = time.Duration(cfg.Workers[mca.TaskType].Timeout) * time.Millisecond
		if cfg.Matching.MinMatchScore > 0 {
			mcaCfg.MinMatchScore = cfg.Matching.MinMatchScore
		}
		if cfg.Matching.MaxCareers > 0 {
			mcaCfg.MaxMatches = cfg.Matching.MaxCareers
		}
		handler := mca.NewHandler(mcaCfg, pg.DB, redis.Client, log)
		startWorker(zeebeClient, activityReg, mca.TaskType, cfg.Workers[mca.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[mco.TaskType].Enabled {
		mcoCfg := mco.LoadConfig()
		if cfg.Matching.MaxColleges > 0 {
			mcoCfg.MaxColleges = cfg.Matching.MaxColleges
		}
		handler := mco.NewHandler(mcoCfg, pg.DB, redis.Client, log)
		startWorker(zeebeClient, activityReg, mco.TaskType, cfg.Workers[mco.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[rs.TaskType].Enabled {
		handler := rs.NewHandler(rs.LoadConfig(), log)
		startWorker(zeebeClient, activityReg, rs.TaskType, cfg.Workers[rs.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[mr.TaskType].Enabled {
		mrCfg := mr.LoadConfig()
		if cfg.Matching.MaxMerged > 0 {
			mrCfg.MaxMerged = cfg.Matching.MaxMerged
		}
		handler := mr.NewHandler(mrCfg, pg.DB, log)
		startWorker(zeebeClient, activityReg, mr.TaskType, cfg.Workers[mr.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Data Access Workers (2) ---
	if cfg.Workers[qc.TaskType].Enabled {
		handler := qc.NewHandler(
			&qc.Config{
				Timeout: time.Duration(cfg.Workers[qc.TaskType].Timeout) * time.Millisecond,
			},
			pg.DB, log,
		)
		startWorker(zeebeClient, activityReg, qc.TaskType, cfg.Workers[qc.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sc.TaskType].Enabled {
		handler := sc.NewHandler(
			&sc.Config{
				Timeout: time.Duration(cfg.Workers[sc.TaskType].Timeout) * time.Millisecond,
			},
			esClient.Client, log,
		)
		startWorker(zeebeClient, activityReg, sc.TaskType, cfg.Workers[sc.TaskType], handler.Handle, zapLog)
	}

	// --- 4. AI Workers (1) ---
	if cfg.Workers[gr.TaskType].Enabled {
		grCfg := gr.LoadConfig()
		grCfg.GenAIBaseURL = cfg.APIs.GenAI.BaseURL
		if cfg.Workers[gr.TaskType].Timeout > 0 {
			grCfg.Timeout = time.Duration(cfg.Workers[gr.TaskType].Timeout) * time.Millisecond
		}
		handler := gr.NewHandler(grCfg, log)
		startWorker(zeebeClient, activityReg, gr.TaskType, cfg.Workers[gr.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 9 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_ = shutdownCtx

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, reg *registry.ActivityRegistry, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	handlerFunc = withInputValidation(reg, taskType, handlerFunc, log)

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}

// withInputValidation rejects job variables that fail the activity's
// registered input schema before the handler runs. Workers without a
// registry entry, or runs without a registry, pass straight through.
func withInputValidation(reg *registry.ActivityRegistry, taskType string, next func(worker.JobClient, entities.Job), log *zap.Logger) func(worker.JobClient, entities.Job) {
	if reg == nil {
		return next
	}
	activity, ok := reg.FindByTaskType(taskType)
	if !ok {
		return next
	}

	return func(client worker.JobClient, job entities.Job) {
		var vars map[string]interface{}
		if err := json.Unmarshal([]byte(job.Variables), &vars); err == nil {
			if verr := activity.ValidateInput(vars); verr != nil {
				log.Error("job variables failed schema validation",
					zap.String("taskType", taskType),
					zap.Int64("jobKey", job.Key),
					zap.Error(verr),
				)
				_, _ = client.NewThrowErrorCommand().
					JobKey(job.Key).
					ErrorCode("INPUT_VALIDATION_FAILED").
					ErrorMessage(verr.Error()).
					Send(context.Background())
				return
			}
		}
		next(client, job)
	}
}
