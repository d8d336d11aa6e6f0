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

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"proposal-workers/internal/common/camunda"
	"proposal-workers/internal/common/config"
	"proposal-workers/internal/common/database"
	"proposal-workers/internal/common/genai"
	"proposal-workers/internal/common/logger"
	"proposal-workers/internal/common/observability"
	"proposal-workers/internal/models"
	"proposal-workers/internal/repository"
	"proposal-workers/internal/scoring"
	"proposal-workers/internal/scoring/benchmark"
	"proposal-workers/internal/scoring/factors"
	"proposal-workers/internal/scoring/gonogo"
	"proposal-workers/internal/scoring/readiness"
	"proposal-workers/pkg/registry"

	cb "proposal-workers/internal/workers/scoring/calculate-benchmark"
	cps "proposal-workers/internal/workers/scoring/calculate-proposal-score"
	cr "proposal-workers/internal/workers/scoring/check-readiness"
	gsi "proposal-workers/internal/workers/scoring/get-score-improvements"
	gns "proposal-workers/internal/workers/scoring/go-nogo-summary"
	ssr "proposal-workers/internal/workers/scoring/send-score-report"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// benchmarkScores joins the service's cached latest-snapshot read with the
// repository's org-population query.
type benchmarkScores struct {
	*scoring.Service
	repo *repository.ScoreRepository
}

func (b benchmarkScores) LatestScoresForOrg(ctx context.Context, organizationID string, statuses []models.ProposalStatus) (map[string]int, error) {
	return b.repo.LatestScoresForOrg(ctx, organizationID, statuses)
}

func readinessThresholds(cfg *config.Config) map[models.TeamType]int {
	thresholds := make(map[models.TeamType]int, len(readiness.DefaultThresholds))
	for team, floor := range readiness.DefaultThresholds {
		thresholds[team] = floor
	}
	for name, floor := range cfg.Scoring.ReadinessThresholds {
		team := models.TeamType(name)
		if models.ValidTeamType(team) {
			thresholds[team] = floor
		}
	}
	return thresholds
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
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
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
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

	// --- Init Redis with retry ---
	var rds *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rds, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rds.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rds.Close()
	zapLog.Info("Redis connected successfully")

	// --- Repositories ---
	db := pg.GetDB()
	scoreRepo := repository.NewScoreRepository(db)
	readinessRepo := repository.NewReadinessRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	benchmarkRepo := repository.NewBenchmarkRepository(db)
	scoreCache := repository.NewScoreCache(rds.GetClient(), time.Duration(cfg.Scoring.ScoreCacheTTL)*time.Second)

	// --- Scoring engine ---
	genClient := genai.NewClient(cfg, log)
	if !genClient.Available() {
		zapLog.Warn("GenAI client not configured, factor scoring falls back to heuristics")
	}
	aiEvaluator := factors.NewAIEvaluator(genClient, log)

	scoreService := scoring.NewService(
		scoreRepo,
		scoreCache,
		proposalRepo,
		aiEvaluator,
		config.GetDuration(cfg.Scoring.FactorTimeout),
		config.GetDuration(cfg.Scoring.CalculationTimeout),
		log,
	)

	readinessChecker := readiness.NewChecker(
		readinessRepo,
		proposalRepo,
		scoreService,
		readinessThresholds(cfg),
		log,
	)

	benchmarkCalc := benchmark.NewCalculator(
		benchmarkScores{Service: scoreService, repo: scoreRepo},
		proposalRepo,
		benchmarkRepo,
		cfg.Scoring.MinBenchmarkPeers,
		log,
	)

	synthesizer := gonogo.NewSynthesizer(scoreService, readinessChecker, log)

	activityRegistry := registry.Default()

	zapLog.Info("Scoring engine initialized")

	// --- Register Workers ---
	var workers []*camunda.Worker

	if taskType := cps.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := cps.NewHandler(cps.LoadConfig(), scoreService, activityRegistry, log)
		workers = append(workers, startWorker(zeebeClient, taskType, config.GetWorkerConfig(cfg, taskType), handler.Handle, zapLog))
	}

	if taskType := gsi.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := gsi.NewHandler(gsi.LoadConfig(), scoreService, activityRegistry, log)
		workers = append(workers, startWorker(zeebeClient, taskType, config.GetWorkerConfig(cfg, taskType), handler.Handle, zapLog))
	}

	if taskType := cb.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := cb.NewHandler(cb.LoadConfig(), benchmarkCalc, activityRegistry, log)
		workers = append(workers, startWorker(zeebeClient, taskType, config.GetWorkerConfig(cfg, taskType), handler.Handle, zapLog))
	}

	if taskType := cr.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := cr.NewHandler(cr.LoadConfig(), readinessChecker, activityRegistry, log)
		workers = append(workers, startWorker(zeebeClient, taskType, config.GetWorkerConfig(cfg, taskType), handler.Handle, zapLog))
	}

	if taskType := gns.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		handler := gns.NewHandler(gns.LoadConfig(), synthesizer, activityRegistry, log)
		workers = append(workers, startWorker(zeebeClient, taskType, config.GetWorkerConfig(cfg, taskType), handler.Handle, zapLog))
	}

	if taskType := ssr.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		reportCfg := ssr.LoadConfig()
		reportCfg.AWSRegion = cfg.Notifications.AWS.Region
		reportCfg.FromEmail = cfg.Notifications.Email.FromEmail
		reportCfg.EmailEnabled = cfg.Notifications.Email.Enabled
		handler, err := ssr.NewHandler(reportCfg, synthesizer, activityRegistry, log)
		if err != nil {
			zapLog.Fatal("failed to create send-score-report handler", zap.Error(err))
		}
		workers = append(workers, startWorker(zeebeClient, taskType, config.GetWorkerConfig(cfg, taskType), handler.Handle, zapLog))
	}

	zapLog.Info("All scoring workers registered successfully")

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
			status := "ready"
			code := http.StatusOK
			if err := pg.Ping(r.Context()); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]string{
				"status": status,
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

	for _, w := range workers {
		if w != nil {
			w.Close()
		}
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.JobHandler, log *zap.Logger) *camunda.Worker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	return camunda.NewWorker(
		client, taskType, wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handlerFunc, log,
	)
}
