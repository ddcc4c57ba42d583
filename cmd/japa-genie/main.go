// cmd/japa-genie/main.go
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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anyanwuihueze/japa-genie-active/internal/common/aws"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/config"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/database"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/logger"
	"github.com/anyanwuihueze/japa-genie-active/internal/common/observability"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/canvas"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/chatassist"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/insights"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/rejection"
	"github.com/anyanwuihueze/japa-genie-active/internal/flows/siteassist"
	"github.com/anyanwuihueze/japa-genie-active/internal/gating"
	"github.com/anyanwuihueze/japa-genie-active/internal/genai"
	"github.com/anyanwuihueze/japa-genie-active/internal/knowledge"
	"github.com/anyanwuihueze/japa-genie-active/internal/orchestrator"
	"github.com/anyanwuihueze/japa-genie-active/internal/schema"
	"github.com/anyanwuihueze/japa-genie-active/internal/server"
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

	zapLog.Info("Starting japa-genie...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

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

	// --- Init Knowledge stores (only when augmentation is enabled) ---
	var retriever knowledge.Retriever = knowledge.NoopRetriever{}
	if cfg.Knowledge.Enabled {
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

		retriever = knowledge.NewMultiRetriever(&knowledge.Config{
			Index:       cfg.Knowledge.Index,
			FactsTable:  cfg.Knowledge.FactsTable,
			MaxSnippets: cfg.Knowledge.MaxSnippets,
			Timeout:     config.GetDuration(cfg.Knowledge.Timeout),
		}, pg.GetDB(), esClient.GetClient(), log)
	} else {
		zapLog.Info("Knowledge augmentation disabled, flows fall back to model knowledge")
	}

	// --- Generation client ---
	genaiClient := genai.NewClient(genai.Options{
		BaseURL: cfg.APIs.GenAI.BaseURL,
		APIKey:  cfg.APIs.GenAI.APIKey,
		Model:   cfg.APIs.GenAI.Model,
	}, log)

	// --- Gating ---
	store := gating.NewRedisStore(
		redisClient.GetClient(),
		cfg.Gating.KeyPrefix,
		time.Duration(cfg.Gating.SessionTTL)*time.Second,
	)
	gate := gating.NewGate(store, cfg.Gating.MaxFreeWishes, log)

	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Warn("SES client init failed, upgrade mail disabled", zap.Error(err))
		} else {
			gate = gate.WithNotifier(sesClient, cfg.Notifications.Email.FromEmail)
			zapLog.Info("Upgrade confirmation mail enabled")
		}
	}

	// --- Flow handlers ---
	chatFlowCfg := config.GetFlowConfig(cfg, schema.FlowChatAssistant)
	chatHandler := chatassist.NewHandler(&chatassist.Config{
		Timeout:           config.GetDuration(chatFlowCfg.Timeout),
		MaxRetries:        chatFlowCfg.MaxRetries,
		MaxTokens:         chatFlowCfg.MaxTokens,
		Temperature:       chatFlowCfg.Temperature,
		MaxFreeWishes:     cfg.Gating.MaxFreeWishes,
		DisclaimerEnabled: chatFlowCfg.DisclaimerEnabled,
	}, genaiClient, retriever, log)

	insightsFlowCfg := config.GetFlowConfig(cfg, schema.FlowInsightsGenerator)
	insightsHandler := insights.NewHandler(&insights.Config{
		Timeout:     config.GetDuration(insightsFlowCfg.Timeout),
		MaxRetries:  insightsFlowCfg.MaxRetries,
		MaxTokens:   insightsFlowCfg.MaxTokens,
		Temperature: insightsFlowCfg.Temperature,
	}, genaiClient, retriever, log)

	canvasFlowCfg := config.GetFlowConfig(cfg, schema.FlowVisaInsightsCanvas)
	canvasHandler := canvas.NewHandler(&canvas.Config{
		Timeout:     config.GetDuration(canvasFlowCfg.Timeout),
		MaxRetries:  canvasFlowCfg.MaxRetries,
		MaxTokens:   canvasFlowCfg.MaxTokens,
		Temperature: canvasFlowCfg.Temperature,
	}, genaiClient, log)

	rejectionFlowCfg := config.GetFlowConfig(cfg, schema.FlowRejectionReversal)
	rejectionHandler := rejection.NewHandler(&rejection.Config{
		Timeout:     config.GetDuration(rejectionFlowCfg.Timeout),
		MaxRetries:  rejectionFlowCfg.MaxRetries,
		MaxTokens:   rejectionFlowCfg.MaxTokens,
		Temperature: rejectionFlowCfg.Temperature,
	}, genaiClient, log)

	siteFlowCfg := config.GetFlowConfig(cfg, schema.FlowSiteAssistant)
	siteassistHandler := siteassist.NewHandler(&siteassist.Config{
		Timeout:     config.GetDuration(siteFlowCfg.Timeout),
		MaxRetries:  siteFlowCfg.MaxRetries,
		MaxTokens:   siteFlowCfg.MaxTokens,
		Temperature: siteFlowCfg.Temperature,
	}, genaiClient, log)

	// transcripts expire alongside the gating session
	orch := orchestrator.New(gate, chatHandler, insightsHandler, cfg.Gating.MaxFreeWishes, obs, log).
		WithTranscriptTTL(time.Duration(cfg.Gating.SessionTTL) * time.Second)

	// --- API server ---
	apiServer := server.New(orch, insightsHandler, canvasHandler, rejectionHandler, siteassistHandler, gate, server.Options{
		Port:         cfg.Server.Port,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}, log)

	go func() {
		if err := apiServer.Start(); err != nil {
			zapLog.Fatal("api server failed", zap.Error(err))
		}
	}()

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
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down api server", zap.Error(err))
	}

	zapLog.Info("japa-genie stopped gracefully")
}
