package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swiftpos/config"
	"swiftpos/internal/advisor"
	"swiftpos/internal/api"
	"swiftpos/internal/broker"
	"swiftpos/internal/catalog"
	"swiftpos/internal/receipt"
	"swiftpos/internal/redisclient"
	"swiftpos/internal/service"
	"swiftpos/internal/store"
	"swiftpos/internal/util"
	"swiftpos/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting point-of-sale terminal", zap.String("terminal_id", cfg.Terminal.TerminalID))

	tp, err := util.InitTracer("swiftpos", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	cat := catalog.Default()
	if cfg.Terminal.CatalogFile != "" {
		cat, err = catalog.LoadFile(cfg.Terminal.CatalogFile)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
	}
	logger.Info("Catalog loaded",
		zap.Int("items", len(cat.Items())),
		zap.Int("promotions", len(cat.Promotions())))

	advisorOpts := []advisor.Option{
		advisor.WithModel(cfg.Advisor.Model),
		advisor.WithTimeout(cfg.Advisor.Timeout),
	}
	if cfg.Advisor.BaseURL != "" {
		advisorOpts = append(advisorOpts, advisor.WithBaseURL(cfg.Advisor.BaseURL))
	}
	advisorClient := advisor.NewClient(cfg.Advisor.APIKey, advisorOpts...)
	if !advisorClient.Configured() {
		logger.Warn("API key not configured, advisor will return fallback text")
	}

	deps := service.Dependencies{Advisor: advisorClient}
	readiness := map[string]api.ReadinessCheck{}

	var db *store.Store
	if cfg.Database.Enabled() {
		db, err = store.NewStore(cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(context.Background()); err != nil {
			log.Fatalf("Failed to prepare sales journal: %v", err)
		}
		readiness["database"] = db.Ping
		logger.Info("Database connected")
	}

	if cfg.Redis.Enabled() {
		redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.IdempotencyTTL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		deps.Cache = redisClient
		readiness["redis"] = redisClient.Ping
		logger.Info("Redis connected")
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var journalWorker *worker.JournalWorker
	if cfg.Kafka.Enabled() {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPOS)
		defer producer.Close()
		deps.Publisher = broker.NewEventPublisher(producer)
		logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicPOS))

		if db != nil {
			consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPOS, cfg.Kafka.ConsumerGroup)
			journalWorker = worker.NewJournalWorker(consumer, db)
			go func() {
				if err := journalWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
					logger.Error("Journal worker error", zap.Error(err))
				}
			}()
		}
	} else if db != nil {
		deps.Journal = db
	}

	formatter := receipt.NewFormatter(cfg.Terminal.StoreName, cfg.Terminal.StoreAddress, cfg.Terminal.CurrencySymbol)
	session := service.NewSession(cat, formatter, cfg.Terminal.OperatorID)
	terminal := service.NewTerminalService(cfg.Terminal.TerminalID, cat, session, deps)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(terminal)
	for name, check := range readiness {
		handler.AddReadinessCheck(name, check)
	}
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if journalWorker != nil {
		_ = journalWorker.Stop()
	}

	stats := terminal.Dashboard().Stats
	logger.Info("Server exited",
		zap.Int("orders", stats.OrderCount),
		zap.String("revenue", stats.TotalRevenue.StringFixed(2)))
}
