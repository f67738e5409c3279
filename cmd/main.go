package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"complaintdesk/backend/internal/api/handler"
	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/contextstore"
	"complaintdesk/backend/internal/dispatch"
	"complaintdesk/backend/internal/intake"
	"complaintdesk/backend/internal/llm"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/scheduler"
	"complaintdesk/backend/internal/storage"
	"complaintdesk/backend/internal/telegram"
	"complaintdesk/backend/internal/triage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg *config.AppConfig) (*gorm.DB, *redis.Client) {
	log := logger.Log

	db, err := storage.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, running single-instance without Redis")
		return db, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.WithField("driver", cfg.DBDriver).Info("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Log
	log.Info("Starting complaint desk backend...")

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is not set")
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	db, rdb := setupDependencies(ctx, cfg)
	store := storage.NewStorageService(db)

	// 2. Dashboard hub and event publishing
	hub := chathub.NewManagerService(store)
	go hub.Run(ctx)

	var publisher chathub.Publisher = hub
	if rdb != nil {
		hub.StartPubSubListener(ctx, rdb)
		publisher = chathub.NewRedisPublisher(rdb, hub)
	}

	// 3. Reply generation
	contexts := contextstore.NewMemory()
	if cfg.ContextBackend == "redis" {
		contexts = contextstore.New(contextstore.NewRedisBackend(rdb))
	}
	loc, err := localization.Default()
	if err != nil {
		log.Fatalf("Failed to load localization: %v", err)
	}
	backend, err := llm.NewBackendFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create %s client: %v", cfg.LLMProvider, err)
	}
	generator := llm.NewGenerator(backend, contexts, loc, llm.GeneratorConfig{
		AssistantName: cfg.AssistantName,
		Language:      cfg.Language,
		Timeout:       cfg.LLMTimeout,
	})

	// 4. Telegram intake
	botService, err := telegram.NewBotService(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}
	tgClient := telegram.NewClient(botService.BotAPI)

	filter := triage.NewFilter(triage.Policy{
		IgnoredGroupIDs:  cfg.IgnoredGroupIDs,
		IgnoredUsernames: cfg.IgnoredUsernames,
		Keywords:         cfg.Keywords,
		MaxDenseLength:   config.MaxDenseLength,
	})
	botService.Handler = intake.NewPipeline(filter, generator, tgClient, store, publisher)
	go botService.Run(ctx)

	// 5. Operator surface
	complaints := complaint.NewService(store, publisher)
	dispatcher := dispatch.NewDispatcher(store, tgClient, publisher, cfg.UploadDir, cfg.AllowReReply)

	if cfg.BacklogCron != "" && cfg.BacklogCron != "off" {
		monitor := scheduler.NewBacklogMonitor(complaints, publisher, cfg.BacklogCron, cfg.BacklogAge)
		if err := monitor.Start(); err != nil {
			log.Fatalf("Failed to start backlog monitor: %v", err)
		}
		defer monitor.Stop()
	}

	auth := handler.NewAuth(cfg.JWTSecret, cfg.DashboardPassword)
	if !auth.Enabled() {
		log.Warn("JWT_SECRET not set, dashboard API is unauthenticated")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	h := handler.NewHandler(hub, complaints, dispatcher, auth, cfg.UploadDir, cfg.MaxUploadBytes)
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Infof("Dashboard API listening on %s", cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
