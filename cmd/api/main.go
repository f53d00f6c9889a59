package main

import (
	"context"
	"log"
	"time"

	"beacon-chat/config"
	"beacon-chat/internal/gateway"
	"beacon-chat/internal/handler"
	beaconredis "beacon-chat/internal/redis"
	"beacon-chat/internal/repository"
	"beacon-chat/internal/server"
	"beacon-chat/internal/services"
	"beacon-chat/internal/storage"
	"beacon-chat/pkg/database"
	"beacon-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	l := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)
	if err := database.Migrate(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient := beaconredis.NewClient(beaconredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	limiter := beaconredis.NewRateLimiter(redisClient, beaconredis.DefaultRateLimitConfig())

	accountRepo := repository.NewAccountRepository(database.DB)
	conversationRepo := repository.NewConversationRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)

	authService := services.NewAuthService(accountRepo, cfg)
	accountService := services.NewAccountService(accountRepo)
	conversationService := services.NewConversationService(conversationRepo, messageRepo)
	messageService := services.NewMessageService(database.DB, messageRepo, conversationRepo,
		time.Duration(cfg.EditWindowMin)*time.Minute)

	registry := gateway.NewRegistry()
	hub := gateway.NewHub(registry, conversationService, messageService, accountService, limiter, gateway.NewLogger())
	defer hub.Stop()

	presignTTL := time.Duration(cfg.S3PresignTTLMin) * time.Minute
	var store *storage.Client
	if cfg.S3Bucket != "" {
		var err error
		store, err = storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: presignTTL,
		})
		if err != nil {
			log.Fatalf("failed to initialize object storage: %v", err)
		}
	} else {
		l.Infof("S3_BUCKET not set, attachment uploads disabled")
	}

	handlers := &server.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Account:      handler.NewAccountHandler(accountService, registry),
		Conversation: handler.NewConversationHandler(conversationService),
		Message:      handler.NewMessageHandler(messageService, hub),
		Upload:       handler.NewUploadHandler(store, presignTTL),
		Admin:        handler.NewAdminHandler(accountService, conversationService),
		Gateway:      gateway.NewHandler(hub, authService),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, accountService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
