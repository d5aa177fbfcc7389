package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biznet/bn_server/config"
	"github.com/biznet/bn_server/internal/api"
	"github.com/biznet/bn_server/internal/api/handler"
	"github.com/biznet/bn_server/internal/database"
	"github.com/biznet/bn_server/internal/pkg/cron"
	"github.com/biznet/bn_server/internal/pkg/logger"
	"github.com/biznet/bn_server/internal/pkg/pubsub"
	"github.com/biznet/bn_server/internal/pkg/queue"
	"github.com/biznet/bn_server/internal/pkg/ws"
	"github.com/biznet/bn_server/internal/repository"
	"github.com/biznet/bn_server/internal/service"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Setup(cfg.Server.Mode)

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	log.Info().Msg("database connected")

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	log.Info().Msg("redis connected")

	events := queue.NewQueue(rdb, cfg.Events.QueueName)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tierRepo := repository.NewTierRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Services
	catalogService := service.NewCatalogService(tierRepo)
	if err := catalogService.Seed(); err != nil {
		log.Fatal().Err(err).Msg("failed to seed tier catalog")
	}
	notifier := service.NewNotifier(events)
	authService := service.NewAuthService(userRepo, cfg)
	membershipService := service.NewMembershipService(db, membershipRepo, historyRepo, userRepo, catalogService, notifier)
	reportService := service.NewReportService(userRepo, membershipRepo, historyRepo)

	// Live notification fan-in: pubsub -> websocket hub
	hub := ws.NewHub()
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(context.Background(), func(notice *pubsub.Notice) {
			hub.Push(notice.UserID, ws.Message{Type: "notification", Data: notice})
		})
		if err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("notification subscription ended")
		}
	}()

	// Hourly expiry sweep; verification also expires lazily on read
	sweep := cron.NewService(membershipService, time.Hour)
	sweep.Start()
	defer sweep.Stop()

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	membershipHandler := handler.NewMembershipHandler(membershipService)
	tierHandler := handler.NewTierHandler(catalogService)
	reportHandler := handler.NewReportHandler(reportService)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, hub, cfg.JWT.Secret)

	router := api.NewRouter(
		authHandler,
		membershipHandler,
		tierHandler,
		reportHandler,
		notificationHandler,
		userRepo,
		cfg,
	)
	engine := router.Setup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server starting")
	if err := engine.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
