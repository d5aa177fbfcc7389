package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/biznet/bn_server/config"
	"github.com/biznet/bn_server/internal/database"
	"github.com/biznet/bn_server/internal/pkg/logger"
	"github.com/biznet/bn_server/internal/pkg/pubsub"
	"github.com/biznet/bn_server/internal/pkg/queue"
	"github.com/biznet/bn_server/internal/repository"
	"github.com/biznet/bn_server/internal/worker"
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
	publisher := pubsub.NewPublisher(rdb)
	notificationRepo := repository.NewNotificationRepository(db)

	dispatcher := worker.NewDispatcher(events, notificationRepo, publisher)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		cancel()
	}()

	if err := dispatcher.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal().Err(err).Msg("dispatcher exited")
	}
}
