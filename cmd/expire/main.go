package main

import (
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/biznet/bn_server/config"
	"github.com/biznet/bn_server/internal/database"
	"github.com/biznet/bn_server/internal/pkg/logger"
	"github.com/biznet/bn_server/internal/repository"
	"github.com/biznet/bn_server/internal/service"
)

var dryRun = flag.Bool("dry-run", true, "List due memberships without expiring them")

// One-shot expiry sweep for operators; the server also sweeps hourly.
func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Setup(cfg.Server.Mode)
	log.Info().Bool("dry_run", *dryRun).Msg("starting expiry sweep")

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	userRepo := repository.NewUserRepository(db)
	tierRepo := repository.NewTierRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	historyRepo := repository.NewHistoryRepository(db)

	now := time.Now()

	if *dryRun {
		due, err := membershipRepo.ListDueForExpiry(now)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to list due memberships")
		}
		for _, m := range due {
			log.Info().
				Str("membership_id", m.MembershipID).
				Int64("user_id", m.UserID).
				Str("tier", m.Tier).
				Time("expiry_date", m.ExpiryDate).
				Msg("due for expiry")
		}
		log.Info().Int("due", len(due)).Msg("dry run complete, nothing written")
		return
	}

	catalogService := service.NewCatalogService(tierRepo)
	// No event queue here: operator sweeps should not spam notifications.
	membershipService := service.NewMembershipService(db, membershipRepo, historyRepo, userRepo, catalogService, service.NewNotifier(nil))

	count, err := membershipService.ExpireDue(now)
	if err != nil {
		log.Fatal().Err(err).Msg("expiry sweep failed")
	}
	log.Info().Int("expired", count).Msg("expiry sweep complete")
}
