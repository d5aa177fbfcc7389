package api

import (
	"github.com/gin-gonic/gin"

	"github.com/biznet/bn_server/config"
	"github.com/biznet/bn_server/internal/api/handler"
	"github.com/biznet/bn_server/internal/api/middleware"
	"github.com/biznet/bn_server/internal/repository"
)

type Router struct {
	authHandler         *handler.AuthHandler
	membershipHandler   *handler.MembershipHandler
	tierHandler         *handler.TierHandler
	reportHandler       *handler.ReportHandler
	notificationHandler *handler.NotificationHandler
	userRepo            *repository.UserRepository
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	membershipHandler *handler.MembershipHandler,
	tierHandler *handler.TierHandler,
	reportHandler *handler.ReportHandler,
	notificationHandler *handler.NotificationHandler,
	userRepo *repository.UserRepository,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		membershipHandler:   membershipHandler,
		tierHandler:         tierHandler,
		reportHandler:       reportHandler,
		notificationHandler: notificationHandler,
		userRepo:            userRepo,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// Live notification stream
		api.GET("/ws", r.notificationHandler.Stream)

		// Public - auth
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// Public - tier catalog and third-party verification
		api.GET("/membership-tiers", r.tierHandler.List)
		api.POST("/membership/verify-id", r.membershipHandler.VerifyByID)

		// Authenticated
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			membership := authenticated.Group("/membership")
			{
				membership.POST("/purchase", r.membershipHandler.Purchase)
				membership.GET("/verify", r.membershipHandler.Verify)
				membership.GET("/history", r.membershipHandler.History)
				membership.GET("/details", r.membershipHandler.Details)
				membership.POST("/cancel", r.membershipHandler.Cancel)
				membership.POST("/downgrade", r.membershipHandler.Downgrade)
				membership.GET("/stats", r.reportHandler.MyStats)
			}

			notifications := authenticated.Group("/notifications")
			{
				notifications.GET("", r.notificationHandler.List)
				notifications.POST("/:id/read", r.notificationHandler.MarkRead)
			}

			// Admin
			admin := authenticated.Group("/membership-tiers")
			admin.Use(middleware.RequireAdmin(r.userRepo))
			{
				admin.PUT("/:tierId", r.tierHandler.UpdateFeatures)
				admin.GET("/:tierId/users", r.reportHandler.UsersByTier)
			}
		}
	}

	return engine
}
