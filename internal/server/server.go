package server

import (
	"context"
	"strings"
	"time"

	"anoa.com/betpoints/internal/config"
	"anoa.com/betpoints/internal/events"
	"anoa.com/betpoints/internal/handler"
	"anoa.com/betpoints/internal/middleware"
	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/internal/service"
	"anoa.com/betpoints/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Server struct {
	engine *gin.Engine
	cron   *cron.Cron
	log    *logrus.Logger
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	pointTypeRepo := repository.NewPointTypeRepository(db)
	rankRepo := repository.NewRankRepository(db)
	ruleRepo := repository.NewEarningRuleRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	betRepo := repository.NewBetRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	registry := service.NewRegistry(pointTypeRepo, rankRepo, ruleRepo, log)
	if err := registry.Refresh(context.Background()); err != nil {
		return nil, err
	}

	var searchSvc service.SearchService
	if cfg.MeiliSearchHost != "" {
		meiliHost := cfg.MeiliSearchHost
		if !strings.HasPrefix(meiliHost, "http") {
			meiliHost = "http://" + meiliHost + ":7700"
		}
		meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		searchSvc = service.NewSearchService(meiliClient, log)
	}

	iconStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.WithError(err).Warn("cloudinary not configured, icon uploads disabled")
		iconStorage = nil
	}

	publisher, err := events.NewPublisher(cfg.RabbitMQURL, redisClient, log)
	if err != nil {
		return nil, err
	}

	pointSvc := service.NewPointService(ledgerRepo, registry, searchSvc, publisher, log)
	rankSvc := service.NewRankService(registry, rankRepo, pointSvc, publisher, log)
	pointSvc.AttachRankService(rankSvc)

	rulesSvc := service.NewEarningRuleService(registry, ledgerRepo, pointSvc, redisClient, cfg.RateLimitTrigger, log)
	achievementSvc := service.NewAchievementService(achievementRepo, statsRepo, pointSvc, publisher, log)
	bettingSvc := service.NewBettingService(betRepo, statsRepo, pointSvc, rulesSvc, achievementSvc, publisher, redisClient, cfg.RateLimitBet, log)
	authSvc := service.NewAuthService(userRepo, rulesSvc, cfg.JWTSecret, log)
	leaderboardSvc := service.NewLeaderboardService(ledgerRepo, userRepo, registry, redisClient, log)
	adminSvc := service.NewAdminService(pointTypeRepo, rankRepo, ruleRepo, achievementRepo, registry, iconStorage, log)

	authHandler := handler.NewAuthHandler(authSvc, log)
	pointsHandler := handler.NewPointsHandler(pointSvc, rulesSvc, log)
	bettingHandler := handler.NewBettingHandler(bettingSvc, log)
	gamificationHandler := handler.NewGamificationHandler(rankSvc, achievementSvc, leaderboardSvc, log)
	adminHandler := handler.NewAdminHandler(adminSvc, searchSvc, log)
	eventsHandler := handler.NewEventsHandler(redisClient, log)

	router := gin.New()
	setupCORS(router, cfg)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/balances/:point_type", pointsHandler.GetBalance)
		protected.GET("/transactions", pointsHandler.GetHistory)
		protected.POST("/triggers", pointsHandler.EmitTrigger)

		protected.POST("/bets", bettingHandler.PlaceBet)
		protected.GET("/bets", bettingHandler.ListBets)
		protected.GET("/predictions", bettingHandler.ListOpenPredictions)

		protected.GET("/rank", gamificationHandler.GetMyRank)
		protected.GET("/achievements", gamificationHandler.ListAchievements)
		protected.GET("/achievements/me", gamificationHandler.ListMyAchievements)
		protected.GET("/leaderboard", gamificationHandler.GetLeaderboard)

		protected.GET("/events/ws", eventsHandler.HandleWebSocket)

		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/point-types", adminHandler.CreatePointType)
			adminGroup.PUT("/point-types/:slug", adminHandler.UpdatePointType)
			adminGroup.GET("/point-types", adminHandler.ListPointTypes)
			adminGroup.POST("/ranks", adminHandler.CreateRank)
			adminGroup.POST("/earning-rules", adminHandler.CreateEarningRule)
			adminGroup.GET("/earning-rules", adminHandler.ListEarningRules)
			adminGroup.DELETE("/earning-rules/:id", adminHandler.DeleteEarningRule)
			adminGroup.POST("/achievements", adminHandler.CreateAchievement)
			adminGroup.POST("/icons", adminHandler.UploadIcon)
			adminGroup.GET("/transactions/search", adminHandler.SearchTransactions)

			adminGroup.POST("/adjustments", pointsHandler.Adjust)
			adminGroup.POST("/purchases/confirm", pointsHandler.ConfirmPurchase)

			adminGroup.POST("/predictions", bettingHandler.CreatePrediction)
			adminGroup.POST("/predictions/:id/resolve", bettingHandler.ResolvePrediction)
			adminGroup.POST("/predictions/:id/cancel", bettingHandler.CancelPrediction)
			adminGroup.POST("/bets/:id/resolve", bettingHandler.ResolveBet)
		}
	}

	c := cron.New()

	// Config changes made directly in the database (migrations, manual
	// fixes) are picked up within the hour even without an admin API call.
	if _, err := c.AddFunc("@every 1h", func() {
		if err := registry.Refresh(context.Background()); err != nil {
			log.WithError(err).Warn("scheduled registry refresh failed")
		}
	}); err != nil {
		return nil, err
	}

	// Keep the betcoins leaderboard cache warm.
	if _, err := c.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := leaderboardSvc.GetLeaderboard(ctx, model.PointTypeBetcoins, 10); err != nil {
			log.WithError(err).Warn("leaderboard warmup failed")
		}
	}); err != nil {
		return nil, err
	}

	// Re-settle bets stranded pending by a mid-resolution failure.
	if _, err := c.AddFunc("@every 10m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		settled, err := bettingSvc.SweepStrandedBets(ctx)
		if err != nil {
			log.WithError(err).Warn("stranded bet sweep failed")
		} else if settled > 0 {
			log.WithField("settled", settled).Info("stranded bet sweep settled bets")
		}
	}); err != nil {
		return nil, err
	}

	return &Server{engine: router, cron: c, log: log}, nil
}

func (s *Server) Run(addr string) error {
	s.cron.Start()
	defer s.cron.Stop()
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, cfg *config.Config) {
	origins := strings.Split(cfg.AllowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
