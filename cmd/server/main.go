package main

import (
	"anoa.com/betpoints/internal/bootstrap"
	"anoa.com/betpoints/internal/config"
	"anoa.com/betpoints/internal/server"
	"anoa.com/betpoints/pkg/database"
	"anoa.com/betpoints/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	db := database.Connect(cfg.DatabaseURL)

	if err := bootstrap.Migrate(db); err != nil {
		log.WithError(err).Fatal("migration failed")
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.WithError(err).Fatal("failed to seed roles")
	}
	if err := bootstrap.SeedPointTypes(db); err != nil {
		log.WithError(err).Fatal("failed to seed point types")
	}
	if err := bootstrap.SeedRanks(db); err != nil {
		log.WithError(err).Fatal("failed to seed ranks")
	}
	if err := bootstrap.SeedEarningRules(db); err != nil {
		log.WithError(err).Fatal("failed to seed earning rules")
	}
	if err := bootstrap.SeedAchievements(db); err != nil {
		log.WithError(err).Fatal("failed to seed achievements")
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.WithError(err).Fatal("failed to seed admin user")
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("invalid REDIS_URL")
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Warn("redis not configured, rate limiting and live events disabled")
	}

	srv, err := server.NewServer(cfg, db, redisClient, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize server")
	}

	log.WithField("port", cfg.Port).Info("starting server")
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server exited with error")
	}
}
