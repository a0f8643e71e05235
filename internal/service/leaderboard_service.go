package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/betpoints/internal/dto"
	"anoa.com/betpoints/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const leaderboardCacheTTL = time.Minute

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, pointType string, limit int) ([]dto.LeaderboardEntry, error)
}

type leaderboardService struct {
	ledger      repository.LedgerRepository
	userRepo    repository.UserRepository
	registry    *Registry
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewLeaderboardService(ledger repository.LedgerRepository, userRepo repository.UserRepository, registry *Registry, redisClient *redis.Client, log *logrus.Logger) LeaderboardService {
	return &leaderboardService{
		ledger:      ledger,
		userRepo:    userRepo,
		registry:    registry,
		redisClient: redisClient,
		log:         log,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, pointType string, limit int) ([]dto.LeaderboardEntry, error) {
	if _, ok := s.registry.PointType(pointType); !ok {
		return nil, fmt.Errorf("unknown point type %q", pointType)
	}

	cacheKey := fmt.Sprintf("leaderboard:%s:%d", pointType, limit)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var entries []dto.LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	balances, err := s.ledger.TopBalances(ctx, pointType, limit)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(balances))
	for _, b := range balances {
		userIDs = append(userIDs, b.UserID)
	}

	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usernames := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		usernames[u.ID] = u.Username
	}

	entries := make([]dto.LeaderboardEntry, 0, len(balances))
	for i, b := range balances {
		entries = append(entries, dto.LeaderboardEntry{
			Position:    i + 1,
			UserID:      b.UserID,
			Username:    usernames[b.UserID],
			Balance:     b.Balance,
			TotalEarned: b.TotalEarned,
		})
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				s.log.WithError(err).Warn("failed to cache leaderboard")
			}
		}
	}

	return entries, nil
}
