package service

import (
	"context"
	"strconv"

	"anoa.com/betpoints/internal/events"
	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AchievementService interface {
	// Evaluate checks every active, still-locked achievement against the
	// user's statistics and unlocks the ones whose condition is met.
	// Returns the newly unlocked achievements. Per-achievement failures are
	// logged and skipped.
	Evaluate(ctx context.Context, userID uuid.UUID) []model.Achievement
	ListPublic(ctx context.Context) ([]model.Achievement, error)
	ListUnlocked(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error)
}

type achievementService struct {
	achievementRepo repository.AchievementRepository
	statsRepo       repository.StatsRepository
	points          PointService
	publisher       events.Publisher
	log             *logrus.Logger
}

func NewAchievementService(achievementRepo repository.AchievementRepository, statsRepo repository.StatsRepository, points PointService, publisher events.Publisher, log *logrus.Logger) AchievementService {
	return &achievementService{
		achievementRepo: achievementRepo,
		statsRepo:       statsRepo,
		points:          points,
		publisher:       publisher,
		log:             log,
	}
}

func (s *achievementService) Evaluate(ctx context.Context, userID uuid.UUID) []model.Achievement {
	achievements, err := s.achievementRepo.FindActive(ctx)
	if err != nil {
		s.log.WithError(err).Warn("failed to load achievements")
		return nil
	}

	unlockedIDs, err := s.achievementRepo.FindUnlockedIDs(ctx, userID)
	if err != nil {
		s.log.WithError(err).Warn("failed to load unlocked achievements")
		return nil
	}

	stats, err := s.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.WithError(err).Warn("failed to load user stats")
		return nil
	}

	var unlocked []model.Achievement
	for _, achievement := range achievements {
		if unlockedIDs[achievement.ID] {
			continue
		}

		met, err := s.conditionMet(ctx, userID, achievement, stats)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"achievement": achievement.Slug,
				"user_id":     userID,
				"error":       err,
			}).Warn("condition evaluation failed, skipping achievement")
			continue
		}
		if !met {
			continue
		}

		if err := s.unlock(ctx, userID, achievement); err != nil {
			s.log.WithFields(logrus.Fields{
				"achievement": achievement.Slug,
				"user_id":     userID,
				"error":       err,
			}).Warn("achievement unlock failed, continuing")
			continue
		}
		unlocked = append(unlocked, achievement)
	}

	return unlocked
}

func (s *achievementService) conditionMet(ctx context.Context, userID uuid.UUID, achievement model.Achievement, stats *model.UserStats) (bool, error) {
	var value int64

	switch achievement.ConditionType {
	case model.ConditionBetsPlaced:
		value = stats.BetsPlaced
	case model.ConditionBetsWon:
		value = stats.BetsWon
	case model.ConditionWinStreak:
		value = stats.BestStreak
	case model.ConditionTotalWagered:
		value = stats.TotalWagered
	case model.ConditionTotalWon:
		value = stats.TotalWon
	case model.ConditionExperience:
		balance, err := s.points.GetBalance(ctx, userID, model.PointTypeExperience)
		if err != nil {
			return false, err
		}
		value = balance.Balance
	default:
		s.log.WithField("condition", achievement.ConditionType).Warn("unknown achievement condition type")
		return false, nil
	}

	return value >= achievement.Threshold, nil
}

func (s *achievementService) unlock(ctx context.Context, userID uuid.UUID, achievement model.Achievement) error {
	inserted, err := s.achievementRepo.InsertUnlock(ctx, userID, achievement.ID)
	if err != nil {
		return err
	}
	if !inserted {
		// Lost the race against a concurrent Evaluate: already unlocked,
		// nothing more to do. The unique index keeps the reward single.
		return nil
	}

	if achievement.PointsReward > 0 {
		ref := &model.Reference{
			Type: model.ReferenceTypeAchievement,
			ID:   strconv.FormatUint(uint64(achievement.ID), 10),
		}
		if _, err := s.points.Award(ctx, userID, achievement.PointsReward, achievement.RewardType, achievement.Name, ref); err != nil {
			return err
		}
	}

	s.publisher.Publish(ctx, events.Event{
		Type:   events.TypeAchievementUnlocked,
		UserID: userID,
		Payload: map[string]any{
			"achievement": achievement.Slug,
			"name":        achievement.Name,
			"reward":      achievement.PointsReward,
		},
	})

	return nil
}

func (s *achievementService) ListPublic(ctx context.Context) ([]model.Achievement, error) {
	return s.achievementRepo.FindPublic(ctx)
}

func (s *achievementService) ListUnlocked(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	return s.achievementRepo.FindUnlocked(ctx, userID)
}
