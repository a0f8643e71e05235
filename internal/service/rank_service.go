package service

import (
	"context"

	"anoa.com/betpoints/internal/events"
	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RankService interface {
	// RecomputeRank re-derives the user's rank from their experience
	// balance and persists it when it changed. Called synchronously after
	// every experience mutation.
	RecomputeRank(ctx context.Context, userID uuid.UUID) error
	GetUserRank(ctx context.Context, userID uuid.UUID) (*model.UserRank, error)
	GetNextRank(ctx context.Context, userID uuid.UUID) (*model.Rank, error)
}

type rankService struct {
	registry  *Registry
	rankRepo  repository.RankRepository
	points    PointService
	publisher events.Publisher
	log       *logrus.Logger
}

func NewRankService(registry *Registry, rankRepo repository.RankRepository, points PointService, publisher events.Publisher, log *logrus.Logger) RankService {
	return &rankService{
		registry:  registry,
		rankRepo:  rankRepo,
		points:    points,
		publisher: publisher,
		log:       log,
	}
}

// rankFor picks the highest rank whose threshold the balance meets. The
// ladder is ordered ascending with order position breaking ties, so the last
// match wins.
func (s *rankService) rankFor(balance int64) *model.Rank {
	var current *model.Rank
	for _, rank := range s.registry.Ranks() {
		if rank.PointsRequired <= balance {
			r := rank
			current = &r
		}
	}
	return current
}

func (s *rankService) RecomputeRank(ctx context.Context, userID uuid.UUID) error {
	balance, err := s.points.GetBalance(ctx, userID, model.PointTypeExperience)
	if err != nil {
		return err
	}

	target := s.rankFor(balance.Balance)
	if target == nil {
		return nil
	}

	current, err := s.rankRepo.GetUserRank(ctx, userID)
	if err != nil {
		return err
	}
	if current != nil && current.RankID == target.ID {
		return nil
	}

	if err := s.rankRepo.UpsertUserRank(ctx, userID, target.ID); err != nil {
		return err
	}

	payload := map[string]any{
		"rank_slug":  target.Slug,
		"rank_name":  target.Name,
		"experience": balance.Balance,
	}
	if current != nil {
		payload["previous_rank"] = current.Rank.Slug
	}
	s.publisher.Publish(ctx, events.Event{
		Type:    events.TypeRankChanged,
		UserID:  userID,
		Payload: payload,
	})

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"rank":    target.Slug,
	}).Info("user rank changed")

	return nil
}

func (s *rankService) GetUserRank(ctx context.Context, userID uuid.UUID) (*model.UserRank, error) {
	return s.rankRepo.GetUserRank(ctx, userID)
}

func (s *rankService) GetNextRank(ctx context.Context, userID uuid.UUID) (*model.Rank, error) {
	balance, err := s.points.GetBalance(ctx, userID, model.PointTypeExperience)
	if err != nil {
		return nil, err
	}

	for _, rank := range s.registry.Ranks() {
		if rank.PointsRequired > balance.Balance {
			r := rank
			return &r, nil
		}
	}
	// Already at the top of the ladder.
	return nil, nil
}
