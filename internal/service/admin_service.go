package service

import (
	"context"
	"fmt"
	"io"

	"anoa.com/betpoints/internal/dto"
	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/pkg/apperror"
	"anoa.com/betpoints/pkg/storage"
	"github.com/sirupsen/logrus"
)

// AdminService owns the mutable configuration tables (point types, ranks,
// earning rules, achievements). Every change refreshes the registry
// snapshot so request handling keeps reading consistent config.
type AdminService interface {
	CreatePointType(ctx context.Context, req dto.CreatePointTypeRequest) (*model.PointType, error)
	UpdatePointType(ctx context.Context, slug string, req dto.UpdatePointTypeRequest) error
	ListPointTypes(ctx context.Context) ([]model.PointType, error)

	CreateRank(ctx context.Context, req dto.CreateRankRequest) (*model.Rank, error)
	CreateEarningRule(ctx context.Context, req dto.CreateEarningRuleRequest) (*model.EarningRule, error)
	ListEarningRules(ctx context.Context) ([]model.EarningRule, error)
	DeleteEarningRule(ctx context.Context, id uint) error
	CreateAchievement(ctx context.Context, req dto.CreateAchievementRequest) (*model.Achievement, error)

	UploadIcon(ctx context.Context, r io.Reader, kind, fileName string) (string, error)
}

type adminService struct {
	pointTypeRepo   repository.PointTypeRepository
	rankRepo        repository.RankRepository
	ruleRepo        repository.EarningRuleRepository
	achievementRepo repository.AchievementRepository
	registry        *Registry
	iconStorage     storage.IconStorage
	log             *logrus.Logger
}

func NewAdminService(pointTypeRepo repository.PointTypeRepository, rankRepo repository.RankRepository, ruleRepo repository.EarningRuleRepository, achievementRepo repository.AchievementRepository, registry *Registry, iconStorage storage.IconStorage, log *logrus.Logger) AdminService {
	return &adminService{
		pointTypeRepo:   pointTypeRepo,
		rankRepo:        rankRepo,
		ruleRepo:        ruleRepo,
		achievementRepo: achievementRepo,
		registry:        registry,
		iconStorage:     iconStorage,
		log:             log,
	}
}

func (s *adminService) refresh(ctx context.Context) {
	if err := s.registry.Refresh(ctx); err != nil {
		s.log.WithError(err).Warn("registry refresh after admin change failed")
	}
}

func (s *adminService) CreatePointType(ctx context.Context, req dto.CreatePointTypeRequest) (*model.PointType, error) {
	pt := &model.PointType{
		Slug:          req.Slug,
		Name:          req.Name,
		Icon:          req.Icon,
		DecimalPlaces: req.DecimalPlaces,
		Active:        true,
	}
	if err := s.pointTypeRepo.Create(ctx, pt); err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	s.refresh(ctx)
	return pt, nil
}

func (s *adminService) UpdatePointType(ctx context.Context, slug string, req dto.UpdatePointTypeRequest) error {
	pt, err := s.pointTypeRepo.FindBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("%w: point type %s", apperror.ErrNotFound, slug)
	}

	pt.Name = req.Name
	pt.Icon = req.Icon
	if req.Active != nil {
		pt.Active = *req.Active
	}

	if err := s.pointTypeRepo.Update(ctx, pt); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	s.refresh(ctx)
	return nil
}

func (s *adminService) ListPointTypes(ctx context.Context) ([]model.PointType, error) {
	return s.pointTypeRepo.FindAll(ctx)
}

func (s *adminService) CreateRank(ctx context.Context, req dto.CreateRankRequest) (*model.Rank, error) {
	rank := &model.Rank{
		Slug:           req.Slug,
		Name:           req.Name,
		Icon:           req.Icon,
		BadgeColor:     req.BadgeColor,
		PointsRequired: req.PointsRequired,
		OrderPosition:  req.OrderPosition,
	}
	if err := s.rankRepo.Create(ctx, rank); err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	s.refresh(ctx)
	return rank, nil
}

func (s *adminService) CreateEarningRule(ctx context.Context, req dto.CreateEarningRuleRequest) (*model.EarningRule, error) {
	if _, ok := s.registry.PointType(req.PointTypeSlug); !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidPointType, req.PointTypeSlug)
	}

	rule := &model.EarningRule{
		Name:           req.Name,
		TriggerAction:  req.TriggerAction,
		PointTypeSlug:  req.PointTypeSlug,
		PointsAwarded:  req.PointsAwarded,
		MaxDailyAwards: req.MaxDailyAwards,
		MaxTotalAwards: req.MaxTotalAwards,
		Priority:       req.Priority,
		Active:         true,
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	s.refresh(ctx)
	return rule, nil
}

func (s *adminService) ListEarningRules(ctx context.Context) ([]model.EarningRule, error) {
	return s.ruleRepo.FindAll(ctx)
}

func (s *adminService) DeleteEarningRule(ctx context.Context, id uint) error {
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	s.refresh(ctx)
	return nil
}

func (s *adminService) CreateAchievement(ctx context.Context, req dto.CreateAchievementRequest) (*model.Achievement, error) {
	rewardType := req.RewardType
	if rewardType == "" {
		rewardType = model.PointTypeBetcoins
	}
	if _, ok := s.registry.PointType(rewardType); !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidPointType, rewardType)
	}

	achievement := &model.Achievement{
		Slug:          req.Slug,
		Name:          req.Name,
		Description:   req.Description,
		Icon:          req.Icon,
		ConditionType: req.ConditionType,
		Threshold:     req.Threshold,
		PointsReward:  req.PointsReward,
		RewardType:    rewardType,
		IsSecret:      req.IsSecret,
		Active:        true,
	}
	if err := s.achievementRepo.Create(ctx, achievement); err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	return achievement, nil
}

func (s *adminService) UploadIcon(ctx context.Context, r io.Reader, kind, fileName string) (string, error) {
	if s.iconStorage == nil {
		return "", fmt.Errorf("icon storage is not configured")
	}
	return s.iconStorage.UploadIcon(ctx, r, kind, fileName)
}
