package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/betpoints/internal/events"
	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/internal/service"
	"anoa.com/betpoints/internal/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// env wires the full service stack against an in-memory database with the
// built-in point types seeded. Redis is absent, so rate limits pass, and all
// events go to the noop publisher.
type env struct {
	db  *gorm.DB
	log *logrus.Logger

	ledgerRepo      repository.LedgerRepository
	pointTypeRepo   repository.PointTypeRepository
	rankRepo        repository.RankRepository
	ruleRepo        repository.EarningRuleRepository
	achievementRepo repository.AchievementRepository
	betRepo         repository.BetRepository
	statsRepo       repository.StatsRepository

	registry     *service.Registry
	points       service.PointService
	ranks        service.RankService
	rules        service.EarningRuleService
	achievements service.AchievementService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := testutil.NewTestLogger()

	e := &env{
		db:              db,
		log:             log,
		ledgerRepo:      repository.NewLedgerRepository(db),
		pointTypeRepo:   repository.NewPointTypeRepository(db),
		rankRepo:        repository.NewRankRepository(db),
		ruleRepo:        repository.NewEarningRuleRepository(db),
		achievementRepo: repository.NewAchievementRepository(db),
		betRepo:         repository.NewBetRepository(db),
		statsRepo:       repository.NewStatsRepository(db),
	}

	ctx := context.Background()
	for _, pt := range []model.PointType{
		{Slug: model.PointTypeBetcoins, Name: "Betcoins", Active: true},
		{Slug: model.PointTypeExperience, Name: "Experience", Active: true},
	} {
		p := pt
		require.NoError(t, e.pointTypeRepo.Create(ctx, &p))
	}

	e.registry = service.NewRegistry(e.pointTypeRepo, e.rankRepo, e.ruleRepo, log)
	require.NoError(t, e.registry.Refresh(ctx))

	e.points = service.NewPointService(e.ledgerRepo, e.registry, nil, events.Noop(), log)
	e.ranks = service.NewRankService(e.registry, e.rankRepo, e.points, events.Noop(), log)
	e.points.AttachRankService(e.ranks)
	e.rules = service.NewEarningRuleService(e.registry, e.ledgerRepo, e.points, nil, time.Second, log)
	e.achievements = service.NewAchievementService(e.achievementRepo, e.statsRepo, e.points, events.Noop(), log)

	return e
}

func (e *env) refresh(t *testing.T) {
	t.Helper()
	require.NoError(t, e.registry.Refresh(context.Background()))
}

func (e *env) newBetting(t *testing.T, betRepo repository.BetRepository) service.BettingService {
	t.Helper()
	if betRepo == nil {
		betRepo = e.betRepo
	}
	return service.NewBettingService(betRepo, e.statsRepo, e.points, e.rules, e.achievements, events.Noop(), nil, time.Second, e.log)
}

func intPtr(v int) *int {
	return &v
}
