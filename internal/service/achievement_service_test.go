package service_test

import (
	"context"
	"testing"

	"anoa.com/betpoints/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAchievementUnlockIsOneShot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.achievementRepo.Create(ctx, &model.Achievement{
		Slug:          "first-bet",
		Name:          "First Blood",
		ConditionType: model.ConditionBetsPlaced,
		Threshold:     1,
		PointsReward:  25,
		RewardType:    model.PointTypeBetcoins,
		Active:        true,
	}))

	userID := uuid.New()
	require.NoError(t, e.statsRepo.RecordBetPlaced(ctx, userID, 10))

	unlocked := e.achievements.Evaluate(ctx, userID)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "first-bet", unlocked[0].Slug)

	balance, err := e.points.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance.Balance)

	// Re-evaluation neither unlocks again nor double-pays.
	unlocked = e.achievements.Evaluate(ctx, userID)
	assert.Empty(t, unlocked)

	balance, err = e.points.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance.Balance)

	rows, err := e.achievements.ListUnlocked(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "first-bet", rows[0].Achievement.Slug)
}

func TestAchievementThresholdNotMet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.achievementRepo.Create(ctx, &model.Achievement{
		Slug:          "ten-wins",
		Name:          "Sharp Shooter",
		ConditionType: model.ConditionBetsWon,
		Threshold:     10,
		PointsReward:  100,
		RewardType:    model.PointTypeBetcoins,
		Active:        true,
	}))

	userID := uuid.New()
	require.NoError(t, e.statsRepo.RecordBetWon(ctx, userID, 50))

	assert.Empty(t, e.achievements.Evaluate(ctx, userID))
}

func TestExperienceCondition(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.achievementRepo.Create(ctx, &model.Achievement{
		Slug:          "seasoned",
		Name:          "Seasoned",
		ConditionType: model.ConditionExperience,
		Threshold:     100,
		PointsReward:  50,
		RewardType:    model.PointTypeBetcoins,
		Active:        true,
	}))

	userID := uuid.New()
	_, err := e.points.Award(ctx, userID, 120, model.PointTypeExperience, "xp", nil)
	require.NoError(t, err)

	unlocked := e.achievements.Evaluate(ctx, userID)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "seasoned", unlocked[0].Slug)

	// The reward lands in betcoins, leaving experience untouched.
	xp, err := e.points.GetBalance(ctx, userID, model.PointTypeExperience)
	require.NoError(t, err)
	assert.Equal(t, int64(120), xp.Balance)
}

func TestSecretAchievementsHiddenFromPublicList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.achievementRepo.Create(ctx, &model.Achievement{
		Slug:          "hot-streak",
		Name:          "Hot Streak",
		ConditionType: model.ConditionWinStreak,
		Threshold:     5,
		IsSecret:      true,
		Active:        true,
	}))
	require.NoError(t, e.achievementRepo.Create(ctx, &model.Achievement{
		Slug:          "first-bet",
		Name:          "First Blood",
		ConditionType: model.ConditionBetsPlaced,
		Threshold:     1,
		Active:        true,
	}))

	public, err := e.achievements.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "first-bet", public[0].Slug)
}

func TestZeroRewardAchievement(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.achievementRepo.Create(ctx, &model.Achievement{
		Slug:          "badge-only",
		Name:          "Badge Only",
		ConditionType: model.ConditionBetsPlaced,
		Threshold:     1,
		PointsReward:  0,
		RewardType:    model.PointTypeBetcoins,
		Active:        true,
	}))

	userID := uuid.New()
	require.NoError(t, e.statsRepo.RecordBetPlaced(ctx, userID, 10))

	unlocked := e.achievements.Evaluate(ctx, userID)
	require.Len(t, unlocked, 1)

	// No reward row, no ledger activity.
	balance, err := e.points.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.TotalEarned)
}
