package service_test

import (
	"context"
	"testing"

	"anoa.com/betpoints/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLadder(t *testing.T, e *env) {
	t.Helper()
	ctx := context.Background()
	for _, rank := range []model.Rank{
		{Slug: "rookie", Name: "Rookie", PointsRequired: 0, OrderPosition: 1},
		{Slug: "amateur", Name: "Amateur", PointsRequired: 100, OrderPosition: 2},
		{Slug: "pro", Name: "Pro", PointsRequired: 500, OrderPosition: 3},
	} {
		r := rank
		require.NoError(t, e.rankRepo.Create(ctx, &r))
	}
	e.refresh(t)
}

func TestRankFollowsExperience(t *testing.T) {
	e := newEnv(t)
	seedLadder(t, e)
	ctx := context.Background()
	userID := uuid.New()

	// First experience award lands the user on the base rank.
	_, err := e.points.Award(ctx, userID, 10, model.PointTypeExperience, "xp", nil)
	require.NoError(t, err)

	current, err := e.ranks.GetUserRank(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "rookie", current.Rank.Slug)

	// Crossing a threshold promotes synchronously with the award.
	_, err = e.points.Award(ctx, userID, 150, model.PointTypeExperience, "xp", nil)
	require.NoError(t, err)

	current, err = e.ranks.GetUserRank(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "amateur", current.Rank.Slug)

	next, err := e.ranks.GetNextRank(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "pro", next.Slug)
}

func TestRankExactThreshold(t *testing.T) {
	e := newEnv(t)
	seedLadder(t, e)
	ctx := context.Background()
	userID := uuid.New()

	// Thresholds are inclusive.
	_, err := e.points.Award(ctx, userID, 500, model.PointTypeExperience, "xp", nil)
	require.NoError(t, err)

	current, err := e.ranks.GetUserRank(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "pro", current.Rank.Slug)

	// Top of the ladder: nothing left to climb.
	next, err := e.ranks.GetNextRank(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestRankTieBrokenByOrderPosition(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, rank := range []model.Rank{
		{Slug: "silver", Name: "Silver", PointsRequired: 100, OrderPosition: 1},
		{Slug: "gold", Name: "Gold", PointsRequired: 100, OrderPosition: 2},
	} {
		r := rank
		require.NoError(t, e.rankRepo.Create(ctx, &r))
	}
	e.refresh(t)

	userID := uuid.New()
	_, err := e.points.Award(ctx, userID, 100, model.PointTypeExperience, "xp", nil)
	require.NoError(t, err)

	current, err := e.ranks.GetUserRank(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "gold", current.Rank.Slug)
}

func TestRecomputeWithoutLadderIsNoop(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := e.points.Award(ctx, userID, 50, model.PointTypeExperience, "xp", nil)
	require.NoError(t, err)

	current, err := e.ranks.GetUserRank(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestBetcoinsDoNotAffectRank(t *testing.T) {
	e := newEnv(t)
	seedLadder(t, e)
	ctx := context.Background()
	userID := uuid.New()

	_, err := e.points.Award(ctx, userID, 1000, model.PointTypeBetcoins, "seed", nil)
	require.NoError(t, err)

	current, err := e.ranks.GetUserRank(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, current)
}
