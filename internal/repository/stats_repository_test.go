package repository_test

import (
	"context"
	"testing"

	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsStreakTracking(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewStatsRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, repo.RecordBetPlaced(ctx, userID, 100))
	require.NoError(t, repo.RecordBetWon(ctx, userID, 200))
	require.NoError(t, repo.RecordBetWon(ctx, userID, 50))
	require.NoError(t, repo.RecordBetWon(ctx, userID, 75))

	stats, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.BetsPlaced)
	assert.Equal(t, int64(3), stats.BetsWon)
	assert.Equal(t, int64(3), stats.CurrentStreak)
	assert.Equal(t, int64(3), stats.BestStreak)
	assert.Equal(t, int64(100), stats.TotalWagered)
	assert.Equal(t, int64(325), stats.TotalWon)

	// A loss resets the current streak but the best streak survives.
	require.NoError(t, repo.RecordBetLost(ctx, userID))

	stats, err = repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.BetsLost)
	assert.Equal(t, int64(0), stats.CurrentStreak)
	assert.Equal(t, int64(3), stats.BestStreak)
}

func TestStatsUnknownUserIsZero(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewStatsRepository(db)

	stats, err := repo.GetByUserID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.BetsPlaced)
	assert.Equal(t, int64(0), stats.BestStreak)
}
