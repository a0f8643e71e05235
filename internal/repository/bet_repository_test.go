package repository_test

import (
	"context"
	"testing"

	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMarkResolvedOnlyOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBetRepository(db)
	ctx := context.Background()

	bet := &model.Bet{
		UserID:       uuid.New(),
		PredictionID: uuid.New(),
		Amount:       50,
		Choice:       "yes",
		Status:       model.BetStatusPending,
	}
	require.NoError(t, repo.Insert(ctx, bet))

	require.NoError(t, repo.MarkResolved(ctx, bet.ID, model.BetStatusWon, 100))

	// Second transition loses the race and reports not-found.
	err := repo.MarkResolved(ctx, bet.ID, model.BetStatusLost, 0)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := repo.FindByID(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BetStatusWon, got.Status)
	assert.Equal(t, int64(100), got.Payout)
	assert.NotNil(t, got.ResolvedAt)
}

func TestFindPendingByPrediction(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBetRepository(db)
	ctx := context.Background()
	predictionID := uuid.New()

	pending := &model.Bet{UserID: uuid.New(), PredictionID: predictionID, Amount: 10, Choice: "yes", Status: model.BetStatusPending}
	require.NoError(t, repo.Insert(ctx, pending))

	settled := &model.Bet{UserID: uuid.New(), PredictionID: predictionID, Amount: 20, Choice: "no", Status: model.BetStatusPending}
	require.NoError(t, repo.Insert(ctx, settled))
	require.NoError(t, repo.MarkResolved(ctx, settled.ID, model.BetStatusLost, 0))

	other := &model.Bet{UserID: uuid.New(), PredictionID: uuid.New(), Amount: 30, Choice: "yes", Status: model.BetStatusPending}
	require.NoError(t, repo.Insert(ctx, other))

	bets, err := repo.FindPendingByPrediction(ctx, predictionID)
	require.NoError(t, err)
	require.Len(t, bets, 1)
	assert.Equal(t, pending.ID, bets[0].ID)
}

func TestPredictionLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewBetRepository(db)
	ctx := context.Background()

	p := &model.Prediction{Title: "match result", Choices: "home,away,draw", OddsBps: 25000, Status: model.PredictionStatusOpen}
	require.NoError(t, repo.CreatePrediction(ctx, p))
	require.NotEqual(t, uuid.Nil, p.ID)

	open, err := repo.FindOpenPredictions(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)

	outcome := "away"
	require.NoError(t, repo.UpdatePredictionStatus(ctx, p.ID, model.PredictionStatusResolved, &outcome))

	got, err := repo.FindPrediction(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PredictionStatusResolved, got.Status)
	require.NotNil(t, got.Outcome)
	assert.Equal(t, "away", *got.Outcome)

	open, err = repo.FindOpenPredictions(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}
