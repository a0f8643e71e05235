package repository_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/internal/repository"
	"anoa.com/betpoints/internal/testutil"
	"anoa.com/betpoints/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicMutateCreditThenDebit(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	txn, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, 100, model.TransactionKindEarn, "welcome", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), txn.Amount)
	assert.Equal(t, int64(0), txn.BalanceBefore)
	assert.Equal(t, int64(100), txn.BalanceAfter)

	txn, err = repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, -30, model.TransactionKindSpend, "bet", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(30), txn.Amount, "amount is stored as a magnitude")
	assert.Equal(t, int64(100), txn.BalanceBefore)
	assert.Equal(t, int64(70), txn.BalanceAfter)

	balance, err := repo.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance.Balance)
	assert.Equal(t, int64(100), balance.TotalEarned)
	assert.Equal(t, int64(30), balance.TotalSpent)
	assert.Equal(t, balance.Balance, balance.TotalEarned-balance.TotalSpent)
}

func TestAtomicMutateInsufficientFunds(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, 50, model.TransactionKindEarn, "seed", nil, nil)
	require.NoError(t, err)

	_, err = repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, -80, model.TransactionKindSpend, "too much", nil, nil)
	require.ErrorIs(t, err, apperror.ErrInsufficientFunds)

	// Failed debit leaves no trace: balance unchanged, no transaction row.
	balance, err := repo.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance.Balance)
	assert.Equal(t, int64(0), balance.TotalSpent)

	_, total, err := repo.GetHistory(ctx, userID, repository.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestAtomicMutateDebitOnEmptyBalance(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)

	_, err := repo.AtomicMutate(context.Background(), uuid.New(), model.PointTypeBetcoins, -10, model.TransactionKindSpend, "no funds", nil, nil)
	require.ErrorIs(t, err, apperror.ErrInsufficientFunds)
}

func TestSequentialDebitsStopAtFloor(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, 100, model.TransactionKindEarn, "seed", nil, nil)
	require.NoError(t, err)

	// 100 / 30 = 3 debits fit, the rest must fail.
	succeeded := 0
	for i := 0; i < 7; i++ {
		_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, -30, model.TransactionKindSpend, "bet", nil, nil)
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, apperror.ErrInsufficientFunds)
		}
	}
	assert.Equal(t, 3, succeeded)

	balance, err := repo.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance.Balance)
}

func TestConcurrentDebitsStopAtFloor(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, 100, model.TransactionKindEarn, "seed", nil, nil)
	require.NoError(t, err)

	// Eight racing debits of 30 against a balance of 100: exactly three may
	// win, the rest must fail without touching the balance.
	const workers = 8
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
	)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, -30, model.TransactionKindSpend, "bet", nil, nil)
			if err == nil {
				succeeded.Add(1)
				return
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.ErrorIs(t, err, apperror.ErrInsufficientFunds)
	}
	assert.Equal(t, int32(3), succeeded.Load())

	balance, err := repo.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance.Balance)
	assert.Equal(t, balance.Balance, balance.TotalEarned-balance.TotalSpent)

	// One earn plus the three winning debits; failed debits leave no rows.
	_, total, err := repo.GetHistory(ctx, userID, repository.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestBalancesAreIsolatedPerPointType(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, 100, model.TransactionKindEarn, "seed", nil, nil)
	require.NoError(t, err)
	_, err = repo.AtomicMutate(ctx, userID, model.PointTypeExperience, 40, model.TransactionKindEarn, "seed", nil, nil)
	require.NoError(t, err)

	// Experience cannot cover a betcoins-sized debit.
	_, err = repo.AtomicMutate(ctx, userID, model.PointTypeExperience, -50, model.TransactionKindSpend, "overdraw", nil, nil)
	require.ErrorIs(t, err, apperror.ErrInsufficientFunds)

	betcoins, err := repo.GetBalance(ctx, userID, model.PointTypeBetcoins)
	require.NoError(t, err)
	experience, err := repo.GetBalance(ctx, userID, model.PointTypeExperience)
	require.NoError(t, err)
	assert.Equal(t, int64(100), betcoins.Balance)
	assert.Equal(t, int64(40), experience.Balance)
}

func TestGetBalanceUnknownPairIsZero(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)

	balance, err := repo.GetBalance(context.Background(), uuid.New(), model.PointTypeBetcoins)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Balance)
	assert.Equal(t, int64(0), balance.TotalEarned)
	assert.Equal(t, int64(0), balance.TotalSpent)
}

func TestTransactionChainIsContiguous(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	deltas := []int64{100, -40, 25, -10, -5}
	kinds := []model.TransactionKind{
		model.TransactionKindEarn,
		model.TransactionKindSpend,
		model.TransactionKindRefund,
		model.TransactionKindSpend,
		model.TransactionKindSpend,
	}
	for i, delta := range deltas {
		_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, delta, kinds[i], "step", nil, nil)
		require.NoError(t, err)
	}

	txns, total, err := repo.GetHistory(ctx, userID, repository.HistoryFilter{Limit: 100})
	require.NoError(t, err)
	require.Equal(t, int64(len(deltas)), total)

	// History is newest-first; walk it oldest-first and check each row picks
	// up where the previous one ended.
	for i := len(txns) - 1; i > 0; i-- {
		assert.Equal(t, txns[i].BalanceAfter, txns[i-1].BalanceBefore)
	}
	assert.Equal(t, int64(70), txns[0].BalanceAfter)
}

func TestGetHistoryFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, 100, model.TransactionKindEarn, "seed", nil, nil)
	require.NoError(t, err)
	_, err = repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, -20, model.TransactionKindSpend, "bet", nil, nil)
	require.NoError(t, err)
	_, err = repo.AtomicMutate(ctx, userID, model.PointTypeExperience, 10, model.TransactionKindEarn, "xp", nil, nil)
	require.NoError(t, err)

	txns, total, err := repo.GetHistory(ctx, userID, repository.HistoryFilter{Kind: model.TransactionKindSpend})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, txns, 1)
	assert.Equal(t, model.TransactionKindSpend, txns[0].Kind)

	txns, total, err = repo.GetHistory(ctx, userID, repository.HistoryFilter{PointTypeSlug: model.PointTypeExperience})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, txns, 1)
	assert.Equal(t, model.PointTypeExperience, txns[0].PointTypeSlug)

	// Unknown user sees nothing.
	_, total, err = repo.GetHistory(ctx, uuid.New(), repository.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestCountEarnsByReference(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()
	userID := uuid.New()
	ref := &model.Reference{Type: model.ReferenceTypeEarningRule, ID: "7"}

	for i := 0; i < 3; i++ {
		_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, 10, model.TransactionKindEarn, "daily login", ref, nil)
		require.NoError(t, err)
	}
	// Same reference, different kind: must not count as an earn.
	_, err := repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, -10, model.TransactionKindSpend, "bet", ref, nil)
	require.NoError(t, err)
	// Different rule id.
	_, err = repo.AtomicMutate(ctx, userID, model.PointTypeBetcoins, 10, model.TransactionKindEarn, "other rule",
		&model.Reference{Type: model.ReferenceTypeEarningRule, ID: "8"}, nil)
	require.NoError(t, err)

	count, err := repo.CountEarnsByReference(ctx, userID, model.ReferenceTypeEarningRule, "7", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	future := time.Now().Add(time.Hour)
	count, err = repo.CountEarnsByReference(ctx, userID, model.ReferenceTypeEarningRule, "7", &future)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestTopBalances(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewLedgerRepository(db)
	ctx := context.Background()

	amounts := []int64{50, 200, 125}
	users := make([]uuid.UUID, len(amounts))
	for i, amount := range amounts {
		users[i] = uuid.New()
		_, err := repo.AtomicMutate(ctx, users[i], model.PointTypeBetcoins, amount, model.TransactionKindEarn, "seed", nil, nil)
		require.NoError(t, err)
	}

	top, err := repo.TopBalances(ctx, model.PointTypeBetcoins, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, users[1], top[0].UserID)
	assert.Equal(t, users[2], top[1].UserID)
}
