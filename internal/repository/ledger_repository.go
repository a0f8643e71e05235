package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/betpoints/internal/model"
	"anoa.com/betpoints/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryFilter narrows GetHistory results. Zero values mean "no filter".
type HistoryFilter struct {
	PointTypeSlug string
	Kind          model.TransactionKind
	Limit         int
	Offset        int
}

type LedgerRepository interface {
	// AtomicMutate applies delta to the (userID, pointTypeSlug) balance and
	// appends the matching transaction row in one database transaction.
	// Returns apperror.ErrInsufficientFunds when a negative delta would take
	// the balance below zero; no state changes in that case.
	AtomicMutate(ctx context.Context, userID uuid.UUID, pointTypeSlug string, delta int64, kind model.TransactionKind, reason string, ref *model.Reference, adminID *uuid.UUID) (*model.Transaction, error)
	GetBalance(ctx context.Context, userID uuid.UUID, pointTypeSlug string) (*model.UserBalance, error)
	GetHistory(ctx context.Context, userID uuid.UUID, filter HistoryFilter) ([]model.Transaction, int64, error)
	CountEarnsByReference(ctx context.Context, userID uuid.UUID, refType, refID string, since *time.Time) (int64, error)
	TopBalances(ctx context.Context, pointTypeSlug string, limit int) ([]model.UserBalance, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) AtomicMutate(ctx context.Context, userID uuid.UUID, pointTypeSlug string, delta int64, kind model.TransactionKind, reason string, ref *model.Reference, adminID *uuid.UUID) (*model.Transaction, error) {
	var created *model.Transaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lazily create the balance row so the locked read below always has
		// a target. Rolled back with everything else on failure.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.UserBalance{UserID: userID, PointTypeSlug: pointTypeSlug}).Error; err != nil {
			return err
		}

		var balance model.UserBalance
		q := tx.Where("user_id = ? AND point_type_slug = ?", userID, pointTypeSlug)
		// Row lock serializes concurrent mutations per (user, type) key.
		// sqlite (tests) has a single writer, the lock is a postgres concern.
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&balance).Error; err != nil {
			return err
		}

		newBalance := balance.Balance + delta
		if delta < 0 && newBalance < 0 {
			return apperror.ErrInsufficientFunds
		}

		updates := map[string]interface{}{"balance": newBalance}
		if delta >= 0 {
			updates["total_earned"] = balance.TotalEarned + delta
		} else {
			updates["total_spent"] = balance.TotalSpent - delta
		}

		if err := tx.Model(&model.UserBalance{}).
			Where("user_id = ? AND point_type_slug = ?", userID, pointTypeSlug).
			Updates(updates).Error; err != nil {
			return err
		}

		amount := delta
		if amount < 0 {
			amount = -amount
		}

		txn := &model.Transaction{
			UserID:        userID,
			PointTypeSlug: pointTypeSlug,
			Kind:          kind,
			Amount:        amount,
			BalanceBefore: balance.Balance,
			BalanceAfter:  newBalance,
			Reason:        reason,
			AdminID:       adminID,
		}
		if ref != nil {
			txn.ReferenceType = &ref.Type
			txn.ReferenceID = &ref.ID
		}

		if err := tx.Create(txn).Error; err != nil {
			return err
		}

		created = txn
		return nil
	})

	if err != nil {
		if errors.Is(err, apperror.ErrInsufficientFunds) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	return created, nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID uuid.UUID, pointTypeSlug string) (*model.UserBalance, error) {
	var balance model.UserBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND point_type_slug = ?", userID, pointTypeSlug).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No mutation yet for this pair: zero balance, not an error.
			return &model.UserBalance{UserID: userID, PointTypeSlug: pointTypeSlug}, nil
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	return &balance, nil
}

func (r *ledgerRepository) GetHistory(ctx context.Context, userID uuid.UUID, filter HistoryFilter) ([]model.Transaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{}).Where("user_id = ?", userID)

	if filter.PointTypeSlug != "" {
		q = q.Where("point_type_slug = ?", filter.PointTypeSlug)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var txns []model.Transaction
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&txns).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}

	return txns, total, nil
}

func (r *ledgerRepository) TopBalances(ctx context.Context, pointTypeSlug string, limit int) ([]model.UserBalance, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	var balances []model.UserBalance
	err := r.db.WithContext(ctx).
		Where("point_type_slug = ?", pointTypeSlug).
		Order("balance DESC, total_earned DESC").
		Limit(limit).
		Find(&balances).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	return balances, nil
}

func (r *ledgerRepository) CountEarnsByReference(ctx context.Context, userID uuid.UUID, refType, refID string, since *time.Time) (int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("user_id = ? AND kind = ? AND reference_type = ? AND reference_id = ?",
			userID, model.TransactionKindEarn, refType, refID)

	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", apperror.ErrStorage, err)
	}
	return count, nil
}
