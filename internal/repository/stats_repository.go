package repository

import (
	"context"
	"errors"

	"anoa.com/betpoints/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StatsRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.UserStats, error)
	RecordBetPlaced(ctx context.Context, userID uuid.UUID, amount int64) error
	RecordBetWon(ctx context.Context, userID uuid.UUID, payout int64) error
	RecordBetLost(ctx context.Context, userID uuid.UUID) error
}

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.UserStats{UserID: userID}, nil
		}
		return nil, err
	}
	return &stats, nil
}

func (r *statsRepository) RecordBetPlaced(ctx context.Context, userID uuid.UUID, amount int64) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"bets_placed":   gorm.Expr("user_stats.bets_placed + 1"),
			"total_wagered": gorm.Expr("user_stats.total_wagered + ?", amount),
		}),
	}).Create(&model.UserStats{
		UserID:       userID,
		BetsPlaced:   1,
		TotalWagered: amount,
	}).Error
}

func (r *statsRepository) RecordBetWon(ctx context.Context, userID uuid.UUID, payout int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stats model.UserStats
		if err := tx.Where("user_id = ?", userID).First(&stats).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			stats = model.UserStats{UserID: userID}
		}

		stats.BetsWon++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.BestStreak {
			stats.BestStreak = stats.CurrentStreak
		}
		stats.TotalWon += payout

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"bets_won":       stats.BetsWon,
				"current_streak": stats.CurrentStreak,
				"best_streak":    stats.BestStreak,
				"total_won":      stats.TotalWon,
			}),
		}).Create(&stats).Error
	})
}

func (r *statsRepository) RecordBetLost(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"bets_lost":      gorm.Expr("user_stats.bets_lost + 1"),
			"current_streak": 0,
		}),
	}).Create(&model.UserStats{
		UserID:   userID,
		BetsLost: 1,
	}).Error
}
