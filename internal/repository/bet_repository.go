package repository

import (
	"context"
	"time"

	"anoa.com/betpoints/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BetRepository interface {
	Insert(ctx context.Context, bet *model.Bet) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Bet, error)
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Bet, int64, error)
	FindPendingByPrediction(ctx context.Context, predictionID uuid.UUID) ([]model.Bet, error)
	// FindStrandedPending returns pending bets whose prediction has already
	// resolved, i.e. bets whose settlement failed mid-resolution.
	FindStrandedPending(ctx context.Context) ([]model.Bet, error)
	// MarkResolved transitions a pending bet to a terminal status. Returns
	// gorm.ErrRecordNotFound when the bet is no longer pending, which makes
	// resolution race-safe: only one caller wins the transition.
	MarkResolved(ctx context.Context, betID uuid.UUID, status model.BetStatus, payout int64) error

	CreatePrediction(ctx context.Context, p *model.Prediction) error
	FindPrediction(ctx context.Context, id uuid.UUID) (*model.Prediction, error)
	FindOpenPredictions(ctx context.Context) ([]model.Prediction, error)
	UpdatePredictionStatus(ctx context.Context, id uuid.UUID, status model.PredictionStatus, outcome *string) error
}

type betRepository struct {
	db *gorm.DB
}

func NewBetRepository(db *gorm.DB) BetRepository {
	return &betRepository{db: db}
}

func (r *betRepository) Insert(ctx context.Context, bet *model.Bet) error {
	return r.db.WithContext(ctx).Create(bet).Error
}

func (r *betRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Bet, error) {
	var bet model.Bet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&bet).Error; err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *betRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Bet, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Bet{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var bets []model.Bet
	err := q.Order("placed_at DESC").Limit(limit).Offset(offset).Find(&bets).Error
	return bets, total, err
}

func (r *betRepository) FindPendingByPrediction(ctx context.Context, predictionID uuid.UUID) ([]model.Bet, error) {
	var bets []model.Bet
	err := r.db.WithContext(ctx).
		Where("prediction_id = ? AND status = ?", predictionID, model.BetStatusPending).
		Find(&bets).Error
	return bets, err
}

func (r *betRepository) FindStrandedPending(ctx context.Context) ([]model.Bet, error) {
	var bets []model.Bet
	err := r.db.WithContext(ctx).
		Joins("JOIN predictions ON predictions.id = bets.prediction_id").
		Where("bets.status = ? AND predictions.status = ?", model.BetStatusPending, model.PredictionStatusResolved).
		Find(&bets).Error
	return bets, err
}

func (r *betRepository) MarkResolved(ctx context.Context, betID uuid.UUID, status model.BetStatus, payout int64) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.Bet{}).
		Where("id = ? AND status = ?", betID, model.BetStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"payout":      payout,
			"resolved_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *betRepository) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *betRepository) FindPrediction(ctx context.Context, id uuid.UUID) (*model.Prediction, error) {
	var p model.Prediction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *betRepository) FindOpenPredictions(ctx context.Context) ([]model.Prediction, error) {
	var preds []model.Prediction
	err := r.db.WithContext(ctx).
		Where("status = ?", model.PredictionStatusOpen).
		Order("created_at DESC").
		Find(&preds).Error
	return preds, err
}

func (r *betRepository) UpdatePredictionStatus(ctx context.Context, id uuid.UUID, status model.PredictionStatus, outcome *string) error {
	return r.db.WithContext(ctx).Model(&model.Prediction{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":  status,
			"outcome": outcome,
		}).Error
}
