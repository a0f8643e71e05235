package repository

import (
	"context"
	"errors"
	"time"

	"anoa.com/betpoints/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RankRepository interface {
	Create(ctx context.Context, rank *model.Rank) error
	Update(ctx context.Context, rank *model.Rank) error
	FindAllOrdered(ctx context.Context) ([]model.Rank, error)
	GetUserRank(ctx context.Context, userID uuid.UUID) (*model.UserRank, error)
	UpsertUserRank(ctx context.Context, userID uuid.UUID, rankID uint) error
}

type rankRepository struct {
	db *gorm.DB
}

func NewRankRepository(db *gorm.DB) RankRepository {
	return &rankRepository{db: db}
}

func (r *rankRepository) Create(ctx context.Context, rank *model.Rank) error {
	return r.db.WithContext(ctx).Create(rank).Error
}

func (r *rankRepository) Update(ctx context.Context, rank *model.Rank) error {
	return r.db.WithContext(ctx).Save(rank).Error
}

func (r *rankRepository) FindAllOrdered(ctx context.Context) ([]model.Rank, error) {
	var ranks []model.Rank
	err := r.db.WithContext(ctx).
		Order("points_required ASC, order_position ASC").
		Find(&ranks).Error
	return ranks, err
}

func (r *rankRepository) GetUserRank(ctx context.Context, userID uuid.UUID) (*model.UserRank, error) {
	var ur model.UserRank
	err := r.db.WithContext(ctx).Preload("Rank").
		Where("user_id = ?", userID).
		First(&ur).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ur, nil
}

func (r *rankRepository) UpsertUserRank(ctx context.Context, userID uuid.UUID, rankID uint) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"rank_id":     rankID,
			"achieved_at": time.Now(),
		}),
	}).Create(&model.UserRank{
		UserID: userID,
		RankID: rankID,
	}).Error
}
