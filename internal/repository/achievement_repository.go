package repository

import (
	"context"
	"errors"
	"strings"

	"anoa.com/betpoints/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	Create(ctx context.Context, a *model.Achievement) error
	Update(ctx context.Context, a *model.Achievement) error
	FindActive(ctx context.Context) ([]model.Achievement, error)
	FindPublic(ctx context.Context) ([]model.Achievement, error)
	FindUnlockedIDs(ctx context.Context, userID uuid.UUID) (map[uint]bool, error)
	FindUnlocked(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error)
	// InsertUnlock inserts the unlock row. Returns (false, nil) when the
	// achievement was already unlocked; a duplicate is not an error.
	InsertUnlock(ctx context.Context, userID uuid.UUID, achievementID uint) (bool, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Create(ctx context.Context, a *model.Achievement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *achievementRepository) Update(ctx context.Context, a *model.Achievement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *achievementRepository) FindActive(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).Where("active = ?", true).Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) FindPublic(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).
		Where("active = ? AND is_secret = ?", true, false).
		Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) FindUnlockedIDs(ctx context.Context, userID uuid.UUID) (map[uint]bool, error) {
	var rows []model.UserAchievement
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	ids := make(map[uint]bool, len(rows))
	for _, row := range rows {
		ids[row.AchievementID] = true
	}
	return ids, nil
}

func (r *achievementRepository) FindUnlocked(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	var rows []model.UserAchievement
	err := r.db.WithContext(ctx).Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *achievementRepository) InsertUnlock(ctx context.Context, userID uuid.UUID, achievementID uint) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserAchievement{UserID: userID, AchievementID: achievementID})
	if res.Error != nil {
		// Some drivers surface the conflict instead of honoring DoNothing.
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) ||
			strings.Contains(strings.ToLower(res.Error.Error()), "unique") {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
