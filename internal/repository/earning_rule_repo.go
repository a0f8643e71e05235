package repository

import (
	"context"

	"anoa.com/betpoints/internal/model"
	"gorm.io/gorm"
)

type EarningRuleRepository interface {
	Create(ctx context.Context, rule *model.EarningRule) error
	Update(ctx context.Context, rule *model.EarningRule) error
	Delete(ctx context.Context, id uint) error
	FindAll(ctx context.Context) ([]model.EarningRule, error)
}

type earningRuleRepository struct {
	db *gorm.DB
}

func NewEarningRuleRepository(db *gorm.DB) EarningRuleRepository {
	return &earningRuleRepository{db: db}
}

func (r *earningRuleRepository) Create(ctx context.Context, rule *model.EarningRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *earningRuleRepository) Update(ctx context.Context, rule *model.EarningRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *earningRuleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.EarningRule{}, id).Error
}

func (r *earningRuleRepository) FindAll(ctx context.Context) ([]model.EarningRule, error) {
	var rules []model.EarningRule
	err := r.db.WithContext(ctx).Order("trigger_action ASC, priority ASC").Find(&rules).Error
	return rules, err
}
