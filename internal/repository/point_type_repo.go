package repository

import (
	"context"

	"anoa.com/betpoints/internal/model"
	"gorm.io/gorm"
)

type PointTypeRepository interface {
	Create(ctx context.Context, pt *model.PointType) error
	Update(ctx context.Context, pt *model.PointType) error
	FindBySlug(ctx context.Context, slug string) (*model.PointType, error)
	FindAll(ctx context.Context) ([]model.PointType, error)
}

type pointTypeRepository struct {
	db *gorm.DB
}

func NewPointTypeRepository(db *gorm.DB) PointTypeRepository {
	return &pointTypeRepository{db: db}
}

func (r *pointTypeRepository) Create(ctx context.Context, pt *model.PointType) error {
	return r.db.WithContext(ctx).Create(pt).Error
}

func (r *pointTypeRepository) Update(ctx context.Context, pt *model.PointType) error {
	// Only metadata is editable after creation.
	return r.db.WithContext(ctx).Model(&model.PointType{}).
		Where("slug = ?", pt.Slug).
		Updates(map[string]interface{}{
			"name":   pt.Name,
			"icon":   pt.Icon,
			"active": pt.Active,
		}).Error
}

func (r *pointTypeRepository) FindBySlug(ctx context.Context, slug string) (*model.PointType, error) {
	var pt model.PointType
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&pt).Error; err != nil {
		return nil, err
	}
	return &pt, nil
}

func (r *pointTypeRepository) FindAll(ctx context.Context) ([]model.PointType, error) {
	var pts []model.PointType
	err := r.db.WithContext(ctx).Order("slug ASC").Find(&pts).Error
	return pts, err
}
