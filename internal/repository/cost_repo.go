package repository

import (
	"context"
	"time"

	"pivadash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CostRepository interface {
	Create(ctx context.Context, cost *model.Cost) error
	Update(ctx context.Context, cost *model.Cost) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Cost, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Cost, int64, error)
	ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]model.Cost, error)
}

type costRepository struct {
	db *gorm.DB
}

func NewCostRepository(db *gorm.DB) CostRepository {
	return &costRepository{db: db}
}

func (r *costRepository) Create(ctx context.Context, cost *model.Cost) error {
	return GetDB(ctx, r.db).Create(cost).Error
}

func (r *costRepository) Update(ctx context.Context, cost *model.Cost) error {
	return GetDB(ctx, r.db).Save(cost).Error
}

func (r *costRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ? AND id = ?", userID, id).Delete(&model.Cost{}).Error
}

func (r *costRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Cost, error) {
	var cost model.Cost
	if err := GetDB(ctx, r.db).First(&cost, "user_id = ? AND id = ?", userID, id).Error; err != nil {
		return nil, err
	}
	return &cost, nil
}

func (r *costRepository) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Cost, int64, error) {
	var costs []model.Cost
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Cost{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("user_id = ?", userID).
		Order("date desc").Offset(offset).Limit(limit).Find(&costs).Error; err != nil {
		return nil, 0, err
	}

	return costs, total, nil
}

func (r *costRepository) ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]model.Cost, error) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

	var costs []model.Cost
	if err := GetDB(ctx, r.db).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date asc").Find(&costs).Error; err != nil {
		return nil, err
	}
	return costs, nil
}
