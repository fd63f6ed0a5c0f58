package repository

import (
	"context"

	"pivadash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettingsRepository interface {
	Upsert(ctx context.Context, settings *model.FiscalSettings) error
	FindByUser(ctx context.Context, userID uuid.UUID) (*model.FiscalSettings, error)
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *model.FiscalSettings) error {
	db := GetDB(ctx, r.db)

	var existing model.FiscalSettings
	err := db.First(&existing, "user_id = ?", settings.UserID).Error
	if err == nil {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
		return db.Save(settings).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.Create(settings).Error
}

func (r *settingsRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*model.FiscalSettings, error) {
	var settings model.FiscalSettings
	if err := GetDB(ctx, r.db).Preload("Fund").First(&settings, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}
