package repository

import (
	"context"

	"pivadash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FundRepository interface {
	Create(ctx context.Context, fund *model.ProfessionalFund) error
	Update(ctx context.Context, fund *model.ProfessionalFund) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProfessionalFund, error)
	List(ctx context.Context) ([]model.ProfessionalFund, error)
	UpsertParameters(ctx context.Context, params *model.FundParameterSet) error
	ParametersByFund(ctx context.Context, fundID uuid.UUID) ([]model.FundParameterSet, error)
}

type fundRepository struct {
	db *gorm.DB
}

func NewFundRepository(db *gorm.DB) FundRepository {
	return &fundRepository{db: db}
}

func (r *fundRepository) Create(ctx context.Context, fund *model.ProfessionalFund) error {
	return GetDB(ctx, r.db).Create(fund).Error
}

func (r *fundRepository) Update(ctx context.Context, fund *model.ProfessionalFund) error {
	return GetDB(ctx, r.db).Save(fund).Error
}

func (r *fundRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProfessionalFund, error) {
	var fund model.ProfessionalFund
	if err := GetDB(ctx, r.db).Preload("Parameters").First(&fund, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *fundRepository) List(ctx context.Context) ([]model.ProfessionalFund, error) {
	var funds []model.ProfessionalFund
	if err := GetDB(ctx, r.db).Preload("Parameters").Order("name asc").Find(&funds).Error; err != nil {
		return nil, err
	}
	return funds, nil
}

// UpsertParameters replaces the parameter set for the (fund, year) pair,
// keeping the one-set-per-year invariant.
func (r *fundRepository) UpsertParameters(ctx context.Context, params *model.FundParameterSet) error {
	db := GetDB(ctx, r.db)

	var existing model.FundParameterSet
	err := db.First(&existing, "fund_id = ? AND year = ?", params.FundID, params.Year).Error
	if err == nil {
		params.ID = existing.ID
		params.CreatedAt = existing.CreatedAt
		return db.Save(params).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return db.Create(params).Error
}

func (r *fundRepository) ParametersByFund(ctx context.Context, fundID uuid.UUID) ([]model.FundParameterSet, error) {
	var params []model.FundParameterSet
	if err := GetDB(ctx, r.db).Where("fund_id = ?", fundID).Order("year asc").Find(&params).Error; err != nil {
		return nil, err
	}
	return params, nil
}
