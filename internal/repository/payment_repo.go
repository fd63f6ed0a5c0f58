package repository

import (
	"context"
	"time"

	"pivadash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.TaxPayment) error
	MarkPaid(ctx context.Context, userID, id uuid.UUID, paidAt time.Time) error
	ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]model.TaxPayment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.TaxPayment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) MarkPaid(ctx context.Context, userID, id uuid.UUID, paidAt time.Time) error {
	return GetDB(ctx, r.db).Model(&model.TaxPayment{}).
		Where("user_id = ? AND id = ?", userID, id).
		Update("paid_at", paidAt).Error
}

func (r *paymentRepository) ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]model.TaxPayment, error) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)

	var payments []model.TaxPayment
	if err := GetDB(ctx, r.db).
		Where("user_id = ? AND due_date >= ? AND due_date <= ?", userID, start, end).
		Order("due_date asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
