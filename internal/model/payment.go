package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType enum constants
const (
	PaymentTypeTax     = "tax"
	PaymentTypePension = "pension"
)

// TaxPayment is an actual payment the user recorded against a scheduled
// obligation. The scheduler only projects obligations; this ledger is what
// reconciles their paid state.
type TaxPayment struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        string          `gorm:"type:varchar(20);not null" json:"type"` // tax, pension
	Description string          `gorm:"type:text" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	DueDate     time.Time       `gorm:"type:date;not null;index" json:"due_date"`
	PaidAt      *time.Time      `gorm:"type:date" json:"paid_at"` // nil while outstanding
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
