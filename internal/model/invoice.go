package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice represents an issued revenue document. Amounts are net of VAT;
// tax computations read the net amount, VAT is charged on top.
type Invoice struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID    *uuid.UUID      `gorm:"type:uuid;index" json:"client_id"`
	Client      *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	InvoiceNo   string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"` // INV-YYYY-NNNN
	Description string          `gorm:"type:text" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`            // net amount
	VATRate     decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"vat_rate"` // e.g. 22 = 22%
	VATAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"vat_amount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"` // amount + vat_amount
	IssueDate   time.Time       `gorm:"type:date;not null;index" json:"issue_date"`
	PaymentDate *time.Time      `gorm:"type:date" json:"payment_date"` // nil until collected
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
