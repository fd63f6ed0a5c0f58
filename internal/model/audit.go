package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateInvoice  = "CREATE_INVOICE"
	ActionUpdateInvoice  = "UPDATE_INVOICE"
	ActionDeleteInvoice  = "DELETE_INVOICE"
	ActionMarkInvoicePaid = "MARK_INVOICE_PAID"
	ActionCreateCost     = "CREATE_COST"
	ActionUpdateCost     = "UPDATE_COST"
	ActionDeleteCost     = "DELETE_COST"
	ActionCreateClient   = "CREATE_CLIENT"
	ActionUpdateClient   = "UPDATE_CLIENT"
	ActionDeleteClient   = "DELETE_CLIENT"
	ActionUpdateSettings = "UPDATE_FISCAL_SETTINGS"
	ActionCreateFund     = "CREATE_FUND"
	ActionUpdateFund     = "UPDATE_FUND"
	ActionRecordPayment  = "RECORD_TAX_PAYMENT"
	ActionComputeTaxes   = "COMPUTE_TAXES"
	ActionComputeProfit  = "COMPUTE_PROFIT"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
