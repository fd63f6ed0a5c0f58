package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxRegime enum constants (persisted form)
const (
	RegimeForfettario = "forfettario"
	RegimeOrdinario   = "ordinario"
)

// PensionSystem enum constants (persisted form)
const (
	PensionINPS   = "inps"
	PensionCassa  = "cassa"
	PensionManual = "manual"
)

// FiscalSettings is the per-user fiscal configuration, one row per user.
// Forfettario requires substitute_rate and profitability_rate; cassa
// requires fund_id. Validation happens at write time in the service.
type FiscalSettings struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	TaxRegime         string           `gorm:"type:varchar(20);not null" json:"tax_regime"`
	SubstituteRate    decimal.Decimal  `gorm:"type:decimal(10,4);default:0" json:"substitute_rate"`
	ProfitabilityRate decimal.Decimal  `gorm:"type:decimal(10,4);default:0" json:"profitability_rate"`
	PensionSystem     string           `gorm:"type:varchar(20);not null" json:"pension_system"`
	FundID            *uuid.UUID       `gorm:"type:uuid;index" json:"fund_id"`
	Fund              *ProfessionalFund `gorm:"foreignKey:FundID" json:"fund,omitempty"`
	ContributorClass  string           `gorm:"type:varchar(50)" json:"contributor_class"`

	// Manual overrides, used only when pension_system = manual
	ManualRate         decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"manual_rate"`
	ManualMinimum      decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"manual_minimum"`
	ManualFixedAnnual  decimal.Decimal `gorm:"type:decimal(18,4);default:0" json:"manual_fixed_annual"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfessionalFund is a sector pension fund (cassa) with per-year parameters.
type ProfessionalFund struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code       string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g. inarcassa
	Name       string              `gorm:"type:varchar(255);not null" json:"name"`
	Parameters []FundParameterSet  `gorm:"foreignKey:FundID;constraint:OnDelete:CASCADE" json:"parameters"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// FundParameterSet is one year's contribution parameters for a fund.
// The (fund_id, year) pair is unique: one set per year per fund.
type FundParameterSet struct {
	ID                       uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FundID                   uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_fund_year" json:"fund_id"`
	Year                     int             `gorm:"not null;uniqueIndex:idx_fund_year" json:"year"`
	ContributionRate         decimal.Decimal `gorm:"type:decimal(10,4);not null" json:"contribution_rate"` // 0–100
	MinimumContribution      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"minimum_contribution"`
	FixedAnnualContributions decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"fixed_annual_contributions"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}
