// Package fiscal implements the tax and profitability computation engine for
// the Partita IVA dashboard. Everything in this package is a pure function
// over immutable input snapshots: no I/O, no retained state, safe for
// concurrent callers. Missing or degenerate input yields zeroed results,
// never an error or a panic, so the HTTP layer can always render something
// and prompt the user to complete their configuration.
package fiscal

import "time"

// TaxRegime is a closed set of supported Italian tax regimes.
type TaxRegime string

const (
	// RegimeForfettario is the simplified flat-tax regime: a notional
	// profitability share of revenue taxed at a reduced substitute rate.
	RegimeForfettario TaxRegime = "forfettario"
	// RegimeOrdinario is the standard progressive IRPEF regime on net income.
	RegimeOrdinario TaxRegime = "ordinario"
)

// Valid reports whether r is one of the known regimes.
func (r TaxRegime) Valid() bool {
	switch r {
	case RegimeForfettario, RegimeOrdinario:
		return true
	}
	return false
}

// PensionSystem is a closed set of mandatory contribution destinations.
type PensionSystem string

const (
	// PensionINPS is the national institute (Gestione Separata).
	PensionINPS PensionSystem = "inps"
	// PensionCassa is a sector-specific professional fund.
	PensionCassa PensionSystem = "cassa"
	// PensionManual uses user-supplied override parameters directly.
	PensionManual PensionSystem = "manual"
)

// Valid reports whether p is one of the known pension systems.
func (p PensionSystem) Valid() bool {
	switch p {
	case PensionINPS, PensionCassa, PensionManual:
		return true
	}
	return false
}

// RevenueRecord is a read-only snapshot of an issued invoice.
type RevenueRecord struct {
	ID          string
	IssueDate   time.Time
	Amount      float64
	PaymentDate *time.Time
	VATRate     float64
}

// CostRecord is a read-only snapshot of a recorded cost. The category is
// derived from Description at computation time, never stored.
type CostRecord struct {
	ID          string
	Date        time.Time
	Amount      float64
	Description string
}

// ManualContribution carries user-supplied pension parameters used when the
// pension system is PensionManual.
type ManualContribution struct {
	Rate                     float64
	MinimumContribution      float64
	FixedAnnualContributions float64
}

// FiscalSettings is the per-user fiscal configuration snapshot.
//
// Invariants enforced upstream at write time, tolerated here at read time:
// forfettario requires SubstituteRate and ProfitabilityRate; cassa requires
// FundID. When a required field is missing the engine computes with zeroes.
type FiscalSettings struct {
	Regime            TaxRegime
	SubstituteRate    float64
	ProfitabilityRate float64
	PensionSystem     PensionSystem
	FundID            string
	ContributorClass  string
	Manual            *ManualContribution
}

// FundParameters is one year's contribution parameter set for a professional
// fund. Funds expose a year → FundParameters mapping with no duplicate years.
type FundParameters struct {
	Year                     int
	ContributionRate         float64
	MinimumContribution      float64
	FixedAnnualContributions float64
}

// FundLookup resolves a professional fund's parameter sets by fund id.
// A nil map means the fund is unknown.
type FundLookup func(fundID string) map[int]FundParameters

// ResolvedParameters are the concrete numbers a liability computation uses.
type ResolvedParameters struct {
	Year                     int
	ContributionRate         float64
	MinimumContribution      float64
	FixedAnnualContributions float64
}

// WindowTotals is the output of aggregating records over a time window.
type WindowTotals struct {
	Revenue float64
	Costs   float64
}

// Profit returns revenue minus costs for the window.
func (w WindowTotals) Profit() float64 { return w.Revenue - w.Costs }

// CategoryTotal is one derived cost category with its share of the total.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
}

// Contribution is the pension or fund component of a liability.
type Contribution struct {
	Amount           float64 `json:"amount"`
	Rate             float64 `json:"rate"`
	IsMinimumApplied bool    `json:"is_minimum_applied"`
}

// PeriodLiability is the liability breakdown for one aggregation window.
type PeriodLiability struct {
	Regime              TaxRegime `json:"regime"`
	TaxableBase         float64   `json:"taxable_base"`
	Tax                 float64   `json:"tax"`
	PensionContribution float64   `json:"pension_contribution"`
	FundContribution    float64   `json:"fund_contribution"`
	Total               float64   `json:"total"`
	IsMinimumApplied    bool      `json:"is_minimum_applied"`
}

// PaymentType distinguishes scheduled obligation kinds.
type PaymentType string

const (
	PaymentTax     PaymentType = "tax"
	PaymentPension PaymentType = "pension"
)

// PaymentObligation is a projected upcoming payment. IsPaid is always false
// at computation time; reconciliation against actual payments is owned by
// the persistence layer.
type PaymentObligation struct {
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	DueDate     time.Time   `json:"due_date"`
	Type        PaymentType `json:"type"`
	IsPaid      bool        `json:"is_paid"`
}

// TaxComputationResult is the full tax surface for the dashboard.
type TaxComputationResult struct {
	Period                  PeriodLiability     `json:"period"`
	YearToDateLiability     float64             `json:"year_to_date_liability"`
	NextPayments            []PaymentObligation `json:"next_payments"`
	RegimeUsed              TaxRegime           `json:"regime_used"`
	ProjectedYearEndLiability float64           `json:"projected_year_end_liability"`
	PotentialSavings        float64             `json:"potential_savings"`
}

// WindowFigures is one window's profitability snapshot.
type WindowFigures struct {
	Revenue float64 `json:"revenue"`
	Costs   float64 `json:"costs"`
	Profit  float64 `json:"profit"`
	Margin  float64 `json:"margin"`
}

// Trends holds relative deltas versus the previous window. MarginTrend is an
// absolute point difference, the others are percentages.
type Trends struct {
	ProfitTrend  float64 `json:"profit_trend"`
	MarginTrend  float64 `json:"margin_trend"`
	RevenueTrend float64 `json:"revenue_trend"`
	CostTrend    float64 `json:"cost_trend"`
}

// Benchmarks are the fixed comparison values shown next to the user's
// figures, plus the best month found in the trailing analysis window.
type Benchmarks struct {
	TargetMargin    float64 `json:"target_margin"`
	IndustryAverage float64 `json:"industry_average"`
	BestWindow      string  `json:"best_window"`
	BestProfit      float64 `json:"best_profit"`
}

// ProfitComputationResult is the full profitability surface for the dashboard.
type ProfitComputationResult struct {
	Current        WindowFigures `json:"current"`
	Previous       WindowFigures `json:"previous"`
	YearToDate     WindowFigures `json:"year_to_date"`
	Trends         Trends        `json:"trends"`
	Benchmarks     Benchmarks    `json:"benchmarks"`
	HealthScore    int           `json:"health_score"`
	Recommendations []string     `json:"recommendations"`
}
