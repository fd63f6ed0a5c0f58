package fiscal

import (
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestVATAmount(t *testing.T) {
	// revenue=1000 at 22% → VAT 220, total 1220
	if vat := VATAmount(1000, 22); !almostEqual(vat, 220) {
		t.Errorf("expected VAT 220, got %.2f", vat)
	}
	if total := TotalWithVAT(1000, 22); !almostEqual(total, 1220) {
		t.Errorf("expected total 1220, got %.2f", total)
	}
}

func TestProgressiveTax_KnownValue(t *testing.T) {
	// 20000 → 15000×0.23 + 5000×0.27 = 4800
	if tax := ProgressiveTax(20000); !almostEqual(tax, 4800) {
		t.Errorf("expected 4800, got %.2f", tax)
	}
}

func TestProgressiveTax_ContinuousAtBoundaries(t *testing.T) {
	for _, boundary := range []float64{15000, 28000, 55000} {
		below := ProgressiveTax(boundary - epsilon)
		at := ProgressiveTax(boundary)
		if math.Abs(at-below) > 0.01 {
			t.Errorf("discontinuity at %.0f: below=%.4f at=%.4f", boundary, below, at)
		}
	}
}

func TestProgressiveTax_Monotonic(t *testing.T) {
	prev := 0.0
	for income := 0.0; income <= 120000; income += 500 {
		tax := ProgressiveTax(income)
		if tax < prev {
			t.Fatalf("tax decreased at income %.0f: %.2f < %.2f", income, tax, prev)
		}
		prev = tax
	}
}

func TestProgressiveTax_NegativeIncomeFlooredAtZero(t *testing.T) {
	if tax := ProgressiveTax(-5000); tax != 0 {
		t.Errorf("expected 0 for negative income, got %.2f", tax)
	}
}

func TestComputeContribution_MinimumFloor(t *testing.T) {
	// revenue=5000, rate=24 → calculated 1200 < minimum 2000
	params := ResolvedParameters{ContributionRate: 24, MinimumContribution: 2000}
	c := ComputeContribution(5000, params, true)
	if !almostEqual(c.Amount, 2000) {
		t.Errorf("expected minimum 2000 applied, got %.2f", c.Amount)
	}
	if !c.IsMinimumApplied {
		t.Error("expected IsMinimumApplied to be true")
	}
}

func TestComputeContribution_AboveMinimum(t *testing.T) {
	params := ResolvedParameters{ContributionRate: 24, MinimumContribution: 2000, FixedAnnualContributions: 100}
	c := ComputeContribution(20000, params, true)
	if !almostEqual(c.Amount, 4900) { // 4800 + 100 fixed
		t.Errorf("expected 4900, got %.2f", c.Amount)
	}
	if c.IsMinimumApplied {
		t.Error("expected IsMinimumApplied to be false")
	}
}

func TestComputeContribution_AlwaysAtLeastMinimum(t *testing.T) {
	params := ResolvedParameters{ContributionRate: 10, MinimumContribution: 1500}
	for _, revenue := range []float64{0, 100, 5000, 14999, 15000, 100000} {
		c := ComputeContribution(revenue, params, true)
		if c.Amount < params.MinimumContribution {
			t.Errorf("revenue %.0f: contribution %.2f below minimum", revenue, c.Amount)
		}
	}
}

func TestComputeContribution_NotFoundIsZero(t *testing.T) {
	c := ComputeContribution(50000, ResolvedParameters{}, false)
	if c.Amount != 0 || c.IsMinimumApplied {
		t.Errorf("expected zero contribution when parameters are not found, got %+v", c)
	}
}

func TestComputeLiability_Forfettario(t *testing.T) {
	// revenue=10000, profitability=78, substitute=5 → base 7800, tax 390
	settings := FiscalSettings{
		Regime:            RegimeForfettario,
		SubstituteRate:    5,
		ProfitabilityRate: 78,
		PensionSystem:     PensionINPS,
	}
	liability := ComputeLiability(WindowTotals{Revenue: 10000}, settings, ResolvedParameters{}, false)

	if !almostEqual(liability.TaxableBase, 7800) {
		t.Errorf("expected taxable base 7800, got %.2f", liability.TaxableBase)
	}
	if !almostEqual(liability.Tax, 390) {
		t.Errorf("expected tax 390, got %.2f", liability.Tax)
	}
	if liability.PensionContribution != 0 || liability.FundContribution != 0 {
		t.Error("expected zero contributions with unresolved parameters")
	}
	if !almostEqual(liability.Total, 390) {
		t.Errorf("expected total 390, got %.2f", liability.Total)
	}
}

func TestComputeLiability_TaxScalesLinearlyWithSubstituteRate(t *testing.T) {
	base := FiscalSettings{Regime: RegimeForfettario, SubstituteRate: 5, ProfitabilityRate: 78}
	doubled := base
	doubled.SubstituteRate = 10

	taxAt5 := ComputeLiability(WindowTotals{Revenue: 10000}, base, ResolvedParameters{}, false).Tax
	taxAt10 := ComputeLiability(WindowTotals{Revenue: 10000}, doubled, ResolvedParameters{}, false).Tax
	if !almostEqual(taxAt10, 2*taxAt5) {
		t.Errorf("expected tax to scale linearly: %.2f vs %.2f", taxAt5, taxAt10)
	}
}

func TestComputeLiability_OrdinarioNegativeIncome(t *testing.T) {
	settings := FiscalSettings{Regime: RegimeOrdinario, PensionSystem: PensionINPS}
	liability := ComputeLiability(WindowTotals{Revenue: 1000, Costs: 5000}, settings, ResolvedParameters{}, false)
	if liability.TaxableBase != 0 || liability.Tax != 0 {
		t.Errorf("expected income floored at 0, got base %.2f tax %.2f", liability.TaxableBase, liability.Tax)
	}
}

func TestComputeLiability_CassaGoesIntoFundComponent(t *testing.T) {
	settings := FiscalSettings{Regime: RegimeForfettario, SubstituteRate: 15, ProfitabilityRate: 78, PensionSystem: PensionCassa}
	params := ResolvedParameters{ContributionRate: 15}

	liability := ComputeLiability(WindowTotals{Revenue: 10000}, settings, params, true)
	if liability.FundContribution == 0 {
		t.Error("expected fund contribution for cassa")
	}
	if liability.PensionContribution != 0 {
		t.Error("pension and fund contributions must be mutually exclusive")
	}
}

func TestComputeTax_QuarterRollUp(t *testing.T) {
	ref := day(2025, time.May, 14) // Q2, two quarters elapsed
	revenues := []RevenueRecord{
		{IssueDate: day(2025, time.April, 10), Amount: 10000},
		{IssueDate: day(2025, time.January, 10), Amount: 99999}, // outside current quarter
	}
	settings := FiscalSettings{
		Regime:            RegimeForfettario,
		SubstituteRate:    5,
		ProfitabilityRate: 78,
		PensionSystem:     PensionManual,
		Manual:            &ManualContribution{Rate: 26},
	}

	result := ComputeTax(revenues, nil, settings, nil, ref)

	if !almostEqual(result.Period.Tax, 390) {
		t.Errorf("expected quarter tax 390, got %.2f", result.Period.Tax)
	}
	if !almostEqual(result.Period.PensionContribution, 2600) {
		t.Errorf("expected quarter contribution 2600, got %.2f", result.Period.PensionContribution)
	}
	if !almostEqual(result.YearToDateLiability, result.Period.Total*2) {
		t.Errorf("expected YTD = quarter × 2, got %.2f vs %.2f", result.YearToDateLiability, result.Period.Total)
	}
	if !almostEqual(result.ProjectedYearEndLiability, result.Period.Total*4) {
		t.Errorf("expected projection = quarter × 4, got %.2f", result.ProjectedYearEndLiability)
	}
	if result.RegimeUsed != RegimeForfettario {
		t.Errorf("unexpected regime %s", result.RegimeUsed)
	}
}

func TestComputeTax_EmptySnapshotsYieldZeroes(t *testing.T) {
	settings := FiscalSettings{Regime: RegimeOrdinario, PensionSystem: PensionCassa, FundID: "missing"}
	result := ComputeTax(nil, nil, settings, func(string) map[int]FundParameters { return nil }, day(2025, time.February, 1))

	if result.Period.Total != 0 || result.YearToDateLiability != 0 {
		t.Errorf("expected zeroed result, got %+v", result)
	}
	if len(result.NextPayments) != 0 {
		t.Errorf("expected no payment obligations, got %d", len(result.NextPayments))
	}
}

func TestPotentialSavings_NeverNegative(t *testing.T) {
	// Forfettario at low revenue beats IRPEF, so an ordinario user would
	// save and a forfettario user would not.
	ytd := []RevenueRecord{{IssueDate: day(2025, time.February, 1), Amount: 30000}}

	forfettario := FiscalSettings{Regime: RegimeForfettario, SubstituteRate: 15, ProfitabilityRate: 78, PensionSystem: PensionINPS}
	ordinario := FiscalSettings{Regime: RegimeOrdinario, PensionSystem: PensionINPS}

	rf := ComputeTax(ytd, nil, forfettario, nil, day(2025, time.March, 1))
	ro := ComputeTax(ytd, nil, ordinario, nil, day(2025, time.March, 1))

	if rf.PotentialSavings < 0 || ro.PotentialSavings < 0 {
		t.Error("potential savings must never be negative")
	}
	if ro.PotentialSavings == 0 {
		t.Error("expected ordinario user to have forfettario savings at 30000 revenue")
	}
	if rf.PotentialSavings != 0 {
		t.Errorf("expected no savings for the cheaper regime, got %.2f", rf.PotentialSavings)
	}
}
