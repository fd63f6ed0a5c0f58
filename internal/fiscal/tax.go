package fiscal

import "time"

// IRPEF progressive brackets for the ordinary regime. Each entry taxes the
// income slice above the previous bound up to its own bound.
var irpefBrackets = []struct {
	upTo float64
	rate float64
}{
	{15000, 23},
	{28000, 27},
	{55000, 38},
	{0, 41}, // no upper bound
}

// Defaults used when comparing regimes for a user who has not configured
// forfettario rates: the standard 15% substitute rate and the most common
// 78% profitability coefficient.
const (
	defaultSubstituteRate    = 15
	defaultProfitabilityRate = 78
)

// VATAmount returns the VAT due on a taxable amount at the given rate.
func VATAmount(amount, rate float64) float64 {
	return amount * rate / 100
}

// TotalWithVAT returns the amount grossed up by VAT at the given rate.
func TotalWithVAT(amount, rate float64) float64 {
	return amount + VATAmount(amount, rate)
}

// ProgressiveTax applies the IRPEF brackets to net income. Negative income
// is floored at 0 before the brackets apply, so the function is total and
// monotonically non-decreasing.
func ProgressiveTax(netIncome float64) float64 {
	if netIncome <= 0 {
		return 0
	}

	var tax, lower float64
	for _, b := range irpefBrackets {
		if b.upTo == 0 || netIncome <= b.upTo {
			tax += (netIncome - lower) * b.rate / 100
			return tax
		}
		tax += (b.upTo - lower) * b.rate / 100
		lower = b.upTo
	}
	return tax
}

// ComputeContribution computes the mandatory contribution on gross revenue:
// the rate-based amount floored at the minimum, plus the fixed annual
// component. A not-found resolution (found == false) yields a zero
// contribution so downstream math stays total.
func ComputeContribution(revenue float64, params ResolvedParameters, found bool) Contribution {
	if !found {
		return Contribution{}
	}

	calculated := revenue * params.ContributionRate / 100
	amount := calculated
	minApplied := false
	if calculated < params.MinimumContribution {
		amount = params.MinimumContribution
		minApplied = true
	}
	amount += params.FixedAnnualContributions

	return Contribution{
		Amount:           amount,
		Rate:             params.ContributionRate,
		IsMinimumApplied: minApplied,
	}
}

// ComputeLiability computes the liability breakdown for one window under the
// configured regime. The pension and fund components are mutually exclusive:
// cassa contributions land in FundContribution, inps and manual ones in
// PensionContribution.
func ComputeLiability(totals WindowTotals, settings FiscalSettings, params ResolvedParameters, found bool) PeriodLiability {
	liability := PeriodLiability{Regime: settings.Regime}

	switch settings.Regime {
	case RegimeForfettario:
		liability.TaxableBase = totals.Revenue * settings.ProfitabilityRate / 100
		liability.Tax = liability.TaxableBase * settings.SubstituteRate / 100
	case RegimeOrdinario:
		net := totals.Revenue - totals.Costs
		if net < 0 {
			net = 0
		}
		liability.TaxableBase = net
		liability.Tax = ProgressiveTax(net)
	}

	contribution := ComputeContribution(totals.Revenue, params, found)
	liability.IsMinimumApplied = contribution.IsMinimumApplied
	if settings.PensionSystem == PensionCassa {
		liability.FundContribution = contribution.Amount
	} else {
		liability.PensionContribution = contribution.Amount
	}

	liability.Total = liability.Tax + liability.PensionContribution + liability.FundContribution
	return liability
}

// ComputeTax is the top-level tax computation for the dashboard: liability
// over the current quarter, the year-to-date roll-up, upcoming payment
// obligations and the cross-regime comparison.
//
// Year-to-date liability is current quarter × quarters elapsed, and the year
// end projection is current quarter × 4. Both deliberately ignore
// quarter-to-quarter variation; the dashboard has always shown this
// approximation and downstream users reconcile against it.
func ComputeTax(revenues []RevenueRecord, costs []CostRecord, settings FiscalSettings, lookup FundLookup, ref time.Time) TaxComputationResult {
	quarter := Aggregate(revenues, costs, ref, WindowCurrentQuarter)
	params, found := ResolveContribution(settings, lookup, ref.Year())
	liability := ComputeLiability(quarter, settings, params, found)

	quartersElapsed := (int(ref.Month())-1)/3 + 1
	ytdLiability := liability.Total * float64(quartersElapsed)

	result := TaxComputationResult{
		Period:                    liability,
		YearToDateLiability:       ytdLiability,
		NextPayments:              NextPayments(liability, ref),
		RegimeUsed:                settings.Regime,
		ProjectedYearEndLiability: liability.Total * 4,
	}

	ytd := Aggregate(revenues, costs, ref, WindowYearToDate)
	result.PotentialSavings = potentialSavings(ytd, settings)
	return result
}

// potentialSavings estimates how much less tax the other regime would have
// cost on the same year-to-date figures. Only the tax component differs
// between regimes; contributions are configuration-driven either way.
// Never negative: a user already on the cheaper regime saves nothing.
func potentialSavings(ytd WindowTotals, settings FiscalSettings) float64 {
	substituteRate := settings.SubstituteRate
	if substituteRate == 0 {
		substituteRate = defaultSubstituteRate
	}
	profitabilityRate := settings.ProfitabilityRate
	if profitabilityRate == 0 {
		profitabilityRate = defaultProfitabilityRate
	}

	forfettarioTax := ytd.Revenue * profitabilityRate / 100 * substituteRate / 100

	net := ytd.Revenue - ytd.Costs
	if net < 0 {
		net = 0
	}
	ordinarioTax := ProgressiveTax(net)

	var current, other float64
	switch settings.Regime {
	case RegimeForfettario:
		current, other = forfettarioTax, ordinarioTax
	case RegimeOrdinario:
		current, other = ordinarioTax, forfettarioTax
	default:
		return 0
	}

	if savings := current - other; savings > 0 {
		return savings
	}
	return 0
}
