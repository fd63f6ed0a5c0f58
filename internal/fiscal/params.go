package fiscal

// Gestione Separata parameters used for the national pension path. The
// institute publishes new rates every year; unknown years resolve to the
// closest earlier entry like fund parameters do.
var inpsParameters = map[int]FundParameters{
	2023: {Year: 2023, ContributionRate: 26.23},
	2024: {Year: 2024, ContributionRate: 26.07},
	2025: {Year: 2025, ContributionRate: 26.07},
}

// ResolveFundParameters picks the parameter set to use for year out of a
// fund's year-keyed sets. Exact match wins; otherwise the greatest available
// year not after the requested one; if every set is for a later year, the
// earliest set. Returns false only when byYear is empty — callers must treat
// that as "contribution = 0", not as an error.
func ResolveFundParameters(byYear map[int]FundParameters, year int) (ResolvedParameters, bool) {
	if len(byYear) == 0 {
		return ResolvedParameters{}, false
	}

	if p, ok := byYear[year]; ok {
		return toResolved(p), true
	}

	bestBelow, haveBelow := 0, false
	earliest, haveEarliest := 0, false
	for y := range byYear {
		if y <= year && (!haveBelow || y > bestBelow) {
			bestBelow, haveBelow = y, true
		}
		if !haveEarliest || y < earliest {
			earliest, haveEarliest = y, true
		}
	}

	if haveBelow {
		return toResolved(byYear[bestBelow]), true
	}
	return toResolved(byYear[earliest]), true
}

// ResolveContribution resolves the contribution parameters for the given
// settings and calendar year. The pension system dispatch is exhaustive:
// manual overrides bypass any lookup, cassa consults the fund via lookup,
// inps uses the built-in Gestione Separata table. The boolean mirrors
// ResolveFundParameters: false means no parameters exist at all.
func ResolveContribution(settings FiscalSettings, lookup FundLookup, year int) (ResolvedParameters, bool) {
	switch settings.PensionSystem {
	case PensionManual:
		if settings.Manual == nil {
			return ResolvedParameters{}, false
		}
		return ResolvedParameters{
			Year:                     year,
			ContributionRate:         settings.Manual.Rate,
			MinimumContribution:      settings.Manual.MinimumContribution,
			FixedAnnualContributions: settings.Manual.FixedAnnualContributions,
		}, true
	case PensionCassa:
		if lookup == nil || settings.FundID == "" {
			return ResolvedParameters{}, false
		}
		return ResolveFundParameters(lookup(settings.FundID), year)
	case PensionINPS:
		return ResolveFundParameters(inpsParameters, year)
	}
	return ResolvedParameters{}, false
}

func toResolved(p FundParameters) ResolvedParameters {
	return ResolvedParameters{
		Year:                     p.Year,
		ContributionRate:         p.ContributionRate,
		MinimumContribution:      p.MinimumContribution,
		FixedAnnualContributions: p.FixedAnnualContributions,
	}
}
