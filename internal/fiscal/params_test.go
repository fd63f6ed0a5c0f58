package fiscal

import "testing"

func sampleFundYears() map[int]FundParameters {
	return map[int]FundParameters{
		2023: {Year: 2023, ContributionRate: 14.5, MinimumContribution: 1800, FixedAnnualContributions: 100},
		2024: {Year: 2024, ContributionRate: 15, MinimumContribution: 2000, FixedAnnualContributions: 120},
	}
}

func TestResolveFundParameters_ExactYear(t *testing.T) {
	params, found := ResolveFundParameters(sampleFundYears(), 2024)
	if !found {
		t.Fatal("expected parameters to be found")
	}
	if params.Year != 2024 || params.ContributionRate != 15 {
		t.Errorf("expected 2024 parameters, got year %d rate %.2f", params.Year, params.ContributionRate)
	}
}

func TestResolveFundParameters_FallsBackToLatestKnown(t *testing.T) {
	params, found := ResolveFundParameters(sampleFundYears(), 2026)
	if !found {
		t.Fatal("expected parameters to be found")
	}
	if params.Year != 2024 {
		t.Errorf("expected fallback to latest known year 2024, got %d", params.Year)
	}
}

func TestResolveFundParameters_AllYearsInFuture(t *testing.T) {
	byYear := map[int]FundParameters{
		2027: {Year: 2027, ContributionRate: 16},
		2028: {Year: 2028, ContributionRate: 17},
	}
	params, found := ResolveFundParameters(byYear, 2025)
	if !found {
		t.Fatal("expected parameters to be found")
	}
	if params.Year != 2027 {
		t.Errorf("expected earliest available year 2027, got %d", params.Year)
	}
}

func TestResolveFundParameters_EmptyFund(t *testing.T) {
	if _, found := ResolveFundParameters(nil, 2025); found {
		t.Error("expected not found for empty parameter set")
	}
}

func TestResolveContribution_Manual(t *testing.T) {
	settings := FiscalSettings{
		PensionSystem: PensionManual,
		Manual: &ManualContribution{
			Rate:                     24,
			MinimumContribution:      2000,
			FixedAnnualContributions: 50,
		},
	}

	params, found := ResolveContribution(settings, nil, 2025)
	if !found {
		t.Fatal("expected manual parameters to resolve")
	}
	if params.ContributionRate != 24 || params.MinimumContribution != 2000 || params.FixedAnnualContributions != 50 {
		t.Errorf("unexpected resolved parameters: %+v", params)
	}
}

func TestResolveContribution_ManualWithoutOverrides(t *testing.T) {
	settings := FiscalSettings{PensionSystem: PensionManual}
	if _, found := ResolveContribution(settings, nil, 2025); found {
		t.Error("expected not found when manual overrides are missing")
	}
}

func TestResolveContribution_CassaUsesLookup(t *testing.T) {
	settings := FiscalSettings{PensionSystem: PensionCassa, FundID: "inarcassa"}
	lookup := func(fundID string) map[int]FundParameters {
		if fundID != "inarcassa" {
			t.Errorf("unexpected fund id %q", fundID)
		}
		return sampleFundYears()
	}

	params, found := ResolveContribution(settings, lookup, 2024)
	if !found {
		t.Fatal("expected fund parameters to resolve")
	}
	if params.MinimumContribution != 2000 {
		t.Errorf("expected minimum 2000, got %.2f", params.MinimumContribution)
	}
}

func TestResolveContribution_CassaWithoutFundID(t *testing.T) {
	settings := FiscalSettings{PensionSystem: PensionCassa}
	if _, found := ResolveContribution(settings, func(string) map[int]FundParameters { return sampleFundYears() }, 2024); found {
		t.Error("expected not found when fund id is missing")
	}
}

func TestResolveContribution_INPS(t *testing.T) {
	settings := FiscalSettings{PensionSystem: PensionINPS}
	params, found := ResolveContribution(settings, nil, 2024)
	if !found {
		t.Fatal("expected INPS parameters to resolve")
	}
	if params.ContributionRate != 26.07 {
		t.Errorf("expected 2024 Gestione Separata rate 26.07, got %.2f", params.ContributionRate)
	}
}
