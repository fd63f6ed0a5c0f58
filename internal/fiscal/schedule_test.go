package fiscal

import (
	"testing"
	"time"
)

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		ref  time.Time
		want time.Time
	}{
		{day(2025, time.January, 5), day(2025, time.April, 16)},
		{day(2025, time.March, 31), day(2025, time.April, 16)},
		{day(2025, time.May, 14), day(2025, time.July, 16)},
		{day(2025, time.September, 1), day(2025, time.October, 16)},
		{day(2025, time.November, 20), day(2026, time.January, 16)},
		{day(2025, time.December, 31), day(2026, time.January, 16)},
	}

	for _, tc := range tests {
		if got := NextDueDate(tc.ref); !got.Equal(tc.want) {
			t.Errorf("ref %s: expected %s, got %s", tc.ref.Format("2006-01-02"), tc.want.Format("2006-01-02"), got.Format("2006-01-02"))
		}
	}
}

func TestNextPayments_OnePerNonZeroComponent(t *testing.T) {
	liability := PeriodLiability{
		Regime:              RegimeForfettario,
		Tax:                 390,
		PensionContribution: 2600,
		Total:               2990,
	}

	payments := NextPayments(liability, day(2025, time.May, 14))
	if len(payments) != 2 {
		t.Fatalf("expected 2 obligations, got %d", len(payments))
	}
	if payments[0].Type != PaymentTax || payments[0].Amount != 390 {
		t.Errorf("unexpected tax obligation %+v", payments[0])
	}
	if payments[1].Type != PaymentPension || payments[1].Amount != 2600 {
		t.Errorf("unexpected pension obligation %+v", payments[1])
	}
	for _, p := range payments {
		if p.IsPaid {
			t.Error("obligations must start unpaid")
		}
		if !p.DueDate.Equal(day(2025, time.July, 16)) {
			t.Errorf("expected due date 2025-07-16, got %s", p.DueDate)
		}
	}
}

func TestNextPayments_ZeroComponentsOmitted(t *testing.T) {
	payments := NextPayments(PeriodLiability{Tax: 500}, day(2025, time.February, 1))
	if len(payments) != 1 {
		t.Fatalf("expected only the tax obligation, got %d", len(payments))
	}

	payments = NextPayments(PeriodLiability{}, day(2025, time.February, 1))
	if len(payments) != 0 {
		t.Errorf("expected no obligations for a zero liability, got %d", len(payments))
	}
}

func TestNextPayments_FundContributionDescription(t *testing.T) {
	liability := PeriodLiability{Regime: RegimeOrdinario, FundContribution: 1800}
	payments := NextPayments(liability, day(2025, time.August, 10))
	if len(payments) != 1 {
		t.Fatalf("expected 1 obligation, got %d", len(payments))
	}
	if payments[0].Description != "Contributi cassa professionale" {
		t.Errorf("unexpected description %q", payments[0].Description)
	}
}
