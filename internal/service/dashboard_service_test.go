package service

import (
	"context"
	"math"
	"testing"
	"time"

	"pivadash/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Hand-rolled repository stubs ---

type stubInvoiceRepo struct {
	byYear    map[int][]model.Invoice
	listCalls int
}

func (s *stubInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error { return nil }
func (s *stubInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error { return nil }
func (s *stubInvoiceRepo) Delete(ctx context.Context, userID, id uuid.UUID) error   { return nil }
func (s *stubInvoiceRepo) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error) {
	return nil, nil
}
func (s *stubInvoiceRepo) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Invoice, int64, error) {
	return nil, 0, nil
}
func (s *stubInvoiceRepo) ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]model.Invoice, error) {
	s.listCalls++
	return s.byYear[year], nil
}
func (s *stubInvoiceRepo) CountByYear(ctx context.Context, userID uuid.UUID, year int) (int64, error) {
	return int64(len(s.byYear[year])), nil
}

type stubCostRepo struct {
	byYear map[int][]model.Cost
}

func (s *stubCostRepo) Create(ctx context.Context, cost *model.Cost) error { return nil }
func (s *stubCostRepo) Update(ctx context.Context, cost *model.Cost) error { return nil }
func (s *stubCostRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return nil
}
func (s *stubCostRepo) FindByID(ctx context.Context, userID, id uuid.UUID) (*model.Cost, error) {
	return nil, nil
}
func (s *stubCostRepo) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Cost, int64, error) {
	return nil, 0, nil
}
func (s *stubCostRepo) ListByYear(ctx context.Context, userID uuid.UUID, year int) ([]model.Cost, error) {
	return s.byYear[year], nil
}

type stubSettingsRepo struct {
	stored *model.FiscalSettings
	err    error
}

func (s *stubSettingsRepo) Upsert(ctx context.Context, settings *model.FiscalSettings) error {
	return nil
}
func (s *stubSettingsRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*model.FiscalSettings, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stored, nil
}

type stubFundRepo struct {
	params []model.FundParameterSet
}

func (s *stubFundRepo) Create(ctx context.Context, fund *model.ProfessionalFund) error { return nil }
func (s *stubFundRepo) Update(ctx context.Context, fund *model.ProfessionalFund) error { return nil }
func (s *stubFundRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProfessionalFund, error) {
	return nil, nil
}
func (s *stubFundRepo) List(ctx context.Context) ([]model.ProfessionalFund, error) { return nil, nil }
func (s *stubFundRepo) UpsertParameters(ctx context.Context, params *model.FundParameterSet) error {
	return nil
}
func (s *stubFundRepo) ParametersByFund(ctx context.Context, fundID uuid.UUID) ([]model.FundParameterSet, error) {
	return s.params, nil
}

type stubAuditRepo struct {
	entries []model.AuditLog
}

func (s *stubAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	s.entries = append(s.entries, *entry)
	return nil
}
func (s *stubAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return s.entries, int64(len(s.entries)), nil
}

type memCache struct {
	data        map[string]string
	invalidated []string
}

func newMemCache() *memCache { return &memCache{data: make(map[string]string)} }

func (m *memCache) Get(ctx context.Context, key string) (string, bool) {
	v, ok := m.data[key]
	return v, ok
}
func (m *memCache) Set(ctx context.Context, key, value string) error {
	m.data[key] = value
	return nil
}
func (m *memCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		m.invalidated = append(m.invalidated, k)
		delete(m.data, k)
	}
	return nil
}

// --- Fixtures ---

var testUserID = uuid.MustParse("7f6c0c9e-3b1a-4a9e-9a51-2f1f7a5f0d42")

func invoiceOn(y int, m time.Month, d int, amount string) model.Invoice {
	return model.Invoice{
		ID:        uuid.New(),
		UserID:    testUserID,
		Amount:    decimal.RequireFromString(amount),
		IssueDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

func costOn(y int, m time.Month, d int, amount, desc string) model.Cost {
	return model.Cost{
		ID:          uuid.New(),
		UserID:      testUserID,
		Amount:      decimal.RequireFromString(amount),
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Description: desc,
	}
}

func manualForfettarioSettings() *model.FiscalSettings {
	return &model.FiscalSettings{
		UserID:            testUserID,
		TaxRegime:         model.RegimeForfettario,
		SubstituteRate:    decimal.RequireFromString("15"),
		ProfitabilityRate: decimal.RequireFromString("78"),
		PensionSystem:     model.PensionManual,
		ManualRate:        decimal.RequireFromString("10"),
	}
}

func newTestDashboard(inv *stubInvoiceRepo, cost *stubCostRepo, set *stubSettingsRepo, fund *stubFundRepo, audit *stubAuditRepo, cache *memCache, ref time.Time) *dashboardService {
	svc := NewDashboardService(inv, cost, set, fund, audit, cache).(*dashboardService)
	svc.now = func() time.Time { return ref }
	return svc
}

func closeTo(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

// --- Tests ---

func TestGetTaxesForfettarioManualPension(t *testing.T) {
	ref := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	inv := &stubInvoiceRepo{byYear: map[int][]model.Invoice{
		2025: {invoiceOn(2025, time.April, 10, "10000")},
	}}
	cost := &stubCostRepo{byYear: map[int][]model.Cost{}}
	set := &stubSettingsRepo{stored: manualForfettarioSettings()}
	audit := &stubAuditRepo{}
	cache := newMemCache()
	svc := newTestDashboard(inv, cost, set, &stubFundRepo{}, audit, cache, ref)

	result, err := svc.GetTaxes(context.Background(), testUserID.String(), false)
	if err != nil {
		t.Fatalf("GetTaxes: %v", err)
	}

	// 10000 revenue in Q2: base 78% = 7800, substitute tax 15% = 1170,
	// manual contribution 10% = 1000, total 2170.
	if !closeTo(result.Period.TaxableBase, 7800) {
		t.Errorf("taxable base = %v, want 7800", result.Period.TaxableBase)
	}
	if !closeTo(result.Period.Tax, 1170) {
		t.Errorf("tax = %v, want 1170", result.Period.Tax)
	}
	if !closeTo(result.Period.PensionContribution, 1000) {
		t.Errorf("pension contribution = %v, want 1000", result.Period.PensionContribution)
	}
	if !closeTo(result.Period.Total, 2170) {
		t.Errorf("period total = %v, want 2170", result.Period.Total)
	}

	// May is in Q2: two quarters elapsed, four projected.
	if !closeTo(result.YearToDateLiability, 4340) {
		t.Errorf("YTD liability = %v, want 4340", result.YearToDateLiability)
	}
	if !closeTo(result.ProjectedYearEndLiability, 8680) {
		t.Errorf("projected liability = %v, want 8680", result.ProjectedYearEndLiability)
	}

	// Forfettario is already cheaper than IRPEF on 10000, so no savings.
	if result.PotentialSavings != 0 {
		t.Errorf("potential savings = %v, want 0", result.PotentialSavings)
	}

	if len(result.NextPayments) != 2 {
		t.Fatalf("next payments = %d, want 2", len(result.NextPayments))
	}
	wantDue := time.Date(2025, time.July, 16, 0, 0, 0, 0, time.UTC)
	for _, p := range result.NextPayments {
		if !p.DueDate.Equal(wantDue) {
			t.Errorf("due date = %v, want %v", p.DueDate, wantDue)
		}
		if p.IsPaid {
			t.Errorf("obligation %q should not be pre-marked paid", p.Description)
		}
	}

	if _, ok := cache.data[taxesCacheKey(testUserID.String())]; !ok {
		t.Error("expected computation cached after miss")
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != model.ActionComputeTaxes {
		t.Errorf("expected one COMPUTE_TAXES audit entry, got %+v", audit.entries)
	}
}

func TestGetTaxesServesFromCacheUntilRefresh(t *testing.T) {
	ref := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	inv := &stubInvoiceRepo{byYear: map[int][]model.Invoice{
		2025: {invoiceOn(2025, time.April, 10, "10000")},
	}}
	cost := &stubCostRepo{byYear: map[int][]model.Cost{}}
	set := &stubSettingsRepo{stored: manualForfettarioSettings()}
	svc := newTestDashboard(inv, cost, set, &stubFundRepo{}, &stubAuditRepo{}, newMemCache(), ref)

	if _, err := svc.GetTaxes(context.Background(), testUserID.String(), false); err != nil {
		t.Fatalf("first GetTaxes: %v", err)
	}
	callsAfterFirst := inv.listCalls

	cached, err := svc.GetTaxes(context.Background(), testUserID.String(), false)
	if err != nil {
		t.Fatalf("second GetTaxes: %v", err)
	}
	if inv.listCalls != callsAfterFirst {
		t.Errorf("cached read hit the repository: %d calls, want %d", inv.listCalls, callsAfterFirst)
	}
	if !closeTo(cached.Period.Total, 2170) {
		t.Errorf("cached total = %v, want 2170", cached.Period.Total)
	}

	if _, err := svc.GetTaxes(context.Background(), testUserID.String(), true); err != nil {
		t.Fatalf("refresh GetTaxes: %v", err)
	}
	if inv.listCalls == callsAfterFirst {
		t.Error("refresh=true should bypass the cache and recompute")
	}
}

func TestGetTaxesMissingSettingsYieldsZeroedResult(t *testing.T) {
	ref := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	inv := &stubInvoiceRepo{byYear: map[int][]model.Invoice{
		2025: {invoiceOn(2025, time.April, 10, "10000")},
	}}
	set := &stubSettingsRepo{err: context.DeadlineExceeded}
	svc := newTestDashboard(inv, &stubCostRepo{byYear: map[int][]model.Cost{}}, set, &stubFundRepo{}, &stubAuditRepo{}, newMemCache(), ref)

	result, err := svc.GetTaxes(context.Background(), testUserID.String(), false)
	if err != nil {
		t.Fatalf("GetTaxes: %v", err)
	}
	if result.Period.Tax != 0 || result.Period.Total != 0 {
		t.Errorf("unconfigured user should compute zero liability, got %+v", result.Period)
	}
	if len(result.NextPayments) != 0 {
		t.Errorf("unconfigured user should have no obligations, got %d", len(result.NextPayments))
	}
}

func TestGetProfitComputesWindowsAndTrends(t *testing.T) {
	ref := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	inv := &stubInvoiceRepo{byYear: map[int][]model.Invoice{
		2025: {
			invoiceOn(2025, time.May, 5, "8000"),
			invoiceOn(2025, time.April, 12, "6000"),
		},
	}}
	cost := &stubCostRepo{byYear: map[int][]model.Cost{
		2025: {
			costOn(2025, time.May, 10, "2000", "Office rent May"),
			costOn(2025, time.April, 2, "2000", "Office rent April"),
		},
	}}
	svc := newTestDashboard(inv, cost, &stubSettingsRepo{stored: manualForfettarioSettings()}, &stubFundRepo{}, &stubAuditRepo{}, newMemCache(), ref)

	result, err := svc.GetProfit(context.Background(), testUserID.String(), false)
	if err != nil {
		t.Fatalf("GetProfit: %v", err)
	}

	if !closeTo(result.Current.Revenue, 8000) || !closeTo(result.Current.Costs, 2000) {
		t.Errorf("current window = %+v, want revenue 8000 costs 2000", result.Current)
	}
	if !closeTo(result.Current.Profit, 6000) || !closeTo(result.Current.Margin, 75) {
		t.Errorf("current profit/margin = %v/%v, want 6000/75", result.Current.Profit, result.Current.Margin)
	}
	if !closeTo(result.Previous.Profit, 4000) {
		t.Errorf("previous profit = %v, want 4000", result.Previous.Profit)
	}
	if !closeTo(result.Trends.ProfitTrend, 50) {
		t.Errorf("profit trend = %v, want 50", result.Trends.ProfitTrend)
	}
	if !closeTo(result.Trends.CostTrend, 0) {
		t.Errorf("cost trend = %v, want 0", result.Trends.CostTrend)
	}
	// margin 75 (40) + profit trend 50 (30) + revenue trend 33.3 (20) + flat costs (10)
	if result.HealthScore != 100 {
		t.Errorf("health score = %d, want 100", result.HealthScore)
	}
	if result.Benchmarks.BestWindow != "2025-05" {
		t.Errorf("best window = %q, want 2025-05", result.Benchmarks.BestWindow)
	}
	if len(result.Recommendations) != 0 {
		t.Errorf("healthy account should get no recommendations, got %v", result.Recommendations)
	}
}

func TestGetCostBreakdownCategorizesByKeyword(t *testing.T) {
	ref := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	cost := &stubCostRepo{byYear: map[int][]model.Cost{
		2025: {
			costOn(2025, time.February, 1, "2000", "Office rent"),
			costOn(2025, time.March, 3, "1000", "Fuel for client visits"),
		},
	}}
	svc := newTestDashboard(&stubInvoiceRepo{byYear: map[int][]model.Invoice{}}, cost, &stubSettingsRepo{stored: manualForfettarioSettings()}, &stubFundRepo{}, &stubAuditRepo{}, newMemCache(), ref)

	breakdown, err := svc.GetCostBreakdown(context.Background(), testUserID.String(), 2025)
	if err != nil {
		t.Fatalf("GetCostBreakdown: %v", err)
	}

	if len(breakdown) != 2 {
		t.Fatalf("breakdown categories = %d, want 2", len(breakdown))
	}
	if breakdown[0].Category != "Office" || !closeTo(breakdown[0].Amount, 2000) {
		t.Errorf("breakdown[0] = %+v, want Office 2000", breakdown[0])
	}
	if breakdown[1].Category != "Transport" || !closeTo(breakdown[1].Amount, 1000) {
		t.Errorf("breakdown[1] = %+v, want Transport 1000", breakdown[1])
	}
	if !closeTo(breakdown[0].Percent+breakdown[1].Percent, 100) {
		t.Errorf("percentages sum to %v, want 100", breakdown[0].Percent+breakdown[1].Percent)
	}
}

func TestGetTaxesInvalidUserID(t *testing.T) {
	ref := time.Date(2025, time.May, 20, 10, 0, 0, 0, time.UTC)
	svc := newTestDashboard(&stubInvoiceRepo{byYear: map[int][]model.Invoice{}}, &stubCostRepo{byYear: map[int][]model.Cost{}}, &stubSettingsRepo{stored: manualForfettarioSettings()}, &stubFundRepo{}, &stubAuditRepo{}, newMemCache(), ref)

	if _, err := svc.GetTaxes(context.Background(), "not-a-uuid", false); err == nil {
		t.Error("expected error for malformed user id")
	}
}
