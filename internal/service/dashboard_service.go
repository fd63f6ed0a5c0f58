package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pivadash/internal/fiscal"
	"pivadash/internal/model"
	"pivadash/internal/repository"

	"github.com/google/uuid"
)

// --- Interface ---

// DashboardService assembles record snapshots, runs the fiscal engine and
// caches the serialized results for the staleness window. The engine itself
// is pure; everything stateful (fetching, caching, auditing) lives here.
type DashboardService interface {
	GetTaxes(ctx context.Context, userID string, refresh bool) (fiscal.TaxComputationResult, error)
	GetProfit(ctx context.Context, userID string, refresh bool) (fiscal.ProfitComputationResult, error)
	GetCostBreakdown(ctx context.Context, userID string, year int) ([]fiscal.CategoryTotal, error)
}

type dashboardService struct {
	invoiceRepo  repository.InvoiceRepository
	costRepo     repository.CostRepository
	settingsRepo repository.SettingsRepository
	fundRepo     repository.FundRepository
	auditRepo    repository.AuditRepository
	cache        repository.SnapshotCache
	now          func() time.Time
}

func NewDashboardService(
	invoiceRepo repository.InvoiceRepository,
	costRepo repository.CostRepository,
	settingsRepo repository.SettingsRepository,
	fundRepo repository.FundRepository,
	auditRepo repository.AuditRepository,
	cache repository.SnapshotCache,
) DashboardService {
	return &dashboardService{
		invoiceRepo:  invoiceRepo,
		costRepo:     costRepo,
		settingsRepo: settingsRepo,
		fundRepo:     fundRepo,
		auditRepo:    auditRepo,
		cache:        cache,
		now:          time.Now,
	}
}

func taxesCacheKey(userID string) string  { return "dashboard:taxes:" + userID }
func profitCacheKey(userID string) string { return "dashboard:profit:" + userID }

// --- Implementation ---

func (s *dashboardService) GetTaxes(ctx context.Context, userID string, refresh bool) (fiscal.TaxComputationResult, error) {
	if !refresh && s.cache != nil {
		if cached, ok := s.cache.Get(ctx, taxesCacheKey(userID)); ok {
			var result fiscal.TaxComputationResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return result, nil
			}
		}
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fiscal.TaxComputationResult{}, fmt.Errorf("invalid user id: %w", err)
	}

	ref := s.now()
	revenues, costs, err := s.loadSnapshots(ctx, userUUID, ref)
	if err != nil {
		return fiscal.TaxComputationResult{}, err
	}

	settings := s.loadSettings(ctx, userUUID)
	result := fiscal.ComputeTax(revenues, costs, settings, s.fundLookup(ctx), ref)

	s.storeCache(ctx, taxesCacheKey(userID), result)
	s.writeAuditLog(ctx, userID, model.ActionComputeTaxes, userID, string(settings.Regime))
	return result, nil
}

func (s *dashboardService) GetProfit(ctx context.Context, userID string, refresh bool) (fiscal.ProfitComputationResult, error) {
	if !refresh && s.cache != nil {
		if cached, ok := s.cache.Get(ctx, profitCacheKey(userID)); ok {
			var result fiscal.ProfitComputationResult
			if err := json.Unmarshal([]byte(cached), &result); err == nil {
				return result, nil
			}
		}
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fiscal.ProfitComputationResult{}, fmt.Errorf("invalid user id: %w", err)
	}

	ref := s.now()
	revenues, costs, err := s.loadSnapshots(ctx, userUUID, ref)
	if err != nil {
		return fiscal.ProfitComputationResult{}, err
	}

	result := fiscal.ComputeProfit(revenues, costs, ref)

	s.storeCache(ctx, profitCacheKey(userID), result)
	s.writeAuditLog(ctx, userID, model.ActionComputeProfit, userID, "")
	return result, nil
}

func (s *dashboardService) GetCostBreakdown(ctx context.Context, userID string, year int) ([]fiscal.CategoryTotal, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if year == 0 {
		year = s.now().Year()
	}

	costs, err := s.costRepo.ListByYear(ctx, userUUID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch costs: %w", err)
	}

	return fiscal.CategorizeCosts(toCostSnapshots(costs)), nil
}

// --- Snapshot assembly ---

// loadSnapshots fetches the reference year and the one before it, so the
// previous-month and trailing-month windows stay correct across January.
func (s *dashboardService) loadSnapshots(ctx context.Context, userID uuid.UUID, ref time.Time) ([]fiscal.RevenueRecord, []fiscal.CostRecord, error) {
	var revenues []fiscal.RevenueRecord
	var costs []fiscal.CostRecord

	for _, year := range []int{ref.Year() - 1, ref.Year()} {
		invoices, err := s.invoiceRepo.ListByYear(ctx, userID, year)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch invoices for %d: %w", year, err)
		}
		revenues = append(revenues, toRevenueSnapshots(invoices)...)

		yearCosts, err := s.costRepo.ListByYear(ctx, userID, year)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch costs for %d: %w", year, err)
		}
		costs = append(costs, toCostSnapshots(yearCosts)...)
	}

	return revenues, costs, nil
}

// loadSettings returns the engine view of the user's fiscal configuration.
// A missing row degrades to zero-valued settings: the engine then yields a
// zeroed computation and the UI prompts for configuration.
func (s *dashboardService) loadSettings(ctx context.Context, userID uuid.UUID) fiscal.FiscalSettings {
	stored, err := s.settingsRepo.FindByUser(ctx, userID)
	if err != nil {
		return fiscal.FiscalSettings{}
	}
	return toFiscalSettings(stored)
}

// fundLookup adapts the fund repository to the engine's lookup contract.
// Errors collapse to a nil map, which the resolver reports as not found.
func (s *dashboardService) fundLookup(ctx context.Context) fiscal.FundLookup {
	return func(fundID string) map[int]fiscal.FundParameters {
		id, err := uuid.Parse(fundID)
		if err != nil {
			return nil
		}
		params, err := s.fundRepo.ParametersByFund(ctx, id)
		if err != nil {
			return nil
		}

		byYear := make(map[int]fiscal.FundParameters, len(params))
		for _, p := range params {
			byYear[p.Year] = fiscal.FundParameters{
				Year:                     p.Year,
				ContributionRate:         p.ContributionRate.InexactFloat64(),
				MinimumContribution:      p.MinimumContribution.InexactFloat64(),
				FixedAnnualContributions: p.FixedAnnualContributions.InexactFloat64(),
			}
		}
		return byYear
	}
}

func toRevenueSnapshots(invoices []model.Invoice) []fiscal.RevenueRecord {
	records := make([]fiscal.RevenueRecord, 0, len(invoices))
	for _, inv := range invoices {
		records = append(records, fiscal.RevenueRecord{
			ID:          inv.ID.String(),
			IssueDate:   inv.IssueDate,
			Amount:      inv.Amount.InexactFloat64(),
			PaymentDate: inv.PaymentDate,
			VATRate:     inv.VATRate.InexactFloat64(),
		})
	}
	return records
}

func toCostSnapshots(costs []model.Cost) []fiscal.CostRecord {
	records := make([]fiscal.CostRecord, 0, len(costs))
	for _, c := range costs {
		records = append(records, fiscal.CostRecord{
			ID:          c.ID.String(),
			Date:        c.Date,
			Amount:      c.Amount.InexactFloat64(),
			Description: c.Description,
		})
	}
	return records
}

func toFiscalSettings(stored *model.FiscalSettings) fiscal.FiscalSettings {
	settings := fiscal.FiscalSettings{
		Regime:            fiscal.TaxRegime(stored.TaxRegime),
		SubstituteRate:    stored.SubstituteRate.InexactFloat64(),
		ProfitabilityRate: stored.ProfitabilityRate.InexactFloat64(),
		PensionSystem:     fiscal.PensionSystem(stored.PensionSystem),
		ContributorClass:  stored.ContributorClass,
	}
	if stored.FundID != nil {
		settings.FundID = stored.FundID.String()
	}
	if stored.PensionSystem == model.PensionManual {
		settings.Manual = &fiscal.ManualContribution{
			Rate:                     stored.ManualRate.InexactFloat64(),
			MinimumContribution:      stored.ManualMinimum.InexactFloat64(),
			FixedAnnualContributions: stored.ManualFixedAnnual.InexactFloat64(),
		}
	}
	return settings
}

func (s *dashboardService) storeCache(ctx context.Context, key string, result interface{}) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, string(payload))
}

func (s *dashboardService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string) {
	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    "{}",
	}
	if parsed, err := uuid.Parse(userID); err == nil {
		entry.UserID = &parsed
	}
	_ = s.auditRepo.Log(ctx, &entry)
}
