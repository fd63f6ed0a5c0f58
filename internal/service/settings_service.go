package service

import (
	"context"
	"encoding/json"
	"fmt"

	"pivadash/internal/model"
	"pivadash/internal/repository"
	"pivadash/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type UpdateSettingsRequest struct {
	TaxRegime         string `json:"tax_regime" binding:"required,oneof=forfettario ordinario"`
	SubstituteRate    string `json:"substitute_rate"`    // Decimal string, e.g. "15"
	ProfitabilityRate string `json:"profitability_rate"` // Decimal string, e.g. "78"
	PensionSystem     string `json:"pension_system" binding:"required,oneof=inps cassa manual"`
	FundID            string `json:"fund_id"`
	ContributorClass  string `json:"contributor_class"`
	ManualRate        string `json:"manual_rate"`
	ManualMinimum     string `json:"manual_minimum"`
	ManualFixedAnnual string `json:"manual_fixed_annual"`
}

type SettingsResponse struct {
	TaxRegime         string  `json:"tax_regime"`
	SubstituteRate    string  `json:"substitute_rate"`
	ProfitabilityRate string  `json:"profitability_rate"`
	PensionSystem     string  `json:"pension_system"`
	FundID            *string `json:"fund_id"`
	FundName          string  `json:"fund_name,omitempty"`
	ContributorClass  string  `json:"contributor_class"`
	ManualRate        string  `json:"manual_rate"`
	ManualMinimum     string  `json:"manual_minimum"`
	ManualFixedAnnual string  `json:"manual_fixed_annual"`
}

type FundParametersRequest struct {
	Year                     int    `json:"year" binding:"required"`
	ContributionRate         string `json:"contribution_rate" binding:"required"`
	MinimumContribution      string `json:"minimum_contribution"`
	FixedAnnualContributions string `json:"fixed_annual_contributions"`
}

type CreateFundRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type FundResponse struct {
	ID         string                   `json:"id"`
	Code       string                   `json:"code"`
	Name       string                   `json:"name"`
	Parameters []FundParametersResponse `json:"parameters"`
}

type FundParametersResponse struct {
	Year                     int    `json:"year"`
	ContributionRate         string `json:"contribution_rate"`
	MinimumContribution      string `json:"minimum_contribution"`
	FixedAnnualContributions string `json:"fixed_annual_contributions"`
}

// --- Interface ---

type SettingsService interface {
	GetSettings(ctx context.Context, userID string) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, userID string, req UpdateSettingsRequest) (SettingsResponse, error)
	ListFunds(ctx context.Context) ([]FundResponse, error)
	CreateFund(ctx context.Context, userID string, req CreateFundRequest) (FundResponse, error)
	SetFundParameters(ctx context.Context, userID, fundID string, req FundParametersRequest) (FundResponse, error)
}

type settingsService struct {
	settingsRepo repository.SettingsRepository
	fundRepo     repository.FundRepository
	auditRepo    repository.AuditRepository
	cache        repository.SnapshotCache
	hub          *websocket.Hub
}

func NewSettingsService(
	settingsRepo repository.SettingsRepository,
	fundRepo repository.FundRepository,
	auditRepo repository.AuditRepository,
	cache repository.SnapshotCache,
	hub *websocket.Hub,
) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		fundRepo:     fundRepo,
		auditRepo:    auditRepo,
		cache:        cache,
		hub:          hub,
	}
}

// --- Implementation ---

func (s *settingsService) GetSettings(ctx context.Context, userID string) (SettingsResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return SettingsResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	settings, err := s.settingsRepo.FindByUser(ctx, userUUID)
	if err != nil {
		return SettingsResponse{}, fmt.Errorf("fiscal settings not configured")
	}
	return toSettingsResponse(settings), nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, userID string, req UpdateSettingsRequest) (SettingsResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return SettingsResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	settings := model.FiscalSettings{
		UserID:           userUUID,
		TaxRegime:        req.TaxRegime,
		PensionSystem:    req.PensionSystem,
		ContributorClass: req.ContributorClass,
	}

	if settings.SubstituteRate, err = parseOptionalDecimal(req.SubstituteRate); err != nil {
		return SettingsResponse{}, fmt.Errorf("invalid substitute_rate: %w", err)
	}
	if settings.ProfitabilityRate, err = parseOptionalDecimal(req.ProfitabilityRate); err != nil {
		return SettingsResponse{}, fmt.Errorf("invalid profitability_rate: %w", err)
	}
	if settings.ManualRate, err = parseOptionalDecimal(req.ManualRate); err != nil {
		return SettingsResponse{}, fmt.Errorf("invalid manual_rate: %w", err)
	}
	if settings.ManualMinimum, err = parseOptionalDecimal(req.ManualMinimum); err != nil {
		return SettingsResponse{}, fmt.Errorf("invalid manual_minimum: %w", err)
	}
	if settings.ManualFixedAnnual, err = parseOptionalDecimal(req.ManualFixedAnnual); err != nil {
		return SettingsResponse{}, fmt.Errorf("invalid manual_fixed_annual: %w", err)
	}

	// Regime invariants: forfettario needs both rates, cassa needs a fund.
	if req.TaxRegime == model.RegimeForfettario {
		if settings.SubstituteRate.IsZero() || settings.ProfitabilityRate.IsZero() {
			return SettingsResponse{}, fmt.Errorf("forfettario regime requires substitute_rate and profitability_rate")
		}
	}
	if req.PensionSystem == model.PensionCassa {
		if req.FundID == "" {
			return SettingsResponse{}, fmt.Errorf("cassa pension system requires fund_id")
		}
		fundUUID, parseErr := uuid.Parse(req.FundID)
		if parseErr != nil {
			return SettingsResponse{}, fmt.Errorf("invalid fund_id: %w", parseErr)
		}
		if _, findErr := s.fundRepo.FindByID(ctx, fundUUID); findErr != nil {
			return SettingsResponse{}, fmt.Errorf("professional fund not found")
		}
		settings.FundID = &fundUUID
	}

	if err := s.settingsRepo.Upsert(ctx, &settings); err != nil {
		return SettingsResponse{}, fmt.Errorf("failed to save settings: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionUpdateSettings, settings.ID.String(), req.TaxRegime, req)
	s.invalidateDashboard(ctx, userID)

	saved, err := s.settingsRepo.FindByUser(ctx, userUUID)
	if err != nil {
		return SettingsResponse{}, fmt.Errorf("failed to reload settings: %w", err)
	}
	return toSettingsResponse(saved), nil
}

func (s *settingsService) ListFunds(ctx context.Context) ([]FundResponse, error) {
	funds, err := s.fundRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch funds: %w", err)
	}

	result := make([]FundResponse, 0, len(funds))
	for _, f := range funds {
		result = append(result, toFundResponse(f))
	}
	return result, nil
}

func (s *settingsService) CreateFund(ctx context.Context, userID string, req CreateFundRequest) (FundResponse, error) {
	fund := model.ProfessionalFund{
		Code: req.Code,
		Name: req.Name,
	}
	if err := s.fundRepo.Create(ctx, &fund); err != nil {
		return FundResponse{}, fmt.Errorf("failed to create fund: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionCreateFund, fund.ID.String(), req.Name, req)
	return toFundResponse(fund), nil
}

func (s *settingsService) SetFundParameters(ctx context.Context, userID, fundID string, req FundParametersRequest) (FundResponse, error) {
	fundUUID, err := uuid.Parse(fundID)
	if err != nil {
		return FundResponse{}, fmt.Errorf("invalid fund id: %w", err)
	}
	if _, err := s.fundRepo.FindByID(ctx, fundUUID); err != nil {
		return FundResponse{}, fmt.Errorf("professional fund not found")
	}

	rate, err := decimal.NewFromString(req.ContributionRate)
	if err != nil {
		return FundResponse{}, fmt.Errorf("invalid contribution_rate: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return FundResponse{}, fmt.Errorf("contribution_rate must be between 0 and 100")
	}

	params := model.FundParameterSet{
		FundID:           fundUUID,
		Year:             req.Year,
		ContributionRate: rate,
	}
	if params.MinimumContribution, err = parseOptionalDecimal(req.MinimumContribution); err != nil {
		return FundResponse{}, fmt.Errorf("invalid minimum_contribution: %w", err)
	}
	if params.MinimumContribution.IsNegative() {
		return FundResponse{}, fmt.Errorf("minimum_contribution must not be negative")
	}
	if params.FixedAnnualContributions, err = parseOptionalDecimal(req.FixedAnnualContributions); err != nil {
		return FundResponse{}, fmt.Errorf("invalid fixed_annual_contributions: %w", err)
	}
	if params.FixedAnnualContributions.IsNegative() {
		return FundResponse{}, fmt.Errorf("fixed_annual_contributions must not be negative")
	}

	if err := s.fundRepo.UpsertParameters(ctx, &params); err != nil {
		return FundResponse{}, fmt.Errorf("failed to save fund parameters: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionUpdateFund, fundID, fmt.Sprintf("year %d", req.Year), req)

	fund, err := s.fundRepo.FindByID(ctx, fundUUID)
	if err != nil {
		return FundResponse{}, fmt.Errorf("failed to reload fund: %w", err)
	}
	return toFundResponse(*fund), nil
}

// --- Helpers ---

func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func toSettingsResponse(settings *model.FiscalSettings) SettingsResponse {
	resp := SettingsResponse{
		TaxRegime:         settings.TaxRegime,
		SubstituteRate:    settings.SubstituteRate.StringFixed(2),
		ProfitabilityRate: settings.ProfitabilityRate.StringFixed(2),
		PensionSystem:     settings.PensionSystem,
		ContributorClass:  settings.ContributorClass,
		ManualRate:        settings.ManualRate.StringFixed(2),
		ManualMinimum:     settings.ManualMinimum.StringFixed(2),
		ManualFixedAnnual: settings.ManualFixedAnnual.StringFixed(2),
	}
	if settings.FundID != nil {
		id := settings.FundID.String()
		resp.FundID = &id
	}
	if settings.Fund != nil {
		resp.FundName = settings.Fund.Name
	}
	return resp
}

func toFundResponse(fund model.ProfessionalFund) FundResponse {
	resp := FundResponse{
		ID:         fund.ID.String(),
		Code:       fund.Code,
		Name:       fund.Name,
		Parameters: make([]FundParametersResponse, 0, len(fund.Parameters)),
	}
	for _, p := range fund.Parameters {
		resp.Parameters = append(resp.Parameters, FundParametersResponse{
			Year:                     p.Year,
			ContributionRate:         p.ContributionRate.StringFixed(2),
			MinimumContribution:      p.MinimumContribution.StringFixed(2),
			FixedAnnualContributions: p.FixedAnnualContributions.StringFixed(2),
		})
	}
	return resp
}

func (s *settingsService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(detailsJSON),
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}

	_ = s.auditRepo.Log(ctx, &entry)
}

func (s *settingsService) invalidateDashboard(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, taxesCacheKey(userID), profitCacheKey(userID))
	}
	if s.hub != nil {
		s.hub.NotifyRefresh(userID)
	}
}
