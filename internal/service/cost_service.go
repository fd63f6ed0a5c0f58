package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pivadash/internal/fiscal"
	"pivadash/internal/model"
	"pivadash/internal/repository"
	"pivadash/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateCostRequest struct {
	Date        string `json:"date" binding:"required"`   // YYYY-MM-DD
	Amount      string `json:"amount" binding:"required"` // Decimal string
	Description string `json:"description" binding:"required"`
}

type UpdateCostRequest struct {
	Date        string `json:"date" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"required"`
}

type CostResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"` // derived, never stored
	CreatedAt   string `json:"created_at"`
}

// --- Interface ---

type CostService interface {
	CreateCost(ctx context.Context, userID string, req CreateCostRequest) (CostResponse, error)
	UpdateCost(ctx context.Context, userID, id string, req UpdateCostRequest) (CostResponse, error)
	DeleteCost(ctx context.Context, userID, id string) error
	ListCosts(ctx context.Context, userID string, page, limit int) ([]CostResponse, int64, error)
}

type costService struct {
	costRepo  repository.CostRepository
	auditRepo repository.AuditRepository
	cache     repository.SnapshotCache
	hub       *websocket.Hub
}

func NewCostService(
	costRepo repository.CostRepository,
	auditRepo repository.AuditRepository,
	cache repository.SnapshotCache,
	hub *websocket.Hub,
) CostService {
	return &costService{costRepo: costRepo, auditRepo: auditRepo, cache: cache, hub: hub}
}

// --- Implementation ---

func (s *costService) CreateCost(ctx context.Context, userID string, req CreateCostRequest) (CostResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return CostResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	amount, date, err := parseCostFields(req.Amount, req.Date)
	if err != nil {
		return CostResponse{}, err
	}

	cost := model.Cost{
		UserID:      userUUID,
		Date:        date,
		Amount:      amount,
		Description: req.Description,
	}

	if err := s.costRepo.Create(ctx, &cost); err != nil {
		return CostResponse{}, fmt.Errorf("failed to create cost: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionCreateCost, cost.ID.String(), req.Description, req)
	s.invalidateDashboard(ctx, userID)
	return toCostResponse(cost), nil
}

func (s *costService) UpdateCost(ctx context.Context, userID, id string, req UpdateCostRequest) (CostResponse, error) {
	userUUID, costUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return CostResponse{}, err
	}

	cost, err := s.costRepo.FindByID(ctx, userUUID, costUUID)
	if err != nil {
		return CostResponse{}, fmt.Errorf("cost not found")
	}

	amount, date, err := parseCostFields(req.Amount, req.Date)
	if err != nil {
		return CostResponse{}, err
	}

	cost.Date = date
	cost.Amount = amount
	cost.Description = req.Description

	if err := s.costRepo.Update(ctx, cost); err != nil {
		return CostResponse{}, fmt.Errorf("failed to update cost: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionUpdateCost, cost.ID.String(), req.Description, req)
	s.invalidateDashboard(ctx, userID)
	return toCostResponse(*cost), nil
}

func (s *costService) DeleteCost(ctx context.Context, userID, id string) error {
	userUUID, costUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return err
	}

	cost, err := s.costRepo.FindByID(ctx, userUUID, costUUID)
	if err != nil {
		return fmt.Errorf("cost not found")
	}

	if err := s.costRepo.Delete(ctx, userUUID, costUUID); err != nil {
		return fmt.Errorf("failed to delete cost: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionDeleteCost, id, cost.Description, map[string]string{"deleted_id": id})
	s.invalidateDashboard(ctx, userID)
	return nil
}

func (s *costService) ListCosts(ctx context.Context, userID string, page, limit int) ([]CostResponse, int64, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	costs, total, err := s.costRepo.List(ctx, userUUID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch costs: %w", err)
	}

	result := make([]CostResponse, 0, len(costs))
	for _, c := range costs {
		result = append(result, toCostResponse(c))
	}
	return result, total, nil
}

// --- Helpers ---

func parseCostFields(amountStr, dateStr string) (decimal.Decimal, time.Time, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("invalid amount: %w", err)
	}
	if amount.IsNegative() {
		return decimal.Zero, time.Time{}, fmt.Errorf("amount must not be negative")
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return decimal.Zero, time.Time{}, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	return amount, date, nil
}

func toCostResponse(c model.Cost) CostResponse {
	return CostResponse{
		ID:          c.ID.String(),
		Date:        c.Date.Format("2006-01-02"),
		Amount:      c.Amount.StringFixed(2),
		Description: c.Description,
		Category:    fiscal.CategorizeCost(c.Description),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func (s *costService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
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

func (s *costService) invalidateDashboard(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, taxesCacheKey(userID), profitCacheKey(userID))
	}
	if s.hub != nil {
		s.hub.NotifyRefresh(userID)
	}
}
