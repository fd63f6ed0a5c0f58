package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pivadash/internal/model"
	"pivadash/internal/repository"
	"pivadash/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateInvoiceRequest struct {
	ClientID    string `json:"client_id"`
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"` // Decimal string, net of VAT
	VATRate     string `json:"vat_rate"`                  // Decimal string, e.g. "22"
	IssueDate   string `json:"issue_date" binding:"required"` // YYYY-MM-DD
}

type UpdateInvoiceRequest struct {
	ClientID    string `json:"client_id"`
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"`
	VATRate     string `json:"vat_rate"`
	IssueDate   string `json:"issue_date" binding:"required"`
}

type InvoiceResponse struct {
	ID          string  `json:"id"`
	InvoiceNo   string  `json:"invoice_no"`
	ClientID    *string `json:"client_id"`
	ClientName  string  `json:"client_name,omitempty"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	VATRate     string  `json:"vat_rate"`
	VATAmount   string  `json:"vat_amount"`
	TotalAmount string  `json:"total_amount"`
	IssueDate   string  `json:"issue_date"`
	PaymentDate *string `json:"payment_date"`
	CreatedAt   string  `json:"created_at"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, userID string, req CreateInvoiceRequest) (InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, userID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, userID, id string) error
	GetInvoice(ctx context.Context, userID, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, userID string, page, limit int) ([]InvoiceResponse, int64, error)
	MarkPaid(ctx context.Context, userID, id, paymentDate string) (InvoiceResponse, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	cache       repository.SnapshotCache
	hub         *websocket.Hub
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	cache repository.SnapshotCache,
	hub *websocket.Hub,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		cache:       cache,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, userID string, req CreateInvoiceRequest) (InvoiceResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	amount, vatRate, issueDate, err := parseInvoiceFields(req.Amount, req.VATRate, req.IssueDate)
	if err != nil {
		return InvoiceResponse{}, err
	}

	vatAmount := amount.Mul(vatRate).Div(decimal.NewFromInt(100))

	invoice := model.Invoice{
		UserID:      userUUID,
		Description: req.Description,
		Amount:      amount,
		VATRate:     vatRate,
		VATAmount:   vatAmount,
		TotalAmount: amount.Add(vatAmount),
		IssueDate:   issueDate,
	}

	if req.ClientID != "" {
		parsed, parseErr := uuid.Parse(req.ClientID)
		if parseErr != nil {
			return InvoiceResponse{}, fmt.Errorf("invalid client_id: %w", parseErr)
		}
		invoice.ClientID = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seq, countErr := s.invoiceRepo.CountByYear(txCtx, userUUID, issueDate.Year())
		if countErr != nil {
			return fmt.Errorf("failed to derive invoice number: %w", countErr)
		}
		invoice.InvoiceNo = fmt.Sprintf("INV-%d-%04d", issueDate.Year(), seq+1)

		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}

		s.writeAuditLog(txCtx, userID, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNo, req)
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.invalidateDashboard(ctx, userID)
	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, userID, id string, req UpdateInvoiceRequest) (InvoiceResponse, error) {
	userUUID, invoiceUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return InvoiceResponse{}, err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, userUUID, invoiceUUID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found")
	}

	amount, vatRate, issueDate, err := parseInvoiceFields(req.Amount, req.VATRate, req.IssueDate)
	if err != nil {
		return InvoiceResponse{}, err
	}

	vatAmount := amount.Mul(vatRate).Div(decimal.NewFromInt(100))

	invoice.Description = req.Description
	invoice.Amount = amount
	invoice.VATRate = vatRate
	invoice.VATAmount = vatAmount
	invoice.TotalAmount = amount.Add(vatAmount)
	invoice.IssueDate = issueDate

	invoice.ClientID = nil
	if req.ClientID != "" {
		parsed, parseErr := uuid.Parse(req.ClientID)
		if parseErr != nil {
			return InvoiceResponse{}, fmt.Errorf("invalid client_id: %w", parseErr)
		}
		invoice.ClientID = &parsed
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to update invoice: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionUpdateInvoice, invoice.ID.String(), invoice.InvoiceNo, req)
	s.invalidateDashboard(ctx, userID)
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, userID, id string) error {
	userUUID, invoiceUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, userUUID, invoiceUUID)
	if err != nil {
		return fmt.Errorf("invoice not found")
	}

	if err := s.invoiceRepo.Delete(ctx, userUUID, invoiceUUID); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionDeleteInvoice, id, invoice.InvoiceNo, map[string]string{"deleted_id": id})
	s.invalidateDashboard(ctx, userID)
	return nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, userID, id string) (InvoiceResponse, error) {
	userUUID, invoiceUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return InvoiceResponse{}, err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, userUUID, invoiceUUID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found")
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, userID string, page, limit int) ([]InvoiceResponse, int64, error) {
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

	invoices, total, err := s.invoiceRepo.List(ctx, userUUID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, userID, id, paymentDate string) (InvoiceResponse, error) {
	userUUID, invoiceUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return InvoiceResponse{}, err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, userUUID, invoiceUUID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found")
	}

	paidAt := time.Now()
	if paymentDate != "" {
		parsed, parseErr := time.Parse("2006-01-02", paymentDate)
		if parseErr != nil {
			return InvoiceResponse{}, fmt.Errorf("invalid payment_date format (expected YYYY-MM-DD): %w", parseErr)
		}
		paidAt = parsed
	}
	invoice.PaymentDate = &paidAt

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionMarkInvoicePaid, invoice.ID.String(), invoice.InvoiceNo, map[string]string{"payment_date": paidAt.Format("2006-01-02")})
	s.invalidateDashboard(ctx, userID)
	return toInvoiceResponse(*invoice), nil
}

// --- Helpers ---

func parseInvoiceFields(amountStr, vatRateStr, issueDateStr string) (decimal.Decimal, decimal.Decimal, time.Time, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, time.Time{}, fmt.Errorf("invalid amount: %w", err)
	}
	if amount.IsNegative() {
		return decimal.Zero, decimal.Zero, time.Time{}, fmt.Errorf("amount must not be negative")
	}

	vatRate := decimal.Zero
	if vatRateStr != "" {
		vatRate, err = decimal.NewFromString(vatRateStr)
		if err != nil {
			return decimal.Zero, decimal.Zero, time.Time{}, fmt.Errorf("invalid vat_rate: %w", err)
		}
	}

	issueDate, err := time.Parse("2006-01-02", issueDateStr)
	if err != nil {
		return decimal.Zero, decimal.Zero, time.Time{}, fmt.Errorf("invalid issue_date format (expected YYYY-MM-DD): %w", err)
	}

	return amount, vatRate, issueDate, nil
}

func parseUserEntityIDs(userID, entityID string) (uuid.UUID, uuid.UUID, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid user id: %w", err)
	}
	entityUUID, err := uuid.Parse(entityID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid id: %w", err)
	}
	return userUUID, entityUUID, nil
}

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:          inv.ID.String(),
		InvoiceNo:   inv.InvoiceNo,
		Description: inv.Description,
		Amount:      inv.Amount.StringFixed(2),
		VATRate:     inv.VATRate.StringFixed(2),
		VATAmount:   inv.VATAmount.StringFixed(2),
		TotalAmount: inv.TotalAmount.StringFixed(2),
		IssueDate:   inv.IssueDate.Format("2006-01-02"),
		CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.ClientID != nil {
		s := inv.ClientID.String()
		resp.ClientID = &s
	}
	if inv.Client != nil {
		resp.ClientName = inv.Client.Name
	}
	if inv.PaymentDate != nil {
		s := inv.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &s
	}
	return resp
}

func (s *invoiceService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
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

	// Best-effort audit log — don't fail the operation if logging fails
	_ = s.auditRepo.Log(ctx, &entry)
}

// invalidateDashboard drops cached computation results and notifies
// connected dashboards. Best effort on both counts.
func (s *invoiceService) invalidateDashboard(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, taxesCacheKey(userID), profitCacheKey(userID))
	}
	if s.hub != nil {
		s.hub.NotifyRefresh(userID)
	}
}
