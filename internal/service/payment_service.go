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
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RecordPaymentRequest struct {
	Type        string `json:"type" binding:"required,oneof=tax pension"`
	Description string `json:"description"`
	Amount      string `json:"amount" binding:"required"` // Decimal string
	DueDate     string `json:"due_date" binding:"required"`
	PaidAt      string `json:"paid_at"` // YYYY-MM-DD, empty = still outstanding
}

type PaymentResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	DueDate     string  `json:"due_date"`
	PaidAt      *string `json:"paid_at"`
	IsPaid      bool    `json:"is_paid"`
}

// ScheduleEntry is a projected obligation reconciled against the recorded
// payment ledger.
type ScheduleEntry struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
	Type        string  `json:"type"`
	IsPaid      bool    `json:"is_paid"`
}

// --- Interface ---

type PaymentService interface {
	GetSchedule(ctx context.Context, userID string) ([]ScheduleEntry, error)
	RecordPayment(ctx context.Context, userID string, req RecordPaymentRequest) (PaymentResponse, error)
	MarkPaid(ctx context.Context, userID, id, paidAt string) error
	ListPayments(ctx context.Context, userID string, year int) ([]PaymentResponse, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	dashboard   DashboardService
	auditRepo   repository.AuditRepository
	now         func() time.Time
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	dashboard DashboardService,
	auditRepo repository.AuditRepository,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		dashboard:   dashboard,
		auditRepo:   auditRepo,
		now:         time.Now,
	}
}

// --- Implementation ---

// GetSchedule projects the next obligations from the current tax computation
// and marks entries paid when a matching ledger row exists. The engine always
// emits IsPaid=false; the ledger is the source of truth for paid state.
func (s *paymentService) GetSchedule(ctx context.Context, userID string) ([]ScheduleEntry, error) {
	taxes, err := s.dashboard.GetTaxes(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	ref := s.now()
	recorded, err := s.paymentRepo.ListByYear(ctx, userUUID, ref.Year())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recorded payments: %w", err)
	}
	// Obligations due in January belong to next year's ledger.
	if next, nextErr := s.paymentRepo.ListByYear(ctx, userUUID, ref.Year()+1); nextErr == nil {
		recorded = append(recorded, next...)
	}

	entries := make([]ScheduleEntry, 0, len(taxes.NextPayments))
	for _, obligation := range taxes.NextPayments {
		entries = append(entries, ScheduleEntry{
			Description: obligation.Description,
			Amount:      obligation.Amount,
			DueDate:     obligation.DueDate.Format("2006-01-02"),
			Type:        string(obligation.Type),
			IsPaid:      isReconciled(obligation, recorded),
		})
	}
	return entries, nil
}

func (s *paymentService) RecordPayment(ctx context.Context, userID string, req RecordPaymentRequest) (PaymentResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid amount: %w", err)
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return PaymentResponse{}, fmt.Errorf("invalid due_date format (expected YYYY-MM-DD): %w", err)
	}

	payment := model.TaxPayment{
		UserID:      userUUID,
		Type:        req.Type,
		Description: req.Description,
		Amount:      amount,
		DueDate:     dueDate,
	}
	if req.PaidAt != "" {
		paidAt, parseErr := time.Parse("2006-01-02", req.PaidAt)
		if parseErr != nil {
			return PaymentResponse{}, fmt.Errorf("invalid paid_at format (expected YYYY-MM-DD): %w", parseErr)
		}
		payment.PaidAt = &paidAt
	}

	if err := s.paymentRepo.Create(ctx, &payment); err != nil {
		return PaymentResponse{}, fmt.Errorf("failed to record payment: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionRecordPayment, payment.ID.String(), req.Description, req)
	return toPaymentResponse(payment), nil
}

func (s *paymentService) MarkPaid(ctx context.Context, userID, id, paidAt string) error {
	userUUID, paymentUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return err
	}

	when := s.now()
	if paidAt != "" {
		parsed, parseErr := time.Parse("2006-01-02", paidAt)
		if parseErr != nil {
			return fmt.Errorf("invalid paid_at format (expected YYYY-MM-DD): %w", parseErr)
		}
		when = parsed
	}

	if err := s.paymentRepo.MarkPaid(ctx, userUUID, paymentUUID, when); err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionRecordPayment, id, "", map[string]string{"paid_at": when.Format("2006-01-02")})
	return nil
}

func (s *paymentService) ListPayments(ctx context.Context, userID string, year int) ([]PaymentResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if year == 0 {
		year = s.now().Year()
	}

	payments, err := s.paymentRepo.ListByYear(ctx, userUUID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, toPaymentResponse(p))
	}
	return result, nil
}

// --- Helpers ---

func isReconciled(obligation fiscal.PaymentObligation, recorded []model.TaxPayment) bool {
	for _, p := range recorded {
		if p.PaidAt == nil {
			continue
		}
		sameType := p.Type == string(obligation.Type)
		sameDue := p.DueDate.Format("2006-01-02") == obligation.DueDate.Format("2006-01-02")
		if sameType && sameDue {
			return true
		}
	}
	return false
}

func toPaymentResponse(p model.TaxPayment) PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID.String(),
		Type:        p.Type,
		Description: p.Description,
		Amount:      p.Amount.StringFixed(2),
		DueDate:     p.DueDate.Format("2006-01-02"),
		IsPaid:      p.PaidAt != nil,
	}
	if p.PaidAt != nil {
		s := p.PaidAt.Format("2006-01-02")
		resp.PaidAt = &s
	}
	return resp
}

func (s *paymentService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
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
