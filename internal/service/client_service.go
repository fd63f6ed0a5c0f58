package service

import (
	"context"
	"encoding/json"
	"fmt"

	"pivadash/internal/model"
	"pivadash/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateClientRequest struct {
	Name          string `json:"name" binding:"required"`
	VATNumber     string `json:"vat_number"`
	TaxCode       string `json:"tax_code"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email" binding:"omitempty,email"`
}

type UpdateClientRequest struct {
	Name          string `json:"name" binding:"required"`
	VATNumber     string `json:"vat_number"`
	TaxCode       string `json:"tax_code"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email" binding:"omitempty,email"`
	IsActive      *bool  `json:"is_active"`
}

type ClientResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	VATNumber     string `json:"vat_number"`
	TaxCode       string `json:"tax_code"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, userID string, req CreateClientRequest) (ClientResponse, error)
	UpdateClient(ctx context.Context, userID, id string, req UpdateClientRequest) (ClientResponse, error)
	DeleteClient(ctx context.Context, userID, id string) error
	GetClient(ctx context.Context, userID, id string) (ClientResponse, error)
	ListClients(ctx context.Context, userID string, page, limit int) ([]ClientResponse, int64, error)
}

type clientService struct {
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
}

func NewClientService(clientRepo repository.ClientRepository, auditRepo repository.AuditRepository) ClientService {
	return &clientService{clientRepo: clientRepo, auditRepo: auditRepo}
}

// --- Implementation ---

func (s *clientService) CreateClient(ctx context.Context, userID string, req CreateClientRequest) (ClientResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	client := model.Client{
		UserID:        userUUID,
		Name:          req.Name,
		VATNumber:     req.VATNumber,
		TaxCode:       req.TaxCode,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		IsActive:      true,
	}

	if err := s.clientRepo.Create(ctx, &client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionCreateClient, client.ID.String(), req.Name, req)
	return toClientResponse(client), nil
}

func (s *clientService) UpdateClient(ctx context.Context, userID, id string, req UpdateClientRequest) (ClientResponse, error) {
	userUUID, clientUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return ClientResponse{}, err
	}

	client, err := s.clientRepo.FindByID(ctx, userUUID, clientUUID)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("client not found")
	}

	client.Name = req.Name
	client.VATNumber = req.VATNumber
	client.TaxCode = req.TaxCode
	client.Address = req.Address
	client.ContactPerson = req.ContactPerson
	client.Email = req.Email
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to update client: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionUpdateClient, client.ID.String(), req.Name, req)
	return toClientResponse(*client), nil
}

func (s *clientService) DeleteClient(ctx context.Context, userID, id string) error {
	userUUID, clientUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return err
	}

	client, err := s.clientRepo.FindByID(ctx, userUUID, clientUUID)
	if err != nil {
		return fmt.Errorf("client not found")
	}

	if err := s.clientRepo.Delete(ctx, userUUID, clientUUID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	s.writeAuditLog(ctx, userID, model.ActionDeleteClient, id, client.Name, map[string]string{"deleted_id": id})
	return nil
}

func (s *clientService) GetClient(ctx context.Context, userID, id string) (ClientResponse, error) {
	userUUID, clientUUID, err := parseUserEntityIDs(userID, id)
	if err != nil {
		return ClientResponse{}, err
	}

	client, err := s.clientRepo.FindByID(ctx, userUUID, clientUUID)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("client not found")
	}
	return toClientResponse(*client), nil
}

func (s *clientService) ListClients(ctx context.Context, userID string, page, limit int) ([]ClientResponse, int64, error) {
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

	clients, total, err := s.clientRepo.List(ctx, userUUID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	result := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		result = append(result, toClientResponse(c))
	}
	return result, total, nil
}

// --- Helpers ---

func toClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		VATNumber:     c.VATNumber,
		TaxCode:       c.TaxCode,
		Address:       c.Address,
		ContactPerson: c.ContactPerson,
		Email:         c.Email,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *clientService) writeAuditLog(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
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
