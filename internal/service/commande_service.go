package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/model"
	"bakery-backend/internal/repository"
	ws "bakery-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CommandeItemRequest struct {
	Name     string `json:"name" binding:"required"`
	Price    string `json:"price" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type CreateCommandeRequest struct {
	ClientPhone string                `json:"client_phone" binding:"required"`
	Description string                `json:"description"`
	Items       []CommandeItemRequest `json:"items" binding:"required,min=1,dive"`
	Avance      string                `json:"avance"`
}

type UpdateCommandeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateCommandeAvanceRequest struct {
	Avance string `json:"avance" binding:"required"`
}

type CommandeItemResponse struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type CommandeResponse struct {
	ID          uuid.UUID              `json:"id"`
	Code        string                 `json:"code"`
	ClientPhone string                 `json:"client_phone"`
	Description string                 `json:"description"`
	Items       []CommandeItemResponse `json:"items"`
	Total       decimal.Decimal        `json:"total"`
	Avance      decimal.Decimal        `json:"avance"`
	Reste       decimal.Decimal        `json:"reste"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
}

// --- Interface ---

type CommandeService interface {
	CreateCommande(ctx context.Context, req CreateCommandeRequest) (CommandeResponse, error)
	GetCommandes(ctx context.Context, status string, page, limit int) ([]CommandeResponse, int64, error)
	GetCommandeByCode(ctx context.Context, code string) (CommandeResponse, error)
	UpdateStatus(ctx context.Context, id string, req UpdateCommandeStatusRequest) (CommandeResponse, error)
	UpdateAvance(ctx context.Context, id string, req UpdateCommandeAvanceRequest) (CommandeResponse, error)
	DeleteCommande(ctx context.Context, id string) error
}

type commandeService struct {
	commandeRepo repository.CommandeRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewCommandeService(
	commandeRepo repository.CommandeRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) CommandeService {
	return &commandeService{
		commandeRepo: commandeRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Helpers ---

var validCommandeStatuses = map[string]bool{
	model.CommandePending:   true,
	model.CommandePreparing: true,
	model.CommandeReady:     true,
	model.CommandeCompleted: true,
	model.CommandeCancelled: true,
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateCode returns a random 6-character tracking code.
func generateCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf), nil
}

// uniqueCode retries generation until the code is unused. Collisions are
// rare with 36^6 combinations, so a handful of attempts is plenty.
func (s *commandeService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		_, err = s.commandeRepo.FindByCode(ctx, code)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not generate a unique commande code")
}

func (s *commandeService) findCommande(ctx context.Context, id string) (*model.Commande, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid commande id", apperr.ErrValidation)
	}
	commande, err := s.commandeRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: commande %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return commande, nil
}

// notifyStatus pushes a status change to connected dashboard clients.
// The send is non-blocking so a stalled dispatcher never holds up a request.
func (s *commandeService) notifyStatus(commande *model.Commande) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"event":  "commande_status",
		"code":   commande.Code,
		"status": commande.Status,
	})
	if err != nil {
		return
	}
	select {
	case s.hub.Broadcast <- payload:
	default:
	}
}

// --- Implementation ---

func (s *commandeService) CreateCommande(ctx context.Context, req CreateCommandeRequest) (CommandeResponse, error) {
	if len(req.Items) == 0 {
		return CommandeResponse{}, fmt.Errorf("%w: at least one item is required", apperr.ErrValidation)
	}

	total := decimal.Zero
	items := make([]model.CommandeItem, 0, len(req.Items))
	for _, item := range req.Items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil || price.IsNegative() {
			return CommandeResponse{}, fmt.Errorf("%w: item price must be a non-negative number", apperr.ErrValidation)
		}
		if item.Quantity <= 0 {
			return CommandeResponse{}, fmt.Errorf("%w: item quantity must be positive", apperr.ErrValidation)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, model.CommandeItem{
			Name:     item.Name,
			Price:    price,
			Quantity: item.Quantity,
		})
	}

	avance, err := parseLenientAmount(req.Avance)
	if err != nil {
		return CommandeResponse{}, err
	}
	if avance.GreaterThan(total) {
		return CommandeResponse{}, fmt.Errorf("%w: avance cannot exceed total", apperr.ErrValidation)
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return CommandeResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	commande := &model.Commande{
		Code:        code,
		ClientPhone: req.ClientPhone,
		Description: req.Description,
		Items:       items,
		Total:       total,
		Avance:      avance,
		Reste:       total.Sub(avance),
		Status:      model.CommandePending,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.commandeRepo.Create(txCtx, commande)
	})
	if err != nil {
		return CommandeResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	return toCommandeResponse(commande), nil
}

func (s *commandeService) GetCommandes(ctx context.Context, status string, page, limit int) ([]CommandeResponse, int64, error) {
	if status != "" && !validCommandeStatuses[status] {
		return nil, 0, fmt.Errorf("%w: unknown status %q", apperr.ErrValidation, status)
	}
	commandes, total, err := s.commandeRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	res := make([]CommandeResponse, 0, len(commandes))
	for i := range commandes {
		res = append(res, toCommandeResponse(&commandes[i]))
	}
	return res, total, nil
}

func (s *commandeService) GetCommandeByCode(ctx context.Context, code string) (CommandeResponse, error) {
	commande, err := s.commandeRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CommandeResponse{}, fmt.Errorf("%w: commande %s", apperr.ErrNotFound, code)
		}
		return CommandeResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return toCommandeResponse(commande), nil
}

func (s *commandeService) UpdateStatus(ctx context.Context, id string, req UpdateCommandeStatusRequest) (CommandeResponse, error) {
	if !validCommandeStatuses[req.Status] {
		return CommandeResponse{}, fmt.Errorf("%w: status must be one of: pending, preparing, ready, completed, cancelled", apperr.ErrValidation)
	}

	commande, err := s.findCommande(ctx, id)
	if err != nil {
		return CommandeResponse{}, err
	}

	changed := commande.Status != req.Status
	commande.Status = req.Status

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.commandeRepo.Save(txCtx, commande)
	})
	if err != nil {
		return CommandeResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	if changed {
		s.notifyStatus(commande)
	}
	return toCommandeResponse(commande), nil
}

func (s *commandeService) UpdateAvance(ctx context.Context, id string, req UpdateCommandeAvanceRequest) (CommandeResponse, error) {
	avance, err := decimal.NewFromString(req.Avance)
	if err != nil || avance.IsNegative() {
		return CommandeResponse{}, fmt.Errorf("%w: avance must be a non-negative number", apperr.ErrValidation)
	}

	commande, err := s.findCommande(ctx, id)
	if err != nil {
		return CommandeResponse{}, err
	}
	if avance.GreaterThan(commande.Total) {
		return CommandeResponse{}, fmt.Errorf("%w: avance cannot exceed total", apperr.ErrValidation)
	}

	commande.Avance = avance
	commande.Reste = commande.Total.Sub(avance)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.commandeRepo.Save(txCtx, commande)
	})
	if err != nil {
		return CommandeResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return toCommandeResponse(commande), nil
}

func (s *commandeService) DeleteCommande(ctx context.Context, id string) error {
	commande, err := s.findCommande(ctx, id)
	if err != nil {
		return err
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.commandeRepo.Delete(txCtx, commande.ID)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}

func toCommandeResponse(c *model.Commande) CommandeResponse {
	items := make([]CommandeItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CommandeItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return CommandeResponse{
		ID:          c.ID,
		Code:        c.Code,
		ClientPhone: c.ClientPhone,
		Description: c.Description,
		Items:       items,
		Total:       c.Total,
		Avance:      c.Avance,
		Reste:       c.Reste,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
}
