package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/model"
	"bakery-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type PlaceOrderRequest struct {
	Items   []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Address map[string]any     `json:"address" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type OrderItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	UserID        uuid.UUID           `json:"user_id"`
	Items         []OrderItemResponse `json:"items"`
	Amount        decimal.Decimal     `json:"amount"`
	Address       map[string]any      `json:"address"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	Payment       bool                `json:"payment"`
	CreatedAt     time.Time           `json:"created_at"`
}

// --- Interface ---

type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (OrderResponse, error)
	GetUserOrders(ctx context.Context, userID string) ([]OrderResponse, error)
	GetOrders(ctx context.Context, page, limit int) ([]OrderResponse, int64, error)
	UpdateStatus(ctx context.Context, id string, req UpdateOrderStatusRequest) (OrderResponse, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	txManager   repository.TransactionManager
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		txManager:   txManager,
	}
}

// --- Helpers ---

var validOrderStatuses = map[string]bool{
	model.OrderPlaced:         true,
	model.OrderPacking:        true,
	model.OrderShipped:        true,
	model.OrderOutForDelivery: true,
	model.OrderDelivered:      true,
}

// --- Implementation ---

// PlaceOrder snapshots product names and prices into the order lines and
// clears the user's cart once the order is stored.
func (s *orderService) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest) (OrderResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid user id", apperr.ErrValidation)
	}
	if len(req.Items) == 0 {
		return OrderResponse{}, fmt.Errorf("%w: at least one item is required", apperr.ErrValidation)
	}

	amount := decimal.Zero
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return OrderResponse{}, fmt.Errorf("%w: invalid product id %q", apperr.ErrValidation, item.ProductID)
		}
		if item.Quantity <= 0 {
			return OrderResponse{}, fmt.Errorf("%w: item quantity must be positive", apperr.ErrValidation)
		}
		product, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return OrderResponse{}, fmt.Errorf("%w: product %s", apperr.ErrNotFound, item.ProductID)
			}
			return OrderResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
		amount = amount.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}

	order := &model.Order{
		UserID:        uid,
		Items:         items,
		Amount:        amount,
		Address:       req.Address,
		Status:        model.OrderPlaced,
		PaymentMethod: model.PaymentCOD,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return err
		}
		user, err := s.userRepo.GetByID(txCtx, userID)
		if err != nil {
			return err
		}
		user.CartData = map[string]int{}
		return s.userRepo.Update(txCtx, user)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
		}
		return OrderResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	return toOrderResponse(order), nil
}

func (s *orderService) GetUserOrders(ctx context.Context, userID string) ([]OrderResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", apperr.ErrValidation)
	}
	orders, err := s.orderRepo.ListByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, toOrderResponse(&orders[i]))
	}
	return res, nil
}

func (s *orderService) GetOrders(ctx context.Context, page, limit int) ([]OrderResponse, int64, error) {
	orders, total, err := s.orderRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, toOrderResponse(&orders[i]))
	}
	return res, total, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, req UpdateOrderStatusRequest) (OrderResponse, error) {
	if !validOrderStatuses[req.Status] {
		return OrderResponse{}, fmt.Errorf("%w: unknown order status %q", apperr.ErrValidation, req.Status)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: invalid order id", apperr.ErrValidation)
	}
	order, err := s.orderRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderResponse{}, fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
		}
		return OrderResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	order.Status = req.Status
	if req.Status == model.OrderDelivered && order.PaymentMethod == model.PaymentCOD {
		order.Payment = true
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.orderRepo.Save(txCtx, order)
	})
	if err != nil {
		return OrderResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return toOrderResponse(order), nil
}

func toOrderResponse(o *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         items,
		Amount:        o.Amount,
		Address:       o.Address,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Payment:       o.Payment,
		CreatedAt:     o.CreatedAt,
	}
}
