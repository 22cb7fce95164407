package service

import (
	"context"
	"errors"
	"fmt"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type UpdateCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"gte=0"`
}

// --- Interface ---

// CartService manages the per-user cart stored on the user row.
type CartService interface {
	AddToCart(ctx context.Context, userID string, req CartItemRequest) (map[string]int, error)
	UpdateCart(ctx context.Context, userID string, req UpdateCartRequest) (map[string]int, error)
	GetCart(ctx context.Context, userID string) (map[string]int, error)
}

type cartService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	txManager   repository.TransactionManager
}

func NewCartService(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	txManager repository.TransactionManager,
) CartService {
	return &cartService{
		userRepo:    userRepo,
		productRepo: productRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *cartService) AddToCart(ctx context.Context, userID string, req CartItemRequest) (map[string]int, error) {
	if err := s.checkProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	var cart map[string]int
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.GetByID(txCtx, userID)
		if err != nil {
			return err
		}
		if user.CartData == nil {
			user.CartData = map[string]int{}
		}
		user.CartData[req.ProductID]++
		if err := s.userRepo.Update(txCtx, user); err != nil {
			return err
		}
		cart = user.CartData
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return cart, nil
}

// UpdateCart sets the quantity for a product; zero removes the line.
func (s *cartService) UpdateCart(ctx context.Context, userID string, req UpdateCartRequest) (map[string]int, error) {
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", apperr.ErrValidation)
	}
	if err := s.checkProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}

	var cart map[string]int
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		user, err := s.userRepo.GetByID(txCtx, userID)
		if err != nil {
			return err
		}
		if user.CartData == nil {
			user.CartData = map[string]int{}
		}
		if req.Quantity == 0 {
			delete(user.CartData, req.ProductID)
		} else {
			user.CartData[req.ProductID] = req.Quantity
		}
		if err := s.userRepo.Update(txCtx, user); err != nil {
			return err
		}
		cart = user.CartData
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (map[string]int, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, userID)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if user.CartData == nil {
		return map[string]int{}, nil
	}
	return user.CartData, nil
}

func (s *cartService) checkProduct(ctx context.Context, productID string) error {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return fmt.Errorf("%w: invalid product id", apperr.ErrValidation)
	}
	if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", apperr.ErrNotFound, productID)
		}
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}
