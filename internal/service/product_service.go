package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakery-backend/internal/apperr"
	"bakery-backend/internal/model"
	"bakery-backend/internal/repository"
	"bakery-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// placeholderImage is used when a product is added without a photo.
const placeholderImage = "https://via.placeholder.com/150"

// --- DTOs ---

type CreateProductRequest struct {
	Name     string
	Price    string
	Category string
	Image    *storage.Upload // optional
}

type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Image     string          `json:"image"`
	CreatedAt time.Time       `json:"created_at"`
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest, baseURL string) (ProductResponse, error)
	GetProducts(ctx context.Context, category, baseURL string) ([]ProductResponse, error)
	GetProductByID(ctx context.Context, id, baseURL string) (ProductResponse, error)
	DeleteProduct(ctx context.Context, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
	blobs       storage.BlobStore
}

func NewProductService(productRepo repository.ProductRepository, blobs storage.BlobStore) ProductService {
	return &productService{productRepo: productRepo, blobs: blobs}
}

// --- Implementation ---

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest, baseURL string) (ProductResponse, error) {
	if req.Name == "" {
		return ProductResponse{}, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if req.Category == "" {
		return ProductResponse{}, fmt.Errorf("%w: category is required", apperr.ErrValidation)
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return ProductResponse{}, fmt.Errorf("%w: price must be a non-negative number", apperr.ErrValidation)
	}

	image := placeholderImage
	if req.Image != nil {
		ref, err := s.blobs.Put("product", req.Image.OriginalName, req.Image.Content)
		if err != nil {
			return ProductResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
		}
		image = ref
	}

	product := &model.Product{
		Name:     req.Name,
		Price:    price,
		Category: req.Category,
		Image:    image,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return ProductResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	return s.toProductResponse(product, baseURL), nil
}

func (s *productService) GetProducts(ctx context.Context, category, baseURL string) ([]ProductResponse, error) {
	products, err := s.productRepo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	res := make([]ProductResponse, 0, len(products))
	for i := range products {
		res = append(res, s.toProductResponse(&products[i], baseURL))
	}
	return res, nil
}

func (s *productService) GetProductByID(ctx context.Context, id, baseURL string) (ProductResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ProductResponse{}, fmt.Errorf("%w: invalid product id", apperr.ErrValidation)
	}
	product, err := s.productRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProductResponse{}, fmt.Errorf("%w: product %s", apperr.ErrNotFound, id)
		}
		return ProductResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return s.toProductResponse(product, baseURL), nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid product id", apperr.ErrValidation)
	}
	product, err := s.productRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %s", apperr.ErrNotFound, id)
		}
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	if product.Image != "" && product.Image != placeholderImage {
		_ = s.blobs.Delete(product.Image)
	}
	if err := s.productRepo.Delete(ctx, uid); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}

func (s *productService) toProductResponse(p *model.Product, baseURL string) ProductResponse {
	image := p.Image
	if image != "" && image != placeholderImage {
		image = s.blobs.URL(baseURL, image)
	}
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		Image:     image,
		CreatedAt: p.CreatedAt,
	}
}
