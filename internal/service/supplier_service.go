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

// blobPrefix is the filename prefix for voucher scans.
const blobPrefix = "bonne"

// --- DTOs ---

// CreateSupplierRequest carries the multipart create form. Amount and
// Description are shared across the whole image batch: one voucher is
// created per uploaded image, each with the same amount.
type CreateSupplierRequest struct {
	FullName    string
	Phone       string
	Category    string
	IsHidden    bool
	Amount      string
	Description string
	Images      []storage.Upload
}

type UpdateSupplierRequest struct {
	FullName *string
	Phone    *string
	Category *string
	IsHidden *bool
	// When Images are attached, the update behaves like a voucher
	// append: one voucher per image with the shared Amount/Description.
	Amount      string
	Description string
	Images      []storage.Upload
}

type AddVoucherRequest struct {
	Amount      string
	Date        string // RFC3339, optional
	Description string
	Images      []storage.Upload
}

type RecordPaymentRequest struct {
	Amount      string `json:"amount" binding:"required"`
	VoucherID   string `json:"voucher_id"`
	Description string `json:"description"`
}

type ImageResponse struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type VoucherResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Images      []ImageResponse `json:"images"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	IsPaid      bool            `json:"is_paid"`
}

type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	VoucherID   *uuid.UUID      `json:"voucher_id"`
}

type SupplierResponse struct {
	ID             uuid.UUID         `json:"id"`
	FullName       string            `json:"full_name"`
	Phone          string            `json:"phone"`
	Category       string            `json:"category"`
	IsHidden       bool              `json:"is_hidden"`
	TotalPurchased decimal.Decimal   `json:"total_purchased"`
	TotalPaid      decimal.Decimal   `json:"total_paid"`
	Vouchers       []VoucherResponse `json:"vouchers"`
	Payments       []PaymentResponse `json:"payments"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// --- Interface ---

type SupplierService interface {
	CreateSupplier(ctx context.Context, req CreateSupplierRequest, baseURL string) (SupplierResponse, error)
	GetSuppliers(ctx context.Context, baseURL string) ([]SupplierResponse, error)
	GetSupplierByID(ctx context.Context, id string, baseURL string) (SupplierResponse, error)
	UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest, baseURL string) (SupplierResponse, error)
	ToggleHidden(ctx context.Context, id string, isHidden bool) (SupplierResponse, error)
	DeleteSupplier(ctx context.Context, id string) error

	AddVoucher(ctx context.Context, id string, req AddVoucherRequest, baseURL string) (SupplierResponse, error)
	GetVoucher(ctx context.Context, id, voucherID, baseURL string) (VoucherResponse, error)
	AddVoucherImages(ctx context.Context, id, voucherID string, images []storage.Upload, baseURL string) (SupplierResponse, error)
	DeleteVoucherImage(ctx context.Context, id, voucherID, imageRef string) error

	RecordPayment(ctx context.Context, id string, req RecordPaymentRequest, baseURL string) (SupplierResponse, error)
	GetWeeklyStats(ctx context.Context, id string, now time.Time) (WeeklyStats, error)
}

// --- Implementation ---

type supplierService struct {
	supplierRepo repository.SupplierRepository
	blobs        storage.BlobStore
	txManager    repository.TransactionManager
}

func NewSupplierService(
	supplierRepo repository.SupplierRepository,
	blobs storage.BlobStore,
	txManager repository.TransactionManager,
) SupplierService {
	return &supplierService{supplierRepo: supplierRepo, blobs: blobs, txManager: txManager}
}

// --- Validation helpers ---

var validCategories = map[string]bool{
	model.CategoryPackaging:  true,
	model.CategoryFruits:     true,
	model.CategoryVegetables: true,
	model.CategoryMeat:       true,
	model.CategoryDairy:      true,
	model.CategoryOther:      true,
}

// parseLenientAmount mirrors the historical form handling: a missing or
// unparseable amount falls back to zero, but an explicit negative is
// rejected.
func parseLenientAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, nil
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: amount cannot be negative", apperr.ErrValidation)
	}
	return amount, nil
}

func (s *supplierService) findSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid supplier id", apperr.ErrValidation)
	}
	supplier, err := s.supplierRepo.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: supplier %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return supplier, nil
}

func findVoucher(supplier *model.Supplier, voucherID string) (*model.Voucher, error) {
	vid, err := uuid.Parse(voucherID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid voucher id", apperr.ErrValidation)
	}
	for i := range supplier.Vouchers {
		if supplier.Vouchers[i].ID == vid {
			return &supplier.Vouchers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: voucher %s", apperr.ErrNotFound, voucherID)
}

// storeBatch stores every upload, returning the references that made it.
// A failure does not stop the batch; the first error is reported after
// all uploads were attempted.
func (s *supplierService) storeBatch(images []storage.Upload) ([]string, error) {
	var refs []string
	var firstErr error
	for _, img := range images {
		ref, err := s.blobs.Put(blobPrefix, img.OriginalName, img.Content)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		refs = append(refs, ref)
	}
	if firstErr != nil {
		return refs, fmt.Errorf("%w: %v", apperr.ErrStorage, firstErr)
	}
	return refs, nil
}

// --- Supplier CRUD ---

func (s *supplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest, baseURL string) (SupplierResponse, error) {
	if req.FullName == "" {
		return SupplierResponse{}, fmt.Errorf("%w: full_name is required", apperr.ErrValidation)
	}
	if req.Phone == "" {
		return SupplierResponse{}, fmt.Errorf("%w: phone is required", apperr.ErrValidation)
	}
	if !validCategories[req.Category] {
		return SupplierResponse{}, fmt.Errorf("%w: category must be one of: packaging, fruits, vegetables, meat, dairy, other", apperr.ErrValidation)
	}
	amount, err := parseLenientAmount(req.Amount)
	if err != nil {
		return SupplierResponse{}, err
	}

	supplier := &model.Supplier{
		FullName:       req.FullName,
		Phone:          req.Phone,
		Category:       req.Category,
		IsHidden:       req.IsHidden,
		TotalPurchased: decimal.Zero,
		TotalPaid:      decimal.Zero,
	}

	// Creation is all-or-nothing: if any blob write fails, the batch is
	// unwound and no supplier row is persisted.
	refs, err := s.storeBatch(req.Images)
	if err != nil {
		for _, ref := range refs {
			_ = s.blobs.Delete(ref)
		}
		return SupplierResponse{}, err
	}

	// One voucher per uploaded image, all sharing the request amount.
	now := time.Now()
	for i, ref := range refs {
		supplier.Vouchers = append(supplier.Vouchers, model.Voucher{
			Position:    i,
			Amount:      amount,
			Date:        now,
			Description: req.Description,
			Images:      []string{ref},
			PaidAmount:  decimal.Zero,
		})
	}
	supplier.TotalPurchased = sumVoucherAmounts(supplier.Vouchers)

	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		for _, ref := range refs {
			_ = s.blobs.Delete(ref)
		}
		return SupplierResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	return s.toSupplierResponse(supplier, baseURL), nil
}

func (s *supplierService) GetSuppliers(ctx context.Context, baseURL string) ([]SupplierResponse, error) {
	suppliers, err := s.supplierRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	res := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		res = append(res, s.toSupplierResponse(&suppliers[i], baseURL))
	}
	return res, nil
}

func (s *supplierService) GetSupplierByID(ctx context.Context, id string, baseURL string) (SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return SupplierResponse{}, err
	}
	return s.toSupplierResponse(supplier, baseURL), nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, id string, req UpdateSupplierRequest, baseURL string) (SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return SupplierResponse{}, err
	}

	if req.FullName != nil {
		if *req.FullName == "" {
			return SupplierResponse{}, fmt.Errorf("%w: full_name cannot be empty", apperr.ErrValidation)
		}
		supplier.FullName = *req.FullName
	}
	if req.Phone != nil {
		if *req.Phone == "" {
			return SupplierResponse{}, fmt.Errorf("%w: phone cannot be empty", apperr.ErrValidation)
		}
		supplier.Phone = *req.Phone
	}
	if req.Category != nil {
		if !validCategories[*req.Category] {
			return SupplierResponse{}, fmt.Errorf("%w: invalid category", apperr.ErrValidation)
		}
		supplier.Category = *req.Category
	}
	if req.IsHidden != nil {
		supplier.IsHidden = *req.IsHidden
	}

	// Attached images behave exactly like the create form: one voucher
	// per image with the shared amount/description.
	var storeErr error
	if len(req.Images) > 0 {
		amount, err := parseLenientAmount(req.Amount)
		if err != nil {
			return SupplierResponse{}, err
		}
		var refs []string
		refs, storeErr = s.storeBatch(req.Images)
		now := time.Now()
		for _, ref := range refs {
			supplier.Vouchers = append(supplier.Vouchers, model.Voucher{
				SupplierID:  supplier.ID,
				Position:    len(supplier.Vouchers),
				Amount:      amount,
				Date:        now,
				Description: req.Description,
				Images:      []string{ref},
				PaidAmount:  decimal.Zero,
			})
		}
		supplier.TotalPurchased = sumVoucherAmounts(supplier.Vouchers)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.supplierRepo.Save(txCtx, supplier)
	})
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if storeErr != nil {
		// Images that made it are referenced; the failed siblings are
		// reported once, after the batch.
		return SupplierResponse{}, storeErr
	}

	return s.toSupplierResponse(supplier, baseURL), nil
}

func (s *supplierService) ToggleHidden(ctx context.Context, id string, isHidden bool) (SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return SupplierResponse{}, err
	}
	supplier.IsHidden = isHidden
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return SupplierResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return s.toSupplierResponse(supplier, ""), nil
}

func (s *supplierService) DeleteSupplier(ctx context.Context, id string) error {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return err
	}

	// Blob removal is best-effort: a dangling file must not block
	// removing the ledger record.
	for _, voucher := range supplier.Vouchers {
		for _, ref := range voucher.Images {
			_ = s.blobs.Delete(ref)
		}
	}

	if err := s.supplierRepo.Delete(ctx, supplier.ID); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}

// --- Vouchers ---

func (s *supplierService) AddVoucher(ctx context.Context, id string, req AddVoucherRequest, baseURL string) (SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return SupplierResponse{}, err
	}

	amount, err := parseLenientAmount(req.Amount)
	if err != nil {
		return SupplierResponse{}, err
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return SupplierResponse{}, fmt.Errorf("%w: date must be RFC3339", apperr.ErrValidation)
		}
		date = parsed
	}

	refs, storeErr := s.storeBatch(req.Images)

	voucher := model.Voucher{
		SupplierID:  supplier.ID,
		Position:    len(supplier.Vouchers),
		Amount:      amount,
		Date:        date,
		Description: req.Description,
		Images:      refs,
		PaidAmount:  decimal.Zero,
	}
	supplier.Vouchers = append(supplier.Vouchers, voucher)
	supplier.TotalPurchased = supplier.TotalPurchased.Add(amount)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.supplierRepo.Save(txCtx, supplier)
	})
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if storeErr != nil {
		return SupplierResponse{}, storeErr
	}

	return s.toSupplierResponse(supplier, baseURL), nil
}

func (s *supplierService) GetVoucher(ctx context.Context, id, voucherID, baseURL string) (VoucherResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return VoucherResponse{}, err
	}
	voucher, err := findVoucher(supplier, voucherID)
	if err != nil {
		return VoucherResponse{}, err
	}
	return s.toVoucherResponse(voucher, baseURL), nil
}

func (s *supplierService) AddVoucherImages(ctx context.Context, id, voucherID string, images []storage.Upload, baseURL string) (SupplierResponse, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return SupplierResponse{}, err
	}
	voucher, err := findVoucher(supplier, voucherID)
	if err != nil {
		return SupplierResponse{}, err
	}

	refs, storeErr := s.storeBatch(images)
	voucher.Images = append(voucher.Images, refs...)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.supplierRepo.Save(txCtx, supplier)
	})
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	if storeErr != nil {
		return SupplierResponse{}, storeErr
	}

	return s.toSupplierResponse(supplier, baseURL), nil
}

func (s *supplierService) DeleteVoucherImage(ctx context.Context, id, voucherID, imageRef string) error {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return err
	}
	voucher, err := findVoucher(supplier, voucherID)
	if err != nil {
		return err
	}

	// Removing an already-absent reference is a no-op, and so is
	// deleting an already-missing blob.
	kept := voucher.Images[:0]
	for _, ref := range voucher.Images {
		if ref != imageRef {
			kept = append(kept, ref)
		}
	}
	voucher.Images = kept

	if err := s.blobs.Delete(imageRef); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.supplierRepo.Save(txCtx, supplier)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}

// --- Payments ---

func (s *supplierService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest, baseURL string) (SupplierResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return SupplierResponse{}, fmt.Errorf("%w: amount must be a positive number", apperr.ErrValidation)
	}

	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return SupplierResponse{}, err
	}

	var voucherID *uuid.UUID
	if req.VoucherID != "" {
		vid, err := uuid.Parse(req.VoucherID)
		if err != nil {
			return SupplierResponse{}, fmt.Errorf("%w: invalid voucher id", apperr.ErrValidation)
		}
		voucherID = &vid
	}

	if err := allocatePayment(supplier.Vouchers, amount, voucherID); err != nil {
		return SupplierResponse{}, err
	}

	// The raw amount always lands in the legacy running total and the
	// audit trail, however much of it was actually allocable.
	supplier.TotalPaid = supplier.TotalPaid.Add(amount)
	supplier.Payments = append(supplier.Payments, model.Payment{
		SupplierID:  supplier.ID,
		Position:    len(supplier.Payments),
		Amount:      amount,
		Date:        time.Now(),
		Description: req.Description,
		VoucherID:   voucherID,
	})

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return s.supplierRepo.Save(txCtx, supplier)
	})
	if err != nil {
		return SupplierResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	return s.toSupplierResponse(supplier, baseURL), nil
}

func (s *supplierService) GetWeeklyStats(ctx context.Context, id string, now time.Time) (WeeklyStats, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return WeeklyStats{}, err
	}
	return ComputeWeeklyStats(supplier, now), nil
}

// --- Response mappers ---

func (s *supplierService) toVoucherResponse(v *model.Voucher, baseURL string) VoucherResponse {
	images := make([]ImageResponse, 0, len(v.Images))
	for _, ref := range v.Images {
		images = append(images, ImageResponse{
			Filename: ref,
			URL:      s.blobs.URL(baseURL, ref),
		})
	}
	return VoucherResponse{
		ID:          v.ID,
		Amount:      v.Amount,
		Date:        v.Date,
		Description: v.Description,
		Images:      images,
		PaidAmount:  v.PaidAmount,
		IsPaid:      v.IsPaid,
	}
}

func (s *supplierService) toSupplierResponse(supplier *model.Supplier, baseURL string) SupplierResponse {
	vouchers := make([]VoucherResponse, 0, len(supplier.Vouchers))
	for i := range supplier.Vouchers {
		vouchers = append(vouchers, s.toVoucherResponse(&supplier.Vouchers[i], baseURL))
	}
	payments := make([]PaymentResponse, 0, len(supplier.Payments))
	for _, p := range supplier.Payments {
		payments = append(payments, PaymentResponse{
			ID:          p.ID,
			Amount:      p.Amount,
			Date:        p.Date,
			Description: p.Description,
			VoucherID:   p.VoucherID,
		})
	}
	return SupplierResponse{
		ID:             supplier.ID,
		FullName:       supplier.FullName,
		Phone:          supplier.Phone,
		Category:       supplier.Category,
		IsHidden:       supplier.IsHidden,
		TotalPurchased: supplier.TotalPurchased,
		TotalPaid:      supplier.TotalPaid,
		Vouchers:       vouchers,
		Payments:       payments,
		CreatedAt:      supplier.CreatedAt,
		UpdatedAt:      supplier.UpdatedAt,
	}
}
