package repository

import (
	"context"

	"bakery-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierRepository loads and stores the Supplier aggregate with its
// vouchers and payments. Children are always returned in insertion
// order (position ASC); the payment sweep relies on it.
type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	Save(ctx context.Context, supplier *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	FindAll(ctx context.Context) ([]model.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func orderedChildren(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *supplierRepository) Create(ctx context.Context, supplier *model.Supplier) error {
	return GetDB(ctx, r.db).Create(supplier).Error
}

// Save persists the whole aggregate, including mutated vouchers and
// appended payments, as one logical write.
func (r *supplierRepository) Save(ctx context.Context, supplier *model.Supplier) error {
	return GetDB(ctx, r.db).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(supplier).Error
}

func (r *supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	err := GetDB(ctx, r.db).
		Preload("Vouchers", orderedChildren).
		Preload("Payments", orderedChildren).
		First(&supplier, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) FindAll(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := GetDB(ctx, r.db).
		Preload("Vouchers", orderedChildren).
		Preload("Payments", orderedChildren).
		Order("created_at DESC").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (r *supplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Vouchers and payments go with the row via the FK cascade.
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Supplier{}).Error
}
