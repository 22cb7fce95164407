package repository

import (
	"context"

	"bakery-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommandeRepository interface {
	Create(ctx context.Context, commande *model.Commande) error
	Save(ctx context.Context, commande *model.Commande) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Commande, error)
	FindByCode(ctx context.Context, code string) (*model.Commande, error)
	List(ctx context.Context, status string, page, limit int) ([]model.Commande, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type commandeRepository struct {
	db *gorm.DB
}

func NewCommandeRepository(db *gorm.DB) CommandeRepository {
	return &commandeRepository{db: db}
}

func (r *commandeRepository) Create(ctx context.Context, commande *model.Commande) error {
	return GetDB(ctx, r.db).Create(commande).Error
}

func (r *commandeRepository) Save(ctx context.Context, commande *model.Commande) error {
	return GetDB(ctx, r.db).Session(&gorm.Session{FullSaveAssociations: true}).Save(commande).Error
}

func (r *commandeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Commande, error) {
	var commande model.Commande
	if err := GetDB(ctx, r.db).Preload("Items").First(&commande, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &commande, nil
}

func (r *commandeRepository) FindByCode(ctx context.Context, code string) (*model.Commande, error) {
	var commande model.Commande
	if err := GetDB(ctx, r.db).Preload("Items").First(&commande, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &commande, nil
}

func (r *commandeRepository) List(ctx context.Context, status string, page, limit int) ([]model.Commande, int64, error) {
	var commandes []model.Commande
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Commande{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.Preload("Items")
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&commandes).Error; err != nil {
		return nil, 0, err
	}

	return commandes, total, nil
}

func (r *commandeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Commande{}).Error
}
