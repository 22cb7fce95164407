package repository

import (
	"context"

	"bakery-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *model.Employee) error
	FindByCIN(ctx context.Context, cin string) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type employeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	return GetDB(ctx, r.db).Create(employee).Error
}

func (r *employeeRepository) FindByCIN(ctx context.Context, cin string) (*model.Employee, error) {
	var employee model.Employee
	if err := GetDB(ctx, r.db).First(&employee, "cin = ?", cin).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	var employees []model.Employee
	if err := GetDB(ctx, r.db).Order("created_at DESC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *employeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Employee{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
