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

type CreateEmployeeRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	CIN          string `json:"cin" binding:"required"`
	BirthDate    string `json:"birth_date" binding:"required"` // RFC3339 or 2006-01-02
	JobCategory  string `json:"job_category" binding:"required"`
	WeeklySalary string `json:"weekly_salary" binding:"required"`
}

type EmployeeResponse struct {
	ID           uuid.UUID       `json:"id"`
	FullName     string          `json:"full_name"`
	CIN          string          `json:"cin"`
	BirthDate    time.Time       `json:"birth_date"`
	Age          int             `json:"age"`
	JobCategory  string          `json:"job_category"`
	WeeklySalary decimal.Decimal `json:"weekly_salary"`
	HireDate     time.Time       `json:"hire_date"`
}

// --- Interface ---

type EmployeeService interface {
	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetEmployees(ctx context.Context) ([]EmployeeResponse, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type employeeService struct {
	employeeRepo repository.EmployeeRepository
}

func NewEmployeeService(employeeRepo repository.EmployeeRepository) EmployeeService {
	return &employeeService{employeeRepo: employeeRepo}
}

// --- Helpers ---

var validJobCategories = map[string]bool{
	model.JobBaker:       true,
	model.JobPastryChef:  true,
	model.JobDishwasher:  true,
	model.JobSalesperson: true,
	model.JobManager:     true,
}

// computeAge returns full years between birth date and now, counting a
// birthday not yet reached this year as one year less.
func computeAge(birthDate, now time.Time) int {
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	return age
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// --- Implementation ---

func (s *employeeService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	if !validJobCategories[req.JobCategory] {
		return EmployeeResponse{}, fmt.Errorf("%w: job_category must be one of: baker, pastry_chef, dishwasher, salesperson, manager", apperr.ErrValidation)
	}
	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		return EmployeeResponse{}, fmt.Errorf("%w: invalid birth_date", apperr.ErrValidation)
	}
	salary, err := decimal.NewFromString(req.WeeklySalary)
	if err != nil || salary.IsNegative() {
		return EmployeeResponse{}, fmt.Errorf("%w: weekly_salary must be a non-negative number", apperr.ErrValidation)
	}

	if _, err := s.employeeRepo.FindByCIN(ctx, req.CIN); err == nil {
		return EmployeeResponse{}, fmt.Errorf("%w: cin already exists", apperr.ErrValidation)
	}

	now := time.Now()
	employee := &model.Employee{
		FullName:     req.FullName,
		CIN:          req.CIN,
		BirthDate:    birthDate,
		Age:          computeAge(birthDate, now),
		JobCategory:  req.JobCategory,
		WeeklySalary: salary,
		HireDate:     now,
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		return EmployeeResponse{}, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}

	return toEmployeeResponse(employee), nil
}

func (s *employeeService) GetEmployees(ctx context.Context) ([]EmployeeResponse, error) {
	employees, err := s.employeeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	res := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		res = append(res, toEmployeeResponse(&employees[i]))
	}
	return res, nil
}

func (s *employeeService) DeleteEmployee(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid employee id", apperr.ErrValidation)
	}
	if err := s.employeeRepo.Delete(ctx, uid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: employee %s", apperr.ErrNotFound, id)
		}
		return fmt.Errorf("%w: %v", apperr.ErrStorage, err)
	}
	return nil
}

func toEmployeeResponse(e *model.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:           e.ID,
		FullName:     e.FullName,
		CIN:          e.CIN,
		BirthDate:    e.BirthDate,
		Age:          e.Age,
		JobCategory:  e.JobCategory,
		WeeklySalary: e.WeeklySalary,
		HireDate:     e.HireDate,
	}
}
