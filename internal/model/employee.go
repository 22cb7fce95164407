package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// JobCategory enum constants
const (
	JobBaker       = "baker"
	JobPastryChef  = "pastry_chef"
	JobDishwasher  = "dishwasher"
	JobSalesperson = "salesperson"
	JobManager     = "manager"
)

// Employee represents a bakery staff member. Age is derived from
// BirthDate and recomputed by the service on every save.
type Employee struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName     string          `gorm:"type:varchar(255);not null" json:"full_name"`
	CIN          string          `gorm:"column:cin;type:varchar(50);uniqueIndex;not null" json:"cin"`
	BirthDate    time.Time       `gorm:"not null" json:"birth_date"`
	Age          int             `gorm:"not null" json:"age"`
	JobCategory  string          `gorm:"type:varchar(30);not null" json:"job_category"`
	WeeklySalary decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"weekly_salary"`
	HireDate     time.Time       `gorm:"not null" json:"hire_date"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}
