package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supplier category enum constants
const (
	CategoryPackaging  = "packaging"
	CategoryFruits     = "fruits"
	CategoryVegetables = "vegetables"
	CategoryMeat       = "meat"
	CategoryDairy      = "dairy"
	CategoryOther      = "other"
)

// Supplier is the aggregate root of the purchase ledger: it owns its
// vouchers and payments and carries the persisted running totals.
// TotalPurchased must always equal the sum of voucher amounts;
// TotalPaid is the raw cumulative sum of payment amounts, tracked
// independently of how much was actually allocated to vouchers.
type Supplier struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	FullName       string          `gorm:"type:varchar(255);not null" json:"full_name"`
	Phone          string          `gorm:"type:varchar(50);not null" json:"phone"`
	Category       string          `gorm:"type:varchar(30);not null;index" json:"category"`
	IsHidden       bool            `gorm:"default:false" json:"is_hidden"`
	TotalPurchased decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_purchased"`
	TotalPaid      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"total_paid"`
	Vouchers       []Voucher       `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE" json:"vouchers"`
	Payments       []Payment       `gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE" json:"payments"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Voucher ("bonne d'achat") records one purchase from a supplier.
// Amount is immutable after creation; only PaidAmount and IsPaid mutate.
// Position preserves insertion order, which the FIFO payment sweep
// depends on (oldest unpaid voucher first).
type Voucher struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SupplierID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Position    int             `gorm:"not null" json:"position"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Date        time.Time       `gorm:"not null" json:"date"`
	Description string          `gorm:"type:text" json:"description"`
	Images      []string        `gorm:"type:jsonb;serializer:json" json:"images"`
	PaidAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"paid_amount"`
	IsPaid      bool            `gorm:"default:false" json:"is_paid"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Outstanding returns the unpaid balance of the voucher (never negative).
func (v *Voucher) Outstanding() decimal.Decimal {
	needed := v.Amount.Sub(v.PaidAmount)
	if needed.IsNegative() {
		return decimal.Zero
	}
	return needed
}

// Payment is an append-only audit record of money handed to a supplier.
// VoucherID records which voucher, if any, the payment was targeted at
// when recorded; the allocation itself may have spread across several
// vouchers.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SupplierID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Position    int             `gorm:"not null" json:"position"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Date        time.Time       `gorm:"not null" json:"date"`
	Description string          `gorm:"type:text" json:"description"`
	VoucherID   *uuid.UUID      `gorm:"type:uuid" json:"voucher_id"`
	CreatedAt   time.Time       `json:"created_at"`
}
