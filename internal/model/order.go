package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status constants (storefront orders)
const (
	OrderPlaced         = "Order Placed"
	OrderPacking        = "Packing"
	OrderShipped        = "Shipped"
	OrderOutForDelivery = "Out for delivery"
	OrderDelivered      = "Delivered"
)

// PaymentMethod constants
const (
	PaymentCOD = "cod"
)

// Order represents a storefront order placed by a registered user.
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Address       map[string]any  `gorm:"type:jsonb;serializer:json" json:"address"`
	Status        string          `gorm:"type:varchar(30);not null;default:'Order Placed'" json:"status"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"payment_method"`
	Payment       bool            `gorm:"default:false" json:"payment"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem is a denormalized line item: name and price are copied from
// the product at order time so later catalog edits don't rewrite history.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity  int             `gorm:"type:int;not null" json:"quantity"`
}
