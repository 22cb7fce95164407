package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommandeStatus enum constants
const (
	CommandePending   = "pending"
	CommandePreparing = "preparing"
	CommandeReady     = "ready"
	CommandeCompleted = "completed"
	CommandeCancelled = "cancelled"
)

// Commande is a made-to-order purchase placed at the counter (custom
// cakes, large batches). Customers track it with the short Code.
// Reste = Total - Avance and is recomputed on every mutation.
type Commande struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code        string          `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"`
	ClientPhone string          `gorm:"type:varchar(50);not null" json:"client_phone"`
	Description string          `gorm:"type:text" json:"description"`
	Items       []CommandeItem  `gorm:"foreignKey:CommandeID;constraint:OnDelete:CASCADE" json:"items"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Avance      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"avance"`
	Reste       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"reste"`
	Status      string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CommandeItem is a free-form line on a commande (no product FK; counter
// staff type in whatever was agreed with the customer).
type CommandeItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CommandeID uuid.UUID       `gorm:"type:uuid;not null;index" json:"commande_id"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Quantity   int             `gorm:"type:int;not null" json:"quantity"`
}
