package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is the canonical vendor listing. Stock is mutated by vendor CRUD
// and by the guarded decrement executed at checkout.
type Product struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID   uuid.UUID      `gorm:"column:company_id;type:uuid;not null"`
	SKU         string         `gorm:"column:sku;not null"`
	Name        string         `gorm:"column:name;not null"`
	Description *string        `gorm:"column:description"`
	PriceCents  int64          `gorm:"column:price_cents;not null"`
	Stock       int            `gorm:"column:stock;not null"`
	MinOrderQty int            `gorm:"column:min_order_qty;not null"`
	MaxQty      *int           `gorm:"column:max_qty"`
	IsActive    bool           `gorm:"column:is_active;not null"`
	Zones       pq.StringArray `gorm:"column:zones;type:text[];not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
