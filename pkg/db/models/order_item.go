package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is the immutable per-line snapshot taken at checkout. Prices are
// not live-linked to the catalog after this point.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	FreeItems      int       `gorm:"column:free_items;not null"`
	DiscountCents  int64     `gorm:"column:discount_cents;not null"`
	TotalCents     int64     `gorm:"column:total_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
