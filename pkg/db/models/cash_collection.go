package models

import (
	"time"

	"github.com/google/uuid"
)

// CashCollection reconciles a cash-on-delivery order. At most one per order;
// the amount must match the order total within one minor unit.
type CashCollection struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_cash_collections_order"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	CollectedBy uuid.UUID `gorm:"column:collected_by;type:uuid;not null"`
	Notes       *string   `gorm:"column:notes"`
	CollectedAt time.Time `gorm:"column:collected_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
