package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// Order is the per-vendor order produced at checkout. Every item belongs to
// CompanyID; totals are the snapshot computed server-side at creation.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber      string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	CompanyID        uuid.UUID           `gorm:"column:company_id;type:uuid;not null"`
	AddressID        *uuid.UUID          `gorm:"column:address_id;type:uuid"`
	Status           enums.OrderStatus   `gorm:"column:status;type:order_status;not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	SubtotalCents    int64               `gorm:"column:subtotal_cents;not null"`
	DiscountCents    int64               `gorm:"column:discount_cents;not null"`
	DeliveryFeeCents int64               `gorm:"column:delivery_fee_cents;not null"`
	TotalCents       int64               `gorm:"column:total_cents;not null"`
	Notes            *string             `gorm:"column:notes"`
	DriverID         *uuid.UUID          `gorm:"column:driver_id;type:uuid"`
	EstimatedTime    *string             `gorm:"column:estimated_time"`
	Location         *string             `gorm:"column:location"`
	AcceptedAt       *time.Time          `gorm:"column:accepted_at"`
	PreparingAt      *time.Time          `gorm:"column:preparing_at"`
	DispatchedAt     *time.Time          `gorm:"column:dispatched_at"`
	DeliveredAt      *time.Time          `gorm:"column:delivered_at"`
	CompletedAt      *time.Time          `gorm:"column:completed_at"`
	CancelledAt      *time.Time          `gorm:"column:cancelled_at"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
