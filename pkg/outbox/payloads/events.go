package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// OrderCreatedEvent signals one per-vendor order produced by a checkout.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID           `json:"order_id"`
	OrderNumber      string              `json:"order_number"`
	UserID           uuid.UUID           `json:"user_id"`
	CompanyID        uuid.UUID           `json:"company_id"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	SubtotalCents    int64               `json:"subtotal_cents"`
	DiscountCents    int64               `json:"discount_cents"`
	DeliveryFeeCents int64               `json:"delivery_fee_cents"`
	TotalCents       int64               `json:"total_cents"`
	ItemCount        int                 `json:"item_count"`
}

// OrderStatusChangedEvent is emitted on every successful workflow transition.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      uuid.UUID         `json:"user_id"`
	CompanyID   uuid.UUID         `json:"company_id"`
	FromStatus  enums.OrderStatus `json:"from_status"`
	ToStatus    enums.OrderStatus `json:"to_status"`
	Notes       *string           `json:"notes,omitempty"`
	ChangedAt   time.Time         `json:"changed_at"`
}

// DriverAssignedEvent reports the combined assign-and-dispatch operation.
type DriverAssignedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	UserID      uuid.UUID `json:"user_id"`
	CompanyID   uuid.UUID `json:"company_id"`
	DriverID    uuid.UUID `json:"driver_id"`
	AssignedAt  time.Time `json:"assigned_at"`
}

// CashCollectedEvent reports a completed cash-on-delivery reconciliation.
type CashCollectedEvent struct {
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	CollectionID uuid.UUID `json:"collection_id"`
	CompanyID    uuid.UUID `json:"company_id"`
	AmountCents  int64     `json:"amount_cents"`
	CollectedBy  uuid.UUID `json:"collected_by"`
	CollectedAt  time.Time `json:"collected_at"`
}
