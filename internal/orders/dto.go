package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// Actor identifies the caller for authorization. Company-scoped operations
// require the actor's company to match the order's, or the admin role.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
}

// IsAdmin reports whether the actor holds the platform admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// UpdateStatusInput carries one workflow transition request.
type UpdateStatusInput struct {
	OrderID       uuid.UUID
	Status        enums.OrderStatus
	Notes         *string
	EstimatedTime *string
	Location      *string
	Actor         Actor
}

// BulkUpdateStatusInput moves several orders to the same status; each order is
// processed independently.
type BulkUpdateStatusInput struct {
	OrderIDs []uuid.UUID
	Status   enums.OrderStatus
	Actor    Actor
}

// BulkUpdateResult counts the per-order outcomes of a bulk transition.
type BulkUpdateResult struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// AssignDriverInput binds a driver to a PREPARING order and dispatches it.
type AssignDriverInput struct {
	OrderID  uuid.UUID
	DriverID uuid.UUID
	Actor    Actor
}

// CollectCashInput records the cash-on-delivery reconciliation for a
// delivered order. Amount is in major units.
type CollectCashInput struct {
	OrderID uuid.UUID
	Amount  decimal.Decimal
	Notes   *string
	Actor   Actor
}

// ListOrdersParams is the cursor filter set for order listings.
type ListOrdersParams struct {
	Status string
	Limit  int
	Cursor string
}

// OrderList wraps a page of orders and the cursor for the next page.
type OrderList struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}

// CashCollectionList wraps a page of cash collections.
type CashCollectionList struct {
	Items  []models.CashCollection `json:"items"`
	Cursor string                  `json:"cursor"`
}
