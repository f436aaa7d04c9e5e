package checkout

import (
	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/internal/cart"
	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// CheckoutInput is the server-side checkout request. Client totals are never
// part of it; pricing is recomputed from the items.
type CheckoutInput struct {
	UserID        uuid.UUID            `json:"userId"`
	AddressID     *uuid.UUID           `json:"addressId,omitempty"`
	Items         []cart.ItemInput     `json:"items"`
	PaymentMethod *enums.PaymentMethod `json:"paymentMethod,omitempty"`
	Notes         *string              `json:"notes,omitempty"`
}

// GroupFailure reports one vendor group that could not be converted into an
// order. Sibling groups are unaffected.
type GroupFailure struct {
	CompanyID uuid.UUID `json:"companyId"`
	Reason    string    `json:"reason"`
}

// CheckoutResult is the outcome of a checkout: one order per fulfilled vendor
// group plus the groups that failed.
type CheckoutResult struct {
	Orders     []*models.Order `json:"orders"`
	Failures   []GroupFailure  `json:"failures"`
	OrderCount int             `json:"orderCount"`
}
