package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// ItemInput is one requested cart line; duplicates are merged before
// validation.
type ItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// LineError is a hard validation failure that invalidates the cart.
type LineError struct {
	ProductID uuid.UUID               `json:"productId"`
	Type      enums.CartLineErrorType `json:"type"`
	Message   string                  `json:"message"`
}

// LineWarning is a soft adjustment; the line stays valid with the clipped
// quantity.
type LineWarning struct {
	ProductID uuid.UUID                 `json:"productId"`
	Type      enums.CartLineWarningType `json:"type"`
	Message   string                    `json:"message"`
}

// ValidatedLine carries the catalog snapshot for a line that passed
// validation, with the possibly clipped quantity.
type ValidatedLine struct {
	ProductID      uuid.UUID `json:"productId"`
	CompanyID      uuid.UUID `json:"companyId"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Quantity       int       `json:"quantity"`
	MinOrderQty    int       `json:"minOrderQty"`
}

// ValidationResult is the outcome of validating a request cart.
type ValidationResult struct {
	Valid    bool            `json:"valid"`
	Errors   []LineError     `json:"errors"`
	Warnings []LineWarning   `json:"warnings"`
	Lines    []ValidatedLine `json:"lines"`
}

// GroupLine is a validated line priced inside its vendor group.
type GroupLine struct {
	ValidatedLine
	SubtotalCents int64      `json:"subtotalCents"`
	DiscountCents int64      `json:"discountCents"`
	FreeItems     int        `json:"freeItems"`
	PromotionID   *uuid.UUID `json:"promotionId,omitempty"`
}

// VendorGroup is the per-company slice of the cart with its own totals and
// delivery terms.
type VendorGroup struct {
	CompanyID        uuid.UUID   `json:"companyId"`
	CompanyName      string      `json:"companyName"`
	Lines            []GroupLine `json:"lines"`
	SubtotalCents    int64       `json:"subtotalCents"`
	DiscountCents    int64       `json:"discountCents"`
	DeliveryFeeCents int64       `json:"deliveryFeeCents"`
	TotalCents       int64       `json:"totalCents"`
	MinDays          int         `json:"minDays"`
	MaxDays          int         `json:"maxDays"`
}

// Summary aggregates the whole cart across vendor groups.
type Summary struct {
	TotalItems            int   `json:"totalItems"`
	SubtotalCents         int64 `json:"subtotalCents"`
	TotalDiscountCents    int64 `json:"totalDiscountCents"`
	TotalDeliveryFeeCents int64 `json:"totalDeliveryFeeCents"`
	GrandTotalCents       int64 `json:"grandTotalCents"`
}

// DeliveryEstimate is the cart-wide delivery window. EstimatedDate is today
// plus the slowest group's MaxDays.
type DeliveryEstimate struct {
	MinDays       int       `json:"minDays"`
	MaxDays       int       `json:"maxDays"`
	EstimatedDate time.Time `json:"estimatedDate"`
}

// QuoteResult is the full priced view of a request cart: validation outcome,
// vendor groups, and the aggregate summary.
type QuoteResult struct {
	Validation *ValidationResult `json:"validation"`
	Groups     []VendorGroup     `json:"groups"`
	Summary    Summary           `json:"summary"`
	Estimate   *DeliveryEstimate `json:"estimate,omitempty"`
}
