package catalog

import (
	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// Actor identifies who is performing a catalog mutation. Company scoping is
// enforced in the service; admins bypass it.
type Actor struct {
	UserID    uuid.UUID
	Role      enums.UserRole
	CompanyID *uuid.UUID
}

// IsAdmin reports whether the actor holds the platform admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// CreateProductInput is the payload for a new listing.
type CreateProductInput struct {
	SKU         string
	Name        string
	Description *string
	PriceCents  int64
	Stock       int
	MinOrderQty int
	MaxQty      *int
	Zones       []string
}

// UpdateProductInput carries optional field updates; nil means unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	MinOrderQty *int
	MaxQty      *int
	Zones       *[]string
}

// UpsertDeliveryZoneInput is one row of the vendor's fee table.
type UpsertDeliveryZoneInput struct {
	Zone     string
	FeeCents int64
	MinDays  int
	MaxDays  int
}

// ListProductsParams configures catalog listing.
type ListProductsParams struct {
	Limit  int
	Cursor string
	Search string
}

// ProductList wraps a page of products and the cursor for the next page.
type ProductList struct {
	Items  []models.Product `json:"items"`
	Cursor string           `json:"cursor"`
}

// Line is the catalog snapshot consumed by cart validation and checkout.
type Line struct {
	ProductID      uuid.UUID
	CompanyID      uuid.UUID
	Name           string
	UnitPriceCents int64
	Stock          int
	MinOrderQty    int
	MaxQty         *int
	IsActive       bool
}

// CompanySummary is the slice of company state the cart path needs for
// vendor grouping.
type CompanySummary struct {
	ID   uuid.UUID
	Name string
}

// DeliveryTerms is the resolved fee and day window for one vendor/zone pair.
type DeliveryTerms struct {
	FeeCents int64
	MinDays  int
	MaxDays  int
}

func lineFromProduct(p models.Product) Line {
	return Line{
		ProductID:      p.ID,
		CompanyID:      p.CompanyID,
		Name:           p.Name,
		UnitPriceCents: p.PriceCents,
		Stock:          p.Stock,
		MinOrderQty:    p.MinOrderQty,
		MaxQty:         p.MaxQty,
		IsActive:       p.IsActive,
	}
}
