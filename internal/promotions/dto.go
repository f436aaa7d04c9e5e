package promotions

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// Actor identifies the caller for the admin surface.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// IsAdmin reports whether the actor holds the platform admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// LineInput is one cart line presented for per-product evaluation.
type LineInput struct {
	ProductID      uuid.UUID
	Quantity       int
	SubtotalCents  int64
	UnitPriceCents int64
	Zone           string
}

// LineResult is the outcome of evaluating a single line. Applied is nil when
// no promotion qualified.
type LineResult struct {
	DiscountCents int64
	FreeItems     int
	Applied       *models.Promotion
}

// BundleLine is the slice of cart state the bundle pass needs per product.
type BundleLine struct {
	ProductID      uuid.UUID
	CompanyID      uuid.UUID
	UnitPriceCents int64
	Quantity       int
}

// BundleResult is one bundle that fired for the cart. CompanyID names the
// vendor group the discount attaches to.
type BundleResult struct {
	Promotion     *models.Promotion
	CompanyID     uuid.UUID
	DiscountCents int64
}

// CreatePromotionInput carries the admin create payload.
type CreatePromotionInput struct {
	Name             string
	Kind             enums.PromotionKind
	ValueCents       int64
	MinPurchaseCents *int64
	MaxDiscountCents *int64
	BuyQuantity      *int
	GetQuantity      *int
	BundleProductIDs []uuid.UUID
	ProductIDs       []uuid.UUID
	Zones            []string
	StartsAt         time.Time
	EndsAt           time.Time
}

// UpdatePromotionInput carries partial updates; nil means unchanged.
type UpdatePromotionInput struct {
	Name             *string
	ValueCents       *int64
	MinPurchaseCents *int64
	MaxDiscountCents *int64
	BuyQuantity      *int
	GetQuantity      *int
	BundleProductIDs *[]uuid.UUID
	ProductIDs       *[]uuid.UUID
	Zones            *[]string
	StartsAt         *time.Time
	EndsAt           *time.Time
}

// ListPromotionsParams is the admin listing filter set.
type ListPromotionsParams struct {
	Kind   string
	Limit  int
	Cursor string
}

// PromotionList is a cursor page of promotions.
type PromotionList struct {
	Items  []models.Promotion
	Cursor string
}
