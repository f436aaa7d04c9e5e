package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	dbtypes "github.com/vendorahq/vendora-backend/pkg/db/types"
	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// Promotion is an admin-managed discount rule, read-only at evaluation time.
// ValueCents is kind-dependent: percent points for percentage, minor units for
// fixed, a tie-break rank for buy_x_get_y, the bundle price for bundle.
type Promotion struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string              `gorm:"column:name;not null"`
	Kind             enums.PromotionKind `gorm:"column:kind;type:promotion_kind;not null"`
	ValueCents       int64               `gorm:"column:value_cents;not null"`
	MinPurchaseCents *int64              `gorm:"column:min_purchase_cents"`
	MaxDiscountCents *int64              `gorm:"column:max_discount_cents"`
	BuyQuantity      *int                `gorm:"column:buy_quantity"`
	GetQuantity      *int                `gorm:"column:get_quantity"`
	BundleProductIDs dbtypes.UUIDArray   `gorm:"column:bundle_product_ids;type:uuid[];not null"`
	ProductIDs       dbtypes.UUIDArray   `gorm:"column:product_ids;type:uuid[];not null"`
	Zones            pq.StringArray      `gorm:"column:zones;type:text[];not null"`
	StartsAt         time.Time           `gorm:"column:starts_at;not null"`
	EndsAt           time.Time           `gorm:"column:ends_at;not null"`
	IsActive         bool                `gorm:"column:is_active;not null"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLive reports whether the promotion applies at the given instant.
func (p Promotion) IsLive(now time.Time) bool {
	return p.IsActive && !now.Before(p.StartsAt) && !now.After(p.EndsAt)
}

// AppliesToZone reports whether the promotion is open to the requester's zone.
// An empty zone list means no restriction; an unknown requester zone only
// qualifies for unrestricted promotions.
func (p Promotion) AppliesToZone(zone string) bool {
	if len(p.Zones) == 0 {
		return true
	}
	if zone == "" {
		return false
	}
	for _, candidate := range p.Zones {
		if candidate == zone {
			return true
		}
	}
	return false
}
