package models

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryZone is one row of a vendor's zone-keyed fee and estimate table.
// Fee lookup falls back to Company.DefaultDeliveryFeeCents and the platform
// default day window when the buyer's zone has no row.
type DeliveryZone struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;uniqueIndex:ux_delivery_zones_company_zone"`
	Zone      string    `gorm:"column:zone;not null;uniqueIndex:ux_delivery_zones_company_zone"`
	FeeCents  int64     `gorm:"column:fee_cents;not null"`
	MinDays   int       `gorm:"column:min_days;not null"`
	MaxDays   int       `gorm:"column:max_days;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
