package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the vendor entity that owns products and receives the per-vendor
// orders produced by a multi-vendor checkout.
type Company struct {
	ID                      uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                    string         `gorm:"column:name;not null"`
	Zone                    string         `gorm:"column:zone;not null"`
	DefaultDeliveryFeeCents int64          `gorm:"column:default_delivery_fee_cents;not null"`
	IsActive                bool           `gorm:"column:is_active;not null"`
	DeliveryZones           []DeliveryZone `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	CreatedAt               time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt               time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
