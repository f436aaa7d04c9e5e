package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a buyer delivery address. Only the zone is load-bearing: it keys
// delivery fees, estimates, and promotion gating.
type Address struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Label     string    `gorm:"column:label;not null"`
	Zone      string    `gorm:"column:zone;not null"`
	Street    string    `gorm:"column:street;not null"`
	City      string    `gorm:"column:city;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
