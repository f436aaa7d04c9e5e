package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// User is reference data for the authorization boundary and zone lookups.
// Credentials live in the identity service, never here.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.UserRole `gorm:"column:role;type:user_role;not null"`
	CompanyID *uuid.UUID     `gorm:"column:company_id;type:uuid"`
	Zone      string         `gorm:"column:zone;not null"`
	IsActive  bool           `gorm:"column:is_active;not null"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
