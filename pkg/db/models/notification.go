package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorahq/vendora-backend/pkg/enums"
)

// Notification is an in-app notification addressed to a single user. Rows are
// written by the notifications worker, never inline with the triggering write.
type Notification struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null"`
	Kind        enums.NotificationKind `gorm:"column:kind;type:notification_kind;not null"`
	Title       string                 `gorm:"column:title;not null"`
	Body        string                 `gorm:"column:body;not null"`
	OrderID     *uuid.UUID             `gorm:"column:order_id;type:uuid"`
	ReadAt      *time.Time             `gorm:"column:read_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}
