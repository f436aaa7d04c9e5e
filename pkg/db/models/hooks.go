package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	dbtypes "github.com/vendorahq/vendora-backend/pkg/db/types"
)

// ensureID assigns a client-side id when the caller did not set one. Postgres
// also carries a gen_random_uuid() default; the hook keeps SQLite-backed tests
// honest.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error           { ensureID(&u.ID); return nil }
func (c *Company) BeforeCreate(*gorm.DB) error        { ensureID(&c.ID); return nil }
func (d *DeliveryZone) BeforeCreate(*gorm.DB) error   { ensureID(&d.ID); return nil }
// Array columns are NOT NULL; nil slices are normalized so gorm never writes
// an explicit NULL.
func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	if p.Zones == nil {
		p.Zones = pq.StringArray{}
	}
	return nil
}

func (p *Promotion) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	if p.BundleProductIDs == nil {
		p.BundleProductIDs = dbtypes.UUIDArray{}
	}
	if p.ProductIDs == nil {
		p.ProductIDs = dbtypes.UUIDArray{}
	}
	if p.Zones == nil {
		p.Zones = pq.StringArray{}
	}
	return nil
}
func (c *CartRecord) BeforeCreate(*gorm.DB) error     { ensureID(&c.ID); return nil }
func (c *CartItem) BeforeCreate(*gorm.DB) error       { ensureID(&c.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error          { ensureID(&o.ID); return nil }
func (o *OrderItem) BeforeCreate(*gorm.DB) error      { ensureID(&o.ID); return nil }
func (c *CashCollection) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }
func (a *Address) BeforeCreate(*gorm.DB) error        { ensureID(&a.ID); return nil }
func (n *Notification) BeforeCreate(*gorm.DB) error   { ensureID(&n.ID); return nil }
func (e *OutboxEvent) BeforeCreate(*gorm.DB) error    { ensureID(&e.ID); return nil }
func (d *OutboxDLQ) BeforeCreate(*gorm.DB) error      { ensureID(&d.ID); return nil }
