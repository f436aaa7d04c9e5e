package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
	"github.com/vendorahq/vendora-backend/pkg/logger"
	"github.com/vendorahq/vendora-backend/pkg/outbox"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL,
  company_id TEXT NOT NULL,
  address_id TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  payment_method TEXT NOT NULL DEFAULT 'CASH_ON_DELIVERY',
  subtotal_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  notes TEXT,
  driver_id TEXT,
  estimated_time TEXT,
  location TEXT,
  accepted_at DATETIME,
  preparing_at DATETIME,
  dispatched_at DATETIME,
  delivered_at DATETIME,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  free_items INTEGER NOT NULL DEFAULT 0,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'customer',
  company_id TEXT,
  zone TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE cash_collections (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  amount_cents INTEGER NOT NULL,
  collected_by TEXT NOT NULL,
  notes TEXT,
  collected_at DATETIME NOT NULL,
  created_at DATETIME
);`,
	} {
		require.NoError(t, conn.Exec(ddl).Error)
	}

	return conn
}

type fakeTxRunner struct {
	db *gorm.DB
}

func (f *fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(f.db)
}

type capturingPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (c *capturingPublisher) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *capturingPublisher) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	return c.Emit(ctx, tx, event)
}

func newOrdersTestService(t *testing.T) (Service, *gorm.DB, *capturingPublisher) {
	t.Helper()
	conn := setupOrdersTestDB(t)
	publisher := &capturingPublisher{}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), &fakeTxRunner{db: conn}, publisher, logg)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, conn, publisher
}

func mustCreateOrder(t *testing.T, tx *gorm.DB, companyID uuid.UUID, status enums.OrderStatus, totalCents int64) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "VD-" + uuid.NewString()[:8],
		UserID:        uuid.New(),
		CompanyID:     companyID,
		Status:        status,
		PaymentMethod: enums.PaymentMethodCashOnDelivery,
		SubtotalCents: totalCents,
		TotalCents:    totalCents,
	}
	require.NoError(t, tx.Create(order).Error)
	return order
}

func mustCreateDriver(t *testing.T, tx *gorm.DB, companyID uuid.UUID) *models.User {
	t.Helper()
	driver := &models.User{
		ID:        uuid.New(),
		Name:      "Test Driver",
		Email:     uuid.NewString()[:8] + "@example.com",
		Role:      enums.UserRoleDriver,
		CompanyID: &companyID,
		IsActive:  true,
	}
	require.NoError(t, tx.Create(driver).Error)
	return driver
}
