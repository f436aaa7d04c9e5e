package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	"github.com/vendorahq/vendora-backend/pkg/enums"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE companies (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  zone TEXT NOT NULL DEFAULT '',
  default_delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE delivery_zones (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  zone TEXT NOT NULL,
  fee_cents INTEGER NOT NULL DEFAULT 0,
  min_days INTEGER NOT NULL DEFAULT 1,
  max_days INTEGER NOT NULL DEFAULT 3,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (company_id, zone)
);`,
		`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  company_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price_cents INTEGER NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  min_order_qty INTEGER NOT NULL DEFAULT 1,
  max_qty INTEGER,
  is_active INTEGER NOT NULL DEFAULT 1,
  zones TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME
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
		`CREATE TABLE addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  label TEXT NOT NULL DEFAULT '',
  zone TEXT NOT NULL,
  street TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		require.NoError(t, conn.Exec(ddl).Error)
	}

	return conn
}

func mustCreateCompany(t *testing.T, tx *gorm.DB, defaultFeeCents int64) *models.Company {
	t.Helper()
	company := &models.Company{
		ID:                      uuid.New(),
		Name:                    fmt.Sprintf("Vendor %s", uuid.NewString()[:8]),
		Zone:                    "north",
		DefaultDeliveryFeeCents: defaultFeeCents,
		IsActive:                true,
	}
	require.NoError(t, tx.Create(company).Error)
	return company
}

func mustCreateProduct(t *testing.T, tx *gorm.DB, companyID uuid.UUID, priceCents int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		CompanyID:   companyID,
		SKU:         fmt.Sprintf("SKU-%s", uuid.NewString()[:8]),
		Name:        "Test Product",
		PriceCents:  priceCents,
		Stock:       stock,
		MinOrderQty: 1,
		IsActive:    true,
		Zones:       []string{},
	}
	require.NoError(t, tx.Create(product).Error)
	return product
}

func mustCreateUser(t *testing.T, tx *gorm.DB, role enums.UserRole, companyID *uuid.UUID, zone string) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.New(),
		Name:      "Test User",
		Email:     fmt.Sprintf("user_%s@example.com", uuid.NewString()),
		Role:      role,
		CompanyID: companyID,
		Zone:      zone,
		IsActive:  true,
	}
	require.NoError(t, tx.Create(user).Error)
	return user
}
