package promotions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendorahq/vendora-backend/pkg/db/models"
	dbtypes "github.com/vendorahq/vendora-backend/pkg/db/types"
	"github.com/vendorahq/vendora-backend/pkg/enums"
)

func setupPromotionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`CREATE TABLE promotions (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  kind TEXT NOT NULL,
  value_cents INTEGER NOT NULL,
  min_purchase_cents INTEGER,
  max_discount_cents INTEGER,
  buy_quantity INTEGER,
  get_quantity INTEGER,
  bundle_product_ids TEXT NOT NULL DEFAULT '{}',
  product_ids TEXT NOT NULL DEFAULT '{}',
  zones TEXT NOT NULL DEFAULT '{}',
  starts_at DATETIME NOT NULL,
  ends_at DATETIME NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)

	return conn
}

// livePromotion builds a promotion whose window covers now. Tests adjust the
// returned value before inserting.
func livePromotion(kind enums.PromotionKind, valueCents int64, productIDs ...uuid.UUID) *models.Promotion {
	now := time.Now().UTC()
	return &models.Promotion{
		ID:               uuid.New(),
		Name:             "Test Promotion",
		Kind:             kind,
		ValueCents:       valueCents,
		BundleProductIDs: dbtypes.UUIDArray{},
		ProductIDs:       dbtypes.UUIDArray(productIDs),
		Zones:            []string{},
		StartsAt:         now.Add(-time.Hour),
		EndsAt:           now.Add(time.Hour),
		IsActive:         true,
		CreatedAt:        now,
	}
}

func mustCreatePromotion(t *testing.T, tx *gorm.DB, promotion *models.Promotion) *models.Promotion {
	t.Helper()
	require.NoError(t, tx.Create(promotion).Error)
	return promotion
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }
