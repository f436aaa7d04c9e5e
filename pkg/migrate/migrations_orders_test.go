package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vendorahq/vendora-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"status order_status NOT NULL DEFAULT 'PENDING'",
		"payment_method payment_method NOT NULL DEFAULT 'CASH_ON_DELIVERY'",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_orders_order_number",
		"CREATE TABLE IF NOT EXISTS order_items",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CREATE TABLE IF NOT EXISTS cash_collections",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_cash_collections_order",
		"DROP TABLE IF EXISTS orders",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_products.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"FOREIGN KEY (company_id) REFERENCES companies(id) ON DELETE CASCADE",
		"CHECK (stock >= 0)",
		"CHECK (min_order_qty >= 1)",
		"zones TEXT[] NOT NULL DEFAULT ARRAY[]::text[]",
		"DROP TABLE IF EXISTS products",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDeliveryZonesMigrationEnforcesCompanyZoneUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_companies.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS delivery_zones",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_delivery_zones_company_zone",
		"CHECK (max_days >= min_days)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationScopesUniquenessToSingleShotEvents(t *testing.T) {
	content := readMigration(t, "*_create_outbox.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS outbox_events",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_outbox_events_event_aggregate",
		"WHERE event_type IN ('order_created', 'cash_collected')",
		"CREATE TABLE IF NOT EXISTS outbox_dlq",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir invalid: %v", err)
	}
}
