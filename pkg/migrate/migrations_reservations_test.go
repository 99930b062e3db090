package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luciagrant/mercadito-backend/pkg/migrate"
)

func TestReservationsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_reservations.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no reservations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS reservations",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (qty > 0)",
		"CHECK (status IN ('active', 'consumed', 'released'))",
		"DROP TABLE IF EXISTS reservations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrderLinesMigrationRestrictsOrderDelete(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_order_lines.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no order lines migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}

	// Lines never ride a cascade; the delete path removes them explicitly.
	if !strings.Contains(string(data), "FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE RESTRICT") {
		t.Error("order_lines must restrict deleting a referenced order")
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
