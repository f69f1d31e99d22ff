package database

import (
	"context"
	"testing"
	"time"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{
			name:        "valid up migration",
			filename:    "20260301_120000_initial_schema.up.sql",
			wantVersion: "20260301_120000",
			wantUp:      true,
			wantOK:      true,
		},
		{
			name:        "valid down migration",
			filename:    "20260301_120000_initial_schema.down.sql",
			wantVersion: "20260301_120000",
			wantUp:      false,
			wantOK:      true,
		},
		{
			name:     "not sql",
			filename: "README.md",
			wantOK:   false,
		},
		{
			name:     "missing direction",
			filename: "20260301_120000_initial_schema.sql",
			wantOK:   false,
		},
		{
			name:     "no version parts",
			filename: "schema.up.sql",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if version != tt.wantVersion {
				t.Errorf("version = %q, want %q", version, tt.wantVersion)
			}
			if isUp != tt.wantUp {
				t.Errorf("isUp = %v, want %v", isUp, tt.wantUp)
			}
		})
	}
}

func TestMigrationName(t *testing.T) {
	if got := migrationName("20260301_120000_initial_schema.up.sql"); got != "initial_schema" {
		t.Errorf("migrationName() = %q, want %q", got, "initial_schema")
	}
}

func TestMigrate_RecordsApplied(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	// No embedded FS set in unit tests: Migrate should still create the
	// bookkeeping table and succeed with zero migrations.
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	applied, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) != 0 || len(pending) != 0 {
		t.Errorf("expected no migrations, got applied=%d pending=%d", len(applied), len(pending))
	}

	// Manually record one and verify it round-trips.
	if _, err := db.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		"20260301_120000", time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		t.Fatalf("inserting migration record: %v", err)
	}

	applied, _, err = db.GetMigrationStatus(ctx)
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(applied) != 1 || applied[0].Version != "20260301_120000" {
		t.Errorf("applied = %+v, want single 20260301_120000 record", applied)
	}
}
