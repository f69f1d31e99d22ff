package sensor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/sundial-core/internal/infrastructure/database"
	"github.com/nerrad567/sundial-core/internal/position"
	"github.com/nerrad567/sundial-core/internal/solar"
	_ "github.com/nerrad567/sundial-core/migrations"
)

func openTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(context.Background(), database.Config{
		Path:        path,
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// Sensors reference a position source by FK.
	posRepo := position.NewSQLiteRepository(db.DB)
	src := &position.PositionSource{ID: "site", Name: "Site", Latitude: 47.6, Longitude: -122.3}
	if err := posRepo.Create(context.Background(), src); err != nil {
		t.Fatalf("creating position source: %v", err)
	}

	return NewSQLiteRepository(db.DB)
}

func newDBSensor(id, slug string) *TwilightSensor {
	return &TwilightSensor{
		ID:             id,
		Name:           "Sensor " + id,
		Slug:           slug,
		PositionSource: "site",
		Mode:           solar.ModeSunset,
		Enabled:        true,
	}
}

func TestSQLiteRepository_CreateGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newDBSensor("s1", "porch")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Slug != "porch" || got.Mode != solar.ModeSunset || !got.Enabled || got.Active {
		t.Errorf("Get() = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero, want schema default applied")
	}
	if !got.StateUpdatedAt.IsZero() {
		t.Errorf("StateUpdatedAt = %v, want zero before any transition", got.StateUpdatedAt)
	}
}

func TestSQLiteRepository_GetBySlug(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newDBSensor("s1", "porch")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetBySlug(ctx, "porch")
	if err != nil {
		t.Fatalf("GetBySlug() error = %v", err)
	}
	if got.ID != "s1" {
		t.Errorf("GetBySlug() ID = %v, want s1", got.ID)
	}

	if _, err := repo.GetBySlug(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBySlug(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_DuplicateSlug(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newDBSensor("s1", "porch")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Create(ctx, newDBSensor("s2", "porch")); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate slug Create() error = %v, want ErrExists", err)
	}
}

func TestSQLiteRepository_InvalidModeRejected(t *testing.T) {
	repo := openTestRepo(t)

	sen := newDBSensor("s1", "porch")
	sen.Mode = "noon"
	if err := repo.Create(context.Background(), sen); err == nil {
		t.Error("Create() with invalid mode should fail the CHECK constraint")
	}
}

func TestSQLiteRepository_UnknownPositionSourceRejected(t *testing.T) {
	repo := openTestRepo(t)

	sen := newDBSensor("s1", "porch")
	sen.PositionSource = "ghost"
	if err := repo.Create(context.Background(), sen); err == nil {
		t.Error("Create() with unknown position source should fail the FK constraint")
	}
}

func TestSQLiteRepository_List(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	a := newDBSensor("s1", "alpha")
	a.Name = "Alpha"
	b := newDBSensor("s2", "beta")
	b.Name = "Beta"
	for _, sen := range []*TwilightSensor{b, a} {
		if err := repo.Create(ctx, sen); err != nil {
			t.Fatalf("Create(%s) error = %v", sen.ID, err)
		}
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "Alpha" || got[1].Name != "Beta" {
		t.Errorf("List() = %v", got)
	}
}

func TestSQLiteRepository_Update(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	sen := newDBSensor("s1", "porch")
	if err := repo.Create(ctx, sen); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sen.Name = "Renamed"
	sen.Mode = solar.ModeSunrise
	sen.Enabled = false
	if err := repo.Update(ctx, sen); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Renamed" || got.Mode != solar.ModeSunrise || got.Enabled {
		t.Errorf("Get() after Update() = %+v", got)
	}

	if err := repo.Update(ctx, newDBSensor("missing", "nope")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_UpdateState(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newDBSensor("s1", "porch")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	at := time.Date(2026, time.June, 10, 20, 30, 0, 0, time.UTC)
	if err := repo.UpdateState(ctx, "s1", true, at); err != nil {
		t.Fatalf("UpdateState() error = %v", err)
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Active {
		t.Error("Active = false after UpdateState(true)")
	}
	if !got.StateUpdatedAt.Equal(at) {
		t.Errorf("StateUpdatedAt = %v, want %v", got.StateUpdatedAt, at)
	}

	if err := repo.UpdateState(ctx, "missing", true, at); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateState(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, newDBSensor("s1", "porch")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
