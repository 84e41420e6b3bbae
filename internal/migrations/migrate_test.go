package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_create_sim_tables.up.sql",
		"000001_create_sim_tables.down.sql",
		"000012_add_index.up.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000099_dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := LatestVersion(dir); got != 12 {
		t.Errorf("LatestVersion = %d, want 12", got)
	}
	if got := LatestVersion(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("LatestVersion on missing dir = %d, want 0", got)
	}
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	if err := RunMigrations("", DefaultDir); err == nil {
		t.Error("expected error for empty database URL")
	}
}
