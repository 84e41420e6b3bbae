package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

// DefaultDir is where the server looks for migration files.
const DefaultDir = "migrations"

const metadataTable = "schema_migrations_sim"

var versionPrefix = regexp.MustCompile(`^0*([0-9]+)_`)

// RunMigrations applies the audit log migrations found in dir. A database that
// already has sim_sessions but no migrate metadata is forced to the latest
// version first, so hand-created schemas are not re-created.
func RunMigrations(databaseURL, dir string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is empty")
	}
	if dir == "" {
		dir = DefaultDir
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open DB: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pg.WithInstance(sqlDB, &pg.Config{MigrationsTable: metadataTable})
	if err != nil {
		return fmt.Errorf("failed to create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if tableExists(sqlDB, "sim_sessions") && !tableExists(sqlDB, metadataTable) {
		if latest := LatestVersion(dir); latest > 0 {
			log.Printf("[MIGRATE] Baseline DB to version %d (existing schema present)", latest)
			if ferr := m.Force(int(latest)); ferr != nil {
				log.Printf("[MIGRATE] Force to version %d failed: %v", latest, ferr)
			}
		}
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	log.Printf("[MIGRATE] Migrations applied from %s", dir)
	return nil
}

func tableExists(db *sql.DB, name string) bool {
	var exists bool
	row := db.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", name)
	if err := row.Scan(&exists); err != nil {
		return false
	}
	return exists
}

// LatestVersion returns the highest numeric prefix (000001_ style) among the
// files in dir, or 0 when there are none.
func LatestVersion(dir string) int64 {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	var max int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := versionPrefix.FindStringSubmatch(f.Name())
		if len(m) < 2 {
			continue
		}
		v, _ := strconv.ParseInt(m[1], 10, 64)
		if v > max {
			max = v
		}
	}
	return max
}
