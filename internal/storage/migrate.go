package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrDirtySchema is returned when a previous migration of the card cache was
// interrupted. Delete the cache file to rebuild it.
var ErrDirtySchema = errors.New("card cache schema is dirty")

// SchemaState describes the migration state of a card cache file.
type SchemaState struct {
	Version uint
	Dirty   bool
	// Latest is the newest migration embedded in the binary.
	Latest uint
}

// Pending reports whether migrations remain to be applied.
func (s SchemaState) Pending() bool { return s.Version < s.Latest }

// Schema applies the embedded card cache migrations to one SQLite file.
type Schema struct {
	m      *migrate.Migrate
	path   string
	logger *slog.Logger
}

// OpenSchema prepares the embedded migrations against the SQLite file at dbPath.
func OpenSchema(dbPath string, logger *slog.Logger) (*Schema, error) {
	if logger == nil {
		logger = slog.Default()
	}

	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	source, err := iofs.New(migrations, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, sqliteURL(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open card cache schema %s: %w", dbPath, err)
	}
	return &Schema{m: m, path: dbPath, logger: logger}, nil
}

// sqliteURL builds the migrate database URL. Windows drive paths get a
// leading slash.
func sqliteURL(dbPath string) string {
	p := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "sqlite://" + p
}

// State returns the current schema version. A fresh file reports version 0.
func (s *Schema) State() (SchemaState, error) {
	latest, err := latestMigration()
	if err != nil {
		return SchemaState{}, err
	}

	version, dirty, err := s.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return SchemaState{}, fmt.Errorf("read schema version: %w", err)
	}
	return SchemaState{Version: version, Dirty: dirty, Latest: latest}, nil
}

// Migrate brings the schema up to the latest embedded version. A dirty schema
// is refused with ErrDirtySchema.
func (s *Schema) Migrate() error {
	state, err := s.State()
	if err != nil {
		return err
	}
	if state.Dirty {
		return fmt.Errorf("%s at version %d: %w", s.path, state.Version, ErrDirtySchema)
	}
	if !state.Pending() {
		return nil
	}

	if err := s.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate card cache: %w", err)
	}
	s.logger.Info("Migrated card cache", "path", s.path, "from", state.Version, "to", state.Latest)
	return nil
}

// Rollback reverts every migration, leaving an empty schema.
func (s *Schema) Rollback() error {
	if err := s.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("roll back card cache: %w", err)
	}
	return nil
}

// Close releases the migration source and database handle.
func (s *Schema) Close() error {
	srcErr, dbErr := s.m.Close()
	return errors.Join(srcErr, dbErr)
}

// latestMigration returns the highest version among the embedded up files.
func latestMigration() (uint, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("list embedded migrations: %w", err)
	}

	var latest uint
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(prefix, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("parse migration %s: %w", name, err)
		}
		latest = max(latest, uint(v))
	}
	return latest, nil
}

// migrateUp opens the schema at path, migrates it and closes it again.
func migrateUp(path string, logger *slog.Logger) (err error) {
	schema, err := OpenSchema(path, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := schema.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close card cache schema: %w", closeErr)
		}
	}()
	return schema.Migrate()
}
