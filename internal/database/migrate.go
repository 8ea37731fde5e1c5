package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Direction selects which way migrations are applied.
type Direction string

const (
	Up      Direction = "up"
	Down    Direction = "down"
	DownAll Direction = "down-all"
)

// Migrate applies all pending up migrations for cfg.Driver.
func Migrate(ctx context.Context, cfg config.DBConfig) error {
	return Run(ctx, cfg, Up)
}

// Run applies migrations in the given direction on a dedicated connection.
func Run(ctx context.Context, cfg config.DBConfig, dir Direction) error {
	db, err := openForMigration(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Driver == "oracle" {
		return runOracleMigrations(ctx, db, dir)
	}

	m, err := newMigrator(db, cfg.Driver)
	if err != nil {
		return err
	}
	defer m.Close()

	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Steps(-1)
	case DownAll:
		err = m.Down()
	default:
		return fmt.Errorf("unknown migration direction: %q", dir)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run %s migrations: %w", dir, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("could not read migration version: %w", verr)
	}
	logger.Get().Info("Migrations completed successfully",
		zap.String("driver", cfg.Driver),
		zap.String("direction", string(dir)),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

// Version reports the applied schema version. ok is false when nothing has been applied.
func Version(ctx context.Context, cfg config.DBConfig) (version uint, ok bool, err error) {
	if cfg.Driver == "oracle" {
		return 0, false, fmt.Errorf("version tracking is not available for oracle")
	}
	db, err := openForMigration(ctx, cfg)
	if err != nil {
		return 0, false, err
	}
	defer db.Close()

	m, err := newMigrator(db, cfg.Driver)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, _, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, true, nil
}

func openForMigration(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	driverName, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not ping database: %w", err)
	}
	return db, nil
}

func newMigrator(db *sql.DB, driver string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, path.Join("migrations", driver))
	if err != nil {
		return nil, fmt.Errorf("could not load %s migrations: %w", driver, err)
	}

	var target migratedb.Driver
	switch driver {
	case "postgres":
		target, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	case "sqlite3":
		target, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration driver: %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s migration driver: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, target)
	if err != nil {
		return nil, fmt.Errorf("could not create migrator: %w", err)
	}
	return m, nil
}

// Oracle objects that already exist (ORA-00955) or are already gone (ORA-00942, ORA-01418)
// are skipped so the scripts can be rerun.
var oracleIgnorable = []string{"ORA-00955", "ORA-00942", "ORA-01418"}

func runOracleMigrations(ctx context.Context, db *sql.DB, dir Direction) error {
	l := logger.Get()
	suffix := ".up.sql"
	if dir != Up {
		suffix = ".down.sql"
	}

	files, err := OracleMigrationFiles(suffix)
	if err != nil {
		return err
	}
	if dir != Up {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
		if dir == Down && len(files) > 1 {
			files = files[:1]
		}
	}

	for _, name := range files {
		content, err := fs.ReadFile(migrationsFS, path.Join("migrations", "oracle", name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		stmt := strings.TrimRight(strings.TrimSpace(string(content)), ";")
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			if isIgnorableOracleError(err) {
				l.Info("Skipping migration, object state already applied", zap.String("file", name), zap.Error(err))
				continue
			}
			return fmt.Errorf("could not execute migration %s: %w", name, err)
		}
		l.Info("Executed migration", zap.String("file", name))
	}

	l.Info("Migrations completed successfully", zap.String("driver", "oracle"), zap.String("direction", string(dir)))
	return nil
}

// OracleMigrationFiles lists the embedded oracle scripts with the given suffix in name order.
func OracleMigrationFiles(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, "migrations/oracle")
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func isIgnorableOracleError(err error) bool {
	msg := err.Error()
	for _, code := range oracleIgnorable {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}
