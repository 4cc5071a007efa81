package database

import (
	"database/sql"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationManager handles database migrations
type MigrationManager struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB, logger *logrus.Logger) *MigrationManager {
	return &MigrationManager{
		db:     db,
		logger: logger,
	}
}

// MigrationInfo contains information about a migration
type MigrationInfo struct {
	Version   uint
	Dirty     bool
	Applied   bool
	Timestamp time.Time
}

func (m *MigrationManager) newMigrate() (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(m.db, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	mig, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return mig, nil
}

// RunMigrations applies all pending migrations
func (m *MigrationManager) RunMigrations() error {
	mig, err := m.newMigrate()
	if err != nil {
		return err
	}
	defer mig.Close()

	version, dirty, err := mig.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if dirty {
		m.logger.WithField("version", version).Warn("Database is in dirty state, forcing version")
		if err := mig.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force migration version: %w", err)
		}
	}

	if err := mig.Up(); err != nil {
		if err == migrate.ErrNoChange {
			m.logger.Debug("No pending migrations")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	newVersion, _, err := mig.Version()
	if err != nil {
		return fmt.Errorf("failed to get new migration version: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"from_version": version,
		"to_version":   newVersion,
	}).Info("Migrations applied successfully")

	return nil
}

// RollbackMigration rolls back the most recent migration
func (m *MigrationManager) RollbackMigration() error {
	mig, err := m.newMigrate()
	if err != nil {
		return err
	}
	defer mig.Close()

	version, _, err := mig.Version()
	if err != nil {
		if err == migrate.ErrNilVersion {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	if err := mig.Steps(-1); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	m.logger.WithField("from_version", version).Info("Migration rolled back")
	return nil
}

// GetMigrationStatus returns the current migration state
func (m *MigrationManager) GetMigrationStatus() (*MigrationInfo, error) {
	mig, err := m.newMigrate()
	if err != nil {
		return nil, err
	}
	defer mig.Close()

	version, dirty, err := mig.Version()
	if err != nil {
		if err == migrate.ErrNilVersion {
			return &MigrationInfo{Applied: false}, nil
		}
		return nil, fmt.Errorf("failed to get migration version: %w", err)
	}

	return &MigrationInfo{
		Version:   version,
		Dirty:     dirty,
		Applied:   true,
		Timestamp: time.Now(),
	}, nil
}

// ValidateSchema verifies that the expected tables exist
func (m *MigrationManager) ValidateSchema() error {
	expectedTables := []string{"invoices", "invoice_items"}

	for _, table := range expectedTables {
		var name string
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		if err := m.db.QueryRow(query, table).Scan(&name); err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("expected table %s does not exist", table)
			}
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
	}

	return nil
}

// CreateBackup copies the database file to a timestamped backup
func (m *MigrationManager) CreateBackup(dbPath string) (string, error) {
	if dbPath == ":memory:" {
		return "", fmt.Errorf("cannot back up in-memory database")
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := fmt.Sprintf("%s.backup_%s", dbPath, timestamp)

	src, err := os.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open database file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(backupPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dst, err := os.Create(backupPath)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy database file: %w", err)
	}

	m.logger.WithField("backup_path", backupPath).Info("Database backup created")
	return backupPath, nil
}
