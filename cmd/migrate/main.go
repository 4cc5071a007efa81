package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"invoice-api/internal/database"
)

func main() {
	var (
		dbPath  = flag.String("db", "./data/invoices.db", "Database file path")
		action  = flag.String("action", "up", "Migration action: up, down, status, validate, backup")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	absDBPath, err := filepath.Abs(*dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute database path")
	}

	logger.WithFields(logrus.Fields{
		"db_path": absDBPath,
		"action":  *action,
	}).Info("Starting migration tool")

	db, err := openDatabase(absDBPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}
	defer db.Close()

	manager := database.NewMigrationManager(db, logger)

	switch *action {
	case "up":
		if err := manager.RunMigrations(); err != nil {
			logger.WithError(err).Fatal("Migration up failed")
		}
	case "down":
		if err := manager.RollbackMigration(); err != nil {
			logger.WithError(err).Fatal("Migration down failed")
		}
	case "status":
		if err := showMigrationStatus(manager); err != nil {
			logger.WithError(err).Fatal("Failed to get migration status")
		}
	case "validate":
		if err := validateSchema(manager); err != nil {
			logger.WithError(err).Fatal("Schema validation failed")
		}
	case "backup":
		if err := createBackup(manager, absDBPath); err != nil {
			logger.WithError(err).Fatal("Backup failed")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate, backup")
	}

	logger.Info("Migration tool completed successfully")
}

// openDatabase opens the SQLite file without running migrations, so
// status and down act on the schema exactly as it is
func openDatabase(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func showMigrationStatus(manager *database.MigrationManager) error {
	status, err := manager.GetMigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)

	return nil
}

func validateSchema(manager *database.MigrationManager) error {
	if err := manager.ValidateSchema(); err != nil {
		return err
	}

	fmt.Println("Schema validation passed successfully")
	return nil
}

func createBackup(manager *database.MigrationManager, dbPath string) error {
	backupPath, err := manager.CreateBackup(dbPath)
	if err != nil {
		return err
	}

	fmt.Printf("Backup created: %s\n", backupPath)
	return nil
}
