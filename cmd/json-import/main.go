package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"invoice-api/internal/database"
	"invoice-api/internal/migration"
	"invoice-api/internal/repositories/sqlite"
)

func main() {
	var (
		dbPath   = flag.String("db", "./data/invoices.db", "Database file path")
		jsonPath = flag.String("json", "./data/export", "Invoice JSON documents directory")
		action   = flag.String("action", "import", "Action: check, import, validate")
		dryRun   = flag.Bool("dry-run", false, "List the documents without making changes")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
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

	absJSONPath, err := filepath.Abs(*jsonPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to get absolute JSON path")
	}

	logger.WithFields(logrus.Fields{
		"db_path":   absDBPath,
		"json_path": absJSONPath,
		"action":    *action,
		"dry_run":   *dryRun,
	}).Info("Starting invoice import tool")

	switch *action {
	case "check":
		if err := checkDocuments(absJSONPath, logger); err != nil {
			logger.WithError(err).Fatal("Failed to check JSON documents")
		}
	case "import":
		if err := runImport(absDBPath, absJSONPath, logger, *dryRun); err != nil {
			logger.WithError(err).Fatal("Import failed")
		}
	case "validate":
		if err := validateImport(absDBPath, absJSONPath, logger); err != nil {
			logger.WithError(err).Fatal("Validation failed")
		}
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: check, import, validate")
	}

	logger.Info("Invoice import tool completed successfully")
}

func checkDocuments(jsonPath string, logger *logrus.Logger) error {
	// No database needed to look at the directory
	importer := migration.NewJSONImporter(nil, jsonPath, logger)
	hasFiles, files := importer.CheckJSONFiles()

	if !hasFiles {
		fmt.Println("No invoice documents found in the specified directory.")
		fmt.Printf("Checked directory: %s\n", jsonPath)
		return nil
	}

	fmt.Printf("Found %d invoice documents ready for import:\n", len(files))
	for _, file := range files {
		fmt.Printf("  %s\n", file)
	}

	return nil
}

func runImport(dbPath, jsonPath string, logger *logrus.Logger, dryRun bool) error {
	if dryRun {
		logger.Info("Performing dry run - no changes will be made")
		return checkDocuments(jsonPath, logger)
	}

	conn, err := database.InitializeDatabase(dbPath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer conn.Close()

	// Item rows reference their invoice, so foreign keys must be enforced
	// before anything is inserted
	if err := conn.HealthCheck(context.Background()); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	repos := sqlite.NewManager(conn.GetDB(), logger)
	importer := migration.NewJSONImporter(repos.Invoices(), jsonPath, logger)

	result, err := importer.ImportFromJSON(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("\n=== Import Results ===\n")
	fmt.Printf("Invoices imported: %d\n", result.InvoicesProcessed)
	fmt.Printf("Items imported: %d\n", result.ItemsProcessed)
	fmt.Printf("Documents skipped: %d\n", result.Skipped)

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		for _, warning := range result.Warnings {
			fmt.Printf("  %s\n", warning)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, msg := range result.Errors {
			fmt.Printf("  %s\n", msg)
		}
		return fmt.Errorf("import completed with %d errors", len(result.Errors))
	}

	return importer.ValidateImport(context.Background())
}

func validateImport(dbPath, jsonPath string, logger *logrus.Logger) error {
	conn, err := database.InitializeDatabase(dbPath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer conn.Close()

	repos := sqlite.NewManager(conn.GetDB(), logger)
	importer := migration.NewJSONImporter(repos.Invoices(), jsonPath, logger)

	if err := importer.ValidateImport(context.Background()); err != nil {
		return err
	}

	fmt.Println("Import validation passed successfully")
	return nil
}
