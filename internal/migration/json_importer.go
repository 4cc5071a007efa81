package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"invoice-api/internal/models"
	"invoice-api/internal/repositories"
)

// JSONImporter loads invoice documents from JSON files into a repository
// backend. Each file holds one invoice in the same shape the API stores,
// which is how the serverless deployment lays them out, one document per
// reference ID.
type JSONImporter struct {
	invoices   repositories.InvoiceRepository
	logger     *logrus.Logger
	jsonPath   string
	backupPath string
}

// NewJSONImporter creates a new JSON importer
func NewJSONImporter(invoices repositories.InvoiceRepository, jsonPath string, logger *logrus.Logger) *JSONImporter {
	return &JSONImporter{
		invoices:   invoices,
		logger:     logger,
		jsonPath:   jsonPath,
		backupPath: filepath.Join(jsonPath, "backup"),
	}
}

// ImportResult contains the results of an import run
type ImportResult struct {
	InvoicesProcessed int
	ItemsProcessed    int
	Skipped           int
	Errors            []string
	Warnings          []string
}

// CheckJSONFiles reports whether the directory holds invoice documents
// and lists the candidate files
func (m *JSONImporter) CheckJSONFiles() (bool, []string) {
	entries, err := os.ReadDir(m.jsonPath)
	if err != nil {
		return false, nil
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, entry.Name())
	}

	return len(files) > 0, files
}

// ImportFromJSON imports every invoice document found in the directory.
// Documents that fail to parse or validate are skipped with a warning so
// one bad export does not block the rest.
func (m *JSONImporter) ImportFromJSON(ctx context.Context) (*ImportResult, error) {
	m.logger.Info("Starting JSON invoice import...")

	result := &ImportResult{
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	hasFiles, files := m.CheckJSONFiles()
	if !hasFiles {
		return result, fmt.Errorf("no JSON files found in directory: %s", m.jsonPath)
	}

	if err := m.createJSONBackup(files); err != nil {
		m.logger.WithError(err).Warn("Failed to create JSON backup")
		result.Warnings = append(result.Warnings, fmt.Sprintf("Failed to create JSON backup: %v", err))
	}

	for _, filename := range files {
		invoice, err := m.readInvoiceDocument(filename)
		if err != nil {
			m.logger.WithError(err).WithField("file", filename).Warn("Invalid invoice document, skipping")
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", filename, err))
			result.Skipped++
			continue
		}

		if err := m.invoices.Create(ctx, invoice); err != nil {
			if repositories.IsDuplicate(err) {
				m.logger.WithField("reference_id", invoice.ReferenceID).Warn("Invoice already exists, skipping")
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s: already exists", invoice.ReferenceID))
				result.Skipped++
				continue
			}
			m.logger.WithError(err).WithField("reference_id", invoice.ReferenceID).Error("Failed to store invoice")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", invoice.ReferenceID, err))
			continue
		}

		result.InvoicesProcessed++
		result.ItemsProcessed += len(invoice.Items)
	}

	m.logger.WithFields(logrus.Fields{
		"invoices": result.InvoicesProcessed,
		"items":    result.ItemsProcessed,
		"skipped":  result.Skipped,
	}).Info("JSON invoice import completed")

	return result, nil
}

// readInvoiceDocument reads and validates a single invoice document
func (m *JSONImporter) readInvoiceDocument(filename string) (*models.Invoice, error) {
	data, err := os.ReadFile(filepath.Join(m.jsonPath, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var invoice models.Invoice
	if err := json.Unmarshal(data, &invoice); err != nil {
		return nil, fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	// Exports from the live system carry these, hand-built seed files
	// often do not
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusPending
	}
	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	if invoice.UpdatedAt.IsZero() {
		invoice.UpdatedAt = now
	}

	expected := strings.TrimSuffix(filename, ".json")
	if expected != invoice.ReferenceID {
		m.logger.WithFields(logrus.Fields{
			"file":         filename,
			"reference_id": invoice.ReferenceID,
		}).Warn("File name does not match reference ID")
	}

	return &invoice, nil
}

// ValidateImport verifies every document in the directory is retrievable
// from the repository
func (m *JSONImporter) ValidateImport(ctx context.Context) error {
	m.logger.Info("Validating import results...")

	_, files := m.CheckJSONFiles()

	missing := 0
	for _, filename := range files {
		invoice, err := m.readInvoiceDocument(filename)
		if err != nil {
			continue
		}

		if _, err := m.invoices.GetByReferenceID(ctx, invoice.ReferenceID); err != nil {
			m.logger.WithError(err).WithField("reference_id", invoice.ReferenceID).Error("Imported invoice not found")
			missing++
		}
	}

	stored, err := m.invoices.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored invoices: %w", err)
	}

	m.logger.WithFields(logrus.Fields{
		"documents": len(files),
		"stored":    len(stored),
	}).Info("Import validation completed")

	if missing > 0 {
		return fmt.Errorf("%d imported invoices are missing from the repository", missing)
	}

	return nil
}

// createJSONBackup copies the source documents aside before import
func (m *JSONImporter) createJSONBackup(files []string) error {
	if err := os.MkdirAll(m.backupPath, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")

	for _, filename := range files {
		srcPath := filepath.Join(m.jsonPath, filename)
		dstPath := filepath.Join(m.backupPath, fmt.Sprintf("%s_%s", timestamp, filename))

		if err := copyFile(srcPath, dstPath); err != nil {
			return fmt.Errorf("failed to backup %s: %w", filename, err)
		}
	}

	m.logger.WithFields(logrus.Fields{
		"files":       len(files),
		"backup_path": m.backupPath,
	}).Info("JSON files backed up")

	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
