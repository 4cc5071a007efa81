package sqlite

import (
	"context"
	"database/sql"

	"invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Manager implements the RepositoryManager interface for SQLite
type Manager struct {
	db       *sql.DB
	invoices repositories.InvoiceRepository
	logger   *logrus.Logger
}

// NewManager creates a new SQLite repository manager using an existing connection
func NewManager(db *sql.DB, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		db:       db,
		invoices: NewInvoiceRepository(db, logger),
		logger:   logger,
	}
}

// Invoices returns the invoice repository
func (m *Manager) Invoices() repositories.InvoiceRepository {
	return m.invoices
}

// HealthCheck verifies the database connection is usable
func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.db == nil {
		return repositories.ConnectionError(repositories.ErrConnection)
	}

	if err := m.db.PingContext(ctx); err != nil {
		return repositories.ConnectionError(err)
	}

	var result int
	if err := m.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return repositories.ConnectionError(err)
	}

	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
