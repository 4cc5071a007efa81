package memory

import (
	"context"

	"invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// Manager implements repositories.RepositoryManager backed by process memory.
// State lives only for the lifetime of the process, which is what local
// development and tests want.
type Manager struct {
	invoices *InvoiceRepository
}

// NewManager creates a new in-memory repository manager
func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{
		invoices: NewInvoiceRepository(logger),
	}
}

// Invoices returns the invoice repository
func (m *Manager) Invoices() repositories.InvoiceRepository {
	return m.invoices
}

// HealthCheck verifies the backend is reachable
func (m *Manager) HealthCheck(ctx context.Context) error {
	return nil
}

// Close releases backend resources
func (m *Manager) Close() error {
	return nil
}
