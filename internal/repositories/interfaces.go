package repositories

import (
	"context"

	"invoice-api/internal/models"
)

// InvoiceRepository defines persistence operations for invoices. Invoices are
// keyed by their client-supplied reference ID, not a generated surrogate.
type InvoiceRepository interface {
	// Create stores a new invoice. It returns a duplicate entry error when
	// the reference ID is already taken, leaving the stored record untouched.
	Create(ctx context.Context, invoice *models.Invoice) error

	// GetByReferenceID retrieves an invoice by its reference ID
	GetByReferenceID(ctx context.Context, referenceID string) (*models.Invoice, error)

	// List retrieves all stored invoices
	List(ctx context.Context) ([]*models.Invoice, error)

	// Update replaces the stored invoice identified by its reference ID
	Update(ctx context.Context, invoice *models.Invoice) error

	// Delete removes an invoice by its reference ID
	Delete(ctx context.Context, referenceID string) error
}

// RepositoryManager aggregates repository access and owns the backend
// resources behind it
type RepositoryManager interface {
	// Invoices returns the invoice repository
	Invoices() InvoiceRepository

	// HealthCheck verifies the backend is reachable
	HealthCheck(ctx context.Context) error

	// Close releases backend resources
	Close() error
}
