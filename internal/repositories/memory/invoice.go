package memory

import (
	"context"
	"sort"
	"sync"

	"invoice-api/internal/models"
	"invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// InvoiceRepository is an in-memory invoice store guarded by a read-write
// mutex. Records are deep-copied on the way in and out so callers never
// alias stored state.
type InvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*models.Invoice
	logger   *logrus.Logger
}

// NewInvoiceRepository creates an empty in-memory invoice repository
func NewInvoiceRepository(logger *logrus.Logger) *InvoiceRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &InvoiceRepository{
		invoices: make(map[string]*models.Invoice),
		logger:   logger,
	}
}

// Create stores a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invoices[invoice.ReferenceID]; exists {
		return repositories.DuplicateError("invoice", "reference_id", invoice.ReferenceID)
	}

	r.invoices[invoice.ReferenceID] = invoice.Clone()

	r.logger.WithFields(logrus.Fields{
		"reference_id": invoice.ReferenceID,
		"items":        len(invoice.Items),
	}).Debug("Invoice stored")

	return nil
}

// GetByReferenceID retrieves an invoice by its reference ID
func (r *InvoiceRepository) GetByReferenceID(ctx context.Context, referenceID string) (*models.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invoice, exists := r.invoices[referenceID]
	if !exists {
		return nil, repositories.NotFoundError("invoice", referenceID)
	}

	return invoice.Clone(), nil
}

// List retrieves all stored invoices, newest first
func (r *InvoiceRepository) List(ctx context.Context) ([]*models.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invoices := make([]*models.Invoice, 0, len(r.invoices))
	for _, invoice := range r.invoices {
		invoices = append(invoices, invoice.Clone())
	}

	sort.Slice(invoices, func(i, j int) bool {
		if invoices[i].CreatedAt.Equal(invoices[j].CreatedAt) {
			return invoices[i].ReferenceID < invoices[j].ReferenceID
		}
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})

	return invoices, nil
}

// Update replaces a stored invoice
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invoices[invoice.ReferenceID]; !exists {
		return repositories.NotFoundError("invoice", invoice.ReferenceID)
	}

	r.invoices[invoice.ReferenceID] = invoice.Clone()
	return nil
}

// Delete removes an invoice by its reference ID
func (r *InvoiceRepository) Delete(ctx context.Context, referenceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invoices[referenceID]; !exists {
		return repositories.NotFoundError("invoice", referenceID)
	}

	delete(r.invoices, referenceID)
	return nil
}
