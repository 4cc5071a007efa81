package services

import (
	"context"
	"errors"

	"invoice-api/internal/models"
)

// Service-level sentinel errors. Handlers map these onto wire responses.
var (
	// ErrNoUpdatableFields is returned when an update request carries none of
	// the fields the API allows to change.
	ErrNoUpdatableFields = errors.New("no valid fields to update")

	// ErrItemNotFound is returned when an item ID does not exist on the
	// target invoice.
	ErrItemNotFound = errors.New("item not found")
)

// InvoiceService defines the interface for invoice business logic operations
type InvoiceService interface {
	// CRUD operations
	CreateInvoice(ctx context.Context, invoice *models.Invoice, attachment *Attachment) (*models.Invoice, error)
	GetInvoice(ctx context.Context, referenceID string) (*models.Invoice, error)
	ListInvoices(ctx context.Context) ([]*models.Invoice, error)
	UpdateInvoice(ctx context.Context, referenceID string, req *UpdateInvoiceRequest) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, referenceID string) error

	// Line item operations
	AddInvoiceItem(ctx context.Context, referenceID string, item models.Item) (*models.Item, error)
	RemoveInvoiceItem(ctx context.Context, referenceID, itemID string) error

	// Attachment operations
	GetAttachment(ctx context.Context, key string) (*AttachmentContent, error)

	// Validation and business rules
	ValidateInvoice(ctx context.Context, invoice *models.Invoice) error
}

// Attachment is an uploaded file accompanying an invoice create request.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentContent is a stored attachment retrieved for serving.
type AttachmentContent struct {
	Data        []byte
	ContentType string
	Filename    string
}

// UpdateInvoiceRequest carries a partial invoice update. Only the fields the
// API allows to change are present; nil means "leave unchanged".
type UpdateInvoiceRequest struct {
	CompanyName     *string        `json:"company_name,omitempty"`
	TIN             *string        `json:"tin,omitempty"`
	TransactionDate *string        `json:"transaction_date,omitempty"`
	Items           *[]models.Item `json:"items,omitempty"`
}

// IsEmpty reports whether the request changes nothing
func (r *UpdateInvoiceRequest) IsEmpty() bool {
	return r == nil ||
		(r.CompanyName == nil && r.TIN == nil && r.TransactionDate == nil && r.Items == nil)
}
