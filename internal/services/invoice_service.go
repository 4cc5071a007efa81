package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"invoice-api/internal/adapters/storage"
	"invoice-api/internal/models"
	"invoice-api/internal/repositories"
)

// invoiceService implements the InvoiceService interface
type invoiceService struct {
	invoiceRepo repositories.InvoiceRepository
	fileStorage storage.FileStorage
	validator   *validator.Validate
}

// NewInvoiceService creates a new invoice service instance
func NewInvoiceService(invoiceRepo repositories.InvoiceRepository, fileStorage storage.FileStorage) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		fileStorage: fileStorage,
		validator:   validator.New(),
	}
}

// CreateInvoice stores a new invoice. When an attachment is supplied it is
// uploaded first and its URL recorded on the invoice; if the create then
// fails the uploaded file is left behind rather than rolled back.
func (s *invoiceService) CreateInvoice(ctx context.Context, invoice *models.Invoice, attachment *Attachment) (*models.Invoice, error) {
	if invoice == nil {
		return nil, fmt.Errorf("invoice cannot be nil")
	}

	now := time.Now().UTC()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	invoice.UpdatedAt = now
	if invoice.Status == "" {
		invoice.Status = models.InvoiceStatusPending
	}
	if invoice.Items == nil {
		invoice.Items = []models.Item{}
	}

	if attachment != nil && len(attachment.Data) > 0 {
		url, err := s.uploadAttachment(ctx, invoice.ReferenceID, attachment)
		if err != nil {
			return nil, fmt.Errorf("failed to upload attachment: %w", err)
		}
		invoice.SetFileURL(url)
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetInvoice retrieves an invoice by reference ID
func (s *invoiceService) GetInvoice(ctx context.Context, referenceID string) (*models.Invoice, error) {
	if referenceID == "" {
		return nil, fmt.Errorf("reference ID cannot be empty")
	}

	return s.invoiceRepo.GetByReferenceID(ctx, referenceID)
}

// ListInvoices retrieves all stored invoices
func (s *invoiceService) ListInvoices(ctx context.Context) ([]*models.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	if invoices == nil {
		invoices = []*models.Invoice{}
	}
	return invoices, nil
}

// UpdateInvoice applies a partial update to the stored invoice and returns
// the updated record
func (s *invoiceService) UpdateInvoice(ctx context.Context, referenceID string, req *UpdateInvoiceRequest) (*models.Invoice, error) {
	if referenceID == "" {
		return nil, fmt.Errorf("reference ID cannot be empty")
	}
	if req.IsEmpty() {
		return nil, ErrNoUpdatableFields
	}

	invoice, err := s.invoiceRepo.GetByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	if req.CompanyName != nil {
		invoice.CompanyName = *req.CompanyName
	}
	if req.TIN != nil {
		invoice.TIN = *req.TIN
	}
	if req.TransactionDate != nil {
		invoice.TransactionDate = *req.TransactionDate
	}
	if req.Items != nil {
		items := make([]models.Item, len(*req.Items))
		copy(items, *req.Items)
		invoice.Items = items
	}

	invoice.Touch(time.Now().UTC())

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// DeleteInvoice removes an invoice by reference ID
func (s *invoiceService) DeleteInvoice(ctx context.Context, referenceID string) error {
	if referenceID == "" {
		return fmt.Errorf("reference ID cannot be empty")
	}

	return s.invoiceRepo.Delete(ctx, referenceID)
}

// AddInvoiceItem appends a line item to an existing invoice and returns the
// item as stored
func (s *invoiceService) AddInvoiceItem(ctx context.Context, referenceID string, item models.Item) (*models.Item, error) {
	if referenceID == "" {
		return nil, fmt.Errorf("reference ID cannot be empty")
	}

	invoice, err := s.invoiceRepo.GetByReferenceID(ctx, referenceID)
	if err != nil {
		return nil, err
	}

	invoice.AddItem(item)
	invoice.Touch(time.Now().UTC())

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}

	return &item, nil
}

// RemoveInvoiceItem removes every line item with the given ID from the
// invoice. Returns ErrItemNotFound when no item matches; the stored invoice
// is left untouched in that case.
func (s *invoiceService) RemoveInvoiceItem(ctx context.Context, referenceID, itemID string) error {
	if referenceID == "" {
		return fmt.Errorf("reference ID cannot be empty")
	}

	invoice, err := s.invoiceRepo.GetByReferenceID(ctx, referenceID)
	if err != nil {
		return err
	}

	if !invoice.RemoveItem(itemID) {
		return ErrItemNotFound
	}

	invoice.Touch(time.Now().UTC())

	return s.invoiceRepo.Update(ctx, invoice)
}

// GetAttachment retrieves a stored attachment with its content type so it
// can be served back to a client
func (s *invoiceService) GetAttachment(ctx context.Context, key string) (*AttachmentContent, error) {
	if key == "" {
		return nil, fmt.Errorf("attachment key cannot be empty")
	}

	data, err := s.fileStorage.Retrieve(ctx, key)
	if err != nil {
		return nil, err
	}

	content := &AttachmentContent{
		Data:        data,
		ContentType: "application/octet-stream",
		Filename:    filepath.Base(key),
	}

	// Metadata is best effort, the bytes are already in hand
	if meta, err := s.fileStorage.GetMetadata(ctx, key); err == nil {
		if meta.ContentType != "" {
			content.ContentType = meta.ContentType
		}
		if original := meta.Metadata["original_filename"]; original != "" {
			content.Filename = original
		}
	}

	return content, nil
}

// ValidateInvoice validates invoice data against the model constraints.
// The wire contract only requires fields to be present, so the create and
// update paths do not call this; it is exposed for callers that need full
// model validation.
func (s *invoiceService) ValidateInvoice(ctx context.Context, invoice *models.Invoice) error {
	if invoice == nil {
		return fmt.Errorf("invoice cannot be nil")
	}

	if err := s.validator.Struct(invoice); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return invoice.Validate()
}

// uploadAttachment stores the file under a key scoped to the invoice and
// returns a URL for it. A fresh UUID keeps repeated uploads for the same
// invoice from colliding.
func (s *invoiceService) uploadAttachment(ctx context.Context, referenceID string, attachment *Attachment) (string, error) {
	if s.fileStorage == nil {
		return "", fmt.Errorf("file storage is not configured")
	}

	ext := strings.ToLower(filepath.Ext(attachment.Filename))
	key := fmt.Sprintf("attachments/%s/%s%s", referenceID, uuid.NewString(), ext)

	opts := &storage.StoreOptions{
		ContentType: attachment.ContentType,
		Metadata:    map[string]string{"original_filename": attachment.Filename},
		Overwrite:   true,
	}
	if err := s.fileStorage.Store(ctx, key, attachment.Data, opts); err != nil {
		return "", err
	}

	url, err := s.fileStorage.GenerateURL(ctx, key, 0)
	if err != nil {
		return "", err
	}

	return url, nil
}
