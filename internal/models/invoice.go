package models

import (
	"fmt"
	"time"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "Pending"
	InvoiceStatusApproved InvoiceStatus = "Approved"
	InvoiceStatusRejected InvoiceStatus = "Rejected"
)

// IsValid reports whether the status is a known lifecycle state
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusApproved, InvoiceStatusRejected:
		return true
	}
	return false
}

// Invoice represents a supplier invoice in the system
type Invoice struct {
	ReferenceID     string        `json:"reference_id" db:"reference_id" validate:"required"`
	CompanyName     string        `json:"company_name" db:"company_name" validate:"required"`
	TIN             string        `json:"tin" db:"tin" validate:"required"`
	InvoiceNumber   string        `json:"invoice_number" db:"invoice_number" validate:"required"`
	TransactionDate string        `json:"transaction_date" db:"transaction_date" validate:"required"`
	Encoder         string        `json:"encoder" db:"encoder" validate:"required"`
	Payee           string        `json:"payee" db:"payee" validate:"required"`
	PayeeAccount    string        `json:"payee_account" db:"payee_account" validate:"required"`
	Approver        string        `json:"approver" db:"approver" validate:"required"`
	Status          InvoiceStatus `json:"status" db:"status"`
	FileURL         *string       `json:"file_url,omitempty" db:"file_url"`
	Items           []Item        `json:"items" validate:"dive"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// Validate validates the invoice data
func (i *Invoice) Validate() error {
	if err := ValidateRequired(i.ReferenceID, "reference_id"); err != nil {
		return err
	}

	if err := ValidateRequired(i.CompanyName, "company_name"); err != nil {
		return err
	}

	if err := ValidateRequired(i.TIN, "tin"); err != nil {
		return err
	}

	if err := ValidateRequired(i.InvoiceNumber, "invoice_number"); err != nil {
		return err
	}

	if err := ValidateRequired(i.TransactionDate, "transaction_date"); err != nil {
		return err
	}

	if i.Status != "" && !i.Status.IsValid() {
		return &ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("status must be one of: %s, %s, %s", InvoiceStatusPending, InvoiceStatusApproved, InvoiceStatusRejected),
			Value:   string(i.Status),
		}
	}

	for idx := range i.Items {
		if err := i.Items[idx].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", idx, err)
		}
	}

	return nil
}

// AddItem appends an item to the invoice
func (i *Invoice) AddItem(item Item) {
	i.Items = append(i.Items, item)
}

// RemoveItem removes every item whose ID matches the given value and reports
// whether anything was removed. IDs compare as strings regardless of how the
// client encoded them.
func (i *Invoice) RemoveItem(itemID string) bool {
	filtered := make([]Item, 0, len(i.Items))
	for _, item := range i.Items {
		if string(item.ID) == itemID {
			continue
		}
		filtered = append(filtered, item)
	}

	if len(filtered) == len(i.Items) {
		return false
	}

	i.Items = filtered
	return true
}

// SetFileURL records where the invoice attachment was stored
func (i *Invoice) SetFileURL(url string) {
	if url == "" {
		i.FileURL = nil
	} else {
		i.FileURL = &url
	}
}

// GetFileURL returns the attachment URL or empty string if none is attached
func (i *Invoice) GetFileURL() string {
	if i.FileURL == nil {
		return ""
	}
	return *i.FileURL
}

// Clone returns a deep copy of the invoice
func (i *Invoice) Clone() *Invoice {
	out := *i
	if i.FileURL != nil {
		u := *i.FileURL
		out.FileURL = &u
	}
	if i.Items != nil {
		out.Items = make([]Item, len(i.Items))
		copy(out.Items, i.Items)
	}
	return &out
}

// Touch updates the modification timestamp
func (i *Invoice) Touch(now time.Time) {
	i.UpdatedAt = now
}
