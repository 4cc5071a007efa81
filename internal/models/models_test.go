package models

import (
	"encoding/json"
	"testing"
	"time"
)

func sampleInvoice() *Invoice {
	return &Invoice{
		ReferenceID:     "082025-001",
		CompanyName:     "Acme Trading",
		TIN:             "123-456-789",
		InvoiceNumber:   "INV-1001",
		TransactionDate: "2025-08-20",
		Encoder:         "jsantos",
		Payee:           "Acme Trading",
		PayeeAccount:    "0012-3456-78",
		Approver:        "mreyes",
		Status:          InvoiceStatusPending,
		Items: []Item{
			{ID: "1", Particulars: "Office supplies", ProjectClass: "GEN", Account: "5020", Vatable: true, Amount: 1500},
			{ID: "2", Particulars: "Courier", ProjectClass: "GEN", Account: "5040", Vatable: false, Amount: 350},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// TestInvoiceValidation tests invoice validation for complete and incomplete data
func TestInvoiceValidation(t *testing.T) {
	inv := sampleInvoice()
	if err := inv.Validate(); err != nil {
		t.Errorf("Invoice validation failed: %v", err)
	}

	missing := sampleInvoice()
	missing.CompanyName = ""
	if err := missing.Validate(); err == nil {
		t.Error("Expected validation to fail for missing company_name")
	}

	badStatus := sampleInvoice()
	badStatus.Status = "Archived"
	if err := badStatus.Validate(); err == nil {
		t.Error("Expected validation to fail for unknown status")
	}

	badItem := sampleInvoice()
	badItem.Items[0].Account = ""
	if err := badItem.Validate(); err == nil {
		t.Error("Expected validation to fail for item missing account")
	}
}

// TestInvoiceStatus tests the lifecycle state checks
func TestInvoiceStatus(t *testing.T) {
	for _, s := range []InvoiceStatus{InvoiceStatusPending, InvoiceStatusApproved, InvoiceStatusRejected} {
		if !s.IsValid() {
			t.Errorf("Expected status '%s' to be valid", s)
		}
	}

	if InvoiceStatus("Archived").IsValid() {
		t.Error("Expected unknown status to be invalid")
	}
}

// TestRemoveItem tests item removal by string-compared ID
func TestRemoveItem(t *testing.T) {
	inv := sampleInvoice()

	if inv.RemoveItem("99") {
		t.Error("Expected removal of unknown item to report false")
	}
	if len(inv.Items) != 2 {
		t.Errorf("Expected item list to stay at 2, got %d", len(inv.Items))
	}

	if !inv.RemoveItem("1") {
		t.Error("Expected removal of item '1' to report true")
	}
	if len(inv.Items) != 1 {
		t.Errorf("Expected 1 item after removal, got %d", len(inv.Items))
	}
	if inv.Items[0].ID != "2" {
		t.Errorf("Expected remaining item '2', got '%s'", inv.Items[0].ID)
	}
}

// TestItemIDUnmarshal tests that item IDs accept string and number tokens
func TestItemIDUnmarshal(t *testing.T) {
	var item Item
	if err := json.Unmarshal([]byte(`{"id": 42, "particulars": "Printing", "project_class": "GEN", "account": "5020", "vatable": true, "amount": 100}`), &item); err != nil {
		t.Fatalf("Failed to unmarshal numeric item id: %v", err)
	}
	if item.ID != "42" {
		t.Errorf("Expected numeric id normalized to '42', got '%s'", item.ID)
	}

	if err := json.Unmarshal([]byte(`{"id": "ITM-7"}`), &item); err != nil {
		t.Fatalf("Failed to unmarshal string item id: %v", err)
	}
	if item.ID != "ITM-7" {
		t.Errorf("Expected id 'ITM-7', got '%s'", item.ID)
	}

	if err := json.Unmarshal([]byte(`{"id": true}`), &item); err == nil {
		t.Error("Expected boolean item id to fail")
	}
}

// TestFileURL tests attachment URL handling
func TestFileURL(t *testing.T) {
	inv := sampleInvoice()

	if inv.GetFileURL() != "" {
		t.Errorf("Expected empty file URL, got '%s'", inv.GetFileURL())
	}

	inv.SetFileURL("https://files.example.com/attachments/082025-001/scan.pdf")
	if inv.GetFileURL() != "https://files.example.com/attachments/082025-001/scan.pdf" {
		t.Errorf("Unexpected file URL '%s'", inv.GetFileURL())
	}

	inv.SetFileURL("")
	if inv.FileURL != nil {
		t.Error("Expected file URL to be cleared")
	}
}

// TestClone tests that cloned invoices do not alias the original
func TestClone(t *testing.T) {
	inv := sampleInvoice()
	inv.SetFileURL("file:///tmp/storage/a.pdf")

	clone := inv.Clone()
	clone.Items[0].Amount = 9999
	clone.SetFileURL("file:///tmp/storage/b.pdf")
	clone.CompanyName = "Other Corp"

	if inv.Items[0].Amount != 1500 {
		t.Errorf("Expected original item amount 1500, got %.2f", inv.Items[0].Amount)
	}
	if inv.GetFileURL() != "file:///tmp/storage/a.pdf" {
		t.Errorf("Expected original file URL unchanged, got '%s'", inv.GetFileURL())
	}
	if inv.CompanyName != "Acme Trading" {
		t.Errorf("Expected original company unchanged, got '%s'", inv.CompanyName)
	}
}

// TestValidationFunctions tests the validation utility functions
func TestValidationFunctions(t *testing.T) {
	if err := ValidateRequired("", "name"); err == nil {
		t.Error("Expected required validation to fail for empty string")
	}

	if err := ValidateRequired("  ", "name"); err == nil {
		t.Error("Expected required validation to fail for whitespace")
	}

	if err := ValidateRequired("Acme", "name"); err != nil {
		t.Errorf("Expected required validation to pass: %v", err)
	}

	if err := ValidatePositiveNumber(-5.0, "amount"); err == nil {
		t.Error("Expected positive number validation to fail for negative number")
	}

	if err := ValidatePositiveNumber(0, "amount"); err != nil {
		t.Errorf("Expected positive number validation to pass for zero: %v", err)
	}

	if err := ValidateEnum("Pending", []string{"Pending", "Approved"}, "status"); err != nil {
		t.Errorf("Expected enum validation to pass: %v", err)
	}

	if err := ValidateEnum("Archived", []string{"Pending", "Approved"}, "status"); err == nil {
		t.Error("Expected enum validation to fail for unknown value")
	}
}

// TestTINValidation tests taxpayer identification number format checks
func TestTINValidation(t *testing.T) {
	valid := []string{"123-456-789", "123456789", "123-456-789-000"}
	for _, tin := range valid {
		if !IsValidTIN(tin) {
			t.Errorf("Expected TIN '%s' to be valid", tin)
		}
	}

	invalid := []string{"", "12-345", "abc-def-ghi", "1234-567-89"}
	for _, tin := range invalid {
		if IsValidTIN(tin) {
			t.Errorf("Expected TIN '%s' to be invalid", tin)
		}
	}
}

// TestSanitizeString tests whitespace normalization
func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  Acme   Trading  "); got != "Acme Trading" {
		t.Errorf("Expected 'Acme Trading', got '%s'", got)
	}
}
