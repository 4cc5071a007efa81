package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"invoice-api/internal/models"
	"invoice-api/internal/repositories"
)

func testInvoice(referenceID string) *models.Invoice {
	return &models.Invoice{
		ReferenceID:     referenceID,
		CompanyName:     "Acme Trading",
		TIN:             "123-456-789",
		InvoiceNumber:   "INV-1001",
		TransactionDate: "2025-08-20",
		Encoder:         "jsantos",
		Payee:           "Acme Trading",
		PayeeAccount:    "0012-3456-78",
		Approver:        "mreyes",
		Status:          models.InvoiceStatusPending,
		Items: []models.Item{
			{ID: "1", Particulars: "Office supplies", ProjectClass: "GEN", Account: "5020", Vatable: true, Amount: 1500},
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// TestCreateAndGet tests round-tripping an invoice through the store
func TestCreateAndGet(t *testing.T) {
	repo := NewInvoiceRepository(nil)
	ctx := context.Background()

	if err := repo.Create(ctx, testInvoice("082025-001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByReferenceID(ctx, "082025-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CompanyName != "Acme Trading" {
		t.Errorf("Expected company 'Acme Trading', got '%s'", got.CompanyName)
	}
	if len(got.Items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(got.Items))
	}
}

// TestCreateDuplicate tests that duplicate reference IDs are rejected and the
// original record survives
func TestCreateDuplicate(t *testing.T) {
	repo := NewInvoiceRepository(nil)
	ctx := context.Background()

	if err := repo.Create(ctx, testInvoice("082025-001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := testInvoice("082025-001")
	dup.CompanyName = "Impostor Inc"
	err := repo.Create(ctx, dup)
	if err == nil {
		t.Fatal("Expected duplicate create to fail")
	}
	if !repositories.IsDuplicate(err) {
		t.Errorf("Expected duplicate entry error, got %v", err)
	}

	got, err := repo.GetByReferenceID(ctx, "082025-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CompanyName != "Acme Trading" {
		t.Errorf("Expected original record untouched, got company '%s'", got.CompanyName)
	}
}

// TestGetMissing tests the not-found error for unknown reference IDs
func TestGetMissing(t *testing.T) {
	repo := NewInvoiceRepository(nil)

	_, err := repo.GetByReferenceID(context.Background(), "nope")
	if err == nil {
		t.Fatal("Expected get of unknown invoice to fail")
	}
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

// TestUpdate tests replacing a stored invoice
func TestUpdate(t *testing.T) {
	repo := NewInvoiceRepository(nil)
	ctx := context.Background()

	if err := repo.Create(ctx, testInvoice("082025-001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated := testInvoice("082025-001")
	updated.CompanyName = "Acme Trading Corp"
	if err := repo.Update(ctx, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.GetByReferenceID(ctx, "082025-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CompanyName != "Acme Trading Corp" {
		t.Errorf("Expected updated company name, got '%s'", got.CompanyName)
	}

	if err := repo.Update(ctx, testInvoice("missing")); !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error updating unknown invoice, got %v", err)
	}
}

// TestDelete tests removing invoices
func TestDelete(t *testing.T) {
	repo := NewInvoiceRepository(nil)
	ctx := context.Background()

	if err := repo.Create(ctx, testInvoice("082025-001")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.Delete(ctx, "082025-001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.GetByReferenceID(ctx, "082025-001"); !repositories.IsNotFound(err) {
		t.Errorf("Expected invoice to be gone, got %v", err)
	}

	if err := repo.Delete(ctx, "082025-001"); !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error deleting twice, got %v", err)
	}
}

// TestList tests listing all stored invoices
func TestList(t *testing.T) {
	repo := NewInvoiceRepository(nil)
	ctx := context.Background()

	invoices, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(invoices) != 0 {
		t.Errorf("Expected empty list, got %d", len(invoices))
	}

	for i := 0; i < 3; i++ {
		inv := testInvoice(fmt.Sprintf("082025-%03d", i+1))
		inv.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		if err := repo.Create(ctx, inv); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	invoices, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(invoices) != 3 {
		t.Fatalf("Expected 3 invoices, got %d", len(invoices))
	}
	if invoices[0].ReferenceID != "082025-003" {
		t.Errorf("Expected newest invoice first, got '%s'", invoices[0].ReferenceID)
	}
}

// TestStoredRecordsDoNotAlias tests that mutations on returned values never
// leak into the store
func TestStoredRecordsDoNotAlias(t *testing.T) {
	repo := NewInvoiceRepository(nil)
	ctx := context.Background()

	original := testInvoice("082025-001")
	if err := repo.Create(ctx, original); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Mutating the value passed to Create must not affect the store
	original.Items[0].Amount = 9999

	got, err := repo.GetByReferenceID(ctx, "082025-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Items[0].Amount != 1500 {
		t.Errorf("Expected stored amount 1500, got %.2f", got.Items[0].Amount)
	}

	// Mutating a retrieved value must not affect the store either
	got.Items[0].Amount = 7777

	again, err := repo.GetByReferenceID(ctx, "082025-001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Items[0].Amount != 1500 {
		t.Errorf("Expected stored amount still 1500, got %.2f", again.Items[0].Amount)
	}
}

// TestConcurrentAccess exercises the store from many goroutines at once
func TestConcurrentAccess(t *testing.T) {
	repo := NewInvoiceRepository(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ref := fmt.Sprintf("082025-%03d", n)
			if err := repo.Create(ctx, testInvoice(ref)); err != nil {
				t.Errorf("Create %s failed: %v", ref, err)
				return
			}
			if _, err := repo.GetByReferenceID(ctx, ref); err != nil {
				t.Errorf("Get %s failed: %v", ref, err)
			}
			if _, err := repo.List(ctx); err != nil {
				t.Errorf("List failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	invoices, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(invoices) != 20 {
		t.Errorf("Expected 20 invoices, got %d", len(invoices))
	}
}
