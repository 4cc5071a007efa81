package dynamo

import (
	"context"
	"testing"
	"time"

	"invoice-api/internal/models"
	"invoice-api/internal/repositories"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
)

type mockDynamoDB struct {
	dynamodbiface.DynamoDBAPI
	items map[string]map[string]*dynamodb.AttributeValue
	err   error
}

func newMockDynamoDB() *mockDynamoDB {
	return &mockDynamoDB{items: map[string]map[string]*dynamodb.AttributeValue{}}
}

func itemKey(item map[string]*dynamodb.AttributeValue) string {
	av, ok := item["reference_id"]
	if !ok || av.S == nil {
		return ""
	}
	return *av.S
}

func conditionFailed() error {
	return awserr.New(dynamodb.ErrCodeConditionalCheckFailedException, "The conditional request failed", nil)
}

func (md *mockDynamoDB) PutItemWithContext(ctx aws.Context, input *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	if md.err != nil {
		return nil, md.err
	}

	id := itemKey(input.Item)
	_, exists := md.items[id]

	if input.ConditionExpression != nil {
		switch *input.ConditionExpression {
		case "attribute_not_exists(reference_id)":
			if exists {
				return nil, conditionFailed()
			}
		case "attribute_exists(reference_id)":
			if !exists {
				return nil, conditionFailed()
			}
		}
	}

	md.items[id] = input.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (md *mockDynamoDB) GetItemWithContext(ctx aws.Context, input *dynamodb.GetItemInput, opts ...request.Option) (*dynamodb.GetItemOutput, error) {
	if md.err != nil {
		return nil, md.err
	}

	id := itemKey(input.Key)
	item, ok := md.items[id]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (md *mockDynamoDB) ScanWithContext(ctx aws.Context, input *dynamodb.ScanInput, opts ...request.Option) (*dynamodb.ScanOutput, error) {
	if md.err != nil {
		return nil, md.err
	}

	output := &dynamodb.ScanOutput{}
	for _, item := range md.items {
		output.Items = append(output.Items, item)
	}
	output.Count = aws.Int64(int64(len(output.Items)))
	return output, nil
}

func (md *mockDynamoDB) DeleteItemWithContext(ctx aws.Context, input *dynamodb.DeleteItemInput, opts ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	if md.err != nil {
		return nil, md.err
	}

	id := itemKey(input.Key)
	if _, ok := md.items[id]; !ok {
		if input.ConditionExpression != nil && *input.ConditionExpression == "attribute_exists(reference_id)" {
			return nil, conditionFailed()
		}
	}
	delete(md.items, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (md *mockDynamoDB) DescribeTableWithContext(ctx aws.Context, input *dynamodb.DescribeTableInput, opts ...request.Option) (*dynamodb.DescribeTableOutput, error) {
	if md.err != nil {
		return nil, md.err
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func testInvoice(referenceID string) *models.Invoice {
	now := time.Date(2025, 8, 20, 9, 30, 0, 0, time.UTC)
	return &models.Invoice{
		ReferenceID:     referenceID,
		CompanyName:     "Acme Trading",
		TIN:             "123-456-789",
		InvoiceNumber:   "INV-1001",
		TransactionDate: "2025-08-20",
		Encoder:         "jdoe",
		Payee:           "Acme Trading Corp",
		PayeeAccount:    "001-234567-890",
		Approver:        "msantos",
		Status:          models.InvoiceStatusPending,
		Items: []models.Item{
			{ID: "1", Particulars: "Office supplies", ProjectClass: "Admin", Account: "6010", Vatable: true, Amount: 1500.50},
			{ID: "2", Particulars: "Catering", ProjectClass: "Events", Account: "6020", Vatable: false, Amount: 800},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestInvoiceRepository_CreateAndGet(t *testing.T) {
	repo := NewInvoiceRepository(newMockDynamoDB(), "invoices", testLogger())
	ctx := context.Background()

	invoice := testInvoice("082025-001")
	if err := repo.Create(ctx, invoice); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	retrieved, err := repo.GetByReferenceID(ctx, "082025-001")
	if err != nil {
		t.Fatalf("GetByReferenceID() failed: %v", err)
	}

	if diff := cmp.Diff(invoice, retrieved); diff != "" {
		t.Errorf("Retrieved invoice mismatch (-want +got):\n%s", diff)
	}
}

func TestInvoiceRepository_CreateDuplicate(t *testing.T) {
	repo := NewInvoiceRepository(newMockDynamoDB(), "invoices", testLogger())
	ctx := context.Background()

	if err := repo.Create(ctx, testInvoice("082025-002")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	duplicate := testInvoice("082025-002")
	duplicate.CompanyName = "Impostor Inc"

	err := repo.Create(ctx, duplicate)
	if !repositories.IsDuplicate(err) {
		t.Errorf("Expected duplicate error, got %v", err)
	}

	retrieved, err := repo.GetByReferenceID(ctx, "082025-002")
	if err != nil {
		t.Fatalf("GetByReferenceID() failed: %v", err)
	}
	if retrieved.CompanyName != "Acme Trading" {
		t.Errorf("Original CompanyName = %s, want Acme Trading", retrieved.CompanyName)
	}
}

func TestInvoiceRepository_GetMissing(t *testing.T) {
	repo := NewInvoiceRepository(newMockDynamoDB(), "invoices", testLogger())

	_, err := repo.GetByReferenceID(context.Background(), "missing")
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestInvoiceRepository_Update(t *testing.T) {
	repo := NewInvoiceRepository(newMockDynamoDB(), "invoices", testLogger())
	ctx := context.Background()

	invoice := testInvoice("082025-003")
	if err := repo.Create(ctx, invoice); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	invoice.CompanyName = "Updated Trading"
	invoice.Items = invoice.Items[:1]
	if err := repo.Update(ctx, invoice); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	retrieved, err := repo.GetByReferenceID(ctx, "082025-003")
	if err != nil {
		t.Fatalf("GetByReferenceID() failed: %v", err)
	}
	if retrieved.CompanyName != "Updated Trading" {
		t.Errorf("CompanyName = %s, want Updated Trading", retrieved.CompanyName)
	}
	if len(retrieved.Items) != 1 {
		t.Errorf("Retrieved %d items, want 1", len(retrieved.Items))
	}
}

func TestInvoiceRepository_UpdateMissing(t *testing.T) {
	repo := NewInvoiceRepository(newMockDynamoDB(), "invoices", testLogger())

	err := repo.Update(context.Background(), testInvoice("082025-404"))
	if !repositories.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestInvoiceRepository_Delete(t *testing.T) {
	repo := NewInvoiceRepository(newMockDynamoDB(), "invoices", testLogger())
	ctx := context.Background()

	if err := repo.Create(ctx, testInvoice("082025-005")); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := repo.Delete(ctx, "082025-005"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, err := repo.GetByReferenceID(ctx, "082025-005"); !repositories.IsNotFound(err) {
		t.Errorf("Expected not found after delete, got %v", err)
	}

	if err := repo.Delete(ctx, "082025-005"); !repositories.IsNotFound(err) {
		t.Errorf("Expected not found on second delete, got %v", err)
	}
}

func TestInvoiceRepository_List(t *testing.T) {
	repo := NewInvoiceRepository(newMockDynamoDB(), "invoices", testLogger())
	ctx := context.Background()

	invoices, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(invoices) != 0 {
		t.Errorf("List() returned %d invoices, want 0", len(invoices))
	}

	base := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	for i, ref := range []string{"082025-010", "082025-011", "082025-012"} {
		invoice := testInvoice(ref)
		invoice.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		invoice.UpdatedAt = invoice.CreatedAt
		if err := repo.Create(ctx, invoice); err != nil {
			t.Fatalf("Create(%s) failed: %v", ref, err)
		}
	}

	invoices, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(invoices) != 3 {
		t.Fatalf("List() returned %d invoices, want 3", len(invoices))
	}
	if invoices[0].ReferenceID != "082025-012" {
		t.Errorf("Newest invoice = %s, want 082025-012", invoices[0].ReferenceID)
	}
	if invoices[2].ReferenceID != "082025-010" {
		t.Errorf("Oldest invoice = %s, want 082025-010", invoices[2].ReferenceID)
	}
}

func TestManager_HealthCheck(t *testing.T) {
	manager := NewManager(newMockDynamoDB(), "invoices", testLogger())

	if err := manager.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() failed: %v", err)
	}

	broken := newMockDynamoDB()
	broken.err = awserr.New("ResourceNotFoundException", "table missing", nil)
	manager = NewManager(broken, "invoices", testLogger())

	err := manager.HealthCheck(context.Background())
	if !repositories.IsConnection(err) {
		t.Errorf("Expected connection error, got %v", err)
	}
}
