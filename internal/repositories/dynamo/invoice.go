package dynamo

import (
	"context"
	"errors"
	"sort"
	"time"

	"invoice-api/internal/models"
	"invoice-api/internal/repositories"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/sirupsen/logrus"
)

// DynamoAPI is an abstraction over the DynamoDB operations the
// repository uses (helpful for testing)
type DynamoAPI interface {
	PutItemWithContext(aws.Context, *dynamodb.PutItemInput, ...request.Option) (*dynamodb.PutItemOutput, error)
	GetItemWithContext(aws.Context, *dynamodb.GetItemInput, ...request.Option) (*dynamodb.GetItemOutput, error)
	ScanWithContext(aws.Context, *dynamodb.ScanInput, ...request.Option) (*dynamodb.ScanOutput, error)
	DeleteItemWithContext(aws.Context, *dynamodb.DeleteItemInput, ...request.Option) (*dynamodb.DeleteItemOutput, error)
	DescribeTableWithContext(aws.Context, *dynamodb.DescribeTableInput, ...request.Option) (*dynamodb.DescribeTableOutput, error)
}

// InvoiceRepository implements the InvoiceRepository interface for DynamoDB
type InvoiceRepository struct {
	ddb    DynamoAPI
	table  string
	logger *logrus.Logger
}

// NewInvoiceRepository creates a new DynamoDB invoice repository
func NewInvoiceRepository(ddb DynamoAPI, table string, logger *logrus.Logger) repositories.InvoiceRepository {
	if logger == nil {
		logger = logrus.New()
	}
	return &InvoiceRepository{
		ddb:    ddb,
		table:  table,
		logger: logger,
	}
}

// logOp logs a DynamoDB operation with its execution time
func (r *InvoiceRepository) logOp(operation, referenceID string, start time.Time, err error) {
	fields := logrus.Fields{
		"operation":    operation,
		"table":        r.table,
		"reference_id": referenceID,
		"duration":     time.Since(start),
	}

	if err != nil {
		fields["error"] = err.Error()
		r.logger.WithFields(fields).Error("DynamoDB operation failed")
	} else {
		r.logger.WithFields(fields).Debug("DynamoDB operation executed")
	}
}

// isConditionalCheckFailed reports whether err is a failed condition expression
func isConditionalCheckFailed(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
	}
	return false
}

// Create stores a new invoice, failing if the reference ID already exists
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	item, err := dynamodbattribute.MarshalMap(invoice)
	if err != nil {
		return repositories.NewRepositoryError("create", "invoice", invoice.ReferenceID, err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(reference_id)"),
	}

	start := time.Now()
	_, err = r.ddb.PutItemWithContext(ctx, input)
	r.logOp("create", invoice.ReferenceID, start, err)

	if err != nil {
		if isConditionalCheckFailed(err) {
			return repositories.DuplicateError("invoice", "reference_id", invoice.ReferenceID)
		}
		return repositories.NewRepositoryError("create", "invoice", invoice.ReferenceID, err)
	}

	return nil
}

// GetByReferenceID retrieves an invoice by its reference ID
func (r *InvoiceRepository) GetByReferenceID(ctx context.Context, referenceID string) (*models.Invoice, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]*dynamodb.AttributeValue{
			"reference_id": {S: aws.String(referenceID)},
		},
	}

	start := time.Now()
	resp, err := r.ddb.GetItemWithContext(ctx, input)
	r.logOp("get_by_reference_id", referenceID, start, err)

	if err != nil {
		return nil, repositories.NewRepositoryError("get_by_reference_id", "invoice", referenceID, err)
	}

	if resp.Item == nil {
		return nil, repositories.NotFoundError("invoice", referenceID)
	}

	invoice := &models.Invoice{}
	if err := dynamodbattribute.UnmarshalMap(resp.Item, invoice); err != nil {
		return nil, repositories.NewRepositoryError("get_by_reference_id", "invoice", referenceID, err)
	}
	if invoice.Items == nil {
		invoice.Items = []models.Item{}
	}

	return invoice, nil
}

// List retrieves all invoices ordered by creation time, newest first
func (r *InvoiceRepository) List(ctx context.Context) ([]*models.Invoice, error) {
	var invoices []*models.Invoice

	input := &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	}

	for {
		start := time.Now()
		resp, err := r.ddb.ScanWithContext(ctx, input)
		r.logOp("list", "", start, err)

		if err != nil {
			return nil, repositories.NewRepositoryError("list", "invoice", "", err)
		}

		for _, item := range resp.Items {
			invoice := &models.Invoice{}
			if err := dynamodbattribute.UnmarshalMap(item, invoice); err != nil {
				return nil, repositories.NewRepositoryError("list", "invoice", "", err)
			}
			if invoice.Items == nil {
				invoice.Items = []models.Item{}
			}
			invoices = append(invoices, invoice)
		}

		if resp.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}

	sort.Slice(invoices, func(i, j int) bool {
		if !invoices[i].CreatedAt.Equal(invoices[j].CreatedAt) {
			return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
		}
		return invoices[i].ReferenceID < invoices[j].ReferenceID
	})

	return invoices, nil
}

// Update replaces an existing invoice document
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	item, err := dynamodbattribute.MarshalMap(invoice)
	if err != nil {
		return repositories.NewRepositoryError("update", "invoice", invoice.ReferenceID, err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(reference_id)"),
	}

	start := time.Now()
	_, err = r.ddb.PutItemWithContext(ctx, input)
	r.logOp("update", invoice.ReferenceID, start, err)

	if err != nil {
		if isConditionalCheckFailed(err) {
			return repositories.NotFoundError("invoice", invoice.ReferenceID)
		}
		return repositories.NewRepositoryError("update", "invoice", invoice.ReferenceID, err)
	}

	return nil
}

// Delete removes an invoice by its reference ID
func (r *InvoiceRepository) Delete(ctx context.Context, referenceID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]*dynamodb.AttributeValue{
			"reference_id": {S: aws.String(referenceID)},
		},
		ConditionExpression: aws.String("attribute_exists(reference_id)"),
	}

	start := time.Now()
	_, err := r.ddb.DeleteItemWithContext(ctx, input)
	r.logOp("delete", referenceID, start, err)

	if err != nil {
		if isConditionalCheckFailed(err) {
			return repositories.NotFoundError("invoice", referenceID)
		}
		return repositories.NewRepositoryError("delete", "invoice", referenceID, err)
	}

	return nil
}
