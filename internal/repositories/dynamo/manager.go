package dynamo

import (
	"context"

	"invoice-api/internal/repositories"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/sirupsen/logrus"
)

// Manager implements the RepositoryManager interface for DynamoDB
type Manager struct {
	ddb      DynamoAPI
	table    string
	invoices repositories.InvoiceRepository
	logger   *logrus.Logger
}

// NewManager creates a new DynamoDB repository manager
func NewManager(ddb DynamoAPI, table string, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.New()
	}
	return &Manager{
		ddb:      ddb,
		table:    table,
		invoices: NewInvoiceRepository(ddb, table, logger),
		logger:   logger,
	}
}

// Invoices returns the invoice repository
func (m *Manager) Invoices() repositories.InvoiceRepository {
	return m.invoices
}

// HealthCheck verifies the table is reachable
func (m *Manager) HealthCheck(ctx context.Context) error {
	input := &dynamodb.DescribeTableInput{
		TableName: aws.String(m.table),
	}

	if _, err := m.ddb.DescribeTableWithContext(ctx, input); err != nil {
		return repositories.ConnectionError(err)
	}

	return nil
}

// Close is a no-op, the underlying HTTP client needs no teardown
func (m *Manager) Close() error {
	return nil
}
