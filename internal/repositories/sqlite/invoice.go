package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"invoice-api/internal/models"
	"invoice-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// InvoiceRepository implements the InvoiceRepository interface for SQLite
type InvoiceRepository struct {
	*BaseRepository
}

// NewInvoiceRepository creates a new SQLite invoice repository
func NewInvoiceRepository(db *sql.DB, logger *logrus.Logger) repositories.InvoiceRepository {
	return &InvoiceRepository{
		BaseRepository: NewBaseRepository(db, "invoices", "invoice", logger),
	}
}

// Create stores a new invoice and its line items
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	if err := r.validateID(invoice.ReferenceID); err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO invoices (
				reference_id, company_name, tin, invoice_number, transaction_date,
				encoder, payee, payee_account, approver, status, file_url,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err := r.executeTxExec(ctx, tx, "create", query,
			invoice.ReferenceID,
			invoice.CompanyName,
			invoice.TIN,
			invoice.InvoiceNumber,
			invoice.TransactionDate,
			invoice.Encoder,
			invoice.Payee,
			invoice.PayeeAccount,
			invoice.Approver,
			invoice.Status,
			invoice.FileURL,
			invoice.CreatedAt,
			invoice.UpdatedAt,
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return repositories.DuplicateError("invoice", "reference_id", invoice.ReferenceID)
			}
			return err
		}

		return r.insertItems(ctx, tx, invoice.ReferenceID, invoice.Items)
	})
}

// GetByReferenceID retrieves an invoice with its line items
func (r *InvoiceRepository) GetByReferenceID(ctx context.Context, referenceID string) (*models.Invoice, error) {
	if err := r.validateID(referenceID); err != nil {
		return nil, err
	}

	query := `
		SELECT reference_id, company_name, tin, invoice_number, transaction_date,
			   encoder, payee, payee_account, approver, status, file_url,
			   created_at, updated_at
		FROM invoices
		WHERE reference_id = ?`

	row := r.executeQueryRow(ctx, "get_by_reference_id", query, referenceID)

	invoice := &models.Invoice{}
	var fileURL sql.NullString
	err := row.Scan(
		&invoice.ReferenceID,
		&invoice.CompanyName,
		&invoice.TIN,
		&invoice.InvoiceNumber,
		&invoice.TransactionDate,
		&invoice.Encoder,
		&invoice.Payee,
		&invoice.PayeeAccount,
		&invoice.Approver,
		&invoice.Status,
		&fileURL,
		&invoice.CreatedAt,
		&invoice.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repositories.NotFoundError("invoice", referenceID)
		}
		return nil, repositories.NewRepositoryError("get_by_reference_id", "invoice", referenceID, err)
	}

	if fileURL.Valid {
		invoice.SetFileURL(fileURL.String)
	}

	items, err := r.loadItems(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	invoice.Items = items

	return invoice, nil
}

// List retrieves all invoices ordered by creation time, newest first
func (r *InvoiceRepository) List(ctx context.Context) ([]*models.Invoice, error) {
	query := `
		SELECT reference_id, company_name, tin, invoice_number, transaction_date,
			   encoder, payee, payee_account, approver, status, file_url,
			   created_at, updated_at
		FROM invoices
		ORDER BY created_at DESC, reference_id ASC`

	rows, err := r.executeQuery(ctx, "list", query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice := &models.Invoice{}
		var fileURL sql.NullString
		err := rows.Scan(
			&invoice.ReferenceID,
			&invoice.CompanyName,
			&invoice.TIN,
			&invoice.InvoiceNumber,
			&invoice.TransactionDate,
			&invoice.Encoder,
			&invoice.Payee,
			&invoice.PayeeAccount,
			&invoice.Approver,
			&invoice.Status,
			&fileURL,
			&invoice.CreatedAt,
			&invoice.UpdatedAt,
		)
		if err != nil {
			return nil, repositories.NewRepositoryError("list", "invoice", "", err)
		}
		if fileURL.Valid {
			invoice.SetFileURL(fileURL.String)
		}
		invoices = append(invoices, invoice)
	}

	if err = rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("list", "invoice", "", err)
	}

	// Release the connection before loading items, the pool is capped at one
	rows.Close()

	for _, invoice := range invoices {
		items, err := r.loadItems(ctx, invoice.ReferenceID)
		if err != nil {
			return nil, err
		}
		invoice.Items = items
	}

	return invoices, nil
}

// Update replaces an invoice row and its line items
func (r *InvoiceRepository) Update(ctx context.Context, invoice *models.Invoice) error {
	if err := r.validateID(invoice.ReferenceID); err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE invoices
			SET company_name = ?, tin = ?, invoice_number = ?, transaction_date = ?,
				encoder = ?, payee = ?, payee_account = ?, approver = ?, status = ?,
				file_url = ?, updated_at = ?
			WHERE reference_id = ?`

		result, err := r.executeTxExec(ctx, tx, "update", query,
			invoice.CompanyName,
			invoice.TIN,
			invoice.InvoiceNumber,
			invoice.TransactionDate,
			invoice.Encoder,
			invoice.Payee,
			invoice.PayeeAccount,
			invoice.Approver,
			invoice.Status,
			invoice.FileURL,
			invoice.UpdatedAt,
			invoice.ReferenceID,
		)
		if err != nil {
			return err
		}

		if err := r.checkRowsAffected(result, "update", invoice.ReferenceID); err != nil {
			return err
		}

		deleteQuery := "DELETE FROM invoice_items WHERE invoice_reference_id = ?"
		if _, err := r.executeTxExec(ctx, tx, "delete_items", deleteQuery, invoice.ReferenceID); err != nil {
			return err
		}

		return r.insertItems(ctx, tx, invoice.ReferenceID, invoice.Items)
	})
}

// Delete removes an invoice, cascading to its line items
func (r *InvoiceRepository) Delete(ctx context.Context, referenceID string) error {
	if err := r.validateID(referenceID); err != nil {
		return err
	}

	query := "DELETE FROM invoices WHERE reference_id = ?"
	result, err := r.executeExec(ctx, "delete", query, referenceID)
	if err != nil {
		return err
	}

	return r.checkRowsAffected(result, "delete", referenceID)
}

// insertItems writes line items preserving their order
func (r *InvoiceRepository) insertItems(ctx context.Context, tx *sql.Tx, referenceID string, items []models.Item) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO invoice_items (
			invoice_reference_id, item_id, particulars, project_class,
			account, vatable, amount, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for i, item := range items {
		_, err := r.executeTxExec(ctx, tx, "create_item", query,
			referenceID,
			item.ID,
			item.Particulars,
			item.ProjectClass,
			item.Account,
			item.Vatable,
			item.Amount,
			i,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// loadItems retrieves line items in their stored order
func (r *InvoiceRepository) loadItems(ctx context.Context, referenceID string) ([]models.Item, error) {
	query := `
		SELECT item_id, particulars, project_class, account, vatable, amount
		FROM invoice_items
		WHERE invoice_reference_id = ?
		ORDER BY position`

	rows, err := r.executeQuery(ctx, "load_items", query, referenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		var item models.Item
		err := rows.Scan(
			&item.ID,
			&item.Particulars,
			&item.ProjectClass,
			&item.Account,
			&item.Vatable,
			&item.Amount,
		)
		if err != nil {
			return nil, repositories.NewRepositoryError("load_items", "invoice", referenceID, err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, repositories.NewRepositoryError("load_items", "invoice", referenceID, err)
	}

	return items, nil
}
