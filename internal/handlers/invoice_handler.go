package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/tidwall/gjson"

	"invoice-api/internal/models"
	"invoice-api/internal/services"
	"invoice-api/pkg/lambda"
)

// Required field lists for wire-level validation. Order is part of the API
// contract: the first missing field is the one named in the response. A field
// counts as present when its key appears in the document, whatever the value.
var (
	requiredInvoiceFields = []string{
		"reference_id", "company_name", "tin", "invoice_number",
		"transaction_date", "items", "encoder", "payee",
		"payee_account", "approver",
	}
	requiredItemFields = []string{
		"id", "particulars", "project_class", "account", "vatable", "amount",
	}
)

// InvoiceHandler handles invoice HTTP requests
type InvoiceHandler struct {
	invoiceService services.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// @Summary Create a new invoice
// @Description Create an invoice, optionally with a file attachment via multipart/form-data
// @Tags invoices
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param invoice body models.Invoice true "Invoice data"
// @Success 201 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices [post]
func (h *InvoiceHandler) HandleCreate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	document, attachment, errResp := parseCreatePayload(req)
	if errResp != nil {
		return errResp, nil
	}

	if !gjson.ValidBytes(document) {
		return errorResponse(http.StatusBadRequest, "Invalid JSON"), nil
	}

	if errResp := validateInvoiceDocument(document); errResp != nil {
		return errResp, nil
	}

	var invoice models.Invoice
	if err := json.Unmarshal(document, &invoice); err != nil {
		return errorResponse(http.StatusBadRequest, "Invalid JSON"), nil
	}

	created, err := h.invoiceService.CreateInvoice(ctx, &invoice, attachment)
	if err != nil {
		return errorToResponse(err), nil
	}

	return jsonResponse(http.StatusCreated, APIResponse{Message: "Invoice received", Data: created}), nil
}

// @Summary List invoices
// @Description Get all stored invoices
// @Tags invoices
// @Produce json
// @Success 200 {array} models.Invoice
// @Failure 500 {object} ErrorResponse
// @Router /invoices [get]
func (h *InvoiceHandler) HandleList(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	invoices, err := h.invoiceService.ListInvoices(ctx)
	if err != nil {
		return errorToResponse(err), nil
	}

	return jsonResponse(http.StatusOK, invoices), nil
}

// @Summary Get an invoice
// @Description Get an invoice by reference ID
// @Tags invoices
// @Produce json
// @Param reference_id path string true "Invoice reference ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices/{reference_id} [get]
func (h *InvoiceHandler) HandleGet(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	invoice, err := h.invoiceService.GetInvoice(ctx, req.PathParams["reference_id"])
	if err != nil {
		return errorToResponse(err), nil
	}

	return jsonResponse(http.StatusOK, invoice), nil
}

// @Summary Update an invoice
// @Description Partially update an invoice; only company_name, tin, transaction_date and items can change
// @Tags invoices
// @Accept json
// @Produce json
// @Param reference_id path string true "Invoice reference ID"
// @Param update body services.UpdateInvoiceRequest true "Fields to update"
// @Success 200 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices/{reference_id} [put]
func (h *InvoiceHandler) HandleUpdate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(req.Body, &raw); err != nil {
		return textResponse(http.StatusInternalServerError, err.Error()), nil
	}

	var upd services.UpdateInvoiceRequest
	if res := gjson.GetBytes(req.Body, "company_name"); res.Exists() {
		v := res.String()
		upd.CompanyName = &v
	}
	if res := gjson.GetBytes(req.Body, "tin"); res.Exists() {
		v := res.String()
		upd.TIN = &v
	}
	if res := gjson.GetBytes(req.Body, "transaction_date"); res.Exists() {
		v := res.String()
		upd.TransactionDate = &v
	}
	if res := gjson.GetBytes(req.Body, "items"); res.Exists() {
		var items []models.Item
		if err := json.Unmarshal([]byte(res.Raw), &items); err != nil {
			return textResponse(http.StatusInternalServerError, err.Error()), nil
		}
		upd.Items = &items
	}

	updated, err := h.invoiceService.UpdateInvoice(ctx, req.PathParams["reference_id"], &upd)
	if err != nil {
		return errorToResponse(err), nil
	}

	return jsonResponse(http.StatusOK, APIResponse{Message: "Invoice updated", Data: updated}), nil
}

// @Summary Delete an invoice
// @Description Delete an invoice by reference ID
// @Tags invoices
// @Produce json
// @Param reference_id path string true "Invoice reference ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices/{reference_id} [delete]
func (h *InvoiceHandler) HandleDelete(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	if err := h.invoiceService.DeleteInvoice(ctx, req.PathParams["reference_id"]); err != nil {
		return errorToResponse(err), nil
	}

	return jsonResponse(http.StatusOK, APIResponse{Message: "Invoice deleted"}), nil
}

// @Summary Add a line item
// @Description Append a line item to an existing invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Param reference_id path string true "Invoice reference ID"
// @Param item body models.Item true "Line item"
// @Success 200 {object} APIResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices/{reference_id}/items [post]
func (h *InvoiceHandler) HandleAddItem(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(req.Body, &raw); err != nil {
		return textResponse(http.StatusInternalServerError, err.Error()), nil
	}

	if errResp := validateItemDocument(gjson.ParseBytes(req.Body)); errResp != nil {
		return errResp, nil
	}

	var item models.Item
	if err := json.Unmarshal(req.Body, &item); err != nil {
		return textResponse(http.StatusInternalServerError, err.Error()), nil
	}

	added, err := h.invoiceService.AddInvoiceItem(ctx, req.PathParams["reference_id"], item)
	if err != nil {
		return errorToResponse(err), nil
	}

	return jsonResponse(http.StatusOK, APIResponse{Message: "Item added", Data: added}), nil
}

// @Summary Delete a line item
// @Description Remove a line item from an invoice by item ID
// @Tags invoices
// @Produce json
// @Param reference_id path string true "Invoice reference ID"
// @Param item_id path string true "Line item ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /invoices/{reference_id}/items/{item_id} [delete]
func (h *InvoiceHandler) HandleDeleteItem(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	itemID := req.PathParams["item_id"]

	if err := h.invoiceService.RemoveInvoiceItem(ctx, req.PathParams["reference_id"], itemID); err != nil {
		return errorToResponse(err), nil
	}

	return jsonResponse(http.StatusOK, APIResponse{Message: fmt.Sprintf("Item %s deleted", itemID)}), nil
}

// parseCreatePayload extracts the invoice document and optional attachment
// from a create request. JSON bodies are the document; multipart bodies carry
// the document in a "data" part and the attachment in a "file" part.
func parseCreatePayload(req *lambda.Request) ([]byte, *services.Attachment, *lambda.Response) {
	contentType := req.Header("Content-Type")
	if contentType == "" {
		return req.Body, nil, nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, nil, errorResponse(http.StatusBadRequest, "Unsupported content type")
	}

	switch mediaType {
	case "application/json":
		return req.Body, nil, nil
	case "multipart/form-data":
		return parseMultipartPayload(req.Body, params["boundary"])
	default:
		return nil, nil, errorResponse(http.StatusBadRequest, "Unsupported content type")
	}
}

func parseMultipartPayload(body []byte, boundary string) ([]byte, *services.Attachment, *lambda.Response) {
	if boundary == "" {
		return nil, nil, errorResponse(http.StatusBadRequest, "Unsupported content type")
	}

	var document []byte
	var attachment *services.Attachment

	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errorResponse(http.StatusBadRequest, "Invalid multipart body")
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, nil, errorResponse(http.StatusBadRequest, "Invalid multipart body")
		}

		switch part.FormName() {
		case "data":
			document = data
		case "file":
			attachment = &services.Attachment{
				Filename:    part.FileName(),
				ContentType: part.Header.Get("Content-Type"),
				Data:        data,
			}
		}
	}

	if document == nil {
		return nil, nil, errorResponse(http.StatusBadRequest, "Missing field: data")
	}

	return document, attachment, nil
}

// validateInvoiceDocument checks the create payload for the required invoice
// and item keys, naming the first one missing
func validateInvoiceDocument(document []byte) *lambda.Response {
	for _, field := range requiredInvoiceFields {
		if !gjson.GetBytes(document, field).Exists() {
			return errorResponse(http.StatusBadRequest, fmt.Sprintf("Missing field: %s", field))
		}
	}

	for _, item := range gjson.GetBytes(document, "items").Array() {
		if errResp := validateItemDocument(item); errResp != nil {
			return errResp
		}
	}

	return nil
}

func validateItemDocument(item gjson.Result) *lambda.Response {
	for _, field := range requiredItemFields {
		if !item.Get(field).Exists() {
			return errorResponse(http.StatusBadRequest, fmt.Sprintf("Missing item field: %s", field))
		}
	}

	return nil
}
