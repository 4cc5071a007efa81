package handlers

import (
	"net/http"

	"invoice-api/internal/router"
)

// RegisterRoutes installs the invoice API route table. Registration order is
// load-bearing: pattern routes are scanned in the order they were added and
// the first full match wins.
func RegisterRoutes(r *router.Router, h *InvoiceHandler) {
	r.Handle(http.MethodPost, "/invoices", h.HandleCreate)
	r.Handle(http.MethodGet, "/invoices", h.HandleList)
	r.Handle(http.MethodGet, "/invoices/{reference_id}", h.HandleGet)
	r.Handle(http.MethodPut, "/invoices/{reference_id}", h.HandleUpdate)
	r.Handle(http.MethodDelete, "/invoices/{reference_id}", h.HandleDelete)
	r.Handle(http.MethodPost, "/invoices/{reference_id}/items", h.HandleAddItem)
	r.Handle(http.MethodDelete, "/invoices/{reference_id}/items/{item_id}", h.HandleDeleteItem)
}
