package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"invoice-api/internal/repositories"
	"invoice-api/internal/services"
	"invoice-api/pkg/lambda"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIResponse is the success envelope used by mutating operations
type APIResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func jsonResponse(status int, payload interface{}) *lambda.Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return &lambda.Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       []byte(`{"error": "Failed to marshal response"}`),
		}
	}

	return &lambda.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

func errorResponse(status int, message string) *lambda.Response {
	return jsonResponse(status, ErrorResponse{Error: message})
}

// textResponse carries a raw message without the JSON envelope. Parse
// failures outside the create path surface their error text this way.
func textResponse(status int, message string) *lambda.Response {
	return &lambda.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "text/plain"},
		Body:       []byte(message),
	}
}

// errorToResponse maps service and repository errors onto wire responses
func errorToResponse(err error) *lambda.Response {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		return errorResponse(http.StatusNotFound, "Item not found")
	case errors.Is(err, services.ErrNoUpdatableFields):
		return errorResponse(http.StatusBadRequest, "No valid fields to update")
	case repositories.IsNotFound(err):
		return errorResponse(http.StatusNotFound, "Invoice not found")
	case repositories.IsDuplicate(err):
		return errorResponse(http.StatusConflict, "Invoice already exists")
	default:
		return errorResponse(http.StatusInternalServerError, err.Error())
	}
}
