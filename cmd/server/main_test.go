package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"invoice-api/internal/router"
	"invoice-api/pkg/lambda"
	"invoice-api/pkg/server"
)

func TestGinPath(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"/invoices", "/invoices"},
		{"/invoices/{reference_id}", "/invoices/:reference_id"},
		{"/invoices/{reference_id}/items", "/invoices/:reference_id/items"},
		{"/invoices/{reference_id}/items/{item_id}", "/invoices/:reference_id/items/:item_id"},
	}

	for _, tt := range tests {
		if got := ginPath(tt.pattern); got != tt.want {
			t.Errorf("ginPath(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestMountAPIRoutes_PlaceholderBinding(t *testing.T) {
	gin.SetMode(gin.TestMode)

	apiRouter := router.New()
	apiRouter.Handle(http.MethodGet, "/invoices/{reference_id}/items/{item_id}", func(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
		body, _ := json.Marshal(req.PathParams)
		return &lambda.Response{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       body,
		}, nil
	})

	engine := gin.New()
	mountAPIRoutes(engine, apiRouter, &server.Container{})

	req := httptest.NewRequest(http.MethodGet, "/invoices/INV-001/items/7", strings.NewReader(""))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var params map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &params); err != nil {
		t.Fatalf("response body is not JSON: %v", err)
	}
	if params["reference_id"] != "INV-001" {
		t.Errorf("reference_id = %q, want INV-001", params["reference_id"])
	}
	if params["item_id"] != "7" {
		t.Errorf("item_id = %q, want 7", params["item_id"])
	}
}

func TestDispatchThrough_ResponseHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	apiRouter := router.New()
	apiRouter.Handle(http.MethodGet, "/invoices", func(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
		return &lambda.Response{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "text/plain", "X-Total-Count": "0"},
			Body:       []byte("ok"),
		}, nil
	})

	engine := gin.New()
	mountAPIRoutes(engine, apiRouter, &server.Container{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/invoices", strings.NewReader("")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); got != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", got)
	}
	if got := w.Header().Get("X-Total-Count"); got != "0" {
		t.Errorf("X-Total-Count = %q, want 0", got)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", w.Body.String())
	}
}

func TestDispatchThrough_HandlerError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	apiRouter := router.New()
	apiRouter.Handle(http.MethodDelete, "/invoices/{reference_id}", func(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
		return nil, errors.New("backend exploded")
	})

	engine := gin.New()
	mountAPIRoutes(engine, apiRouter, &server.Container{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/invoices/INV-001", strings.NewReader("")))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(w.Body.String(), "backend exploded") {
		t.Errorf("body = %q, want the handler error surfaced", w.Body.String())
	}
}
