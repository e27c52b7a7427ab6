package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc := newTestService()
	h := NewHandler(svc)
	e := echo.New()
	return h, e
}

func TestHandler_CreateBill(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":1,"items":[
		{"description":"Consultation","quantity":1,"unit_price":"300.00"},
		{"description":"Paracetamol","quantity":2,"unit_price":2.50}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateBill(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var detail BillDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if Money(detail.Bill.Total) != "305.00" {
		t.Errorf("expected 305.00, got %s", Money(detail.Bill.Total))
	}
}

func TestHandler_CreateBill_ValidationError(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":1,"items":[{"description":"X","quantity":3,"unit_price":-1}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateBill(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	if !strings.Contains(httpErr.Message.(string), "item 0: unit_price") {
		t.Errorf("expected positional message, got %v", httpErr.Message)
	}
}

func TestHandler_CreateBill_UnknownPatient(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":5,"items":[{"description":"X","quantity":1,"unit_price":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateBill(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404 HTTPError, got %v", err)
	}
}

func TestHandler_GetBill(t *testing.T) {
	h, e := newTestHandler()
	h.svc.CreateBill(context.Background(), 1, []ItemInput{{Description: "Consultation", Quantity: 1, UnitPrice: dec("300")}})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.GetBill(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"Consultation"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestHandler_GetBill_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("31")

	err := h.GetBill(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404 HTTPError, got %v", err)
	}
}

func TestHandler_ListBills(t *testing.T) {
	h, e := newTestHandler()
	h.svc.CreateBill(context.Background(), 1, []ItemInput{{Description: "A", Quantity: 1, UnitPrice: dec("1")}})

	req := httptest.NewRequest(http.MethodGet, "/?patient_id=1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListBills(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
