package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/invoice-extractor/internal/extraction"
	"github.com/lehigh-university-libraries/invoice-extractor/internal/providers"
)

// stubProvider stands in for the model so the real extraction client runs
type stubProvider struct {
	text  string
	err   error
	calls int
	doc   providers.Document
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) GenerateContent(ctx context.Context, doc providers.Document, prompt string) (string, error) {
	s.calls++
	s.doc = doc
	return s.text, s.err
}

const acmeJSON = `{"vendor_name":"Acme","invoice_number":"INV-1","invoice_amount":100.5,"invoice_date":"2024-01-01"}`

// onePagePDF is a minimal well formed PDF with a single empty page
const onePagePDF = "%PDF-1.4\n" +
	"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
	"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n" +
	"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n" +
	"xref\n" +
	"0 4\n" +
	"0000000000 65535 f \n" +
	"0000000009 00000 n \n" +
	"0000000058 00000 n \n" +
	"0000000115 00000 n \n" +
	"trailer\n<< /Size 4 /Root 1 0 R >>\n" +
	"startxref\n186\n" +
	"%%EOF\n"

var pdfBase64 = base64.StdEncoding.EncodeToString([]byte(onePagePDF))

func newTestHandler(stub *stubProvider) *Handler {
	return New(extraction.NewClient(stub), 1<<20)
}

func doRequest(t *testing.T, h http.Handler, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/api/invoices/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandleExtract_Success(t *testing.T) {
	stub := &stubProvider{text: "```json\n" + acmeJSON + "\n```"}
	h := newTestHandler(stub)

	rec := doRequest(t, http.HandlerFunc(h.HandleExtract), http.MethodPost,
		`{"fileBase64":"`+pdfBase64+`","mimeType":"application/pdf"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	expected := `{"success":true,"data":` + acmeJSON + `}`
	if rec.Body.String() != expected {
		t.Errorf("Expected %s, got %s", expected, rec.Body.String())
	}
	if stub.calls != 1 {
		t.Errorf("expected 1 model call, got %d", stub.calls)
	}
	if !bytes.Equal(stub.doc.Data, []byte(onePagePDF)) {
		t.Errorf("model did not receive the decoded document: %q", stub.doc.Data)
	}
}

func TestHandleExtract_DefaultsMimeType(t *testing.T) {
	stub := &stubProvider{text: acmeJSON}
	h := newTestHandler(stub)

	rec := doRequest(t, http.HandlerFunc(h.HandleExtract), http.MethodPost, `{"fileBase64":"`+pdfBase64+`"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if stub.doc.MIMEType != "application/pdf" {
		t.Errorf("MIMEType = %q, want application/pdf", stub.doc.MIMEType)
	}
}

func TestHandleExtract_ClientErrors(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		body      string
		wantCode  int
		wantError string
	}{
		{name: "GET", method: http.MethodGet, wantCode: http.StatusMethodNotAllowed, wantError: "Method Not Allowed"},
		{name: "PUT", method: http.MethodPut, body: `{"fileBase64":"` + pdfBase64 + `"}`, wantCode: http.StatusMethodNotAllowed, wantError: "Method Not Allowed"},
		{name: "DELETE", method: http.MethodDelete, wantCode: http.StatusMethodNotAllowed, wantError: "Method Not Allowed"},
		{name: "missing fileBase64", method: http.MethodPost, body: `{"mimeType":"application/pdf"}`, wantCode: http.StatusBadRequest, wantError: "Missing fileBase64"},
		{name: "empty fileBase64", method: http.MethodPost, body: `{"fileBase64":""}`, wantCode: http.StatusBadRequest, wantError: "Missing fileBase64"},
		{name: "empty body", method: http.MethodPost, body: ``, wantCode: http.StatusBadRequest, wantError: "Missing fileBase64"},
		{name: "malformed json", method: http.MethodPost, body: `{"fileBase64":`, wantCode: http.StatusBadRequest, wantError: "Invalid JSON body"},
		{name: "wrong type", method: http.MethodPost, body: `{"fileBase64":42}`, wantCode: http.StatusBadRequest, wantError: "Invalid JSON body"},
		{name: "trailing data", method: http.MethodPost, body: `{"fileBase64":"` + pdfBase64 + `"} junk`, wantCode: http.StatusBadRequest, wantError: "Invalid JSON body"},
		{name: "two objects", method: http.MethodPost, body: `{"fileBase64":"` + pdfBase64 + `"}{}`, wantCode: http.StatusBadRequest, wantError: "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubProvider{text: acmeJSON}
			h := newTestHandler(stub)

			rec := doRequest(t, http.HandlerFunc(h.HandleExtract), tt.method, tt.body)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			body := decodeBody(t, rec)
			if body["error"] != tt.wantError {
				t.Errorf("error = %v, want %q", body["error"], tt.wantError)
			}
			if stub.calls != 0 {
				t.Errorf("model was invoked %d times", stub.calls)
			}
		})
	}
}

func TestHandleExtract_MethodNotAllowedSetsAllow(t *testing.T) {
	h := newTestHandler(&stubProvider{})
	rec := doRequest(t, http.HandlerFunc(h.HandleExtract), http.MethodGet, "")
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("Allow = %q, want POST", allow)
	}
}

func TestHandleExtract_BodyTooLarge(t *testing.T) {
	stub := &stubProvider{text: acmeJSON}
	h := New(extraction.NewClient(stub), 64)

	rec := doRequest(t, http.HandlerFunc(h.HandleExtract), http.MethodPost, `{"fileBase64":"`+strings.Repeat("A", 128)+`"}`)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if stub.calls != 0 {
		t.Errorf("model was invoked %d times", stub.calls)
	}
}

func TestHandleExtract_ServerErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		stub        *stubProvider
		wantCalls   int
		wantContain []string
	}{
		{
			name:        "transport error",
			body:        `{"fileBase64":"` + pdfBase64 + `"}`,
			stub:        &stubProvider{err: errors.New("dial tcp: connection refused")},
			wantCalls:   1,
			wantContain: []string{"model extraction failed", "connection refused"},
		},
		{
			name:        "model returns prose",
			body:        `{"fileBase64":"` + pdfBase64 + `"}`,
			stub:        &stubProvider{text: "This does not look like an invoice."},
			wantCalls:   1,
			wantContain: []string{"model extraction failed", "failed to parse model response"},
		},
		{
			name:        "invalid base64",
			body:        `{"fileBase64":"***not-base64***"}`,
			stub:        &stubProvider{text: acmeJSON},
			wantCalls:   0,
			wantContain: []string{"failed to decode fileBase64"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(tt.stub)

			rec := doRequest(t, http.HandlerFunc(h.HandleExtract), http.MethodPost, tt.body)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", rec.Code)
			}
			body := decodeBody(t, rec)
			if body["success"] != false {
				t.Errorf("success = %v, want false", body["success"])
			}
			message, _ := body["error"].(string)
			for _, want := range tt.wantContain {
				if !strings.Contains(message, want) {
					t.Errorf("error %q does not contain %q", message, want)
				}
			}
			if _, ok := body["data"]; ok {
				t.Error("failure response must not carry data")
			}
			if tt.stub.calls != tt.wantCalls {
				t.Errorf("model calls = %d, want %d", tt.stub.calls, tt.wantCalls)
			}
		})
	}
}

func TestHandleExtract_Idempotent(t *testing.T) {
	stub := &stubProvider{text: acmeJSON}
	h := newTestHandler(stub)
	body := `{"fileBase64":"` + pdfBase64 + `"}`

	first := doRequest(t, http.HandlerFunc(h.HandleExtract), http.MethodPost, body)
	second := doRequest(t, http.HandlerFunc(h.HandleExtract), http.MethodPost, body)

	if first.Body.String() != second.Body.String() {
		t.Errorf("responses differ:\n%s\n%s", first.Body.String(), second.Body.String())
	}
	if first.Header().Get("X-Request-ID") == second.Header().Get("X-Request-ID") {
		t.Error("expected a new request ID per request")
	}
}

func TestHandleExtract_NoWritesUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	h := newTestHandler(&stubProvider{text: acmeJSON})
	rec := doRequest(t, h.Routes(), http.MethodPost, `{"fileBase64":"`+pdfBase64+`","mimeType":"application/pdf"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", rec.Code, rec.Body.String())
	}

	entries, err := os.ReadDir(home)
	if err != nil {
		t.Fatalf("failed to read home dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected request to leave HOME empty, found %d entries", len(entries))
	}
}
