package http

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"monthledger/internal/cache"
	"monthledger/internal/services"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ledgers := services.NewLedgerService(cache.NewLRUCache[*services.Session](10, time.Hour), nil)
	srv := NewServer(":0", ledgers, Options{ExportFormat: "csv"})
	if srv.templates == nil || srv.templates.Lookup("ledger.html") == nil {
		t.Fatal("embedded templates not parsed")
	}
	return srv
}

// client replays the session cookie across requests like a browser would.
type client struct {
	t      *testing.T
	srv    *Server
	cookie *http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rr := httptest.NewRecorder()
	c.srv.Handler.ServeHTTP(rr, req)
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return rr
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func generateForm() url.Values {
	return url.Values{
		"recipient":  {"Alice"},
		"payor":      {"Bob"},
		"accrual":    {"1000"},
		"start_date": {"2024-01-15"},
		"end_date":   {"2024-03-10"},
	}
}

func TestIndexAndHealth(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	rr := c.get("/")
	if rr.Code != 200 {
		t.Fatalf("index status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Monthly Ledger") || !strings.Contains(body, "No entries in the ledger.") {
		t.Fatalf("index body missing heading or placeholder")
	}
	if c.cookie == nil || c.cookie.Value == "" {
		t.Fatal("session cookie not set")
	}
	if !c.cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not set")
	}
	if rr.Header().Get("Content-Security-Policy") == "" {
		t.Error("security headers not applied")
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := c.get(path)
		if rr.Code != 200 {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("%s: invalid JSON: %v", path, err)
		}
		if payload["status"] != "ok" && payload["status"] != "ready" {
			t.Errorf("%s status field = %v", path, payload["status"])
		}
	}

	if rr := c.get("/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status=%d", rr.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	rr := c.get("/static/app.js")
	if rr.Code != 200 {
		t.Fatalf("static status=%d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age=3600") {
		t.Errorf("Cache-Control = %q", rr.Header().Get("Cache-Control"))
	}
}

func TestGenerateAndRecordPayments(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	c.get("/")

	rr := c.post("/ledger/generate", generateForm())
	if rr.Code != 200 {
		t.Fatalf("generate status=%d body=%s", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	for _, want := range []string{"January 2024", "February 2024", "March 2024", `name="paid_2"`, "3000.00", "Alice", "Bob"} {
		if !strings.Contains(body, want) {
			t.Errorf("generate body missing %q", want)
		}
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), "ledger:generated") {
		t.Errorf("HX-Trigger = %q", rr.Header().Get("HX-Trigger"))
	}

	rr = c.post("/ledger/payments", url.Values{"paid_0": {"500"}, "paid_1": {""}, "paid_2": {"0"}})
	if rr.Code != 200 {
		t.Fatalf("payments status=%d body=%s", rr.Code, rr.Body.String())
	}
	body = rr.Body.String()
	if !strings.Contains(body, `<dd id="total-paid">500.00</dd>`) {
		t.Errorf("total paid not rendered: %s", body)
	}
	if !strings.Contains(body, `<dd id="remaining-balance">2500.00</dd>`) {
		t.Errorf("remaining balance not rendered: %s", body)
	}

	rr = c.get("/ledger")
	if rr.Code != 200 || !strings.Contains(rr.Body.String(), "2500.00") {
		t.Errorf("ledger partial status=%d", rr.Code)
	}
}

func TestGenerateValidation(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}

	rr := c.get("/ledger/generate")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"bad accrual", "accrual", "abc"},
		{"bad start date", "start_date", "01/15/2024"},
		{"reversed range", "end_date", "2023-12-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := generateForm()
			form.Set(tt.field, tt.value)
			rr := c.post("/ledger/generate", form)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), `class="error"`) {
				t.Errorf("missing error fragment: %s", rr.Body.String())
			}
		})
	}
}

func TestPaymentsBeforeGenerate(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	c.get("/")

	rr := c.post("/ledger/payments", url.Values{"paid_0": {"10"}})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Generate the ledger first!") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestPaymentsValidation(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	c.get("/")
	c.post("/ledger/generate", generateForm())

	tests := []struct {
		name string
		form url.Values
	}{
		{"negative", url.Values{"paid_0": {"-1"}, "paid_1": {"0"}, "paid_2": {"0"}}},
		{"not a number", url.Values{"paid_0": {"x"}, "paid_1": {"0"}, "paid_2": {"0"}}},
		{"wrong count", url.Values{"paid_0": {"1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := c.post("/ledger/payments", tt.form)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
			}
		})
	}

	// Rejected submissions leave the ledger untouched.
	rr := c.get("/ledger")
	if !strings.Contains(rr.Body.String(), `<dd id="total-paid">0.00</dd>`) {
		t.Errorf("ledger changed after rejected payments: %s", rr.Body.String())
	}
}

func TestExport(t *testing.T) {
	c := &client{t: t, srv: newTestServer(t)}
	c.get("/")

	rr := c.get("/ledger/export")
	if rr.Code != http.StatusConflict {
		t.Fatalf("empty export: expected 409, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "No entries in the ledger to save.") {
		t.Errorf("body = %s", rr.Body.String())
	}

	c.post("/ledger/generate", generateForm())

	rr = c.get("/ledger/export")
	if rr.Code != 200 {
		t.Fatalf("csv export status=%d body=%s", rr.Code, rr.Body.String())
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="ledger_report.csv"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("csv: %v", err)
	}
	if len(records) < 4 {
		t.Fatalf("expected header + 3 months, got %d records", len(records))
	}

	rr = c.get("/ledger/export?format=pdf")
	if rr.Code != 200 || !strings.HasPrefix(rr.Body.String(), "%PDF-") {
		t.Fatalf("pdf export status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}

	if rr := c.get("/ledger/export?format=xls"); rr.Code != http.StatusBadRequest {
		t.Errorf("unknown format: expected 400, got %d", rr.Code)
	}
}
