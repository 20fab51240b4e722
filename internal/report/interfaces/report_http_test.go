package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"profitdesk/internal/report/application"
	report "profitdesk/internal/report/domain"
)

type stubDecoder struct {
	dataset *report.Dataset
}

func (s *stubDecoder) Decode(buf []byte) (*report.Dataset, error) {
	if len(buf) == 0 {
		return nil, report.ErrFormat
	}
	return s.dataset, nil
}

type stubLedgerSource struct {
	snapshot report.LedgerSnapshot
}

func (s *stubLedgerSource) Snapshot(ctx context.Context) (report.LedgerSnapshot, error) {
	return s.snapshot, nil
}

type memoryStore struct {
	saved map[string]*report.ProfitSummary
}

func newMemoryStore() *memoryStore {
	return &memoryStore{saved: map[string]*report.ProfitSummary{}}
}

func (s *memoryStore) Save(ctx context.Context, tenantID string, summary *report.ProfitSummary) error {
	s.saved[summary.ID] = summary
	return nil
}

func (s *memoryStore) Get(ctx context.Context, tenantID, id string) (*report.ProfitSummary, error) {
	return s.saved[id], nil
}

func (s *memoryStore) List(ctx context.Context, tenantID string, limit int) ([]report.ProfitSummary, error) {
	var out []report.ProfitSummary
	for _, summary := range s.saved {
		out = append(out, *summary)
	}
	return out, nil
}

func testDataset() *report.Dataset {
	headers := []string{"order created", "amount", "sku", "quantity"}
	return &report.Dataset{
		Headers: headers,
		Rows: []report.RawRow{
			{"order created": "2024/1/2", "amount": "100.50", "sku": "SKU-1", "quantity": "2"},
			{"order created": "2024/2/1", "amount": "55.00", "sku": "SKU-1", "quantity": "1"},
		},
	}
}

func newTestHandler(t *testing.T) (*Handler, *memoryStore) {
	t.Helper()
	cfg := application.Config{
		UploadMaxBytes:     1 << 20,
		DatasetTTL:         time.Minute,
		LedgerFetchTimeout: time.Second,
		LedgerRetryBackoff: time.Millisecond,
	}
	ledgers := &stubLedgerSource{snapshot: report.LedgerSnapshot{
		UnitCosts: map[string]float64{"SKU-1": 10},
	}}
	store := newMemoryStore()
	service, err := application.NewService(&stubDecoder{dataset: testDataset()}, ledgers, store, cfg, nil, "tenant-a")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service, store, nil)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, store
}

func uploadRequest(t *testing.T) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "orders.xlsx")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("workbook-bytes")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadThenGenerate(t *testing.T) {
	handler, store := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, uploadRequest(t))
	if resp.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var uploaded application.UploadResult
	if err := json.Unmarshal(resp.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload result: %v", err)
	}
	if uploaded.DatasetID == "" || uploaded.RowCount != 2 {
		t.Fatalf("unexpected upload result: %+v", uploaded)
	}
	if uploaded.Mapping.DateField != "order created" || uploaded.Mapping.AmountField != "amount" {
		t.Fatalf("unexpected mapping: %+v", uploaded.Mapping)
	}

	body := `{"dataset_id":"` + uploaded.DatasetID + `","start":"2024-01-01","end":"2024-01-31","persist":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/generate", strings.NewReader(body))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var summary report.ProfitSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.RowCount != 1 {
		t.Fatalf("expected 1 row in window, got %d", summary.RowCount)
	}
	if summary.TotalRevenue != 100.50 {
		t.Fatalf("expected revenue 100.50, got %v", summary.TotalRevenue)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected persisted report, got %d", len(store.saved))
	}
}

func TestGenerateUnknownDataset(t *testing.T) {
	handler, _ := newTestHandler(t)
	body := `{"dataset_id":"ds-missing","start":"2024-01-01","end":"2024-01-31"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/generate", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestGenerateInvalidRange(t *testing.T) {
	handler, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, uploadRequest(t))
	var uploaded application.UploadResult
	if err := json.Unmarshal(resp.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload result: %v", err)
	}

	body := `{"dataset_id":"` + uploaded.DatasetID + `","start":"2024-02-01","end":"2024-01-01"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/generate", strings.NewReader(body))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestGenerateMalformedDates(t *testing.T) {
	handler, _ := newTestHandler(t)
	body := `{"dataset_id":"ds-x","start":"01/02/2024","end":"2024-01-31"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/generate", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestReportGetAndExports(t *testing.T) {
	handler, store := newTestHandler(t)
	summary := &report.ProfitSummary{
		ID:           "rpt-test1234",
		Range:        report.DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		DayCount:     31,
		RowCount:     1,
		TotalRevenue: 100,
		TotalProfit:  40,
		GeneratedAt:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	store.saved[summary.ID] = summary

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/rpt-test1234", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/rpt-test1234/export.xlsx", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("xlsx export: expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("unexpected xlsx content type: %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/rpt-test1234/export.pdf", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("pdf export: expected 200, got %d", resp.Code)
	}
	if !bytes.HasPrefix(resp.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected PDF payload")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reports/rpt-missing/export.pdf", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("missing export: expected 404, got %d", resp.Code)
	}
}

func TestCSVExport(t *testing.T) {
	handler, store := newTestHandler(t)
	store.saved["rpt-a"] = &report.ProfitSummary{
		ID:          "rpt-a",
		Range:       report.DateRange{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)},
		GeneratedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/exports/reports.csv", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "rpt-a") {
		t.Fatalf("expected report id in csv: %s", resp.Body.String())
	}
	if got := resp.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("unexpected content type: %s", got)
	}
}
