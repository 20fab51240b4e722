package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"profitdesk/internal/audit"
	"profitdesk/internal/auth"
	"profitdesk/internal/observability/metrics"
	"profitdesk/internal/report/application"
	report "profitdesk/internal/report/domain"
)

const dateLayout = "2006-01-02"

// ReportStore reads persisted reports.
type ReportStore interface {
	Get(ctx context.Context, tenantID, id string) (*report.ProfitSummary, error)
	List(ctx context.Context, tenantID string, limit int) ([]report.ProfitSummary, error)
}

// Handler provides the report pipeline HTTP endpoints.
type Handler struct {
	service *application.Service
	store   ReportStore
	auditor audit.Logger
}

// NewHandler constructs a handler. store and auditor may be nil.
func NewHandler(service *application.Service, store ReportStore, auditor audit.Logger) (*Handler, error) {
	if service == nil {
		return nil, errors.New("report handler: nil service")
	}
	return &Handler{service: service, store: store, auditor: auditor}, nil
}

// ServeHTTP routes report requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/reports/upload":
		h.handleUpload(w, r)
	case path == "/api/v1/reports/generate":
		h.handleGenerate(w, r)
	case path == "/api/v1/reports":
		h.handleList(w, r)
	case path == "/api/v1/exports/reports.csv":
		h.handleCSVExport(w, r)
	case strings.HasPrefix(path, "/api/v1/reports/"):
		h.handleReport(w, r, strings.TrimPrefix(path, "/api/v1/reports/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	buf, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload failed", http.StatusBadRequest)
		return
	}

	intent := report.DateIntentOrderCreated
	if r.FormValue("intent") == string(report.DateIntentStatement) {
		intent = report.DateIntentStatement
	}

	result, err := h.service.Upload(r.Context(), buf, intent)
	if err != nil {
		respondPipelineError(w, err)
		return
	}
	h.logAction(r, "report.upload", "dataset", result.DatasetID)
	writeJSON(w, result)
}

type generateRequest struct {
	DatasetID string              `json:"dataset_id"`
	Start     string              `json:"start"`
	End       string              `json:"end"`
	Title     string              `json:"title,omitempty"`
	Overrides report.FieldMapping `json:"overrides"`
	Persist   bool                `json:"persist"`
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(dateLayout, body.Start)
	if err != nil {
		http.Error(w, "start must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(dateLayout, body.End)
	if err != nil {
		http.Error(w, "end must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	summary, err := h.service.Generate(r.Context(), application.GenerateRequest{
		DatasetID: body.DatasetID,
		Start:     start,
		End:       end,
		Title:     body.Title,
		Overrides: body.Overrides,
		Persist:   body.Persist,
	})
	if err != nil {
		respondPipelineError(w, err)
		return
	}
	h.logAction(r, "report.generate", "report", summary.ID)
	writeJSON(w, summary)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		http.Error(w, "persistence disabled", http.StatusNotImplemented)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	summaries, err := h.store.List(r.Context(), auth.TenantIDFromContext(r.Context()), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, summaries)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request, rest string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 1:
		h.handleGet(w, r, parts[0])
	case 2:
		h.handleExport(w, r, parts[0], parts[1])
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	if h.store == nil {
		http.Error(w, "persistence disabled", http.StatusNotImplemented)
		return
	}
	summary, err := h.store.Get(r.Context(), auth.TenantIDFromContext(r.Context()), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summary == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, id, kind string) {
	if h.store == nil {
		http.Error(w, "persistence disabled", http.StatusNotImplemented)
		return
	}
	var format string
	switch kind {
	case "export.xlsx":
		format = "xlsx"
	case "export.pdf":
		format = "pdf"
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportExport(format, result, time.Since(start))
	}()

	summary, err := h.store.Get(r.Context(), auth.TenantIDFromContext(r.Context()), id)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summary == nil {
		result = metrics.ResultError
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var payload []byte
	var contentType string
	switch format {
	case "xlsx":
		payload, err = BuildReportXLSX(summary)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		payload, err = BuildReportPDF(summary)
		contentType = "application/pdf"
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.logAction(r, "report.export."+format, "report", id)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+id+"."+format+`"`)
	_, _ = w.Write(payload)
}

func (h *Handler) handleCSVExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.store == nil {
		http.Error(w, "persistence disabled", http.StatusNotImplemented)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportExport("csv", result, time.Since(start))
	}()

	summaries, err := h.store.List(r.Context(), auth.TenantIDFromContext(r.Context()), 0)
	if err != nil {
		result = metrics.ResultError
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="reports.csv"`)
	if err := WriteReportsCSV(w, summaries); err != nil {
		result = metrics.ResultError
	}
}

func (h *Handler) logAction(r *http.Request, action, resourceType, resourceID string) {
	if h.auditor == nil {
		return
	}
	_ = h.auditor.Log(r.Context(), audit.Entry{
		TenantID:     auth.TenantIDFromContext(r.Context()),
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IP:           r.RemoteAddr,
		UserAgent:    r.UserAgent(),
	})
}

func respondPipelineError(w http.ResponseWriter, err error) {
	var fetchErr *report.LedgerFetchError
	switch {
	case errors.Is(err, report.ErrDatasetNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, report.ErrRunInFlight):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, report.ErrFormat), errors.Is(err, report.ErrDuplicateHeader):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, report.ErrUnresolvedMapping), errors.Is(err, report.ErrInvalidRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &fetchErr):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		http.Error(w, err.Error(), http.StatusRequestTimeout)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
