package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"profitdesk/internal/auth"
	"profitdesk/internal/observability/metrics"
	report "profitdesk/internal/report/domain"
)

// DatasetDecoder decodes an uploaded buffer into a row set.
type DatasetDecoder interface {
	Decode(buf []byte) (*report.Dataset, error)
}

// LedgerSource reads a fresh snapshot of the three cost ledgers.
type LedgerSource interface {
	Snapshot(ctx context.Context) (report.LedgerSnapshot, error)
}

// SummaryStore persists generated summaries.
type SummaryStore interface {
	Save(ctx context.Context, tenantID string, summary *report.ProfitSummary) error
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

type cachedDataset struct {
	dataset *report.Dataset
	mapping report.FieldMapping
}

// Service runs the ingestion and reconciliation pipeline. Decoded
// datasets live in a session cache between the upload and run steps;
// nothing else is retained between runs, and the ledgers are re-read
// on every run.
type Service struct {
	decoder  DatasetDecoder
	ledgers  LedgerSource
	store    SummaryStore
	cache    *gocache.Cache
	cfg      Config
	clock    Clock
	tenantID string

	mu    sync.Mutex
	inRun map[string]struct{}
}

// NewService constructs the pipeline service. store may be nil when
// persistence is disabled.
func NewService(decoder DatasetDecoder, ledgers LedgerSource, store SummaryStore, cfg Config, clock Clock, tenantID string) (*Service, error) {
	if decoder == nil {
		return nil, errors.New("report service: nil decoder")
	}
	if ledgers == nil {
		return nil, errors.New("report service: nil ledger source")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{
		decoder:  decoder,
		ledgers:  ledgers,
		store:    store,
		cache:    gocache.New(cfg.DatasetTTL, cfg.DatasetTTL*2),
		cfg:      cfg,
		clock:    clock,
		tenantID: tenantID,
		inRun:    make(map[string]struct{}),
	}, nil
}

// UploadResult describes a decoded upload held in the session cache.
type UploadResult struct {
	DatasetID  string              `json:"dataset_id"`
	Headers    []string            `json:"headers"`
	RowCount   int                 `json:"row_count"`
	Mapping    report.FieldMapping `json:"mapping"`
	Unresolved []string            `json:"unresolved,omitempty"`
}

// Upload decodes a workbook buffer, resolves the field mapping and
// caches the dataset for a later Generate call.
func (s *Service) Upload(ctx context.Context, buf []byte, intent report.DateIntent) (*UploadResult, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveUploadDecode(result, time.Since(start))
	}()

	if int64(len(buf)) > s.cfg.UploadMaxBytes {
		result = metrics.ResultError
		return nil, errors.New("report service: upload exceeds size limit")
	}
	dataset, err := s.decoder.Decode(buf)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	mapping := report.ResolveFields(dataset.Headers, intent)
	id := buildDatasetID(buf, s.clock.Now())
	s.cache.SetDefault(id, &cachedDataset{dataset: dataset, mapping: mapping})
	metrics.SetCachedDatasets(s.cache.ItemCount())

	out := &UploadResult{
		DatasetID: id,
		Headers:   dataset.Headers,
		RowCount:  len(dataset.Rows),
		Mapping:   mapping,
	}
	if mapping.DateField == "" {
		out.Unresolved = append(out.Unresolved, "date")
	}
	if mapping.AmountField == "" {
		out.Unresolved = append(out.Unresolved, "amount")
	}
	return out, nil
}

// GenerateRequest parameterizes one pipeline run over a cached dataset.
type GenerateRequest struct {
	DatasetID string
	Start     time.Time
	End       time.Time
	Title     string
	// Overrides fill or replace auto-resolved mapping slots.
	Overrides report.FieldMapping
	Persist   bool
}

// Generate runs filter → reconcile → summarize over a cached dataset.
// Concurrent runs against the same dataset are rejected; the dataset
// stays cached after a ledger failure so the operator can retry
// without re-uploading.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*report.ProfitSummary, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportGenerate(result, time.Since(start))
	}()

	if err := s.acquireRun(req.DatasetID); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	defer s.releaseRun(req.DatasetID)

	entry, ok := s.cache.Get(req.DatasetID)
	if !ok {
		result = metrics.ResultError
		return nil, report.ErrDatasetNotFound
	}
	cached := entry.(*cachedDataset)

	mapping := mergeMapping(cached.mapping, req.Overrides)
	if err := mapping.Validate(cached.dataset.Headers); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	window, err := report.NewDateRange(req.Start, req.End)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	records, stats := report.NormalizeRows(cached.dataset.Rows, mapping)
	filtered, undated := report.FilterByRange(records, window, s.cfg.KeepUndatedRows)

	snapshot, err := s.fetchLedgers(ctx)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	rows, missing := report.Reconcile(filtered, snapshot, window.DayCount())
	summary := report.Summarize(rows, window, missing, undated, stats.ZeroAmountRows, s.clock.Now())
	summary.Title = req.Title
	metrics.AddMissingCostUnits(missing.Quantity)

	// A canceled run must never be applied to stale caller state.
	if err := ctx.Err(); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	if req.Persist && s.store != nil {
		tenantID := auth.TenantIDFromContext(ctx)
		if tenantID == "" {
			tenantID = s.tenantID
		}
		if err := s.store.Save(ctx, tenantID, &summary); err != nil {
			result = metrics.ResultError
			return nil, err
		}
	}
	return &summary, nil
}

// Drop evicts a cached dataset.
func (s *Service) Drop(datasetID string) {
	s.cache.Delete(datasetID)
	metrics.SetCachedDatasets(s.cache.ItemCount())
}

func (s *Service) acquireRun(datasetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inRun[datasetID]; busy {
		return report.ErrRunInFlight
	}
	s.inRun[datasetID] = struct{}{}
	return nil
}

func (s *Service) releaseRun(datasetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inRun, datasetID)
}

// fetchLedgers reads the ledger snapshot with a per-attempt timeout and
// bounded retries. Exhausting the budget is fatal to the run.
func (s *Service) fetchLedgers(ctx context.Context) (report.LedgerSnapshot, error) {
	var lastErr error
	attempts := s.cfg.LedgerFetchRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			metrics.IncLedgerFetchRetry()
			select {
			case <-ctx.Done():
				metrics.IncLedgerFetch(metrics.ResultError)
				return report.LedgerSnapshot{}, &report.LedgerFetchError{Source: "cost-ledgers", Err: ctx.Err()}
			case <-time.After(s.cfg.LedgerRetryBackoff * time.Duration(attempt)):
			}
		}
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.LedgerFetchTimeout)
		snapshot, err := s.ledgers.Snapshot(attemptCtx)
		cancel()
		if err == nil {
			metrics.IncLedgerFetch(metrics.ResultSuccess)
			return snapshot, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	metrics.IncLedgerFetch(metrics.ResultError)
	return report.LedgerSnapshot{}, &report.LedgerFetchError{Source: "cost-ledgers", Err: lastErr}
}

func mergeMapping(base, override report.FieldMapping) report.FieldMapping {
	if override.DateField != "" {
		base.DateField = override.DateField
	}
	if override.AmountField != "" {
		base.AmountField = override.AmountField
	}
	if override.SKUField != "" {
		base.SKUField = override.SKUField
	}
	if override.QuantityField != "" {
		base.QuantityField = override.QuantityField
	}
	return base
}

func buildDatasetID(buf []byte, at time.Time) string {
	hash := sha256.New()
	hash.Write(buf)
	hash.Write([]byte(strconv.FormatInt(at.UnixNano(), 10)))
	return "ds-" + hex.EncodeToString(hash.Sum(nil)[:8])
}
