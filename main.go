package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"profitdesk/internal/audit"
	"profitdesk/internal/auth"
	ledgerrepo "profitdesk/internal/ledger/infrastructure/postgres"
	ledgerhttp "profitdesk/internal/ledger/interfaces/http"
	"profitdesk/internal/observability/metrics"
	ledgeradapter "profitdesk/internal/report/adapters/ledger"
	"profitdesk/internal/report/application"
	reportrepo "profitdesk/internal/report/infrastructure/postgres"
	"profitdesk/internal/report/infrastructure/xlsx"
	reportinterfaces "profitdesk/internal/report/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	reportCfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("report config error: %v", err)
	}

	var decoderOpts []xlsx.Option
	if reportCfg.DuplicateHeaderOverwrite {
		decoderOpts = append(decoderOpts, xlsx.WithDuplicateHeaderOverwrite())
	}
	decoder := xlsx.NewDecoder(decoderOpts...)

	inventoryRepo := ledgerrepo.NewInventoryRepository(db)
	fixedRepo := ledgerrepo.NewFixedCostRepository(db)
	payrollRepo := ledgerrepo.NewPayrollRepository(db)

	snapshotReader, err := ledgeradapter.NewSnapshotReader(inventoryRepo, fixedRepo, payrollRepo, cfg.TenantID)
	if err != nil {
		logger.Fatalf("ledger snapshot reader error: %v", err)
	}

	reportStore := reportrepo.NewReportRepository(db)
	reportService, err := application.NewService(decoder, snapshotReader, reportStore, reportCfg, nil, cfg.TenantID)
	if err != nil {
		logger.Fatalf("report service error: %v", err)
	}
	reportHandler, err := reportinterfaces.NewHandler(reportService, reportStore, auditRepo)
	if err != nil {
		logger.Fatalf("report handler error: %v", err)
	}
	ledgerHandler, err := ledgerhttp.NewHandler(inventoryRepo, fixedRepo, payrollRepo, auditRepo)
	if err != nil {
		logger.Fatalf("ledger handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	uploadLimiter := rate.NewLimiter(rate.Limit(cfg.UploadRateLimit), cfg.UploadRateBurst)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/reports/upload", rateLimitMiddleware(reportHandler, uploadLimiter))
	mux.Handle("/api/v1/reports/generate", reportHandler)
	mux.Handle("/api/v1/reports", reportHandler)
	mux.Handle("/api/v1/reports/", reportHandler)
	mux.Handle("/api/v1/exports/reports.csv", reportHandler)
	mux.Handle("/api/v1/inventory-costs", ledgerHandler)
	mux.Handle("/api/v1/inventory-costs/", ledgerHandler)
	mux.Handle("/api/v1/fixed-costs", ledgerHandler)
	mux.Handle("/api/v1/fixed-costs/", ledgerHandler)
	mux.Handle("/api/v1/payroll", ledgerHandler)
	mux.Handle("/api/v1/payroll/", ledgerHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	TenantID        string
	JWTSecret       string
	UploadRateLimit float64
	UploadRateBurst int
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		TenantID:        getenvDefault("TENANT_ID", "tenant-demo"),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		UploadRateLimit: getenvFloatDefault("UPLOAD_RATE_LIMIT", 2),
		UploadRateBurst: getenvIntDefault("UPLOAD_RATE_BURST", 5),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func rateLimitMiddleware(next http.Handler, limiter *rate.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "too many uploads", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
