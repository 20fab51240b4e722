package application

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines pipeline behavior that operators tune per deployment.
type Config struct {
	UploadMaxBytes           int64         `yaml:"upload_max_bytes"`
	DatasetTTL               time.Duration `yaml:"dataset_ttl"`
	LedgerFetchTimeout       time.Duration `yaml:"ledger_fetch_timeout"`
	LedgerFetchRetries       int           `yaml:"ledger_fetch_retries"`
	LedgerRetryBackoff       time.Duration `yaml:"ledger_retry_backoff"`
	KeepUndatedRows          bool          `yaml:"keep_undated_rows"`
	DuplicateHeaderOverwrite bool          `yaml:"duplicate_header_overwrite"`
}

// LoadConfig loads pipeline config from yaml or env. Env values win
// over file values only when the file leaves them unset.
func LoadConfig() (Config, error) {
	cfg := Config{
		UploadMaxBytes:     16 << 20,
		DatasetTTL:         30 * time.Minute,
		LedgerFetchTimeout: 10 * time.Second,
		LedgerFetchRetries: 2,
		LedgerRetryBackoff: 500 * time.Millisecond,
	}

	if path := os.Getenv("REPORT_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if v := getenvInt64("REPORT_UPLOAD_MAX_BYTES", 0); v > 0 {
		cfg.UploadMaxBytes = v
	}
	if v := getenvDuration("REPORT_DATASET_TTL", 0); v > 0 {
		cfg.DatasetTTL = v
	}
	if v := getenvDuration("REPORT_LEDGER_FETCH_TIMEOUT", 0); v > 0 {
		cfg.LedgerFetchTimeout = v
	}
	if v := getenvInt("REPORT_LEDGER_FETCH_RETRIES", -1); v >= 0 {
		cfg.LedgerFetchRetries = v
	}
	if v := getenvDuration("REPORT_LEDGER_RETRY_BACKOFF", 0); v > 0 {
		cfg.LedgerRetryBackoff = v
	}
	if os.Getenv("REPORT_KEEP_UNDATED_ROWS") == "true" {
		cfg.KeepUndatedRows = true
	}
	if os.Getenv("REPORT_DUPLICATE_HEADER_OVERWRITE") == "true" {
		cfg.DuplicateHeaderOverwrite = true
	}
	return cfg, nil
}

func getenvInt(key string, fallback int) int {
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

func getenvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
