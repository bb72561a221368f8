package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"finfamily/internal/core"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendREST     = "rest"
	BackendMongo    = "mongo"
)

var validBackends = []string{BackendMemory, BackendFile, BackendSQLite, BackendPostgres, BackendREST, BackendMongo}

// Values shipped in example env files. Treated the same as an empty value.
var placeholderMarkers = []string{
	"seu-projeto",
	"your-project",
	"sua-chave",
	"your-key",
	"changeme",
}

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string
	Language string

	// Backend selection
	DataBackend string
	DataDir     string

	// Database
	SQLiteDBPath string
	PostgresDSN  string
	MongoURI     string
	MongoDB      string

	// Remote REST endpoint
	RemoteURL string
	RemoteKey string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets export
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Advisor
	GeminiAPIKey         string
	GeminiModel          string
	AdvisorRatePerMinute int

	// Worker
	ExportSchedule string

	// Presentation
	CurrencySymbol string

	// Summary cache
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration

	// API rate limiting
	APIRatePerSecond float64
	APIBurst         int
}

func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Language: getEnv("LANGUAGE", "pt-BR"),

		DataBackend: strings.ToLower(getEnv("DATA_BACKEND", BackendMemory)),
		DataDir:     getEnv("DATA_DIR", "./data"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finfamily.db"),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		MongoURI:     getEnv("MONGODB_URI", ""),
		MongoDB:      getEnv("MONGODB_DB", "finfamily"),

		RemoteURL: getEnv("REMOTE_URL", ""),
		RemoteKey: getEnv("REMOTE_KEY", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finfamily"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_exports"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AdvisorRatePerMinute: getEnvInt("ADVISOR_RATE_PER_MINUTE", 6),

		ExportSchedule: getEnv("EXPORT_SCHEDULE", "0 9 1 * *"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "R$"),

		SummaryCacheSize: getEnvInt("SUMMARY_CACHE_SIZE", 64),
		SummaryCacheTTL:  getEnvDuration("SUMMARY_CACHE_TTL", 5*time.Minute),

		APIRatePerSecond: getEnvFloat("API_RATE_PER_SECOND", 20),
		APIBurst:         getEnvInt("API_BURST", 40),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid.
// Missing remote credentials are not reported here; see RequiredState.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendFile:
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendREST:
		if c.RemoteURL != "" && !isPlaceholder(c.RemoteURL) {
			if u, err := url.Parse(c.RemoteURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				errors = append(errors, fmt.Sprintf("invalid remote URL '%s': must be http or https", c.RemoteURL))
			}
		}
	case BackendMongo:
		if c.MongoDB == "" {
			errors = append(errors, "MongoDB database name cannot be empty when using mongo backend")
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if c.AdvisorRatePerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid advisor rate %d: must be at least 1 per minute", c.AdvisorRatePerMinute))
	}

	if _, err := cron.ParseStandard(c.ExportSchedule); err != nil {
		errors = append(errors, fmt.Sprintf("invalid export schedule '%s': %v", c.ExportSchedule, err))
	}

	if c.SummaryCacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid summary cache size %d: must not be negative", c.SummaryCacheSize))
	}
	if c.SummaryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid summary cache ttl %v: must not be negative", c.SummaryCacheTTL))
	}

	if c.APIRatePerSecond <= 0 || c.APIBurst < 1 {
		errors = append(errors, fmt.Sprintf("invalid API rate limit %.2f/s burst %d", c.APIRatePerSecond, c.APIBurst))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// RequiredState reports the settings the selected backend still needs.
// It returns nil when the backend can be opened.
func (c *Config) RequiredState() *core.ConfigurationError {
	var missing []string
	need := func(key, value string) {
		if isPlaceholder(value) {
			missing = append(missing, key)
		}
	}

	switch c.DataBackend {
	case BackendREST:
		need("REMOTE_URL", c.RemoteURL)
		need("REMOTE_KEY", c.RemoteKey)
	case BackendPostgres:
		need("POSTGRES_DSN", c.PostgresDSN)
	case BackendMongo:
		need("MONGODB_URI", c.MongoURI)
	}

	if len(missing) == 0 {
		return nil
	}
	return &core.ConfigurationError{Missing: missing}
}

// AdvisorConfigured reports whether an advisor key is present.
func (c *Config) AdvisorConfigured() bool {
	return !isPlaceholder(c.GeminiAPIKey)
}

// ExportConfigured reports whether summaries can be written to a spreadsheet.
func (c *Config) ExportConfigured() bool {
	return c.GoogleSpreadsheetID != "" &&
		(c.GoogleServiceAccountFile != "" || c.GoogleServiceAccountJSON != "")
}

func isPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return true
	}
	if strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
		return true
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(v, marker) {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
