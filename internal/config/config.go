package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/matchbet/internal/domain/gamesession"
	"github.com/riskibarqy/matchbet/internal/platform/logging"
	"github.com/riskibarqy/matchbet/internal/platform/resilience"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level
	LogFormat          string

	StoreDriver             string
	DBURL                   string
	DBDisablePreparedBinary bool
	DBAutoMigrate           bool
	DBListCacheTTL          time.Duration
	SeedDemo                bool
	CustomEventPolicy       gamesession.CustomPolicy

	MatchFeedEnabled    bool
	MatchFeedBaseURL    string
	MatchFeedToken      string
	MatchFeedTimeout    time.Duration
	MatchFeedMaxRetries int
	MatchFeedCacheTTL   time.Duration
	MatchFeedCircuit    resilience.CircuitBreakerConfig

	RedisEnabled      bool
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisTLSEnabled   bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	LiveSyncEnabled    bool
	LiveSyncWorkers    int
	LiveSyncTick       time.Duration
	LiveSyncRetryAfter time.Duration

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// Load reads the environment. A .env file in the working directory (or ENV_FILE) is applied first
// and never overrides variables that are already set.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "matchbet-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogFormat:                  strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", "json"))),
		StoreDriver:                strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreMemory))),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		MatchFeedBaseURL:           strings.TrimSpace(getEnv("MATCHFEED_BASE_URL", "https://api.football-data.org/v4")),
		MatchFeedToken:             strings.TrimSpace(getEnv("MATCHFEED_TOKEN", "")),
		RedisAddr:                  strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword:              getEnv("REDIS_PASSWORD", ""),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		UptraceDSN:                 strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}

	if cfg.LogLevel, err = logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are json, console", cfg.LogFormat)
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if err := loadHTTP(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadStore(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadMatchFeed(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadRedis(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLiveSync(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadDotEnv() error {
	if path := strings.TrimSpace(os.Getenv("ENV_FILE")); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load ENV_FILE %s: %w", path, err)
		}
		return nil
	}
	_ = godotenv.Load()
	return nil
}

func loadHTTP(cfg *Config) error {
	var err error
	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", 10*time.Second); err != nil {
		return err
	}
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", 15*time.Second); err != nil {
		return err
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return err
	}
	return nil
}

func loadStore(cfg *Config) error {
	switch cfg.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if cfg.DBURL == "" {
			return fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s", cfg.StoreDriver, StoreMemory, StorePostgres)
	}

	var err error
	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", true); err != nil {
		return err
	}
	if cfg.DBAutoMigrate, err = getEnvAsBool("DB_AUTO_MIGRATE", false); err != nil {
		return err
	}
	if cfg.DBListCacheTTL, err = getEnvAsDuration("DB_LIST_CACHE_TTL", 2*time.Second); err != nil {
		return err
	}
	if cfg.DBListCacheTTL < 0 {
		return fmt.Errorf("DB_LIST_CACHE_TTL must be >= 0")
	}
	if cfg.SeedDemo, err = getEnvAsBool("APP_SEED_DEMO", cfg.AppEnv == EnvDev); err != nil {
		return err
	}
	if cfg.CustomEventPolicy, err = gamesession.ParseCustomPolicy(getEnv("CUSTOM_EVENT_POLICY", "")); err != nil {
		return fmt.Errorf("parse CUSTOM_EVENT_POLICY: %w", err)
	}
	return nil
}

func loadMatchFeed(cfg *Config) error {
	var err error
	if cfg.MatchFeedEnabled, err = getEnvAsBool("MATCHFEED_ENABLED", false); err != nil {
		return err
	}
	if cfg.MatchFeedEnabled && cfg.MatchFeedToken == "" {
		return fmt.Errorf("MATCHFEED_TOKEN is required when MATCHFEED_ENABLED=true")
	}
	if cfg.MatchFeedTimeout, err = getEnvAsDuration("MATCHFEED_TIMEOUT", 10*time.Second); err != nil {
		return err
	}
	if cfg.MatchFeedMaxRetries, err = getEnvAsInt("MATCHFEED_MAX_RETRIES", 1); err != nil {
		return fmt.Errorf("parse MATCHFEED_MAX_RETRIES: %w", err)
	}
	if cfg.MatchFeedMaxRetries < 0 {
		return fmt.Errorf("MATCHFEED_MAX_RETRIES must be >= 0")
	}
	if cfg.MatchFeedCacheTTL, err = getEnvAsDuration("MATCHFEED_CACHE_TTL", 10*time.Second); err != nil {
		return err
	}

	circuit := resilience.DefaultCircuitBreakerConfig()
	if circuit.Enabled, err = getEnvAsBool("MATCHFEED_CIRCUIT_ENABLED", true); err != nil {
		return err
	}
	if circuit.FailureThreshold, err = getEnvAsInt("MATCHFEED_CIRCUIT_FAILURE_COUNT", circuit.FailureThreshold); err != nil {
		return fmt.Errorf("parse MATCHFEED_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuit.FailureThreshold < 1 {
		return fmt.Errorf("MATCHFEED_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if circuit.OpenTimeout, err = getEnvAsDuration("MATCHFEED_CIRCUIT_OPEN_TIMEOUT", circuit.OpenTimeout); err != nil {
		return err
	}
	if circuit.HalfOpenMaxReq, err = getEnvAsInt("MATCHFEED_CIRCUIT_HALF_OPEN_MAX_REQ", circuit.HalfOpenMaxReq); err != nil {
		return fmt.Errorf("parse MATCHFEED_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuit.HalfOpenMaxReq < 1 {
		return fmt.Errorf("MATCHFEED_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	cfg.MatchFeedCircuit = circuit
	return nil
}

func loadRedis(cfg *Config) error {
	var err error
	if cfg.RedisEnabled, err = getEnvAsBool("REDIS_ENABLED", false); err != nil {
		return err
	}
	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if cfg.RedisTLSEnabled, err = getEnvAsBool("REDIS_TLS_ENABLED", false); err != nil {
		return err
	}
	// football-data.org free tier allows 10 requests per minute.
	if cfg.RateLimitRequests, err = getEnvAsInt("MATCHFEED_RATE_LIMIT_REQUESTS", 10); err != nil {
		return fmt.Errorf("parse MATCHFEED_RATE_LIMIT_REQUESTS: %w", err)
	}
	if cfg.RateLimitRequests < 1 {
		return fmt.Errorf("MATCHFEED_RATE_LIMIT_REQUESTS must be >= 1")
	}
	if cfg.RateLimitWindow, err = getEnvAsDuration("MATCHFEED_RATE_LIMIT_WINDOW", time.Minute); err != nil {
		return err
	}
	return nil
}

func loadLiveSync(cfg *Config) error {
	var err error
	if cfg.LiveSyncEnabled, err = getEnvAsBool("LIVE_SYNC_ENABLED", cfg.MatchFeedEnabled); err != nil {
		return err
	}
	if cfg.LiveSyncEnabled && !cfg.MatchFeedEnabled {
		return fmt.Errorf("LIVE_SYNC_ENABLED=true requires MATCHFEED_ENABLED=true")
	}
	if cfg.LiveSyncWorkers, err = getEnvAsInt("LIVE_SYNC_WORKERS", 4); err != nil {
		return fmt.Errorf("parse LIVE_SYNC_WORKERS: %w", err)
	}
	if cfg.LiveSyncWorkers < 1 {
		return fmt.Errorf("LIVE_SYNC_WORKERS must be >= 1")
	}
	if cfg.LiveSyncTick, err = getEnvAsDuration("LIVE_SYNC_TICK", 5*time.Second); err != nil {
		return err
	}
	if cfg.LiveSyncRetryAfter, err = getEnvAsDuration("LIVE_SYNC_RETRY_AFTER", 30*time.Second); err != nil {
		return err
	}
	return nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return err
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return err
	}
	if cfg.PyroscopeEnabled {
		if cfg.PyroscopeServerAddress == "" {
			return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
		}
		if cfg.PyroscopeAppName == "" {
			return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
		}
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", 15*time.Second); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

// getEnvAsDuration rejects non-positive durations.
func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
