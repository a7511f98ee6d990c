package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Model    ModelConfig
	Data     DataConfig
	Labeler  LabelerConfig
	Cache    CacheConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	MetricsLogIntervalSec int
}

// PostgresConfig holds DB connection values for the audit log.
type PostgresConfig struct {
	DSN             string
	ApplicationName string
	MaxConns        int32
	MinConns        int32
	RunMigrations   bool
	ConnMaxIdleSec  int32
	ConnMaxLifeSec  int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// ModelConfig describes the hosted generative model.
type ModelConfig struct {
	APIKey         string
	Name           string
	Temperature    float32
	TimeoutSeconds int
}

// DataConfig points at the deploy-time artifacts.
type DataConfig struct {
	DatasetPath     string
	PredictionsCSV  string
	PredictionsJSON string
	ExamplesPath    string
	ExampleCount    int
	ExampleSeed     uint64
}

// LabelerConfig paces the offline batch labeling job.
type LabelerConfig struct {
	BatchSize          int
	SecondsBetweenCall float64
	DailyCallCap       int
}

// CacheConfig controls the re-triage result cache.
type CacheConfig struct {
	Enabled    bool
	TTLSeconds int
	KeyPrefix  string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	temperature, err := strconv.ParseFloat(getEnv("GEMINI_TEMPERATURE", "0"), 32)
	if err != nil {
		return nil, fmt.Errorf("invalid GEMINI_TEMPERATURE: %w", err)
	}

	seed, err := strconv.ParseUint(getEnv("DEMO_EXAMPLE_SEED", "42"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEMO_EXAMPLE_SEED: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "ticket-retriage"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 60),
			MetricsLogIntervalSec: getEnvAsInt("METRICS_LOG_INTERVAL_SECONDS", 300),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("POSTGRES_DSN"),
			ApplicationName: getEnv("APP_NAME", "ticket-retriage"),
			MaxConns:        int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5)),
			MinConns:        int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:   getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec:  int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Model: ModelConfig{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			Name:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature:    float32(temperature),
			TimeoutSeconds: getEnvAsInt("GEMINI_TIMEOUT_SECONDS", 45),
		},
		Data: DataConfig{
			DatasetPath:     getEnv("DATASET_PATH", "data/processed/service_requests_sample_1000.csv"),
			PredictionsCSV:  getEnv("PREDICTIONS_CSV_PATH", "data/outputs/predictions.csv"),
			PredictionsJSON: getEnv("PREDICTIONS_JSONL_PATH", "data/outputs/predictions.jsonl"),
			ExamplesPath:    getEnv("DEMO_EXAMPLES_PATH", "data/outputs/demo_examples.csv"),
			ExampleCount:    getEnvAsInt("DEMO_EXAMPLE_COUNT", 30),
			ExampleSeed:     seed,
		},
		Labeler: LabelerConfig{
			BatchSize:          getEnvAsInt("LABELER_BATCH_SIZE", 50),
			SecondsBetweenCall: getEnvAsFloat("LABELER_SECONDS_BETWEEN_CALLS", 13.0),
			DailyCallCap:       getEnvAsInt("LABELER_DAILY_CALL_CAP", 20),
		},
		Cache: CacheConfig{
			Enabled:    getEnvAsBool("CACHE_ENABLED", true),
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 3600),
			KeyPrefix:  getEnv("CACHE_KEY_PREFIX", "retriage:"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// MetricsLogInterval returns how often counters are logged; zero disables it.
func (a AppConfig) MetricsLogInterval() time.Duration {
	if a.MetricsLogIntervalSec <= 0 {
		return 0
	}
	return time.Duration(a.MetricsLogIntervalSec) * time.Second
}

// Enabled reports whether a model API key is configured.
func (m ModelConfig) Enabled() bool {
	return m.APIKey != ""
}

// Timeout returns the per-call model timeout.
func (m ModelConfig) Timeout() time.Duration {
	if m.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// CallInterval returns the minimum spacing between labeler calls.
func (l LabelerConfig) CallInterval() time.Duration {
	if l.SecondsBetweenCall <= 0 {
		return 0
	}
	return time.Duration(l.SecondsBetweenCall * float64(time.Second))
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
