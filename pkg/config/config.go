package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/platinummonkey/samonya/pkg/catalog"
	"github.com/platinummonkey/samonya/pkg/export"
	"github.com/platinummonkey/samonya/pkg/generation"
	"github.com/platinummonkey/samonya/pkg/observability"
)

// Config holds all application configuration. Export uploads to S3 when a
// bucket is set, otherwise artifacts are returned inline.
type Config struct {
	Server        ServerConfig
	Session       SessionConfig
	Generation    GenerationConfig
	Redis         RedisConfig
	Journal       JournalConfig
	Export        export.S3Config
	Catalog       CatalogConfig
	Auth          AuthConfig
	RateLimit     RateLimitConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	CORSOrigins     []string

	// Health/metrics server (separate port for k8s liveness and readiness checks)
	HealthPort string
}

// SessionConfig holds session manager settings
type SessionConfig struct {
	TTL            time.Duration
	MaxSessions    int
	WelcomeCredits int
}

// GenerationConfig holds model settings. An empty API key selects the
// offline generator and chatter.
type GenerationConfig struct {
	OpenAI          generation.OpenAIConfig
	ChatModel       string
	RefundOnFailure bool
}

// RedisConfig configures the profile store and distributed rate limits.
// An empty URL keeps both in process.
type RedisConfig struct {
	URL        string
	ProfileTTL time.Duration
}

// JournalConfig selects the transaction journal. An empty driver disables it.
type JournalConfig struct {
	Driver string
	DSN    string
}

// CatalogConfig holds catalog override and inspiration settings
type CatalogConfig struct {
	Path                string
	Watch               bool
	InspirationSchedule string
}

// AuthConfig holds OTP and payment simulation settings
type AuthConfig struct {
	OTPDelay          time.Duration
	OTPLimit          int
	OTPWindow         time.Duration
	VerificationDelay time.Duration
}

// RateLimitConfig holds API rate limiting settings
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel

	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
	OTelEnvironment    string
	OTelSampleRatio    float64
	OTelExportMetrics  bool
}

// OTel returns the tracing settings for observability.InitOTel
func (c ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.OTelEnabled,
		Endpoint:       c.OTelEndpoint,
		Insecure:       c.OTelInsecure,
		ServiceName:    c.OTelServiceName,
		ServiceVersion: c.OTelServiceVersion,
		Environment:    c.OTelEnvironment,
		SampleRatio:    c.OTelSampleRatio,
		ExportMetrics:  c.OTelExportMetrics,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Session:       loadSessionConfig(),
		Generation:    loadGenerationConfig(),
		Redis:         loadRedisConfig(),
		Journal:       loadJournalConfig(),
		Export:        loadExportConfig(),
		Catalog:       loadCatalogConfig(),
		Auth:          loadAuthConfig(),
		RateLimit:     loadRateLimitConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SAMONYA_HOST", "0.0.0.0"),
		Port:            getEnv("SAMONYA_PORT", "8080"),
		ReadTimeout:     getEnvDuration("SAMONYA_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SAMONYA_WRITE_TIMEOUT", 120*time.Second),
		IdleTimeout:     getEnvDuration("SAMONYA_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SAMONYA_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("SAMONYA_MAX_BODY_BYTES", 10<<20),
		CORSOrigins:     getEnvList("SAMONYA_CORS_ORIGINS", []string{"*"}),
		HealthPort:      getEnv("SAMONYA_HEALTH_PORT", "9090"),
	}
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:            getEnvDuration("SAMONYA_SESSION_TTL", 30*time.Minute),
		MaxSessions:    getEnvInt("SAMONYA_MAX_SESSIONS", 10000),
		WelcomeCredits: getEnvInt("SAMONYA_WELCOME_CREDITS", 6),
	}
}

func loadGenerationConfig() GenerationConfig {
	defaults := generation.DefaultOpenAIConfig()
	openai := generation.OpenAIConfig{
		APIKey:      getEnv("SAMONYA_OPENAI_API_KEY", os.Getenv("OPENAI_API_KEY")),
		BaseURL:     getEnv("SAMONYA_OPENAI_BASE_URL", ""),
		TextModel:   getEnv("SAMONYA_TEXT_MODEL", defaults.TextModel),
		ImageModel:  getEnv("SAMONYA_IMAGE_MODEL", defaults.ImageModel),
		ImageSize:   getEnv("SAMONYA_IMAGE_SIZE", defaults.ImageSize),
		Temperature: getEnvFloat32("SAMONYA_TEMPERATURE", defaults.Temperature),
		MaxTokens:   getEnvInt("SAMONYA_MAX_TOKENS", defaults.MaxTokens),
	}
	return GenerationConfig{
		OpenAI:          openai,
		ChatModel:       getEnv("SAMONYA_CHAT_MODEL", openai.TextModel),
		RefundOnFailure: getEnvBool("SAMONYA_REFUND_ON_FAILURE", false),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		URL:        getEnv("SAMONYA_REDIS_URL", ""),
		ProfileTTL: getEnvDuration("SAMONYA_PROFILE_TTL", 30*24*time.Hour),
	}
}

func loadJournalConfig() JournalConfig {
	return JournalConfig{
		Driver: strings.ToLower(getEnv("SAMONYA_JOURNAL_DRIVER", "")),
		DSN:    getEnv("SAMONYA_JOURNAL_DSN", ""),
	}
}

func loadExportConfig() export.S3Config {
	return export.S3Config{
		Bucket:       getEnv("SAMONYA_S3_BUCKET", ""),
		Region:       getEnv("SAMONYA_S3_REGION", "us-east-1"),
		Endpoint:     getEnv("SAMONYA_S3_ENDPOINT", ""),
		AccessKey:    getEnv("SAMONYA_S3_ACCESS_KEY", ""),
		SecretKey:    getEnv("SAMONYA_S3_SECRET_KEY", ""),
		UsePathStyle: getEnvBool("SAMONYA_S3_USE_PATH_STYLE", false),
		PresignTTL:   getEnvDuration("SAMONYA_S3_PRESIGN_TTL", 15*time.Minute),
	}
}

func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Path:                getEnv("SAMONYA_CATALOG_PATH", ""),
		Watch:               getEnvBool("SAMONYA_CATALOG_WATCH", true),
		InspirationSchedule: getEnv("SAMONYA_INSPIRATION_SCHEDULE", catalog.DefaultRotationSchedule),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		OTPDelay:          getEnvDuration("SAMONYA_OTP_DELAY", 0),
		OTPLimit:          getEnvInt("SAMONYA_OTP_LIMIT", 5),
		OTPWindow:         getEnvDuration("SAMONYA_OTP_WINDOW", 10*time.Minute),
		VerificationDelay: getEnvDuration("SAMONYA_VERIFICATION_DELAY", 0),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:           getEnvBool("SAMONYA_RATE_LIMIT_ENABLED", true),
		RequestsPerMinute: getEnvInt("SAMONYA_RATE_LIMIT_RPM", 300),
		Burst:             getEnvInt("SAMONYA_RATE_LIMIT_BURST", 30),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           parseLogLevel(getEnv("SAMONYA_LOG_LEVEL", "info")),
		MetricsEnabled:     getEnvBool("SAMONYA_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("SAMONYA_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("SAMONYA_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("SAMONYA_OTEL_SERVICE_NAME", "samonya-market"),
		OTelServiceVersion: getEnv("SAMONYA_OTEL_SERVICE_VERSION", ""),
		OTelInsecure:       getEnvBool("SAMONYA_OTEL_INSECURE", true),
		OTelEnvironment:    getEnv("SAMONYA_ENVIRONMENT", "development"),
		OTelSampleRatio:    getEnvFloat64("SAMONYA_OTEL_SAMPLE_RATIO", 1.0),
		OTelExportMetrics:  getEnvBool("SAMONYA_OTEL_EXPORT_METRICS", false),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if c.Session.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive")
	}
	if c.Session.WelcomeCredits < 0 {
		return fmt.Errorf("welcome credits cannot be negative")
	}

	if t := c.Generation.OpenAI.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", t)
	}

	switch c.Journal.Driver {
	case "":
	case "postgres", "sqlite3":
		if c.Journal.DSN == "" {
			return fmt.Errorf("journal DSN is required for %s journal", c.Journal.Driver)
		}
	default:
		return fmt.Errorf("invalid journal driver: %s (must be postgres or sqlite3)", c.Journal.Driver)
	}

	if c.Export.Bucket != "" && c.Export.Region == "" {
		return fmt.Errorf("S3 region is required when an export bucket is set")
	}
	if (c.Export.AccessKey == "") != (c.Export.SecretKey == "") {
		return fmt.Errorf("S3 access key and secret key must be set together")
	}

	if c.Catalog.InspirationSchedule != "" {
		if _, err := cron.ParseStandard(c.Catalog.InspirationSchedule); err != nil {
			return fmt.Errorf("invalid inspiration schedule: %w", err)
		}
	}

	if c.Auth.OTPLimit <= 0 || c.Auth.OTPWindow <= 0 {
		return fmt.Errorf("OTP limit and window must be positive")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate limit must be positive when enabled")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
		if r := c.Observability.OTelSampleRatio; r < 0 || r > 1 {
			return fmt.Errorf("OpenTelemetry sample ratio must be between 0 and 1, got %v", r)
		}
	}

	return nil
}

// OfflineMode reports whether generation and chat run without a model
func (c *Config) OfflineMode() bool {
	return c.Generation.OpenAI.APIKey == ""
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat32 returns a float environment variable or a default
func getEnvFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(f)
		}
	}
	return defaultValue
}

// getEnvFloat64 returns a float64 environment variable or a default
func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
