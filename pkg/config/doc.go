// Package config loads the market's configuration from environment variables.
//
// # Overview
//
// Every setting has a default, so an empty environment starts an offline
// instance: in-memory journal and profiles, inline exports, canned model
// replies. cmd/samonya loads a .env file first when one is present.
//
// # Configuration Structure
//
// Server settings:
//
//	SAMONYA_HOST="0.0.0.0"
//	SAMONYA_PORT="8080"
//	SAMONYA_HEALTH_PORT="9090"
//	SAMONYA_WRITE_TIMEOUT="120s"
//	SAMONYA_CORS_ORIGINS="https://samonya.co.ke,http://localhost:3000"
//
// Sessions:
//
//	SAMONYA_SESSION_TTL="30m"
//	SAMONYA_MAX_SESSIONS="10000"
//	SAMONYA_WELCOME_CREDITS="6"
//
// Generation:
//
//	SAMONYA_OPENAI_API_KEY="sk-..."   # falls back to OPENAI_API_KEY
//	SAMONYA_TEXT_MODEL="gpt-4o-mini"
//	SAMONYA_CHAT_MODEL="gpt-4o-mini"
//	SAMONYA_REFUND_ON_FAILURE="false"
//
// Storage:
//
//	SAMONYA_REDIS_URL="redis://localhost:6379/0"
//	SAMONYA_JOURNAL_DRIVER="postgres"   # postgres, sqlite3
//	SAMONYA_JOURNAL_DSN="postgres://localhost/samonya?sslmode=disable"
//	SAMONYA_S3_BUCKET="samonya-exports"
//	SAMONYA_S3_ENDPOINT="http://localhost:9000"
//
// Catalog:
//
//	SAMONYA_CATALOG_PATH="/etc/samonya/catalog.yaml"
//	SAMONYA_INSPIRATION_SCHEDULE="1 0 * * *"
//
// Observability settings:
//
//	SAMONYA_LOG_LEVEL="info"  # debug, info, warn, error
//	SAMONYA_METRICS_ENABLED="true"
//	SAMONYA_OTEL_ENABLED="true"
//	SAMONYA_OTEL_ENDPOINT="otel-collector:4317"
//	SAMONYA_OTEL_SAMPLE_RATIO="0.1"
//	SAMONYA_OTEL_EXPORT_METRICS="false"
//	SAMONYA_ENVIRONMENT="production"
//
// # Usage Example
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if cfg.OfflineMode() {
//		log.Println("no API key, using offline generation")
//	}
package config
