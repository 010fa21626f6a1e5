// Package config provides application configuration management from
// environment variables and an optional YAML file.
//
// # Overview
//
// Load starts from defaults, overlays the YAML file named by
// AUTHGATE_CONFIG_FILE when set, then applies AUTHGATE_* environment
// variables. Environment variables always win. The result is validated before
// it is returned.
//
// # Configuration Structure
//
// Server settings:
//
//	AUTHGATE_HOST="0.0.0.0"
//	AUTHGATE_PORT="8080"
//	AUTHGATE_HEALTH_PORT="9090"
//	AUTHGATE_READ_TIMEOUT="15s"
//	AUTHGATE_WRITE_TIMEOUT="15s"
//	AUTHGATE_MAX_BODY_BYTES="1048576"
//
// Auth settings:
//
//	AUTHGATE_JWT_SECRET="..."        # at least 32 bytes outside development
//	AUTHGATE_TOKEN_TTL="120h"
//	AUTHGATE_ENV="production"        # "development" disables Secure cookies
//	AUTHGATE_BCRYPT_COST="12"
//	AUTHGATE_COOKIE_NAME="jwt"
//
// Storage settings:
//
//	AUTHGATE_STORAGE_TYPE="postgres"  # memory, postgres, sqlite
//	AUTHGATE_POSTGRES_URL="postgres://localhost/authgate?sslmode=disable"
//	AUTHGATE_POSTGRES_MAX_CONNS="20"
//	AUTHGATE_SQLITE_PATH="authgate.db"
//	AUTHGATE_AUTO_MIGRATE="true"
//
// Cache settings:
//
//	AUTHGATE_CACHE_ENABLED="true"
//	AUTHGATE_CACHE_TTL="5m"
//	AUTHGATE_L1_CACHE_SIZE="10000"
//	AUTHGATE_REDIS_URL="redis://localhost:6379"
//
// CORS:
//
//	AUTHGATE_CORS_ORIGINS="https://app.example.com,http://localhost:5173"
//
// Observability:
//
//	AUTHGATE_LOG_LEVEL="info"
//	AUTHGATE_METRICS_ENABLED="true"
//	AUTHGATE_DB_STATS_SCHEDULE="@every 15s"
//	AUTHGATE_OTEL_ENABLED="true"
//	AUTHGATE_OTEL_ENDPOINT="localhost:4317"
//
// # YAML File
//
//	server:
//	  port: "8080"
//	auth:
//	  token_ttl: 120h
//	storage:
//	  type: sqlite
//	  sqlite_path: /var/lib/authgate/users.db
//	observability:
//	  log_level: debug
//
// # Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tokens, err := auth.NewTokenManager([]byte(cfg.Auth.SigningKey), cfg.Auth.TokenTTL)
package config
