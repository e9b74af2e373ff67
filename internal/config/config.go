package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=procurement port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	DBDriver    string // postgres | mysql
	DatabaseDSN string
	MaxOpenConn int
	MaxIdleConn int
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigins string
	LogLevel    string
	LogFormat   string // json | text

	// Optional integrations; empty disables them.
	RedisAddr           string
	ReportCacheTTL      time.Duration
	ErpProjectID        string
	ErpTopic            string
	ErpCredentialsJSON  string
	ReportArchiveBucket string
	GCSCredentialsJSON  string

	DefaultPhoneRegion string
	ServiceName        string
}

func Load() *Config {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		DBDriver:            getEnv("DB_DRIVER", "postgres"),
		DatabaseDSN:         getEnv("DATABASE_DSN", defaultDSN),
		MaxOpenConn:         getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConn:         getEnvInt("DB_MAX_IDLE_CONNS", 10),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,
		CORSOrigins:         getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		ReportCacheTTL:      time.Duration(getEnvInt("REPORT_CACHE_TTL_SECONDS", 30)) * time.Second,
		ErpProjectID:        getEnv("ERP_PUBSUB_PROJECT_ID", ""),
		ErpTopic:            getEnv("ERP_PUBSUB_TOPIC", ""),
		ErpCredentialsJSON:  getEnv("ERP_PUBSUB_CREDENTIALS_JSON", ""),
		ReportArchiveBucket: getEnv("REPORT_ARCHIVE_BUCKET", ""),
		GCSCredentialsJSON:  getEnv("GCS_CREDENTIALS_JSON", ""),
		DefaultPhoneRegion:  getEnv("DEFAULT_PHONE_REGION", "US"),
		ServiceName:         getEnv("OTEL_SERVICE_NAME", "procurement-backend"),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the default value, set your own connection string for production.")
	}
	if cfg.CORSOrigins == "http://localhost:3000" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the default value, set your own domain for production.")
	}

	return cfg
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errConfig("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return errConfig("JWT_SECRET must be at least 32 characters")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "mysql" {
		return errConfig("DB_DRIVER must be postgres or mysql")
	}
	if (c.ErpProjectID == "") != (c.ErpTopic == "") {
		return errConfig("ERP_PUBSUB_PROJECT_ID and ERP_PUBSUB_TOPIC must be set together")
	}
	return nil
}

type errConfig string

func (e errConfig) Error() string { return string(e) }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("[WARN] %s=%q is not a valid number, using %d", key, v, def)
		return def
	}
	return n
}
