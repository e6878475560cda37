package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Token store backends
const (
	TokenStoreFile  = "file"
	TokenStoreRedis = "redis"
	TokenStoreMySQL = "mysql"
)

// Config holds application configuration from environment variables
type Config struct {
	// Application
	AppPort string

	// Upstream REST API
	APIBaseURL string
	APITimeout time.Duration

	// Console behaviour
	DefaultPageSize   int
	MaxPageSize       int
	SearchDebounce    time.Duration
	SearchPageSize    int
	DashboardPageSize int

	// Token storage
	TokenStore    string
	TokenFile     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTokenKey string

	// Database (mysql token store)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Logging
	LogLevel  string
	LogPretty bool

	// OpenTelemetry
	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPProtocol  string
	OTELExporterOTLPHeaders   string // For SigNoz Cloud: signoz-ingestion-key=<key>
	OTELExporterOTLPInsecure  bool   // true for http://, false for https://
	OTELServiceName           string
	OTELServiceVersion        string
	OTELDeploymentEnvironment string
	OTELResourceAttributes    string
}

// LoadConfig loads configuration from .env file and environment variables with defaults
func LoadConfig() *Config {
	// .env is optional; only a real read error is worth reporting
	if err := godotenv.Load(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	return &Config{
		// Application
		AppPort: getEnv("APP_PORT", "8080"),

		// Upstream REST API
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8000/api/v1"),
		APITimeout: getEnvDuration("API_TIMEOUT", 15*time.Second),

		// Console behaviour
		DefaultPageSize:   getEnvInt("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:       getEnvInt("MAX_PAGE_SIZE", 1000),
		SearchDebounce:    getEnvDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
		SearchPageSize:    getEnvInt("SEARCH_PAGE_SIZE", 50),
		DashboardPageSize: getEnvInt("DASHBOARD_PAGE_SIZE", 1000),

		// Token storage
		TokenStore:    getEnv("TOKEN_STORE", TokenStoreFile),
		TokenFile:     getEnv("TOKEN_FILE", ".console/token.json"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisTokenKey: getEnv("REDIS_TOKEN_KEY", "console:access_token"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "console"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", false),

		// OpenTelemetry
		OTELMetricsEnabled:        getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracesEnabled:         getEnvBool("OTEL_TRACES_ENABLED", false),
		OTELExporterOTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		OTELExporterOTLPProtocol:  getEnv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf"),
		OTELExporterOTLPHeaders:   getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		OTELExporterOTLPInsecure:  getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:           getEnv("OTEL_SERVICE_NAME", "ecommerce-console"),
		OTELServiceVersion:        getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
		OTELDeploymentEnvironment: getEnv("OTEL_DEPLOYMENT_ENVIRONMENT", "development"),
		OTELResourceAttributes:    getEnv("OTEL_RESOURCE_ATTRIBUTES", ""),
	}
}

// GetDSN returns the MySQL DSN string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}

// GetAppPortInt returns the application port as an integer
func (c *Config) GetAppPortInt() int {
	port, err := strconv.Atoi(c.AppPort)
	if err != nil {
		return 8080
	}
	return port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if value == "true" || value == "1" || value == "yes" {
			return true
		}
		return false
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Warning: %s=%q is not an integer, using %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("300ms") or bare milliseconds ("300")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	log.Printf("Warning: %s=%q is not a duration, using %s", key, value, defaultValue)
	return defaultValue
}
