// file: internals/configs/config.go
package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the process-wide settings assembled from the environment.
type Config struct {
	Port        string
	CorsOrigins string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string

	JWTSecret string
	JWTTTL    time.Duration

	StorageDriver string // "local" | "oss"
	StorageDir    string
	StoragePrefix string

	DocumentTemplateDir string

	LogLevel  string
	LogOutput string // console | file | both
	LogFile   string

	DelegationExpirySpec string

	NotificationWorkers int
	NotificationBuffer  int
}

var (
	JWTSecret string
	Current   Config
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() Config {
	envLoaded := false
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		envLoaded = godotenv.Load() == nil
	}

	cfg := Config{
		Port:        GetEnv("PORT", "3000"),
		CorsOrigins: GetEnv("CORS_ALLOWED_ORIGINS"),

		DBUser:     GetEnv("DB_USER"),
		DBPassword: GetEnv("DB_PASSWORD"),
		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBName:     GetEnv("DB_NAME", "picton"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "disable"),

		JWTSecret: GetEnv("JWT_SECRET"),
		JWTTTL:    GetEnvDuration("JWT_TTL", 12*time.Hour),

		StorageDriver: strings.ToLower(GetEnv("STORAGE_DRIVER", "local")),
		StorageDir:    GetEnv("STORAGE_DIR", "media"),
		StoragePrefix: GetEnv("STORAGE_PREFIX", "picton"),

		DocumentTemplateDir: GetEnv("DOCUMENT_TEMPLATE_DIR", "templates/forms"),

		LogLevel:  GetEnv("LOG_LEVEL", "info"),
		LogOutput: GetEnv("LOG_OUTPUT", "console"),
		LogFile:   GetEnv("LOG_FILE", "logs/picton.log"),

		DelegationExpirySpec: GetEnv("DELEGATION_EXPIRY_CRON", "@every 15m"),

		NotificationWorkers: GetEnvInt("NOTIFICATION_WORKERS", 2),
		NotificationBuffer:  GetEnvInt("NOTIFICATION_BUFFER", 256),
	}

	JWTSecret = cfg.JWTSecret
	Current = cfg

	// logger is usually not initialised yet; report through the global no-op safe sugar
	if envLoaded {
		zap.S().Info(".env file loaded")
	}
	if cfg.JWTSecret == "" {
		zap.S().Warn("JWT_SECRET is not set")
	}
	return cfg
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func GetEnvDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
