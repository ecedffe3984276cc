package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingMongoURI is returned by Load when no database connection string
// is configured. The server treats it as fatal.
var ErrMissingMongoURI = errors.New("MONGODB_URI must be set (in the environment, .env.local or .env)")

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	MongoURI       string
	MongoDB        string
	PostgresDSN    string
	RedisAddr      string
	RedisPassword  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	AllowedOrigins []string
	LogLevel       string
	LogFile        string
	Location       *time.Location
}

// ExportsEnabled reports whether object storage is configured.
func (c *Config) ExportsEnabled() bool {
	return c.MinioEndpoint != ""
}

// Load reads .env.local and .env (when present, without overriding the real
// environment) and builds the Config.
func Load() (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		MongoURI:       getenv("MONGODB_URI", getenv("MONGO_URI", "")),
		MongoDB:        getenv("MONGO_DB", "todolist"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "todo-exports"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFile:        getenv("LOG_FILE", ""),
		Location:       time.Local,
	}
	if cfg.MongoURI == "" {
		return nil, ErrMissingMongoURI
	}

	if tz := getenv("APP_TIMEZONE", ""); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, err
		}
		cfg.Location = loc
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
