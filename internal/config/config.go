package config

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":4000"
	defaultDatabaseURL     = "food.db"
	defaultMongoDatabase   = "food-db"
	defaultPublicBaseURL   = "http://localhost:4000"
	defaultUploadBackend   = "disk"
	defaultUploadDir       = "./public/images"
	defaultUploadMaxSize   = "10000000"
	defaultUploadMaxFiles  = "10"
	defaultS3Prefix        = "images"
	defaultRequestTimeout  = "30s"
	defaultShutdownTimeout = "10s"
	defaultLogLevel        = "info"
	defaultLogFormat       = "text"
)

// uploadBodyOverhead matches the multipart framing allowance the upload
// handler adds to its request body limit.
const uploadBodyOverhead = 1 << 20

const (
	UploadBackendDisk = "disk"
	UploadBackendS3   = "s3"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DatabaseURL   string
	MongoDatabase string

	PublicBaseURL  string
	UploadBackend  string
	UploadDir      string
	UploadMaxSize  int64
	UploadMaxFiles int
	S3Bucket       string
	S3Region       string
	S3Prefix       string

	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.MongoDatabase = strings.TrimSpace(getEnv("DB_NAME", defaultMongoDatabase))
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(getEnv("PUBLIC_BASE_URL", defaultPublicBaseURL)), "/")
	cfg.UploadBackend = strings.ToLower(strings.TrimSpace(getEnv("UPLOAD_BACKEND", defaultUploadBackend)))
	cfg.UploadDir = strings.TrimSpace(getEnv("UPLOAD_DIR", defaultUploadDir))
	cfg.S3Bucket = strings.TrimSpace(os.Getenv("S3_BUCKET"))
	cfg.S3Region = strings.TrimSpace(os.Getenv("S3_REGION"))
	if cfg.S3Region == "" {
		cfg.S3Region = strings.TrimSpace(os.Getenv("AWS_REGION"))
	}
	cfg.S3Prefix = strings.Trim(strings.TrimSpace(getEnv("S3_PREFIX", defaultS3Prefix)), "/")
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", defaultLogFormat)))
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	var err error
	cfg.RequestTimeout, err = parseDurationEnv("REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}
	cfg.UploadMaxSize, err = parseInt64Env("UPLOAD_MAX_FILE_SIZE", defaultUploadMaxSize)
	if err != nil {
		return nil, err
	}
	maxFiles, err := parseInt64Env("UPLOAD_MAX_FILES", defaultUploadMaxFiles)
	if err != nil {
		return nil, err
	}
	cfg.UploadMaxFiles = int(maxFiles)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	slog.Debug("config loaded",
		"env", cfg.AppEnv,
		"addr", cfg.HTTPAddr,
		"upload_backend", cfg.UploadBackend,
		"mongo", cfg.IsMongo(),
	)

	return cfg, nil
}

// IsMongo reports whether DatabaseURL points at a MongoDB deployment.
func (c *Config) IsMongo() bool {
	return strings.HasPrefix(c.DatabaseURL, "mongodb://") || strings.HasPrefix(c.DatabaseURL, "mongodb+srv://")
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.IsMongo() && cfg.MongoDatabase == "" {
		return fmt.Errorf("DB_NAME must not be empty when DATABASE_URL is a MongoDB URI")
	}
	if cfg.PublicBaseURL == "" {
		return fmt.Errorf("PUBLIC_BASE_URL must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.UploadMaxSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE must be > 0")
	}
	if cfg.UploadMaxFiles <= 0 {
		return fmt.Errorf("UPLOAD_MAX_FILES must be > 0")
	}
	if cfg.UploadMaxSize > (math.MaxInt64-uploadBodyOverhead)/int64(cfg.UploadMaxFiles) {
		return fmt.Errorf("UPLOAD_MAX_FILE_SIZE * UPLOAD_MAX_FILES is too large")
	}

	switch cfg.UploadBackend {
	case UploadBackendDisk:
		if cfg.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR must not be empty")
		}
	case UploadBackendS3:
		if cfg.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when UPLOAD_BACKEND=s3")
		}
		if cfg.S3Region == "" {
			return fmt.Errorf("S3_REGION or AWS_REGION must be set when UPLOAD_BACKEND=s3")
		}
	default:
		return fmt.Errorf("UPLOAD_BACKEND must be one of: disk, s3")
	}

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be one of: text, json")
	}

	if isProdLike(cfg.AppEnv) && strings.HasPrefix(cfg.PublicBaseURL, "http://localhost") {
		return fmt.Errorf("in prod/release PUBLIC_BASE_URL must not point at localhost")
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseInt64Env(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseListEnv(name string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
