package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	SyncFull     = "full"
	SyncAdditive = "additive"
)

type Config struct {
	AppEnv    string
	LogLevel  string
	LogFormat string

	Port         int
	DatabaseURL  string
	DatabaseName string

	CORSOrigins []string
	MaxBodySize int64

	RedisURL        string
	RateLimitRPS    float64
	RateLimitBurst  int
	RateLimitHourly int

	BooksAPIURL    string
	BooksAPIKey    string
	LookupTimeout  time.Duration
	LookupCacheTTL time.Duration

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	BookCoursesSync string

	AuditAt string
	AuditTZ string
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() (*Config, error) {
	c := &Config{}
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	loadEnvString(&c.AppEnv, "APP_ENV", "development")
	loadEnvString(&c.LogLevel, "LOG_LEVEL", "info")
	loadEnvString(&c.LogFormat, "LOG_FORMAT", "")

	collect(loadEnvInt(&c.Port, "PORT", 4000))
	loadEnvString(&c.DatabaseURL, "DATABASE_URL", "")
	if c.DatabaseURL == "" {
		loadEnvString(&c.DatabaseURL, "MONGODB_URI", "bolt://data/textbooks.db")
	}
	loadEnvString(&c.DatabaseName, "DATABASE_NAME", "")

	loadEnvStringSlice(&c.CORSOrigins, "CORS_ORIGINS", []string{"*"})
	collect(loadEnvInt64(&c.MaxBodySize, "MAX_BODY_SIZE", 1<<20))

	loadEnvString(&c.RedisURL, "REDIS_URL", "")
	collect(loadEnvFloat(&c.RateLimitRPS, "RATE_LIMIT_RPS", 10))
	collect(loadEnvInt(&c.RateLimitBurst, "RATE_LIMIT_BURST", 20))
	collect(loadEnvInt(&c.RateLimitHourly, "RATE_LIMIT_HOURLY", 3000))

	loadEnvString(&c.BooksAPIURL, "BOOKS_API_URL", "https://www.googleapis.com/books/v1/volumes")
	loadEnvString(&c.BooksAPIKey, "BOOKS_API_KEY", "")
	collect(loadEnvDuration(&c.LookupTimeout, "LOOKUP_TIMEOUT", 5*time.Second))
	collect(loadEnvDuration(&c.LookupCacheTTL, "LOOKUP_CACHE_TTL", 24*time.Hour))

	loadEnvString(&c.S3Endpoint, "S3_ENDPOINT", "")
	loadEnvString(&c.S3Region, "S3_REGION", "auto")
	loadEnvString(&c.S3Bucket, "S3_BUCKET", "")
	loadEnvString(&c.S3AccessKey, "AWS_ACCESS_KEY_ID", "")
	loadEnvString(&c.S3SecretKey, "AWS_SECRET_ACCESS_KEY", "")

	loadEnvString(&c.BookCoursesSync, "BOOK_COURSES_SYNC", SyncAdditive)

	loadEnvString(&c.AuditAt, "AUDIT_AT", "03:00")
	loadEnvString(&c.AuditTZ, "AUDIT_TZ", "UTC")

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	} else if !knownScheme(c.DatabaseURL) {
		errs = append(errs, errors.New("DATABASE_URL must start with mongodb://, mongodb+srv://, postgres://, postgresql://, bolt:// or file://"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if c.MaxBodySize <= 0 {
		errs = append(errs, errors.New("MAX_BODY_SIZE must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.BookCoursesSync != SyncFull && c.BookCoursesSync != SyncAdditive {
		errs = append(errs, fmt.Errorf("BOOK_COURSES_SYNC must be %q or %q, got %q", SyncFull, SyncAdditive, c.BookCoursesSync))
	}
	if _, _, err := ParseClock(c.AuditAt); err != nil {
		errs = append(errs, fmt.Errorf("AUDIT_AT: %w", err))
	}
	if _, err := time.LoadLocation(c.AuditTZ); err != nil {
		errs = append(errs, fmt.Errorf("AUDIT_TZ: %w", err))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for Port.
func (c *Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

// StorageEnabled reports whether listing images can be uploaded.
func (c *Config) StorageEnabled() bool { return c.S3Bucket != "" }

// Production reports whether APP_ENV names a production deployment.
func (c *Config) Production() bool {
	return strings.EqualFold(c.AppEnv, "production") || strings.EqualFold(c.AppEnv, "prod")
}

// Warnings returns non-fatal problems worth logging at startup.
func (c *Config) Warnings() []string {
	var warns []string
	if !c.Production() {
		return warns
	}
	if strings.HasPrefix(c.DatabaseURL, "bolt://") || strings.HasPrefix(c.DatabaseURL, "file://") {
		warns = append(warns, "DATABASE_URL points at an embedded bolt file; every instance keeps its own data")
	}
	if c.RedisURL == "" {
		warns = append(warns, "REDIS_URL not set; rate limits are per instance and book lookups are not cached")
	} else if strings.HasPrefix(c.RedisURL, "redis://") {
		warns = append(warns, "REDIS_URL uses redis:// (no TLS). Prefer rediss://")
	}
	for _, o := range c.CORSOrigins {
		if o == "*" {
			warns = append(warns, "CORS_ORIGINS allows any origin")
			break
		}
	}
	if !c.StorageEnabled() {
		warns = append(warns, "S3_BUCKET not set; listing image uploads are disabled")
	}
	return warns
}

func knownScheme(dsn string) bool {
	for _, p := range []string{"mongodb://", "mongodb+srv://", "postgres://", "postgresql://", "bolt://", "file://"} {
		if strings.HasPrefix(dsn, p) {
			return true
		}
	}
	return false
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad minute in %q", s)
	}
	return hour, minute, nil
}

// Helper functions for type conversion and validation

func loadEnvString(target *string, key, defaultValue string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	value := os.Getenv(key)
	if value == "" {
		*target = defaultValue
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	*target = n
	return nil
}

func loadEnvInt64(target *int64, key string, defaultValue int64) error {
	value := os.Getenv(key)
	if value == "" {
		*target = defaultValue
		return nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	*target = n
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	value := os.Getenv(key)
	if value == "" {
		*target = defaultValue
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("invalid number value for %s: %s", key, value)
	}
	*target = f
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		*target = defaultValue
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid duration value for %s: %s", key, value)
	}
	*target = d
	return nil
}

func loadEnvStringSlice(target *[]string, key string, defaultValue []string) {
	value := os.Getenv(key)
	if value == "" {
		*target = defaultValue
		return
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	*target = out
}
