// Package config loads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/bookshelf/internal/domain"
)

// minSecretLength is the length below which the signing secret is accepted
// but reported as weak.
const minSecretLength = 32

// Config holds every setting the server needs at startup.
type Config struct {
	Port         string
	DatabasePath string
	LogLevel     slog.Level
	MaxBodyBytes int64

	JWTSecret   string
	BcryptCost  int
	HashWorkers int

	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	MediaPublicURL    string
}

// Load reads .env (when present) and the environment, then validates the
// result. Variables already set in the environment win over .env entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: read .env: %v", domain.ErrConfiguration, err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "3000"),
		DatabasePath: getEnv("DATABASE_PATH", "bookshelf.db"),
		JWTSecret:    os.Getenv("JWT_SECRET"),

		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		MediaPublicURL:    strings.TrimSuffix(os.Getenv("MEDIA_PUBLIC_URL"), "/"),
	}

	var err error
	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if cfg.HashWorkers, err = getEnvAsInt("HASH_WORKERS", runtime.GOMAXPROCS(0)); err != nil {
		return nil, err
	}
	maxBody, err := getEnvAsInt("MAX_BODY_BYTES", 50<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("%w: LOG_LEVEL: %v", domain.ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", domain.ErrConfiguration)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("%w: BCRYPT_COST must be between 4 and 14", domain.ErrConfiguration)
	}
	if c.HashWorkers < 1 {
		return fmt.Errorf("%w: HASH_WORKERS must be positive", domain.ErrConfiguration)
	}
	if c.MaxBodyBytes < 1 {
		return fmt.Errorf("%w: MAX_BODY_BYTES must be positive", domain.ErrConfiguration)
	}
	if c.S3Bucket != "" {
		if c.MediaPublicURL == "" {
			return fmt.Errorf("%w: MEDIA_PUBLIC_URL is required with S3_BUCKET", domain.ErrConfiguration)
		}
		if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
			return fmt.Errorf("%w: S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together", domain.ErrConfiguration)
		}
	}
	return nil
}

// WeakSecret reports whether the signing secret is shorter than recommended.
func (c *Config) WeakSecret() bool {
	return len(c.JWTSecret) < minSecretLength
}

// UseS3 reports whether media goes to an S3 bucket instead of SQLite.
func (c *Config) UseS3() bool {
	return c.S3Bucket != ""
}

// LogValue implements slog.LogValuer. Secrets are never included.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", c.Port),
		slog.String("database_path", c.DatabasePath),
		slog.String("log_level", c.LogLevel.String()),
		slog.Int64("max_body_bytes", c.MaxBodyBytes),
		slog.Int("bcrypt_cost", c.BcryptCost),
		slog.Int("hash_workers", c.HashWorkers),
		slog.Bool("jwt_secret_set", c.JWTSecret != ""),
		slog.String("s3_bucket", c.S3Bucket),
		slog.String("s3_region", c.S3Region),
		slog.String("s3_endpoint", c.S3Endpoint),
		slog.Bool("s3_credentials_set", c.S3AccessKeyID != ""),
		slog.String("media_public_url", c.MediaPublicURL),
	)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrConfiguration, key)
	}
	return n, nil
}
