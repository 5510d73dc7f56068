package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hitoshi/storefront/internal/middleware"
)

// トークンの永続化方式。
const (
	TokenStoreFile     = "file"
	TokenStorePostgres = "postgres"
	TokenStoreMemory   = "memory"
)

// DotEnvFile は起動時に読み込む環境変数ファイル。
const DotEnvFile = ".env"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Backend
	APIURL         string
	RequestTimeout time.Duration
	StrictNetwork  bool

	// Rate Limit
	RateLimitRPS   float64
	RateLimitBurst int

	// Token Store
	TokenStore  string
	TokenFile   string
	DatabaseURL string

	// Toast
	ToastDuration time.Duration

	// Metrics
	MetricsAddr string

	// Logging
	LogLevel string
}

// Load は.envと環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := LoadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.APIURL = os.Getenv("STOREFRONT_API_URL")
	if cfg.APIURL == "" {
		missing = append(missing, "STOREFRONT_API_URL")
	}

	cfg.TokenStore = strings.ToLower(getEnvString("TOKEN_STORE", TokenStoreFile))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.TokenStore == TokenStorePostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	switch cfg.TokenStore {
	case TokenStoreFile, TokenStorePostgres, TokenStoreMemory:
	default:
		return nil, fmt.Errorf("unsupported TOKEN_STORE: %q", cfg.TokenStore)
	}

	// Optional fields with defaults
	cfg.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", 10*time.Second)
	cfg.StrictNetwork = getEnvBool("STRICT_NETWORK", false)
	limits := middleware.DefaultRateLimiterConfig()
	cfg.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", float64(limits.Rate))
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", limits.Burst)
	cfg.TokenFile = getEnvString("TOKEN_FILE", "")
	cfg.ToastDuration = getEnvDuration("TOAST_DURATION", 5*time.Second)
	cfg.MetricsAddr = getEnvString("METRICS_ADDR", "")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

// LoadDotEnv はpathの環境変数ファイルを読み込む。
// ファイルが存在しない場合は何もしない。既に設定済みの環境変数は上書きしない。
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
