// Package config はプロセス全体の設定を環境変数（と任意の .env）から読み込みます。
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config はサーバーとシードコマンドが共有する設定です。
// プロバイダー・DB・Redisの設定はそれぞれのパッケージの LoadConfig で読み込みます。
type Config struct {
	BindAddr string
	LogLevel string
	LogFile  string

	PriceProvider         string
	FetchConcurrency      int
	UpstreamRatePerMinute int

	ChartHeightRatio    float64
	CatalogCacheEnabled bool
	CORSAllowOrigins    []string
	SymbolSeedFile      string
}

// Load reads configuration from environment variables and optional .env file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	return &Config{
		BindAddr:              getEnvOrDefault("BIND_ADDR", ":8080"),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:               os.Getenv("LOG_FILE"),
		PriceProvider:         strings.ToLower(getEnvOrDefault("PRICE_PROVIDER", "twelvedata")),
		FetchConcurrency:      getEnvIntOrDefault("FETCH_CONCURRENCY", 4),
		UpstreamRatePerMinute: getEnvIntOrDefault("UPSTREAM_RATE_PER_MINUTE", 8),
		ChartHeightRatio:      getEnvFloatOrDefault("CHART_HEIGHT_RATIO", 0.6),
		CatalogCacheEnabled:   getEnvBoolOrDefault("CATALOG_CACHE_ENABLED", true),
		CORSAllowOrigins:      splitCSV(os.Getenv("CORS_ALLOW_ORIGINS")),
		SymbolSeedFile:        getEnvOrDefault("SYMBOL_SEED_FILE", "./symbols.yaml"),
	}
}

// AllowOrigin はWebSocketのOriginチェックに使う判定関数です。
// CORS_ALLOW_ORIGINS が未設定、または "*" を含む場合はすべて許可します。
func (c *Config) AllowOrigin(origin string) bool {
	if len(c.CORSAllowOrigins) == 0 || origin == "" {
		return true
	}
	for _, o := range c.CORSAllowOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func splitCSV(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
