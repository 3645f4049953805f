package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port string
	// Storage
	DataDir        string
	RatesFile      string
	HistoryFile    string
	PortfoliosFile string
	UsersFile      string
	// Rates
	BaseCurrency   string
	RatesTTL       time.Duration
	RatesRetention time.Duration
	// Sources; order is merge priority, later entries win on conflict.
	Sources            []string
	CoinGeckoURL       string
	ExchangeRateAPIURL string
	ExchangeRateAPIKey string
	RequestTimeout     time.Duration
	// Scheduler
	UpdateInterval time.Duration
	// Redis (refresh idempotency)
	IdempotencyBackend string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	IdempotencyTTL     time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func durSec(key string, defSec int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(defSec)), defSec)) * time.Second
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:            getEnv("ENV", "local"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Port:           getEnv("PORT", "8080"),
		DataDir:        getEnv("DATA_DIR", "data"),
		RatesFile:      getEnv("RATES_FILE", "rates.json"),
		HistoryFile:    getEnv("HISTORY_FILE", "exchange_rates.json"),
		PortfoliosFile: getEnv("PORTFOLIOS_FILE", "portfolios.json"),
		UsersFile:      getEnv("USERS_FILE", "users.json"),

		BaseCurrency:   strings.ToUpper(getEnv("BASE_CURRENCY", "USD")),
		RatesTTL:       durSec("RATES_TTL_SECONDS", 300),
		RatesRetention: durSec("RATES_RETENTION_SECONDS", 86400),

		Sources:            splitList(getEnv("SOURCES", "exchangerate,coingecko")),
		CoinGeckoURL:       getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3/simple/price"),
		ExchangeRateAPIURL: getEnv("EXCHANGERATE_API_URL", "https://v6.exchangerate-api.com/v6"),
		ExchangeRateAPIKey: getEnv("EXCHANGERATE_API_KEY", ""),
		RequestTimeout:     durSec("REQUEST_TIMEOUT", 10),

		UpdateInterval: durSec("UPDATE_INTERVAL_SECONDS", 300),

		IdempotencyBackend: getEnv("IDEMPOTENCY_BACKEND", "none"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
		IdempotencyTTL:     durSec("IDEMPOTENCY_TTL_SECONDS", 60),
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
