package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	// Server
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// Persistence
	DatabaseURL string `env:"DATABASE_URL" envDefault:"-"`

	// Market data
	TwelveAPIKey   string `env:"TWELVE_API_KEY" envDefault:"-"`
	Interval       string `env:"INTERVAL" envDefault:"5min"`
	CandleCount    int    `env:"CANDLE_COUNT" envDefault:"40"`
	RSIPeriod      int    `env:"RSI_PERIOD" envDefault:"14"`
	MACDFastPeriod int    `env:"MACD_FAST_PERIOD" envDefault:"12"`
	MACDSlowPeriod int    `env:"MACD_SLOW_PERIOD" envDefault:"26"`
	MACDSignal     int    `env:"MACD_SIGNAL_PERIOD" envDefault:"9"`
	ShortMAPeriod  int    `env:"SHORT_MA_PERIOD" envDefault:"10"`
	LongMAPeriod   int    `env:"LONG_MA_PERIOD" envDefault:"50"`
	RequestTimeout int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds

	// Position sizing
	ContractSize float64 `env:"CONTRACT_SIZE" envDefault:"100000"`
	Leverage     float64 `env:"LEVERAGE" envDefault:"100"`
	MinVolume    float64 `env:"MIN_VOLUME" envDefault:"0.01"`
	VolumeStep   float64 `env:"VOLUME_STEP" envDefault:"0.01"`

	// Execution
	MaxParallelDispatch int     `env:"MAX_PARALLEL_DISPATCH" envDefault:"4"`
	DispatchTimeout     int     `env:"DISPATCH_TIMEOUT" envDefault:"20"` // seconds per account
	BinanceFailureRate  float64 `env:"BINANCE_FAILURE_RATE" envDefault:"0.05"`
	BybitFailureRate    float64 `env:"BYBIT_FAILURE_RATE" envDefault:"0.08"`
	CoinbaseFailureRate float64 `env:"COINBASE_FAILURE_RATE" envDefault:"0.10"`

	// Notifications
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" envDefault:"-"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.ListenAddr = getEnvWithDefault("LISTEN_ADDR", ":8080")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")
	cfg.Interval = getEnvWithDefault("INTERVAL", "5min")
	cfg.CandleCount = getEnvIntWithDefault("CANDLE_COUNT", 40)
	cfg.RSIPeriod = getEnvIntWithDefault("RSI_PERIOD", 14)
	cfg.MACDFastPeriod = getEnvIntWithDefault("MACD_FAST_PERIOD", 12)
	cfg.MACDSlowPeriod = getEnvIntWithDefault("MACD_SLOW_PERIOD", 26)
	cfg.MACDSignal = getEnvIntWithDefault("MACD_SIGNAL_PERIOD", 9)
	cfg.ShortMAPeriod = getEnvIntWithDefault("SHORT_MA_PERIOD", 10)
	cfg.LongMAPeriod = getEnvIntWithDefault("LONG_MA_PERIOD", 50)
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.ContractSize = getEnvFloatWithDefault("CONTRACT_SIZE", 100000)
	cfg.Leverage = getEnvFloatWithDefault("LEVERAGE", 100)
	cfg.MinVolume = getEnvFloatWithDefault("MIN_VOLUME", 0.01)
	cfg.VolumeStep = getEnvFloatWithDefault("VOLUME_STEP", 0.01)
	cfg.MaxParallelDispatch = getEnvIntWithDefault("MAX_PARALLEL_DISPATCH", 4)
	cfg.DispatchTimeout = getEnvIntWithDefault("DISPATCH_TIMEOUT", 20)
	cfg.BinanceFailureRate = getEnvFloatWithDefault("BINANCE_FAILURE_RATE", 0.05)
	cfg.BybitFailureRate = getEnvFloatWithDefault("BYBIT_FAILURE_RATE", 0.08)
	cfg.CoinbaseFailureRate = getEnvFloatWithDefault("COINBASE_FAILURE_RATE", 0.10)
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
