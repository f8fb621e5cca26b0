package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "EpisodeRelay/1.0 (+https://github.com/Belphemur/EpisodeRelay)"

// DefaultChunkSize is the number of transcript lines translated per request.
const DefaultChunkSize = 100

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	LogLevel              string `mapstructure:"log_level"`

	Catalog struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"catalog"`
	Stream struct {
		BaseURL string `mapstructure:"base_url"`
		Timeout string `mapstructure:"timeout"` // upper bound for a single stream generation call
	} `mapstructure:"stream"`
	Player struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"player"`
	Subtitles struct {
		BaseURL           string  `mapstructure:"base_url"`
		ChunkSize         int     `mapstructure:"chunk_size"`
		MaxConcurrency    int     `mapstructure:"max_concurrency"`     // 0 means unbounded
		RequestsPerSecond float64 `mapstructure:"requests_per_second"` // 0 means unlimited
		RequestTimeout    string  `mapstructure:"request_timeout"`     // bound for transcript, translation and save calls
		DefaultLanguage   string  `mapstructure:"default_language"`    // used when a subtitle is requested without a language
	} `mapstructure:"subtitles"`
	LLM struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Model      string `mapstructure:"model"`
		Timeout    string `mapstructure:"timeout"`
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"llm"`
	Cache struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
		Size     int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Digest struct {
		Interval string `mapstructure:"interval"`
	} `mapstructure:"digest"`
	Server struct {
		Address  string `mapstructure:"address"`
		HTTPPort int    `mapstructure:"http_port"`
		GRPCPort int    `mapstructure:"grpc_port"`
		// MessageHistory is how many chat messages stay retrievable over HTTP
		MessageHistory int `mapstructure:"message_history"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Info().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
	logger.Info().Msg("Configuration loaded successfully")
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("llm.api_key", "APP_LLM_API_KEY", "LLM_API_KEY")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Subtitles.ChunkSize <= 0 {
		config.Subtitles.ChunkSize = DefaultChunkSize
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Keys without a meaningful default are still registered so that
	// AutomaticEnv overrides reach Unmarshal.
	for _, key := range []string{
		"proxy_connection_string", "user_agent", "log_level",
		"catalog.base_url", "stream.base_url", "player.base_url", "subtitles.base_url",
		"llm.api_key", "llm.model",
		"cache.redis.address", "cache.redis.password",
		"sentry.dsn", "sentry.environment",
	} {
		v.SetDefault(key, "")
	}

	v.SetDefault("client_timeout", "30s")
	v.SetDefault("stream.timeout", "60s")
	v.SetDefault("subtitles.chunk_size", DefaultChunkSize)
	v.SetDefault("subtitles.max_concurrency", 0)
	v.SetDefault("subtitles.requests_per_second", 0)
	v.SetDefault("subtitles.request_timeout", "2m")
	v.SetDefault("subtitles.default_language", "english")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("llm.timeout", "15s")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 1000)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("digest.interval", "30m")
	v.SetDefault("server.address", "localhost")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.grpc_port", 8081)
	v.SetDefault("server.message_history", 1000)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}

// ParseDuration parses a Go duration string, logging and returning fallback when
// the value is empty or invalid.
func ParseDuration(name, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		logger.Warn().Err(err).Str("setting", name).Str("value", value).Dur("default", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return parsed
}
