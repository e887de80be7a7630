package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	CoinGecko     CoinGeckoConfig
	CoinMarketCap CoinMarketCapConfig
	Analyzer      AnalyzerConfig
	Resolver      ResolverConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	RateLimit     RateLimitConfig
	Logging       LoggingConfig
	ServiceKey    string
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// CoinGeckoConfig holds the primary market data source configuration
type CoinGeckoConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	PerPage  int
	TopPages int
}

// CoinMarketCapConfig holds the fallback market data source configuration
type CoinMarketCapConfig struct {
	BaseURL          string
	APIKey           string
	Timeout          time.Duration
	MonthlyCallLimit int
}

// AnalyzerConfig holds configuration for the AI analysis microservice
type AnalyzerConfig struct {
	URL     string
	Timeout time.Duration
}

// ResolverConfig holds cache and throttle policy for the market data resolver
type ResolverConfig struct {
	ListingsTTL         time.Duration
	HistoryTTL          time.Duration
	DetailTTL           time.Duration
	CategoryListTTL     time.Duration
	CategoryDetailTTL   time.Duration
	ListingsMinInterval time.Duration
	HistoryMinInterval  time.Duration
	QuotaWindow         time.Duration
}

// RedisConfig holds the optional response cache configuration
type RedisConfig struct {
	Enabled       bool
	Addr          string
	Password      string
	DB            int
	CacheDuration time.Duration
	Prefix        string
}

// KafkaConfig holds the optional event producer configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	ClientID string
	Topics   map[string]string
}

// RateLimitConfig holds inbound request throttling configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads the configuration from file and environment variables
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.sslmode", "require")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// CoinGecko defaults
	v.SetDefault("coingecko.baseURL", "https://api.coingecko.com/api/v3")
	v.SetDefault("coingecko.timeout", "15s")
	v.SetDefault("coingecko.perPage", 250)
	v.SetDefault("coingecko.topPages", 4)

	// CoinMarketCap defaults
	v.SetDefault("coinmarketcap.baseURL", "https://pro-api.coinmarketcap.com")
	v.SetDefault("coinmarketcap.timeout", "10s")
	v.SetDefault("coinmarketcap.monthlyCallLimit", 300)

	// Analyzer defaults
	v.SetDefault("analyzer.timeout", "30s")

	// Resolver cache and throttle defaults
	v.SetDefault("resolver.listingsTTL", "45s")
	v.SetDefault("resolver.historyTTL", "5m")
	v.SetDefault("resolver.detailTTL", "5m")
	v.SetDefault("resolver.categoryListTTL", "30m")
	v.SetDefault("resolver.categoryDetailTTL", "5m")
	v.SetDefault("resolver.listingsMinInterval", "1500ms")
	v.SetDefault("resolver.historyMinInterval", "60s")
	v.SetDefault("resolver.quotaWindow", "720h")

	// Redis response cache defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.cacheDuration", "60s")
	v.SetDefault("redis.prefix", "dashboard")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.clientID", "crypto-dashboard")
	v.SetDefault("kafka.topics.knowledgeEvents", "knowledge-events")
	v.SetDefault("kafka.topics.analysisEvents", "analysis-events")

	// Rate limit defaults
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.burst", 30)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
