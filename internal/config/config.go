package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server              ServerConfig   `yaml:"server"`
	Catalog             CatalogConfig  `yaml:"catalog"`
	Database            DatabaseConfig `yaml:"database"`
	Redis               RedisConfig    `yaml:"redis"`
	Kafka               KafkaConfig    `yaml:"kafka"`
	NotificationService ServiceConfig  `yaml:"notification_service"`
	Session             SessionConfig  `yaml:"session"`
	Features            FeatureFlags   `yaml:"features"`
	Log                 LogConfig      `yaml:"log"`
	Currency            string         `yaml:"currency"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	Mode         string        `yaml:"mode"`
}

// CatalogConfig points at the two static resources loaded at startup. Each
// source is a local path or an http(s) URL.
type CatalogConfig struct {
	ProductsSource  string        `yaml:"products_source"`
	DistrictsSource string        `yaml:"districts_source"`
	LoadTimeout     time.Duration `yaml:"load_timeout"`
}

type DatabaseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Name         string        `yaml:"name"`
	SSLMode      string        `yaml:"sslmode"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxLifetime  time.Duration `yaml:"max_lifetime"`
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type KafkaConfig struct {
	Brokers     []string `yaml:"brokers"`
	QuotesTopic string   `yaml:"quotes_topic"`
}

type ServiceConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	CookieName  string        `yaml:"cookie_name"`
	MaxAge      time.Duration `yaml:"max_age"`
	Secure      bool          `yaml:"secure"`
	// IdleTimeout is how long an untouched cart stays in memory. Evicted
	// carts are reloaded from the cart store on the next request.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type FeatureFlags struct {
	EnableCartPersistence bool `yaml:"cart_persistence"`
	EnableQuotes          bool `yaml:"quotes"`
	EnableQuoteEvents     bool `yaml:"quote_events"`
	EnableQuoteEmails     bool `yaml:"quote_emails"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when neither a config file nor
// environment variables override anything.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			Mode:         "release",
		},
		Catalog: CatalogConfig{
			ProductsSource:  "data/products.json",
			DistrictsSource: "data/districts.json",
			LoadTimeout:     10 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         5432,
			User:         "bpc",
			Password:     "bpc",
			Name:         "bpc_storefront",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			MaxLifetime:  5 * time.Minute,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
			TTL:  30 * 24 * time.Hour,
		},
		Kafka: KafkaConfig{
			Brokers:     []string{"localhost:9092"},
			QuotesTopic: "storefront.quotes",
		},
		NotificationService: ServiceConfig{
			BaseURL: "http://localhost:8085",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			CookieName:  "bpc_session",
			MaxAge:      30 * 24 * time.Hour,
			IdleTimeout: 2 * time.Hour,
		},
		Features: FeatureFlags{
			EnableCartPersistence: true,
			EnableQuotes:          true,
			EnableQuoteEvents:     true,
			EnableQuoteEmails:     false,
		},
		Log:      LogConfig{Level: "info"},
		Currency: "BDT",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.Mode = getEnvString("GIN_MODE", cfg.Server.Mode)

	cfg.Catalog.ProductsSource = getEnvString("CATALOG_PRODUCTS_SOURCE", cfg.Catalog.ProductsSource)
	cfg.Catalog.DistrictsSource = getEnvString("CATALOG_DISTRICTS_SOURCE", cfg.Catalog.DistrictsSource)
	cfg.Catalog.LoadTimeout = getEnvDuration("CATALOG_LOAD_TIMEOUT", cfg.Catalog.LoadTimeout)

	cfg.Database.Host = getEnvString("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnvString("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnvString("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnvString("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnvString("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.MaxLifetime = getEnvDuration("DB_MAX_LIFETIME", cfg.Database.MaxLifetime)

	cfg.Redis.Host = getEnvString("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnvInt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = getEnvString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTL = getEnvDuration("REDIS_CART_TTL", cfg.Redis.TTL)

	cfg.Kafka.Brokers = getEnvList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.QuotesTopic = getEnvString("KAFKA_QUOTES_TOPIC", cfg.Kafka.QuotesTopic)

	cfg.NotificationService.BaseURL = getEnvString("NOTIFICATION_SERVICE_URL", cfg.NotificationService.BaseURL)
	cfg.NotificationService.APIKey = getEnvString("NOTIFICATION_SERVICE_API_KEY", cfg.NotificationService.APIKey)
	cfg.NotificationService.Timeout = getEnvDuration("NOTIFICATION_SERVICE_TIMEOUT", cfg.NotificationService.Timeout)

	cfg.Session.CookieName = getEnvString("SESSION_COOKIE_NAME", cfg.Session.CookieName)
	cfg.Session.MaxAge = getEnvDuration("SESSION_MAX_AGE", cfg.Session.MaxAge)
	cfg.Session.Secure = getEnvBool("SESSION_COOKIE_SECURE", cfg.Session.Secure)
	cfg.Session.IdleTimeout = getEnvDuration("SESSION_IDLE_TIMEOUT", cfg.Session.IdleTimeout)

	cfg.Features.EnableCartPersistence = getEnvBool("FEATURE_CART_PERSISTENCE", cfg.Features.EnableCartPersistence)
	cfg.Features.EnableQuotes = getEnvBool("FEATURE_QUOTES", cfg.Features.EnableQuotes)
	cfg.Features.EnableQuoteEvents = getEnvBool("FEATURE_QUOTE_EVENTS", cfg.Features.EnableQuoteEvents)
	cfg.Features.EnableQuoteEmails = getEnvBool("FEATURE_QUOTE_EMAILS", cfg.Features.EnableQuoteEmails)

	cfg.Log.Level = getEnvString("LOG_LEVEL", cfg.Log.Level)
	cfg.Currency = getEnvString("CURRENCY", cfg.Currency)
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
