package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
	StoreMemory    = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
	StoreDriver                      string `mapstructure:"STORE_DRIVER"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	MongoURI      string `mapstructure:"MONGO_URI"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPass        string `mapstructure:"DB_PASS"`
	DBHost        string `mapstructure:"DB_HOST"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`

	StripeSecretKey        string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeDomain           string `mapstructure:"STRIPE_DOMAIN"`
	PremiumPriceMinorUnits int64  `mapstructure:"PREMIUM_PRICE_MINOR_UNITS"`
	PremiumCurrency        string `mapstructure:"PREMIUM_CURRENCY"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`
	EventsQueue string `mapstructure:"EVENTS_QUEUE"`

	// Receipt mail sent by events-tail; disabled when SMTP_USERNAME is empty.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var keys = []string{
	"PORT", "GIN_MODE", "CLIENT_URL", "STORE_DRIVER",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"MONGO_URI", "DB_USER", "DB_PASS", "DB_HOST", "MONGO_DATABASE",
	"STRIPE_SECRET_KEY", "STRIPE_DOMAIN", "PREMIUM_PRICE_MINOR_UNITS", "PREMIUM_CURRENCY",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
	"RABBITMQ_URL", "EVENTS_QUEUE", "SHUTDOWN_TIMEOUT",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_FROM",
}

// LoadConfig loads configuration from the environment using Viper and validates it
// for the API server.
// Outside release mode a local .env file is read first if present.
// CONFIG_FILE may point at a YAML/JSON/TOML file whose keys are overridden by the environment.
func LoadConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEventsConfig loads the same settings but only requires RABBITMQ_URL.
func LoadEventsConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.RabbitMQURL == "" {
		return nil, errors.New("RABBITMQ_URL is required")
	}
	return cfg, nil
}

func load() (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "3030")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("STORE_DRIVER", StoreFirestore)
	v.SetDefault("MONGO_DATABASE", "LifeLedgerdb")
	v.SetDefault("PREMIUM_PRICE_MINOR_UNITS", 150000)
	v.SetDefault("PREMIUM_CURRENCY", "bdt")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "60s")
	v.SetDefault("EVENTS_QUEUE", "lifeledger.events")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("SMTP_HOST", "smtp.mailtrap.io")
	v.SetDefault("SMTP_PORT", "2525")
	v.SetDefault("MAIL_FROM", "no-reply@lifeledger.app")

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	return &cfg, nil
}

// Validate checks that the settings required by the selected drivers are present.
func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required for the firestore store")
		}
	case StoreMongo:
		if c.MongoConnectionString() == "" {
			return errors.New("MONGO_URI or DB_USER/DB_PASS/DB_HOST is required for the mongo store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StripeSecretKey == "" {
		return errors.New("STRIPE_SECRET_KEY is required")
	}
	if c.StripeDomain == "" {
		return errors.New("STRIPE_DOMAIN is required")
	}
	if c.PremiumPriceMinorUnits <= 0 {
		return errors.New("PREMIUM_PRICE_MINOR_UNITS must be positive")
	}
	if c.PremiumCurrency == "" {
		return errors.New("PREMIUM_CURRENCY is required")
	}
	return nil
}

// MongoConnectionString returns MONGO_URI, or builds an Atlas SRV URI from the DB_* parts.
func (c *Config) MongoConnectionString() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	if c.DBUser == "" || c.DBPass == "" || c.DBHost == "" {
		return ""
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority", url.QueryEscape(c.DBUser), url.QueryEscape(c.DBPass), c.DBHost)
}

// FirebaseAuthEnabled reports whether ID tokens can be verified.
func (c *Config) FirebaseAuthEnabled() bool {
	return c.FirebaseProjectID != "" || c.GoogleApplicationCredentials != "" || c.FirebaseServiceAccountJSONBase64 != ""
}
