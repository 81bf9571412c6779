// Package config loads runtime settings from defaults, an optional YAML file and the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sliramanoel/venda/internal/pix"
	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Payment   PaymentConfig   `yaml:"payment" mapstructure:"payment"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port            string        `yaml:"port" mapstructure:"port"`
	Mode            string        `yaml:"mode" mapstructure:"mode"`
	Language        string        `yaml:"language" mapstructure:"language"`
	AllowedOrigins  []string      `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" mapstructure:"driver"`
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            string        `yaml:"port" mapstructure:"port"`
	User            string        `yaml:"user" mapstructure:"user"`
	Password        string        `yaml:"password" mapstructure:"password"`
	Name            string        `yaml:"name" mapstructure:"name"`
	SSLMode         string        `yaml:"sslmode" mapstructure:"sslmode"`
	Path            string        `yaml:"path" mapstructure:"path"`
	LogLevel        string        `yaml:"log_level" mapstructure:"log_level"`
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

// PaymentConfig configures PIX generation and the payment provider
type PaymentConfig struct {
	Gateway           string        `yaml:"gateway" mapstructure:"gateway"`
	APIURL            string        `yaml:"api_url" mapstructure:"api_url"`
	APIKey            string        `yaml:"api_key" mapstructure:"api_key"`
	TestMode          bool          `yaml:"test_mode" mapstructure:"test_mode"`
	ExpirationMinutes int           `yaml:"expiration_minutes" mapstructure:"expiration_minutes"`
	WebhookSecret     string        `yaml:"webhook_secret" mapstructure:"webhook_secret"`
	RequireSignature  bool          `yaml:"require_signature" mapstructure:"require_signature"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MerchantName      string        `yaml:"merchant_name" mapstructure:"merchant_name"`
	MerchantCity      string        `yaml:"merchant_city" mapstructure:"merchant_city"`
	PixKeyDomain      string        `yaml:"pix_key_domain" mapstructure:"pix_key_domain"`
	FoldMerchantName  bool          `yaml:"fold_merchant_name" mapstructure:"fold_merchant_name"`
	QRSize            int           `yaml:"qr_size" mapstructure:"qr_size"`
}

// AuthConfig configures admin tokens and the bootstrap admin account
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl" mapstructure:"token_ttl"`
	AdminEmail    string        `yaml:"admin_email" mapstructure:"admin_email"`
	AdminPassword string        `yaml:"admin_password" mapstructure:"admin_password"`
	AdminName     string        `yaml:"admin_name" mapstructure:"admin_name"`
}

// RateLimitConfig configures the per-client limiter on public write endpoints
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" mapstructure:"rps"`
	Burst int     `yaml:"burst" mapstructure:"burst"`
}

// Environment names kept from earlier deployments.
var envBindings = map[string][]string{
	"server.port":               {"PORT"},
	"server.mode":               {"GIN_MODE"},
	"database.driver":           {"DB_DRIVER"},
	"database.host":             {"DB_HOST"},
	"database.port":             {"DB_PORT"},
	"database.user":             {"DB_USER"},
	"database.password":         {"DB_PASSWORD"},
	"database.name":             {"DB_NAME"},
	"database.sslmode":          {"DB_SSLMODE"},
	"database.path":             {"DB_PATH"},
	"payment.api_key":           {"ORIONPAY_API_KEY"},
	"payment.api_url":           {"ORIONPAY_API_URL"},
	"payment.webhook_secret":    {"ORIONPAY_WEBHOOK_SECRET"},
	"payment.test_mode":         {"PIX_TEST_MODE"},
	"payment.require_signature": {"ORIONPAY_REQUIRE_SIGNATURE"},
	"auth.jwt_secret":           {"JWT_SECRET_KEY"},
	"auth.admin_email":          {"ADMIN_EMAIL"},
	"auth.admin_password":       {"ADMIN_PASSWORD"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.language", "pt-BR")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5437")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "venda.db")
	v.SetDefault("database.log_level", "silent")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("payment.gateway", "orionpay")
	v.SetDefault("payment.api_url", "https://payapi.orion.moe/api/v1")
	v.SetDefault("payment.api_key", "")
	v.SetDefault("payment.test_mode", false)
	v.SetDefault("payment.expiration_minutes", 30)
	v.SetDefault("payment.webhook_secret", "")
	v.SetDefault("payment.require_signature", false)
	v.SetDefault("payment.timeout", 30*time.Second)
	v.SetDefault("payment.merchant_name", "NeuroVita")
	v.SetDefault("payment.merchant_city", "SAO PAULO")
	v.SetDefault("payment.pix_key_domain", "neurovita.com.br")
	v.SetDefault("payment.fold_merchant_name", false)
	v.SetDefault("payment.qr_size", 256)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("auth.admin_name", "Administrador")

	v.SetDefault("rate_limit.rps", 5.0)
	v.SetDefault("rate_limit.burst", 20)
}

// Load reads the configuration. An empty path looks for an optional venda.yaml in the
// working directory; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("VENDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key, "VENDA_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("venda")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = randomSecret()
		log.Println("[CONFIG] JWT_SECRET_KEY not set, using an ephemeral secret; tokens will not survive restarts")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode %q", c.Server.Mode)
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Payment.Gateway != "orionpay" {
		return fmt.Errorf("unsupported payment gateway %q", c.Payment.Gateway)
	}
	if c.Payment.ExpirationMinutes <= 0 {
		return fmt.Errorf("payment.expiration_minutes must be positive, got %d", c.Payment.ExpirationMinutes)
	}
	if n := utf8.RuneCountInString(c.Payment.PixKeyDomain); n > pix.MaxKeyDomainLength {
		return fmt.Errorf("payment.pix_key_domain must have at most %d characters, got %d", pix.MaxKeyDomainLength, n)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate_limit.rps and rate_limit.burst must be positive")
	}
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to generate secret: %v", err))
	}
	return hex.EncodeToString(b)
}
