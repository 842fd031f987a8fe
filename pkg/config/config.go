package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devJWTSecret = "supersecretjwtkey"

// Config holds application configuration aggregated from .env, the
// environment and an optional config file.
type Config struct {
	Port     string
	Env      string
	LogLevel string `mapstructure:"log_level"`

	Store struct {
		Driver string // mongo or memory
	}
	Mongo struct {
		URI          string
		Database     string
		Transactions bool
	}
	Postgres struct {
		URL string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret string
		TTL    time.Duration
	}
	Firebase struct {
		CredentialsPath string `mapstructure:"credentials_path"`
	}
	Storage struct {
		Driver        string // local or s3
		LocalDir      string `mapstructure:"local_dir"`
		PublicBaseURL string `mapstructure:"public_base_url"`
		Bucket        string
		Region        string
		Endpoint      string
		Profile       string
	}
	Upload struct {
		MaxBytes int64 `mapstructure:"max_bytes"`
	}
	RateLimit struct {
		AuthRPS   float64 `mapstructure:"auth_rps"`
		AuthBurst int     `mapstructure:"auth_burst"`
	}
	CORS struct {
		Origins []string
	}
	Telemetry struct {
		Endpoint    string
		ServiceName string `mapstructure:"service_name"`
		Insecure    bool
	}
}

var defaults = map[string]interface{}{
	"port":                      "5000",
	"env":                       "development",
	"log_level":                 "info",
	"store.driver":              "mongo",
	"mongo.uri":                 "mongodb://localhost:27017",
	"mongo.database":            "social-media",
	"mongo.transactions":        false,
	"postgres.url":              "",
	"redis.addr":                "",
	"redis.password":            "",
	"redis.db":                  0,
	"jwt.secret":                devJWTSecret,
	"jwt.ttl":                   "168h",
	"firebase.credentials_path": "",
	"storage.driver":            "local",
	"storage.local_dir":         "uploads",
	"storage.public_base_url":   "",
	"storage.bucket":            "",
	"storage.region":            "us-east-1",
	"storage.endpoint":          "",
	"storage.profile":           "",
	"upload.max_bytes":          5 << 20,
	"ratelimit.auth_rps":        5.0,
	"ratelimit.auth_burst":      10,
	"cors.origins":              []string{"*"},
	"telemetry.endpoint":        "",
	"telemetry.service_name":    "pulse-social",
	"telemetry.insecure":        true,
}

// Load reads configuration. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate rejects settings the server cannot run with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return errors.New("storage bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt secret is required")
	}
	if c.IsProduction() && c.JWT.Secret == devJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt ttl must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload max bytes must be positive")
	}
	return nil
}
