package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/nexusmerchants/orderforms-stripe/pkg/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Service  ServiceConfig  `yaml:"service"`
	Stripe   StripeConfig   `yaml:"stripe"`
	Billing  BillingConfig  `yaml:"billing"`
	Cache    CacheConfig    `yaml:"cache"`
	Events   EventsConfig   `yaml:"events"`
	Database DatabaseConfig `yaml:"database"`
	Users    UsersConfig    `yaml:"users"`
	Server   ServerConfig   `yaml:"server"`
	Log      logger.Config  `yaml:"log"`
	JWT      JWTConfig      `yaml:"jwt"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
	// InternalToken guards the host-application hooks under /api/v1/internal.
	InternalToken string `yaml:"internal_token"`
}

type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel"`
}

// LoadConfig reads the YAML file at CONFIG_PATH (default ./configs/portal.yaml).
// A .env file in the working directory is loaded first when present, and ${VAR}
// references in the YAML are expanded from the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/portal.yaml"
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "customer-portal"
	}
	if c.Stripe.AppName == "" {
		c.Stripe.AppName = "Customer Portal for Stripe"
	}
	c.Billing.applyDefaults()
	c.Cache.applyDefaults()
	c.Users.applyDefaults()
	c.Database.applyDefaults()
	if c.Events.Channel == "" {
		c.Events.Channel = "billing.events"
	}
	if c.Server.HTTP.Port == 0 {
		c.Server.HTTP.Port = 8080
	}
}

// Validate rejects values the service cannot run with. A missing Stripe secret key
// is accepted here: requests then fail with a configuration error instead.
func (c *Config) Validate() error {
	if err := c.Billing.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Events.Enabled && c.Cache.Driver != CacheDriverRedis {
		return fmt.Errorf("events require the redis cache driver, got %q", c.Cache.Driver)
	}
	return nil
}
