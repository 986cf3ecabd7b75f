package config

import (
	"fmt"
	"time"
)

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
	ClientURL   string `yaml:"client_url"`
}

// StripeConfig holds the credentials for the billing gateway.
type StripeConfig struct {
	SecretKey  string `yaml:"secret_key"`
	AppName    string `yaml:"app_name"`
	AppVersion string `yaml:"app_version"`
	AppURL     string `yaml:"app_url"`
}

type BillingConfig struct {
	// CacheTTL bounds how long customer and list snapshots are served without a provider call.
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	CachePrefix string        `yaml:"cache_prefix"`

	DedupeInflight *bool `yaml:"dedupe_inflight"`

	// VerifyCachedLink drops a cached customer whose id no longer matches the persisted link.
	VerifyCachedLink bool `yaml:"verify_cached_link"`

	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
	Timeout          time.Duration `yaml:"timeout"`
}

const DefaultCacheTTL = 900 * time.Second

func (c *BillingConfig) applyDefaults() {
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.CachePrefix == "" {
		c.CachePrefix = "portal:"
	}
	if c.DedupeInflight == nil {
		enabled := true
		c.DedupeInflight = &enabled
	}
	if c.CircuitBreaker.FailureThreshold == 0 {
		c.CircuitBreaker.FailureThreshold = 5
	}
	if c.CircuitBreaker.Timeout == 0 {
		c.CircuitBreaker.Timeout = 30 * time.Second
	}
}

func (c *BillingConfig) Validate() error {
	if c.CacheTTL < time.Second {
		return fmt.Errorf("billing.cache_ttl must be at least 1s, got %s", c.CacheTTL)
	}
	return nil
}

// DedupeEnabled reports whether concurrent resolutions for one user are collapsed.
func (c *BillingConfig) DedupeEnabled() bool {
	return c.DedupeInflight == nil || *c.DedupeInflight
}

// UsersConfig points at the host application's user table.
type UsersConfig struct {
	Table       string `yaml:"table"`
	IDColumn    string `yaml:"id_column"`
	EmailColumn string `yaml:"email_column"`
}

func (c *UsersConfig) applyDefaults() {
	if c.Table == "" {
		c.Table = "users"
	}
	if c.IDColumn == "" {
		c.IDColumn = "id"
	}
	if c.EmailColumn == "" {
		c.EmailColumn = "email"
	}
}
