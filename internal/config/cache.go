package config

import "fmt"

const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

type CacheConfig struct {
	Driver string      `yaml:"driver"`
	Redis  RedisConfig `yaml:"redis"`
	// MemorySize caps the number of entries held by the in-process store.
	MemorySize int `yaml:"memory_size"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (c *CacheConfig) applyDefaults() {
	if c.Driver == "" {
		c.Driver = CacheDriverRedis
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.MemorySize == 0 {
		c.MemorySize = 10000
	}
}

func (c *CacheConfig) Validate() error {
	switch c.Driver {
	case CacheDriverRedis, CacheDriverMemory:
		return nil
	default:
		return fmt.Errorf("unsupported cache driver: %s", c.Driver)
	}
}
