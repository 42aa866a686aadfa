package config

import (
	"fmt"
	"time"
)

type CacheConfig struct {
	RedisURL    string        `mapstructure:"redis_url"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"`
}

func (config CacheConfig) validate() error {
	if config.RedisURL != "" && config.RedisPrefix == "" {
		return fmt.Errorf("missing variable: redis_prefix")
	}
	if config.RedisTTL < 0 {
		return fmt.Errorf("redis_ttl must not be negative")
	}
	return nil
}

func (config CacheConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"cache.redis_url":    "REDIS_URL",
		"cache.redis_prefix": "REDIS_PREFIX",
		"cache.redis_ttl":    "REDIS_TTL",
	})
}
