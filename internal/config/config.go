package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	Locale string `yaml:"locale"` // message catalog, e.g. zh-CN | en
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Key string `yaml:"key"` // shared secret for admin endpoints
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
	Migrate  bool   `yaml:"migrate"` // apply schema on startup
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type SMTPConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
}

type RedemptionConfig struct {
	CodeTTL      time.Duration `yaml:"code_ttl"`      // 0 = codes never expire
	LockTTL      time.Duration `yaml:"lock_ttl"`      // per-user redemption lock
	AttemptLimit int           `yaml:"attempt_limit"` // attempts per window
	AttemptWin   time.Duration `yaml:"attempt_window"`
}

type OrdersConfig struct {
	PendingTTL time.Duration `yaml:"pending_ttl"` // pending orders older than this expire
}

type SchedulerConfig struct {
	ExpiryInterval time.Duration `yaml:"expiry_interval"`
}

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Admin      AdminConfig      `yaml:"admin"`
	Auth       AuthConfig       `yaml:"auth"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Redemption RedemptionConfig `yaml:"redemption"`
	Orders     OrdersConfig     `yaml:"orders"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Locale == "" {
		cfg.Server.Locale = "zh-CN"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redemption.LockTTL <= 0 {
		cfg.Redemption.LockTTL = 10 * time.Second
	}
	if cfg.Redemption.AttemptLimit <= 0 {
		cfg.Redemption.AttemptLimit = 10
	}
	if cfg.Redemption.AttemptWin <= 0 {
		cfg.Redemption.AttemptWin = time.Minute
	}
	if cfg.Orders.PendingTTL <= 0 {
		cfg.Orders.PendingTTL = 72 * time.Hour
	}
	if cfg.Scheduler.ExpiryInterval <= 0 {
		cfg.Scheduler.ExpiryInterval = 10 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Admin.Key == "" {
		return nil, errors.New("admin.key is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
