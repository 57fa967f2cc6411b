package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// WatchItem is one pair scanned by the watcher.
type WatchItem struct {
	Symbol       string `yaml:"symbol"`
	Interval     string `yaml:"interval"`
	Strategy     string `yaml:"strategy"`
	Fast         int    `yaml:"fast"`
	Slow         int    `yaml:"slow"`
	RSIPeriod    int    `yaml:"rsi"`
	LookbackDays int    `yaml:"lookback_days"`
}

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level string `yaml:"level" envconfig:"LEVEL"`
	} `yaml:"log" envconfig:"LOG"`
	Server struct {
		Addr         string        `yaml:"addr" envconfig:"ADDR"`
		ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
		WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	} `yaml:"server" envconfig:"SERVER"`
	Auth struct {
		Password   string        `yaml:"password" envconfig:"PASSWORD"`
		TOTPSecret string        `yaml:"totp_secret" envconfig:"TOTP_SECRET"`
		SessionTTL time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL"`
	} `yaml:"auth" envconfig:"AUTH"`
	DataSource struct {
		Provider string `yaml:"provider" envconfig:"PROVIDER"` // yahoo | rest | mock
		BaseURL  string `yaml:"base_url" envconfig:"BASE_URL"`
		APIKey   string `yaml:"api_key" envconfig:"API_KEY"`
	} `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Cache struct {
		Backend    string        `yaml:"backend" envconfig:"BACKEND"` // memory | sqlite | redis | none
		TTL        time.Duration `yaml:"ttl" envconfig:"TTL"`
		SQLitePath string        `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
		RedisAddr  string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
		RedisPass  string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
		RedisDB    int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	} `yaml:"cache" envconfig:"CACHE"`
	Telegram struct {
		BotToken string `yaml:"bot_token" envconfig:"BOT_TOKEN"`
		ChatID   string `yaml:"chat_id" envconfig:"CHAT_ID"`
	} `yaml:"telegram" envconfig:"TELEGRAM"`
	Watch struct {
		Cron  string      `yaml:"cron" envconfig:"CRON"`
		Items []WatchItem `yaml:"items" ignored:"true"`
	} `yaml:"watch" envconfig:"WATCH"`
	Proxy string `yaml:"proxy" envconfig:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides (e.g. AUTH_PASSWORD, CACHE_BACKEND, TELEGRAM_BOT_TOKEN).
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables take precedence over it.
	_ = godotenv.Load()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = 12 * time.Hour
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 15 * time.Minute
	}
	if c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = "data/signalboard.db"
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = "localhost:6379"
	}
	if c.Watch.Cron == "" {
		c.Watch.Cron = "0 5 * * * *"
	}
	for i := range c.Watch.Items {
		it := &c.Watch.Items[i]
		if it.Interval == "" {
			it.Interval = "1d"
		}
		if it.Strategy == "" {
			it.Strategy = "SMA cross"
		}
		if it.Fast == 0 {
			it.Fast = 20
		}
		if it.Slow == 0 {
			it.Slow = 50
		}
		if it.RSIPeriod == 0 {
			it.RSIPeriod = 14
		}
		if it.LookbackDays == 0 {
			it.LookbackDays = 365
		}
	}
}

// TelegramEnabled reports whether alerts and commands can be used.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that configured values are usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not one of yahoo, rest, mock", c.DataSource.Provider)
	}
	switch c.Cache.Backend {
	case "memory", "sqlite", "redis", "none":
	default:
		return fmt.Errorf("cache.backend %q is not one of memory, sqlite, redis, none", c.Cache.Backend)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	for i, it := range c.Watch.Items {
		if strings.TrimSpace(it.Symbol) == "" {
			return fmt.Errorf("watch.items[%d].symbol is required", i)
		}
		if it.LookbackDays < 0 {
			return fmt.Errorf("watch.items[%d].lookback_days must be positive", i)
		}
	}
	return nil
}
