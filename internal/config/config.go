package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "CONTENTGATE_CONFIG"
	databaseDriverEnv = "DATABASE_DRIVER"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	httpAddrEnv       = "HTTP_ADDR"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Checks        ChecksConfig       `yaml:"checks"`
	Notifications NotificationConfig `yaml:"notifications"`
	HTTP          HTTPConfig         `yaml:"http"`
	Stats         StatsConfig        `yaml:"stats"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig selects the storage driver. Driver "memory" keeps
// everything in process.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// SchedulerConfig sizes the verification worker pool and the stale sweep.
type SchedulerConfig struct {
	Workers       int           `yaml:"workers"`
	QueueSize     int           `yaml:"queueSize"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
	StaleAfter    time.Duration `yaml:"staleAfter"`
}

// ChecksConfig tunes the verification checks.
type ChecksConfig struct {
	Characters    CharactersConfig `yaml:"characters"`
	ToneThreshold int              `yaml:"toneThreshold"`
	Links         LinksConfig      `yaml:"links"`
}

// CharactersConfig holds per-platform length limits.
type CharactersConfig struct {
	ShortPostLimit   int `yaml:"shortPostLimit"`
	LongFormLimit    int `yaml:"longFormLimit"`
	LongFormAdvisory int `yaml:"longFormAdvisory"`
}

// LinksConfig controls outbound link probes.
type LinksConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	Concurrency int           `yaml:"concurrency"`
	UserAgent   string        `yaml:"userAgent"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both the token and the chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// HTTPConfig configures the REST listener.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// StatsConfig shapes verification statistics.
type StatsConfig struct {
	Weeks int `yaml:"weeks"`
}

// Load reads .env and YAML configuration (if present) and applies
// environment overrides.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot load .env: %v", err)
	}
	return load(os.Getenv)
}

func load(getenv func(string) string) Config {
	cfg := defaultConfig()

	if path := getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides(getenv)
	return cfg
}

func (c *Config) applyEnvOverrides(getenv func(string) string) {
	if v := getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := getenv(httpAddrEnv); v != "" {
		c.HTTP.Addr = v
	}
	if v := getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Scheduler.Workers > 0 {
		base.Scheduler.Workers = override.Scheduler.Workers
	}
	if override.Scheduler.QueueSize > 0 {
		base.Scheduler.QueueSize = override.Scheduler.QueueSize
	}
	if override.Scheduler.SweepInterval != 0 {
		base.Scheduler.SweepInterval = override.Scheduler.SweepInterval
	}
	if override.Scheduler.StaleAfter > 0 {
		base.Scheduler.StaleAfter = override.Scheduler.StaleAfter
	}

	chars := override.Checks.Characters
	if chars.ShortPostLimit > 0 {
		base.Checks.Characters.ShortPostLimit = chars.ShortPostLimit
	}
	if chars.LongFormLimit > 0 {
		base.Checks.Characters.LongFormLimit = chars.LongFormLimit
	}
	if chars.LongFormAdvisory > 0 {
		base.Checks.Characters.LongFormAdvisory = chars.LongFormAdvisory
	}
	if override.Checks.ToneThreshold > 0 {
		base.Checks.ToneThreshold = override.Checks.ToneThreshold
	}
	if override.Checks.Links.Timeout > 0 {
		base.Checks.Links.Timeout = override.Checks.Links.Timeout
	}
	if override.Checks.Links.Concurrency > 0 {
		base.Checks.Links.Concurrency = override.Checks.Links.Concurrency
	}
	if override.Checks.Links.UserAgent != "" {
		base.Checks.Links.UserAgent = override.Checks.Links.UserAgent
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.HTTP.Addr != "" {
		base.HTTP.Addr = override.HTTP.Addr
	}
	if override.Stats.Weeks > 0 {
		base.Stats.Weeks = override.Stats.Weeks
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Driver: "sqlite", DSN: "data/contentgate.db"},
		Scheduler: SchedulerConfig{
			Workers:       4,
			QueueSize:     256,
			SweepInterval: time.Minute,
			StaleAfter:    5 * time.Minute,
		},
		Checks: ChecksConfig{
			Characters: CharactersConfig{
				ShortPostLimit:   280,
				LongFormLimit:    3000,
				LongFormAdvisory: 1300,
			},
			ToneThreshold: 70,
			Links: LinksConfig{
				Timeout:     5 * time.Second,
				Concurrency: 4,
				UserAgent:   "ContentGate-LinkCheck/1.0",
			},
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		HTTP:  HTTPConfig{Addr: ":8080"},
		Stats: StatsConfig{Weeks: 8},
	}
}
