package environments

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Transport  TransportConfig  `yaml:"transport"`
	Generation GenerationConfig `yaml:"generation"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Alert      AlertConfig      `yaml:"alert"`
	Auth       AuthConfig       `yaml:"auth"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // mysql | sqlite
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"db_name"`
	Path     string `yaml:"path"` // sqlite file
}

type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     string        `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	LockKey  string        `yaml:"lock_key"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type TransportConfig struct {
	Kind    string        `yaml:"kind"` // bridge | telegram
	URL     string        `yaml:"url"`
	AuthKey string        `yaml:"auth_key"`
	Timeout time.Duration `yaml:"timeout"`

	TelegramToken   string  `yaml:"telegram_token"`
	TelegramChatIDs []int64 `yaml:"telegram_chat_ids"`
}

type GenerationConfig struct {
	APIKeys []string `yaml:"api_keys"`
	Model   string   `yaml:"model"`
}

type SchedulerConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	Timezone     string        `yaml:"timezone"`
	StaleAfter   time.Duration `yaml:"stale_after"`
	OwnerID      string        `yaml:"owner_id"`
	StatusID     string        `yaml:"status_id"`
	AutoStart    bool          `yaml:"auto_start"`
}

type AlertConfig struct {
	WebhookURL     string `yaml:"webhook_url"`
	IterationCount int    `yaml:"iteration_count"`
}

type AuthConfig struct {
	ControlAPIKey string `yaml:"control_api_key"`
	BridgeAPIKey  string `yaml:"bridge_api_key"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and finally environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := GetEnv("CONFIG_FILE", ""); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			User:     "digest",
			Password: "digest123",
			DBName:   "chat_digest",
			Path:     "digest.db",
		},
		Redis: RedisConfig{
			Host:    "localhost",
			Port:    "6379",
			LockKey: "digest-scheduler:tick-lock",
			LockTTL: 2 * time.Minute,
		},
		Transport: TransportConfig{
			Kind:    "bridge",
			URL:     "http://localhost:3001",
			Timeout: 30 * time.Second,
		},
		Generation: GenerationConfig{
			Model: "gemini-1.5-flash",
		},
		Scheduler: SchedulerConfig{
			TickInterval: 5 * time.Second,
			Timezone:     "Local",
			StaleAfter:   10 * time.Minute,
			StatusID:     "whatsapp_scraper",
			AutoStart:    true,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 30,
		},
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = GetEnv("SERVER_PORT", cfg.Server.Port)

	cfg.Database.Driver = GetEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Host = GetEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = GetEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = GetEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = GetEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = GetEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.Path = GetEnv("DB_PATH", cfg.Database.Path)

	cfg.Redis.Enabled = GetEnvAsBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Host = GetEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = GetEnv("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.Password = GetEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.LockKey = GetEnv("REDIS_LOCK_KEY", cfg.Redis.LockKey)
	cfg.Redis.LockTTL = GetEnvAsDuration("REDIS_LOCK_TTL", cfg.Redis.LockTTL)

	cfg.Transport.Kind = GetEnv("TRANSPORT_KIND", cfg.Transport.Kind)
	cfg.Transport.URL = GetEnv("TRANSPORT_URL", cfg.Transport.URL)
	cfg.Transport.AuthKey = GetEnv("TRANSPORT_AUTH_KEY", cfg.Transport.AuthKey)
	if v, ok := os.LookupEnv("TRANSPORT_TIMEOUT_SECONDS"); ok {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.Transport.Timeout = time.Duration(secs) * time.Second
		}
	}
	cfg.Transport.TelegramToken = GetEnv("TELEGRAM_BOT_TOKEN", cfg.Transport.TelegramToken)
	if ids := GetEnvAsInt64List("TELEGRAM_CHAT_IDS"); len(ids) > 0 {
		cfg.Transport.TelegramChatIDs = ids
	}

	// GEMINI_API_KEYS wins over the single-key variable, matching the order
	// keys are tried in.
	if keys := GetEnvAsList("GEMINI_API_KEYS"); len(keys) > 0 {
		cfg.Generation.APIKeys = keys
	} else if key := GetEnv("GEMINI_API_KEY", ""); key != "" {
		cfg.Generation.APIKeys = []string{key}
	}
	cfg.Generation.Model = GetEnv("GEMINI_MODEL", cfg.Generation.Model)

	if v, ok := os.LookupEnv("SCHEDULER_TICK_SECONDS"); ok {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Scheduler.TickInterval = time.Duration(secs) * time.Second
		}
	}
	cfg.Scheduler.Timezone = GetEnv("SCHEDULER_TIMEZONE", cfg.Scheduler.Timezone)
	cfg.Scheduler.StaleAfter = GetEnvAsDuration("COMMAND_STALE_AFTER", cfg.Scheduler.StaleAfter)
	cfg.Scheduler.OwnerID = GetEnv("SCRAPER_OWNER_ID", cfg.Scheduler.OwnerID)
	cfg.Scheduler.StatusID = GetEnv("SYSTEM_STATUS_ID", cfg.Scheduler.StatusID)
	cfg.Scheduler.AutoStart = GetEnvAsBool("AUTO_START_SCHEDULER", cfg.Scheduler.AutoStart)

	cfg.Alert.WebhookURL = GetEnv("ALERT_WEBHOOK_URL", cfg.Alert.WebhookURL)
	cfg.Alert.IterationCount = GetEnvAsInt("ALERT_ITERATION_COUNT", cfg.Alert.IterationCount)

	cfg.Auth.ControlAPIKey = GetEnv("CONTROL_API_KEY", cfg.Auth.ControlAPIKey)
	cfg.Auth.BridgeAPIKey = GetEnv("BRIDGE_API_KEY", cfg.Auth.BridgeAPIKey)

	cfg.Log.Level = GetEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.File = GetEnv("LOG_FILE", cfg.Log.File)
}

// Location resolves the scheduler timezone. Unknown names fall back to the
// process local zone.
func (c SchedulerConfig) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func GetEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// GetEnvAsList splits a comma separated variable, dropping blank entries.
func GetEnvAsList(key string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func GetEnvAsInt64List(key string) []int64 {
	var out []int64
	for _, part := range GetEnvAsList(key) {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}
