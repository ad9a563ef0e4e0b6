package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultLLMURL   = "https://openrouter.ai/api/v1/chat/completions"
	DefaultLLMModel = "anthropic/claude-3.5-sonnet"
)

// Config is the process configuration, read once at startup
type Config struct {
	Env           string
	TelegramToken string
	LLM           LLMConfig
	Database      DatabaseConfig
	Scheduler     SchedulerConfig
}

// LLMConfig configures the chat completion client
type LLMConfig struct {
	APIKey      string
	APIURL      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// DatabaseConfig selects the SQL driver and location
type DatabaseConfig struct {
	Driver  string // sqlite3 or postgres
	URL     string // DSN for postgres, file path for sqlite3 (optional)
	DataDir string
}

// SchedulerConfig configures the periodic jobs
type SchedulerConfig struct {
	Enabled        bool
	QuestResetHour int
	ReminderHour   int
	Timezone       string
}

// Load reads the given dotenv files (".env" when none are given) and then the environment.
// Missing dotenv files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables, applying defaults
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:           getEnv("APP_ENV", "development"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		LLM: LLMConfig{
			APIKey: firstEnv("LLM_API_KEY", "OPENROUTER_API_KEY", "OPENAI_API_KEY"),
			APIURL: getEnv("LLM_API_URL", DefaultLLMURL),
			Model:  getEnv("LLM_MODEL", DefaultLLMModel),
		},
		Database: DatabaseConfig{
			Driver:  getEnv("DATABASE_DRIVER", "sqlite3"),
			URL:     os.Getenv("DATABASE_URL"),
			DataDir: getEnv("DATA_DIR", "data"),
		},
		Scheduler: SchedulerConfig{
			Enabled:  os.Getenv("ENABLE_SCHEDULER") != "false",
			Timezone: getEnv("TZ_NAME", "UTC"),
		},
	}

	var err error
	if cfg.LLM.MaxTokens, err = getInt("LLM_MAX_TOKENS", 300); err != nil {
		return nil, err
	}
	if cfg.LLM.Temperature, err = getFloat("LLM_TEMPERATURE", 0.8); err != nil {
		return nil, err
	}
	if cfg.LLM.Timeout, err = getDuration("LLM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.Scheduler.QuestResetHour, err = getInt("QUEST_RESET_HOUR", 0); err != nil {
		return nil, err
	}
	if cfg.Scheduler.ReminderHour, err = getInt("REMINDER_HOUR", 18); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values a running bot cannot do without
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}
	switch c.Database.Driver {
	case "sqlite3":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	for name, h := range map[string]int{
		"QUEST_RESET_HOUR": c.Scheduler.QuestResetHour,
		"REMINDER_HOUR":    c.Scheduler.ReminderHour,
	} {
		if h < 0 || h > 23 {
			return fmt.Errorf("%s must be between 0 and 23, got %d", name, h)
		}
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("TZ_NAME: %w", err)
	}
	return nil
}

// LLMEnabled reports whether an API key was configured
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func getInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
