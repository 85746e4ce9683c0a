// Package config loads taskbot settings from the environment, an optional
// .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"taskbot/internal/locale"
)

const (
	// AppName is the application directory name.
	AppName = "taskbot"

	// ConfigFile is the YAML file looked up in the config directory.
	ConfigFile = "config.yaml"

	// EnvFile is read from the working directory when present.
	EnvFile = ".env"
)

// Telegram modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config holds all runtime settings.
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Sheets   SheetsConfig   `mapstructure:"sheets"`
	Locale   string         `mapstructure:"locale"`
	Timezone string         `mapstructure:"timezone"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`

	// File is the YAML file that was read, empty if none.
	File string `mapstructure:"-"`
}

// TelegramConfig configures the bot transport.
type TelegramConfig struct {
	Token         string  `mapstructure:"token"`
	Mode          string  `mapstructure:"mode"`
	PollTimeout   int     `mapstructure:"poll_timeout"`
	AllowedChats  []int64 `mapstructure:"-"`
	WebhookURL    string  `mapstructure:"webhook_url"`
	WebhookSecret string  `mapstructure:"webhook_secret"`
}

// SheetsConfig configures the spreadsheet backend.
type SheetsConfig struct {
	CredentialsPath string        `mapstructure:"credentials_path"`
	SpreadsheetID   string        `mapstructure:"spreadsheet_id"`
	SheetName       string        `mapstructure:"sheet_name"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// ServerConfig configures the HTTP listener used in webhook mode.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// envBindings maps config keys to environment variables.
var envBindings = map[string]string{
	"telegram.token":          "TELEGRAM_BOT_TOKEN",
	"telegram.mode":           "TELEGRAM_MODE",
	"telegram.poll_timeout":   "TELEGRAM_POLL_TIMEOUT",
	"telegram.allowed_chats":  "TELEGRAM_ALLOWED_CHATS",
	"telegram.webhook_url":    "TELEGRAM_WEBHOOK_URL",
	"telegram.webhook_secret": "TELEGRAM_WEBHOOK_SECRET",
	"sheets.credentials_path": "GOOGLE_CREDENTIALS_PATH",
	"sheets.spreadsheet_id":   "SPREADSHEET_ID",
	"sheets.sheet_name":       "SHEET_NAME",
	"sheets.timeout":          "SHEETS_TIMEOUT",
	"locale":                  "TASKBOT_LOCALE",
	"timezone":                "TASKBOT_TIMEZONE",
	"server.addr":             "TASKBOT_ADDR",
	"log.level":               "TASKBOT_LOG_LEVEL",
	"log.format":              "TASKBOT_LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.mode", ModePolling)
	v.SetDefault("telegram.poll_timeout", 30)
	v.SetDefault("sheets.timeout", "10s")
	v.SetDefault("locale", locale.Default)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration. Values from the environment win over the
// .env file, which wins over the YAML file. If path is empty, the default
// config file is used when it exists.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	file := path
	if file == "" {
		candidate := DefaultConfigPath()
		if _, err := os.Stat(candidate); err == nil {
			file = candidate
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{File: file}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	chats, err := parseChatIDs(v.GetStringSlice("telegram.allowed_chats"))
	if err != nil {
		return nil, err
	}
	cfg.Telegram.AllowedChats = chats

	cfg.Telegram.Mode = strings.ToLower(strings.TrimSpace(cfg.Telegram.Mode))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	return cfg, nil
}

// loadEnvFile loads a dotenv file if it exists. Variables already set in
// the environment are not overridden.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// parseChatIDs accepts entries like "1,2", "1 2" or a YAML list.
func parseChatIDs(items []string) ([]int64, error) {
	var ids []int64
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid chat id %q in telegram.allowed_chats", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Validate reports every missing or invalid setting at once. The bot token
// is only required when requireBot is set.
func (c *Config) Validate(requireBot bool) error {
	var errs []error
	missing := func(key string) {
		errs = append(errs, fmt.Errorf("%s is required (env %s)", key, envBindings[key]))
	}

	if requireBot {
		if c.Telegram.Token == "" {
			missing("telegram.token")
		}
		switch c.Telegram.Mode {
		case ModePolling:
		case ModeWebhook:
			if c.Telegram.WebhookURL == "" {
				missing("telegram.webhook_url")
			}
			if c.Telegram.WebhookSecret == "" {
				missing("telegram.webhook_secret")
			}
		default:
			errs = append(errs, fmt.Errorf("telegram.mode must be %q or %q, got %q", ModePolling, ModeWebhook, c.Telegram.Mode))
		}
		if c.Telegram.PollTimeout < 0 {
			errs = append(errs, errors.New("telegram.poll_timeout must not be negative"))
		}
	}

	if c.Sheets.CredentialsPath == "" {
		missing("sheets.credentials_path")
	}
	if c.Sheets.SpreadsheetID == "" {
		missing("sheets.spreadsheet_id")
	}
	if c.Sheets.Timeout <= 0 {
		errs = append(errs, errors.New("sheets.timeout must be positive"))
	}

	if _, err := locale.Load(c.Locale); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Location returns the time zone used for "today". Empty means local time.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// AllowsChat reports whether a chat may issue commands. An empty allowlist
// admits every chat.
func (c *Config) AllowsChat(chatID int64) bool {
	if len(c.Telegram.AllowedChats) == 0 {
		return true
	}
	for _, id := range c.Telegram.AllowedChats {
		if id == chatID {
			return true
		}
	}
	return false
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// DefaultConfigPath returns the YAML file looked up when --config is unset.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), ConfigFile)
}
