package config

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel     = "info"
	DefaultHistoryLimit = 50
	DefaultMailboxSize  = 256
)

type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	LogLevel string         `yaml:"log_level"`

	// SessionDir holds the session file. Defaults to Dir().
	SessionDir string `yaml:"session_dir"`
	// HistoryLimit is the page size for chat history requests.
	HistoryLimit int `yaml:"history_limit"`
	// MailboxSize bounds the dispatcher's pending event queue.
	MailboxSize int `yaml:"mailbox_size"`
}

type TelegramConfig struct {
	APIID   int    `yaml:"api_id"`
	APIHash string `yaml:"api_hash"`
}

func Dir() string {
	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(cfgDir, "tgshell")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied and no
// Telegram credentials.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.SessionDir == "" {
		c.SessionDir = Dir()
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.MailboxSize <= 0 {
		c.MailboxSize = DefaultMailboxSize
	}
}

func (c *Config) validate() error {
	if c.Telegram.APIID == 0 || c.Telegram.APIHash == "" {
		return errors.New("telegram.api_id and telegram.api_hash are required")
	}
	return nil
}
