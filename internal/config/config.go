// Package config loads and saves the prodlog settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	defaultFile   = ".prodlog.yaml"
	defaultTarget = 9680000
	envPrefix     = "PRODLOG"
)

// StoreConfig addresses the ledger table.
type StoreConfig struct {
	// Driver is one of xlsx, json, sqlite, postgres, redis.
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Spreadsheet identifies the backing store: a file path, DSN or URL.
	Spreadsheet string `yaml:"spreadsheet" mapstructure:"spreadsheet"`
	// Sheet is the tab inside it.
	Sheet string `yaml:"sheet" mapstructure:"sheet"`
}

type Config struct {
	Store            StoreConfig `yaml:"store" mapstructure:"store"`
	AnnualTarget     int         `yaml:"annual_target" mapstructure:"annual_target"`
	DateLayout       string      `yaml:"date_layout" mapstructure:"date_layout"`
	DefaultAmMinutes int         `yaml:"default_am_minutes" mapstructure:"default_am_minutes"`
	DefaultPmMinutes int         `yaml:"default_pm_minutes" mapstructure:"default_pm_minutes"`
	RefreshSeconds   int         `yaml:"refresh_seconds" mapstructure:"refresh_seconds"`
	LogFile          string      `yaml:"log_file" mapstructure:"log_file"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:      "xlsx",
			Spreadsheet: "prodlog.xlsx",
			Sheet:       "Data",
		},
		AnnualTarget:     defaultTarget,
		DateLayout:       "01/02/2006",
		DefaultAmMinutes: 45,
		DefaultPmMinutes: 45,
		RefreshSeconds:   30,
	}
}

// DefaultPath is $HOME/.prodlog.yaml, or the working directory when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultFile
	}
	return filepath.Join(home, defaultFile)
}

// Load reads path over the defaults, then applies PRODLOG_* environment
// overrides (PRODLOG_STORE_DRIVER, PRODLOG_ANNUAL_TARGET, ...). A missing file
// is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.spreadsheet", d.Store.Spreadsheet)
	v.SetDefault("store.sheet", d.Store.Sheet)
	v.SetDefault("annual_target", d.AnnualTarget)
	v.SetDefault("date_layout", d.DateLayout)
	v.SetDefault("default_am_minutes", d.DefaultAmMinutes)
	v.SetDefault("default_pm_minutes", d.DefaultPmMinutes)
	v.SetDefault("refresh_seconds", d.RefreshSeconds)
	v.SetDefault("log_file", d.LogFile)
}

// applyDefaults fills values a hand-edited file may have blanked.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Store.Driver == "" {
		c.Store.Driver = d.Store.Driver
	}
	if c.Store.Spreadsheet == "" {
		c.Store.Spreadsheet = d.Store.Spreadsheet
	}
	if c.Store.Sheet == "" {
		c.Store.Sheet = d.Store.Sheet
	}
	if c.AnnualTarget <= 0 {
		c.AnnualTarget = d.AnnualTarget
	}
	if c.DateLayout == "" {
		c.DateLayout = d.DateLayout
	}
	if c.RefreshSeconds <= 0 {
		c.RefreshSeconds = d.RefreshSeconds
	}
}

// Save writes the config as YAML, replacing path atomically.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, path)
}

// Keys lists what Set accepts.
var Keys = []string{"target", "driver", "spreadsheet", "sheet", "date-layout", "am", "pm", "refresh", "log-file"}

// Set updates one setting from its key=value form.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "target":
		n, err := positiveInt(value)
		if err != nil {
			return fmt.Errorf("invalid target: %w", err)
		}
		c.AnnualTarget = n
	case "driver":
		c.Store.Driver = strings.ToLower(value)
	case "spreadsheet":
		c.Store.Spreadsheet = value
	case "sheet":
		c.Store.Sheet = value
	case "date-layout":
		c.DateLayout = value
	case "am", "pm":
		n, err := ParseMinutes(value)
		if err != nil {
			return fmt.Errorf("invalid %s minutes %q: %w", key, value, err)
		}
		if key == "am" {
			c.DefaultAmMinutes = n
		} else {
			c.DefaultPmMinutes = n
		}
	case "refresh":
		n, err := positiveInt(value)
		if err != nil {
			return fmt.Errorf("invalid refresh: %w", err)
		}
		c.RefreshSeconds = n
	case "log-file":
		c.LogFile = value
	default:
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// ParseMinutes accepts a plain minute count ("45") or H:MM ("1:30").
func ParseMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 2 {
		return 0, fmt.Errorf("use minutes or H:MM")
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, err
		}
		if n < 0 {
			return 0, fmt.Errorf("%d is negative", n)
		}
		total = total*60 + n
	}
	return total, nil
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}
