package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the CLI configuration, read from defaults, an optional YAML
// file and TWITTER_* environment variables, in increasing priority.
type Config struct {
	Browser BrowserConfig `mapstructure:"browser"`
	Capture CaptureConfig `mapstructure:"capture"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	Session SessionConfig `mapstructure:"session"`
	Logger  LoggerConfig  `mapstructure:"logger"`
}

type BrowserConfig struct {
	// Bin is the browser executable; empty lets the launcher pick one.
	Bin      string `mapstructure:"bin"`
	Headless bool   `mapstructure:"headless"`
	Proxy    string `mapstructure:"proxy"`
}

type CaptureConfig struct {
	Mode  string `mapstructure:"mode"`
	Scope string `mapstructure:"scope"`
}

type ScraperConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	WaitTimeout   time.Duration `mapstructure:"wait_timeout"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
	ScrollDelay   time.Duration `mapstructure:"scroll_delay"`
}

type SessionConfig struct {
	Cookies string `mapstructure:"cookies"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("browser.bin", "")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.proxy", "")

	v.SetDefault("capture.mode", "cdp")
	v.SetDefault("capture.scope", `.*(twitter|x)[.]com.*`)

	v.SetDefault("scraper.base_url", "https://x.com")
	v.SetDefault("scraper.wait_timeout", 10*time.Second)
	v.SetDefault("scraper.lookup_timeout", 20*time.Second)
	v.SetDefault("scraper.scroll_delay", 1*time.Second)

	v.SetDefault("session.cookies", "")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 7)
	v.SetDefault("logger.compress", false)
}

// loadConfig reads cfgFile (or ./config.yaml when empty) into v and decodes
// the result. A missing default config file is not an error.
func loadConfig(v *viper.Viper, cfgFile string) (Config, error) {
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("TWITTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
