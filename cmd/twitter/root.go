package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	twitter "github.com/RavensCloud/twitter-gofun"
)

// app carries what every subcommand needs once the root pre-run is done.
type app struct {
	v      *viper.Viper
	cfg    Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New(), logger: zap.NewNop()}
	var cfgFile string

	root := &cobra.Command{
		Use:          "twitter",
		Short:        "Read tweets from profile pages through a real browser",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.v, cfgFile)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Logger, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	flags.String("browser", "", "path to the Chrome/Chromium executable")
	flags.Bool("headless", true, "hide the browser window")
	flags.String("proxy", "", "upstream proxy URL (http/https/socks5)")
	flags.String("capture", "cdp", "capture mode: cdp or proxy")
	flags.String("cookies", "", "path to a session cookies JSON file")
	flags.String("log-level", "info", "log level")

	for key, flag := range map[string]string{
		"browser.bin":      "browser",
		"browser.headless": "headless",
		"browser.proxy":    "proxy",
		"capture.mode":     "capture",
		"session.cookies":  "cookies",
		"logger.level":     "log-level",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newTweetsCommand(a),
		newUserIDCommand(a),
		newLoginCommand(a),
	)
	return root
}

// newScraper builds a Scraper from the loaded configuration. Cookies are
// loaded when the configured file exists.
func (a *app) newScraper() (*twitter.Scraper, error) {
	mode, err := twitter.ParseCaptureMode(a.cfg.Capture.Mode)
	if err != nil {
		return nil, err
	}

	s := twitter.New().
		WithBaseURL(a.cfg.Scraper.BaseURL).
		WithBrowserBin(a.cfg.Browser.Bin).
		WithHeadless(a.cfg.Browser.Headless).
		WithCaptureMode(mode).
		WithWaitTimeout(a.cfg.Scraper.WaitTimeout).
		WithLookupTimeout(a.cfg.Scraper.LookupTimeout).
		WithScrollDelay(a.cfg.Scraper.ScrollDelay).
		WithLogger(a.logger)

	if a.cfg.Capture.Scope != "" {
		if err := s.SetScope(a.cfg.Capture.Scope); err != nil {
			return nil, err
		}
	}
	if err := s.SetProxy(a.cfg.Browser.Proxy); err != nil {
		return nil, fmt.Errorf("set proxy: %w", err)
	}

	if path := a.cfg.Session.Cookies; path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := s.LoadCookies(path); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}
