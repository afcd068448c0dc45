//go:build !unittest

package twitter

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

// InitBrowser launches Chrome with stealth mode and starts capturing its
// traffic into the session buffer.
func (s *Scraper) InitBrowser() error {
	return s.launchBrowser()
}

func (s *Scraper) launchBrowser() error {
	l := launcher.New().Headless(s.headless)
	if s.browserBin != "" {
		l = l.Bin(s.browserBin)
	}

	switch s.captureMode {
	case CaptureProxy:
		rec, err := NewRecorder(s.traffic, s.proxy, s.logger)
		if err != nil {
			return fmt.Errorf("create recorder: %w", err)
		}
		addr, err := rec.Start()
		if err != nil {
			return fmt.Errorf("start recorder: %w", err)
		}
		s.recorder = rec
		// The recorder re-signs TLS with its own CA.
		l = l.Proxy(addr).Set("ignore-certificate-errors")
	default:
		if s.proxy != "" {
			l = l.Proxy(s.proxy)
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("create stealth page: %w", err)
	}

	s.browser = browser
	s.page = page

	if s.captureMode != CaptureProxy {
		if err := s.startCDPCapture(); err != nil {
			return fmt.Errorf("start capture: %w", err)
		}
	}

	if len(s.cookies) > 0 {
		if err := s.applyCookies(); err != nil {
			return err
		}
	}

	s.logger.Info("browser ready",
		zap.String("capture", string(s.captureMode)),
		zap.Bool("headless", s.headless),
		zap.Int("cookies", len(s.cookies)),
	)
	return nil
}

func (s *Scraper) navigatePage(ctx context.Context, rawURL string) error {
	if s.page == nil {
		return ErrBrowserNotReady
	}
	return s.page.Context(ctx).Navigate(rawURL)
}

// scrollPage scrolls to the bottom of the document, which makes the
// timeline fetch its next page.
func (s *Scraper) scrollPage(ctx context.Context) error {
	if s.page == nil {
		return ErrBrowserNotReady
	}
	page := s.page.Context(ctx).Timeout(5 * time.Second)
	if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	return nil
}

func (s *Scraper) closeBrowser() error {
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			return fmt.Errorf("close page: %w", err)
		}
		s.page = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			return fmt.Errorf("close browser: %w", err)
		}
		s.browser = nil
	}
	return nil
}
