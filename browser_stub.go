//go:build unittest

package twitter

import (
	"context"
	"fmt"
)

func (s *Scraper) InitBrowser() error {
	return fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (s *Scraper) launchBrowser() error {
	return fmt.Errorf("browser: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (s *Scraper) navigatePage(ctx context.Context, rawURL string) error {
	return ErrBrowserNotReady
}

func (s *Scraper) scrollPage(ctx context.Context) error {
	return ErrBrowserNotReady
}

func (s *Scraper) closeBrowser() error {
	s.page = nil
	s.browser = nil
	return nil
}
