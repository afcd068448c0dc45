//go:build unittest

package twitter

import (
	"context"
	"fmt"
	"time"
)

func (s *Scraper) WaitLogin(ctx context.Context, timeout time.Duration) error {
	return fmt.Errorf("login: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (s *Scraper) syncCookiesFromBrowser() error {
	return fmt.Errorf("sync cookies: %w (build tag: unittest)", ErrBrowserNotReady)
}

func (s *Scraper) applyCookies() error {
	return fmt.Errorf("set browser cookies: %w (build tag: unittest)", ErrBrowserNotReady)
}
