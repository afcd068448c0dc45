//go:build !unittest

package twitter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// profileLinkSelector only exists in the navigation bar of a signed-in session.
const profileLinkSelector = `[aria-label='Profile']`

// WaitLogin opens the login page and waits up to timeout for the user to
// sign in by hand (use a visible browser, see WithHeadless). Once the
// profile link shows up, the browser cookies become the session cookies.
func (s *Scraper) WaitLogin(ctx context.Context, timeout time.Duration) error {
	if s.browser == nil {
		if err := s.launchBrowser(); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	if err := s.page.Context(ctx).Navigate(s.baseURL + "/login"); err != nil {
		return fmt.Errorf("navigate to login: %w", err)
	}

	s.logger.Info("waiting for sign in", zap.Duration("timeout", timeout))
	if _, err := s.page.Context(ctx).Timeout(timeout).Element(profileLinkSelector); err != nil {
		return fmt.Errorf("wait for sign in: %w", err)
	}

	return s.syncCookiesFromBrowser()
}

// syncCookiesFromBrowser copies browser cookies into the scraper session.
func (s *Scraper) syncCookiesFromBrowser() error {
	cookies, err := s.page.Cookies([]string{s.baseURL})
	if err != nil {
		return fmt.Errorf("get browser cookies: %w", err)
	}
	s.cookies = httpCookies(cookies)
	s.logger.Debug("synced browser cookies", zap.Int("cookies", len(s.cookies)))
	return nil
}

// applyCookies pushes the session cookies into the browser.
func (s *Scraper) applyCookies() error {
	if err := s.browser.SetCookies(cookieParams(s.cookies, s.baseURL)); err != nil {
		return fmt.Errorf("set browser cookies: %w", err)
	}
	return nil
}
