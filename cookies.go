package twitter

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-rod/rod/lib/proto"
	json "github.com/json-iterator/go"
)

// GetCookies returns the session cookies known to the scraper.
func (s *Scraper) GetCookies() []*http.Cookie {
	out := make([]*http.Cookie, len(s.cookies))
	copy(out, s.cookies)
	return out
}

// SetCookies replaces the session cookies. They are pushed into the browser
// when it is running, otherwise on the next InitBrowser.
func (s *Scraper) SetCookies(cookies []*http.Cookie) error {
	s.cookies = cookies
	if s.browser == nil {
		return nil
	}
	return s.applyCookies()
}

// SaveCookies writes session cookies to a JSON file.
func (s *Scraper) SaveCookies(path string) error {
	data, err := json.Marshal(s.GetCookies())
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// LoadCookies reads cookies from a JSON file and sets them on the scraper.
func (s *Scraper) LoadCookies(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cookies file: %w", err)
	}
	var cookies []*http.Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("unmarshal cookies: %w", err)
	}
	return s.SetCookies(cookies)
}

// IsLoggedIn reports whether the session carries an auth_token cookie.
func (s *Scraper) IsLoggedIn() bool {
	for _, c := range s.cookies {
		if c.Name == "auth_token" && c.Value != "" {
			return true
		}
	}
	return false
}

// cookieParams converts HTTP cookies to DevTools cookie params. Cookies
// without a domain are bound to baseURL.
func cookieParams(cookies []*http.Cookie, baseURL string) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
		if c.Domain == "" {
			p.URL = baseURL
		}
		if !c.Expires.IsZero() {
			p.Expires = proto.TimeSinceEpoch(c.Expires.Unix())
		}
		params = append(params, p)
	}
	return params
}

// httpCookies converts browser cookies back to HTTP cookies.
func httpCookies(cookies []*proto.NetworkCookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		hc := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if !c.Session && c.Expires > 0 {
			hc.Expires = time.Unix(int64(c.Expires), 0)
		}
		out = append(out, hc)
	}
	return out
}
