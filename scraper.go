package twitter

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"go.uber.org/zap"
)

const defaultBaseURL = "https://x.com"

// GraphQL operations the profile page issues on its own.
const (
	opUserByScreenName = "UserByScreenName"
	opUserByRestID     = "UserByRestId"
	opUserTweets       = "UserTweets"
)

// CaptureMode selects how page traffic reaches the capture buffer.
type CaptureMode string

const (
	// CaptureCDP reads responses through the DevTools network domain.
	CaptureCDP CaptureMode = "cdp"
	// CaptureProxy routes the browser through a local MITM proxy.
	CaptureProxy CaptureMode = "proxy"
)

// ParseCaptureMode validates a mode name. An empty name means CaptureCDP.
func ParseCaptureMode(name string) (CaptureMode, error) {
	switch CaptureMode(name) {
	case "", CaptureCDP:
		return CaptureCDP, nil
	case CaptureProxy:
		return CaptureProxy, nil
	}
	return "", fmt.Errorf("unsupported capture mode: %s", name)
}

// Scraper drives a browser to Twitter profile pages and reads tweets out of
// the GraphQL responses the page fetches for itself. There is one page and
// one capture buffer, so GetTweets and LookupUser calls run one at a time.
// Options, SetScope and SetProxy must not be called while a scrape runs.
type Scraper struct {
	baseURL     string // defaults to "https://x.com"
	browserBin  string
	headless    bool
	proxy       string
	captureMode CaptureMode
	logger      *zap.Logger

	browser     *rod.Browser
	page        *rod.Page
	recorder    *Recorder
	stopCapture func()

	// traffic is the capture buffer of the current browser session.
	traffic *Buffer

	// navigateFunc loads a URL in the browser page. Replaceable for testing.
	navigateFunc func(ctx context.Context, rawURL string) error
	// scrollFunc scrolls the page to the bottom. Replaceable for testing.
	scrollFunc func(ctx context.Context) error

	// scrapeMu serializes scrapes sharing the page and the buffer.
	scrapeMu sync.Mutex
	scrollMu sync.Mutex

	waitTimeout   time.Duration
	lookupTimeout time.Duration
	scrollDelay   time.Duration
	lastScroll    time.Time

	cookies []*http.Cookie
}

// New creates a Scraper with sensible defaults. The browser is not launched
// until InitBrowser is called.
func New() *Scraper {
	traffic, _ := NewBuffer(DefaultScope)
	s := &Scraper{
		baseURL:       defaultBaseURL,
		headless:      true,
		captureMode:   CaptureCDP,
		logger:        zap.NewNop(),
		traffic:       traffic,
		waitTimeout:   10 * time.Second,
		lookupTimeout: 20 * time.Second,
		scrollDelay:   1 * time.Second,
	}
	s.navigateFunc = s.navigatePage
	s.scrollFunc = s.scrollPage
	return s
}

// WithWaitTimeout sets how long each page waits for its network exchange.
func (s *Scraper) WithWaitTimeout(d time.Duration) *Scraper {
	s.waitTimeout = d
	return s
}

// WithLookupTimeout sets how long FindUserID waits for the account lookup.
func (s *Scraper) WithLookupTimeout(d time.Duration) *Scraper {
	s.lookupTimeout = d
	return s
}

// WithScrollDelay sets the minimum delay between scrolls.
func (s *Scraper) WithScrollDelay(d time.Duration) *Scraper {
	s.scrollDelay = d
	return s
}

// WithLogger sets the logger. A nil logger disables logging.
func (s *Scraper) WithLogger(logger *zap.Logger) *Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	s.logger = logger.Named("scraper")
	return s
}

// WithHeadless controls whether the browser window is hidden.
func (s *Scraper) WithHeadless(headless bool) *Scraper {
	s.headless = headless
	return s
}

// WithBrowserBin sets the browser executable. Empty means let the launcher
// find or download one.
func (s *Scraper) WithBrowserBin(path string) *Scraper {
	s.browserBin = path
	return s
}

// WithBaseURL points the scraper at a different site root.
func (s *Scraper) WithBaseURL(baseURL string) *Scraper {
	s.baseURL = baseURL
	return s
}

// WithCaptureMode selects the capture source used by InitBrowser.
func (s *Scraper) WithCaptureMode(mode CaptureMode) *Scraper {
	s.captureMode = mode
	return s
}

// SetScope replaces the capture buffer with one filtering on scope.
func (s *Scraper) SetScope(scope string) error {
	buf, err := NewBuffer(scope)
	if err != nil {
		return err
	}
	s.traffic = buf
	return nil
}

// SetProxy configures an HTTP/HTTPS or SOCKS5 upstream proxy for browser
// traffic. In proxy capture mode it is chained behind the local recorder.
func (s *Scraper) SetProxy(proxyAddr string) error {
	if proxyAddr == "" {
		s.proxy = ""
		return nil
	}
	if _, err := upstreamTransport(proxyAddr); err != nil {
		return err
	}
	s.proxy = proxyAddr
	return nil
}

// Traffic returns the capture buffer of the current session.
func (s *Scraper) Traffic() *Buffer {
	return s.traffic
}

// navigate drains stale traffic and loads the target's profile page.
func (s *Scraper) navigate(ctx context.Context, target Target) error {
	profileURL, err := target.URL(s.baseURL)
	if err != nil {
		return err
	}

	if n := s.traffic.Drain(); n > 0 {
		s.logger.Debug("discarded stale exchanges", zap.Int("exchanges", n))
	}

	start := time.Now()
	if err := s.navigateFunc(ctx, profileURL); err != nil {
		return fmt.Errorf("navigate to %s: %w", profileURL, err)
	}
	s.logger.Debug("navigated", zap.String("url", profileURL), zap.Duration("took", time.Since(start)))
	return nil
}

// awaitJSON waits on buf for an exchange whose path contains name and
// decodes its body into v. With consume set, the whole buffer is drained
// afterwards whatever the outcome.
func (s *Scraper) awaitJSON(ctx context.Context, buf *Buffer, name string, timeout time.Duration, consume bool, v any) error {
	start := time.Now()
	if consume {
		defer buf.Drain()
	}

	ex, err := buf.Wait(ctx, name, timeout)
	if err != nil {
		return err
	}
	waitDur := time.Since(start)

	if err := ex.DecodeJSON(v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	s.logger.Debug("captured exchange",
		zap.String("operation", name),
		zap.Int("status", ex.Status),
		zap.Int("bytes", len(ex.Body)),
		zap.String("encoding", ex.ContentEncoding()),
		zap.Duration("wait", waitDur),
		zap.Duration("total", time.Since(start)),
	)
	return nil
}

// waitForScroll paces scrolls so lazy loading looks like a reader.
func (s *Scraper) waitForScroll() {
	s.scrollMu.Lock()
	defer s.scrollMu.Unlock()
	s.throttle(&s.lastScroll, s.scrollDelay)
}

// throttle sleeps if needed to enforce min delay + jitter between actions.
func (s *Scraper) throttle(last *time.Time, delay time.Duration) {
	if delay == 0 {
		return
	}
	elapsed := time.Since(*last)
	jitter := time.Duration(rand.Int64N(int64(500 * time.Millisecond)))
	wait := delay + jitter - elapsed
	if wait > 0 {
		time.Sleep(wait)
	}
	*last = time.Now()
}

// Close releases all resources: capture listeners, the local proxy and the
// browser. It is safe to call more than once.
func (s *Scraper) Close() error {
	if s.stopCapture != nil {
		s.stopCapture()
		s.stopCapture = nil
	}
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			return fmt.Errorf("close recorder: %w", err)
		}
		s.recorder = nil
	}
	return s.closeBrowser()
}
