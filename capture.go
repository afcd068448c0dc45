package twitter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sync"
	"time"
)

// DefaultScope limits capture to twitter.com and x.com traffic.
const DefaultScope = `.*(twitter|x)[.]com.*`

// Exchange is one captured request/response pair. Body holds the response
// bytes as they were captured, so it may still be content-encoded.
type Exchange struct {
	URL        string
	Method     string
	Status     int
	Header     http.Header
	Body       []byte
	CapturedAt time.Time
}

// ContentEncoding returns the response Content-Encoding header.
func (e *Exchange) ContentEncoding() string {
	if e.Header == nil {
		return ""
	}
	return e.Header.Get("Content-Encoding")
}

// Matches reports whether the last path segment is name, e.g. "UserTweets"
// for https://x.com/i/api/graphql/<id>/UserTweets?variables=...
func (e *Exchange) Matches(name string) bool {
	u, err := url.Parse(e.URL)
	if err != nil || u.Path == "" {
		return false
	}
	return path.Base(u.Path) == name
}

// Buffer holds the exchanges captured during one browser session. Capture
// sources append to it from their own goroutines; the scrape flow waits on
// it and drains it between rounds so every wait only sees fresh traffic.
type Buffer struct {
	scope *regexp.Regexp

	mu        sync.Mutex
	exchanges []*Exchange
	// round counts drains; capture sources stamp requests with it.
	round uint64
	// changed is closed and replaced on every Add.
	changed chan struct{}
}

// NewBuffer creates a Buffer that keeps only exchanges whose URL matches the
// scope regular expression. An empty scope keeps everything.
func NewBuffer(scope string) (*Buffer, error) {
	re, err := regexp.Compile(scope)
	if err != nil {
		return nil, fmt.Errorf("compile capture scope: %w", err)
	}
	return &Buffer{
		scope:   re,
		changed: make(chan struct{}),
	}, nil
}

// InScope reports whether an exchange for rawURL would be kept.
func (b *Buffer) InScope(rawURL string) bool {
	return b.scope.MatchString(rawURL)
}

// Add records ex if it is in scope and wakes up waiters. It reports whether
// the exchange was kept.
func (b *Buffer) Add(ex *Exchange) bool {
	if ex == nil || !b.InScope(ex.URL) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(ex)
	return true
}

// Round returns the current round. It advances on every Drain.
func (b *Buffer) Round() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.round
}

// AddInRound is Add for a request issued during round. Responses to
// requests from before the last Drain are dropped, however late they
// finish.
func (b *Buffer) AddInRound(round uint64, ex *Exchange) bool {
	if ex == nil || !b.InScope(ex.URL) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if round != b.round {
		return false
	}
	b.appendLocked(ex)
	return true
}

func (b *Buffer) appendLocked(ex *Exchange) {
	if ex.CapturedAt.IsZero() {
		ex.CapturedAt = time.Now()
	}
	b.exchanges = append(b.exchanges, ex)
	close(b.changed)
	b.changed = make(chan struct{})
}

// Wait returns the first buffered exchange matching name, waiting for new
// arrivals for up to timeout. It fails with ErrExchangeTimeout when nothing
// matches in time, or with the context error if ctx ends first.
func (b *Buffer) Wait(ctx context.Context, name string, timeout time.Duration) (*Exchange, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		b.mu.Lock()
		for _, ex := range b.exchanges {
			if ex.Matches(name) {
				b.mu.Unlock()
				return ex, nil
			}
		}
		changed := b.changed
		b.mu.Unlock()

		select {
		case <-changed:
		case <-timer.C:
			return nil, fmt.Errorf("%w: %s after %v", ErrExchangeTimeout, name, timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Drain discards every buffered exchange, starts a new round and returns
// how many exchanges there were.
func (b *Buffer) Drain() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.exchanges)
	b.exchanges = nil
	b.round++
	return n
}

// Len returns the number of buffered exchanges.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.exchanges)
}

// Exchanges returns a snapshot of the buffered exchanges in capture order.
func (b *Buffer) Exchanges() []*Exchange {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Exchange, len(b.exchanges))
	copy(out, b.exchanges)
	return out
}
