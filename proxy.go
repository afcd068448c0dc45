package twitter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/elazarl/goproxy"
	"go.uber.org/zap"
	"golang.org/x/net/proxy"
)

// defaultTransport returns the recorder's upstream http.Transport:
// connection pooling, keep-alive, and TLS handshake caching. Compression is
// left to the browser so captured bodies keep their wire encoding.
func defaultTransport() *http.Transport {
	return &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
}

// upstreamTransport builds a transport that reaches the internet through an
// optional HTTP/HTTPS or SOCKS5 proxy.
func upstreamTransport(proxyAddr string) (*http.Transport, error) {
	base := defaultTransport()
	if proxyAddr == "" {
		return base, nil
	}

	u, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		base.Proxy = http.ProxyURL(u)
	case "socks5":
		var auth *proxy.Auth
		if u.User != nil {
			pass, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: pass}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 proxy: %w", err)
		}
		dc, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks5: context dialer not supported")
		}
		base.DialContext = dc.DialContext
	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", u.Scheme)
	}
	return base, nil
}

// Recorder is a local man-in-the-middle proxy that copies every in-scope
// response into a Buffer before handing it back to the browser. HTTPS is
// re-signed with goproxy's built-in CA, so the browser has to be told to
// ignore certificate errors.
type Recorder struct {
	buf       *Buffer
	proxy     *goproxy.ProxyHttpServer
	transport *http.Transport
	logger    *zap.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewRecorder creates a Recorder writing into buf. upstream is an optional
// proxy the recorder forwards through.
func NewRecorder(buf *Buffer, upstream string, logger *zap.Logger) (*Recorder, error) {
	tr, err := upstreamTransport(upstream)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := goproxy.NewProxyHttpServer()
	p.Tr = tr
	p.OnRequest().HandleConnect(goproxy.AlwaysMitm)

	r := &Recorder{
		buf:       buf,
		proxy:     p,
		transport: tr,
		logger:    logger.Named("recorder"),
	}
	p.OnRequest().DoFunc(r.stampRound)
	p.OnResponse().DoFunc(r.record)
	return r, nil
}

// stampRound remembers the buffer round a request was sent in.
func (r *Recorder) stampRound(req *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
	ctx.UserData = r.buf.Round()
	return req, nil
}

// record copies an in-scope response into the buffer and restores its body.
func (r *Recorder) record(resp *http.Response, ctx *goproxy.ProxyCtx) *http.Response {
	if resp == nil || ctx == nil || ctx.Req == nil || ctx.Req.URL == nil {
		return resp
	}
	rawURL := ctx.Req.URL.String()
	if !r.buf.InScope(rawURL) {
		return resp
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil {
		r.logger.Debug("read response body", zap.String("url", rawURL), zap.Error(err))
		return resp
	}

	ex := &Exchange{
		URL:    rawURL,
		Method: ctx.Req.Method,
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
	}
	round, ok := ctx.UserData.(uint64)
	if !ok {
		round = r.buf.Round()
	}
	if !r.buf.AddInRound(round, ex) {
		r.logger.Debug("drop response from an earlier round", zap.String("url", rawURL))
	}
	return resp
}

// Start listens on a random loopback port and returns the proxy URL.
func (r *Recorder) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server != nil {
		return "", fmt.Errorf("recorder already started on %s", r.listener.Addr())
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:           r.proxy,
		ReadHeaderTimeout: 30 * time.Second,
	}
	r.server = srv
	r.listener = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.logger.Warn("recorder stopped", zap.Error(err))
		}
	}()

	addr := "http://" + ln.Addr().String()
	r.logger.Debug("recorder listening", zap.String("addr", addr))
	return addr, nil
}

// Close stops the proxy and drops upstream idle connections.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server == nil {
		return nil
	}
	err := r.server.Close()
	r.server = nil
	r.listener = nil
	r.transport.CloseIdleConnections()
	return err
}
