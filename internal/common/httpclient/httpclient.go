// Package httpclient builds the HTTP client shared by the catalog source and the
// asset fetchers, and maps non-2xx responses to typed status errors.
package httpclient

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const defaultUserAgent = "fontd"

// Options holds configuration for creating an HTTP client.
type Options struct {
	timeout     time.Duration
	dialTimeout time.Duration
	userAgent   string
	transport   http.RoundTripper
}

// Option is a functional option for New.
type Option func(*Options)

// WithTimeout sets the overall per-request timeout (0 disables it).
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.timeout = d }
}

// WithDialTimeout sets the TCP dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) { o.dialTimeout = d }
}

// WithUserAgent sets the User-Agent header for requests.
func WithUserAgent(ua string) Option {
	return func(o *Options) { o.userAgent = ua }
}

// WithTransport replaces the base transport, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *Options) { o.transport = rt }
}

// userAgentTransport wraps an http.RoundTripper and injects a User-Agent header.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// New creates an HTTP client with the given options applied.
func New(opts ...Option) *http.Client {
	o := &Options{dialTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	base := o.transport
	if base == nil {
		base = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   o.dialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConnsPerHost:   8,
		}
	}
	ua := defaultUserAgent
	if o.userAgent != "" {
		ua = o.userAgent
	}
	return &http.Client{
		Transport: &userAgentTransport{base: base, userAgent: ua},
		Timeout:   o.timeout,
	}
}

// Kind classifies an HTTP failure.
type Kind string

const (
	KindAuthRequired Kind = "auth_required"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server_error"
	KindOther        Kind = "other"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Kind       Kind
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d (%s) from %s", e.StatusCode, e.Kind, e.URL)
}

// KindFor maps a status code to its Kind.
func KindFor(code int) Kind {
	switch {
	case code == http.StatusUnauthorized:
		return KindAuthRequired
	case code == http.StatusForbidden:
		return KindForbidden
	case code == http.StatusNotFound:
		return KindNotFound
	case code >= 500:
		return KindServer
	default:
		return KindOther
	}
}

// CheckStatus returns a *StatusError when resp is not a 2xx response.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	u := ""
	if resp.Request != nil && resp.Request.URL != nil {
		u = redact(resp.Request.URL.String())
	}
	return &StatusError{Kind: KindFor(resp.StatusCode), StatusCode: resp.StatusCode, URL: u}
}

func kindOf(err error) (Kind, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// IsAuth reports whether err is a 401 or 403. Retrying these does not help.
func IsAuth(err error) bool {
	k, ok := kindOf(err)
	return ok && (k == KindAuthRequired || k == KindForbidden)
}

// IsServer reports whether err is a 5xx response.
func IsServer(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindServer
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}
