package webapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// Default endpoint paths and cookie names.
const (
	DefaultLoginPath     = "/login/"
	DefaultOutputsPath   = "/outputs/"
	DefaultCSRFCookie    = "csrftoken"
	DefaultSessionCookie = "sessionid"
)

// Client holds one authenticated session against the web application.
// It is not safe for concurrent use.
type Client struct {
	baseURL       string
	loginPath     string
	outputsPath   string
	csrfCookie    string
	sessionCookie string
	userAgent     string
	verifyLogin   bool
	httpClient    *http.Client
	logger        *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient    *http.Client
	logger        *slog.Logger
	timeout       time.Duration
	loginPath     string
	outputsPath   string
	csrfCookie    string
	sessionCookie string
	userAgent     string
	verifyLogin   bool
}

// New creates a Client for the application at baseURL. The underlying HTTP
// client always gets its own cookie jar; a client passed via WithHTTPClient is
// copied, never mutated.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("webapp: baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("webapp: parse baseURL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webapp: baseURL must be http or https, got %q", baseURL)
	}

	cfg := &clientConfig{
		loginPath:     DefaultLoginPath,
		outputsPath:   DefaultOutputsPath,
		csrfCookie:    DefaultCSRFCookie,
		sessionCookie: DefaultSessionCookie,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{}
	if cfg.httpClient != nil {
		copied := *cfg.httpClient
		httpClient = &copied
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("webapp: cookie jar: %w", err)
	}
	httpClient.Jar = jar

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:       baseURL,
		loginPath:     cfg.loginPath,
		outputsPath:   cfg.outputsPath,
		csrfCookie:    cfg.csrfCookie,
		sessionCookie: cfg.sessionCookie,
		userAgent:     cfg.userAgent,
		verifyLogin:   cfg.verifyLogin,
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

// WithHTTPClient overrides the default HTTP client (transport, TLS, redirects).
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client. Zero keeps the client default.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return fmt.Errorf("webapp: negative timeout %s", d)
		}
		cfg.timeout = d
		return nil
	}
}

// WithLoginPath overrides the login endpoint path.
func WithLoginPath(p string) Option {
	return func(cfg *clientConfig) error {
		cfg.loginPath = normalizePath(p, DefaultLoginPath)
		return nil
	}
}

// WithOutputsPath overrides the outputs report endpoint path.
func WithOutputsPath(p string) Option {
	return func(cfg *clientConfig) error {
		cfg.outputsPath = normalizePath(p, DefaultOutputsPath)
		return nil
	}
}

// WithCSRFCookie overrides the name of the cookie carrying the CSRF token.
func WithCSRFCookie(name string) Option {
	return func(cfg *clientConfig) error {
		if name != "" {
			cfg.csrfCookie = name
		}
		return nil
	}
}

// WithSessionCookie overrides the name of the cookie checked by WithLoginCheck.
func WithSessionCookie(name string) Option {
	return func(cfg *clientConfig) error {
		if name != "" {
			cfg.sessionCookie = name
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(cfg *clientConfig) error {
		cfg.userAgent = ua
		return nil
	}
}

// WithLoginCheck makes Login fail with a *LoginError when the login POST ends
// in a non-2xx status or leaves no session cookie behind. Off by default: the
// application answers a bad password with the login form again, and Login
// then succeeds silently.
func WithLoginCheck(enabled bool) Option {
	return func(cfg *clientConfig) error {
		cfg.verifyLogin = enabled
		return nil
	}
}

func normalizePath(p, def string) string {
	if p == "" {
		return def
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// BaseURL returns the application base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// LoginURL returns the absolute login endpoint.
func (c *Client) LoginURL() string { return c.baseURL + c.loginPath }

// OutputsURL returns the absolute outputs report endpoint.
func (c *Client) OutputsURL() string { return c.baseURL + c.outputsPath }

// do executes one request on the session. The caller closes the body.
func (c *Client) do(ctx context.Context, method, rawURL, operation string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &RequestError{Operation: operation, URL: rawURL, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.InfoContext(ctx, "HTTP request", "operation", operation, "method", method, "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Operation: operation, URL: rawURL, Err: err}
	}

	c.logger.DebugContext(ctx, "HTTP response", "operation", operation, "status", resp.StatusCode)
	return resp, nil
}

// cookie returns the value of the named cookie the jar would send to rawURL.
func (c *Client) cookie(rawURL, name string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
