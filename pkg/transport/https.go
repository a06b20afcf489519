package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TLS version constants
const (
	TLS12 = tls.VersionTLS12
	TLS13 = tls.VersionTLS13
)

// Recommended TLS 1.2 cipher suites for bank connectivity
var RecommendedTLS12CipherSuites = []uint16{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
}

// HeaderRequestID is the response header carrying the correlation id for a
// just-submitted command. Mailbox messages produced by that command carry
// the same id in their messageRequestId field.
const HeaderRequestID = "Message-Request-Id"

// HeaderClientID identifies the API consumer on every request.
const HeaderClientID = "Client-Id"

// Kind selects the content headers for a request body.
type Kind int

const (
	// KindJSON is used for the mailbox envelope endpoints.
	KindJSON Kind = iota
	// KindXML is used for command submissions carrying ISO 20022 documents.
	KindXML
)

func (k Kind) contentType() string {
	if k == KindXML {
		return "application/xml"
	}
	return "application/json"
}

// Config contains client connection settings.
type Config struct {
	BaseURL       string
	ClientID      string
	MinTLSVersion uint16
	MaxTLSVersion uint16
	CipherSuites  []uint16
	Certificates  []tls.Certificate
	RootCAs       *x509.CertPool
	// LocalAddr optionally binds outbound connections to a specific local
	// interface address, e.g. "10.0.4.17".
	LocalAddr       string
	Timeout         time.Duration
	IdleConnTimeout time.Duration
	// RetryAttempts is the number of additional attempts after the first
	// failed call.
	RetryAttempts int
}

// DefaultConfig returns a default configuration for the given base URL.
func DefaultConfig(baseURL string) *Config {
	return &Config{
		BaseURL:         baseURL,
		MinTLSVersion:   TLS12,
		MaxTLSVersion:   TLS13,
		CipherSuites:    RecommendedTLS12CipherSuites,
		Timeout:         30 * time.Second,
		IdleConnTimeout: 90 * time.Second,
		RetryAttempts:   2,
	}
}

// Result is the outcome of a single call: status, headers and body captured
// per call rather than held in shared client state.
type Result struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// RequestID returns the correlation id the bank assigned to the submitted
// command, or "" when the header is absent.
func (r *Result) RequestID() string {
	return r.Header.Get(HeaderRequestID)
}

// Error is an HTTP-level failure carrying the response status and body.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bank API returned status %d: %s", e.Status, e.Body)
}

// Retryable reports whether the failure class is worth retrying.
func (e *Error) Retryable() bool {
	return e.Status >= http.StatusInternalServerError
}

// Client issues authenticated HTTPS requests against the bank API.
type Client struct {
	rest     *resty.Client
	clientID string
	logger   *zap.Logger
}

// NewClient creates a transport client. A nil logger disables logging.
func NewClient(cfg *Config, logger *zap.Logger) *Client {
	if cfg.MinTLSVersion == 0 {
		cfg.MinTLSVersion = TLS12
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tlsConfig := &tls.Config{
		MinVersion:   cfg.MinTLSVersion,
		MaxVersion:   cfg.MaxTLSVersion,
		CipherSuites: cfg.CipherSuites,
		Certificates: cfg.Certificates,
		RootCAs:      cfg.RootCAs,
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if cfg.LocalAddr != "" {
		dialer.LocalAddr = &net.TCPAddr{IP: net.ParseIP(cfg.LocalAddr)}
	}

	httpTransport := &http.Transport{
		TLSClientConfig:     tlsConfig,
		DialContext:         dialer.DialContext,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}

	rest := resty.New().
		SetTransport(httpTransport).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "go-lhvconnect/1.0").
		SetRetryCount(cfg.RetryAttempts).
		// Resty clamps custom retry-after values to RetryMaxWaitTime,
		// which defaults to 2s. Keep it above the largest backoff the
		// hook below can compute.
		SetRetryMaxWaitTime(time.Duration(2*(cfg.RetryAttempts+1)) * time.Second).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			return time.Duration(2*r.Request.Attempt) * time.Second, nil
		}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Connection-level failures are always retryable; for HTTP
			// failures the status class decides.
			return err != nil || (&Error{Status: r.StatusCode()}).Retryable()
		})

	return &Client{rest: rest, clientID: cfg.ClientID, logger: logger}
}

// Do issues a single authenticated request and classifies the response.
//
// Classification rules the callers rely on:
//   - DELETE returning 404 is success: the resource is already gone.
//   - 202/204, and 200 in response to DELETE, are legitimately empty.
//   - Any other empty body is an error.
//   - Any other status >= 400 is an *Error carrying status and body.
func (c *Client) Do(ctx context.Context, method, path string, body []byte, kind Kind) (*Result, error) {
	req := c.rest.R().SetContext(ctx)
	if c.clientID != "" {
		req.SetHeader(HeaderClientID, c.clientID)
	}
	if body != nil {
		req.SetHeader("Content-Type", kind.contentType()).SetBody(body)
	}
	req.SetHeader("Accept", kind.contentType())

	start := time.Now()
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("request failed after retries",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	res := &Result{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case method == http.MethodDelete && res.StatusCode == http.StatusNotFound:
		// Already consumed by a previous delete.
		return res, nil
	case res.StatusCode >= http.StatusBadRequest:
		return res, &Error{Status: res.StatusCode, Body: Truncate(res.Body, 1000)}
	case len(res.Body) == 0:
		if res.StatusCode == http.StatusAccepted ||
			res.StatusCode == http.StatusNoContent ||
			method == http.MethodDelete {
			return res, nil
		}
		return res, fmt.Errorf("%s %s: empty response body (status %d)", method, path, res.StatusCode)
	}

	return res, nil
}

// Truncate returns the first n bytes of b as a string, for log excerpts.
func Truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
