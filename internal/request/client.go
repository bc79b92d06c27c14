// Package request implements the resilient HTTP client used for every call to
// the LayerEdge API. Responses are classified into a small set of Kinds before
// any retry decision is made, and the retry decision itself comes from a
// Policy table rather than control flow.
package request

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/thruflo/lightnode/internal/logging"
	"github.com/thruflo/lightnode/internal/transport"
)

// UserAgent is the desktop browser identity sent with every request.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const maxBodyBytes = 10 << 20

// DefaultHeaders returns the fixed header profile. origin is the dashboard
// origin, e.g. "https://dashboard.layeredge.io".
func DefaultHeaders(origin string) http.Header {
	origin = strings.TrimSuffix(origin, "/")
	h := http.Header{}
	h.Set("Accept", "*/*")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Content-Type", "application/json")
	h.Set("Origin", origin)
	h.Set("Referer", origin+"/")
	h.Set("User-Agent", UserAgent)
	return h
}

// Client sends requests with the header profile and retry policy.
// It is safe for concurrent use but is normally owned by one wallet pipeline.
type Client struct {
	httpClient  *http.Client
	headers     http.Header
	policy      Policy
	maxAttempts int
	proxy       string
	log         *logging.Logger
	sleep       SleepFunc
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client, normally from transport.NewClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeaders replaces the header profile.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		c.headers = h.Clone()
	}
}

// WithPolicy replaces the retry policy.
func WithPolicy(p Policy) Option {
	return func(c *Client) {
		c.policy = p
	}
}

// WithMaxAttempts sets the default attempt budget per request.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithProxy records the proxy the HTTP client routes through, for diagnostics.
func WithProxy(proxy string) Option {
	return func(c *Client) {
		c.proxy = proxy
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithSleep replaces the backoff sleeper. Tests use it to record delays.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) {
		c.sleep = fn
	}
}

// NewClient creates a Client. Without options it uses http.DefaultClient,
// the production header profile and DefaultPolicy.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  http.DefaultClient,
		headers:     DefaultHeaders("https://dashboard.layeredge.io"),
		policy:      DefaultPolicy(),
		maxAttempts: DefaultMaxAttempts,
		log:         logging.Default(),
		sleep:       Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendOption adjusts a single Send call.
type SendOption func(*sendConfig)

type sendConfig struct {
	maxAttempts   int
	allowConflict bool
}

// MaxAttempts overrides the attempt budget for one call.
func MaxAttempts(n int) SendOption {
	return func(sc *sendConfig) {
		if n > 0 {
			sc.maxAttempts = n
		}
	}
}

// AllowConflict makes a 409 terminal with its body returned to the caller.
// Only task completion endpoints answer 409 meaningfully.
func AllowConflict() SendOption {
	return func(sc *sendConfig) {
		sc.allowConflict = true
	}
}

// Send issues method url with body JSON-encoded (nil sends no body) and
// retries according to the policy. It never returns an error: every failure
// is folded into the Outcome.
func (c *Client) Send(ctx context.Context, method, url string, body any, opts ...SendOption) Outcome {
	sc := sendConfig{maxAttempts: c.maxAttempts}
	for _, opt := range opts {
		opt(&sc)
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			c.log.Error("Invalid request body", "url", url, "error", err)
			return Outcome{Kind: KindBadRequest, Err: fmt.Errorf("failed to marshal request body: %w", err)}
		}
		payload = data
	}

	var last Outcome
	for attempt := 1; attempt <= sc.maxAttempts; attempt++ {
		last = c.do(ctx, method, url, payload, sc.allowConflict)
		last.Attempts = attempt

		rule := c.policy.Rule(last.Kind)
		if !rule.Retry {
			c.logTerminal(url, last)
			return last
		}
		if attempt == sc.maxAttempts {
			break
		}

		if last.Kind == KindRateLimited {
			c.log.Warn("Rate limit exceeded, cooling down", "url", url, "delay", rule.Delay)
		} else {
			c.log.Debug("Request failed, retrying",
				"url", url, "attempt", fmt.Sprintf("%d/%d", attempt, sc.maxAttempts), "error", last.Err)
		}

		if err := c.sleep(ctx, rule.Delay); err != nil {
			last.Err = err
			break
		}
	}

	keyVals := []interface{}{"url", url, "attempts", last.Attempts, "error", last.Err}
	if c.proxy != "" {
		keyVals = append(keyVals, "proxy", transport.Redact(c.proxy))
	}
	c.log.Error("Max retries reached, request failed", keyVals...)

	last.Kind = KindExhausted
	return last
}

func (c *Client) logTerminal(url string, o Outcome) {
	switch o.Kind {
	case KindNotFound:
		c.log.Error("Wallet not registered yet", "url", url)
	case KindBadRequest:
		c.log.Error("Invalid param for request", "url", url, "error", o.Err)
	case KindConflict:
		c.log.Debug("Request conflicted", "url", url, "body", o.Body)
	}
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, allowConflict bool) Outcome {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), url, reader)
	if err != nil {
		return Outcome{Kind: KindBadRequest, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Outcome{Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return Outcome{Kind: KindTransient, StatusCode: resp.StatusCode, Err: err}
	}

	out := Outcome{
		Kind:       Classify(resp.StatusCode, body, allowConflict),
		StatusCode: resp.StatusCode,
		Body:       body,
	}
	switch {
	case out.Kind == KindSuccess || out.Kind == KindConflict:
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		out.Err = ErrMalformedBody
	default:
		out.Err = &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return out
}

// readBody reads and decodes the response. The header profile asks for
// compressed bodies, so decoding is done here rather than by net/http.
func readBody(resp *http.Response) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) == 0 {
		return raw, nil
	}

	var decoded io.Reader
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip body: %w", err)
		}
		defer gz.Close()
		decoded = gz
	case "deflate":
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			defer zr.Close()
			decoded = zr
		} else {
			fr := flate.NewReader(bytes.NewReader(raw))
			defer fr.Close()
			decoded = fr
		}
	case "br":
		decoded = brotli.NewReader(bytes.NewReader(raw))
	default:
		return raw, nil
	}

	body, err := io.ReadAll(io.LimitReader(decoded, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
