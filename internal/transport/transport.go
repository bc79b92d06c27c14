// Package transport turns a proxy descriptor into a configured *http.Client.
package transport

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnsupportedScheme is returned for proxy schemes net/http cannot dial.
var ErrUnsupportedScheme = errors.New("unsupported proxy scheme")

var supportedSchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true,
}

// ParseProxy accepts "scheme://[user:pass@]host:port", "[user:pass@]host:port"
// and the "host:port:user:pass" form common in proxy lists. Scheme-less
// entries are treated as HTTP proxies.
func ParseProxy(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty proxy")
	}

	if !strings.Contains(raw, "://") {
		if parts := strings.Split(raw, ":"); len(parts) == 4 && !strings.Contains(raw, "@") {
			raw = fmt.Sprintf("%s:%s@%s:%s", parts[2], parts[3], parts[0], parts[1])
		}
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proxy: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if !supportedSchemes[u.Scheme] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	if u.Hostname() == "" || u.Port() == "" {
		return nil, fmt.Errorf("proxy must include host and port: %s", Redact(raw))
	}
	return u, nil
}

// Redact hides the proxy password for logging. Unparseable input is returned as "<invalid>".
func Redact(proxy string) string {
	if proxy == "" {
		return ""
	}
	u, err := url.Parse(proxy)
	if err != nil || u.Host == "" {
		if u, err := ParseProxy(proxy); err == nil {
			return u.Redacted()
		}
		return "<invalid>"
	}
	return u.Redacted()
}

// NewClient returns an HTTP client that routes through proxy, or dials
// directly when proxy is empty. timeout bounds each request end to end.
func NewClient(proxy string, timeout time.Duration) (*http.Client, error) {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: time.Second,
		// The request client sets Accept-Encoding itself and decodes bodies.
		DisableCompression: true,
	}

	if proxy != "" {
		u, err := ParseProxy(proxy)
		if err != nil {
			return nil, err
		}
		tr.Proxy = http.ProxyURL(u)
	}

	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}
