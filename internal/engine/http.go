package engine

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"time"

	"github.com/websectester/websectester/internal/version"
)

// NewHTTPClient builds the probe client. Certificate validation is disabled
// on purpose: targets under test frequently run self-signed or intercepted
// TLS, and an intercepting proxy rewrites certificates anyway.
func NewHTTPClient(timeout time.Duration, proxyURL string) *http.Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true,
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// NewRequest builds a GET request carrying the scanner's identifying
// User-Agent.
func NewRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.ScannerUserAgent())
	return req, nil
}
