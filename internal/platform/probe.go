package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Throughput probe limits
const (
	ProbeByteLimit   = 200 * 1024
	ProbeTimeout     = 5 * time.Second
	probeReadBufSize = 16 * 1024
)

// Well-known small static assets used to sample download speed.
var DefaultProbeURLs = []string{
	"https://www.google.com/images/branding/googlelogo/2x/googlelogo_color_272x92dp.png",
	"https://www.cloudflare.com/favicon.ico",
}

// HTTPProber samples network throughput by downloading a small static
// asset. It implements the prober used by the size/time estimator.
type HTTPProber struct {
	client *http.Client
	urls   []string
	limit  int64
}

// NewHTTPProber creates a prober against the default probe URLs.
func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		client: &http.Client{Timeout: ProbeTimeout},
		urls:   DefaultProbeURLs,
		limit:  ProbeByteLimit,
	}
}

// NewHTTPProberWithURLs creates a prober against specific URLs.
func NewHTTPProberWithURLs(urls ...string) *HTTPProber {
	p := NewHTTPProber()
	p.urls = urls
	return p
}

// MeasureThroughput downloads up to the byte limit from the first
// reachable probe URL and returns the observed rate in bytes per second.
func (p *HTTPProber) MeasureThroughput(ctx context.Context) (float64, error) {
	var lastErr error
	for _, url := range p.urls {
		rate, err := p.measure(ctx, url)
		if err == nil {
			return rate, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no probe URLs configured")
	}
	return 0, lastErr
}

func (p *HTTPProber) measure(ctx context.Context, url string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("probe %s: unexpected status %d", url, resp.StatusCode)
	}

	read, err := io.Copy(io.Discard, io.LimitReader(resp.Body, p.limit))
	if err != nil {
		return 0, err
	}
	elapsed := time.Since(start).Seconds()
	if read == 0 || elapsed <= 0 {
		return 0, fmt.Errorf("probe %s: empty response", url)
	}
	return float64(read) / elapsed, nil
}
