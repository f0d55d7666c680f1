package httpprobe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"ContentGate/internal/ports"
)

const (
	defaultUserAgent = "ContentGate-LinkCheck/1.0"
	maxRedirects     = 10
)

// Prober checks URL liveness with HEAD requests, following redirects.
type Prober struct {
	userAgent string
	http      *http.Client
}

var _ ports.LinkProber = (*Prober)(nil)

// NewProber builds a prober. The client timeout is a backstop; callers are
// expected to bound each probe with their own context deadline.
func NewProber(timeout time.Duration, userAgent string) *Prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Prober{
		userAgent: userAgent,
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// Probe issues a HEAD request and returns the final status code.
func (p *Prober) Probe(ctx context.Context, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("do request: %w", err)
	}
	// The status is already known; a failed drain or close says nothing about the link.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	return resp.StatusCode, nil
}
