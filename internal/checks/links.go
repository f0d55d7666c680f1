package checks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"ContentGate/internal/domain"
	"ContentGate/internal/ports"
)

var (
	urlExpr    = regexp.MustCompile(`https?://[^\s<>"'()\[\]{}]+`)
	anchorExpr = regexp.MustCompile(`(?i)<a\s[^>]*href`)
)

// ExtractURLs returns the de-duplicated absolute URLs in body, in the order
// they first appear. HTML bodies are parsed so entity-encoded hrefs match the
// URL a browser would request.
func ExtractURLs(body string) []string {
	seen := map[string]struct{}{}
	urls := make([]string, 0)
	add := func(raw string) {
		raw = strings.TrimRight(raw, ".,;:!?")
		if raw == "" {
			return
		}
		if _, ok := seen[raw]; ok {
			return
		}
		seen[raw] = struct{}{}
		urls = append(urls, raw)
	}

	text := body
	var hrefs []string
	if anchorExpr.MatchString(body) {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(body)); err == nil {
			text = doc.Text()
			doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
				href, _ := sel.Attr("href")
				if isAbsoluteHTTP(href) {
					hrefs = append(hrefs, strings.TrimSpace(href))
				}
			})
		}
	}

	for _, match := range urlExpr.FindAllString(text, -1) {
		add(match)
	}
	for _, href := range hrefs {
		add(href)
	}
	return urls
}

func isAbsoluteHTTP(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

type probeOutcome struct {
	status int
	err    error
}

// Links probes every URL in body. Probes run concurrently, each under its own
// timeout; any failure marks the URL broken instead of failing the run.
func Links(ctx context.Context, prober ports.LinkProber, body string, opts Options) domain.LinkCheck {
	opts = opts.withDefaults()
	urls := ExtractURLs(body)
	result := domain.LinkCheck{
		URLs:     urls,
		Broken:   []string{},
		Warnings: []string{},
	}
	if len(urls) == 0 {
		result.Passed = true
		return result
	}
	if prober == nil {
		result.Broken = append(result.Broken, urls...)
		result.Warnings = append(result.Warnings, "no link prober configured")
		return result
	}

	outcomes := make([]probeOutcome, len(urls))
	var g errgroup.Group
	g.SetLimit(opts.LinkConcurrency)
	for i, u := range urls {
		g.Go(func() error {
			outcomes[i] = probeOne(ctx, prober, u, opts)
			return nil
		})
	}
	_ = g.Wait()

	for i, u := range urls {
		out := outcomes[i]
		if out.err == nil && out.status >= 200 && out.status < 300 {
			continue
		}
		result.Broken = append(result.Broken, u)
		if out.status == http.StatusUnauthorized || out.status == http.StatusForbidden {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s returned %d and may require authentication", u, out.status))
		}
	}

	result.Passed = len(result.Broken) == 0
	return result
}

func probeOne(ctx context.Context, prober ports.LinkProber, u string, opts Options) (out probeOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = probeOutcome{err: fmt.Errorf("probe panicked: %v", r)}
		}
	}()

	probeCtx, cancel := context.WithTimeout(ctx, opts.LinkTimeout)
	defer cancel()

	status, err := prober.Probe(probeCtx, u)
	return probeOutcome{status: status, err: err}
}
