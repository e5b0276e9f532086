// backend/internal/scrapers/zillow/fetcher.go
package zillow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ps-vitor/zillow-scraper/backend/internal/domain"
	"github.com/ps-vitor/zillow-scraper/backend/pkg/logger"
)

const (
	DefaultMaxRedirects = 5
	defaultTimeout      = 30 * time.Second
)

// DefaultHeaders returns the browser-like request headers. Each call returns a fresh copy.
func DefaultHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	h.Set("Accept-Language", "en-US,en;q=0.9,es;q=0.8")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	return h
}

// FetchOptions tune a single Fetch call.
type FetchOptions struct {
	// Headers are merged over the fetcher's defaults; these values win.
	Headers map[string]string
	// MaxRedirects is the redirect budget. Zero or less means the first redirect fails.
	MaxRedirects int
}

// DefaultFetchOptions returns options with the standard redirect budget and no extra headers.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{MaxRedirects: DefaultMaxRedirects}
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// DefaultHeaders are sent on every request. Nil means DefaultHeaders().
	DefaultHeaders http.Header
	// Timeout bounds each request, body included. Zero means 30s.
	Timeout time.Duration
	// MaxRedirects is the budget FetchPage uses.
	MaxRedirects int
}

// Fetcher downloads pages with a single GET, following redirects by hand.
type Fetcher struct {
	client       *http.Client
	headers      http.Header
	maxRedirects int
	log          logger.Logger
}

// NewFetcher creates a Fetcher. A nil log discards output.
func NewFetcher(cfg FetcherConfig, log logger.Logger) *Fetcher {
	headers := cfg.DefaultHeaders
	if headers == nil {
		headers = DefaultHeaders()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = logger.NewNop()
	}

	// HTTP/1.1 only, also over TLS.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ForceAttemptHTTP2 = false
	protocols := new(http.Protocols)
	protocols.SetHTTP1(true)
	transport.Protocols = protocols

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			// Redirects are followed in Fetch so the budget and header merge stay under our control.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		headers:      headers.Clone(),
		maxRedirects: cfg.MaxRedirects,
		log:          log,
	}
}

// FetchPage fetches rawURL with the configured redirect budget.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (string, error) {
	return f.Fetch(ctx, rawURL, FetchOptions{MaxRedirects: f.maxRedirects})
}

// Fetch GETs rawURL and returns the body of the final 200 response.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts FetchOptions) (string, error) {
	current, err := parseTarget(rawURL)
	if err != nil {
		return "", err
	}

	headers := f.headers.Clone()
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	budget := opts.MaxRedirects
	for {
		resp, err := f.get(ctx, current, headers)
		if err != nil {
			return "", err
		}

		location := resp.Header.Get("Location")
		if isRedirect(resp.StatusCode) && location != "" {
			drain(resp)

			if budget <= 0 {
				return "", ErrTooManyRedirects
			}

			next, err := current.Parse(location)
			if err != nil {
				return "", fmt.Errorf("%w: redirect location %q: %v", ErrInvalidURL, location, err)
			}

			f.log.Debug("following redirect",
				logger.String("from", current.String()),
				logger.String("to", next.String()),
				logger.Int("status", resp.StatusCode),
				logger.Int("remaining", budget-1),
			)

			current = next
			budget--
			continue
		}

		return f.readBody(resp, current)
	}
}

func (f *Fetcher) get(ctx context.Context, target *url.URL, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header = headers.Clone()

	f.log.Debug("fetching page", logger.String("url", target.String()))

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: target.String(), Err: err}
	}

	return resp, nil
}

func (f *Fetcher) readBody(resp *http.Response, target *url.URL) (string, error) {
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: target.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: target.String(), Err: err}
	}

	f.log.Debug("page fetched", logger.String("url", target.String()), logger.Int("bytes", len(body)))

	return strings.ToValidUTF8(string(body), "\uFFFD"), nil
}

func parseTarget(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme in %q", ErrInvalidURL, rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, rawURL)
	}
	return u, nil
}

func isRedirect(code int) bool {
	return code >= 300 && code < 400
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

var _ domain.PageFetcher = (*Fetcher)(nil)
