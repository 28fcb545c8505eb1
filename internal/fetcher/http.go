package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/statements-cli/internal/resilience"
)

// DefaultMaxBodyBytes bounds Fetch. Annual report documents with inline
// XBRL run to tens of megabytes.
const DefaultMaxBodyBytes = 128 << 20

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	Backoff      time.Duration // first retry delay
	MaxBodyBytes int64
	RateLimiters map[string]*rate.Limiter
}

// AdaptiveLimiter wraps a rate.Limiter with adaptive rate adjustment.
// On success it increases the rate by 20% (up to 2x initial).
// On 429 it halves the rate (down to initial/4 minimum).
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates an adaptive rate limiter that auto-tunes.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		initialRate: initialRate,
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess increases the rate by 20%, up to 2x initial.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = min(a.currentRate*1.2, a.maxRate)
	a.limiter.SetLimit(a.currentRate)
}

// OnRateLimit halves the rate on 429 responses.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.currentRate = max(a.currentRate*0.5, a.minRate)
	a.limiter.SetLimit(a.currentRate)
	zap.L().Warn("adaptive rate limit: reducing rate after 429",
		zap.Float64("new_rate", float64(a.currentRate)),
	)
}

// Limit returns the current rate limit.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// waiter is satisfied by both rate.Limiter and AdaptiveLimiter.
type waiter interface {
	Wait(ctx context.Context) error
}

// HTTPFetcher implements Fetcher using net/http with retry and rate limiting.
type HTTPFetcher struct {
	client           *http.Client
	opts             HTTPOptions
	limiters         map[string]*rate.Limiter
	adaptiveLimiters map[string]*AdaptiveLimiter
	fallback         *rate.Limiter
}

// SECHosts are the EDGAR hosts. SEC allows 10 requests per second per
// client across all of them.
var SECHosts = []string{"www.sec.gov", "data.sec.gov", "efts.sec.gov"}

// DefaultAdaptiveLimiters returns adaptive rate limiters for EDGAR hosts.
func DefaultAdaptiveLimiters() map[string]*AdaptiveLimiter {
	out := make(map[string]*AdaptiveLimiter, len(SECHosts))
	for _, h := range SECHosts {
		out[h] = NewAdaptiveLimiter(8, 8)
	}
	return out
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.Backoff == 0 {
		opts.Backoff = time.Second
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "statements-cli/1.0"
	}
	limiters := make(map[string]*rate.Limiter, len(opts.RateLimiters))
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:             opts,
		limiters:         limiters,
		adaptiveLimiters: DefaultAdaptiveLimiters(),
		fallback:         rate.NewLimiter(20, 20),
	}
}

// limiterFor picks the limiter for a URL's host: explicit limiters first,
// then the adaptive EDGAR limiters, then a shared fallback.
func (f *HTTPFetcher) limiterFor(rawURL string) (waiter, *AdaptiveLimiter) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return f.fallback, nil
	}
	if lim, ok := f.limiters[u.Host]; ok {
		return lim, nil
	}
	if a, ok := f.adaptiveLimiters[u.Host]; ok {
		return a, a
	}
	return f.fallback, nil
}

func (f *HTTPFetcher) policy(rawURL string) resilience.Policy {
	p := resilience.DefaultPolicy()
	p.MaxAttempts = f.opts.MaxRetries
	p.InitialBackoff = f.opts.Backoff
	p.OnRetry = resilience.LogRetries("http get", zap.String("url", rawURL))
	return p
}

// get performs a rate-limited GET with retries. The caller owns the body of
// a 200 response; every other status is turned into an error.
func (f *HTTPFetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	lim, adaptive := f.limiterFor(rawURL)

	return resilience.DoVal(ctx, f.policy(rawURL), func(ctx context.Context) (*http.Response, error) {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetcher: rate limiter wait")
		}

		resp, err := f.client.Do(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(err, "fetcher: request")
			}
			return nil, resilience.NewTransientError(eris.Wrap(err, "fetcher: request"), 0)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if adaptive != nil {
				adaptive.OnSuccess()
			}
			return resp, nil
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
			_ = resp.Body.Close()
			return nil, eris.Wrapf(ErrNotFound, "%s", rawURL)
		case resilience.IsTransientHTTPStatus(resp.StatusCode):
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusTooManyRequests && adaptive != nil {
				adaptive.OnRateLimit()
			}
			te := resilience.NewTransientError(eris.Errorf("fetcher: http %d from %s", resp.StatusCode, rawURL), resp.StatusCode)
			te.RetryAfter = resilience.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
			return nil, te
		default:
			_ = resp.Body.Close()
			return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
		}
	})
}

// Download fetches the URL and returns the response body.
func (f *HTTPFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Fetch fetches the URL and reads at most MaxBodyBytes of it.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Payload, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body of %s", rawURL)
	}
	if int64(len(body)) > f.opts.MaxBodyBytes {
		return nil, eris.Errorf("fetcher: body of %s exceeds %d bytes", rawURL, f.opts.MaxBodyBytes)
	}
	return &Payload{
		URL:         rawURL,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
