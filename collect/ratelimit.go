package collect

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/biorag"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond allows one request per host every two seconds.
const DefaultRequestsPerSecond = 0.5

var (
	_ biorag.DomainLimiter = (*DomainLimiter)(nil)
	_ biorag.Fetcher       = (*RateLimitedFetcher)(nil)
)

// DomainLimiter provides per-domain rate limiting using token buckets.
// Each host gets its own limiter, so requests to different hosts do not
// wait on each other.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
// Each domain gets its own limiter with a burst of 1.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	domain = strings.ToLower(domain)

	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// RateLimitedFetcher waits on a DomainLimiter before every fetch.
type RateLimitedFetcher struct {
	next    biorag.Fetcher
	limiter biorag.DomainLimiter
}

// NewRateLimitedFetcher wraps next so that each request waits for the
// limiter slot of its host.
func NewRateLimitedFetcher(next biorag.Fetcher, limiter biorag.DomainLimiter) *RateLimitedFetcher {
	return &RateLimitedFetcher{next: next, limiter: limiter}
}

// Fetch implements biorag.Fetcher.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", biorag.Errorf(biorag.EINVALID, "invalid URL %q", rawURL)
	}
	if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return f.next.Fetch(ctx, rawURL)
}

// Close implements biorag.Fetcher.
func (f *RateLimitedFetcher) Close() error {
	return f.next.Close()
}
