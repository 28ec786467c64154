package rate

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// RateLimitError is returned when a call is blocked and no cached response exists.
type RateLimitError struct {
	Provider string
	Reason   string
	RetryAt  time.Time
}

func (e RateLimitError) Error() string {
	if e.RetryAt.IsZero() {
		return fmt.Sprintf("%s rate limited: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s rate limited: %s (retry at %s)", e.Provider, e.Reason, e.RetryAt.UTC().Format(time.RFC3339))
}

type Decision struct {
	Allowed bool
	Reason  string
	RetryAt time.Time
}

type bucket struct {
	window   Window
	capacity int
	tokens   float64
	last     time.Time
}

type cacheEntry struct {
	status  int
	header  http.Header
	body    []byte
	expires time.Time
}

// Guard enforces a token-bucket budget per window plus any upstream
// Retry-After cooldown.
type Guard struct {
	decl  Declaration
	clock clockwork.Clock

	mu       sync.Mutex
	buckets  []*bucket
	cooldown time.Time
	cache    map[string]cacheEntry
}

type Option func(*Guard)

func WithClock(clock clockwork.Clock) Option {
	return func(g *Guard) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WrapHTTP wraps an http.Client with rate-limit enforcement.
func WrapHTTP(decl Declaration, base *http.Client, opts ...Option) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	client := *base
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client.Transport = &roundTripper{
		base:  transport,
		guard: NewGuard(decl, opts...),
	}
	return &client
}

func NewGuard(decl Declaration, opts ...Option) *Guard {
	g := &Guard{
		decl:  decl,
		clock: clockwork.NewRealClock(),
		cache: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(g)
	}

	now := g.clock.Now()
	for _, window := range []Window{Minute, Hour, Day} {
		limit, ok := decl.Limits()[window]
		if !ok {
			continue
		}
		g.buckets = append(g.buckets, &bucket{
			window:   window,
			capacity: limit,
			tokens:   float64(limit),
			last:     now,
		})
	}
	return g
}

type roundTripper struct {
	base  http.RoundTripper
	guard *Guard
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	decision := rt.guard.ShouldCall()
	if !decision.Allowed {
		blockedTotal.WithLabelValues(rt.guard.decl.ProviderName(), decision.Reason).Inc()
		if cached := rt.guard.cachedResponse(req); cached != nil {
			cacheHits.WithLabelValues(rt.guard.decl.ProviderName()).Inc()
			return cached, nil
		}
		return nil, RateLimitError{
			Provider: rt.guard.decl.ProviderName(),
			Reason:   decision.Reason,
			RetryAt:  decision.RetryAt,
		}
	}

	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	rt.guard.RecordResponse(resp.StatusCode, resp.Header)
	return rt.guard.maybeCacheResponse(req, resp)
}

// ShouldCall consumes one token from every window when allowed.
func (g *Guard) ShouldCall() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.decl.HasLimits() {
		return Decision{Allowed: false, Reason: "disabled"}
	}

	now := g.clock.Now()
	if !g.cooldown.IsZero() && now.Before(g.cooldown) {
		return Decision{Allowed: false, Reason: "cooldown", RetryAt: g.cooldown}
	}

	for _, b := range g.buckets {
		if b.capacity <= 0 {
			return Decision{Allowed: false, Reason: "disabled"}
		}
		refill(b, now)
		if b.tokens < 1 {
			retryAt := now.Add(time.Duration((1 - b.tokens) * float64(b.window.Duration()) / float64(b.capacity)))
			return Decision{Allowed: false, Reason: "budget", RetryAt: retryAt}
		}
	}
	for _, b := range g.buckets {
		b.tokens--
		remainingGauge.WithLabelValues(g.decl.ProviderName(), b.window.String()).Set(b.tokens)
	}

	return Decision{Allowed: true}
}

// RecordResponse records the status and applies a Retry-After cooldown.
func (g *Guard) RecordResponse(status int, headers http.Header) {
	g.mu.Lock()
	defer g.mu.Unlock()

	lastStatusGauge.WithLabelValues(g.decl.ProviderName()).Set(float64(status))

	if status != http.StatusTooManyRequests && status != http.StatusServiceUnavailable {
		return
	}
	retryAfter := parseRetryAfter(headers.Get("Retry-After"), g.clock.Now())
	if retryAfter <= 0 {
		return
	}
	g.cooldown = g.clock.Now().Add(retryAfter)
	retryAfterGauge.WithLabelValues(g.decl.ProviderName()).Set(retryAfter.Seconds())
}

func (g *Guard) cachedResponse(req *http.Request) *http.Response {
	if g.decl.CacheTTL() <= 0 || req.Method != http.MethodGet {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.cache[cacheKey(req)]
	if !ok || g.clock.Now().After(entry.expires) {
		return nil
	}
	return cloneResponse(req, entry.status, entry.header, entry.body)
}

func (g *Guard) maybeCacheResponse(req *http.Request, resp *http.Response) (*http.Response, error) {
	if g.decl.CacheTTL() <= 0 || req.Method != http.MethodGet || resp.StatusCode/100 != 2 {
		return resp, nil
	}
	buf, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	clone := cloneResponse(req, resp.StatusCode, resp.Header, buf)

	g.mu.Lock()
	g.cache[cacheKey(req)] = cacheEntry{
		status:  resp.StatusCode,
		header:  clone.Header.Clone(),
		body:    buf,
		expires: g.clock.Now().Add(g.decl.CacheTTL()),
	}
	g.mu.Unlock()

	return clone, nil
}

// parseRetryAfter accepts both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		return at.Sub(now)
	}
	return 0
}

func refill(b *bucket, now time.Time) {
	elapsed := now.Sub(b.last).Seconds()
	if elapsed <= 0 {
		return
	}
	rate := float64(b.capacity) / b.window.Duration().Seconds()
	b.tokens = min(float64(b.capacity), b.tokens+elapsed*rate)
	b.last = now
}

// Only GETs are cached and the authorization header is not part of the key,
// so a re-login does not orphan the cached entry.
func cacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}

func cloneResponse(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:        header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
