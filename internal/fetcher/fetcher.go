// Package fetcher is the only network primitive of the scraper, it issues GET requests and
// transparently waits out rate limiting with exponential backoff.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"stackscrape/internal/components/assert"
	"stackscrape/internal/components/chrono"
	"stackscrape/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_fetch_request      = "fetch.request"
	report_fetch_rate_limited = "fetch.rate-limited"
	report_fetch_capture      = "fetch.capture"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// ErrRateLimited is returned when the upstream kept responding with 429 past the
// bounds of the BackoffPolicy.
var ErrRateLimited = errors.New("upstream rate limit did not clear")

// Result is the status and raw body of a single fetched page.
type Result struct {
	URL        string
	StatusCode int
	Body       []byte
}

// OK reports whether the page was fetched with a 2xx status.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// BackoffPolicy controls how long the fetcher waits after a 429 response. The delay starts at
// InitialDelay and is multiplied by Multiplier after every retry, there is no jitter.
//
// MaxTotalWait is measured on the clock from the first request, so time spent waiting on
// responses counts too. A zero MaxRetries or MaxTotalWait leaves that dimension unbounded.
type BackoffPolicy struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxRetries   int
	MaxTotalWait time.Duration
}

// DefaultBackoffPolicy waits 60 seconds, then doubles, forever.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		InitialDelay: time.Minute,
		Multiplier:   2,
	}
}

type Options struct {
	UserAgent string
	// Timeout of a single request, zero leaves the transport default.
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing requests, zero disables throttling.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport with browser-like TLS fingerprinting.
	CloudflareBypass bool
	Backoff          BackoffPolicy
	// Capture, if not nil, receives every exchange.
	Capture Capture
}

type Fetcher struct {
	http    *resty.Client
	policy  BackoffPolicy
	capture Capture
	clock   chrono.API
	tel     telemetry.API

	exchanges atomic.Uint64
}

func New(opts Options, clock chrono.API, tel telemetry.API) *Fetcher {
	assert.NotNil(clock, "clock")
	assert.NotNil(tel, "telemetry")

	tel = telemetry.NewScopedAPI("fetcher", tel)

	httpClient := resty.New()
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpClient.SetHeader("user-agent", userAgent)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)

	policy := opts.Backoff
	if policy.InitialDelay <= 0 {
		policy.InitialDelay = DefaultBackoffPolicy().InitialDelay
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = DefaultBackoffPolicy().Multiplier
	}

	return &Fetcher{
		http:    httpClient,
		policy:  policy,
		capture: opts.Capture,
		clock:   clock,
		tel:     tel,
	}
}

// Fetch GETs `link`. Any status other than 429 is returned as-is, it is up to the caller to
// decide whether a non-2xx page is fatal. 429 responses are retried after the backoff delay.
//
// An error is only returned on transport failures, context cancellation or when the backoff
// policy gives up (ErrRateLimited).
func (f *Fetcher) Fetch(ctx context.Context, link string) (Result, error) {
	delay := f.policy.InitialDelay
	start := f.clock.Now()

	for retries := 0; ; retries++ {
		res, err := f.http.R().
			SetContext(ctx).
			Get(link)
		if err != nil {
			f.tel.ReportBroken(report_fetch_request, fmt.Errorf("get: %w", err), link)
			return Result{}, fmt.Errorf("fetch %s: %w", link, err)
		}
		f.captureExchange(res)

		if res.StatusCode() != http.StatusTooManyRequests {
			return Result{
				URL:        link,
				StatusCode: res.StatusCode(),
				Body:       res.Body(),
			}, nil
		}

		if f.policy.MaxRetries > 0 && retries >= f.policy.MaxRetries {
			return Result{}, fmt.Errorf("fetch %s: %w after %d retries", link, ErrRateLimited, retries)
		}
		waited := f.clock.Now().Sub(start)
		if f.policy.MaxTotalWait > 0 && waited+delay > f.policy.MaxTotalWait {
			return Result{}, fmt.Errorf("fetch %s: %w after waiting %s", link, ErrRateLimited, waited)
		}

		f.tel.ReportWarning(report_fetch_rate_limited, link, delay.String())
		err = f.clock.Sleep(ctx, delay)
		if err != nil {
			return Result{}, fmt.Errorf("fetch %s: %w", link, err)
		}
		delay = time.Duration(float64(delay) * f.policy.Multiplier)
	}
}

func (f *Fetcher) captureExchange(res *resty.Response) {
	if f.capture == nil {
		return
	}
	name := fmt.Sprintf("%05d.txt", f.exchanges.Add(1))
	err := f.capture.Write(name, formatExchange(res))
	if err != nil {
		f.tel.ReportWarning(report_fetch_capture, name, err)
	}
}
