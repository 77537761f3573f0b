package commands

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"stackscrape/internal/components/telemetry"
	"stackscrape/internal/fetcher"
	"stackscrape/internal/scrapers/stackoverflow"
)

// PortEnv overrides the port of the configuration file.
const PortEnv = "STACKOVERFLOW_API_PORT"

// BackoffConfig is fetcher.BackoffPolicy in seconds, a MaxRetries or MaxTotalWaitSeconds
// of 0 leaves the backoff unbounded.
type BackoffConfig struct {
	InitialDelaySeconds int     `json:"initial_delay_seconds"`
	Multiplier          float64 `json:"multiplier"`
	MaxRetries          int     `json:"max_retries"`
	MaxTotalWaitSeconds int     `json:"max_total_wait_seconds"`
}

// ScraperConfig configures the fetcher and the stackoverflow client. DisableCloudflareBypass
// uses the plain go transport instead of the browser-like one, CaptureDir (when set) is where
// every fetched exchange is written to.
type ScraperConfig struct {
	BaseURL                 string        `json:"base_url"`
	UserAgent               string        `json:"user_agent"`
	Concurrency             int           `json:"concurrency"`
	RequestsPerSecond       float64       `json:"requests_per_second"`
	TimeoutSeconds          int           `json:"timeout_seconds"`
	DisableCloudflareBypass bool          `json:"disable_cloudflare_bypass"`
	CaptureDir              string        `json:"capture_dir"`
	Backoff                 BackoffConfig `json:"backoff"`
}

type Config struct {
	Host      string           `json:"host"`
	Port      int              `json:"port"`
	Scraper   ScraperConfig    `json:"scraper"`
	Telemetry telemetry.Config `json:"telemetry"`
}

func DefaultConfig() Config {
	return Config{
		Host: "0.0.0.0",
		Port: 5000,
		Scraper: ScraperConfig{
			BaseURL:        stackoverflow.DefaultBaseURL,
			UserAgent:      fetcher.DefaultUserAgent,
			Concurrency:    1,
			TimeoutSeconds: 30,
			Backoff: BackoffConfig{
				InitialDelaySeconds: 60,
				Multiplier:          2,
			},
		},
	}
}

// applyEnv applies environment overrides, getenv is os.Getenv outside of tests.
func (c *Config) applyEnv(getenv func(string) string) error {
	raw := getenv(PortEnv)
	if raw == "" {
		return nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be a port number, got %q", PortEnv, raw)
	}
	c.Port = port
	return nil
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c ScraperConfig) FetcherOptions() fetcher.Options {
	return fetcher.Options{
		UserAgent:         c.UserAgent,
		Timeout:           time.Duration(c.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.RequestsPerSecond,
		CloudflareBypass:  !c.DisableCloudflareBypass,
		Backoff: fetcher.BackoffPolicy{
			InitialDelay: time.Duration(c.Backoff.InitialDelaySeconds) * time.Second,
			Multiplier:   c.Backoff.Multiplier,
			MaxRetries:   c.Backoff.MaxRetries,
			MaxTotalWait: time.Duration(c.Backoff.MaxTotalWaitSeconds) * time.Second,
		},
	}
}

func (c ScraperConfig) ClientOptions() stackoverflow.Options {
	return stackoverflow.Options{
		BaseURL:     c.BaseURL,
		Concurrency: c.Concurrency,
	}
}
