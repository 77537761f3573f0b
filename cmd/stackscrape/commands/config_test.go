package commands

import (
	"testing"
	"time"

	"stackscrape/internal/fetcher"

	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnv(env(nil)))
	require.Equal(t, "0.0.0.0:5000", cfg.Addr())

	require.NoError(t, cfg.applyEnv(env(map[string]string{PortEnv: "8123"})))
	require.Equal(t, 8123, cfg.Port)

	require.Error(t, cfg.applyEnv(env(map[string]string{PortEnv: "http"})))
	require.Error(t, cfg.applyEnv(env(map[string]string{PortEnv: "70000"})))
	require.Equal(t, 8123, cfg.Port)
}

func TestFetcherOptions(t *testing.T) {
	scraper := DefaultConfig().Scraper
	scraper.Backoff.MaxRetries = 5
	scraper.Backoff.MaxTotalWaitSeconds = 600

	require.Equal(t, fetcher.Options{
		UserAgent:        fetcher.DefaultUserAgent,
		Timeout:          30 * time.Second,
		CloudflareBypass: true,
		Backoff: fetcher.BackoffPolicy{
			InitialDelay: time.Minute,
			Multiplier:   2,
			MaxRetries:   5,
			MaxTotalWait: 10 * time.Minute,
		},
	}, scraper.FetcherOptions())

	scraper.DisableCloudflareBypass = true
	require.False(t, scraper.FetcherOptions().CloudflareBypass)
}

func TestFormatting(t *testing.T) {
	ts := int64(1710592205)
	require.Equal(t, "2024-03-16 12:30:05", formatDate(&ts))
	require.Equal(t, "-", formatDate(nil))

	ids, err := parseIds([]string{"1", "22"})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 22}, ids)

	_, err = parseIds([]string{"abc"})
	require.Error(t, err)
}
