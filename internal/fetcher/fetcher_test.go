package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"stackscrape/internal/components/chrono"
	"stackscrape/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

// rateLimitedServer answers 429 `limited` times before answering `status`.
func rateLimitedServer(t testing.TB, limited int32, status int) (*httptest.Server, *int32) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= limited {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte("<html>ok</html>"))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func newTestFetcher(clock chrono.API, policy BackoffPolicy) (*Fetcher, *telemetry.RecorderAPI) {
	tel := &telemetry.RecorderAPI{}
	return New(Options{Backoff: policy}, clock, tel), tel
}

func TestFetchBacksOffExponentially(t *testing.T) {
	server, calls := rateLimitedServer(t, 3, http.StatusOK)
	clock := chrono.NewFakeImpl(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	f, tel := newTestFetcher(clock, DefaultBackoffPolicy())

	res, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Equal(t, "<html>ok</html>", string(res.Body))
	require.EqualValues(t, 4, atomic.LoadInt32(calls))
	require.Equal(t, []time.Duration{time.Minute, 2 * time.Minute, 4 * time.Minute}, clock.Sleeps())
	require.Len(t, tel.Reports("warning"), 3)
}

func TestFetchReturnsOtherStatusesAsIs(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusForbidden} {
		server, calls := rateLimitedServer(t, 0, status)
		clock := chrono.NewFakeImpl(time.Now())
		f, _ := newTestFetcher(clock, DefaultBackoffPolicy())

		res, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		require.Equal(t, status, res.StatusCode)
		require.False(t, res.OK())
		require.EqualValues(t, 1, atomic.LoadInt32(calls))
		require.Empty(t, clock.Sleeps())
	}
}

func TestFetchMaxRetries(t *testing.T) {
	server, calls := rateLimitedServer(t, 100, http.StatusOK)
	clock := chrono.NewFakeImpl(time.Now())
	f, _ := newTestFetcher(clock, BackoffPolicy{
		InitialDelay: time.Second,
		Multiplier:   2,
		MaxRetries:   2,
	})

	_, err := f.Fetch(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrRateLimited)
	require.EqualValues(t, 3, atomic.LoadInt32(calls))
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.Sleeps())
}

func TestFetchMaxTotalWait(t *testing.T) {
	server, _ := rateLimitedServer(t, 100, http.StatusOK)
	clock := chrono.NewFakeImpl(time.Now())
	f, _ := newTestFetcher(clock, BackoffPolicy{
		InitialDelay: time.Second,
		Multiplier:   2,
		MaxTotalWait: 5 * time.Second,
	})

	_, err := f.Fetch(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrRateLimited)
	// 1s + 2s fit in the budget, the next 4s would not
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.Sleeps())
}

func TestFetchMaxTotalWaitCountsRequestTime(t *testing.T) {
	clock := chrono.NewFakeImpl(time.Now())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// every request takes 3s of wall time
		clock.Advance(3 * time.Second)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	f, _ := newTestFetcher(clock, BackoffPolicy{
		InitialDelay: time.Second,
		Multiplier:   2,
		MaxTotalWait: 5 * time.Second,
	})

	_, err := f.Fetch(context.Background(), server.URL)
	require.ErrorIs(t, err, ErrRateLimited)
	// 3s + 1s fit in the budget, 7s + 2s would not
	require.Equal(t, []time.Duration{time.Second}, clock.Sleeps())
}

func TestFetchCancelledWhileBackingOff(t *testing.T) {
	server, _ := rateLimitedServer(t, 100, http.StatusOK)
	f, _ := newTestFetcher(chrono.NewStandardImpl(), DefaultBackoffPolicy())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, server.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetchTransportError(t *testing.T) {
	server, _ := rateLimitedServer(t, 0, http.StatusOK)
	server.Close()

	f, tel := newTestFetcher(chrono.NewFakeImpl(time.Now()), DefaultBackoffPolicy())
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrRateLimited)
	require.NotEmpty(t, tel.Reports("broken"))
}

func TestFetchCapturesExchanges(t *testing.T) {
	server, _ := rateLimitedServer(t, 1, http.StatusOK)
	dir := t.TempDir()
	capture, err := NewDirCapture(dir)
	require.NoError(t, err)

	f := New(
		Options{Backoff: DefaultBackoffPolicy(), Capture: capture},
		chrono.NewFakeImpl(time.Now()),
		&telemetry.RecorderAPI{},
	)
	_, err = f.Fetch(context.Background(), server.URL+"/questions/1")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "00001.txt", entries[0].Name())

	limited, err := os.ReadFile(filepath.Join(dir, "00001.txt"))
	require.NoError(t, err)
	require.Contains(t, string(limited), "GET "+server.URL+"/questions/1")
	require.Contains(t, string(limited), "---- RESPONSE ----\n\n429")

	ok, err := os.ReadFile(filepath.Join(dir, "00002.txt"))
	require.NoError(t, err)
	require.Contains(t, string(ok), "<html>ok</html>")
}
