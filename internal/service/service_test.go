package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"stackscrape/internal/components/telemetry"
	"stackscrape/internal/fetcher"
	"stackscrape/internal/scrapers/stackoverflow"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type fakeScraper struct {
	questions   []stackoverflow.Question
	answers     []stackoverflow.Answer
	collectives []stackoverflow.Collective
	total       int64
	err         error

	calledIds     []int64
	calledOptions stackoverflow.QueryOptions
	calledListing stackoverflow.ListingQuery
	calls         int
}

func (f *fakeScraper) Questions(ctx context.Context, ids []int64, opts stackoverflow.QueryOptions) ([]stackoverflow.Question, error) {
	f.calls++
	f.calledIds, f.calledOptions = ids, opts
	return f.questions, f.err
}

func (f *fakeScraper) Answers(ctx context.Context, ids []int64, opts stackoverflow.QueryOptions) ([]stackoverflow.Answer, error) {
	f.calls++
	f.calledIds, f.calledOptions = ids, opts
	return f.answers, f.err
}

func (f *fakeScraper) QuestionAnswers(ctx context.Context, ids []int64, opts stackoverflow.QueryOptions) ([]stackoverflow.Answer, error) {
	f.calls++
	f.calledIds, f.calledOptions = ids, opts
	return f.answers, f.err
}

func (f *fakeScraper) ListQuestions(ctx context.Context, query stackoverflow.ListingQuery, opts stackoverflow.QueryOptions) ([]stackoverflow.Question, error) {
	f.calls++
	f.calledListing, f.calledOptions = query, opts
	return f.questions, f.err
}

func (f *fakeScraper) ListingTotal(ctx context.Context, query stackoverflow.ListingQuery) (int64, error) {
	f.calls++
	f.calledListing = query
	return f.total, f.err
}

func (f *fakeScraper) Collectives(ctx context.Context) ([]stackoverflow.Collective, error) {
	f.calls++
	return f.collectives, f.err
}

func i64(v int64) *int64 {
	return &v
}

func get(t testing.TB, scraper ScraperAPI, target string) (int, string) {
	svc := NewService(scraper, WithCustomTelemetryAPI(&telemetry.RecorderAPI{}))
	server := httptest.NewServer(svc.Handler())
	t.Cleanup(server.Close)

	res, err := http.Get(server.URL + target)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestSiteIsRequired(t *testing.T) {
	for _, target := range []string{
		"/questions",
		"/questions/1",
		"/questions/1/answers",
		"/answers/1",
		"/collectives",
		"/collectives?site=serverfault",
		"/questions?site=serverfault",
		"/questions/1?site=",
		"/questions/1?filter=none",
	} {
		scraper := &fakeScraper{}
		status, body := get(t, scraper, target)
		require.Equal(t, http.StatusBadRequest, status, target)
		require.Contains(t, body, `"error"`, target)
		require.Zero(t, scraper.calls, target)
	}
}

func TestSiteIsCaseInsensitive(t *testing.T) {
	status, _ := get(t, &fakeScraper{}, "/questions/1?site=StackOverflow")
	require.Equal(t, http.StatusOK, status)
}

func TestFilterNone(t *testing.T) {
	for _, target := range []string{
		"/questions?site=stackoverflow&filter=none",
		"/questions?site=stackoverflow&filter=none&sort=bogus&tagged=a;b;c;d&page=0",
		"/questions/1;2?site=stackoverflow&filter=none&order=sideways",
		"/answers/abc?site=stackoverflow&filter=none",
		"/questions/1/answers?site=stackoverflow&filter=none",
	} {
		scraper := &fakeScraper{}
		status, body := get(t, scraper, target)
		require.Equal(t, http.StatusOK, status, target)
		require.JSONEq(t, `{}`, body, target)
		require.Zero(t, scraper.calls, target)
	}
}

func TestInvalidParams(t *testing.T) {
	cases := []struct {
		target   string
		contains string
	}{
		{target: "/questions?site=stackoverflow&sort=vots", contains: `did you mean \"votes\"`},
		{target: "/questions?site=stackoverflow&order=ascending", contains: "valid options are: desc, asc"},
		{target: "/questions?site=stackoverflow&filter=withbdy", contains: `did you mean \"withbody\"`},
		{target: "/questions?site=stackoverflow&tagged=a;b;c;d", contains: "up to 3 tags"},
		{target: "/questions?site=stackoverflow&page=0", contains: "'page'"},
		{target: "/questions?site=stackoverflow&pagesize=1000", contains: "'pagesize'"},
		{target: "/questions?site=stackoverflow&min=abc&sort=votes", contains: "'min'"},
		{target: "/questions/1?site=stackoverflow&sort=hot", contains: "invalid sort"},
		{target: "/questions/1;x?site=stackoverflow", contains: `invalid id \"x\"`},
		{target: "/answers/;?site=stackoverflow", contains: "at least one id"},
		{target: "/questions?site=stackovrflow", contains: `did you mean \"stackoverflow\"`},
		{target: "/collectives?site=stackoverflow&order=up", contains: "invalid order"},
	}

	for _, c := range cases {
		scraper := &fakeScraper{}
		status, body := get(t, scraper, c.target)
		require.Equal(t, http.StatusBadRequest, status, c.target)
		require.Contains(t, body, c.contains, c.target)
		require.Zero(t, scraper.calls, c.target)
	}
}

func TestQuestionsSortedAndFiltered(t *testing.T) {
	scraper := &fakeScraper{questions: []stackoverflow.Question{
		{QuestionID: 1, Score: i64(5), Tags: []string{}},
		{QuestionID: 2, Score: i64(-2), Tags: []string{}},
		{QuestionID: 3, Score: i64(10), Tags: []string{}},
	}}

	status, body := get(t, scraper, "/questions/1;2;3?site=stackoverflow&sort=votes&order=asc&min=0&filter=withbody")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []int64{1, 2, 3}, scraper.calledIds)
	require.True(t, scraper.calledOptions.WithBody)

	var response struct {
		Items []stackoverflow.Question `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &response))

	var ids []int64
	for _, question := range response.Items {
		ids = append(ids, question.QuestionID)
	}
	require.Equal(t, []int64{1, 3}, ids)
}

func TestTotal(t *testing.T) {
	scraper := &fakeScraper{answers: []stackoverflow.Answer{{AnswerID: 1}, {AnswerID: 2}}}
	status, body := get(t, scraper, "/questions/7/answers?site=stackoverflow&filter=total&min=100&sort=votes")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"total": 2}`, body)
	require.Equal(t, []int64{7}, scraper.calledIds)
}

func TestListing(t *testing.T) {
	scraper := &fakeScraper{questions: []stackoverflow.Question{}}
	status, body := get(t, scraper, "/questions?site=stackoverflow&tagged=go;http&sort=week&page=2&pagesize=5")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"items": []}`, body)

	diff := cmp.Diff(stackoverflow.ListingQuery{
		Tags:     []string{"go", "http"},
		Sort:     "week",
		Page:     2,
		PageSize: 5,
	}, scraper.calledListing)
	require.Empty(t, diff)
}

func TestListingTotal(t *testing.T) {
	scraper := &fakeScraper{total: 3}
	status, body := get(t, scraper, "/questions?site=stackoverflow&filter=total")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"total": 3}`, body)
	require.Equal(t, stackoverflow.DefaultPageSize, scraper.calledListing.PageSize)
	require.Equal(t, 1, scraper.calledListing.Page)
}

func TestUpstreamFailure(t *testing.T) {
	for _, err := range []error{
		&stackoverflow.FetchError{URL: "https://stackoverflow.com/questions/2", StatusCode: 404},
		fetcher.ErrRateLimited,
		io.ErrUnexpectedEOF,
	} {
		status, body := get(t, &fakeScraper{err: err}, "/questions/2?site=stackoverflow")
		require.Equal(t, http.StatusInternalServerError, status)
		require.Contains(t, body, `"error"`)
	}
}

func TestCollectivesSortedByName(t *testing.T) {
	scraper := &fakeScraper{collectives: []stackoverflow.Collective{
		{Name: "Go", Slug: "go"},
		{Name: "AWS", Slug: "aws"},
		{Name: "R Language", Slug: "r-language"},
	}}

	names := func(target string) []string {
		status, body := get(t, scraper, target)
		require.Equal(t, http.StatusOK, status)
		var collectives []stackoverflow.Collective
		require.NoError(t, json.Unmarshal([]byte(body), &collectives))
		var out []string
		for _, c := range collectives {
			out = append(out, c.Name)
		}
		return out
	}

	require.Equal(t, []string{"R Language", "Go", "AWS"}, names("/collectives?site=stackoverflow"))
	require.Equal(t, []string{"AWS", "Go", "R Language"}, names("/collectives?site=StackOverflow&order=asc"))
}

func TestHealth(t *testing.T) {
	status, body := get(t, &fakeScraper{}, "/healthz")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"status": "ok"}`, body)
}
