// Package stackoverflow scrapes questions, answers and collectives off the rendered pages of
// stackoverflow.com and assembles them into records shaped like the official API's.
//
// Every record is built from several pages, the main page (question or answer) is required
// while secondary pages (timeline, profile, collective) only enrich the record. A failing
// secondary page is reported as a warning and leaves the fields it would have provided unset.
package stackoverflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stackscrape/internal/components/assert"
	"stackscrape/internal/components/telemetry"
	"stackscrape/internal/fetcher"
	"stackscrape/pkg/htmlutil"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("stackscrape/internal/scrapers/stackoverflow")

const (
	report_question_page     = "question.page"
	report_question_timeline = "question.timeline"
	report_answer_page       = "answer.page"
	report_answer_timeline   = "answer.timeline"
	report_owner_profile     = "owner.profile"
	report_collective_page   = "collective.page"
	report_post_markdown     = "post.markdown"
	report_listing_total     = "listing.total"
)

const DefaultBaseURL = "https://stackoverflow.com"

// Fetcher is implemented by *fetcher.Fetcher.
//
// note: fault injection point
type Fetcher interface {
	Fetch(ctx context.Context, link string) (fetcher.Result, error)
}

type Options struct {
	// BaseURL is the root every page is fetched from, defaults to DefaultBaseURL.
	BaseURL string
	// Concurrency is how many entities of a batch are assembled at once, values below 2
	// assemble them one after the other.
	Concurrency int
}

type Client struct {
	fetcher     Fetcher
	baseUrl     string
	concurrency int

	sanitizer *bluemonday.Policy
	markdown  *converter.Converter

	tel telemetry.API
}

func NewClient(f Fetcher, opts Options, tel telemetry.API) *Client {
	assert.NotNil(f, "fetcher")
	assert.NotNil(tel, "telemetry")

	baseUrl := strings.TrimRight(opts.BaseURL, "/")
	if baseUrl == "" {
		baseUrl = DefaultBaseURL
	}

	return &Client{
		fetcher:     f,
		baseUrl:     baseUrl,
		concurrency: opts.Concurrency,
		sanitizer:   bluemonday.UGCPolicy(),
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		tel: telemetry.NewScopedAPI("stackoverflow", tel),
	}
}

// BaseURL returns the root pages are fetched from.
func (c *Client) BaseURL() string {
	return c.baseUrl
}

// absolute turns a site relative href into an absolute link.
func (c *Client) absolute(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.baseUrl + href
}

// fetchMain fetches a page the record cannot be built without, any failure is an error.
func (c *Client) fetchMain(ctx context.Context, link string) (*goquery.Document, error) {
	res, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, &FetchError{URL: link, StatusCode: res.StatusCode}
	}
	return htmlutil.ParseDocument(res.Body), nil
}

// fetchSecondary fetches a page that only enriches a record. A nil document without an
// error means the page was unavailable and the fields it provides should be left unset.
//
// Cancellation and exhausted rate limiting are still errors, they would fail every other
// page of the request too.
func (c *Client) fetchSecondary(ctx context.Context, reportId, link string) (*goquery.Document, error) {
	res, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, fetcher.ErrRateLimited) {
			return nil, err
		}
		c.tel.ReportWarning(reportId, link, err)
		return nil, nil
	}
	if !res.OK() {
		c.tel.ReportWarning(reportId, link, fmt.Sprintf("status %d", res.StatusCode))
		return nil, nil
	}
	return htmlutil.ParseDocument(res.Body), nil
}

func (c *Client) fetchTimeline(ctx context.Context, reportId string, postId int64) (*Timeline, error) {
	doc, err := c.fetchSecondary(ctx, reportId, fmt.Sprintf("%s/posts/%d/timeline", c.baseUrl, postId))
	if err != nil || doc == nil {
		return nil, err
	}
	timeline := extractTimeline(doc)
	return &timeline, nil
}

// fetchOwner resolves the owner of a post and visits its profile when it has one.
func (c *Client) fetchOwner(ctx context.Context, by *byline, timeline *Timeline) (Owner, error) {
	ref := resolveOwner(by, timeline)
	if !ref.Exists() {
		return buildOwner(ref, "", nil), nil
	}

	link := c.absolute(ref.ProfileHref)
	doc, err := c.fetchSecondary(ctx, report_owner_profile, link)
	if err != nil {
		return Owner{}, err
	}
	if doc == nil {
		return buildOwner(ref, link, nil), nil
	}
	p := extractProfile(doc)
	return buildOwner(ref, link, &p), nil
}

func (c *Client) fetchCollective(ctx context.Context, ref collectiveRef) (*Collective, error) {
	link := c.absolute(ref.Href)
	collective := &Collective{
		Tags:          []string{},
		ExternalLinks: []ExternalLink{},
		Link:          link,
		Name:          ref.Name,
		Slug:          ref.Slug,
	}

	doc, err := c.fetchSecondary(ctx, report_collective_page, link)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return collective, nil
	}

	page := extractCollectivePage(doc)
	collective.Tags = page.Tags
	collective.ExternalLinks = page.ExternalLinks
	collective.Description = page.Description
	return collective, nil
}

// body returns the plain text and markdown renditions of a post body.
func (c *Client) body(p post) (text *string, markdown *string) {
	if p.Body == nil {
		return nil, nil
	}
	if p.BodyHTML == nil {
		return p.Body, nil
	}

	sanitized := c.sanitizer.Sanitize(*p.BodyHTML)
	md, err := c.markdown.ConvertString(sanitized, converter.WithDomain(c.baseUrl))
	if err != nil {
		c.tel.ReportWarning(report_post_markdown, err)
		return p.Body, nil
	}
	md = strings.TrimSpace(md)
	return p.Body, &md
}

// batch assembles every input with `assemble`, results are in the order of inputs and
// inputs for which assemble returned false are left out. The first error cancels the
// remaining work and is returned.
func batch[I, T any](ctx context.Context, concurrency int, inputs []I, assemble func(ctx context.Context, input I) (T, bool, error)) ([]T, error) {
	found := make([]bool, len(inputs))
	results := make([]T, len(inputs))

	if concurrency < 2 {
		for i, input := range inputs {
			item, ok, err := assemble(ctx, input)
			if err != nil {
				return nil, err
			}
			results[i], found[i] = item, ok
		}
	} else {
		group, gctx := errgroup.WithContext(ctx)
		group.SetLimit(concurrency)
		for i, input := range inputs {
			group.Go(func() error {
				item, ok, err := assemble(gctx, input)
				if err != nil {
					return err
				}
				results[i], found[i] = item, ok
				return nil
			})
		}
		err := group.Wait()
		if err != nil {
			return nil, err
		}
	}

	out := make([]T, 0, len(inputs))
	for i, item := range results {
		if found[i] {
			out = append(out, item)
		}
	}
	return out, nil
}
