package stackoverflow

import (
	"fmt"
	"net/url"
	"strings"

	"stackscrape/internal/postprocess"
	"stackscrape/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultPageSize = 3
	MaxListingTags  = 3
)

// ListingQuery selects a page of the `/questions` listing.
type ListingQuery struct {
	Tags     []string
	Sort     postprocess.Sort
	Page     int
	PageSize int
}

// Path returns the path and query of the listing page on the site, like
// `/questions/tagged/[go]+[http]?tab=week&page=2`.
func (q ListingQuery) Path() string {
	path := "/questions"
	if len(q.Tags) > 0 {
		tags := make([]string, len(q.Tags))
		for i, tag := range q.Tags {
			tags[i] = fmt.Sprintf("[%s]", url.PathEscape(tag))
		}
		path += "/tagged/" + strings.Join(tags, "+")
	}

	var params []string
	if q.Sort.IsTab() {
		params = append(params, "tab="+string(q.Sort))
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	params = append(params, fmt.Sprintf("page=%d", page))

	return path + "?" + strings.Join(params, "&")
}

func (q ListingQuery) pageSize() int {
	if q.PageSize <= 0 {
		return DefaultPageSize
	}
	return q.PageSize
}

// extractListing returns the ids of the first `limit` question summaries of a listing page.
func extractListing(doc *goquery.Document, limit int) []int64 {
	var ids []int64
	doc.Find("div.s-post-summary").EachWithBreak(func(_ int, summary *goquery.Selection) bool {
		if len(ids) >= limit {
			return false
		}
		if id, ok := ParseInt(summary.AttrOr("data-post-id", "")); ok {
			ids = append(ids, id)
		}
		return true
	})
	return ids
}

// extractListingTotal reads the "12,345 questions" header of a listing page.
func extractListingTotal(doc *goquery.Document) (int64, bool) {
	header := doc.Find("div.fs-body3.flex--item.fl1.mr12").First()
	fields := strings.Fields(htmlutil.CleanText(header))
	if len(fields) == 0 {
		return 0, false
	}
	return ParseInt(fields[0])
}
