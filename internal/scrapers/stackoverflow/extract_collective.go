package stackoverflow

import (
	"slices"
	"strings"

	"stackscrape/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// collectiveRef is a link to a collective as found on a post or in the collectives directory.
type collectiveRef struct {
	Href string
	Name string
	Slug string
}

// collectivePage is what the page of a collective itself says about it.
type collectivePage struct {
	Tags          []string
	Description   string
	ExternalLinks []ExternalLink
}

// MaxDirectoryCollectives is how many collectives of the directory are visited.
const MaxDirectoryCollectives = 9

func newCollectiveRef(anchor *goquery.Selection) (collectiveRef, bool) {
	href, exists := anchor.Attr("href")
	if !exists || href == "" {
		return collectiveRef{}, false
	}
	return collectiveRef{
		Href: href,
		Name: htmlutil.CleanText(anchor),
		Slug: htmlutil.LastPathSegment(href),
	}, true
}

func extractCollectiveRef(doc *goquery.Document) *collectiveRef {
	ref, ok := newCollectiveRef(doc.Find("div.themed-tc a").First())
	if !ok {
		return nil
	}
	return &ref
}

func extractCollectivePage(doc *goquery.Document) collectivePage {
	page := collectivePage{
		Tags:          []string{},
		ExternalLinks: []ExternalLink{},
		Description:   htmlutil.CleanText(doc.Find("div.fs-body1.fc-black-500.mb6.wmx7").First()),
	}

	doc.Find("a.post-tag").Each(func(_ int, tag *goquery.Selection) {
		name := htmlutil.CleanText(tag)
		if name == "" || slices.Contains(page.Tags, name) {
			return
		}
		page.Tags = append(page.Tags, name)
	})

	doc.Find(`optgroup[label="External links"] option`).Each(func(_ int, option *goquery.Selection) {
		page.ExternalLinks = append(page.ExternalLinks, ExternalLink{
			Type: strings.ToLower(htmlutil.CleanText(option)),
			Link: option.AttrOr("data-url", ""),
		})
	})

	return page
}

// collectiveDirectory is the `/collectives-all` page, descriptions are matched to
// collectives by position.
type collectiveDirectory struct {
	Collectives  []collectiveRef
	Descriptions []string
}

func (d collectiveDirectory) description(i int) string {
	if i < len(d.Descriptions) {
		return d.Descriptions[i]
	}
	return ""
}

func extractCollectiveDirectory(doc *goquery.Document) collectiveDirectory {
	var dir collectiveDirectory

	doc.Find("span.fs-body1.v-truncate2.ow-break-word").Each(func(_ int, span *goquery.Selection) {
		dir.Descriptions = append(dir.Descriptions, htmlutil.CleanText(span))
	})

	doc.Find("a.js-gps-track[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		if len(dir.Collectives) >= MaxDirectoryCollectives {
			return false
		}
		if !strings.Contains(anchor.AttrOr("href", ""), "/collectives/") {
			return true
		}
		ref, ok := newCollectiveRef(anchor)
		if ok {
			dir.Collectives = append(dir.Collectives, ref)
		}
		return true
	})

	return dir
}
