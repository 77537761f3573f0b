package stackoverflow

import (
	"fmt"
	"strings"

	"stackscrape/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// byline is the author anchor of a post, found only when the author is a linkable user.
type byline struct {
	Href string
	Name string
}

// post is what every post (question or answer) carries in its own markup.
type post struct {
	Score      *int64
	LastEdited *int64
	Byline     *byline
	Body       *string
	BodyHTML   *string
}

type bounty struct {
	Amount     *int64
	ClosesDate *int64
}

// questionPage holds everything found on a question page without following any links.
type questionPage struct {
	post

	ID           *int64
	Title        string
	Tags         []string
	ViewCount    *int64
	AnswerCount  int64
	LastActivity *int64
	Bounty       *bounty
	Collective   *collectiveRef
}

// answerBlock is a single `div.answer` of a question page.
type answerBlock struct {
	post

	ID                int64
	AcceptedIndicator bool
}

func extractByline(sel *goquery.Selection) *byline {
	anchor := sel.Find(`div.user-details[itemprop="author"] a`).First()
	href, exists := anchor.Attr("href")
	if !exists || href == "" {
		return nil
	}
	return &byline{
		Href: href,
		Name: htmlutil.CleanText(anchor),
	}
}

func extractPost(sel *goquery.Selection) post {
	p := post{
		Score:      intAttr(sel.Find("div.js-vote-count"), "data-value"),
		LastEdited: timestampFromTitle(sel.Find(`a[title="show all edits to this post"] span.relativetime`)),
		Byline:     extractByline(sel),
	}

	prose := sel.Find("div.s-prose").First()
	if prose.Length() > 0 {
		p.Body = ptr(htmlutil.CleanText(prose))
		bodyHtml, err := prose.Html()
		if err == nil {
			p.BodyHTML = ptr(strings.TrimSpace(bodyHtml))
		}
	}
	return p
}

func extractBounty(doc *goquery.Document) *bounty {
	aside := doc.Find("aside.js-bounty-notification").First()
	if aside.Length() == 0 {
		return nil
	}
	b := &bounty{
		ClosesDate: timestampFromTitle(aside.Find("span[title]")),
	}
	amountText := strings.TrimPrefix(strings.TrimSpace(aside.Find("span.s-badge__bounty").First().Text()), "+")
	if amount, ok := ParseInt(amountText); ok {
		b.Amount = &amount
	}
	return b
}

// pageQuestionID is the post id of the first vote container of a page, which is always the question's.
func pageQuestionID(doc *goquery.Document) *int64 {
	return intAttr(doc.Find("div.js-voting-container"), "data-post-id")
}

// extractQuestionPage returns false when the page has no question in it.
func extractQuestionPage(doc *goquery.Document) (questionPage, bool) {
	summary := doc.Find("div.question").First()
	if summary.Length() == 0 {
		return questionPage{}, false
	}

	page := questionPage{
		post:         extractPost(summary),
		ID:           intAttr(summary.Find("div.js-voting-container"), "data-post-id"),
		Title:        htmlutil.CleanText(doc.Find("a.question-hyperlink").First()),
		Tags:         []string{},
		AnswerCount:  int64(doc.Find("div.answer").Length()),
		LastActivity: timestampFromTitle(doc.Find(`a[href="?lastactivity"]`)),
		Bounty:       extractBounty(doc),
		Collective:   extractCollectiveRef(doc),
	}

	summary.Find("a.post-tag").Each(func(_ int, tag *goquery.Selection) {
		page.Tags = append(page.Tags, htmlutil.CleanText(tag))
	})

	if title, exists := doc.Find("div.flex--item.ws-nowrap.mb8").First().Attr("title"); exists {
		if views, ok := ParseViewCount(title); ok {
			page.ViewCount = &views
		}
	}

	return page, true
}

func extractAnswerBlock(sel *goquery.Selection, id int64) answerBlock {
	indicator := sel.Find("div.js-accepted-answer-indicator").First()
	return answerBlock{
		post:              extractPost(sel),
		ID:                id,
		AcceptedIndicator: indicator.Length() > 0 && !indicator.HasClass("d-none"),
	}
}

// findAnswerBlock finds the answer with the given id on a question page.
func findAnswerBlock(doc *goquery.Document, id int64) (answerBlock, bool) {
	sel := doc.Find(fmt.Sprintf("div#answer-%d", id)).First()
	if sel.Length() == 0 {
		return answerBlock{}, false
	}
	return extractAnswerBlock(sel, id), true
}

// extractAnswerBlocks returns every answer of a question page in page order, answers without
// a readable id are skipped.
func extractAnswerBlocks(doc *goquery.Document) []answerBlock {
	var blocks []answerBlock
	doc.Find("div.answer").Each(func(_ int, sel *goquery.Selection) {
		id, ok := ParseInt(sel.AttrOr("data-answerid", ""))
		if !ok {
			return
		}
		blocks = append(blocks, extractAnswerBlock(sel, id))
	})
	return blocks
}

// IsAccepted reports true when the accepted indicator is visible or the score is positive.
// A positive score counts even when the indicator is hidden or missing.
func IsAccepted(indicatorVisible bool, score *int64) bool {
	if indicatorVisible {
		return true
	}
	return score != nil && *score > 0
}
