package stackoverflow

import (
	"regexp"
	"strings"

	"stackscrape/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

var migratedQuestionRegex = regexp.MustCompile(`/questions/(\d+)/`)

// Timeline is everything read from the `/posts/{id}/timeline` page of a post.
type Timeline struct {
	ClosedDate         *int64
	ClosedReason       *string
	ProtectedDate      *int64
	LockedDate         *int64
	CommunityOwnedDate *int64
	Migration          *Migration

	CreationDate *int64
	// LastActivityDate is the most recent history row not made by the community user.
	LastActivityDate *int64

	// OwnerHref is the href of the last "owner" actor, OwnerName its text.
	OwnerHref string
	OwnerName string
	// LastActorName is the name in the second to last `td.ws-nowrap`, used when the
	// owner has no profile at all.
	LastActorName string
}

func extractTimeline(doc *goquery.Document) Timeline {
	var timeline Timeline
	unprotectedSeen := false

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		date := timestampFromTitle(row.Find("span.relativetime"))
		if date == nil {
			return
		}

		cell := row.Find("td.wmn1").First()
		if cell.Length() == 0 {
			return
		}
		event := strings.ToLower(strings.TrimSpace(cell.Text()))

		switch {
		case event == "migrated":
			if timeline.Migration == nil {
				timeline.Migration = extractMigration(row, *date)
			}
		case event == "unprotected":
			unprotectedSeen = true
		case event == "closed":
			if timeline.ClosedDate == nil {
				timeline.ClosedDate = date
				comment := row.Find("td.event-comment").First()
				if comment.Length() > 0 {
					timeline.ClosedReason = ptr(htmlutil.CleanText(comment))
				}
			}
		case event == "protected":
			if !unprotectedSeen && timeline.ProtectedDate == nil {
				timeline.ProtectedDate = date
			}
		case event == "made wiki":
			if timeline.CommunityOwnedDate == nil {
				timeline.CommunityOwnedDate = date
			}
		}

		if strings.Contains(event, "locked") && timeline.LockedDate == nil {
			timeline.LockedDate = date
		}
	})

	owners := doc.Find("a.comment-user.owner")
	if owners.Length() > 0 {
		last := owners.Last()
		timeline.OwnerHref = last.AttrOr("href", "")
		timeline.OwnerName = htmlutil.CleanText(last)
	}

	actors := doc.Find("td.ws-nowrap")
	if actors.Length() >= 2 {
		timeline.LastActorName = htmlutil.CleanText(actors.Eq(actors.Length() - 2))
	}

	timeline.CreationDate = timestampFromTitle(doc.Find("td.ws-nowrap.creation-date").Last().Find("span.relativetime"))
	timeline.LastActivityDate = extractHistoryActivity(doc)

	return timeline
}

func extractMigration(row *goquery.Selection, date int64) *Migration {
	migration := &Migration{OnDate: &date}

	href, exists := row.Find("td.event-comment a").First().Attr("href")
	if !exists {
		return migration
	}
	migration.SiteURL = &href
	if match := migratedQuestionRegex.FindStringSubmatch(href); match != nil {
		if id, ok := ParseInt(match[1]); ok {
			migration.QuestionID = &id
		}
	}
	return migration
}

const communityUserHref = "/users/-1/community"

func extractHistoryActivity(doc *goquery.Document) *int64 {
	var latest *int64
	doc.Find(`tr[data-eventtype="history"]`).Each(func(_ int, row *goquery.Selection) {
		user := row.Find("a.comment-user").First()
		if user.Length() == 0 || user.AttrOr("href", "") == communityUserHref {
			return
		}
		date := timestampFromTitle(row.Find("span.relativetime"))
		if date == nil {
			return
		}
		if latest == nil || *date > *latest {
			latest = date
		}
	})
	return latest
}
