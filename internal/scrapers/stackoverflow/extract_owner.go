package stackoverflow

import (
	"net/url"
	"regexp"
	"strings"

	"stackscrape/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ownerRef is the result of owner resolution before the profile page is visited.
// ProfileHref is empty when neither the byline nor the timeline had a link to a profile.
type ownerRef struct {
	ProfileHref string
	DisplayName string
}

func (r ownerRef) Exists() bool {
	return r.ProfileHref != ""
}

// resolveOwner picks the author of a post. The byline of the post itself wins, then the
// last owner actor of the timeline, and when neither links to a profile the owner does not
// exist and keeps only the name of the last timeline actor.
func resolveOwner(by *byline, timeline *Timeline) ownerRef {
	if by != nil && by.Href != "" {
		ref := ownerRef{ProfileHref: by.Href, DisplayName: by.Name}
		if ref.DisplayName == "" && timeline != nil {
			ref.DisplayName = timeline.OwnerName
		}
		return ref
	}
	if timeline == nil {
		return ownerRef{}
	}
	if timeline.OwnerHref != "" {
		return ownerRef{ProfileHref: timeline.OwnerHref, DisplayName: timeline.OwnerName}
	}
	return ownerRef{DisplayName: timeline.LastActorName}
}

type profile struct {
	AccountID    *int64
	Reputation   *int64
	ProfileImage *string
}

var accountIdRegex = regexp.MustCompile(`accountId:\s*(\d+)`)

func extractProfile(doc *goquery.Document) profile {
	var p profile

	if src, exists := doc.Find("div.bar-md.bs-sm img").First().Attr("src"); exists {
		p.ProfileImage = &src
	}

	reputation := doc.Find("div.fs-body3.fc-black-600").First()
	if reputation.Length() > 0 {
		if value, ok := ParseReputation(htmlutil.CleanText(reputation)); ok {
			p.Reputation = &value
		}
	}

	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()
		if !strings.Contains(text, "StackExchange.user.init") {
			return true
		}
		match := accountIdRegex.FindStringSubmatch(text)
		if match == nil {
			return true
		}
		if id, ok := ParseInt(match[1]); ok {
			p.AccountID = &id
		}
		return false
	})

	return p
}

// userIdFromProfileLink reads the user id out of a profile link shaped like
// `/users/{id}/{slug}`.
func userIdFromProfileLink(link string) *int64 {
	path := link
	if parsed, err := url.Parse(link); err == nil {
		path = parsed.Path
	}
	segments := strings.Split(strings.TrimRight(path, "/"), "/")
	if len(segments) < 2 {
		return nil
	}
	id, ok := ParseInt(segments[len(segments)-2])
	if !ok {
		return nil
	}
	return &id
}

// buildOwner merges a resolved owner with its profile, profile may be nil when the profile
// page could not be fetched.
func buildOwner(ref ownerRef, link string, p *profile) Owner {
	if !ref.Exists() {
		return Owner{
			UserType:    UserDoesNotExist,
			DisplayName: ref.DisplayName,
		}
	}
	owner := Owner{
		UserType:    UserRegistered,
		DisplayName: ref.DisplayName,
		UserID:      userIdFromProfileLink(link),
		Link:        &link,
	}
	if p != nil {
		owner.AccountID = p.AccountID
		owner.Reputation = p.Reputation
		owner.ProfileImage = p.ProfileImage
	}
	return owner
}
