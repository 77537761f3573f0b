package stackoverflow

import (
	"encoding/json"

	"stackscrape/internal/postprocess"
)

type UserType string

const (
	UserRegistered   UserType = "registered"
	UserDoesNotExist UserType = "does_not_exist"
)

// Owner is the author of a post. Only registered owners carry account information,
// owners that do not exist (deleted users, anonymous migrations) only have a display name.
type Owner struct {
	UserType     UserType
	DisplayName  string
	AccountID    *int64
	Reputation   *int64
	UserID       *int64
	ProfileImage *string
	Link         *string
}

type registeredOwnerJSON struct {
	AccountID    *int64   `json:"account_id,omitempty"`
	Reputation   *int64   `json:"reputation,omitempty"`
	UserID       *int64   `json:"user_id,omitempty"`
	UserType     UserType `json:"user_type"`
	ProfileImage *string  `json:"profile_image,omitempty"`
	DisplayName  string   `json:"display_name"`
	Link         *string  `json:"link,omitempty"`
}

type missingOwnerJSON struct {
	UserType    UserType `json:"user_type"`
	DisplayName string   `json:"display_name"`
}

func (o Owner) MarshalJSON() ([]byte, error) {
	if o.UserType != UserRegistered {
		return json.Marshal(missingOwnerJSON{
			UserType:    UserDoesNotExist,
			DisplayName: o.DisplayName,
		})
	}
	return json.Marshal(registeredOwnerJSON{
		AccountID:    o.AccountID,
		Reputation:   o.Reputation,
		UserID:       o.UserID,
		UserType:     o.UserType,
		ProfileImage: o.ProfileImage,
		DisplayName:  o.DisplayName,
		Link:         o.Link,
	})
}

type ExternalLink struct {
	Type string `json:"type"`
	Link string `json:"link"`
}

type Collective struct {
	Tags          []string       `json:"tags"`
	ExternalLinks []ExternalLink `json:"external_links"`
	Description   string         `json:"description"`
	Link          string         `json:"link"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
}

type Recommendation struct {
	Collective Collective `json:"collective"`
}

type Migration struct {
	QuestionID *int64  `json:"question_id,omitempty"`
	OnDate     *int64  `json:"on_date,omitempty"`
	SiteURL    *string `json:"site_url,omitempty"`
}

// Question is a fully assembled question. Pointer fields are omitted from the output when the
// source page did not have them, except for view_count and score which are rendered as null.
type Question struct {
	Tags               []string   `json:"tags"`
	MigratedFrom       *Migration `json:"migrated_from,omitempty"`
	Owner              Owner      `json:"owner"`
	IsAnswered         bool       `json:"is_answered"`
	ViewCount          *int64     `json:"view_count"`
	AnswerCount        int64      `json:"answer_count"`
	CommunityOwnedDate *int64     `json:"community_owned_date,omitempty"`
	Score              *int64     `json:"score"`
	LastActivityDate   *int64     `json:"last_activity_date,omitempty"`
	CreationDate       *int64     `json:"creation_date,omitempty"`
	LastEditedDate     *int64     `json:"last_edited_date,omitempty"`
	BountyAmount       *int64     `json:"bounty_amount,omitempty"`
	BountyClosesDate   *int64     `json:"bounty_closes_date,omitempty"`
	ClosedDate         *int64     `json:"closed_date,omitempty"`
	ProtectedDate      *int64     `json:"protected_date,omitempty"`
	LockedDate         *int64     `json:"locked_date,omitempty"`
	QuestionID         int64      `json:"question_id"`
	Link               string     `json:"link"`
	ClosedReason       *string    `json:"closed_reason,omitempty"`
	Title              string     `json:"title"`
	Body               *string    `json:"body,omitempty"`
	BodyMarkdown       *string    `json:"body_markdown,omitempty"`
}

// Answer is a fully assembled answer.
type Answer struct {
	Recommendations    []Recommendation `json:"recommendations,omitempty"`
	Owner              Owner            `json:"owner"`
	IsAccepted         bool             `json:"is_accepted"`
	CommunityOwnedDate *int64           `json:"community_owned_date,omitempty"`
	LockedDate         *int64           `json:"locked_date,omitempty"`
	Score              *int64           `json:"score"`
	LastActivityDate   *int64           `json:"last_activity_date,omitempty"`
	LastEditedDate     *int64           `json:"last_edited_date,omitempty"`
	CreationDate       *int64           `json:"creation_date,omitempty"`
	AnswerID           int64            `json:"answer_id"`
	QuestionID         *int64           `json:"question_id"`
	Body               *string          `json:"body,omitempty"`
	BodyMarkdown       *string          `json:"body_markdown,omitempty"`
}

func sortValue(field postprocess.Field, activity, creation, score *int64) (int64, bool) {
	var v *int64
	switch field {
	case postprocess.FieldLastActivityDate:
		v = activity
	case postprocess.FieldCreationDate:
		v = creation
	case postprocess.FieldScore:
		v = score
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

func (q Question) SortValue(field postprocess.Field) (int64, bool) {
	return sortValue(field, q.LastActivityDate, q.CreationDate, q.Score)
}

func (a Answer) SortValue(field postprocess.Field) (int64, bool) {
	return sortValue(field, a.LastActivityDate, a.CreationDate, a.Score)
}

// QueryOptions are the per-request knobs of the assembler.
type QueryOptions struct {
	// WithBody includes the plain text and markdown body of every post.
	WithBody bool
}
