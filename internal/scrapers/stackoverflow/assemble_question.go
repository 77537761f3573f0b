package stackoverflow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Question assembles a single question. ok is false when the question page was fetched but
// does not contain a question.
func (c *Client) Question(ctx context.Context, id int64, opts QueryOptions) (question Question, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "Question")
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))

	link := fmt.Sprintf("%s/questions/%d", c.baseUrl, id)
	doc, err := c.fetchMain(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Question{}, false, err
	}

	page, ok := extractQuestionPage(doc)
	if !ok {
		c.tel.ReportWarning(report_question_page, link, "page has no question")
		return Question{}, false, nil
	}

	questionId := id
	if page.ID != nil {
		questionId = *page.ID
	}

	timeline, err := c.fetchTimeline(ctx, report_question_timeline, questionId)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Question{}, false, err
	}

	owner, err := c.fetchOwner(ctx, page.Byline, timeline)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Question{}, false, err
	}

	question = Question{
		Tags:             page.Tags,
		Owner:            owner,
		IsAnswered:       page.AnswerCount > 0,
		ViewCount:        page.ViewCount,
		AnswerCount:      page.AnswerCount,
		Score:            page.Score,
		LastActivityDate: page.LastActivity,
		LastEditedDate:   page.LastEdited,
		QuestionID:       questionId,
		Link:             link,
		Title:            page.Title,
	}

	if page.Bounty != nil {
		question.BountyAmount = page.Bounty.Amount
		question.BountyClosesDate = page.Bounty.ClosesDate
	}

	if timeline != nil {
		question.CreationDate = timeline.CreationDate
		question.ClosedDate = timeline.ClosedDate
		question.ClosedReason = timeline.ClosedReason
		question.ProtectedDate = timeline.ProtectedDate
		question.LockedDate = timeline.LockedDate
		question.CommunityOwnedDate = timeline.CommunityOwnedDate
		question.MigratedFrom = timeline.Migration
	}

	if opts.WithBody {
		question.Body, question.BodyMarkdown = c.body(page.post)
	}

	return question, true, nil
}

// Questions assembles every question in ids, in order. Questions whose page holds no
// question are left out, any other failure fails the whole batch.
func (c *Client) Questions(ctx context.Context, ids []int64, opts QueryOptions) ([]Question, error) {
	return batch(ctx, c.concurrency, ids, func(ctx context.Context, id int64) (Question, bool, error) {
		return c.Question(ctx, id, opts)
	})
}
