package stackoverflow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Answer assembles a single answer from its `/a/{id}` page. ok is false when the page does
// not contain the answer.
func (c *Client) Answer(ctx context.Context, id int64, opts QueryOptions) (answer Answer, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "Answer")
	defer span.End()
	span.SetAttributes(attribute.Int64("id", id))

	link := fmt.Sprintf("%s/a/%d", c.baseUrl, id)
	doc, err := c.fetchMain(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Answer{}, false, err
	}

	block, ok := findAnswerBlock(doc, id)
	if !ok {
		c.tel.ReportWarning(report_answer_page, link, "page has no such answer")
		return Answer{}, false, nil
	}

	collective := &pageCollective{ref: extractCollectiveRef(doc)}
	answer, err = c.assembleAnswer(ctx, block, pageQuestionID(doc), collective, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Answer{}, false, err
	}
	return answer, true, nil
}

// Answers assembles every answer in ids, in order.
func (c *Client) Answers(ctx context.Context, ids []int64, opts QueryOptions) ([]Answer, error) {
	return batch(ctx, c.concurrency, ids, func(ctx context.Context, id int64) (Answer, bool, error) {
		return c.Answer(ctx, id, opts)
	})
}

// QuestionAnswers assembles every answer of every question in questionIds. Answers keep the
// order of their question in questionIds and their order on the question page.
func (c *Client) QuestionAnswers(ctx context.Context, questionIds []int64, opts QueryOptions) ([]Answer, error) {
	perQuestion, err := batch(ctx, c.concurrency, questionIds, func(ctx context.Context, id int64) ([]Answer, bool, error) {
		answers, err := c.answersOfQuestion(ctx, id, opts)
		return answers, err == nil, err
	})
	if err != nil {
		return nil, err
	}

	var out []Answer
	for _, answers := range perQuestion {
		out = append(out, answers...)
	}
	return out, nil
}

func (c *Client) answersOfQuestion(ctx context.Context, questionId int64, opts QueryOptions) ([]Answer, error) {
	ctx, span := tracer.Start(ctx, "answersOfQuestion")
	defer span.End()
	span.SetAttributes(attribute.Int64("id", questionId))

	doc, err := c.fetchMain(ctx, fmt.Sprintf("%s/questions/%d", c.baseUrl, questionId))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	blocks := extractAnswerBlocks(doc)
	if len(blocks) == 0 {
		return nil, nil
	}

	collective := &pageCollective{ref: extractCollectiveRef(doc)}
	pageQuestionId := pageQuestionID(doc)
	if pageQuestionId == nil {
		pageQuestionId = &questionId
	}

	answers := make([]Answer, 0, len(blocks))
	for _, block := range blocks {
		answer, err := c.assembleAnswer(ctx, block, pageQuestionId, collective, opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

// pageCollective is the collective a question page links to, fetched at most once for all the
// answers on that page. It is not safe for concurrent use.
type pageCollective struct {
	ref     *collectiveRef
	fetched bool
	value   *Collective
}

func (p *pageCollective) get(ctx context.Context, c *Client) (*Collective, error) {
	if p.ref == nil || p.fetched {
		return p.value, nil
	}
	value, err := c.fetchCollective(ctx, *p.ref)
	if err != nil {
		return nil, err
	}
	p.value = value
	p.fetched = true
	return value, nil
}

// assembleAnswer runs the secondary stages of one answer in order: timeline, owner profile,
// then collective.
func (c *Client) assembleAnswer(ctx context.Context, block answerBlock, questionId *int64, pc *pageCollective, opts QueryOptions) (Answer, error) {
	timeline, err := c.fetchTimeline(ctx, report_answer_timeline, block.ID)
	if err != nil {
		return Answer{}, err
	}

	owner, err := c.fetchOwner(ctx, block.Byline, timeline)
	if err != nil {
		return Answer{}, err
	}

	collective, err := pc.get(ctx, c)
	if err != nil {
		return Answer{}, err
	}

	answer := Answer{
		Owner:          owner,
		IsAccepted:     IsAccepted(block.AcceptedIndicator, block.Score),
		Score:          block.Score,
		LastEditedDate: block.LastEdited,
		AnswerID:       block.ID,
		QuestionID:     questionId,
	}

	if collective != nil {
		answer.Recommendations = []Recommendation{{Collective: *collective}}
	}

	if timeline != nil {
		answer.CreationDate = timeline.CreationDate
		answer.LastActivityDate = timeline.LastActivityDate
		answer.CommunityOwnedDate = timeline.CommunityOwnedDate
		answer.LockedDate = timeline.LockedDate
	}

	if opts.WithBody {
		answer.Body, answer.BodyMarkdown = c.body(block.post)
	}

	return answer, nil
}
