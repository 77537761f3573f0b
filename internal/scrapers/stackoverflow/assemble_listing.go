package stackoverflow

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ListQuestions assembles the questions of one page of the question listing, at most
// PageSize of them.
func (c *Client) ListQuestions(ctx context.Context, query ListingQuery, opts QueryOptions) ([]Question, error) {
	ctx, span := tracer.Start(ctx, "ListQuestions")
	defer span.End()

	link := c.baseUrl + query.Path()
	span.SetAttributes(attribute.String("link", link))

	doc, err := c.fetchMain(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ids := extractListing(doc, query.pageSize())
	return c.Questions(ctx, ids, opts)
}

// ListingTotal returns how many questions the listing says it has, capped at PageSize.
func (c *Client) ListingTotal(ctx context.Context, query ListingQuery) (int64, error) {
	ctx, span := tracer.Start(ctx, "ListingTotal")
	defer span.End()

	link := c.baseUrl + query.Path()
	span.SetAttributes(attribute.String("link", link))

	doc, err := c.fetchMain(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	total, ok := extractListingTotal(doc)
	if !ok {
		err := fmt.Errorf("listing %s has no question count", link)
		c.tel.ReportBroken(report_listing_total, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	pageSize := int64(query.pageSize())
	if total > pageSize {
		return pageSize, nil
	}
	return total, nil
}
