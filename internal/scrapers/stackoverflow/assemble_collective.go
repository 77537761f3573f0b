package stackoverflow

import (
	"context"

	"go.opentelemetry.io/otel/codes"
)

// Collectives assembles the first MaxDirectoryCollectives collectives of the collectives
// directory in directory order. The description is the one shown in the directory.
func (c *Client) Collectives(ctx context.Context) ([]Collective, error) {
	ctx, span := tracer.Start(ctx, "Collectives")
	defer span.End()

	doc, err := c.fetchMain(ctx, c.baseUrl+"/collectives-all")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	dir := extractCollectiveDirectory(doc)

	indices := make([]int, len(dir.Collectives))
	for i := range indices {
		indices[i] = i
	}

	collectives, err := batch(ctx, c.concurrency, indices, func(ctx context.Context, i int) (Collective, bool, error) {
		collective, err := c.fetchCollective(ctx, dir.Collectives[i])
		if err != nil {
			return Collective{}, false, err
		}
		collective.Description = dir.description(i)
		return *collective, true, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return collectives, nil
}
