package api

import (
	"context"
	"net/url"
	"strconv"
)

// RecordQuery parameterizes the paginated logs/screenshots endpoints.
type RecordQuery struct {
	From  string
	To    string
	Page  int
	Limit int
	User  string
}

func (q RecordQuery) values() url.Values {
	params := url.Values{}
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.User != "" {
		params.Set("user", q.User)
	}
	return params
}

// Logs fetches one page of activity log records. The body is returned raw:
// the envelope shape varies across backend versions and normalize.List owns
// reducing the variants to one shape.
func (c *Client) Logs(ctx context.Context, q RecordQuery) ([]byte, error) {
	return c.get(ctx, "/api/logs", q.values())
}

// Screenshots fetches one page of screenshot records.
func (c *Client) Screenshots(ctx context.Context, q RecordQuery) ([]byte, error) {
	return c.get(ctx, "/api/screenshots", q.values())
}
