package api

import (
	"context"
	"net/url"
	"strconv"
)

// InsightsQuery parameterizes the company-wide analytics endpoints. By and
// Limit apply to Top only; per-subject analytics go through UserAnalysis
// instead.
type InsightsQuery struct {
	From  string
	To    string
	By    string
	Limit int
}

func (q InsightsQuery) values() url.Values {
	params := url.Values{}
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}
	return params
}

// InsightsSummary returns KPI totals for the range as raw JSON.
func (c *Client) InsightsSummary(ctx context.Context, q InsightsQuery) ([]byte, error) {
	raw, err := c.get(ctx, "/api/insights/summary", q.values())
	if err != nil {
		return nil, err
	}
	return unwrapData(raw), nil
}

// InsightsTop returns the top-N ranking by application or category.
func (c *Client) InsightsTop(ctx context.Context, q InsightsQuery) ([]byte, error) {
	params := q.values()
	if q.By != "" {
		params.Set("by", q.By)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	raw, err := c.get(ctx, "/api/insights/top", params)
	if err != nil {
		return nil, err
	}
	return unwrapData(raw), nil
}

// InsightsTimeseries returns the per-day activity series.
func (c *Client) InsightsTimeseries(ctx context.Context, q InsightsQuery) ([]byte, error) {
	raw, err := c.get(ctx, "/api/insights/timeseries", q.values())
	if err != nil {
		return nil, err
	}
	return unwrapData(raw), nil
}

// InsightsHourly returns the hour-of-day activity distribution.
func (c *Client) InsightsHourly(ctx context.Context, q InsightsQuery) ([]byte, error) {
	raw, err := c.get(ctx, "/api/insights/hourly", q.values())
	if err != nil {
		return nil, err
	}
	return unwrapData(raw), nil
}
