package provider

import (
	"context"
	"net/url"
	"strconv"

	"github.com/skillpulse/skillpulse/internal/contract"
	"github.com/skillpulse/skillpulse/schema"
)

// FetchMetrics returns program totals and the certification summary.
func (c *Client) FetchMetrics(ctx context.Context) (*schema.MetricsResponse, error) {
	var resp schema.MetricsResponse
	if err := c.getJSON(ctx, schema.MetricsEndpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchJourney returns the funnel and completion timing.
func (c *Client) FetchJourney(ctx context.Context) (*schema.JourneyResponse, error) {
	var resp schema.JourneyResponse
	if err := c.getJSON(ctx, schema.JourneyEndpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchImpact returns product adoption and stage impact.
func (c *Client) FetchImpact(ctx context.Context) (*schema.ImpactResponse, error) {
	var resp schema.ImpactResponse
	if err := c.getJSON(ctx, schema.ImpactEndpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchSegmentCounts returns the provider's counts across the full population.
func (c *Client) FetchSegmentCounts(ctx context.Context) (*schema.SegmentCounts, error) {
	var resp schema.SegmentCounts
	if err := c.getJSON(ctx, schema.SegmentCountsEndpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchLearners returns one normalized page of learners.
func (c *Client) FetchLearners(ctx context.Context, query schema.LearnerQuery) (*schema.LearnerPage, error) {
	var raw rawLearnerPage
	if err := c.getJSON(ctx, schema.LearnersEndpoint, QueryParams(query), &raw); err != nil {
		return nil, err
	}
	return raw.normalize(query), nil
}

// QueryParams encodes a learner query as URL parameters.
// The segment "all" is the unfiltered universe and is omitted.
func QueryParams(query schema.LearnerQuery) url.Values {
	params := url.Values{}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}
	if query.Segment != "" && query.Segment != schema.SegmentAll {
		params.Set("segment", string(query.Segment))
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	return params
}

// FetchAllLearners walks every page of the learner collection.
// It stops when the offset reaches the reported total or a page comes back short.
func FetchAllLearners(ctx context.Context, p contract.DataProvider, pageSize int) ([]schema.LearnerRecord, error) {
	if pageSize <= 0 {
		pageSize = contract.DefaultPageSize
	}

	var all []schema.LearnerRecord
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := p.FetchLearners(ctx, schema.LearnerQuery{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Learners...)
		offset += len(page.Learners)

		if len(page.Learners) < pageSize || (page.Total > 0 && offset >= page.Total) {
			return all, nil
		}
	}
}
