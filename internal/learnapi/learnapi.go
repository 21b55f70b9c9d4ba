// Package learnapi drains the content browser search api, a cursor paginated
// endpoint that reports its total result count on every page.
package learnapi

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/tayganr/certcomp/internal/assert"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/telemetry"
)

const (
	report_fetch_all_pages = "fetch-all-pages"
)

const (
	DefaultEndpoint    = "https://docs.microsoft.com/api/contentbrowser/search"
	DefaultContentBase = "https://docs.microsoft.com/en-us"
	// PageSize is fixed by the upstream api.
	PageSize = 30
)

// Query selects a subset of the catalogue, every page request carries the same
// filter and terms.
type Query struct {
	// Filter is an OData style `$filter` expression.
	Filter string
	// Terms is an optional free text search.
	Terms string
}

// ResourceTypeFilter selects results of a single resource type such as
// "certification" or "examination".
func ResourceTypeFilter(resourceType string) string {
	return fmt.Sprintf("(resource_type eq '%s')", resourceType)
}

func (q Query) params(skip int) url.Values {
	params := url.Values{}
	params.Set("environment", "prod")
	params.Set("locale", "en-us")
	params.Set("$orderBy", "last_modified desc")
	params.Set("$skip", strconv.Itoa(skip))
	params.Set("$top", strconv.Itoa(PageSize))
	if q.Filter != "" {
		params.Set("$filter", q.Filter)
	}
	if q.Terms != "" {
		params.Set("terms", q.Terms)
	}
	return params
}

type page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// Client reads the search endpoint.
type Client struct {
	fetcher     fetch.Fetcher
	endpoint    string
	contentBase string
	tel         telemetry.API
}

type Options struct {
	Endpoint string `json:"endpoint"`
	// ContentBase is prepended to the relative urls the api returns.
	ContentBase string `json:"content_base"`
}

func NewClient(fetcher fetch.Fetcher, opts Options, tel telemetry.API) *Client {
	assert.NotNil(fetcher, "fetcher")
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.ContentBase == "" {
		opts.ContentBase = DefaultContentBase
	}
	return &Client{
		fetcher:     fetcher,
		endpoint:    opts.Endpoint,
		contentBase: strings.TrimRight(opts.ContentBase, "/"),
		tel:         telemetry.NewScopedAPI("learnapi", tel),
	}
}

// ContentURL turns a relative result url into an absolute one.
func (c *Client) ContentURL(relative string) string {
	if strings.HasPrefix(relative, "http://") || strings.HasPrefix(relative, "https://") {
		return relative
	}
	return c.contentBase + relative
}

// PageCount returns how many pages of PageSize are needed to hold `count` results.
func PageCount(count int) int {
	if count <= 0 {
		return 0
	}
	return int(math.Ceil(float64(count) / float64(PageSize)))
}

// FetchAllPages drains every page of `q` sequentially and returns the results in
// server order. The total is only known after the first page, which is reused as
// page 0. If any page fails, no results are returned.
func FetchAllPages[T any](ctx context.Context, c *Client, q Query) ([]T, error) {
	var first page[T]
	err := fetch.JSON(ctx, c.fetcher, c.endpoint, q.params(0), &first)
	if err != nil {
		c.tel.ReportBroken(report_fetch_all_pages, fmt.Errorf("page 0: %w", err), q.Filter, q.Terms)
		return nil, err
	}

	total := PageCount(first.Count)
	c.tel.ReportDebug("draining pages", q.Filter, q.Terms, first.Count, total)

	results := make([]T, 0, first.Count)
	results = append(results, first.Results...)
	for i := 1; i < total; i++ {
		var current page[T]
		err := fetch.JSON(ctx, c.fetcher, c.endpoint, q.params(i*PageSize), &current)
		if err != nil {
			c.tel.ReportBroken(report_fetch_all_pages, fmt.Errorf("page %d: %w", i, err), q.Filter, q.Terms)
			return nil, err
		}
		results = append(results, current.Results...)
	}

	return results, nil
}
