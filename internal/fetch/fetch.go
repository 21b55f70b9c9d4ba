// Package fetch is the transport used by every extraction job: plain GET
// requests that return markup or JSON.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

const (
	report_client_get      = "client.get"
	report_client_document = "client.document"
	report_client_json     = "client.json"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Response is the raw result of a GET request.
type Response struct {
	Status int
	Body   []byte
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Url    string
	Status int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.Url)
}

// Fetcher issues GET requests. Blocking callers bound a single request by
// putting a deadline on `ctx`.
//
// note: fault injection point
type Fetcher interface {
	Get(ctx context.Context, link string, params url.Values) (Response, error)
}

type Options struct {
	UserAgent string
	// Timeout bounds every request made by the client, 0 means no timeout.
	Timeout time.Duration
	// RequestsPerSecond throttles the client, 0 means unlimited.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport so that pages fronted by cloudflare's
	// bot check can be fetched.
	CloudflareBypass bool
	// InstrumentOutput receives raw http dumps in verbose mode, it can be nil.
	InstrumentOutput restyutil.InstrumentOutput
}

// Client is the resty backed Fetcher.
type Client struct {
	http *resty.Client
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) *Client {
	tel = telemetry.NewScopedAPI("fetch", tel)

	httpClient := resty.New()
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient.SetHeader("user-agent", userAgent)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}
	restyutil.InstrumentClient(httpClient, otel.Tracer("certcomp.fetch"), opts.InstrumentOutput)

	return &Client{http: httpClient, tel: tel}
}

func (c *Client) Get(ctx context.Context, link string, params url.Values) (Response, error) {
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	res, err := req.Get(link)
	if err != nil {
		c.tel.ReportDebug(report_client_get, link, err)
		return Response{}, fmt.Errorf("get %s: %w", link, err)
	}
	if res.IsError() {
		err := StatusError{Url: link, Status: res.StatusCode()}
		c.tel.ReportDebug(report_client_get, link, err)
		return Response{}, err
	}

	return Response{Status: res.StatusCode(), Body: res.Body()}, nil
}

// Document fetches `link` and parses it as html.
func Document(ctx context.Context, f Fetcher, link string) (*goquery.Document, error) {
	res, err := f.Get(ctx, link, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("%s: parse html %s: %w", report_client_document, link, err)
	}
	if base, err := url.Parse(link); err == nil {
		doc.Url = base
	}
	return doc, nil
}

// JSON fetches `link` with the given query parameters and decodes the body
// into `out`.
func JSON(ctx context.Context, f Fetcher, link string, params url.Values, out any) error {
	res, err := f.Get(ctx, link, params)
	if err != nil {
		return err
	}
	err = json.Unmarshal(res.Body, out)
	if err != nil {
		return fmt.Errorf("%s: decode %s: %w", report_client_json, link, err)
	}
	return nil
}
