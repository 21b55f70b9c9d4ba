package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tayganr/certcomp/internal/assert"
	"github.com/tayganr/certcomp/internal/telemetry"
)

// Policy decides what happens when the fetch of a single item's detail page fails.
type Policy string

const (
	// PolicyFatal aborts the whole job.
	PolicyFatal Policy = "fatal"
	// PolicyRecoverable reports a warning and the item simply yields no detail rows.
	PolicyRecoverable Policy = "recoverable"
)

// ParsePolicy validates a configured policy name, the empty string selects
// PolicyRecoverable.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case "":
		return PolicyRecoverable, nil
	case PolicyFatal, PolicyRecoverable:
		return Policy(name), nil
	}
	return "", fmt.Errorf("unknown fetch policy %q", name)
}

// Detail fetches per-item detail documents (a certification page, an exam page,
// a competency page...) applying the same timeout and failure policy to every
// call site.
type Detail struct {
	fetcher Fetcher
	policy  Policy
	timeout time.Duration
	tel     telemetry.API
}

func NewDetail(fetcher Fetcher, policy Policy, timeout time.Duration, tel telemetry.API) Detail {
	assert.NotNil(fetcher, "fetcher")
	if policy == "" {
		policy = PolicyRecoverable
	}
	return Detail{
		fetcher: fetcher,
		policy:  policy,
		timeout: timeout,
		tel:     telemetry.NewScopedAPI("fetch_detail", tel),
	}
}

func (d Detail) Policy() Policy {
	return d.policy
}

func (d Detail) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

// handle applies the policy to a failed fetch, a nil error return means that
// the caller should skip the item. Only the per-call deadline is recoverable,
// a done parent context always stops the job.
func (d Detail) handle(parent context.Context, id, link string, err error) error {
	if d.policy == PolicyFatal {
		return err
	}
	if parent.Err() != nil {
		return fmt.Errorf("fetch %s: %w", link, parent.Err())
	}
	d.tel.ReportWarning(id, link, err)
	return nil
}

// Document fetches and parses a detail page. When the fetch fails under
// PolicyRecoverable it returns a nil document and a nil error.
func (d Detail) Document(ctx context.Context, id, link string) (*goquery.Document, error) {
	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	doc, err := Document(callCtx, d.fetcher, link)
	if err != nil {
		return nil, d.handle(ctx, id, link, err)
	}
	return doc, nil
}

// JSON fetches a detail JSON document. The boolean result is false when the
// item was skipped under PolicyRecoverable.
func (d Detail) JSON(ctx context.Context, id, link string, out any) (bool, error) {
	callCtx, cancel := d.withTimeout(ctx)
	defer cancel()

	err := JSON(callCtx, d.fetcher, link, nil, out)
	if err != nil {
		return false, d.handle(ctx, id, link, err)
	}
	return true, nil
}
