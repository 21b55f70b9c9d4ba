// Package learn dumps the learning content catalogue.
package learn

import (
	"context"
	"fmt"
	"strings"

	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
)

const report_catalogue = "catalogue"

// Catalogue drains the unfiltered search api.
type Catalogue struct {
	learn *learnapi.Client
	tel   telemetry.API
}

func NewCatalogue(learn *learnapi.Client, tel telemetry.API) Catalogue {
	return Catalogue{learn: learn, tel: telemetry.NewScopedAPI("learn", tel)}
}

// Result holds the catalogue rows.
type Result struct {
	Content []tables.LearnContent
	// ByType counts the rows per resource type.
	ByType map[string]int
}

func (r *Result) Tables() []tables.Table {
	return []tables.Table{
		tables.New(tables.NameLearn, tables.LearnColumns, r.Content),
	}
}

func (r *Result) Response() any {
	return map[string]any{"learn": r.ByType}
}

func (c Catalogue) Extract(ctx context.Context) (*Result, error) {
	results, err := learnapi.FetchAllPages[learnapi.Content](ctx, c.learn, learnapi.Query{})
	if err != nil {
		c.tel.ReportBroken(report_catalogue, err)
		return nil, fmt.Errorf("drain learn catalogue: %w", err)
	}

	out := &Result{
		Content: make([]tables.LearnContent, 0, len(results)),
		ByType:  map[string]int{},
	}
	for _, result := range results {
		out.Content = append(out.Content, tables.LearnContent{
			Products:     strings.Join(result.Products, ";"),
			ResourceType: result.ResourceType,
			Title:        result.Title,
			Link:         c.learn.ContentURL(result.URL),
		})
		out.ByType[result.ResourceType]++
	}
	c.tel.ReportCount(report_catalogue, int64(len(out.Content)))
	return out, nil
}
