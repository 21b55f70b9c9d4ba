// Package retired reads the retirement schedule of exams.
package retired

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tayganr/certcomp/internal/assert"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/htmlutil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	report_listing = "listing"
	report_row     = "row"
)

const DefaultListing = "https://docs.microsoft.com/en-us/learn/certifications/retired-certification-exams"

var months = []string{
	"JANUARY", "FEBRUARY", "MARCH", "APRIL", "MAY", "JUNE",
	"JULY", "AUGUST", "SEPTEMBER", "OCTOBER", "NOVEMBER", "DECEMBER",
}

var monthCaser = cases.Title(language.English)

// ParseDate finds a month name in free text such as "Retiring on January 15,
// 2021" and reads the day and the trailing four digit year around it. It
// returns nil when the text names no month and an error when the remaining
// text is not a date.
func ParseDate(text string) (*time.Time, error) {
	upper := strings.ToUpper(text)
	for _, month := range months {
		if !strings.Contains(upper, month) {
			continue
		}

		year := text
		if len(year) > 4 {
			year = year[len(year)-4:]
		}
		day := strings.NewReplacer(
			month, "",
			strings.ToUpper(year), "",
			",", "",
			" ", "",
		).Replace(upper)
		day = strings.ReplaceAll(day, "RETIRINGON", "")

		reconstructed := fmt.Sprintf("%s %s %s", day, monthCaser.String(month), year)
		date, err := time.Parse("2 January 2006", reconstructed)
		if err != nil {
			return nil, fmt.Errorf("parse retirement date '%s': %w", text, err)
		}
		return &date, nil
	}
	return nil, nil
}

// ParseRowDate completes a per row date, a bare year means January 1st and a
// month and year mean the 1st of that month.
func ParseRowDate(text string) (*time.Time, error) {
	text = strings.TrimSpace(text)
	parts := strings.Split(text, " ")
	switch len(parts) {
	case 1:
		text = "January 1, " + text
	case 2:
		text = parts[0] + " 1, " + parts[1]
	}
	return ParseDate(text)
}

func examID(text string) string {
	return strings.TrimSuffix(strings.TrimSpace(text), ":")
}

// Result accumulates the rows of a single run.
type Result struct {
	Retired []tables.RetiredExam
	// Summary maps exam ids to their retirement date, or nil when unknown.
	Summary map[string]*string
}

func NewResult() *Result {
	return &Result{Summary: map[string]*string{}}
}

func (r *Result) add(examID string, date *time.Time) {
	r.Retired = append(r.Retired, tables.RetiredExam{ExamID: examID, Date: date})
	if date == nil {
		r.Summary[examID] = nil
		return
	}
	formatted := date.Format(tables.DateLayout)
	r.Summary[examID] = &formatted
}

func (r *Result) Tables() []tables.Table {
	return []tables.Table{
		tables.New(tables.NameRetired, tables.RetiredColumns, r.Retired),
	}
}

func (r *Result) Response() any {
	return r.Summary
}

// Extractor reads the retirement listing page.
type Extractor struct {
	fetcher fetch.Fetcher
	listing string
	tel     telemetry.API
}

func NewExtractor(fetcher fetch.Fetcher, listing string, tel telemetry.API) Extractor {
	assert.NotNil(fetcher, "fetcher")
	if listing == "" {
		listing = DefaultListing
	}
	return Extractor{
		fetcher: fetcher,
		listing: listing,
		tel:     telemetry.NewScopedAPI("retired", tel),
	}
}

func (e Extractor) Extract(ctx context.Context, out *Result) error {
	doc, err := fetch.Document(ctx, e.fetcher, e.listing)
	if err != nil {
		e.tel.ReportBroken(report_listing, err)
		return fmt.Errorf("fetch retirement listing: %w", err)
	}

	var tableList []*goquery.Selection
	doc.Find("main#main > table").Each(func(_ int, table *goquery.Selection) {
		tableList = append(tableList, table)
	})

	for _, table := range tableList {
		err := e.extractTable(table, out)
		if err != nil {
			e.tel.ReportBroken(report_listing, err)
			return err
		}
	}
	e.tel.ReportCount(report_listing, int64(len(out.Retired)))
	return nil
}

func (e Extractor) extractTable(table *goquery.Selection, out *Result) error {
	var headerDate *time.Time
	if header, ok := htmlutil.OwnText(table.Find("th").First()); ok {
		date, err := ParseDate(header)
		if err != nil {
			return err
		}
		headerDate = date
	}

	if headerDate != nil {
		table.Find("tbody tr td a").Each(func(_ int, a *goquery.Selection) {
			text, ok := htmlutil.OwnText(a)
			if !ok || examID(text) == "" {
				return
			}
			out.add(examID(text), headerDate)
		})
		return nil
	}

	var rowErr error
	table.Find("tbody tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		cells := tr.ChildrenFiltered("td")
		if cells.Length() < 3 {
			e.tel.ReportWarning(report_row, "retirement row with fewer than 3 cells", cells.Length())
			return true
		}
		id := examID(cells.Eq(0).Text())
		if id == "" {
			e.tel.ReportWarning(report_row, "retirement row without an exam")
			return true
		}
		dateText, _ := htmlutil.OwnText(cells.Eq(2))
		date, err := ParseRowDate(dateText)
		if err != nil {
			rowErr = fmt.Errorf("exam '%s': %w", id, err)
			return false
		}
		out.add(id, date)
		return true
	})
	return rowErr
}
