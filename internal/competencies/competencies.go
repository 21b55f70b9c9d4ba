// Package competencies produces the competency and competency-exam tables out
// of the partner program's competency taxonomy.
package competencies

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/htmlutil"
)

const (
	report_taxonomy    = "taxonomy"
	report_area        = "area"
	report_competency  = "competency"
	report_detail_page = "detail-page"
	report_option      = "option"
	report_uid         = "resolve-uid"
	report_exam_map    = "exam-map"
)

// Generation selects a Source.
type Generation string

const (
	GenerationLinks Generation = "links"
	GenerationUID   Generation = "uid"
)

// SummaryEntry is one competency in the json summary.
type SummaryEntry struct {
	Competency string  `json:"competency"`
	Link       *string `json:"link"`
}

// Result accumulates the rows of a single run.
type Result struct {
	Competencies []tables.Competency
	Exams        []tables.CompetencyExam
	// Summary maps each area to its competencies in page order.
	Summary map[string][]SummaryEntry

	// detailed selects the four column comp_exams schema.
	detailed bool
}

// NewResult returns an empty result whose comp_exams schema matches the
// generation that fills it.
func NewResult(generation Generation) *Result {
	return &Result{
		Summary:  map[string][]SummaryEntry{},
		detailed: generation != GenerationUID,
	}
}

func (r *Result) addArea(area string) {
	if _, ok := r.Summary[area]; !ok {
		r.Summary[area] = []SummaryEntry{}
	}
}

func (r *Result) addCompetency(c tables.Competency) {
	r.Competencies = append(r.Competencies, c)
	r.Summary[c.Area] = append(r.Summary[c.Area], SummaryEntry{Competency: c.Competency, Link: c.Link})
}

func (r *Result) Tables() []tables.Table {
	compExams := tables.New(tables.NameCompExams, tables.CompExamDetailedColumns, r.Exams)
	if !r.detailed {
		short := make([]tables.CompetencyExamShort, len(r.Exams))
		for i, e := range r.Exams {
			short[i] = tables.CompetencyExamShort(e)
		}
		compExams = tables.New(tables.NameCompExams, tables.CompExamColumns, short)
	}
	return []tables.Table{
		tables.New(tables.NameCompetencies, tables.CompetencyColumns, r.Competencies),
		compExams,
	}
}

func (r *Result) Response() any {
	return map[string]any{"competencies": r.Summary}
}

// Source is one generation of competency detail pages.
type Source interface {
	Extract(ctx context.Context, out *Result) error
}

// Endpoints are the upstream locations the sources read from.
type Endpoints struct {
	// Taxonomy lists every competency grouped by area.
	Taxonomy string `json:"taxonomy"`
	// ExamLinkPrefix marks links that point directly to an exam page.
	ExamLinkPrefix string `json:"exam_link_prefix"`
	// CertificationPath marks links that point to a certification page.
	CertificationPath string `json:"certification_path"`
	// LearnPath marks links to learning content that carries a uid.
	LearnPath string `json:"learn_path"`
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		Taxonomy:          "https://partner.microsoft.com/en-us/membership/competencies",
		ExamLinkPrefix:    "https://www.microsoft.com/en-us/learning/exam-",
		CertificationPath: "https://www.microsoft.com/en-us/learning/",
		LearnPath:         "https://docs.microsoft.com/en-us/learn/",
	}
}

// Deps are the collaborators shared by both sources.
type Deps struct {
	Fetcher fetch.Fetcher
	Detail  fetch.Detail
	// Learn builds the certification exam map, it is only required by the
	// uid generation.
	Learn *learnapi.Client
	Tel   telemetry.API
}

func NewSource(generation Generation, deps Deps, endpoints Endpoints) (Source, error) {
	deps.Tel = telemetry.NewScopedAPI(fmt.Sprintf("competencies_%s", generation), deps.Tel)
	switch generation {
	case GenerationLinks, "":
		return LinkSource{deps: deps, endpoints: endpoints}, nil
	case GenerationUID:
		if deps.Learn == nil {
			return nil, fmt.Errorf("the uid generation requires a learn api client")
		}
		return UIDSource{deps: deps, endpoints: endpoints}, nil
	}
	return nil, fmt.Errorf("unknown competency source generation %q", generation)
}

// competencyPage is a competency found on the taxonomy page.
type competencyPage struct {
	row  tables.Competency
	link *url.URL
}

// walkTaxonomy reads the areas and competencies of the taxonomy page, rows are
// recorded into `out` as they are found.
func walkTaxonomy(ctx context.Context, deps Deps, endpoints Endpoints, out *Result) ([]competencyPage, error) {
	doc, err := fetch.Document(ctx, deps.Fetcher, endpoints.Taxonomy)
	if err != nil {
		deps.Tel.ReportBroken(report_taxonomy, err)
		return nil, fmt.Errorf("fetch competency taxonomy: %w", err)
	}

	var pages []competencyPage
	doc.Find("div.panel-group.hidden-md-x.hidden-lg.simple-tabs-accordion-sm > div").Each(func(_ int, area *goquery.Selection) {
		areaName, ok := htmlutil.OwnText(area.Find("span.accordion-heading-text"))
		if !ok || areaName == "" {
			deps.Tel.ReportWarning(report_area, "competency area without a name")
			return
		}
		out.addArea(areaName)
		deps.Tel.ReportDebug("competency area", areaName)

		seen := map[string]bool{}
		area.Find("div.clickable-panel.column-content-item").Each(func(_ int, comp *goquery.Selection) {
			name, ok := htmlutil.OwnText(comp.Find("h3.subhead2.headline-hoverable"))
			if !ok || name == "" {
				deps.Tel.ReportWarning(report_competency, "competency without a name", areaName)
				return
			}
			if seen[name] {
				deps.Tel.ReportWarning(report_competency, "duplicate competency in area", areaName, name)
				return
			}
			seen[name] = true

			row := tables.Competency{Area: areaName, Competency: name}
			page := competencyPage{row: row}
			if href, ok := htmlutil.Href(comp.Find("a.cta.cta-x.cta-x-secondary")); ok {
				link, err := doc.Url.Parse(strings.TrimSpace(href))
				if err != nil {
					deps.Tel.ReportWarning(report_competency, "unparsable competency link", name, err)
				} else {
					linkStr := link.String()
					page.row.Link = &linkStr
					page.link = link
				}
			}
			out.addCompetency(page.row)
			pages = append(pages, page)
		})
	})
	deps.Tel.ReportCount(report_competency, int64(len(pages)))
	return pages, nil
}
