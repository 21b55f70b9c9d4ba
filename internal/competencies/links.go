package competencies

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tayganr/certcomp/internal/certifications"
	"github.com/tayganr/certcomp/internal/normalize"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/lib/htmlutil"
)

// Tier is a partner program tier, tier segments alternate strictly between
// the two.
type Tier string

const (
	TierSilver Tier = "Silver"
	TierGold   Tier = "Gold"
)

// Tiers returns the tier of each of `n` consecutive segments.
func Tiers(n int) []Tier {
	tiers := make([]Tier, n)
	for i := range tiers {
		tiers[i] = TierSilver
		if i%2 == 1 {
			tiers[i] = TierGold
		}
	}
	return tiers
}

// LinkSource classifies every link of a competency's option sections as an
// exam reference or a certification reference.
type LinkSource struct {
	deps      Deps
	endpoints Endpoints
}

type linkOption struct {
	name     string
	segments []*goquery.Selection
}

func (s LinkSource) Extract(ctx context.Context, out *Result) error {
	pages, err := walkTaxonomy(ctx, s.deps, s.endpoints, out)
	if err != nil {
		return err
	}

	for _, page := range pages {
		if page.link == nil {
			continue
		}
		err := s.extractCompetency(ctx, page, out)
		if err != nil {
			return fmt.Errorf("competency '%s': %w", page.row.Competency, err)
		}
	}
	return nil
}

func (s LinkSource) extractCompetency(ctx context.Context, page competencyPage, out *Result) error {
	doc, err := s.deps.Detail.Document(ctx, report_detail_page, page.link.String())
	if err != nil || doc == nil {
		return err
	}
	s.deps.Tel.ReportDebug("competency", page.row.Competency)

	var options []linkOption
	doc.Find("div.complex-table-accordion-device div.panel.panel-default").Each(func(_ int, section *goquery.Selection) {
		name, ok := htmlutil.OwnText(section.Find("span.accordion-heading-text"))
		if !ok {
			s.deps.Tel.ReportWarning(report_option, "option section without a heading", page.row.Competency)
			return
		}
		option := linkOption{name: name}
		section.Find("div.panel-body div.col-md-12").Each(func(_ int, segment *goquery.Selection) {
			option.segments = append(option.segments, segment)
		})
		options = append(options, option)
	})

	for _, option := range options {
		tiers := Tiers(len(option.segments))
		for i, segment := range option.segments {
			var anchors []*goquery.Selection
			segment.Find("a").Each(func(_ int, a *goquery.Selection) {
				anchors = append(anchors, a)
			})
			for _, a := range anchors {
				examIDs, err := s.classify(ctx, doc.Url, a)
				if err != nil {
					return err
				}
				for _, examID := range examIDs {
					out.Exams = append(out.Exams, tables.CompetencyExam{
						Competency: page.row.Competency,
						Option:     option.name,
						Level:      string(tiers[i]),
						ExamID:     examID,
					})
				}
			}
		}
	}
	return nil
}

func linkTitle(a *goquery.Selection) (string, bool) {
	title, ok := htmlutil.OwnText(a)
	if ok {
		return title, true
	}
	return htmlutil.OwnText(a.ChildrenFiltered("span"))
}

// classify returns the exams a link refers to, following certification links
// one level deeper.
func (s LinkSource) classify(ctx context.Context, base *url.URL, a *goquery.Selection) ([]string, error) {
	href, ok := a.Attr("href")
	if !ok {
		return nil, nil
	}
	title, ok := linkTitle(a)
	if !ok {
		return nil, nil
	}
	link := strings.TrimSpace(href)
	if base != nil {
		if resolved, err := base.Parse(link); err == nil {
			link = resolved.String()
		}
	}

	if strings.Contains(link, s.endpoints.ExamLinkPrefix) || strings.HasPrefix(title, "Exam") {
		examID := normalize.LinkExamID(title)
		if examID == "" {
			return nil, nil
		}
		return []string{examID}, nil
	}
	if !strings.Contains(link, s.endpoints.CertificationPath) {
		return nil, nil
	}

	doc, err := s.deps.Detail.Document(ctx, report_detail_page, link)
	if err != nil || doc == nil {
		return nil, err
	}
	return certifications.RequiredExams(doc), nil
}
