package certifications

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/normalize"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/lib/htmlutil"
)

// LegacySource reads the certification cards grouped by level followed by the
// html listing of role based certifications.
type LegacySource struct {
	sourceBase
}

type legacyCard struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (s LegacySource) Extract(ctx context.Context, out *Result) error {
	err := s.extractCards(ctx, out)
	if err != nil {
		return err
	}
	return s.extractRoleBased(ctx, out)
}

func (s LegacySource) extractCards(ctx context.Context, out *Result) error {
	var listing map[string]map[string][]legacyCard
	err := fetch.JSON(ctx, s.deps.Fetcher, s.endpoints.contentURL(s.endpoints.CardsProperty), nil, &listing)
	if err != nil {
		s.deps.Tel.ReportBroken(report_listing, err)
		return fmt.Errorf("fetch certification cards: %w", err)
	}
	byLevel, ok := listing[s.endpoints.CardsProperty]
	if !ok {
		err := fmt.Errorf("certification cards are missing property '%s'", s.endpoints.CardsProperty)
		s.deps.Tel.ReportBroken(report_listing, err)
		return err
	}

	levels := make([]string, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	slices.Sort(levels)

	for _, name := range levels {
		level, known := ParseLevel(name)
		if !known {
			s.deps.Tel.ReportWarning(report_level, "unknown certification level", name)
		}
		out.AddLevel(name)

		for _, card := range byLevel[name] {
			err := s.extractCard(ctx, level, card, out)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s LegacySource) extractCard(ctx context.Context, level Level, card legacyCard, out *Result) error {
	link := s.endpoints.pageURL(card.URL)
	s.deps.Tel.ReportDebug("certification card", card.Name)

	id, ok, err := s.detailContentID(ctx, link)
	if err != nil {
		return fmt.Errorf("certification '%s': %w", card.Name, err)
	}
	if !ok {
		return nil
	}

	content, ok, err := s.lookupContent(ctx, id)
	if err != nil {
		return fmt.Errorf("certification '%s': %w", card.Name, err)
	}
	if !ok {
		return nil
	}

	requirement := content.requirement(level)
	cert := tables.Certification{
		CertID:      id,
		Level:       string(level),
		Title:       card.Name,
		Link:        link,
		Requirement: &requirement,
	}
	out.AddCertification(cert)
	for _, exam := range content.examIDs() {
		out.AddExam(cert, exam)
	}
	return nil
}

const scheduleExamPrefix = "Schedule to take Exam "

// levelFromImage infers the level of a role based card from its badge image.
func levelFromImage(src string) Level {
	switch {
	case strings.Contains(src, "associate"):
		return LevelAssociate
	case strings.Contains(src, "expert"):
		return LevelExpert
	}
	return LevelFundamentals
}

func (s LegacySource) extractRoleBased(ctx context.Context, out *Result) error {
	doc, err := fetch.Document(ctx, s.deps.Fetcher, s.endpoints.RoleBasedListing)
	if err != nil {
		s.deps.Tel.ReportBroken(report_listing, err)
		return fmt.Errorf("fetch role based listing: %w", err)
	}

	var cards []*goquery.Selection
	doc.Find("section.msl-certification-card").Each(func(_ int, card *goquery.Selection) {
		cards = append(cards, card)
	})

	for _, card := range cards {
		title, ok := htmlutil.OwnText(card.ChildrenFiltered("div").ChildrenFiltered("h3"))
		if !ok {
			continue
		}
		href, ok := htmlutil.Href(card.Find("a"))
		if !ok {
			s.deps.Tel.ReportWarning(report_listing, "role based card without link", title)
			continue
		}
		src, _ := card.Find("picture > img").First().Attr("src")

		link := s.endpoints.pageURL(href)
		cert := tables.Certification{
			CertID: normalize.CertID(link),
			Level:  string(levelFromImage(src)),
			Title:  title,
			Link:   link,
		}
		s.deps.Tel.ReportDebug("role based certification", title)

		detail, err := s.deps.Detail.Document(ctx, report_detail_page, link)
		if err != nil {
			return fmt.Errorf("certification '%s': %w", title, err)
		}
		if detail == nil {
			out.AddCertification(cert)
			continue
		}

		exams := []string{}
		detail.Find("a.msl-body-regular.msl-cp-hyperlink").Each(func(_ int, a *goquery.Selection) {
			text, ok := htmlutil.OwnText(a)
			if !ok || !strings.Contains(text, scheduleExamPrefix) {
				return
			}
			if id, ok := presentExamID(strings.ReplaceAll(text, scheduleExamPrefix, "")); ok {
				exams = append(exams, id)
			}
		})

		requirement := passRequirement(exams)
		cert.Requirement = &requirement
		out.AddCertification(cert)
		for _, exam := range exams {
			out.AddExam(cert, exam)
		}
	}
	return nil
}
