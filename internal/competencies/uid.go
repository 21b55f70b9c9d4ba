package competencies

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tayganr/certcomp/internal/certifications"
	"github.com/tayganr/certcomp/internal/normalize"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/lib/htmlutil"
)

// legacyExamLink matches the retired numeric exam pages such as
// ".../exams/70-532".
var legacyExamLink = regexp.MustCompile(`(?i)exams?[-/]\d{2}-\d{3}`)

const certificationUIDPrefix = "certification"

// UIDSource resolves the learning content linked from a competency page
// through each page's uid, certifications are expanded with the exam map of
// the search api.
type UIDSource struct {
	deps      Deps
	endpoints Endpoints
}

func (s UIDSource) Extract(ctx context.Context, out *Result) error {
	examMap, err := certifications.BuildExamMap(ctx, s.deps.Learn)
	if err != nil {
		s.deps.Tel.ReportBroken(report_exam_map, err)
		return err
	}
	s.deps.Tel.ReportCount(report_exam_map, int64(len(examMap)))

	pages, err := walkTaxonomy(ctx, s.deps, s.endpoints, out)
	if err != nil {
		return err
	}

	for _, page := range pages {
		if page.link == nil {
			continue
		}
		err := s.extractCompetency(ctx, page, examMap, out)
		if err != nil {
			return fmt.Errorf("competency '%s': %w", page.row.Competency, err)
		}
	}
	return nil
}

// orderedSet keeps the first occurrence of every key.
type orderedSet struct {
	seen map[string]bool
	keys []string
}

func (s *orderedSet) add(key string) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.keys = append(s.keys, key)
}

func (s UIDSource) extractCompetency(ctx context.Context, page competencyPage, examMap map[string][]string, out *Result) error {
	doc, err := s.deps.Detail.Document(ctx, report_detail_page, page.link.String())
	if err != nil || doc == nil {
		return err
	}

	links := orderedSet{}
	for _, anchor := range outboundLinks(ctx, doc) {
		if !strings.HasPrefix(anchor, s.endpoints.LearnPath) || legacyExamLink.MatchString(anchor) {
			continue
		}
		links.add(anchor)
	}

	uids := orderedSet{}
	for _, link := range links.keys {
		linked, err := s.deps.Detail.Document(ctx, report_detail_page, link)
		if err != nil {
			return err
		}
		if linked == nil {
			continue
		}
		uid, ok := linked.Find(`meta[name="uid"]`).First().Attr("content")
		uid = strings.TrimSpace(uid)
		if !ok || uid == "" {
			s.deps.Tel.ReportDebug("linked page has no uid", link)
			continue
		}
		uids.add(uid)
	}

	for _, uid := range uids.keys {
		for _, examID := range s.resolve(uid, examMap) {
			out.Exams = append(out.Exams, tables.CompetencyExam{
				Competency: page.row.Competency,
				ExamID:     examID,
			})
		}
	}
	return nil
}

// resolve maps a content uid to the exams it stands for.
func (s UIDSource) resolve(uid string, examMap map[string][]string) []string {
	switch {
	case strings.HasPrefix(uid, "exam."):
		examID, ok := normalize.ExamUID(uid)
		if !ok {
			s.deps.Tel.ReportWarning(report_uid, "exam uid without an identifier", uid)
			return nil
		}
		return []string{examID}
	case strings.HasPrefix(uid, certificationUIDPrefix):
		exams, ok := examMap[uid]
		if !ok {
			s.deps.Tel.ReportDebug("certification not in exam map", uid)
		}
		return exams
	}
	s.deps.Tel.ReportWarning(report_uid, "unsupported uid prefix", uid)
	return nil
}

func outboundLinks(ctx context.Context, doc *goquery.Document) []string {
	var hrefs []string
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Url, doc.Find("a")) {
		hrefs = append(hrefs, anchor.Href)
	}
	return hrefs
}
