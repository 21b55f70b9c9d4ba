package certifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/normalize"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
)

// searchLevels maps the search api's skill levels onto certification levels.
var searchLevels = map[string]Level{
	"beginner":     LevelFundamentals,
	"intermediate": LevelAssociate,
	"advanced":     LevelExpert,
}

// SearchSource drains the search api, every result embeds its exams.
type SearchSource struct {
	learn *learnapi.Client
	tel   telemetry.API
}

var certificationQuery = learnapi.Query{
	Filter: learnapi.ResourceTypeFilter("certification"),
}

func (s SearchSource) level(result learnapi.Certification) string {
	for _, name := range result.Levels {
		if level, ok := searchLevels[name]; ok {
			return string(level)
		}
	}
	joined := strings.Join(result.Levels, ";")
	s.tel.ReportWarning(report_level, "unknown certification level", result.UID, joined)
	return joined
}

func (s SearchSource) Extract(ctx context.Context, out *Result) error {
	results, err := learnapi.FetchAllPages[learnapi.Certification](ctx, s.learn, certificationQuery)
	if err != nil {
		s.tel.ReportBroken(report_listing, err)
		return fmt.Errorf("drain certification search: %w", err)
	}

	for _, result := range results {
		exams := []string{}
		for _, uid := range result.Exams {
			id, ok := normalize.ExamUID(uid)
			if !ok {
				s.tel.ReportWarning(report_exam_uid, "certification references a non exam uid", result.UID, uid)
				continue
			}
			exams = append(exams, id)
		}

		requirement := strings.TrimSpace(result.Summary)
		if requirement == "" {
			requirement = passRequirement(exams)
		}
		cert := tables.Certification{
			CertID:      result.UID,
			Level:       s.level(result),
			Title:       result.Title,
			Link:        s.learn.ContentURL(result.URL),
			Requirement: &requirement,
		}
		out.AddCertification(cert)
		for _, exam := range exams {
			out.AddExam(cert, exam)
		}
	}
	return nil
}

// BuildExamMap returns the exams of every certification keyed by the
// certification's uid.
func BuildExamMap(ctx context.Context, learn *learnapi.Client) (map[string][]string, error) {
	results, err := learnapi.FetchAllPages[learnapi.Certification](ctx, learn, certificationQuery)
	if err != nil {
		return nil, fmt.Errorf("build certification exam map: %w", err)
	}
	examMap := make(map[string][]string, len(results))
	for _, result := range results {
		exams := []string{}
		for _, uid := range result.Exams {
			id, ok := normalize.ExamUID(uid)
			if !ok {
				continue
			}
			exams = append(exams, id)
		}
		examMap[result.UID] = exams
	}
	return examMap, nil
}
