package exams

import (
	"context"
	"fmt"

	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/normalize"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
)

// SearchSource drains the search api for examinations, preparation rows come
// from the learning content mapping instead of detail pages.
type SearchSource struct {
	learn   *learnapi.Client
	mapping []MappingEntry
	tel     telemetry.API
}

var examinationQuery = learnapi.Query{
	Filter: learnapi.ResourceTypeFilter("examination"),
}

// IsBeta reports whether a title ends in "beta" followed by exactly one
// character, as in "... (beta)". The check is positional on purpose and
// counts runes, not bytes.
func IsBeta(title string) bool {
	runes := []rune(title)
	if len(runes) < 5 {
		return false
	}
	return string(runes[len(runes)-5:len(runes)-1]) == "beta"
}

func (s SearchSource) Extract(ctx context.Context, out *Result) error {
	results, err := learnapi.FetchAllPages[learnapi.Exam](ctx, s.learn, examinationQuery)
	if err != nil {
		s.tel.ReportBroken(report_exam_list, err)
		return fmt.Errorf("drain examination search: %w", err)
	}

	for _, result := range results {
		examID, ok := normalize.ExamUID(result.UID)
		if !ok {
			s.tel.ReportWarning(report_exam_uid, "examination without an exam uid", result.UID)
			continue
		}

		beta := IsBeta(result.Title)
		exam := tables.Exam{
			ExamID: examID,
			Title:  result.Title,
			Link:   s.learn.ContentURL(result.URL),
			Beta:   &beta,
		}
		if date, ok := learnapi.ParseLastModified(result.LastModified); ok {
			published := date.Format(tables.DateLayout)
			exam.Published = &published
		}
		out.addExam(exam)
	}
	s.tel.ReportCount(report_exam_list, int64(len(out.Exams)))

	prep, err := MapLearnContent(ctx, s.learn, s.mapping)
	if err != nil {
		s.tel.ReportBroken(report_mapping, err)
		return err
	}
	out.Preparation = append(out.Preparation, prep...)
	return nil
}
