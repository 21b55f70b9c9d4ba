// Package exams produces the exam and preparation tables.
package exams

import (
	"context"
	"fmt"

	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
)

const (
	report_exam_list   = "exam-list"
	report_exam_entry  = "exam-entry"
	report_detail_page = "detail-page"
	report_prep_type   = "prep-type"
	report_exam_uid    = "exam-uid"
	report_mapping     = "learn-mapping"
)

// Generation selects a Source.
type Generation string

const (
	GenerationHTML   Generation = "html"
	GenerationSearch Generation = "search"
)

// SummaryEntry is one exam in the json summary.
type SummaryEntry struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Published *string `json:"published"`
}

// Result accumulates the rows of a single run.
type Result struct {
	Exams       []tables.Exam
	Preparation []tables.PreparationResource
	Summary     map[string]SummaryEntry

	withBeta bool
}

// NewResult returns an empty result, the search generation adds the BETA
// column to the exams table.
func NewResult(generation Generation) *Result {
	return &Result{
		Summary:  map[string]SummaryEntry{},
		withBeta: generation == GenerationSearch,
	}
}

func (r *Result) addExam(e tables.Exam) {
	r.Exams = append(r.Exams, e)
	r.Summary[e.ExamID] = SummaryEntry{Title: e.Title, URL: e.Link, Published: e.Published}
}

func (r *Result) Tables() []tables.Table {
	examTable := tables.New(tables.NameExams, tables.ExamColumns, r.Exams)
	if r.withBeta {
		withBeta := make([]tables.ExamWithBeta, len(r.Exams))
		for i, e := range r.Exams {
			withBeta[i] = tables.ExamWithBeta(e)
		}
		examTable = tables.New(tables.NameExams, tables.ExamBetaColumns, withBeta)
	}
	return []tables.Table{
		examTable,
		tables.New(tables.NamePreparation, tables.PreparationColumns, r.Preparation),
	}
}

func (r *Result) Response() any {
	return r.Summary
}

// Source is one generation of the exam catalogue.
type Source interface {
	Extract(ctx context.Context, out *Result) error
}

type Endpoints struct {
	// ExamList is the html page that links every exam.
	ExamList string `json:"exam_list"`
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		ExamList: "https://www.microsoft.com/en-us/learning/exam-list.aspx",
	}
}

type Deps struct {
	Fetcher fetch.Fetcher
	// Detail reads exam detail pages, exam jobs usually run it with a short
	// timeout under the recoverable policy.
	Detail fetch.Detail
	// Learn is only required by the search generation.
	Learn *learnapi.Client
	Tel   telemetry.API
}

func NewSource(generation Generation, deps Deps, endpoints Endpoints) (Source, error) {
	deps.Tel = telemetry.NewScopedAPI(fmt.Sprintf("exams_%s", generation), deps.Tel)
	switch generation {
	case GenerationHTML, "":
		return HTMLSource{deps: deps, endpoints: endpoints}, nil
	case GenerationSearch:
		if deps.Learn == nil {
			return nil, fmt.Errorf("the search generation requires a learn api client")
		}
		return SearchSource{learn: deps.Learn, mapping: LearnMapping, tel: deps.Tel}, nil
	}
	return nil, fmt.Errorf("unknown exam source generation %q", generation)
}
