// Package certifications produces the certification and certification-exam
// tables. The vendor restructured its pages several times, each structure is a
// separate Source selected by configuration.
package certifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
)

const (
	report_listing        = "listing"
	report_cert_id        = "cert-id"
	report_content_lookup = "content-lookup"
	report_detail_page    = "detail-page"
	report_level          = "level"
	report_cert_type      = "cert-type"
	report_exam_uid       = "exam-uid"
)

// Level is the tier a certification belongs to.
type Level string

const (
	LevelFundamentals Level = "Fundamentals"
	LevelAssociate    Level = "Associate"
	LevelExpert       Level = "Expert"
	LevelSpecialty    Level = "Specialty"
	LevelMTA          Level = "MTA"
	LevelMCSA         Level = "MCSA"
	LevelMCSD         Level = "MCSD"
	LevelMCSE         Level = "MCSE"
	LevelMOS          Level = "MOS"
	LevelMCE          Level = "MCE"
)

var knownLevels = map[Level]bool{
	LevelFundamentals: true,
	LevelAssociate:    true,
	LevelExpert:       true,
	LevelSpecialty:    true,
	LevelMTA:          true,
	LevelMCSA:         true,
	LevelMCSD:         true,
	LevelMCSE:         true,
	LevelMOS:          true,
	LevelMCE:          true,
}

// ParseLevel returns false for a level outside of the known vocabulary, the
// level is still returned verbatim so that callers can decide what to do.
func ParseLevel(name string) (Level, bool) {
	level := Level(name)
	return level, knownLevels[level]
}

// multiStepLevels are the credentials that require step 1 skills in addition
// to their exams.
var multiStepLevels = map[Level]bool{
	LevelMCSD: true,
	LevelMCSE: true,
}

// Result accumulates the rows of a single run.
type Result struct {
	Certifications []tables.Certification
	Exams          []tables.CertificationExam
	// Summary mirrors the rows as level -> certification title -> exam ids.
	Summary map[string]map[string][]string
}

func NewResult() *Result {
	return &Result{Summary: map[string]map[string][]string{}}
}

// AddLevel makes a level show up in the summary even when it has no
// certifications.
func (r *Result) AddLevel(level string) map[string][]string {
	byTitle, ok := r.Summary[level]
	if !ok {
		byTitle = map[string][]string{}
		r.Summary[level] = byTitle
	}
	return byTitle
}

// AddCertification records a certification, it must be called before any of
// its exams are added.
func (r *Result) AddCertification(c tables.Certification) {
	r.Certifications = append(r.Certifications, c)
	byTitle := r.AddLevel(c.Level)
	if _, ok := byTitle[c.Title]; !ok {
		byTitle[c.Title] = []string{}
	}
}

// presentExamID trims an exam id and reports false for values that carry no
// identifier.
func presentExamID(examID string) (string, bool) {
	examID = strings.TrimSpace(examID)
	if examID == "" || examID == "None" {
		return "", false
	}
	return examID, true
}

// AddExam records an edge, duplicate edges are kept and blank or "None" ids
// are dropped.
func (r *Result) AddExam(c tables.Certification, examID string) {
	examID, ok := presentExamID(examID)
	if !ok {
		return
	}
	r.Exams = append(r.Exams, tables.CertificationExam{CertID: c.CertID, ExamID: examID})
	byTitle := r.AddLevel(c.Level)
	byTitle[c.Title] = append(byTitle[c.Title], examID)
}

func (r *Result) Tables() []tables.Table {
	return []tables.Table{
		tables.New(tables.NameCertifications, tables.CertificationColumns, r.Certifications),
		tables.New(tables.NameCertExams, tables.CertExamColumns, r.Exams),
	}
}

func (r *Result) Response() any {
	return map[string]any{"certifications": r.Summary}
}

// Source is one generation of the vendor's certification pages.
type Source interface {
	Extract(ctx context.Context, out *Result) error
}

// Generation selects a Source.
type Generation string

const (
	GenerationLegacy  Generation = "legacy"
	GenerationUnified Generation = "unified"
	GenerationSearch  Generation = "search"
)

// Endpoints are the upstream locations the sources read from.
type Endpoints struct {
	// LearningBase prefixes the relative certification page urls.
	LearningBase string `json:"learning_base"`
	// ContentAPI is the GetContent endpoint that serves json by property name.
	ContentAPI string `json:"content_api"`
	// CardsProperty is the GetContent property listing the legacy certifications.
	CardsProperty string `json:"cards_property"`
	// ListProperty is the GetContent property listing every certification.
	ListProperty string `json:"list_property"`
	// RoleBasedListing is the html listing of role based certifications.
	RoleBasedListing string `json:"role_based_listing"`
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		LearningBase:     "https://www.microsoft.com/en-us/learning/",
		ContentAPI:       "https://www.microsoft.com/learning/proxy2/LocAPIPROD/api/values/GetContent",
		CardsProperty:    "certificationCards",
		ListProperty:     "allCertifications",
		RoleBasedListing: "https://www.microsoft.com/en-us/learning/browse-new-certification.aspx",
	}
}

// Deps are the collaborators shared by every source.
type Deps struct {
	// Fetcher reads the root listings, failures there abort the run.
	Fetcher fetch.Fetcher
	// Detail reads per certification pages under the configured policy.
	Detail fetch.Detail
	// Learn is only required by the search generation.
	Learn *learnapi.Client
	Tel   telemetry.API
}

// NewSource returns the Source of the given generation.
func NewSource(generation Generation, deps Deps, endpoints Endpoints) (Source, error) {
	deps.Tel = telemetry.NewScopedAPI(fmt.Sprintf("certifications_%s", generation), deps.Tel)
	switch generation {
	case GenerationLegacy, "":
		return LegacySource{sourceBase{deps: deps, endpoints: endpoints}}, nil
	case GenerationUnified:
		return UnifiedSource{sourceBase{deps: deps, endpoints: endpoints}}, nil
	case GenerationSearch:
		if deps.Learn == nil {
			return nil, fmt.Errorf("the search generation requires a learn api client")
		}
		return SearchSource{learn: deps.Learn, tel: deps.Tel}, nil
	}
	return nil, fmt.Errorf("unknown certification source generation %q", generation)
}

func (e Endpoints) pageURL(relative string) string {
	if strings.HasPrefix(relative, "http://") || strings.HasPrefix(relative, "https://") {
		return relative
	}
	return strings.TrimRight(e.LearningBase, "/") + "/" + strings.TrimLeft(relative, "/")
}
