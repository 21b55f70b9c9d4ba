// Package tables holds the flat row types every job emits and their CSV form.
package tables

import (
	"strconv"
	"time"
)

// DateLayout is used for every calendar date written to a table.
const DateLayout = "2006-01-02"

// Table is a named set of rows that share a header. Absent values are written as
// empty cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Record is implemented by every row type.
type Record interface {
	Record() []string
}

// New builds a table out of typed rows.
func New[R Record](name string, columns []string, rows []R) Table {
	t := Table{Name: name, Columns: columns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, r.Record())
	}
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

const (
	NameCertifications = "certifications"
	NameCertExams      = "cert_exams"
	NameCompetencies   = "competencies"
	NameCompExams      = "comp_exams"
	NameExams          = "exams"
	NamePreparation    = "preparation"
	NameRetired        = "retired"
	NameSearch         = "search"
	NameLearn          = "learn"
)

var (
	CertificationColumns    = []string{"CERT_ID", "LEVEL", "CERTIFICATION", "LINK", "REQUIREMENTS"}
	CertExamColumns         = []string{"CERT_ID", "EXAM_ID"}
	CompetencyColumns       = []string{"AREA", "COMPETENCY", "LINK"}
	CompExamDetailedColumns = []string{"COMPETENCY", "OPTION", "LEVEL", "EXAM"}
	CompExamColumns         = []string{"COMPETENCY", "EXAM"}
	ExamColumns             = []string{"EXAM_ID", "EXAM", "LINK", "PUBLISHED"}
	ExamBetaColumns         = []string{"EXAM_ID", "EXAM", "LINK", "PUBLISHED", "BETA"}
	PreparationColumns      = []string{"EXAM_ID", "PREP_TYPE", "PREP_TEXT", "LINK"}
	RetiredColumns          = []string{"EXAM_ID", "RETIREMENT_DATE"}
	SearchColumns           = []string{"EXAM_ID", "SEARCH"}
	LearnColumns            = []string{"PRODUCTS", "RESOURCE_TYPE", "TITLE", "LINK"}
)

type Certification struct {
	CertID      string
	Level       string
	Title       string
	Link        string
	Requirement *string
}

func (c Certification) Record() []string {
	return []string{c.CertID, c.Level, c.Title, c.Link, deref(c.Requirement)}
}

// CertificationExam is an edge between a certification and one of its exams.
// Duplicate edges are legal.
type CertificationExam struct {
	CertID string
	ExamID string
}

func (c CertificationExam) Record() []string {
	return []string{c.CertID, c.ExamID}
}

type Competency struct {
	Area       string
	Competency string
	Link       *string
}

func (c Competency) Record() []string {
	return []string{c.Area, c.Competency, deref(c.Link)}
}

// CompetencyExam is an edge between a competency and an exam. Option and Level
// are only populated by the link scraping source.
type CompetencyExam struct {
	Competency string
	Option     string
	Level      string
	ExamID     string
}

func (c CompetencyExam) Record() []string {
	return []string{c.Competency, c.Option, c.Level, c.ExamID}
}

// CompetencyExamShort is the two column form of CompetencyExam.
type CompetencyExamShort CompetencyExam

func (c CompetencyExamShort) Record() []string {
	return []string{c.Competency, c.ExamID}
}

type Exam struct {
	ExamID    string
	Title     string
	Link      string
	Published *string
	Beta      *bool
}

func (e Exam) Record() []string {
	return []string{e.ExamID, e.Title, e.Link, deref(e.Published)}
}

// ExamWithBeta is the search api form of Exam that carries the beta flag.
type ExamWithBeta Exam

func (e ExamWithBeta) Record() []string {
	beta := ""
	if e.Beta != nil {
		beta = strconv.FormatBool(*e.Beta)
	}
	return []string{e.ExamID, e.Title, e.Link, deref(e.Published), beta}
}

type PreparationResource struct {
	ExamID string
	Type   string
	Text   *string
	Link   *string
}

func (p PreparationResource) Record() []string {
	return []string{p.ExamID, p.Type, deref(p.Text), deref(p.Link)}
}

type RetiredExam struct {
	ExamID string
	Date   *time.Time
}

func (r RetiredExam) Record() []string {
	return []string{r.ExamID, formatDate(r.Date)}
}

type SearchEntry struct {
	ExamID string
	Text   string
}

func (s SearchEntry) Record() []string {
	return []string{s.ExamID, s.Text}
}

type LearnContent struct {
	Products     string
	ResourceType string
	Title        string
	Link         string
}

func (l LearnContent) Record() []string {
	return []string{l.Products, l.ResourceType, l.Title, l.Link}
}
