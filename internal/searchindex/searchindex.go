// Package searchindex rebuilds the denormalized (exam, search text) table out
// of the current snapshots of the other jobs.
package searchindex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tayganr/certcomp/internal/store"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
)

const (
	report_read  = "read"
	report_entry = "entry"
)

// projection reads one column pair of a current snapshot as (exam id, text).
type projection struct {
	file   string
	examID string
	text   string
}

var projections = []projection{
	{file: store.CurrentPath(tables.NameExams), examID: "EXAM_ID", text: "EXAM_ID"},
	{file: store.CurrentPath(tables.NameExams), examID: "EXAM_ID", text: "EXAM"},
	{file: store.CurrentPath(tables.NameCompExams), examID: "EXAM", text: "COMPETENCY"},
	{file: store.CurrentPath(tables.NameCertExams), examID: "EXAM_ID", text: "CERT_ID"},
	{file: store.CurrentPath(tables.NamePreparation), examID: "EXAM_ID", text: "PREP_TEXT"},
}

// Builder reads and writes the search container.
type Builder struct {
	reader    store.Reader
	persister store.Persister
	tel       telemetry.API
}

func NewBuilder(reader store.Reader, persister store.Persister, tel telemetry.API) Builder {
	return Builder{
		reader:    reader,
		persister: persister,
		tel:       telemetry.NewScopedAPI("searchindex", tel),
	}
}

// examColumn picks the exam column of a snapshot, comp_exams was written with
// "EXAM" by one generation and "EXAM_ID" by another.
func examColumn(data []byte, preferred string) string {
	if tables.HasColumn(data, preferred) {
		return preferred
	}
	if preferred == "EXAM" && tables.HasColumn(data, "EXAM_ID") {
		return "EXAM_ID"
	}
	return preferred
}

func (b Builder) read(ctx context.Context, p projection) ([]tables.SearchEntry, error) {
	data, err := b.reader.Raw(ctx, p.file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.file, err)
	}
	examID := examColumn(data, p.examID)
	t, err := tables.DecodeCSV(p.file, data, []string{examID, p.text})
	if err != nil {
		return nil, err
	}
	entries := make([]tables.SearchEntry, 0, len(t.Rows))
	for _, row := range t.Rows {
		entries = append(entries, tables.SearchEntry{ExamID: row[0], Text: row[1]})
	}
	return entries, nil
}

// Union concatenates every source, drops entries with an empty side and
// removes exact duplicates keeping the first occurrence.
func Union(sources ...[]tables.SearchEntry) []tables.SearchEntry {
	seen := map[tables.SearchEntry]bool{}
	var out []tables.SearchEntry
	for _, source := range sources {
		for _, entry := range source {
			entry.ExamID = strings.TrimSpace(entry.ExamID)
			entry.Text = strings.TrimSpace(entry.Text)
			if entry.ExamID == "" || entry.Text == "" {
				continue
			}
			if seen[entry] {
				continue
			}
			seen[entry] = true
			out = append(out, entry)
		}
	}
	return out
}

// Build reads every projection and returns the de-duplicated index. All
// snapshots are read even when one fails so that every missing input is
// reported at once.
func (b Builder) Build(ctx context.Context) ([]tables.SearchEntry, error) {
	var errs []error
	sources := make([][]tables.SearchEntry, 0, len(projections))
	for _, p := range projections {
		entries, err := b.read(ctx, p)
		if err != nil {
			b.tel.ReportBroken(report_read, err)
			errs = append(errs, err)
			continue
		}
		sources = append(sources, entries)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	index := Union(sources...)
	b.tel.ReportCount(report_entry, int64(len(index)))
	return index, nil
}

// Run builds the index and writes it as the current search snapshot.
func (b Builder) Run(ctx context.Context) (tables.Table, error) {
	index, err := b.Build(ctx)
	if err != nil {
		return tables.Table{}, err
	}
	t := tables.New(tables.NameSearch, tables.SearchColumns, index)
	_, err = b.persister.PersistCurrent(ctx, t)
	if err != nil {
		return tables.Table{}, fmt.Errorf("write search index: %w", err)
	}
	return t, nil
}
