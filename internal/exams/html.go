package exams

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/lib/htmlutil"
)

// HTMLSource reads the exam list page and each exam's detail page.
type HTMLSource struct {
	deps      Deps
	endpoints Endpoints
}

// ListEntry is an exam as it appears on the exam list.
type ListEntry struct {
	ExamID    string
	Title     string
	Published *string
}

var releasePrefixes = strings.NewReplacer("releases ", "", "released ", "")

// ParseListEntry splits "{code}: {title}" at the first colon. Titles that
// mention a release carry their publish date in a parenthetical, which is
// moved into Published.
func ParseListEntry(text string) (ListEntry, bool) {
	code, title, found := strings.Cut(text, ":")
	if !found {
		return ListEntry{}, false
	}
	entry := ListEntry{ExamID: strings.TrimSpace(code)}
	if entry.ExamID == "" {
		return ListEntry{}, false
	}

	if strings.Contains(title, "release") {
		stripped := strings.ReplaceAll(title, "(beta)", "")
		if _, rest, ok := strings.Cut(stripped, "("); ok {
			published, _, _ := strings.Cut(rest, ")")
			published = releasePrefixes.Replace(published)
			entry.Published = &published
		}
		title, _, _ = strings.Cut(title, " (")
	}
	entry.Title = strings.TrimSpace(title)
	return entry, true
}

func (s HTMLSource) Extract(ctx context.Context, out *Result) error {
	doc, err := fetch.Document(ctx, s.deps.Fetcher, s.endpoints.ExamList)
	if err != nil {
		s.deps.Tel.ReportBroken(report_exam_list, err)
		return fmt.Errorf("fetch exam list: %w", err)
	}

	var anchors []*goquery.Selection
	doc.Find("a.mscom-link").Each(func(_ int, a *goquery.Selection) {
		anchors = append(anchors, a)
	})

	for _, a := range anchors {
		text, ok := htmlutil.OwnText(a)
		if !ok {
			continue
		}
		entry, ok := ParseListEntry(text)
		if !ok {
			s.deps.Tel.ReportWarning(report_exam_entry, "exam list entry is not of the form 'code: title'", text)
			continue
		}

		link, _ := a.Attr("href")
		if resolved, err := doc.Url.Parse(strings.TrimSpace(link)); err == nil {
			link = resolved.String()
		}
		s.deps.Tel.ReportDebug("exam", entry.ExamID, entry.Title)

		exam := tables.Exam{
			ExamID:    entry.ExamID,
			Title:     entry.Title,
			Link:      link,
			Published: entry.Published,
		}

		detail, err := s.deps.Detail.Document(ctx, report_detail_page, link)
		if err != nil {
			return fmt.Errorf("exam '%s': %w", entry.ExamID, err)
		}
		if detail != nil {
			if exam.Published == nil {
				exam.Published = htmlutil.OwnTextPtr(detail.Find("#msl2ExamHero-details > ul > li").First())
			}
			out.Preparation = append(out.Preparation, s.preparation(entry.ExamID, detail)...)
		}
		out.addExam(exam)
	}
	s.deps.Tel.ReportCount(report_exam_list, int64(len(out.Exams)))
	return nil
}

func attrPtr(sel *goquery.Selection, name string) *string {
	value, ok := sel.Attr(name)
	if !ok {
		return nil
	}
	return &value
}

// preparation reads the preparation options region of an exam detail page.
func (s HTMLSource) preparation(examID string, doc *goquery.Document) []tables.PreparationResource {
	var rows []tables.PreparationResource
	doc.Find("div#preparation-options > dl > dd").Each(func(_ int, dd *goquery.Selection) {
		id, _ := dd.Attr("id")
		prepType, ok := ParsePrepType(id)
		if !ok {
			s.deps.Tel.ReportWarning(report_prep_type, "unknown preparation type", examID, id)
			return
		}

		dd.ChildrenFiltered("ul").ChildrenFiltered("li").ChildrenFiltered("a").Each(func(_ int, a *goquery.Selection) {
			rows = append(rows, tables.PreparationResource{
				ExamID: examID,
				Type:   string(prepType),
				Text:   htmlutil.OwnTextPtr(a),
				Link:   attrPtr(a, "href"),
			})
		})

		if prepType != PrepBooks {
			return
		}
		dd.ChildrenFiltered("div").Each(func(_ int, book *goquery.Selection) {
			paragraphs := book.ChildrenFiltered("div").ChildrenFiltered("p")
			label := htmlutil.OwnTextPtr(paragraphs.ChildrenFiltered("strong").First())
			paragraphs.ChildrenFiltered("a").Each(func(_ int, a *goquery.Selection) {
				rows = append(rows, tables.PreparationResource{
					ExamID: examID,
					Type:   string(prepType),
					Text:   label,
					Link:   attrPtr(a, "href"),
				})
			})
		})
	})
	return rows
}
