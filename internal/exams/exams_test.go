package exams

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/testutil"
)

func ptr(s string) *string {
	return &s
}

func TestParseListEntry(t *testing.T) {
	testCases := []struct {
		text     string
		ok       bool
		expected ListEntry
	}{
		{
			text:     "AZ-104: Microsoft Azure Administrator",
			ok:       true,
			expected: ListEntry{ExamID: "AZ-104", Title: "Microsoft Azure Administrator"},
		},
		{
			text: "AZ-220: Azure IoT Developer (beta) (releases March 2021)",
			ok:   true,
			expected: ListEntry{
				ExamID:    "AZ-220",
				Title:     "Azure IoT Developer",
				Published: ptr("March 2021"),
			},
		},
		{
			text: "MS-700: Managing Teams (released January 2020)",
			ok:   true,
			expected: ListEntry{
				ExamID:    "MS-700",
				Title:     "Managing Teams",
				Published: ptr("January 2020"),
			},
		},
		{
			text:     "DP-300: Time: a title with a colon",
			ok:       true,
			expected: ListEntry{ExamID: "DP-300", Title: "Time: a title with a colon"},
		},
		{text: "No colon here"},
		{text: ": no code"},
	}

	for _, test := range testCases {
		t.Run(test.text, func(t *testing.T) {
			entry, ok := ParseListEntry(test.text)
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.expected, entry)
		})
	}
}

func TestIsBeta(t *testing.T) {
	testCases := []struct {
		title    string
		expected bool
	}{
		{title: "Azure IoT Developer (beta)", expected: true},
		{title: "Azure IoT Developer [beta]", expected: true},
		{title: "Azure IoT Developer beta", expected: false},
		{title: "Azure IoT Developer (Beta)", expected: false},
		{title: "beta", expected: false},
		{title: "Azure IoT Developer betaé", expected: true},
		{title: "Azure IoT Developer (beta)é", expected: false},
		{title: "Développeur (beta)", expected: true},
		{title: "", expected: false},
	}
	for _, test := range testCases {
		t.Run(test.title, func(t *testing.T) {
			require.Equal(t, test.expected, IsBeta(test.title))
		})
	}
}

func TestParsePrepType(t *testing.T) {
	testCases := []struct {
		id       string
		expected PrepType
		ok       bool
	}{
		{id: "training", expected: PrepTraining, ok: true},
		{id: "practice-test", expected: PrepPracticeTest, ok: true},
		{id: "practicetest", expected: PrepPracticeTest, ok: true},
		{id: "online-training", expected: PrepOnlineTraining, ok: true},
		{id: "Books", expected: PrepBooks, ok: true},
		{id: "podcasts"},
		{id: ""},
	}
	for _, test := range testCases {
		t.Run(test.id, func(t *testing.T) {
			prepType, ok := ParsePrepType(test.id)
			require.Equal(t, test.ok, ok)
			require.Equal(t, test.expected, prepType)
		})
	}
}

const examList = `<html><body>
<a class="mscom-link" href="/exam-az-104">AZ-104: Microsoft Azure Administrator</a>
<a class="mscom-link" href="/exam-az-220">AZ-220: Azure IoT Developer (beta) (releases March 2021)</a>
<a class="mscom-link" href="/exam-broken">No colon here</a>
<a class="mscom-link" href="/exam-missing">AZ-999: Missing page</a>
<a class="other-link" href="/ignored">XX-000: Ignored</a>
</body></html>`

const az104Detail = `<html><body>
<div id="msl2ExamHero-details"><ul><li>Published: September 2020</li><li>Languages: English</li></ul></div>
<div id="preparation-options"><dl>
	<dd id="training"><ul><li><a href="https://training.example.com/az-104t00">Course AZ-104T00</a></li></ul></dd>
	<dd id="practice-test"><ul><li><a href="https://practice.example.com/az-104">Official practice test</a></li></ul></dd>
	<dd id="books"><div><div><p><strong>Exam Ref AZ-104</strong><a href="https://books.example.com/a">Buy from A</a><a href="https://books.example.com/b">Buy from B</a></p></div></div></dd>
	<dd id="podcasts"><ul><li><a href="https://podcasts.example.com">Podcast</a></li></ul></dd>
</dl></div>
</body></html>`

func TestHTMLSource(t *testing.T) {
	server := testutil.NewFixtureServer(t, testutil.Fixtures{
		"/exam-list":   examList,
		"/exam-az-104": az104Detail,
		"/exam-az-220": `<html><body><p>coming soon</p></body></html>`,
	})
	rec := &telemetry.Recorder{}
	client := fetch.NewClient(fetch.Options{}, rec)
	source, err := NewSource(GenerationHTML, Deps{
		Fetcher: client,
		Detail:  fetch.NewDetail(client, fetch.PolicyRecoverable, 5*time.Second, rec),
		Tel:     rec,
	}, Endpoints{ExamList: server.URL + "/exam-list"})
	require.NoError(t, err)

	out := NewResult(GenerationHTML)
	require.NoError(t, source.Extract(context.Background(), out))

	require.Equal(t, []tables.Exam{
		{
			ExamID:    "AZ-104",
			Title:     "Microsoft Azure Administrator",
			Link:      server.URL + "/exam-az-104",
			Published: ptr("Published: September 2020"),
		},
		{
			ExamID:    "AZ-220",
			Title:     "Azure IoT Developer",
			Link:      server.URL + "/exam-az-220",
			Published: ptr("March 2021"),
		},
		{
			ExamID: "AZ-999",
			Title:  "Missing page",
			Link:   server.URL + "/exam-missing",
		},
	}, out.Exams)

	require.Equal(t, []tables.PreparationResource{
		{ExamID: "AZ-104", Type: "training", Text: ptr("Course AZ-104T00"), Link: ptr("https://training.example.com/az-104t00")},
		{ExamID: "AZ-104", Type: "practice-test", Text: ptr("Official practice test"), Link: ptr("https://practice.example.com/az-104")},
		{ExamID: "AZ-104", Type: "books", Text: ptr("Exam Ref AZ-104"), Link: ptr("https://books.example.com/a")},
		{ExamID: "AZ-104", Type: "books", Text: ptr("Exam Ref AZ-104"), Link: ptr("https://books.example.com/b")},
	}, out.Preparation)

	require.Equal(t, SummaryEntry{
		Title:     "Azure IoT Developer",
		URL:       server.URL + "/exam-az-220",
		Published: ptr("March 2021"),
	}, out.Summary["AZ-220"])
	require.Len(t, out.Summary, 3)

	require.Len(t, rec.Reports("warning", report_exam_entry), 1)
	require.Len(t, rec.Reports("warning", report_detail_page), 1)
	require.Len(t, rec.Reports("warning", report_prep_type), 1)

	ts := out.Tables()
	require.Equal(t, tables.ExamColumns, ts[0].Columns)
	require.Equal(t, []string{"AZ-999", "Missing page", server.URL + "/exam-missing", ""}, ts[0].Rows[2])
}

func TestHTMLSourceFatalPolicy(t *testing.T) {
	server := testutil.NewFixtureServer(t, testutil.Fixtures{
		"/exam-list": examList,
	})
	rec := &telemetry.Recorder{}
	client := fetch.NewClient(fetch.Options{}, rec)
	source, err := NewSource(GenerationHTML, Deps{
		Fetcher: client,
		Detail:  fetch.NewDetail(client, fetch.PolicyFatal, 5*time.Second, rec),
		Tel:     rec,
	}, Endpoints{ExamList: server.URL + "/exam-list"})
	require.NoError(t, err)
	require.Error(t, source.Extract(context.Background(), NewResult(GenerationHTML)))
}

type searchResults struct {
	Count   int   `json:"count"`
	Results []any `json:"results"`
}

// newSearchServer answers examination queries and learning content queries
// with different result sets.
func newSearchServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var out searchResults
		switch r.URL.Query().Get("$filter") {
		case learnapi.ResourceTypeFilter("examination"):
			out.Results = []any{
				map[string]any{"uid": "exam.az-104", "title": "Microsoft Azure Administrator", "url": "/learn/certifications/exams/az-104", "last_modified": "9/1/2020 12:00:00 AM"},
				map[string]any{"uid": "exam.az-220", "title": "Azure IoT Developer (beta)", "url": "/learn/certifications/exams/az-220", "last_modified": ""},
				map[string]any{"uid": "course.az-104t00", "title": "Not an exam", "url": "/x"},
			}
		case "mapped":
			out.Results = []any{
				map[string]any{"uid": "learn.intro", "title": "Intro to Azure", "url": "/learn/paths/intro/", "resource_type": "learning path"},
			}
		}
		out.Count = len(out.Results)
		w.Header().Set("content-type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(out))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSearchSource(t *testing.T) {
	server := newSearchServer(t)
	rec := &telemetry.Recorder{}
	client := fetch.NewClient(fetch.Options{}, rec)
	learn := learnapi.NewClient(client, learnapi.Options{
		Endpoint:    server.URL,
		ContentBase: "https://learn.example.com",
	}, rec)

	source := SearchSource{
		learn:   learn,
		mapping: []MappingEntry{{Filter: "mapped", Exams: []string{"AZ-104", "AZ-900"}}},
		tel:     rec,
	}
	out := NewResult(GenerationSearch)
	require.NoError(t, source.Extract(context.Background(), out))

	beta, notBeta := true, false
	require.Equal(t, []tables.Exam{
		{
			ExamID:    "AZ-104",
			Title:     "Microsoft Azure Administrator",
			Link:      "https://learn.example.com/learn/certifications/exams/az-104",
			Published: ptr("2020-09-01"),
			Beta:      &notBeta,
		},
		{
			ExamID: "AZ-220",
			Title:  "Azure IoT Developer (beta)",
			Link:   "https://learn.example.com/learn/certifications/exams/az-220",
			Beta:   &beta,
		},
	}, out.Exams)

	link := "https://learn.example.com/learn/paths/intro/"
	require.Equal(t, []tables.PreparationResource{
		{ExamID: "AZ-104", Type: "learning path", Text: ptr("Intro to Azure"), Link: &link},
		{ExamID: "AZ-900", Type: "learning path", Text: ptr("Intro to Azure"), Link: &link},
	}, out.Preparation)

	require.Len(t, rec.Reports("warning", report_exam_uid), 1)

	ts := out.Tables()
	require.Equal(t, tables.ExamBetaColumns, ts[0].Columns)
	require.Equal(t, "true", ts[0].Rows[1][4])
}

func TestLearnMappingIsWellFormed(t *testing.T) {
	require.NotEmpty(t, LearnMapping)
	for _, entry := range LearnMapping {
		require.NotEmpty(t, entry.Filter)
		require.NotEmpty(t, entry.Exams)
	}
}
