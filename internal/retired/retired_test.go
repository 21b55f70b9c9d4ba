package retired

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/testutil"
)

func date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestParseDate(t *testing.T) {
	testCases := []struct {
		text     string
		expected *time.Time
		err      bool
	}{
		{text: "Retiring on January 15, 2021", expected: date(2021, time.January, 15)},
		{text: "retiring on march 3, 2020", expected: date(2020, time.March, 3)},
		{text: "June 30, 2021", expected: date(2021, time.June, 30)},
		{text: "Exam codes", expected: nil},
		{text: "Retiring January 2021", err: true},
	}

	for _, test := range testCases {
		t.Run(test.text, func(t *testing.T) {
			parsed, err := ParseDate(test.text)
			if test.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, parsed)
		})
	}
}

func TestParseRowDate(t *testing.T) {
	testCases := []struct {
		text     string
		expected *time.Time
	}{
		{text: "2021", expected: date(2021, time.January, 1)},
		{text: "March 2021", expected: date(2021, time.March, 1)},
		{text: "December 31, 2022", expected: date(2022, time.December, 31)},
	}

	for _, test := range testCases {
		t.Run(test.text, func(t *testing.T) {
			parsed, err := ParseRowDate(test.text)
			require.NoError(t, err)
			require.Equal(t, test.expected, parsed)
		})
	}
}

const listing = `<html><body><main id="main">
<table>
	<thead><tr><th>Retiring on January 31, 2021</th><th>Exam</th></tr></thead>
	<tbody>
		<tr><td><a href="/az-103">AZ-103:</a></td><td>Azure Administrator</td></tr>
		<tr><td><a href="/az-203">AZ-203</a></td><td>Azure Developer</td></tr>
	</tbody>
</table>
<table>
	<thead><tr><th>Exam</th><th>Title</th><th>Retirement date</th></tr></thead>
	<tbody>
		<tr><td>70-532:</td><td>Developing Azure Solutions</td><td>2019</td></tr>
		<tr><td>70-533</td><td>Implementing Azure Infrastructure</td><td>March 2019</td></tr>
		<tr><td>70-535</td><td>Architecting Azure Solutions</td><td>December 31, 2018</td></tr>
		<tr><td>broken row</td></tr>
	</tbody>
</table>
</main>
<table><thead><tr><th>Outside of main</th></tr></thead><tbody><tr><td>XX-000</td><td></td><td>2000</td></tr></tbody></table>
</body></html>`

func TestExtract(t *testing.T) {
	server := testutil.NewFixtureServer(t, testutil.Fixtures{"/retired": listing})
	rec := &telemetry.Recorder{}
	extractor := NewExtractor(fetch.NewClient(fetch.Options{}, rec), server.URL+"/retired", rec)

	out := NewResult()
	require.NoError(t, extractor.Extract(context.Background(), out))

	require.Equal(t, []tables.RetiredExam{
		{ExamID: "AZ-103", Date: date(2021, time.January, 31)},
		{ExamID: "AZ-203", Date: date(2021, time.January, 31)},
		{ExamID: "70-532", Date: date(2019, time.January, 1)},
		{ExamID: "70-533", Date: date(2019, time.March, 1)},
		{ExamID: "70-535", Date: date(2018, time.December, 31)},
	}, out.Retired)

	expected := "2019-03-01"
	require.Equal(t, &expected, out.Summary["70-533"])
	require.Len(t, rec.Reports("warning", report_row), 1)

	ts := out.Tables()
	require.Equal(t, []string{"AZ-103", "2021-01-31"}, ts[0].Rows[0])
}

func TestExtractUnparsableDate(t *testing.T) {
	server := testutil.NewFixtureServer(t, testutil.Fixtures{"/retired": `<html><body><main id="main">
		<table><thead><tr><th>Retiring sometime in June 2021</th></tr></thead>
		<tbody><tr><td><a>AZ-100</a></td></tr></tbody></table>
	</main></body></html>`})
	rec := &telemetry.Recorder{}
	extractor := NewExtractor(fetch.NewClient(fetch.Options{}, rec), server.URL+"/retired", rec)

	require.Error(t, extractor.Extract(context.Background(), NewResult()))
	require.NotEmpty(t, rec.Reports("broken", report_listing))
}
