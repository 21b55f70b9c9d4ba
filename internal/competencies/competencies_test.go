package competencies

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/testutil"
)

const taxonomy = `<html><body>
<div class="panel-group hidden-md-x hidden-lg simple-tabs-accordion-sm">
	<div>
		<span class="accordion-heading-text">Cloud</span>
		<div class="col-xs-12 col-sm-6 col-md-x-4 clickable-panel column-content-item">
			<h3 class="subhead2 headline-hoverable">Cloud Platform</h3>
			<a class="cta cta-x cta-x-secondary" href="/competency/cloud-platform">Learn more</a>
		</div>
		<div class="col-xs-12 col-sm-6 col-md-x-4 clickable-panel column-content-item">
			<h3 class="subhead2 headline-hoverable">Cloud Platform</h3>
		</div>
	</div>
	<div>
		<span class="accordion-heading-text">Data</span>
		<div class="col-xs-12 col-sm-6 col-md-x-4 clickable-panel column-content-item">
			<h3 class="subhead2 headline-hoverable">Data Analytics</h3>
			<a class="cta cta-x cta-x-secondary" href="/competency/data-analytics">Learn more</a>
		</div>
	</div>
</div>
</body></html>`

const optionsPage = `<html><body>
<div class="complex-table-accordion-device">
	<div class="panel panel-default">
		<span class="accordion-heading-text">Option 1</span>
		<div class="panel-body">
			<div class="col-md-12">
				<a href="/learning/exam-az-104">Exam AZ-104: Microsoft Azure Administrator</a>
				<a href="/somewhere">Exam 532</a>
			</div>
			<div class="col-md-12">
				<a href="/learning/azure-architect.aspx"><span>Azure Solutions Architect</span></a>
				<a href="/elsewhere">Read more</a>
				<a>Exam without a link</a>
			</div>
		</div>
	</div>
</div>
</body></html>`

const architectPage = `<html><body><div id="msl-certification-azure">
	<div><section><div><div><p><a href="#">Exam AZ-303</a><a href="#">Exam AZ-304</a></p></div></div></section></div>
</div></body></html>`

func uidPage(uid string) string {
	return `<html><head><meta name="uid" content="` + uid + `"></head><body></body></html>`
}

func newDeps(t *testing.T, server *testutil.FixtureServer) (Deps, Endpoints, *telemetry.Recorder) {
	rec := &telemetry.Recorder{}
	client := fetch.NewClient(fetch.Options{Timeout: 5 * time.Second}, rec)
	deps := Deps{
		Fetcher: client,
		Detail:  fetch.NewDetail(client, fetch.PolicyRecoverable, time.Second, rec),
		Learn:   learnapi.NewClient(client, learnapi.Options{Endpoint: server.URL + "/search"}, rec),
		Tel:     rec,
	}
	endpoints := Endpoints{
		Taxonomy:          server.URL + "/competencies",
		ExamLinkPrefix:    server.URL + "/learning/exam-",
		CertificationPath: server.URL + "/learning/",
		LearnPath:         server.URL + "/learn/",
	}
	return deps, endpoints, rec
}

func TestTiers(t *testing.T) {
	require.Equal(t, []Tier{}, Tiers(0))
	require.Equal(t, []Tier{TierSilver}, Tiers(1))
	require.Equal(t, []Tier{TierSilver, TierGold, TierSilver}, Tiers(3))
}

func TestLinkSource(t *testing.T) {
	server := testutil.NewFixtureServer(t, testutil.Fixtures{
		"/competencies":                  taxonomy,
		"/competency/cloud-platform":     optionsPage,
		"/learning/azure-architect.aspx": architectPage,
	})
	deps, endpoints, rec := newDeps(t, server)

	source, err := NewSource(GenerationLinks, deps, endpoints)
	require.NoError(t, err)

	out := NewResult(GenerationLinks)
	require.NoError(t, source.Extract(context.Background(), out))

	cloudLink := server.URL + "/competency/cloud-platform"
	dataLink := server.URL + "/competency/data-analytics"
	require.Equal(t, []tables.Competency{
		{Area: "Cloud", Competency: "Cloud Platform", Link: &cloudLink},
		{Area: "Data", Competency: "Data Analytics", Link: &dataLink},
	}, out.Competencies)

	require.Equal(t, []tables.CompetencyExam{
		{Competency: "Cloud Platform", Option: "Option 1", Level: "Silver", ExamID: "AZ-104"},
		{Competency: "Cloud Platform", Option: "Option 1", Level: "Silver", ExamID: "70-532"},
		{Competency: "Cloud Platform", Option: "Option 1", Level: "Gold", ExamID: "AZ-303"},
		{Competency: "Cloud Platform", Option: "Option 1", Level: "Gold", ExamID: "AZ-304"},
	}, out.Exams)

	require.Equal(t, map[string][]SummaryEntry{
		"Cloud": {{Competency: "Cloud Platform", Link: &cloudLink}},
		"Data":  {{Competency: "Data Analytics", Link: &dataLink}},
	}, out.Summary)

	// duplicate competency and the missing data analytics page
	require.Len(t, rec.Reports("warning", report_competency), 1)
	require.Len(t, rec.Reports("warning", report_detail_page), 1)

	ts := out.Tables()
	require.Equal(t, tables.CompExamDetailedColumns, ts[1].Columns)
}

func TestUIDSource(t *testing.T) {
	server := testutil.NewFixtureServer(t, testutil.Fixtures{
		"/competencies": taxonomy,
		"/competency/cloud-platform": `<html><body>
			<a href="/learn/certifications/azure-administrator/">Administrator</a>
			<a href="/learn/certifications/azure-administrator/">Administrator again</a>
			<a href="/learn/exams/70-532">Legacy exam</a>
			<a href="/learn/exams/az-900/">AZ-900</a>
			<a href="/learn/modules/intro/">Module</a>
			<a href="/learn/certifications/unknown/">Unknown</a>
			<a href="https://elsewhere.example.com/learn/">Elsewhere</a>
			<a href="/learn/exams/az-900-copy/">AZ-900 copy</a>
		</body></html>`,
		"/competency/data-analytics":               `<html><body><p>nothing here</p></body></html>`,
		"/learn/certifications/azure-administrator/": uidPage("certification.azure-administrator"),
		"/learn/exams/az-900/":                       uidPage("exam.az-900"),
		"/learn/exams/az-900-copy/":                  uidPage("exam.az-900"),
		"/learn/modules/intro/":                      uidPage("learn.intro"),
		"/learn/certifications/unknown/":             uidPage("certification.unknown"),
		"/search": `{"count": 1, "results": [
			{"uid": "certification.azure-administrator", "title": "Azure Administrator", "url": "/x", "exams": ["exam.az-104", "exam.az-800"]}
		]}`,
	})
	deps, endpoints, rec := newDeps(t, server)

	source, err := NewSource(GenerationUID, deps, endpoints)
	require.NoError(t, err)

	out := NewResult(GenerationUID)
	require.NoError(t, source.Extract(context.Background(), out))

	require.Equal(t, []tables.CompetencyExam{
		{Competency: "Cloud Platform", ExamID: "AZ-104"},
		{Competency: "Cloud Platform", ExamID: "AZ-800"},
		{Competency: "Cloud Platform", ExamID: "AZ-900"},
	}, out.Exams)

	require.Equal(t, 1, server.Hits("/learn/certifications/azure-administrator/"))
	require.Equal(t, 0, server.Hits("/learn/exams/70-532"))
	require.Len(t, rec.Reports("warning", report_uid), 1)

	ts := out.Tables()
	require.Equal(t, tables.CompExamColumns, ts[1].Columns)
	require.Equal(t, []string{"Cloud Platform", "AZ-104"}, ts[1].Rows[0])
}

func TestUIDSourceRequiresLearnClient(t *testing.T) {
	_, err := NewSource(GenerationUID, Deps{Tel: &telemetry.Recorder{}}, DefaultEndpoints())
	require.Error(t, err)
}
