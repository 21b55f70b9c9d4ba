package searchindex

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"github.com/tayganr/certcomp/internal/chrono"
	"github.com/tayganr/certcomp/internal/store"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
)

func lines(rows ...string) []byte {
	return []byte(strings.Join(rows, "\n") + "\n")
}

var sortEntries = cmpopts.SortSlices(func(a, b tables.SearchEntry) bool {
	if a.ExamID != b.ExamID {
		return a.ExamID < b.ExamID
	}
	return a.Text < b.Text
})

func seed(t *testing.T, bucket *store.MemoryBucket, compExams []byte) {
	ctx := context.Background()
	require.NoError(t, bucket.Put(ctx, "exams.csv", lines(
		"EXAM_ID,EXAM,LINK,PUBLISHED",
		"AZ-900,Azure Fundamentals,https://example.com/az-900,",
		"AZ-104,Azure Administrator,https://example.com/az-104,2020-09-01",
	)))
	require.NoError(t, bucket.Put(ctx, "cert_exams.csv", lines(
		"CERT_ID,EXAM_ID",
		"AzureFundamentals,AZ-900",
		"azureAdministrator,AZ-104",
		"azureAdministrator,AZ-104",
	)))
	require.NoError(t, bucket.Put(ctx, "preparation.csv", lines(
		"EXAM_ID,PREP_TYPE,PREP_TEXT,LINK",
		"AZ-900,training,Azure Fundamentals,https://example.com/t",
		"AZ-900,training,Azure Fundamentals,https://example.com/t",
		"AZ-104,books,,https://example.com/b",
	)))
	require.NoError(t, bucket.Put(ctx, "comp_exams.csv", compExams))
}

func newBuilder(bucket *store.MemoryBucket) Builder {
	rec := &telemetry.Recorder{}
	at := chrono.FixedTime{At: time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC)}
	return NewBuilder(store.NewReader(bucket, rec), store.NewPersister(bucket, at, rec), rec)
}

func TestBuild(t *testing.T) {
	testCases := []struct {
		name      string
		compExams []byte
	}{
		{
			name:      "detailed competency schema",
			compExams: lines("COMPETENCY,OPTION,LEVEL,EXAM", "Cloud Platform,Option 1,Silver,AZ-104"),
		},
		{
			name:      "short competency schema",
			compExams: lines("COMPETENCY,EXAM", "Cloud Platform,AZ-104"),
		},
		{
			name:      "competency schema keyed by exam id",
			compExams: lines("COMPETENCY,EXAM_ID", "Cloud Platform,AZ-104"),
		},
	}

	expected := []tables.SearchEntry{
		{ExamID: "AZ-900", Text: "AZ-900"},
		{ExamID: "AZ-900", Text: "Azure Fundamentals"},
		{ExamID: "AZ-900", Text: "AzureFundamentals"},
		{ExamID: "AZ-104", Text: "AZ-104"},
		{ExamID: "AZ-104", Text: "Azure Administrator"},
		{ExamID: "AZ-104", Text: "Cloud Platform"},
		{ExamID: "AZ-104", Text: "azureAdministrator"},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			bucket := store.NewMemoryBucket()
			seed(t, bucket, test.compExams)

			index, err := newBuilder(bucket).Build(context.Background())
			require.NoError(t, err)
			if diff := cmp.Diff(expected, index, sortEntries); diff != "" {
				t.Fatalf("unexpected index (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRunWritesCurrentSnapshot(t *testing.T) {
	bucket := store.NewMemoryBucket()
	seed(t, bucket, lines("COMPETENCY,EXAM", "Cloud Platform,AZ-104"))

	table, err := newBuilder(bucket).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, tables.SearchColumns, table.Columns)
	require.Len(t, table.Rows, 7)

	data, err := bucket.Get(context.Background(), "search.csv")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "EXAM_ID,SEARCH\n"))
	require.NotContains(t, bucket.Names(), "search/2021/01/15/search.csv")
}

func TestBuildReportsEveryMissingSnapshot(t *testing.T) {
	bucket := store.NewMemoryBucket()
	require.NoError(t, bucket.Put(context.Background(), "exams.csv", lines("EXAM_ID,EXAM", "AZ-900,Azure Fundamentals")))

	_, err := newBuilder(bucket).Build(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "comp_exams.csv")
	require.Contains(t, err.Error(), "cert_exams.csv")
	require.Contains(t, err.Error(), "preparation.csv")
}

func TestUnion(t *testing.T) {
	out := Union(
		[]tables.SearchEntry{{ExamID: "AZ-900", Text: "AZ-900"}, {ExamID: "", Text: "orphan"}},
		[]tables.SearchEntry{{ExamID: "AZ-900", Text: " AZ-900 "}, {ExamID: "AZ-900", Text: ""}},
	)
	require.Equal(t, []tables.SearchEntry{{ExamID: "AZ-900", Text: "AZ-900"}}, out)
}
