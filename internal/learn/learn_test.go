package learn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/testutil"
)

func TestCatalogue(t *testing.T) {
	server := testutil.NewFixtureServer(t, testutil.Fixtures{
		"/search": `{"count": 2, "results": [
			{"uid": "learn.intro", "title": "Intro to Azure", "url": "/learn/paths/intro/", "resource_type": "learning path", "products": ["azure", "azure-portal"]},
			{"uid": "learn.module", "title": "Create a VM", "url": "/learn/modules/vm/", "resource_type": "module", "products": []}
		]}`,
	})
	rec := &telemetry.Recorder{}
	client := learnapi.NewClient(fetch.NewClient(fetch.Options{}, rec), learnapi.Options{
		Endpoint:    server.URL + "/search",
		ContentBase: "https://learn.example.com",
	}, rec)

	out, err := NewCatalogue(client, rec).Extract(context.Background())
	require.NoError(t, err)
	require.Equal(t, []tables.LearnContent{
		{Products: "azure;azure-portal", ResourceType: "learning path", Title: "Intro to Azure", Link: "https://learn.example.com/learn/paths/intro/"},
		{Products: "", ResourceType: "module", Title: "Create a VM", Link: "https://learn.example.com/learn/modules/vm/"},
	}, out.Content)
	require.Equal(t, map[string]int{"learning path": 1, "module": 1}, out.ByType)

	ts := out.Tables()
	require.Equal(t, tables.LearnColumns, ts[0].Columns)
}

func TestCatalogueFailure(t *testing.T) {
	server := testutil.NewFixtureServer(t, testutil.Fixtures{})
	rec := &telemetry.Recorder{}
	client := learnapi.NewClient(fetch.NewClient(fetch.Options{}, rec), learnapi.Options{
		Endpoint: server.URL + "/search",
	}, rec)

	_, err := NewCatalogue(client, rec).Extract(context.Background())
	require.Error(t, err)
	require.NotEmpty(t, rec.Reports("broken", report_catalogue))
}
