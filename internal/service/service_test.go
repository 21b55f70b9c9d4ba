package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tayganr/certcomp/internal/telemetry"
)

type fakeRunner struct {
	summaries map[string]any
	failing   map[string]bool
	runs      []string
}

func (f *fakeRunner) Names() []string {
	var names []string
	for name := range f.summaries {
		names = append(names, name)
	}
	for name := range f.failing {
		names = append(names, name)
	}
	return names
}

func (f *fakeRunner) Run(_ context.Context, name string) (any, error) {
	f.runs = append(f.runs, name)
	if f.failing[name] {
		return nil, fmt.Errorf("upstream page changed")
	}
	return f.summaries[name], nil
}

func newTestServer(t *testing.T, accessToken string) (*httptest.Server, *fakeRunner, *telemetry.Recorder) {
	runner := &fakeRunner{
		summaries: map[string]any{
			"search":  map[string]string{"status": "OK"},
			"retired": map[string]string{"AZ-103": "2021-01-31"},
		},
		failing: map[string]bool{"exams": true},
	}
	rec := &telemetry.Recorder{}
	server := httptest.NewServer(NewService(runner, rec).Handler(accessToken))
	t.Cleanup(server.Close)
	return server, runner, rec
}

func do(t *testing.T, method, url, token string) (int, string, http.Header) {
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body), res.Header
}

func TestRunJob(t *testing.T) {
	server, runner, rec := newTestServer(t, "")

	testCases := []struct {
		method   string
		path     string
		status   int
		expected string
	}{
		{method: http.MethodGet, path: "/api/search", status: http.StatusOK, expected: `{"status":"OK"}`},
		{method: http.MethodPost, path: "/api/retired", status: http.StatusOK, expected: `{"AZ-103":"2021-01-31"}`},
		{method: http.MethodGet, path: "/api/exams", status: http.StatusInternalServerError, expected: ""},
		{method: http.MethodGet, path: "/api/payroll", status: http.StatusNotFound},
		{method: http.MethodDelete, path: "/api/search", status: http.StatusMethodNotAllowed},
	}

	for _, test := range testCases {
		t.Run(test.method+" "+test.path, func(t *testing.T) {
			status, body, header := do(t, test.method, server.URL+test.path, "")
			require.Equal(t, test.status, status)
			if test.status == http.StatusOK {
				require.JSONEq(t, test.expected, body)
				require.Equal(t, "application/json", header.Get("content-type"))
			}
			if test.status == http.StatusInternalServerError {
				require.Empty(t, strings.TrimSpace(body))
			}
		})
	}

	require.Equal(t, []string{"search", "retired", "exams"}, runner.runs)
	require.Len(t, rec.Reports("broken", report_run_job), 1)
}

func TestAccessToken(t *testing.T) {
	server, runner, _ := newTestServer(t, "secret")

	status, _, _ := do(t, http.MethodGet, server.URL+"/api/search", "")
	require.Equal(t, http.StatusUnauthorized, status)
	require.Empty(t, runner.runs)

	status, _, _ = do(t, http.MethodGet, server.URL+"/api/search", "secret")
	require.Equal(t, http.StatusOK, status)

	status, body, _ := do(t, http.MethodGet, server.URL+"/healthz", "")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{"status":"OK"}`, body)
}
