// Package service exposes every job as an http endpoint.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/tayganr/certcomp/internal/assert"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/serviceutil"
)

const (
	report_run_job = "run-job"
	report_encode  = "encode-summary"
)

// Runner runs jobs by name.
//
// note: fault injection point
type Runner interface {
	Names() []string
	Run(ctx context.Context, name string) (any, error)
}

type Service struct {
	runner Runner
	known  map[string]struct{}
	tel    telemetry.API
}

func NewService(runner Runner, tel telemetry.API) Service {
	assert.NotNil(runner, "runner")
	known := map[string]struct{}{}
	for _, name := range runner.Names() {
		known[name] = struct{}{}
	}
	return Service{
		runner: runner,
		known:  known,
		tel:    telemetry.NewScopedAPI("service", tel),
	}
}

// Handler routes `/api/{job}` (GET or POST) and `/healthz`. When
// `accessToken` is set the job endpoints require it as a bearer token.
func (s Service) Handler(accessToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(`{"status":"OK"}`))
	})
	mux.Handle("/api/{job}", serviceutil.VerifyAccessToken(accessToken, http.HandlerFunc(s.runJob)))
	return mux
}

func (s Service) runJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	name := r.PathValue("job")
	if _, ok := s.known[name]; !ok {
		http.NotFound(w, r)
		return
	}

	s.tel.ReportDebug("run job", name)
	summary, err := s.runner.Run(r.Context(), name)
	if err != nil {
		s.tel.ReportBroken(report_run_job, name, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// the summary is encoded fully before anything is written so that a
	// failure never produces a partial body.
	var body bytes.Buffer
	err = json.NewEncoder(&body).Encode(summary)
	if err != nil {
		s.tel.ReportBroken(report_encode, name, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body.Bytes())
}
