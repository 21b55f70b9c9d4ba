// Package jobs binds the extractors to storage, every job extracts its tables,
// persists them and returns the json summary served to the caller.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tayganr/certcomp/internal/certifications"
	"github.com/tayganr/certcomp/internal/chrono"
	"github.com/tayganr/certcomp/internal/competencies"
	"github.com/tayganr/certcomp/internal/exams"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/learn"
	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/retired"
	"github.com/tayganr/certcomp/internal/searchindex"
	"github.com/tayganr/certcomp/internal/store"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
	"github.com/tayganr/certcomp/lib/restyutil"
)

const (
	report_extract = "extract"
	report_persist = "persist"
	report_publish = "publish"
)

const (
	NameCertifications = "certifications"
	NameCompetencies   = "competencies"
	NameExams          = "exams"
	NameRetired        = "retired"
	NameSearch         = "search"
	NameLearn          = "learn"
)

// Job is a single independently triggered unit of work.
type Job interface {
	Name() string
	// Run returns the json serializable summary of the run, a job that fails
	// returns no summary at all.
	Run(ctx context.Context) (any, error)
}

// Env holds the collaborators shared by every job.
type Env struct {
	Config  Config
	Fetcher fetch.Fetcher
	Learn   *learnapi.Client
	Storage *store.Opener
	Time    chrono.TimeAPI
	Tel     telemetry.API
}

// NewEnv builds the production collaborators for a completed config,
// `output` can be nil.
func NewEnv(config Config, output restyutil.InstrumentOutput, tel telemetry.API) *Env {
	client := fetch.NewClient(fetch.Options{
		UserAgent:         config.Fetch.UserAgent,
		Timeout:           time.Duration(config.Fetch.TimeoutSeconds) * time.Second,
		RequestsPerSecond: config.Fetch.RequestsPerSecond,
		CloudflareBypass:  config.Fetch.CloudflareBypass,
		InstrumentOutput:  output,
	}, tel)
	return &Env{
		Config:  config,
		Fetcher: client,
		Learn:   learnapi.NewClient(client, config.Learn, tel),
		Storage: store.NewOpener(config.Storage),
		Time:    chrono.NewStandardTime(),
		Tel:     tel,
	}
}

func (e *Env) detail(job DetailConfig) (fetch.Detail, error) {
	resolved := e.Config.ResolveDetail(job)
	policy, err := fetch.ParsePolicy(string(resolved.Policy))
	if err != nil {
		return fetch.Detail{}, err
	}
	return fetch.NewDetail(e.Fetcher, policy, resolved.Timeout(), e.Tel), nil
}

// result is what every extractor accumulates.
type result interface {
	Tables() []tables.Table
	Response() any
}

// extractJob runs an extractor and persists its tables as dated snapshots.
type extractJob struct {
	name    string
	env     *Env
	tel     telemetry.API
	extract func(ctx context.Context) (result, error)
}

func newExtractJob(name string, env *Env, extract func(ctx context.Context) (result, error)) extractJob {
	return extractJob{
		name:    name,
		env:     env,
		tel:     telemetry.NewScopedAPI(fmt.Sprintf("job_%s", name), env.Tel),
		extract: extract,
	}
}

func (j extractJob) Name() string {
	return j.name
}

func (j extractJob) Run(ctx context.Context) (any, error) {
	out, err := j.extract(ctx)
	if err != nil {
		j.tel.ReportBroken(report_extract, err)
		return nil, fmt.Errorf("%s: %w", j.name, err)
	}

	bucket, err := j.env.Storage.Snapshots(ctx)
	if err != nil {
		j.tel.ReportBroken(report_persist, err)
		return nil, fmt.Errorf("%s: open snapshots: %w", j.name, err)
	}
	persister := store.NewPersister(bucket, j.env.Time, j.env.Tel)

	var current *store.Persister
	if j.env.Config.Storage.PublishCurrent {
		searchBucket, err := j.env.Storage.Search(ctx)
		if err != nil {
			j.tel.ReportBroken(report_publish, err)
			return nil, fmt.Errorf("%s: open search container: %w", j.name, err)
		}
		p := store.NewPersister(searchBucket, j.env.Time, j.env.Tel)
		current = &p
	}

	for _, t := range out.Tables() {
		path, err := persister.Persist(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("%s: persist %s: %w", j.name, t.Name, err)
		}
		j.tel.ReportDebug("persisted table", t.Name, path)

		if current == nil {
			continue
		}
		_, err = current.PersistCurrent(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("%s: publish %s: %w", j.name, t.Name, err)
		}
	}

	return out.Response(), nil
}

func newCertificationsJob(env *Env) (Job, error) {
	config := env.Config.Certifications
	detail, err := env.detail(config.Detail)
	if err != nil {
		return nil, err
	}
	source, err := certifications.NewSource(config.Generation, certifications.Deps{
		Fetcher: env.Fetcher,
		Detail:  detail,
		Learn:   env.Learn,
		Tel:     env.Tel,
	}, config.Endpoints)
	if err != nil {
		return nil, err
	}
	return newExtractJob(NameCertifications, env, func(ctx context.Context) (result, error) {
		out := certifications.NewResult()
		return out, source.Extract(ctx, out)
	}), nil
}

func newCompetenciesJob(env *Env) (Job, error) {
	config := env.Config.Competencies
	detail, err := env.detail(config.Detail)
	if err != nil {
		return nil, err
	}
	source, err := competencies.NewSource(config.Generation, competencies.Deps{
		Fetcher: env.Fetcher,
		Detail:  detail,
		Learn:   env.Learn,
		Tel:     env.Tel,
	}, config.Endpoints)
	if err != nil {
		return nil, err
	}
	return newExtractJob(NameCompetencies, env, func(ctx context.Context) (result, error) {
		out := competencies.NewResult(config.Generation)
		return out, source.Extract(ctx, out)
	}), nil
}

func newExamsJob(env *Env) (Job, error) {
	config := env.Config.Exams
	detail, err := env.detail(config.Detail)
	if err != nil {
		return nil, err
	}
	source, err := exams.NewSource(config.Generation, exams.Deps{
		Fetcher: env.Fetcher,
		Detail:  detail,
		Learn:   env.Learn,
		Tel:     env.Tel,
	}, config.Endpoints)
	if err != nil {
		return nil, err
	}
	return newExtractJob(NameExams, env, func(ctx context.Context) (result, error) {
		out := exams.NewResult(config.Generation)
		return out, source.Extract(ctx, out)
	}), nil
}

func newRetiredJob(env *Env) (Job, error) {
	extractor := retired.NewExtractor(env.Fetcher, env.Config.Retired.Listing, env.Tel)
	return newExtractJob(NameRetired, env, func(ctx context.Context) (result, error) {
		out := retired.NewResult()
		return out, extractor.Extract(ctx, out)
	}), nil
}

func newLearnJob(env *Env) (Job, error) {
	catalogue := learn.NewCatalogue(env.Learn, env.Tel)
	return newExtractJob(NameLearn, env, func(ctx context.Context) (result, error) {
		return catalogue.Extract(ctx)
	}), nil
}

// searchJob rebuilds the search index from the current tables of the search
// container.
type searchJob struct {
	env *Env
	tel telemetry.API
}

func newSearchJob(env *Env) (Job, error) {
	return searchJob{env: env, tel: telemetry.NewScopedAPI("job_search", env.Tel)}, nil
}

func (searchJob) Name() string {
	return NameSearch
}

func (j searchJob) Run(ctx context.Context) (any, error) {
	bucket, err := j.env.Storage.Search(ctx)
	if err != nil {
		j.tel.ReportBroken(report_persist, err)
		return nil, fmt.Errorf("search: open search container: %w", err)
	}
	builder := searchindex.NewBuilder(
		store.NewReader(bucket, j.env.Tel),
		store.NewPersister(bucket, j.env.Time, j.env.Tel),
		j.env.Tel,
	)
	_, err = builder.Run(ctx)
	if err != nil {
		j.tel.ReportBroken(report_extract, err)
		return nil, fmt.Errorf("search: %w", err)
	}
	return map[string]string{"status": "OK"}, nil
}

// Registry holds every configured job by name.
type Registry struct {
	jobs map[string]Job
}

// NewRegistry builds every job, an invalid generation or policy in the config
// fails here rather than on the first run.
func NewRegistry(env *Env) (*Registry, error) {
	constructors := []func(env *Env) (Job, error){
		newCertificationsJob,
		newCompetenciesJob,
		newExamsJob,
		newRetiredJob,
		newSearchJob,
		newLearnJob,
	}

	registry := &Registry{jobs: map[string]Job{}}
	for _, construct := range constructors {
		job, err := construct(env)
		if err != nil {
			return nil, err
		}
		registry.jobs[job.Name()] = job
	}
	return registry, nil
}

func (r *Registry) Get(name string) (Job, bool) {
	job, ok := r.jobs[name]
	return job, ok
}

// Names returns the job names in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run looks up and runs a single job.
func (r *Registry) Run(ctx context.Context, name string) (any, error) {
	job, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown job %q", name)
	}
	return job.Run(ctx)
}
