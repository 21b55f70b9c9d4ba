package jobs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tayganr/certcomp/internal/certifications"
	"github.com/tayganr/certcomp/internal/competencies"
	"github.com/tayganr/certcomp/internal/exams"
	"github.com/tayganr/certcomp/internal/fetch"
	"github.com/tayganr/certcomp/internal/learnapi"
	"github.com/tayganr/certcomp/internal/retired"
	"github.com/tayganr/certcomp/internal/store"
	"github.com/tayganr/certcomp/lib/configutil"
)

type FetchConfig struct {
	UserAgent         string  `json:"user_agent"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
}

// DetailConfig is the failure policy and timeout of detail page fetches, empty
// fields of a job's DetailConfig fall back to the global one.
type DetailConfig struct {
	Policy         fetch.Policy `json:"policy"`
	TimeoutSeconds int          `json:"timeout_seconds"`
}

type CertificationsConfig struct {
	Generation certifications.Generation `json:"generation"`
	Endpoints  certifications.Endpoints  `json:"endpoints"`
	Detail     DetailConfig              `json:"detail"`
}

type CompetenciesConfig struct {
	Generation competencies.Generation `json:"generation"`
	Endpoints  competencies.Endpoints  `json:"endpoints"`
	Detail     DetailConfig            `json:"detail"`
}

type ExamsConfig struct {
	Generation exams.Generation `json:"generation"`
	Endpoints  exams.Endpoints  `json:"endpoints"`
	Detail     DetailConfig     `json:"detail"`
}

type RetiredConfig struct {
	Listing string `json:"listing"`
}

type ServiceConfig struct {
	Port int `json:"port"`
	// AccessToken, when set, must be presented as a bearer token on every
	// job endpoint.
	AccessToken string `json:"access_token"`
	// Schedule maps job names to cron specs (evaluated in UTC), the server
	// runs those jobs periodically on top of serving them.
	Schedule map[string]string `json:"schedule"`
}

type Config struct {
	Storage        store.Config         `json:"storage"`
	Fetch          FetchConfig          `json:"fetch"`
	Detail         DetailConfig         `json:"detail"`
	Learn          learnapi.Options     `json:"learn"`
	Certifications CertificationsConfig `json:"certifications"`
	Competencies   CompetenciesConfig   `json:"competencies"`
	Exams          ExamsConfig          `json:"exams"`
	Retired        RetiredConfig        `json:"retired"`
	Service        ServiceConfig        `json:"service"`
}

func DefaultConfig() Config {
	return Config{
		Storage: store.Config{
			Backend:         store.BackendAzure,
			Container:       "certcomp",
			SearchContainer: "certcomp-search",
			SQLite:          store.SQLConfig{File: "certcomp.db"},
		},
		Fetch: FetchConfig{
			TimeoutSeconds:    60,
			RequestsPerSecond: 10,
		},
		Detail: DetailConfig{
			Policy:         fetch.PolicyFatal,
			TimeoutSeconds: 30,
		},
		Learn: learnapi.Options{
			Endpoint:    learnapi.DefaultEndpoint,
			ContentBase: learnapi.DefaultContentBase,
		},
		Certifications: CertificationsConfig{
			Generation: certifications.GenerationLegacy,
			Endpoints:  certifications.DefaultEndpoints(),
		},
		Competencies: CompetenciesConfig{
			Generation: competencies.GenerationLinks,
			Endpoints:  competencies.DefaultEndpoints(),
		},
		Exams: ExamsConfig{
			Generation: exams.GenerationHTML,
			Endpoints:  exams.DefaultEndpoints(),
			// exam pages are often missing or slow, one of them must not
			// abort the whole job.
			Detail: DetailConfig{
				Policy:         fetch.PolicyRecoverable,
				TimeoutSeconds: 5,
			},
		},
		Retired: RetiredConfig{
			Listing: retired.DefaultListing,
		},
		Service: ServiceConfig{
			Port: 8000,
		},
	}
}

// Complete fills unset fields with DefaultConfig and applies the storage
// environment overrides.
func (c *Config) Complete() error {
	err := configutil.ApplyDefaults(c, DefaultConfig())
	if err != nil {
		return err
	}
	c.Storage.ApplyEnv()
	return c.Validate()
}

func (c Config) Validate() error {
	var errs []error
	for _, detail := range []DetailConfig{
		c.Detail,
		c.Certifications.Detail,
		c.Competencies.Detail,
		c.Exams.Detail,
	} {
		if detail.Policy == "" {
			continue
		}
		_, err := fetch.ParsePolicy(string(detail.Policy))
		if err != nil {
			errs = append(errs, err)
		}
	}
	if c.Fetch.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("fetch.requests_per_second must not be negative"))
	}
	return errors.Join(errs...)
}

// ResolveDetail merges a job's detail settings over the global ones.
func (c Config) ResolveDetail(job DetailConfig) DetailConfig {
	if job.Policy == "" {
		job.Policy = c.Detail.Policy
	}
	if job.TimeoutSeconds == 0 {
		job.TimeoutSeconds = c.Detail.TimeoutSeconds
	}
	return job
}

func (d DetailConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// LoadConfig reads `path` (and its local override) and completes it, a
// missing file leaves every setting at its default.
func LoadConfig(path string) (Config, error) {
	config, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Warn("no configuration found, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}
	err = config.Complete()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
