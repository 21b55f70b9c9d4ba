package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
)

const (
	EnvAccountName     = "CERT_COMP_STORAGE_NAME"
	EnvAccountKey      = "CERT_COMP_STORAGE_KEY"
	EnvContainer       = "CERT_COMP_STORAGE_CONTAINER"
	EnvSearchContainer = "CERT_COMP_STORAGE_CONTAINER2"
)

type Backend string

const (
	BackendAzure  Backend = "azure"
	BackendGCS    Backend = "gcs"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

type Config struct {
	Backend     Backend `json:"backend"`
	AccountName string  `json:"account_name"`
	AccountKey  string  `json:"account_key"`
	// Container receives the dated snapshots of every extraction job.
	Container string `json:"container"`
	// SearchContainer holds the current tables the search index is built from,
	// and the index itself.
	SearchContainer string `json:"search_container"`
	// PublishCurrent makes the extraction jobs also write the undated copy of
	// every table to SearchContainer.
	PublishCurrent bool `json:"publish_current"`

	GCSCredentialsFile string    `json:"gcs_credentials_file"`
	SQLite             SQLConfig `json:"sqlite"`
}

// ApplyEnv overrides the account and container settings with the environment
// variables the deployed functions are configured with.
func (c *Config) ApplyEnv() {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvAccountName, &c.AccountName},
		{EnvAccountKey, &c.AccountKey},
		{EnvContainer, &c.Container},
		{EnvSearchContainer, &c.SearchContainer},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.env); ok && value != "" {
			*o.target = value
		}
	}
	if c.Backend == "" {
		c.Backend = BackendAzure
	}
}

// Opener opens buckets by container name, buckets of the memory backend are
// shared between calls so that a search index run can read what the other jobs
// wrote in the same process.
type Opener struct {
	config Config

	mutex  sync.Mutex
	memory map[string]*MemoryBucket
	db     *sql.DB
}

func NewOpener(config Config) *Opener {
	return &Opener{config: config, memory: map[string]*MemoryBucket{}}
}

func (o *Opener) Config() Config {
	return o.config
}

// Open returns the bucket for `container`.
func (o *Opener) Open(ctx context.Context, container string) (Bucket, error) {
	switch o.config.Backend {
	case BackendAzure, "":
		return NewAzureBucket(o.config.AccountName, o.config.AccountKey, container)
	case BackendGCS:
		return NewGCSBucket(ctx, container, o.config.GCSCredentialsFile)
	case BackendSQLite:
		o.mutex.Lock()
		defer o.mutex.Unlock()
		if o.db == nil {
			db, err := o.config.SQLite.OpenDB()
			if err != nil {
				return nil, err
			}
			o.db = db
		}
		return NewSQLBucket(o.db, container), nil
	case BackendMemory:
		o.mutex.Lock()
		defer o.mutex.Unlock()
		bucket, ok := o.memory[container]
		if !ok {
			bucket = NewMemoryBucket()
			o.memory[container] = bucket
		}
		return bucket, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", o.config.Backend)
}

// Close releases the shared database of the sqlite backend.
func (o *Opener) Close() error {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.db == nil {
		return nil
	}
	err := o.db.Close()
	o.db = nil
	return err
}

// Snapshots opens the container the extraction jobs write to.
func (o *Opener) Snapshots(ctx context.Context) (Bucket, error) {
	return o.Open(ctx, o.config.Container)
}

// Search opens the container the search index job reads from and writes to.
func (o *Opener) Search(ctx context.Context) (Bucket, error) {
	return o.Open(ctx, o.config.SearchContainer)
}
