// Package store persists tables as CSV blobs in an object storage container.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/tayganr/certcomp/internal/assert"
	"github.com/tayganr/certcomp/internal/chrono"
	"github.com/tayganr/certcomp/internal/tables"
	"github.com/tayganr/certcomp/internal/telemetry"
)

const (
	report_persist    = "persist"
	report_read_table = "read-table"
)

// ErrNotFound is returned by Bucket.Get when the blob does not exist.
var ErrNotFound = errors.New("blob not found")

// Bucket is a single object storage container.
//
// note: fault injection point
type Bucket interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// DatedPath returns `{name}/{YYYY}/{MM}/{DD}/{name}.csv`.
func DatedPath(name string, now chrono.TimeAPI) string {
	return path.Join(name, now.Now().Format("2006/01/02"), name+".csv")
}

// CurrentPath returns `{name}.csv`, the undated blob the search index reads and writes.
func CurrentPath(name string) string {
	return name + ".csv"
}

// Persister writes complete tables, each call replaces any snapshot written on
// the same day.
type Persister struct {
	bucket Bucket
	time   chrono.TimeAPI
	tel    telemetry.API
}

func NewPersister(bucket Bucket, time chrono.TimeAPI, tel telemetry.API) Persister {
	assert.NotNil(bucket, "bucket")
	assert.NotNil(time, "time")
	return Persister{
		bucket: bucket,
		time:   time,
		tel:    telemetry.NewScopedAPI("store", tel),
	}
}

// Persist writes `t` to its dated path and returns that path.
func (p Persister) Persist(ctx context.Context, t tables.Table) (string, error) {
	return p.put(ctx, DatedPath(t.Name, p.time), t)
}

// PersistCurrent writes `t` to its undated path and returns that path.
func (p Persister) PersistCurrent(ctx context.Context, t tables.Table) (string, error) {
	return p.put(ctx, CurrentPath(t.Name), t)
}

func (p Persister) put(ctx context.Context, name string, t tables.Table) (string, error) {
	data, err := tables.EncodeCSV(t)
	if err != nil {
		p.tel.ReportBroken(report_persist, fmt.Errorf("encode: %w", err), t.Name)
		return "", err
	}
	err = p.bucket.Put(ctx, name, data)
	if err != nil {
		p.tel.ReportBroken(report_persist, fmt.Errorf("put: %w", err), name)
		return "", err
	}
	p.tel.ReportCount(fmt.Sprintf("rows.%s", t.Name), int64(len(t.Rows)))
	return name, nil
}

// Reader reads the current (undated) CSV blobs.
type Reader struct {
	bucket Bucket
	tel    telemetry.API
}

func NewReader(bucket Bucket, tel telemetry.API) Reader {
	assert.NotNil(bucket, "bucket")
	return Reader{bucket: bucket, tel: telemetry.NewScopedAPI("store", tel)}
}

// Raw returns the unparsed contents of `filename`.
func (r Reader) Raw(ctx context.Context, filename string) ([]byte, error) {
	data, err := r.bucket.Get(ctx, filename)
	if err != nil {
		r.tel.ReportBroken(report_read_table, err, filename)
		return nil, err
	}
	return data, nil
}

// ReadTable reads `filename` and projects it onto `columns`.
func (r Reader) ReadTable(ctx context.Context, filename string, columns []string) (tables.Table, error) {
	data, err := r.Raw(ctx, filename)
	if err != nil {
		return tables.Table{}, err
	}
	t, err := tables.DecodeCSV(filename, data, columns)
	if err != nil {
		r.tel.ReportBroken(report_read_table, err, filename)
		return tables.Table{}, err
	}
	return t, nil
}
