package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tayganr/certcomp/internal/assert"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const sqlSchema = `create table if not exists blobs (
	container text not null,
	name text not null,
	data blob not null,
	updated_at integer not null,
	primary key (container, name)
);`

// SQLBucket keeps blobs in a sqlite file (or a remote libsql database), it is
// the storage used for local runs.
type SQLBucket struct {
	db        *sql.DB
	container string
}

type SQLConfig struct {
	// File is a local sqlite database path, used when Url is empty.
	File string `json:"file"`
	// Url is a remote libsql database such as libsql://db.turso.io.
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the configured database and makes sure the schema exists.
func (config SQLConfig) OpenDB() (*sql.DB, error) {
	var db *sql.DB
	var err error
	switch {
	case config.Url != "":
		dsn := config.Url
		if config.AuthToken != "" {
			dsn = fmt.Sprintf("%s?authToken=%s", config.Url, config.AuthToken)
		}
		db, err = sql.Open("libsql", dsn)
	case config.File != "":
		if dir := filepath.Dir(config.File); dir != "" {
			err = os.MkdirAll(dir, 0777)
			if err != nil {
				return nil, err
			}
		}
		db, err = sql.Open("sqlite", config.File)
		if err == nil {
			// see this stackoverflow post for information on why the following
			// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
			db.SetMaxOpenConns(1)
			_, err = db.Exec("PRAGMA journal_mode=WAL")
		}
	default:
		return nil, fmt.Errorf("a sqlite file or a libsql url must be specified")
	}
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(sqlSchema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewSQLBucket(db *sql.DB, container string) *SQLBucket {
	assert.NotNil(db, "db")
	assert.NotEmptyStr(container, "container")
	return &SQLBucket{db: db, container: container}
}

func (s *SQLBucket) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into blobs (container, name, data, updated_at) values (?, ?, ?, ?)
		on conflict (container, name) do update set data = excluded.data, updated_at = excluded.updated_at`,
		s.container, name, data, time.Now().Unix(),
	)
	return err
}

func (s *SQLBucket) Get(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(
		ctx,
		"select data from blobs where container = ? and name = ?",
		s.container, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return data, err
}
