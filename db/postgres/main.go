// Copyright 2026 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2026 Charles University, Faculty of Arts,
//                Institute of the Czech National Corpus
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/db"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

func quoteIdents(idents []string) []string {
	ans := make([]string, len(idents))
	for i, v := range idents {
		ans[i] = pgx.Identifier{v}.Sanitize()
	}
	return ans
}

// placeholders creates PostgreSQL positional placeholders ($1, $2, ...)
func placeholders(n int) string {
	ans := make([]string, n)
	for i := range ans {
		ans[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ans, ", ")
}

type Writer struct {
	database    *sql.DB
	tx          *sql.Tx
	tablePrefix string
}

func (w *Writer) table(rel db.Relation) string {
	return pgx.Identifier{db.TableName(w.tablePrefix, rel)}.Sanitize()
}

func (w *Writer) DatabaseExists() bool {
	row := w.database.QueryRow(
		`SELECT COUNT(*) > 0 FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = $1`,
		db.TableName(w.tablePrefix, db.RelNodes),
	)
	var ans bool
	if err := row.Scan(&ans); err != nil {
		log.Error().Err(err).Msg("failed to test data storage existence")
		return false
	}
	return ans
}

func (w *Writer) Initialize(appendMode bool) error {
	var err error
	if !appendMode {
		if w.DatabaseExists() {
			log.
				Warn().
				Str("table", db.TableName(w.tablePrefix, db.RelNodes)).
				Msg("The data storage already exists. Existing data will be deleted.")
			if err := dropExisting(w.database, w.tablePrefix); err != nil {
				return err
			}
		}
		if err := createSchema(w.database, w.tablePrefix); err != nil {
			return err
		}
	}
	w.tx, err = w.database.Begin()
	return err
}

func (w *Writer) PrepareInsert(table db.Relation, attrs []string) (db.InsertOperation, error) {
	if w.tx == nil {
		return nil, fmt.Errorf("cannot prepare insert into %s - no transaction active", table)
	}
	stmt, err := w.tx.Prepare(
		fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			w.table(table),
			strings.Join(quoteIdents(attrs), ", "),
			placeholders(len(attrs)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare INSERT into %s: %w", table, err)
	}
	return &db.Insert{Stmt: stmt}, nil
}

func (w *Writer) RemoveTagRecords(rel db.Relation, ownerID int64, tagType, key string) (int, error) {
	if w.tx == nil {
		return 0, fmt.Errorf("cannot remove records - no transaction active")
	}
	if !rel.IsTagRelation() {
		return 0, fmt.Errorf("cannot remove tag records from non-tag relation %s", rel)
	}
	res, err := w.tx.Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND type = $2 AND key = $3`, w.table(rel)),
		ownerID, tagType, key,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to remove tag records: %w", err)
	}
	numRows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to determine number of removed rows: %w", err)
	}
	return int(numRows), nil
}

func (w *Writer) Commit() error {
	return w.tx.Commit()
}

func (w *Writer) Rollback() error {
	if w.tx == nil {
		return nil
	}
	return w.tx.Rollback()
}

func (w *Writer) Close() {
	if err := w.database.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing database")
	}
}

// ConnectionString creates a postgresql:// URL out of
// the storage configuration. The host may contain a port.
func ConnectionString(conf *db.Conf) string {
	u := &url.URL{
		Scheme: "postgresql",
		Host:   conf.Host,
		Path:   "/" + conf.Name,
	}
	if conf.User != "" {
		if conf.Password != "" {
			u.User = url.UserPassword(conf.User, conf.Password)

		} else {
			u.User = url.User(conf.User)
		}
	}
	query := url.Values{}
	query.Set("application_name", "osm-tagextract")
	u.RawQuery = query.Encode()
	return u.String()
}

func NewWriter(conf *db.Conf) (*Writer, error) {
	database, err := sql.Open("pgx", ConnectionString(conf))
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}
	return &Writer{
		database:    database,
		tablePrefix: conf.TablePrefix,
	}, nil
}
