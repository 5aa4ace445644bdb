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

package mysql

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/db"

	"github.com/go-sql-driver/mysql"
)

func joinArgs(args []string) string {
	return strings.Join(args, ", ")
}

func quoteIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func quoteIdents(idents []string) []string {
	ans := make([]string, len(idents))
	for i, v := range idents {
		ans[i] = quoteIdent(v)
	}
	return ans
}

type Writer struct {
	database    *sql.DB
	tx          *sql.Tx
	dbName      string
	tablePrefix string
}

func (w *Writer) table(rel db.Relation) string {
	return quoteIdent(db.TableName(w.tablePrefix, rel))
}

func (w *Writer) DatabaseExists() bool {
	row := w.database.QueryRow(
		`SELECT COUNT(*) > 0 FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?`,
		w.dbName, db.TableName(w.tablePrefix, db.RelNodes),
	)
	var ans bool
	err := row.Scan(&ans)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to test data storage existence")
		return false
	}
	return ans
}

func (w *Writer) Initialize(appendMode bool) error {
	var err error
	dbExisted := w.DatabaseExists()
	if !appendMode {
		if dbExisted {
			log.
				Warn().
				Str("storageName", w.dbName+"/"+db.TableName(w.tablePrefix, db.RelNodes)).
				Msg("The data storage already exists. Existing data will be deleted.")
			err := dropExisting(w.database, w.tablePrefix)
			if err != nil {
				return err
			}
		}
		err := createSchema(w.database, w.tablePrefix)
		if err != nil {
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
			joinArgs(quoteIdents(attrs)),
			db.Placeholders(len(attrs)),
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
		fmt.Sprintf(
			"DELETE FROM %s WHERE `id` = ? AND `type` = ? AND `key` = ?", w.table(rel)),
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
	err := w.database.Close()
	if err != nil {
		log.Warn().Err(err).Msg("error closing database")
	}
}

// DSN creates a data source name for the go-sql-driver
// out of the storage configuration.
func DSN(conf *db.Conf) string {
	mconf := mysql.NewConfig()
	mconf.Net = "tcp"
	mconf.Addr = conf.Host
	mconf.User = conf.User
	mconf.Passwd = conf.Password
	mconf.DBName = conf.Name
	mconf.ParseTime = true
	mconf.Loc = time.Local
	return mconf.FormatDSN()
}

func NewWriter(conf *db.Conf) (*Writer, error) {
	database, err := sql.Open("mysql", DSN(conf))
	if err != nil {
		return nil, err
	}
	return &Writer{
		database:    database,
		dbName:      conf.Name,
		tablePrefix: conf.TablePrefix,
	}, nil
}
