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

package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/czcorpus/osm-tagextract/db"
	"github.com/stretchr/testify/assert"
)

func createDatabase() *sql.DB {
	var err error
	if db, err := sql.Open("sqlite3", ":memory:"); err == nil {
		db.SetMaxOpenConns(1)
		return db
	}
	panic(err)
}

func tableColumns(database *sql.DB, table string) map[string]bool {
	// cid name type notnull dflt_value pk
	res, err := database.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		panic(err)
	}
	colsSrch := make(map[string]bool)
	defer res.Close()
	for res.Next() {
		var cid string
		var name string
		var tp string
		var notnull int
		var dfltValue interface{}
		var pk int
		err := res.Scan(&cid, &name, &tp, &notnull, &dfltValue, &pk)
		if err != nil {
			panic(err)
		}
		colsSrch[name] = true
	}
	return colsSrch
}

func listObjects(database *sql.DB, tp string) []string {
	res, err := database.Query("SELECT name FROM sqlite_master WHERE type = ? ORDER BY name", tp)
	if err != nil {
		panic(err)
	}
	defer res.Close()
	ans := make([]string, 0, 5)
	for res.Next() {
		var name string
		if err := res.Scan(&name); err != nil {
			panic(err)
		}
		ans = append(ans, name)
	}
	return ans
}

func TestCreateSchema(t *testing.T) {
	database := createDatabase()
	defer database.Close()
	err := createSchema(database, "")
	assert.NoError(t, err)
	for _, rel := range db.AllRelations {
		cols := tableColumns(database, string(rel))
		assert.Equal(t, rel.NumColumns(), len(cols), "relation %s", rel)
		for _, c := range rel.Columns() {
			assert.Contains(t, cols, c)
		}
	}
	assert.Equal(t, []string{"idx_nd_usr", "idx_wy_usr"}, listObjects(database, "index"))
}

func TestCreateSchemaWithPrefix(t *testing.T) {
	database := createDatabase()
	defer database.Close()
	err := createSchema(database, "lyon")
	assert.NoError(t, err)
	tables := listObjects(database, "table")
	assert.Contains(t, tables, "lyon_nodes")
	assert.Contains(t, tables, "lyon_way_node_memberships")
	assert.Contains(t, listObjects(database, "index"), "lyon_idx_nd_usr")
}

func TestDropExisting(t *testing.T) {
	database := createDatabase()
	defer database.Close()
	assert.NoError(t, createSchema(database, ""))
	assert.NoError(t, dropExisting(database, ""))
	assert.Empty(t, listObjects(database, "table"))
	// dropping a non-existing schema is fine
	assert.NoError(t, dropExisting(database, ""))
}

func TestWriterInsertAndCommit(t *testing.T) {
	w := &Writer{Path: filepath.Join(t.TempDir(), "osm.db")}
	assert.False(t, w.DatabaseExists())
	assert.NoError(t, w.Initialize(false))
	defer w.Close()
	ins, err := w.PrepareInsert(db.RelNodes, db.RelNodes.Columns())
	assert.NoError(t, err)
	assert.NoError(t, ins.Exec(int64(1), 45.75, 4.85, "alice", int64(7), int64(2), int64(100), "2014-01-01T00:00:00Z"))
	assert.NoError(t, ins.Exec(int64(2), nil, nil, nil, nil, nil, nil, nil))
	assert.NoError(t, w.Commit())

	var cnt int
	assert.NoError(t, w.database.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&cnt))
	assert.Equal(t, 2, cnt)
	var user sql.NullString
	assert.NoError(t, w.database.QueryRow("SELECT user FROM nodes WHERE id = 2").Scan(&user))
	assert.False(t, user.Valid)
	assert.True(t, w.DatabaseExists())
}

func TestWriterRemoveTagRecords(t *testing.T) {
	w := &Writer{Path: filepath.Join(t.TempDir(), "osm.db")}
	assert.NoError(t, w.Initialize(false))
	defer w.Close()
	ins, err := w.PrepareInsert(db.RelWayTags, db.RelWayTags.Columns())
	assert.NoError(t, err)
	assert.NoError(t, ins.Exec(int64(44895025), "street", "Rue X", "addr"))
	assert.NoError(t, ins.Exec(int64(44895025), "highway", "residential", "regular"))
	n, err := w.RemoveTagRecords(db.RelWayTags, 44895025, "addr", "street")
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = w.RemoveTagRecords(db.RelWays, 1, "addr", "street")
	assert.Error(t, err)
	assert.NoError(t, w.Commit())
}

func TestWriterRollback(t *testing.T) {
	w := &Writer{Path: filepath.Join(t.TempDir(), "osm.db")}
	assert.NoError(t, w.Initialize(false))
	defer w.Close()
	ins, err := w.PrepareInsert(db.RelWays, db.RelWays.Columns())
	assert.NoError(t, err)
	assert.NoError(t, ins.Exec(int64(10), "bob", int64(3), int64(1), int64(5), "2015-01-01T00:00:00Z"))
	assert.NoError(t, w.Rollback())
	var cnt int
	assert.NoError(t, w.database.QueryRow("SELECT COUNT(*) FROM ways").Scan(&cnt))
	assert.Equal(t, 0, cnt)
}

func TestPrepareInsertWithoutTransaction(t *testing.T) {
	w := &Writer{}
	_, err := w.PrepareInsert(db.RelNodes, db.RelNodes.Columns())
	assert.Error(t, err)
}
