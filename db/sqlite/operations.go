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

/*
This file contains all the database operations
required to create a proper schema for the
decomposed OSM data (tables and their indices)
*/

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/db"

	_ "github.com/mattn/go-sqlite3" // load the driver
)

var tableDefs = map[db.Relation]string{
	db.RelNodes: `id INTEGER PRIMARY KEY NOT NULL,
		lat REAL,
		lon REAL,
		user TEXT,
		uid INTEGER,
		version INTEGER,
		changeset INTEGER,
		timestamp TEXT`,
	db.RelNodeTags: `id INTEGER NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		type TEXT,
		FOREIGN KEY (id) REFERENCES {nodes}(id)`,
	db.RelWays: `id INTEGER PRIMARY KEY NOT NULL,
		user TEXT,
		uid INTEGER,
		version INTEGER,
		changeset INTEGER,
		timestamp TEXT`,
	db.RelWayTags: `id INTEGER NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		type TEXT,
		FOREIGN KEY (id) REFERENCES {ways}(id)`,
	db.RelWayNodes: `id INTEGER NOT NULL,
		node_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		FOREIGN KEY (id) REFERENCES {ways}(id),
		FOREIGN KEY (node_id) REFERENCES {nodes}(id)`,
}

// openDatabase opens a sqlite3 database specified by
// its filesystem path.
func openDatabase(dbPath string) (*sql.DB, error) {
	database, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open OSM db: %w", err)
	}
	return database, nil
}

// prepareInsert creates a prepared statement for an INSERT
// operation.
func prepareInsert(database *sql.Tx, table string, cols []string) (*sql.Stmt, error) {
	ans, err := database.Prepare(
		fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s)",
			table, joinArgs(cols), db.Placeholders(len(cols))))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare INSERT: %w", err)
	}
	return ans, nil
}

func joinArgs(args []string) string {
	return strings.Join(args, ", ")
}

// dropExisting drops existing tables (children first).
// It is safe to call this even if one or more
// of these does not exist.
func dropExisting(database *sql.DB, prefix string) error {
	log.Info().Msg("Attempting to drop possible existing tables")
	for i := len(db.AllRelations) - 1; i >= 0; i-- {
		table := db.TableName(prefix, db.AllRelations[i])
		if _, err := database.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table '%s': %w", table, err)
		}
	}
	return nil
}

// createSchema creates all the required tables and indices
func createSchema(database *sql.DB, prefix string) error {
	log.Info().Msg("Attempting to create tables")
	nodesTable := db.TableName(prefix, db.RelNodes)
	waysTable := db.TableName(prefix, db.RelWays)
	refs := strings.NewReplacer("{nodes}", nodesTable, "{ways}", waysTable)
	for _, rel := range db.AllRelations {
		table := db.TableName(prefix, rel)
		colDefs := refs.Replace(tableDefs[rel])
		_, err := database.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", table, colDefs))
		if err != nil {
			return fmt.Errorf("failed to create table '%s': %w", table, err)
		}
	}
	indices := [][2]string{
		{"idx_nd_usr", nodesTable},
		{"idx_wy_usr", waysTable},
	}
	for _, idx := range indices {
		name := idx[0]
		if prefix != "" {
			name = prefix + "_" + name
		}
		_, err := database.Exec(fmt.Sprintf("CREATE INDEX %s ON %s (uid)", name, idx[1]))
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
		log.Info().
			Str("index", name).
			Str("table", idx[1]).
			Str("column", "uid").
			Msg("Created index")
	}
	return nil
}
