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
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/db"
)

// Node references of way memberships are not constrained
// as regional extracts contain ways crossing the extract
// boundary.
var tableDefs = map[db.Relation]string{
	db.RelNodes: `id BIGINT NOT NULL PRIMARY KEY,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION,
		"user" TEXT,
		uid BIGINT,
		version INTEGER,
		changeset BIGINT,
		"timestamp" TEXT`,
	db.RelNodeTags: `id BIGINT NOT NULL REFERENCES {nodes}(id),
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		type TEXT`,
	db.RelWays: `id BIGINT NOT NULL PRIMARY KEY,
		"user" TEXT,
		uid BIGINT,
		version INTEGER,
		changeset BIGINT,
		"timestamp" TEXT`,
	db.RelWayTags: `id BIGINT NOT NULL REFERENCES {ways}(id),
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		type TEXT`,
	db.RelWayNodes: `id BIGINT NOT NULL REFERENCES {ways}(id),
		node_id BIGINT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (id, position)`,
}

// dropExisting drops existing tables (children first).
func dropExisting(database *sql.DB, prefix string) error {
	log.Info().Msg("Attempting to drop possible existing tables")
	for i := len(db.AllRelations) - 1; i >= 0; i-- {
		table := db.TableName(prefix, db.AllRelations[i])
		_, err := database.Exec(
			fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{table}.Sanitize()))
		if err != nil {
			return fmt.Errorf("failed to drop table '%s': %w", table, err)
		}
	}
	return nil
}

func createSchema(database *sql.DB, prefix string) error {
	log.Info().Msg("Attempting to create tables")
	nodesTable := pgx.Identifier{db.TableName(prefix, db.RelNodes)}.Sanitize()
	waysTable := pgx.Identifier{db.TableName(prefix, db.RelWays)}.Sanitize()
	refs := strings.NewReplacer("{nodes}", nodesTable, "{ways}", waysTable)
	for _, rel := range db.AllRelations {
		table := db.TableName(prefix, rel)
		_, err := database.Exec(
			fmt.Sprintf(
				"CREATE TABLE %s (%s)",
				pgx.Identifier{table}.Sanitize(), refs.Replace(tableDefs[rel])))
		if err != nil {
			return fmt.Errorf("failed to create table '%s': %w", table, err)
		}
	}
	for _, idx := range [][2]string{{"idx_nd_usr", nodesTable}, {"idx_wy_usr", waysTable}} {
		name := idx[0]
		if prefix != "" {
			name = prefix + "_" + name
		}
		_, err := database.Exec(
			fmt.Sprintf(
				"CREATE INDEX %s ON %s (uid)", pgx.Identifier{name}.Sanitize(), idx[1]))
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
		log.Info().Str("index", name).Str("table", idx[1]).Msg("Created index")
	}
	return nil
}
