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

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/db"
)

// Node references of way memberships are not constrained
// as regional extracts contain ways crossing the extract
// boundary.
var tableDefs = map[db.Relation]string{
	db.RelNodes: "`id` BIGINT NOT NULL PRIMARY KEY, " +
		"`lat` DOUBLE, `lon` DOUBLE, `user` VARCHAR(255), `uid` BIGINT, " +
		"`version` INT, `changeset` BIGINT, `timestamp` VARCHAR(32)",
	db.RelNodeTags: "`id` BIGINT NOT NULL, `key` VARCHAR(255) NOT NULL, " +
		"`value` TEXT NOT NULL, `type` VARCHAR(255), " +
		"FOREIGN KEY (`id`) REFERENCES {nodes}(`id`)",
	db.RelWays: "`id` BIGINT NOT NULL PRIMARY KEY, " +
		"`user` VARCHAR(255), `uid` BIGINT, `version` INT, `changeset` BIGINT, " +
		"`timestamp` VARCHAR(32)",
	db.RelWayTags: "`id` BIGINT NOT NULL, `key` VARCHAR(255) NOT NULL, " +
		"`value` TEXT NOT NULL, `type` VARCHAR(255), " +
		"FOREIGN KEY (`id`) REFERENCES {ways}(`id`)",
	db.RelWayNodes: "`id` BIGINT NOT NULL, `node_id` BIGINT NOT NULL, " +
		"`position` INT NOT NULL, PRIMARY KEY (`id`, `position`), " +
		"FOREIGN KEY (`id`) REFERENCES {ways}(`id`)",
}

// dropExisting drops existing tables (children first).
// It is safe to call this even if one or more
// of these does not exist.
func dropExisting(database *sql.DB, prefix string) error {
	log.Info().Msg("Attempting to drop possible existing tables")
	for i := len(db.AllRelations) - 1; i >= 0; i-- {
		table := db.TableName(prefix, db.AllRelations[i])
		_, err := database.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(table)))
		if err != nil {
			return fmt.Errorf("failed to drop table '%s': %w", table, err)
		}
	}
	return nil
}

// createSchema creates all the required tables and indices
func createSchema(database *sql.DB, prefix string) error {
	log.Info().Msg("Attempting to create tables")
	nodesTable := quoteIdent(db.TableName(prefix, db.RelNodes))
	waysTable := quoteIdent(db.TableName(prefix, db.RelWays))
	refs := strings.NewReplacer("{nodes}", nodesTable, "{ways}", waysTable)
	for _, rel := range db.AllRelations {
		table := db.TableName(prefix, rel)
		_, err := database.Exec(
			fmt.Sprintf(
				"CREATE TABLE %s (%s) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
				quoteIdent(table), refs.Replace(tableDefs[rel])))
		if err != nil {
			return fmt.Errorf("failed to create table '%s': %w", table, err)
		}
	}
	for name, table := range map[string]string{"idx_nd_usr": nodesTable, "idx_wy_usr": waysTable} {
		if prefix != "" {
			name = prefix + "_" + name
		}
		_, err := database.Exec(
			fmt.Sprintf("CREATE INDEX %s ON %s (`uid`)", quoteIdent(name), table))
		if err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
		log.Info().Str("index", name).Str("table", table).Msg("Created index")
	}
	return nil
}
