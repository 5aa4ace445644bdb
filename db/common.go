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

package db

import (
	"fmt"
	"strings"
)

const (
	DBTypeSQLite   = "sqlite"
	DBTypeMySQL    = "mysql"
	DBTypePostgres = "postgres"
	DBTypeCSV      = "csv"
)

// Conf configures the storage the decomposed relations
// are written to. For sqlite, Name is a path to the database
// file, for csv it is a path to an output directory.
type Conf struct {
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	Host           string   `json:"host,omitempty"`
	User           string   `json:"user,omitempty"`
	Password       string   `json:"password,omitempty"`
	TablePrefix    string   `json:"tablePrefix,omitempty"`
	PreconfQueries []string `json:"preconfSettings,omitempty"`
}

func (c *Conf) Validate() error {
	switch c.Type {
	case DBTypeSQLite, DBTypeCSV:
		if c.Name == "" {
			return fmt.Errorf("missing db.name (path) for storage type %s", c.Type)
		}
	case DBTypeMySQL, DBTypePostgres:
		if c.Name == "" || c.Host == "" {
			return fmt.Errorf("storage type %s requires both db.name and db.host", c.Type)
		}
	default:
		return fmt.Errorf("unsupported storage type '%s'", c.Type)
	}
	return nil
}

// Writer is a storage for the five output relations.
// All the writes between Initialize and Commit are expected
// to be atomic - i.e. a Rollback must leave no partial data.
type Writer interface {
	DatabaseExists() bool
	Initialize(appendMode bool) error
	PrepareInsert(table Relation, attrs []string) (InsertOperation, error)

	// RemoveTagRecords removes tag records of a specific owner
	// with a specific key and type. It returns number of
	// removed rows.
	RemoveTagRecords(rel Relation, ownerID int64, tagType, key string) (int, error)
	Commit() error
	Rollback() error
	Close()
}

type InsertOperation interface {
	Exec(values ...any) error
}

// TableName returns a storage-level name of a relation
// with an optional prefix applied.
func TableName(prefix string, rel Relation) string {
	if prefix == "" {
		return string(rel)
	}
	return prefix + "_" + string(rel)
}

// Placeholders creates a comma-separated list of n
// question-mark placeholders.
func Placeholders(n int) string {
	ans := make([]string, n)
	for i := range ans {
		ans[i] = "?"
	}
	return strings.Join(ans, ", ")
}
