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

package factory

import (
	"fmt"

	"github.com/czcorpus/osm-tagextract/cnf"
	"github.com/czcorpus/osm-tagextract/db"
	"github.com/czcorpus/osm-tagextract/db/csvfile"
	"github.com/czcorpus/osm-tagextract/db/mysql"
	"github.com/czcorpus/osm-tagextract/db/postgres"
	"github.com/czcorpus/osm-tagextract/db/sqlite"
)

// NullWriter is a writer which refuses to do anything.
// It is returned along with an error for unknown storage types
// so the caller can always safely Close the result.
type NullWriter struct {
}

func (nw *NullWriter) DatabaseExists() bool {
	return false
}

func (nw *NullWriter) Initialize(appendMode bool) error {
	return fmt.Errorf("no valid database writer installed")
}

func (nw *NullWriter) PrepareInsert(table db.Relation, attrs []string) (db.InsertOperation, error) {
	return nil, fmt.Errorf("no valid database writer installed")
}

func (nw *NullWriter) RemoveTagRecords(rel db.Relation, ownerID int64, tagType, key string) (int, error) {
	return 0, fmt.Errorf("no valid database writer installed")
}

func (nw *NullWriter) Commit() error {
	return fmt.Errorf("no valid database writer installed")
}

func (nw *NullWriter) Rollback() error {
	return fmt.Errorf("no valid database writer installed")
}

func (nw *NullWriter) Close() {}

func NewDatabaseWriter(conf *cnf.OTEConf) (db.Writer, error) {
	switch conf.DB.Type {
	case db.DBTypeSQLite:
		return &sqlite.Writer{
			Path:           conf.DB.Name,
			TablePrefix:    conf.DB.TablePrefix,
			PreconfQueries: conf.DB.PreconfQueries,
		}, nil
	case db.DBTypeMySQL:
		return mysql.NewWriter(&conf.DB)
	case db.DBTypePostgres:
		return postgres.NewWriter(&conf.DB)
	case db.DBTypeCSV:
		return csvfile.NewWriter(&conf.DB), nil
	default:
		return &NullWriter{}, fmt.Errorf("unsupported database type: %s", conf.DB.Type)
	}
}
