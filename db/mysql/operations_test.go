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
	"testing"

	"github.com/czcorpus/osm-tagextract/db"
	"github.com/stretchr/testify/assert"
)

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`key`", quoteIdent("key"))
	assert.Equal(t, "`we``ird`", quoteIdent("we`ird"))
	assert.Equal(t, []string{"`id`", "`node_id`"}, quoteIdents([]string{"id", "node_id"}))
}

func TestDSN(t *testing.T) {
	dsn := DSN(&db.Conf{
		Type:     db.DBTypeMySQL,
		Name:     "osm",
		Host:     "localhost:3306",
		User:     "osmuser",
		Password: "secret",
	})
	assert.Contains(t, dsn, "osmuser:secret@tcp(localhost:3306)/osm")
	assert.Contains(t, dsn, "parseTime=true")
}

func TestTableDefsCoverColumns(t *testing.T) {
	for _, rel := range db.AllRelations {
		def, ok := tableDefs[rel]
		assert.True(t, ok)
		for _, c := range rel.Columns() {
			assert.Contains(t, def, quoteIdent(c))
		}
	}
}
