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

import "fmt"

// Relation identifies one of the normalized output relations.
type Relation string

const (
	RelNodes    Relation = "nodes"
	RelNodeTags Relation = "node_tags"
	RelWays     Relation = "ways"
	RelWayTags  Relation = "way_tags"
	RelWayNodes Relation = "way_node_memberships"

	numRelations = 5
)

// AllRelations lists the relations in the order they should
// be created (parents first).
var AllRelations = [numRelations]Relation{
	RelNodes, RelNodeTags, RelWays, RelWayTags, RelWayNodes,
}

// the field order is a part of the output contract
var relationColumns = map[Relation][]string{
	RelNodes:    {"id", "lat", "lon", "user", "uid", "version", "changeset", "timestamp"},
	RelNodeTags: {"id", "key", "value", "type"},
	RelWays:     {"id", "user", "uid", "version", "changeset", "timestamp"},
	RelWayTags:  {"id", "key", "value", "type"},
	RelWayNodes: {"id", "node_id", "position"},
}

// Columns returns ordered column names of the relation.
// A copy is returned so callers may modify it.
func (r Relation) Columns() []string {
	cols := relationColumns[r]
	ans := make([]string, len(cols))
	copy(ans, cols)
	return ans
}

func (r Relation) NumColumns() int {
	return len(relationColumns[r])
}

func (r Relation) Validate() error {
	if _, ok := relationColumns[r]; !ok {
		return fmt.Errorf("unknown relation '%s'", r)
	}
	return nil
}

// IsTagRelation tells whether the relation stores
// key-value tags of nodes or ways.
func (r Relation) IsTagRelation() bool {
	return r == RelNodeTags || r == RelWayTags
}
