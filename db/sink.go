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
)

// RelationSink writes rows of the normalized relations
// via a Writer. For each relation, an insert operation
// is prepared once and reused for all the rows.
type RelationSink struct {
	writer  Writer
	inserts map[Relation]InsertOperation
	counts  map[Relation]int
}

// Write appends a row to a relation. The number and types of values
// are checked before anything is passed to the underlying writer so
// a row is either written as a whole or not at all.
func (rs *RelationSink) Write(rel Relation, values ...any) error {
	ins, ok := rs.inserts[rel]
	if !ok {
		return fmt.Errorf("cannot write to relation '%s' - not prepared", rel)
	}
	if len(values) != rel.NumColumns() {
		return fmt.Errorf(
			"invalid row for relation '%s' - expected %d values, got %d",
			rel, rel.NumColumns(), len(values))
	}
	for i, v := range values {
		if err := ValidateValue(v); err != nil {
			return fmt.Errorf("invalid value of %s.%s: %w", rel, rel.Columns()[i], err)
		}
	}
	if err := ins.Exec(values...); err != nil {
		return fmt.Errorf("failed to write to %s: %w", rel, err)
	}
	rs.counts[rel]++
	return nil
}

// Count returns number of rows written to a relation so far
func (rs *RelationSink) Count(rel Relation) int {
	return rs.counts[rel]
}

// NewRelationSink prepares inserts for all the relations.
// The writer must be already initialized.
func NewRelationSink(writer Writer) (*RelationSink, error) {
	ans := &RelationSink{
		writer:  writer,
		inserts: make(map[Relation]InsertOperation),
		counts:  make(map[Relation]int),
	}
	for _, rel := range AllRelations {
		ins, err := writer.PrepareInsert(rel, rel.Columns())
		if err != nil {
			return nil, fmt.Errorf("failed to create relation sink: %w", err)
		}
		ans.inserts[rel] = ins
	}
	return ans, nil
}
