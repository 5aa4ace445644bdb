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

package proc

import (
	"time"

	"github.com/czcorpus/osm-tagextract/db"
)

// RowSink receives rows of the output relations. Values
// must follow the order of rel.Columns().
type RowSink interface {
	Write(rel db.Relation, values ...any) error
}

// NullSink discards all the rows
type NullSink struct{}

func (ns NullSink) Write(rel db.Relation, values ...any) error {
	return nil
}

// Status stores some basic information about OSM file processing
type Status struct {
	Datetime          time.Time
	File              string
	ProcessedElements int
	ProcessedLines    int
	Error             error

	// Stats is attached to the final status message
	// of a successful run.
	Stats *StatsSummary
}
