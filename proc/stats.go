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
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/czcorpus/osm-tagextract/db"
	"github.com/czcorpus/osm-tagextract/ptcount"
)

// Statistics collects observations about the processed document.
// It does not affect the extracted data in any way.
type Statistics struct {
	numOpenEvents  int
	numCloseEvents int
	elements       *ptcount.FreqDict
	subElements    map[string]*ptcount.FreqDict
	attributes     map[string]*ptcount.FreqDict
	tagKeys        *ptcount.FreqDict
	users          *ptcount.FreqDict
	rows           map[db.Relation]int

	StructuralMismatches int
	MissingParent        int
	DroppedTags          int
	OrphanNodeRefs       int
	CorrectionsApplied   int
	InvalidElements      int
}

// recordOpen updates the statistics with an opening element.
// The parent name is ignored in case hasParent is false.
func (s *Statistics) recordOpen(name string, elmAttrs map[string]string, parentName string, hasParent bool) {
	s.numOpenEvents++
	s.elements.Add(name)
	if hasParent {
		sub, ok := s.subElements[parentName]
		if !ok {
			sub = ptcount.NewFreqDict()
			s.subElements[parentName] = sub
		}
		sub.Add(name)
	}
	attrs, ok := s.attributes[name]
	if !ok {
		attrs = ptcount.NewFreqDict()
		s.attributes[name] = attrs
	}
	for attrName := range elmAttrs {
		attrs.Add(attrName)
	}
	if name == "tag" {
		if k, ok := elmAttrs["k"]; ok {
			s.tagKeys.Add(k)
		}
	}
	if uid, ok := elmAttrs["uid"]; ok {
		s.users.Add(uid)
	}
}

func (s *Statistics) recordClose() {
	s.numCloseEvents++
}

func (s *Statistics) recordRow(rel db.Relation) {
	s.rows[rel]++
}

func (s *Statistics) NumOpenEvents() int {
	return s.numOpenEvents
}

func (s *Statistics) NumCloseEvents() int {
	return s.numCloseEvents
}

func (s *Statistics) NumRows(rel db.Relation) int {
	return s.rows[rel]
}

func (s *Statistics) ElementCount(name string) int {
	return s.elements.Count(name)
}

func (s *Statistics) TagKeyCount(key string) int {
	return s.tagKeys.Count(key)
}

func (s *Statistics) NumUniqueUsers() int {
	return s.users.Size()
}

// StatsSummary is a serializable overview of collected statistics
type StatsSummary struct {
	NumOpenEvents        int                 `json:"numOpenEvents"`
	NumCloseEvents       int                 `json:"numCloseEvents"`
	Elements             []ptcount.FreqItem  `json:"elements"`
	SubElements          map[string][]string `json:"subElements"`
	Attributes           map[string][]string `json:"attributes"`
	NumTagKeys           int                 `json:"numTagKeys"`
	TopTagKeys           []ptcount.FreqItem  `json:"topTagKeys"`
	NumUniqueUsers       int                 `json:"numUniqueUsers"`
	Rows                 map[string]int      `json:"rows"`
	StructuralMismatches int                 `json:"structuralMismatches"`
	MissingParent        int                 `json:"missingParent"`
	DroppedTags          int                 `json:"droppedTags"`
	OrphanNodeRefs       int                 `json:"orphanNodeRefs"`
	CorrectionsApplied   int                 `json:"correctionsApplied"`
	InvalidElements      int                 `json:"invalidElements"`
}

// Summary creates a summary with topN most frequent
// tag keys. For topN <= 0, all the keys are included.
func (s *Statistics) Summary(topN int) *StatsSummary {
	ans := &StatsSummary{
		NumOpenEvents:        s.numOpenEvents,
		NumCloseEvents:       s.numCloseEvents,
		Elements:             s.elements.TopN(0),
		SubElements:          make(map[string][]string, len(s.subElements)),
		Attributes:           make(map[string][]string, len(s.attributes)),
		NumTagKeys:           s.tagKeys.Size(),
		TopTagKeys:           s.tagKeys.TopN(topN),
		NumUniqueUsers:       s.users.Size(),
		Rows:                 make(map[string]int, len(db.AllRelations)),
		StructuralMismatches: s.StructuralMismatches,
		MissingParent:        s.MissingParent,
		DroppedTags:          s.DroppedTags,
		OrphanNodeRefs:       s.OrphanNodeRefs,
		CorrectionsApplied:   s.CorrectionsApplied,
		InvalidElements:      s.InvalidElements,
	}
	for name, sub := range s.subElements {
		ans.SubElements[name] = sub.Keys()
	}
	for name, attrs := range s.attributes {
		ans.Attributes[name] = attrs.Keys()
	}
	for _, rel := range db.AllRelations {
		ans.Rows[string(rel)] = s.rows[rel]
	}
	return ans
}

func fmtCount(v int) string {
	return humanize.Comma(int64(v))
}

// WriteReport writes a human-readable report of the statistics
func (s *Statistics) WriteReport(w io.Writer, topN int) error {
	return s.Summary(topN).WriteReport(w)
}

// WriteReport writes a human-readable report of the summary
func (summ *StatsSummary) WriteReport(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Total number of events: %s\n", fmtCount(summ.NumOpenEvents+summ.NumCloseEvents))
	b.WriteString("Number of occurrences of each element:\n")
	for _, item := range summ.Elements {
		fmt.Fprintf(&b, "  %s: %s\n", item.Value, fmtCount(item.Count))
	}
	b.WriteString("Elements and their sub-elements:\n")
	for _, item := range summ.Elements {
		if sub, ok := summ.SubElements[item.Value]; ok {
			fmt.Fprintf(&b, "  %s: %s\n", item.Value, strings.Join(sub, ", "))
		}
	}
	b.WriteString("Element attributes:\n")
	for _, item := range summ.Elements {
		if attrs := summ.Attributes[item.Value]; len(attrs) > 0 {
			fmt.Fprintf(&b, "  %s: %s\n", item.Value, strings.Join(attrs, ", "))
		}
	}
	fmt.Fprintf(
		&b, "Values used for keys ('k' attributes of 'tag' elements), %d of %s:\n",
		len(summ.TopTagKeys), fmtCount(summ.NumTagKeys))
	for _, item := range summ.TopTagKeys {
		fmt.Fprintf(&b, "  %s: %s\n", item.Value, fmtCount(item.Count))
	}
	fmt.Fprintf(&b, "Total number of unique users: %s\n", fmtCount(summ.NumUniqueUsers))
	b.WriteString("Emitted rows:\n")
	for _, rel := range db.AllRelations {
		fmt.Fprintf(&b, "  %s: %s\n", rel, fmtCount(summ.Rows[string(rel)]))
	}
	fmt.Fprintf(&b, "Corrections applied: %s\n", fmtCount(summ.CorrectionsApplied))
	fmt.Fprintf(&b, "Structural mismatches: %s\n", fmtCount(summ.StructuralMismatches))
	fmt.Fprintf(&b, "Records without parent context: %s\n", fmtCount(summ.MissingParent))
	fmt.Fprintf(&b, "Tags dropped (parent not a node or way): %s\n", fmtCount(summ.DroppedTags))
	fmt.Fprintf(&b, "Node references outside a way: %s\n", fmtCount(summ.OrphanNodeRefs))
	fmt.Fprintf(&b, "Invalid elements: %s\n", fmtCount(summ.InvalidElements))
	_, err := io.WriteString(w, b.String())
	return err
}

func NewStatistics() *Statistics {
	return &Statistics{
		elements:    ptcount.NewFreqDict(),
		subElements: make(map[string]*ptcount.FreqDict),
		attributes:  make(map[string]*ptcount.FreqDict),
		tagKeys:     ptcount.NewFreqDict(),
		users:       ptcount.NewFreqDict(),
		rows:        make(map[db.Relation]int),
	}
}
