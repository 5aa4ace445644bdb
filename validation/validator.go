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

package validation

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/parser"
	"github.com/czcorpus/osm-tagextract/proc"
)

// Problem is a single validation finding
type Problem struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Report summarizes a validation run
type Report struct {
	NumElements        int       `json:"numElements"`
	NumNodes           int       `json:"numNodes"`
	NumWays            int       `json:"numWays"`
	NumUnknownNodeRefs int       `json:"numUnknownNodeRefs"`
	NumProblems        int       `json:"numProblems"`
	Problems           []Problem `json:"problems"`
}

func (r *Report) IsValid() bool {
	return r.NumProblems == 0
}

// OSMValidator checks that an OSM XML file has the shape expected
// by the extractor (nodes and ways at the top level, tags inside nodes,
// ways and relations, nd elements inside ways). In the strict mode,
// references to nodes not present in the file are reported as problems.
// Parsed values are received passively by implementing parser.ElementProcessor.
type OSMValidator struct {
	ctx         context.Context
	openElms    []string
	knownNodes  map[int64]struct{}
	strict      bool
	maxProblems int
	report      Report
}

// NewOSMValidator is a factory function to
// instantiate proper OSMValidator. At most maxProblems
// problems are stored (all of them are counted).
func NewOSMValidator(ctx context.Context, strict bool, maxProblems int) *OSMValidator {
	return &OSMValidator{
		ctx:         ctx,
		openElms:    make([]string, 0, 8),
		knownNodes:  make(map[int64]struct{}),
		strict:      strict,
		maxProblems: maxProblems,
	}
}

func (vv *OSMValidator) addProblem(line int, format string, args ...any) {
	vv.report.NumProblems++
	if len(vv.report.Problems) < vv.maxProblems {
		vv.report.Problems = append(vv.report.Problems, Problem{Line: line, Message: fmt.Sprintf(format, args...)})
	}
}

func (vv *OSMValidator) checkID(elm *parser.Element, attr string, line int) (int64, bool) {
	v, ok := elm.Attrs[attr]
	if !ok {
		vv.addProblem(line, "element %s has no %s", elm.Name, attr)
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		vv.addProblem(line, "element %s has invalid %s '%s'", elm.Name, attr, v)
		return 0, false
	}
	return id, true
}

func (vv *OSMValidator) checkStop() error {
	select {
	case <-vv.ctx.Done():
		return fmt.Errorf("received stop signal: %w", vv.ctx.Err())
	default:
	}
	return nil
}

// ProcElement is a part of parser.ElementProcessor implementation.
func (vv *OSMValidator) ProcElement(elm *parser.Element, line int) error {
	if err := vv.checkStop(); err != nil {
		return err
	}
	vv.report.NumElements++
	for _, v := range vv.openElms {
		if v == elm.Name {
			vv.addProblem(line, "element can not contain itself, %s is already opened", elm.Name)
			break
		}
	}
	var parent string
	if len(vv.openElms) > 0 {
		parent = vv.openElms[len(vv.openElms)-1]
	}
	switch proc.ParseElementKind(elm.Name) {
	case proc.KindNode:
		vv.report.NumNodes++
		if id, ok := vv.checkID(elm, "id", line); ok {
			vv.knownNodes[id] = struct{}{}
		}
		if len(vv.openElms) != 1 {
			vv.addProblem(line, "node must be a top-level element")
		}
	case proc.KindWay:
		vv.report.NumWays++
		vv.checkID(elm, "id", line)
		if len(vv.openElms) != 1 {
			vv.addProblem(line, "way must be a top-level element")
		}
	case proc.KindTag:
		switch parent {
		case "node", "way", "relation":
		default:
			vv.addProblem(line, "tag element inside unexpected element '%s'", parent)
		}
		if _, ok := elm.Attrs["k"]; !ok {
			vv.addProblem(line, "tag element without k attribute")
		}
		if _, ok := elm.Attrs["v"]; !ok {
			vv.addProblem(line, "tag element without v attribute")
		}
	case proc.KindNodeRef:
		if parent != "way" {
			vv.addProblem(line, "nd element inside unexpected element '%s'", parent)
		}
		if ref, ok := vv.checkID(elm, "ref", line); ok {
			if _, known := vv.knownNodes[ref]; !known {
				vv.report.NumUnknownNodeRefs++
				if vv.strict {
					vv.addProblem(line, "reference to unknown node %d", ref)
				}
			}
		}
	case proc.KindOther:
	}
	vv.openElms = append(vv.openElms, elm.Name)
	return nil
}

// ProcElementClose is a part of parser.ElementProcessor implementation.
func (vv *OSMValidator) ProcElementClose(elm *parser.ElementClose, line int) error {
	if err := vv.checkStop(); err != nil {
		return err
	}
	if len(vv.openElms) == 0 {
		vv.addProblem(line, "missing opening tag for element `%s`", elm.Name)
		return nil
	}
	last := vv.openElms[len(vv.openElms)-1]
	vv.openElms = vv.openElms[:len(vv.openElms)-1]
	if last != elm.Name {
		vv.addProblem(line, "invalid closing element `%s`, expecting element `%s`", elm.Name, last)
	}
	return nil
}

func (vv *OSMValidator) Report() *Report {
	return &vv.report
}

// Run validates the file specified in conf
func (vv *OSMValidator) Run(conf *parser.ParserConf) (*Report, error) {
	log.Info().Str("file", conf.InputFilePath).Bool("strict", vv.strict).Msg("Starting to validate OSM file")
	if err := parser.ParseFile(vv.ctx, conf, vv); err != nil {
		return nil, fmt.Errorf("failed to validate OSM file: %w", err)
	}
	log.Info().
		Int("numElements", vv.report.NumElements).
		Int("numProblems", vv.report.NumProblems).
		Int("numUnknownNodeRefs", vv.report.NumUnknownNodeRefs).
		Msg("Validation finished")
	return &vv.report, nil
}
