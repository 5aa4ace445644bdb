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
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/cnf"
	"github.com/czcorpus/osm-tagextract/db"
	"github.com/czcorpus/osm-tagextract/parser"
)

const (
	dfltReportEachNth = 1000
)

// OSMExtractor decomposes OSM elements into rows of normalized
// relations. Parsed elements are received passively by implementing
// parser.ElementProcessor.
type OSMExtractor struct {
	ctx           context.Context
	sink          RowSink
	corrections   *Corrections
	stack         *structStack
	stats         *Statistics
	wayPosition   int
	elmCounter    int
	errorCounter  int
	maxNumErrors  int
	reportEachNth int
	statusChan    chan<- Status
}

// NewOSMExtractor is a factory function to instantiate
// a proper OSMExtractor. The statusChan is optional.
func NewOSMExtractor(
	ctx context.Context,
	sink RowSink,
	conf *cnf.OTEConf,
	corrections *Corrections,
	statusChan chan<- Status,
) *OSMExtractor {
	return &OSMExtractor{
		ctx:           ctx,
		sink:          sink,
		corrections:   corrections,
		stack:         newStructStack(),
		stats:         NewStatistics(),
		maxNumErrors:  conf.MaxNumErrors,
		reportEachNth: dfltReportEachNth,
		statusChan:    statusChan,
	}
}

func (ex *OSMExtractor) Stats() *Statistics {
	return ex.stats
}

func (ex *OSMExtractor) sendStatus(status Status) {
	if ex.statusChan != nil {
		ex.statusChan <- status
	}
}

// handleProcError reports a provided error err by sending it via
// statusChan and also evaluates total number of errors and in case
// it is too high (compared with a limit defined in maxNumErrors)
// it returns ErrTooManyParsingErrors which should be considered a processing
// stop signal.
func (ex *OSMExtractor) handleProcError(lineNum int, err error) error {
	ex.sendStatus(Status{
		Datetime:          time.Now(),
		ProcessedElements: ex.elmCounter,
		ProcessedLines:    lineNum,
		Error:             err,
	})
	log.Error().Err(err).Int("lineNumber", lineNum).Msg("invalid element")
	ex.stats.InvalidElements++
	ex.errorCounter++
	if ex.errorCounter > ex.maxNumErrors {
		return ErrTooManyParsingErrors
	}
	return nil
}

func (ex *OSMExtractor) emit(rel db.Relation, line int, values ...any) error {
	if err := ex.sink.Write(rel, values...); err != nil {
		return fmt.Errorf("failed to write row of %s (line %d): %w", rel, line, err)
	}
	ex.stats.recordRow(rel)
	return nil
}

func (ex *OSMExtractor) checkStop() error {
	select {
	case <-ex.ctx.Done():
		return fmt.Errorf("received stop signal: %w", ex.ctx.Err())
	default:
	}
	return nil
}

// parseID parses a required integer attribute
func parseID(attrs map[string]string, name string) (int64, error) {
	v, ok := attrs[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing attribute %s", ErrInvalidElement, name)
	}
	ans, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s '%s'", ErrInvalidElement, name, v)
	}
	return ans, nil
}

// optInt parses an optional integer attribute. A missing attribute
// is exported as nil. In case the value is invalid, the error is reported
// and nil is exported.
func (ex *OSMExtractor) optInt(attrs map[string]string, name string, line int) (any, error) {
	v, ok := attrs[name]
	if !ok {
		return nil, nil
	}
	ans, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, ex.handleProcError(
			line, fmt.Errorf("%w: invalid %s '%s'", ErrInvalidElement, name, v))
	}
	return ans, nil
}

func (ex *OSMExtractor) optFloat(attrs map[string]string, name string, line int) (any, error) {
	v, ok := attrs[name]
	if !ok {
		return nil, nil
	}
	ans, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, ex.handleProcError(
			line, fmt.Errorf("%w: invalid %s '%s'", ErrInvalidElement, name, v))
	}
	return ans, nil
}

func optString(attrs map[string]string, name string) any {
	if v, ok := attrs[name]; ok {
		return v
	}
	return nil
}

// metadata exports common OSM element attributes
// (user, uid, version, changeset, timestamp)
func (ex *OSMExtractor) metadata(attrs map[string]string, line int) ([]any, error) {
	ans := make([]any, 5)
	ans[0] = optString(attrs, "user")
	for i, name := range []string{"uid", "version", "changeset"} {
		v, err := ex.optInt(attrs, name, line)
		if err != nil {
			return nil, err
		}
		ans[i+1] = v
	}
	ans[4] = optString(attrs, "timestamp")
	return ans, nil
}

func (ex *OSMExtractor) procNode(elm *parser.Element, line int) error {
	id, err := parseID(elm.Attrs, "id")
	if err != nil {
		return ex.handleProcError(line, fmt.Errorf("node: %w", err))
	}
	lat, err := ex.optFloat(elm.Attrs, "lat", line)
	if err != nil {
		return err
	}
	lon, err := ex.optFloat(elm.Attrs, "lon", line)
	if err != nil {
		return err
	}
	meta, err := ex.metadata(elm.Attrs, line)
	if err != nil {
		return err
	}
	return ex.emit(db.RelNodes, line, append([]any{id, lat, lon}, meta...)...)
}

func (ex *OSMExtractor) procWay(elm *parser.Element, line int) error {
	ex.wayPosition = 0
	id, err := parseID(elm.Attrs, "id")
	if err != nil {
		return ex.handleProcError(line, fmt.Errorf("way: %w", err))
	}
	meta, err := ex.metadata(elm.Attrs, line)
	if err != nil {
		return err
	}
	return ex.emit(db.RelWays, line, append([]any{id}, meta...)...)
}

// ownerID returns the id of the parent element. Any problem
// is reported as ErrMissingParentContext.
func (ex *OSMExtractor) ownerID(elm *parser.Element, parent Frame, hasParent bool) (int64, error) {
	if !hasParent {
		return 0, fmt.Errorf("%w: %s has no parent element", ErrMissingParentContext, elm.Name)
	}
	id, err := parseID(parent.Attrs, "id")
	if err != nil {
		return 0, fmt.Errorf(
			"%w: %s opened on line %d has no valid id", ErrMissingParentContext, parent.Name, parent.LineOpen)
	}
	return id, nil
}

func (ex *OSMExtractor) reportMissingParent(line int, err error) {
	ex.stats.MissingParent++
	log.Debug().Err(err).Int("lineNumber", line).Msg("record dropped")
}

func (ex *OSMExtractor) procNodeRef(elm *parser.Element, line int) error {
	parent, hasParent := ex.stack.parent()
	if hasParent && ParseElementKind(parent.Name) != KindWay {
		ex.stats.OrphanNodeRefs++
		log.Debug().Int("lineNumber", line).Str("parent", parent.Name).Msg("nd outside a way dropped")
		return nil
	}
	if hasParent {
		ex.wayPosition++
	}
	wayID, err := ex.ownerID(elm, parent, hasParent)
	if err != nil {
		ex.reportMissingParent(line, err)
		return nil
	}
	ref, err := parseID(elm.Attrs, "ref")
	if err != nil {
		return ex.handleProcError(line, fmt.Errorf("nd: %w", err))
	}
	return ex.emit(db.RelWayNodes, line, wayID, ref, ex.wayPosition)
}

func (ex *OSMExtractor) procTag(elm *parser.Element, line int) error {
	parent, hasParent := ex.stack.parent()
	var rel db.Relation
	if hasParent {
		switch ParseElementKind(parent.Name) {
		case KindNode:
			rel = db.RelNodeTags
		case KindWay:
			rel = db.RelWayTags
		case KindTag, KindNodeRef, KindOther:
			ex.stats.DroppedTags++
			return nil
		}
	}
	ownerID, err := ex.ownerID(elm, parent, hasParent)
	if err != nil {
		ex.reportMissingParent(line, err)
		return nil
	}
	rawKey, ok := elm.Attrs["k"]
	if !ok {
		return ex.handleProcError(line, fmt.Errorf("tag: %w: missing attribute k", ErrInvalidElement))
	}
	value, ok := elm.Attrs["v"]
	if !ok {
		return ex.handleProcError(line, fmt.Errorf("tag: %w: missing attribute v", ErrInvalidElement))
	}
	if fixed, ok := ex.corrections.Apply(rawKey, value); ok {
		log.Info().
			Str("from", value).
			Str("to", fixed).
			Int("lineNumber", line).
			Msg("Correcting street name")
		ex.stats.CorrectionsApplied++
		value = fixed
	}
	key, keyType := SplitKey(rawKey)
	return ex.emit(rel, line, ownerID, key, value, keyType)
}

func (ex *OSMExtractor) reportProgress(line int) {
	if ex.elmCounter%ex.reportEachNth == 0 {
		ex.sendStatus(Status{
			Datetime:          time.Now(),
			ProcessedElements: ex.elmCounter,
			ProcessedLines:    line,
		})
	}
}

// ProcElement is a part of parser.ElementProcessor implementation.
// It is called by the parser when an opening element is encountered.
func (ex *OSMExtractor) ProcElement(elm *parser.Element, line int) error {
	if err := ex.checkStop(); err != nil {
		return err
	}
	ex.elmCounter++
	ex.stack.begin(line, elm)
	parent, hasParent := ex.stack.parent()
	ex.stats.recordOpen(elm.Name, elm.Attrs, parent.Name, hasParent)

	var err error
	switch ParseElementKind(elm.Name) {
	case KindNode:
		err = ex.procNode(elm, line)
	case KindWay:
		err = ex.procWay(elm, line)
	case KindNodeRef:
		err = ex.procNodeRef(elm, line)
	case KindTag:
		err = ex.procTag(elm, line)
	case KindOther:
	}
	if err != nil {
		return err
	}
	ex.reportProgress(line)
	return nil
}

// ProcElementClose is a part of parser.ElementProcessor implementation.
// It is called by the parser when a closing element is encountered.
// A structural mismatch is logged but it does not stop the processing.
func (ex *OSMExtractor) ProcElementClose(elm *parser.ElementClose, line int) error {
	if err := ex.checkStop(); err != nil {
		return err
	}
	ex.stats.recordClose()
	if _, err := ex.stack.end(line, elm.Name); err != nil {
		if !errors.Is(err, ErrStructuralMismatch) {
			return err
		}
		ex.stats.StructuralMismatches++
		log.Error().Err(err).Int("lineNumber", line).Msg("element end mismatch")
	}
	return nil
}

// Finish checks the final state of the extractor
// after all the elements have been processed.
func (ex *OSMExtractor) Finish() {
	if ex.stack.Size() != 0 {
		log.Warn().
			Int("depth", ex.stack.Size()).
			Msg("some elements were not closed at the end of processing")
	}
	log.Info().
		Int("numElements", ex.elmCounter).
		Int("numErrors", ex.errorCounter).
		Int("nodes", ex.stats.NumRows(db.RelNodes)).
		Int("ways", ex.stats.NumRows(db.RelWays)).
		Int("correctionsApplied", ex.stats.CorrectionsApplied).
		Msg("Finished processing of OSM elements")
}

// Run starts the parsing and data extraction process. The
// caller is responsible for discarding the written rows in
// case an error is returned.
func (ex *OSMExtractor) Run(conf *parser.ParserConf) error {
	log.Info().Str("file", conf.InputFilePath).Msg("Starting to process OSM file")
	if conf.LogProgressEachNth > 0 {
		ex.reportEachNth = conf.LogProgressEachNth
	}
	if err := parser.ParseFile(ex.ctx, conf, ex); err != nil {
		ex.sendStatus(Status{
			Datetime:          time.Now(),
			Error:             err,
			ProcessedElements: ex.elmCounter,
			ProcessedLines:    -1,
		})
		return fmt.Errorf("failed to process OSM file: %w", err)
	}
	ex.Finish()
	return nil
}
