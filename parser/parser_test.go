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

package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingProcessor struct {
	events []string
	lines  []int
	attrs  []map[string]string
	failOn string
}

func (rp *recordingProcessor) ProcElement(elm *Element, line int) error {
	if elm.Name == rp.failOn {
		return fmt.Errorf("failed on %s", elm.Name)
	}
	rp.events = append(rp.events, elm.Name)
	rp.lines = append(rp.lines, line)
	rp.attrs = append(rp.attrs, elm.Attrs)
	return nil
}

func (rp *recordingProcessor) ProcElementClose(elm *ElementClose, line int) error {
	rp.events = append(rp.events, "/"+elm.Name)
	return nil
}

var expectedEvents = []string{
	"osm", "node", "tag", "/tag", "/node", "node", "/node",
	"way", "nd", "/nd", "nd", "/nd", "tag", "/tag", "/way", "/osm",
}

func TestParseFile(t *testing.T) {
	for _, path := range []string{"testdata/small.osm", "testdata/small.osm.gz", "testdata/small.osm.bz2"} {
		rp := &recordingProcessor{}
		err := ParseFile(context.Background(), &ParserConf{InputFilePath: path, QueueSize: 2}, rp)
		assert.NoError(t, err, path)
		assert.Equal(t, expectedEvents, rp.events, path)
	}
}

func TestParseReaderAttrsAndLines(t *testing.T) {
	rp := &recordingProcessor{}
	err := ParseFile(context.Background(), &ParserConf{InputFilePath: "testdata/small.osm"}, rp)
	assert.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 6, 7, 8, 9, 10}, rp.lines)
	assert.Equal(t, "45.76", rp.attrs[1]["lat"])
	assert.Equal(t, "alice", rp.attrs[1]["user"])
	assert.Equal(t, map[string]string{"k": "addr:street", "v": "Rue Paul Bert"}, rp.attrs[2])
	assert.Equal(t, map[string]string{"ref": "2"}, rp.attrs[6])
}

func TestParseReaderProcessorError(t *testing.T) {
	rp := &recordingProcessor{failOn: "way"}
	err := ParseFile(context.Background(), &ParserConf{InputFilePath: "testdata/small.osm", QueueSize: 1}, rp)
	assert.EqualError(t, err, "failed on way")
	assert.NotContains(t, rp.events, "nd")
}

func TestParseReaderSyntaxError(t *testing.T) {
	rp := &recordingProcessor{}
	err := ParseReader(
		context.Background(),
		strings.NewReader(`<osm><node id="1"></way></osm>`),
		&ParserConf{},
		rp,
	)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse XML")
}

func TestParseReaderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rp := &recordingProcessor{}
	err := ParseReader(ctx, strings.NewReader(`<osm><node id="1"/></osm>`), &ParserConf{QueueSize: 1}, rp)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseFileMissing(t *testing.T) {
	err := ParseFile(context.Background(), &ParserConf{InputFilePath: "testdata/missing.osm"}, &recordingProcessor{})
	assert.Error(t, err)
}
