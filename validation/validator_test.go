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
	"strings"
	"testing"

	"github.com/czcorpus/osm-tagextract/parser"
	"github.com/stretchr/testify/assert"
)

func validate(t *testing.T, doc string, strict bool) *Report {
	vv := NewOSMValidator(context.Background(), strict, 10)
	err := parser.ParseReader(context.Background(), strings.NewReader(doc), &parser.ParserConf{}, vv)
	assert.NoError(t, err)
	return vv.Report()
}

func TestValidDocument(t *testing.T) {
	report := validate(t, `<osm>
		<node id="1"><tag k="a" v="b"/></node>
		<node id="2"/>
		<way id="3"><nd ref="1"/><nd ref="2"/><tag k="highway" v="primary"/></way>
		<relation id="4"><member type="way" ref="3"/><tag k="type" v="route"/></relation>
	</osm>`, true)
	assert.True(t, report.IsValid())
	assert.Equal(t, 2, report.NumNodes)
	assert.Equal(t, 1, report.NumWays)
	assert.Equal(t, 0, report.NumUnknownNodeRefs)
}

func TestUnknownNodeRef(t *testing.T) {
	doc := `<osm><way id="3"><nd ref="99"/></way></osm>`
	report := validate(t, doc, false)
	assert.True(t, report.IsValid())
	assert.Equal(t, 1, report.NumUnknownNodeRefs)

	report = validate(t, doc, true)
	assert.False(t, report.IsValid())
	assert.Equal(t, "reference to unknown node 99", report.Problems[0].Message)
}

func TestInvalidShape(t *testing.T) {
	report := validate(t, `<osm>
		<node id="x"><nd ref="1"/></node>
		<way id="2"><node id="5"/></way>
		<tag k="a"/>
	</osm>`, false)
	assert.False(t, report.IsValid())
	msgs := make([]string, len(report.Problems))
	for i, p := range report.Problems {
		msgs[i] = p.Message
	}
	assert.Contains(t, msgs, "element node has invalid id 'x'")
	assert.Contains(t, msgs, "nd element inside unexpected element 'node'")
	assert.Contains(t, msgs, "node must be a top-level element")
	assert.Contains(t, msgs, "tag element inside unexpected element 'osm'")
	assert.Contains(t, msgs, "tag element without v attribute")
}

func TestMaxProblemsStored(t *testing.T) {
	var b strings.Builder
	b.WriteString("<osm>")
	for i := 0; i < 20; i++ {
		b.WriteString(`<node/>`)
	}
	b.WriteString("</osm>")
	report := validate(t, b.String(), false)
	assert.Equal(t, 20, report.NumProblems)
	assert.Len(t, report.Problems, 10)
}

func TestClosingMismatch(t *testing.T) {
	vv := NewOSMValidator(context.Background(), false, 10)
	assert.NoError(t, vv.ProcElement(&parser.Element{Name: "osm", Attrs: map[string]string{}}, 1))
	assert.NoError(t, vv.ProcElementClose(&parser.ElementClose{Name: "way"}, 2))
	assert.NoError(t, vv.ProcElementClose(&parser.ElementClose{Name: "osm"}, 3))
	assert.Equal(t, 2, vv.Report().NumProblems)
}

func TestRun(t *testing.T) {
	vv := NewOSMValidator(context.Background(), true, 10)
	report, err := vv.Run(&parser.ParserConf{InputFilePath: "../parser/testdata/small.osm.bz2"})
	assert.NoError(t, err)
	assert.True(t, report.IsValid())
	assert.Equal(t, 8, report.NumElements)
}
