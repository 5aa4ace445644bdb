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

package ptcount

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddAndCount(t *testing.T) {
	fd := NewFreqDict()
	assert.Equal(t, 1, fd.Add("node"))
	assert.Equal(t, 2, fd.Add("node"))
	fd.Add("way")
	assert.Equal(t, 2, fd.Count("node"))
	assert.Equal(t, 1, fd.Count("way"))
	assert.Equal(t, 0, fd.Count("relation"))
	assert.Equal(t, 2, fd.Size())
	assert.Equal(t, 3, fd.Total())
}

func TestKeysSorted(t *testing.T) {
	fd := NewFreqDict()
	fd.Add("way")
	fd.Add("nd")
	fd.Add("tag")
	fd.Add("nd")
	assert.Equal(t, []string{"nd", "tag", "way"}, fd.Keys())
}

func TestTopN(t *testing.T) {
	fd := NewFreqDict()
	for _, v := range []string{"name", "highway", "name", "addr:street", "highway", "name", "amenity"} {
		fd.Add(v)
	}
	assert.Equal(
		t,
		[]FreqItem{{Value: "name", Count: 3}, {Value: "highway", Count: 2}},
		fd.TopN(2),
	)
	all := fd.TopN(0)
	assert.Len(t, all, 4)
	// ties sorted lexicographically
	assert.Equal(t, "addr:street", all[2].Value)
	assert.Equal(t, "amenity", all[3].Value)
	assert.Len(t, fd.TopN(100), 4)
}

func TestEmptyDict(t *testing.T) {
	fd := NewFreqDict()
	assert.Empty(t, fd.Keys())
	assert.Empty(t, fd.TopN(10))
	assert.Equal(t, 0, fd.Size())
}
