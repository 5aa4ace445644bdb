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

package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFileAndIsDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.osm")
	assert.NoError(t, os.WriteFile(path, []byte("<osm/>"), 0644))
	assert.True(t, IsFile(path))
	assert.False(t, IsDir(path))
	assert.True(t, IsDir(dir))
	assert.False(t, IsFile(dir))
	assert.False(t, IsFile(filepath.Join(dir, "missing")))
	assert.False(t, IsDir(filepath.Join(dir, "missing")))
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.osm")
	assert.NoError(t, os.WriteFile(path, []byte("<osm/>"), 0644))
	assert.Equal(t, int64(6), FileSize(path))
	assert.Equal(t, int64(-1), FileSize(dir))
	assert.Equal(t, int64(-1), FileSize(filepath.Join(dir, "missing")))
}
