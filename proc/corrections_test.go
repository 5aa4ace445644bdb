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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyStreetCorrection(t *testing.T) {
	c := DefaultCorrections()
	v, ok := c.Apply("addr:street", "Rue moliere")
	assert.True(t, ok)
	assert.Equal(t, "Rue Molière", v)
}

func TestApplyOtherKey(t *testing.T) {
	c := DefaultCorrections()
	v, ok := c.Apply("name", "Rue moliere")
	assert.False(t, ok)
	assert.Equal(t, "Rue moliere", v)
}

func TestApplyExactMatchOnly(t *testing.T) {
	c := DefaultCorrections()
	for _, s := range []string{"rue moliere", "Rue moliere ", " Rue moliere", "RUE MOLIERE"} {
		v, ok := c.Apply("addr:street", s)
		assert.False(t, ok)
		assert.Equal(t, s, v)
	}
}

func TestDefaultCorrectionsIdempotent(t *testing.T) {
	c := DefaultCorrections()
	assert.Equal(t, 47, c.Size())
	for orig := range lyonStreets {
		once, ok := c.Apply(StreetKey, orig)
		assert.True(t, ok)
		twice, ok := c.Apply(StreetKey, once)
		assert.False(t, ok)
		assert.Equal(t, once, twice)
	}
}

func TestNewCorrectionsRejectsChains(t *testing.T) {
	_, err := NewCorrections(map[string]string{"a": "b", "b": "c"})
	assert.Error(t, err)
}

func TestNilCorrections(t *testing.T) {
	var c *Corrections
	v, ok := c.Apply(StreetKey, "Rue moliere")
	assert.False(t, ok)
	assert.Equal(t, "Rue moliere", v)
}

func TestLoadCorrections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streets.yaml")
	data := "\"rue de la paix\": \"Rue de la Paix\"\n\"37\": \"Grande Rue de Vaise\"\n"
	assert.NoError(t, os.WriteFile(path, []byte(data), 0644))
	c, err := LoadCorrections(path)
	assert.NoError(t, err)
	assert.Equal(t, 2, c.Size())
	v, ok := c.Apply(StreetKey, "37")
	assert.True(t, ok)
	assert.Equal(t, "Grande Rue de Vaise", v)
}

func TestLoadCorrectionsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streets.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("- a\n- b\n"), 0644))
	_, err := LoadCorrections(path)
	assert.Error(t, err)

	_, err = LoadCorrections(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
