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

package cnf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/czcorpus/osm-tagextract/db"
	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConf(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "conf.json", `{
		"name": "lyon",
		"inputFile": "lyon.osm",
		"db": {"type": "sqlite", "name": "lyon.db", "tablePrefix": "ly"},
		"maxNumErrors": 5,
		"cleanup": [{"relation": "way_tags", "id": 44895025, "type": "addr", "key": "street"}]
	}`)
	conf, err := LoadConf(path)
	assert.NoError(t, err)
	assert.Equal(t, "lyon", conf.Name)
	assert.Equal(t, "ly", conf.DB.TablePrefix)
	assert.Equal(t, 5, conf.MaxNumErrors)
	assert.Equal(t, DfltStatsTopN, conf.StatsTopN)
	assert.Equal(t, DfltQueueSize, conf.QueueSize)
	assert.Equal(t, []CleanupEntry{{Relation: db.RelWayTags, ID: 44895025, Type: "addr", Key: "street"}}, conf.Cleanup)
	assert.NoError(t, conf.Validate())
}

func TestLoadConfInvalidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "conf.json", `{"name": `)
	_, err := LoadConf(path)
	assert.Error(t, err)
}

func TestLoadConfMissingFile(t *testing.T) {
	_, err := LoadConf(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	conf := Template()
	assert.NoError(t, conf.Validate())

	conf.InputFile = ""
	assert.Error(t, conf.Validate())

	conf = Template()
	conf.DB.Type = "oracle"
	assert.Error(t, conf.Validate())

	conf = Template()
	conf.Cleanup = append(conf.Cleanup, CleanupEntry{Relation: db.RelWays, ID: 1, Type: "addr", Key: "street"})
	assert.Error(t, conf.Validate())

	conf = Template()
	conf.DB = db.Conf{Type: db.DBTypePostgres, Name: "osm"}
	assert.Error(t, conf.Validate())
}

func TestApplyEnvFile(t *testing.T) {
	t.Setenv(EnvDBHost, "")
	t.Setenv(EnvDBUser, "")
	t.Setenv(EnvDBPassword, "")
	os.Unsetenv(EnvDBHost)
	os.Unsetenv(EnvDBUser)
	os.Unsetenv(EnvDBPassword)
	envPath := writeFile(
		t, t.TempDir(), ".env",
		"OTE_DB_HOST=db.example.org:5432\nOTE_DB_USER=osm\nOTE_DB_PASSWORD=secret\n")
	conf := &OTEConf{
		DB:      db.Conf{Type: db.DBTypePostgres, Name: "osm", Host: "localhost", User: "nobody"},
		EnvFile: envPath,
	}
	assert.NoError(t, conf.ApplyEnvFile())
	assert.Equal(t, "db.example.org:5432", conf.DB.Host)
	assert.Equal(t, "osm", conf.DB.User)
	assert.Equal(t, "secret", conf.DB.Password)
}

func TestApplyEnvFileMissing(t *testing.T) {
	conf := &OTEConf{EnvFile: filepath.Join(t.TempDir(), "missing.env")}
	assert.Error(t, conf.ApplyEnvFile())
}

func TestDumpTemplate(t *testing.T) {
	data, err := DumpTemplate()
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"inputFile": "/path/to/lyon.osm.bz2"`)
	assert.Contains(t, string(data), `"preconfSettings"`)
}
