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
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/db"
)

const (
	DfltMaxNumErrors = 100
	DfltStatsTopN    = 50
	DfltQueueSize    = 1000

	EnvDBHost     = "OTE_DB_HOST"
	EnvDBUser     = "OTE_DB_USER"
	EnvDBPassword = "OTE_DB_PASSWORD"
)

// CleanupEntry specifies tag records known to be invalid which
// are removed once all the data are loaded (but before commit).
type CleanupEntry struct {
	Relation db.Relation `json:"relation"`
	ID       int64       `json:"id"`
	Type     string      `json:"type"`
	Key      string      `json:"key"`
}

func (ce CleanupEntry) Validate() error {
	if !ce.Relation.IsTagRelation() {
		return fmt.Errorf("cleanup entry for %d: '%s' is not a tag relation", ce.ID, ce.Relation)
	}
	if ce.Key == "" || ce.Type == "" {
		return fmt.Errorf("cleanup entry for %d: both type and key must be specified", ce.ID)
	}
	return nil
}

// OTEConf holds configuration for a concrete
// data extraction task.
type OTEConf struct {
	Name string `json:"name"`

	// InputFile is a path to an OSM XML file. Files with
	// .gz and .bz2 suffixes are decompressed on the fly.
	InputFile string `json:"inputFile"`

	DB db.Conf `json:"db"`

	// CorrectionsFile is an optional YAML file with street name
	// corrections. If omitted, the built-in table is used.
	CorrectionsFile string `json:"correctionsFile,omitempty"`

	// MaxNumErrors if reached then the process stops
	MaxNumErrors int `json:"maxNumErrors"`

	StatsTopN int    `json:"statsTopN"`
	StatsFile string `json:"statsFile,omitempty"`

	// QueueSize is a capacity of the channel between the XML
	// decoder and the element processor.
	QueueSize int `json:"queueSize"`

	Cleanup []CleanupEntry `json:"cleanup,omitempty"`

	// EnvFile is an optional dotenv file. Database host and
	// credentials found there override the values above.
	EnvFile string `json:"envFile,omitempty"`

	LogLevel string `json:"logLevel,omitempty"`
}

func (c *OTEConf) Validate() error {
	if c.InputFile == "" {
		return fmt.Errorf("missing inputFile")
	}
	if err := c.DB.Validate(); err != nil {
		return fmt.Errorf("invalid db configuration: %w", err)
	}
	if c.MaxNumErrors < 0 {
		return fmt.Errorf("maxNumErrors must be a non-negative number")
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queueSize must be a non-negative number")
	}
	for _, ce := range c.Cleanup {
		if err := ce.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnvFile loads the configured dotenv file (if any)
// and overrides database host and credentials with the
// values found there. Existing process environment takes
// precedence over the file.
func (c *OTEConf) ApplyEnvFile() error {
	if c.EnvFile == "" {
		return nil
	}
	if err := godotenv.Load(c.EnvFile); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", c.EnvFile, err)
	}
	if v := os.Getenv(EnvDBHost); v != "" {
		c.DB.Host = v
	}
	if v := os.Getenv(EnvDBUser); v != "" {
		c.DB.User = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		c.DB.Password = v
	}
	log.Info().Str("envFile", c.EnvFile).Msg("Applied environment file")
	return nil
}

func (c *OTEConf) applyDefaults() {
	if c.MaxNumErrors == 0 {
		c.MaxNumErrors = DfltMaxNumErrors
	}
	if c.StatsTopN == 0 {
		c.StatsTopN = DfltStatsTopN
	}
	if c.QueueSize == 0 {
		c.QueueSize = DfltQueueSize
	}
}

func LoadConf(confPath string) (*OTEConf, error) {
	rawData, err := os.ReadFile(confPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	var conf OTEConf
	if err := sonic.Unmarshal(rawData, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", confPath, err)
	}
	conf.applyDefaults()
	if err := conf.ApplyEnvFile(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// Template creates an example configuration which can be
// used as a starting point for a new extraction task.
func Template() *OTEConf {
	return &OTEConf{
		Name:      "lyon",
		InputFile: "/path/to/lyon.osm.bz2",
		DB: db.Conf{
			Type: db.DBTypeSQLite,
			Name: "/path/to/lyon.db",
			PreconfQueries: []string{
				"PRAGMA synchronous = OFF",
				"PRAGMA journal_mode = MEMORY",
			},
		},
		MaxNumErrors: DfltMaxNumErrors,
		StatsTopN:    DfltStatsTopN,
		StatsFile:    "/path/to/lyon-stats.json",
		QueueSize:    DfltQueueSize,
		Cleanup: []CleanupEntry{
			{Relation: db.RelWayTags, ID: 44895025, Type: "addr", Key: "street"},
		},
		LogLevel: "info",
	}
}

// DumpTemplate serializes a configuration template
func DumpTemplate() ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(Template(), "", "  ")
}
