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

package library

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/czcorpus/osm-tagextract/cnf"
	"github.com/czcorpus/osm-tagextract/db"
	"github.com/czcorpus/osm-tagextract/db/factory"
	"github.com/czcorpus/osm-tagextract/fs"
	"github.com/czcorpus/osm-tagextract/parser"
	"github.com/czcorpus/osm-tagextract/proc"
	"github.com/czcorpus/osm-tagextract/validation"
)

func sendErrStatus(statusChan chan proc.Status, file string, err error) {
	statusChan <- proc.Status{
		Datetime: time.Now(),
		File:     file,
		Error:    err,
	}
}

// determineReportingStep
// note: the numbers 0.02, 10 are just rough empirical values to determine
// number of elements based on an average OSM XML file
func determineReportingStep(filePath string) int {
	size := float64(fs.FileSize(filePath)) * 0.02
	if strings.HasSuffix(filePath, ".gz") || strings.HasSuffix(filePath, ".bz2") {
		size *= 10
	}
	step := 1000
	for ; step < 1000000000; step *= 10 {
		if size/float64(step) < 100 {
			break
		}
	}
	return step
}

func loadCorrections(conf *cnf.OTEConf) (*proc.Corrections, error) {
	if conf.CorrectionsFile == "" {
		return proc.DefaultCorrections(), nil
	}
	ans, err := proc.LoadCorrections(conf.CorrectionsFile)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("file", conf.CorrectionsFile).
		Int("numEntries", ans.Size()).
		Msg("Loaded street name corrections")
	return ans, nil
}

func newParserConf(conf *cnf.OTEConf) *parser.ParserConf {
	return &parser.ParserConf{
		InputFilePath:      conf.InputFile,
		QueueSize:          conf.QueueSize,
		LogProgressEachNth: determineReportingStep(conf.InputFile),
	}
}

// WriteStatsFile stores statistics summary as a JSON file
func WriteStatsFile(path string, summary *proc.StatsSummary) error {
	data, err := sonic.ConfigStd.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize statistics: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write statistics file: %w", err)
	}
	return nil
}

// applyCleanup removes tag records listed in the configuration.
// Failures are logged but they do not stop the extraction.
func applyCleanup(writer db.Writer, entries []cnf.CleanupEntry) {
	for _, ce := range entries {
		numRemoved, err := writer.RemoveTagRecords(ce.Relation, ce.ID, ce.Type, ce.Key)
		if err != nil {
			log.Warn().
				Err(err).
				Int64("id", ce.ID).
				Str("relation", string(ce.Relation)).
				Msg("failed to apply cleanup")
			continue
		}
		log.Info().
			Int64("id", ce.ID).
			Str("relation", string(ce.Relation)).
			Str("type", ce.Type).
			Str("key", ce.Key).
			Int("numRemoved", numRemoved).
			Msg("Applied cleanup")
	}
}

// runExtraction processes the input file and forwards
// the extractor's status messages to statusChan.
func runExtraction(
	ctx context.Context,
	conf *cnf.OTEConf,
	sink proc.RowSink,
	corrections *proc.Corrections,
	statusChan chan proc.Status,
) (*proc.Statistics, error) {
	subStatusChan := make(chan proc.Status, 10)
	ex := proc.NewOSMExtractor(ctx, sink, conf, corrections, subStatusChan)
	var eg errgroup.Group
	eg.Go(func() error {
		for upd := range subStatusChan {
			upd.File = conf.InputFile
			statusChan <- upd
		}
		return nil
	})
	eg.Go(func() error {
		defer close(subStatusChan)
		return ex.Run(newParserConf(conf))
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return ex.Stats(), nil
}

func finishStats(conf *cnf.OTEConf, stats *proc.Statistics) *proc.StatsSummary {
	summary := stats.Summary(conf.StatsTopN)
	if conf.StatsFile != "" {
		if err := WriteStatsFile(conf.StatsFile, summary); err != nil {
			log.Error().Err(err).Msg("failed to save statistics")

		} else {
			log.Info().Str("file", conf.StatsFile).Msg("Saved statistics")
		}
	}
	return summary
}

// ExtractData decomposes an OSM XML file into the normalized relations
// and stores them via a writer specified in the 'conf' argument.
// The returned status channel is for getting extraction status information
// including possible errors. The last message of a successful extraction
// contains statistics summary.
func ExtractData(ctx context.Context, conf *cnf.OTEConf, appendData bool) (chan proc.Status, error) {

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("ExtractData failed: %w", err)
	}
	if !fs.IsFile(conf.InputFile) {
		return nil, fmt.Errorf("ExtractData failed - input file %s not found", conf.InputFile)
	}
	corrections, err := loadCorrections(conf)
	if err != nil {
		return nil, fmt.Errorf("ExtractData failed: %w", err)
	}
	dbWriter, err := factory.NewDatabaseWriter(conf)
	if err != nil {
		return nil, fmt.Errorf("ExtractData failed: %w", err)
	}
	if !dbWriter.DatabaseExists() && appendData {
		dbWriter.Close()
		return nil, fmt.Errorf("append flag is set but the database %s does not exist", conf.DB.Name)
	}

	statusChan := make(chan proc.Status)
	go func() {
		defer close(statusChan)
		defer dbWriter.Close()

		if err := dbWriter.Initialize(appendData); err != nil {
			sendErrStatus(statusChan, "", err)
			return
		}
		sink, err := db.NewRelationSink(dbWriter)
		if err != nil {
			dbWriter.Rollback()
			sendErrStatus(statusChan, "", err)
			return
		}
		stats, err := runExtraction(ctx, conf, sink, corrections, statusChan)
		if err != nil {
			log.Error().Err(err).Msg("extraction failed, rolling back")
			if err2 := dbWriter.Rollback(); err2 != nil {
				log.Error().Err(err2).Msg("failed to rollback")
			}
			sendErrStatus(statusChan, conf.InputFile, err)
			return
		}
		applyCleanup(dbWriter, conf.Cleanup)
		if err := dbWriter.Commit(); err != nil {
			sendErrStatus(statusChan, "", err)
			return
		}
		statusChan <- proc.Status{
			Datetime:          time.Now(),
			File:              conf.InputFile,
			ProcessedElements: stats.NumOpenEvents(),
			Stats:             finishStats(conf, stats),
		}
	}()

	return statusChan, nil
}

// CollectStats processes the input file without storing
// any data and returns collected statistics.
func CollectStats(ctx context.Context, conf *cnf.OTEConf) (*proc.Statistics, error) {
	if !fs.IsFile(conf.InputFile) {
		return nil, fmt.Errorf("CollectStats failed - input file %s not found", conf.InputFile)
	}
	corrections, err := loadCorrections(conf)
	if err != nil {
		return nil, fmt.Errorf("CollectStats failed: %w", err)
	}
	statusChan := make(chan proc.Status)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for upd := range statusChan {
			if upd.Error != nil {
				continue
			}
			log.Debug().Int("processedElements", upd.ProcessedElements).Msg("progress")
		}
	}()
	stats, err := runExtraction(ctx, conf, proc.NullSink{}, corrections, statusChan)
	close(statusChan)
	<-done
	if err != nil {
		return nil, err
	}
	finishStats(conf, stats)
	return stats, nil
}

// ValidateFile checks the structure of the configured input file
// without storing any data. At most conf.MaxNumErrors problems
// are kept in the returned report.
func ValidateFile(ctx context.Context, conf *cnf.OTEConf, strict bool) (*validation.Report, error) {
	if !fs.IsFile(conf.InputFile) {
		return nil, fmt.Errorf("ValidateFile failed - input file %s not found", conf.InputFile)
	}
	vv := validation.NewOSMValidator(ctx, strict, conf.MaxNumErrors)
	return vv.Run(newParserConf(conf))
}
