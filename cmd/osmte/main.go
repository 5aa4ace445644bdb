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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/cnf"
	"github.com/czcorpus/osm-tagextract/library"
	"github.com/czcorpus/osm-tagextract/proc"
)

var (
	version   string
	buildDate string
	gitCommit string
)

func setupLog(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if level == "" {
		return
	}
	lev, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("invalid log level, using info")
		lev = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lev)
}

func loadConf(confPath, inputFile, logLevel string) *cnf.OTEConf {
	conf, err := cnf.LoadConf(confPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if logLevel != "" {
		conf.LogLevel = logLevel
	}
	setupLog(conf.LogLevel)
	if inputFile != "" {
		conf.InputFile = inputFile
	}
	return conf
}

func dumpNewConf() {
	b, err := cnf.DumpTemplate()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to dump a new config")
	}
	fmt.Print(string(b))
	fmt.Println()
}

func exportData(ctx context.Context, conf *cnf.OTEConf, appendData bool, printReport bool) {
	t0 := time.Now()
	statusChan, err := library.ExtractData(ctx, conf, appendData)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start data extraction")
	}
	var numErrors int
	var summary *proc.StatsSummary
	for upd := range statusChan {
		if upd.Error != nil {
			numErrors++
			log.Error().Err(upd.Error).Str("file", upd.File).Msg("extraction error")
			continue
		}
		if upd.Stats != nil {
			summary = upd.Stats
			log.Info().
				Int("numElements", upd.ProcessedElements).
				Int("nodes", upd.Stats.Rows["nodes"]).
				Int("ways", upd.Stats.Rows["ways"]).
				Int("uniqueUsers", upd.Stats.NumUniqueUsers).
				Msg("Extraction finished")
			continue
		}
		log.Info().
			Int("processedElements", upd.ProcessedElements).
			Int("line", upd.ProcessedLines).
			Msg("Processing")
	}
	if ctx.Err() != nil {
		log.Fatal().Msg("Extraction interrupted, no data stored")
	}
	log.Info().
		Str("elapsedTime", time.Since(t0).String()).
		Int("numErrors", numErrors).
		Msg("Done")
	if printReport && summary != nil {
		if err := summary.WriteReport(os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("Failed to write report")
		}
	}
}

func printStats(ctx context.Context, conf *cnf.OTEConf, topN int) {
	if topN != 0 {
		conf.StatsTopN = topN
	}
	t0 := time.Now()
	stats, err := library.CollectStats(ctx, conf)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to collect statistics")
	}
	if err := stats.WriteReport(os.Stdout, conf.StatsTopN); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}
	log.Info().Str("elapsedTime", time.Since(t0).String()).Msg("Done")
}

func validateFile(ctx context.Context, conf *cnf.OTEConf, strict bool) {
	report, err := library.ValidateFile(ctx, conf, strict)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to validate input file")
	}
	for _, p := range report.Problems {
		fmt.Printf("line %d: %s\n", p.Line, p.Message)
	}
	if report.NumProblems > len(report.Problems) {
		fmt.Printf("... and %d more problems\n", report.NumProblems-len(report.Problems))
	}
	fmt.Printf("elements: %d, nodes: %d, ways: %d, unknown node refs: %d, problems: %d\n",
		report.NumElements, report.NumNodes, report.NumWays, report.NumUnknownNodeRefs, report.NumProblems)
	if !report.IsValid() {
		os.Exit(2)
	}
}

func main() {
	flag.Usage = func() {
		fmt.Println("\n+---------------------------------------------------------------+")
		fmt.Println("| OSM-tagextract (osmte) - a program for decomposing            |")
		fmt.Println("|    OpenStreetMap XML files into relational tables             |")
		fmt.Printf("|    version %-51s|\n", version)
		fmt.Println("|          (c) Institute of the Czech National Corpus           |")
		fmt.Println("+---------------------------------------------------------------+")
		fmt.Println("\nUsage:")
		fmt.Println("osmte create config.json\n\t(run an export configured in config.json, add data to a new database)")
		fmt.Println("osmte append config.json\n\t(run an export configured in config.json, add data to an existing database)")
		fmt.Println("osmte stats config.json\n\t(process the input file and print statistics, no data is stored)")
		fmt.Println("osmte validate config.json\n\t(check the structure of the input file, no data is stored)")
		fmt.Println("osmte template\n\t(create a half empty sample config and write it to stdout)")
		fmt.Println("osmte version\n\t(show version information)")

		fmt.Println("\nOptions:")
		flag.PrintDefaults()
	}

	createCommand := flag.NewFlagSet("create", flag.ExitOnError)
	createCommand.Usage = func() {
		fmt.Println("Usage: osmte create [options] conf.json")
		createCommand.PrintDefaults()
	}
	createInput := createCommand.String("input", "", "override input OSM file")
	createLogLevel := createCommand.String("log-level", "", "log level (debug, info, warn, error)")
	createReport := createCommand.Bool("report", false, "print a statistics report once finished")

	appendCommand := flag.NewFlagSet("append", flag.ExitOnError)
	appendCommand.Usage = func() {
		fmt.Println("Usage: osmte append [options] conf.json")
		appendCommand.PrintDefaults()
	}
	appendInput := appendCommand.String("input", "", "override input OSM file")
	appendLogLevel := appendCommand.String("log-level", "", "log level (debug, info, warn, error)")

	statsCommand := flag.NewFlagSet("stats", flag.ExitOnError)
	statsCommand.Usage = func() {
		fmt.Println("Usage: osmte stats [options] conf.json")
		statsCommand.PrintDefaults()
	}
	statsInput := statsCommand.String("input", "", "override input OSM file")
	statsLogLevel := statsCommand.String("log-level", "", "log level (debug, info, warn, error)")
	statsTopN := statsCommand.Int("top", 0, "number of most frequent tag keys to show (-1 for all)")

	validateCommand := flag.NewFlagSet("validate", flag.ExitOnError)
	validateCommand.Usage = func() {
		fmt.Println("Usage: osmte validate [options] conf.json")
		validateCommand.PrintDefaults()
	}
	validateInput := validateCommand.String("input", "", "override input OSM file")
	validateLogLevel := validateCommand.String("log-level", "", "log level (debug, info, warn, error)")
	validateStrict := validateCommand.Bool("strict", false, "report references to nodes missing in the file")

	templateCommand := flag.NewFlagSet("template", flag.ExitOnError)
	templateCommand.Usage = func() {
		fmt.Println("Usage: osmte template [> conf.json]")
	}
	flag.Parse()

	setupLog("")
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch flag.Arg(0) {
	case "create":
		createCommand.Parse(flag.Args()[1:])
		conf := loadConf(createCommand.Arg(0), *createInput, *createLogLevel)
		exportData(ctx, conf, false, *createReport)
	case "append":
		appendCommand.Parse(flag.Args()[1:])
		conf := loadConf(appendCommand.Arg(0), *appendInput, *appendLogLevel)
		exportData(ctx, conf, true, false)
	case "stats":
		statsCommand.Parse(flag.Args()[1:])
		conf := loadConf(statsCommand.Arg(0), *statsInput, *statsLogLevel)
		printStats(ctx, conf, *statsTopN)
	case "validate":
		validateCommand.Parse(flag.Args()[1:])
		conf := loadConf(validateCommand.Arg(0), *validateInput, *validateLogLevel)
		validateFile(ctx, conf, *validateStrict)
	case "template":
		templateCommand.Parse(flag.Args()[1:])
		dumpNewConf()
	case "version":
		fmt.Printf("osmte %s\nbuild date: %s\nlast commit: %s\n", version, buildDate, gitCommit)
	default:
		log.Fatal().Msgf("Unknown command '%s'", flag.Arg(0))
	}
}
