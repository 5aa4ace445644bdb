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

// Package csvfile implements a writer producing one CSV file
// per relation (with a header row). In append mode, rows are
// appended to existing files and a rollback truncates the files
// back to their original size.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/czcorpus/osm-tagextract/db"
	"github.com/czcorpus/osm-tagextract/fs"
)

type relationFile struct {
	path     string
	file     *os.File
	writer   *csv.Writer
	origSize int64
	created  bool
}

func (rf *relationFile) close() error {
	if rf.file == nil {
		return nil
	}
	rf.writer.Flush()
	err := rf.writer.Error()
	if err2 := rf.file.Close(); err == nil {
		err = err2
	}
	rf.file = nil
	return err
}

// Insert writes rows of a single relation
type Insert struct {
	rf     *relationFile
	record []string
}

func (ins *Insert) Exec(values ...any) error {
	if ins.rf.file == nil {
		return fmt.Errorf("cannot write to %s - file already closed", ins.rf.path)
	}
	if len(values) != len(ins.record) {
		return fmt.Errorf(
			"invalid number of values for %s: expected %d, got %d",
			ins.rf.path, len(ins.record), len(values))
	}
	for i, v := range values {
		s, err := db.FormatValue(v)
		if err != nil {
			return err
		}
		ins.record[i] = s
	}
	return ins.rf.writer.Write(ins.record)
}

type Writer struct {
	Dir         string
	TablePrefix string
	appendMode  bool
	files       map[db.Relation]*relationFile
}

func (w *Writer) path(rel db.Relation) string {
	return filepath.Join(w.Dir, db.TableName(w.TablePrefix, rel)+".csv")
}

func (w *Writer) DatabaseExists() bool {
	return fs.IsFile(w.path(db.RelNodes))
}

func (w *Writer) Initialize(appendMode bool) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return fmt.Errorf("failed to initialize csv output: %w", err)
	}
	w.appendMode = appendMode
	w.files = make(map[db.Relation]*relationFile)
	log.Info().Str("directory", w.Dir).Bool("append", appendMode).Msg("Initialized csv output")
	return nil
}

func (w *Writer) openFile(rel db.Relation, attrs []string) (*relationFile, error) {
	rf := &relationFile{path: w.path(rel), origSize: fs.FileSize(w.path(rel))}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if w.appendMode && rf.origSize > 0 {
		flags = os.O_WRONLY | os.O_APPEND

	} else {
		rf.created = true
		if rf.origSize > 0 {
			log.Warn().Str("file", rf.path).Msg("The file already exists. Existing data will be deleted.")
		}
	}
	var err error
	rf.file, err = os.OpenFile(rf.path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", rf.path, err)
	}
	rf.writer = csv.NewWriter(rf.file)
	if rf.created {
		if err := rf.writer.Write(attrs); err != nil {
			rf.file.Close()
			return nil, fmt.Errorf("failed to write header of %s: %w", rf.path, err)
		}
	}
	return rf, nil
}

func (w *Writer) PrepareInsert(table db.Relation, attrs []string) (db.InsertOperation, error) {
	if w.files == nil {
		return nil, fmt.Errorf("cannot prepare insert into %s - writer not initialized", table)
	}
	if _, ok := w.files[table]; ok {
		return nil, fmt.Errorf("insert into %s already prepared", table)
	}
	rf, err := w.openFile(table, attrs)
	if err != nil {
		return nil, err
	}
	w.files[table] = rf
	return &Insert{rf: rf, record: make([]string, len(attrs))}, nil
}

func (w *Writer) RemoveTagRecords(rel db.Relation, ownerID int64, tagType, key string) (int, error) {
	return 0, fmt.Errorf("removing records is not supported by the csv writer")
}

func (w *Writer) Commit() error {
	var firstErr error
	for rel, rf := range w.files {
		if err := rf.close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to commit %s: %w", rel, err)
		}
	}
	return firstErr
}

// Rollback removes files created by the writer and restores
// appended files to their original size.
func (w *Writer) Rollback() error {
	var firstErr error
	setErr := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, rf := range w.files {
		setErr(rf.close())
		if rf.created {
			setErr(os.Remove(rf.path))

		} else {
			setErr(os.Truncate(rf.path, rf.origSize))
		}
	}
	w.files = make(map[db.Relation]*relationFile)
	return firstErr
}

func (w *Writer) Close() {
	for rel, rf := range w.files {
		if err := rf.close(); err != nil {
			log.Warn().Err(err).Str("relation", string(rel)).Msg("error closing csv file")
		}
	}
}

func NewWriter(conf *db.Conf) *Writer {
	return &Writer{
		Dir:         conf.Name,
		TablePrefix: conf.TablePrefix,
	}
}
