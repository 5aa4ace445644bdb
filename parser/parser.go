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
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DfltQueueSize = 1000
	readBufSize   = 1 << 20
)

// ParserConf configures a single pass over an OSM XML file.
type ParserConf struct {
	InputFilePath string

	// QueueSize is a capacity of the channel between
	// the XML decoder and the element processor.
	QueueSize int

	// LogProgressEachNth specifies how often (in number of
	// opening elements) the parser logs its progress.
	// Zero disables the logging.
	LogProgressEachNth int
}

// Element is an opening XML element with its attributes.
// The Attrs map is created for each element so a processor
// may keep it.
type Element struct {
	Name  string
	Attrs map[string]string
}

// ElementClose is a closing XML element.
type ElementClose struct {
	Name string
}

// ElementProcessor receives parsed elements in document order.
// Any error returned from a processor stops the parsing.
type ElementProcessor interface {
	ProcElement(elm *Element, line int) error
	ProcElementClose(elm *ElementClose, line int) error
}

type event struct {
	open  *Element
	close *ElementClose
	line  int
}

func newElement(tok xml.StartElement) *Element {
	attrs := make(map[string]string, len(tok.Attr))
	for _, attr := range tok.Attr {
		attrs[attr.Name.Local] = attr.Value
	}
	return &Element{Name: tok.Name.Local, Attrs: attrs}
}

// decode reads XML tokens and sends element events to the events
// channel. The channel is closed once the input is exhausted.
func decode(ctx context.Context, reader io.Reader, events chan<- event, logEachNth int) error {
	defer close(events)
	decoder := xml.NewDecoder(reader)
	var numOpen int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		token, err := decoder.Token()
		if err == io.EOF {
			return nil

		} else if err != nil {
			line, _ := decoder.InputPos()
			return fmt.Errorf("failed to parse XML near line %d: %w", line, err)
		}
		var evt event
		switch tok := token.(type) {
		case xml.StartElement:
			evt.open = newElement(tok)
			numOpen++
			if logEachNth > 0 && numOpen%logEachNth == 0 {
				log.Info().Int("numElements", numOpen).Msg("XML parsing progress")
			}
		case xml.EndElement:
			evt.close = &ElementClose{Name: tok.Name.Local}
		default:
			continue
		}
		evt.line, _ = decoder.InputPos()
		select {
		case events <- evt:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// dispatch passes events to the processor
func dispatch(events <-chan event, lproc ElementProcessor) error {
	for evt := range events {
		var err error
		if evt.open != nil {
			err = lproc.ProcElement(evt.open, evt.line)

		} else {
			err = lproc.ProcElementClose(evt.close, evt.line)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ParseReader parses an OSM XML stream and passes the elements
// to the processor. Decoding and processing run in separate
// goroutines connected by a bounded queue. Element order is
// preserved.
func ParseReader(ctx context.Context, reader io.Reader, conf *ParserConf, lproc ElementProcessor) error {
	queueSize := conf.QueueSize
	if queueSize <= 0 {
		queueSize = DfltQueueSize
	}
	events := make(chan event, queueSize)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return decode(egCtx, reader, events, conf.LogProgressEachNth)
	})
	eg.Go(func() error {
		return dispatch(events, lproc)
	})
	return eg.Wait()
}

// openInput opens a (possibly compressed) input file. The returned
// function closes all the underlying resources.
func openInput(path string) (io.Reader, func() error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	buffered := bufio.NewReaderSize(file, readBufSize)
	switch {
	case strings.HasSuffix(path, ".gz"):
		gzReader, err := gzip.NewReader(buffered)
		if err != nil {
			file.Close()
			return nil, nil, err
		}
		return gzReader, func() error {
			return errors.Join(gzReader.Close(), file.Close())
		}, nil
	case strings.HasSuffix(path, ".bz2"):
		return bzip2.NewReader(buffered), file.Close, nil
	default:
		return buffered, file.Close, nil
	}
}

// ParseFile parses an OSM XML file specified in conf. Files
// with .gz and .bz2 suffixes are decompressed on the fly.
func ParseFile(ctx context.Context, conf *ParserConf, lproc ElementProcessor) error {
	reader, closeFn, err := openInput(conf.InputFilePath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			log.Warn().Err(err).Str("file", conf.InputFilePath).Msg("failed to close input file")
		}
	}()
	log.Info().Str("file", conf.InputFilePath).Msg("Starting to parse OSM file")
	return ParseReader(ctx, reader, conf, lproc)
}
