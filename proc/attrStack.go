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
	"fmt"

	"github.com/czcorpus/osm-tagextract/parser"
)

// Frame represents a currently open element
type Frame struct {
	Name     string
	Attrs    map[string]string
	LineOpen int
}

// structStack tracks open elements. The backing slice is reused
// so its capacity is given by the maximum nesting depth seen.
type structStack struct {
	frames []Frame
}

// begin pushes a new frame and returns the new depth
func (s *structStack) begin(line int, elm *parser.Element) int {
	s.frames = append(s.frames, Frame{Name: elm.Name, Attrs: elm.Attrs, LineOpen: line})
	return len(s.frames)
}

// end pops the top frame. In case the name does not match
// the top frame, the frame is popped anyway and an error
// wrapping ErrStructuralMismatch is returned.
func (s *structStack) end(line int, name string) (Frame, error) {
	if len(s.frames) == 0 {
		return Frame{}, fmt.Errorf(
			"%w: element %s closed on line %d but no element is open",
			ErrStructuralMismatch, name, line)
	}
	last := len(s.frames) - 1
	item := s.frames[last]
	s.frames[last] = Frame{}
	s.frames = s.frames[:last]
	if item.Name != name {
		return item, fmt.Errorf(
			"%w: expected %s (opened on line %d), got %s on line %d",
			ErrStructuralMismatch, item.Name, item.LineOpen, name, line)
	}
	return item, nil
}

// parent returns the frame just below the top one
func (s *structStack) parent() (Frame, bool) {
	if len(s.frames) < 2 {
		return Frame{}, false
	}
	return s.frames[len(s.frames)-2], true
}

func (s *structStack) Size() int {
	return len(s.frames)
}

func newStructStack() *structStack {
	return &structStack{frames: make([]Frame, 0, 8)}
}
