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
	"errors"
)

var (
	ErrTooManyParsingErrors = errors.New("too many parsing errors")

	// ErrStructuralMismatch is reported when a closing element
	// does not match the element at the top of the nesting stack.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrMissingParentContext is reported when a tag or nd element
	// has no usable parent (no open element or the parent has no valid id).
	ErrMissingParentContext = errors.New("missing parent context")

	ErrInvalidElement = errors.New("invalid element")
)
