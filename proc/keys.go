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

import "strings"

const (
	keySeparator   = ":"
	RegularKeyType = "regular"
)

// SplitKey splits a tag key at the first separator. The part after
// the separator is the bare key, the part before is the key type
// (e.g. "addr:city" -> "city", "addr"). Keys without a separator
// are of the "regular" type.
func SplitKey(key string) (bareKey, typeLabel string) {
	if before, after, ok := strings.Cut(key, keySeparator); ok {
		return after, before
	}
	return key, RegularKeyType
}
