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

// ElementKind is a kind of OSM XML element the extractor
// knows how to decompose.
type ElementKind int

const (
	KindOther ElementKind = iota
	KindNode
	KindWay
	KindTag
	KindNodeRef
)

func (k ElementKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindWay:
		return "way"
	case KindTag:
		return "tag"
	case KindNodeRef:
		return "nd"
	default:
		return "other"
	}
}

// ParseElementKind maps an element name to its kind.
// Unknown names (including "relation") map to KindOther.
func ParseElementKind(name string) ElementKind {
	switch name {
	case "node":
		return KindNode
	case "way":
		return KindWay
	case "tag":
		return KindTag
	case "nd":
		return KindNodeRef
	default:
		return KindOther
	}
}
