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

package ptcount

import (
	"sort"
)

// FreqItem is a single item of a frequency distribution
type FreqItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FreqDict counts occurrences of strings (element names,
// attribute names, tag keys, user ids).
type FreqDict struct {
	total int
	data  map[string]int
}

// Add increments a value's count and returns
// the updated count.
func (fd *FreqDict) Add(value string) int {
	fd.data[value]++
	fd.total++
	return fd.data[value]
}

func (fd *FreqDict) Count(value string) int {
	return fd.data[value]
}

// Size returns number of distinct values
func (fd *FreqDict) Size() int {
	return len(fd.data)
}

// Total returns number of all Add calls
func (fd *FreqDict) Total() int {
	return fd.total
}

// Keys returns distinct values in lexicographic order.
func (fd *FreqDict) Keys() []string {
	ans := make([]string, 0, len(fd.data))
	for k := range fd.data {
		ans = append(ans, k)
	}
	sort.Strings(ans)
	return ans
}

// TopN returns n most frequent values sorted by their count
// (desc.). Values with the same count are sorted lexicographically.
// For n <= 0, all the values are returned.
func (fd *FreqDict) TopN(n int) []FreqItem {
	ans := make([]FreqItem, 0, len(fd.data))
	for k, v := range fd.data {
		ans = append(ans, FreqItem{Value: k, Count: v})
	}
	sort.Slice(ans, func(i, j int) bool {
		if ans[i].Count != ans[j].Count {
			return ans[i].Count > ans[j].Count
		}
		return ans[i].Value < ans[j].Value
	})
	if n > 0 && n < len(ans) {
		ans = ans[:n]
	}
	return ans
}

func NewFreqDict() *FreqDict {
	return &FreqDict{
		data: make(map[string]int),
	}
}
