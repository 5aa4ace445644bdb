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

package fs

import (
	"os"
)

// IsDir tests whether a provided path represents
// a directory. If not or in case of an IO error,
// false is returned.
func IsDir(path string) bool {
	finfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return finfo.Mode().IsDir()
}

// IsFile tests whether a provided path represents
// a file. If not or in case of an IO error,
// false is returned.
func IsFile(path string) bool {
	finfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	return finfo.Mode().IsRegular()
}

// FileSize returns size of a file in bytes. In case
// of an IO error (or if the path is not a file), -1 is returned.
func FileSize(path string) int64 {
	finfo, err := os.Stat(path)
	if err != nil || !finfo.Mode().IsRegular() {
		return -1
	}
	return finfo.Size()
}
