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

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrUnrecognizedFieldType = errors.New("unrecognized field type")
)

// Insert is an InsertOperation based on a prepared
// SQL statement.
type Insert struct {
	Stmt *sql.Stmt
}

func (ins *Insert) Exec(values ...any) error {
	_, err := ins.Stmt.Exec(values...)
	return err
}

// ValidateValue tests whether a row field value can be
// stored by any of the writers. Attribute values always
// come as strings so anything unexpected here is
// a programming error.
func ValidateValue(v any) error {
	switch v.(type) {
	case nil, string, int, int64, float64:
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnrecognizedFieldType, v)
	}
}

// FormatValue converts a row field value into its
// textual representation (e.g. for CSV output).
// A nil value is exported as an empty string.
func FormatValue(v any) (string, error) {
	switch tv := v.(type) {
	case nil:
		return "", nil
	case string:
		return tv, nil
	case int:
		return strconv.Itoa(tv), nil
	case int64:
		return strconv.FormatInt(tv, 10), nil
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnrecognizedFieldType, v)
	}
}
