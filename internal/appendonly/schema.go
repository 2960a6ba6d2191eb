/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Schema parsing is deliberately separate from internal/sql's full
recursive-descent grammar: table_create only ever needs to turn a
parenthesised column list into a ColumnDesc array, and doing that with
a dedicated scanner keeps the append-only engine usable without
pulling in the general engine's planner/executor at all.
*/
package appendonly

import (
	"strconv"
	"strings"

	"rstoredb/internal/errors"
)

const defaultTextLength = 64

// ParseSchema parses a schema string containing a parenthesised column
// list of the form "name TYPE" or "name TEXT(n)", comma-separated, and
// returns the column descriptors plus the total row size.
//
// schemaSQL may be the bare column list ("(id INTEGER, name TEXT(16))")
// or a full CREATE TABLE statement ("CREATE TABLE t (id INTEGER, ...)")
// — only the first '(' .. last ')' span is consulted.
func ParseSchema(schemaSQL string) ([]ColumnDesc, int, error) {
	open := strings.IndexByte(schemaSQL, '(')
	close := strings.LastIndexByte(schemaSQL, ')')
	if open < 0 || close < 0 || close < open {
		return nil, 0, errors.NewParseError("schema: missing parenthesised column list")
	}
	body := schemaSQL[open+1 : close]

	var cols []ColumnDesc
	offset := 0
	for _, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if len(cols) >= MaxColumns {
			return nil, 0, errors.ConstraintViolation("schema: too many columns", part)
		}
		col, err := parseColumnDef(part, offset)
		if err != nil {
			return nil, 0, err
		}
		cols = append(cols, col)
		offset += int(col.Length)
	}

	if len(cols) == 0 {
		return nil, 0, errors.NewParseError("schema: column list must not be empty")
	}
	return cols, offset, nil
}

// parseColumnDef parses one "name TYPE[(n)]" fragment, assigning it
// offset within the row.
func parseColumnDef(def string, offset int) (ColumnDesc, error) {
	fields := strings.Fields(def)
	if len(fields) < 2 {
		return ColumnDesc{}, errors.NewParseError("schema: expected 'name TYPE', got " + def)
	}
	name := fields[0]
	if len(name) > MaxColumnNameLen-1 {
		name = name[:MaxColumnNameLen-1]
	}
	typeStr := strings.ToUpper(fields[1])

	col := ColumnDesc{Name: name, Offset: uint16(offset)}
	switch {
	case typeStr == "INTEGER" || typeStr == "INT":
		col.Type = ColTypeInteger
		col.Length = 8
	case typeStr == "REAL" || typeStr == "FLOAT" || typeStr == "DOUBLE":
		col.Type = ColTypeReal
		col.Length = 8
	case strings.HasPrefix(typeStr, "TEXT") || strings.HasPrefix(typeStr, "VARCHAR"):
		col.Type = ColTypeText
		col.Length = uint8(textLengthFromType(typeStr))
	default:
		return ColumnDesc{}, errors.NewParseError("schema: unsupported column type " + fields[1])
	}
	return col, nil
}

// textLengthFromType extracts the optional "(n)" length suffix from a
// TEXT/VARCHAR type token, clamping to [1, 255] and defaulting to 64
// when absent.
func textLengthFromType(typeStr string) int {
	open := strings.IndexByte(typeStr, '(')
	if open < 0 {
		return defaultTextLength
	}
	close := strings.IndexByte(typeStr, ')')
	if close < 0 || close < open {
		return defaultTextLength
	}
	n, err := strconv.Atoi(typeStr[open+1 : close])
	if err != nil {
		return defaultTextLength
	}
	if n < 1 {
		n = 1
	}
	if n > 255 {
		n = 255
	}
	return n
}
