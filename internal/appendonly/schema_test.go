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

package appendonly

import (
	"strings"
	"testing"
)

func TestParseSchemaBasic(t *testing.T) {
	cols, rowSize, err := ParseSchema("(id INTEGER, name TEXT(16), score REAL)")
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(cols))
	}
	if cols[0].Type != ColTypeInteger || cols[0].Length != 8 || cols[0].Offset != 0 {
		t.Errorf("unexpected id column: %+v", cols[0])
	}
	if cols[1].Type != ColTypeText || cols[1].Length != 16 || cols[1].Offset != 8 {
		t.Errorf("unexpected name column: %+v", cols[1])
	}
	if cols[2].Type != ColTypeReal || cols[2].Length != 8 || cols[2].Offset != 24 {
		t.Errorf("unexpected score column: %+v", cols[2])
	}
	if rowSize != 32 {
		t.Errorf("rowSize = %d, want 32", rowSize)
	}
}

func TestParseSchemaFullCreateTableStatement(t *testing.T) {
	cols, _, err := ParseSchema("CREATE TABLE access_log (timestamp INTEGER, ip TEXT(16), status INTEGER, bytes INTEGER)")
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if len(cols) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(cols))
	}
}

func TestParseSchemaEmptyColumnListRejected(t *testing.T) {
	if _, _, err := ParseSchema("()"); err == nil {
		t.Fatal("expected an error for an empty column list")
	}
}

func TestParseSchemaMissingParensRejected(t *testing.T) {
	if _, _, err := ParseSchema("id INTEGER"); err == nil {
		t.Fatal("expected an error when the column list is not parenthesised")
	}
}

// S5: Engine B schema limits.
func TestParseSchemaFourteenColumnsSucceedsFifteenFails(t *testing.T) {
	cols14 := buildColumnList(14)
	if _, _, err := ParseSchema("(" + cols14 + ")"); err != nil {
		t.Fatalf("expected 14 columns to succeed, got %v", err)
	}

	cols15 := buildColumnList(15)
	if _, _, err := ParseSchema("(" + cols15 + ")"); err == nil {
		t.Fatal("expected 15 columns to fail")
	}
}

func buildColumnList(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "c" + string(rune('a'+i)) + " INTEGER"
	}
	return strings.Join(parts, ", ")
}

func TestParseSchemaTextLengthClampingAndDefault(t *testing.T) {
	cols, _, err := ParseSchema("(big TEXT(1000), bare TEXT)")
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if cols[0].Length != 255 {
		t.Errorf("TEXT(1000) should clamp to 255, got %d", cols[0].Length)
	}
	if cols[1].Length != 64 {
		t.Errorf("bare TEXT should default to 64, got %d", cols[1].Length)
	}
}

func TestParseSchemaUnsupportedTypeRejected(t *testing.T) {
	if _, _, err := ParseSchema("(x BLOB)"); err == nil {
		t.Fatal("expected an error for an unsupported column type")
	}
}

func TestParseSchemaNameTruncatedToSevenBytesPlusTerminator(t *testing.T) {
	cols, _, err := ParseSchema("(averylongcolumnname INTEGER)")
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if len(cols[0].Name) > MaxColumnNameLen-1 {
		t.Errorf("name %q exceeds %d bytes", cols[0].Name, MaxColumnNameLen-1)
	}
}
