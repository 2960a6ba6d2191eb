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

package rstoredb

import (
	"rstoredb/internal/appendonly"
	"rstoredb/internal/config"
)

// AppendOnlyTable is the public handle to one Engine B table: a single
// memory-mapped file holding a packed-row header and an append-only
// tail (§6.4). It is not safe for concurrent use (§5).
type AppendOnlyTable struct {
	t *appendonly.Table
}

// TableCreate creates (truncating any existing file) the append-only
// table name under the default data directory ("./data/<name>.rdb"),
// parsing schemaSQL for its column layout per §4.8.
func TableCreate(name, schemaSQL string) (*AppendOnlyTable, error) {
	return TableCreateWithConfig(name, schemaSQL, config.DefaultConfig())
}

// TableCreateWithConfig is TableCreate with an explicit configuration,
// letting a caller relocate the data directory or tune the durability
// thresholds (§4.4).
func TableCreateWithConfig(name, schemaSQL string, cfg *config.Config) (*AppendOnlyTable, error) {
	t, err := appendonly.Create(name, schemaSQL, cfg)
	if err != nil {
		return nil, err
	}
	return &AppendOnlyTable{t: t}, nil
}

// TableOpen reopens an existing append-only table file, validating its
// header's magic and version and positioning the write cursor after
// its last row.
func TableOpen(name string) (*AppendOnlyTable, error) {
	return TableOpenWithConfig(name, config.DefaultConfig())
}

// TableOpenWithConfig is TableOpen with an explicit configuration.
func TableOpenWithConfig(name string, cfg *config.Config) (*AppendOnlyTable, error) {
	t, err := appendonly.Open(name, cfg)
	if err != nil {
		return nil, err
	}
	return &AppendOnlyTable{t: t}, nil
}

// Close issues a final durability hint, unmaps the file and releases
// the handle. Close is idempotent.
func (at *AppendOnlyTable) Close() error {
	return at.t.Close()
}

// AppendRow packs values per the table's column layout and writes them
// directly into the mapped tail (§4.4). values must have exactly as
// many entries, in the same order, as the table's columns.
func (at *AppendOnlyTable) AppendRow(values ...Value) error {
	return at.t.AppendRow(values)
}

// AppendOnlyRowSink receives one unpacked row per call during Select.
type AppendOnlyRowSink func(values []Value) error

// Select iterates every row in insertion order, unpacking each into a
// fresh value slice and invoking sink. whereClause is accepted for
// interface parity with §6.4's table_select but is not evaluated —
// Engine B has no predicate evaluator of its own (§4.4, §7).
func (at *AppendOnlyTable) Select(whereClause string, sink AppendOnlyRowSink) error {
	return at.t.Select(whereClause, func(values []Value) error {
		return sink(values)
	})
}

// Flush issues an asynchronous durability hint over the written prefix
// of the mapping.
func (at *AppendOnlyTable) Flush() error {
	return at.t.Flush()
}

// RowCount returns the number of rows appended so far.
func (at *AppendOnlyTable) RowCount() uint64 {
	return at.t.RowCount()
}

// Name returns the table's name.
func (at *AppendOnlyTable) Name() string {
	return at.t.Name()
}
