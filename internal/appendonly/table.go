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
	"os"
	"path/filepath"
	"strconv"
	"time"

	"rstoredb/internal/codec"
	"rstoredb/internal/config"
	"rstoredb/internal/errors"
	"rstoredb/internal/logging"
	"rstoredb/internal/storage/mmapio"
)

var log = logging.NewLogger("appendonly")

// state is the append-only table's lifecycle state (§4.13).
type state int

const (
	stateCreated state = iota
	stateOpen
	stateClosed
)

// Table is one append-only table file: a header describing a packed
// row layout, and a tail of rows appended directly into the mapped
// region. It is not safe for concurrent use — every public operation
// must be serialised by the caller (§5).
type Table struct {
	name string
	path string
	cfg  *config.Config

	file   *mmapio.File
	header Header

	writeOffset   int64
	rowsSinceSync int
	lastSync      time.Time
	state         state
}

func tablePath(cfg *config.Config, name string) string {
	return filepath.Join(cfg.DataDir, name+".rdb")
}

// Create truncates any existing file for name, parses schemaSQL into
// a column layout, and writes a fresh header. schemaSQL may be a bare
// column list or a full CREATE TABLE statement (see ParseSchema).
func Create(name, schemaSQL string, cfg *config.Config) (*Table, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, errors.IOError("creating data directory", err)
	}

	cols, rowSize, err := ParseSchema(schemaSQL)
	if err != nil {
		return nil, err
	}

	path := tablePath(cfg, name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.IOError("truncating existing table file", err)
	}

	f, err := mmapio.Open(path, cfg.AppendOnlyInitialFileSize)
	if err != nil {
		return nil, errors.IOError("creating append-only table file", err)
	}

	h := Header{Version: Version, RowSize: uint32(rowSize), ColumnCount: uint32(len(cols))}
	for i, c := range cols {
		h.Columns[i] = c
	}
	encodeHeader(f.Data(), h)

	t := &Table{
		name: name, path: path, cfg: cfg,
		file: f, header: h,
		writeOffset: HeaderSize,
		lastSync:    time.Now(),
		state:       stateOpen,
	}
	log.Debug("table created", "name", name, "row_size", strconv.Itoa(rowSize), "columns", strconv.Itoa(len(cols)))
	return t, nil
}

// Open maps the existing file for name, validating its header's magic
// and version, and positions the write cursor after its last row.
func Open(name string, cfg *config.Config) (*Table, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	path := tablePath(cfg, name)

	f, err := mmapio.Open(path, HeaderSize)
	if err != nil {
		return nil, errors.IOError("opening append-only table file", err)
	}
	h, err := decodeHeader(f.Data())
	if err != nil {
		f.Close()
		return nil, err
	}

	t := &Table{
		name: name, path: path, cfg: cfg,
		file: f, header: h,
		writeOffset: HeaderSize + int64(h.NumRows)*int64(h.RowSize),
		lastSync:    time.Now(),
		state:       stateOpen,
	}
	log.Debug("table opened", "name", name, "num_rows", strconv.FormatInt(int64(h.NumRows), 10))
	return t, nil
}

// RowCount returns the number of rows appended so far.
func (t *Table) RowCount() uint64 {
	return t.header.NumRows
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Columns returns the table's column descriptors in declared order.
func (t *Table) Columns() []ColumnDesc {
	return append([]ColumnDesc(nil), t.header.Columns[:t.header.ColumnCount]...)
}

// RowSize returns the packed row width in bytes.
func (t *Table) RowSize() int { return int(t.header.RowSize) }

func (t *Table) ensureOpen() error {
	if t.state != stateOpen && t.state != stateCreated {
		return errors.NewStorageError("append-only table is closed")
	}
	return nil
}

// AppendRow packs values per the table's column layout and writes them
// directly into the mapped tail, growing the file first if there is
// not enough room. It then advances num_rows and issues a durability
// hint if the since-sync thresholds (§4.4) have been crossed.
func (t *Table) AppendRow(values []codec.Value) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	rowSize := int64(t.header.RowSize)
	if err := t.ensureSpace(rowSize); err != nil {
		return err
	}

	buf, err := codec.Pack(t.header.codecColumns(), int(rowSize), values)
	if err != nil {
		return err
	}
	copy(t.file.Data()[t.writeOffset:t.writeOffset+rowSize], buf)

	t.writeOffset += rowSize
	t.header.NumRows++
	setNumRows(t.file.Data(), t.header.NumRows)
	t.rowsSinceSync++

	if t.rowsSinceSync >= t.cfg.AppendOnlySyncEveryRows || time.Since(t.lastSync) >= time.Duration(t.cfg.AppendOnlySyncEveryMillis)*time.Millisecond {
		if err := t.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// ensureSpace doubles the mapped file until at least needed bytes
// remain beyond the current write offset.
func (t *Table) ensureSpace(needed int64) error {
	for t.writeOffset+needed > t.file.Size() {
		newSize := t.file.Size() * 2
		if err := t.file.Resize(newSize); err != nil {
			return errors.IOError("growing append-only table file", err)
		}
		log.Debug("table grown", "name", t.name, "new_size", strconv.FormatInt(newSize, 10))
	}
	return nil
}

// RowSink receives one unpacked row per call during Select.
type RowSink func(values []codec.Value) error

// Select iterates every row in insertion order, unpacking each into a
// fresh value slice and invoking sink. whereClause is accepted for
// interface parity with table_select but is not evaluated — Engine B
// has no predicate evaluator of its own; callers that need filtering
// can apply sink-side logic, or go through the general engine's SQL
// front end instead.
func (t *Table) Select(whereClause string, sink RowSink) error {
	if err := t.ensureOpen(); err != nil {
		return err
	}
	_ = whereClause

	cols := t.header.codecColumns()
	rowSize := int64(t.header.RowSize)
	data := t.file.Data()
	offset := int64(HeaderSize)
	for i := uint64(0); i < t.header.NumRows; i++ {
		values, err := codec.Unpack(cols, data[offset:offset+rowSize])
		if err != nil {
			return err
		}
		if err := sink(values); err != nil {
			return err
		}
		offset += rowSize
	}
	return nil
}

// Flush issues an asynchronous durability hint over the written prefix
// of the mapping and resets the since-sync counters.
func (t *Table) Flush() error {
	if err := mmapio.Msync(t.file.Data()[:t.writeOffset], mmapio.SyncAsync); err != nil {
		return errors.IOError("flushing append-only table", err)
	}
	t.rowsSinceSync = 0
	t.lastSync = time.Now()
	return nil
}

// Close issues a final durability hint, unmaps the file and releases
// the handle. Close is idempotent.
func (t *Table) Close() error {
	if t.state == stateClosed {
		return nil
	}
	if err := t.Flush(); err != nil {
		return err
	}
	if err := t.file.Close(); err != nil {
		return errors.IOError("closing append-only table", err)
	}
	t.state = stateClosed
	return nil
}
