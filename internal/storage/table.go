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

package storage

import (
	"rstoredb/internal/codec"
	"rstoredb/internal/errors"
)

// ColumnDef is the general engine's in-memory column descriptor. It is
// never persisted; only the packed row bytes it describes live on
// disk.
type ColumnDef struct {
	Name   string
	Kind   codec.Kind
	Offset int
	Size   int
}

// typeSize returns the fixed on-disk width of a general-engine column
// of the given kind. Unlike the append-only engine, TEXT columns here
// always reserve the full 256-byte slot (255 payload bytes plus a
// terminator); there is no per-column length parameter.
func typeSize(k codec.Kind) int {
	switch k {
	case codec.KindInteger, codec.KindReal:
		return 8
	case codec.KindText:
		return codec.MaxTextLen + 1
	default:
		return 0
	}
}

func alignUp8(n int) int {
	if n%8 == 0 {
		return n
	}
	return n + (8 - n%8)
}

// Table is a general-engine table: a column layout, a chain of data
// pages, and an optional index bound to the first column when it is
// INTEGER.
type Table struct {
	Name    string
	Columns []ColumnDef
	RowSize int
	Pages   []uint32
	Index   *Index

	rowCount  uint64
	nextRowID uint64
	pager     *Pager
}

// NewTable creates an empty table bound to pager. Columns are added
// with AddColumn before any row is inserted.
func NewTable(name string, pager *Pager) *Table {
	return &Table{Name: name, pager: pager}
}

// AddColumn appends a column to the table's layout, computing its
// offset as the 8-byte-aligned end of the previous column. If this is
// the first column and it is INTEGER, a primary index is created and
// bound to it.
func (t *Table) AddColumn(name string, kind codec.Kind) {
	offset := alignUp8(t.RowSize)
	size := typeSize(kind)
	t.Columns = append(t.Columns, ColumnDef{Name: name, Kind: kind, Offset: offset, Size: size})
	t.RowSize = offset + size
	if len(t.Columns) == 1 && kind == codec.KindInteger {
		t.Index = NewIndex()
	}
}

// RowCount returns the table's logical row count.
func (t *Table) RowCount() uint64 { return t.rowCount }

func (t *Table) codecColumns() []codec.Column {
	cols := make([]codec.Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = codec.Column{Name: c.Name, Kind: c.Kind, Offset: c.Offset, Length: c.Size}
	}
	return cols
}

// ColumnIndex returns the declared position of name, or -1 if no such
// column exists. The match is case-sensitive, per the source.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// InsertRow packs values per the table's column layout and appends
// them to the last data page, allocating a new page when the current
// one has no room. It returns the row's locator.
func (t *Table) InsertRow(values []codec.Value) (RowLocator, error) {
	buf, err := codec.Pack(t.codecColumns(), t.RowSize, values)
	if err != nil {
		return RowLocator{}, err
	}

	pageID, page, slot, err := t.lastPageWithRoom()
	if err != nil {
		return RowLocator{}, err
	}

	header := readPageHeader(page)
	copy(page[rowSlotOffset(slot, t.RowSize):], buf)
	header.RowCount++
	writePageHeader(page, header)

	t.rowCount++
	t.nextRowID++

	return RowLocator{PageID: pageID, OffsetWithinPage: uint16(rowSlotOffset(slot, t.RowSize))}, nil
}

// lastPageWithRoom returns the page to insert into and the slot index
// within it, allocating a fresh page (and appending it to the chain)
// when the table has no pages yet or the last page is full.
func (t *Table) lastPageWithRoom() (pageID uint32, page []byte, slot int, err error) {
	capacity := rowsPerPage(t.RowSize)
	if capacity == 0 {
		return 0, nil, 0, errors.ConstraintViolation("row too large for a page", "row_size exceeds the page body")
	}

	if len(t.Pages) > 0 {
		last := t.Pages[len(t.Pages)-1]
		data, gerr := t.pager.GetPage(last)
		if gerr != nil {
			return 0, nil, 0, gerr
		}
		h := readPageHeader(data)
		if int(h.RowCount) < capacity {
			return last, data, int(h.RowCount), nil
		}
	}

	newID, data, aerr := t.pager.AllocatePage()
	if aerr != nil {
		return 0, nil, 0, aerr
	}
	writePageHeader(data, PageHeader{PageType: 0, RowCount: 0})
	t.Pages = append(t.Pages, newID)
	return newID, data, 0, nil
}

// GetRow returns the unpacked values stored at loc.
func (t *Table) GetRow(loc RowLocator) ([]codec.Value, error) {
	if loc.IsNil() {
		return nil, errors.RowNotFound()
	}
	page, err := t.pager.GetPage(loc.PageID)
	if err != nil {
		return nil, err
	}
	start := int(loc.OffsetWithinPage)
	return codec.Unpack(t.codecColumns(), page[start:start+t.RowSize])
}

// Scanner walks a table's rows page by page in insertion order.
type Scanner struct {
	table      *Table
	pageIdx    int
	rowIdx     int
	rowsOnPage int
	atEnd      bool
}

// NewScanner returns a scanner positioned before the table's first
// row.
func (t *Table) NewScanner() *Scanner {
	s := &Scanner{table: t}
	s.loadPage()
	return s
}

func (s *Scanner) loadPage() {
	if s.pageIdx >= len(s.table.Pages) {
		s.atEnd = true
		return
	}
	page, err := s.table.pager.GetPage(s.table.Pages[s.pageIdx])
	if err != nil {
		s.atEnd = true
		return
	}
	h := readPageHeader(page)
	s.rowsOnPage = int(h.RowCount)
	s.rowIdx = 0
	if s.rowsOnPage == 0 {
		s.advancePage()
	}
}

func (s *Scanner) advancePage() {
	s.pageIdx++
	s.loadPage()
}

// AtEnd reports whether the scan is exhausted.
func (s *Scanner) AtEnd() bool {
	return s.atEnd
}

// Next returns the current row's locator and unpacked values, then
// advances the cursor. It must not be called once AtEnd is true.
func (s *Scanner) Next() (RowLocator, []codec.Value, error) {
	if s.atEnd {
		return RowLocator{}, nil, errors.NewStorageError("scanner exhausted")
	}
	pageID := s.table.Pages[s.pageIdx]
	page, err := s.table.pager.GetPage(pageID)
	if err != nil {
		return RowLocator{}, nil, err
	}
	offset := rowSlotOffset(s.rowIdx, s.table.RowSize)
	values, err := codec.Unpack(s.table.codecColumns(), page[offset:offset+s.table.RowSize])
	if err != nil {
		return RowLocator{}, nil, err
	}
	loc := RowLocator{PageID: pageID, OffsetWithinPage: uint16(offset)}

	s.rowIdx++
	if s.rowIdx >= s.rowsOnPage {
		s.advancePage()
	}
	return loc, values, nil
}
