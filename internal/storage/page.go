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
Page, PageHeader and RowLocator describe the general engine's on-disk
layout: a database file is a flat sequence of fixed-size pages, each
holding a small header followed by contiguous row slots.

	┌──────────────────────────────────────────────────────────┐
	│ page 1               page 2               page 3         │
	│ ┌────────┬─────────┐ ┌────────┬─────────┐ ...            │
	│ │ header │ rows... │ │ header │ rows... │                │
	│ └────────┴─────────┘ └────────┴─────────┘                │
	└──────────────────────────────────────────────────────────┘

Page numbers start at 1. File offset (n-1)*PageSize through
n*PageSize-1 always belongs to page n; Pager (pager.go) is the only
thing that resolves a page number to a byte slice.
*/
package storage

import "encoding/binary"

// PageSize is the fixed size of every page in a general-engine
// database file.
const PageSize = 4096

// MaxMappedPages bounds the pager's lazily-grown page table.
const MaxMappedPages = 1000

// pageHeaderSize is the on-disk size of PageHeader.
const pageHeaderSize = 8

// PageHeader is the first 8 bytes of every page.
type PageHeader struct {
	PageType uint32
	RowCount uint32
}

func readPageHeader(page []byte) PageHeader {
	return PageHeader{
		PageType: binary.LittleEndian.Uint32(page[0:4]),
		RowCount: binary.LittleEndian.Uint32(page[4:8]),
	}
}

func writePageHeader(page []byte, h PageHeader) {
	binary.LittleEndian.PutUint32(page[0:4], h.PageType)
	binary.LittleEndian.PutUint32(page[4:8], h.RowCount)
}

// rowSlotOffset returns the byte offset within a page of the row at
// the given index.
func rowSlotOffset(index int, rowSize int) int {
	return pageHeaderSize + index*rowSize
}

// rowsPerPage returns how many row_size-wide slots fit after the
// header in one page.
func rowsPerPage(rowSize int) int {
	return (PageSize - pageHeaderSize) / rowSize
}

// RowLocator identifies a single row within a table's page chain. A
// PageID of zero is the "no such row" sentinel returned by a failed
// insert.
type RowLocator struct {
	PageID           uint32
	OffsetWithinPage uint16
}

// IsNil reports whether l is the "no such row" sentinel.
func (l RowLocator) IsNil() bool {
	return l.PageID == 0
}
