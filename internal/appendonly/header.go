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
Package appendonly implements rstoredb's Engine B: one memory-mapped
file per table, a fixed header describing a packed fixed-width row
layout, and an append-only tail written directly into the mapping.

This is the bypass-everything fast path: there is no paging, no
catalog, no SQL front end. A caller that knows its schema up front and
only ever appends rows should use this package instead of the general
engine in internal/storage.

On-disk layout of one table file:

	[0, headerSize)                         fixed header (see Header)
	[headerSize, headerSize+numRows*rowSize) packed row tail
	beyond                                  reserved mapped capacity

headerSize is 264 bytes, not the 256 the column's own source constant
(TABLE_HEADER_SIZE) suggests: 40 fixed bytes plus 14 column
descriptors of 16 bytes each is 264 bytes, eight more than 256. The
original implementation uses the 256-byte constant as its write offset
while the struct it casts over the mapping is 264 bytes wide, so the
first appended row silently clobbers the last 8 bytes of the last column
descriptor, everything after its name. This is exactly the class of on-disk-invariant bug this
rewrite exists to not reproduce; headerSize is fixed at the struct's
true width instead.
*/
package appendonly

import (
	"bytes"
	"encoding/binary"

	"rstoredb/internal/codec"
	"rstoredb/internal/errors"
)

const (
	// MaxColumns bounds how many columns a table file header can
	// describe.
	MaxColumns = 14

	// MaxColumnNameLen is the column name field's on-disk width,
	// including the trailing NUL.
	MaxColumnNameLen = 8

	// columnDescSize is the on-disk width of one ColumnDesc.
	columnDescSize = 16

	// fixedHeaderSize is the width of every field preceding the column
	// array: magic(8) + version(4) + row_size(4) + num_rows(8) +
	// column_count(4) + reserved(12).
	fixedHeaderSize = 40

	// HeaderSize is the byte offset the packed row tail begins at.
	HeaderSize = fixedHeaderSize + MaxColumns*columnDescSize

	// Version is the only table file format version this package
	// writes or accepts.
	Version uint32 = 1

	// InitialFileSize equals config.DefaultConfig's
	// AppendOnlyInitialFileSize; Create truncates a fresh table file to
	// the configured value, not to this constant.
	InitialFileSize int64 = 1 << 20

	// SyncEveryRows equals config.DefaultConfig's AppendOnlySyncEveryRows;
	// AppendRow reads the row threshold from the table's configuration.
	SyncEveryRows = 512

	// SyncEveryMillis equals config.DefaultConfig's
	// AppendOnlySyncEveryMillis; AppendRow reads the time threshold from
	// the table's configuration.
	SyncEveryMillis = 100
)

// Magic is the 8-byte signature every table file begins with.
var Magic = [8]byte{'R', 'S', 'T', 'R', 'D', 'B', 0, 0}

// ColumnType identifies a column's on-disk value kind. It matches
// codec.Kind one-for-one except for the addition of Nullable, which no
// column produced by the schema sub-parser ever uses; NULL-ness is
// carried per value, not per column, via the codec's null flag.
type ColumnType uint8

const (
	ColTypeInteger  ColumnType = 1
	ColTypeReal     ColumnType = 2
	ColTypeText     ColumnType = 3
	ColTypeNullable ColumnType = 4
)

// Kind converts a ColumnType to the codec.Kind the shared codec
// understands.
func (t ColumnType) Kind() codec.Kind {
	switch t {
	case ColTypeInteger:
		return codec.KindInteger
	case ColTypeReal:
		return codec.KindReal
	case ColTypeText:
		return codec.KindText
	default:
		return codec.KindNull
	}
}

// ColumnDesc is one 16-byte on-disk column descriptor (§3.2).
type ColumnDesc struct {
	Name     string // at most MaxColumnNameLen-1 bytes
	Type     ColumnType
	Length   uint8
	Offset   uint16
	Reserved [4]byte
}

func (c ColumnDesc) encode() [columnDescSize]byte {
	var buf [columnDescSize]byte
	name := []byte(c.Name)
	if len(name) > MaxColumnNameLen-1 {
		name = name[:MaxColumnNameLen-1]
	}
	copy(buf[0:MaxColumnNameLen], name)
	buf[8] = byte(c.Type)
	buf[9] = c.Length
	binary.LittleEndian.PutUint16(buf[10:12], c.Offset)
	copy(buf[12:16], c.Reserved[:])
	return buf
}

func decodeColumnDesc(buf []byte) ColumnDesc {
	nameEnd := bytes.IndexByte(buf[0:MaxColumnNameLen], 0)
	if nameEnd < 0 {
		nameEnd = MaxColumnNameLen
	}
	var c ColumnDesc
	c.Name = string(buf[0:nameEnd])
	c.Type = ColumnType(buf[8])
	c.Length = buf[9]
	c.Offset = binary.LittleEndian.Uint16(buf[10:12])
	copy(c.Reserved[:], buf[12:16])
	return c
}

// Header is the decoded form of a table file's fixed header.
type Header struct {
	Version     uint32
	RowSize     uint32
	NumRows     uint64
	ColumnCount uint32
	Columns     [MaxColumns]ColumnDesc
}

// encodeHeader writes h into the first HeaderSize bytes of buf.
func encodeHeader(buf []byte, h Header) {
	copy(buf[0:8], Magic[:])
	binary.LittleEndian.PutUint32(buf[8:12], h.Version)
	binary.LittleEndian.PutUint32(buf[12:16], h.RowSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.NumRows)
	binary.LittleEndian.PutUint32(buf[24:28], h.ColumnCount)
	for i := 0; i < MaxColumns; i++ {
		desc := ColumnDesc{}
		if i < len(h.Columns) {
			desc = h.Columns[i]
		}
		encoded := desc.encode()
		start := fixedHeaderSize + i*columnDescSize
		copy(buf[start:start+columnDescSize], encoded[:])
	}
}

// decodeHeader validates buf's magic and version and decodes its
// header fields. buf must be at least HeaderSize bytes.
func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, errors.CorruptHeader("file shorter than the table header")
	}
	if !bytes.Equal(buf[0:8], Magic[:]) {
		return Header{}, errors.CorruptHeader("bad magic")
	}
	var h Header
	h.Version = binary.LittleEndian.Uint32(buf[8:12])
	if h.Version != Version {
		return Header{}, errors.CorruptHeader("unsupported version")
	}
	h.RowSize = binary.LittleEndian.Uint32(buf[12:16])
	h.NumRows = binary.LittleEndian.Uint64(buf[16:24])
	h.ColumnCount = binary.LittleEndian.Uint32(buf[24:28])
	if h.ColumnCount > MaxColumns {
		return Header{}, errors.CorruptHeader("column_count exceeds the on-disk limit")
	}
	for i := 0; i < MaxColumns; i++ {
		start := fixedHeaderSize + i*columnDescSize
		h.Columns[i] = decodeColumnDesc(buf[start : start+columnDescSize])
	}
	return h, nil
}

// setNumRows patches only the num_rows field in place, the one header
// field every append mutates.
func setNumRows(buf []byte, n uint64) {
	binary.LittleEndian.PutUint64(buf[16:24], n)
}

func readNumRows(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf[16:24])
}

// codecColumns converts a header's descriptors into the shape
// internal/codec.Pack/Unpack operate on.
func (h Header) codecColumns() []codec.Column {
	cols := make([]codec.Column, h.ColumnCount)
	for i := range cols {
		d := h.Columns[i]
		cols[i] = codec.Column{Name: d.Name, Kind: d.Type.Kind(), Offset: int(d.Offset), Length: int(d.Length)}
	}
	return cols
}
