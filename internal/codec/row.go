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

package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Column is the minimal per-column shape Pack/Unpack need: where the
// column's slot starts within a row buffer, how wide the slot is, and
// what kind of value it holds. Both engines convert their own column
// descriptors (storage.ColumnDef for engine A, appendonly.ColumnDesc for
// engine B) into this shape before calling Pack or Unpack.
type Column struct {
	Name   string
	Kind   Kind
	Offset int
	Length int // slot width in bytes; for TEXT this includes the trailing '\0'
}

// Pack encodes values in column order into a freshly zeroed buffer of
// exactly rowSize bytes, per §4.1.
//
//   - INTEGER is written as a signed little-endian 64-bit word.
//   - REAL is written as an IEEE-754 binary64 little-endian word.
//   - TEXT copies at most Length-1 bytes of the source and writes a
//     '\0' terminator in the next byte; a shorter source leaves the
//     remainder of the slot zeroed. A longer source is silently
//     truncated to Length-1 bytes.
//   - NULL leaves the slot as zero bytes. The null flag carried on the
//     input Value is not persisted: a zero INTEGER/REAL and an absent
//     one are indistinguishable once packed. This is a documented
//     limitation, not a bug.
func Pack(cols []Column, rowSize int, values []Value) ([]byte, error) {
	if len(values) != len(cols) {
		return nil, fmt.Errorf("codec: expected %d values, got %d", len(cols), len(values))
	}
	buf := make([]byte, rowSize)
	for i, col := range cols {
		val := values[i]
		if val.IsNull {
			continue
		}
		dest := buf[col.Offset : col.Offset+col.Length]
		switch col.Kind {
		case KindInteger:
			binary.LittleEndian.PutUint64(dest, uint64(val.Int))
		case KindReal:
			binary.LittleEndian.PutUint64(dest, floatBits(val.Real))
		case KindText:
			n := len(val.Text)
			if n > col.Length-1 {
				n = col.Length - 1
			}
			copy(dest, val.Text[:n])
			dest[n] = 0
		default:
			return nil, fmt.Errorf("codec: unsupported column type %s for %q", col.Kind, col.Name)
		}
	}
	return buf, nil
}

// Unpack decodes a packed row buffer back into a slice of values, one
// per column, in column order. TEXT values are returned as fresh,
// caller-owned byte slices truncated at the first '\0' within the
// slot (or at Length if none is found).
func Unpack(cols []Column, buf []byte) ([]Value, error) {
	values := make([]Value, len(cols))
	for i, col := range cols {
		src := buf[col.Offset : col.Offset+col.Length]
		switch col.Kind {
		case KindInteger:
			values[i] = Integer(int64(binary.LittleEndian.Uint64(src)))
		case KindReal:
			values[i] = Real(floatFromBits(binary.LittleEndian.Uint64(src)))
		case KindText:
			end := bytes.IndexByte(src, 0)
			if end < 0 {
				end = len(src)
			}
			values[i] = Text(src[:end])
		default:
			return nil, fmt.Errorf("codec: unsupported column type %s for %q", col.Kind, col.Name)
		}
	}
	return values, nil
}

// AlignedOffsets computes each column's offset so it starts at the
// smallest multiple of align that is >= the end of the previous
// column, and returns the total (non-padded-at-the-end) row size —
// callers that need the row size rounded up to align should round the
// returned total themselves.
func AlignedOffsets(lengths []int, align int) (offsets []int, total int) {
	offsets = make([]int, len(lengths))
	cursor := 0
	for i, l := range lengths {
		cursor = ceilTo(cursor, align)
		offsets[i] = cursor
		cursor += l
	}
	return offsets, cursor
}

func ceilTo(n, align int) int {
	if align <= 0 {
		return n
	}
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + (align - rem)
}
