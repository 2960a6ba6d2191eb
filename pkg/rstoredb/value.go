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
Package rstoredb is the public facade over both of rstoredb's storage
engines: the general engine (paged mmap storage plus a SQL front end,
§6.3) and the append-only engine (one packed-row file per table, §6.4).
Everything under internal/ is an implementation detail; this package is
the only one external callers should import.
*/
package rstoredb

import "rstoredb/internal/codec"

// Value is a tagged union over NULL, INTEGER, REAL and TEXT, the value
// type every public operation accepts and returns. It is a thin alias
// over the codec package's internal representation so callers never
// need to import internal/codec themselves.
type Value = codec.Value

// IntegerValue constructs an INTEGER value.
func IntegerValue(v int64) Value { return codec.Integer(v) }

// RealValue constructs a REAL value.
func RealValue(v float64) Value { return codec.Real(v) }

// TextValue constructs a TEXT value. The byte slice is copied; the
// caller keeps ownership of the one it passed in and may reuse or
// discard it immediately after the call returns.
func TextValue(s []byte) Value { return codec.Text(s) }

// TextValueString is a convenience wrapper over TextValue for Go string
// literals, the common case when values come from application code
// rather than another byte buffer.
func TextValueString(s string) Value { return codec.TextString(s) }

// NullValue constructs a NULL value.
func NullValue() Value { return codec.Null() }
