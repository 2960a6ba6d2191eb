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

import "rstoredb/internal/errors"

// ResultCode is the coarse outcome of an Exec or Query call, matching
// §6.3's result-code enum one-for-one. Go callers generally work with
// the returned error directly; ResultCode exists for embedders porting
// code written against a C-shaped result-code surface.
type ResultCode int

const (
	ResultOK              ResultCode = 0
	ResultError           ResultCode = -1
	ResultNoMemory        ResultCode = -2
	ResultIOError         ResultCode = -3
	ResultParseError      ResultCode = -4
	ResultNotFound        ResultCode = -5
	ResultConstraintError ResultCode = -6
)

// CodeOf maps err onto its ResultCode, returning ResultOK for a nil
// error.
func CodeOf(err error) ResultCode {
	return ResultCode(errors.GetCode(err))
}

// ErrorString renders a human-readable message for a result code, the
// counterpart to §6.3's error_string.
func ErrorString(code ResultCode) string {
	switch code {
	case ResultOK:
		return "ok"
	case ResultError:
		return "error"
	case ResultNoMemory:
		return "out of memory"
	case ResultIOError:
		return "I/O error"
	case ResultParseError:
		return "parse error"
	case ResultNotFound:
		return "not found"
	case ResultConstraintError:
		return "constraint error"
	default:
		return "unknown error"
	}
}
