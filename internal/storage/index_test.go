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

import "testing"

func TestIndexInsertAndFind(t *testing.T) {
	idx := NewIndex()
	if !idx.Insert(7, RowLocator{PageID: 1, OffsetWithinPage: 8}) {
		t.Fatal("first insert of a fresh key should succeed")
	}
	loc, ok := idx.Find(7)
	if !ok || loc.PageID != 1 || loc.OffsetWithinPage != 8 {
		t.Errorf("Find(7) = %+v, %v; want {1 8}, true", loc, ok)
	}
	if _, ok := idx.Find(999); ok {
		t.Error("Find on an absent key should report not-found")
	}
}

func TestIndexRejectsDuplicateKeys(t *testing.T) {
	idx := NewIndex()
	idx.Insert(1, RowLocator{PageID: 1, OffsetWithinPage: 0})
	if idx.Insert(1, RowLocator{PageID: 2, OffsetWithinPage: 0}) {
		t.Error("expected Insert to reject a duplicate key")
	}
	loc, _ := idx.Find(1)
	if loc.PageID != 1 {
		t.Error("a rejected duplicate insert must not overwrite the existing entry")
	}
}

func TestIndexBeyondSingleLeafCapacity(t *testing.T) {
	// The source hard-limits one leaf to 254 keys; this index must
	// support arbitrary capacity via its underlying B-tree.
	idx := NewIndex()
	const n = 1000
	for i := uint32(0); i < n; i++ {
		if !idx.Insert(i, RowLocator{PageID: i + 1, OffsetWithinPage: 0}) {
			t.Fatalf("Insert(%d) unexpectedly failed", i)
		}
	}
	if idx.Len() != n {
		t.Fatalf("Len() = %d, want %d", idx.Len(), n)
	}
}

func TestIndexCursorAscendingOrder(t *testing.T) {
	idx := NewIndex()
	keys := []uint32{50, 10, 30, 20, 40}
	for _, k := range keys {
		idx.Insert(k, RowLocator{PageID: k + 1})
	}

	cur := idx.Cursor()
	var seen []uint32
	for ok := cur.First(); ok; {
		seen = append(seen, cur.Key())
		cur.Advance()
		ok = !cur.AtEnd()
	}
	want := []uint32{10, 20, 30, 40, 50}
	if len(seen) != len(want) {
		t.Fatalf("cursor visited %d keys, want %d (%v)", len(seen), len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("position %d: got %d, want %d", i, seen[i], want[i])
		}
	}
}

func TestIndexCursorOnEmptyIndex(t *testing.T) {
	idx := NewIndex()
	cur := idx.Cursor()
	if cur.First() {
		t.Error("First on an empty index should report false")
	}
}
