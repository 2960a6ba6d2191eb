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
Package mmapio wraps a single open file in a growable memory mapping.
Both storage engines build on it: the general engine maps whole pages
through it, and the append-only engine maps its header-plus-rows
region through it directly. Neither engine issues explicit read/write
syscalls against a mapped file — all access is through the returned
byte slice.

Growth is mapping-replacing: Resize unmaps, truncates the underlying
file to exactly the requested size, and re-mmaps from scratch; how far
to grow is left to the caller (the append-only engine doubles its file,
the pager grows to the page it was asked for). There is no
remap-in-place primitive on the platforms this targets, so every
growth invalidates any slice into the previous mapping.
*/
package mmapio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// SyncMode selects how durably Sync flushes the mapping.
type SyncMode int

const (
	// SyncAsync requests the kernel start the writeback but does not
	// wait for it to land on durable storage.
	SyncAsync SyncMode = iota
	// SyncFull blocks until the writeback completes.
	SyncFull
)

// File is an open file backed by a memory mapping that can be grown.
type File struct {
	f    *os.File
	data []byte
}

// Open opens (creating if necessary) the file at path and maps all of
// it, growing the underlying file to minSize bytes first if it is
// smaller.
func Open(path string, minSize int64) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("mmapio: open %s: %w", path, err)
	}

	if err := ensureSize(f, minSize); err != nil {
		f.Close()
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("mmapio: stat: %w", err)
	}
	mf := &File{f: f}
	if err := mf.mmap(info.Size()); err != nil {
		f.Close()
		return nil, err
	}
	return mf, nil
}

func ensureSize(f *os.File, size int64) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("mmapio: stat: %w", err)
	}
	if info.Size() >= size {
		return nil
	}
	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("mmapio: truncate to %d: %w", size, err)
	}
	return nil
}

func (mf *File) mmap(size int64) error {
	data, err := unix.Mmap(int(mf.f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmapio: mmap: %w", err)
	}
	mf.data = data
	return nil
}

// Data returns the current mapping. The slice is invalidated by the
// next call to Resize.
func (mf *File) Data() []byte {
	return mf.data
}

// Size returns the current mapping length.
func (mf *File) Size() int64 {
	return int64(len(mf.data))
}

// Resize grows the mapping to at least newSize bytes. Shrinking is not
// supported since neither engine ever needs to release space.
func (mf *File) Resize(newSize int64) error {
	if newSize <= mf.Size() {
		return nil
	}
	if err := unix.Munmap(mf.data); err != nil {
		return fmt.Errorf("mmapio: munmap before resize: %w", err)
	}
	mf.data = nil
	if err := ensureSize(mf.f, newSize); err != nil {
		return err
	}
	return mf.mmap(newSize)
}

// Sync flushes the mapping to durable storage.
func (mf *File) Sync(mode SyncMode) error {
	if mf.data == nil {
		return nil
	}
	flags := unix.MS_ASYNC
	if mode == SyncFull {
		flags = unix.MS_SYNC
	}
	if err := unix.Msync(mf.data, flags); err != nil {
		return fmt.Errorf("mmapio: msync: %w", err)
	}
	return nil
}

// Msync flushes an arbitrary sub-slice of a mapping obtained from
// Data. addr must be page-aligned relative to the mapping's start,
// which holds for any offset that is itself a multiple of the page
// size used to carve up the mapping.
func Msync(b []byte, mode SyncMode) error {
	if len(b) == 0 {
		return nil
	}
	flags := unix.MS_ASYNC
	if mode == SyncFull {
		flags = unix.MS_SYNC
	}
	if err := unix.Msync(b, flags); err != nil {
		return fmt.Errorf("mmapio: msync: %w", err)
	}
	return nil
}

// Close unmaps and closes the underlying file.
func (mf *File) Close() error {
	if mf.data != nil {
		if err := unix.Munmap(mf.data); err != nil {
			mf.f.Close()
			return fmt.Errorf("mmapio: munmap: %w", err)
		}
		mf.data = nil
	}
	return mf.f.Close()
}
