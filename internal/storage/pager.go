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
	"fmt"

	"rstoredb/internal/errors"
	"rstoredb/internal/storage/mmapio"
)

// Pager resolves page numbers to byte slices of a single memory-mapped
// database file, growing the file to end exactly at each newly
// requested page. Page numbers are 1-based: 0 is reserved as the "no such
// row" sentinel (see RowLocator), so the pager never hands it out.
type Pager struct {
	file     *mmapio.File
	numPages uint32
}

// OpenPager opens (creating if absent) the database file at path and
// ensures it is at least one page long.
func OpenPager(path string) (*Pager, error) {
	f, err := mmapio.Open(path, PageSize)
	if err != nil {
		return nil, errors.IOError("opening pager file", err)
	}
	return &Pager{
		file:     f,
		numPages: uint32(f.Size() / PageSize),
	}, nil
}

// NumPages reports how many pages the backing file currently spans.
func (p *Pager) NumPages() uint32 {
	return p.numPages
}

func (p *Pager) growTo(pageID uint32) error {
	newSize := int64(pageID) * PageSize
	if err := p.file.Resize(newSize); err != nil {
		return errors.IOError("growing pager file", err)
	}
	p.numPages = pageID
	return nil
}

// GetPage returns the byte slice for pageID, growing the backing file
// if pageID has not been mapped yet. The returned slice aliases the
// pager's mapping and is invalidated by any later call that grows the
// file.
func (p *Pager) GetPage(pageID uint32) ([]byte, error) {
	if pageID == 0 {
		return nil, errors.NewStorageError("page id 0 is the reserved sentinel")
	}
	if pageID > MaxMappedPages {
		return nil, errors.NewStorageError(fmt.Sprintf("page id %d exceeds the %d page table limit", pageID, MaxMappedPages))
	}
	if pageID > p.numPages {
		if err := p.growTo(pageID); err != nil {
			return nil, err
		}
	}
	start := int64(pageID-1) * PageSize
	return p.file.Data()[start : start+PageSize], nil
}

// AllocatePage grows the file by exactly one page and returns the new
// page's id and zeroed contents.
func (p *Pager) AllocatePage() (uint32, []byte, error) {
	pageID := p.numPages + 1
	data, err := p.GetPage(pageID)
	if err != nil {
		return 0, nil, err
	}
	for i := range data {
		data[i] = 0
	}
	return pageID, data, nil
}

// FlushPage issues an asynchronous durability hint over a single page.
func (p *Pager) FlushPage(pageID uint32) error {
	// The mapping has no per-page msync primitive; msync operates on
	// whole pages regardless of the byte range requested, so flushing
	// just this page's slice is equivalent to and cheaper than a full
	// sync.
	start := int64(pageID-1) * PageSize
	data := p.file.Data()
	if start+PageSize > int64(len(data)) {
		return errors.NewStorageError(fmt.Sprintf("page id %d not mapped", pageID))
	}
	return mmapio.Msync(data[start:start+PageSize], mmapio.SyncAsync)
}

// Sync issues a synchronous durability hint over the whole mapping.
func (p *Pager) Sync() error {
	return p.file.Sync(mmapio.SyncFull)
}

// Close syncs and releases the mapping and file descriptor.
func (p *Pager) Close() error {
	if err := p.Sync(); err != nil {
		return err
	}
	return p.file.Close()
}
