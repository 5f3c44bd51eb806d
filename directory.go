// seehuhn.de/go/pageview - render cache for paginated documents
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package pageview

import (
	"cmp"
	"slices"
)

// Directory keeps one CacheEntry per visible page, sorted by page index.
//
// A Directory is owned by the goroutine which drives the View and is not
// safe for concurrent use.
type Directory struct {
	entries []*CacheEntry
	create  func(index int) *CacheEntry
}

// NewDirectory returns an empty directory which uses create to make new
// entries.
func NewDirectory(create func(index int) *CacheEntry) *Directory {
	return &Directory{create: create}
}

func (d *Directory) search(index int) (int, bool) {
	return slices.BinarySearchFunc(d.entries, index, func(e *CacheEntry, i int) int {
		return cmp.Compare(e.index, i)
	})
}

// Sync makes the set of entries equal to the set of page indices in pages.
// Entries for pages which are no longer listed are evicted, which cancels
// their jobs.  Entries for new pages are created empty; no rendering is
// started.  Entries for pages which stay visible are kept as they are.
func (d *Directory) Sync(pages []VisiblePage) {
	want := make([]int, len(pages))
	for i, p := range pages {
		want[i] = p.Index
	}
	slices.Sort(want)
	want = slices.Compact(want)

	next := make([]*CacheEntry, 0, len(want))
	i := 0
	for _, idx := range want {
		for i < len(d.entries) && d.entries[i].index < idx {
			d.entries[i].Evict()
			i++
		}
		if i < len(d.entries) && d.entries[i].index == idx {
			next = append(next, d.entries[i])
			i++
			continue
		}
		next = append(next, d.create(idx))
	}
	for ; i < len(d.entries); i++ {
		d.entries[i].Evict()
	}
	d.entries = next
}

// Get returns the entry for page index, creating it if needed.
func (d *Directory) Get(index int) *CacheEntry {
	pos, found := d.search(index)
	if found {
		return d.entries[pos]
	}
	e := d.create(index)
	d.entries = slices.Insert(d.entries, pos, e)
	return e
}

// Lookup returns the entry for page index, if there is one.
func (d *Directory) Lookup(index int) (*CacheEntry, bool) {
	pos, found := d.search(index)
	if !found {
		return nil, false
	}
	return d.entries[pos], true
}

// Indices returns the page indices of all entries, in increasing order.
func (d *Directory) Indices() []int {
	res := make([]int, len(d.entries))
	for i, e := range d.entries {
		res[i] = e.index
	}
	return res
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	return len(d.entries)
}

// Clear evicts all entries.
func (d *Directory) Clear() {
	for _, e := range d.entries {
		e.Evict()
	}
	d.entries = nil
}
