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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pages(indices ...int) []VisiblePage {
	res := make([]VisiblePage, len(indices))
	for i, idx := range indices {
		res[i] = VisiblePage{Index: idx}
	}
	return res
}

func newTestDirectory(t *testing.T) *Directory {
	env := testEnv(newFakeSource(20, 100, 100), time.Hour)
	t.Cleanup(env.sched.Close)
	return NewDirectory(func(i int) *CacheEntry { return newCacheEntry(i, env) })
}

func TestDirectorySync(t *testing.T) {
	d := newTestDirectory(t)

	d.Sync(pages(3, 4, 5))
	require.Equal(t, []int{3, 4, 5}, d.Indices())
	e3, _ := d.Lookup(3)
	e4, _ := d.Lookup(4)
	e5, _ := d.Lookup(5)

	d.Sync(pages(4, 5, 6))
	require.Equal(t, []int{4, 5, 6}, d.Indices())

	got4, ok := d.Lookup(4)
	require.True(t, ok)
	require.Same(t, e4, got4)
	got5, _ := d.Lookup(5)
	require.Same(t, e5, got5)

	require.Equal(t, StateEvicted, e3.State())
	_, ok = d.Lookup(3)
	require.False(t, ok)

	e6, ok := d.Lookup(6)
	require.True(t, ok)
	require.Equal(t, StateEmpty, e6.State())
}

func TestDirectorySyncUnsorted(t *testing.T) {
	d := newTestDirectory(t)
	d.Sync(pages(7, 2, 7, 5, 2))
	require.Equal(t, []int{2, 5, 7}, d.Indices())
	require.Equal(t, 3, d.Len())
}

func TestDirectorySyncEmpty(t *testing.T) {
	d := newTestDirectory(t)
	d.Sync(pages(1, 2))
	e1, _ := d.Lookup(1)
	e2, _ := d.Lookup(2)

	d.Sync(nil)
	require.Zero(t, d.Len())
	require.Equal(t, StateEvicted, e1.State())
	require.Equal(t, StateEvicted, e2.State())
}

func TestDirectorySyncEvictsPending(t *testing.T) {
	d := newTestDirectory(t)
	d.Sync(pages(0, 1))
	e0, _ := d.Lookup(0)
	require.True(t, e0.EnqueueRender(fullPage(0, 100, 100, 1)))
	j := e0.Pending()

	d.Sync(pages(1))
	require.True(t, j.Cancelled())
}

func TestDirectoryGet(t *testing.T) {
	d := newTestDirectory(t)
	d.Sync(pages(2, 8))

	e5 := d.Get(5)
	require.Equal(t, 5, e5.Index())
	require.Equal(t, []int{2, 5, 8}, d.Indices())
	require.Same(t, e5, d.Get(5))

	d.Get(0)
	d.Get(9)
	require.Equal(t, []int{0, 2, 5, 8, 9}, d.Indices())
}

func TestDirectoryFreshAfterEviction(t *testing.T) {
	d := newTestDirectory(t)
	d.Sync(pages(1))
	old, _ := d.Lookup(1)

	d.Sync(pages(2))
	d.Sync(pages(1))
	cur, _ := d.Lookup(1)
	require.NotSame(t, old, cur)
	require.Equal(t, StateEmpty, cur.State())
	require.Equal(t, StateEvicted, old.State())
}

func TestDirectoryClear(t *testing.T) {
	d := newTestDirectory(t)
	d.Sync(pages(1, 2, 3))
	e2, _ := d.Lookup(2)
	d.Clear()
	require.Zero(t, d.Len())
	require.Empty(t, d.Indices())
	require.Equal(t, StateEvicted, e2.State())
}
