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
	"log/slog"
	"math"
	"sort"
	"sync"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// View shows a document as a vertical stack of pages, separated by a fixed
// gap and centred horizontally.
//
// Offsets and sizes are in logical pixels.  The zoom factor gives logical
// pixels per page unit, and the device scale gives device pixels per
// logical pixel.  Surfaces and bitmaps use device pixels.
//
// The methods of View are meant to be called from a single interactive
// goroutine.  Rendering happens on background goroutines.
type View struct {
	mu    sync.Mutex
	opts  options
	log   *slog.Logger
	sched *Scheduler
	dir   *Directory

	src    PageSource
	env    *entryEnv
	widths []float64
	// cum[i] is the total height of the pages before page i, in page units.
	cum  []float64
	maxW float64

	offset      vec.Vec2
	size        vec.Vec2
	zoom        float64
	deviceScale float64
}

// NewView returns a View without a document.
func NewView(opts ...Option) *View {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = Logger()
	}

	v := &View{
		opts:        o,
		log:         logger,
		sched:       NewScheduler(o.debounce, logger),
		zoom:        1,
		deviceScale: 1,
	}
	v.dir = NewDirectory(func(index int) *CacheEntry {
		return newCacheEntry(index, v.env)
	})
	return v
}

// SetDocument replaces the document.  All cached pages of the previous
// document are dropped and their jobs cancelled.  A nil source unloads the
// document.
func (v *View) SetDocument(src PageSource) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.dir.Clear()
	v.src = src
	v.widths, v.cum, v.maxW = nil, nil, 0
	if src == nil {
		v.env = nil
		return
	}

	n := src.PageCount()
	v.widths = make([]float64, n)
	v.cum = make([]float64, n+1)
	for i := range n {
		w, h := src.PageSize(i)
		v.widths[i] = w
		v.cum[i+1] = v.cum[i] + h
		v.maxW = max(v.maxW, w)
	}
	v.env = &entryEnv{
		src:        src,
		sched:      v.sched,
		tolerance:  v.opts.tolerance,
		background: v.opts.background,
		invalidate: v.opts.invalidate,
		log:        v.log,
	}
	v.log.Debug("document loaded", "pages", n)
	v.updateLocked()
}

// PageCount returns the number of pages of the current document.
func (v *View) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.widths)
}

// SetViewport sets the scroll offset, the viewport size and the zoom
// factor.  Entries are created and evicted to match the new set of visible
// pages, and renders are enqueued for pages whose request changed.
// Without a document only the viewport state is updated.
func (v *View) SetViewport(offset, size vec.Vec2, zoom float64) error {
	if !(zoom > 0) || !(size.X >= 0) || !(size.Y >= 0) ||
		math.IsInf(zoom, 0) || !finite(offset) || !finite(size) {
		return ErrInvalidViewport
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.offset, v.size, v.zoom = offset, size, zoom
	v.updateLocked()
	return nil
}

// SetDeviceScale sets the number of device pixels per logical pixel.
func (v *View) SetDeviceScale(s float64) error {
	if !(s > 0) || math.IsInf(s, 0) {
		return ErrInvalidViewport
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.deviceScale = s
	v.updateLocked()
	return nil
}

func finite(p vec.Vec2) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// updateLocked brings the directory in line with the viewport and enqueues
// the renders needed.
func (v *View) updateLocked() {
	if v.src == nil {
		return
	}
	pages := v.pagesLocked(v.opts.prefetch)
	v.dir.Sync(pages)
	for _, p := range pages {
		v.dir.Get(p.Index).EnqueueRender(p.Request)
	}
}

// VisiblePages returns the pages intersecting the viewport, in increasing
// order.  If the viewport lies above the first page, the first page is
// returned; if it lies below the last page, the last page is returned.
// The list is empty if there is no document, the document has no pages,
// or the viewport has zero area.
func (v *View) VisiblePages() []VisiblePage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pagesLocked(0)
}

// pageTop returns the top of page i in logical pixels.
func (v *View) pageTop(i int) float64 {
	return v.cum[i]*v.zoom + float64(i)*v.opts.gap
}

// pageBottom returns the bottom of page i in logical pixels.
func (v *View) pageBottom(i int) float64 {
	return v.cum[i+1]*v.zoom + float64(i)*v.opts.gap
}

// pagesLocked lists the pages intersecting the viewport, extended by
// margin logical pixels at the top and bottom.
func (v *View) pagesLocked(margin float64) []VisiblePage {
	n := len(v.widths)
	if n == 0 || v.size.X <= 0 || v.size.Y <= 0 {
		return nil
	}
	top := v.offset.Y - margin
	bottom := v.offset.Y + v.size.Y + margin

	first := sort.Search(n, func(i int) bool {
		return v.pageBottom(i) > top
	})
	if first == n {
		first = n - 1
	}
	last := first
	for last+1 < n && v.pageTop(last+1) < bottom {
		last++
	}

	res := make([]VisiblePage, 0, last-first+1)
	for i := first; i <= last; i++ {
		res = append(res, v.pageLocked(i))
	}
	return res
}

// pageLocked computes the request and target rectangle of page i.
func (v *View) pageLocked(i int) VisiblePage {
	z, d := v.zoom, v.deviceScale
	w, h := v.widths[i], v.cum[i+1]-v.cum[i]
	left := (v.maxW - w) * z / 2
	top := v.pageTop(i)

	x0, x1 := clipSpan((v.offset.X-left)/z, (v.offset.X+v.size.X-left)/z, w)
	y0, y1 := clipSpan((v.offset.Y-top)/z, (v.offset.Y+v.size.Y-top)/z, h)
	vis := rect.Rect{LLx: x0, LLy: y0, URx: x1, URy: y1}

	s := z * d
	tx := (left + x0*z - v.offset.X) * d
	ty := (top + y0*z - v.offset.Y) * d
	return VisiblePage{
		Index:   i,
		Request: requestFor(i, vis, s),
		Target: rect.Rect{
			LLx: tx,
			LLy: ty,
			URx: tx + (x1-x0)*s,
			URy: ty + (y1-y0)*s,
		},
	}
}

// clipSpan intersects [a, b] with [0, length].  If the intersection is
// empty, the whole of [0, length] is used, so that pages kept for clamping
// or prefetching are rendered completely.
func clipSpan(a, b, length float64) (float64, float64) {
	a = max(a, 0)
	b = min(b, length)
	if b <= a {
		return 0, length
	}
	return a, b
}

// Paint draws all visible pages onto s.
func (v *View) Paint(s Surface) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.src == nil {
		return
	}
	for _, p := range v.pagesLocked(0) {
		v.dir.Get(p.Index).Paint(s, p.Target, p.Request)
	}
}

// Entry returns the cache entry of page index, creating it if needed.
func (v *View) Entry(index int) (*CacheEntry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.src == nil {
		return nil, ErrNoDocument
	}
	if index < 0 || index >= len(v.widths) {
		return nil, ErrPageOutOfRange
	}
	return v.dir.Get(index), nil
}

// CachedPages returns the page indices which currently have an entry.
func (v *View) CachedPages() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.dir.Indices()
}

// DocumentSize returns the size of the scrollable area in logical pixels.
func (v *View) DocumentSize() vec.Vec2 {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := len(v.widths)
	if n == 0 {
		return vec.Vec2{}
	}
	return vec.Vec2{
		X: v.maxW * v.zoom,
		Y: v.pageBottom(n - 1),
	}
}

// Stats returns the counters of the render scheduler.
func (v *View) Stats() SchedulerStats {
	return v.sched.Stats()
}

// Wait blocks until no render job is outstanding.
func (v *View) Wait() {
	v.sched.Wait()
}

// Close drops all cached pages, cancels all render jobs and waits for the
// workers to finish.  The View cannot be used afterwards.
func (v *View) Close() {
	v.mu.Lock()
	v.dir.Clear()
	v.mu.Unlock()
	v.sched.Close()
}
