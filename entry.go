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
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"seehuhn.de/go/geom/rect"
)

// EntryState describes what a CacheEntry currently holds.
type EntryState int

const (
	StateEmpty     EntryState = iota // nothing rendered, nothing pending
	StateRendering                   // a job is outstanding
	StateCommitted                   // a bitmap is available, nothing pending
	StateEvicted                     // removed from the directory
)

func (s EntryState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRendering:
		return "rendering"
	case StateCommitted:
		return "committed"
	case StateEvicted:
		return "evicted"
	default:
		return "invalid"
	}
}

// entryEnv holds what all entries of a document share.
type entryEnv struct {
	src        PageSource
	sched      *Scheduler
	tolerance  float64
	background color.Color
	invalidate func()
	log        *slog.Logger
}

// CacheEntry holds the rendered bitmap of one page.
//
// The committed bitmap is always stored together with the request which
// produced it.  The pair is written by worker goroutines and read by
// Paint; both sides hold the entry's lock.
type CacheEntry struct {
	index int
	env   *entryEnv

	mu        sync.Mutex
	bitmap    image.Image
	committed RenderRequest
	pending   *Job

	// failed is the last request the page source could not render.  It is
	// not retried until a different request comes in.
	failed    RenderRequest
	hasFailed bool

	evicted bool
}

func newCacheEntry(index int, env *entryEnv) *CacheEntry {
	return &CacheEntry{index: index, env: env}
}

// Index returns the page index of the entry.
func (e *CacheEntry) Index() int {
	return e.index
}

// State returns the current state of the entry.
func (e *CacheEntry) State() EntryState {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.evicted:
		return StateEvicted
	case e.pending != nil:
		return StateRendering
	case e.bitmap != nil:
		return StateCommitted
	default:
		return StateEmpty
	}
}

// Committed returns the last rendered bitmap together with its request.
func (e *CacheEntry) Committed() (image.Image, RenderRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bitmap, e.committed, e.bitmap != nil
}

// Pending returns the outstanding job, or nil.
func (e *CacheEntry) Pending() *Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// Paint draws the page into target on s.
//
// If the committed bitmap matches req it is drawn as is.  If it was
// rendered for a different request it is stretched to approximate req
// while a new render is enqueued.  Without a bitmap the target is filled
// with the background colour.
func (e *CacheEntry) Paint(s Surface, target rect.Rect, req RenderRequest) {
	if req.IsEmpty() {
		return
	}

	e.mu.Lock()
	bm, old := e.bitmap, e.committed
	e.mu.Unlock()

	switch {
	case bm == nil:
		s.FillRect(target, e.env.background)
		e.EnqueueRender(req)

	case old.Equal(req, e.env.tolerance):
		b := bm.Bounds()
		s.PushClip(target)
		s.DrawImage(bm, rect.Rect{
			LLx: target.LLx,
			LLy: target.LLy,
			URx: target.LLx + float64(b.Dx()),
			URy: target.LLy + float64(b.Dy()),
		})
		s.Pop()

	default:
		b := bm.Bounds()
		s.FillRect(target, e.env.background)
		s.PushClip(target)
		s.PushTransform(stretch(old, req, target))
		s.DrawImage(bm, rect.Rect{URx: float64(b.Dx()), URy: float64(b.Dy())})
		s.Pop()
		s.Pop()
		e.EnqueueRender(req)
	}
}

// EnqueueRender schedules a render for req, cancelling any job for a
// different request.  It does nothing if req is already pending or
// committed, if req is the request which failed last, or if the entry has
// been evicted.  The return value tells whether a new job was started.
func (e *CacheEntry) EnqueueRender(req RenderRequest) bool {
	if req.IsEmpty() {
		return false
	}
	eps := e.env.tolerance

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.evicted {
		return false
	}
	if e.pending != nil && e.pending.Request().Equal(req, eps) {
		return false
	}
	if e.bitmap != nil && e.committed.Equal(req, eps) {
		// back to what we already have
		if e.pending != nil {
			e.pending.Cancel()
			e.pending = nil
		}
		return false
	}
	if e.hasFailed && e.failed.Equal(req, eps) {
		return false
	}
	e.hasFailed = false

	if e.pending != nil {
		e.pending.Cancel()
	}
	e.pending = e.env.sched.Schedule(req, e.decoder(req), e.finish)
	e.env.log.Debug("render scheduled", "page", e.index, "visible", req.Visible, "scale", req.ScaleX())
	return true
}

func (e *CacheEntry) decoder(req RenderRequest) DecodeFunc {
	src := e.env.src
	return func(ctx context.Context) (image.Image, error) {
		img, err := src.Render(ctx, e.index, req.Visible, req.ScaleX(), req.ScaleY())
		if err == nil && img == nil {
			err = errNoImage
		}
		return img, err
	}
}

var errNoImage = errors.New("page source returned no image")

// finish commits the result of j, unless j has been superseded.
func (e *CacheEntry) finish(j *Job, img image.Image, err error) bool {
	e.mu.Lock()
	if e.pending != j || j.Cancelled() {
		e.mu.Unlock()
		return false
	}
	e.pending = nil
	if err != nil {
		e.failed = j.Request()
		e.hasFailed = true
		e.mu.Unlock()
		return false
	}
	e.bitmap = img
	e.committed = j.Request()
	e.mu.Unlock()

	e.env.log.Debug("render committed", "page", e.index)
	if e.env.invalidate != nil {
		e.env.invalidate()
	}
	return true
}

// Evict cancels the outstanding job and marks the entry as dropped.
// An evicted entry never schedules new jobs.
func (e *CacheEntry) Evict() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evicted = true
	if e.pending != nil {
		e.pending.Cancel()
		e.pending = nil
	}
}
