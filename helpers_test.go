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
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"seehuhn.de/go/geom/rect"
)

// renderCall records one call to fakeSource.Render.
type renderCall struct {
	page    int
	visible rect.Rect
	scaleX  float64
	scaleY  float64
}

// fakeSource is a PageSource with pages of fixed sizes, which records
// every call to Render.
type fakeSource struct {
	sizes [][2]float64

	// delay is the time each Render call takes.
	delay time.Duration

	// gate, if not nil, blocks Render until it is closed.
	gate chan struct{}

	mu    sync.Mutex
	calls []renderCall
	fail  map[int]error

	active    atomic.Int32
	maxActive atomic.Int32
}

func newFakeSource(n int, w, h float64) *fakeSource {
	s := &fakeSource{fail: make(map[int]error)}
	for range n {
		s.sizes = append(s.sizes, [2]float64{w, h})
	}
	return s
}

func (s *fakeSource) PageCount() int {
	return len(s.sizes)
}

func (s *fakeSource) PageSize(i int) (float64, float64) {
	return s.sizes[i][0], s.sizes[i][1]
}

func (s *fakeSource) Render(ctx context.Context, page int, vis rect.Rect, sx, sy float64) (image.Image, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		m := s.maxActive.Load()
		if n <= m || s.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, renderCall{page: page, visible: vis, scaleX: sx, scaleY: sy})
	err := s.fail[page]
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if err != nil {
		return nil, err
	}

	w := int(math.Ceil((vis.URx - vis.LLx) * sx))
	h := int(math.Ceil((vis.URy - vis.LLy) * sy))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{R: uint8(40 * page), G: 0x80, B: 0x40, A: 0xff}
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img, nil
}

// setGate makes Render block until gate is closed.  A nil gate lets
// Render run freely.
func (s *fakeSource) setGate(gate chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = gate
}

func (s *fakeSource) setFail(page int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, page)
	} else {
		s.fail[page] = err
	}
}

// callsFor returns the recorded Render calls for page.
func (s *fakeSource) callsFor(page int) []renderCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []renderCall
	for _, c := range s.calls {
		if c.page == page {
			res = append(res, c)
		}
	}
	return res
}

func (s *fakeSource) numCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// testEnv returns an entry environment for src, backed by a fresh
// scheduler.
func testEnv(src PageSource, debounce time.Duration) *entryEnv {
	sched := NewScheduler(debounce, nil)
	return &entryEnv{
		src:        src,
		sched:      sched,
		tolerance:  DefaultTolerance,
		background: color.White,
		log:        Logger(),
	}
}

// fullPage returns the request for rendering all of a w×h page at scale s.
func fullPage(page int, w, h, s float64) RenderRequest {
	return requestFor(page, rect.Rect{URx: w, URy: h}, s)
}

// nilSource renders every page as a nil image.
type nilSource struct{}

func (nilSource) PageCount() int                  { return 1 }
func (nilSource) PageSize(int) (float64, float64) { return 10, 10 }
func (nilSource) Render(context.Context, int, rect.Rect, float64, float64) (image.Image, error) {
	return nil, nil
}
