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

package raster

import (
	"image/color"
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// render collects the coverage of p into a w×h buffer.
func render(p *path.Data, rule FillRule, ctm matrix.Matrix, w, h, threshold int) []float32 {
	r := NewRasteriser(rect.Rect{URx: float64(w), URy: float64(h)})
	r.smallPathThreshold = threshold
	r.CTM = ctm
	buf := make([]float32, w*h)
	r.Fill(p, rule, func(y, xMin int, coverage []float32) {
		copy(buf[y*w+xMin:], coverage)
	})
	return buf
}

func sum(buf []float32) float64 {
	var s float64
	for _, c := range buf {
		s += float64(c)
	}
	return s
}

func box(x0, y0, x1, y1 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(vec.Vec2{X: x0, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y0}).
		LineTo(vec.Vec2{X: x1, Y: y1}).
		LineTo(vec.Vec2{X: x0, Y: y1}).
		Close()
}

// ring is a square with a square hole, both drawn in the same direction.
func ring() *path.Data {
	p := box(4, 4, 28, 28)
	p.MoveTo(vec.Vec2{X: 10, Y: 10}).
		LineTo(vec.Vec2{X: 22, Y: 10}).
		LineTo(vec.Vec2{X: 22, Y: 22}).
		LineTo(vec.Vec2{X: 10, Y: 22}).
		Close()
	return p
}

// TestTriangleCoverage checks exact coverage values for a thin triangle
// with diagonal edge y = x/10.  Pixel x has coverage (2x+1)/20.
func TestTriangleCoverage(t *testing.T) {
	tri := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 1}).
		Close()

	for _, threshold := range []int{1 << 30, 0} {
		cov := render(tri, NonZero, matrix.Identity, 10, 1, threshold)
		for x := range 10 {
			want := float32(2*x+1) / 20
			if math.Abs(float64(cov[x]-want)) > 1e-6 {
				t.Errorf("threshold %d, pixel %d: got %.4f, want %.4f", threshold, x, cov[x], want)
			}
		}
	}
}

func TestFillRules(t *testing.T) {
	cases := []struct {
		name string
		rule FillRule
		hole float32 // coverage at the centre of the ring
		area float64
	}{
		{"nonzero", NonZero, 1, 24 * 24},
		{"evenodd", EvenOdd, 0, 24*24 - 12*12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cov := render(ring(), tc.rule, matrix.Identity, 32, 32, smallPathThreshold)
			if got := cov[16*32+16]; got != tc.hole {
				t.Errorf("centre coverage = %g, want %g", got, tc.hole)
			}
			if got := sum(cov); math.Abs(got-tc.area) > 1e-3 {
				t.Errorf("area = %g, want %g", got, tc.area)
			}
		})
	}
}

// TestApproachesAgree renders the same shapes with both buffer strategies.
func TestApproachesAgree(t *testing.T) {
	shapes := map[string]*path.Data{
		"box":     box(1.5, 2.25, 20.75, 30.5),
		"ring":    ring(),
		"rotated": box(8, 8, 24, 24),
	}
	ctms := map[string]matrix.Matrix{
		"box":     matrix.Identity,
		"ring":    matrix.Identity,
		"rotated": {0.8, 0.6, -0.6, 0.8, 12, -4},
	}
	for name, p := range shapes {
		a := render(p, NonZero, ctms[name], 32, 32, 1<<30)
		b := render(p, NonZero, ctms[name], 32, 32, 0)
		for i := range a {
			if math.Abs(float64(a[i]-b[i])) > 1e-5 {
				t.Errorf("%s: pixel %d differs: %g vs %g", name, i, a[i], b[i])
				break
			}
		}
	}
}

func TestClip(t *testing.T) {
	cov := render(box(-10, -10, 50, 50), NonZero, matrix.Identity, 8, 8, smallPathThreshold)
	for i, c := range cov {
		if c != 1 {
			t.Fatalf("pixel %d: coverage %g, want 1", i, c)
		}
	}
}

func TestCurveArea(t *testing.T) {
	// A circle of radius 10 made from four cubic arcs.
	const k = 0.5522847498
	const r = 10.0
	c := vec.Vec2{X: 16, Y: 16}
	p := (&path.Data{}).MoveTo(vec.Vec2{X: c.X, Y: c.Y - r})
	p.CubeTo(vec.Vec2{X: c.X + k*r, Y: c.Y - r}, vec.Vec2{X: c.X + r, Y: c.Y - k*r}, vec.Vec2{X: c.X + r, Y: c.Y})
	p.CubeTo(vec.Vec2{X: c.X + r, Y: c.Y + k*r}, vec.Vec2{X: c.X + k*r, Y: c.Y + r}, vec.Vec2{X: c.X, Y: c.Y + r})
	p.CubeTo(vec.Vec2{X: c.X - k*r, Y: c.Y + r}, vec.Vec2{X: c.X - r, Y: c.Y + k*r}, vec.Vec2{X: c.X - r, Y: c.Y})
	p.CubeTo(vec.Vec2{X: c.X - r, Y: c.Y - k*r}, vec.Vec2{X: c.X - k*r, Y: c.Y - r}, vec.Vec2{X: c.X, Y: c.Y - r})
	p.Close()

	got := sum(render(p, NonZero, matrix.Identity, 32, 32, smallPathThreshold))
	want := math.Pi * r * r
	if math.Abs(got-want)/want > 0.01 {
		t.Errorf("area = %g, want %g", got, want)
	}
}

func TestStrokeHairline(t *testing.T) {
	line := (&path.Data{}).
		MoveTo(vec.Vec2{X: 2, Y: 8.5}).
		LineTo(vec.Vec2{X: 14, Y: 8.5})

	r := NewRasteriser(rect.Rect{URx: 16, URy: 16})
	buf := make([]float32, 16*16)
	r.Stroke(line, 0.1, func(y, xMin int, coverage []float32) {
		copy(buf[y*16+xMin:], coverage)
	})

	// widened to one pixel, extended by half a pixel at both ends
	if got := buf[8*16+8]; math.Abs(float64(got)-1) > 1e-5 {
		t.Errorf("coverage on the line = %g, want 1", got)
	}
	if got := buf[3*16+8]; got != 0 {
		t.Errorf("coverage off the line = %g, want 0", got)
	}
	if got := sum(buf); math.Abs(got-13) > 1e-3 {
		t.Errorf("stroke area = %g, want 13", got)
	}
}

func TestCanvasFill(t *testing.T) {
	c := NewCanvas(8, 8, color.White)
	c.CTM = matrix.Matrix{2, 0, 0, 2, 0, 0}
	c.Fill(box(0, 0, 2, 2), NonZero, color.RGBA{R: 255, A: 255})

	if got := c.Img.RGBAAt(1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("inside: got %v", got)
	}
	if got := c.Img.RGBAAt(6, 6); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("outside: got %v", got)
	}
}

func TestCanvasHalfCoverage(t *testing.T) {
	c := NewCanvas(2, 1, color.White)
	c.Fill(box(0, 0, 0.5, 1), NonZero, color.Black)

	got := c.Img.RGBAAt(0, 0)
	if got.R < 126 || got.R > 129 || got.A != 255 {
		t.Errorf("half covered pixel: got %v", got)
	}
}
