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
	"fmt"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/vector"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// BenchmarkCanvasPage fills a page-sized canvas with an "O" shape, the
// typical work done for one page bitmap.
func BenchmarkCanvasPage(b *testing.B) {
	for _, size := range []int{200, 800, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			c := NewCanvas(size, size, color.White)
			s := float64(size)
			o := makeO(s/2, s/2, s*0.45, s*0.30)

			b.ReportAllocs()
			for b.Loop() {
				c.Fill(o, EvenOdd, color.Black)
			}
		})
	}
}

// BenchmarkVectorO is the same workload with x/image/vector, for comparison.
func BenchmarkVectorO(b *testing.B) {
	for _, size := range []int{200, 800, 2000} {
		b.Run(fmt.Sprintf("%dx%d", size, size), func(b *testing.B) {
			r := vector.NewRasterizer(size, size)
			dst := image.NewAlpha(image.Rect(0, 0, size, size))
			src := image.NewUniform(color.Alpha{255})
			s := float32(size)

			b.ReportAllocs()
			for b.Loop() {
				r.Reset(size, size)
				addCircleToVector(r, s/2, s/2, s*0.45, false)
				addCircleToVector(r, s/2, s/2, s*0.30, true)
				r.Draw(dst, dst.Bounds(), src, image.Point{})
			}
		})
	}
}

// makeO builds two concentric circles, the inner one reversed.
func makeO(cx, cy, outer, inner float64) *path.Data {
	p := &path.Data{}
	addCircle(p, cx, cy, outer, false)
	addCircle(p, cx, cy, inner, true)
	return p
}

func addCircle(p *path.Data, cx, cy, r float64, clockwise bool) {
	const k = 0.5522847498
	kr := k * r
	s := 1.0
	if clockwise {
		s = -1
	}
	p.MoveTo(vec.Vec2{X: cx, Y: cy - r})
	p.CubeTo(vec.Vec2{X: cx + s*kr, Y: cy - r}, vec.Vec2{X: cx + s*r, Y: cy - kr}, vec.Vec2{X: cx + s*r, Y: cy})
	p.CubeTo(vec.Vec2{X: cx + s*r, Y: cy + kr}, vec.Vec2{X: cx + s*kr, Y: cy + r}, vec.Vec2{X: cx, Y: cy + r})
	p.CubeTo(vec.Vec2{X: cx - s*kr, Y: cy + r}, vec.Vec2{X: cx - s*r, Y: cy + kr}, vec.Vec2{X: cx - s*r, Y: cy})
	p.CubeTo(vec.Vec2{X: cx - s*r, Y: cy - kr}, vec.Vec2{X: cx - s*kr, Y: cy - r}, vec.Vec2{X: cx, Y: cy - r})
	p.Close()
}

func addCircleToVector(r *vector.Rasterizer, cx, cy, radius float32, clockwise bool) {
	const k = float32(0.5522847498)
	kr := k * radius
	s := float32(1)
	if clockwise {
		s = -1
	}
	r.MoveTo(cx, cy-radius)
	r.CubeTo(cx+s*kr, cy-radius, cx+s*radius, cy-kr, cx+s*radius, cy)
	r.CubeTo(cx+s*radius, cy+kr, cx+s*kr, cy+radius, cx, cy+radius)
	r.CubeTo(cx-s*kr, cy+radius, cx-s*radius, cy+kr, cx-s*radius, cy)
	r.CubeTo(cx-s*radius, cy-kr, cx-s*kr, cy-radius, cx, cy-radius)
	r.ClosePath()
}
