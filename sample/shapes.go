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

package sample

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// kappa is the control point distance for approximating a quarter circle
// with a cubic Bézier curve.
const kappa = 0.5522847498

func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}

// triangle builds a triangular path.
func triangle(x1, y1, x2, y2, x3, y3 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(pt(x1, y1)).
		LineTo(pt(x2, y2)).
		LineTo(pt(x3, y3)).
		Close()
}

// rectangle builds an axis-aligned rectangle.
func rectangle(x1, y1, x2, y2 float64) *path.Data {
	return (&path.Data{}).
		MoveTo(pt(x1, y1)).
		LineTo(pt(x2, y1)).
		LineTo(pt(x2, y2)).
		LineTo(pt(x1, y2)).
		Close()
}

// star builds a self-intersecting five-pointed star.
func star(cx, cy, r float64) *path.Data {
	var pts [5]vec.Vec2
	for i := range pts {
		angle := float64(i)*2*math.Pi/5 - math.Pi/2
		pts[i] = pt(cx+r*math.Cos(angle), cy+r*math.Sin(angle))
	}
	return (&path.Data{}).
		MoveTo(pts[0]).
		LineTo(pts[2]).
		LineTo(pts[4]).
		LineTo(pts[1]).
		LineTo(pts[3]).
		Close()
}

// addCircle appends a circle made of four cubic arcs to p.
func addCircle(p *path.Data, cx, cy, r float64) *path.Data {
	k := r * kappa
	return p.
		MoveTo(pt(cx+r, cy)).
		CubeTo(pt(cx+r, cy-k), pt(cx+k, cy-r), pt(cx, cy-r)).
		CubeTo(pt(cx-k, cy-r), pt(cx-r, cy-k), pt(cx-r, cy)).
		CubeTo(pt(cx-r, cy+k), pt(cx-k, cy+r), pt(cx, cy+r)).
		CubeTo(pt(cx+k, cy+r), pt(cx+r, cy+k), pt(cx+r, cy)).
		Close()
}

// ring builds two concentric circles, meant to be filled even-odd.
func ring(cx, cy, outer, inner float64) *path.Data {
	return addCircle(addCircle(&path.Data{}, cx, cy, outer), cx, cy, inner)
}

// tally builds n vertical bars in groups of five, with a diagonal stroke
// across every full group.
func tally(x, y, h float64, n int) *path.Data {
	p := &path.Data{}
	const step = 6.0
	for i := 0; i < n; i++ {
		group := i / 5
		if i%5 == 4 {
			gx := x + float64(group)*5*step
			p.MoveTo(pt(gx-2, y+h)).LineTo(pt(gx+3*step+2, y))
			continue
		}
		bx := x + float64(group)*5*step + float64(i%5)*step
		p.MoveTo(pt(bx, y)).LineTo(pt(bx, y+h))
	}
	return p
}
