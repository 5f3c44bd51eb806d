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
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// DefaultTolerance is the largest difference between two numeric fields of
// a RenderRequest which is still considered equal.
const DefaultTolerance = 0.01

// RenderRequest describes how to rasterise one page.
type RenderRequest struct {
	// Page is the page index.
	Page int

	// Visible is the part of the page to render, in page units with the
	// origin at the top-left page corner and y pointing down.
	Visible rect.Rect

	// Transform maps page units to bitmap pixels.  It is a scale followed
	// by the translation which moves the top-left corner of Visible to the
	// bitmap origin.
	Transform matrix.Matrix
}

// ScaleX returns the horizontal scale factor in pixels per page unit.
func (r RenderRequest) ScaleX() float64 { return r.Transform[0] }

// ScaleY returns the vertical scale factor in pixels per page unit.
func (r RenderRequest) ScaleY() float64 { return r.Transform[3] }

// Equal reports whether r and other describe the same rendering, up to
// differences of at most eps in every numeric field.
func (r RenderRequest) Equal(other RenderRequest, eps float64) bool {
	return r.Page == other.Page &&
		rectNearlyEqual(r.Visible, other.Visible, eps) &&
		matrixNearlyEqual(r.Transform, other.Transform, eps)
}

// IsEmpty reports whether the request covers no pixels.
func (r RenderRequest) IsEmpty() bool {
	w := (r.Visible.URx - r.Visible.LLx) * r.ScaleX()
	h := (r.Visible.URy - r.Visible.LLy) * r.ScaleY()
	return !(w > 0 && h > 0)
}

func nearlyEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func rectNearlyEqual(a, b rect.Rect, eps float64) bool {
	return nearlyEqual(a.LLx, b.LLx, eps) &&
		nearlyEqual(a.LLy, b.LLy, eps) &&
		nearlyEqual(a.URx, b.URx, eps) &&
		nearlyEqual(a.URy, b.URy, eps)
}

func matrixNearlyEqual(a, b matrix.Matrix, eps float64) bool {
	for i := range a {
		if !nearlyEqual(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

// requestFor builds the request for rendering the part vis of page at the
// given scale.
func requestFor(page int, vis rect.Rect, scale float64) RenderRequest {
	return RenderRequest{
		Page:      page,
		Visible:   vis,
		Transform: matrix.Matrix{scale, 0, 0, scale, -vis.LLx * scale, -vis.LLy * scale},
	}
}

// stretch returns the matrix which maps pixels of a bitmap rendered for
// old onto the device rectangle target of the request cur.
func stretch(old, cur RenderRequest, target rect.Rect) matrix.Matrix {
	sx := cur.ScaleX() / old.ScaleX()
	sy := cur.ScaleY() / old.ScaleY()

	// the origin of the old bitmap is the top-left corner of old.Visible
	ox := cur.Transform[0]*old.Visible.LLx + cur.Transform[4]
	oy := cur.Transform[3]*old.Visible.LLy + cur.Transform[5]
	return matrix.Matrix{sx, 0, 0, sy, target.LLx + ox, target.LLy + oy}
}

// VisiblePage is one entry of the visible page list computed by a View.
type VisiblePage struct {
	Index   int
	Request RenderRequest

	// Target is where the bitmap for Request goes, in surface pixels.
	Target rect.Rect
}
