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
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// ImageSurface is a Surface which paints into an RGBA image.
//
// Stretched images are resampled with Interp.  Transformations are
// expected to be axis-aligned; rectangles are mapped to the bounding box
// of their transformed corners.
type ImageSurface struct {
	Img    *image.RGBA
	Interp draw.Transformer

	cur   surfaceState
	stack []surfaceState
}

type surfaceState struct {
	clip image.Rectangle
	ctm  matrix.Matrix
}

// NewImageSurface returns a surface which paints into img, using bilinear
// interpolation for stretched images.
func NewImageSurface(img *image.RGBA) *ImageSurface {
	return &ImageSurface{
		Img:    img,
		Interp: draw.BiLinear,
		cur: surfaceState{
			clip: img.Bounds(),
			ctm:  matrix.Identity,
		},
	}
}

func (s *ImageSurface) FillRect(r rect.Rect, c color.Color) {
	box := s.deviceBox(r).Intersect(s.cur.clip)
	if box.Empty() {
		return
	}
	draw.Draw(s.Img, box, image.NewUniform(c), image.Point{}, draw.Src)
}

func (s *ImageSurface) DrawImage(img image.Image, dst rect.Rect) {
	b := img.Bounds()
	if b.Empty() || s.cur.clip.Empty() {
		return
	}

	// image pixels -> dst -> device
	sx := (dst.URx - dst.LLx) / float64(b.Dx())
	sy := (dst.URy - dst.LLy) / float64(b.Dy())
	m := concat(matrix.Matrix{
		sx, 0, 0, sy,
		dst.LLx - sx*float64(b.Min.X),
		dst.LLy - sy*float64(b.Min.Y),
	}, s.cur.ctm)

	clipped := s.Img.SubImage(s.cur.clip).(*image.RGBA)
	if isTranslation(m) {
		off := image.Pt(int(math.Round(m[4])), int(math.Round(m[5])))
		r := b.Add(off)
		draw.Draw(clipped, r, img, b.Min, draw.Over)
		return
	}
	aff := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
	s.Interp.Transform(clipped, aff, img, b, draw.Over, nil)
}

func (s *ImageSurface) PushClip(r rect.Rect) {
	s.stack = append(s.stack, s.cur)
	s.cur.clip = s.cur.clip.Intersect(s.deviceBox(r))
}

func (s *ImageSurface) PushTransform(m matrix.Matrix) {
	s.stack = append(s.stack, s.cur)
	s.cur.ctm = concat(m, s.cur.ctm)
}

func (s *ImageSurface) Pop() {
	n := len(s.stack)
	if n == 0 {
		return
	}
	s.cur = s.stack[n-1]
	s.stack = s.stack[:n-1]
}

// deviceBox maps r to device space and rounds it to whole pixels.
func (s *ImageSurface) deviceBox(r rect.Rect) image.Rectangle {
	m := s.cur.ctm
	x0, y0 := apply(m, r.LLx, r.LLy)
	x1, y1 := apply(m, r.URx, r.URy)
	return image.Rect(
		int(math.Round(min(x0, x1))), int(math.Round(min(y0, y1))),
		int(math.Round(max(x0, x1))), int(math.Round(max(y0, y1))),
	)
}

func apply(m matrix.Matrix, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// concat returns the matrix which applies a first and then b.
func concat(a, b matrix.Matrix) matrix.Matrix {
	return matrix.Matrix{
		b[0]*a[0] + b[2]*a[1],
		b[1]*a[0] + b[3]*a[1],
		b[0]*a[2] + b[2]*a[3],
		b[1]*a[2] + b[3]*a[3],
		b[0]*a[4] + b[2]*a[5] + b[4],
		b[1]*a[4] + b[3]*a[5] + b[5],
	}
}

// isTranslation reports whether m moves pixels without resampling.
func isTranslation(m matrix.Matrix) bool {
	const eps = 1e-9
	return math.Abs(m[0]-1) < eps && math.Abs(m[3]-1) < eps &&
		math.Abs(m[1]) < eps && math.Abs(m[2]) < eps
}
