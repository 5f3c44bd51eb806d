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
	"image"
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
)

// Canvas paints paths into an RGBA image.
type Canvas struct {
	Img *image.RGBA

	// CTM maps user space to the pixel grid of Img.
	CTM matrix.Matrix

	r *Rasteriser
}

// NewCanvas allocates a width×height image, filled with bg.
func NewCanvas(width, height int, bg color.Color) *Canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := &Canvas{
		Img: img,
		CTM: matrix.Identity,
		r:   NewRasteriser(bounds(img)),
	}
	if bg != nil {
		c.Clear(bg)
	}
	return c
}

// Clear sets every pixel to col.
func (c *Canvas) Clear(col color.Color) {
	rgba := color.RGBAModel.Convert(col).(color.RGBA)
	pix := c.Img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = rgba.R
		pix[i+1] = rgba.G
		pix[i+2] = rgba.B
		pix[i+3] = rgba.A
	}
}

// Fill paints the interior of p.
func (c *Canvas) Fill(p *path.Data, rule FillRule, col color.Color) {
	c.r.CTM = c.CTM
	c.r.Fill(p, rule, c.blender(col))
}

// Stroke paints an outline of p.
func (c *Canvas) Stroke(p *path.Data, width float64, col color.Color) {
	c.r.CTM = c.CTM
	c.r.Stroke(p, width, c.blender(col))
}

// blender returns an EmitFunc which composites col, scaled by coverage,
// over the existing pixels (premultiplied source-over).
func (c *Canvas) blender(col color.Color) EmitFunc {
	sr, sg, sb, sa := col.RGBA()
	img := c.Img
	return func(y, xMin int, coverage []float32) {
		row := img.Pix[(y-img.Rect.Min.Y)*img.Stride:]
		for i, cov := range coverage {
			k := 4 * (xMin + i - img.Rect.Min.X)
			a := uint32(float32(sa) * cov)
			if a == 0 {
				continue
			}
			ia := 0xffff - a
			f := float32(a) / float32(sa)
			row[k+0] = blend(row[k+0], uint32(float32(sr)*f), ia)
			row[k+1] = blend(row[k+1], uint32(float32(sg)*f), ia)
			row[k+2] = blend(row[k+2], uint32(float32(sb)*f), ia)
			row[k+3] = blend(row[k+3], a, ia)
		}
	}
}

// blend computes src + dst*(1-srcAlpha) for one 8-bit channel, where src
// and ia are 16-bit values.
func blend(dst uint8, src, ia uint32) uint8 {
	v := (uint32(dst)*0x101*ia/0xffff + src) >> 8
	return uint8(min(v, 0xff))
}

func bounds(img *image.RGBA) rect.Rect {
	b := img.Bounds()
	return rect.Rect{
		LLx: float64(b.Min.X),
		LLy: float64(b.Min.Y),
		URx: float64(b.Max.X),
		URy: float64(b.Max.Y),
	}
}
