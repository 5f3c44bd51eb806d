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

// Package sample provides a synthetic multi-page vector document.
//
// Every page shows a frame, a few filled shapes and a tally of the page
// number, so that rendered pages can be told apart.  The document can be
// rasterised directly or written out as a PDF file.
package sample

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pageview/raster"
)

// Paper sizes in PDF points.
const (
	A4Width  = 595.0
	A4Height = 842.0
)

// Shape is one painted element of a page.
type Shape struct {
	Path   *path.Data
	Color  color.RGBA
	Rule   raster.FillRule
	Stroke float64 // line width; zero means fill
}

// Page is one page of the document.  Coordinates are in page units with
// the origin at the top-left corner and y pointing down.
type Page struct {
	Width, Height float64
	Shapes        []Shape
}

// Document is an in-memory vector document.
//
// Render may be called from any goroutine, but is not meant to be called
// concurrently; the render cache serialises all calls.
type Document struct {
	Pages      []*Page
	Background color.Color
}

// New returns a document with n pages of the given size.
func New(n int, width, height float64) *Document {
	doc := &Document{Background: color.White}
	for i := range n {
		doc.Pages = append(doc.Pages, makePage(i, width, height))
	}
	return doc
}

var palette = []color.RGBA{
	{R: 0xc0, G: 0x39, B: 0x2b, A: 0xff},
	{R: 0x27, G: 0x80, B: 0x60, A: 0xff},
	{R: 0x29, G: 0x6f, B: 0xb9, A: 0xff},
	{R: 0xd3, G: 0x84, B: 0x00, A: 0xff},
	{R: 0x7d, G: 0x3c, B: 0x98, A: 0xff},
}

func makePage(i int, w, h float64) *Page {
	c := palette[i%len(palette)]
	black := color.RGBA{A: 0xff}
	m := min(w, h)
	return &Page{
		Width:  w,
		Height: h,
		Shapes: []Shape{
			{Path: rectangle(m*0.04, m*0.04, w-m*0.04, h-m*0.04), Color: black, Stroke: 1},
			{Path: star(w*0.3, h*0.3, m*0.18), Color: c, Rule: raster.NonZero},
			{Path: ring(w*0.7, h*0.3, m*0.16, m*0.09), Color: c, Rule: raster.EvenOdd},
			{Path: triangle(w*0.15, h*0.85, w*0.5, h*0.55, w*0.85, h*0.85), Color: c, Rule: raster.NonZero},
			{Path: rectangle(w*0.1, h*0.5, w*0.9, h*0.5+m*0.02), Color: black, Rule: raster.NonZero},
			{Path: tally(w*0.1, h*0.92, m*0.04, i+1), Color: black, Stroke: 1.5},
		},
	}
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// PageSize returns the size of page index in page units.
func (d *Document) PageSize(index int) (width, height float64) {
	if index < 0 || index >= len(d.Pages) {
		return 0, 0
	}
	p := d.Pages[index]
	return p.Width, p.Height
}

// Render rasterises the part of page index inside part, scaled by
// (scaleX, scaleY) pixels per page unit.
func (d *Document) Render(ctx context.Context, index int, part rect.Rect, scaleX, scaleY float64) (image.Image, error) {
	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("sample: page %d out of range [0, %d)", index, len(d.Pages))
	}
	w, h := BitmapSize(part, scaleX, scaleY)
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("sample: empty render area %v", part)
	}

	c := raster.NewCanvas(w, h, d.Background)
	c.CTM = matrix.Matrix{scaleX, 0, 0, scaleY, -part.LLx * scaleX, -part.LLy * scaleY}
	for _, s := range d.Pages[index].Shapes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s.Stroke > 0 {
			c.Stroke(s.Path, s.Stroke, s.Color)
		} else {
			c.Fill(s.Path, s.Rule, s.Color)
		}
	}
	return c.Img, nil
}

// BitmapSize returns the pixel size of a bitmap covering part at the given
// scale.
func BitmapSize(part rect.Rect, scaleX, scaleY float64) (width, height int) {
	width = int(math.Ceil((part.URx-part.LLx)*scaleX - 1e-6))
	height = int(math.Ceil((part.URy-part.LLy)*scaleY - 1e-6))
	return max(width, 0), max(height, 0)
}
