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
	"errors"
	"fmt"
	imgcolor "image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/graphics/color"

	"seehuhn.de/go/pageview/raster"
)

// WritePDF writes the document to a PDF file.  All pages use the size of
// the first page.  Colours are written as DeviceGray.
func (d *Document) WritePDF(fname string) error {
	if len(d.Pages) == 0 {
		return errors.New("sample: empty document")
	}
	first := d.Pages[0]
	paper := &pdf.Rectangle{URx: first.Width, URy: first.Height}

	doc, err := document.CreateMultiPage(fname, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}
	for i, p := range d.Pages {
		page := doc.AddPage()

		// Page content uses a y-down coordinate system.
		page.Transform(matrix.Matrix{1, 0, 0, -1, 0, first.Height})
		for _, s := range p.Shapes {
			g := color.DeviceGray(gray(s.Color))
			if s.Stroke > 0 {
				page.SetStrokeColor(g)
				page.SetLineWidth(s.Stroke)
			} else {
				page.SetFillColor(g)
			}
			writePath(page, s.Path)
			switch {
			case s.Stroke > 0:
				page.Stroke()
			case s.Rule == raster.EvenOdd:
				page.FillEvenOdd()
			default:
				page.Fill()
			}
		}
		if err := page.Close(); err != nil {
			return fmt.Errorf("page %d: %w", i, err)
		}
	}
	return doc.Close()
}

func writePath(page *document.Page, p *path.Data) {
	var cur vec.Vec2
	k := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			cur = p.Coords[k]
			page.MoveTo(cur.X, cur.Y)
			k++
		case path.CmdLineTo:
			cur = p.Coords[k]
			page.LineTo(cur.X, cur.Y)
			k++
		case path.CmdQuadTo:
			// PDF has no quadratic curves; raise the degree.
			c, e := p.Coords[k], p.Coords[k+1]
			c1 := cur.Add(c.Sub(cur).Mul(2.0 / 3))
			c2 := e.Add(c.Sub(e).Mul(2.0 / 3))
			page.CurveTo(c1.X, c1.Y, c2.X, c2.Y, e.X, e.Y)
			cur = e
			k += 2
		case path.CmdCubeTo:
			c1, c2, e := p.Coords[k], p.Coords[k+1], p.Coords[k+2]
			page.CurveTo(c1.X, c1.Y, c2.X, c2.Y, e.X, e.Y)
			cur = e
			k += 3
		case path.CmdClose:
			page.ClosePath()
		}
	}
}

// gray returns the luminance of c in [0, 1].
func gray(c imgcolor.RGBA) float64 {
	g := imgcolor.GrayModel.Convert(c).(imgcolor.Gray)
	return float64(g.Y) / 255
}
