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
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Stroke rasterises an approximate outline of p with the given line width
// in user-space units.
//
// Every flattened segment becomes a rectangle extended by half the line
// width at both ends, so joins and caps come out square.  This is good
// enough for on-screen previews; it does not implement PDF dash patterns,
// miter limits or round joins.  Lines thinner than minWidth device pixels
// are widened so that hairlines stay visible.
func (r *Rasteriser) Stroke(p *path.Data, width float64, emit EmitFunc) {
	if width <= 0 {
		width = 1
	}

	// Scale the half width so that the stroke is at least minWidth
	// device pixels wide along the smaller axis of the CTM.
	hw := width / 2
	if s := r.minScale(); s > 0 && width*s < minWidth {
		hw = minWidth / (2 * s)
	}

	out := &r.outline
	out.Cmds = out.Cmds[:0]
	out.Coords = out.Coords[:0]
	r.walkPath(p, false, func(a, b vec.Vec2) {
		d := b.Sub(a)
		l := d.Length()
		if l < zeroLengthThreshold {
			return
		}
		t := d.Mul(hw / l)
		n := vec.Vec2{X: -t.Y, Y: t.X}
		a = a.Sub(t)
		b = b.Add(t)

		// Same orientation for every quad, so that overlaps do not cancel
		// under the nonzero rule.
		out.Cmds = append(out.Cmds, path.CmdMoveTo, path.CmdLineTo, path.CmdLineTo, path.CmdLineTo, path.CmdClose)
		out.Coords = append(out.Coords, a.Add(n), b.Add(n), b.Sub(n), a.Sub(n))
	})
	if len(out.Cmds) == 0 {
		return
	}
	r.Fill(out, NonZero, emit)
}

// minScale returns the smallest stretch factor of the CTM's linear part.
func (r *Rasteriser) minScale() float64 {
	a, b, c, d := r.CTM[0], r.CTM[1], r.CTM[2], r.CTM[3]
	sx := math.Hypot(a, b)
	sy := math.Hypot(c, d)
	return min(sx, sy)
}

const (
	// minWidth is the thinnest stroke drawn, in device pixels.
	minWidth = 1.0

	// zeroLengthThreshold is the length below which a segment is dropped.
	zeroLengthThreshold = 1e-10
)
