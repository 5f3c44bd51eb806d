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

package pdfsource

import (
	"context"
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf"

	"seehuhn.de/go/pageview/raster"
)

// gstate is the part of the PDF graphics state which affects path
// painting.
type gstate struct {
	ctm       matrix.Matrix
	fill      color.RGBA
	stroke    color.RGBA
	lineWidth float64
}

// interpreter paints the path operators of a content stream onto a
// canvas.  Operators it does not know are ignored.
type interpreter struct {
	ctx    context.Context
	canvas *raster.Canvas
	base   matrix.Matrix // default user space to bitmap pixels

	state gstate
	stack []gstate

	path       *path.Data
	cur, start vec.Vec2

	ops int
}

func newInterpreter(ctx context.Context, c *raster.Canvas, base matrix.Matrix) *interpreter {
	black := color.RGBA{A: 0xff}
	return &interpreter{
		ctx:    ctx,
		canvas: c,
		base:   base,
		state: gstate{
			ctm:       matrix.Identity,
			fill:      black,
			stroke:    black,
			lineWidth: 1,
		},
		path: &path.Data{},
	}
}

// do executes one content stream operator.  It returns the context error
// once the render has been cancelled, which aborts parsing.
func (ip *interpreter) do(op string, args []pdf.Object) error {
	ip.ops++
	if err := ip.ctx.Err(); err != nil {
		return err
	}

	x, ok := numbers(args)
	switch op {
	case "q":
		ip.stack = append(ip.stack, ip.state)
	case "Q":
		if n := len(ip.stack); n > 0 {
			ip.state = ip.stack[n-1]
			ip.stack = ip.stack[:n-1]
		}
	case "cm":
		if ok && len(x) == 6 {
			m := matrix.Matrix{x[0], x[1], x[2], x[3], x[4], x[5]}
			ip.state.ctm = m.Mul(ip.state.ctm)
		}
	case "w":
		if ok && len(x) == 1 {
			ip.state.lineWidth = x[0]
		}

	case "g":
		if ok && len(x) == 1 {
			ip.state.fill = gray(x[0])
		}
	case "G":
		if ok && len(x) == 1 {
			ip.state.stroke = gray(x[0])
		}
	case "rg":
		if ok && len(x) == 3 {
			ip.state.fill = rgb(x[0], x[1], x[2])
		}
	case "RG":
		if ok && len(x) == 3 {
			ip.state.stroke = rgb(x[0], x[1], x[2])
		}
	case "k":
		if ok && len(x) == 4 {
			ip.state.fill = cmyk(x[0], x[1], x[2], x[3])
		}
	case "K":
		if ok && len(x) == 4 {
			ip.state.stroke = cmyk(x[0], x[1], x[2], x[3])
		}

	case "m":
		if ok && len(x) == 2 {
			ip.cur = vec.Vec2{X: x[0], Y: x[1]}
			ip.start = ip.cur
			ip.path.MoveTo(ip.cur)
		}
	case "l":
		if ok && len(x) == 2 {
			ip.cur = vec.Vec2{X: x[0], Y: x[1]}
			ip.path.LineTo(ip.cur)
		}
	case "c":
		if ok && len(x) == 6 {
			p1 := vec.Vec2{X: x[0], Y: x[1]}
			p2 := vec.Vec2{X: x[2], Y: x[3]}
			ip.cur = vec.Vec2{X: x[4], Y: x[5]}
			ip.path.CubeTo(p1, p2, ip.cur)
		}
	case "v":
		if ok && len(x) == 4 {
			p2 := vec.Vec2{X: x[0], Y: x[1]}
			p3 := vec.Vec2{X: x[2], Y: x[3]}
			ip.path.CubeTo(ip.cur, p2, p3)
			ip.cur = p3
		}
	case "y":
		if ok && len(x) == 4 {
			p1 := vec.Vec2{X: x[0], Y: x[1]}
			ip.cur = vec.Vec2{X: x[2], Y: x[3]}
			ip.path.CubeTo(p1, ip.cur, ip.cur)
		}
	case "h":
		ip.path.Close()
		ip.cur = ip.start
	case "re":
		if ok && len(x) == 4 {
			x0, y0, w, h := x[0], x[1], x[2], x[3]
			ip.path.MoveTo(vec.Vec2{X: x0, Y: y0}).
				LineTo(vec.Vec2{X: x0 + w, Y: y0}).
				LineTo(vec.Vec2{X: x0 + w, Y: y0 + h}).
				LineTo(vec.Vec2{X: x0, Y: y0 + h}).
				Close()
			ip.cur = vec.Vec2{X: x0, Y: y0}
			ip.start = ip.cur
		}

	case "f", "F":
		ip.paint(true, raster.NonZero, false)
	case "f*":
		ip.paint(true, raster.EvenOdd, false)
	case "S":
		ip.paint(false, raster.NonZero, true)
	case "s":
		ip.path.Close()
		ip.paint(false, raster.NonZero, true)
	case "B":
		ip.paint(true, raster.NonZero, true)
	case "B*":
		ip.paint(true, raster.EvenOdd, true)
	case "b":
		ip.path.Close()
		ip.paint(true, raster.NonZero, true)
	case "b*":
		ip.path.Close()
		ip.paint(true, raster.EvenOdd, true)
	case "n":
		ip.clearPath()
	}
	return nil
}

// paint fills and/or strokes the current path and then clears it.
func (ip *interpreter) paint(fill bool, rule raster.FillRule, stroke bool) {
	defer ip.clearPath()
	if len(ip.path.Cmds) == 0 {
		return
	}
	ip.canvas.CTM = ip.state.ctm.Mul(ip.base)
	if fill {
		ip.canvas.Fill(ip.path, rule, ip.state.fill)
	}
	if stroke {
		ip.canvas.Stroke(ip.path, ip.state.lineWidth, ip.state.stroke)
	}
}

func (ip *interpreter) clearPath() {
	ip.path.Cmds = ip.path.Cmds[:0]
	ip.path.Coords = ip.path.Coords[:0]
}

// numbers converts the operands of an operator to float64.  The second
// return value is false if any operand is not a number.
func numbers(args []pdf.Object) ([]float64, bool) {
	res := make([]float64, len(args))
	for i, a := range args {
		switch x := a.(type) {
		case pdf.Integer:
			res[i] = float64(x)
		case pdf.Real:
			res[i] = float64(x)
		default:
			return nil, false
		}
	}
	return res, true
}

func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}

func gray(g float64) color.RGBA {
	v := uint8(clamp01(g)*255 + 0.5)
	return color.RGBA{R: v, G: v, B: v, A: 0xff}
}

func rgb(r, g, b float64) color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(r)*255 + 0.5),
		G: uint8(clamp01(g)*255 + 0.5),
		B: uint8(clamp01(b)*255 + 0.5),
		A: 0xff,
	}
}

// cmyk uses the naive conversion without black generation.
func cmyk(c, m, y, k float64) color.RGBA {
	k = clamp01(k)
	return rgb((1-clamp01(c))*(1-k), (1-clamp01(m))*(1-k), (1-clamp01(y))*(1-k))
}
