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

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// Surface receives the drawing commands of the paint path.
//
// Coordinates are in device pixels with y pointing down, and are mapped
// through the current transformation.  PushClip and PushTransform save the
// current state, which the matching Pop restores.
type Surface interface {
	// FillRect fills r with c.
	FillRect(r rect.Rect, c color.Color)

	// DrawImage draws img scaled to fill dst.
	DrawImage(img image.Image, dst rect.Rect)

	// PushClip restricts drawing to r, intersected with the current clip.
	PushClip(r rect.Rect)

	// PushTransform applies m before the current transformation.
	PushTransform(m matrix.Matrix)

	// Pop undoes the most recent PushClip or PushTransform.
	Pop()
}

// CommandKind identifies a recorded drawing command.
type CommandKind uint8

const (
	CmdFillRect CommandKind = iota
	CmdDrawImage
	CmdPushClip
	CmdPushTransform
	CmdPop
)

func (k CommandKind) String() string {
	switch k {
	case CmdFillRect:
		return "FillRect"
	case CmdDrawImage:
		return "DrawImage"
	case CmdPushClip:
		return "PushClip"
	case CmdPushTransform:
		return "PushTransform"
	case CmdPop:
		return "Pop"
	default:
		return "Unknown"
	}
}

// Command is one recorded drawing command.  Only the fields used by Kind
// are set.
type Command struct {
	Kind      CommandKind
	Rect      rect.Rect
	Color     color.Color
	Image     image.Image
	Transform matrix.Matrix
}

// Recorder is a Surface which records the commands it receives.
type Recorder struct {
	Commands []Command
}

func (r *Recorder) FillRect(rc rect.Rect, c color.Color) {
	r.Commands = append(r.Commands, Command{Kind: CmdFillRect, Rect: rc, Color: c})
}

func (r *Recorder) DrawImage(img image.Image, dst rect.Rect) {
	r.Commands = append(r.Commands, Command{Kind: CmdDrawImage, Rect: dst, Image: img})
}

func (r *Recorder) PushClip(rc rect.Rect) {
	r.Commands = append(r.Commands, Command{Kind: CmdPushClip, Rect: rc})
}

func (r *Recorder) PushTransform(m matrix.Matrix) {
	r.Commands = append(r.Commands, Command{Kind: CmdPushTransform, Transform: m})
}

func (r *Recorder) Pop() {
	r.Commands = append(r.Commands, Command{Kind: CmdPop})
}

// Kinds returns the kinds of the recorded commands.
func (r *Recorder) Kinds() []CommandKind {
	res := make([]CommandKind, len(r.Commands))
	for i, c := range r.Commands {
		res[i] = c.Kind
	}
	return res
}

// Reset discards all recorded commands.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
}
