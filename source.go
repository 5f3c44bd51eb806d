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
	"context"
	"image"

	"seehuhn.de/go/geom/rect"
)

// PageSource gives access to the pages of a fixed-layout document.
//
// Render is expensive and synchronous.  Implementations need not be safe
// for concurrent use: the Scheduler never runs two Render calls at the
// same time.  PageCount and PageSize are only called from the goroutine
// which owns the View.
type PageSource interface {
	// PageCount returns the number of pages.
	PageCount() int

	// PageSize returns the natural size of a page, in page units.
	PageSize(index int) (width, height float64)

	// Render rasterises the part of page index inside visible (page units,
	// y down) at scaleX×scaleY pixels per page unit.  The returned image
	// must not be modified afterwards.
	//
	// The context is cancelled when the request becomes stale.  Sources
	// may return early with the context's error, but are not required to.
	Render(ctx context.Context, index int, visible rect.Rect, scaleX, scaleY float64) (image.Image, error)
}
