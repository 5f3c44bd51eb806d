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

// Package pageview keeps rendered bitmaps of the visible pages of a
// paginated document and refreshes them in the background.
//
// A [View] tracks the viewport (scroll offset, size, zoom and device
// scale) over a vertically stacked document and computes, for every
// visible page, the [RenderRequest] which describes exactly how the page
// should be rasterised.  A [Directory] keeps one [CacheEntry] per visible
// page.  Entries paint their last rendered bitmap, a scaled version of a
// stale bitmap while a fresh one is produced, or a blank placeholder.
//
// Rendering is done by a [PageSource] on background goroutines, managed
// by a [Scheduler].  Requests are debounced, superseded requests are
// cancelled, and all calls into the page source are serialised, since
// document decoders are generally not safe for concurrent use.
//
// The package does not decode documents itself.  See the pdfsource and
// sample packages for page sources.
package pageview
