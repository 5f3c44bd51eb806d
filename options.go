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
	"image/color"
	"log/slog"
	"time"
)

// DefaultDebounce is the delay between scheduling a render job and
// starting to decode.  Requests superseded within this window are never
// decoded.
const DefaultDebounce = 20 * time.Millisecond

// DefaultPageGap is the vertical space between pages, in logical pixels.
const DefaultPageGap = 8.0

// Option configures a View.
type Option func(*options)

type options struct {
	debounce   time.Duration
	gap        float64
	tolerance  float64
	prefetch   float64
	background color.Color
	logger     *slog.Logger
	invalidate func()
}

func defaultOptions() options {
	return options{
		debounce:   DefaultDebounce,
		gap:        DefaultPageGap,
		tolerance:  DefaultTolerance,
		background: color.White,
	}
}

// WithDebounce sets the debounce delay of the render scheduler.
// Zero disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		o.debounce = max(d, 0)
	}
}

// WithPageGap sets the space between consecutive pages, in logical pixels.
func WithPageGap(gap float64) Option {
	return func(o *options) {
		o.gap = max(gap, 0)
	}
}

// WithTolerance sets the epsilon used to compare render requests.
func WithTolerance(eps float64) Option {
	return func(o *options) {
		o.tolerance = max(eps, 0)
	}
}

// WithPrefetch keeps pages within margin logical pixels above and below
// the viewport rendered, so that they are ready when scrolled into view.
func WithPrefetch(margin float64) Option {
	return func(o *options) {
		o.prefetch = max(margin, 0)
	}
}

// WithBackground sets the colour painted where no bitmap is available.
func WithBackground(c color.Color) Option {
	return func(o *options) {
		o.background = c
	}
}

// WithLogger sets the logger of the view, overriding [SetLogger].
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithInvalidate registers a function which is called whenever a newly
// rendered page is ready to be painted.  The function runs on a worker
// goroutine; interactive applications typically post a repaint request to
// their event loop from here.
func WithInvalidate(fn func()) Option {
	return func(o *options) {
		o.invalidate = fn
	}
}
