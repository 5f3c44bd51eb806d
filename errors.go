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
	"errors"
	"fmt"
)

var (
	// ErrNoDocument is returned by operations which need a loaded document.
	ErrNoDocument = errors.New("pageview: no document loaded")

	// ErrPageOutOfRange is returned for page indices outside [0, PageCount).
	ErrPageOutOfRange = errors.New("pageview: page index out of range")

	// ErrInvalidViewport is returned for a non-positive zoom or device
	// scale, or a negative viewport size.
	ErrInvalidViewport = errors.New("pageview: invalid viewport")

	// ErrDecodePanic is wrapped by the error of a decode which panicked.
	ErrDecodePanic = errors.New("pageview: page source panicked")
)

// DecodeError records a failed call to PageSource.Render.
type DecodeError struct {
	Page int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pageview: rendering page %d: %v", e.Page, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
