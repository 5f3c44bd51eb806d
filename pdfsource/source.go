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

// Package pdfsource renders the pages of a PDF file.
//
// Only the vector graphics of a page are drawn: paths are filled and
// stroked in DeviceGray, DeviceRGB or DeviceCMYK colours.  Text, images
// and form XObjects are skipped.  This is enough to preview drawings and
// to exercise the render cache with real files.
package pdfsource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"sync"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/font/loader"
	"seehuhn.de/go/pdf/pagetree"
	"seehuhn.de/go/pdf/reader"

	"seehuhn.de/go/pageview"
	"seehuhn.de/go/pageview/raster"
)

// ErrClosed is returned by Render after Close.
var ErrClosed = errors.New("pdfsource: file closed")

// Source is a page source backed by a PDF file.
//
// All methods are safe for concurrent use.  Render calls are serialised
// internally; PageCount and PageSize never wait for a running Render.
type Source struct {
	fname string
	log   *slog.Logger

	// Background is the paper colour.
	Background color.Color

	// mu serialises Render, Reload and Close.
	mu     sync.Mutex
	reader *reader.Reader

	// meta guards the fields below.  Writers also hold mu.
	meta  sync.RWMutex
	file  *pdf.Reader
	pages []pageInfo
}

var _ pageview.PageSource = (*Source)(nil)

type pageInfo struct {
	dict pdf.Dict
	box  rect.Rect // MediaBox in default user space
}

// Open reads the page tree of a PDF file.  If logger is nil, the logger
// of package pageview is used.
func Open(fname string, logger *slog.Logger) (*Source, error) {
	if logger == nil {
		logger = pageview.Logger()
	}
	s := &Source{
		fname:      fname,
		log:        logger,
		Background: color.White,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload reopens the file.  On failure the previous contents stay in use.
func (s *Source) Reload() error {
	file, err := pdf.Open(s.fname, nil)
	if err != nil {
		return fmt.Errorf("pdfsource: %w", err)
	}
	pages, err := readPages(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("pdfsource: %s: %w", s.fname, err)
	}

	s.mu.Lock()
	s.meta.Lock()
	old := s.file
	s.file = file
	s.pages = pages
	s.meta.Unlock()
	s.reader = reader.New(file, loader.NewFontLoader())
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	s.log.Debug("pdf loaded", "file", s.fname, "pages", len(pages))
	return nil
}

func readPages(r pdf.Getter) ([]pageInfo, error) {
	n, err := pagetree.NumPages(r)
	if err != nil {
		return nil, err
	}
	pages := make([]pageInfo, n)
	for i := range n {
		_, dict, err := pagetree.GetPage(r, i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		box, err := mediaBox(r, dict)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages[i] = pageInfo{dict: dict, box: box}
	}
	return pages, nil
}

var errMediaBox = errors.New("missing or invalid MediaBox")

func mediaBox(r pdf.Getter, dict pdf.Dict) (rect.Rect, error) {
	a, err := pdf.GetArray(r, dict["MediaBox"])
	if err != nil {
		return rect.Rect{}, err
	}
	if len(a) != 4 {
		return rect.Rect{}, errMediaBox
	}
	var v [4]float64
	for i, obj := range a {
		x, err := pdf.GetNumber(r, obj)
		if err != nil {
			return rect.Rect{}, err
		}
		v[i] = float64(x)
	}
	box := rect.Rect{
		LLx: min(v[0], v[2]), LLy: min(v[1], v[3]),
		URx: max(v[0], v[2]), URy: max(v[1], v[3]),
	}
	if box.URx-box.LLx <= 0 || box.URy-box.LLy <= 0 {
		return rect.Rect{}, errMediaBox
	}
	return box, nil
}

// Close releases the file.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta.Lock()
	file := s.file
	s.file, s.pages = nil, nil
	s.meta.Unlock()
	s.reader = nil
	if file == nil {
		return nil
	}
	return file.Close()
}

// PageCount returns the number of pages.
func (s *Source) PageCount() int {
	s.meta.RLock()
	defer s.meta.RUnlock()
	return len(s.pages)
}

// PageSize returns the size of the MediaBox of page index, in PDF points.
func (s *Source) PageSize(index int) (width, height float64) {
	s.meta.RLock()
	defer s.meta.RUnlock()
	if index < 0 || index >= len(s.pages) {
		return 0, 0
	}
	b := s.pages[index].box
	return b.URx - b.LLx, b.URy - b.LLy
}

// Render rasterises the part of page index inside part.  Page coordinates
// have their origin at the top-left corner of the MediaBox, with y
// pointing down.  The context is checked between content stream
// operators.
func (s *Source) Render(ctx context.Context, index int, part rect.Rect, scaleX, scaleY float64) (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The page table only changes while mu is held, so reading it
	// without meta is safe here.
	if s.file == nil {
		return nil, ErrClosed
	}
	if index < 0 || index >= len(s.pages) {
		return nil, fmt.Errorf("pdfsource: page %d out of range [0, %d)", index, len(s.pages))
	}
	w := int(math.Ceil((part.URx-part.LLx)*scaleX - 1e-6))
	h := int(math.Ceil((part.URy-part.LLy)*scaleY - 1e-6))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("pdfsource: empty render area %v", part)
	}

	page := s.pages[index]
	c := raster.NewCanvas(w, h, s.Background)
	base := matrix.Matrix{
		scaleX, 0,
		0, -scaleY,
		-scaleX * (page.box.LLx + part.LLx),
		scaleY * (page.box.URy - part.LLy),
	}
	ip := newInterpreter(ctx, c, base)

	s.reader.Reset()
	s.reader.EveryOp = ip.do
	defer func() { s.reader.EveryOp = nil }()
	if err := s.reader.ParsePage(page.dict, matrix.Identity); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("pdfsource: page %d: %w", index, err)
	}
	s.log.Debug("page rendered", "page", index, "ops", ip.ops, "width", w, "height", h)
	return c.Img, nil
}
