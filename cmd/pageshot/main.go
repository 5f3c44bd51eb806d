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

// Command pageshot renders a viewport of a document to a PNG file.
//
// The document is either a PDF file or the built-in sample document.  The
// pages are rendered through the page cache exactly as an interactive
// viewer would, and the painted viewport is written out once all
// background renders have finished.
package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pageview"
	"seehuhn.de/go/pageview/pdfsource"
	"seehuhn.de/go/pageview/sample"
)

type settings struct {
	pdfFile string
	pages   int
	offsetX float64
	offsetY float64
	zoom    float64
	width   int
	height  int
	scale   float64
	gap     float64
	outFile string
	verbose bool
}

func main() {
	var s settings

	rootCmd := &cobra.Command{
		Use:   "pageshot",
		Short: "Render a viewport of a paginated document to PNG",
		Long: `pageshot lays out the pages of a document vertically, renders the
pages visible in the given viewport in the background and writes the
painted viewport as a PNG image.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(s.verbose)
			src, closeSrc, err := openSource(&s, logger)
			if err != nil {
				return err
			}
			defer closeSrc()

			v := newView(&s, logger)
			defer v.Close()
			v.SetDocument(src)
			return shoot(v, &s)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.pdfFile, "pdf", "", "PDF file to show (default: sample document)")
	flags.IntVar(&s.pages, "sample", 10, "number of pages of the sample document")
	flags.Float64Var(&s.offsetX, "x", 0, "horizontal scroll offset, in logical pixels")
	flags.Float64Var(&s.offsetY, "y", 0, "vertical scroll offset, in logical pixels")
	flags.Float64Var(&s.zoom, "zoom", 1, "logical pixels per page unit")
	flags.IntVar(&s.width, "width", 800, "viewport width, in logical pixels")
	flags.IntVar(&s.height, "height", 600, "viewport height, in logical pixels")
	flags.Float64Var(&s.scale, "scale", 1, "device pixels per logical pixel")
	flags.Float64Var(&s.gap, "gap", pageview.DefaultPageGap, "space between pages, in logical pixels")
	flags.StringVarP(&s.outFile, "out", "o", "pageshot.png", "output PNG file")
	flags.BoolVarP(&s.verbose, "verbose", "v", false, "log render activity")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render whenever the PDF file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.pdfFile == "" {
				return fmt.Errorf("watch needs a PDF file (--pdf)")
			}
			logger := newLogger(s.verbose)
			src, err := pdfsource.Open(s.pdfFile, logger)
			if err != nil {
				return err
			}
			defer src.Close()

			v := newView(&s, logger)
			defer v.Close()
			v.SetDocument(src)
			if err := shoot(v, &s); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return src.Watch(ctx, 0, func() {
				v.SetDocument(src)
				if err := shoot(v, &s); err != nil {
					logger.Error("cannot write image", "error", err)
					return
				}
				logger.Info("image updated", "file", s.outFile, "pages", src.PageCount())
			})
		},
	}

	var exportFile string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the sample document as a PDF file",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := sample.New(s.pages, sample.A4Width, sample.A4Height)
			return doc.WritePDF(exportFile)
		},
	}
	exportCmd.Flags().StringVar(&exportFile, "file", "sample.pdf", "output PDF file")

	rootCmd.AddCommand(watchCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openSource(s *settings, logger *slog.Logger) (pageview.PageSource, func(), error) {
	if s.pdfFile == "" {
		return sample.New(s.pages, sample.A4Width, sample.A4Height), func() {}, nil
	}
	src, err := pdfsource.Open(s.pdfFile, logger)
	if err != nil {
		return nil, nil, err
	}
	return src, func() { src.Close() }, nil
}

func newView(s *settings, logger *slog.Logger) *pageview.View {
	return pageview.NewView(
		pageview.WithLogger(logger),
		pageview.WithPageGap(s.gap),
		pageview.WithDebounce(0),
	)
}

// desk is the colour shown between and beside the pages.
var desk = color.Gray{Y: 0x80}

// shoot sets the viewport, waits for the renders and writes the image.
func shoot(v *pageview.View, s *settings) error {
	if err := v.SetDeviceScale(s.scale); err != nil {
		return err
	}
	offset := vec.Vec2{X: s.offsetX, Y: s.offsetY}
	size := vec.Vec2{X: float64(s.width), Y: float64(s.height)}
	if err := v.SetViewport(offset, size, s.zoom); err != nil {
		return err
	}
	v.Wait()

	w := int(float64(s.width)*s.scale + 0.5)
	h := int(float64(s.height)*s.scale + 0.5)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	surf := pageview.NewImageSurface(img)
	surf.FillRect(rect.Rect{URx: float64(w), URy: float64(h)}, desk)
	v.Paint(surf)

	out, err := os.Create(s.outFile)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
