// Package pptxenc converts an ordered sequence of slide images into a
// PowerPoint deck with one full-bleed image per slide on a 16:9 canvas.
package pptxenc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	ppt "github.com/VantageDataChat/GoPPT"
)

// Source supplies the bytes of one slide image. Open is called once;
// the encoder closes the returned reader.
type Source struct {
	Name string
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// 16:9 slide canvas in EMU.
const (
	emuPerInch  = 914400
	slideWidth  = int64(10.0 * emuPerInch)
	slideHeight = int64(5.625 * emuPerInch)
)

// ErrNoPages is returned when there is nothing to encode.
var ErrNoPages = errors.New("no images to encode")

// Result reports what an encoding pass produced.
type Result struct {
	PageCount    int
	BytesWritten int64
}

// Options controls document metadata.
type Options struct {
	Title   string
	Creator string
}

// Encode writes a PPTX with one slide per source. Images are loaded one
// page at a time; GoPPT holds the assembled deck until WriteTo.
func Encode(ctx context.Context, w io.Writer, sources []Source, opts Options) (Result, error) {
	if len(sources) == 0 {
		return Result{}, ErrNoPages
	}

	p := ppt.New()
	if opts.Title != "" {
		p.GetDocumentProperties().Title = opts.Title
	}
	if opts.Creator != "" {
		p.GetDocumentProperties().Creator = opts.Creator
	}

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		var slide *ppt.Slide
		if i == 0 {
			slide = p.GetActiveSlide()
		} else {
			slide = p.CreateSlide()
		}

		if err := addImageSlide(ctx, slide, src); err != nil {
			return Result{}, fmt.Errorf("slide %d (%s): %w", i+1, src.Name, err)
		}
	}

	pw, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return Result{}, fmt.Errorf("create writer: %w", err)
	}

	cw := &countingWriter{w: w}
	if err := pw.(*ppt.PPTXWriter).WriteTo(cw); err != nil {
		return Result{}, fmt.Errorf("write deck: %w", err)
	}

	return Result{PageCount: len(sources), BytesWritten: cw.off}, nil
}

func addImageSlide(ctx context.Context, slide *ppt.Slide, src Source) error {
	rc, err := src.Open(ctx)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode image header: %w", err)
	}

	x, y, w, h := fitEMU(int64(cfg.Width), int64(cfg.Height))

	shape := slide.CreateDrawingShape()
	shape.SetImageData(data, "image/"+format)
	shape.SetOffsetX(x).SetOffsetY(y)
	shape.SetWidth(w).SetHeight(h)
	return nil
}

// fitEMU scales the image to fit the slide canvas preserving aspect
// ratio, centered. 16:9 images fill the slide exactly.
func fitEMU(iw, ih int64) (x, y, w, h int64) {
	sw, sh := float64(slideWidth), float64(slideHeight)
	scale := sw / float64(iw)
	if s := sh / float64(ih); s < scale {
		scale = s
	}
	w = int64(float64(iw) * scale)
	h = int64(float64(ih) * scale)
	x = (slideWidth - w) / 2
	y = (slideHeight - h) / 2
	return
}

type countingWriter struct {
	w   io.Writer
	off int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.off += int64(n)
	return n, err
}
