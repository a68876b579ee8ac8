// Package pdfenc converts an ordered sequence of slide images into a
// paginated PDF. The streaming path embeds JPEG data untouched behind
// a DCTDecode filter, holding at most one image header in memory at a
// time; sources the lean path cannot take degrade the whole document
// to a buffered decode-and-reencode fallback.
package pdfenc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Source supplies the bytes of one slide image. Open is called once
// per encoding pass; the encoder closes the returned reader.
type Source struct {
	Name string
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// Options controls page geometry. The zero value produces 16:9 pages.
type Options struct {
	PageWidth  float64 // points
	PageHeight float64 // points
}

// Default page size: 16:9 in PDF points.
const (
	DefaultPageWidth  = 960.0
	DefaultPageHeight = 540.0
)

func (o Options) withDefaults() Options {
	if o.PageWidth <= 0 || o.PageHeight <= 0 {
		o.PageWidth = DefaultPageWidth
		o.PageHeight = DefaultPageHeight
	}
	return o
}

// Result reports what an encoding pass produced.
type Result struct {
	PageCount    int
	BytesWritten int64
}

// ErrNoPages is returned when there is nothing to encode.
var ErrNoPages = errors.New("no images to encode")

// countingWriter tracks the byte offset of everything written, which
// is what the xref table is built from.
type countingWriter struct {
	w   io.Writer
	off int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.off += int64(n)
	return n, err
}

func (c *countingWriter) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(c, format, args...)
	return err
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Object numbering is fixed so the document can be emitted in one
// forward pass: 1 = catalog, 2 = page tree, then four objects per page
// (image, image stream length, content stream, page).
const objsPerPage = 4

func pageObjBase(i int) int { return 3 + objsPerPage*i }

// Encode writes a PDF with one page per source. Every page's JPEG data
// is streamed straight from its source into the output; the stream
// length is written afterwards as an indirect object so nothing needs
// to be buffered. Returns ErrUnsupportedFormat (wrapped) if any source
// cannot be embedded this way; the output is unusable in that case and
// the caller should re-encode with EncodeBuffered.
func Encode(ctx context.Context, w io.Writer, sources []Source, opts Options) (Result, error) {
	if len(sources) == 0 {
		return Result{}, ErrNoPages
	}
	opts = opts.withDefaults()

	cw := &countingWriter{w: w}
	offsets := make([]int64, 2+objsPerPage*len(sources)+1) // 1-based

	if err := cw.printf("%%PDF-1.4\n%%\xe2\xe3\xcf\xd3\n"); err != nil {
		return Result{}, err
	}

	// Catalog.
	offsets[1] = cw.off
	if err := cw.printf("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n"); err != nil {
		return Result{}, err
	}

	// Page tree; kid object numbers are deterministic.
	offsets[2] = cw.off
	var kids strings.Builder
	for i := range sources {
		fmt.Fprintf(&kids, "%d 0 R ", pageObjBase(i)+3)
	}
	if err := cw.printf("2 0 obj\n<< /Type /Pages /Kids [ %s] /Count %d >>\nendobj\n",
		kids.String(), len(sources)); err != nil {
		return Result{}, err
	}

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if err := encodePage(ctx, cw, offsets, i, src, opts); err != nil {
			return Result{}, fmt.Errorf("page %d (%s): %w", i+1, src.Name, err)
		}
	}

	// Cross-reference table and trailer.
	xrefOff := cw.off
	size := len(offsets)
	if err := cw.printf("xref\n0 %d\n0000000000 65535 f \n", size); err != nil {
		return Result{}, err
	}
	for _, off := range offsets[1:] {
		if err := cw.printf("%010d 00000 n \n", off); err != nil {
			return Result{}, err
		}
	}
	if err := cw.printf("trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		size, xrefOff); err != nil {
		return Result{}, err
	}

	return Result{PageCount: len(sources), BytesWritten: cw.off}, nil
}

func encodePage(ctx context.Context, cw *countingWriter, offsets []int64, i int, src Source, opts Options) error {
	base := pageObjBase(i)
	imgObj, lenObj, contentObj, pageObj := base, base+1, base+2, base+3

	rc, err := src.Open(ctx)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer rc.Close()

	info, prefix, err := ScanJPEG(rc)
	if err != nil {
		return err
	}

	// Image XObject. The stream length is an indirect reference filled
	// in after the copy so the JPEG never has to be held in memory.
	offsets[imgObj] = cw.off
	if err := cw.printf("%d 0 obj\n<< /Type /XObject /Subtype /Image /Width %d /Height %d "+
		"/ColorSpace %s /BitsPerComponent 8 /Filter /DCTDecode /Length %d 0 R >>\nstream\n",
		imgObj, info.Width, info.Height, info.ColorSpace(), lenObj); err != nil {
		return err
	}

	n, err := cw.Write(prefix)
	if err != nil {
		return err
	}
	streamLen := int64(n)

	copied, err := io.Copy(cw, rc)
	if err != nil {
		return fmt.Errorf("copy image data: %w", err)
	}
	streamLen += copied

	if err := cw.printf("\nendstream\nendobj\n"); err != nil {
		return err
	}

	offsets[lenObj] = cw.off
	if err := cw.printf("%d 0 obj\n%d\nendobj\n", lenObj, streamLen); err != nil {
		return err
	}

	// Content stream: fit the image inside the page, centered.
	x, y, dw, dh := fitRect(float64(info.Width), float64(info.Height), opts.PageWidth, opts.PageHeight)
	content := fmt.Sprintf("q %s 0 0 %s %s %s cm /Im0 Do Q", num(dw), num(dh), num(x), num(y))

	offsets[contentObj] = cw.off
	if err := cw.printf("%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
		contentObj, len(content), content); err != nil {
		return err
	}

	offsets[pageObj] = cw.off
	return cw.printf("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] "+
		"/Resources << /XObject << /Im0 %d 0 R >> >> /Contents %d 0 R >>\nendobj\n",
		pageObj, num(opts.PageWidth), num(opts.PageHeight), imgObj, contentObj)
}

// fitRect scales (iw, ih) to fit inside (pw, ph) preserving aspect
// ratio, centered. Slides generated at 16:9 fill the page exactly;
// anything else letterboxes.
func fitRect(iw, ih, pw, ph float64) (x, y, w, h float64) {
	scale := pw / iw
	if s := ph / ih; s < scale {
		scale = s
	}
	w = iw * scale
	h = ih * scale
	x = (pw - w) / 2
	y = (ph - h) / 2
	return
}

// Probe checks every source against the lean path without producing
// output. Export runs it first so degradation is decided before any
// bytes are written to the artifact.
func Probe(ctx context.Context, sources []Source) error {
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		rc, err := src.Open(ctx)
		if err != nil {
			return fmt.Errorf("page %d (%s): open source: %w", i+1, src.Name, err)
		}
		_, _, err = ScanJPEG(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("page %d (%s): %w", i+1, src.Name, err)
		}
	}
	return nil
}

// EncodeAuto probes the sources and encodes with the streaming path,
// degrading to the buffered encoder when any source is unsupported.
// The returned bool reports whether the lean path was used.
func EncodeAuto(ctx context.Context, w io.Writer, sources []Source, opts Options) (Result, bool, error) {
	if err := Probe(ctx, sources); err != nil {
		if !errors.Is(err, ErrUnsupportedFormat) {
			return Result{}, false, err
		}
		res, ferr := EncodeBuffered(ctx, w, sources, opts)
		return res, false, ferr
	}

	res, err := Encode(ctx, w, sources, opts)
	return res, true, err
}
