package pdfenc

import (
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// EncodeBuffered is the degradation path: pdfcpu decodes and re-embeds
// every image, which accepts PNG, progressive JPEG and friends at the
// cost of holding decoded frames in memory.
func EncodeBuffered(ctx context.Context, w io.Writer, sources []Source, opts Options) (Result, error) {
	if len(sources) == 0 {
		return Result{}, ErrNoPages
	}
	opts = opts.withDefaults()

	readers := make([]io.Reader, 0, len(sources))
	closers := make([]io.Closer, 0, len(sources))
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		rc, err := src.Open(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("page %d (%s): open source: %w", i+1, src.Name, err)
		}
		closers = append(closers, rc)
		readers = append(readers, rc)
	}

	imp := pdfcpu.DefaultImportConfig()
	imp.PageDim = &types.Dim{Width: opts.PageWidth, Height: opts.PageHeight}
	imp.PageSize = ""
	imp.Pos = types.Center
	imp.Scale = 1.0
	imp.ScaleAbs = false

	cw := &countingWriter{w: w}
	if err := api.ImportImages(nil, cw, readers, imp, nil); err != nil {
		return Result{}, fmt.Errorf("buffered import: %w", err)
	}

	return Result{PageCount: len(sources), BytesWritten: cw.off}, nil
}
