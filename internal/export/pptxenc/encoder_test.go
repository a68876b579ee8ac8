package pptxenc

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"testing"
)

func jpegSource(t *testing.T, name string, w, h int) Source {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := buf.Bytes()
	return Source{
		Name: name,
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func TestEncodePageCount(t *testing.T) {
	sources := []Source{
		jpegSource(t, "a.jpg", 320, 180),
		jpegSource(t, "b.jpg", 320, 180),
		jpegSource(t, "c.jpg", 320, 180),
	}

	var out bytes.Buffer
	res, err := Encode(context.Background(), &out, sources, Options{Title: "deck"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if res.PageCount != 3 {
		t.Errorf("PageCount = %d, want 3", res.PageCount)
	}
	if res.BytesWritten != int64(out.Len()) {
		t.Errorf("BytesWritten = %d, buffer has %d", res.BytesWritten, out.Len())
	}

	// PPTX is a zip archive.
	if out.Len() < 4 || !bytes.HasPrefix(out.Bytes(), []byte("PK")) {
		t.Error("output is not a zip archive")
	}
}

func TestEncodeNoPages(t *testing.T) {
	var out bytes.Buffer
	if _, err := Encode(context.Background(), &out, nil, Options{}); !errors.Is(err, ErrNoPages) {
		t.Errorf("error = %v, want ErrNoPages", err)
	}
}

func TestEncodeBadImage(t *testing.T) {
	src := Source{
		Name: "bad.jpg",
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader([]byte("not an image"))), nil
		},
	}

	var out bytes.Buffer
	if _, err := Encode(context.Background(), &out, []Source{src}, Options{}); err == nil {
		t.Error("expected error for undecodable image")
	}
}

func TestFitEMU(t *testing.T) {
	tests := []struct {
		name       string
		iw, ih     int64
		x, y, w, h int64
	}{
		{"exact 16:9", 1920, 1080, 0, 0, slideWidth, slideHeight},
		{"square pillarboxed", 512, 512, (slideWidth - slideHeight) / 2, 0, slideHeight, slideHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h := fitEMU(tt.iw, tt.ih)
			if x != tt.x || y != tt.y || w != tt.w || h != tt.h {
				t.Errorf("fitEMU = (%d %d %d %d), want (%d %d %d %d)",
					x, y, w, h, tt.x, tt.y, tt.w, tt.h)
			}
		})
	}
}
