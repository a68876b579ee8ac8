package pdf

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	"github.com/Abraxas-365/deckgen/internal/export/pdfenc"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func pdfBytes(t *testing.T, pages int) []byte {
	t.Helper()
	img := jpegBytes(t, 64, 36)
	sources := make([]pdfenc.Source, 0, pages)
	for i := 0; i < pages; i++ {
		sources = append(sources, pdfenc.Source{
			Name: "page",
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(img)), nil
			},
		})
	}
	var buf bytes.Buffer
	if _, err := pdfenc.Encode(context.Background(), &buf, sources, pdfenc.Options{}); err != nil {
		t.Fatalf("build pdf fixture: %v", err)
	}
	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	data := pdfBytes(t, 3)

	n, err := PageCount(data)
	if err != nil {
		t.Fatalf("PageCount: %v", err)
	}
	if n != 3 {
		t.Fatalf("PageCount = %d, want 3", n)
	}

	if _, err := PageCount([]byte("not a pdf")); err == nil {
		t.Fatal("expected error for junk input")
	}
}

func TestDetectImageFormat(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr bool
	}{
		{"jpeg", jpegBytes(t, 32, 18), "jpeg", false},
		{"png", pngBytes(t, 32, 18), "png", false},
		{"junk", []byte("definitely not an image"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectImageFormat(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConvertImageToJPEG(t *testing.T) {
	converted, err := ConvertImageToJPEG(pngBytes(t, 48, 27))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(converted))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 48 || b.Dy() != 27 {
		t.Fatalf("dimensions = %dx%d, want 48x27", b.Dx(), b.Dy())
	}

	if _, err := ConvertImageToJPEG([]byte("junk")); err == nil {
		t.Fatal("expected error for junk input")
	}
}
