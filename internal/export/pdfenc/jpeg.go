package pdfenc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ImageInfo describes a JPEG as far as PDF embedding needs: dimensions
// and colorspace, taken from the frame header without decoding pixels.
type ImageInfo struct {
	Width      int
	Height     int
	Components int // 1 = gray, 3 = YCbCr/RGB
}

// ColorSpace returns the PDF colorspace name for the image.
func (i ImageInfo) ColorSpace() string {
	if i.Components == 1 {
		return "/DeviceGray"
	}
	return "/DeviceRGB"
}

var (
	// ErrUnsupportedFormat means the source cannot go through the lean
	// path (not a JPEG, progressive, arithmetic-coded, or CMYK) and the
	// caller should degrade to the buffered encoder.
	ErrUnsupportedFormat = errors.New("image not supported by the streaming encoder")

	errTruncated = errors.New("truncated JPEG header")
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerTEM  = 0x01
	markerRST0 = 0xD0
	markerRST7 = 0xD7
)

// baseline and extended-sequential Huffman frames embed cleanly with
// DCTDecode; everything else degrades.
func sofSupported(marker byte) (frame bool, supported bool) {
	switch marker {
	case 0xC0, 0xC1: // baseline, extended sequential
		return true, true
	case 0xC2, 0xC3, 0xC5, 0xC6, 0xC7, // progressive and friends
		0xC9, 0xCA, 0xCB, 0xCD, 0xCE, 0xCF: // arithmetic variants
		return true, false
	default:
		return false, false
	}
}

// ScanJPEG reads JPEG segments from r until it finds the frame header
// and returns the image info together with every byte consumed so far.
// The caller writes the prefix followed by the rest of r to reproduce
// the exact source bytes, so only the header prefix is ever buffered.
func ScanJPEG(r io.Reader) (ImageInfo, []byte, error) {
	var prefix bytes.Buffer
	tee := io.TeeReader(r, &prefix)

	var magic [2]byte
	if _, err := io.ReadFull(tee, magic[:]); err != nil {
		return ImageInfo{}, nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if magic[0] != 0xFF || magic[1] != markerSOI {
		return ImageInfo{}, nil, fmt.Errorf("%w: missing SOI marker", ErrUnsupportedFormat)
	}

	for {
		marker, err := nextMarker(tee)
		if err != nil {
			return ImageInfo{}, nil, err
		}

		// Standalone markers carry no length field.
		if marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7) {
			continue
		}
		if marker == markerEOI || marker == markerSOS {
			// Hit entropy-coded data without a frame header.
			return ImageInfo{}, nil, fmt.Errorf("%w: no frame header before SOS", ErrUnsupportedFormat)
		}

		var lenBuf [2]byte
		if _, err := io.ReadFull(tee, lenBuf[:]); err != nil {
			return ImageInfo{}, nil, errTruncated
		}
		segLen := int(binary.BigEndian.Uint16(lenBuf[:]))
		if segLen < 2 {
			return ImageInfo{}, nil, fmt.Errorf("%w: invalid segment length", ErrUnsupportedFormat)
		}

		if frame, ok := sofSupported(marker); frame {
			if !ok {
				return ImageInfo{}, nil, fmt.Errorf("%w: progressive or arithmetic JPEG", ErrUnsupportedFormat)
			}

			var sof [6]byte // precision, height, width, components
			if segLen-2 < len(sof) {
				return ImageInfo{}, nil, errTruncated
			}
			if _, err := io.ReadFull(tee, sof[:]); err != nil {
				return ImageInfo{}, nil, errTruncated
			}

			info := ImageInfo{
				Height:     int(binary.BigEndian.Uint16(sof[1:3])),
				Width:      int(binary.BigEndian.Uint16(sof[3:5])),
				Components: int(sof[5]),
			}
			if info.Width == 0 || info.Height == 0 {
				return ImageInfo{}, nil, fmt.Errorf("%w: zero dimensions", ErrUnsupportedFormat)
			}
			if info.Components != 1 && info.Components != 3 {
				// 4-component (CMYK/YCCK) JPEGs need Adobe transform
				// handling the lean path does not do.
				return ImageInfo{}, nil, fmt.Errorf("%w: %d-component JPEG", ErrUnsupportedFormat, info.Components)
			}

			return info, prefix.Bytes(), nil
		}

		if _, err := io.CopyN(io.Discard, tee, int64(segLen-2)); err != nil {
			return ImageInfo{}, nil, errTruncated
		}
	}
}

// nextMarker scans to the next 0xFF-prefixed marker byte, tolerating
// fill bytes between segments.
func nextMarker(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, errTruncated
	}
	if b[0] != 0xFF {
		return 0, fmt.Errorf("%w: expected marker prefix", ErrUnsupportedFormat)
	}
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, errTruncated
		}
		if b[0] != 0xFF {
			return b[0], nil
		}
	}
}
