// Package imgprobe reads the pixel dimensions of PNG and JPEG images from
// their encoded headers without decoding any pixel data.
package imgprobe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnsupportedFormat is returned for data that is neither a PNG nor a JPEG,
// or whose header is truncated before the dimensions could be read.
var ErrUnsupportedFormat = errors.New("imgprobe: unsupported image format")

// Format identifies the encoding of a probed image.
type Format string

const (
	PNG  Format = "PNG"
	JPEG Format = "JPG"
)

// Info holds the probed dimensions of an image, in pixels.
type Info struct {
	Format Format
	Width  int
	Height int
}

var pngSignature = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// Probe returns the format and pixel dimensions of the encoded image.
func Probe(data []byte) (Info, error) {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return probePNG(data)
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return probeJPEG(data)
	default:
		return Info{}, ErrUnsupportedFormat
	}
}

// ProbeReader reads r to the end and probes the result.
func ProbeReader(r io.Reader) (Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Info{}, fmt.Errorf("imgprobe: reading image: %w", err)
	}
	return Probe(data)
}

// probePNG reads the IHDR width and height, which follow the 8-byte
// signature, the chunk length and the chunk type.
func probePNG(data []byte) (Info, error) {
	if len(data) < 24 {
		return Info{}, fmt.Errorf("%w: truncated PNG header", ErrUnsupportedFormat)
	}
	w := binary.BigEndian.Uint32(data[16:20])
	h := binary.BigEndian.Uint32(data[20:24])
	return Info{Format: PNG, Width: int(w), Height: int(h)}, nil
}

// probeJPEG walks the marker segments after SOI until it reaches a frame
// header. DHT (C4), JPG (C8) and DAC (CC) share the C0-CF range but are not
// frame markers.
func probeJPEG(data []byte) (Info, error) {
	pos := 2
	for {
		if pos >= len(data) || data[pos] != 0xFF {
			return Info{}, fmt.Errorf("%w: JPEG marker not found at offset %d", ErrUnsupportedFormat, pos)
		}
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			return Info{}, fmt.Errorf("%w: truncated JPEG", ErrUnsupportedFormat)
		}
		marker := data[pos]
		pos++

		// Standalone markers carry no length field.
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			continue
		}
		if marker == 0xD8 || marker == 0xD9 || marker == 0xDA {
			return Info{}, fmt.Errorf("%w: no frame header before marker %02X", ErrUnsupportedFormat, marker)
		}
		if pos+2 > len(data) {
			return Info{}, fmt.Errorf("%w: truncated JPEG segment", ErrUnsupportedFormat)
		}
		length := int(binary.BigEndian.Uint16(data[pos : pos+2]))
		if length < 2 {
			return Info{}, fmt.Errorf("%w: bad JPEG segment length %d", ErrUnsupportedFormat, length)
		}

		if isFrameMarker(marker) {
			// length(2) precision(1) height(2) width(2)
			if pos+7 > len(data) {
				return Info{}, fmt.Errorf("%w: truncated JPEG frame header", ErrUnsupportedFormat)
			}
			h := binary.BigEndian.Uint16(data[pos+3 : pos+5])
			w := binary.BigEndian.Uint16(data[pos+5 : pos+7])
			return Info{Format: JPEG, Width: int(w), Height: int(h)}, nil
		}
		pos += length
	}
}

func isFrameMarker(m byte) bool {
	return m >= 0xC0 && m <= 0xCF && m != 0xC4 && m != 0xC8 && m != 0xCC
}
