package jobpdf

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
)

const refCodePixels = 256

// encodeReferenceCode renders code as a square QR symbol in PNG form.
func encodeReferenceCode(code string) ([]byte, error) {
	bc, err := qr.Encode(code, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encoding reference code: %w", err)
	}
	bc, err = barcode.Scale(bc, refCodePixels, refCodePixels)
	if err != nil {
		return nil, fmt.Errorf("scaling reference code: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, bc); err != nil {
		return nil, fmt.Errorf("encoding reference code: %w", err)
	}
	return buf.Bytes(), nil
}

// drawReferenceCode places the QR badge in the top-right corner of the
// current page, inside the margins. It does not move the cursor.
func (dc *drawContext) drawReferenceCode(code string) error {
	data, err := encodeReferenceCode(code)
	if err != nil {
		return err
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	dc.pdf.RegisterImageOptionsReader("refcode", opts, bytes.NewReader(data))
	if dc.pdf.Err() {
		return dc.pdf.Error()
	}
	size := dc.geo.ReferenceCodeSize
	x := dc.geo.PageWidth - dc.geo.MarginRight - size
	y := dc.geo.MarginTop
	dc.pdf.ImageOptions("refcode", x, y, size, size, false, opts, 0, "")
	return dc.pdf.Error()
}
