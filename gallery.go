package jobpdf

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/revuapp/jobpdf/imgprobe"
)

const galleryTitle = "Uploaded Photos"

// galleryItem is an attachment that was probed and registered with the
// engine and is ready to be placed.
type galleryItem struct {
	index    int // position in ReportRecord.Images
	name     string
	opts     fpdf.ImageOptions
	wPx, hPx int
	w, h     float64 // display size in mm
}

// displaySize converts pixel dimensions to millimetres at dpi and scales the
// result down to fit maxW x maxH, preserving the aspect ratio. Images are
// never enlarged.
func displaySize(wPx, hPx int, dpi, maxW, maxH float64) (w, h float64) {
	natW := float64(wPx) / dpi * MillimetersPerInch
	natH := float64(hPx) / dpi * MillimetersPerInch
	scale := math.Min(math.Min(maxW/natW, maxH/natH), 1)
	return natW * scale, natH * scale
}

// fitsSideBySide reports whether images of width w1 and w2 fit on one row
// between the margins with the gallery gap between them.
func fitsSideBySide(g PageGeometry, w1, w2 float64) bool {
	return g.MarginLeft+w1+g.GalleryGap+w2+g.MarginRight <= g.PageWidth
}

// planGalleryRows groups items into rows of one or two in input order. A
// second image joins the row only when it fits beside the first; otherwise
// it starts the next row.
func planGalleryRows(g PageGeometry, items []galleryItem) [][]galleryItem {
	var rows [][]galleryItem
	for i := 0; i < len(items); {
		if i+1 < len(items) && fitsSideBySide(g, items[i].w, items[i+1].w) {
			rows = append(rows, items[i:i+2])
			i += 2
			continue
		}
		rows = append(rows, items[i:i+1])
		i++
	}
	return rows
}

// prepareImages probes and registers every attachment. Attachments that
// cannot be used are recorded as skipped, or abort the render in strict
// mode.
func (dc *drawContext) prepareImages(images []ImageAttachment) ([]galleryItem, error) {
	g := dc.geo
	items := make([]galleryItem, 0, len(images))
	for i, img := range images {
		item, err := dc.prepareImage(i, img)
		if err != nil {
			ie := ImageError{Index: i, Name: img.Name, Err: err}
			if dc.strict {
				return nil, newRenderError("Gallery", &ie)
			}
			dc.logger.Printf("skipping %v", &ie)
			dc.skipped = append(dc.skipped, ie)
			continue
		}
		item.w, item.h = displaySize(item.wPx, item.hPx, g.DPI, g.GalleryMaxWidth, g.GalleryMaxHeight)
		items = append(items, item)
	}
	return items, nil
}

func (dc *drawContext) prepareImage(i int, img ImageAttachment) (galleryItem, error) {
	info, err := imgprobe.Probe(img.Data)
	if err != nil {
		return galleryItem{}, err
	}
	if info.Width == 0 || info.Height == 0 {
		return galleryItem{}, fmt.Errorf("%w: zero image dimension", ErrUnsupportedImageFormat)
	}

	name := fmt.Sprintf("photo-%d", i+1)
	opts := fpdf.ImageOptions{ImageType: string(info.Format)}
	dc.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if dc.pdf.Err() {
		err := dc.pdf.Error()
		dc.pdf.ClearError()
		return galleryItem{}, fmt.Errorf("embedding image: %w", err)
	}
	return galleryItem{
		index: i,
		name:  name,
		opts:  opts,
		wPx:   info.Width,
		hPx:   info.Height,
	}, nil
}

// drawGallery draws the photo band and the image rows. Each row starts on a
// new page when its allowance would pass the gallery bottom.
func (dc *drawContext) drawGallery(c LayoutCursor, images []ImageAttachment) (LayoutCursor, error) {
	items, err := dc.prepareImages(images)
	if err != nil {
		return c, err
	}
	if len(items) == 0 {
		return c, nil
	}

	g := dc.geo
	c = dc.blockGap(c)
	c = dc.ensureSpace(c, g.BandHeight+g.BandGap+g.GalleryRowAllowance, g.GalleryBottom)
	c = dc.band(c, galleryTitle)

	for _, row := range planGalleryRows(g, items) {
		c = dc.ensureSpace(c, g.GalleryRowAllowance, g.GalleryBottom)
		c = dc.drawGalleryRow(c, row)
		if dc.pdf.Err() {
			return c, newRenderError("Gallery", dc.pdf.Error())
		}
	}
	return c, nil
}

func (dc *drawContext) drawGalleryRow(c LayoutCursor, row []galleryItem) LayoutCursor {
	g := dc.geo
	rowY := c.Y
	imgY := rowY + g.CaptionGap
	x := g.MarginLeft
	maxH := 0.0

	dc.pdf.SetFont(fontFamily, "I", 10)
	dc.setText(dc.colors.captionText)
	for _, it := range row {
		dc.pdf.SetXY(x, rowY)
		dc.pdf.CellFormat(it.w, g.CaptionHeight, fmt.Sprintf("Photo %d", it.index+1), "", 0, "L", false, 0, "")
		dc.pdf.ImageOptions(it.name, x, imgY, it.w, it.h, false, it.opts, 0, "")
		maxH = math.Max(maxH, it.h)
		x += it.w + g.GalleryGap
	}

	c.X = g.MarginLeft
	c.Y = imgY + maxH + g.GalleryRowGap
	dc.at(c)
	return c
}
