package export

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/go-pdf/fpdf"
)

// PageOptions describes the fixed output page geometry.
type PageOptions struct {
	// Physical page size and uniform margin, in millimetres.
	WidthMM  float64
	HeightMM float64
	MarginMM float64
	// DPI is the assumed CSS pixel density of the captured tree.
	DPI float64
	// Oversample is the capture scale factor the bitmap was rendered at.
	Oversample float64
}

// DefaultPageOptions is A4 with a 10mm margin, 96dpi CSS pixels captured at
// 2x for legibility.
func DefaultPageOptions() PageOptions {
	return PageOptions{
		WidthMM:    210,
		HeightMM:   297,
		MarginMM:   10,
		DPI:        96,
		Oversample: 2,
	}
}

func (o PageOptions) contentWidthMM() float64 {
	return o.WidthMM - 2*o.MarginMM
}

func (o PageOptions) contentHeightMM() float64 {
	return o.HeightMM - 2*o.MarginMM
}

// mmPerPixel converts bitmap pixels to physical units under the fixed
// density assumption.
func (o PageOptions) mmPerPixel() float64 {
	return 25.4 / (o.DPI * o.Oversample)
}

// band is one horizontal slice of the bitmap placed on its own page.
type band struct {
	// Pixel rows [TopPx, TopPx+HeightPx) of the source bitmap.
	TopPx    int
	HeightPx int
	// Physical placement on the page.
	XMM      float64
	YMM      float64
	WidthMM  float64
	HeightMM float64
}

// pagePlan is the pure geometry of a pagination: one band per output page,
// top-to-bottom.
type pagePlan struct {
	Scale float64
	Bands []band
}

// planPages converts bitmap pixel dimensions into per-page band placements.
// The bitmap is scaled uniformly to the page content width; if the scaled
// height fits the content height it becomes a single page, otherwise it is
// sliced into content-height bands with the final band allowed to run short.
// Every placement is centered horizontally and starts at the top margin.
func planPages(widthPx, heightPx int, opts PageOptions) (pagePlan, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return pagePlan{}, NewError(PhasePaginate, KindPaginate,
			fmt.Sprintf("bitmap has degenerate size %dx%d", widthPx, heightPx), nil)
	}
	if opts.contentWidthMM() <= 0 || opts.contentHeightMM() <= 0 {
		return pagePlan{}, NewError(PhasePaginate, KindValidation, "margins leave no content area", nil)
	}

	mmPerPx := opts.mmPerPixel()
	bitmapWMM := float64(widthPx) * mmPerPx
	bitmapHMM := float64(heightPx) * mmPerPx

	scale := opts.contentWidthMM() / bitmapWMM
	scaledW := bitmapWMM * scale
	scaledH := bitmapHMM * scale

	xMM := opts.MarginMM + (opts.contentWidthMM()-scaledW)/2
	yMM := opts.MarginMM

	const epsilon = 1e-9

	if scaledH <= opts.contentHeightMM()+epsilon {
		return pagePlan{
			Scale: scale,
			Bands: []band{{
				TopPx:    0,
				HeightPx: heightPx,
				XMM:      xMM,
				YMM:      yMM,
				WidthMM:  scaledW,
				HeightMM: scaledH,
			}},
		}, nil
	}

	// Pixel rows covered by one page of content height at this scale.
	bandPx := opts.contentHeightMM() / (scale * mmPerPx)
	count := int(math.Ceil(float64(heightPx)/bandPx - epsilon))

	plan := pagePlan{Scale: scale, Bands: make([]band, 0, count)}
	for i := 0; i < count; i++ {
		top := int(math.Round(float64(i) * bandPx))
		bottom := int(math.Round(float64(i+1) * bandPx))
		if bottom > heightPx {
			bottom = heightPx
		}
		if bottom <= top {
			break
		}
		plan.Bands = append(plan.Bands, band{
			TopPx:    top,
			HeightPx: bottom - top,
			XMM:      xMM,
			YMM:      yMM,
			WidthMM:  scaledW,
			HeightMM: float64(bottom-top) * mmPerPx * scale,
		})
	}
	return plan, nil
}

// paginate slices the captured bitmap into bands and assembles the
// fixed-page-size document.
func paginate(bitmap []byte, opts PageOptions, w io.Writer) (pages int, bytesWritten int64, err error) {
	img, _, err := image.Decode(bytes.NewReader(bitmap))
	if err != nil {
		return 0, 0, NewError(PhasePaginate, KindPaginate, "decode captured bitmap", err)
	}

	bounds := img.Bounds()
	plan, err := planPages(bounds.Dx(), bounds.Dy(), opts)
	if err != nil {
		return 0, 0, err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: opts.WidthMM, Ht: opts.HeightMM},
	})
	pdf.SetAutoPageBreak(false, 0)

	for i, b := range plan.Bands {
		slice := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), b.HeightPx))
		draw.Draw(slice, slice.Bounds(), img, image.Pt(bounds.Min.X, bounds.Min.Y+b.TopPx), draw.Src)

		var buf bytes.Buffer
		if err := png.Encode(&buf, slice); err != nil {
			return 0, 0, NewError(PhasePaginate, KindPaginate, "encode page band", err)
		}

		name := fmt.Sprintf("band-%d", i)
		options := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, options, &buf)
		pdf.ImageOptions(name, b.XMM, b.YMM, b.WidthMM, b.HeightMM, false, options, 0, "")
	}

	if pdf.Err() {
		return 0, 0, NewError(PhasePaginate, KindPaginate, "assemble document", pdf.Error())
	}

	counting := &countingWriter{w: w}
	if err := pdf.Output(counting); err != nil {
		return 0, 0, NewError(PhaseEmit, KindPaginate, "write document", err)
	}
	return len(plan.Bands), counting.count, nil
}

type countingWriter struct {
	w     io.Writer
	count int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.count += int64(n)
	return n, err
}
