// Package render draws layout instructions onto a PDF document.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoder for DecodeSnapshot
	_ "image/png"  // register decoder for DecodeSnapshot
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/layout"
)

// ascent is the distance from the top of a line to its baseline, as a
// multiple of the font size.
const ascent = 0.8

const snapshotName = "map-snapshot"

// Snapshot is a decoded map image ready to embed.
type Snapshot struct {
	Data   []byte
	Format string // "PNG" or "JPG"
	Width  int    // pixels
	Height int
}

// DecodeSnapshot checks that b is a PNG or JPEG image and reads its size.
// Returns domain.ErrValidation for anything else.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: map snapshot is not a PNG or JPEG image", domain.ErrValidation)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Snapshot{}, fmt.Errorf("%w: map snapshot has no pixels", domain.ErrValidation)
	}
	s := Snapshot{Data: b, Width: cfg.Width, Height: cfg.Height}
	switch format {
	case "png":
		s.Format = "PNG"
	case "jpeg":
		s.Format = "JPG"
	default:
		return Snapshot{}, fmt.Errorf("%w: unsupported snapshot format %q", domain.ErrValidation, format)
	}
	return s, nil
}

// Document is everything one rendered PDF needs. Snapshot may be nil when
// the instructions contain no image. Title sets the document metadata title.
type Document struct {
	Title        string
	Instructions []layout.Instruction
	Snapshot     *Snapshot
}

// PDFRenderer draws instructions with fpdf on pages of a fixed size, in
// points.
type PDFRenderer struct {
	pageWidth  float64
	pageHeight float64
	title      string
}

// NewPDFRenderer returns a renderer for pages of the given size in points.
func NewPDFRenderer(pageWidth, pageHeight float64) *PDFRenderer {
	return &PDFRenderer{pageWidth: pageWidth, pageHeight: pageHeight}
}

// WithTitle returns a copy of r whose documents carry title as their
// metadata title unless the Document names its own.
func (r *PDFRenderer) WithTitle(title string) *PDFRenderer {
	c := *r
	c.title = title
	return &c
}

// Render writes a PDF for doc to w.
func (r *PDFRenderer) Render(w io.Writer, doc Document) error {
	snapshot := doc.Snapshot
	title := doc.Title
	if title == "" {
		title = r.title
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: r.pageWidth, Ht: r.pageHeight},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("dayplanner", true)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if snapshot != nil {
		pdf.RegisterImageOptionsReader(snapshotName,
			fpdf.ImageOptions{ImageType: snapshot.Format}, bytes.NewReader(snapshot.Data))
	}

	for _, in := range doc.Instructions {
		if in.Kind != layout.KindPage && pdf.PageNo() == 0 {
			pdf.AddPage()
		}
		switch in.Kind {
		case layout.KindPage:
			pdf.AddPage()
		case layout.KindText:
			style := ""
			if in.Payload.Bold {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, in.Payload.FontSize)
			pdf.SetTextColor(33, 37, 41)
			for i, line := range in.Payload.Lines {
				baseline := in.Y + float64(i)*in.Payload.LineHeight + in.Payload.FontSize*ascent
				pdf.Text(in.X, baseline, tr(line))
			}
		case layout.KindCircle:
			pdf.SetDrawColor(42, 157, 143)
			pdf.SetFillColor(42, 157, 143)
			pdf.SetLineWidth(1)
			style := "D"
			if in.Payload.Filled {
				style = "FD"
			}
			pdf.Circle(in.X, in.Y, in.Payload.Radius, style)
		case layout.KindLine:
			pdf.SetDrawColor(173, 181, 189)
			pdf.SetLineWidth(1)
			pdf.Line(in.X, in.Y, in.Payload.X2, in.Payload.Y2)
		case layout.KindImage:
			if snapshot == nil {
				return errors.New("render.PDFRenderer.Render: image instruction without a snapshot")
			}
			pdf.ImageOptions(snapshotName, in.X, in.Y, in.Payload.Width, in.Payload.Height,
				false, fpdf.ImageOptions{ImageType: snapshot.Format}, 0, "")
		}
		if pdf.Err() {
			return fmt.Errorf("render.PDFRenderer.Render: %w", pdf.Error())
		}
	}
	if pdf.PageNo() == 0 {
		pdf.AddPage()
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render.PDFRenderer.Render: %w", err)
	}
	return nil
}
