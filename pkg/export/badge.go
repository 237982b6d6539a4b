package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// Badge describes a printable credential for a student enrollment or a volunteer.
type Badge struct {
	Title    string
	Holder   string
	Subtitle string
	Lines    []string
	// Code is encoded verbatim in the QR image; it is the record id.
	Code string
	// Logo is an optional PNG/JPEG shown above the title.
	Logo     []byte
	LogoType string
}

// BadgeRenderer produces credit-card sized badge PDFs with an embedded QR code.
type BadgeRenderer struct {
	qrSize int
}

// NewBadgeRenderer constructs a renderer.
func NewBadgeRenderer() *BadgeRenderer {
	return &BadgeRenderer{qrSize: 512}
}

// Render draws the badge and returns the PDF bytes.
func (r *BadgeRenderer) Render(b Badge) ([]byte, error) {
	if b.Code == "" {
		return nil, fmt.Errorf("badge code required")
	}
	png, err := qrcode.Encode(b.Code, qrcode.Medium, r.qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: 86, Ht: 140},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(6, 6, 6)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	y := 8.0
	if len(b.Logo) > 0 {
		imgType := "PNG"
		if b.LogoType == "image/jpeg" {
			imgType = "JPG"
		}
		opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: false}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(b.Logo))
		if pdf.Ok() {
			pdf.ImageOptions("logo", 33, y, 20, 0, false, opts, 0, "")
			y += 22
		} else {
			pdf.ClearError()
		}
	}

	pdf.SetXY(6, y)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(74, 7, tr(b.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 14)
	pdf.MultiCell(74, 7, tr(b.Holder), "", "C", false)
	if b.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(74, 6, tr(b.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "", 8)
	for _, line := range b.Lines {
		pdf.CellFormat(74, 5, tr(line), "", 1, "C", false, 0, "")
	}

	qrOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", qrOpts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 20, 88, 46, 46, false, qrOpts, 0, "")
	pdf.SetXY(6, 134)
	pdf.SetFont("Courier", "", 6)
	pdf.CellFormat(74, 4, b.Code, "", 0, "C", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render badge: %w", err)
	}
	return buf.Bytes(), nil
}
