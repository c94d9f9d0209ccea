package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	pdfFontName = "DejaVuSans"

	// Core fonts only cover Latin-1; replies in other scripts need the bundled TTF.
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// resolveFontPath looks for the font next to the binary first, then in the source tree.
func resolveFontPath() string {
	for _, path := range []string{pdfFontRuntimePath, pdfFontSourcePath} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (pf *PDFFormatter) Format(reply string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 20)
	pdf.Cell(0, 10, baseTitle)
	pdf.Ln(14)

	for _, b := range splitBlocks(reply) {
		switch b.kind {
		case blockHeading:
			pdf.SetFont(fontName, "B", 14)
			pdf.Ln(2)
			pdf.MultiCell(0, 8, b.text, "", "", false)
		case blockBullet:
			pdf.SetFont(fontName, "", 12)
			pdf.SetX(pdf.GetX() + 5)
			pdf.MultiCell(0, 6, "- "+b.text, "", "", false)
		default:
			pdf.SetFont(fontName, "", 12)
			pdf.MultiCell(0, 6, b.text, "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
