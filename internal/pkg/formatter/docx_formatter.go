package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(reply string) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	title := doc.AddParagraph()
	title.SetStyle("Title")
	title.AddRun().AddText(baseTitle)

	for _, b := range splitBlocks(reply) {
		para := doc.AddParagraph()
		switch b.kind {
		case blockHeading:
			para.SetStyle("Heading2")
			para.AddRun().AddText(b.text)
		case blockBullet:
			para.AddRun().AddText("• " + b.text)
		default:
			para.AddRun().AddText(b.text)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
