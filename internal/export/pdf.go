// Package export renders notes into downloadable documents. The rest of
// the application only sees the Renderer interface, so the concrete PDF
// library stays confined to this package.
package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

// Renderer turns a note's title and markdown body into a document.
type Renderer interface {
	Render(title, text string) ([]byte, error)
}

// PDF renders notes with a centered bold title and a plain body, the
// markdown kept verbatim. Core PDF fonts cover latin-1 only, so text is
// run through the cp1252 translator; characters outside that set are
// substituted rather than breaking the document.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

func (p *PDF) Render(title, text string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 20)
	doc.MultiCell(0, 10, tr(title), "", "C", false)
	doc.Ln(6)

	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 6, tr(text), "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
