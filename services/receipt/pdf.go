package receipt

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// Certificate layout constants, A4 portrait in points.
const (
	pageLeftMargin  = 20.0
	pageRightMargin = 45.0
	labelWidth      = 160.0
	fieldFontSize   = 11.0
	fieldLineHeight = 14.0
	fieldSpacing    = 16.0
	qrImageSize     = 180.0
)

// PDFRenderer renders a receipt as a one-page A4 certificate. The QR code is
// fetched from an external image endpoint; if that fetch fails the image is
// omitted and the rest of the document is still produced.
type PDFRenderer struct {
	client *http.Client
	logger *zap.Logger
}

// NewPDFRenderer builds a renderer. A nil client gets a default with a
// conservative timeout so a slow QR endpoint cannot stall the request.
func NewPDFRenderer(client *http.Client, logger *zap.Logger) *PDFRenderer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &PDFRenderer{client: client, logger: logger}
}

// RenderCertificate produces the PDF bytes for a receipt view.
func (p *PDFRenderer) RenderCertificate(v View) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	// Core fonts are cp1252-only; values carry em-dashes and other UTF-8
	// runes, so everything drawn goes through the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - pageLeftMargin - pageRightMargin
	valueX := pageLeftMargin + labelWidth
	valueWidth := contentWidth - labelWidth

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(pageLeftMargin, 62, "Smart Turjman - Verified Transaction Receipt")

	cursorY := 102.0
	drawField := func(label, value string) {
		pdf.SetFont("Helvetica", "B", fieldFontSize)
		pdf.Text(pageLeftMargin, cursorY, tr(label)+":")

		pdf.SetFont("Helvetica", "", fieldFontSize)
		if value == "" {
			value = "N/A"
		}
		// SplitText wraps on words and falls back to character splits for
		// over-long tokens like hashes and URLs.
		lines := pdf.SplitText(tr(value), valueWidth)
		for i, line := range lines {
			pdf.Text(valueX, cursorY+float64(i)*fieldLineHeight, line)
		}
		cursorY += float64(len(lines)-1)*fieldLineHeight + fieldSpacing
	}

	drawField("Transaction Hash", v.TxHash)
	drawField("Service", v.Service)
	drawField("Partner", v.Partner)
	drawField("Amount", v.Amount)
	drawField("Network", v.Network)
	drawField("Status", v.Status)
	cursorY += 20
	drawField("View on ArcScan", v.ExplorerURL)
	cursorY += 22

	p.embedQR(pdf, v.QRURL, cursorY)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// embedQR fetches and places the QR image. Failures are logged and swallowed.
func (p *PDFRenderer) embedQR(pdf *gofpdf.Fpdf, qrURL string, y float64) {
	resp, err := p.client.Get(qrURL)
	if err != nil {
		p.logger.Warn("QR fetch failed; continuing without image", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("QR fetch failed; continuing without image", zap.Int("status", resp.StatusCode))
		return
	}
	png, err := io.ReadAll(resp.Body)
	if err != nil {
		p.logger.Warn("QR read failed; continuing without image", zap.Error(err))
		return
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("receipt-qr", opts, bytes.NewReader(png))
	if pdf.Err() {
		p.logger.Warn("QR embed failed; continuing without image", zap.Error(pdf.Error()))
		pdf.ClearError()
		return
	}
	pdf.ImageOptions("receipt-qr", 50, y+10, qrImageSize, qrImageSize, false, opts, 0, "")
}
