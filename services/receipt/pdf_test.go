package receipt

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"turjman/models"
)

func certificateView() View {
	r := models.Receipt{
		Tx:           "0x" + strings.Repeat("ab", 32),
		ServiceLabel: "Legal Translation — MOFA",
		Partner:      "Turjman Group",
		AmountUSDC:   "75.0",
		Network:      "Arc Testnet",
		Status:       models.StatusVerified,
	}
	return BuildView(r)
}

func TestRenderCertificateProducesPDF(t *testing.T) {
	renderer := NewPDFRenderer(&http.Client{}, zap.NewNop())

	view := certificateView()
	// Point the QR fetch at an endpoint that never answers usefully; the
	// document must still render.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	view.QRURL = srv.URL

	data, err := renderer.RenderCertificate(view)
	if err != nil {
		t.Fatalf("RenderCertificate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
}

func TestRenderCertificateSurvivesQRConnectionFailure(t *testing.T) {
	renderer := NewPDFRenderer(&http.Client{}, zap.NewNop())

	view := certificateView()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on
	view.QRURL = srv.URL

	data, err := renderer.RenderCertificate(view)
	if err != nil {
		t.Fatalf("RenderCertificate after QR failure: %v", err)
	}
	if len(data) == 0 {
		t.Error("empty document")
	}
}

func TestRenderCertificateRejectsBadQRPayload(t *testing.T) {
	renderer := NewPDFRenderer(&http.Client{}, zap.NewNop())

	view := certificateView()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("this is not a png"))
	}))
	defer srv.Close()
	view.QRURL = srv.URL

	data, err := renderer.RenderCertificate(view)
	if err != nil {
		t.Fatalf("RenderCertificate with bad QR payload: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("document corrupted by bad QR payload")
	}
}

func TestRenderCertificateTranslatesNonASCII(t *testing.T) {
	renderer := NewPDFRenderer(&http.Client{}, zap.NewNop())

	// Catalog labels carry em-dashes; values may carry arbitrary UTF-8. The
	// core fonts are cp1252-only, so drawing must translate, not panic.
	view := certificateView()
	view.Service = "Business Setup — DED"
	view.Partner = "Büro für Übersetzungen — №7"
	view.QRURL = "http://127.0.0.1:0/unreachable"

	data, err := renderer.RenderCertificate(view)
	if err != nil {
		t.Fatalf("RenderCertificate: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
}

func TestBuildViewFallbacks(t *testing.T) {
	r := models.Receipt{
		Tx:        "0x" + strings.Repeat("cd", 32),
		ServiceID: "mofa-legal-translation",
	}
	v := BuildView(r)

	if v.Partner != "Turjman Group" {
		t.Errorf("partner fallback = %q", v.Partner)
	}
	if v.Service != "mofa-legal-translation" {
		t.Errorf("service label fallback = %q", v.Service)
	}
	if v.Amount != "1.00 USDC" {
		t.Errorf("amount fallback = %q", v.Amount)
	}
	if v.Status != models.StatusVerified {
		t.Errorf("status fallback = %q", v.Status)
	}
	if !strings.Contains(v.QRURL, "quickchart.io/qr") {
		t.Errorf("qr url = %q", v.QRURL)
	}
	if v.PDFURL != "/api/receipts/"+r.Tx+"?format=pdf" {
		t.Errorf("pdf url = %q", v.PDFURL)
	}
	if !strings.HasSuffix(v.ExplorerURL, "/tx/"+r.Tx) {
		t.Errorf("explorer url = %q", v.ExplorerURL)
	}
}

func TestBuildViewExplorerLink(t *testing.T) {
	stored := models.Receipt{
		Tx:          "0x" + strings.Repeat("ef", 32),
		ExplorerURL: "https://testnet.arcscan.app/tx/0x" + strings.Repeat("ef", 32),
	}
	if v := BuildView(stored); v.ExplorerURL != stored.ExplorerURL {
		t.Errorf("stored explorer url not preferred: %q", v.ExplorerURL)
	}

	// Synthetic fallback keys are not hashes and get no explorer link.
	sentinel := models.Receipt{Tx: "(none)-1756684800000-ab12cd34"}
	if v := BuildView(sentinel); v.ExplorerURL != "" {
		t.Errorf("sentinel key produced explorer url %q", v.ExplorerURL)
	}
}
