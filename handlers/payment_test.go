package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turjman/config"
	"turjman/models"
	"turjman/services/payment"
	"turjman/services/receipt"
)

type fakeSubmitter struct {
	result *payment.Result
	err    error
	calls  int
}

func (f *fakeSubmitter) Pay(_ context.Context, _ string) (*payment.Result, error) {
	f.calls++
	return f.result, f.err
}

func newPayRouter(t *testing.T, submitter payment.Submitter) (*gin.Engine, *receipt.FileStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig.NetworkLabel = "Arc Testnet"

	store, err := receipt.NewFileStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	h := NewPaymentHandler(submitter, store, zap.NewNop())

	r := gin.New()
	r.POST("/api/pay", h.PayHandler)
	return r, store
}

func postPay(router *gin.Engine, body map[string]string) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/pay", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestPaySuccessResponse(t *testing.T) {
	submitter := &fakeSubmitter{result: &payment.Result{
		TxHash:       "0xabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcdabcd",
		ExplorerURL:  "https://testnet.arcscan.app/tx/0xabc",
		AmountUSDC:   75,
		PartnerUSDC:  67.5,
		PlatformUSDC: 7.5,
		SplitMode:    "offchain-stub",
	}}
	router, _ := newPayRouter(t, submitter)

	w := postPay(router, map[string]string{
		"amountUSDC":   "75",
		"serviceId":    "mofa-legal-translation",
		"serviceLabel": "Legal Translation — MOFA",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var body struct {
		Success      bool    `json:"success"`
		PartnerUSDC  float64 `json:"partnerUSDC"`
		PlatformUSDC float64 `json:"platformUSDC"`
		SplitMode    string  `json:"splitMode"`
		ServiceID    string  `json:"serviceId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.PartnerUSDC != 67.5 || body.PlatformUSDC != 7.5 {
		t.Errorf("body = %+v", body)
	}
	if body.SplitMode != "offchain-stub" || body.ServiceID != "mofa-legal-translation" {
		t.Errorf("body = %+v", body)
	}
}

func TestPayValidation(t *testing.T) {
	submitter := &fakeSubmitter{}
	router, _ := newPayRouter(t, submitter)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing amount", map[string]string{"serviceId": "x"}},
		{"non-numeric amount", map[string]string{"amountUSDC": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postPay(router, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
	if submitter.calls != 0 {
		t.Errorf("submitter called %d times for invalid requests", submitter.calls)
	}
}

func TestPayInsufficientBalanceReports400WithAmounts(t *testing.T) {
	submitter := &fakeSubmitter{err: &payment.InsufficientBalanceError{Need: "75", Have: "1.5"}}
	router, store := newPayRouter(t, submitter)

	w := postPay(router, map[string]string{"amountUSDC": "75"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var body struct {
		Need string `json:"need"`
		Have string `json:"have"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Need != "75" || body.Have != "1.5" {
		t.Errorf("need/have = %q/%q", body.Need, body.Have)
	}
	// Insufficient balance is a validation outcome, not an audit event.
	if items := store.List(); len(items) != 0 {
		t.Errorf("fallback receipt written for validation failure")
	}
}

func TestPayFailureWritesFallbackReceipt(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("rpc exploded")}
	router, store := newPayRouter(t, submitter)

	w := postPay(router, map[string]string{
		"amountUSDC":   "75",
		"serviceId":    "mofa-legal-translation",
		"serviceLabel": "Legal Translation — MOFA",
		"partnerId":    "translator-023",
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	items := store.List()
	if len(items) != 1 {
		t.Fatalf("fallback receipts = %d, want 1", len(items))
	}
	fallback := items[0]
	if fallback.Status != models.StatusFailed {
		t.Errorf("fallback status = %q", fallback.Status)
	}
	if fallback.Reason != "rpc exploded" {
		t.Errorf("fallback reason = %q", fallback.Reason)
	}
	if fallback.AmountUSDC != "75" {
		t.Errorf("fallback amount = %q", fallback.AmountUSDC)
	}
}
