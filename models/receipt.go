package models

// Receipt status labels. These strings are part of the wire contract.
const (
	StatusVerified = "Verified"
	StatusPending  = "Pending"
	StatusFailed   = "Failed"
)

// TxNone is the sentinel hash recorded when a payment failed before a
// transaction could be submitted. The store replaces it with a synthetic
// unique key so fallback records never collide.
const TxNone = "(none)"

// Receipt is the durable record of a completed or failed payment, keyed by
// the normalized transaction hash. At most one receipt exists per hash;
// re-verifying the same transaction overwrites the previous record.
type Receipt struct {
	Tx           string `json:"tx"`
	Service      string `json:"service,omitempty"`
	ServiceID    string `json:"serviceId,omitempty"`
	ServiceLabel string `json:"serviceLabel,omitempty"`
	Partner      string `json:"partner,omitempty"`
	PartnerUSDC  string `json:"partnerUSDC,omitempty"`
	PlatformUSDC string `json:"platformUSDC,omitempty"`
	SplitMode    string `json:"splitMode,omitempty"`
	AmountUSDC   string `json:"amountUSDC"`
	Network      string `json:"network"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	TrustScore   int    `json:"trustScore,omitempty"`
	ExplorerURL  string `json:"explorerUrl"`
	PDFURL       string `json:"pdfUrl"`
	CreatedAt    string `json:"createdAt"`
}

// PayRequest is the body of POST /api/pay.
type PayRequest struct {
	AmountUSDC   string `json:"amountUSDC"`
	PartnerID    string `json:"partnerId"`
	ServiceID    string `json:"serviceId"`
	ServiceLabel string `json:"serviceLabel"`
}
